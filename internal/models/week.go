package models

import (
	"fmt"
	"time"

	"github.com/desertthunder/practicebook/internal/shared"
	"github.com/dustin/go-humanize"
)

// WeekOf returns midnight on the Monday of t's week, in t's location.
func WeekOf(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
}

// WeekTitle renders the section heading for a regiment dated t, e.g. "Practice week of: May 1st".
func WeekTitle(t time.Time) string {
	return fmt.Sprintf("Practice week of: %s %s", t.Format("January"), humanize.Ordinal(t.Day()))
}

// ParseDate parses a YYYY-MM-DD date in loc. A blank value yields today.
func ParseDate(value string, loc *time.Location, now time.Time) (time.Time, error) {
	if value == "" {
		y, m, d := now.In(loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
	}
	t, err := time.ParseInLocation(time.DateOnly, value, loc)
	if err != nil {
		return time.Time{}, shared.NewValidationError("date", fmt.Sprintf("%q is not YYYY-MM-DD", value))
	}
	return t, nil
}
