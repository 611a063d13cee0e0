package models

import (
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/practicebook/internal/shared"
)

func TestWeekOf(t *testing.T) {
	tc := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{name: "wednesday", in: time.Date(2024, 5, 1, 15, 4, 0, 0, time.UTC), want: time.Date(2024, 4, 29, 0, 0, 0, 0, time.UTC)},
		{name: "monday", in: time.Date(2024, 4, 29, 0, 0, 0, 0, time.UTC), want: time.Date(2024, 4, 29, 0, 0, 0, 0, time.UTC)},
		{name: "sunday", in: time.Date(2024, 5, 5, 23, 59, 0, 0, time.UTC), want: time.Date(2024, 4, 29, 0, 0, 0, 0, time.UTC)},
		{name: "year boundary", in: time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC), want: time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeekOf(tt.in); !got.Equal(tt.want) {
				t.Errorf("WeekOf(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestWeekTitle(t *testing.T) {
	tc := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), "Practice week of: May 1st"},
		{time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), "Practice week of: January 2nd"},
		{time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), "Practice week of: March 13th"},
		{time.Date(2024, 8, 23, 0, 0, 0, 0, time.UTC), "Practice week of: August 23rd"},
	}

	for _, tt := range tc {
		t.Run(tt.want, func(t *testing.T) {
			if got := WeekTitle(tt.in); got != tt.want {
				t.Errorf("WeekTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	now := time.Date(2024, 5, 3, 21, 30, 0, 0, time.UTC)

	t.Run("explicit", func(t *testing.T) {
		got, err := ParseDate("2024-05-01", time.UTC, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected date %v", got)
		}
	})

	t.Run("blank is today", func(t *testing.T) {
		got, err := ParseDate("", time.UTC, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.Equal(time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected date %v", got)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := ParseDate("5/1/2024", time.UTC, now)
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}
