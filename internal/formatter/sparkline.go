package formatter

import "strings"

var sparkTicks = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders values as a row of block characters scaled between their min and max.
// A flat series renders at mid height; an empty one renders as "".
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	var b strings.Builder
	top := len(sparkTicks) - 1
	for _, v := range values {
		i := top / 2
		if hi > lo {
			i = int((v - lo) / (hi - lo) * float64(top))
		}
		b.WriteRune(sparkTicks[i])
	}
	return b.String()
}
