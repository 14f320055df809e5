package analytics

import (
	"math"
	"time"
)

// DayKey truncates a timestamp to its UTC calendar date
func DayKey(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// MinutesFromMidnight returns the wall-clock minute of day in [0, 1440),
// using the hour and minute of the timestamp's own location
func MinutesFromMidnight(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// RelativeDayIndex returns floor((t - rangeStart) / 24h). The result can be
// negative or exceed the requested range; callers discard out-of-range
// indices.
func RelativeDayIndex(t, rangeStart time.Time) int {
	return int(math.Floor(t.Sub(rangeStart).Seconds() / 86400))
}

// AbsoluteDayIndex is RelativeDayIndex over the absolute distance from
// rangeStart. The unfiltered block report derives its day offset this way,
// which masks the sign of pre-range calls.
func AbsoluteDayIndex(t, rangeStart time.Time) int {
	diff := t.Sub(rangeStart)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Floor(diff.Seconds() / 86400))
}
