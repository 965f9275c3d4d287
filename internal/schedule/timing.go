package schedule

import "time"

// Cumulative returns inclusive running totals: out[i] is the sum of durations[0..i].
//
// An empty input gives an empty (non-nil) output.
func Cumulative(durations []int64) []int64 {
	out := make([]int64, len(durations))
	var sum int64
	for i, d := range durations {
		sum += d
		out[i] = sum
	}
	return out
}

// ClockTimes offsets start by each cumulative millisecond value.
//
// Addition is on absolute time, so the date advances past midnight (over several days
// when needed) and DST transitions in start's location are honoured.
func ClockTimes(start time.Time, cumulative []int64) []time.Time {
	out := make([]time.Time, len(cumulative))
	for i, ms := range cumulative {
		out[i] = start.Add(time.Duration(ms) * time.Millisecond)
	}
	return out
}

// Localize reads the wall-clock fields of wall as a time in loc.
//
// A nil loc means UTC.
func Localize(wall time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(wall.Year(), wall.Month(), wall.Day(), wall.Hour(), wall.Minute(), wall.Second(), wall.Nanosecond(), loc)
}

// ApplyCrossfade shortens every duration by crossfadeMS, clamping at zero.
//
// It returns a new slice; a non-positive crossfade returns an unchanged copy.
func ApplyCrossfade(durations []int64, crossfadeMS int64) []int64 {
	out := make([]int64, len(durations))
	for i, d := range durations {
		if crossfadeMS > 0 {
			d -= crossfadeMS
			if d < 0 {
				d = 0
			}
		}
		out[i] = d
	}
	return out
}
