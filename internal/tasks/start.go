package tasks

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/setlist/internal/schedule"
	"github.com/desertthunder/setlist/internal/shared"
)

// DefaultStartClock is the start time used when none is configured.
const DefaultStartClock = "20:30"

// NextSaturday returns the date of the first Saturday strictly after now, at midnight in now's location.
func NextSaturday(now time.Time) time.Time {
	days := (int(time.Saturday) - int(now.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	y, m, d := now.AddDate(0, 0, days).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// ResolveStart turns a "YYYY-MM-DD" date and an "HH:MM" clock into a moment in loc.
//
// An empty date means the next Saturday after now and an empty clock means [DefaultStartClock].
func ResolveStart(date, clock string, loc *time.Location, now time.Time) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}

	day := NextSaturday(now.In(loc))
	if date = strings.TrimSpace(date); date != "" {
		d, err := time.Parse(time.DateOnly, date)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", shared.ErrInvalidArgument, date)
		}
		day = d
	}

	if clock = strings.TrimSpace(clock); clock == "" {
		clock = DefaultStartClock
	}
	c, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: start %q must be HH:MM", shared.ErrInvalidArgument, clock)
	}

	wall := time.Date(day.Year(), day.Month(), day.Day(), c.Hour(), c.Minute(), 0, 0, time.UTC)
	return schedule.Localize(wall, loc), nil
}
