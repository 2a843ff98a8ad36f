package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/pkg/types"
)

// MinutesPerDay number of minutes in a calendar day.
const MinutesPerDay = 24 * 60

// TimeInterval is a half-open [Start, End) range of instants.
type TimeInterval struct {
	Start time.Time
	End   time.Time
}

// NewTimeInterval validates End > Start.
func NewTimeInterval(start, end time.Time) (TimeInterval, error) {
	i := TimeInterval{Start: start, End: end}
	if err := i.Validate(); err != nil {
		return TimeInterval{}, err
	}
	return i, nil
}

func (i TimeInterval) Validate() error {
	if !i.End.After(i.Start) {
		return fmt.Errorf("%w: interval end %s must be after start %s",
			ErrValidation, i.End.Format(time.RFC3339), i.Start.Format(time.RFC3339))
	}
	return nil
}

func (i TimeInterval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Overlaps strict half-open test: touching intervals do not overlap.
func (i TimeInterval) Overlaps(other TimeInterval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Expand widens the interval by before/after.
func (i TimeInterval) Expand(before, after time.Duration) TimeInterval {
	return TimeInterval{Start: i.Start.Add(-before), End: i.End.Add(after)}
}

// ToDay converts the interval into minute offsets from local midnight of day.
// Wall-clock arithmetic is used so DST shifts do not skew the offsets.
func (i TimeInterval) ToDay(day time.Time) DayInterval {
	return DayInterval{
		Start: minutesFromMidnight(i.Start, day),
		End:   minutesFromMidnight(i.End, day),
	}
}

// DayInterval is a half-open [Start, End) range of minutes from local midnight.
// Values outside [0, MinutesPerDay] are allowed for intervals that cross midnight.
type DayInterval struct {
	Start int
	End   int
}

// NewDayIntervalFromTimes builds an interval from "HH:MM" bounds.
func NewDayIntervalFromTimes(open, close types.TimeString) (DayInterval, error) {
	start, err := open.Minutes()
	if err != nil {
		return DayInterval{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	end, err := close.Minutes()
	if err != nil {
		return DayInterval{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	d := DayInterval{Start: start, End: end}
	if err := d.Validate(); err != nil {
		return DayInterval{}, err
	}
	return d, nil
}

func (d DayInterval) Validate() error {
	if d.End <= d.Start {
		return fmt.Errorf("%w: day interval end %d must be after start %d", ErrValidation, d.End, d.Start)
	}
	return nil
}

func (d DayInterval) Duration() int {
	return d.End - d.Start
}

// Overlaps strict half-open test: a.Start < b.End && b.Start < a.End.
func (d DayInterval) Overlaps(other DayInterval) bool {
	return d.Start < other.End && other.Start < d.End
}

// Contains reports whether other lies entirely inside d.
func (d DayInterval) Contains(other DayInterval) bool {
	return d.Start <= other.Start && other.End <= d.End
}

// Expand widens the interval by before/after minutes.
func (d DayInterval) Expand(before, after int) DayInterval {
	return DayInterval{Start: d.Start - before, End: d.End + after}
}

// StartOfDay returns local midnight of t in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DateIn interprets the calendar date of d in loc.
func DateIn(d time.Time, loc *time.Location) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}

func minutesFromMidnight(t, day time.Time) int {
	local := t.In(day.Location())
	days := civilDays(local) - civilDays(day)
	return days*MinutesPerDay + local.Hour()*60 + local.Minute()
}

func civilDays(t time.Time) int {
	return int(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Unix() / 86400)
}
