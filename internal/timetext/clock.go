package timetext

import (
	"database/sql/driver"
	"fmt"
)

// Clock is a time of day in minutes since midnight.
type Clock int

const (
	MinutesPerHour       = 60
	MaxClock       Clock = 23*MinutesPerHour + 59
)

func NewClock(hour, minute int) Clock {
	return Clock(hour*MinutesPerHour + minute)
}

func (c Clock) Hour() int   { return int(c) / MinutesPerHour }
func (c Clock) Minute() int { return int(c) % MinutesPerHour }

// Add moves the clock by the given minutes without leaving the day.
func (c Clock) Add(minutes int) Clock {
	next := int(c) + minutes
	if next > int(MaxClock) {
		return MaxClock
	}
	if next < 0 {
		return 0
	}
	return Clock(next)
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// Range is a same-day time window. The zero Range means "not set".
type Range struct {
	Start Clock
	End   Clock
}

func (r Range) IsZero() bool { return r.Start == 0 && r.End == 0 }

func (r Range) Valid() bool { return r.Start < r.End }

// Overlaps reports whether the half-open windows [Start, End) intersect.
func (r Range) Overlaps(other Range) bool {
	return r.Start < other.End && other.Start < r.End
}

// Contains reports whether other lies entirely within r.
func (r Range) Contains(other Range) bool {
	return r.Start <= other.Start && other.End <= r.End
}

func (r Range) String() string {
	if r.IsZero() {
		return ""
	}
	return r.Start.String() + "-" + r.End.String()
}

func (r Range) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Range) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*r = Range{}
		return nil
	}
	parsed, err := Normalize(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func (r Range) Value() (driver.Value, error) {
	if r.IsZero() {
		return nil, nil
	}
	return r.String(), nil
}

func (r *Range) Scan(src any) error {
	switch value := src.(type) {
	case nil:
		*r = Range{}
		return nil
	case string:
		return r.UnmarshalText([]byte(value))
	case []byte:
		return r.UnmarshalText(value)
	default:
		return fmt.Errorf("scanning time range: unsupported type %T", src)
	}
}
