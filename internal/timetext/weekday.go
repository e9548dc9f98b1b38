package timetext

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Weekday is one of the five working days. Values line up with time.Weekday.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
)

var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}

var (
	weekdayNames = [...]string{"", "Mon", "Tue", "Wed", "Thu", "Fri"}
	weekdayKanji = [...]string{"", "月", "火", "水", "木", "金"}
)

func (d Weekday) Valid() bool { return d >= Monday && d <= Friday }

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

func (d Weekday) Kanji() string {
	if !d.Valid() {
		return ""
	}
	return weekdayKanji[d]
}

// Column is the zero-based grid column of the day.
func (d Weekday) Column() int { return int(d) - 1 }

func (d Weekday) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid weekday %d", int(d))
	}
	return []byte(d.String()), nil
}

func (d *Weekday) UnmarshalText(text []byte) error {
	days := NormalizeDays(string(text)).Days()
	if len(days) != 1 {
		return &ParseError{Input: string(text), Reason: "expected exactly one weekday"}
	}
	*d = days[0]
	return nil
}

// DaySet is a set of weekdays stored as a bitmask.
type DaySet uint8

const AllWeekdays DaySet = 1<<Monday | 1<<Tuesday | 1<<Wednesday | 1<<Thursday | 1<<Friday

func NewDaySet(days ...Weekday) DaySet {
	var set DaySet
	for _, day := range days {
		set = set.Add(day)
	}
	return set
}

func (s DaySet) Add(day Weekday) DaySet {
	if !day.Valid() {
		return s
	}
	return s | 1<<day
}

func (s DaySet) Has(day Weekday) bool {
	return day.Valid() && s&(1<<day) != 0
}

func (s DaySet) IsEmpty() bool { return s == 0 }

func (s DaySet) Intersect(other DaySet) DaySet { return s & other }

func (s DaySet) Len() int { return len(s.Days()) }

func (s DaySet) Days() []Weekday {
	var days []Weekday
	for _, day := range Weekdays {
		if s.Has(day) {
			days = append(days, day)
		}
	}
	return days
}

// Difference returns the days in s that are missing from other.
func (s DaySet) Difference(other DaySet) DaySet { return s &^ other }

func (s DaySet) String() string {
	days := s.Days()
	names := make([]string, len(days))
	for i, day := range days {
		names[i] = day.String()
	}
	return strings.Join(names, ",")
}

func (s DaySet) Kanji() string {
	var builder strings.Builder
	for _, day := range s.Days() {
		builder.WriteString(day.Kanji())
	}
	return builder.String()
}

func (s DaySet) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *DaySet) UnmarshalText(text []byte) error {
	*s = NormalizeDays(string(text))
	return nil
}

func (s DaySet) Value() (driver.Value, error) {
	return s.String(), nil
}

func (s *DaySet) Scan(src any) error {
	switch value := src.(type) {
	case nil:
		*s = 0
	case string:
		*s = NormalizeDays(value)
	case []byte:
		*s = NormalizeDays(string(value))
	default:
		return fmt.Errorf("scanning day set: unsupported type %T", src)
	}
	return nil
}
