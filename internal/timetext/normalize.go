// Package timetext turns the free-form day and time text typed into intake
// forms (or read back by OCR) into canonical weekday sets and time ranges.
//
// Accepted time grammar, after width folding:
//
//	range  = clock "-" clock | clock
//	clock  = hour [ ":" [ minute ] ]
//	hour   = 1*2DIGIT        ; 0-23
//	minute = 1*2DIGIT        ; 0-59
//
// "~", "〜", en/em dashes and "から" all act as the range separator, "時" acts
// as ":" and a trailing "分" is dropped. A lone clock means a one hour visit.
package timetext

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// ParseError reports text that could not be read as a time range. Defaulted
// holds the value a lenient caller fell back to, if any.
type ParseError struct {
	Input     string
	Reason    string
	Defaulted Range
}

func (e *ParseError) Error() string {
	if !e.Defaulted.IsZero() {
		return fmt.Sprintf("parsing %q: %s (defaulted to %s)", e.Input, e.Reason, e.Defaulted)
	}
	return fmt.Sprintf("parsing %q: %s", e.Input, e.Reason)
}

const DefaultVisitMinutes = MinutesPerHour

var separatorReplacer = strings.NewReplacer(
	"〜", "-",
	"~", "-",
	"–", "-",
	"—", "-",
	"―", "-",
	"−", "-",
	"ー", "-",
	"から", "-",
	"時", ":",
	"分", "",
)

func prepare(text string) string {
	folded := width.Fold.String(text)
	folded = separatorReplacer.Replace(folded)
	return strings.Join(strings.Fields(folded), "")
}

// Normalize parses text such as "14:00-15:30", "１４：００～１５：００" or
// "14時" into a Range. It never guesses: malformed input is a *ParseError.
func Normalize(text string) (Range, error) {
	cleaned := prepare(text)
	if cleaned == "" {
		return Range{}, &ParseError{Input: text, Reason: "empty time"}
	}

	parts := strings.Split(cleaned, "-")
	switch len(parts) {
	case 1:
		start, err := parseClock(parts[0])
		if err != nil {
			return Range{}, &ParseError{Input: text, Reason: err.Error()}
		}
		result := Range{Start: start, End: start.Add(DefaultVisitMinutes)}
		if !result.Valid() {
			return Range{}, &ParseError{Input: text, Reason: "start is too late in the day"}
		}
		return result, nil
	case 2:
		start, err := parseClock(parts[0])
		if err != nil {
			return Range{}, &ParseError{Input: text, Reason: "start: " + err.Error()}
		}
		end, err := parseClock(parts[1])
		if err != nil {
			return Range{}, &ParseError{Input: text, Reason: "end: " + err.Error()}
		}
		result := Range{Start: start, End: end}
		if !result.Valid() {
			return Range{}, &ParseError{Input: text, Reason: "end must be after start"}
		}
		return result, nil
	default:
		return Range{}, &ParseError{Input: text, Reason: "too many separators"}
	}
}

// NormalizeLenient applies the intake policy: empty text is simply unset,
// and when the text is malformed but starts with a readable clock the range
// defaults to a one hour visit. The returned *ParseError is non-nil whenever
// the input was not read as written, so the caller can flag it for review.
func NormalizeLenient(text string) (Range, *ParseError) {
	if strings.TrimSpace(text) == "" {
		return Range{}, nil
	}

	result, err := Normalize(text)
	if err == nil {
		return result, nil
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		return Range{}, &ParseError{Input: text, Reason: err.Error()}
	}

	head, _, _ := strings.Cut(prepare(text), "-")
	if start, clockErr := parseClock(head); clockErr == nil {
		fallback := Range{Start: start, End: start.Add(DefaultVisitMinutes)}
		if fallback.Valid() {
			parseErr.Defaulted = fallback
		}
	}
	return parseErr.Defaulted, parseErr
}

func parseClock(token string) (Clock, error) {
	hourText, minuteText, hasMinute := strings.Cut(token, ":")
	hour, err := parseNumber(hourText, 23)
	if err != nil {
		return 0, fmt.Errorf("hour %q: %w", hourText, err)
	}

	minute := 0
	if hasMinute && minuteText != "" {
		minute, err = parseNumber(minuteText, 59)
		if err != nil {
			return 0, fmt.Errorf("minute %q: %w", minuteText, err)
		}
	}
	return NewClock(hour, minute), nil
}

var (
	errNotNumeric = errors.New("not a number")
	errOutOfRange = errors.New("out of range")
)

func parseNumber(text string, max int) (int, error) {
	if text == "" || len(text) > 2 {
		return 0, errNotNumeric
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return 0, errNotNumeric
		}
	}
	value, err := strconv.Atoi(text)
	if err != nil {
		return 0, errNotNumeric
	}
	if value > max {
		return 0, errOutOfRange
	}
	return value, nil
}

var kanjiWeekdays = map[rune]Weekday{
	'月': Monday,
	'火': Tuesday,
	'水': Wednesday,
	'木': Thursday,
	'金': Friday,
}

var englishWeekdays = map[string]Weekday{
	"mon": Monday, "monday": Monday,
	"tue": Tuesday, "tues": Tuesday, "tuesday": Tuesday,
	"wed": Wednesday, "wednesday": Wednesday,
	"thu": Thursday, "thur": Thursday, "thurs": Thursday, "thursday": Thursday,
	"fri": Friday, "friday": Friday,
}

// NormalizeDays collects every weekday mentioned in text. Several markers
// mean several recurring days; anything else, weekends included, is ignored.
func NormalizeDays(text string) DaySet {
	folded := width.Fold.String(text)
	if strings.Contains(folded, "平日") {
		return AllWeekdays
	}

	var set DaySet
	for _, r := range folded {
		if day, ok := kanjiWeekdays[r]; ok {
			set = set.Add(day)
		}
	}

	words := strings.FieldsFunc(strings.ToLower(folded), func(r rune) bool {
		return r > unicode.MaxASCII || !unicode.IsLetter(r)
	})
	for _, word := range words {
		if day, ok := englishWeekdays[word]; ok {
			set = set.Add(day)
		}
	}
	return set
}
