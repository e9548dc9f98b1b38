package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/caseboard/visit-scheduler/internal/timetext"
)

// ValidationError lists input problems by field. Nothing was written.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, field := range fields {
		parts[i] = field + ": " + e.Fields[field]
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Overlap is an existing booking that collides with a requested slot.
type Overlap struct {
	Day     timetext.Weekday `json:"day"`
	Time    timetext.Range   `json:"time"`
	EntryID string           `json:"entryId"`
	CaseID  *string          `json:"caseId,omitempty"`
}

// ConflictError rejects an assignment that falls outside the staff member's
// declared availability or collides with their existing bookings.
type ConflictError struct {
	OffendingDays timetext.DaySet
	TimeReason    string
	Overlaps      []Overlap
}

func (e *ConflictError) Error() string {
	var parts []string
	if !e.OffendingDays.IsEmpty() {
		parts = append(parts, "days outside availability: "+e.OffendingDays.String())
	}
	if e.TimeReason != "" {
		parts = append(parts, e.TimeReason)
	}
	for _, overlap := range e.Overlaps {
		parts = append(parts, fmt.Sprintf("overlaps booking on %s %s", overlap.Day, overlap.Time))
	}
	return "schedule conflict: " + strings.Join(parts, "; ")
}

func (e *ConflictError) empty() bool {
	return e.OffendingDays.IsEmpty() && e.TimeReason == "" && len(e.Overlaps) == 0
}
