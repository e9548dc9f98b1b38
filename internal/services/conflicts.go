package services

import (
	"fmt"

	"github.com/caseboard/visit-scheduler/internal/models"
	"github.com/caseboard/visit-scheduler/internal/timetext"
)

// ConflictResolver checks a proposed booking against a staff member's
// declared availability and existing schedule. It never writes.
//
// By default the time check only requires the requested start to fall inside
// the working hours. Strict mode also requires the visit to end by the end of
// the working hours.
type ConflictResolver struct {
	strict bool
}

func NewConflictResolver(strict bool) *ConflictResolver {
	return &ConflictResolver{strict: strict}
}

// ValidateAssignment returns a *ConflictError naming every requested day the
// staff member does not work and, if applicable, why the time does not fit.
// Empty work days or unset work hours leave that dimension unconstrained.
func (resolver *ConflictResolver) ValidateAssignment(staff models.Staff, days timetext.DaySet, requested timetext.Range) error {
	conflict := resolver.availability(staff, days, requested)
	if conflict.empty() {
		return nil
	}
	return conflict
}

// CheckBookings reports active entries on the requested days whose time
// overlaps requested. Entries of excludeCaseID are ignored so a case can be
// rescheduled over its own slots.
func (resolver *ConflictResolver) CheckBookings(entries []models.ScheduleEntry, days timetext.DaySet, requested timetext.Range, excludeCaseID string) error {
	conflict := &ConflictError{Overlaps: overlapping(entries, days, requested, excludeCaseID)}
	if conflict.empty() {
		return nil
	}
	return conflict
}

// Resolve runs both checks and merges the findings into one error.
func (resolver *ConflictResolver) Resolve(staff models.Staff, entries []models.ScheduleEntry, days timetext.DaySet, requested timetext.Range, excludeCaseID string) error {
	conflict := resolver.availability(staff, days, requested)
	conflict.Overlaps = append(conflict.Overlaps, overlapping(entries, days, requested, excludeCaseID)...)
	if conflict.empty() {
		return nil
	}
	return conflict
}

func (resolver *ConflictResolver) availability(staff models.Staff, days timetext.DaySet, requested timetext.Range) *ConflictError {
	conflict := &ConflictError{}

	if !staff.WorkDays.IsEmpty() {
		conflict.OffendingDays = days.Difference(staff.WorkDays)
	}

	work := staff.WorkHours
	if work.IsZero() || requested.IsZero() {
		return conflict
	}
	switch {
	case requested.Start < work.Start || requested.Start >= work.End:
		conflict.TimeReason = fmt.Sprintf("start %s is outside working hours %s", requested.Start, work)
	case resolver.strict && !work.Contains(requested):
		conflict.TimeReason = fmt.Sprintf("end %s is after working hours %s", requested.End, work)
	}
	return conflict
}

func overlapping(entries []models.ScheduleEntry, days timetext.DaySet, requested timetext.Range, excludeCaseID string) []Overlap {
	if requested.IsZero() {
		return nil
	}

	var overlaps []Overlap
	for _, entry := range entries {
		if !entry.IsActive || !days.Has(entry.DayOfWeek) {
			continue
		}
		if excludeCaseID != "" && entry.CaseID != nil && *entry.CaseID == excludeCaseID {
			continue
		}
		if entry.TimeRange().Overlaps(requested) {
			overlaps = append(overlaps, Overlap{
				Day:     entry.DayOfWeek,
				Time:    entry.TimeRange(),
				EntryID: entry.ID,
				CaseID:  entry.CaseID,
			})
		}
	}
	return overlaps
}
