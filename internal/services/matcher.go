package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/caseboard/visit-scheduler/internal/models"
	"github.com/caseboard/visit-scheduler/internal/repository"
	"github.com/caseboard/visit-scheduler/internal/timetext"
)

// Criteria filters the staff search. Zero values mean "no filter".
type Criteria struct {
	Region          string
	AgeMin          int
	AgeMax          int
	Gender          string
	Days            timetext.DaySet
	TimeRange       timetext.Range
	Interests       []string
	ExcludeOccupied bool
}

type MatcherService struct {
	staffRepo   repository.StaffRepository
	entryRepo   repository.ScheduleEntryRepository
	overlapMode bool
}

// NewMatcherService builds the staff search. With overlapMode off, time
// filters use the loose text match on stored working hours; with it on they
// use interval overlap.
func NewMatcherService(
	staffRepo repository.StaffRepository,
	entryRepo repository.ScheduleEntryRepository,
	overlapMode bool,
) *MatcherService {
	return &MatcherService{
		staffRepo:   staffRepo,
		entryRepo:   entryRepo,
		overlapMode: overlapMode,
	}
}

// Search returns the active staff matching criteria, ordered by name.
func (service *MatcherService) Search(ctx context.Context, criteria Criteria) ([]models.Staff, error) {
	members, err := service.staffRepo.FindAll(ctx, repository.StaffFilter{ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("finding staff: %w", err)
	}

	var bookings map[string][]models.ScheduleEntry
	if criteria.ExcludeOccupied {
		entries, err := service.entryRepo.FindActive(ctx)
		if err != nil {
			return nil, fmt.Errorf("finding bookings: %w", err)
		}
		bookings = make(map[string][]models.ScheduleEntry)
		for _, entry := range entries {
			bookings[entry.StaffID] = append(bookings[entry.StaffID], entry)
		}
	}

	matches := []models.Staff{}
	for _, staff := range members {
		if !service.matches(staff, criteria) {
			continue
		}
		if criteria.ExcludeOccupied && occupied(staff, bookings[staff.ID], criteria) {
			continue
		}
		matches = append(matches, staff)
	}
	return matches, nil
}

func (service *MatcherService) matches(staff models.Staff, criteria Criteria) bool {
	if region := strings.TrimSpace(criteria.Region); region != "" && !strings.Contains(staff.Region, region) {
		return false
	}
	if criteria.AgeMin > 0 && staff.Age < criteria.AgeMin {
		return false
	}
	if criteria.AgeMax > 0 && staff.Age > criteria.AgeMax {
		return false
	}
	if criteria.Gender != "" && staff.Gender != criteria.Gender {
		return false
	}
	if !criteria.Days.IsEmpty() && staff.WorkDays.Intersect(criteria.Days).IsEmpty() {
		return false
	}
	if !criteria.TimeRange.IsZero() && !service.matchesTime(staff.WorkHours, criteria.TimeRange) {
		return false
	}
	return matchesInterests(staff.Skills, criteria.Interests)
}

func (service *MatcherService) matchesTime(work timetext.Range, requested timetext.Range) bool {
	if service.overlapMode {
		return work.IsZero() || work.Overlaps(requested)
	}
	return looseTimeMatch(work.String(), requested)
}

// looseTimeMatch accepts stored hours that contain the requested range
// verbatim, or that mention any whole hour from the requested start up to
// but excluding the requested end hour.
func looseTimeMatch(workHours string, requested timetext.Range) bool {
	if workHours == "" {
		return false
	}
	if strings.Contains(workHours, requested.String()) {
		return true
	}
	for hour := requested.Start.Hour(); hour < requested.End.Hour(); hour++ {
		if strings.Contains(workHours, fmt.Sprintf("%02d:", hour)) {
			return true
		}
	}
	return false
}

func matchesInterests(skills string, interests []string) bool {
	wanted := false
	lowered := strings.ToLower(skills)
	for _, interest := range interests {
		interest = strings.ToLower(strings.TrimSpace(interest))
		if interest == "" {
			continue
		}
		wanted = true
		if strings.Contains(lowered, interest) {
			return true
		}
	}
	return !wanted
}

// occupied reports whether the staff member already has a booking on one of
// the requested days (all weekdays when none are given) that overlaps the
// requested time (any time when none is given).
func occupied(staff models.Staff, entries []models.ScheduleEntry, criteria Criteria) bool {
	days := criteria.Days
	if days.IsEmpty() {
		days = timetext.AllWeekdays
	}
	clashes := func(booked timetext.Range) bool {
		return criteria.TimeRange.IsZero() || booked.Overlaps(criteria.TimeRange)
	}

	for _, entry := range entries {
		if days.Has(entry.DayOfWeek) && clashes(entry.TimeRange()) {
			return true
		}
	}

	if staff.CaseNumber != "" && !staff.CaseDays.Intersect(days).IsEmpty() {
		if criteria.TimeRange.IsZero() || (!staff.CaseTime.IsZero() && clashes(staff.CaseTime)) {
			return true
		}
	}
	return false
}
