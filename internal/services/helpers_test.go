package services_test

import (
	"context"
	"testing"

	"github.com/caseboard/visit-scheduler/internal/models"
	"github.com/caseboard/visit-scheduler/internal/repository"
	"github.com/caseboard/visit-scheduler/internal/services"
	"github.com/caseboard/visit-scheduler/internal/testutil"
)

type fixture struct {
	store      *repository.Store
	staff      *services.StaffService
	intake     *services.IntakeService
	scheduling *services.SchedulingService
	matcher    *services.MatcherService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := testutil.NewTestStore(t)
	return fixture{
		store:      store,
		staff:      services.NewStaffService(store.Staff, store),
		intake:     services.NewIntakeService(store.Areas, store.UnassignedCases, store),
		scheduling: services.NewSchedulingService(store.Repositories, store, services.NewConflictResolver(false)),
		matcher:    services.NewMatcherService(store.Staff, store.ScheduleEntries, false),
	}
}

func (f fixture) addStaff(t *testing.T, name string, workDays string, workHours string) models.Staff {
	t.Helper()
	staff, err := f.staff.AddStaff(context.Background(), services.StaffInput{
		Name:      name,
		Age:       35,
		Gender:    "female",
		Region:    "Kita",
		WorkDays:  workDays,
		WorkHours: workHours,
	})
	if err != nil {
		t.Fatalf("adding staff %s: %v", name, err)
	}
	return staff
}

func (f fixture) addPending(t *testing.T, caseNumber string, days string, timeText string) models.UnassignedCase {
	t.Helper()
	pending, err := f.intake.CreateUnassignedCase(context.Background(), services.UnassignedCaseInput{
		CaseNumber:     caseNumber,
		ChildGivenName: "Haruto",
		ChildGender:    "male",
		ChildGrade:     "3",
		School:         "Kita Elementary",
		PreferredDays:  days,
		PreferredTime:  timeText,
		Frequency:      "毎週",
		Location:       "Home",
	})
	if err != nil {
		t.Fatalf("creating pending case %s: %v", caseNumber, err)
	}
	return pending
}

func (f fixture) assign(t *testing.T, pendingID string, staffID string) string {
	t.Helper()
	caseID, err := f.scheduling.AssignCase(context.Background(), pendingID, staffID)
	if err != nil {
		t.Fatalf("assigning case: %v", err)
	}
	return caseID
}

func (f fixture) entriesFor(t *testing.T, caseID string) []models.ScheduleEntry {
	t.Helper()
	entries, err := f.store.ScheduleEntries.FindByCase(context.Background(), caseID)
	if err != nil {
		t.Fatalf("finding entries: %v", err)
	}
	return entries
}
