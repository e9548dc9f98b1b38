package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/caseboard/visit-scheduler/internal/models"
	"github.com/caseboard/visit-scheduler/internal/repository"
	"github.com/caseboard/visit-scheduler/internal/timetext"
)

func createTestUser(t *testing.T, repo *repository.SQLiteUserRepository) models.User {
	t.Helper()
	user, err := repo.Create(context.Background(), models.User{
		OIDCSubject: "sub-" + time.Now().String(),
		Email:       "test@example.com",
		Name:        "Test User",
		Role:        models.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("creating test user: %v", err)
	}
	return user
}

func createTestStaff(t *testing.T, repo repository.StaffRepository, name string) models.Staff {
	t.Helper()
	staff, err := repo.Create(context.Background(), models.Staff{
		Name:      name,
		Age:       34,
		Gender:    "female",
		Region:    "Kita",
		WorkDays:  timetext.NewDaySet(timetext.Monday, timetext.Wednesday),
		WorkHours: timetext.Range{Start: timetext.NewClock(10, 0), End: timetext.NewClock(17, 0)},
	})
	if err != nil {
		t.Fatalf("creating test staff: %v", err)
	}
	return staff
}

func createTestCase(t *testing.T, repo repository.CaseRepository, caseNumber string) models.Case {
	t.Helper()
	record, err := repo.Create(context.Background(), models.Case{
		CaseNumber:     caseNumber,
		ChildGivenName: "Haruto",
		ScheduleDays:   timetext.NewDaySet(timetext.Tuesday),
		ScheduleTime:   timetext.Range{Start: timetext.NewClock(14, 0), End: timetext.NewClock(15, 0)},
		Frequency:      models.FrequencyWeekly,
	})
	if err != nil {
		t.Fatalf("creating test case: %v", err)
	}
	return record
}
