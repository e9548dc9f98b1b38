package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/caseboard/visit-scheduler/internal/models"
	"github.com/caseboard/visit-scheduler/internal/repository"
	"github.com/caseboard/visit-scheduler/internal/testutil"
	"github.com/caseboard/visit-scheduler/internal/timetext"
)

func TestUnassignedCaseRepository_FindAllPendingFirst(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	repo := repository.NewUnassignedCaseRepository(db)
	record := createTestCase(t, repository.NewCaseRepository(db), "C-001")
	ctx := context.Background()

	first, _ := repo.Create(ctx, models.UnassignedCase{CaseNumber: "C-001"})
	repo.Create(ctx, models.UnassignedCase{CaseNumber: "C-003"})
	repo.Create(ctx, models.UnassignedCase{CaseNumber: "C-002"})

	if err := repo.MarkAssigned(ctx, first.ID, record.ID); err != nil {
		t.Fatalf("marking assigned: %v", err)
	}

	pool, err := repo.FindAll(ctx, "")
	if err != nil {
		t.Fatalf("finding pool: %v", err)
	}
	var numbers []string
	for _, pending := range pool {
		numbers = append(numbers, pending.CaseNumber)
	}
	if len(numbers) != 3 || numbers[0] != "C-002" || numbers[1] != "C-003" || numbers[2] != "C-001" {
		t.Errorf("expected pending first by number, got %v", numbers)
	}

	pending, _ := repo.FindAll(ctx, models.UnassignedStatusPending)
	if len(pending) != 2 {
		t.Errorf("expected 2 pending, got %d", len(pending))
	}

	assigned, _ := repo.FindByID(ctx, first.ID)
	if assigned.Status != models.UnassignedStatusAssigned || assigned.CaseID == nil || *assigned.CaseID != record.ID {
		t.Errorf("expected assigned and linked, got %+v", assigned)
	}
}

func TestUnassignedCaseRepository_ReopenByID(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	repo := repository.NewUnassignedCaseRepository(db)
	record := createTestCase(t, repository.NewCaseRepository(db), "C-040")
	ctx := context.Background()

	original, err := repo.Create(ctx, models.UnassignedCase{
		CaseNumber:  "C-040",
		ChildGender: "male",
		School:      "Kita Elementary",
	})
	if err != nil {
		t.Fatalf("creating unassigned case: %v", err)
	}
	repo.MarkAssigned(ctx, original.ID, record.ID)
	other, _ := repo.Create(ctx, models.UnassignedCase{CaseNumber: "C-041", ChildGivenName: "Yui"})

	reopened, err := repo.Reopen(ctx, models.UnassignedCase{
		ID:             original.ID,
		CaseNumber:     "C-042",
		ChildGivenName: "Haruto",
		PreferredDays:  timetext.NewDaySet(timetext.Tuesday),
		PreferredTime:  timetext.Range{Start: timetext.NewClock(14, 0), End: timetext.NewClock(15, 0)},
		CaseID:         &record.ID,
	})
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	if reopened.Status != models.UnassignedStatusPending || reopened.CaseNumber != "C-042" {
		t.Errorf("expected pending C-042, got %s %s", reopened.Status, reopened.CaseNumber)
	}
	if reopened.ChildGivenName != "Haruto" || reopened.PreferredTime.String() != "14:00-15:00" {
		t.Errorf("expected descriptive fields carried over, got %+v", reopened)
	}
	if reopened.ChildGender != "male" || reopened.School != "Kita Elementary" {
		t.Errorf("expected intake-only fields kept, got %+v", reopened)
	}

	untouched, _ := repo.FindByID(ctx, other.ID)
	if untouched.ChildGivenName != "Yui" || untouched.CaseID != nil {
		t.Errorf("expected the other pool row untouched, got %+v", untouched)
	}
}

func TestUnassignedCaseRepository_MissingRowsAreNotFound(t *testing.T) {
	repo := repository.NewUnassignedCaseRepository(testutil.NewTestDatabase(t))
	ctx := context.Background()

	if _, err := repo.Reopen(ctx, models.UnassignedCase{ID: "missing", CaseNumber: "C-001"}); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound reopening, got %v", err)
	}
	if err := repo.SetCaseNumber(ctx, "missing", "C-001"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound renumbering, got %v", err)
	}
}
