package repository_test

import (
	"context"
	"testing"

	"github.com/caseboard/visit-scheduler/internal/models"
	"github.com/caseboard/visit-scheduler/internal/repository"
	"github.com/caseboard/visit-scheduler/internal/testutil"
	"github.com/caseboard/visit-scheduler/internal/timetext"
)

func TestScheduleEntryRepository_CreateDeleteByCase(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	staff := createTestStaff(t, repository.NewStaffRepository(db), "Aoki")
	record := createTestCase(t, repository.NewCaseRepository(db), "C-020")
	repo := repository.NewScheduleEntryRepository(db)
	ctx := context.Background()

	for _, day := range []timetext.Weekday{timetext.Monday, timetext.Wednesday} {
		_, err := repo.Create(ctx, models.ScheduleEntry{
			StaffID:   staff.ID,
			CaseID:    &record.ID,
			DayOfWeek: day,
			StartTime: timetext.NewClock(14, 0),
			EndTime:   timetext.NewClock(15, 0),
			Frequency: models.FrequencyWeekly,
		})
		if err != nil {
			t.Fatalf("creating entry: %v", err)
		}
	}

	entries, err := repo.FindByCase(ctx, record.ID)
	if err != nil {
		t.Fatalf("finding entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].DayOfWeek != timetext.Monday || entries[1].DayOfWeek != timetext.Wednesday {
		t.Errorf("expected Mon then Wed, got %s then %s", entries[0].DayOfWeek, entries[1].DayOfWeek)
	}
	if entries[0].StartTime != timetext.NewClock(14, 0) || entries[0].Type != models.EntryTypeCase {
		t.Errorf("unexpected entry %+v", entries[0])
	}

	deleted, err := repo.DeleteByCase(ctx, record.ID)
	if err != nil {
		t.Fatalf("deleting entries: %v", err)
	}
	if deleted != 2 {
		t.Errorf("expected 2 deleted, got %d", deleted)
	}

	entries, _ = repo.FindByCase(ctx, record.ID)
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}

func TestScheduleEntryRepository_DeactivateHidesFromStaff(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	staff := createTestStaff(t, repository.NewStaffRepository(db), "Aoki")
	record := createTestCase(t, repository.NewCaseRepository(db), "C-021")
	repo := repository.NewScheduleEntryRepository(db)
	ctx := context.Background()

	repo.Create(ctx, models.ScheduleEntry{
		StaffID: staff.ID, CaseID: &record.ID, DayOfWeek: timetext.Tuesday,
		StartTime: timetext.NewClock(10, 0), EndTime: timetext.NewClock(11, 0),
	})
	repo.Create(ctx, models.ScheduleEntry{
		StaffID: staff.ID, DayOfWeek: timetext.Friday, Type: models.EntryTypeBlock, Label: "Training",
		StartTime: timetext.NewClock(13, 0), EndTime: timetext.NewClock(14, 0),
	})

	if err := repo.DeactivateByCase(ctx, record.ID); err != nil {
		t.Fatalf("deactivating entries: %v", err)
	}

	entries, err := repo.FindByStaff(ctx, staff.ID)
	if err != nil {
		t.Fatalf("finding staff entries: %v", err)
	}
	if len(entries) != 1 || entries[0].Type != models.EntryTypeBlock {
		t.Errorf("expected only the block to stay active, got %+v", entries)
	}

	kept, _ := repo.FindByCase(ctx, record.ID)
	if len(kept) != 1 || kept[0].IsActive {
		t.Errorf("expected the case entry kept but inactive, got %+v", kept)
	}
}

func TestScheduleEntryRepository_FindActiveDetails(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	areaRepo := repository.NewAreaRepository(db)
	caseRepo := repository.NewCaseRepository(db)
	repo := repository.NewScheduleEntryRepository(db)
	ctx := context.Background()

	area, _ := areaRepo.CreateArea(ctx, models.Area{Name: "North"})
	district, _ := areaRepo.CreateDistrict(ctx, models.District{Name: "Kita", AreaID: area.ID})

	staff := createTestStaff(t, repository.NewStaffRepository(db), "Aoki")
	record := createTestCase(t, caseRepo, "C-030")
	record.DistrictID = &district.ID
	caseRepo.Update(ctx, record)

	repo.Create(ctx, models.ScheduleEntry{
		StaffID: staff.ID, CaseID: &record.ID, DayOfWeek: timetext.Tuesday,
		StartTime: timetext.NewClock(14, 0), EndTime: timetext.NewClock(15, 0), Frequency: models.FrequencyWeekly,
	})
	repo.Create(ctx, models.ScheduleEntry{
		StaffID: staff.ID, DayOfWeek: timetext.Monday, Type: models.EntryTypeBlock, Label: "Training",
		StartTime: timetext.NewClock(10, 0), EndTime: timetext.NewClock(11, 0),
	})

	details, err := repo.FindActiveDetails(ctx)
	if err != nil {
		t.Fatalf("finding details: %v", err)
	}
	if len(details) != 2 {
		t.Fatalf("expected 2 details, got %d", len(details))
	}

	block, visit := details[0], details[1]
	if block.Label != "Training" || block.AreaName != "" {
		t.Errorf("unexpected block detail %+v", block)
	}
	if visit.StaffName != "Aoki" || visit.CaseNumber != "C-030" || visit.ChildGivenName != "Haruto" {
		t.Errorf("unexpected visit detail %+v", visit)
	}
	if visit.DistrictName != "Kita" || visit.AreaName != "North" {
		t.Errorf("expected Kita / North, got %s / %s", visit.DistrictName, visit.AreaName)
	}
}
