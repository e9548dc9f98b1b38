package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/caseboard/visit-scheduler/internal/repository"
	"github.com/caseboard/visit-scheduler/internal/services"
	"github.com/caseboard/visit-scheduler/internal/timetext"
)

func TestAddStaff_NormalizesAvailability(t *testing.T) {
	f := newFixture(t)

	staff := f.addStaff(t, "Aoki", "月・水・金", "１０：００～１７：００")

	if staff.WorkDays != timetext.NewDaySet(timetext.Monday, timetext.Wednesday, timetext.Friday) {
		t.Errorf("expected Mon,Wed,Fri, got %s", staff.WorkDays)
	}
	if staff.WorkHours.String() != "10:00-17:00" {
		t.Errorf("expected 10:00-17:00, got %s", staff.WorkHours)
	}
	if staff.ReviewNote != "" {
		t.Errorf("expected no review note, got %q", staff.ReviewNote)
	}
	if !staff.IsActive {
		t.Error("expected new staff to be active")
	}
}

func TestAddStaff_DefaultsMalformedHours(t *testing.T) {
	f := newFixture(t)

	staff := f.addStaff(t, "Aoki", "月", "14:00-later")

	if staff.WorkHours.String() != "14:00-15:00" {
		t.Errorf("expected one hour default, got %s", staff.WorkHours)
	}
	if !strings.Contains(staff.ReviewNote, "work hours") {
		t.Errorf("expected review note about work hours, got %q", staff.ReviewNote)
	}
}

func TestAddStaff_ValidationError(t *testing.T) {
	f := newFixture(t)

	_, err := f.staff.AddStaff(context.Background(), services.StaffInput{Age: 130})

	var validationErr *services.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if validationErr.Fields["name"] != "is required" {
		t.Errorf("expected name to be required, got %v", validationErr.Fields)
	}
	if _, ok := validationErr.Fields["age"]; !ok {
		t.Errorf("expected age error, got %v", validationErr.Fields)
	}
}

func TestUpdateStaff_PatchesOnlySetFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	staff := f.addStaff(t, "Aoki", "月", "14:00-later")
	region := "Minami"

	updated, err := f.staff.UpdateStaff(ctx, staff.ID, services.StaffPatch{Region: &region})
	if err != nil {
		t.Fatalf("updating staff: %v", err)
	}
	if updated.Region != "Minami" || updated.Name != "Aoki" {
		t.Errorf("unexpected staff after patch: %+v", updated)
	}
	if updated.ReviewNote == "" {
		t.Error("expected review note to survive a patch that leaves availability alone")
	}

	hoursText := "10:00-16:00"
	updated, err = f.staff.UpdateStaff(ctx, staff.ID, services.StaffPatch{WorkHours: &hoursText})
	if err != nil {
		t.Fatalf("updating hours: %v", err)
	}
	if updated.WorkHours.String() != "10:00-16:00" {
		t.Errorf("expected new hours, got %s", updated.WorkHours)
	}
	if updated.ReviewNote != "" {
		t.Errorf("expected review note cleared once hours parse, got %q", updated.ReviewNote)
	}

	stored, err := f.staff.GetStaff(ctx, staff.ID)
	if err != nil {
		t.Fatalf("getting staff: %v", err)
	}
	if stored.Region != "Minami" || stored.WorkHours.String() != "10:00-16:00" {
		t.Errorf("expected patch to be stored, got %+v", stored)
	}
}

func TestUpdateStaff_NotFound(t *testing.T) {
	f := newFixture(t)

	name := "Nobody"
	_, err := f.staff.UpdateStaff(context.Background(), "missing", services.StaffPatch{Name: &name})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListStaff_IncludeInactive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	gone := f.addStaff(t, "Aoki", "月", "")
	f.addStaff(t, "Baba", "月", "")
	if err := f.staff.DeactivateStaff(ctx, gone.ID); err != nil {
		t.Fatalf("deactivating: %v", err)
	}

	active, err := f.staff.ListStaff(ctx, false)
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	all, err := f.staff.ListStaff(ctx, true)
	if err != nil {
		t.Fatalf("listing all: %v", err)
	}
	if len(active) != 1 || len(all) != 2 {
		t.Errorf("expected 1 active and 2 total, got %d and %d", len(active), len(all))
	}
}

func TestStatistics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inputs := []services.StaffInput{
		{Name: "Aoki", Age: 24, Gender: "female", Region: "Kita"},
		{Name: "Baba", Age: 38, Gender: "male", Region: "Kita"},
		{Name: "Chiba", Age: 38, Gender: "female", Region: "Minami"},
		{Name: "Doi", Age: 61, Gender: "female", Region: "Nishi"},
	}
	for _, input := range inputs {
		if _, err := f.staff.AddStaff(ctx, input); err != nil {
			t.Fatalf("adding %s: %v", input.Name, err)
		}
	}

	stats, err := f.staff.Statistics(ctx)
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}

	if stats.Total != 4 {
		t.Errorf("expected total 4, got %d", stats.Total)
	}
	if stats.ByGender["female"] != 3 || stats.ByGender["male"] != 1 {
		t.Errorf("unexpected gender counts %v", stats.ByGender)
	}
	if stats.ByAgeGroup["20s"] != 1 || stats.ByAgeGroup["30s"] != 2 || stats.ByAgeGroup["50+"] != 1 {
		t.Errorf("unexpected age groups %v", stats.ByAgeGroup)
	}
	if stats.ByRegion["Kita"] != 2 {
		t.Errorf("unexpected region counts %v", stats.ByRegion)
	}

	regions, err := f.staff.Regions(ctx)
	if err != nil {
		t.Fatalf("regions: %v", err)
	}
	if strings.Join(regions, ",") != "Kita,Minami,Nishi" {
		t.Errorf("expected sorted distinct regions, got %v", regions)
	}
}
