package services_test

import (
	"context"
	"testing"

	"github.com/caseboard/visit-scheduler/internal/models"
	"github.com/caseboard/visit-scheduler/internal/services"
	"github.com/caseboard/visit-scheduler/internal/timetext"
)

func names(members []models.Staff) []string {
	result := make([]string, len(members))
	for i, staff := range members {
		result[i] = staff.Name
	}
	return result
}

func expectNames(t *testing.T, got []models.Staff, want ...string) {
	t.Helper()
	gotNames := names(got)
	if len(gotNames) != len(want) {
		t.Fatalf("expected %v, got %v", want, gotNames)
	}
	for i := range want {
		if gotNames[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, gotNames)
		}
	}
}

func TestSearch_DaysAreOred(t *testing.T) {
	f := newFixture(t)
	f.addStaff(t, "Fujita", "金", "10:00-17:00")
	f.addStaff(t, "Kato", "火", "10:00-17:00")

	got, err := f.matcher.Search(context.Background(), services.Criteria{
		Days: timetext.NewDaySet(timetext.Monday, timetext.Friday),
	})
	if err != nil {
		t.Fatalf("searching: %v", err)
	}
	expectNames(t, got, "Fujita")
}

func TestSearch_Filters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inputs := []services.StaffInput{
		{Name: "Aoki", Age: 28, Gender: "female", Region: "Kita-ku", Skills: "piano, reading", WorkDays: "月"},
		{Name: "Baba", Age: 45, Gender: "male", Region: "Minami-ku", Skills: "Soccer", WorkDays: "火"},
		{Name: "Chiba", Age: 52, Gender: "female", Region: "Kita-ku", Skills: "math", WorkDays: "水"},
	}
	for _, input := range inputs {
		if _, err := f.staff.AddStaff(ctx, input); err != nil {
			t.Fatalf("adding %s: %v", input.Name, err)
		}
	}

	tests := []struct {
		name     string
		criteria services.Criteria
		want     []string
	}{
		{"no filter", services.Criteria{}, []string{"Aoki", "Baba", "Chiba"}},
		{"region substring", services.Criteria{Region: "Kita"}, []string{"Aoki", "Chiba"}},
		{"age range", services.Criteria{AgeMin: 30, AgeMax: 50}, []string{"Baba"}},
		{"gender", services.Criteria{Gender: "female"}, []string{"Aoki", "Chiba"}},
		{"interests any of", services.Criteria{Interests: []string{"soccer", "math"}}, []string{"Baba", "Chiba"}},
		{"blank interests ignored", services.Criteria{Interests: []string{" "}}, []string{"Aoki", "Baba", "Chiba"}},
		{"combined", services.Criteria{Region: "Kita", AgeMax: 30}, []string{"Aoki"}},
		{"nothing matches", services.Criteria{Region: "Higashi"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.matcher.Search(ctx, tt.criteria)
			if err != nil {
				t.Fatalf("searching: %v", err)
			}
			if got == nil {
				t.Fatal("expected a non-nil result")
			}
			expectNames(t, got, tt.want...)
		})
	}
}

func TestSearch_SkipsInactiveStaff(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	gone := f.addStaff(t, "Aoki", "月", "10:00-17:00")
	f.addStaff(t, "Baba", "月", "10:00-17:00")
	if err := f.staff.DeactivateStaff(ctx, gone.ID); err != nil {
		t.Fatalf("deactivating: %v", err)
	}

	got, err := f.matcher.Search(ctx, services.Criteria{})
	if err != nil {
		t.Fatalf("searching: %v", err)
	}
	expectNames(t, got, "Baba")
}

func TestSearch_LooseTimeMatch(t *testing.T) {
	f := newFixture(t)
	f.addStaff(t, "Aoki", "月", "14:00-18:00")
	f.addStaff(t, "Baba", "月", "10:00-13:00")
	f.addStaff(t, "Chiba", "月", "")

	got, err := f.matcher.Search(context.Background(), services.Criteria{TimeRange: hours(14, 0, 15, 0)})
	if err != nil {
		t.Fatalf("searching: %v", err)
	}
	expectNames(t, got, "Aoki")
}

func TestSearch_OverlapTimeMatch(t *testing.T) {
	f := newFixture(t)
	matcher := services.NewMatcherService(f.store.Staff, f.store.ScheduleEntries, true)
	f.addStaff(t, "Aoki", "月", "10:00-17:00")
	f.addStaff(t, "Baba", "月", "10:00-13:00")
	f.addStaff(t, "Chiba", "月", "")

	got, err := matcher.Search(context.Background(), services.Criteria{TimeRange: hours(14, 0, 15, 0)})
	if err != nil {
		t.Fatalf("searching: %v", err)
	}
	expectNames(t, got, "Aoki", "Chiba")
}

func TestSearch_ExcludeOccupied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	matcher := services.NewMatcherService(f.store.Staff, f.store.ScheduleEntries, true)

	busy := f.addStaff(t, "Aoki", "火", "10:00-18:00")
	f.addStaff(t, "Baba", "火", "10:00-18:00")
	f.assign(t, f.addPending(t, "C-001", "火", "14:00-15:00").ID, busy.ID)

	tuesday := timetext.NewDaySet(timetext.Tuesday)

	tests := []struct {
		name     string
		criteria services.Criteria
		want     []string
	}{
		{"clashing slot excluded", services.Criteria{Days: tuesday, TimeRange: hours(14, 0, 15, 0), ExcludeOccupied: true}, []string{"Baba"}},
		{"without exclusion", services.Criteria{Days: tuesday, TimeRange: hours(14, 0, 15, 0)}, []string{"Aoki", "Baba"}},
		{"later slot is free", services.Criteria{Days: tuesday, TimeRange: hours(16, 0, 17, 0), ExcludeOccupied: true}, []string{"Aoki", "Baba"}},
		{"any time on the day", services.Criteria{Days: tuesday, ExcludeOccupied: true}, []string{"Baba"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := matcher.Search(ctx, tt.criteria)
			if err != nil {
				t.Fatalf("searching: %v", err)
			}
			expectNames(t, got, tt.want...)
		})
	}
}

func TestSearch_ExcludeOccupiedLooseMatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	busy := f.addStaff(t, "Aoki", "火", "14:00-18:00")
	f.addStaff(t, "Baba", "火", "14:00-18:00")
	f.assign(t, f.addPending(t, "C-001", "火", "14:00-15:00").ID, busy.ID)

	tuesday := timetext.NewDaySet(timetext.Tuesday)

	got, err := f.matcher.Search(ctx, services.Criteria{Days: tuesday, TimeRange: hours(14, 0, 15, 0), ExcludeOccupied: true})
	if err != nil {
		t.Fatalf("searching: %v", err)
	}
	expectNames(t, got, "Baba")

	got, err = f.matcher.Search(ctx, services.Criteria{Days: tuesday, TimeRange: hours(14, 0, 15, 0)})
	if err != nil {
		t.Fatalf("searching: %v", err)
	}
	expectNames(t, got, "Aoki", "Baba")
}
