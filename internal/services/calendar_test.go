package services

import (
	"testing"
	"time"

	"github.com/caseboard/visit-scheduler/internal/models"
	"github.com/caseboard/visit-scheduler/internal/timetext"
)

func TestRecurrenceRule(t *testing.T) {
	firstTuesday := time.Date(2026, 4, 7, 0, 0, 0, 0, time.UTC)
	thirdFriday := time.Date(2026, 4, 17, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		frequency models.Frequency
		weekday   timetext.Weekday
		day       time.Time
		expected  string
	}{
		{"weekly", models.FrequencyWeekly, timetext.Tuesday, firstTuesday, "FREQ=WEEKLY;BYDAY=TU"},
		{"unset is weekly", "", timetext.Tuesday, firstTuesday, "FREQ=WEEKLY;BYDAY=TU"},
		{"online is weekly", models.FrequencyOnline, timetext.Tuesday, firstTuesday, "FREQ=WEEKLY;BYDAY=TU"},
		{"biweekly", models.FrequencyBiweekly, timetext.Tuesday, firstTuesday, "FREQ=WEEKLY;INTERVAL=2;BYDAY=TU"},
		{"monthly first week", models.FrequencyMonthly, timetext.Tuesday, firstTuesday, "FREQ=MONTHLY;BYDAY=1TU"},
		{"monthly third week", models.FrequencyMonthly, timetext.Friday, thirdFriday, "FREQ=MONTHLY;BYDAY=3FR"},
		{"irregular has no rule", models.FrequencyIrregular, timetext.Tuesday, firstTuesday, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := recurrenceRule(tt.frequency, tt.weekday, tt.day); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestStartOfWeek(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
	}{
		{"monday", time.Date(2026, 4, 6, 18, 30, 0, 0, time.UTC)},
		{"wednesday", time.Date(2026, 4, 8, 9, 0, 0, 0, time.UTC)},
		{"sunday", time.Date(2026, 4, 12, 23, 0, 0, 0, time.UTC)},
	}

	expected := time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := startOfWeek(tt.in); !got.Equal(expected) {
				t.Errorf("expected %s, got %s", expected, got)
			}
		})
	}
}
