package services

import (
	"context"
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/caseboard/visit-scheduler/internal/models"
	"github.com/caseboard/visit-scheduler/internal/timetext"
)

// Floating local time; schedules carry no time zone.
const icalDateTime = "20060102T150405"

var icalDays = map[timetext.Weekday]string{
	timetext.Monday:    "MO",
	timetext.Tuesday:   "TU",
	timetext.Wednesday: "WE",
	timetext.Thursday:  "TH",
	timetext.Friday:    "FR",
}

// StaffCalendar renders one staff member's active schedule as an iCalendar
// feed. Each entry becomes a recurring event whose first occurrence falls in
// the week containing weekOf.
func (service *SchedulingService) StaffCalendar(ctx context.Context, staffID string, weekOf time.Time) (string, error) {
	staff, err := service.staffRepo.FindByID(ctx, staffID)
	if err != nil {
		return "", err
	}
	entries, err := service.entryRepo.FindByStaff(ctx, staffID)
	if err != nil {
		return "", fmt.Errorf("finding staff schedule: %w", err)
	}
	return buildCalendar(staff, entries, weekOf), nil
}

func buildCalendar(staff models.Staff, entries []models.ScheduleEntry, weekOf time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//visit-scheduler//staff schedule//EN")
	cal.SetXWRCalName(staff.Name)

	monday := startOfWeek(weekOf)
	stamp := weekOf.UTC()

	for _, entry := range entries {
		if entry.Frequency == models.FrequencyPaused || !entry.DayOfWeek.Valid() {
			continue
		}
		day := monday.AddDate(0, 0, entry.DayOfWeek.Column())
		start := day.Add(time.Duration(entry.StartTime) * time.Minute)
		end := day.Add(time.Duration(entry.EndTime) * time.Minute)

		event := cal.AddEvent(entry.ID + "@visit-scheduler")
		event.SetDtStampTime(stamp)
		event.SetProperty(ical.ComponentPropertyDtStart, start.Format(icalDateTime))
		event.SetProperty(ical.ComponentPropertyDtEnd, end.Format(icalDateTime))
		event.SetSummary(entry.Label)
		if entry.Location != "" {
			event.SetLocation(entry.Location)
		}
		if rule := recurrenceRule(entry.Frequency, entry.DayOfWeek, day); rule != "" {
			event.AddRrule(rule)
		}
	}

	return cal.Serialize()
}

// recurrenceRule maps a visit frequency onto an RRULE. Irregular visits are
// single events.
func recurrenceRule(frequency models.Frequency, weekday timetext.Weekday, day time.Time) string {
	byDay := icalDays[weekday]
	switch frequency {
	case models.FrequencyIrregular:
		return ""
	case models.FrequencyBiweekly:
		return "FREQ=WEEKLY;INTERVAL=2;BYDAY=" + byDay
	case models.FrequencyMonthly:
		return fmt.Sprintf("FREQ=MONTHLY;BYDAY=%d%s", (day.Day()-1)/7+1, byDay)
	default:
		return "FREQ=WEEKLY;BYDAY=" + byDay
	}
}

func startOfWeek(t time.Time) time.Time {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(midnight.Weekday()) + 6) % 7
	return midnight.AddDate(0, 0, -offset)
}
