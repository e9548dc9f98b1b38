// Package grid lays schedule entries out on the Monday to Friday weekly board.
// It only computes geometry and labels; drawing is left to the caller.
package grid

import (
	"sort"
	"strings"

	"github.com/caseboard/visit-scheduler/internal/models"
	"github.com/caseboard/visit-scheduler/internal/timetext"
)

const (
	DayStart     = timetext.Clock(10 * timetext.MinutesPerHour)
	DayEnd       = timetext.Clock(19 * timetext.MinutesPerHour)
	SlotMinutes  = 30
	SlotsPerDay  = int(DayEnd-DayStart) / SlotMinutes
	Columns      = 5
	// MinimumSlots is the height given to an entry whose end is not after its
	// start. The bottom of the grid takes precedence, so such an entry in the
	// last row is one slot high.
	MinimumSlots = 2
)

type ColorTag string

const (
	TagA ColorTag = "A"
	TagB ColorTag = "B"
	TagC ColorTag = "C"
	TagD ColorTag = "D"
	TagE ColorTag = "E"
)

var frequencyColors = map[models.Frequency]ColorTag{
	models.FrequencyWeekly:    TagA,
	models.FrequencyBiweekly:  TagB,
	models.FrequencyMonthly:   TagC,
	models.FrequencyOnline:    TagD,
	models.FrequencyIrregular: TagE,
	models.FrequencyPaused:    TagE,
}

func ColorFor(frequency models.Frequency) ColorTag {
	if tag, ok := frequencyColors[frequency]; ok {
		return tag
	}
	return TagE
}

// AreaFilter is either AllAreas or the name of one area.
type AreaFilter string

const AllAreas AreaFilter = "all"

func (filter AreaFilter) Includes(areaName string) bool {
	name := strings.TrimSpace(string(filter))
	if name == "" || name == string(AllAreas) {
		return true
	}
	return name == areaName
}

// Rect is one block on the board. Slots are 30 minute rows counted from
// 10:00; EndSlot is exclusive. Lane/Lanes split a column when blocks overlap.
type Rect struct {
	EntryID   string
	StaffID   string
	StaffName string
	CaseID    *string
	Day       timetext.Weekday
	Column    int
	StartSlot int
	EndSlot   int
	Lane      int
	Lanes     int
	Color     ColorTag
	Label     []string
}

func (rect Rect) Height() int { return rect.EndSlot - rect.StartSlot }

type Skipped struct {
	EntryID string
	Reason  string
}

// Project returns the drawable blocks for entries inside filter.
func Project(entries []models.ScheduleEntryDetail, filter AreaFilter) []Rect {
	rects, _ := Layout(entries, filter)
	return rects
}

// Layout is Project plus the entries that had no usable geometry.
func Layout(entries []models.ScheduleEntryDetail, filter AreaFilter) ([]Rect, []Skipped) {
	var rects []Rect
	var skipped []Skipped

	for _, entry := range entries {
		if !filter.Includes(entry.AreaName) {
			continue
		}
		rect, reason := place(entry)
		if reason != "" {
			skipped = append(skipped, Skipped{EntryID: entry.ID, Reason: reason})
			continue
		}
		rects = append(rects, rect)
	}

	sort.SliceStable(rects, func(i, j int) bool {
		if rects[i].Column != rects[j].Column {
			return rects[i].Column < rects[j].Column
		}
		if rects[i].StartSlot != rects[j].StartSlot {
			return rects[i].StartSlot < rects[j].StartSlot
		}
		return rects[i].EntryID < rects[j].EntryID
	})
	assignLanes(rects)

	return rects, skipped
}

func place(entry models.ScheduleEntryDetail) (Rect, string) {
	if !entry.DayOfWeek.Valid() {
		return Rect{}, "not a weekday"
	}
	if entry.StartTime < DayStart || entry.StartTime >= DayEnd {
		return Rect{}, "starts outside 10:00-19:00"
	}

	startSlot := int(entry.StartTime-DayStart) / SlotMinutes
	endSlot := int(entry.EndTime-DayStart) / SlotMinutes
	if endSlot <= startSlot {
		endSlot = startSlot + MinimumSlots
	}
	if endSlot > SlotsPerDay {
		endSlot = SlotsPerDay
	}

	return Rect{
		EntryID:   entry.ID,
		StaffID:   entry.StaffID,
		StaffName: entry.StaffName,
		CaseID:    entry.CaseID,
		Day:       entry.DayOfWeek,
		Column:    entry.DayOfWeek.Column(),
		StartSlot: startSlot,
		EndSlot:   endSlot,
		Lanes:     1,
		Color:     ColorFor(entry.Frequency),
		Label:     label(entry),
	}, ""
}

func label(entry models.ScheduleEntryDetail) []string {
	var lines []string

	heading := entry.DistrictName + entry.ChildGivenName
	if heading == "" {
		heading = entry.Label
	}
	if heading != "" {
		lines = append(lines, heading)
	}
	lines = append(lines, entry.StartTime.String()+"-"+entry.EndTime.String())
	if entry.Location != "" {
		lines = append(lines, entry.Location)
	}
	return lines
}

// assignLanes expects rects sorted by column then start slot. Each cluster of
// overlapping blocks in a column shares its lane count.
func assignLanes(rects []Rect) {
	clusterStart := 0
	for clusterStart < len(rects) {
		clusterEnd := clusterStart
		reach := rects[clusterStart].EndSlot
		var laneEnds []int

		for clusterEnd < len(rects) &&
			rects[clusterEnd].Column == rects[clusterStart].Column &&
			(clusterEnd == clusterStart || rects[clusterEnd].StartSlot < reach) {
			rect := &rects[clusterEnd]
			lane := -1
			for i, end := range laneEnds {
				if end <= rect.StartSlot {
					lane = i
					break
				}
			}
			if lane == -1 {
				lane = len(laneEnds)
				laneEnds = append(laneEnds, 0)
			}
			laneEnds[lane] = rect.EndSlot
			rect.Lane = lane
			if rect.EndSlot > reach {
				reach = rect.EndSlot
			}
			clusterEnd++
		}

		for i := clusterStart; i < clusterEnd; i++ {
			rects[i].Lanes = len(laneEnds)
		}
		clusterStart = clusterEnd
	}
}
