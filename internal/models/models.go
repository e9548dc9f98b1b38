package models

import (
	"time"

	"github.com/caseboard/visit-scheduler/internal/timetext"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyOnline    Frequency = "online"
	FrequencyIrregular Frequency = "irregular"
	FrequencyPaused    Frequency = "paused"
)

type UnassignedStatus string

const (
	UnassignedStatusPending  UnassignedStatus = "pending"
	UnassignedStatusAssigned UnassignedStatus = "assigned"
)

type EntryType string

const (
	EntryTypeCase  EntryType = "case"
	EntryTypeBlock EntryType = "block"
)

type User struct {
	ID          string
	OIDCSubject string
	Email       string
	Name        string
	AvatarURL   string
	Role        Role
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type APIToken struct {
	ID              string
	Name            string
	TokenHash       string
	Scope           string
	CreatedByUserID string
	ExpiresAt       *time.Time
	CreatedAt       time.Time
}

type Staff struct {
	ID          string
	Name        string
	Age         int
	Gender      string
	Region      string
	Skills      string
	PreviousJob string
	ExternalRef string
	WorkDays    timetext.DaySet
	WorkHours   timetext.Range
	Notes       string
	ReviewNote  string
	IsActive    bool

	// Summary of the most recent case binding, kept for list views.
	CaseNumber string
	CaseDays   timetext.DaySet
	CaseTime   timetext.Range

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Area struct {
	ID           string
	Name         string
	DisplayOrder int
}

type District struct {
	ID           string
	Name         string
	AreaID       string
	DisplayOrder int
}

type Case struct {
	ID               string
	CaseNumber       string
	DistrictID       *string
	Phone            string
	ChildFamilyName  string
	ChildGivenName   string
	ScheduleDays     timetext.DaySet
	ScheduleTime     timetext.Range
	Location         string
	FirstMeetingDate *time.Time
	Frequency        Frequency
	Notes            string
	IsActive         bool
	UnassignedCaseID *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type StaffCaseAssignment struct {
	StaffID      string
	CaseID       string
	AssignedDate time.Time
	IsPrimary    bool
}

type ScheduleEntry struct {
	ID        string
	StaffID   string
	CaseID    *string
	DayOfWeek timetext.Weekday
	StartTime timetext.Clock
	EndTime   timetext.Clock
	Location  string
	Type      EntryType
	Frequency Frequency
	Label     string
	IsActive  bool
	CreatedAt time.Time
}

func (entry ScheduleEntry) TimeRange() timetext.Range {
	return timetext.Range{Start: entry.StartTime, End: entry.EndTime}
}

// ScheduleEntryDetail is a schedule entry joined with the case and district
// data the weekly grid needs for labels and area filtering.
type ScheduleEntryDetail struct {
	ScheduleEntry
	StaffName      string
	CaseNumber     string
	ChildGivenName string
	DistrictName   string
	AreaName       string
}

type UnassignedCase struct {
	ID               string
	CaseNumber       string
	DistrictID       *string
	Phone            string
	ChildFamilyName  string
	ChildGivenName   string
	ChildGender      string
	ChildGrade       string
	School           string
	PreferredDays    timetext.DaySet
	PreferredTime    timetext.Range
	Frequency        Frequency
	Location         string
	FirstMeetingDate *time.Time
	Notes            string
	ReviewNote       string
	Status           UnassignedStatus
	CaseID           *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
