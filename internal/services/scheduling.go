package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caseboard/visit-scheduler/internal/grid"
	"github.com/caseboard/visit-scheduler/internal/models"
	"github.com/caseboard/visit-scheduler/internal/repository"
	"github.com/caseboard/visit-scheduler/internal/timetext"
)

// CaseInput is the editable part of an assigned case. ScheduleDays and
// ScheduleTime are free text; unlike intake they must parse cleanly.
type CaseInput struct {
	CaseNumber       string `json:"caseNumber" validate:"required,max=50"`
	DistrictID       string `json:"districtId"`
	Phone            string `json:"phone" validate:"max=30"`
	ChildFamilyName  string `json:"childFamilyName" validate:"max=50"`
	ChildGivenName   string `json:"childGivenName" validate:"max=50"`
	ScheduleDays     string `json:"scheduleDays" validate:"required"`
	ScheduleTime     string `json:"scheduleTime" validate:"required"`
	Location         string `json:"location"`
	FirstMeetingDate string `json:"firstMeetingDate" validate:"omitempty,datetime=2006-01-02"`
	Frequency        string `json:"frequency"`
	Notes            string `json:"notes"`
}

// BlockInput reserves time on a staff member's schedule that is not a case
// visit, such as training.
type BlockInput struct {
	Days     string `json:"days" validate:"required"`
	Time     string `json:"time" validate:"required"`
	Label    string `json:"label" validate:"required,max=100"`
	Location string `json:"location"`
}

type CaseView struct {
	models.Case
	StaffID string
	Entries []models.ScheduleEntry
}

// SchedulingService moves cases between the pending pool and staff
// schedules. Every transition checks its input and conflicts first, then
// writes in a single transaction.
type SchedulingService struct {
	staffRepo      repository.StaffRepository
	caseRepo       repository.CaseRepository
	unassignedRepo repository.UnassignedCaseRepository
	assignmentRepo repository.AssignmentRepository
	entryRepo      repository.ScheduleEntryRepository
	areaRepo       repository.AreaRepository
	unitOfWork     repository.UnitOfWork
	resolver       *ConflictResolver
}

func NewSchedulingService(repos repository.Repositories, unitOfWork repository.UnitOfWork, resolver *ConflictResolver) *SchedulingService {
	return &SchedulingService{
		staffRepo:      repos.Staff,
		caseRepo:       repos.Cases,
		unassignedRepo: repos.UnassignedCases,
		assignmentRepo: repos.Assignments,
		entryRepo:      repos.ScheduleEntries,
		areaRepo:       repos.Areas,
		unitOfWork:     unitOfWork,
		resolver:       resolver,
	}
}

// AssignCase binds a pending case to a staff member and returns the case id.
// Assigning a case again to the staff member who already holds it changes
// nothing.
func (service *SchedulingService) AssignCase(ctx context.Context, unassignedID string, staffID string) (string, error) {
	pending, err := service.unassignedRepo.FindByID(ctx, unassignedID)
	if err != nil {
		return "", err
	}
	staff, err := service.activeStaff(ctx, staffID)
	if err != nil {
		return "", err
	}

	if pending.Status == models.UnassignedStatusAssigned && pending.CaseID != nil {
		caseID, done, err := service.existingAssignment(ctx, *pending.CaseID, staffID)
		if err != nil || done {
			return caseID, err
		}
	}

	days := pending.PreferredDays
	if days.IsEmpty() {
		return "", newValidationError("preferredDays", "no weekday selected")
	}
	if pending.PreferredTime.IsZero() {
		return "", newValidationError("preferredTime", "no visit time set")
	}

	entries, err := service.entryRepo.FindByStaff(ctx, staff.ID)
	if err != nil {
		return "", fmt.Errorf("finding staff bookings: %w", err)
	}
	excludeCaseID := ""
	if pending.CaseID != nil {
		excludeCaseID = *pending.CaseID
	}
	if err := service.resolver.Resolve(staff, entries, days, pending.PreferredTime, excludeCaseID); err != nil {
		return "", err
	}

	var record models.Case
	err = service.unitOfWork.WithinTransaction(ctx, func(repos repository.Repositories) error {
		saved, err := saveAssignedCase(ctx, repos, caseFromPending(pending), pending.CaseID)
		if err != nil {
			return err
		}
		record = saved

		if _, err := repos.Assignments.Create(ctx, models.StaffCaseAssignment{
			StaffID:   staff.ID,
			CaseID:    record.ID,
			IsPrimary: true,
		}); err != nil {
			return err
		}
		if err := replaceEntries(ctx, repos, record, staff.ID); err != nil {
			return err
		}
		if err := repos.Staff.SetCaseSummary(ctx, staff.ID, record.CaseNumber, record.ScheduleDays, record.ScheduleTime); err != nil {
			return err
		}
		return repos.UnassignedCases.MarkAssigned(ctx, pending.ID, record.ID)
	})
	if err != nil {
		return "", fmt.Errorf("assigning case: %w", err)
	}

	slog.Info("case assigned", "caseId", record.ID, "caseNumber", record.CaseNumber, "staffId", staff.ID, "days", record.ScheduleDays.String())
	return record.ID, nil
}

// existingAssignment handles a pool entry that is already bound to a case.
// done is true when the caller has nothing left to do.
func (service *SchedulingService) existingAssignment(ctx context.Context, caseID string, staffID string) (string, bool, error) {
	record, err := service.caseRepo.FindByID(ctx, caseID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", true, err
	}
	if !record.IsActive {
		return "", true, newValidationError("unassignedCaseId", "case has been deactivated")
	}

	primary, err := service.assignmentRepo.FindPrimaryByCase(ctx, caseID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", true, err
	}
	if primary.StaffID != staffID {
		return "", true, newValidationError("staffId", "case is already assigned to another staff member")
	}
	return caseID, true, nil
}

// EditCase updates an active case and regenerates its schedule entries. A
// schedule change is checked against the assigned staff member first.
func (service *SchedulingService) EditCase(ctx context.Context, caseID string, input CaseInput) error {
	if err := validateStruct(input); err != nil {
		return err
	}
	record, err := service.caseRepo.FindByID(ctx, caseID)
	if err != nil {
		return err
	}
	if !record.IsActive {
		return newValidationError("caseId", "case is not active")
	}

	days := timetext.NormalizeDays(input.ScheduleDays)
	if days.IsEmpty() {
		return newValidationError("scheduleDays", "no weekday selected")
	}
	timeRange, err := timetext.Normalize(input.ScheduleTime)
	if err != nil {
		return newValidationError("scheduleTime", err.Error())
	}
	districtID, err := resolveDistrict(ctx, service.areaRepo, input.DistrictID)
	if err != nil {
		return err
	}
	caseNumber := strings.TrimSpace(input.CaseNumber)
	renumbered := caseNumber != record.CaseNumber
	if renumbered {
		if err := service.checkCaseNumberFree(ctx, caseNumber, record.UnassignedCaseID); err != nil {
			return err
		}
	}

	var staff *models.Staff
	primary, err := service.assignmentRepo.FindPrimaryByCase(ctx, caseID)
	switch {
	case err == nil:
		found, err := service.staffRepo.FindByID(ctx, primary.StaffID)
		if err != nil {
			return fmt.Errorf("finding assigned staff: %w", err)
		}
		staff = &found
	case !errors.Is(err, repository.ErrNotFound):
		return err
	}

	scheduleChanged := days != record.ScheduleDays || timeRange != record.ScheduleTime
	if scheduleChanged && staff != nil {
		entries, err := service.entryRepo.FindByStaff(ctx, staff.ID)
		if err != nil {
			return fmt.Errorf("finding staff bookings: %w", err)
		}
		if err := service.resolver.Resolve(*staff, entries, days, timeRange, caseID); err != nil {
			return err
		}
	}

	previousNumber := record.CaseNumber
	record.CaseNumber = caseNumber
	record.DistrictID = districtID
	record.Phone = strings.TrimSpace(input.Phone)
	record.ChildFamilyName = strings.TrimSpace(input.ChildFamilyName)
	record.ChildGivenName = strings.TrimSpace(input.ChildGivenName)
	record.ScheduleDays = days
	record.ScheduleTime = timeRange
	record.Location = strings.TrimSpace(input.Location)
	record.FirstMeetingDate = parseDate(input.FirstMeetingDate)
	record.Frequency = models.ParseFrequency(input.Frequency)
	record.Notes = input.Notes

	err = service.unitOfWork.WithinTransaction(ctx, func(repos repository.Repositories) error {
		if err := repos.Cases.Update(ctx, record); err != nil {
			return err
		}
		if renumbered && record.UnassignedCaseID != nil {
			if err := repos.UnassignedCases.SetCaseNumber(ctx, *record.UnassignedCaseID, record.CaseNumber); err != nil {
				return err
			}
		}
		if staff == nil {
			return nil
		}
		if err := replaceEntries(ctx, repos, record, staff.ID); err != nil {
			return err
		}
		if staff.CaseNumber == previousNumber {
			return repos.Staff.SetCaseSummary(ctx, staff.ID, record.CaseNumber, record.ScheduleDays, record.ScheduleTime)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("editing case: %w", err)
	}

	slog.Info("case edited", "caseId", caseID, "scheduleChanged", scheduleChanged)
	return nil
}

// UnassignCase returns an active case to the pending pool. Its schedule
// entries and assignments are removed and the case row is kept inactive.
func (service *SchedulingService) UnassignCase(ctx context.Context, caseID string) error {
	record, err := service.caseRepo.FindByID(ctx, caseID)
	if err != nil {
		return err
	}
	if !record.IsActive {
		return newValidationError("caseId", "case is not active")
	}
	assignments, err := service.assignmentRepo.FindByCase(ctx, caseID)
	if err != nil {
		return fmt.Errorf("finding assignments: %w", err)
	}

	err = service.unitOfWork.WithinTransaction(ctx, func(repos repository.Repositories) error {
		if _, err := repos.ScheduleEntries.DeleteByCase(ctx, caseID); err != nil {
			return err
		}
		if err := repos.Assignments.DeleteByCase(ctx, caseID); err != nil {
			return err
		}
		for _, assignment := range assignments {
			if err := repos.Staff.ClearCaseSummary(ctx, assignment.StaffID, record.CaseNumber); err != nil {
				return err
			}
		}

		pending, err := reopenPending(ctx, repos, record)
		if err != nil {
			return err
		}

		closed := record
		closed.IsActive = false
		closed.UnassignedCaseID = &pending.ID
		return repos.Cases.Update(ctx, closed)
	})
	if err != nil {
		return fmt.Errorf("unassigning case: %w", err)
	}

	slog.Info("case unassigned", "caseId", caseID, "caseNumber", record.CaseNumber)
	return nil
}

// DeactivateCase closes a case for good. Entries are kept inactive and the
// assignment stays as history.
func (service *SchedulingService) DeactivateCase(ctx context.Context, caseID string) error {
	record, err := service.caseRepo.FindByID(ctx, caseID)
	if err != nil {
		return err
	}
	assignments, err := service.assignmentRepo.FindByCase(ctx, caseID)
	if err != nil {
		return fmt.Errorf("finding assignments: %w", err)
	}

	err = service.unitOfWork.WithinTransaction(ctx, func(repos repository.Repositories) error {
		if err := repos.Cases.SetActive(ctx, caseID, false); err != nil {
			return err
		}
		if err := repos.ScheduleEntries.DeactivateByCase(ctx, caseID); err != nil {
			return err
		}
		for _, assignment := range assignments {
			if err := repos.Staff.ClearCaseSummary(ctx, assignment.StaffID, record.CaseNumber); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("deactivating case: %w", err)
	}

	slog.Info("case deactivated", "caseId", caseID)
	return nil
}

// AddBlock reserves one entry per requested day on the staff member's
// schedule. Blocks may not overlap existing bookings.
func (service *SchedulingService) AddBlock(ctx context.Context, staffID string, input BlockInput) ([]models.ScheduleEntry, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	staff, err := service.activeStaff(ctx, staffID)
	if err != nil {
		return nil, err
	}

	days := timetext.NormalizeDays(input.Days)
	if days.IsEmpty() {
		return nil, newValidationError("days", "no weekday selected")
	}
	timeRange, err := timetext.Normalize(input.Time)
	if err != nil {
		return nil, newValidationError("time", err.Error())
	}

	entries, err := service.entryRepo.FindByStaff(ctx, staff.ID)
	if err != nil {
		return nil, fmt.Errorf("finding staff bookings: %w", err)
	}
	if err := service.resolver.CheckBookings(entries, days, timeRange, ""); err != nil {
		return nil, err
	}

	var created []models.ScheduleEntry
	err = service.unitOfWork.WithinTransaction(ctx, func(repos repository.Repositories) error {
		created = nil
		for _, day := range days.Days() {
			entry, err := repos.ScheduleEntries.Create(ctx, models.ScheduleEntry{
				StaffID:   staff.ID,
				DayOfWeek: day,
				StartTime: timeRange.Start,
				EndTime:   timeRange.End,
				Location:  strings.TrimSpace(input.Location),
				Type:      models.EntryTypeBlock,
				Label:     strings.TrimSpace(input.Label),
			})
			if err != nil {
				return err
			}
			created = append(created, entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("adding block: %w", err)
	}
	return created, nil
}

func (service *SchedulingService) GetCase(ctx context.Context, caseID string) (CaseView, error) {
	record, err := service.caseRepo.FindByID(ctx, caseID)
	if err != nil {
		return CaseView{}, err
	}
	view := CaseView{Case: record}

	primary, err := service.assignmentRepo.FindPrimaryByCase(ctx, caseID)
	if err == nil {
		view.StaffID = primary.StaffID
	} else if !errors.Is(err, repository.ErrNotFound) {
		return CaseView{}, err
	}

	view.Entries, err = service.entryRepo.FindByCase(ctx, caseID)
	if err != nil {
		return CaseView{}, err
	}
	return view, nil
}

// GetStaffCases lists the active cases bound to a staff member.
func (service *SchedulingService) GetStaffCases(ctx context.Context, staffID string) ([]models.Case, error) {
	if _, err := service.staffRepo.FindByID(ctx, staffID); err != nil {
		return nil, err
	}
	cases, err := service.caseRepo.FindByStaff(ctx, staffID, true)
	if err != nil {
		return nil, err
	}
	if cases == nil {
		cases = []models.Case{}
	}
	return cases, nil
}

// GetWeeklyGrid lays out every active entry inside filter. Entries that
// cannot be placed are logged and left out.
func (service *SchedulingService) GetWeeklyGrid(ctx context.Context, filter grid.AreaFilter) ([]grid.Rect, error) {
	details, err := service.entryRepo.FindActiveDetails(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading schedule: %w", err)
	}

	rects, skipped := grid.Layout(details, filter)
	for _, skip := range skipped {
		slog.Warn("schedule entry left off the grid", "entryId", skip.EntryID, "reason", skip.Reason)
	}
	if rects == nil {
		rects = []grid.Rect{}
	}
	return rects, nil
}

func (service *SchedulingService) activeStaff(ctx context.Context, staffID string) (models.Staff, error) {
	staff, err := service.staffRepo.FindByID(ctx, staffID)
	if err != nil {
		return models.Staff{}, err
	}
	if !staff.IsActive {
		return models.Staff{}, newValidationError("staffId", "staff member is inactive")
	}
	return staff, nil
}

func caseFromPending(pending models.UnassignedCase) models.Case {
	pendingID := pending.ID
	return models.Case{
		CaseNumber:       pending.CaseNumber,
		DistrictID:       pending.DistrictID,
		Phone:            pending.Phone,
		ChildFamilyName:  pending.ChildFamilyName,
		ChildGivenName:   pending.ChildGivenName,
		ScheduleDays:     pending.PreferredDays,
		ScheduleTime:     pending.PreferredTime,
		Location:         pending.Location,
		FirstMeetingDate: pending.FirstMeetingDate,
		Frequency:        pending.Frequency,
		Notes:            pending.Notes,
		IsActive:         true,
		UnassignedCaseID: &pendingID,
	}
}

func pendingFromCase(record models.Case) models.UnassignedCase {
	caseID := record.ID
	return models.UnassignedCase{
		CaseNumber:       record.CaseNumber,
		DistrictID:       record.DistrictID,
		Phone:            record.Phone,
		ChildFamilyName:  record.ChildFamilyName,
		ChildGivenName:   record.ChildGivenName,
		PreferredDays:    record.ScheduleDays,
		PreferredTime:    record.ScheduleTime,
		Frequency:        record.Frequency,
		Location:         record.Location,
		FirstMeetingDate: record.FirstMeetingDate,
		Notes:            record.Notes,
		Status:           models.UnassignedStatusPending,
		CaseID:           &caseID,
	}
}

// reopenPending puts the pool row the case was assigned from back to
// pending, or creates one for a case with no pool row.
func reopenPending(ctx context.Context, repos repository.Repositories, record models.Case) (models.UnassignedCase, error) {
	pending := pendingFromCase(record)
	if record.UnassignedCaseID == nil {
		return repos.UnassignedCases.Create(ctx, pending)
	}
	pending.ID = *record.UnassignedCaseID
	return repos.UnassignedCases.Reopen(ctx, pending)
}

// checkCaseNumberFree rejects a case number held by any pool row other than
// the one the case came from.
func (service *SchedulingService) checkCaseNumberFree(ctx context.Context, caseNumber string, ownID *string) error {
	owner, err := service.unassignedRepo.FindByCaseNumber(ctx, caseNumber)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking case number: %w", err)
	}
	if ownID != nil && owner.ID == *ownID {
		return nil
	}
	return newValidationError("caseNumber", "already exists")
}

// saveAssignedCase reactivates the case a pool entry was last bound to, or
// creates a new one.
func saveAssignedCase(ctx context.Context, repos repository.Repositories, record models.Case, previousID *string) (models.Case, error) {
	if previousID != nil {
		existing, err := repos.Cases.FindByID(ctx, *previousID)
		switch {
		case err == nil:
			record.ID = existing.ID
			record.CreatedAt = existing.CreatedAt
			if err := repos.Cases.Update(ctx, record); err != nil {
				return models.Case{}, err
			}
			return record, nil
		case !errors.Is(err, repository.ErrNotFound):
			return models.Case{}, err
		}
	}
	return repos.Cases.Create(ctx, record)
}

// replaceEntries deletes every entry of the case before writing one entry per
// scheduled day, so the set always mirrors the case schedule.
func replaceEntries(ctx context.Context, repos repository.Repositories, record models.Case, staffID string) error {
	if _, err := repos.ScheduleEntries.DeleteByCase(ctx, record.ID); err != nil {
		return err
	}
	caseID := record.ID
	for _, day := range record.ScheduleDays.Days() {
		if _, err := repos.ScheduleEntries.Create(ctx, models.ScheduleEntry{
			StaffID:   staffID,
			CaseID:    &caseID,
			DayOfWeek: day,
			StartTime: record.ScheduleTime.Start,
			EndTime:   record.ScheduleTime.End,
			Location:  record.Location,
			Type:      models.EntryTypeCase,
			Frequency: record.Frequency,
			Label:     record.CaseNumber,
		}); err != nil {
			return err
		}
	}
	return nil
}
