package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caseboard/visit-scheduler/internal/models"
	"github.com/caseboard/visit-scheduler/internal/repository"
	"github.com/caseboard/visit-scheduler/internal/timetext"
)

// StaffInput is a staff record as typed into the intake form. WorkDays and
// WorkHours are free text and are normalized on save.
type StaffInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Age         int    `json:"age" validate:"gte=0,lte=120"`
	Gender      string `json:"gender" validate:"max=20"`
	Region      string `json:"region" validate:"max=100"`
	Skills      string `json:"skills"`
	PreviousJob string `json:"previousJob"`
	ExternalRef string `json:"externalRef" validate:"max=100"`
	WorkDays    string `json:"workDays"`
	WorkHours   string `json:"workHours"`
	Notes       string `json:"notes"`
}

// StaffPatch changes only the fields that are set.
type StaffPatch struct {
	Name        *string `json:"name"`
	Age         *int    `json:"age"`
	Gender      *string `json:"gender"`
	Region      *string `json:"region"`
	Skills      *string `json:"skills"`
	PreviousJob *string `json:"previousJob"`
	ExternalRef *string `json:"externalRef"`
	WorkDays    *string `json:"workDays"`
	WorkHours   *string `json:"workHours"`
	Notes       *string `json:"notes"`
	ReviewNote  *string `json:"reviewNote"`
}

func (patch StaffPatch) touchesAvailability() bool {
	return patch.WorkDays != nil || patch.WorkHours != nil
}

func (patch StaffPatch) applyTo(input *StaffInput) {
	setIf := func(target *string, value *string) {
		if value != nil {
			*target = *value
		}
	}
	setIf(&input.Name, patch.Name)
	setIf(&input.Gender, patch.Gender)
	setIf(&input.Region, patch.Region)
	setIf(&input.Skills, patch.Skills)
	setIf(&input.PreviousJob, patch.PreviousJob)
	setIf(&input.ExternalRef, patch.ExternalRef)
	setIf(&input.WorkDays, patch.WorkDays)
	setIf(&input.WorkHours, patch.WorkHours)
	setIf(&input.Notes, patch.Notes)
	if patch.Age != nil {
		input.Age = *patch.Age
	}
}

type StaffStatistics struct {
	Total      int            `json:"total"`
	ByGender   map[string]int `json:"byGender"`
	ByAgeGroup map[string]int `json:"byAgeGroup"`
	ByRegion   map[string]int `json:"byRegion"`
}

type StaffService struct {
	staffRepo  repository.StaffRepository
	unitOfWork repository.UnitOfWork
}

func NewStaffService(staffRepo repository.StaffRepository, unitOfWork repository.UnitOfWork) *StaffService {
	return &StaffService{staffRepo: staffRepo, unitOfWork: unitOfWork}
}

func (service *StaffService) AddStaff(ctx context.Context, input StaffInput) (models.Staff, error) {
	staff, err := buildStaff(input)
	if err != nil {
		return models.Staff{}, err
	}

	err = service.unitOfWork.WithinTransaction(ctx, func(repos repository.Repositories) error {
		created, err := repos.Staff.Create(ctx, staff)
		if err != nil {
			return err
		}
		staff = created
		return nil
	})
	if err != nil {
		return models.Staff{}, fmt.Errorf("adding staff: %w", err)
	}

	slog.Info("staff added", "id", staff.ID, "name", staff.Name)
	return staff, nil
}

func (service *StaffService) UpdateStaff(ctx context.Context, id string, patch StaffPatch) (models.Staff, error) {
	current, err := service.staffRepo.FindByID(ctx, id)
	if err != nil {
		return models.Staff{}, err
	}

	input := StaffInput{
		Name:        current.Name,
		Age:         current.Age,
		Gender:      current.Gender,
		Region:      current.Region,
		Skills:      current.Skills,
		PreviousJob: current.PreviousJob,
		ExternalRef: current.ExternalRef,
		WorkDays:    current.WorkDays.String(),
		WorkHours:   current.WorkHours.String(),
		Notes:       current.Notes,
	}
	patch.applyTo(&input)

	updated, err := buildStaff(input)
	if err != nil {
		return models.Staff{}, err
	}
	updated.ID = current.ID
	updated.IsActive = current.IsActive
	updated.CaseNumber = current.CaseNumber
	updated.CaseDays = current.CaseDays
	updated.CaseTime = current.CaseTime
	updated.CreatedAt = current.CreatedAt
	if !patch.touchesAvailability() {
		updated.ReviewNote = current.ReviewNote
	}
	if patch.ReviewNote != nil {
		updated.ReviewNote = *patch.ReviewNote
	}

	err = service.unitOfWork.WithinTransaction(ctx, func(repos repository.Repositories) error {
		return repos.Staff.Update(ctx, updated)
	})
	if err != nil {
		return models.Staff{}, fmt.Errorf("updating staff: %w", err)
	}
	return updated, nil
}

// DeactivateStaff hides the staff member from searches and the grid. Their
// cases and schedule entries are left untouched.
func (service *StaffService) DeactivateStaff(ctx context.Context, id string) error {
	err := service.unitOfWork.WithinTransaction(ctx, func(repos repository.Repositories) error {
		return repos.Staff.Deactivate(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("deactivating staff: %w", err)
	}
	slog.Info("staff deactivated", "id", id)
	return nil
}

func (service *StaffService) GetStaff(ctx context.Context, id string) (models.Staff, error) {
	return service.staffRepo.FindByID(ctx, id)
}

func (service *StaffService) ListStaff(ctx context.Context, includeInactive bool) ([]models.Staff, error) {
	return service.staffRepo.FindAll(ctx, repository.StaffFilter{ActiveOnly: !includeInactive})
}

func (service *StaffService) Regions(ctx context.Context) ([]string, error) {
	return service.staffRepo.Regions(ctx)
}

func (service *StaffService) Statistics(ctx context.Context) (StaffStatistics, error) {
	members, err := service.staffRepo.FindAll(ctx, repository.StaffFilter{ActiveOnly: true})
	if err != nil {
		return StaffStatistics{}, fmt.Errorf("finding staff: %w", err)
	}

	stats := StaffStatistics{
		Total:      len(members),
		ByGender:   make(map[string]int),
		ByAgeGroup: make(map[string]int),
		ByRegion:   make(map[string]int),
	}
	for _, staff := range members {
		stats.ByGender[staff.Gender]++
		stats.ByAgeGroup[ageGroup(staff.Age)]++
		stats.ByRegion[staff.Region]++
	}
	return stats, nil
}

func ageGroup(age int) string {
	switch {
	case age < 30:
		return "20s"
	case age < 40:
		return "30s"
	case age < 50:
		return "40s"
	default:
		return "50+"
	}
}

// buildStaff validates input and normalizes its availability text. Text that
// cannot be read is replaced by the documented default and flagged in
// ReviewNote instead of blocking the save.
func buildStaff(input StaffInput) (models.Staff, error) {
	if err := validateStruct(input); err != nil {
		return models.Staff{}, err
	}

	staff := models.Staff{
		Name:        strings.TrimSpace(input.Name),
		Age:         input.Age,
		Gender:      strings.TrimSpace(input.Gender),
		Region:      strings.TrimSpace(input.Region),
		Skills:      input.Skills,
		PreviousJob: input.PreviousJob,
		ExternalRef: strings.TrimSpace(input.ExternalRef),
		WorkDays:    timetext.NormalizeDays(input.WorkDays),
		Notes:       input.Notes,
	}

	var notes []string
	if strings.TrimSpace(input.WorkDays) != "" && staff.WorkDays.IsEmpty() {
		notes = append(notes, fmt.Sprintf("work days %q contain no weekday", input.WorkDays))
		slog.Warn("staff work days unreadable", "name", staff.Name, "input", input.WorkDays)
	}

	hours, parseErr := timetext.NormalizeLenient(input.WorkHours)
	staff.WorkHours = hours
	if parseErr != nil {
		notes = append(notes, "work hours "+parseErr.Error())
		slog.Warn("staff work hours defaulted", "name", staff.Name, "input", input.WorkHours, "defaulted", hours.String())
	}
	staff.ReviewNote = strings.Join(notes, "; ")

	return staff, nil
}
