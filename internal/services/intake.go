package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caseboard/visit-scheduler/internal/models"
	"github.com/caseboard/visit-scheduler/internal/repository"
	"github.com/caseboard/visit-scheduler/internal/timetext"
)

const dateLayout = "2006-01-02"

// UnassignedCaseInput is a case request from the intake workflow. Day and
// time preferences are free text.
type UnassignedCaseInput struct {
	CaseNumber       string `json:"caseNumber" validate:"required,max=50"`
	DistrictID       string `json:"districtId"`
	Phone            string `json:"phone" validate:"max=30"`
	ChildFamilyName  string `json:"childFamilyName" validate:"max=50"`
	ChildGivenName   string `json:"childGivenName" validate:"max=50"`
	ChildGender      string `json:"childGender" validate:"max=20"`
	ChildGrade       string `json:"childGrade" validate:"max=20"`
	School           string `json:"school" validate:"max=100"`
	PreferredDays    string `json:"preferredDays"`
	PreferredTime    string `json:"preferredTime"`
	Frequency        string `json:"frequency"`
	Location         string `json:"location"`
	FirstMeetingDate string `json:"firstMeetingDate" validate:"omitempty,datetime=2006-01-02"`
	Notes            string `json:"notes"`
}

type AreaInput struct {
	Name         string `json:"name" validate:"required,max=50"`
	DisplayOrder int    `json:"displayOrder" validate:"gte=0"`
}

type AreaWithDistricts struct {
	models.Area
	Districts []models.District
}

type IntakeService struct {
	areaRepo       repository.AreaRepository
	unassignedRepo repository.UnassignedCaseRepository
	unitOfWork     repository.UnitOfWork
}

func NewIntakeService(
	areaRepo repository.AreaRepository,
	unassignedRepo repository.UnassignedCaseRepository,
	unitOfWork repository.UnitOfWork,
) *IntakeService {
	return &IntakeService{
		areaRepo:       areaRepo,
		unassignedRepo: unassignedRepo,
		unitOfWork:     unitOfWork,
	}
}

// CreateUnassignedCase adds a case request to the pending pool. Unreadable
// preferred days or time are kept as far as possible and flagged in
// ReviewNote.
func (service *IntakeService) CreateUnassignedCase(ctx context.Context, input UnassignedCaseInput) (models.UnassignedCase, error) {
	if err := validateStruct(input); err != nil {
		return models.UnassignedCase{}, err
	}

	caseNumber := strings.TrimSpace(input.CaseNumber)
	if _, err := service.unassignedRepo.FindByCaseNumber(ctx, caseNumber); err == nil {
		return models.UnassignedCase{}, newValidationError("caseNumber", "already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return models.UnassignedCase{}, err
	}

	districtID, err := service.resolveDistrict(ctx, input.DistrictID)
	if err != nil {
		return models.UnassignedCase{}, err
	}

	pending := models.UnassignedCase{
		CaseNumber:      caseNumber,
		DistrictID:      districtID,
		Phone:           strings.TrimSpace(input.Phone),
		ChildFamilyName: strings.TrimSpace(input.ChildFamilyName),
		ChildGivenName:  strings.TrimSpace(input.ChildGivenName),
		ChildGender:     strings.TrimSpace(input.ChildGender),
		ChildGrade:      strings.TrimSpace(input.ChildGrade),
		School:          strings.TrimSpace(input.School),
		PreferredDays:   timetext.NormalizeDays(input.PreferredDays),
		Frequency:       models.ParseFrequency(input.Frequency),
		Location:        strings.TrimSpace(input.Location),
		Notes:           input.Notes,
		Status:          models.UnassignedStatusPending,
	}
	pending.FirstMeetingDate = parseDate(input.FirstMeetingDate)

	var notes []string
	if strings.TrimSpace(input.PreferredDays) != "" && pending.PreferredDays.IsEmpty() {
		notes = append(notes, fmt.Sprintf("preferred days %q contain no weekday", input.PreferredDays))
	}
	preferred, parseErr := timetext.NormalizeLenient(input.PreferredTime)
	pending.PreferredTime = preferred
	if parseErr != nil {
		notes = append(notes, "preferred time "+parseErr.Error())
	}
	if len(notes) > 0 {
		pending.ReviewNote = strings.Join(notes, "; ")
		slog.Warn("unassigned case needs review", "caseNumber", caseNumber, "note", pending.ReviewNote)
	}

	err = service.unitOfWork.WithinTransaction(ctx, func(repos repository.Repositories) error {
		created, err := repos.UnassignedCases.Create(ctx, pending)
		if err != nil {
			return err
		}
		pending = created
		return nil
	})
	if err != nil {
		return models.UnassignedCase{}, fmt.Errorf("creating unassigned case: %w", err)
	}

	slog.Info("unassigned case created", "id", pending.ID, "caseNumber", pending.CaseNumber)
	return pending, nil
}

// ListUnassigned lists the pool, pending cases first. An empty status lists
// every case.
func (service *IntakeService) ListUnassigned(ctx context.Context, status models.UnassignedStatus) ([]models.UnassignedCase, error) {
	return service.unassignedRepo.FindAll(ctx, status)
}

func (service *IntakeService) GetUnassigned(ctx context.Context, id string) (models.UnassignedCase, error) {
	return service.unassignedRepo.FindByID(ctx, id)
}

func (service *IntakeService) ListAreas(ctx context.Context) ([]AreaWithDistricts, error) {
	areas, err := service.areaRepo.FindAllAreas(ctx)
	if err != nil {
		return nil, err
	}
	districts, err := service.areaRepo.FindDistricts(ctx, "")
	if err != nil {
		return nil, err
	}

	byArea := make(map[string][]models.District)
	for _, district := range districts {
		byArea[district.AreaID] = append(byArea[district.AreaID], district)
	}

	result := make([]AreaWithDistricts, 0, len(areas))
	for _, area := range areas {
		result = append(result, AreaWithDistricts{Area: area, Districts: byArea[area.ID]})
	}
	return result, nil
}

func (service *IntakeService) CreateArea(ctx context.Context, input AreaInput) (models.Area, error) {
	if err := validateStruct(input); err != nil {
		return models.Area{}, err
	}

	area := models.Area{Name: strings.TrimSpace(input.Name), DisplayOrder: input.DisplayOrder}
	err := service.unitOfWork.WithinTransaction(ctx, func(repos repository.Repositories) error {
		created, err := repos.Areas.CreateArea(ctx, area)
		if err != nil {
			return err
		}
		area = created
		return nil
	})
	if err != nil {
		return models.Area{}, fmt.Errorf("creating area: %w", err)
	}
	return area, nil
}

func (service *IntakeService) CreateDistrict(ctx context.Context, areaID string, input AreaInput) (models.District, error) {
	if err := validateStruct(input); err != nil {
		return models.District{}, err
	}
	if _, err := service.areaRepo.FindAreaByID(ctx, areaID); err != nil {
		return models.District{}, err
	}

	district := models.District{Name: strings.TrimSpace(input.Name), AreaID: areaID, DisplayOrder: input.DisplayOrder}
	err := service.unitOfWork.WithinTransaction(ctx, func(repos repository.Repositories) error {
		created, err := repos.Areas.CreateDistrict(ctx, district)
		if err != nil {
			return err
		}
		district = created
		return nil
	})
	if err != nil {
		return models.District{}, fmt.Errorf("creating district: %w", err)
	}
	return district, nil
}

func (service *IntakeService) resolveDistrict(ctx context.Context, districtID string) (*string, error) {
	return resolveDistrict(ctx, service.areaRepo, districtID)
}

func resolveDistrict(ctx context.Context, areaRepo repository.AreaRepository, districtID string) (*string, error) {
	districtID = strings.TrimSpace(districtID)
	if districtID == "" {
		return nil, nil
	}
	if _, err := areaRepo.FindDistrictByID(ctx, districtID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newValidationError("districtId", "unknown district")
		}
		return nil, err
	}
	return &districtID, nil
}

// parseDate expects input already checked by the datetime validator.
func parseDate(text string) *time.Time {
	if text == "" {
		return nil
	}
	parsed, err := time.Parse(dateLayout, text)
	if err != nil {
		return nil
	}
	return &parsed
}
