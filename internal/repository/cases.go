package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/caseboard/visit-scheduler/internal/models"
	"github.com/google/uuid"
)

type CaseRepository interface {
	FindByID(ctx context.Context, id string) (models.Case, error)
	FindByStaff(ctx context.Context, staffID string, activeOnly bool) ([]models.Case, error)
	Create(ctx context.Context, record models.Case) (models.Case, error)
	Update(ctx context.Context, record models.Case) error
	SetActive(ctx context.Context, id string, active bool) error
}

type SQLiteCaseRepository struct {
	database Querier
}

func NewCaseRepository(database Querier) *SQLiteCaseRepository {
	return &SQLiteCaseRepository{database: database}
}

const caseColumns = `c.id, c.case_number, c.district_id, c.phone, c.child_family_name, c.child_given_name,
	c.schedule_days, c.schedule_time, c.location, c.first_meeting_date, c.frequency, c.notes,
	c.is_active, c.unassigned_case_id, c.created_at, c.updated_at`

func scanCase(row rowScanner) (models.Case, error) {
	var record models.Case
	err := row.Scan(
		&record.ID, &record.CaseNumber, &record.DistrictID, &record.Phone, &record.ChildFamilyName, &record.ChildGivenName,
		&record.ScheduleDays, &record.ScheduleTime, &record.Location, &record.FirstMeetingDate, &record.Frequency, &record.Notes,
		&record.IsActive, &record.UnassignedCaseID, &record.CreatedAt, &record.UpdatedAt,
	)
	return record, err
}

func (repository *SQLiteCaseRepository) FindByID(ctx context.Context, id string) (models.Case, error) {
	record, err := scanCase(repository.database.QueryRowContext(ctx,
		"SELECT "+caseColumns+" FROM cases c WHERE c.id = ?", id,
	))
	if err != nil {
		return models.Case{}, wrapFind("finding case by id", err)
	}
	return record, nil
}

func (repository *SQLiteCaseRepository) FindByStaff(ctx context.Context, staffID string, activeOnly bool) ([]models.Case, error) {
	query := "SELECT " + caseColumns + `
		FROM cases c JOIN staff_case_assignments a ON a.case_id = c.id
		WHERE a.staff_id = ?`
	if activeOnly {
		query += " AND c.is_active = 1"
	}
	query += " ORDER BY c.case_number, c.id"

	rows, err := repository.database.QueryContext(ctx, query, staffID)
	if err != nil {
		return nil, fmt.Errorf("finding cases by staff: %w", err)
	}
	defer rows.Close()

	var cases []models.Case
	for rows.Next() {
		record, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning case: %w", err)
		}
		cases = append(cases, record)
	}
	return cases, rows.Err()
}

func (repository *SQLiteCaseRepository) Create(ctx context.Context, record models.Case) (models.Case, error) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now
	record.IsActive = true

	_, err := repository.database.ExecContext(ctx,
		`INSERT INTO cases (id, case_number, district_id, phone, child_family_name, child_given_name,
			schedule_days, schedule_time, location, first_meeting_date, frequency, notes,
			is_active, unassigned_case_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.CaseNumber, record.DistrictID, record.Phone, record.ChildFamilyName, record.ChildGivenName,
		record.ScheduleDays, record.ScheduleTime, record.Location, record.FirstMeetingDate, record.Frequency, record.Notes,
		record.IsActive, record.UnassignedCaseID, record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return models.Case{}, fmt.Errorf("creating case: %w", err)
	}
	return record, nil
}

func (repository *SQLiteCaseRepository) Update(ctx context.Context, record models.Case) error {
	result, err := repository.database.ExecContext(ctx,
		`UPDATE cases SET case_number = ?, district_id = ?, phone = ?, child_family_name = ?, child_given_name = ?,
			schedule_days = ?, schedule_time = ?, location = ?, first_meeting_date = ?, frequency = ?, notes = ?,
			is_active = ?, unassigned_case_id = ?, updated_at = ?
		WHERE id = ?`,
		record.CaseNumber, record.DistrictID, record.Phone, record.ChildFamilyName, record.ChildGivenName,
		record.ScheduleDays, record.ScheduleTime, record.Location, record.FirstMeetingDate, record.Frequency, record.Notes,
		record.IsActive, record.UnassignedCaseID, time.Now(),
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("updating case: %w", err)
	}
	return requireAffected(result, "updating case")
}

func (repository *SQLiteCaseRepository) SetActive(ctx context.Context, id string, active bool) error {
	result, err := repository.database.ExecContext(ctx,
		"UPDATE cases SET is_active = ?, updated_at = ? WHERE id = ?", active, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("setting case active flag: %w", err)
	}
	return requireAffected(result, "setting case active flag")
}
