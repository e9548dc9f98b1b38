package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/caseboard/visit-scheduler/internal/models"
	"github.com/caseboard/visit-scheduler/internal/timetext"
	"github.com/google/uuid"
)

type StaffFilter struct {
	ActiveOnly bool
}

type StaffRepository interface {
	FindByID(ctx context.Context, id string) (models.Staff, error)
	FindAll(ctx context.Context, filter StaffFilter) ([]models.Staff, error)
	Regions(ctx context.Context) ([]string, error)
	Create(ctx context.Context, staff models.Staff) (models.Staff, error)
	Update(ctx context.Context, staff models.Staff) error
	Deactivate(ctx context.Context, id string) error
	SetCaseSummary(ctx context.Context, staffID string, caseNumber string, days timetext.DaySet, timeRange timetext.Range) error
	ClearCaseSummary(ctx context.Context, staffID string, caseNumber string) error
}

type SQLiteStaffRepository struct {
	database Querier
}

func NewStaffRepository(database Querier) *SQLiteStaffRepository {
	return &SQLiteStaffRepository{database: database}
}

const staffColumns = `id, name, age, gender, region, skills, previous_job, external_ref,
	work_days, work_hours, notes, review_note, is_active,
	case_number, case_days, case_time,
	created_at, updated_at`

func scanStaff(row rowScanner) (models.Staff, error) {
	var staff models.Staff
	err := row.Scan(
		&staff.ID, &staff.Name, &staff.Age, &staff.Gender, &staff.Region, &staff.Skills, &staff.PreviousJob, &staff.ExternalRef,
		&staff.WorkDays, &staff.WorkHours, &staff.Notes, &staff.ReviewNote, &staff.IsActive,
		&staff.CaseNumber, &staff.CaseDays, &staff.CaseTime,
		&staff.CreatedAt, &staff.UpdatedAt,
	)
	return staff, err
}

func (repository *SQLiteStaffRepository) FindByID(ctx context.Context, id string) (models.Staff, error) {
	staff, err := scanStaff(repository.database.QueryRowContext(ctx,
		"SELECT "+staffColumns+" FROM staff WHERE id = ?", id,
	))
	if err != nil {
		return models.Staff{}, wrapFind("finding staff by id", err)
	}
	return staff, nil
}

func (repository *SQLiteStaffRepository) FindAll(ctx context.Context, filter StaffFilter) ([]models.Staff, error) {
	query := "SELECT " + staffColumns + " FROM staff WHERE 1=1"
	if filter.ActiveOnly {
		query += " AND is_active = 1"
	}
	query += " ORDER BY name, id"

	rows, err := repository.database.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("finding staff: %w", err)
	}
	defer rows.Close()

	var members []models.Staff
	for rows.Next() {
		staff, err := scanStaff(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning staff: %w", err)
		}
		members = append(members, staff)
	}
	return members, rows.Err()
}

func (repository *SQLiteStaffRepository) Regions(ctx context.Context) ([]string, error) {
	rows, err := repository.database.QueryContext(ctx,
		"SELECT DISTINCT region FROM staff WHERE is_active = 1 AND region != '' ORDER BY region",
	)
	if err != nil {
		return nil, fmt.Errorf("finding regions: %w", err)
	}
	defer rows.Close()

	var regions []string
	for rows.Next() {
		var region string
		if err := rows.Scan(&region); err != nil {
			return nil, fmt.Errorf("scanning region: %w", err)
		}
		regions = append(regions, region)
	}
	return regions, rows.Err()
}

func (repository *SQLiteStaffRepository) Create(ctx context.Context, staff models.Staff) (models.Staff, error) {
	if staff.ID == "" {
		staff.ID = uuid.New().String()
	}
	now := time.Now()
	staff.CreatedAt = now
	staff.UpdatedAt = now
	staff.IsActive = true

	_, err := repository.database.ExecContext(ctx,
		"INSERT INTO staff ("+staffColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		staff.ID, staff.Name, staff.Age, staff.Gender, staff.Region, staff.Skills, staff.PreviousJob, staff.ExternalRef,
		staff.WorkDays, staff.WorkHours, staff.Notes, staff.ReviewNote, staff.IsActive,
		staff.CaseNumber, staff.CaseDays, staff.CaseTime,
		staff.CreatedAt, staff.UpdatedAt,
	)
	if err != nil {
		return models.Staff{}, fmt.Errorf("creating staff: %w", err)
	}
	return staff, nil
}

// Update writes the editable profile and availability fields. Case summary
// fields are owned by SetCaseSummary and ClearCaseSummary.
func (repository *SQLiteStaffRepository) Update(ctx context.Context, staff models.Staff) error {
	result, err := repository.database.ExecContext(ctx,
		`UPDATE staff SET name = ?, age = ?, gender = ?, region = ?, skills = ?, previous_job = ?,
			external_ref = ?, work_days = ?, work_hours = ?, notes = ?, review_note = ?, updated_at = ?
		WHERE id = ?`,
		staff.Name, staff.Age, staff.Gender, staff.Region, staff.Skills, staff.PreviousJob,
		staff.ExternalRef, staff.WorkDays, staff.WorkHours, staff.Notes, staff.ReviewNote, time.Now(),
		staff.ID,
	)
	if err != nil {
		return fmt.Errorf("updating staff: %w", err)
	}
	return requireAffected(result, "updating staff")
}

func (repository *SQLiteStaffRepository) Deactivate(ctx context.Context, id string) error {
	result, err := repository.database.ExecContext(ctx,
		"UPDATE staff SET is_active = 0, updated_at = ? WHERE id = ?", time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("deactivating staff: %w", err)
	}
	return requireAffected(result, "deactivating staff")
}

func (repository *SQLiteStaffRepository) SetCaseSummary(ctx context.Context, staffID string, caseNumber string, days timetext.DaySet, timeRange timetext.Range) error {
	result, err := repository.database.ExecContext(ctx,
		"UPDATE staff SET case_number = ?, case_days = ?, case_time = ?, updated_at = ? WHERE id = ?",
		caseNumber, days, timeRange, time.Now(), staffID,
	)
	if err != nil {
		return fmt.Errorf("setting staff case summary: %w", err)
	}
	return requireAffected(result, "setting staff case summary")
}

// ClearCaseSummary only clears the summary when it still points at caseNumber.
func (repository *SQLiteStaffRepository) ClearCaseSummary(ctx context.Context, staffID string, caseNumber string) error {
	_, err := repository.database.ExecContext(ctx,
		`UPDATE staff SET case_number = '', case_days = '', case_time = NULL, updated_at = ?
		WHERE id = ? AND case_number = ?`,
		time.Now(), staffID, caseNumber,
	)
	if err != nil {
		return fmt.Errorf("clearing staff case summary: %w", err)
	}
	return nil
}
