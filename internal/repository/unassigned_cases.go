package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/caseboard/visit-scheduler/internal/models"
	"github.com/google/uuid"
)

type UnassignedCaseRepository interface {
	FindByID(ctx context.Context, id string) (models.UnassignedCase, error)
	FindByCaseNumber(ctx context.Context, caseNumber string) (models.UnassignedCase, error)
	FindAll(ctx context.Context, status models.UnassignedStatus) ([]models.UnassignedCase, error)
	Create(ctx context.Context, pending models.UnassignedCase) (models.UnassignedCase, error)
	Reopen(ctx context.Context, pending models.UnassignedCase) (models.UnassignedCase, error)
	SetCaseNumber(ctx context.Context, id string, caseNumber string) error
	MarkAssigned(ctx context.Context, id string, caseID string) error
}

type SQLiteUnassignedCaseRepository struct {
	database Querier
}

func NewUnassignedCaseRepository(database Querier) *SQLiteUnassignedCaseRepository {
	return &SQLiteUnassignedCaseRepository{database: database}
}

const unassignedCaseColumns = `id, case_number, district_id, phone, child_family_name, child_given_name,
	child_gender, child_grade, school, preferred_days, preferred_time, frequency, location,
	first_meeting_date, notes, review_note, status, case_id, created_at, updated_at`

func scanUnassignedCase(row rowScanner) (models.UnassignedCase, error) {
	var pending models.UnassignedCase
	err := row.Scan(
		&pending.ID, &pending.CaseNumber, &pending.DistrictID, &pending.Phone, &pending.ChildFamilyName, &pending.ChildGivenName,
		&pending.ChildGender, &pending.ChildGrade, &pending.School, &pending.PreferredDays, &pending.PreferredTime, &pending.Frequency, &pending.Location,
		&pending.FirstMeetingDate, &pending.Notes, &pending.ReviewNote, &pending.Status, &pending.CaseID, &pending.CreatedAt, &pending.UpdatedAt,
	)
	return pending, err
}

func (repository *SQLiteUnassignedCaseRepository) FindByID(ctx context.Context, id string) (models.UnassignedCase, error) {
	pending, err := scanUnassignedCase(repository.database.QueryRowContext(ctx,
		"SELECT "+unassignedCaseColumns+" FROM unassigned_cases WHERE id = ?", id,
	))
	if err != nil {
		return models.UnassignedCase{}, wrapFind("finding unassigned case by id", err)
	}
	return pending, nil
}

func (repository *SQLiteUnassignedCaseRepository) FindByCaseNumber(ctx context.Context, caseNumber string) (models.UnassignedCase, error) {
	pending, err := scanUnassignedCase(repository.database.QueryRowContext(ctx,
		"SELECT "+unassignedCaseColumns+" FROM unassigned_cases WHERE case_number = ?", caseNumber,
	))
	if err != nil {
		return models.UnassignedCase{}, wrapFind("finding unassigned case by number", err)
	}
	return pending, nil
}

// FindAll lists the pool with pending cases first. An empty status lists
// every case.
func (repository *SQLiteUnassignedCaseRepository) FindAll(ctx context.Context, status models.UnassignedStatus) ([]models.UnassignedCase, error) {
	query := "SELECT " + unassignedCaseColumns + " FROM unassigned_cases WHERE 1=1"
	var args []any
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY CASE status WHEN 'pending' THEN 0 ELSE 1 END, case_number"

	rows, err := repository.database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("finding unassigned cases: %w", err)
	}
	defer rows.Close()

	var pool []models.UnassignedCase
	for rows.Next() {
		pending, err := scanUnassignedCase(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning unassigned case: %w", err)
		}
		pool = append(pool, pending)
	}
	return pool, rows.Err()
}

func (repository *SQLiteUnassignedCaseRepository) Create(ctx context.Context, pending models.UnassignedCase) (models.UnassignedCase, error) {
	if pending.ID == "" {
		pending.ID = uuid.New().String()
	}
	if pending.Status == "" {
		pending.Status = models.UnassignedStatusPending
	}
	now := time.Now()
	pending.CreatedAt = now
	pending.UpdatedAt = now

	_, err := repository.database.ExecContext(ctx,
		"INSERT INTO unassigned_cases ("+unassignedCaseColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		pending.ID, pending.CaseNumber, pending.DistrictID, pending.Phone, pending.ChildFamilyName, pending.ChildGivenName,
		pending.ChildGender, pending.ChildGrade, pending.School, pending.PreferredDays, pending.PreferredTime, pending.Frequency, pending.Location,
		pending.FirstMeetingDate, pending.Notes, pending.ReviewNote, pending.Status, pending.CaseID, pending.CreatedAt, pending.UpdatedAt,
	)
	if err != nil {
		return models.UnassignedCase{}, fmt.Errorf("creating unassigned case: %w", err)
	}
	return pending, nil
}

// Reopen puts the row with pending.ID back to pending and overwrites its
// descriptive fields. Child gender, grade and school are kept when pending
// leaves them empty.
func (repository *SQLiteUnassignedCaseRepository) Reopen(ctx context.Context, pending models.UnassignedCase) (models.UnassignedCase, error) {
	result, err := repository.database.ExecContext(ctx,
		`UPDATE unassigned_cases SET
			case_number = ?,
			district_id = ?,
			phone = ?,
			child_family_name = ?,
			child_given_name = ?,
			child_gender = COALESCE(NULLIF(?, ''), child_gender),
			child_grade = COALESCE(NULLIF(?, ''), child_grade),
			school = COALESCE(NULLIF(?, ''), school),
			preferred_days = ?,
			preferred_time = ?,
			frequency = ?,
			location = ?,
			first_meeting_date = ?,
			notes = ?,
			status = ?,
			case_id = ?,
			updated_at = ?
		WHERE id = ?`,
		pending.CaseNumber, pending.DistrictID, pending.Phone, pending.ChildFamilyName, pending.ChildGivenName,
		pending.ChildGender, pending.ChildGrade, pending.School,
		pending.PreferredDays, pending.PreferredTime, pending.Frequency, pending.Location,
		pending.FirstMeetingDate, pending.Notes, models.UnassignedStatusPending, pending.CaseID, time.Now(),
		pending.ID,
	)
	if err != nil {
		return models.UnassignedCase{}, fmt.Errorf("reopening unassigned case: %w", err)
	}
	if err := requireAffected(result, "reopening unassigned case"); err != nil {
		return models.UnassignedCase{}, err
	}
	return repository.FindByID(ctx, pending.ID)
}

func (repository *SQLiteUnassignedCaseRepository) SetCaseNumber(ctx context.Context, id string, caseNumber string) error {
	result, err := repository.database.ExecContext(ctx,
		"UPDATE unassigned_cases SET case_number = ?, updated_at = ? WHERE id = ?",
		caseNumber, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("renumbering unassigned case: %w", err)
	}
	return requireAffected(result, "renumbering unassigned case")
}

func (repository *SQLiteUnassignedCaseRepository) MarkAssigned(ctx context.Context, id string, caseID string) error {
	result, err := repository.database.ExecContext(ctx,
		"UPDATE unassigned_cases SET status = ?, case_id = ?, updated_at = ? WHERE id = ?",
		models.UnassignedStatusAssigned, caseID, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("marking unassigned case assigned: %w", err)
	}
	return requireAffected(result, "marking unassigned case assigned")
}
