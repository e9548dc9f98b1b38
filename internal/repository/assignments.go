package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/caseboard/visit-scheduler/internal/models"
)

type AssignmentRepository interface {
	Create(ctx context.Context, assignment models.StaffCaseAssignment) (bool, error)
	FindByCase(ctx context.Context, caseID string) ([]models.StaffCaseAssignment, error)
	FindPrimaryByCase(ctx context.Context, caseID string) (models.StaffCaseAssignment, error)
	DeleteByCase(ctx context.Context, caseID string) error
}

type SQLiteAssignmentRepository struct {
	database Querier
}

func NewAssignmentRepository(database Querier) *SQLiteAssignmentRepository {
	return &SQLiteAssignmentRepository{database: database}
}

// Create inserts the pair unless it already exists and reports whether a row
// was written.
func (repository *SQLiteAssignmentRepository) Create(ctx context.Context, assignment models.StaffCaseAssignment) (bool, error) {
	if assignment.AssignedDate.IsZero() {
		assignment.AssignedDate = time.Now()
	}

	result, err := repository.database.ExecContext(ctx,
		`INSERT INTO staff_case_assignments (staff_id, case_id, assigned_date, is_primary)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (staff_id, case_id) DO NOTHING`,
		assignment.StaffID, assignment.CaseID, assignment.AssignedDate, assignment.IsPrimary,
	)
	if err != nil {
		return false, fmt.Errorf("creating assignment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("creating assignment: %w", err)
	}
	return affected > 0, nil
}

func (repository *SQLiteAssignmentRepository) FindByCase(ctx context.Context, caseID string) ([]models.StaffCaseAssignment, error) {
	rows, err := repository.database.QueryContext(ctx,
		`SELECT staff_id, case_id, assigned_date, is_primary
		FROM staff_case_assignments WHERE case_id = ?
		ORDER BY is_primary DESC, assigned_date DESC`, caseID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding assignments by case: %w", err)
	}
	defer rows.Close()

	var assignments []models.StaffCaseAssignment
	for rows.Next() {
		var assignment models.StaffCaseAssignment
		if err := rows.Scan(&assignment.StaffID, &assignment.CaseID, &assignment.AssignedDate, &assignment.IsPrimary); err != nil {
			return nil, fmt.Errorf("scanning assignment: %w", err)
		}
		assignments = append(assignments, assignment)
	}
	return assignments, rows.Err()
}

func (repository *SQLiteAssignmentRepository) FindPrimaryByCase(ctx context.Context, caseID string) (models.StaffCaseAssignment, error) {
	var assignment models.StaffCaseAssignment
	err := repository.database.QueryRowContext(ctx,
		`SELECT staff_id, case_id, assigned_date, is_primary
		FROM staff_case_assignments WHERE case_id = ?
		ORDER BY is_primary DESC, assigned_date DESC LIMIT 1`, caseID,
	).Scan(&assignment.StaffID, &assignment.CaseID, &assignment.AssignedDate, &assignment.IsPrimary)
	if err != nil {
		return models.StaffCaseAssignment{}, wrapFind("finding primary assignment", err)
	}
	return assignment, nil
}

func (repository *SQLiteAssignmentRepository) DeleteByCase(ctx context.Context, caseID string) error {
	_, err := repository.database.ExecContext(ctx, "DELETE FROM staff_case_assignments WHERE case_id = ?", caseID)
	if err != nil {
		return fmt.Errorf("deleting assignments: %w", err)
	}
	return nil
}
