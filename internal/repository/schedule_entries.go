package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/caseboard/visit-scheduler/internal/models"
	"github.com/google/uuid"
)

type ScheduleEntryRepository interface {
	Create(ctx context.Context, entry models.ScheduleEntry) (models.ScheduleEntry, error)
	FindByCase(ctx context.Context, caseID string) ([]models.ScheduleEntry, error)
	FindByStaff(ctx context.Context, staffID string) ([]models.ScheduleEntry, error)
	FindActive(ctx context.Context) ([]models.ScheduleEntry, error)
	FindActiveDetails(ctx context.Context) ([]models.ScheduleEntryDetail, error)
	DeleteByCase(ctx context.Context, caseID string) (int64, error)
	DeactivateByCase(ctx context.Context, caseID string) error
}

type SQLiteScheduleEntryRepository struct {
	database Querier
}

func NewScheduleEntryRepository(database Querier) *SQLiteScheduleEntryRepository {
	return &SQLiteScheduleEntryRepository{database: database}
}

const scheduleEntryColumns = `e.id, e.staff_id, e.case_id, e.day_of_week, e.start_minute, e.end_minute,
	e.location, e.entry_type, e.frequency, e.label, e.is_active, e.created_at`

func scheduleEntryFields(entry *models.ScheduleEntry) []any {
	return []any{
		&entry.ID, &entry.StaffID, &entry.CaseID, &entry.DayOfWeek, &entry.StartTime, &entry.EndTime,
		&entry.Location, &entry.Type, &entry.Frequency, &entry.Label, &entry.IsActive, &entry.CreatedAt,
	}
}

func (repository *SQLiteScheduleEntryRepository) Create(ctx context.Context, entry models.ScheduleEntry) (models.ScheduleEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Type == "" {
		entry.Type = models.EntryTypeCase
	}
	entry.CreatedAt = time.Now()
	entry.IsActive = true

	_, err := repository.database.ExecContext(ctx,
		`INSERT INTO schedule_entries (id, staff_id, case_id, day_of_week, start_minute, end_minute,
			location, entry_type, frequency, label, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.StaffID, entry.CaseID, int(entry.DayOfWeek), int(entry.StartTime), int(entry.EndTime),
		entry.Location, entry.Type, entry.Frequency, entry.Label, entry.IsActive, entry.CreatedAt,
	)
	if err != nil {
		return models.ScheduleEntry{}, fmt.Errorf("creating schedule entry: %w", err)
	}
	return entry, nil
}

func (repository *SQLiteScheduleEntryRepository) FindByCase(ctx context.Context, caseID string) ([]models.ScheduleEntry, error) {
	return repository.findEntries(ctx, "e.case_id = ?", caseID)
}

// FindByStaff returns the active entries of one staff member.
func (repository *SQLiteScheduleEntryRepository) FindByStaff(ctx context.Context, staffID string) ([]models.ScheduleEntry, error) {
	return repository.findEntries(ctx, "e.staff_id = ? AND e.is_active = 1", staffID)
}

func (repository *SQLiteScheduleEntryRepository) FindActive(ctx context.Context) ([]models.ScheduleEntry, error) {
	return repository.findEntries(ctx, "e.is_active = 1")
}

func (repository *SQLiteScheduleEntryRepository) findEntries(ctx context.Context, where string, args ...any) ([]models.ScheduleEntry, error) {
	rows, err := repository.database.QueryContext(ctx,
		"SELECT "+scheduleEntryColumns+" FROM schedule_entries e WHERE "+where+
			" ORDER BY e.day_of_week, e.start_minute, e.id",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("finding schedule entries: %w", err)
	}
	defer rows.Close()

	var entries []models.ScheduleEntry
	for rows.Next() {
		var entry models.ScheduleEntry
		if err := rows.Scan(scheduleEntryFields(&entry)...); err != nil {
			return nil, fmt.Errorf("scanning schedule entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// FindActiveDetails joins active entries of active staff with the case,
// district and area names the weekly grid labels and filters on.
func (repository *SQLiteScheduleEntryRepository) FindActiveDetails(ctx context.Context) ([]models.ScheduleEntryDetail, error) {
	rows, err := repository.database.QueryContext(ctx,
		"SELECT "+scheduleEntryColumns+`,
			s.name, COALESCE(c.case_number, ''), COALESCE(c.child_given_name, ''),
			COALESCE(d.name, ''), COALESCE(a.name, '')
		FROM schedule_entries e
		JOIN staff s ON s.id = e.staff_id
		LEFT JOIN cases c ON c.id = e.case_id
		LEFT JOIN districts d ON d.id = c.district_id
		LEFT JOIN areas a ON a.id = d.area_id
		WHERE e.is_active = 1 AND s.is_active = 1
		ORDER BY e.day_of_week, e.start_minute, s.name, e.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("finding schedule entry details: %w", err)
	}
	defer rows.Close()

	var details []models.ScheduleEntryDetail
	for rows.Next() {
		var detail models.ScheduleEntryDetail
		fields := append(scheduleEntryFields(&detail.ScheduleEntry),
			&detail.StaffName, &detail.CaseNumber, &detail.ChildGivenName, &detail.DistrictName, &detail.AreaName,
		)
		if err := rows.Scan(fields...); err != nil {
			return nil, fmt.Errorf("scanning schedule entry detail: %w", err)
		}
		details = append(details, detail)
	}
	return details, rows.Err()
}

func (repository *SQLiteScheduleEntryRepository) DeleteByCase(ctx context.Context, caseID string) (int64, error) {
	result, err := repository.database.ExecContext(ctx, "DELETE FROM schedule_entries WHERE case_id = ?", caseID)
	if err != nil {
		return 0, fmt.Errorf("deleting schedule entries: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleting schedule entries: %w", err)
	}
	return deleted, nil
}

func (repository *SQLiteScheduleEntryRepository) DeactivateByCase(ctx context.Context, caseID string) error {
	_, err := repository.database.ExecContext(ctx,
		"UPDATE schedule_entries SET is_active = 0 WHERE case_id = ?", caseID,
	)
	if err != nil {
		return fmt.Errorf("deactivating schedule entries: %w", err)
	}
	return nil
}
