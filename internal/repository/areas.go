package repository

import (
	"context"
	"fmt"

	"github.com/caseboard/visit-scheduler/internal/models"
	"github.com/google/uuid"
)

type AreaRepository interface {
	FindAllAreas(ctx context.Context) ([]models.Area, error)
	FindAreaByID(ctx context.Context, id string) (models.Area, error)
	CreateArea(ctx context.Context, area models.Area) (models.Area, error)
	FindDistricts(ctx context.Context, areaID string) ([]models.District, error)
	FindDistrictByID(ctx context.Context, id string) (models.District, error)
	CreateDistrict(ctx context.Context, district models.District) (models.District, error)
}

type SQLiteAreaRepository struct {
	database Querier
}

func NewAreaRepository(database Querier) *SQLiteAreaRepository {
	return &SQLiteAreaRepository{database: database}
}

func (repository *SQLiteAreaRepository) FindAllAreas(ctx context.Context) ([]models.Area, error) {
	rows, err := repository.database.QueryContext(ctx,
		"SELECT id, name, display_order FROM areas ORDER BY display_order, name",
	)
	if err != nil {
		return nil, fmt.Errorf("finding areas: %w", err)
	}
	defer rows.Close()

	var areas []models.Area
	for rows.Next() {
		var area models.Area
		if err := rows.Scan(&area.ID, &area.Name, &area.DisplayOrder); err != nil {
			return nil, fmt.Errorf("scanning area: %w", err)
		}
		areas = append(areas, area)
	}
	return areas, rows.Err()
}

func (repository *SQLiteAreaRepository) FindAreaByID(ctx context.Context, id string) (models.Area, error) {
	var area models.Area
	err := repository.database.QueryRowContext(ctx,
		"SELECT id, name, display_order FROM areas WHERE id = ?", id,
	).Scan(&area.ID, &area.Name, &area.DisplayOrder)
	if err != nil {
		return models.Area{}, wrapFind("finding area by id", err)
	}
	return area, nil
}

func (repository *SQLiteAreaRepository) CreateArea(ctx context.Context, area models.Area) (models.Area, error) {
	if area.ID == "" {
		area.ID = uuid.New().String()
	}
	_, err := repository.database.ExecContext(ctx,
		"INSERT INTO areas (id, name, display_order) VALUES (?, ?, ?)",
		area.ID, area.Name, area.DisplayOrder,
	)
	if err != nil {
		return models.Area{}, fmt.Errorf("creating area: %w", err)
	}
	return area, nil
}

// FindDistricts lists the districts of one area, or of every area when
// areaID is empty.
func (repository *SQLiteAreaRepository) FindDistricts(ctx context.Context, areaID string) ([]models.District, error) {
	query := "SELECT d.id, d.name, d.area_id, d.display_order FROM districts d JOIN areas a ON a.id = d.area_id"
	var args []any
	if areaID != "" {
		query += " WHERE d.area_id = ?"
		args = append(args, areaID)
	}
	query += " ORDER BY a.display_order, a.name, d.display_order, d.name"

	rows, err := repository.database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("finding districts: %w", err)
	}
	defer rows.Close()

	var districts []models.District
	for rows.Next() {
		var district models.District
		if err := rows.Scan(&district.ID, &district.Name, &district.AreaID, &district.DisplayOrder); err != nil {
			return nil, fmt.Errorf("scanning district: %w", err)
		}
		districts = append(districts, district)
	}
	return districts, rows.Err()
}

func (repository *SQLiteAreaRepository) FindDistrictByID(ctx context.Context, id string) (models.District, error) {
	var district models.District
	err := repository.database.QueryRowContext(ctx,
		"SELECT id, name, area_id, display_order FROM districts WHERE id = ?", id,
	).Scan(&district.ID, &district.Name, &district.AreaID, &district.DisplayOrder)
	if err != nil {
		return models.District{}, wrapFind("finding district by id", err)
	}
	return district, nil
}

func (repository *SQLiteAreaRepository) CreateDistrict(ctx context.Context, district models.District) (models.District, error) {
	if district.ID == "" {
		district.ID = uuid.New().String()
	}
	_, err := repository.database.ExecContext(ctx,
		"INSERT INTO districts (id, name, area_id, display_order) VALUES (?, ?, ?, ?)",
		district.ID, district.Name, district.AreaID, district.DisplayOrder,
	)
	if err != nil {
		return models.District{}, fmt.Errorf("creating district: %w", err)
	}
	return district, nil
}
