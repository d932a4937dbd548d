package repository

import (
	"context"
	"database/sql"
	"fmt"

	"parkhub/internal/database"
	"parkhub/internal/models"
)

type SpaceRepository struct {
	db *database.DB
}

func NewSpaceRepository(db *database.DB) *SpaceRepository {
	return &SpaceRepository{db: db}
}

const spaceColumns = `id, number, floor, section, type, status, hourly_rate_cents,
	       pos_x, pos_y, created_at, updated_at`

func scanSpace(row interface{ Scan(...interface{}) error }) (*models.ParkingSpace, error) {
	s := &models.ParkingSpace{}
	err := row.Scan(
		&s.ID,
		&s.Number,
		&s.Floor,
		&s.Section,
		&s.Type,
		&s.Status,
		&s.HourlyRateCents,
		&s.PosX,
		&s.PosY,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SpaceRepository) GetSpace(ctx context.Context, id string) (*models.ParkingSpace, error) {
	query := `SELECT ` + spaceColumns + ` FROM parking_spaces WHERE id = $1`

	space, err := scanSpace(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return space, err
}

func (r *SpaceRepository) List(ctx context.Context, filter models.ListSpacesFilter) ([]models.ParkingSpace, error) {
	query := `SELECT ` + spaceColumns + ` FROM parking_spaces WHERE 1=1`
	var args []interface{}
	argIndex := 1

	if filter.Floor != nil {
		query += fmt.Sprintf(" AND floor = $%d", argIndex)
		args = append(args, *filter.Floor)
		argIndex++
	}

	if filter.Section != nil {
		query += fmt.Sprintf(" AND section = $%d", argIndex)
		args = append(args, *filter.Section)
		argIndex++
	}

	if filter.Type != nil {
		query += fmt.Sprintf(" AND type = $%d", argIndex)
		args = append(args, *filter.Type)
		argIndex++
	}

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, *filter.Status)
		argIndex++
	}

	if filter.AvailableOnly {
		query += " AND status = 'available'"
	}

	query += " ORDER BY floor, section, number"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var spaces []models.ParkingSpace
	for rows.Next() {
		s, err := scanSpace(rows)
		if err != nil {
			return nil, err
		}
		spaces = append(spaces, *s)
	}

	return spaces, rows.Err()
}

func (r *SpaceRepository) Create(ctx context.Context, s *models.ParkingSpace) error {
	query := `
		INSERT INTO parking_spaces (number, floor, section, type, status, hourly_rate_cents, pos_x, pos_y)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		s.Number,
		s.Floor,
		s.Section,
		s.Type,
		s.Status,
		s.HourlyRateCents,
		s.PosX,
		s.PosY,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// UpdateStatus is the staff-facing status override. It reports the previous
// status so callers can publish the change.
func (r *SpaceRepository) UpdateStatus(ctx context.Context, id string, status models.SpaceStatus) (models.SpaceStatus, error) {
	var previous models.SpaceStatus
	query := `
		UPDATE parking_spaces
		SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING (SELECT status FROM parking_spaces WHERE id = $2)`

	err := r.db.QueryRowContext(ctx, query, status, id).Scan(&previous)
	if err == sql.ErrNoRows {
		return "", sql.ErrNoRows
	}
	return previous, err
}
