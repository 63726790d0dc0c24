package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/srgjo27/property_booking/internal/core/domain"
)

type PropertyRepository struct {
	db *sql.DB
}

func NewPropertyRepository(db *sql.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

func (r *PropertyRepository) GetByID(ctx context.Context, propertyID uuid.UUID) (*domain.Property, error) {
	query := `
	SELECT id, title, location, address, available, created_at
	FROM properties
	WHERE id = $1
	`

	var p domain.Property
	err := r.db.QueryRowContext(ctx, query, propertyID).Scan(
		&p.ID,
		&p.Title,
		&p.Location,
		&p.Address,
		&p.Available,
		&p.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPropertyUnavailable
		}

		return nil, err
	}

	return &p, nil
}
