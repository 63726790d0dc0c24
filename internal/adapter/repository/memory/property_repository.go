package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/srgjo27/property_booking/internal/core/domain"
)

type PropertyRepository struct {
	store *Store
}

func NewPropertyRepository(store *Store) *PropertyRepository {
	return &PropertyRepository{store: store}
}

func (r *PropertyRepository) GetByID(ctx context.Context, propertyID uuid.UUID) (*domain.Property, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.store.properties[propertyID]
	if !ok {
		return nil, domain.ErrPropertyUnavailable
	}
	return &p, nil
}
