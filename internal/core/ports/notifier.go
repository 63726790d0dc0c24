package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/srgjo27/property_booking/internal/core/domain"
)

type Notifier interface {
	BookingCreated(ctx context.Context, booking *domain.Booking, property *domain.Property) error
	BookingStatusChanged(ctx context.Context, booking *domain.Booking, from domain.BookingStatus) error
}

type IdempotencyStore interface {
	Lookup(ctx context.Context, key string) (uuid.UUID, bool, error)
	Remember(ctx context.Context, key string, bookingID uuid.UUID) error
}
