package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/srgjo27/property_booking/internal/core/domain"
)

type PropertyRepository interface {
	GetByID(ctx context.Context, propertyID uuid.UUID) (*domain.Property, error)
}

type BookingRepository interface {
	// Create inserts a pending booking. It must reject, atomically with the
	// insert, a booking that overlaps an active booking on the same property
	// by returning domain.ErrDatesUnavailable.
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error)
	GetDetails(ctx context.Context, bookingID uuid.UUID) (*domain.BookingDetails, error)
	// ListActiveByProperty returns pending and confirmed bookings of a property
	// that may intersect window.
	ListActiveByProperty(ctx context.Context, propertyID uuid.UUID, window domain.DateRange) ([]domain.Booking, error)
	List(ctx context.Context, filter domain.BookingFilter) ([]domain.BookingDetails, error)
	// UpdateStatus moves a booking from one status to another and reports
	// false when the booking was no longer in status from.
	UpdateStatus(ctx context.Context, bookingID uuid.UUID, from, to domain.BookingStatus) (bool, error)
	Stats(ctx context.Context) (*domain.BookingStats, error)
}
