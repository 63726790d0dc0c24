package notifier

import (
	"context"
	"errors"

	"github.com/srgjo27/property_booking/internal/core/domain"
	"github.com/srgjo27/property_booking/internal/core/ports"
)

// Fanout delivers every event to each notifier, even when an earlier one fails.
type Fanout []ports.Notifier

func (f Fanout) BookingCreated(ctx context.Context, booking *domain.Booking, property *domain.Property) error {
	var errs []error
	for _, n := range f {
		if err := n.BookingCreated(ctx, booking, property); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Fanout) BookingStatusChanged(ctx context.Context, booking *domain.Booking, from domain.BookingStatus) error {
	var errs []error
	for _, n := range f {
		if err := n.BookingStatusChanged(ctx, booking, from); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
