package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/srgjo27/property_booking/internal/core/domain"
)

// Direct renders and sends emails inline. It is used when no Redis queue is
// available, e.g. local runs with in-memory storage.
type Direct struct {
	mailer     Mailer
	adminEmail string
}

func NewDirect(mailer Mailer, adminEmail string) *Direct {
	return &Direct{mailer: mailer, adminEmail: adminEmail}
}

func (d *Direct) BookingCreated(ctx context.Context, booking *domain.Booking, property *domain.Property) error {
	jobs, err := bookingCreatedEmails(booking, property, d.adminEmail)
	if err != nil {
		return fmt.Errorf("render booking emails: %w", err)
	}

	var errs []error
	for _, job := range jobs {
		if err := d.mailer.Send(ctx, job); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d *Direct) BookingStatusChanged(ctx context.Context, booking *domain.Booking, _ domain.BookingStatus) error {
	job, err := statusChangedEmail(booking)
	if err != nil {
		return fmt.Errorf("render status email: %w", err)
	}
	if job == nil {
		return nil
	}
	return d.mailer.Send(ctx, *job)
}
