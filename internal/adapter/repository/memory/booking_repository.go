package memory

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/property_booking/internal/core/domain"
)

type BookingRepository struct {
	store *Store
}

func NewBookingRepository(store *Store) *BookingRepository {
	return &BookingRepository{store: store}
}

func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.properties[booking.PropertyID]; !ok {
		return domain.ErrPropertyUnavailable
	}

	if booking.HoldsCalendar() {
		for _, existing := range r.store.bookings {
			if existing.PropertyID == booking.PropertyID && existing.HoldsCalendar() &&
				existing.Range().Overlaps(booking.Range()) {
				return domain.ErrDatesUnavailable
			}
		}
	}

	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	r.store.bookings[booking.ID] = *booking
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	b, ok := r.store.bookings[bookingID]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	return &b, nil
}

func (r *BookingRepository) GetDetails(ctx context.Context, bookingID uuid.UUID) (*domain.BookingDetails, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	b, ok := r.store.bookings[bookingID]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	details := r.details(b)
	return &details, nil
}

func (r *BookingRepository) ListActiveByProperty(ctx context.Context, propertyID uuid.UUID, window domain.DateRange) ([]domain.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []domain.Booking
	for _, b := range r.store.bookings {
		if b.PropertyID == propertyID && b.HoldsCalendar() && b.Range().Overlaps(window) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *BookingRepository) List(ctx context.Context, filter domain.BookingFilter) ([]domain.BookingDetails, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]domain.BookingDetails, 0)
	for _, b := range r.store.bookings {
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if filter.PropertyID != nil && b.PropertyID != *filter.PropertyID {
			continue
		}
		if _, ok := r.store.properties[b.PropertyID]; !ok {
			continue
		}
		out = append(out, r.details(b))
	}

	slices.SortFunc(out, func(a, b domain.BookingDetails) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, bookingID uuid.UUID, from, to domain.BookingStatus) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	b, ok := r.store.bookings[bookingID]
	if !ok || b.Status != from {
		return false, nil
	}

	b.Status = to
	b.UpdatedAt = time.Now()
	r.store.bookings[bookingID] = b
	return true, nil
}

func (r *BookingRepository) Stats(ctx context.Context) (*domain.BookingStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var stats domain.BookingStats
	for _, b := range r.store.bookings {
		stats.Total++
		stats.TotalRevenue += b.TotalAmount
		switch b.Status {
		case domain.BookingPending:
			stats.Pending++
		case domain.BookingConfirmed:
			stats.Confirmed++
		case domain.BookingCancelled:
			stats.Cancelled++
		case domain.BookingCompleted:
			stats.Completed++
		}
	}
	return &stats, nil
}

// details must be called with the store lock held.
func (r *BookingRepository) details(b domain.Booking) domain.BookingDetails {
	p := r.store.properties[b.PropertyID]
	return domain.BookingDetails{
		Booking:          b,
		PropertyTitle:    p.Title,
		PropertyLocation: p.Location,
		PropertyAddress:  p.Address,
	}
}
