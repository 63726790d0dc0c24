package services

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/property_booking/internal/core/domain"
	"github.com/srgjo27/property_booking/internal/core/ports"
)

type AvailabilityRequest struct {
	PropertyID   string
	CheckInDate  string
	CheckOutDate string
}

type AvailabilityResponse struct {
	PropertyID uuid.UUID
	CheckIn    time.Time
	CheckOut   time.Time
	Available  bool
	Conflicts  []domain.Booking
}

// AvailabilityService decides whether a stay is free on a property. It never
// caches: every call reads the booking store.
type AvailabilityService struct {
	bookingRepo ports.BookingRepository
}

func NewAvailabilityService(bookingRepo ports.BookingRepository) *AvailabilityService {
	return &AvailabilityService{bookingRepo: bookingRepo}
}

// CheckOverlap returns the pending and confirmed bookings of propertyID that
// overlap [checkIn, checkOut). Callers guarantee checkOut is after checkIn.
func (s *AvailabilityService) CheckOverlap(ctx context.Context, propertyID uuid.UUID, checkIn, checkOut time.Time) (*domain.AvailabilityResult, error) {
	window := domain.NewDateRange(checkIn, checkOut)

	candidates, err := s.bookingRepo.ListActiveByProperty(ctx, propertyID, window)
	if err != nil {
		return nil, domain.NewStorageError("check availability", err)
	}

	conflicts := make([]domain.Booking, 0)
	for _, b := range candidates {
		if b.PropertyID != propertyID || !b.HoldsCalendar() {
			continue
		}
		if b.Range().Overlaps(window) {
			conflicts = append(conflicts, b)
		}
	}

	slices.SortStableFunc(conflicts, func(a, b domain.Booking) int {
		if c := a.CheckIn.Compare(b.CheckIn); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})

	return &domain.AvailabilityResult{
		HasConflict: len(conflicts) > 0,
		Conflicts:   conflicts,
	}, nil
}

func (s *AvailabilityService) Check(ctx context.Context, req AvailabilityRequest) (*AvailabilityResponse, error) {
	if strings.TrimSpace(req.CheckInDate) == "" || strings.TrimSpace(req.CheckOutDate) == "" {
		return nil, domain.NewValidationError(domain.CodeMissingField, "Check-in and check-out dates are required")
	}

	propertyID, err := uuid.Parse(strings.TrimSpace(req.PropertyID))
	if err != nil {
		return nil, domain.ErrPropertyUnavailable
	}

	checkIn, err := domain.ParseDate(req.CheckInDate)
	if err != nil {
		return nil, err
	}

	checkOut, err := domain.ParseDate(req.CheckOutDate)
	if err != nil {
		return nil, err
	}

	if !checkOut.After(checkIn) {
		return nil, domain.ErrCheckoutBeforeCheckin
	}

	result, err := s.CheckOverlap(ctx, propertyID, checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	return &AvailabilityResponse{
		PropertyID: propertyID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Available:  !result.HasConflict,
		Conflicts:  result.Conflicts,
	}, nil
}
