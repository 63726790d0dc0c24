package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/property_booking/internal/core/domain"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Column limits of bookings.guests_count (INTEGER) and bookings.total_amount
// (NUMERIC(12,2)).
const (
	maxGuestsCount = math.MaxInt32
	maxTotalAmount = 1e10
)

type bookingInput struct {
	propertyID      uuid.UUID
	guestName       string
	guestEmail      string
	guestPhone      string
	stay            domain.DateRange
	guestsCount     int
	totalAmount     float64
	specialRequests *string
}

// validateCreate applies the create checks in a fixed order and stops at the
// first failure. The property lookup and overlap check happen afterwards.
func validateCreate(req CreateBookingRequest, today time.Time) (*bookingInput, error) {
	required := []struct {
		name  string
		empty bool
	}{
		{"property_id", req.PropertyID.String() == ""},
		{"guest_name", strings.TrimSpace(req.GuestName) == ""},
		{"guest_email", strings.TrimSpace(req.GuestEmail) == ""},
		{"guest_phone", strings.TrimSpace(req.GuestPhone) == ""},
		{"check_in_date", strings.TrimSpace(req.CheckInDate) == ""},
		{"check_out_date", strings.TrimSpace(req.CheckOutDate) == ""},
		{"guests_count", req.GuestsCount.IsZero()},
		{"total_amount", req.TotalAmount.IsZero()},
	}
	for _, f := range required {
		if f.empty {
			return nil, domain.NewValidationError(domain.CodeMissingField,
				"All required fields must be provided (missing "+f.name+")")
		}
	}

	guests, err := strconv.Atoi(strings.TrimSpace(req.GuestsCount.String()))
	if err != nil || guests <= 0 || guests > maxGuestsCount {
		return nil, domain.ErrInvalidNumber
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(req.TotalAmount.String()), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return nil, domain.ErrInvalidNumber
	}
	// Stored with two decimals; round here so the created booking matches later reads.
	amount = math.Round(amount*100) / 100
	if amount >= maxTotalAmount {
		return nil, domain.ErrInvalidNumber
	}

	email := strings.TrimSpace(req.GuestEmail)
	if !emailPattern.MatchString(email) {
		return nil, domain.ErrInvalidEmail
	}

	checkIn, err := domain.ParseDate(req.CheckInDate)
	if err != nil {
		return nil, err
	}

	checkOut, err := domain.ParseDate(req.CheckOutDate)
	if err != nil {
		return nil, err
	}

	if checkIn.Before(domain.TruncateDay(today)) {
		return nil, domain.ErrCheckinInPast
	}

	stay := domain.NewDateRange(checkIn, checkOut)
	if !stay.Valid() {
		return nil, domain.ErrCheckoutBeforeCheckin
	}

	propertyID, err := uuid.Parse(req.PropertyID.String())
	if err != nil {
		return nil, domain.ErrPropertyUnavailable
	}

	var special *string
	if req.SpecialRequests != nil {
		if s := strings.TrimSpace(*req.SpecialRequests); s != "" {
			special = &s
		}
	}

	return &bookingInput{
		propertyID:      propertyID,
		guestName:       strings.TrimSpace(req.GuestName),
		guestEmail:      email,
		guestPhone:      strings.TrimSpace(req.GuestPhone),
		stay:            stay,
		guestsCount:     guests,
		totalAmount:     amount,
		specialRequests: special,
	}, nil
}
