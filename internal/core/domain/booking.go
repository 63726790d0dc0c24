package domain

import (
	"time"

	"github.com/google/uuid"
)

type Booking struct {
	ID              uuid.UUID
	PropertyID      uuid.UUID
	GuestName       string
	GuestEmail      string
	GuestPhone      string
	CheckIn         time.Time
	CheckOut        time.Time
	GuestsCount     int
	TotalAmount     float64
	SpecialRequests *string
	Status          BookingStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (b *Booking) Range() DateRange {
	return DateRange{CheckIn: b.CheckIn, CheckOut: b.CheckOut}
}

// HoldsCalendar reports whether the booking blocks its dates for other guests.
func (b *Booking) HoldsCalendar() bool {
	return b.Status.HoldsCalendar()
}

// BookingDetails is a booking joined with the display fields of its property.
type BookingDetails struct {
	Booking
	PropertyTitle    string
	PropertyLocation string
	PropertyAddress  string
}

type BookingFilter struct {
	Status     BookingStatus
	PropertyID *uuid.UUID
}

type BookingStats struct {
	Total        int
	Pending      int
	Confirmed    int
	Cancelled    int
	Completed    int
	TotalRevenue float64
}

type AvailabilityResult struct {
	HasConflict bool
	Conflicts   []Booking
}
