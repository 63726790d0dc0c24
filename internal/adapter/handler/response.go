package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/srgjo27/property_booking/internal/core/domain"
	"github.com/srgjo27/property_booking/internal/core/services"
)

const codeInvalidBody = "invalid_body"

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Kind    string `json:"kind"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
}

type bookingResponse struct {
	ID               string    `json:"id"`
	PropertyID       string    `json:"property_id"`
	GuestName        string    `json:"guest_name"`
	GuestEmail       string    `json:"guest_email"`
	GuestPhone       string    `json:"guest_phone"`
	CheckInDate      string    `json:"check_in_date"`
	CheckOutDate     string    `json:"check_out_date"`
	GuestsCount      int       `json:"guests_count"`
	TotalAmount      float64   `json:"total_amount"`
	SpecialRequests  *string   `json:"special_requests"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	PropertyTitle    string    `json:"property_title,omitempty"`
	PropertyLocation string    `json:"property_location,omitempty"`
	PropertyAddress  string    `json:"property_address,omitempty"`
}

type availabilityResponse struct {
	PropertyID          string            `json:"property_id"`
	CheckInDate         string            `json:"check_in_date"`
	CheckOutDate        string            `json:"check_out_date"`
	Available           bool              `json:"available"`
	ConflictingBookings []bookingResponse `json:"conflicting_bookings"`
}

type statsResponse struct {
	TotalBookings     int     `json:"total_bookings"`
	PendingBookings   int     `json:"pending_bookings"`
	ConfirmedBookings int     `json:"confirmed_bookings"`
	CancelledBookings int     `json:"cancelled_bookings"`
	CompletedBookings int     `json:"completed_bookings"`
	TotalRevenue      float64 `json:"total_revenue"`
}

func newBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ID:              b.ID.String(),
		PropertyID:      b.PropertyID.String(),
		GuestName:       b.GuestName,
		GuestEmail:      b.GuestEmail,
		GuestPhone:      b.GuestPhone,
		CheckInDate:     domain.FormatDate(b.CheckIn),
		CheckOutDate:    domain.FormatDate(b.CheckOut),
		GuestsCount:     b.GuestsCount,
		TotalAmount:     b.TotalAmount,
		SpecialRequests: b.SpecialRequests,
		Status:          b.Status.String(),
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func newDetailsResponse(d *domain.BookingDetails) bookingResponse {
	resp := newBookingResponse(&d.Booking)
	resp.PropertyTitle = d.PropertyTitle
	resp.PropertyLocation = d.PropertyLocation
	resp.PropertyAddress = d.PropertyAddress
	return resp
}

func newAvailabilityResponse(r *services.AvailabilityResponse) availabilityResponse {
	conflicts := make([]bookingResponse, 0, len(r.Conflicts))
	for i := range r.Conflicts {
		conflicts = append(conflicts, newBookingResponse(&r.Conflicts[i]))
	}
	return availabilityResponse{
		PropertyID:          r.PropertyID.String(),
		CheckInDate:         domain.FormatDate(r.CheckIn),
		CheckOutDate:        domain.FormatDate(r.CheckOut),
		Available:           r.Available,
		ConflictingBookings: conflicts,
	}
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation, domain.KindInvalidTransition:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the failure envelope. Storage failures never expose the
// underlying driver error.
func respondError(c *gin.Context, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		de = domain.ErrStorage
	}

	msg := de.Message
	if de.Kind == domain.KindStorage {
		msg = "Internal server error"
		_ = c.Error(err)
	}

	c.AbortWithStatusJSON(statusFor(de.Kind), errorResponse{
		Success: false,
		Error:   msg,
		Code:    de.Code,
		Kind:    string(de.Kind),
	})
}

func respondOK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, successResponse{Success: true, Message: message, Data: data})
}

func respondList(c *gin.Context, data any, count int) {
	c.JSON(http.StatusOK, successResponse{Success: true, Data: data, Count: &count})
}
