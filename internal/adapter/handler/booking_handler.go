package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/srgjo27/property_booking/internal/core/domain"
	"github.com/srgjo27/property_booking/internal/core/services"
)

const idempotencyHeader = "Idempotency-Key"

type BookingHandler struct {
	bookings     *services.BookingService
	availability *services.AvailabilityService
}

func NewBookingHandler(bookings *services.BookingService, availability *services.AvailabilityService) *BookingHandler {
	return &BookingHandler{bookings: bookings, availability: availability}
}

func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req services.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.NewValidationError(codeInvalidBody, "Request body must be a valid JSON object"))
		return
	}
	req.IdempotencyKey = c.GetHeader(idempotencyHeader)

	booking, err := h.bookings.CreateBooking(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Booking request submitted successfully", newBookingResponse(booking))
}

func (h *BookingHandler) CheckAvailability(c *gin.Context) {
	resp, err := h.availability.Check(c.Request.Context(), services.AvailabilityRequest{
		PropertyID:   c.Param("property_id"),
		CheckInDate:  c.Query("check_in_date"),
		CheckOutDate: c.Query("check_out_date"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", newAvailabilityResponse(resp))
}

func (h *BookingHandler) ListBookings(c *gin.Context) {
	bookings, err := h.bookings.ListBookings(c.Request.Context(), services.ListBookingsRequest{
		Status:     c.Query("status"),
		PropertyID: c.Query("property_id"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	data := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		data = append(data, newDetailsResponse(&bookings[i]))
	}

	respondList(c, data, len(data))
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	details, err := h.bookings.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", newDetailsResponse(details))
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.ErrInvalidStatus)
		return
	}

	if err := h.bookings.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Booking status updated successfully", nil)
}

func (h *BookingHandler) Stats(c *gin.Context) {
	stats, err := h.bookings.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "", statsResponse{
		TotalBookings:     stats.Total,
		PendingBookings:   stats.Pending,
		ConfirmedBookings: stats.Confirmed,
		CancelledBookings: stats.Cancelled,
		CompletedBookings: stats.Completed,
		TotalRevenue:      stats.TotalRevenue,
	})
}
