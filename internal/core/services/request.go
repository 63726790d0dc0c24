package services

import (
	"bytes"
	"encoding/json"
	"strings"
)

// NumericInput keeps the raw text of a JSON number or numeric string so that
// a malformed value is reported as invalid_number instead of a decode failure.
type NumericInput string

func (n *NumericInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumericInput(strings.TrimSpace(s))
		return nil
	}

	*n = NumericInput(data)
	return nil
}

func (n NumericInput) String() string {
	return string(n)
}

func (n NumericInput) IsZero() bool {
	return strings.TrimSpace(string(n)) == ""
}

// IDInput accepts an id sent as a JSON string or a bare number. A numeric id
// is kept as text and later fails the UUID check like any unknown property.
type IDInput string

func (id *IDInput) UnmarshalJSON(data []byte) error {
	var raw NumericInput
	if err := raw.UnmarshalJSON(data); err != nil {
		return err
	}
	*id = IDInput(raw)
	return nil
}

func (id IDInput) String() string {
	return strings.TrimSpace(string(id))
}

type CreateBookingRequest struct {
	PropertyID      IDInput      `json:"property_id"`
	GuestName       string       `json:"guest_name"`
	GuestEmail      string       `json:"guest_email"`
	GuestPhone      string       `json:"guest_phone"`
	CheckInDate     string       `json:"check_in_date"`
	CheckOutDate    string       `json:"check_out_date"`
	GuestsCount     NumericInput `json:"guests_count"`
	TotalAmount     NumericInput `json:"total_amount"`
	SpecialRequests *string      `json:"special_requests"`

	// IdempotencyKey is supplied out of band, usually by the Idempotency-Key header.
	IdempotencyKey string `json:"-"`
}

type ListBookingsRequest struct {
	Status     string
	PropertyID string
}
