package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/srgjo27/property_booking/internal/core/domain"
)

const (
	RoutingBookingCreated       = "booking.created"
	RoutingBookingStatusChanged = "booking.status_changed"
)

type BookingEvent struct {
	ID         string    `json:"id"`
	Event      string    `json:"event"`
	Version    int       `json:"version"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       EventData `json:"data"`
}

type EventData struct {
	BookingID     string  `json:"booking_id"`
	PropertyID    string  `json:"property_id"`
	PropertyTitle string  `json:"property_title,omitempty"`
	GuestName     string  `json:"guest_name"`
	GuestEmail    string  `json:"guest_email"`
	CheckInDate   string  `json:"check_in_date"`
	CheckOutDate  string  `json:"check_out_date"`
	GuestsCount   int     `json:"guests_count"`
	TotalAmount   float64 `json:"total_amount"`
	Status        string  `json:"status"`
	PreviousState string  `json:"previous_status,omitempty"`
}

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// EventPublisher emits booking events on a RabbitMQ topic exchange for other
// services such as the admin dashboard.
type EventPublisher struct {
	conn     *amqp.Connection
	ch       channel
	exchange string
	now      func() time.Time
}

func NewEventPublisher(url, exchange string) (*EventPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &EventPublisher{conn: conn, ch: ch, exchange: exchange, now: time.Now}, nil
}

func (p *EventPublisher) BookingCreated(ctx context.Context, booking *domain.Booking, property *domain.Property) error {
	data := eventData(booking)
	if property != nil {
		data.PropertyTitle = property.Title
	}
	return p.publish(ctx, RoutingBookingCreated, data)
}

func (p *EventPublisher) BookingStatusChanged(ctx context.Context, booking *domain.Booking, from domain.BookingStatus) error {
	data := eventData(booking)
	data.PreviousState = from.String()
	return p.publish(ctx, RoutingBookingStatusChanged, data)
}

func (p *EventPublisher) publish(ctx context.Context, key string, data EventData) error {
	evt := BookingEvent{
		ID:         uuid.NewString(),
		Event:      key,
		Version:    1,
		OccurredAt: p.now().UTC(),
		Data:       data,
	}

	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	err = p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    evt.ID,
		Timestamp:    evt.OccurredAt,
		Headers: amqp.Table{
			"booking_id": data.BookingID,
			"event_type": key,
		},
		Body: body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}
	return nil
}

func (p *EventPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func eventData(b *domain.Booking) EventData {
	return EventData{
		BookingID:    b.ID.String(),
		PropertyID:   b.PropertyID.String(),
		GuestName:    b.GuestName,
		GuestEmail:   b.GuestEmail,
		CheckInDate:  domain.FormatDate(b.CheckIn),
		CheckOutDate: domain.FormatDate(b.CheckOut),
		GuestsCount:  b.GuestsCount,
		TotalAmount:  b.TotalAmount,
		Status:       b.Status.String(),
	}
}
