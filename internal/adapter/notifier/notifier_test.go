package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/smtp"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/srgjo27/property_booking/internal/core/domain"
	"github.com/srgjo27/property_booking/internal/core/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const queue = "booking:notifications"

func sampleBooking(status domain.BookingStatus) (*domain.Booking, *domain.Property) {
	special := "Late arrival <after 10pm>"
	propertyID := uuid.New()
	return &domain.Booking{
			ID:              uuid.New(),
			PropertyID:      propertyID,
			GuestName:       "Efua Owusu",
			GuestEmail:      "efua@example.com",
			GuestPhone:      "+233201234567",
			CheckIn:         time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			CheckOut:        time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
			GuestsCount:     3,
			TotalAmount:     600,
			SpecialRequests: &special,
			Status:          status,
		}, &domain.Property{
			ID:        propertyID,
			Title:     "Osu Penthouse",
			Available: true,
		}
}

func encode(t *testing.T, jobs ...EmailJob) []interface{} {
	t.Helper()
	out := make([]interface{}, 0, len(jobs))
	for _, j := range jobs {
		b, err := json.Marshal(j)
		require.NoError(t, err)
		out = append(out, string(b))
	}
	return out
}

func TestBookingCreatedEmails(t *testing.T) {
	booking, property := sampleBooking(domain.BookingPending)

	jobs, err := bookingCreatedEmails(booking, property, "admin@example.com")
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, "efua@example.com", jobs[0].To)
	assert.Contains(t, jobs[0].HTML, "Osu Penthouse")
	assert.Contains(t, jobs[0].HTML, "2025-03-01")
	assert.Contains(t, jobs[0].HTML, booking.ID.String())

	assert.Equal(t, "admin@example.com", jobs[1].To)
	assert.Contains(t, jobs[1].HTML, "4 nights")
	assert.Contains(t, jobs[1].HTML, "Late arrival &lt;after 10pm&gt;")

	jobs, err = bookingCreatedEmails(booking, property, "")
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestRedisQueue_BookingCreated(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	q := NewRedisQueue(db, queue, "admin@example.com")
	booking, property := sampleBooking(domain.BookingPending)

	jobs, err := bookingCreatedEmails(booking, property, "admin@example.com")
	require.NoError(t, err)
	mockRedis.ExpectLPush(queue, encode(t, jobs...)...).SetVal(2)

	assert.NoError(t, q.BookingCreated(context.Background(), booking, property))

	if err := mockRedis.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestRedisQueue_EnqueueFailure(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	q := NewRedisQueue(db, queue, "")
	booking, property := sampleBooking(domain.BookingPending)

	jobs, err := bookingCreatedEmails(booking, property, "")
	require.NoError(t, err)
	mockRedis.ExpectLPush(queue, encode(t, jobs...)...).SetErr(errors.New("READONLY"))

	err = q.BookingCreated(context.Background(), booking, property)
	assert.ErrorContains(t, err, "enqueue email jobs")
}

func TestRedisQueue_BookingStatusChanged(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	q := NewRedisQueue(db, queue, "")

	confirmed, _ := sampleBooking(domain.BookingConfirmed)
	job, err := statusChangedEmail(confirmed)
	require.NoError(t, err)
	require.NotNil(t, job)
	mockRedis.ExpectLPush(queue, encode(t, *job)...).SetVal(1)

	assert.NoError(t, q.BookingStatusChanged(context.Background(), confirmed, domain.BookingPending))

	completed, _ := sampleBooking(domain.BookingCompleted)
	assert.NoError(t, q.BookingStatusChanged(context.Background(), completed, domain.BookingConfirmed))

	if err := mockRedis.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

type recordingMailer struct {
	sent []EmailJob
	err  error
}

func (m *recordingMailer) Send(_ context.Context, job EmailJob) error {
	m.sent = append(m.sent, job)
	return m.err
}

func TestWorker_ProcessNext(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	mailer := &recordingMailer{}
	w := NewWorker(db, queue, mailer, zap.NewNop())

	job := EmailJob{Kind: "guest_confirmation", To: "efua@example.com", Subject: "hi", BookingID: uuid.NewString()}
	payload := encode(t, job)[0].(string)

	mockRedis.ExpectBRPop(5*time.Second, queue).SetVal([]string{queue, payload})
	mockRedis.ExpectBRPop(5*time.Second, queue).RedisNil()
	mockRedis.ExpectBRPop(5*time.Second, queue).SetVal([]string{queue, "{not json"})

	took, err := w.processNext(context.Background())
	require.NoError(t, err)
	assert.True(t, took)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, job, mailer.sent[0])

	took, err = w.processNext(context.Background())
	require.NoError(t, err)
	assert.False(t, took)

	took, err = w.processNext(context.Background())
	require.NoError(t, err)
	assert.True(t, took)
	assert.Len(t, mailer.sent, 1)

	if err := mockRedis.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestWorker_DeliveryFailureIsDropped(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	mailer := &recordingMailer{err: errors.New("550 mailbox unavailable")}
	w := NewWorker(db, queue, mailer, zap.NewNop())

	payload := encode(t, EmailJob{Kind: "admin_alert", To: "admin@example.com"})[0].(string)
	mockRedis.ExpectBRPop(5*time.Second, queue).SetVal([]string{queue, payload})

	took, err := w.processNext(context.Background())
	assert.NoError(t, err)
	assert.True(t, took)
}

func TestWorker_RunStopsOnCancel(t *testing.T) {
	db, _ := redismock.NewClientMock()
	w := NewWorker(db, queue, &recordingMailer{}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}

func TestSMTPMailer_Send(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 587, User: "bookings@example.com", Pass: "secret"})

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	m.send = func(_ context.Context, addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	err := m.Send(context.Background(), EmailJob{To: "efua@example.com", Subject: "Booking Confirmation", HTML: "<h2>Hi</h2>"})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "bookings@example.com", gotFrom)
	assert.Equal(t, []string{"efua@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: Booking Confirmation\r\n")
	assert.Contains(t, string(gotMsg), "Content-Type: text/html")
}

func TestSMTPMailer_StalledServerHonoursContext(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	// Accept connections and never send the SMTP greeting.
	go func() {
		var conns []net.Conn
		defer func() {
			for _, c := range conns {
				_ = c.Close()
			}
		}()
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conns = append(conns, conn)
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	m := NewSMTPMailer(SMTPConfig{Host: "127.0.0.1", Port: addr.Port, User: "bookings@example.com", Pass: "secret"})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- m.Send(ctx, EmailJob{To: "efua@example.com", Subject: "Booking Confirmation", HTML: "<p>hi</p>"})
	}()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("smtp send did not return after the context deadline")
	}
}

type fakeChannel struct {
	keys []string
	msgs []amqp.Publishing
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.keys = append(c.keys, exchange+"/"+key)
	c.msgs = append(c.msgs, msg)
	return nil
}

func (c *fakeChannel) Close() error { return nil }

func TestEventPublisher(t *testing.T) {
	ch := &fakeChannel{}
	p := &EventPublisher{ch: ch, exchange: "booking.exchange", now: time.Now}
	booking, property := sampleBooking(domain.BookingConfirmed)

	require.NoError(t, p.BookingCreated(context.Background(), booking, property))
	require.NoError(t, p.BookingStatusChanged(context.Background(), booking, domain.BookingPending))

	assert.Equal(t, []string{"booking.exchange/booking.created", "booking.exchange/booking.status_changed"}, ch.keys)

	var evt BookingEvent
	require.NoError(t, json.Unmarshal(ch.msgs[1].Body, &evt))
	assert.Equal(t, "booking.status_changed", evt.Event)
	assert.Equal(t, "pending", evt.Data.PreviousState)
	assert.Equal(t, "confirmed", evt.Data.Status)
	assert.Equal(t, amqp.Persistent, ch.msgs[1].DeliveryMode)
}

func TestFanout_CallsEveryNotifier(t *testing.T) {
	first := mocks.NewNotifier(t)
	second := mocks.NewNotifier(t)
	booking, property := sampleBooking(domain.BookingPending)

	first.On("BookingCreated", mock.Anything, booking, property).Return(errors.New("queue down"))
	second.On("BookingCreated", mock.Anything, booking, property).Return(nil)

	err := Fanout{first, second}.BookingCreated(context.Background(), booking, property)
	assert.ErrorContains(t, err, "queue down")
}

func TestDirect_SendsEveryJob(t *testing.T) {
	mailer := &recordingMailer{}
	d := NewDirect(mailer, "admin@example.com")
	booking, property := sampleBooking(domain.BookingPending)

	require.NoError(t, d.BookingCreated(context.Background(), booking, property))
	require.Len(t, mailer.sent, 2)
	assert.Equal(t, "guest_confirmation", mailer.sent[0].Kind)
	assert.Equal(t, "admin_alert", mailer.sent[1].Kind)

	cancelled, _ := sampleBooking(domain.BookingCancelled)
	require.NoError(t, d.BookingStatusChanged(context.Background(), cancelled, domain.BookingPending))
	require.Len(t, mailer.sent, 3)
	assert.Equal(t, "status_cancelled", mailer.sent[2].Kind)
}
