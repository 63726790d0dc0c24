package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/srgjo27/property_booking/internal/core/domain"
	"github.com/srgjo27/property_booking/internal/core/ports"
)

const defaultNotifyTimeout = 10 * time.Second

type BookingService struct {
	bookingRepo   ports.BookingRepository
	propertyRepo  ports.PropertyRepository
	availability  *AvailabilityService
	notifier      ports.Notifier
	idempotency   ports.IdempotencyStore
	logger        *zap.Logger
	now           func() time.Time
	notifyTimeout time.Duration

	inflight sync.WaitGroup
}

type Option func(*BookingService)

func WithLogger(logger *zap.Logger) Option {
	return func(s *BookingService) {
		s.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *BookingService) {
		s.now = now
	}
}

func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *BookingService) {
		s.idempotency = store
	}
}

func WithNotifyTimeout(d time.Duration) Option {
	return func(s *BookingService) {
		s.notifyTimeout = d
	}
}

func NewBookingService(
	bookingRepo ports.BookingRepository,
	propertyRepo ports.PropertyRepository,
	availability *AvailabilityService,
	notifier ports.Notifier,
	opts ...Option,
) *BookingService {
	s := &BookingService{
		bookingRepo:   bookingRepo,
		propertyRepo:  propertyRepo,
		availability:  availability,
		notifier:      notifier,
		logger:        zap.NewNop(),
		now:           time.Now,
		notifyTimeout: defaultNotifyTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CreateBooking validates the request, checks the calendar and inserts a
// pending booking. The guest and admin notifications are sent after the
// insert and can never fail the call.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	key := strings.TrimSpace(req.IdempotencyKey)
	if key != "" && s.idempotency != nil {
		if existing := s.replay(ctx, key); existing != nil {
			return existing, nil
		}
	}

	input, err := validateCreate(req, s.now())
	if err != nil {
		return nil, err
	}

	property, err := s.propertyRepo.GetByID(ctx, input.propertyID)
	if err != nil {
		if errors.Is(err, domain.ErrPropertyUnavailable) {
			return nil, domain.ErrPropertyUnavailable
		}
		return nil, s.storageFailure("load property", err)
	}

	if !property.IsAvailable() {
		return nil, domain.ErrPropertyUnavailable
	}

	result, err := s.availability.CheckOverlap(ctx, input.propertyID, input.stay.CheckIn, input.stay.CheckOut)
	if err != nil {
		return nil, s.storageFailure("check availability", err)
	}

	if result.HasConflict {
		s.logger.Info("booking rejected: dates unavailable",
			zap.Stringer("property_id", input.propertyID),
			zap.String("check_in", domain.FormatDate(input.stay.CheckIn)),
			zap.String("check_out", domain.FormatDate(input.stay.CheckOut)),
			zap.Int("conflicts", len(result.Conflicts)),
		)
		return nil, domain.ErrDatesUnavailable
	}

	now := s.now()
	booking := &domain.Booking{
		ID:              uuid.New(),
		PropertyID:      input.propertyID,
		GuestName:       input.guestName,
		GuestEmail:      input.guestEmail,
		GuestPhone:      input.guestPhone,
		CheckIn:         input.stay.CheckIn,
		CheckOut:        input.stay.CheckOut,
		GuestsCount:     input.guestsCount,
		TotalAmount:     input.totalAmount,
		SpecialRequests: input.specialRequests,
		Status:          domain.BookingPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		if errors.Is(err, domain.ErrDatesUnavailable) {
			// Another request took the dates between the check and the insert.
			s.logger.Info("booking rejected by store: dates unavailable",
				zap.Stringer("property_id", input.propertyID))
			return nil, domain.ErrDatesUnavailable
		}
		return nil, s.storageFailure("create booking", err)
	}

	s.logger.Info("booking created",
		zap.Stringer("booking_id", booking.ID),
		zap.Stringer("property_id", booking.PropertyID),
		zap.String("check_in", domain.FormatDate(booking.CheckIn)),
		zap.String("check_out", domain.FormatDate(booking.CheckOut)),
	)

	if key != "" && s.idempotency != nil {
		if err := s.idempotency.Remember(ctx, key, booking.ID); err != nil {
			s.logger.Warn("failed to record idempotency key", zap.Stringer("booking_id", booking.ID), zap.Error(err))
		}
	}

	created := *booking
	s.dispatch("booking.created", booking.ID, func(ctx context.Context) error {
		return s.notifier.BookingCreated(ctx, &created, property)
	})

	return booking, nil
}

// UpdateStatus moves a booking along the status state machine. The write is a
// compare-and-set on the current status, so two racing updates cannot both win.
func (s *BookingService) UpdateStatus(ctx context.Context, bookingID string, target string) error {
	to, err := domain.ParseBookingStatus(strings.TrimSpace(target))
	if err != nil {
		return err
	}

	id, err := uuid.Parse(strings.TrimSpace(bookingID))
	if err != nil {
		return domain.ErrBookingNotFound
	}

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrBookingNotFound) {
			return domain.ErrBookingNotFound
		}
		return s.storageFailure("load booking", err)
	}

	from := booking.Status
	if !from.CanTransitionTo(to) {
		return domain.NewInvalidTransitionError(from, to)
	}

	updated, err := s.bookingRepo.UpdateStatus(ctx, id, from, to)
	if err != nil {
		return s.storageFailure("update booking status", err)
	}

	if !updated {
		return &domain.Error{
			Kind:    domain.KindInvalidTransition,
			Code:    domain.CodeInvalidTransition,
			Message: "Booking status was changed by another request",
		}
	}

	s.logger.Info("booking status updated",
		zap.Stringer("booking_id", id),
		zap.Stringer("from", from),
		zap.Stringer("to", to),
	)

	changed := *booking
	changed.Status = to
	changed.UpdatedAt = s.now()
	s.dispatch("booking.status_changed", id, func(ctx context.Context) error {
		return s.notifier.BookingStatusChanged(ctx, &changed, from)
	})

	return nil
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID string) (*domain.BookingDetails, error) {
	id, err := uuid.Parse(strings.TrimSpace(bookingID))
	if err != nil {
		return nil, domain.ErrBookingNotFound
	}

	details, err := s.bookingRepo.GetDetails(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrBookingNotFound) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, s.storageFailure("load booking", err)
	}

	return details, nil
}

func (s *BookingService) ListBookings(ctx context.Context, req ListBookingsRequest) ([]domain.BookingDetails, error) {
	var filter domain.BookingFilter

	if status := strings.TrimSpace(req.Status); status != "" {
		parsed, err := domain.ParseBookingStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Status = parsed
	}

	if raw := strings.TrimSpace(req.PropertyID); raw != "" {
		propertyID, err := uuid.Parse(raw)
		if err != nil {
			return []domain.BookingDetails{}, nil
		}
		filter.PropertyID = &propertyID
	}

	bookings, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		return nil, s.storageFailure("list bookings", err)
	}

	if bookings == nil {
		bookings = []domain.BookingDetails{}
	}

	return bookings, nil
}

func (s *BookingService) Stats(ctx context.Context) (*domain.BookingStats, error) {
	stats, err := s.bookingRepo.Stats(ctx)
	if err != nil {
		return nil, s.storageFailure("load booking statistics", err)
	}
	return stats, nil
}

// Wait blocks until every notification dispatched so far has finished.
func (s *BookingService) Wait() {
	s.inflight.Wait()
}

func (s *BookingService) replay(ctx context.Context, key string) *domain.Booking {
	id, ok, err := s.idempotency.Lookup(ctx, key)
	if err != nil {
		s.logger.Warn("idempotency lookup failed", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Warn("idempotency key points at unreadable booking", zap.Stringer("booking_id", id), zap.Error(err))
		return nil
	}

	s.logger.Info("replaying booking for idempotency key", zap.Stringer("booking_id", id))
	return booking
}

func (s *BookingService) dispatch(event string, bookingID uuid.UUID, send func(context.Context) error) {
	s.inflight.Add(1)

	go func() {
		defer s.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("booking notification panicked",
					zap.String("event", event),
					zap.Stringer("booking_id", bookingID),
					zap.Any("panic", r),
				)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()

		if err := send(ctx); err != nil {
			s.logger.Warn("booking notification failed",
				zap.String("event", event),
				zap.Stringer("booking_id", bookingID),
				zap.Error(err),
			)
		}
	}()
}

func (s *BookingService) storageFailure(op string, err error) error {
	wrapped := domain.NewStorageError(op, err)
	if domain.KindOf(wrapped) == domain.KindStorage {
		s.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
	}
	return wrapped
}
