package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/srgjo27/property_booking/internal/core/domain"
)

const bookingColumns = `
	b.id, b.property_id, b.guest_name, b.guest_email, b.guest_phone,
	b.check_in_date, b.check_out_date, b.guests_count, b.total_amount,
	b.special_requests, b.status, b.created_at, b.updated_at`

type BookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create relies on the bookings_no_overlap exclusion constraint, so the
// overlap test and the insert are one atomic statement.
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query := `
	INSERT INTO bookings (
		id, property_id, guest_name, guest_email, guest_phone,
		check_in_date, check_out_date, guests_count, total_amount,
		special_requests, status, created_at, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6::date, $7::date, $8, $9, $10, $11, $12, $13)
	`

	var special sql.NullString
	if booking.SpecialRequests != nil {
		special = sql.NullString{String: *booking.SpecialRequests, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		booking.ID,
		booking.PropertyID,
		booking.GuestName,
		booking.GuestEmail,
		booking.GuestPhone,
		domain.FormatDate(booking.CheckIn),
		domain.FormatDate(booking.CheckOut),
		booking.GuestsCount,
		booking.TotalAmount,
		special,
		booking.Status,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		return translateInsertError(err)
	}

	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.id = $1`

	b, err := scanBooking(r.db.QueryRowContext(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}

	return b, nil
}

func (r *BookingRepository) GetDetails(ctx context.Context, bookingID uuid.UUID) (*domain.BookingDetails, error) {
	query := `
	SELECT ` + bookingColumns + `, p.title, p.location, p.address
	FROM bookings b
	JOIN properties p ON b.property_id = p.id
	WHERE b.id = $1
	`

	d, err := scanDetails(r.db.QueryRowContext(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}

	return d, nil
}

func (r *BookingRepository) ListActiveByProperty(ctx context.Context, propertyID uuid.UUID, window domain.DateRange) ([]domain.Booking, error) {
	query := `
	SELECT ` + bookingColumns + `
	FROM bookings b
	WHERE b.property_id = $1
		AND b.status = ANY($2)
		AND b.check_in_date < $3::date
		AND b.check_out_date > $4::date
	ORDER BY b.check_in_date, b.id
	`

	active := make([]string, 0, len(domain.ActiveStatuses))
	for _, s := range domain.ActiveStatuses {
		active = append(active, s.String())
	}

	rows, err := r.db.QueryContext(ctx, query,
		propertyID,
		pq.Array(active),
		domain.FormatDate(window.CheckOut),
		domain.FormatDate(window.CheckIn),
	)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}

		bookings = append(bookings, *b)
	}

	return bookings, rows.Err()
}

func (r *BookingRepository) List(ctx context.Context, filter domain.BookingFilter) ([]domain.BookingDetails, error) {
	query, args := buildListQuery(filter)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	bookings := make([]domain.BookingDetails, 0)
	for rows.Next() {
		d, err := scanDetails(rows)
		if err != nil {
			return nil, err
		}

		bookings = append(bookings, *d)
	}

	return bookings, rows.Err()
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, bookingID uuid.UUID, from, to domain.BookingStatus) (bool, error) {
	query := `
	UPDATE bookings
	SET status = $1, updated_at = NOW()
	WHERE id = $2 AND status = $3
	`

	result, err := r.db.ExecContext(ctx, query, to, bookingID, from)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

func (r *BookingRepository) Stats(ctx context.Context) (*domain.BookingStats, error) {
	query := `
	SELECT
		COUNT(*),
		COUNT(*) FILTER (WHERE status = 'pending'),
		COUNT(*) FILTER (WHERE status = 'confirmed'),
		COUNT(*) FILTER (WHERE status = 'cancelled'),
		COUNT(*) FILTER (WHERE status = 'completed'),
		COALESCE(SUM(total_amount), 0)
	FROM bookings
	`

	var stats domain.BookingStats
	err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.Total,
		&stats.Pending,
		&stats.Confirmed,
		&stats.Cancelled,
		&stats.Completed,
		&stats.TotalRevenue,
	)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

// buildListQuery ANDs the set filters, numbering placeholders in the order
// the arguments are returned.
func buildListQuery(filter domain.BookingFilter) (string, []any) {
	var (
		conditions []string
		args       []any
	)

	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("b.status = $%d", len(args)))
	}

	if filter.PropertyID != nil {
		args = append(args, *filter.PropertyID)
		conditions = append(conditions, fmt.Sprintf("b.property_id = $%d", len(args)))
	}

	query := `
	SELECT ` + bookingColumns + `, p.title, p.location, p.address
	FROM bookings b
	JOIN properties p ON b.property_id = p.id
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY b.created_at DESC"

	return query, args
}

type scanner interface {
	Scan(dest ...any) error
}

func bookingFields(b *domain.Booking, special *sql.NullString) []any {
	return []any{
		&b.ID,
		&b.PropertyID,
		&b.GuestName,
		&b.GuestEmail,
		&b.GuestPhone,
		&b.CheckIn,
		&b.CheckOut,
		&b.GuestsCount,
		&b.TotalAmount,
		special,
		&b.Status,
		&b.CreatedAt,
		&b.UpdatedAt,
	}
}

func normalize(b *domain.Booking, special sql.NullString) {
	b.CheckIn = domain.TruncateDay(b.CheckIn)
	b.CheckOut = domain.TruncateDay(b.CheckOut)
	if special.Valid {
		s := special.String
		b.SpecialRequests = &s
	}
}

func scanBooking(row scanner) (*domain.Booking, error) {
	var (
		b       domain.Booking
		special sql.NullString
	)

	if err := row.Scan(bookingFields(&b, &special)...); err != nil {
		return nil, err
	}

	normalize(&b, special)
	return &b, nil
}

func scanDetails(row scanner) (*domain.BookingDetails, error) {
	var (
		d       domain.BookingDetails
		special sql.NullString
	)

	dest := append(bookingFields(&d.Booking, &special), &d.PropertyTitle, &d.PropertyLocation, &d.PropertyAddress)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	normalize(&d.Booking, special)
	return &d, nil
}
