package domain

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// DateRange is a half-open stay [CheckIn, CheckOut) of calendar days in UTC.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func NewDateRange(checkIn, checkOut time.Time) DateRange {
	return DateRange{CheckIn: TruncateDay(checkIn), CheckOut: TruncateDay(checkOut)}
}

// Overlaps treats a check-out on the same day as another check-in as free.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(r.CheckOut)
}

func (r DateRange) Valid() bool {
	return r.CheckOut.After(r.CheckIn)
}

func (r DateRange) Nights() int {
	return int(r.CheckOut.Sub(r.CheckIn).Hours() / 24)
}

// TruncateDay drops the time of day, keeping the calendar date the value carries.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, NewValidationError(CodeInvalidDate, "Dates must be formatted as YYYY-MM-DD")
	}
	return TruncateDay(t), nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
