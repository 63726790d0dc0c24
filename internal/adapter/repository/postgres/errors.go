package postgres

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/srgjo27/property_booking/internal/core/domain"
)

const (
	exclusionViolation  pq.ErrorCode = "23P01"
	foreignKeyViolation pq.ErrorCode = "23503"

	noOverlapConstraint = "bookings_no_overlap"
)

// translateInsertError maps constraint violations raised by the bookings
// table onto domain errors.
func translateInsertError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case exclusionViolation:
			if pqErr.Constraint == "" || pqErr.Constraint == noOverlapConstraint {
				return domain.ErrDatesUnavailable
			}
		case foreignKeyViolation:
			return domain.ErrPropertyUnavailable
		}
	}

	return fmt.Errorf("failed to insert booking: %w", err)
}
