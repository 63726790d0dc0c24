package domain

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

var validTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCancelled, BookingCompleted},
	BookingCancelled: {},
	BookingCompleted: {},
}

// ActiveStatuses are the statuses that hold a property's calendar.
var ActiveStatuses = []BookingStatus{BookingPending, BookingConfirmed}

func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", NewValidationError(CodeInvalidStatus,
			"Valid status is required (pending, confirmed, cancelled, completed)")
	}
	return status, nil
}

func (s BookingStatus) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return s.IsValid() && len(validTransitions[s]) == 0
}

func (s BookingStatus) HoldsCalendar() bool {
	return s == BookingPending || s == BookingConfirmed
}

func (s BookingStatus) String() string {
	return string(s)
}
