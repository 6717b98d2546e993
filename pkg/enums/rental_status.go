package enums

import "fmt"

// RentalStatus tracks a rental through its lifecycle.
type RentalStatus string

const (
	RentalStatusPending   RentalStatus = "pending"
	RentalStatusActive    RentalStatus = "active"
	RentalStatusCompleted RentalStatus = "completed"
	RentalStatusCancelled RentalStatus = "cancelled"
)

var validRentalStatuses = []RentalStatus{
	RentalStatusPending,
	RentalStatusActive,
	RentalStatusCompleted,
	RentalStatusCancelled,
}

// rentalStatusTransitions is the full transition table; completed and
// cancelled are terminal.
var rentalStatusTransitions = map[RentalStatus][]RentalStatus{
	RentalStatusPending: {RentalStatusActive, RentalStatusCancelled},
	RentalStatusActive:  {RentalStatusCompleted},
}

// String implements fmt.Stringer.
func (s RentalStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known RentalStatus.
func (s RentalStatus) IsValid() bool {
	for _, candidate := range validRentalStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves this status.
func (s RentalStatus) IsTerminal() bool {
	return len(rentalStatusTransitions[s]) == 0
}

// CanTransitionTo reports whether the transition s -> next is allowed.
func (s RentalStatus) CanTransitionTo(next RentalStatus) bool {
	for _, candidate := range rentalStatusTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseRentalStatus converts raw input into a RentalStatus.
func ParseRentalStatus(value string) (RentalStatus, error) {
	for _, candidate := range validRentalStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rental status %q", value)
}
