package enums

import "fmt"

// Availability is the derived display flag for a product's stock level.
type Availability string

const (
	AvailabilityAvailable   Availability = "available"
	AvailabilityUnavailable Availability = "unavailable"
)

// AvailabilityForStock derives the flag from a stock count. Stock and
// availability are only ever written together through this mapping.
func AvailabilityForStock(stock int) Availability {
	if stock > 0 {
		return AvailabilityAvailable
	}
	return AvailabilityUnavailable
}

// String implements fmt.Stringer.
func (a Availability) String() string {
	return string(a)
}

// IsValid reports whether the value is a known Availability.
func (a Availability) IsValid() bool {
	return a == AvailabilityAvailable || a == AvailabilityUnavailable
}

// ParseAvailability converts raw input into an Availability.
func ParseAvailability(value string) (Availability, error) {
	switch Availability(value) {
	case AvailabilityAvailable:
		return AvailabilityAvailable, nil
	case AvailabilityUnavailable:
		return AvailabilityUnavailable, nil
	}
	return "", fmt.Errorf("invalid availability %q", value)
}
