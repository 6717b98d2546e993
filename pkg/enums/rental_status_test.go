package enums

import "testing"

func TestRentalStatusTransitions(t *testing.T) {
	tests := []struct {
		from    RentalStatus
		to      RentalStatus
		allowed bool
	}{
		{RentalStatusPending, RentalStatusActive, true},
		{RentalStatusPending, RentalStatusCancelled, true},
		{RentalStatusPending, RentalStatusCompleted, false},
		{RentalStatusActive, RentalStatusCompleted, true},
		{RentalStatusActive, RentalStatusCancelled, false},
		{RentalStatusCompleted, RentalStatusActive, false},
		{RentalStatusCompleted, RentalStatusPending, false},
		{RentalStatusCancelled, RentalStatusActive, false},
		{RentalStatusCancelled, RentalStatusPending, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.allowed {
			t.Fatalf("%s -> %s: expected %v got %v", tt.from, tt.to, tt.allowed, got)
		}
	}
}

func TestRentalStatusTerminal(t *testing.T) {
	if RentalStatusPending.IsTerminal() || RentalStatusActive.IsTerminal() {
		t.Fatalf("pending/active must not be terminal")
	}
	if !RentalStatusCompleted.IsTerminal() || !RentalStatusCancelled.IsTerminal() {
		t.Fatalf("completed/cancelled must be terminal")
	}
}

func TestParseRentalStatus(t *testing.T) {
	if _, err := ParseRentalStatus("active"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseRentalStatus("returned"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestAvailabilityForStock(t *testing.T) {
	if AvailabilityForStock(0) != AvailabilityUnavailable {
		t.Fatalf("zero stock must be unavailable")
	}
	if AvailabilityForStock(1) != AvailabilityAvailable {
		t.Fatalf("positive stock must be available")
	}
}
