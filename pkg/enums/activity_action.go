package enums

import "fmt"

// ActivityAction names the mutating operations recorded in the audit trail.
type ActivityAction string

const (
	ActionProductCreated     ActivityAction = "product_created"
	ActionProductUpdated     ActivityAction = "product_updated"
	ActionProductDeleted     ActivityAction = "product_deleted"
	ActionCategoryCreated    ActivityAction = "category_created"
	ActionCategoryUpdated    ActivityAction = "category_updated"
	ActionCategoryDeleted    ActivityAction = "category_deleted"
	ActionSubcategoryCreated ActivityAction = "subcategory_created"
	ActionSubcategoryUpdated ActivityAction = "subcategory_updated"
	ActionSubcategoryDeleted ActivityAction = "subcategory_deleted"
	ActionRentalCreated      ActivityAction = "rental_created"
	ActionRentalActivated    ActivityAction = "rental_activated"
	ActionRentalCancelled    ActivityAction = "rental_cancelled"
	ActionRentalCompleted    ActivityAction = "rental_completed"
	ActionRentalsReset       ActivityAction = "rentals_reset"
	ActionSettingsUpdated    ActivityAction = "settings_updated"
	ActionActivityLogReset   ActivityAction = "activity_log_reset"
	ActionAnalyticsReset     ActivityAction = "analytics_reset"
	ActionUserRegistered     ActivityAction = "user_registered"
	ActionUserUpdated        ActivityAction = "user_updated"
	ActionUserDeactivated    ActivityAction = "user_deactivated"
	ActionUserPasswordReset  ActivityAction = "user_password_reset"
)

var validActivityActions = []ActivityAction{
	ActionProductCreated,
	ActionProductUpdated,
	ActionProductDeleted,
	ActionCategoryCreated,
	ActionCategoryUpdated,
	ActionCategoryDeleted,
	ActionSubcategoryCreated,
	ActionSubcategoryUpdated,
	ActionSubcategoryDeleted,
	ActionRentalCreated,
	ActionRentalActivated,
	ActionRentalCancelled,
	ActionRentalCompleted,
	ActionRentalsReset,
	ActionSettingsUpdated,
	ActionActivityLogReset,
	ActionAnalyticsReset,
	ActionUserRegistered,
	ActionUserUpdated,
	ActionUserDeactivated,
	ActionUserPasswordReset,
}

// String implements fmt.Stringer.
func (a ActivityAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known ActivityAction.
func (a ActivityAction) IsValid() bool {
	for _, candidate := range validActivityActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseActivityAction converts raw input into an ActivityAction.
func ParseActivityAction(value string) (ActivityAction, error) {
	for _, candidate := range validActivityActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid activity action %q", value)
}
