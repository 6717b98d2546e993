package types

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RentalItem is a line captured on a rental at creation time. Name and
// price are copied from the product so the record survives later edits.
type RentalItem struct {
	ProductID   uuid.UUID       `json:"product_id"`
	Name        string          `json:"name"`
	Quantity    int             `json:"quantity"`
	PricePerDay decimal.Decimal `json:"price_per_day"`
	Days        int             `json:"days"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// RentalItems is a slice marshaled as JSONB.
type RentalItems []RentalItem

// Value serializes the items to JSON.
func (r RentalItems) Value() (driver.Value, error) {
	if r == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r)
}

// Scan decodes JSONB into the item slice.
func (r *RentalItems) Scan(value interface{}) error {
	if value == nil {
		*r = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded RentalItems
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*r = decoded
	return nil
}
