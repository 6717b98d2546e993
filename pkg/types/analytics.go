package types

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/google/uuid"
)

// DailyVisitors is the per-day visitor counter window marshaled as JSONB.
// Slot 0 is Sunday, matching time.Weekday.
type DailyVisitors [7]int64

// Value serializes the window to JSON.
func (d DailyVisitors) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan decodes JSONB into the window.
func (d *DailyVisitors) Scan(value interface{}) error {
	if value == nil {
		*d = DailyVisitors{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded DailyVisitors
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*d = decoded
	return nil
}

// TopProduct is one entry of the most-viewed products leaderboard.
type TopProduct struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Views     int64     `json:"views"`
}

// TopProducts is the leaderboard marshaled as JSONB.
type TopProducts []TopProduct

// Value serializes the leaderboard to JSON.
func (t TopProducts) Value() (driver.Value, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t)
}

// Scan decodes JSONB into the leaderboard.
func (t *TopProducts) Scan(value interface{}) error {
	if value == nil {
		*t = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded TopProducts
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*t = decoded
	return nil
}
