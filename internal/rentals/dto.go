package rental

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/siegrin/basecamp-backend/pkg/db/models"
)

// RentalItemDTO is one snapshotted line on a rental.
type RentalItemDTO struct {
	ProductID   uuid.UUID       `json:"product_id"`
	Name        string          `json:"name"`
	Quantity    int             `json:"quantity"`
	PricePerDay decimal.Decimal `json:"price_per_day"`
	Days        int             `json:"days"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// RentalDTO represents the rental payload returned to clients.
type RentalDTO struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	UserName    string          `json:"user_name"`
	Items       []RentalItemDTO `json:"items"`
	StartDate   *time.Time      `json:"start_date,omitempty"`
	EndDate     *time.Time      `json:"end_date,omitempty"`
	Total       decimal.Decimal `json:"total"`
	Status      string          `json:"status"`
	Notes       *string         `json:"notes,omitempty"`
	ActivatedAt *time.Time      `json:"activated_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	CancelledAt *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ListResultDTO is one page of rentals plus the cursor for the next page.
type ListResultDTO struct {
	Rentals    []RentalDTO `json:"rentals"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// NewRentalDTO builds a DTO from the persisted model.
func NewRentalDTO(rental *models.Rental) *RentalDTO {
	items := make([]RentalItemDTO, 0, len(rental.Items))
	for _, item := range rental.Items {
		items = append(items, RentalItemDTO{
			ProductID:   item.ProductID,
			Name:        item.Name,
			Quantity:    item.Quantity,
			PricePerDay: item.PricePerDay,
			Days:        item.Days,
			Subtotal:    item.Subtotal,
		})
	}
	return &RentalDTO{
		ID:          rental.ID,
		UserID:      rental.UserID,
		UserName:    rental.UserName,
		Items:       items,
		StartDate:   rental.StartDate,
		EndDate:     rental.EndDate,
		Total:       rental.Total,
		Status:      string(rental.Status),
		Notes:       rental.Notes,
		ActivatedAt: rental.ActivatedAt,
		CompletedAt: rental.CompletedAt,
		CancelledAt: rental.CancelledAt,
		CreatedAt:   rental.CreatedAt,
		UpdatedAt:   rental.UpdatedAt,
	}
}
