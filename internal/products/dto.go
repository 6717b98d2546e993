package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/siegrin/basecamp-backend/pkg/db/models"
)

// ProductDTO represents the product payload returned to clients.
type ProductDTO struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Description   *string         `json:"description,omitempty"`
	CategoryID    uuid.UUID       `json:"category_id"`
	SubcategoryID *uuid.UUID      `json:"subcategory_id,omitempty"`
	PricePerDay   decimal.Decimal `json:"price_per_day"`
	Stock         int             `json:"stock"`
	Availability  string          `json:"availability"`
	Images        []string        `json:"images"`
	Specs         map[string]any  `json:"specs,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ListResultDTO is one page of products plus the cursor for the next page.
type ListResultDTO struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(product *models.Product) *ProductDTO {
	return &ProductDTO{
		ID:            product.ID,
		Name:          product.Name,
		Description:   product.Description,
		CategoryID:    product.CategoryID,
		SubcategoryID: product.SubcategoryID,
		PricePerDay:   product.PricePerDay,
		Stock:         product.Stock,
		Availability:  string(product.Availability),
		Images:        append([]string{}, product.Images...),
		Specs:         product.Specs,
		CreatedAt:     product.CreatedAt,
		UpdatedAt:     product.UpdatedAt,
	}
}
