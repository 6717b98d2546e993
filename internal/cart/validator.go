package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/siegrin/basecamp-backend/pkg/db/models"
	pkgerrors "github.com/siegrin/basecamp-backend/pkg/errors"
)

// Item is one line of the client-held cart sent up for validation.
type Item struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Days      int       `json:"days"`
	Selected  bool      `json:"selected"`
}

// AnnotatedItem is the same line carrying the live stock verdict.
type AnnotatedItem struct {
	ProductID    uuid.UUID       `json:"product_id"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	Days         int             `json:"days"`
	Selected     bool            `json:"selected"`
	Stock        int             `json:"stock"`
	PricePerDay  decimal.Decimal `json:"price_per_day"`
	Availability string          `json:"availability"`
	Exists       bool            `json:"exists"`
	Valid        bool            `json:"valid"`
}

// Result is the annotated cart. IsValid only considers selected items;
// an out-of-stock line the customer deselected does not block checkout.
type Result struct {
	Items   []AnnotatedItem `json:"items"`
	IsValid bool            `json:"is_valid"`
}

type productLoader interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

// Validator reconciles a client cart against authoritative stock. The check
// is advisory; activation re-validates server-side before any decrement.
type Validator struct {
	products productLoader
}

// NewValidator constructs a cart validator.
func NewValidator(products productLoader) (*Validator, error) {
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &Validator{products: products}, nil
}

// Validate annotates every cart line with live stock and reports whether
// checkout may proceed.
func (v *Validator) Validate(ctx context.Context, items []Item) (*Result, error) {
	if len(items) == 0 {
		return &Result{Items: []AnnotatedItem{}, IsValid: false}, nil
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	rows, err := v.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart products")
	}
	byID := make(map[uuid.UUID]*models.Product, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
	}

	annotated := make([]AnnotatedItem, 0, len(items))
	isValid := true
	anySelected := false
	for _, item := range items {
		line := AnnotatedItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Days:      item.Days,
			Selected:  item.Selected,
		}
		if prod, ok := byID[item.ProductID]; ok {
			line.Exists = true
			line.Name = prod.Name
			line.Stock = prod.Stock
			line.PricePerDay = prod.PricePerDay
			line.Availability = string(prod.Availability)
			line.Valid = item.Quantity >= 1 && item.Quantity <= prod.Stock
		}
		if item.Selected {
			anySelected = true
			if !line.Valid {
				isValid = false
			}
		}
		annotated = append(annotated, line)
	}

	return &Result{Items: annotated, IsValid: isValid && anySelected}, nil
}
