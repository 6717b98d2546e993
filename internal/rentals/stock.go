package rental

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	product "github.com/siegrin/basecamp-backend/internal/products"
	"github.com/siegrin/basecamp-backend/pkg/db/models"
	pkgerrors "github.com/siegrin/basecamp-backend/pkg/errors"
	"github.com/siegrin/basecamp-backend/pkg/types"
)

// reserveStock decrements stock for every item inside the caller's
// transaction. Any single shortfall aborts with an error naming the product,
// and the rollback undoes the decrements already applied, so a rental either
// reserves everything or nothing.
func reserveStock(ctx context.Context, products *product.Repository, items types.RentalItems) error {
	for _, item := range items {
		affected, err := products.AdjustStock(ctx, item.ProductID, -item.Quantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reserve stock")
		}
		if affected == 0 {
			return insufficientStockError(ctx, products, item)
		}
	}
	return nil
}

// releaseStock returns every item's quantity to the shelf. Missing products
// are skipped; a deleted catalog entry cannot block completing the rental.
func releaseStock(ctx context.Context, products *product.Repository, items types.RentalItems) error {
	for _, item := range items {
		if _, err := products.AdjustStock(ctx, item.ProductID, item.Quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: release stock")
		}
	}
	return nil
}

// insufficientStockError distinguishes a guard refusal from a vanished
// product and names the offending line either way.
func insufficientStockError(ctx context.Context, products *product.Repository, item types.RentalItem) error {
	current, err := products.FindByID(ctx, item.ProductID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product no longer exists").
			WithDetails(map[string]any{"product_id": item.ProductID, "name": item.Name})
	}
	details := map[string]any{
		"product_id": item.ProductID,
		"name":       item.Name,
		"requested":  item.Quantity,
	}
	if err == nil {
		details["available"] = current.Stock
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock for "+item.Name).
		WithDetails(details)
}

func indexProducts(rows []models.Product) map[uuid.UUID]*models.Product {
	byID := make(map[uuid.UUID]*models.Product, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
	}
	return byID
}
