package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/siegrin/basecamp-backend/internal/activity"
	"github.com/siegrin/basecamp-backend/pkg/db/models"
	"github.com/siegrin/basecamp-backend/pkg/enums"
	pkgerrors "github.com/siegrin/basecamp-backend/pkg/errors"
)

// Service exposes catalog management operations.
type Service interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, query ListQuery) (*ListResultDTO, error)
	CreateProduct(ctx context.Context, actor activity.Actor, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, actor activity.Actor, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, actor activity.Actor, id uuid.UUID) error
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name          string
	Description   *string
	CategoryID    uuid.UUID
	SubcategoryID *uuid.UUID
	PricePerDay   decimal.Decimal
	Stock         int
	Images        []string
	Specs         map[string]any
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name          *string
	Description   *string
	CategoryID    *uuid.UUID
	SubcategoryID *uuid.UUID
	PricePerDay   *decimal.Decimal
	Images        *[]string
	Specs         *map[string]any
}

type productStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, query ListQuery) (*ListResult, error)
}

type categoryLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindSubcategoryByID(ctx context.Context, id uuid.UUID) (*models.Subcategory, error)
}

type service struct {
	repo       productStore
	categories categoryLoader
	activity   activity.Recorder
}

// NewService constructs a product service instance.
func NewService(repo productStore, categories categoryLoader, recorder activity.Recorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if categories == nil {
		return nil, fmt.Errorf("category repository required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("activity recorder required")
	}
	return &service{repo: repo, categories: categories, activity: recorder}, nil
}

// GetProduct loads a single product.
func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewProductDTO(product), nil
}

// ListProducts returns a filtered page of the catalog.
func (s *service) ListProducts(ctx context.Context, query ListQuery) (*ListResultDTO, error) {
	result, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}
	dtos := make([]ProductDTO, 0, len(result.Products))
	for i := range result.Products {
		dtos = append(dtos, *NewProductDTO(&result.Products[i]))
	}
	return &ListResultDTO{Products: dtos, NextCursor: result.NextCursor}, nil
}

// CreateProduct inserts a new product with its starting stock. Availability
// is never accepted from the caller; it always follows the stock level.
func (s *service) CreateProduct(ctx context.Context, actor activity.Actor, input CreateProductInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.PricePerDay.IsNegative() || input.PricePerDay.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_per_day must be positive")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	if err := s.ensureCategoryTree(ctx, input.CategoryID, input.SubcategoryID); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:          name,
		Description:   input.Description,
		CategoryID:    input.CategoryID,
		SubcategoryID: input.SubcategoryID,
		PricePerDay:   input.PricePerDay,
		Stock:         input.Stock,
		Availability:  enums.AvailabilityForStock(input.Stock),
		Images:        input.Images,
	}
	if input.Specs != nil {
		product.Specs = input.Specs
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}

	s.record(ctx, actor, enums.ActionProductCreated, created.ID, map[string]any{"name": created.Name})
	return NewProductDTO(created), nil
}

// UpdateProduct applies partial changes to a product. Stock is excluded
// here; it moves only through the rental lifecycle.
func (s *service) UpdateProduct(ctx context.Context, actor activity.Actor, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.PricePerDay != nil {
		if input.PricePerDay.IsNegative() || input.PricePerDay.IsZero() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_per_day must be positive")
		}
		product.PricePerDay = *input.PricePerDay
	}

	categoryID := product.CategoryID
	subcategoryID := product.SubcategoryID
	if input.CategoryID != nil {
		categoryID = *input.CategoryID
	}
	if input.SubcategoryID != nil {
		subcategoryID = input.SubcategoryID
	}
	if input.CategoryID != nil || input.SubcategoryID != nil {
		if err := s.ensureCategoryTree(ctx, categoryID, subcategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = categoryID
		product.SubcategoryID = subcategoryID
	}

	if input.Images != nil {
		product.Images = *input.Images
	}
	if input.Specs != nil {
		product.Specs = *input.Specs
	}

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
	}

	s.record(ctx, actor, enums.ActionProductUpdated, updated.ID, map[string]any{"name": updated.Name})
	return NewProductDTO(updated), nil
}

// DeleteProduct removes a product from the catalog.
func (s *service) DeleteProduct(ctx context.Context, actor activity.Actor, id uuid.UUID) error {
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
	}

	s.record(ctx, actor, enums.ActionProductDeleted, id, map[string]any{"name": product.Name})
	return nil
}

func (s *service) loadProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	return product, nil
}

func (s *service) ensureCategoryTree(ctx context.Context, categoryID uuid.UUID, subcategoryID *uuid.UUID) error {
	if _, err := s.categories.FindByID(ctx, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "category does not exist")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load category")
	}
	if subcategoryID == nil {
		return nil
	}
	subcategory, err := s.categories.FindSubcategoryByID(ctx, *subcategoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "subcategory does not exist")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load subcategory")
	}
	if subcategory.CategoryID != categoryID {
		return pkgerrors.New(pkgerrors.CodeValidation, "subcategory does not belong to category")
	}
	return nil
}

func (s *service) record(ctx context.Context, actor activity.Actor, action enums.ActivityAction, id uuid.UUID, details map[string]any) {
	s.activity.Record(ctx, activity.RecordInput{
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Action:     action,
		EntityType: "product",
		EntityID:   &id,
		Details:    details,
	})
}
