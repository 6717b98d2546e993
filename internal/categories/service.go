package category

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/siegrin/basecamp-backend/internal/activity"
	dbpkg "github.com/siegrin/basecamp-backend/pkg/db"
	"github.com/siegrin/basecamp-backend/pkg/db/models"
	"github.com/siegrin/basecamp-backend/pkg/enums"
	pkgerrors "github.com/siegrin/basecamp-backend/pkg/errors"
)

// Service exposes catalog tree management operations.
type Service interface {
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*CategoryDTO, error)
	CreateCategory(ctx context.Context, actor activity.Actor, input CreateCategoryInput) (*CategoryDTO, error)
	UpdateCategory(ctx context.Context, actor activity.Actor, id uuid.UUID, input UpdateCategoryInput) (*CategoryDTO, error)
	DeleteCategory(ctx context.Context, actor activity.Actor, id uuid.UUID) error
	CreateSubcategory(ctx context.Context, actor activity.Actor, input CreateSubcategoryInput) (*SubcategoryDTO, error)
	UpdateSubcategory(ctx context.Context, actor activity.Actor, id uuid.UUID, input UpdateSubcategoryInput) (*SubcategoryDTO, error)
	DeleteSubcategory(ctx context.Context, actor activity.Actor, id uuid.UUID) error
}

// CreateCategoryInput holds the validated payload to create a category.
type CreateCategoryInput struct {
	Name string
	Icon *string
}

// UpdateCategoryInput holds optional mutation values for a category.
type UpdateCategoryInput struct {
	Name *string
	Icon *string
}

// CreateSubcategoryInput holds the validated payload to create a subcategory.
type CreateSubcategoryInput struct {
	CategoryID uuid.UUID
	Name       string
}

// UpdateSubcategoryInput holds optional mutation values for a subcategory.
type UpdateSubcategoryInput struct {
	Name *string
}

type categoryStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, category *models.Category) (*models.Category, error)
	Update(ctx context.Context, category *models.Category) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountProducts(ctx context.Context, categoryID uuid.UUID) (int64, error)
	CountSubcategories(ctx context.Context, categoryID uuid.UUID) (int64, error)
	CountProductsInSubcategory(ctx context.Context, subcategoryID uuid.UUID) (int64, error)
	FindSubcategoryByID(ctx context.Context, id uuid.UUID) (*models.Subcategory, error)
	CreateSubcategory(ctx context.Context, subcategory *models.Subcategory) (*models.Subcategory, error)
	UpdateSubcategory(ctx context.Context, subcategory *models.Subcategory) (*models.Subcategory, error)
	DeleteSubcategory(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo     categoryStore
	activity activity.Recorder
}

// NewService constructs a category service instance.
func NewService(repo categoryStore, recorder activity.Recorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("activity recorder required")
	}
	return &service{repo: repo, activity: recorder}, nil
}

// ListCategories returns the full catalog tree.
func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list categories")
	}
	dtos := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, NewCategoryDTO(&rows[i]))
	}
	return dtos, nil
}

// GetCategory loads one category with its subcategories.
func (s *service) GetCategory(ctx context.Context, id uuid.UUID) (*CategoryDTO, error) {
	category, err := s.loadCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := NewCategoryDTO(category)
	return &dto, nil
}

// CreateCategory inserts a new top-level category.
func (s *service) CreateCategory(ctx context.Context, actor activity.Actor, input CreateCategoryInput) (*CategoryDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}

	category := &models.Category{Name: name, Icon: input.Icon}
	created, err := s.repo.Create(ctx, category)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("category %q already exists", name))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert category")
	}

	s.recordCategory(ctx, actor, enums.ActionCategoryCreated, created.ID, map[string]any{"name": created.Name})
	dto := NewCategoryDTO(created)
	return &dto, nil
}

// UpdateCategory applies partial changes to a category.
func (s *service) UpdateCategory(ctx context.Context, actor activity.Actor, id uuid.UUID, input UpdateCategoryInput) (*CategoryDTO, error) {
	category, err := s.loadCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name cannot be empty")
		}
		category.Name = name
	}
	if input.Icon != nil {
		category.Icon = input.Icon
	}

	updated, err := s.repo.Update(ctx, category)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("category %q already exists", category.Name))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update category")
	}

	s.recordCategory(ctx, actor, enums.ActionCategoryUpdated, updated.ID, map[string]any{"name": updated.Name})
	dto := NewCategoryDTO(updated)
	return &dto, nil
}

// DeleteCategory removes a category. Deletion is refused while any product
// or subcategory still references the category, so listings never point at
// a missing parent.
func (s *service) DeleteCategory(ctx context.Context, actor activity.Actor, id uuid.UUID) error {
	category, err := s.loadCategory(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.repo.CountProducts(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count category products")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("category %q still has %d products", category.Name, count))
	}

	subcategories, err := s.repo.CountSubcategories(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count subcategories")
	}
	if subcategories > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("category %q still has %d subcategories", category.Name, subcategories))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete category")
	}

	s.recordCategory(ctx, actor, enums.ActionCategoryDeleted, id, map[string]any{"name": category.Name})
	return nil
}

// CreateSubcategory inserts a subcategory under an existing category.
func (s *service) CreateSubcategory(ctx context.Context, actor activity.Actor, input CreateSubcategoryInput) (*SubcategoryDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subcategory name is required")
	}
	if _, err := s.loadCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	subcategory := &models.Subcategory{CategoryID: input.CategoryID, Name: name}
	created, err := s.repo.CreateSubcategory(ctx, subcategory)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert subcategory")
	}

	s.recordSubcategory(ctx, actor, enums.ActionSubcategoryCreated, created.ID, map[string]any{"name": created.Name})
	dto := NewSubcategoryDTO(created)
	return &dto, nil
}

// UpdateSubcategory applies partial changes to a subcategory.
func (s *service) UpdateSubcategory(ctx context.Context, actor activity.Actor, id uuid.UUID, input UpdateSubcategoryInput) (*SubcategoryDTO, error) {
	subcategory, err := s.loadSubcategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "subcategory name cannot be empty")
		}
		subcategory.Name = name
	}

	updated, err := s.repo.UpdateSubcategory(ctx, subcategory)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update subcategory")
	}

	s.recordSubcategory(ctx, actor, enums.ActionSubcategoryUpdated, updated.ID, map[string]any{"name": updated.Name})
	dto := NewSubcategoryDTO(updated)
	return &dto, nil
}

// DeleteSubcategory removes a subcategory under the same restrict policy as
// categories.
func (s *service) DeleteSubcategory(ctx context.Context, actor activity.Actor, id uuid.UUID) error {
	subcategory, err := s.loadSubcategory(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.repo.CountProductsInSubcategory(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count subcategory products")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("subcategory %q still has %d products", subcategory.Name, count))
	}

	if err := s.repo.DeleteSubcategory(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete subcategory")
	}

	s.recordSubcategory(ctx, actor, enums.ActionSubcategoryDeleted, id, map[string]any{"name": subcategory.Name})
	return nil
}

func (s *service) loadCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load category")
	}
	return category, nil
}

func (s *service) loadSubcategory(ctx context.Context, id uuid.UUID) (*models.Subcategory, error) {
	subcategory, err := s.repo.FindSubcategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subcategory not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load subcategory")
	}
	return subcategory, nil
}

func (s *service) recordCategory(ctx context.Context, actor activity.Actor, action enums.ActivityAction, id uuid.UUID, details map[string]any) {
	s.activity.Record(ctx, activity.RecordInput{
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Action:     action,
		EntityType: "category",
		EntityID:   &id,
		Details:    details,
	})
}

func (s *service) recordSubcategory(ctx context.Context, actor activity.Actor, action enums.ActivityAction, id uuid.UUID, details map[string]any) {
	s.activity.Record(ctx, activity.RecordInput{
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Action:     action,
		EntityType: "subcategory",
		EntityID:   &id,
		Details:    details,
	})
}

// CategoryDTO is the category payload returned to clients.
type CategoryDTO struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name"`
	Icon          *string          `json:"icon,omitempty"`
	Subcategories []SubcategoryDTO `json:"subcategories"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// SubcategoryDTO is the subcategory payload returned to clients.
type SubcategoryDTO struct {
	ID         uuid.UUID `json:"id"`
	CategoryID uuid.UUID `json:"category_id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewCategoryDTO builds a DTO from the persisted model.
func NewCategoryDTO(category *models.Category) CategoryDTO {
	dto := CategoryDTO{
		ID:            category.ID,
		Name:          category.Name,
		Icon:          category.Icon,
		Subcategories: make([]SubcategoryDTO, 0, len(category.Subcategories)),
		CreatedAt:     category.CreatedAt,
		UpdatedAt:     category.UpdatedAt,
	}
	for i := range category.Subcategories {
		dto.Subcategories = append(dto.Subcategories, NewSubcategoryDTO(&category.Subcategories[i]))
	}
	return dto
}

// NewSubcategoryDTO builds a DTO from the persisted model.
func NewSubcategoryDTO(subcategory *models.Subcategory) SubcategoryDTO {
	return SubcategoryDTO{
		ID:         subcategory.ID,
		CategoryID: subcategory.CategoryID,
		Name:       subcategory.Name,
		CreatedAt:  subcategory.CreatedAt,
		UpdatedAt:  subcategory.UpdatedAt,
	}
}
