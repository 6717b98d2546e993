package rental

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/siegrin/basecamp-backend/pkg/db/models"
	"github.com/siegrin/basecamp-backend/pkg/enums"
	"github.com/siegrin/basecamp-backend/pkg/pagination"
)

// Repository wires together rental persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the rental row.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Rental, error) {
	var rental models.Rental
	if err := r.db.WithContext(ctx).First(&rental, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rental, nil
}

// Create inserts a new rental row.
func (r *Repository) Create(ctx context.Context, rental *models.Rental) (*models.Rental, error) {
	if err := r.db.WithContext(ctx).Create(rental).Error; err != nil {
		return nil, err
	}
	return rental, nil
}

// Update persists the full rental row.
func (r *Repository) Update(ctx context.Context, rental *models.Rental) (*models.Rental, error) {
	if err := r.db.WithContext(ctx).Save(rental).Error; err != nil {
		return nil, err
	}
	return rental, nil
}

// TransitionStatus flips the status column only when the rental is still in
// the expected prior state, so two racing admins cannot both win.
func (r *Repository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.RentalStatus, extra map[string]any) (int64, error) {
	updates := map[string]any{"status": to}
	for column, value := range extra {
		updates[column] = value
	}
	res := r.db.WithContext(ctx).
		Model(&models.Rental{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return res.RowsAffected, res.Error
}

// ListFilters narrow the rental listing.
type ListFilters struct {
	UserID *uuid.UUID
	Status *enums.RentalStatus
}

// ListQuery combines filters with cursor pagination inputs.
type ListQuery struct {
	Pagination pagination.Params
	Filters    ListFilters
}

// ListResult is one page of rentals plus the cursor for the next page.
type ListResult struct {
	Rentals    []models.Rental
	NextCursor string
}

// List returns a page of rentals ordered newest first.
func (r *Repository) List(ctx context.Context, query ListQuery) (*ListResult, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).Model(&models.Rental{})
	if query.Filters.UserID != nil {
		qb = qb.Where("user_id = ?", *query.Filters.UserID)
	}
	if query.Filters.Status != nil {
		qb = qb.Where("status = ?", *query.Filters.Status)
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Rental
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error; err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return &ListResult{Rentals: rows, NextCursor: nextCursor}, nil
}

// DeleteAll wipes every rental row.
func (r *Repository) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Rental{})
	return res.RowsAffected, res.Error
}

// CompletedTotals sums count and revenue across completed rentals. The
// analytics reconcile job uses it as the source of truth for its counters.
func (r *Repository) CompletedTotals(ctx context.Context) (int64, decimal.Decimal, error) {
	type row struct {
		Count   int64
		Revenue decimal.Decimal
	}
	var result row
	err := r.db.WithContext(ctx).
		Model(&models.Rental{}).
		Select("COUNT(*) AS count, COALESCE(SUM(total), 0) AS revenue").
		Where("status = ?", enums.RentalStatusCompleted).
		Scan(&result).
		Error
	if err != nil {
		return 0, decimal.Zero, err
	}
	return result.Count, result.Revenue, nil
}
