package rental

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/siegrin/basecamp-backend/internal/activity"
	product "github.com/siegrin/basecamp-backend/internal/products"
	"github.com/siegrin/basecamp-backend/pkg/db"
	"github.com/siegrin/basecamp-backend/pkg/db/models"
	"github.com/siegrin/basecamp-backend/pkg/enums"
	pkgerrors "github.com/siegrin/basecamp-backend/pkg/errors"
	"github.com/siegrin/basecamp-backend/pkg/logger"
	"github.com/siegrin/basecamp-backend/pkg/types"
)

// Service exposes the rental lifecycle operations.
type Service interface {
	CreateRental(ctx context.Context, actor activity.Actor, input CreateRentalInput) (*RentalDTO, error)
	GetRental(ctx context.Context, id uuid.UUID) (*RentalDTO, error)
	ListRentals(ctx context.Context, query ListQuery) (*ListResultDTO, error)
	ActivateRental(ctx context.Context, actor activity.Actor, id uuid.UUID) (*RentalDTO, error)
	CompleteRental(ctx context.Context, actor activity.Actor, id uuid.UUID) (*RentalDTO, error)
	CancelRental(ctx context.Context, actor activity.Actor, id uuid.UUID) (*RentalDTO, error)
	ResetRentals(ctx context.Context, actor activity.Actor) (int64, error)
}

// CreateRentalItemInput selects one product line for a new rental.
type CreateRentalItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	Days      int
}

// CreateRentalInput holds the validated payload to create a rental.
type CreateRentalInput struct {
	UserID    uuid.UUID
	UserName  string
	Items     []CreateRentalItemInput
	StartDate *time.Time
	EndDate   *time.Time
	Notes     *string
}

// completionRecorder feeds completed rental totals into the analytics
// counters. Failures there never undo a completed rental; the reconcile job
// repairs any drift from the rentals table.
type completionRecorder interface {
	RecordRentalCompleted(ctx context.Context, total decimal.Decimal) error
}

type service struct {
	db        *db.Client
	rentals   *Repository
	products  *product.Repository
	activity  activity.Recorder
	analytics completionRecorder
	logg      *logger.Logger
}

// NewService constructs a rental service instance.
func NewService(client *db.Client, rentals *Repository, products *product.Repository, recorder activity.Recorder, analytics completionRecorder, logg *logger.Logger) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if rentals == nil {
		return nil, fmt.Errorf("rental repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("activity recorder required")
	}
	if analytics == nil {
		return nil, fmt.Errorf("analytics recorder required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		db:        client,
		rentals:   rentals,
		products:  products,
		activity:  recorder,
		analytics: analytics,
		logg:      logg,
	}, nil
}

// CreateRental snapshots the selected products into a pending rental. Stock
// is only checked here, never decremented; the reservation happens when an
// admin activates the rental.
func (s *service) CreateRental(ctx context.Context, actor activity.Actor, input CreateRentalInput) (*RentalDTO, error) {
	userName := strings.TrimSpace(input.UserName)
	if userName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user name is required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rental needs at least one item")
	}
	seen := make(map[uuid.UUID]bool, len(input.Items))
	for _, item := range input.Items {
		if item.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be at least 1")
		}
		if item.Days < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item days must be at least 1")
		}
		if seen[item.ProductID] {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate product in rental items")
		}
		seen[item.ProductID] = true
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end_date cannot precede start_date")
	}

	ids := make([]uuid.UUID, 0, len(input.Items))
	for _, item := range input.Items {
		ids = append(ids, item.ProductID)
	}
	rows, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load rental products")
	}
	byID := indexProducts(rows)

	items := make(types.RentalItems, 0, len(input.Items))
	total := decimal.Zero
	for _, item := range input.Items {
		prod, ok := byID[item.ProductID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown product in rental items").
				WithDetails(map[string]any{"product_id": item.ProductID})
		}
		if item.Quantity > prod.Stock {
			return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock for "+prod.Name).
				WithDetails(map[string]any{
					"product_id": prod.ID,
					"name":       prod.Name,
					"requested":  item.Quantity,
					"available":  prod.Stock,
				})
		}
		subtotal := prod.PricePerDay.
			Mul(decimal.NewFromInt(int64(item.Days))).
			Mul(decimal.NewFromInt(int64(item.Quantity)))
		items = append(items, types.RentalItem{
			ProductID:   prod.ID,
			Name:        prod.Name,
			Quantity:    item.Quantity,
			PricePerDay: prod.PricePerDay,
			Days:        item.Days,
			Subtotal:    subtotal,
		})
		total = total.Add(subtotal)
	}

	rental := &models.Rental{
		UserID:    input.UserID,
		UserName:  userName,
		Items:     items,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Total:     total,
		Status:    enums.RentalStatusPending,
		Notes:     input.Notes,
	}
	created, err := s.rentals.Create(ctx, rental)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert rental")
	}

	s.record(ctx, actor, enums.ActionRentalCreated, created.ID, map[string]any{
		"user_name": created.UserName,
		"total":     created.Total.String(),
		"items":     len(created.Items),
	})
	return NewRentalDTO(created), nil
}

// GetRental loads a single rental.
func (s *service) GetRental(ctx context.Context, id uuid.UUID) (*RentalDTO, error) {
	rental, err := s.loadRental(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewRentalDTO(rental), nil
}

// ListRentals returns a filtered page of rentals.
func (s *service) ListRentals(ctx context.Context, query ListQuery) (*ListResultDTO, error) {
	result, err := s.rentals.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list rentals")
	}
	dtos := make([]RentalDTO, 0, len(result.Rentals))
	for i := range result.Rentals {
		dtos = append(dtos, *NewRentalDTO(&result.Rentals[i]))
	}
	return &ListResultDTO{Rentals: dtos, NextCursor: result.NextCursor}, nil
}

// ActivateRental reserves stock for every item and flips the rental to
// active, all inside one transaction. A shortfall on any line rolls the
// whole reservation back.
func (s *service) ActivateRental(ctx context.Context, actor activity.Actor, id uuid.UUID) (*RentalDTO, error) {
	rental, err := s.loadRental(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureTransition(rental, enums.RentalStatusActive); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := reserveStock(ctx, s.products.WithTx(tx), rental.Items); err != nil {
			return err
		}
		return s.transition(ctx, s.rentals.WithTx(tx), rental, enums.RentalStatusActive, map[string]any{"activated_at": now})
	})
	if err != nil {
		return nil, err
	}

	rental.Status = enums.RentalStatusActive
	rental.ActivatedAt = &now
	s.record(ctx, actor, enums.ActionRentalActivated, rental.ID, map[string]any{"user_name": rental.UserName})
	return NewRentalDTO(rental), nil
}

// CompleteRental returns the reserved stock and flips the rental to
// completed, then feeds the total into the analytics counters.
func (s *service) CompleteRental(ctx context.Context, actor activity.Actor, id uuid.UUID) (*RentalDTO, error) {
	rental, err := s.loadRental(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureTransition(rental, enums.RentalStatusCompleted); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := releaseStock(ctx, s.products.WithTx(tx), rental.Items); err != nil {
			return err
		}
		return s.transition(ctx, s.rentals.WithTx(tx), rental, enums.RentalStatusCompleted, map[string]any{"completed_at": now})
	})
	if err != nil {
		return nil, err
	}

	if err := s.analytics.RecordRentalCompleted(ctx, rental.Total); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "rental_id", rental.ID.String()), "recording completed rental in analytics", err)
	}

	rental.Status = enums.RentalStatusCompleted
	rental.CompletedAt = &now
	s.record(ctx, actor, enums.ActionRentalCompleted, rental.ID, map[string]any{
		"user_name": rental.UserName,
		"total":     rental.Total.String(),
	})
	return NewRentalDTO(rental), nil
}

// CancelRental flips a pending rental to cancelled. Stock is untouched:
// nothing was reserved while the rental sat pending.
func (s *service) CancelRental(ctx context.Context, actor activity.Actor, id uuid.UUID) (*RentalDTO, error) {
	rental, err := s.loadRental(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureTransition(rental, enums.RentalStatusCancelled); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return s.transition(ctx, s.rentals.WithTx(tx), rental, enums.RentalStatusCancelled, map[string]any{"cancelled_at": now})
	})
	if err != nil {
		return nil, err
	}

	rental.Status = enums.RentalStatusCancelled
	rental.CancelledAt = &now
	s.record(ctx, actor, enums.ActionRentalCancelled, rental.ID, map[string]any{"user_name": rental.UserName})
	return NewRentalDTO(rental), nil
}

// ResetRentals wipes the rental history. Stock levels stay as they are; the
// admin doing a reset owns squaring the shelves afterwards.
func (s *service) ResetRentals(ctx context.Context, actor activity.Actor) (int64, error) {
	removed, err := s.rentals.DeleteAll(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reset rentals")
	}
	s.record(ctx, actor, enums.ActionRentalsReset, uuid.Nil, map[string]any{"removed": removed})
	return removed, nil
}

func (s *service) loadRental(ctx context.Context, id uuid.UUID) (*models.Rental, error) {
	rental, err := s.rentals.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "rental not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load rental")
	}
	return rental, nil
}

func (s *service) ensureTransition(rental *models.Rental, next enums.RentalStatus) error {
	if rental.Status.CanTransitionTo(next) {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("rental cannot move from %s to %s", rental.Status, next)).
		WithDetails(map[string]any{"status": string(rental.Status)})
}

// transition runs the guarded status update and treats a zero row count as a
// concurrent transition that won first.
func (s *service) transition(ctx context.Context, repo *Repository, rental *models.Rental, next enums.RentalStatus, extra map[string]any) error {
	affected, err := repo.TransitionStatus(ctx, rental.ID, rental.Status, next, extra)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: transition rental status")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "rental status changed concurrently")
	}
	return nil
}

func (s *service) record(ctx context.Context, actor activity.Actor, action enums.ActivityAction, rentalID uuid.UUID, details map[string]any) {
	input := activity.RecordInput{
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Action:     action,
		EntityType: "rental",
		Details:    details,
	}
	if rentalID != uuid.Nil {
		id := rentalID
		input.EntityID = &id
	}
	s.activity.Record(ctx, input)
}
