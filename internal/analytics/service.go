package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/siegrin/basecamp-backend/internal/activity"
	"github.com/siegrin/basecamp-backend/pkg/db/models"
	"github.com/siegrin/basecamp-backend/pkg/enums"
	pkgerrors "github.com/siegrin/basecamp-backend/pkg/errors"
	"github.com/siegrin/basecamp-backend/pkg/types"
)

const topProductsCap = 10

// SnapshotDTO is the aggregate view returned to the dashboard.
type SnapshotDTO struct {
	TotalVisitors int64              `json:"total_visitors"`
	DailyVisitors [7]int64           `json:"daily_visitors"`
	ProductViews  int64              `json:"product_views"`
	TopProducts   []types.TopProduct `json:"top_products"`
	TotalRentals  int64              `json:"total_rentals"`
	TotalRevenue  decimal.Decimal    `json:"total_revenue"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// Service exposes the incremental analytics counters. Updates are
// read-modify-write on a single row; missed updates drift and the reconcile
// job repairs the rental counters from the rentals table.
type Service interface {
	RecordProductView(ctx context.Context, productID uuid.UUID, name string) error
	RecordRentalCompleted(ctx context.Context, total decimal.Decimal) error
	Snapshot(ctx context.Context) (*SnapshotDTO, error)
	Reset(ctx context.Context, actor activity.Actor) error
}

type snapshotStore interface {
	Get(ctx context.Context) (*models.AnalyticsSnapshot, error)
	Save(ctx context.Context, snapshot *models.AnalyticsSnapshot) error
	AddCompletedRental(ctx context.Context, total decimal.Decimal) (int64, error)
}

type service struct {
	repo     snapshotStore
	activity activity.Recorder
	now      func() time.Time
}

// NewService constructs an analytics service instance.
func NewService(repo snapshotStore, recorder activity.Recorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("analytics repository required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("activity recorder required")
	}
	return &service{repo: repo, activity: recorder, now: time.Now}, nil
}

// RecordProductView bumps the day-of-week visitor counter and the product's
// slot on the leaderboard.
func (s *service) RecordProductView(ctx context.Context, productID uuid.UUID, name string) error {
	snapshot, err := s.repo.Get(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load analytics snapshot")
	}

	weekday := int(s.now().UTC().Weekday())
	snapshot.DailyVisitors[weekday]++
	snapshot.TotalVisitors++
	snapshot.ProductViews++
	snapshot.TopProducts = bumpTopProduct(snapshot.TopProducts, productID, name)

	if err := s.repo.Save(ctx, snapshot); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save analytics snapshot")
	}
	return nil
}

// RecordRentalCompleted adds a completed rental's total to the running
// revenue and rental counters.
func (s *service) RecordRentalCompleted(ctx context.Context, total decimal.Decimal) error {
	affected, err := s.repo.AddCompletedRental(ctx, total)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: bump rental counters")
	}
	if affected == 0 {
		// Seed the row and retry once.
		if _, err := s.repo.Get(ctx); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: seed analytics snapshot")
		}
		if _, err := s.repo.AddCompletedRental(ctx, total); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: bump rental counters")
		}
	}
	return nil
}

// Snapshot returns the current aggregate view.
func (s *service) Snapshot(ctx context.Context) (*SnapshotDTO, error) {
	snapshot, err := s.repo.Get(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load analytics snapshot")
	}
	return &SnapshotDTO{
		TotalVisitors: snapshot.TotalVisitors,
		DailyVisitors: snapshot.DailyVisitors,
		ProductViews:  snapshot.ProductViews,
		TopProducts:   append(types.TopProducts{}, snapshot.TopProducts...),
		TotalRentals:  snapshot.TotalRentals,
		TotalRevenue:  snapshot.TotalRevenue,
		UpdatedAt:     snapshot.UpdatedAt,
	}, nil
}

// Reset zeroes every counter.
func (s *service) Reset(ctx context.Context, actor activity.Actor) error {
	snapshot, err := s.repo.Get(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load analytics snapshot")
	}

	snapshot.TotalVisitors = 0
	snapshot.DailyVisitors = types.DailyVisitors{}
	snapshot.ProductViews = 0
	snapshot.TopProducts = types.TopProducts{}
	snapshot.TotalRentals = 0
	snapshot.TotalRevenue = decimal.Zero

	if err := s.repo.Save(ctx, snapshot); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reset analytics snapshot")
	}

	s.activity.Record(ctx, activity.RecordInput{
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Action:     enums.ActionAnalyticsReset,
		EntityType: "analytics",
	})
	return nil
}

// bumpTopProduct increments the product's view count on the leaderboard,
// inserting it when absent, then re-sorts and truncates to the cap.
func bumpTopProduct(list types.TopProducts, productID uuid.UUID, name string) types.TopProducts {
	found := false
	for i := range list {
		if list[i].ProductID == productID {
			list[i].Views++
			if name != "" {
				list[i].Name = name
			}
			found = true
			break
		}
	}
	if !found {
		list = append(list, types.TopProduct{ProductID: productID, Name: name, Views: 1})
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Views > list[j].Views
	})
	if len(list) > topProductsCap {
		list = list[:topProductsCap]
	}
	return list
}
