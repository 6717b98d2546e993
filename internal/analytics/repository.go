package analytics

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/siegrin/basecamp-backend/pkg/db/models"
	"github.com/siegrin/basecamp-backend/pkg/types"
)

// Repository owns the singleton analytics snapshot row.
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

// Get loads the snapshot row, creating the zeroed seed row if the table is
// empty.
func (r *Repository) Get(ctx context.Context) (*models.AnalyticsSnapshot, error) {
	snapshot := models.AnalyticsSnapshot{ID: models.AnalyticsSnapshotID}
	err := r.db.WithContext(ctx).
		Where(models.AnalyticsSnapshot{ID: models.AnalyticsSnapshotID}).
		Attrs(models.AnalyticsSnapshot{
			DailyVisitors: types.DailyVisitors{},
			TopProducts:   types.TopProducts{},
		}).
		FirstOrCreate(&snapshot).Error
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// Save writes the full snapshot row back.
func (r *Repository) Save(ctx context.Context, snapshot *models.AnalyticsSnapshot) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(snapshot).Error
}

// AddCompletedRental bumps the revenue and rental counters in place.
func (r *Repository) AddCompletedRental(ctx context.Context, total decimal.Decimal) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.AnalyticsSnapshot{}).
		Where("id = ?", models.AnalyticsSnapshotID).
		Updates(map[string]any{
			"total_rentals": gorm.Expr("total_rentals + 1"),
			"total_revenue": gorm.Expr("total_revenue + ?", total),
		})
	return res.RowsAffected, res.Error
}

// SetRentalTotals overwrites the rental counters with reconciled values.
func (r *Repository) SetRentalTotals(ctx context.Context, count int64, revenue decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.AnalyticsSnapshot{}).
		Where("id = ?", models.AnalyticsSnapshotID).
		Updates(map[string]any{
			"total_rentals": count,
			"total_revenue": revenue,
		}).Error
}
