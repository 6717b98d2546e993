package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/siegrin/basecamp-backend/pkg/types"
)

// AnalyticsSnapshotID is the primary key of the single aggregate row.
const AnalyticsSnapshotID = 1

// AnalyticsSnapshot is the singleton row holding store-wide counters.
type AnalyticsSnapshot struct {
	ID            int                 `gorm:"column:id;primaryKey"`
	TotalVisitors int64               `gorm:"column:total_visitors;not null;default:0"`
	DailyVisitors types.DailyVisitors `gorm:"column:daily_visitors;type:jsonb;not null"`
	ProductViews  int64               `gorm:"column:product_views;not null;default:0"`
	TopProducts   types.TopProducts   `gorm:"column:top_products;type:jsonb;not null"`
	TotalRentals  int64               `gorm:"column:total_rentals;not null;default:0"`
	TotalRevenue  decimal.Decimal     `gorm:"column:total_revenue;type:numeric(14,2);not null;default:0"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
