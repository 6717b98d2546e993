package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/siegrin/basecamp-backend/pkg/enums"
	"github.com/siegrin/basecamp-backend/pkg/types"
)

// Product represents a rentable piece of camping equipment.
type Product struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string             `gorm:"column:name;not null"`
	Description   *string            `gorm:"column:description"`
	CategoryID    uuid.UUID          `gorm:"column:category_id;type:uuid;not null"`
	SubcategoryID *uuid.UUID         `gorm:"column:subcategory_id;type:uuid"`
	PricePerDay   decimal.Decimal    `gorm:"column:price_per_day;type:numeric(12,2);not null"`
	Stock         int                `gorm:"column:stock;not null;default:0"`
	Availability  enums.Availability `gorm:"column:availability;type:availability;not null;default:'unavailable'"`
	Images        pq.StringArray     `gorm:"column:images;type:text[];not null;default:ARRAY[]::text[]"`
	Specs         types.JSONMap      `gorm:"column:specs;type:jsonb"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
