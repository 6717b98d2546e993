package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/siegrin/basecamp-backend/pkg/enums"
	"github.com/siegrin/basecamp-backend/pkg/types"
)

// Rental is one reservation of equipment for a date range. Items are a
// frozen snapshot of the rented products at creation time.
type Rental struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index"`
	UserName    string             `gorm:"column:user_name;not null"`
	Items       types.RentalItems  `gorm:"column:items;type:jsonb;not null"`
	StartDate   *time.Time         `gorm:"column:start_date"`
	EndDate     *time.Time         `gorm:"column:end_date"`
	Total       decimal.Decimal    `gorm:"column:total;type:numeric(12,2);not null"`
	Status      enums.RentalStatus `gorm:"column:status;type:rental_status;not null;default:'pending'"`
	Notes       *string            `gorm:"column:notes"`
	ActivatedAt *time.Time         `gorm:"column:activated_at"`
	CompletedAt *time.Time         `gorm:"column:completed_at"`
	CancelledAt *time.Time         `gorm:"column:cancelled_at"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
