package models

import (
	"time"

	"github.com/siegrin/basecamp-backend/pkg/types"
)

// Setting is one keyed blob of storefront configuration.
type Setting struct {
	Key       string        `gorm:"column:key;primaryKey"`
	Value     types.JSONMap `gorm:"column:value;type:jsonb;not null"`
	UpdatedAt time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}
