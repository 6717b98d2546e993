package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/siegrin/basecamp-backend/pkg/enums"
	"github.com/siegrin/basecamp-backend/pkg/types"
)

// ActivityLogEntry records one admin-visible event on the store.
type ActivityLogEntry struct {
	ID         uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ActorID    *uuid.UUID           `gorm:"column:actor_id;type:uuid"`
	ActorName  string               `gorm:"column:actor_name;not null"`
	Action     enums.ActivityAction `gorm:"column:action;type:text;not null"`
	EntityType string               `gorm:"column:entity_type;not null"`
	EntityID   *uuid.UUID           `gorm:"column:entity_id;type:uuid"`
	Details    types.JSONMap        `gorm:"column:details;type:jsonb"`
	CreatedAt  time.Time            `gorm:"column:created_at;autoCreateTime;index:idx_activity_log_created_at,sort:desc"`
}
