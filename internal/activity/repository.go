package activity

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/siegrin/basecamp-backend/pkg/db/models"
)

// Repository persists activity log entries.
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

// Create inserts a new log entry.
func (r *Repository) Create(ctx context.Context, entry *models.ActivityLogEntry) (*models.ActivityLogEntry, error) {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// ListRecent returns the newest entries up to limit.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]models.ActivityLogEntry, error) {
	var rows []models.ActivityLogEntry
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}

// ListByActor returns the newest entries recorded by the given actor.
func (r *Repository) ListByActor(ctx context.Context, actorID uuid.UUID, limit int) ([]models.ActivityLogEntry, error) {
	var rows []models.ActivityLogEntry
	err := r.db.WithContext(ctx).
		Where("actor_id = ?", actorID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}

// DeleteAll wipes the activity log.
func (r *Repository) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("1 = 1").Delete(&models.ActivityLogEntry{})
	return res.RowsAffected, res.Error
}
