package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/siegrin/basecamp-backend/pkg/db/models"
	"github.com/siegrin/basecamp-backend/pkg/enums"
	pkgerrors "github.com/siegrin/basecamp-backend/pkg/errors"
	"github.com/siegrin/basecamp-backend/pkg/logger"
	"github.com/siegrin/basecamp-backend/pkg/types"
)

const defaultListLimit = 100

// Actor identifies who performed an audited operation.
type Actor struct {
	ID   *uuid.UUID
	Name string
}

// RecordInput captures one event to append to the log.
type RecordInput struct {
	ActorID    *uuid.UUID
	ActorName  string
	Action     enums.ActivityAction
	EntityType string
	EntityID   *uuid.UUID
	Details    map[string]any
}

// Recorder is the write-only surface other services use to log events.
type Recorder interface {
	Record(ctx context.Context, input RecordInput)
}

// Service exposes activity log operations.
type Service interface {
	Recorder
	ListRecent(ctx context.Context, limit int) ([]EntryDTO, error)
	Reset(ctx context.Context, actor Actor) (int64, error)
}

type entryStore interface {
	Create(ctx context.Context, entry *models.ActivityLogEntry) (*models.ActivityLogEntry, error)
	ListRecent(ctx context.Context, limit int) ([]models.ActivityLogEntry, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type service struct {
	repo entryStore
	logg *logger.Logger
}

// NewService constructs an activity service instance.
func NewService(repo entryStore, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("activity repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// Record appends an entry without surfacing failures to the caller. A broken
// audit trail must never abort the operation being audited.
func (s *service) Record(ctx context.Context, input RecordInput) {
	if !input.Action.IsValid() {
		s.logg.Warn(s.logg.WithField(ctx, "action", string(input.Action)), "skipping activity entry with unknown action")
		return
	}

	entry := &models.ActivityLogEntry{
		ActorID:    input.ActorID,
		ActorName:  input.ActorName,
		Action:     input.Action,
		EntityType: input.EntityType,
		EntityID:   input.EntityID,
	}
	if input.Details != nil {
		entry.Details = types.JSONMap(input.Details)
	}
	if entry.ActorName == "" {
		entry.ActorName = "system"
	}

	if _, err := s.repo.Create(ctx, entry); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "action", string(input.Action)), "failed to record activity entry", err)
	}
}

// ListRecent returns the newest entries, capped at the default page size.
func (s *service) ListRecent(ctx context.Context, limit int) ([]EntryDTO, error) {
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	rows, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list activity entries")
	}
	dtos := make([]EntryDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, NewEntryDTO(&rows[i]))
	}
	return dtos, nil
}

// Reset wipes the log and records the reset itself as the first new entry.
func (s *service) Reset(ctx context.Context, actor Actor) (int64, error) {
	removed, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reset activity log")
	}

	s.Record(ctx, RecordInput{
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Action:     enums.ActionActivityLogReset,
		EntityType: "activity_log",
		Details:    map[string]any{"removed": removed},
	})

	return removed, nil
}

// EntryDTO is the activity entry payload returned to clients.
type EntryDTO struct {
	ID         uuid.UUID      `json:"id"`
	ActorID    *uuid.UUID     `json:"actor_id,omitempty"`
	ActorName  string         `json:"actor_name"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   *uuid.UUID     `json:"entity_id,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// NewEntryDTO builds a DTO from the persisted model.
func NewEntryDTO(entry *models.ActivityLogEntry) EntryDTO {
	return EntryDTO{
		ID:         entry.ID,
		ActorID:    entry.ActorID,
		ActorName:  entry.ActorName,
		Action:     string(entry.Action),
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Details:    entry.Details,
		CreatedAt:  entry.CreatedAt,
	}
}
