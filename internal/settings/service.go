package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/siegrin/basecamp-backend/internal/activity"
	"github.com/siegrin/basecamp-backend/pkg/db/models"
	"github.com/siegrin/basecamp-backend/pkg/enums"
	pkgerrors "github.com/siegrin/basecamp-backend/pkg/errors"
	"github.com/siegrin/basecamp-backend/pkg/types"
)

// SettingDTO is one keyed configuration blob returned to clients.
type SettingDTO struct {
	Key       string         `json:"key"`
	Value     map[string]any `json:"value"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Service exposes storefront settings management.
type Service interface {
	GetSetting(ctx context.Context, key string) (*SettingDTO, error)
	ListSettings(ctx context.Context) ([]SettingDTO, error)
	UpdateSetting(ctx context.Context, actor activity.Actor, key string, value map[string]any) (*SettingDTO, error)
}

type settingStore interface {
	Find(ctx context.Context, key string) (*models.Setting, error)
	List(ctx context.Context) ([]models.Setting, error)
	Upsert(ctx context.Context, setting *models.Setting) error
}

type service struct {
	repo     settingStore
	activity activity.Recorder
}

// NewService constructs a settings service instance.
func NewService(repo settingStore, recorder activity.Recorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("activity recorder required")
	}
	return &service{repo: repo, activity: recorder}, nil
}

// GetSetting loads one setting by key.
func (s *service) GetSetting(ctx context.Context, key string) (*SettingDTO, error) {
	setting, err := s.repo.Find(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "setting not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load setting")
	}
	return newSettingDTO(setting), nil
}

// ListSettings returns every setting.
func (s *service) ListSettings(ctx context.Context) ([]SettingDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list settings")
	}
	dtos := make([]SettingDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *newSettingDTO(&rows[i]))
	}
	return dtos, nil
}

// UpdateSetting overwrites the value for a key, creating it when absent.
func (s *service) UpdateSetting(ctx context.Context, actor activity.Actor, key string, value map[string]any) (*SettingDTO, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "setting key is required")
	}
	if value == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "setting value is required")
	}

	setting := &models.Setting{Key: key, Value: types.JSONMap(value)}
	if err := s.repo.Upsert(ctx, setting); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: upsert setting")
	}

	stored, err := s.repo.Find(ctx, key)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload setting")
	}

	s.activity.Record(ctx, activity.RecordInput{
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Action:     enums.ActionSettingsUpdated,
		EntityType: "setting",
		Details:    map[string]any{"key": key},
	})
	return newSettingDTO(stored), nil
}

func newSettingDTO(setting *models.Setting) *SettingDTO {
	return &SettingDTO{
		Key:       setting.Key,
		Value:     setting.Value,
		UpdatedAt: setting.UpdatedAt,
	}
}
