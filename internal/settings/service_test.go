package settings

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/siegrin/basecamp-backend/internal/activity"
	"github.com/siegrin/basecamp-backend/pkg/db/models"
	"github.com/siegrin/basecamp-backend/pkg/enums"
	pkgerrors "github.com/siegrin/basecamp-backend/pkg/errors"
)

type stubSettingStore struct {
	rows map[string]models.Setting
	err  error
}

func newStubSettingStore() *stubSettingStore {
	return &stubSettingStore{rows: map[string]models.Setting{}}
}

func (s *stubSettingStore) Find(_ context.Context, key string) (*models.Setting, error) {
	if s.err != nil {
		return nil, s.err
	}
	row, ok := s.rows[key]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

func (s *stubSettingStore) List(_ context.Context) ([]models.Setting, error) {
	if s.err != nil {
		return nil, s.err
	}
	rows := make([]models.Setting, 0, len(s.rows))
	for _, row := range s.rows {
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *stubSettingStore) Upsert(_ context.Context, setting *models.Setting) error {
	if s.err != nil {
		return s.err
	}
	s.rows[setting.Key] = *setting
	return nil
}

type stubRecorder struct {
	inputs []activity.RecordInput
}

func (s *stubRecorder) Record(_ context.Context, input activity.RecordInput) {
	s.inputs = append(s.inputs, input)
}

func TestUpdateSetting_UpsertsAndRecords(t *testing.T) {
	t.Parallel()
	store := newStubSettingStore()
	recorder := &stubRecorder{}
	svc, err := NewService(store, recorder)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	actorID := uuid.New()
	actor := activity.Actor{ID: &actorID, Name: "admin"}

	updated, err := svc.UpdateSetting(context.Background(), actor, "storefront", map[string]any{
		"name":     "Basecamp Rentals",
		"whatsapp": "+62811111111",
	})
	if err != nil {
		t.Fatalf("update setting: %v", err)
	}
	if updated.Key != "storefront" || updated.Value["name"] != "Basecamp Rentals" {
		t.Fatalf("unexpected setting: %+v", updated)
	}
	if len(recorder.inputs) != 1 || recorder.inputs[0].Action != enums.ActionSettingsUpdated {
		t.Fatalf("expected settings_updated event, got %+v", recorder.inputs)
	}

	loaded, err := svc.GetSetting(context.Background(), "storefront")
	if err != nil {
		t.Fatalf("get setting: %v", err)
	}
	if loaded.Value["whatsapp"] != "+62811111111" {
		t.Fatalf("unexpected stored value: %+v", loaded.Value)
	}
}

func TestUpdateSetting_Validation(t *testing.T) {
	t.Parallel()
	svc, _ := NewService(newStubSettingStore(), &stubRecorder{})

	if _, err := svc.UpdateSetting(context.Background(), activity.Actor{Name: "admin"}, "  ", map[string]any{"a": 1}); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for blank key, got %v", err)
	}
	if _, err := svc.UpdateSetting(context.Background(), activity.Actor{Name: "admin"}, "storefront", nil); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for nil value, got %v", err)
	}
}

func TestGetSetting_NotFound(t *testing.T) {
	t.Parallel()
	svc, _ := NewService(newStubSettingStore(), &stubRecorder{})

	_, err := svc.GetSetting(context.Background(), "missing")
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
