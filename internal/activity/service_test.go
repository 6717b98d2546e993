package activity

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/siegrin/basecamp-backend/pkg/db/models"
	"github.com/siegrin/basecamp-backend/pkg/enums"
	"github.com/siegrin/basecamp-backend/pkg/logger"
)

type stubEntryStore struct {
	entries   []models.ActivityLogEntry
	createErr error
	deleteErr error
}

func (s *stubEntryStore) Create(ctx context.Context, entry *models.ActivityLogEntry) (*models.ActivityLogEntry, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	entry.ID = uuid.New()
	s.entries = append(s.entries, *entry)
	return entry, nil
}

func (s *stubEntryStore) ListRecent(ctx context.Context, limit int) ([]models.ActivityLogEntry, error) {
	if limit > len(s.entries) {
		limit = len(s.entries)
	}
	out := make([]models.ActivityLogEntry, limit)
	for i := 0; i < limit; i++ {
		out[i] = s.entries[len(s.entries)-1-i]
	}
	return out, nil
}

func (s *stubEntryStore) DeleteAll(ctx context.Context) (int64, error) {
	if s.deleteErr != nil {
		return 0, s.deleteErr
	}
	removed := int64(len(s.entries))
	s.entries = nil
	return removed, nil
}

func newTestService(t *testing.T, store *stubEntryStore) Service {
	t.Helper()
	svc, err := NewService(store, logger.New(logger.Options{ServiceName: "activity-test"}))
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	return svc
}

func TestRecordAppendsEntry(t *testing.T) {
	store := &stubEntryStore{}
	svc := newTestService(t, store)
	actorID := uuid.New()

	svc.Record(context.Background(), RecordInput{
		ActorID:    &actorID,
		ActorName:  "Admin",
		Action:     enums.ActionProductCreated,
		EntityType: "product",
		Details:    map[string]any{"name": "Tent"},
	})

	if len(store.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(store.entries))
	}
	entry := store.entries[0]
	if entry.Action != enums.ActionProductCreated {
		t.Fatalf("unexpected action %s", entry.Action)
	}
	if entry.ActorID == nil || *entry.ActorID != actorID {
		t.Fatal("actor id not preserved")
	}
}

func TestRecordSwallowsStoreErrors(t *testing.T) {
	store := &stubEntryStore{createErr: errors.New("db down")}
	svc := newTestService(t, store)

	// must not panic or surface the error
	svc.Record(context.Background(), RecordInput{
		ActorName:  "Admin",
		Action:     enums.ActionRentalCreated,
		EntityType: "rental",
	})
}

func TestRecordSkipsUnknownAction(t *testing.T) {
	store := &stubEntryStore{}
	svc := newTestService(t, store)

	svc.Record(context.Background(), RecordInput{
		ActorName:  "Admin",
		Action:     "made_coffee",
		EntityType: "kitchen",
	})

	if len(store.entries) != 0 {
		t.Fatalf("expected unknown action to be skipped, got %d entries", len(store.entries))
	}
}

func TestRecordDefaultsActorName(t *testing.T) {
	store := &stubEntryStore{}
	svc := newTestService(t, store)

	svc.Record(context.Background(), RecordInput{
		Action:     enums.ActionRentalsReset,
		EntityType: "rental",
	})

	if store.entries[0].ActorName != "system" {
		t.Fatalf("expected system actor, got %q", store.entries[0].ActorName)
	}
}

func TestResetRecordsItself(t *testing.T) {
	store := &stubEntryStore{}
	svc := newTestService(t, store)
	ctx := context.Background()

	svc.Record(ctx, RecordInput{ActorName: "Admin", Action: enums.ActionProductCreated, EntityType: "product"})
	svc.Record(ctx, RecordInput{ActorName: "Admin", Action: enums.ActionProductDeleted, EntityType: "product"})

	removed, err := svc.Reset(ctx, Actor{Name: "Admin"})
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if len(store.entries) != 1 {
		t.Fatalf("expected log to contain only the reset entry, got %d", len(store.entries))
	}
	if store.entries[0].Action != enums.ActionActivityLogReset {
		t.Fatalf("unexpected action %s", store.entries[0].Action)
	}
}

func TestListRecentCapsLimit(t *testing.T) {
	store := &stubEntryStore{}
	svc := newTestService(t, store)
	ctx := context.Background()
	for i := 0; i < 120; i++ {
		svc.Record(ctx, RecordInput{ActorName: "Admin", Action: enums.ActionProductUpdated, EntityType: "product"})
	}

	dtos, err := svc.ListRecent(ctx, 0)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(dtos) != 100 {
		t.Fatalf("expected 100 entries by default, got %d", len(dtos))
	}

	dtos, err = svc.ListRecent(ctx, 100)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(dtos) != 100 {
		t.Fatalf("expected the full 100 entries, got %d", len(dtos))
	}

	dtos, err = svc.ListRecent(ctx, 500)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(dtos) != 100 {
		t.Fatalf("expected oversized limit capped at 100, got %d", len(dtos))
	}
}
