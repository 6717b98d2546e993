package users

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/siegrin/basecamp-backend/internal/activity"
	"github.com/siegrin/basecamp-backend/pkg/config"
	"github.com/siegrin/basecamp-backend/pkg/db/models"
	"github.com/siegrin/basecamp-backend/pkg/enums"
	pkgerrors "github.com/siegrin/basecamp-backend/pkg/errors"
	"github.com/siegrin/basecamp-backend/pkg/security"
)

type stubUserStore struct {
	users map[uuid.UUID]models.User
	err   error
}

func newStubUserStore(users ...models.User) *stubUserStore {
	store := &stubUserStore{users: map[uuid.UUID]models.User{}}
	for _, u := range users {
		store.users[u.ID] = u
	}
	return store
}

func (s *stubUserStore) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	user, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &user, nil
}

func (s *stubUserStore) Update(_ context.Context, user *models.User) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.users[user.ID] = *user
	return user, nil
}

func (s *stubUserStore) List(_ context.Context, _ ListQuery) (*ListResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	rows := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		rows = append(rows, u)
	}
	return &ListResult{Users: rows}, nil
}

type stubRecorder struct {
	inputs []activity.RecordInput
}

func (s *stubRecorder) Record(_ context.Context, input activity.RecordInput) {
	s.inputs = append(s.inputs, input)
}

func testUser(role enums.Role) models.User {
	return models.User{
		ID:          uuid.New(),
		Email:       "dina@example.com",
		DisplayName: "Dina",
		Role:        role,
		IsActive:    true,
	}
}

func testActor() activity.Actor {
	id := uuid.New()
	return activity.Actor{ID: &id, Name: "admin"}
}

func TestUpdateUser_PartialChanges(t *testing.T) {
	t.Parallel()
	user := testUser(enums.RoleCustomer)
	store := newStubUserStore(user)
	recorder := &stubRecorder{}
	svc, err := NewService(store, recorder, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	name := "Dina K"
	role := enums.RoleAdmin
	updated, err := svc.UpdateUser(context.Background(), testActor(), user.ID, UpdateUserInput{
		DisplayName: &name,
		Role:        &role,
	})
	if err != nil {
		t.Fatalf("update user: %v", err)
	}
	if updated.DisplayName != "Dina K" || updated.Role != string(enums.RoleAdmin) {
		t.Fatalf("unexpected user: %+v", updated)
	}
	if updated.Email != user.Email {
		t.Fatalf("email must not change, got %s", updated.Email)
	}
	if len(recorder.inputs) != 1 || recorder.inputs[0].Action != enums.ActionUserUpdated {
		t.Fatalf("expected user_updated event, got %+v", recorder.inputs)
	}
}

func TestUpdateUser_Validation(t *testing.T) {
	t.Parallel()
	user := testUser(enums.RoleCustomer)
	svc, _ := NewService(newStubUserStore(user), &stubRecorder{}, config.PasswordConfig{})

	blank := "   "
	_, err := svc.UpdateUser(context.Background(), testActor(), user.ID, UpdateUserInput{DisplayName: &blank})
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	badRole := enums.Role("owner")
	_, err = svc.UpdateUser(context.Background(), testActor(), user.ID, UpdateUserInput{Role: &badRole})
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for bad role, got %v", err)
	}
}

func TestDeactivateUser(t *testing.T) {
	t.Parallel()
	user := testUser(enums.RoleCustomer)
	store := newStubUserStore(user)
	recorder := &stubRecorder{}
	svc, _ := NewService(store, recorder, config.PasswordConfig{})

	updated, err := svc.DeactivateUser(context.Background(), testActor(), user.ID)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if updated.IsActive {
		t.Fatal("expected inactive user")
	}

	_, err = svc.DeactivateUser(context.Background(), testActor(), user.ID)
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict on double deactivate, got %v", err)
	}
}

func TestResetPassword_IssuesUsableTempPassword(t *testing.T) {
	t.Parallel()
	user := testUser(enums.RoleCustomer)
	store := newStubUserStore(user)
	recorder := &stubRecorder{}
	svc, _ := NewService(store, recorder, config.PasswordConfig{})

	tempPassword, err := svc.ResetPassword(context.Background(), testActor(), user.ID)
	if err != nil {
		t.Fatalf("reset password: %v", err)
	}
	if len(tempPassword) != tempPasswordLength {
		t.Fatalf("expected %d char temp password, got %q", tempPasswordLength, tempPassword)
	}

	stored := store.users[user.ID]
	if stored.PasswordHash == "" || stored.PasswordHash == user.PasswordHash {
		t.Fatal("expected new password hash persisted")
	}
	ok, err := security.VerifyPassword(tempPassword, stored.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("temp password must verify against stored hash: ok=%v err=%v", ok, err)
	}
	if !strings.Contains(stored.PasswordHash, "argon2id") {
		t.Fatalf("expected argon2id hash, got %q", stored.PasswordHash)
	}

	last := recorder.inputs[len(recorder.inputs)-1]
	if last.Action != enums.ActionUserPasswordReset {
		t.Fatalf("expected user_password_reset event, got %s", last.Action)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	t.Parallel()
	svc, _ := NewService(newStubUserStore(), &stubRecorder{}, config.PasswordConfig{})

	_, err := svc.GetUser(context.Background(), uuid.New())
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
