package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/siegrin/basecamp-backend/internal/activity"
	pkgauth "github.com/siegrin/basecamp-backend/pkg/auth"
	"github.com/siegrin/basecamp-backend/pkg/config"
	"github.com/siegrin/basecamp-backend/pkg/db/models"
	"github.com/siegrin/basecamp-backend/pkg/enums"
	pkgerrors "github.com/siegrin/basecamp-backend/pkg/errors"
	"github.com/siegrin/basecamp-backend/pkg/security"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "test-secret",
	Issuer:            "basecamp-test",
	ExpirationMinutes: 15,
	SessionTTLMinutes: 30,
}

type stubUserRepo struct {
	byEmail    map[string]models.User
	lastLogins map[uuid.UUID]time.Time
	createErr  error
}

func newStubUserRepo(users ...models.User) *stubUserRepo {
	repo := &stubUserRepo{byEmail: map[string]models.User{}, lastLogins: map[uuid.UUID]time.Time{}}
	for _, u := range users {
		repo.byEmail[u.Email] = u
	}
	return repo
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &user, nil
}

func (s *stubUserRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	user.ID = uuid.New()
	s.byEmail[user.Email] = *user
	return user, nil
}

func (s *stubUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	s.lastLogins[id] = at
	return nil
}

type stubSessions struct {
	started []string
	revoked []string
	err     error
}

func (s *stubSessions) Start(_ context.Context, sessionID, _ string) error {
	if s.err != nil {
		return s.err
	}
	s.started = append(s.started, sessionID)
	return nil
}

func (s *stubSessions) Revoke(_ context.Context, sessionID string) error {
	if s.err != nil {
		return s.err
	}
	s.revoked = append(s.revoked, sessionID)
	return nil
}

type stubRecorder struct {
	inputs []activity.RecordInput
}

func (s *stubRecorder) Record(_ context.Context, input activity.RecordInput) {
	s.inputs = append(s.inputs, input)
}

func seedUser(t *testing.T, password string, active bool) models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return models.User{
		ID:           uuid.New(),
		Email:        "dina@example.com",
		PasswordHash: hash,
		DisplayName:  "Dina",
		Role:         enums.RoleCustomer,
		IsActive:     active,
	}
}

func newTestService(t *testing.T, repo *stubUserRepo, sessions *stubSessions, recorder *stubRecorder) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		ActivityLog:    recorder,
		JWTConfig:      testJWTConfig,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestLogin_IssuesTokenAndSession(t *testing.T) {
	t.Parallel()
	user := seedUser(t, "hunter2hunter2", true)
	repo := newStubUserRepo(user)
	sessions := &stubSessions{}
	svc := newTestService(t, repo, sessions, &stubRecorder{})

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "Dina@Example.com", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" || resp.User == nil || resp.User.ID != user.ID {
		t.Fatalf("unexpected response: %+v", resp)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != enums.RoleCustomer {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if len(sessions.started) != 1 || sessions.started[0] != claims.ID {
		t.Fatalf("expected session keyed by jti, got %+v", sessions.started)
	}
	if _, ok := repo.lastLogins[user.ID]; !ok {
		t.Fatal("expected last login recorded")
	}
}

func TestLogin_RejectsBadCredentialsAndInactive(t *testing.T) {
	t.Parallel()
	active := seedUser(t, "hunter2hunter2", true)
	inactive := seedUser(t, "hunter2hunter2", false)
	inactive.Email = "gone@example.com"
	repo := newStubUserRepo(active, inactive)
	svc := newTestService(t, repo, &stubSessions{}, &stubRecorder{})

	cases := []struct {
		name string
		req  LoginRequest
	}{
		{"wrong password", LoginRequest{Email: active.Email, Password: "wrong-password"}},
		{"unknown email", LoginRequest{Email: "nobody@example.com", Password: "hunter2hunter2"}},
		{"inactive user", LoginRequest{Email: inactive.Email, Password: "hunter2hunter2"}},
		{"empty password", LoginRequest{Email: active.Email}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tc.req)
			coded := pkgerrors.As(err)
			if coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
				t.Fatalf("expected unauthorized, got %v", err)
			}
		})
	}
}

func TestRegister_CreatesCustomerAndLogsIn(t *testing.T) {
	t.Parallel()
	repo := newStubUserRepo()
	sessions := &stubSessions{}
	recorder := &stubRecorder{}
	svc := newTestService(t, repo, sessions, recorder)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:       "New@Example.com",
		Password:    "hunter2hunter2",
		DisplayName: "New Camper",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.User.Role != string(enums.RoleCustomer) {
		t.Fatalf("registration must create customers, got %s", resp.User.Role)
	}
	if resp.User.Email != "new@example.com" {
		t.Fatalf("expected lowercased email, got %s", resp.User.Email)
	}
	if resp.AccessToken == "" || len(sessions.started) != 1 {
		t.Fatal("expected immediate login after registration")
	}
	if len(recorder.inputs) != 1 || recorder.inputs[0].Action != enums.ActionUserRegistered {
		t.Fatalf("expected user_registered event, got %+v", recorder.inputs)
	}

	// The stored hash must verify, and must not be the plaintext.
	stored := repo.byEmail["new@example.com"]
	if stored.PasswordHash == "hunter2hunter2" {
		t.Fatal("password stored in plaintext")
	}
	if ok, err := security.VerifyPassword("hunter2hunter2", stored.PasswordHash); err != nil || !ok {
		t.Fatalf("stored hash must verify: ok=%v err=%v", ok, err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()
	existing := seedUser(t, "hunter2hunter2", true)
	repo := newStubUserRepo(existing)
	svc := newTestService(t, repo, &stubSessions{}, &stubRecorder{})

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:       existing.Email,
		Password:    "hunter2hunter2",
		DisplayName: "Dina Again",
	})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegister_ShortPassword(t *testing.T) {
	t.Parallel()
	svc := newTestService(t, newStubUserRepo(), &stubSessions{}, &stubRecorder{})

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:       "new@example.com",
		Password:    "short",
		DisplayName: "New Camper",
	})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLogout(t *testing.T) {
	t.Parallel()
	sessions := &stubSessions{}
	svc := newTestService(t, newStubUserRepo(), sessions, &stubRecorder{})

	if err := svc.Logout(context.Background(), "session-123"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "session-123" {
		t.Fatalf("expected session revoked, got %+v", sessions.revoked)
	}

	err := svc.Logout(context.Background(), "  ")
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for blank session, got %v", err)
	}
}
