package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/siegrin/basecamp-backend/internal/activity"
	"github.com/siegrin/basecamp-backend/pkg/config"
	"github.com/siegrin/basecamp-backend/pkg/db/models"
	"github.com/siegrin/basecamp-backend/pkg/enums"
	pkgerrors "github.com/siegrin/basecamp-backend/pkg/errors"
	"github.com/siegrin/basecamp-backend/pkg/security"
)

const tempPasswordLength = 12

// Service exposes user profile management. Account creation lives in the
// auth package; this service covers lookup and admin maintenance.
type Service interface {
	GetUser(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	ListUsers(ctx context.Context, query ListQuery) (*ListResultDTO, error)
	UpdateUser(ctx context.Context, actor activity.Actor, id uuid.UUID, input UpdateUserInput) (*UserDTO, error)
	DeactivateUser(ctx context.Context, actor activity.Actor, id uuid.UUID) (*UserDTO, error)
	ResetPassword(ctx context.Context, actor activity.Actor, id uuid.UUID) (string, error)
}

// UpdateUserInput holds optional mutation values for a user.
type UpdateUserInput struct {
	DisplayName *string
	AvatarURL   *string
	Role        *enums.Role
}

type userStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	List(ctx context.Context, query ListQuery) (*ListResult, error)
}

type service struct {
	repo        userStore
	activity    activity.Recorder
	passwordCfg config.PasswordConfig
}

// NewService constructs a users service instance.
func NewService(repo userStore, recorder activity.Recorder, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("activity recorder required")
	}
	return &service{repo: repo, activity: recorder, passwordCfg: passwordCfg}, nil
}

// GetUser loads a single user.
func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

// ListUsers returns a page of users.
func (s *service) ListUsers(ctx context.Context, query ListQuery) (*ListResultDTO, error) {
	result, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list users")
	}
	dtos := make([]UserDTO, 0, len(result.Users))
	for i := range result.Users {
		dtos = append(dtos, *FromModel(&result.Users[i]))
	}
	return &ListResultDTO{Users: dtos, NextCursor: result.NextCursor}, nil
}

// UpdateUser applies partial changes to a profile.
func (s *service) UpdateUser(ctx context.Context, actor activity.Actor, id uuid.UUID, input UpdateUserInput) (*UserDTO, error) {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.DisplayName != nil {
		name := strings.TrimSpace(*input.DisplayName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "display name cannot be empty")
		}
		user.DisplayName = name
	}
	if input.AvatarURL != nil {
		user.AvatarURL = input.AvatarURL
	}
	if input.Role != nil {
		if !input.Role.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
		}
		user.Role = *input.Role
	}

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update user")
	}

	s.record(ctx, actor, enums.ActionUserUpdated, updated.ID, map[string]any{"email": updated.Email})
	return FromModel(updated), nil
}

// DeactivateUser disables the account; an inactive user cannot log in.
func (s *service) DeactivateUser(ctx context.Context, actor activity.Actor, id uuid.UUID) (*UserDTO, error) {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "user is already inactive")
	}

	user.IsActive = false
	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: deactivate user")
	}

	s.record(ctx, actor, enums.ActionUserDeactivated, updated.ID, map[string]any{"email": updated.Email})
	return FromModel(updated), nil
}

// ResetPassword replaces the user's password with a generated temporary one
// and returns it. The plaintext is shown exactly once.
func (s *service) ResetPassword(ctx context.Context, actor activity.Actor, id uuid.UUID) (string, error) {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return "", err
	}

	tempPassword, err := security.GenerateTempPassword(tempPasswordLength)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate temp password")
	}
	hash, err := security.HashPassword(tempPassword, s.passwordCfg)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash temp password")
	}

	user.PasswordHash = hash
	if _, err := s.repo.Update(ctx, user); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: store temp password")
	}

	s.record(ctx, actor, enums.ActionUserPasswordReset, user.ID, map[string]any{"email": user.Email})
	return tempPassword, nil
}

func (s *service) loadUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load user")
	}
	return user, nil
}

func (s *service) record(ctx context.Context, actor activity.Actor, action enums.ActivityAction, userID uuid.UUID, details map[string]any) {
	id := userID
	s.activity.Record(ctx, activity.RecordInput{
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Action:     action,
		EntityType: "user",
		EntityID:   &id,
		Details:    details,
	})
}
