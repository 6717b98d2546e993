package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/siegrin/basecamp-backend/api/middleware"
	"github.com/siegrin/basecamp-backend/internal/activity"
	pkgerrors "github.com/siegrin/basecamp-backend/pkg/errors"
)

// actorFromRequest resolves the authenticated caller for the activity log.
func actorFromRequest(r *http.Request) (activity.Actor, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return activity.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return activity.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}

	name := middleware.DisplayNameFromContext(r.Context())
	if name == "" {
		name = raw
	}
	return activity.Actor{ID: &id, Name: name}, nil
}

// userIDFromRequest resolves the authenticated caller's id.
func userIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}
