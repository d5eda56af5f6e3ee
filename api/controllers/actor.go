package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/channelworks/partnerhub-backend/api/middleware"
	"github.com/channelworks/partnerhub-backend/internal/partners"
	"github.com/channelworks/partnerhub-backend/pkg/enums"
	pkgerrors "github.com/channelworks/partnerhub-backend/pkg/errors"
)

// actorFromRequest rebuilds the acting identity from the authenticated context.
func actorFromRequest(r *http.Request) (partners.Actor, error) {
	ctx := r.Context()

	userID, err := uuid.Parse(middleware.UserIDFromContext(ctx))
	if err != nil {
		return partners.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	role, err := enums.ParseActorRole(middleware.RoleFromContext(ctx))
	if err != nil {
		return partners.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown actor role")
	}

	return partners.Actor{
		ID:   userID,
		Name: middleware.ActorNameFromContext(ctx),
		Role: role,
	}, nil
}

// pathUUID parses one chi route parameter as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+name).WithDetails(map[string]any{"field": name})
	}
	return id, nil
}
