package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/taskdeck/apiserver/internal/services"
	"github.com/taskdeck/apiserver/types"
)

type contextKey string

const contextIdentityKey contextKey = "identity"

// withIdentity returns a context carrying the authenticated caller.
func withIdentity(ctx context.Context, identity types.Identity) context.Context {
	return context.WithValue(ctx, contextIdentityKey, identity)
}

// identityFromContext returns the caller's identity, or nil when the request
// was not authenticated.
func identityFromContext(ctx context.Context) *types.Identity {
	identity, ok := ctx.Value(contextIdentityKey).(types.Identity)
	if !ok {
		return nil
	}
	return &identity
}

// ErrorResponse is a simple error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Errors outside the taxonomy are logged in full and surface as a bare 500.
func writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *services.ValidationError
	var authErr *services.AuthError
	var conflictErr *services.ConflictError
	var notFoundErr *services.NotFoundError

	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Message)
	case errors.As(err, &authErr):
		writeError(w, http.StatusUnauthorized, authErr.Message)
	case errors.As(err, &conflictErr):
		writeError(w, http.StatusConflict, conflictErr.Message)
	case errors.As(err, &notFoundErr):
		writeError(w, http.StatusNotFound, notFoundErr.Message)
	default:
		slog.Error("unhandled error", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// Healthz is a minimal liveness endpoint.
func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
