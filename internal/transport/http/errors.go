package httptransport

import (
	"errors"
	"log/slog"
	"net/http"

	"surveyhub/internal/httpx"
	"surveyhub/internal/service"
	"surveyhub/internal/storage"
)

// writeServiceError maps service sentinels onto actionable statuses so
// the UI can tell "this link has expired" apart from a generic failure.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvitationRequired):
		httpx.Error(w, http.StatusBadRequest, "Invitation required")
	case errors.Is(err, service.ErrInvitationNotFound):
		httpx.Error(w, http.StatusNotFound, "Invitation not found")
	case errors.Is(err, service.ErrInvitationInactive):
		httpx.Error(w, http.StatusForbidden, "This invitation has been deactivated")
	case errors.Is(err, service.ErrInvitationExpired):
		httpx.Error(w, http.StatusGone, "This invitation link has expired")
	case errors.Is(err, service.ErrInvitationExhausted):
		httpx.Error(w, http.StatusForbidden, "This invitation has reached its usage limit")
	case errors.Is(err, service.ErrValidation):
		httpx.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "Not found")
	case errors.Is(err, storage.ErrConflict):
		httpx.Error(w, http.StatusConflict, "Already exists")
	default:
		slog.Error("request failed", "err", err)
		httpx.Error(w, http.StatusInternalServerError, "Internal error")
	}
}
