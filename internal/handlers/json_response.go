package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"adbuilder/internal/builder"
	"adbuilder/internal/queue"
	"adbuilder/internal/session"
	"adbuilder/internal/templates"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONErrorResponse(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, map[string]any{"error": code, "message": message})
}

// writeBuilderError maps builder, queue, template and session errors to
// HTTP responses.
func writeBuilderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrNotOwner):
		writeJSONErrorResponse(w, http.StatusNotFound, "session_not_found", "Session not found")
	case errors.Is(err, session.ErrLaunchInFlight):
		writeJSONErrorResponse(w, http.StatusConflict, "launch_in_progress", err.Error())
	case errors.Is(err, builder.ErrAdSetNotFound),
		errors.Is(err, builder.ErrAssetNotFound),
		errors.Is(err, builder.ErrCopyVariantNotFound),
		errors.Is(err, templates.ErrTemplateNotFound):
		writeJSONErrorResponse(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, builder.ErrUnknownField),
		errors.Is(err, builder.ErrInvalidValue),
		errors.Is(err, queue.ErrUnknownGroup),
		errors.Is(err, queue.ErrUnknownAdSet):
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, queue.ErrNotOpen):
		writeJSONErrorResponse(w, http.StatusConflict, "queue_not_open", err.Error())
	default:
		writeJSONErrorResponse(w, http.StatusInternalServerError, "server_error", "Internal server error")
	}
}
