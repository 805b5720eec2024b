package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"adbuilder/internal/launch"
	"adbuilder/internal/services"
)

// launchEvent is one NDJSON line of the launch stream.
type launchEvent struct {
	Type      string                  `json:"type"`
	Progress  *launch.Progress        `json:"progress,omitempty"`
	Feedback  *services.FeedbackEntry `json:"feedback,omitempty"`
	Result    *launch.Result          `json:"result,omitempty"`
	Error     string                  `json:"error,omitempty"`
	ErrorKind string                  `json:"error_kind,omitempty"`
}

type ndjsonWriter struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	enc     *json.Encoder
	flusher http.Flusher
}

func newNDJSONWriter(w http.ResponseWriter) *ndjsonWriter {
	f, _ := w.(http.Flusher)
	return &ndjsonWriter{w: w, enc: json.NewEncoder(w), flusher: f}
}

func (n *ndjsonWriter) write(ev launchEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	_ = n.enc.Encode(ev)
	if n.flusher != nil {
		n.flusher.Flush()
	}
}

// Launch writes the session's campaign out and streams progress, feedback
// and the final result as newline-delimited JSON. The launch keeps running
// if the client disconnects.
// @Tags Launch
// @Summary Launch the campaign
// @Security BearerAuth
// @Produce json
// @Param sid path string true "Session ID"
// @Param mode query string false "flattened or per_ad_set"
// @Success 200 {object} launchEvent
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/builder/sessions/{sid}/launch [post]
func (h *BuilderHandler) Launch(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	release, err := s.BeginLaunch()
	if err != nil {
		writeBuilderError(w, err)
		return
	}
	defer release()

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	out := newNDJSONWriter(w)

	collector := services.NewFeedbackCollector(h.feedback)
	collector.OnEntry(func(e services.FeedbackEntry) {
		out.write(launchEvent{Type: "feedback", Feedback: &e})
	})
	opts := []launch.RunOption{launch.WithFeedback(collector)}
	if mode := r.URL.Query().Get("mode"); mode != "" {
		opts = append(opts, launch.WithMode(launch.ParseMode(mode)))
	}

	ctx := context.WithoutCancel(r.Context())
	res, err := h.pipeline.LaunchSession(ctx, s, func(p launch.Progress) {
		out.write(launchEvent{Type: "progress", Progress: &p})
	}, opts...)

	final := launchEvent{Type: "result", Result: res}
	if err != nil {
		final.Error = err.Error()
		final.ErrorKind = launchErrorKind(err)
		h.log.Warn("launch failed", "session_id", s.ID, "kind", final.ErrorKind, "error", err)
	}
	out.write(final)
}

func launchErrorKind(err error) string {
	var (
		validation *launch.ValidationError
		identity   *launch.IdentityError
		store      *launch.StoreError
	)
	switch {
	case errors.As(err, &validation):
		return "validation"
	case errors.As(err, &identity):
		return "identity"
	case errors.Is(err, launch.ErrStepTimeout):
		return "timeout"
	case errors.As(err, &store):
		return "store"
	default:
		return "internal"
	}
}
