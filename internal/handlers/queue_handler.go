package handlers

import (
	"encoding/json"
	"net/http"

	"adbuilder/internal/queue"
)

type queueTargetsRequest struct {
	Group    queue.Group `json:"group" validate:"required"`
	AdSetIDs []int64     `json:"ad_set_ids"`
}

type queueToggleRequest struct {
	Group   queue.Group `json:"group" validate:"required"`
	AdSetID int64       `json:"ad_set_id" validate:"required"`
}

// OpenQueue groups the pool by aspect ratio. An already open queue is
// returned as is unless refresh=true.
// @Tags Queue
// @Summary Open queue mode
// @Security BearerAuth
// @Produce json
// @Param sid path string true "Session ID"
// @Param refresh query bool false "Regroup an open queue"
// @Success 200 {object} queue.State
// @Router /api/v1/builder/sessions/{sid}/queue [get]
func (h *BuilderHandler) OpenQueue(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	state := s.Queue.State()
	if !state.Open || r.URL.Query().Get("refresh") == "true" {
		state = s.Queue.Open(s.Snapshot())
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *BuilderHandler) SetQueueTargets(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req queueTargetsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	if err := s.Queue.SetTargets(req.Group, req.AdSetIDs); err != nil {
		writeBuilderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Queue.State())
}

func (h *BuilderHandler) ToggleQueueTarget(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req queueToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	if err := s.Queue.Toggle(req.Group, req.AdSetID); err != nil {
		writeBuilderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Queue.State())
}

func (h *BuilderHandler) PreviewQueue(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if !s.Queue.State().Open {
		writeBuilderError(w, queue.ErrNotOpen)
		return
	}
	preview := s.Queue.Preview()
	if preview == nil {
		preview = []queue.Assignment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"assignments": preview})
}

// DistributeQueue confirms the preview into the ad set selections and
// closes queue mode.
// @Tags Queue
// @Summary Distribute queued assets
// @Security BearerAuth
// @Produce json
// @Param sid path string true "Session ID"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/builder/sessions/{sid}/queue/distribute [post]
func (h *BuilderHandler) DistributeQueue(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	res, err := s.Queue.Distribute(s.Store)
	if err != nil {
		writeBuilderError(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.Distributions.Inc()
	}
	h.log.Info("queue distributed", "session_id", s.ID, "ad_sets", res.AdSets, "assets_added", res.AssetsAdded)
	writeJSON(w, http.StatusOK, map[string]any{
		"ad_sets":         res.AdSets,
		"assets_added":    res.AssetsAdded,
		"skipped_ad_sets": res.SkippedAdSets,
		"total_ads":       s.Store.TotalAds(),
	})
}

func (h *BuilderHandler) CloseQueue(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Queue.Clear()
	w.WriteHeader(http.StatusNoContent)
}
