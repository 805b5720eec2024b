package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"adbuilder/internal/models"
)

type templatesResponse struct {
	Templates []models.CampaignTemplate `json:"templates"`
	Selected  string                    `json:"selected,omitempty"`
}

func (h *BuilderHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	list := s.Templates.Templates()
	if list == nil {
		list = []models.CampaignTemplate{}
	}
	writeJSON(w, http.StatusOK, templatesResponse{Templates: list, Selected: s.Templates.Selected()})
}

// ReloadTemplates refetches the session tenant's catalogue. A failed fetch
// keeps the current list.
// @Tags Templates
// @Summary Reload campaign templates
// @Security BearerAuth
// @Produce json
// @Param sid path string true "Session ID"
// @Success 200 {object} templatesResponse
// @Failure 502 {object} map[string]interface{}
// @Router /api/v1/builder/sessions/{sid}/templates/reload [post]
func (h *BuilderHandler) ReloadTemplates(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	list, err := s.Templates.Load(r.Context(), s.TenantID)
	if err != nil {
		h.log.Error("template reload failed", "tenant_id", s.TenantID, "error", err)
		writeJSONErrorResponse(w, http.StatusBadGateway, "templates_unavailable", "Could not load campaign templates")
		return
	}
	if list == nil {
		list = []models.CampaignTemplate{}
	}
	writeJSON(w, http.StatusOK, templatesResponse{Templates: list, Selected: s.Templates.Selected()})
}

// SelectTemplate applies a template's defaults to the campaign metadata.
// @Tags Templates
// @Summary Apply a campaign template
// @Security BearerAuth
// @Produce json
// @Param sid path string true "Session ID"
// @Param templateID path string true "Template ID"
// @Success 200 {object} builder.CampaignMetadata
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/builder/sessions/{sid}/templates/{templateID}/select [post]
func (h *BuilderHandler) SelectTemplate(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	meta, err := s.Templates.Select(chi.URLParam(r, "templateID"))
	if err != nil {
		writeBuilderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

func (h *BuilderHandler) ClearTemplateSelection(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Templates.ResetSelection()
	w.WriteHeader(http.StatusNoContent)
}
