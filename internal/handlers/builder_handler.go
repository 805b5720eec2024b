package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"adbuilder/internal/builder"
	"adbuilder/internal/middleware"
	"adbuilder/internal/models"
	"adbuilder/internal/session"
	"adbuilder/internal/tokens"
)

type sessionResponse struct {
	ID               string                    `json:"id"`
	TenantID         string                    `json:"tenant_id"`
	Builder          builder.Snapshot          `json:"builder"`
	Templates        []models.CampaignTemplate `json:"templates"`
	SelectedTemplate string                    `json:"selected_template,omitempty"`
	Launching        bool                      `json:"launching"`
}

func newSessionResponse(s *session.Session) sessionResponse {
	return sessionResponse{
		ID:               s.ID,
		TenantID:         s.TenantID,
		Builder:          s.Snapshot(),
		Templates:        s.Templates.Templates(),
		SelectedTemplate: s.Templates.Selected(),
		Launching:        s.Launching(),
	}
}

// CreateSession starts a builder for the caller's advertiser.
// @Tags Builder
// @Summary Start a builder session
// @Security BearerAuth
// @Produce json
// @Success 201 {object} sessionResponse
// @Failure 403 {object} map[string]interface{}
// @Router /api/v1/builder/sessions [post]
func (h *BuilderHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	tenantID, err := h.tenants.ResolveTenant(r.Context())
	if err != nil {
		h.log.Warn("tenant lookup failed", "user_id", middleware.UserID(r.Context()), "error", err)
		writeJSONErrorResponse(w, http.StatusForbidden, "tenant_unresolved", "Could not resolve your organization")
		return
	}

	s := h.sessions.Create(middleware.UserID(r.Context()), tenantID)
	if _, err := s.Templates.Load(r.Context(), tenantID); err != nil {
		h.log.Warn("template catalogue unavailable", "tenant_id", tenantID, "error", err)
	}
	writeJSON(w, http.StatusCreated, newSessionResponse(s))
}

// GetSession handles GET /api/v1/builder/sessions/{sid}
func (h *BuilderHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(s))
}

func (h *BuilderHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(chi.URLParam(r, "sid"), middleware.UserID(r.Context())); err != nil {
		writeBuilderError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateCampaign sets campaign metadata fields. Omitted fields are kept.
// @Tags Builder
// @Summary Update campaign metadata
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param sid path string true "Session ID"
// @Param campaign body models.UpdateCampaignRequest true "Fields to set"
// @Success 200 {object} builder.CampaignMetadata
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/builder/sessions/{sid}/campaign [put]
func (h *BuilderHandler) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req models.UpdateCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	updates := []struct {
		field builder.MetadataField
		value *string
	}{
		{builder.MetadataFieldName, req.Name},
		{builder.MetadataFieldObjective, req.Objective},
		{builder.MetadataFieldBudget, req.Budget},
		{builder.MetadataFieldAudience, req.Audience},
	}
	for _, u := range updates {
		if u.value == nil {
			continue
		}
		if err := s.Store.UpdateMetadata(u.field, *u.value); err != nil {
			writeBuilderError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, s.Store.Metadata())
}

func (h *BuilderHandler) AddAdSet(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	view := s.Store.AddAdSet()
	writeJSON(w, http.StatusCreated, view)
}

// UpdateAdSet handles PATCH /api/v1/builder/sessions/{sid}/ad-sets/{adSetID}
// @Tags Builder
// @Summary Update an ad set
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param sid path string true "Session ID"
// @Param adSetID path int true "Ad set ID"
// @Param adSet body models.UpdateAdSetRequest true "Fields to set"
// @Success 200 {object} builder.AdSetView
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/builder/sessions/{sid}/ad-sets/{adSetID} [patch]
func (h *BuilderHandler) UpdateAdSet(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	id, ok := int64Param(w, r, "adSetID")
	if !ok {
		return
	}
	var req models.UpdateAdSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	view, err := s.Store.PatchAdSet(id, builder.AdSetPatch{
		Name:             req.Name,
		Budget:           req.Budget,
		Audience:         req.Audience,
		SelectedAssetIDs: req.SelectedAssetIDs,
	})
	if err != nil {
		writeBuilderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *BuilderHandler) DeleteAdSet(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	id, ok := int64Param(w, r, "adSetID")
	if !ok {
		return
	}
	if err := s.Store.RemoveAdSet(id); err != nil {
		writeBuilderError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BuilderHandler) DuplicateAdSet(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	id, ok := int64Param(w, r, "adSetID")
	if !ok {
		return
	}
	view, err := s.Store.DuplicateAdSet(id)
	if err != nil {
		writeBuilderError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// ToggleAsset flips one pooled asset in an ad set's selection.
func (h *BuilderHandler) ToggleAsset(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	id, ok := int64Param(w, r, "adSetID")
	if !ok {
		return
	}
	asset, found := s.Store.Asset(chi.URLParam(r, "assetID"))
	if !found {
		writeBuilderError(w, builder.ErrAssetNotFound)
		return
	}
	selected, err := s.Store.ToggleAsset(id, asset)
	if err != nil {
		writeBuilderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"selected": selected, "total_ads": s.Store.TotalAds()})
}

func (h *BuilderHandler) SelectAll(w http.ResponseWriter, r *http.Request) {
	h.bulkSelect(w, r, (*builder.Store).SelectAll)
}

func (h *BuilderHandler) DeselectAll(w http.ResponseWriter, r *http.Request) {
	h.bulkSelect(w, r, (*builder.Store).DeselectAll)
}

func (h *BuilderHandler) bulkSelect(w http.ResponseWriter, r *http.Request, op func(*builder.Store, int64) (int, error)) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	id, ok := int64Param(w, r, "adSetID")
	if !ok {
		return
	}
	changed, err := op(s.Store, id)
	if err != nil {
		writeBuilderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"changed": changed, "total_ads": s.Store.TotalAds()})
}

// AddAsset pools an asset picked from an external library (drive-, air-).
// @Tags Builder
// @Summary Add an asset to the pool
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param sid path string true "Session ID"
// @Param asset body models.AddAssetRequest true "Asset"
// @Success 201 {object} builder.CreativeAsset
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/builder/sessions/{sid}/assets [post]
func (h *BuilderHandler) AddAsset(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req models.AddAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	added := s.Store.AddUploadedAssets([]builder.CreativeAsset{{
		ID:      req.ID,
		Name:    req.Name,
		Type:    builder.AssetType(req.Type),
		Preview: req.Preview,
		Tags:    req.Tags,
		Width:   req.Width,
		Height:  req.Height,
		Angle:   req.Angle,
		Hook:    req.Hook,
		Notes:   req.Notes,
	}})
	if len(added) == 0 {
		writeJSONErrorResponse(w, http.StatusConflict, "asset_exists", "Asset is already in the pool")
		return
	}
	writeJSON(w, http.StatusCreated, added[0])
}

// UploadAssets stores multipart "files" and pools them. Files that fail are
// reported and skipped.
// @Tags Builder
// @Summary Upload creatives to the pool
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param sid path string true "Session ID"
// @Param files formData file true "Creative files"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /api/v1/builder/sessions/{sid}/assets/upload [post]
func (h *BuilderHandler) UploadAssets(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if h.uploader == nil {
		writeJSONErrorResponse(w, http.StatusServiceUnavailable, "uploads_disabled", "Asset storage is not configured")
		return
	}

	const maxMemory = 32 << 20
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Failed to parse form")
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", "No files uploaded")
		return
	}

	var uploaded []builder.CreativeAsset
	var failed []string
	for _, fh := range files {
		file, err := fh.Open()
		if err != nil {
			failed = append(failed, fh.Filename)
			continue
		}
		asset, err := h.uploader.Upload(r.Context(), fh.Filename, file)
		file.Close()
		if err != nil {
			h.log.Warn("asset upload failed", "file", fh.Filename, "error", err)
			failed = append(failed, fh.Filename)
			continue
		}
		uploaded = append(uploaded, asset)
	}
	if len(uploaded) == 0 {
		writeJSONErrorResponse(w, http.StatusInternalServerError, "upload_failed", "Failed to upload any files")
		return
	}

	added := s.Store.AddUploadedAssets(uploaded)
	writeJSON(w, http.StatusCreated, map[string]any{"assets": added, "failed": failed})
}

func (h *BuilderHandler) AddTag(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	assetID := chi.URLParam(r, "assetID")
	var req models.TagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	if err := s.Store.AddTag(assetID, req.Tag); err != nil {
		writeBuilderError(w, err)
		return
	}
	asset, _ := s.Store.Asset(assetID)
	writeJSON(w, http.StatusOK, asset)
}

func (h *BuilderHandler) RemoveTag(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	assetID := chi.URLParam(r, "assetID")
	if err := s.Store.RemoveTag(assetID, chi.URLParam(r, "tag")); err != nil {
		writeBuilderError(w, err)
		return
	}
	asset, _ := s.Store.Asset(assetID)
	writeJSON(w, http.StatusOK, asset)
}

func (h *BuilderHandler) AddCopyVariant(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, s.Store.AddCopyVariant())
}

// UpdateCopyVariant handles PATCH /api/v1/builder/sessions/{sid}/copy-variants/{variantID}
func (h *BuilderHandler) UpdateCopyVariant(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	id, ok := int64Param(w, r, "variantID")
	if !ok {
		return
	}
	var req models.UpdateCopyVariantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	updates := []struct {
		field builder.CopyVariantField
		value *string
	}{
		{builder.CopyVariantFieldHeadline, req.Headline},
		{builder.CopyVariantFieldPrimaryText, req.PrimaryText},
		{builder.CopyVariantFieldCTA, req.CTA},
	}
	for _, u := range updates {
		if u.value == nil {
			continue
		}
		if err := s.Store.UpdateCopyVariant(id, u.field, *u.value); err != nil {
			writeBuilderError(w, err)
			return
		}
	}
	for _, cv := range s.Snapshot().CopyVariants {
		if cv.ID == id {
			writeJSON(w, http.StatusOK, cv)
			return
		}
	}
	writeBuilderError(w, builder.ErrCopyVariantNotFound)
}

func (h *BuilderHandler) DeleteCopyVariant(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	id, ok := int64Param(w, r, "variantID")
	if !ok {
		return
	}
	if err := s.Store.RemoveCopyVariant(id); err != nil {
		writeBuilderError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type renderRequest struct {
	Template string `json:"template"`
	AdSetID  *int64 `json:"ad_set_id,omitempty"`
}

type renderResponse struct {
	Rendered   string   `json:"rendered"`
	Unresolved []string `json:"unresolved"`
	Keys       []string `json:"keys"`
}

// Render previews a name template against one ad set (the first by default).
func (h *BuilderHandler) Render(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	snap := s.Snapshot()
	index := 0
	if req.AdSetID != nil {
		index = -1
		for i, set := range snap.AdSets {
			if set.ID == *req.AdSetID {
				index = i
				break
			}
		}
		if index < 0 {
			writeBuilderError(w, builder.ErrAdSetNotFound)
			return
		}
	}

	unresolved := tokens.Unresolved(req.Template)
	if unresolved == nil {
		unresolved = []string{}
	}
	writeJSON(w, http.StatusOK, renderResponse{
		Rendered:   tokens.Render(req.Template, snap.TokenContext(index, h.now())),
		Unresolved: unresolved,
		Keys:       tokens.Keys(),
	})
}

func int64Param(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", name+" must be an integer")
		return 0, false
	}
	return v, true
}
