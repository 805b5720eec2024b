// internal/handlers/campaign_handler.go
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"adbuilder/internal/interfaces"
	"adbuilder/internal/logger"
	"adbuilder/internal/models"
	"adbuilder/internal/repository"
)

// CampaignLister reads launched campaigns back.
type CampaignLister interface {
	ListCampaigns(ctx context.Context, filter repository.CampaignFilter) ([]*models.Campaign, error)
}

type CampaignHandler struct {
	repo    CampaignLister
	tenants interfaces.TenantResolver
	log     *logger.Logger
}

func NewCampaignHandler(repo CampaignLister, tenants interfaces.TenantResolver, log *logger.Logger) *CampaignHandler {
	return &CampaignHandler{
		repo:    repo,
		tenants: tenants,
		log:     logger.OrNop(log).With("handler", "campaign"),
	}
}

// ListCampaigns handles GET /api/v1/campaigns
// @Tags Campaigns
// @Summary List launched campaigns of the caller's advertiser
// @Security BearerAuth
// @Produce json
// @Param status query string false "Filter by status"
// @Param limit query int false "Page size (default 100)"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Campaign
// @Failure 403 {object} map[string]interface{}
// @Router /api/v1/campaigns [get]
func (h *CampaignHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	tenantID, err := h.tenants.ResolveTenant(r.Context())
	if err != nil {
		writeJSONErrorResponse(w, http.StatusForbidden, "tenant_unresolved", "Could not resolve your organization")
		return
	}

	filter := repository.CampaignFilter{
		TenantID: tenantID,
		Status:   r.URL.Query().Get("status"),
		Limit:    100,
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", "limit must be between 1 and 500")
			return
		}
		filter.Limit = n
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", "offset must be a non-negative integer")
			return
		}
		filter.Offset = n
	}

	campaigns, err := h.repo.ListCampaigns(r.Context(), filter)
	if err != nil {
		h.log.Error("failed to list campaigns", "tenant_id", tenantID, "error", err)
		writeJSONErrorResponse(w, http.StatusInternalServerError, "list_campaigns_failed", "Failed to list campaigns")
		return
	}
	if campaigns == nil {
		campaigns = []*models.Campaign{}
	}
	writeJSON(w, http.StatusOK, campaigns)
}
