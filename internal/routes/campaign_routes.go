// internal/routes/campaign_routes.go
package routes

import (
	"github.com/go-chi/chi/v5"

	"adbuilder/internal/handlers"
)

func RegisterCampaignRoutes(router chi.Router, h *handlers.CampaignHandler) {
	router.Route("/campaigns", func(r chi.Router) {
		r.Get("/", h.ListCampaigns)
	})
}
