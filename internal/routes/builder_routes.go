package routes

import (
	"github.com/go-chi/chi/v5"

	"adbuilder/internal/handlers"
)

func RegisterBuilderRoutes(router chi.Router, h *handlers.BuilderHandler) {
	router.Route("/builder/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)

		r.Route("/{sid}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.DeleteSession)

			r.Put("/campaign", h.UpdateCampaign)
			r.Post("/render", h.Render)

			r.Route("/ad-sets", func(r chi.Router) {
				r.Post("/", h.AddAdSet)
				r.Route("/{adSetID}", func(r chi.Router) {
					r.Patch("/", h.UpdateAdSet)
					r.Delete("/", h.DeleteAdSet)
					r.Post("/duplicate", h.DuplicateAdSet)
					r.Post("/assets/{assetID}/toggle", h.ToggleAsset)
					r.Post("/select-all", h.SelectAll)
					r.Post("/deselect-all", h.DeselectAll)
				})
			})

			r.Route("/assets", func(r chi.Router) {
				r.Post("/", h.AddAsset)
				r.Post("/upload", h.UploadAssets)
				r.Post("/{assetID}/tags", h.AddTag)
				r.Delete("/{assetID}/tags/{tag}", h.RemoveTag)
			})

			r.Route("/copy-variants", func(r chi.Router) {
				r.Post("/", h.AddCopyVariant)
				r.Patch("/{variantID}", h.UpdateCopyVariant)
				r.Delete("/{variantID}", h.DeleteCopyVariant)
			})

			r.Route("/templates", func(r chi.Router) {
				r.Get("/", h.ListTemplates)
				r.Post("/reload", h.ReloadTemplates)
				r.Post("/{templateID}/select", h.SelectTemplate)
				r.Delete("/selection", h.ClearTemplateSelection)
			})

			r.Route("/queue", func(r chi.Router) {
				r.Get("/", h.OpenQueue)
				r.Delete("/", h.CloseQueue)
				r.Put("/targets", h.SetQueueTargets)
				r.Post("/targets/toggle", h.ToggleQueueTarget)
				r.Get("/preview", h.PreviewQueue)
				r.Post("/distribute", h.DistributeQueue)
			})

			r.Post("/launch", h.Launch)
		})
	})
}
