package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "adbuilder/docs"
)

const swaggerIndex = "/swagger/index.html"

// RegisterSwaggerRoutes serves the builder API docs. The UI starts with
// every tag collapsed.
func RegisterSwaggerRoutes(r chi.Router) {
	toIndex := http.RedirectHandler(swaggerIndex, http.StatusMovedPermanently)
	ui := httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DocExpansion("none"),
		httpSwagger.PersistAuthorization(true),
	)

	r.Route("/swagger", func(r chi.Router) {
		r.Handle("/", toIndex)
		r.Get("/*", ui)
	})
}
