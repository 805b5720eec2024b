// internal/handlers/base.go
package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"adbuilder/internal/builder"
	"adbuilder/internal/interfaces"
	"adbuilder/internal/launch"
	"adbuilder/internal/logger"
	"adbuilder/internal/metrics"
	"adbuilder/internal/middleware"
	"adbuilder/internal/session"
)

// AssetUploader stores an uploaded file and returns it as a pool asset.
type AssetUploader interface {
	Upload(ctx context.Context, filename string, body io.Reader) (builder.CreativeAsset, error)
}

// BuilderHandler serves every /builder/sessions endpoint.
type BuilderHandler struct {
	sessions  *session.Registry
	tenants   interfaces.TenantResolver
	pipeline  *launch.Pipeline
	uploader  AssetUploader
	feedback  interfaces.FeedbackSink
	metrics   *metrics.Metrics
	log       *logger.Logger
	validator *validator.Validate
	now       func() time.Time
}

type BuilderDeps struct {
	Sessions *session.Registry
	Tenants  interfaces.TenantResolver
	Pipeline *launch.Pipeline
	// Uploader may be nil, which disables multipart uploads.
	Uploader AssetUploader
	Feedback interfaces.FeedbackSink
	Metrics  *metrics.Metrics
	Log      *logger.Logger
}

func NewBuilderHandler(deps BuilderDeps) *BuilderHandler {
	return &BuilderHandler{
		sessions:  deps.Sessions,
		tenants:   deps.Tenants,
		pipeline:  deps.Pipeline,
		uploader:  deps.Uploader,
		feedback:  deps.Feedback,
		metrics:   deps.Metrics,
		log:       logger.OrNop(deps.Log).With("handler", "builder"),
		validator: validator.New(),
		now:       time.Now,
	}
}

// session loads the {sid} session of the calling user or writes a 404.
func (h *BuilderHandler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.sessions.Get(chi.URLParam(r, "sid"), middleware.UserID(r.Context()))
	if err != nil {
		writeBuilderError(w, err)
		return nil, false
	}
	return s, true
}
