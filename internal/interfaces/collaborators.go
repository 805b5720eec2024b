package interfaces

import (
	"context"

	"adbuilder/internal/models"
)

// TenantResolver maps the caller's identity to the tenant (advertiser) id.
type TenantResolver interface {
	ResolveTenant(ctx context.Context) (string, error)
}

// Notifier delivers a best-effort message. Callers ignore its errors.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

type FeedbackKind string

const (
	FeedbackInfo  FeedbackKind = "info"
	FeedbackError FeedbackKind = "error"
)

// FeedbackSink receives user-facing messages.
type FeedbackSink interface {
	Report(kind FeedbackKind, title string, detail string)
}

type TemplateCatalogue interface {
	ListTemplates(ctx context.Context, tenantID string) ([]models.CampaignTemplate, error)
}
