// internal/models/campaign.go
package models

import "time"

type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusPaused    CampaignStatus = "paused"
	CampaignStatusScheduled CampaignStatus = "scheduled"
	CampaignStatusCompleted CampaignStatus = "completed"
)

type Campaign struct {
	ID        string         `json:"id"`
	TenantID  string         `json:"tenant_id" validate:"required"`
	Name      string         `json:"name" validate:"required,max=255"`
	Objective string         `json:"objective" validate:"required"`
	Status    CampaignStatus `json:"status" validate:"oneof=draft active paused scheduled completed"`
	Budget    float64        `json:"budget" validate:"gte=0"`
	Audience  string         `json:"audience"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// UpdateCampaignRequest is the builder's campaign metadata form.
type UpdateCampaignRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Objective *string `json:"objective,omitempty" validate:"omitempty,max=100"`
	Budget    *string `json:"budget,omitempty" validate:"omitempty,numeric"`
	Audience  *string `json:"audience,omitempty"`
}
