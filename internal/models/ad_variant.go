package models

import "time"

type AdVariantStatus string

const AdVariantStatusPending AdVariantStatus = "pending"

// AdVariant is one concrete ad: an asset in an ad set with one copy variant.
type AdVariant struct {
	ID          string          `json:"id"`
	CampaignID  string          `json:"campaign_id" validate:"required"`
	AdSetID     string          `json:"ad_set_id" validate:"required"`
	AssetID     string          `json:"asset_id" validate:"required"`
	Headline    string          `json:"headline"`
	PrimaryText string          `json:"primary_text"`
	CTA         string          `json:"cta"`
	Status      AdVariantStatus `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

type UpdateCopyVariantRequest struct {
	Headline    *string `json:"headline,omitempty" validate:"omitempty,max=255"`
	PrimaryText *string `json:"primary_text,omitempty"`
	CTA         *string `json:"cta,omitempty" validate:"omitempty,max=50"`
}
