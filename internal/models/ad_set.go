package models

import "time"

type AdSetStatus string

const AdSetStatusDraft AdSetStatus = "draft"

type AdSet struct {
	ID         string      `json:"id"`
	CampaignID string      `json:"campaign_id" validate:"required"`
	Name       string      `json:"name" validate:"required,max=255"`
	Budget     float64     `json:"budget" validate:"gte=0"`
	Audience   string      `json:"audience"`
	Status     AdSetStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
}

type UpdateAdSetRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Budget   *string `json:"budget,omitempty" validate:"omitempty,numeric"`
	Audience *string `json:"audience,omitempty"`
	// Replaces the selection with these pool ids.
	SelectedAssetIDs *[]string `json:"selected_asset_ids,omitempty"`
}
