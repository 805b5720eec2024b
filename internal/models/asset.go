package models

import "time"

type AssetType string

const (
	AssetTypeImage AssetType = "image"
	AssetTypeVideo AssetType = "video"
	AssetTypeFile  AssetType = "file"
)

// Asset is a persisted creative. SourceID is the builder pool id
// (drive-..., air-..., upload-...).
type Asset struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id" validate:"required"`
	SourceID  string    `json:"source_id" validate:"required"`
	Name      string    `json:"name" validate:"required"`
	Type      AssetType `json:"type" validate:"required,oneof=image video file"`
	URL       string    `json:"url"`
	Tags      []string  `json:"tags"`
	Width     *int      `json:"width,omitempty"`
	Height    *int      `json:"height,omitempty"`
	Angle     string    `json:"angle,omitempty"`
	Hook      string    `json:"hook,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type AddAssetRequest struct {
	ID      string    `json:"id" validate:"required"`
	Name    string    `json:"name" validate:"required"`
	Type    AssetType `json:"type" validate:"required,oneof=image video file"`
	Preview string    `json:"preview" validate:"omitempty,url"`
	Tags    []string  `json:"tags"`
	Width   *int      `json:"width,omitempty" validate:"omitempty,gt=0"`
	Height  *int      `json:"height,omitempty" validate:"omitempty,gt=0"`
	Angle   string    `json:"angle,omitempty"`
	Hook    string    `json:"hook,omitempty"`
	Notes   string    `json:"notes,omitempty"`
}

type TagRequest struct {
	Tag string `json:"tag" validate:"required"`
}
