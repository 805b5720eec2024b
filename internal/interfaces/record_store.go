// internal/interfaces/record_store.go
package interfaces

import (
	"context"

	"adbuilder/internal/models"
)

// RecordStore persists the records a launch produces. Each Create fills in
// the server-assigned id and timestamps on the passed record.
type RecordStore interface {
	CreateCampaign(ctx context.Context, campaign *models.Campaign) error
	CreateAdSet(ctx context.Context, adSet *models.AdSet) error
	CreateAsset(ctx context.Context, asset *models.Asset) error
	CreateAdVariant(ctx context.Context, variant *models.AdVariant) error
}

type Entity string

const (
	EntityCampaign  Entity = "campaign"
	EntityAdSet     Entity = "ad_set"
	EntityAsset     Entity = "asset"
	EntityAdVariant Entity = "ad_variant"
)

// RecordDeleter is implemented by stores that can undo a create.
type RecordDeleter interface {
	DeleteRecord(ctx context.Context, entity Entity, id string) error
}
