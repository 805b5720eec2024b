package builder

import (
	"time"

	"adbuilder/internal/tokens"
)

type AssetType string

const (
	AssetTypeImage AssetType = "image"
	AssetTypeVideo AssetType = "video"
	AssetTypeFile  AssetType = "file"
)

const (
	DefaultAudience = "Broad Audience"
	DefaultCTA      = "Learn More"
)

type CampaignMetadata struct {
	Name      string `json:"name"`
	Objective string `json:"objective"`
	Budget    string `json:"budget"`
	Audience  string `json:"audience"`
}

// CreativeAsset is a pool entry. IDs are namespaced by source, e.g. drive-<id>.
type CreativeAsset struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Type    AssetType `json:"type"`
	Preview string    `json:"preview"`
	Tags    []string  `json:"tags"`
	Width   *int      `json:"width,omitempty"`
	Height  *int      `json:"height,omitempty"`
	Angle   string    `json:"angle,omitempty"`
	Hook    string    `json:"hook,omitempty"`
	Notes   string    `json:"notes,omitempty"`
}

func (a CreativeAsset) clone() CreativeAsset {
	out := a
	out.Tags = append([]string{}, a.Tags...)
	if a.Width != nil {
		w := *a.Width
		out.Width = &w
	}
	if a.Height != nil {
		h := *a.Height
		out.Height = &h
	}
	return out
}

// AdSet keeps only pool ids; full assets are resolved on read.
type AdSet struct {
	ID               int64    `json:"id"`
	Name             string   `json:"name"`
	Budget           string   `json:"budget"`
	Audience         string   `json:"audience"`
	SelectedAssetIDs []string `json:"selected_asset_ids"`
}

// AdSetView is an ad set with its selection resolved against the pool.
type AdSetView struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Budget   string          `json:"budget"`
	Audience string          `json:"audience"`
	Assets   []CreativeAsset `json:"selected_assets"`
}

type CopyVariant struct {
	ID          int64  `json:"id"`
	Headline    string `json:"headline"`
	PrimaryText string `json:"primary_text"`
	CTA         string `json:"cta"`
}

type AdSetField string

const (
	AdSetFieldName           AdSetField = "name"
	AdSetFieldBudget         AdSetField = "budget"
	AdSetFieldAudience       AdSetField = "audience"
	AdSetFieldSelectedAssets AdSetField = "selectedAssets"
)

type CopyVariantField string

const (
	CopyVariantFieldHeadline    CopyVariantField = "headline"
	CopyVariantFieldPrimaryText CopyVariantField = "primaryText"
	CopyVariantFieldCTA         CopyVariantField = "cta"
)

type MetadataField string

const (
	MetadataFieldName      MetadataField = "name"
	MetadataFieldObjective MetadataField = "objective"
	MetadataFieldBudget    MetadataField = "budget"
	MetadataFieldAudience  MetadataField = "audience"
)

// Snapshot is a deep copy of the builder state. Mutating it never affects
// the store it came from.
type Snapshot struct {
	Metadata     CampaignMetadata `json:"campaign"`
	Pool         []CreativeAsset  `json:"asset_pool"`
	AdSets       []AdSetView      `json:"ad_sets"`
	CopyVariants []CopyVariant    `json:"copy_variants"`
	TotalAds     int              `json:"total_ads"`
}

// SelectedAssets flattens every ad set's selection, first occurrence wins.
func (s Snapshot) SelectedAssets() []CreativeAsset {
	var out []CreativeAsset
	seen := make(map[string]bool)
	for _, set := range s.AdSets {
		for _, a := range set.Assets {
			if seen[a.ID] {
				continue
			}
			seen[a.ID] = true
			out = append(out, a)
		}
	}
	return out
}

// TokenContext builds the render context for the ad set at index i.
func (s Snapshot) TokenContext(i int, now time.Time) tokens.Context {
	ctx := tokens.Context{
		CampaignName: s.Metadata.Name,
		Objective:    s.Metadata.Objective,
		AdSetIndex:   i,
		Now:          now,
	}
	if i < 0 || i >= len(s.AdSets) {
		return ctx
	}
	set := s.AdSets[i]
	ctx.AdSetAudience = set.Audience
	ctx.AdSetBudget = set.Budget
	ctx.AssetCount = len(set.Assets)
	if len(set.Assets) > 0 {
		ctx.FirstAssetName = set.Assets[0].Name
	}
	return ctx
}

// RenderAdSetName resolves the tokens in the name of the ad set at index i.
func (s Snapshot) RenderAdSetName(i int, now time.Time) string {
	if i < 0 || i >= len(s.AdSets) {
		return ""
	}
	return tokens.Render(s.AdSets[i].Name, s.TokenContext(i, now))
}

func totalAds(adSets []AdSet, variants int) int {
	total := 0
	for _, set := range adSets {
		total += len(set.SelectedAssetIDs) * variants
	}
	return total
}
