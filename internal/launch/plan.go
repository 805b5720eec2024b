package launch

import (
	"math"
	"strconv"
	"strings"
	"time"

	"adbuilder/internal/builder"
	"adbuilder/internal/models"
)

type Mode string

const (
	// ModeFlattened writes one default ad set holding the de-duplicated
	// selection of every builder ad set.
	ModeFlattened Mode = "flattened"
	// ModePerAdSet writes one ad set per builder ad set, with rendered names.
	ModePerAdSet Mode = "per_ad_set"
)

// ParseMode falls back to ModeFlattened for anything unrecognised.
func ParseMode(s string) Mode {
	if Mode(strings.ToLower(strings.TrimSpace(s))) == ModePerAdSet {
		return ModePerAdSet
	}
	return ModeFlattened
}

type plan struct {
	campaign models.Campaign
	adSets   []adSetPlan
	variants []builder.CopyVariant
}

type adSetPlan struct {
	record models.AdSet
	assets []builder.CreativeAsset
}

// Validate runs the pre-flight checks in order and returns the first failure.
func Validate(snap builder.Snapshot) error {
	m := snap.Metadata
	if strings.TrimSpace(m.Name) == "" {
		return &ValidationError{Field: "name", Message: "Campaign name is required"}
	}
	if strings.TrimSpace(m.Objective) == "" {
		return &ValidationError{Field: "objective", Message: "Select a campaign objective"}
	}
	if len(snap.SelectedAssets()) == 0 {
		return &ValidationError{Field: "assets", Message: "Select at least one creative asset"}
	}
	if len(snap.CopyVariants) == 0 {
		return &ValidationError{Field: "copy_variants", Message: "Add at least one ad copy variant"}
	}
	if strings.TrimSpace(m.Budget) == "" {
		return &ValidationError{Field: "budget", Message: "Budget is required"}
	}
	if _, ok := parseBudget(m.Budget); !ok {
		return &ValidationError{Field: "budget", Message: "Budget must be a non-negative number"}
	}
	return nil
}

func parseBudget(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}

// buildPlan turns a validated snapshot into the ordered records to write.
func buildPlan(snap builder.Snapshot, tenantID string, mode Mode, now time.Time) plan {
	m := snap.Metadata
	budget, _ := parseBudget(m.Budget)
	p := plan{
		campaign: models.Campaign{
			TenantID:  tenantID,
			Name:      strings.TrimSpace(m.Name),
			Objective: m.Objective,
			Status:    models.CampaignStatusDraft,
			Budget:    budget,
			Audience:  m.Audience,
		},
		variants: snap.CopyVariants,
	}

	if mode != ModePerAdSet {
		p.adSets = []adSetPlan{{
			record: models.AdSet{
				Name:     p.campaign.Name + " - Default Ad Set",
				Budget:   budget,
				Audience: m.Audience,
				Status:   models.AdSetStatusDraft,
			},
			assets: snap.SelectedAssets(),
		}}
		return p
	}

	for i, set := range snap.AdSets {
		if len(set.Assets) == 0 {
			continue
		}
		setBudget, ok := parseBudget(set.Budget)
		if !ok {
			setBudget = budget
		}
		audience := set.Audience
		if strings.TrimSpace(audience) == "" {
			audience = m.Audience
		}
		name := strings.TrimSpace(snap.RenderAdSetName(i, now))
		if name == "" {
			name = set.Name
		}
		p.adSets = append(p.adSets, adSetPlan{
			record: models.AdSet{
				Name:     name,
				Budget:   setBudget,
				Audience: audience,
				Status:   models.AdSetStatusDraft,
			},
			assets: set.Assets,
		})
	}
	return p
}

// units counts the records the plan writes, reused assets included.
func (p plan) units() int {
	n := 1
	for _, set := range p.adSets {
		n += 1 + len(set.assets)*(1+len(p.variants))
	}
	return n
}

func (p plan) ads() int {
	n := 0
	for _, set := range p.adSets {
		n += len(set.assets) * len(p.variants)
	}
	return n
}

func assetRecord(a builder.CreativeAsset, tenantID string) models.Asset {
	rec := models.Asset{
		TenantID: tenantID,
		SourceID: a.ID,
		Name:     a.Name,
		Type:     models.AssetType(a.Type),
		URL:      a.Preview,
		Tags:     append([]string{}, a.Tags...),
		Width:    a.Width,
		Height:   a.Height,
		Angle:    a.Angle,
		Hook:     a.Hook,
		Notes:    a.Notes,
	}
	if rec.Type == "" {
		rec.Type = models.AssetTypeFile
	}
	if rec.Name == "" {
		rec.Name = a.ID
	}
	return rec
}
