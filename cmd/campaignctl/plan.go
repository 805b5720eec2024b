package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"adbuilder/internal/builder"
)

// planFile is a campaign composed offline, in the shape the builder holds it.
type planFile struct {
	Campaign struct {
		Name      string `yaml:"name"`
		Objective string `yaml:"objective"`
		Budget    string `yaml:"budget"`
		Audience  string `yaml:"audience"`
	} `yaml:"campaign"`
	Assets []struct {
		ID      string   `yaml:"id"`
		Name    string   `yaml:"name"`
		Type    string   `yaml:"type"`
		Preview string   `yaml:"preview"`
		Tags    []string `yaml:"tags"`
		Width   *int     `yaml:"width"`
		Height  *int     `yaml:"height"`
	} `yaml:"assets"`
	AdSets []struct {
		Name     string   `yaml:"name"`
		Budget   string   `yaml:"budget"`
		Audience string   `yaml:"audience"`
		Assets   []string `yaml:"assets"`
	} `yaml:"ad_sets"`
	CopyVariants []struct {
		Headline    string `yaml:"headline"`
		PrimaryText string `yaml:"primary_text"`
		CTA         string `yaml:"cta"`
	} `yaml:"copy_variants"`
}

func loadPlan(path string) (*builder.Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	return parsePlan(raw)
}

// parsePlan replays the file onto a fresh store through the same operations
// the HTTP API uses, so a plan fails the same way an edit would.
func parsePlan(raw []byte) (*builder.Store, error) {
	var pf planFile
	if err := yaml.Unmarshal(raw, &pf); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}

	seed := make([]builder.CreativeAsset, 0, len(pf.Assets))
	for _, a := range pf.Assets {
		typ := builder.AssetType(a.Type)
		if typ == "" {
			typ = builder.AssetTypeImage
		}
		seed = append(seed, builder.CreativeAsset{
			ID:      a.ID,
			Name:    a.Name,
			Type:    typ,
			Preview: a.Preview,
			Tags:    a.Tags,
			Width:   a.Width,
			Height:  a.Height,
		})
	}
	store := builder.NewStore(seed)
	store.SetMetadata(builder.CampaignMetadata{
		Name:      pf.Campaign.Name,
		Objective: pf.Campaign.Objective,
		Budget:    pf.Campaign.Budget,
		Audience:  pf.Campaign.Audience,
	})

	snap := store.Snapshot()
	for i, set := range pf.AdSets {
		var id int64
		if i == 0 && len(snap.AdSets) > 0 {
			id = snap.AdSets[0].ID
		} else {
			id = store.AddAdSet().ID
		}
		fields := []struct {
			field builder.AdSetField
			value string
		}{
			{builder.AdSetFieldName, set.Name},
			{builder.AdSetFieldBudget, set.Budget},
			{builder.AdSetFieldAudience, set.Audience},
		}
		for _, f := range fields {
			if f.value == "" {
				continue
			}
			if err := store.UpdateAdSet(id, f.field, f.value); err != nil {
				return nil, fmt.Errorf("ad set %d: %w", i+1, err)
			}
		}
		if err := store.UpdateAdSet(id, builder.AdSetFieldSelectedAssets, append([]string{}, set.Assets...)); err != nil {
			return nil, fmt.Errorf("ad set %d: %w", i+1, err)
		}
	}

	for i, cv := range pf.CopyVariants {
		var id int64
		if i == 0 && len(snap.CopyVariants) > 0 {
			id = snap.CopyVariants[0].ID
		} else {
			id = store.AddCopyVariant().ID
		}
		fields := []struct {
			field builder.CopyVariantField
			value string
		}{
			{builder.CopyVariantFieldHeadline, cv.Headline},
			{builder.CopyVariantFieldPrimaryText, cv.PrimaryText},
			{builder.CopyVariantFieldCTA, cv.CTA},
		}
		for _, f := range fields {
			if f.value == "" {
				continue
			}
			if err := store.UpdateCopyVariant(id, f.field, f.value); err != nil {
				return nil, fmt.Errorf("copy variant %d: %w", i+1, err)
			}
		}
	}
	return store, nil
}
