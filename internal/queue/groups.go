// Package queue implements queue mode: assets are bucketed by aspect ratio
// and each bucket is distributed to a chosen set of ad sets in one step.
package queue

import (
	"math"
	"strings"

	"adbuilder/internal/builder"
)

type Group string

const (
	GroupSquare    Group = "1:1 (Square)"
	GroupPortrait  Group = "4:5 (Vertical)"
	GroupStory     Group = "9:16 (Vertical)"
	GroupLandscape Group = "16:9 (Landscape)"
	GroupOther     Group = "Other"
)

// ratioTolerance is the absolute width/height slack allowed per bucket.
const ratioTolerance = 0.03

var ratios = []struct {
	group Group
	ratio float64
}{
	{GroupSquare, 1},
	{GroupPortrait, 4.0 / 5.0},
	{GroupStory, 9.0 / 16.0},
	{GroupLandscape, 16.0 / 9.0},
}

// Groups returns every group in display order.
func Groups() []Group {
	return []Group{GroupSquare, GroupPortrait, GroupStory, GroupLandscape, GroupOther}
}

// FirstWord is the token matched against ad set names when suggesting targets.
func (g Group) FirstWord() string {
	fields := strings.Fields(string(g))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Classify maps an asset to exactly one group. Missing or non-positive
// dimensions land in GroupOther.
func Classify(a builder.CreativeAsset) Group {
	if a.Width == nil || a.Height == nil || *a.Width <= 0 || *a.Height <= 0 {
		return GroupOther
	}
	r := float64(*a.Width) / float64(*a.Height)
	for _, c := range ratios {
		if math.Abs(r-c.ratio) <= ratioTolerance {
			return c.group
		}
	}
	return GroupOther
}

type Bucket struct {
	Group  Group                   `json:"group"`
	Assets []builder.CreativeAsset `json:"assets"`
}

// GroupAssets buckets assets, keeping input order inside each bucket and
// omitting empty groups.
func GroupAssets(assets []builder.CreativeAsset) []Bucket {
	byGroup := make(map[Group][]builder.CreativeAsset)
	for _, a := range assets {
		g := Classify(a)
		byGroup[g] = append(byGroup[g], a)
	}
	var out []Bucket
	for _, g := range Groups() {
		if len(byGroup[g]) == 0 {
			continue
		}
		out = append(out, Bucket{Group: g, Assets: byGroup[g]})
	}
	return out
}

// Suggest proposes target ad sets per bucket: those whose name contains the
// group's first word, or every ad set when none match.
func Suggest(buckets []Bucket, adSets []builder.AdSetView) map[Group][]int64 {
	out := make(map[Group][]int64, len(buckets))
	for _, b := range buckets {
		word := strings.ToLower(b.Group.FirstWord())
		var ids []int64
		for _, set := range adSets {
			if word != "" && strings.Contains(strings.ToLower(set.Name), word) {
				ids = append(ids, set.ID)
			}
		}
		if len(ids) == 0 {
			for _, set := range adSets {
				ids = append(ids, set.ID)
			}
		}
		out[b.Group] = ids
	}
	return out
}
