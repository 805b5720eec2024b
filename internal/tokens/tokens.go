// Package tokens resolves {{namespace.key}} placeholders used in ad set names.
package tokens

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Context is the read-only state a template is rendered against.
type Context struct {
	CampaignName   string
	Objective      string
	AdSetAudience  string
	AdSetBudget    string
	AdSetIndex     int // 0-based position in the ad set list
	AssetCount     int
	FirstAssetName string
	Now            time.Time
}

type resolver func(Context) (string, error)

// A placeholder body holds no braces, so the innermost {{...}} wins when
// braces are nested or left unclosed.
var placeholder = regexp.MustCompile(`\{\{([^{}]*)\}\}`)

// keys are stored lower-cased; lookups fold case.
var resolvers = map[string]resolver{
	"campaign.name":      func(c Context) (string, error) { return c.CampaignName, nil },
	"campaign.objective": func(c Context) (string, error) { return c.Objective, nil },
	"adset.audience":     func(c Context) (string, error) { return c.AdSetAudience, nil },
	"adset.budget":       func(c Context) (string, error) { return c.AdSetBudget, nil },
	"adset.index": func(c Context) (string, error) {
		if c.AdSetIndex < 0 {
			return "", fmt.Errorf("negative ad set index %d", c.AdSetIndex)
		}
		return strconv.Itoa(c.AdSetIndex + 1), nil
	},
	"adset.asset_count":      func(c Context) (string, error) { return strconv.Itoa(c.AssetCount), nil },
	"adset.first_asset_name": func(c Context) (string, error) { return StripExtension(c.FirstAssetName), nil },
	"date.yyyy-mm-dd":        func(c Context) (string, error) { return c.now().Format("2006-01-02"), nil },
	"date.mm-dd-yyyy":        func(c Context) (string, error) { return c.now().Format("01-02-2006"), nil },
}

// keyOrder is the display order for Keys.
var keyOrder = []string{
	"campaign.name",
	"campaign.objective",
	"adSet.audience",
	"adSet.budget",
	"adSet.index",
	"adSet.asset_count",
	"adSet.first_asset_name",
	"date.yyyy-mm-dd",
	"date.mm-dd-yyyy",
}

func (c Context) now() time.Time {
	if c.Now.IsZero() {
		return time.Now()
	}
	return c.Now
}

// Render replaces every recognised placeholder in tmpl. Unknown keys are
// kept verbatim so half-typed templates still preview. A resolver that
// fails only blanks its own placeholder.
func Render(tmpl string, ctx Context) string {
	if !strings.Contains(tmpl, "{{") {
		return tmpl
	}
	return placeholder.ReplaceAllStringFunc(tmpl, func(match string) string {
		key := normalize(match[2 : len(match)-2])
		fn, ok := resolvers[key]
		if !ok {
			return match
		}
		return safeResolve(fn, ctx)
	})
}

func safeResolve(fn resolver, ctx Context) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = ""
		}
	}()
	v, err := fn(ctx)
	if err != nil {
		return ""
	}
	return v
}

// Unresolved returns the keys in tmpl that Render would leave untouched,
// in order of first appearance.
func Unresolved(tmpl string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range placeholder.FindAllStringSubmatch(tmpl, -1) {
		raw := strings.TrimSpace(m[1])
		if _, ok := resolvers[normalize(raw)]; ok || seen[raw] {
			continue
		}
		seen[raw] = true
		out = append(out, raw)
	}
	return out
}

// Keys lists the recognised placeholder keys.
func Keys() []string {
	out := make([]string, len(keyOrder))
	copy(out, keyOrder)
	return out
}

// StripExtension drops the final ".ext" of a file name, if any.
func StripExtension(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 || idx == len(name)-1 || strings.Contains(name[idx:], "/") {
		return name
	}
	return name[:idx]
}

func normalize(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
