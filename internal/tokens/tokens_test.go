package tokens

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestRenderObjectiveAndIndex(t *testing.T) {
	got := Render("{{campaign.objective}} - {{adSet.index}}", Context{Objective: "Sales", AdSetIndex: 0})
	if got != "Sales - 1" {
		t.Fatalf("expected %q got %q", "Sales - 1", got)
	}
}

func TestRenderKeepsUnknownPlaceholders(t *testing.T) {
	got := Render("{{foo.bar}} / {{campaign.name}}", Context{CampaignName: "Spring"})
	if got != "{{foo.bar}} / Spring" {
		t.Fatalf("unexpected render %q", got)
	}
}

func TestRenderInnermostPlaceholder(t *testing.T) {
	ctx := Context{CampaignName: "Spring", AdSetIndex: 1}
	tests := map[string]string{
		"{{{campaign.name}}}":       "{Spring}",
		"{{ {{adSet.index}}":        "{{ 2",
		"{{adSet.index}} }}":        "2 }}",
		"{{foo.{{campaign.name}}}}": "{{foo.Spring}}",
	}
	for tmpl, want := range tests {
		if got := Render(tmpl, ctx); got != want {
			t.Errorf("Render(%q) = %q, want %q", tmpl, got, want)
		}
	}
	if got := Unresolved("{{ {{adSet.index}}"); len(got) != 0 {
		t.Fatalf("expected no unresolved keys, got %v", got)
	}
}

func TestRenderIsCaseInsensitiveAndTrimmed(t *testing.T) {
	got := Render("{{ CAMPAIGN.Name }}|{{adset.AUDIENCE}}", Context{CampaignName: "Launch", AdSetAudience: "US 18-34"})
	if got != "Launch|US 18-34" {
		t.Fatalf("unexpected render %q", got)
	}
}

func TestRenderAllKeys(t *testing.T) {
	ctx := Context{
		CampaignName:   "Spring",
		Objective:      "Traffic",
		AdSetAudience:  "Broad Audience",
		AdSetBudget:    "250",
		AdSetIndex:     2,
		AssetCount:     4,
		FirstAssetName: "hero.final.mp4",
		Now:            time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC),
	}
	tests := []struct {
		tmpl string
		want string
	}{
		{"{{campaign.name}}", "Spring"},
		{"{{campaign.objective}}", "Traffic"},
		{"{{adSet.audience}}", "Broad Audience"},
		{"{{adSet.budget}}", "250"},
		{"{{adSet.index}}", "3"},
		{"{{adSet.asset_count}}", "4"},
		{"{{adSet.first_asset_name}}", "hero.final"},
		{"{{date.yyyy-mm-dd}}", "2026-03-09"},
		{"{{date.mm-dd-yyyy}}", "03-09-2026"},
		{"plain text", "plain text"},
	}
	for _, tt := range tests {
		if got := Render(tt.tmpl, ctx); got != tt.want {
			t.Errorf("Render(%q) = %q, want %q", tt.tmpl, got, tt.want)
		}
	}
}

func TestRenderFirstAssetNameEmptyWhenNoneSelected(t *testing.T) {
	if got := Render("[{{adSet.first_asset_name}}]", Context{}); got != "[]" {
		t.Fatalf("expected empty first asset name, got %q", got)
	}
}

func TestRenderIsolatesFailingResolver(t *testing.T) {
	resolvers["test.error"] = func(Context) (string, error) { return "x", errors.New("boom") }
	resolvers["test.panic"] = func(Context) (string, error) { panic("boom") }
	defer delete(resolvers, "test.error")
	defer delete(resolvers, "test.panic")

	got := Render("a{{test.error}}b{{test.panic}}c{{campaign.name}}", Context{CampaignName: "ok"})
	if got != "abcok" {
		t.Fatalf("expected failing placeholders to blank out, got %q", got)
	}
}

func TestUnresolved(t *testing.T) {
	got := Unresolved("{{campaign.name}} {{ foo.bar }} {{adSet.idx}} {{foo.bar}}")
	if diff := cmp.Diff([]string{"foo.bar", "adSet.idx"}, got); diff != "" {
		t.Fatalf("unresolved mismatch (-want +got):\n%s", diff)
	}
	if got := Unresolved("{{adSet.index}}"); len(got) != 0 {
		t.Fatalf("expected no unresolved keys, got %v", got)
	}
}

func TestStripExtension(t *testing.T) {
	tests := map[string]string{
		"photo.jpg":      "photo",
		"clip.final.mov": "clip.final",
		"noext":          "noext",
		"trailing.":      "trailing.",
		"":               "",
	}
	for in, want := range tests {
		if got := StripExtension(in); got != want {
			t.Errorf("StripExtension(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestKeysIsACopy(t *testing.T) {
	k := Keys()
	k[0] = "mutated"
	if Keys()[0] != "campaign.name" {
		t.Fatalf("Keys must return a copy")
	}
}
