package templates

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"adbuilder/internal/builder"
	"adbuilder/internal/models"
)

type fakeCatalogue struct {
	byTenant map[string][]models.CampaignTemplate
	err      error
}

func (f fakeCatalogue) ListTemplates(_ context.Context, tenantID string) ([]models.CampaignTemplate, error) {
	return f.byTenant[tenantID], f.err
}

func budget(v float64) *float64 { return &v }

func catalogue() fakeCatalogue {
	return fakeCatalogue{byTenant: map[string][]models.CampaignTemplate{
		"adv-1": {
			{
				ID: "tpl-full", Name: "Holiday Push", DefaultObjective: "conversions", DefaultBudget: budget(250.5),
				DefaultAudience: &models.Audience{
					Locations: []string{"US", "CA"},
					AgeRange:  models.AgeRange{Min: 18, Max: 35},
					Interests: []string{"gifts"},
				},
			},
			{ID: "tpl-sparse", Name: "Awareness", DefaultObjective: "awareness"},
		},
	}}
}

func TestFormatAudience(t *testing.T) {
	cases := []struct {
		name string
		in   models.Audience
		want string
	}{
		{"all parts", models.Audience{Locations: []string{"US", "CA"}, AgeRange: models.AgeRange{Min: 18, Max: 35}, Interests: []string{"gifts", "toys"}},
			"Locations: US, CA; Age: 18-35; Interests: gifts, toys"},
		{"no age", models.Audience{Locations: []string{"US"}, Interests: []string{"gifts"}}, "Locations: US; Interests: gifts"},
		{"half age is omitted", models.Audience{AgeRange: models.AgeRange{Min: 18}}, ""},
		{"blank entries dropped", models.Audience{Locations: []string{" ", "UK"}}, "Locations: UK"},
		{"empty", models.Audience{}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatAudience(tc.in); got != tc.want {
				t.Fatalf("FormatAudience() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSelectAppliesTemplate(t *testing.T) {
	store := builder.NewStore(nil)
	store.SetMetadata(builder.CampaignMetadata{Name: "Draft", Objective: "traffic", Budget: "10", Audience: "Everyone"})
	o := NewOrchestrator(catalogue(), store)
	if _, err := o.Load(context.Background(), "adv-1"); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got, err := o.Select("tpl-full")
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	want := builder.CampaignMetadata{
		Name:      "Holiday Push",
		Objective: "conversions",
		Budget:    "250.5",
		Audience:  "Locations: US, CA; Age: 18-35; Interests: gifts",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("metadata mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, store.Metadata()); diff != "" {
		t.Fatalf("store metadata mismatch (-want +got):\n%s", diff)
	}
	if o.Selected() != "tpl-full" {
		t.Fatalf("Selected() = %q", o.Selected())
	}
}

func TestSelectKeepsFieldsTemplateLeavesUnset(t *testing.T) {
	store := builder.NewStore(nil)
	store.SetMetadata(builder.CampaignMetadata{Name: "Draft", Objective: "traffic", Budget: "10", Audience: "Everyone"})
	o := NewOrchestrator(catalogue(), store)
	if _, err := o.Load(context.Background(), "adv-1"); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got, err := o.Select("tpl-sparse")
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if got.Budget != "10" || got.Audience != "Everyone" || got.Objective != "awareness" {
		t.Fatalf("unexpected metadata %+v", got)
	}
}

func TestResetSelectionKeepsMetadata(t *testing.T) {
	store := builder.NewStore(nil)
	o := NewOrchestrator(catalogue(), store)
	if _, err := o.Load(context.Background(), "adv-1"); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, err := o.Select("tpl-full"); err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	o.ResetSelection()
	if o.Selected() != "" {
		t.Fatalf("expected selection cleared")
	}
	if store.Metadata().Name != "Holiday Push" {
		t.Fatalf("metadata must not be reverted, got %+v", store.Metadata())
	}
}

func TestSelectUnknownTemplate(t *testing.T) {
	o := NewOrchestrator(catalogue(), builder.NewStore(nil))
	if _, err := o.Select("nope"); !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestLoadErrorKeepsPreviousListAndClearEmpties(t *testing.T) {
	o := NewOrchestrator(catalogue(), builder.NewStore(nil))
	if _, err := o.Load(context.Background(), "adv-1"); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	o.catalogue = fakeCatalogue{err: errors.New("db down")}
	if _, err := o.Load(context.Background(), "adv-1"); err == nil {
		t.Fatalf("expected error")
	}
	if len(o.Templates()) != 2 {
		t.Fatalf("expected previous templates kept, got %d", len(o.Templates()))
	}

	o.Clear()
	if len(o.Templates()) != 0 || o.Selected() != "" {
		t.Fatalf("expected empty catalogue after Clear")
	}
}
