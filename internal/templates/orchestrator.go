// Package templates loads the tenant's campaign templates and applies a
// selected one onto the builder's campaign metadata.
package templates

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"adbuilder/internal/builder"
	"adbuilder/internal/interfaces"
	"adbuilder/internal/models"
)

var ErrTemplateNotFound = errors.New("template not found")

// MetadataTarget is the part of the builder store templates write to.
type MetadataTarget interface {
	Metadata() builder.CampaignMetadata
	SetMetadata(m builder.CampaignMetadata)
}

type Orchestrator struct {
	catalogue interfaces.TemplateCatalogue
	target    MetadataTarget

	mu        sync.RWMutex
	templates []models.CampaignTemplate
	selected  string
}

func NewOrchestrator(catalogue interfaces.TemplateCatalogue, target MetadataTarget) *Orchestrator {
	return &Orchestrator{catalogue: catalogue, target: target}
}

// Load replaces the catalogue with the templates of tenantID. On error the
// previous list is kept.
func (o *Orchestrator) Load(ctx context.Context, tenantID string) ([]models.CampaignTemplate, error) {
	if o.catalogue == nil {
		return nil, nil
	}
	list, err := o.catalogue.ListTemplates(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.templates = append([]models.CampaignTemplate(nil), list...)
	if o.selected != "" && o.indexLocked(o.selected) < 0 {
		o.selected = ""
	}
	return o.copyLocked(), nil
}

// Clear drops the catalogue and the selection marker, as on sign-out.
func (o *Orchestrator) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.templates = nil
	o.selected = ""
}

func (o *Orchestrator) Templates() []models.CampaignTemplate {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.copyLocked()
}

// Selected returns the id of the highlighted template, or "".
func (o *Orchestrator) Selected() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.selected
}

// Select applies the template's defaults onto the campaign metadata. Fields
// the template leaves unset keep their current value.
func (o *Orchestrator) Select(id string) (builder.CampaignMetadata, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	i := o.indexLocked(id)
	if i < 0 {
		return builder.CampaignMetadata{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	tpl := o.templates[i]

	m := o.target.Metadata()
	if strings.TrimSpace(tpl.Name) != "" {
		m.Name = tpl.Name
	}
	if strings.TrimSpace(tpl.DefaultObjective) != "" {
		m.Objective = tpl.DefaultObjective
	}
	if tpl.DefaultBudget != nil {
		m.Budget = strconv.FormatFloat(*tpl.DefaultBudget, 'f', -1, 64)
	}
	if tpl.DefaultAudience != nil {
		if audience := FormatAudience(*tpl.DefaultAudience); audience != "" {
			m.Audience = audience
		}
	}
	o.target.SetMetadata(m)
	o.selected = tpl.ID
	return m, nil
}

// ResetSelection clears the marker only. Applied metadata stays.
func (o *Orchestrator) ResetSelection() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.selected = ""
}

// FormatAudience flattens an audience to
// "Locations: a, b; Age: 18-35; Interests: x, y", skipping empty parts.
func FormatAudience(a models.Audience) string {
	var parts []string
	if locations := nonEmpty(a.Locations); len(locations) > 0 {
		parts = append(parts, "Locations: "+strings.Join(locations, ", "))
	}
	if a.AgeRange.Min > 0 && a.AgeRange.Max > 0 {
		parts = append(parts, fmt.Sprintf("Age: %d-%d", a.AgeRange.Min, a.AgeRange.Max))
	}
	if interests := nonEmpty(a.Interests); len(interests) > 0 {
		parts = append(parts, "Interests: "+strings.Join(interests, ", "))
	}
	return strings.Join(parts, "; ")
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (o *Orchestrator) indexLocked(id string) int {
	for i, t := range o.templates {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (o *Orchestrator) copyLocked() []models.CampaignTemplate {
	out := make([]models.CampaignTemplate, len(o.templates))
	copy(out, o.templates)
	return out
}
