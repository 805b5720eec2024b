package services

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"adbuilder/internal/models"
)

type templateFile struct {
	Templates []models.CampaignTemplate `yaml:"templates"`
}

// YAMLCatalogue serves templates from a YAML file. Templates without a
// tenant_id are shared by every tenant.
type YAMLCatalogue struct {
	templates []models.CampaignTemplate
}

func LoadYAMLCatalogue(path string) (*YAMLCatalogue, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}
	return ParseYAMLCatalogue(raw)
}

func ParseYAMLCatalogue(raw []byte) (*YAMLCatalogue, error) {
	var f templateFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	seen := make(map[string]bool)
	for i, t := range f.Templates {
		if t.ID == "" {
			return nil, fmt.Errorf("template %d has no id", i)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("duplicate template id %q", t.ID)
		}
		seen[t.ID] = true
	}
	return &YAMLCatalogue{templates: f.Templates}, nil
}

func (c *YAMLCatalogue) ListTemplates(_ context.Context, tenantID string) ([]models.CampaignTemplate, error) {
	var out []models.CampaignTemplate
	for _, t := range c.templates {
		if t.TenantID == "" || t.TenantID == tenantID {
			out = append(out, t)
		}
	}
	return out, nil
}
