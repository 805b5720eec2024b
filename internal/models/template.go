package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type AgeRange struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

type Audience struct {
	Locations []string `json:"locations" yaml:"locations"`
	AgeRange  AgeRange `json:"ageRange" yaml:"age_range"`
	Interests []string `json:"interests" yaml:"interests"`
}

// Value implements driver.Valuer for JSONB serialization
func (a Audience) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implements sql.Scanner for JSONB deserialization
func (a *Audience) Scan(value interface{}) error {
	if value == nil {
		*a = Audience{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	}
	return fmt.Errorf("unsupported audience type %T", value)
}

// CampaignTemplate pre-fills campaign metadata. It is read-only to the builder.
type CampaignTemplate struct {
	ID               string    `json:"id" yaml:"id"`
	TenantID         string    `json:"tenant_id" yaml:"tenant_id"`
	Name             string    `json:"name" yaml:"name"`
	Description      string    `json:"description,omitempty" yaml:"description"`
	DefaultObjective string    `json:"default_objective" yaml:"default_objective"`
	DefaultBudget    *float64  `json:"default_budget,omitempty" yaml:"default_budget"`
	DefaultAudience  *Audience `json:"default_audience,omitempty" yaml:"default_audience"`
	CreatedAt        time.Time `json:"created_at" yaml:"-"`
}
