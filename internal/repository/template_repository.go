package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"adbuilder/internal/models"
)

type TemplateRepository struct {
	db *sql.DB
}

func NewTemplateRepository(db *sql.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) ListTemplates(ctx context.Context, tenantID string) ([]models.CampaignTemplate, error) {
	query := `
		SELECT id, tenant_id, name, description, default_objective, default_budget, default_audience, created_at
		FROM campaign_templates
		WHERE tenant_id = $1
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var templates []models.CampaignTemplate
	for rows.Next() {
		var (
			tpl         models.CampaignTemplate
			description sql.NullString
			objective   sql.NullString
			budget      sql.NullFloat64
			audience    []byte
		)
		if err := rows.Scan(
			&tpl.ID,
			&tpl.TenantID,
			&tpl.Name,
			&description,
			&objective,
			&budget,
			&audience,
			&tpl.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		tpl.Description = description.String
		tpl.DefaultObjective = objective.String
		if budget.Valid {
			v := budget.Float64
			tpl.DefaultBudget = &v
		}
		if len(audience) > 0 {
			var a models.Audience
			if err := json.Unmarshal(audience, &a); err != nil {
				return nil, fmt.Errorf("template %s has invalid audience: %w", tpl.ID, err)
			}
			tpl.DefaultAudience = &a
		}
		templates = append(templates, tpl)
	}
	return templates, rows.Err()
}

// CreateTemplate stores a template. Used by seeding and the CLI.
func (r *TemplateRepository) CreateTemplate(ctx context.Context, tpl *models.CampaignTemplate) error {
	var audience interface{}
	if tpl.DefaultAudience != nil {
		audience = *tpl.DefaultAudience
	}
	var budget sql.NullFloat64
	if tpl.DefaultBudget != nil {
		budget = sql.NullFloat64{Float64: *tpl.DefaultBudget, Valid: true}
	}

	query := `
		INSERT INTO campaign_templates (tenant_id, name, description, default_objective, default_budget, default_audience)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(
		ctx,
		query,
		tpl.TenantID,
		tpl.Name,
		tpl.Description,
		tpl.DefaultObjective,
		budget,
		audience,
	).Scan(&tpl.ID, &tpl.CreatedAt)
	if err != nil {
		return insertError("template", err)
	}
	return nil
}
