package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"adbuilder/internal/interfaces"
	"adbuilder/internal/models"
)

// ErrInvalidReference wraps foreign key violations on insert.
var ErrInvalidReference = errors.New("invalid reference")

const foreignKeyViolation = "23503"

var validate = validator.New()

// RecordRepository writes the records a launch produces and reads back
// launched campaigns.
type RecordRepository struct {
	db *sql.DB
}

var (
	_ interfaces.RecordStore   = (*RecordRepository)(nil)
	_ interfaces.RecordDeleter = (*RecordRepository)(nil)
)

func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

func (r *RecordRepository) CreateCampaign(ctx context.Context, campaign *models.Campaign) error {
	if campaign.ID == "" {
		campaign.ID = uuid.NewString()
	}
	if campaign.Status == "" {
		campaign.Status = models.CampaignStatusDraft
	}
	if err := validate.Struct(campaign); err != nil {
		return fmt.Errorf("invalid campaign: %w", err)
	}

	query := `
		INSERT INTO campaigns (id, tenant_id, name, objective, status, budget, audience)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(
		ctx,
		query,
		campaign.ID,
		campaign.TenantID,
		campaign.Name,
		campaign.Objective,
		campaign.Status,
		campaign.Budget,
		campaign.Audience,
	).Scan(&campaign.CreatedAt, &campaign.UpdatedAt)
	if err != nil {
		return insertError("campaign", err)
	}
	return nil
}

func (r *RecordRepository) CreateAdSet(ctx context.Context, adSet *models.AdSet) error {
	if adSet.ID == "" {
		adSet.ID = uuid.NewString()
	}
	if adSet.Status == "" {
		adSet.Status = models.AdSetStatusDraft
	}
	if err := validate.Struct(adSet); err != nil {
		return fmt.Errorf("invalid ad set: %w", err)
	}

	query := `
		INSERT INTO ad_sets (id, campaign_id, name, budget, audience, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(
		ctx,
		query,
		adSet.ID,
		adSet.CampaignID,
		adSet.Name,
		adSet.Budget,
		adSet.Audience,
		adSet.Status,
	).Scan(&adSet.CreatedAt)
	if err != nil {
		return insertError("ad set", err)
	}
	return nil
}

func (r *RecordRepository) CreateAsset(ctx context.Context, asset *models.Asset) error {
	if asset.ID == "" {
		asset.ID = uuid.NewString()
	}
	if err := validate.Struct(asset); err != nil {
		return fmt.Errorf("invalid asset: %w", err)
	}
	tags := asset.Tags
	if tags == nil {
		tags = []string{}
	}

	query := `
		INSERT INTO assets (
			id, tenant_id, source_id, name, type, url, tags, width, height, angle, hook, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(
		ctx,
		query,
		asset.ID,
		asset.TenantID,
		asset.SourceID,
		asset.Name,
		asset.Type,
		asset.URL,
		pq.Array(tags),
		nullInt(asset.Width),
		nullInt(asset.Height),
		asset.Angle,
		asset.Hook,
		asset.Notes,
	).Scan(&asset.CreatedAt)
	if err != nil {
		return insertError("asset", err)
	}
	return nil
}

func (r *RecordRepository) CreateAdVariant(ctx context.Context, variant *models.AdVariant) error {
	if variant.ID == "" {
		variant.ID = uuid.NewString()
	}
	if variant.Status == "" {
		variant.Status = models.AdVariantStatusPending
	}
	if err := validate.Struct(variant); err != nil {
		return fmt.Errorf("invalid ad variant: %w", err)
	}

	query := `
		INSERT INTO ad_variants (
			id, campaign_id, ad_set_id, asset_id, headline, primary_text, cta, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(
		ctx,
		query,
		variant.ID,
		variant.CampaignID,
		variant.AdSetID,
		variant.AssetID,
		variant.Headline,
		variant.PrimaryText,
		variant.CTA,
		variant.Status,
	).Scan(&variant.CreatedAt)
	if err != nil {
		return insertError("ad variant", err)
	}
	return nil
}

var deleteQueries = map[interfaces.Entity]string{
	interfaces.EntityCampaign:  `DELETE FROM campaigns WHERE id = $1`,
	interfaces.EntityAdSet:     `DELETE FROM ad_sets WHERE id = $1`,
	interfaces.EntityAsset:     `DELETE FROM assets WHERE id = $1`,
	interfaces.EntityAdVariant: `DELETE FROM ad_variants WHERE id = $1`,
}

// DeleteRecord removes one record. A missing row is sql.ErrNoRows and a
// record still referenced by others is *interfaces.DeletionBlockedError.
func (r *RecordRepository) DeleteRecord(ctx context.Context, entity interfaces.Entity, id string) error {
	query, ok := deleteQueries[entity]
	if !ok {
		return fmt.Errorf("unknown entity %q", entity)
	}

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
			return &interfaces.DeletionBlockedError{Resource: entity, ID: id, Constraint: pqErr.Constraint}
		}
		return fmt.Errorf("failed to delete %s: %w", entity, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", entity, err)
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type CampaignFilter struct {
	TenantID string
	Status   string
	Limit    int
	Offset   int
}

// ListCampaigns returns launched campaigns, newest first.
func (r *RecordRepository) ListCampaigns(ctx context.Context, filter CampaignFilter) ([]*models.Campaign, error) {
	query := `
		SELECT id, tenant_id, name, objective, status, budget, audience, created_at, updated_at
		FROM campaigns
		WHERE 1=1
	`

	var args []interface{}
	var whereClauses []string
	argPos := 1

	if filter.TenantID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("tenant_id = $%d", argPos))
		args = append(args, filter.TenantID)
		argPos++
	}
	if filter.Status != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("status = $%d", argPos))
		args = append(args, filter.Status)
		argPos++
	}
	if len(whereClauses) > 0 {
		query += " AND " + strings.Join(whereClauses, " AND ")
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argPos)
		args = append(args, filter.Limit)
		argPos++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argPos)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []*models.Campaign
	for rows.Next() {
		var campaign models.Campaign
		if err := rows.Scan(
			&campaign.ID,
			&campaign.TenantID,
			&campaign.Name,
			&campaign.Objective,
			&campaign.Status,
			&campaign.Budget,
			&campaign.Audience,
			&campaign.CreatedAt,
			&campaign.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		campaigns = append(campaigns, &campaign)
	}
	return campaigns, rows.Err()
}

func insertError(what string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
		return fmt.Errorf("failed to create %s: %w (%s)", what, ErrInvalidReference, pqErr.Constraint)
	}
	return fmt.Errorf("failed to create %s: %w", what, err)
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
