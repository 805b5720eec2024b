package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"adbuilder/internal/middleware"
	"adbuilder/internal/models"
)

var (
	ErrUnauthenticated = errors.New("no authenticated user")
	ErrNoAdvertiser    = errors.New("no advertiser for user")
)

// TenantResolver maps the authenticated user to their advertiser.
type TenantResolver struct {
	db *sql.DB
}

func NewTenantResolver(db *sql.DB) *TenantResolver {
	return &TenantResolver{db: db}
}

// ResolveTenant prefers the token's tenant_id claim and otherwise uses the
// oldest advertiser the user created.
func (r *TenantResolver) ResolveTenant(ctx context.Context) (string, error) {
	if tenantID := middleware.TenantID(ctx); tenantID != "" {
		return tenantID, nil
	}
	userID := middleware.UserID(ctx)
	if userID == "" {
		return "", ErrUnauthenticated
	}
	adv, err := r.AdvertiserForUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return adv.ID, nil
}

func (r *TenantResolver) AdvertiserForUser(ctx context.Context, userID string) (*models.Advertiser, error) {
	query := `
		SELECT id, name, email, created_by, created_at, updated_at
		FROM advertisers
		WHERE created_by = $1
		ORDER BY created_at
		LIMIT 1
	`

	var adv models.Advertiser
	var email, createdBy sql.NullString
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&adv.ID,
		&adv.Name,
		&email,
		&createdBy,
		&adv.CreatedAt,
		&adv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w %s", ErrNoAdvertiser, userID)
		}
		return nil, fmt.Errorf("failed to get advertiser: %w", err)
	}
	adv.Email = email.String
	adv.CreatedBy = createdBy.String
	return &adv, nil
}
