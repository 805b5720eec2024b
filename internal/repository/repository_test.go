package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"adbuilder/internal/interfaces"
	"adbuilder/internal/middleware"
	"adbuilder/internal/models"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestCreateCampaignAssignsIDAndTimestamps(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRecordRepository(db)
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO campaigns").
		WithArgs(sqlmock.AnyArg(), "adv-1", "Spring", "sales", models.CampaignStatusDraft, 100.0, "Everyone").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	c := &models.Campaign{TenantID: "adv-1", Name: "Spring", Objective: "sales", Budget: 100, Audience: "Everyone"}
	if err := repo.CreateCampaign(context.Background(), c); err != nil {
		t.Fatalf("CreateCampaign() error = %v", err)
	}
	if c.ID == "" || !c.CreatedAt.Equal(now) {
		t.Fatalf("expected id and created_at set, got %+v", c)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateCampaignRejectsInvalidPayloadWithoutQuery(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRecordRepository(db)

	err := repo.CreateCampaign(context.Background(), &models.Campaign{Name: "No tenant", Objective: "sales"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected query: %v", err)
	}
}

func TestCreateAdSetForeignKeyViolation(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRecordRepository(db)

	mock.ExpectQuery("INSERT INTO ad_sets").
		WillReturnError(&pq.Error{Code: "23503", Constraint: "ad_sets_campaign_id_fkey"})

	err := repo.CreateAdSet(context.Background(), &models.AdSet{CampaignID: "missing", Name: "Default"})
	if !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}
}

func TestCreateAssetStoresTagsAndDimensions(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRecordRepository(db)
	w, h := 1080, 1350

	mock.ExpectQuery("INSERT INTO assets").
		WithArgs(sqlmock.AnyArg(), "adv-1", "drive-1", "a.png", models.AssetTypeImage, "https://cdn.example/a.png",
			pq.Array([]string{"summer"}), sql.NullInt64{Int64: 1080, Valid: true}, sql.NullInt64{Int64: 1350, Valid: true}, "", "", "").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	a := &models.Asset{TenantID: "adv-1", SourceID: "drive-1", Name: "a.png", Type: models.AssetTypeImage,
		URL: "https://cdn.example/a.png", Tags: []string{"summer"}, Width: &w, Height: &h}
	if err := repo.CreateAsset(context.Background(), a); err != nil {
		t.Fatalf("CreateAsset() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateAdVariantDefaultsToPending(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRecordRepository(db)

	mock.ExpectQuery("INSERT INTO ad_variants").
		WithArgs(sqlmock.AnyArg(), "c1", "s1", "a1", "Hi", "Body", "Learn More", models.AdVariantStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	v := &models.AdVariant{CampaignID: "c1", AdSetID: "s1", AssetID: "a1", Headline: "Hi", PrimaryText: "Body", CTA: "Learn More"}
	if err := repo.CreateAdVariant(context.Background(), v); err != nil {
		t.Fatalf("CreateAdVariant() error = %v", err)
	}
	if v.Status != models.AdVariantStatusPending {
		t.Fatalf("expected pending, got %q", v.Status)
	}
}

func TestDeleteRecord(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRecordRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM ad_variants WHERE id = $1")).
		WithArgs("v1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM campaigns WHERE id = $1")).
		WithArgs("c1").WillReturnError(&pq.Error{Code: "23503", Constraint: "ad_sets_campaign_id_fkey"})
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM assets WHERE id = $1")).
		WithArgs("gone").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.DeleteRecord(context.Background(), interfaces.EntityAdVariant, "v1"); err != nil {
		t.Fatalf("DeleteRecord() error = %v", err)
	}

	err := repo.DeleteRecord(context.Background(), interfaces.EntityCampaign, "c1")
	var blocked *interfaces.DeletionBlockedError
	if !errors.As(err, &blocked) || blocked.Constraint != "ad_sets_campaign_id_fkey" {
		t.Fatalf("expected DeletionBlockedError, got %v", err)
	}

	if err := repo.DeleteRecord(context.Background(), interfaces.EntityAsset, "gone"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
	if err := repo.DeleteRecord(context.Background(), "creative", "x"); err == nil {
		t.Fatalf("expected error for unknown entity")
	}
}

func TestListCampaignsBuildsFilter(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRecordRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("AND tenant_id = $1 AND status = $2 ORDER BY created_at DESC LIMIT $3")).
		WithArgs("adv-1", "draft", 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name", "objective", "status", "budget", "audience", "created_at", "updated_at"}).
			AddRow("c1", "adv-1", "Spring", "sales", "draft", 100.0, "Everyone", now, now))

	got, err := repo.ListCampaigns(context.Background(), CampaignFilter{TenantID: "adv-1", Status: "draft", Limit: 10})
	if err != nil {
		t.Fatalf("ListCampaigns() error = %v", err)
	}
	if len(got) != 1 || got[0].Name != "Spring" {
		t.Fatalf("unexpected campaigns %+v", got)
	}
}

func TestResolveTenantPrefersClaim(t *testing.T) {
	db, mock := newMock(t)
	r := NewTenantResolver(db)

	ctx := middleware.WithIdentity(context.Background(), "user-1", "a@b.c", "adv-claim")
	got, err := r.ResolveTenant(ctx)
	if err != nil || got != "adv-claim" {
		t.Fatalf("ResolveTenant() = %q, %v", got, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected query: %v", err)
	}
}

func TestResolveTenantLooksUpAdvertiser(t *testing.T) {
	db, mock := newMock(t)
	r := NewTenantResolver(db)
	now := time.Now()

	mock.ExpectQuery("FROM advertisers").WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "created_by", "created_at", "updated_at"}).
			AddRow("adv-1", "Acme", nil, "user-1", now, now))
	mock.ExpectQuery("FROM advertisers").WithArgs("user-2").WillReturnError(sql.ErrNoRows)

	got, err := r.ResolveTenant(middleware.WithIdentity(context.Background(), "user-1", "", ""))
	if err != nil || got != "adv-1" {
		t.Fatalf("ResolveTenant() = %q, %v", got, err)
	}
	if _, err := r.ResolveTenant(middleware.WithIdentity(context.Background(), "user-2", "", "")); !errors.Is(err, ErrNoAdvertiser) {
		t.Fatalf("expected ErrNoAdvertiser, got %v", err)
	}
	if _, err := r.ResolveTenant(context.Background()); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestListTemplatesDecodesAudience(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTemplateRepository(db)

	mock.ExpectQuery("FROM campaign_templates").WithArgs("adv-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name", "description", "default_objective", "default_budget", "default_audience", "created_at"}).
			AddRow("t1", "adv-1", "Holiday", nil, "conversions", 50.0, []byte(`{"locations":["US"],"ageRange":{"min":18,"max":35},"interests":[]}`), time.Now()).
			AddRow("t2", "adv-1", "Bare", nil, nil, nil, nil, time.Now()))

	got, err := repo.ListTemplates(context.Background(), "adv-1")
	if err != nil {
		t.Fatalf("ListTemplates() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(got))
	}
	if got[0].DefaultBudget == nil || *got[0].DefaultBudget != 50 || got[0].DefaultAudience.AgeRange.Max != 35 {
		t.Fatalf("unexpected first template %+v", got[0])
	}
	if got[1].DefaultBudget != nil || got[1].DefaultAudience != nil {
		t.Fatalf("expected unset defaults, got %+v", got[1])
	}
}
