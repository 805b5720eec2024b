package routes

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"

	"adbuilder/internal/config"
	"adbuilder/internal/handlers"
	"adbuilder/internal/metrics"
	"adbuilder/internal/middleware"
	"adbuilder/internal/models"
	"adbuilder/internal/repository"
	"adbuilder/internal/session"
)

type healthResp struct {
	Status string `json:"status"`
	DB     struct {
		Status string `json:"status"`
		Error  string `json:"error,omitempty"`
	} `json:"db"`
}

type claimTenant struct{}

func (claimTenant) ResolveTenant(ctx context.Context) (string, error) {
	return middleware.TenantID(ctx), nil
}

type emptyLister struct{}

func (emptyLister) ListCampaigns(context.Context, repository.CampaignFilter) ([]*models.Campaign, error) {
	return nil, nil
}

const testSecret = "dev"

func newRouter(t *testing.T, db *sql.DB) http.Handler {
	t.Helper()
	reg := prometheus.NewRegistry()
	builderHandler := handlers.NewBuilderHandler(handlers.BuilderDeps{
		Sessions: session.NewRegistry(nil, nil),
		Tenants:  claimTenant{},
		Metrics:  metrics.New(reg),
	})
	return SetupRoutes(Deps{
		DB:        db,
		Config:    &config.Config{JWTSecret: testSecret, CORSOrigins: []string{"*"}},
		Builder:   builderHandler,
		Campaigns: handlers.NewCampaignHandler(emptyLister{}, claimTenant{}, nil),
		Gatherer:  reg,
	})
}

func bearer(t *testing.T, sub, tenant string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":       sub,
		"tenant_id": tenant,
		"exp":       time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + s
}

func TestRootReturnsJSON(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	r := newRouter(t, db)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected application/json, got %q", ct)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["message"] == "" {
		t.Fatalf("expected message, got %v", body)
	}
}

func TestHealthDBOK(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectPing()

	r := newRouter(t, db)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	var resp healthResp
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.DB.Status != "ok" {
		t.Fatalf("expected db ok, got %+v", resp)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestHealthDBDown(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectPing().WillReturnError(sql.ErrConnDone)

	r := newRouter(t, db)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d (%s)", w.Code, w.Body.String())
	}
	var resp healthResp
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.DB.Status != "down" {
		t.Fatalf("expected db down, got %+v", resp)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAPIRequiresToken(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	r := newRouter(t, db)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/builder/sessions", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestCreateSessionThenFetchIt(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()
	r := newRouter(t, db)
	auth := bearer(t, "user-1", "adv-1")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/builder/sessions", nil)
	req.Header.Set("Authorization", auth)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	var created struct {
		ID       string `json:"id"`
		TenantID string `json:"tenant_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if created.ID == "" || created.TenantID != "adv-1" {
		t.Fatalf("unexpected session %+v", created)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/builder/sessions/"+created.ID, nil)
	req.Header.Set("Authorization", auth)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}

	// Another user cannot see it.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/builder/sessions/"+created.ID, nil)
	req.Header.Set("Authorization", bearer(t, "user-2", "adv-1"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for another user, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()
	r := newRouter(t, db)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "adbuilder_queue_distributions_total") {
		t.Fatalf("builder metrics not exposed:\n%s", w.Body.String())
	}
}
