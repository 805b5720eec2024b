package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"adbuilder/internal/models"
	"adbuilder/internal/repository"
)

type mockCampaignLister struct {
	filter repository.CampaignFilter
	list   []*models.Campaign
	err    error
}

func (m *mockCampaignLister) ListCampaigns(_ context.Context, filter repository.CampaignFilter) ([]*models.Campaign, error) {
	m.filter = filter
	return m.list, m.err
}

func TestListCampaignsScopesToTenant(t *testing.T) {
	repo := &mockCampaignLister{}
	h := NewCampaignHandler(repo, staticTenant("adv-1"), nil)

	req := httptest.NewRequest(http.MethodGet, "/campaigns?status=draft&limit=5&offset=10", nil)
	w := httptest.NewRecorder()
	h.ListCampaigns(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected application/json got %q", ct)
	}
	want := repository.CampaignFilter{TenantID: "adv-1", Status: "draft", Limit: 5, Offset: 10}
	if repo.filter != want {
		t.Fatalf("unexpected filter %+v", repo.filter)
	}
	var resp []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp == nil || len(resp) != 0 {
		t.Fatalf("expected empty array, got %s", w.Body.String())
	}
}

func TestListCampaignsErrors(t *testing.T) {
	tests := []struct {
		name    string
		tenants staticTenant
		query   string
		repoErr error
		want    int
	}{
		{"no tenant", "", "", nil, http.StatusForbidden},
		{"bad limit", "adv-1", "?limit=0", nil, http.StatusBadRequest},
		{"bad offset", "adv-1", "?offset=-1", nil, http.StatusBadRequest},
		{"db failure", "adv-1", "", errors.New("down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCampaignHandler(&mockCampaignLister{err: tt.repoErr}, tt.tenants, nil)
			w := httptest.NewRecorder()
			h.ListCampaigns(w, httptest.NewRequest(http.MethodGet, "/campaigns"+tt.query, nil))
			if w.Code != tt.want {
				t.Fatalf("expected %d got %d", tt.want, w.Code)
			}
			var resp map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp["error"] == nil {
				t.Fatalf("expected error body, got %s", w.Body.String())
			}
		})
	}
}
