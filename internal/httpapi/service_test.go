package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"providerhub-backend/internal/logging"
	"providerhub-backend/internal/model"
	"providerhub-backend/internal/search"
	"providerhub-backend/internal/store"
)

func newTestService(t *testing.T) (*Service, *mux.Router) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "catalog.json"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	svc := &Service{
		Store:         st,
		Engine:        search.New(search.DefaultThreshold),
		Log:           logging.Nop(),
		RejectionsDir: t.TempDir(),
	}
	r := mux.NewRouter()
	svc.RegisterRoutes(r)
	return svc, r
}

func doJSON(t *testing.T, r *mux.Router, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, rec.Body.String())
	}
	return env
}

func TestAuthRequired(t *testing.T) {
	t.Parallel()

	_, r := newTestService(t)
	rec := doJSON(t, r, http.MethodGet, "/api/service-categories", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/service-categories", nil)
	req.Header.Set("Authorization", "Bearer dev-token")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("dev token: status = %d, want 200", rec.Code)
	}
}

func TestProfileLifecycle(t *testing.T) {
	t.Parallel()

	_, r := newTestService(t)

	create := map[string]any{
		"provider_type":    "individual",
		"display_name":     "Ada",
		"location_country": "Nigeria",
		"location_city":    "Ikeja",
		"address":          map[string]any{"raw_address": "12B Marina Street, Lagos City LA Nigeria"},
	}

	rec := doJSON(t, r, http.MethodPost, "/api/provider/profile", "u1", create)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body %s", rec.Code, rec.Body.String())
	}

	t.Run("duplicate rejected", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/provider/profile", "u1", create)
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", rec.Code)
		}
	})

	t.Run("missing required field rejected", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/provider/profile", "u2", map[string]any{
			"provider_type": "individual",
		})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("fetch includes parsed address", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/api/provider/profile/me", "u1", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var resp struct {
			DisplayName string          `json:"display_name"`
			Addresses   []model.Address `json:"addresses"`
		}
		if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.DisplayName != "Ada" {
			t.Fatalf("DisplayName = %q", resp.DisplayName)
		}
		if len(resp.Addresses) != 1 || resp.Addresses[0].Country != "Nigeria" {
			t.Fatalf("address not saved and parsed: %+v", resp.Addresses)
		}
	})
}

func TestListingCreationAndSearch(t *testing.T) {
	t.Parallel()

	svc, r := newTestService(t)
	if err := svc.Store.InsertCategory(model.Category{ID: "cat-clean", Name: "Cleaning", IsActive: true}); err != nil {
		t.Fatalf("seed category: %v", err)
	}

	rec := doJSON(t, r, http.MethodPost, "/api/provider/profile", "u1", map[string]any{
		"provider_type":    "individual",
		"display_name":     "Ada",
		"location_country": "Nigeria",
		"location_state":   "Lagos",
		"location_city":    "Ikeja",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("profile: status = %d, body %s", rec.Code, rec.Body.String())
	}

	t.Run("listing requires a profile", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/provider/services", "nobody", map[string]any{
			"category_id":    "cat-clean",
			"service_mode":   "physical",
			"coverage_scope": "local",
			"pricing_model":  "hourly",
		})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	rec = doJSON(t, r, http.MethodPost, "/api/provider/services", "u1", map[string]any{
		"category_id":       "cat-clean",
		"raw_service_input": "Deep Cleaning for offices",
		"service_name":      "Deep Cleaning",
		"service_mode":      "physical",
		"coverage_scope":    "local",
		"pricing_model":     "hourly",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("listing: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created model.ServiceListing
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &created); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if !created.IsPrimary {
		t.Fatal("first listing should default to primary")
	}
	if created.NormalizedServiceName != "deep cleaning" {
		t.Fatalf("NormalizedServiceName = %q", created.NormalizedServiceName)
	}
	if created.SuggestedCategoryID == nil || *created.SuggestedCategoryID != "cat-clean" {
		t.Fatalf("SuggestedCategoryID = %v, want cat-clean hint", created.SuggestedCategoryID)
	}

	t.Run("unknown category rejected", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/provider/services", "u1", map[string]any{
			"category_id":    "cat-ghost",
			"service_mode":   "physical",
			"coverage_scope": "local",
			"pricing_model":  "hourly",
		})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("search finds the listing", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/api/services/search?q=cleaning&location_city=Ikeja", "u2", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var data struct {
			Results []search.Result `json:"results"`
			Count   int             `json:"count"`
		}
		if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &data); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if data.Count != 1 || len(data.Results) != 1 {
			t.Fatalf("count = %d, want 1", data.Count)
		}
		got := data.Results[0]
		if got.ID != created.ID {
			t.Fatalf("result id = %q, want %q", got.ID, created.ID)
		}
		if got.FinalScore <= 0 {
			t.Fatalf("FinalScore = %v, want > 0", got.FinalScore)
		}
		if got.Provider.DisplayName != "Ada" {
			t.Fatalf("result provider = %+v", got.Provider)
		}
	})

	t.Run("search without filters rejected", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/api/services/search", "u2", nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}

func TestListingUpdateOwnership(t *testing.T) {
	t.Parallel()

	svc, r := newTestService(t)
	if err := svc.Store.InsertCategory(model.Category{ID: "cat-clean", Name: "Cleaning", IsActive: true}); err != nil {
		t.Fatalf("seed category: %v", err)
	}
	for _, u := range []string{"owner", "intruder"} {
		rec := doJSON(t, r, http.MethodPost, "/api/provider/profile", u, map[string]any{
			"provider_type":    "individual",
			"display_name":     "P " + u,
			"location_country": "Nigeria",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("profile %s: %d", u, rec.Code)
		}
	}
	rec := doJSON(t, r, http.MethodPost, "/api/provider/services", "owner", map[string]any{
		"category_id":    "cat-clean",
		"service_name":   "Cleaning",
		"service_mode":   "physical",
		"coverage_scope": "local",
		"pricing_model":  "hourly",
	})
	var created model.ServiceListing
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &created); err != nil {
		t.Fatalf("decode listing: %v", err)
	}

	t.Run("foreign listing forbidden", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPut, "/api/provider/services/"+created.ID, "intruder", map[string]any{
			"service_name": "stolen",
		})
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("empty update rejected", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPut, "/api/provider/services/"+created.ID, "owner", map[string]any{})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("owner can update", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPut, "/api/provider/services/"+created.ID, "owner", map[string]any{
			"service_name": "Premium Cleaning",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
	})
}

func TestCatalogImport(t *testing.T) {
	t.Parallel()

	_, r := newTestService(t)
	body := map[string]any{
		"source": "partner-feed",
		"providers": []map[string]any{
			{
				"profile": map[string]any{
					"id":               "imp-p1",
					"display_name":     "Imported Cleaner",
					"location_country": "Nigeria",
					"is_active":        true,
				},
				"listings": []map[string]any{
					{
						"id":             "imp-l1",
						"category_id":    "cat-clean",
						"service_mode":   "physical",
						"coverage_scope": "local",
						"is_active":      true,
					},
					{
						"id":           "imp-l2",
						"category_id":  "cat-clean",
						"service_mode": "teleport", // invalid
					},
				},
			},
			{
				"profile": map[string]any{
					"id": "imp-p2", // no display name, whole provider rejected
				},
			},
		},
	}

	rec := doJSON(t, r, http.MethodPost, "/api/catalog/import", "importer", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var stats struct {
		Providers int `json:"providers"`
		Listings  int `json:"listings"`
		Rejected  int `json:"rejected"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Providers != 1 || stats.Listings != 1 || stats.Rejected != 2 {
		t.Fatalf("stats = %+v, want 1 provider, 1 listing, 2 rejections", stats)
	}

	t.Run("missing source rejected", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/catalog/import", "importer", map[string]any{
			"providers": []map[string]any{},
		})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}

func TestDashboard(t *testing.T) {
	t.Parallel()

	svc, r := newTestService(t)
	if err := svc.Store.InsertCategory(model.Category{ID: "cat-clean", Name: "Cleaning", IsActive: true}); err != nil {
		t.Fatalf("seed category: %v", err)
	}
	rec := doJSON(t, r, http.MethodPost, "/api/provider/profile", "u1", map[string]any{
		"provider_type":    "individual",
		"display_name":     "Ada",
		"location_country": "Nigeria",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("profile: %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodGet, "/api/provider/dashboard", "u1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var dash struct {
		ProfileCompletion int      `json:"profile_completion"`
		MissingFields     []string `json:"missing_fields"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &dash); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dash.ProfileCompletion != 0 {
		t.Fatalf("ProfileCompletion = %d, want 0 for a bare profile", dash.ProfileCompletion)
	}
	if len(dash.MissingFields) != 4 {
		t.Fatalf("MissingFields = %v, want all four steps missing", dash.MissingFields)
	}
	if !strings.Contains(strings.Join(dash.MissingFields, ","), "address") {
		t.Fatalf("address step missing from %v", dash.MissingFields)
	}
}
