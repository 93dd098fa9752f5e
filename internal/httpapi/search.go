package httpapi

import (
	"compress/gzip"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"providerhub-backend/internal/model"
)

func (s *Service) searchHandler(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()

	q := model.SearchQuery{
		Q:             strings.TrimSpace(qs.Get("q")),
		CategoryID:    qs.Get("category_id"),
		SubcategoryID: qs.Get("subcategory_id"),
		ServiceMode:   model.ServiceMode(qs.Get("service_mode")),
		CoverageScope: model.CoverageScope(qs.Get("coverage_scope")),
	}
	if !q.HasFilter() {
		writeError(w, http.StatusBadRequest, "At least one of q, category_id, subcategory_id is required")
		return
	}

	loc := model.Location{
		Country: qs.Get("location_country"),
		State:   qs.Get("location_state"),
		City:    qs.Get("location_city"),
	}
	if !loc.IsZero() {
		q.Location = loc
		q.ExplicitLocation = true
	} else {
		q.Location = s.callerLocation(r)
	}

	started := time.Now()
	results := s.Engine.Search(s.Store.Snapshot(), q)
	s.Log.Debug("search",
		"q", q.Q, "category_id", q.CategoryID,
		"explicit_location", q.ExplicitLocation,
		"results", len(results), "took_ms", time.Since(started).Milliseconds())

	writeCompressed(w, r, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"results": results,
			"count":   len(results),
		},
	})
}

// callerLocation derives an implicit location from the caller's own
// provider profile, falling back to gateway-set headers.
func (s *Service) callerLocation(r *http.Request) model.Location {
	if profile, ok := s.Store.ProviderByUserID(userID(r)); ok {
		loc := model.Location{
			Country: profile.LocationCountry,
			State:   profile.LocationState,
			City:    profile.LocationCity,
		}
		if !loc.IsZero() {
			return loc
		}
	}
	return model.Location{
		Country: r.Header.Get("X-User-Country"),
		State:   r.Header.Get("X-User-State"),
		City:    r.Header.Get("X-User-City"),
	}
}

// writeCompressed gzips the JSON body when the client accepts it. Search
// payloads carry full score breakdowns and compress well.
func writeCompressed(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
		return
	}
	w.Header().Set("Content-Encoding", "gzip")
	w.WriteHeader(status)
	gz := gzip.NewWriter(w)
	defer gz.Close()
	_ = json.NewEncoder(gz).Encode(body)
}
