package httpapi

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"providerhub-backend/internal/ingest"
	"providerhub-backend/internal/kstream"
	"providerhub-backend/internal/model"
	"providerhub-backend/internal/moderation"
)

// importHandler accepts a bulk catalog import, gates it inline and commits
// the survivors so the caller gets authoritative counts. The raw envelope
// is also replayed to the ingest topic for downstream consumers.
func (s *Service) importHandler(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var body io.Reader = r.Body
	if r.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid gzip body")
			return
		}
		defer gz.Close()
		body = gz
	}

	var imp model.CatalogImport
	if err := json.NewDecoder(body).Decode(&imp); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(imp); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	// Suspended providers drop out before validation so their listings
	// never count as rejections.
	imp.Providers = s.filterSuspended(r, imp.Providers)

	if s.Broker != "" {
		if err := kstream.PublishCatalogImport(r.Context(), s.Broker, &imp); err != nil {
			s.Log.Warn("publish catalog import", "source", imp.Source, "err", err)
		}
	}

	accepted, rejections := ingest.ProcessImport(r.Context(), &imp)
	for _, rej := range rejections {
		if err := ingest.WriteRejection(s.RejectionsDir, imp.Source, rej); err != nil {
			s.Log.Error("write rejection", "source", imp.Source, "err", err)
		}
	}

	events, err := ingest.Accept(s.Store, accepted)
	if err != nil {
		s.Log.Error("commit import", "source", imp.Source, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to commit import")
		return
	}
	if s.Broker != "" {
		for _, evt := range events {
			if err := kstream.PublishListingAccepted(r.Context(), s.Broker, evt); err != nil {
				s.Log.Warn("publish listing accepted", "listing_id", evt.ListingID, "err", err)
			}
		}
	}

	s.Log.Info("catalog import",
		"source", imp.Source,
		"providers", len(accepted),
		"listings", len(events),
		"rejected", len(rejections),
		"took_ms", time.Since(started).Milliseconds())

	writeCompressed(w, r, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"providers":   len(accepted),
			"listings":    len(events),
			"rejected":    len(rejections),
			"duration_ms": time.Since(started).Milliseconds(),
		},
	})
}

func (s *Service) filterSuspended(r *http.Request, providers []model.ImportedProvider) []model.ImportedProvider {
	if s.Moderation == nil {
		return providers
	}
	kept := providers[:0]
	for _, p := range providers {
		status, err := s.Moderation.Check(r.Context(), p.Profile.ID)
		if err != nil {
			s.Log.Warn("moderation check", "provider_id", p.Profile.ID, "err", err)
		}
		if status == moderation.StatusSuspended {
			s.Log.Info("suspended provider skipped", "provider_id", p.Profile.ID)
			continue
		}
		kept = append(kept, p)
	}
	return kept
}
