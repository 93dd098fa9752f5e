package ingest

import (
	"time"

	"providerhub-backend/internal/model"
	"providerhub-backend/internal/store"
)

// Accept commits gated providers and listings to the catalog store and
// returns one ListingAccepted event per committed listing. A provider that
// fails to persist is skipped so the rest of the batch still lands.
func Accept(st *store.Store, providers []model.ImportedProvider) ([]model.ListingAccepted, error) {
	events := []model.ListingAccepted{}
	tC := time.Now().UTC().Format(time.RFC3339Nano)

	for _, p := range providers {
		profile := p.Profile
		if profile.VerificationLevel == "" {
			profile.VerificationLevel = model.VerificationNone
		}
		if profile.CreatedAt == "" {
			profile.CreatedAt = tC
		}
		if _, exists := st.ProviderByID(profile.ID); !exists {
			if err := st.InsertProvider(profile); err != nil {
				continue
			}
		}

		for _, l := range p.Listings {
			if l.CreatedAt == "" {
				l.CreatedAt = tC
			}
			if _, exists := st.ListingByID(l.ID); exists {
				continue
			}
			if err := st.InsertListing(l); err != nil {
				continue
			}
			events = append(events, model.ListingAccepted{
				ListingID:  l.ID,
				ProviderID: profile.ID,
				Country:    profile.LocationCountry,
				City:       profile.LocationCity,
				CategoryID: l.CategoryID,
				Timestamp:  tC,
			})
		}
	}

	return events, nil
}
