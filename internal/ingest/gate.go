// Package ingest validates bulk catalog imports before they reach the
// store. Provider-level failures discard the whole provider; listing-level
// failures discard only that listing.
package ingest

import (
	"context"
	"sync"

	"providerhub-backend/internal/bloom"
	"providerhub-backend/internal/model"
)

// Rejection records a rejected scope (provider or listing) with reason.
type Rejection struct {
	Scope  string `json:"scope"`  // e.g. "provider:prov-1" or "listing:prov-1:svc-9"
	Reason string `json:"reason"` // e.g. "profile.display_name missing"
}

// ValidateProvider checks the provider-level invariants of an imported
// profile.
func ValidateProvider(p model.Provider) (valid bool, reason string) {
	if p.ID == "" {
		return false, "profile.id missing"
	}
	if p.DisplayName == "" {
		return false, "profile.display_name missing"
	}
	if p.LocationCountry == "" {
		return false, "profile.location_country missing"
	}
	return true, ""
}

// ValidateListing checks one imported listing. An invalid listing is
// dropped without failing its provider.
func ValidateListing(l model.ServiceListing) (valid bool, reason string) {
	if l.ID == "" {
		return false, "listing.id missing"
	}
	if l.CategoryID == "" {
		return false, "listing.category_id missing"
	}
	switch l.ServiceMode {
	case model.ModePhysical, model.ModeRemote, model.ModeHybrid:
	default:
		return false, "listing.service_mode invalid"
	}
	switch l.CoverageScope {
	case model.CoverageLocal, model.CoverageNational, model.CoverageGlobal:
	default:
		return false, "listing.coverage_scope invalid"
	}
	return true, ""
}

type providerResult struct {
	provider   model.ImportedProvider
	valid      bool
	rejections []Rejection
}

// ProcessImport validates all providers and their listings, fanning
// provider work out across workers so large imports complete quickly.
func ProcessImport(ctx context.Context, imp *model.CatalogImport) (accepted []model.ImportedProvider, rejections []Rejection) {
	accepted = []model.ImportedProvider{}
	rejections = []Rejection{}

	providers := imp.Providers
	if len(providers) == 0 {
		return accepted, rejections
	}

	workers := 16
	if len(providers) < workers {
		workers = len(providers)
	}

	jobs := make(chan model.ImportedProvider, len(providers))
	results := make(chan providerResult, len(providers))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				results <- processProvider(ctx, p)
			}
		}()
	}

	go func() {
		for _, p := range providers {
			jobs <- p
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		if res.valid {
			accepted = append(accepted, res.provider)
		}
		rejections = append(rejections, res.rejections...)
	}
	return accepted, rejections
}

func processProvider(ctx context.Context, p model.ImportedProvider) providerResult {
	if ok, reason := ValidateProvider(p.Profile); !ok {
		return providerResult{
			provider: p,
			rejections: []Rejection{{
				Scope:  "provider:" + p.Profile.ID,
				Reason: reason,
			}},
		}
	}

	_ = bloom.SeenProvider(ctx, p.Profile.LocationCountry+":"+p.Profile.ID)

	var kept []model.ServiceListing
	var rejections []Rejection
	for _, l := range p.Listings {
		if ok, reason := ValidateListing(l); !ok {
			rejections = append(rejections, Rejection{
				Scope:  "listing:" + p.Profile.ID + ":" + l.ID,
				Reason: reason,
			})
			continue
		}
		// Duplicates were already committed by an earlier import; skip
		// without rejecting.
		if bloom.SeenListing(ctx, p.Profile.ID+":"+l.ID) {
			continue
		}
		l.ProviderID = p.Profile.ID
		kept = append(kept, l)
	}

	p.Listings = kept
	return providerResult{provider: p, valid: true, rejections: rejections}
}
