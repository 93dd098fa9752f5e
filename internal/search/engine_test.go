package search

import (
	"fmt"
	"testing"

	"providerhub-backend/internal/model"
)

// memSnapshot is an in-memory catalog view for engine tests.
type memSnapshot struct {
	providers  []model.Provider
	listings   []model.ServiceListing
	categories []model.Category
	settings   map[string][]model.ServiceSetting
}

func (m *memSnapshot) Providers() []model.Provider      { return m.providers }
func (m *memSnapshot) Listings() []model.ServiceListing { return m.listings }
func (m *memSnapshot) Categories() []model.Category     { return m.categories }
func (m *memSnapshot) ListingSettings(id string) []model.ServiceSetting {
	return m.settings[id]
}

func provider(id, country, state, city string) model.Provider {
	return model.Provider{
		ID:              id,
		DisplayName:     "Provider " + id,
		LocationCountry: country,
		LocationState:   state,
		LocationCity:    city,
		IsActive:        true,
	}
}

func listing(id, providerID string, mode model.ServiceMode, scope model.CoverageScope) model.ServiceListing {
	return model.ServiceListing{
		ID:            id,
		ProviderID:    providerID,
		CategoryID:    "cat-clean",
		ServiceName:   "cleaning service " + id,
		ServiceMode:   mode,
		CoverageScope: scope,
		IsActive:      true,
	}
}

func lagosQuery() model.SearchQuery {
	return model.SearchQuery{
		CategoryID: "cat-clean",
		Location:   model.Location{Country: "Nigeria", State: "Lagos", City: "Ikeja"},
	}
}

func TestSearchTierOrdering(t *testing.T) {
	t.Parallel()

	// Local physical, in-country remote, and a foreign global provider.
	snap := &memSnapshot{
		providers: []model.Provider{
			provider("p-local", "Nigeria", "Lagos", "Ikeja"),
			provider("p-remote", "Nigeria", "Abuja", "Abuja"),
			provider("p-foreign", "Kenya", "Nairobi", "Nairobi"),
		},
		listings: []model.ServiceListing{
			listing("l-local", "p-local", model.ModePhysical, model.CoverageLocal),
			listing("l-remote", "p-remote", model.ModeRemote, model.CoverageNational),
			listing("l-foreign", "p-foreign", model.ModeRemote, model.CoverageGlobal),
		},
	}

	results := New(DefaultThreshold).Search(snap, lagosQuery())
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].ID != "l-local" {
		t.Fatalf("first result = %q, want the same-city physical listing", results[0].ID)
	}
	if results[len(results)-1].ID != "l-foreign" {
		t.Fatalf("last result = %q, want the foreign listing", results[len(results)-1].ID)
	}
	for i := 1; i < len(results); i++ {
		if results[i].FinalScore > results[i-1].FinalScore {
			t.Fatalf("results not sorted by score at %d: %v > %v", i, results[i].FinalScore, results[i-1].FinalScore)
		}
	}
}

func TestSearchThresholdExpansion(t *testing.T) {
	t.Parallel()

	// 2 local listings, 10 broad ones. Below the threshold the union must
	// expand; at threshold 2 it must stop at the local tier.
	snap := &memSnapshot{
		providers: []model.Provider{
			provider("p-local", "Nigeria", "Lagos", "Ikeja"),
			provider("p-far", "Kenya", "Nairobi", "Nairobi"),
		},
	}
	snap.listings = append(snap.listings,
		listing("local-1", "p-local", model.ModePhysical, model.CoverageLocal),
		listing("local-2", "p-local", model.ModeHybrid, model.CoverageLocal),
	)
	for i := 0; i < 10; i++ {
		snap.listings = append(snap.listings,
			listing(fmt.Sprintf("broad-%d", i), "p-far", model.ModeRemote, model.CoverageGlobal))
	}

	t.Run("expands when under threshold", func(t *testing.T) {
		t.Parallel()
		results := New(5).Search(snap, lagosQuery())
		if len(results) != 12 {
			t.Fatalf("got %d results, want all 12 after expansion", len(results))
		}
	})

	t.Run("stops when satisfied", func(t *testing.T) {
		t.Parallel()
		results := New(2).Search(snap, lagosQuery())
		if len(results) != 2 {
			t.Fatalf("got %d results, want only the 2 local ones", len(results))
		}
		for _, r := range results {
			if r.Provider.ID != "p-local" {
				t.Fatalf("non-local listing %q leaked into a satisfied tier", r.ID)
			}
		}
	})
}

func TestSearchExplicitLocation(t *testing.T) {
	t.Parallel()

	snap := &memSnapshot{
		providers: []model.Provider{
			provider("p-ikeja", "Nigeria", "Lagos", "Ikeja"),
			provider("p-abuja", "Nigeria", "FCT", "Abuja"),
		},
		listings: []model.ServiceListing{
			listing("l-ikeja", "p-ikeja", model.ModePhysical, model.CoverageLocal),
			listing("l-abuja", "p-abuja", model.ModePhysical, model.CoverageLocal),
		},
	}

	t.Run("hard restricts to the named city", func(t *testing.T) {
		t.Parallel()
		q := model.SearchQuery{
			CategoryID:       "cat-clean",
			Location:         model.Location{City: "Abuja"},
			ExplicitLocation: true,
		}
		results := New(DefaultThreshold).Search(snap, q)
		if len(results) != 1 || results[0].ID != "l-abuja" {
			t.Fatalf("got %v, want exactly l-abuja", resultIDs(results))
		}
	})

	t.Run("no fallback when nothing matches", func(t *testing.T) {
		t.Parallel()
		q := model.SearchQuery{
			CategoryID:       "cat-clean",
			Location:         model.Location{City: "Kano"},
			ExplicitLocation: true,
		}
		if results := New(DefaultThreshold).Search(snap, q); len(results) != 0 {
			t.Fatalf("explicit miss must not expand, got %v", resultIDs(results))
		}
	})
}

func TestSearchNoLocation(t *testing.T) {
	t.Parallel()

	snap := &memSnapshot{
		providers: []model.Provider{provider("p1", "Nigeria", "Lagos", "Ikeja")},
		listings: []model.ServiceListing{
			listing("l-localphys", "p1", model.ModePhysical, model.CoverageLocal),
			listing("l-national", "p1", model.ModePhysical, model.CoverageNational),
			listing("l-remote", "p1", model.ModeRemote, model.CoverageLocal),
		},
	}

	q := model.SearchQuery{CategoryID: "cat-clean"}
	results := New(DefaultThreshold).Search(snap, q)
	ids := resultIDs(results)
	if len(ids) != 2 {
		t.Fatalf("got %v, want the national and remote listings only", ids)
	}
	for _, id := range ids {
		if id == "l-localphys" {
			t.Fatal("local physical listing must not match a locationless query")
		}
	}
}

func TestSearchMandatoryFilters(t *testing.T) {
	t.Parallel()

	inactiveProv := provider("p-off", "Nigeria", "Lagos", "Ikeja")
	inactiveProv.IsActive = false

	inactiveListing := listing("l-off", "p-on", model.ModePhysical, model.CoverageLocal)
	inactiveListing.IsActive = false

	snap := &memSnapshot{
		providers: []model.Provider{
			provider("p-on", "Nigeria", "Lagos", "Ikeja"),
			inactiveProv,
		},
		listings: []model.ServiceListing{
			listing("l-on", "p-on", model.ModePhysical, model.CoverageLocal),
			inactiveListing,
			listing("l-orphan-prov", "p-off", model.ModePhysical, model.CoverageLocal),
			listing("l-dangling", "p-ghost", model.ModePhysical, model.CoverageLocal),
		},
	}

	results := New(DefaultThreshold).Search(snap, lagosQuery())
	if len(results) != 1 || results[0].ID != "l-on" {
		t.Fatalf("got %v, want only l-on", resultIDs(results))
	}
}

func TestSearchKeywordFilter(t *testing.T) {
	t.Parallel()

	snap := &memSnapshot{
		providers: []model.Provider{provider("p1", "Nigeria", "Lagos", "Ikeja")},
		categories: []model.Category{
			{ID: "cat-clean", Name: "Cleaning", IsActive: true},
			{ID: "cat-deep", Name: "Deep Cleaning", ParentID: strPtr("cat-clean"), IsActive: true},
		},
	}

	byText := listing("l-text", "p1", model.ModePhysical, model.CoverageLocal)
	byText.ServiceName = "sparkling home helper"
	byText.ServiceDescription = "we scrub everything"

	byTag := listing("l-tag", "p1", model.ModePhysical, model.CoverageLocal)
	byTag.ServiceName = "general help"
	byTag.Tags = []string{"scrubbing"}

	byCategory := listing("l-cat", "p1", model.ModePhysical, model.CoverageLocal)
	byCategory.ServiceName = "unrelated words"
	byCategory.CategoryID = "cat-deep"

	miss := listing("l-miss", "p1", model.ModePhysical, model.CoverageLocal)
	miss.ServiceName = "plumbing repairs"
	miss.CategoryID = "cat-pipes"

	snap.listings = []model.ServiceListing{byText, byTag, byCategory, miss}

	t.Run("text and tag matches", func(t *testing.T) {
		t.Parallel()
		q := model.SearchQuery{Q: "scrub", Location: model.Location{City: "Ikeja"}}
		ids := resultIDs(New(DefaultThreshold).Search(snap, q))
		if len(ids) != 2 {
			t.Fatalf("q=scrub got %v, want l-text and l-tag", ids)
		}
	})

	t.Run("category name expands to descendants", func(t *testing.T) {
		t.Parallel()
		q := model.SearchQuery{Q: "cleaning", Location: model.Location{City: "Ikeja"}}
		ids := resultIDs(New(DefaultThreshold).Search(snap, q))
		found := false
		for _, id := range ids {
			if id == "l-cat" {
				found = true
			}
			if id == "l-miss" {
				t.Fatalf("l-miss matched q=cleaning: %v", ids)
			}
		}
		if !found {
			t.Fatalf("descendant-category listing missing from %v", ids)
		}
	})
}

func TestSearchEnrichment(t *testing.T) {
	t.Parallel()

	prov := provider("p1", "Nigeria", "Lagos", "Ikeja")
	prov.VerificationLevel = model.VerificationTrusted

	snap := &memSnapshot{
		providers: []model.Provider{prov},
		listings: []model.ServiceListing{
			listing("l1", "p1", model.ModePhysical, model.CoverageLocal),
		},
		settings: map[string][]model.ServiceSetting{
			"l1": {
				{ServiceID: "l1", Key: "notes", Value: "weekends only"},
				{ServiceID: "l1", Key: "hourly_rate", Value: "150 USD"},
			},
		},
	}

	results := New(DefaultThreshold).Search(snap, lagosQuery())
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	r := results[0]

	if r.DistanceKm == nil || *r.DistanceKm != 1 {
		t.Fatalf("DistanceKm = %v, want same-city proxy 1", r.DistanceKm)
	}
	if r.Price == nil || *r.Price != 150 {
		t.Fatalf("Price = %v, want 150 from the rate setting", r.Price)
	}
	if r.Market == nil || r.Market.Avg != 150 {
		t.Fatalf("Market = %+v, want single-sample summary at 150", r.Market)
	}
	if r.Trust.Breakdown.Verification != 1 {
		t.Fatalf("Verification = %v, want 1 for a trusted provider", r.Trust.Breakdown.Verification)
	}
	if r.FinalScore <= 0 || r.FinalScore > 1 {
		t.Fatalf("FinalScore = %v, out of (0,1]", r.FinalScore)
	}
	if r.Components.Relevance != relevanceWithoutQuery {
		t.Fatalf("Relevance = %v, want declared no-query baseline", r.Components.Relevance)
	}
}

func TestParseLeadingNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"150", 150, true},
		{"150 USD", 150, true},
		{" 99.95 per hour ", 99.95, true},
		{"-20", -20, true},
		{"12.", 12, true},
		{"USD 150", 0, false},
		{"", 0, false},
		{"free", 0, false},
	}

	for _, tt := range tests {
		got, ok := parseLeadingNumber(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("parseLeadingNumber(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func resultIDs(results []Result) []string {
	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ID)
	}
	return ids
}

func strPtr(s string) *string { return &s }
