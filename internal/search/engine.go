// Package search is the discovery engine: a tiered, location-aware filter
// over the service catalog followed by explainable multi-factor ranking.
// The engine is pure: it computes over a caller-supplied snapshot and
// performs no I/O, so concurrent searches are safe as long as each request
// sees a consistent snapshot.
package search

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"providerhub-backend/internal/market"
	"providerhub-backend/internal/model"
	"providerhub-backend/internal/ranking"
	"providerhub-backend/internal/taxonomy"
	"providerhub-backend/internal/trust"
)

// DefaultThreshold is the result count below which the next locality tier
// is pulled in.
const DefaultThreshold = 5

// Baseline signal values. There is no semantic relevance model and no real
// calendar, so these are declared proxies, not measurements.
const (
	relevanceWithQuery    = 0.6
	relevanceWithoutQuery = 0.3
	availabilityDefault   = 0.8
)

// Distance proxy levels. Administrative locality stands in for geocoded
// distance.
const (
	distanceSameCity    = 1
	distanceSameState   = 20
	distanceSameCountry = 200
	distanceElsewhere   = 1000
)

// priceKeyRe matches setting keys that plausibly carry a price.
var priceKeyRe = regexp.MustCompile(`(?i)price|rate|amount|fee`)

// Snapshot is a consistent read-only view of the catalog. Implementations
// must not mutate returned slices while a search is in flight.
type Snapshot interface {
	Providers() []model.Provider
	Listings() []model.ServiceListing
	Categories() []model.Category
	ListingSettings(listingID string) []model.ServiceSetting
}

// Engine orders the catalog for one search request.
type Engine struct {
	threshold int
	weights   ranking.Weights
}

// New returns an engine with the given tier-expansion threshold; values
// below 1 fall back to DefaultThreshold.
func New(threshold int) *Engine {
	if threshold < 1 {
		threshold = DefaultThreshold
	}
	return &Engine{threshold: threshold, weights: ranking.DefaultWeights()}
}

// WithWeights overrides the ranking weights, for A/B weight tuning.
func (e *Engine) WithWeights(w ranking.Weights) *Engine {
	e.weights = w
	return e
}

// Result is one search hit: the listing annotated with its provider and
// every score that produced its position.
type Result struct {
	model.ServiceListing
	Provider   model.Provider     `json:"provider"`
	DistanceKm *float64           `json:"distance_km"`
	Price      *float64           `json:"price"`
	Market     *market.Summary    `json:"market"`
	Trust      trust.Result       `json:"trust"`
	FinalScore float64            `json:"final_score"`
	Components ranking.Components `json:"score_components"`
}

type candidate struct {
	listing  model.ServiceListing
	provider model.Provider
}

// Search runs the full pipeline: mandatory filters, keyword filter,
// locality branching, tier union, enrichment and final ranking. A query
// that matches nothing returns an empty slice, never an error.
func (e *Engine) Search(snap Snapshot, q model.SearchQuery) []Result {
	cands := e.candidates(snap, q)

	results := make([]Result, 0, len(cands))
	for _, c := range cands {
		results = append(results, e.enrich(snap, q, c))
	}

	// Final order is by score; tiers only bounded the candidate set. The
	// stable sort keeps candidate order on ties, so tier preference still
	// breaks exact-score ties.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})
	return results
}

// candidates applies filters and locality branching, returning the ordered
// candidate set before scoring.
func (e *Engine) candidates(snap Snapshot, q model.SearchQuery) []candidate {
	providers := snap.Providers()
	provByID := make(map[string]model.Provider, len(providers))
	for _, p := range providers {
		provByID[p.ID] = p
	}
	categories := snap.Categories()

	// Mandatory filters: active listing, resolvable active provider. A
	// dangling provider reference makes the listing ineligible.
	var rows []candidate
	for _, l := range snap.Listings() {
		if !l.IsActive {
			continue
		}
		p, ok := provByID[l.ProviderID]
		if !ok || !p.IsActive {
			continue
		}
		rows = append(rows, candidate{listing: l, provider: p})
	}

	if q.ServiceMode != "" {
		rows = filterCandidates(rows, func(c candidate) bool { return c.listing.ServiceMode == q.ServiceMode })
	}
	if q.CoverageScope != "" {
		rows = filterCandidates(rows, func(c candidate) bool { return c.listing.CoverageScope == q.CoverageScope })
	}
	if cat := firstNonEmpty(q.CategoryID, q.SubcategoryID); cat != "" {
		rows = filterCandidates(rows, func(c candidate) bool {
			return c.listing.CategoryID == cat ||
				(c.listing.SubcategoryID != nil && *c.listing.SubcategoryID == cat)
		})
	}

	if q.Q != "" {
		rows = keywordFilter(rows, categories, q.Q)
	}

	loc := q.Location

	// Explicit location is a hard override: restrict to the most specific
	// level given and skip tiering entirely. The text-length ordering is a
	// placeholder within-scope heuristic; the ranking engine still scores
	// these rows afterwards.
	if q.ExplicitLocation && !loc.IsZero() {
		rows = explicitLocationFilter(rows, loc)
		sort.SliceStable(rows, func(i, j int) bool {
			return textLength(rows[i].listing) > textLength(rows[j].listing)
		})
		return rows
	}

	// Without any location there is no locality to claim: only broad
	// coverage or remote delivery qualifies.
	if loc.IsZero() {
		return filterCandidates(rows, func(c candidate) bool {
			return c.listing.CoverageScope == model.CoverageNational ||
				c.listing.CoverageScope == model.CoverageGlobal ||
				c.listing.ServiceMode == model.ModeRemote
		})
	}

	tier1, tier2, tier3 := classifyTiers(rows, loc)

	// Tier union with expansion: prefer locality but never starve the
	// caller of results.
	var unioned []candidate
	seen := map[string]bool{}
	push := func(tier []candidate) {
		for _, c := range tier {
			if seen[c.listing.ID] {
				continue
			}
			seen[c.listing.ID] = true
			unioned = append(unioned, c)
		}
	}
	push(tier1)
	if len(unioned) < e.threshold {
		push(tier2)
	}
	if len(unioned) < e.threshold {
		push(tier3)
	}

	// Within-union heuristic ordering; final ranking may reorder, this
	// only settles score ties.
	sort.SliceStable(unioned, func(i, j int) bool {
		return heuristicScore(unioned[i], q) > heuristicScore(unioned[j], q)
	})
	return unioned
}

// keywordFilter keeps listings whose text, tags, or (descendant-expanded)
// category name match the query. Any one of the three suffices.
func keywordFilter(rows []candidate, categories []model.Category, query string) []candidate {
	qlow := strings.ToLower(query)

	matchedCats := map[string]struct{}{}
	for _, c := range categories {
		if strings.Contains(strings.ToLower(c.Name), qlow) {
			for id := range taxonomy.Descendants(categories, c.ID) {
				matchedCats[id] = struct{}{}
			}
		}
	}

	return filterCandidates(rows, func(c candidate) bool {
		l := c.listing
		text := strings.ToLower(l.ServiceName + " " + l.ServiceDescription + " " + l.ServiceRoleOrName + " " + l.NormalizedServiceName)
		if strings.Contains(text, qlow) {
			return true
		}
		for _, t := range l.Tags {
			if strings.Contains(strings.ToLower(t), qlow) {
				return true
			}
		}
		_, ok := matchedCats[l.CategoryID]
		return ok
	})
}

// explicitLocationFilter restricts to the most specific non-empty level:
// city over state over country, matched case-insensitively.
func explicitLocationFilter(rows []candidate, loc model.Location) []candidate {
	switch {
	case loc.City != "":
		return filterCandidates(rows, func(c candidate) bool {
			return strings.EqualFold(c.provider.LocationCity, loc.City)
		})
	case loc.State != "":
		return filterCandidates(rows, func(c candidate) bool {
			return strings.EqualFold(c.provider.LocationState, loc.State)
		})
	case loc.Country != "":
		return filterCandidates(rows, func(c candidate) bool {
			return strings.EqualFold(c.provider.LocationCountry, loc.Country)
		})
	}
	return rows
}

// classifyTiers puts each candidate into exactly one locality tier, first
// match wins. Candidates matching no tier are excluded.
func classifyTiers(rows []candidate, loc model.Location) (tier1, tier2, tier3 []candidate) {
	for _, c := range rows {
		p := c.provider
		l := c.listing
		sameCity := p.LocationCity != "" && loc.City != "" && strings.EqualFold(p.LocationCity, loc.City)
		sameState := p.LocationState != "" && loc.State != "" && strings.EqualFold(p.LocationState, loc.State)
		sameCountry := p.LocationCountry != "" && loc.Country != "" && strings.EqualFold(p.LocationCountry, loc.Country)

		// Tier 1: local physical or hybrid delivery.
		if (sameCity || sameState || sameCountry) &&
			(l.ServiceMode == model.ModePhysical || l.ServiceMode == model.ModeHybrid) {
			tier1 = append(tier1, c)
			continue
		}

		// Tier 2: in-country remote with local or national reach.
		if sameCountry && l.ServiceMode == model.ModeRemote &&
			(l.CoverageScope == model.CoverageLocal || l.CoverageScope == model.CoverageNational) {
			tier2 = append(tier2, c)
			continue
		}

		// Tier 3: broad coverage, or remote from outside the country.
		if l.CoverageScope == model.CoverageNational || l.CoverageScope == model.CoverageGlobal ||
			(l.ServiceMode == model.ModeRemote && !sameCountry) {
			tier3 = append(tier3, c)
		}
	}
	return tier1, tier2, tier3
}

// enrich annotates a candidate with the distance proxy, extracted price,
// market summary, trust score and final ranking score.
func (e *Engine) enrich(snap Snapshot, q model.SearchQuery, c candidate) Result {
	distance := distanceProxy(c.provider, q.Location)

	relevance := relevanceWithoutQuery
	if q.Q != "" {
		relevance = relevanceWithQuery
	}

	price := extractPrice(snap.ListingSettings(c.listing.ID))

	// With only this listing's own price observed, the aggregate
	// degenerates to that price; it still gives the price score a market
	// anchor of the right shape.
	var agg *market.Summary
	if price != nil {
		agg = market.Aggregate([]float64{*price})
	}
	var marketAvg *float64
	if agg != nil {
		marketAvg = &agg.Avg
	}

	trustRes := trust.Compute(c.provider, trust.Context{})

	score := ranking.FinalScore(ranking.Inputs{
		DistanceKm:        distance,
		RelevanceScore:    relevance,
		TrustScore:        trustRes.TrustScore,
		Price:             price,
		MarketAvg:         marketAvg,
		AvailabilityScore: availabilityDefault,
	}, e.weights)

	return Result{
		ServiceListing: c.listing,
		Provider:       c.provider,
		DistanceKm:     distance,
		Price:          price,
		Market:         agg,
		Trust:          trustRes,
		FinalScore:     score.FinalScore,
		Components:     score.Components,
	}
}

// distanceProxy maps shared administrative levels onto coarse kilometre
// stand-ins. Nil means no location is known on either side.
func distanceProxy(p model.Provider, loc model.Location) *float64 {
	if loc.IsZero() {
		return nil
	}
	km := float64(distanceElsewhere)
	switch {
	case p.LocationCity != "" && loc.City != "" && strings.EqualFold(p.LocationCity, loc.City):
		km = distanceSameCity
	case p.LocationState != "" && loc.State != "" && strings.EqualFold(p.LocationState, loc.State):
		km = distanceSameState
	case p.LocationCountry != "" && loc.Country != "" && strings.EqualFold(p.LocationCountry, loc.Country):
		km = distanceSameCountry
	}
	return &km
}

// extractPrice scans listing settings for a price-looking key and returns
// the first numeric value. Best-effort by design; settings are free-form.
func extractPrice(settings []model.ServiceSetting) *float64 {
	for _, s := range settings {
		if !priceKeyRe.MatchString(s.Key) {
			continue
		}
		if v, ok := parseLeadingNumber(s.Value); ok {
			return &v
		}
	}
	return nil
}

// parseLeadingNumber reads a decimal number off the front of s, tolerating
// trailing text like "150 USD".
func parseLeadingNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	seenDigit := false
	for i, r := range s {
		if r >= '0' && r <= '9' {
			seenDigit = true
			end = i + 1
			continue
		}
		if (r == '-' || r == '+') && i == 0 {
			end = i + 1
			continue
		}
		if r == '.' && seenDigit {
			end = i + 1
			continue
		}
		break
	}
	if !seenDigit {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// heuristicScore orders candidates within the unioned tiers: category hit,
// keyword frequency, then verification level.
func heuristicScore(c candidate, q model.SearchQuery) int {
	score := 0
	if cat := firstNonEmpty(q.CategoryID, q.SubcategoryID); cat != "" {
		if c.listing.CategoryID == cat || (c.listing.SubcategoryID != nil && *c.listing.SubcategoryID == cat) {
			score += 30
		}
	}
	if q.Q != "" {
		text := strings.ToLower(c.listing.ServiceName + " " + c.listing.ServiceDescription)
		matches := strings.Count(text, strings.ToLower(q.Q))
		if matches > 4 {
			matches = 4
		}
		score += matches * 5
	}
	switch c.provider.VerificationLevel {
	case model.VerificationTrusted:
		score += 10
	case model.VerificationBasic:
		score += 5
	}
	return score
}

func textLength(l model.ServiceListing) int {
	return len(l.ServiceName) + len(l.ServiceDescription)
}

func filterCandidates(rows []candidate, keep func(candidate) bool) []candidate {
	out := rows[:0:0]
	for _, c := range rows {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
