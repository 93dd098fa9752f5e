package store

import "providerhub-backend/internal/model"

// Snapshot is an immutable copy of the catalog taken under the read lock.
// It satisfies the search engine's snapshot contract: one snapshot per
// request keeps a search consistent while writes continue.
type Snapshot struct {
	providers  []model.Provider
	listings   []model.ServiceListing
	categories []model.Category
	settings   map[string][]model.ServiceSetting
}

// Snapshot copies the current catalog state.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings := make(map[string][]model.ServiceSetting)
	for _, set := range s.data.ServiceSettings {
		settings[set.ServiceID] = append(settings[set.ServiceID], set)
	}

	return &Snapshot{
		providers:  append([]model.Provider(nil), s.data.ProviderProfiles...),
		listings:   append([]model.ServiceListing(nil), s.data.Services...),
		categories: append([]model.Category(nil), s.data.ServiceCategories...),
		settings:   settings,
	}
}

func (c *Snapshot) Providers() []model.Provider      { return c.providers }
func (c *Snapshot) Listings() []model.ServiceListing { return c.listings }
func (c *Snapshot) Categories() []model.Category     { return c.categories }

func (c *Snapshot) ListingSettings(listingID string) []model.ServiceSetting {
	return c.settings[listingID]
}
