// Package store persists the marketplace catalog as a single JSON file and
// serves consistent in-memory snapshots to the search engine. All mutation
// goes through the store; readers get copies, never live slices.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"providerhub-backend/internal/address"
	"providerhub-backend/internal/model"
)

// ErrNotFound is returned when a record id does not resolve.
var ErrNotFound = errors.New("store: not found")

type catalogFile struct {
	ProviderProfiles  []model.Provider       `json:"provider_profiles"`
	ServiceCategories []model.Category       `json:"service_categories"`
	Services          []model.ServiceListing `json:"services"`
	Addresses         []model.Address        `json:"addresses"`
	ServiceSettings   []model.ServiceSetting `json:"service_settings"`
}

// Store is the file-backed catalog. Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	path string
	data catalogFile
}

// Open loads the catalog file at path, creating it (and its directory)
// when absent.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &Store{path: path}
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := s.persistLocked(); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("read catalog: %w", err)
	default:
		if err := json.Unmarshal(raw, &s.data); err != nil {
			return nil, fmt.Errorf("parse catalog: %w", err)
		}
	}
	return s, nil
}

func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return nil
}

func now() string { return time.Now().UTC().Format(time.RFC3339Nano) }

// Categories returns active categories, optionally restricted to one
// parent.
func (s *Store) Categories(parentID string) []model.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Category
	for _, c := range s.data.ServiceCategories {
		if !c.IsActive {
			continue
		}
		if parentID != "" && (c.ParentID == nil || *c.ParentID != parentID) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// CategoryByID resolves an active category.
func (s *Store) CategoryByID(id string) (model.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.data.ServiceCategories {
		if c.ID == id && c.IsActive {
			return c, true
		}
	}
	return model.Category{}, false
}

// InsertCategory adds a taxonomy node. Catalog administration only.
func (s *Store) InsertCategory(c model.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt == "" {
		c.CreatedAt = now()
	}
	s.data.ServiceCategories = append(s.data.ServiceCategories, c)
	return s.persistLocked()
}

// ProviderByUserID finds the profile owned by a user, one per user.
func (s *Store) ProviderByUserID(userID string) (model.Provider, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.data.ProviderProfiles {
		if p.UserID == userID {
			return p, true
		}
	}
	return model.Provider{}, false
}

// ProviderByID resolves a provider profile.
func (s *Store) ProviderByID(id string) (model.Provider, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.data.ProviderProfiles {
		if p.ID == id {
			return p, true
		}
	}
	return model.Provider{}, false
}

// InsertProvider stores a new provider profile.
func (s *Store) InsertProvider(p model.Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.ProviderProfiles = append(s.data.ProviderProfiles, p)
	return s.persistLocked()
}

// HasPrimaryListing reports whether the provider already has a primary
// listing.
func (s *Store) HasPrimaryListing(providerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.data.Services {
		if l.ProviderID == providerID && l.IsPrimary {
			return true
		}
	}
	return false
}

// ClearPrimary drops the primary flag from all of a provider's listings.
func (s *Store) ClearPrimary(providerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.Services {
		if s.data.Services[i].ProviderID == providerID {
			s.data.Services[i].IsPrimary = false
		}
	}
	return s.persistLocked()
}

// InsertListing stores a new service listing.
func (s *Store) InsertListing(l model.ServiceListing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Services = append(s.data.Services, l)
	return s.persistLocked()
}

// ListingUpdate carries the mutable listing fields; nil means unchanged.
type ListingUpdate struct {
	CategoryID         *string
	SubcategoryID      *string
	ServiceName        *string
	ServiceDescription *string
	ServiceMode        *model.ServiceMode
	CoverageScope      *model.CoverageScope
	PricingModel       *string
	IsPrimary          *bool
	IsActive           *bool
}

// IsZero reports whether the update changes nothing.
func (u ListingUpdate) IsZero() bool {
	return u.CategoryID == nil && u.SubcategoryID == nil && u.ServiceName == nil &&
		u.ServiceDescription == nil && u.ServiceMode == nil && u.CoverageScope == nil &&
		u.PricingModel == nil && u.IsPrimary == nil && u.IsActive == nil
}

// UpdateListing applies the non-nil fields of upd to listing id.
func (s *Store) UpdateListing(id string, upd ListingUpdate) (model.ServiceListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.Services {
		if s.data.Services[i].ID != id {
			continue
		}
		l := &s.data.Services[i]
		if upd.CategoryID != nil {
			l.CategoryID = *upd.CategoryID
		}
		if upd.SubcategoryID != nil {
			l.SubcategoryID = upd.SubcategoryID
		}
		if upd.ServiceName != nil {
			l.ServiceName = *upd.ServiceName
		}
		if upd.ServiceDescription != nil {
			l.ServiceDescription = *upd.ServiceDescription
		}
		if upd.ServiceMode != nil {
			l.ServiceMode = *upd.ServiceMode
		}
		if upd.CoverageScope != nil {
			l.CoverageScope = *upd.CoverageScope
		}
		if upd.PricingModel != nil {
			l.PricingModel = *upd.PricingModel
		}
		if upd.IsPrimary != nil {
			l.IsPrimary = *upd.IsPrimary
		}
		if upd.IsActive != nil {
			l.IsActive = *upd.IsActive
		}
		if err := s.persistLocked(); err != nil {
			return model.ServiceListing{}, err
		}
		return *l, nil
	}
	return model.ServiceListing{}, ErrNotFound
}

// ListingByID resolves a listing regardless of active flag.
func (s *Store) ListingByID(id string) (model.ServiceListing, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.data.Services {
		if l.ID == id {
			return l, true
		}
	}
	return model.ServiceListing{}, false
}

// ListingsByProvider returns all of a provider's listings.
func (s *Store) ListingsByProvider(providerID string) []model.ServiceListing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.ServiceListing
	for _, l := range s.data.Services {
		if l.ProviderID == providerID {
			out = append(out, l)
		}
	}
	return out
}

// InsertAddress stores the raw address first, then derives the parsed
// fields and confidence. The raw text is persisted even if derivation
// produced nothing.
func (s *Store) InsertAddress(a model.Address) (model.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	ts := now()
	a.CreatedAt = ts
	a.UpdatedAt = ts
	applyParsed(&a)
	s.data.Addresses = append(s.data.Addresses, a)
	if err := s.persistLocked(); err != nil {
		return model.Address{}, err
	}
	return a, nil
}

// AddressUpdate carries the mutable address fields; nil means unchanged.
// Changing RawAddress re-runs the parser; the stored raw text is replaced
// wholesale, never partially rewritten.
type AddressUpdate struct {
	RawAddress *string
	Latitude   *float64
	Longitude  *float64
}

// UpdateAddress applies upd to address id, re-deriving parsed fields when
// the raw address changed.
func (s *Store) UpdateAddress(id string, upd AddressUpdate) (model.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.Addresses {
		if s.data.Addresses[i].ID != id {
			continue
		}
		a := &s.data.Addresses[i]
		if upd.Latitude != nil {
			a.Latitude = upd.Latitude
		}
		if upd.Longitude != nil {
			a.Longitude = upd.Longitude
		}
		if upd.RawAddress != nil && *upd.RawAddress != a.RawAddress {
			a.RawAddress = *upd.RawAddress
			applyParsed(a)
		}
		a.UpdatedAt = now()
		if err := s.persistLocked(); err != nil {
			return model.Address{}, err
		}
		return *a, nil
	}
	return model.Address{}, ErrNotFound
}

// AddressesByProvider returns a provider's addresses.
func (s *Store) AddressesByProvider(providerID string) []model.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Address
	for _, a := range s.data.Addresses {
		if a.ProviderID == providerID {
			out = append(out, a)
		}
	}
	return out
}

// InsertSetting stores a listing setting.
func (s *Store) InsertSetting(set model.ServiceSetting) (model.ServiceSetting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if set.ID == "" {
		set.ID = uuid.NewString()
	}
	set.CreatedAt = now()
	s.data.ServiceSettings = append(s.data.ServiceSettings, set)
	if err := s.persistLocked(); err != nil {
		return model.ServiceSetting{}, err
	}
	return set, nil
}

// SettingsByListing returns all settings for one listing.
func (s *Store) SettingsByListing(listingID string) []model.ServiceSetting {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.ServiceSetting
	for _, set := range s.data.ServiceSettings {
		if set.ServiceID == listingID {
			out = append(out, set)
		}
	}
	return out
}

// applyParsed overwrites the derived fields from the current raw address.
func applyParsed(a *model.Address) {
	f := address.Parse(a.RawAddress)
	a.Premise = f.Premise
	a.Street = f.Street
	a.Community = f.Community
	a.Area = f.Area
	a.District = f.District
	a.City = f.City
	a.State = f.State
	a.Country = f.Country
	conf := address.Confidence(f)
	a.AddressConfidence = &conf
}
