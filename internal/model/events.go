package model

// ListingAccepted is emitted after an imported listing passes the gate and
// is committed to the catalog store. It is published to listings.accepted
// and consumed by the projectors.
type ListingAccepted struct {
	ListingID  string `json:"listing_id"`
	ProviderID string `json:"provider_id"`
	Country    string `json:"country"`
	City       string `json:"city"`
	CategoryID string `json:"category_id"`
	Timestamp  string `json:"timestamp"` // commit timestamp
}

// CatalogImport is the bulk ingest envelope accepted on the import endpoint
// and replayed through listings.ingest.
type CatalogImport struct {
	Source    string             `json:"source" validate:"required"`
	Providers []ImportedProvider `json:"providers" validate:"required,dive"`
}

// ImportedProvider pairs a provider profile with the listings it publishes.
type ImportedProvider struct {
	Profile  Provider         `json:"profile" validate:"required"`
	Listings []ServiceListing `json:"listings" validate:"dive"`
}
