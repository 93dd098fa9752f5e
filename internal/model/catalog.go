package model

// VerificationLevel is the provider's identity verification tier.
type VerificationLevel string

const (
	VerificationNone    VerificationLevel = "none"
	VerificationBasic   VerificationLevel = "basic"
	VerificationTrusted VerificationLevel = "trusted"
)

// ServiceMode describes how a service is delivered.
type ServiceMode string

const (
	ModePhysical ServiceMode = "physical"
	ModeRemote   ServiceMode = "remote"
	ModeHybrid   ServiceMode = "hybrid"
)

// CoverageScope is the declared geographic reach of a listing, independent
// of where the provider actually sits.
type CoverageScope string

const (
	CoverageLocal    CoverageScope = "local"
	CoverageNational CoverageScope = "national"
	CoverageGlobal   CoverageScope = "global"
)

// Category is one node of the service taxonomy. ParentID is nil for roots;
// the parent chain is expected to be acyclic but externally editable, so
// traversals must not assume it.
type Category struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Slug      string  `json:"slug"`
	ParentID  *string `json:"parent_id"`
	Level     int     `json:"level"`
	IsActive  bool    `json:"is_active"`
	CreatedAt string  `json:"created_at,omitempty"`
}

// Provider is a seller profile. Location fields are declared administrative
// values, not geocoded coordinates; empty means unknown.
type Provider struct {
	ID                string            `json:"id"`
	UserID            string            `json:"user_id"`
	ProviderType      string            `json:"provider_type"`
	DisplayName       string            `json:"display_name"`
	Bio               string            `json:"bio,omitempty"`
	ProfileImageURL   string            `json:"profile_image_url,omitempty"`
	LocationCountry   string            `json:"location_country"`
	LocationState     string            `json:"location_state,omitempty"`
	LocationCity      string            `json:"location_city,omitempty"`
	IsVerified        bool              `json:"is_verified"`
	VerificationLevel VerificationLevel `json:"verification_level"`
	AddressConfidence *float64          `json:"address_confidence,omitempty"`
	IsActive          bool              `json:"is_active"`
	CreatedAt         string            `json:"created_at,omitempty"`
}

// ServiceListing is one offered service. At most one listing per provider
// carries IsPrimary; the store enforces that on write.
type ServiceListing struct {
	ID                    string        `json:"id"`
	ProviderID            string        `json:"provider_id"`
	CategoryID            string        `json:"category_id"`
	SubcategoryID         *string       `json:"subcategory_id"`
	ServiceName           string        `json:"service_name,omitempty"`
	ServiceDescription    string        `json:"service_description,omitempty"`
	RawServiceInput       string        `json:"raw_service_input,omitempty"`
	InputType             string        `json:"input_type,omitempty"`
	ServiceRoleOrName     string        `json:"service_role_or_name,omitempty"`
	NormalizedServiceName string        `json:"normalized_service_name,omitempty"`
	Tags                  []string      `json:"tags,omitempty"`
	ServiceMode           ServiceMode   `json:"service_mode"`
	CoverageScope         CoverageScope `json:"coverage_scope"`
	PricingModel          string        `json:"pricing_model,omitempty"`
	IsPrimary             bool          `json:"is_primary"`
	IsActive              bool          `json:"is_active"`
	SuggestedCategoryID   *string       `json:"suggested_category_id,omitempty"`
	CreatedAt             string        `json:"created_at,omitempty"`
}

// Address belongs to exactly one provider or one service. RawAddress is
// preserved verbatim; the parsed fields and confidence are derived and may
// be recomputed, the raw text never is.
type Address struct {
	ID                string   `json:"id"`
	ProviderID        string   `json:"provider_id,omitempty"`
	ServiceID         string   `json:"service_id,omitempty"`
	RawAddress        string   `json:"raw_address"`
	Premise           string   `json:"premise,omitempty"`
	Street            string   `json:"street,omitempty"`
	Community         string   `json:"community,omitempty"`
	Area              string   `json:"area,omitempty"`
	District          string   `json:"district,omitempty"`
	City              string   `json:"city,omitempty"`
	State             string   `json:"state,omitempty"`
	Country           string   `json:"country,omitempty"`
	Latitude          *float64 `json:"latitude,omitempty"`
	Longitude         *float64 `json:"longitude,omitempty"`
	AddressConfidence *int     `json:"address_confidence"`
	CreatedAt         string   `json:"created_at,omitempty"`
	UpdatedAt         string   `json:"updated_at,omitempty"`
}

// ServiceSetting is a free-form key/value attached to a listing. Price
// extraction during search scans these keys best-effort.
type ServiceSetting struct {
	ID        string `json:"id"`
	ServiceID string `json:"service_id"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	CreatedAt string `json:"created_at,omitempty"`
}
