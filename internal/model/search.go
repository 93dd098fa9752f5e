package model

// Location is the caller's declared administrative location. Empty fields
// are unknown, not "anywhere".
type Location struct {
	Country string `json:"country,omitempty"`
	State   string `json:"state,omitempty"`
	City    string `json:"city,omitempty"`
}

// IsZero reports whether no location level is known at all.
func (l Location) IsZero() bool {
	return l.Country == "" && l.State == "" && l.City == ""
}

// SearchQuery is the value object handed to the search engine. The engine
// assumes at least one of Q, CategoryID, SubcategoryID is set; enforcing
// that is the HTTP layer's job.
type SearchQuery struct {
	Q             string        `json:"q,omitempty"`
	CategoryID    string        `json:"category_id,omitempty"`
	SubcategoryID string        `json:"subcategory_id,omitempty"`
	ServiceMode   ServiceMode   `json:"service_mode,omitempty"`
	CoverageScope CoverageScope `json:"coverage_scope,omitempty"`
	Location      Location      `json:"location"`

	// ExplicitLocation marks a location the caller typed in, which hard-
	// restricts results to that scope instead of feeding tier classification.
	ExplicitLocation bool `json:"explicit_location"`
}

// HasFilter reports whether the query carries at least one usable filter.
func (q SearchQuery) HasFilter() bool {
	return q.Q != "" || q.CategoryID != "" || q.SubcategoryID != ""
}
