package httpapi

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"providerhub-backend/internal/model"
	"providerhub-backend/internal/moderation"
	"providerhub-backend/internal/store"
	"providerhub-backend/internal/taxonomy"
)

type createListingRequest struct {
	CategoryID         string              `json:"category_id" validate:"required"`
	SubcategoryID      *string             `json:"subcategory_id"`
	ServiceName        string              `json:"service_name"`
	ServiceDescription string              `json:"service_description"`
	Description        string              `json:"description"` // accepted alias
	RawServiceInput    string              `json:"raw_service_input"`
	InputType          string              `json:"input_type"`
	ServiceRoleOrName  string              `json:"service_role_or_name"`
	Tags               []string            `json:"tags"`
	ServiceMode        model.ServiceMode   `json:"service_mode" validate:"required,oneof=physical remote hybrid"`
	CoverageScope      model.CoverageScope `json:"coverage_scope" validate:"required,oneof=local national global"`
	PricingModel       string              `json:"pricing_model" validate:"required"`
	IsPrimary          bool                `json:"is_primary"`
	IsActive           *bool               `json:"is_active"`
}

func (s *Service) createListingHandler(w http.ResponseWriter, r *http.Request) {
	var req createListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	profile, ok := s.Store.ProviderByUserID(userID(r))
	if !ok {
		writeError(w, http.StatusBadRequest, "Provider profile required")
		return
	}

	isActive := req.IsActive == nil || *req.IsActive
	if !profile.IsActive && isActive {
		writeError(w, http.StatusBadRequest, "Inactive providers cannot have active services")
		return
	}
	if s.providerSuspended(r, profile.ID) {
		writeError(w, http.StatusForbidden, "Provider is suspended from publishing")
		return
	}
	if _, ok := s.Store.CategoryByID(req.CategoryID); !ok {
		writeError(w, http.StatusBadRequest, "Invalid category")
		return
	}

	isPrimary := req.IsPrimary
	if isPrimary {
		if err := s.Store.ClearPrimary(profile.ID); err != nil {
			s.Log.Error("clear primary", "err", err)
		}
	} else if !s.Store.HasPrimaryListing(profile.ID) {
		// First listing becomes primary by default.
		isPrimary = true
	}

	name := firstOf(req.ServiceName, req.ServiceRoleOrName)
	desc := firstOf(req.Description, req.ServiceDescription)
	normalized, derivedTags := normalizeServiceInput(
		firstOf(req.RawServiceInput, req.ServiceName, req.ServiceRoleOrName),
		req.ServiceRoleOrName,
	)
	tags := req.Tags
	if len(tags) == 0 {
		tags = derivedTags
	}

	l := model.ServiceListing{
		ID:                    uuid.NewString(),
		ProviderID:            profile.ID,
		CategoryID:            req.CategoryID,
		SubcategoryID:         req.SubcategoryID,
		ServiceName:           name,
		ServiceDescription:    desc,
		RawServiceInput:       req.RawServiceInput,
		InputType:             firstOf(req.InputType, "text"),
		ServiceRoleOrName:     req.ServiceRoleOrName,
		NormalizedServiceName: normalized,
		Tags:                  tags,
		ServiceMode:           req.ServiceMode,
		CoverageScope:         req.CoverageScope,
		PricingModel:          req.PricingModel,
		IsPrimary:             isPrimary,
		IsActive:              isActive,
		CreatedAt:             nowRFC3339(),
	}

	// Non-authoritative category hint from the deterministic categorizer.
	if sug := taxonomy.Suggest(normalized+" "+desc, s.Store.Categories("")); sug != nil {
		l.SuggestedCategoryID = &sug.CategoryID
	}

	if err := s.Store.InsertListing(l); err != nil {
		s.Log.Error("insert listing", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to save service")
		return
	}
	writeData(w, http.StatusCreated, l)
}

type updateListingRequest struct {
	CategoryID         *string              `json:"category_id"`
	SubcategoryID      *string              `json:"subcategory_id"`
	ServiceName        *string              `json:"service_name"`
	ServiceDescription *string              `json:"service_description"`
	ServiceMode        *model.ServiceMode   `json:"service_mode" validate:"omitempty,oneof=physical remote hybrid"`
	CoverageScope      *model.CoverageScope `json:"coverage_scope" validate:"omitempty,oneof=local national global"`
	PricingModel       *string              `json:"pricing_model"`
	IsPrimary          *bool                `json:"is_primary"`
	IsActive           *bool                `json:"is_active"`
}

func (s *Service) updateListingHandler(w http.ResponseWriter, r *http.Request) {
	var req updateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	profile, ok := s.Store.ProviderByUserID(userID(r))
	if !ok {
		writeError(w, http.StatusBadRequest, "Provider profile required")
		return
	}
	listing, ok := s.Store.ListingByID(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "Service not found")
		return
	}
	if listing.ProviderID != profile.ID {
		writeError(w, http.StatusForbidden, "Not allowed")
		return
	}

	wantActive := listing.IsActive
	if req.IsActive != nil {
		wantActive = *req.IsActive
	}
	if !profile.IsActive && wantActive {
		writeError(w, http.StatusBadRequest, "Inactive providers cannot have active services")
		return
	}
	if s.providerSuspended(r, profile.ID) {
		writeError(w, http.StatusForbidden, "Provider is suspended from publishing")
		return
	}
	if req.CategoryID != nil {
		if _, ok := s.Store.CategoryByID(*req.CategoryID); !ok {
			writeError(w, http.StatusBadRequest, "Invalid category")
			return
		}
	}

	if req.IsPrimary != nil && *req.IsPrimary {
		if err := s.Store.ClearPrimary(profile.ID); err != nil {
			s.Log.Error("clear primary", "err", err)
		}
	}

	upd := store.ListingUpdate{
		CategoryID:         req.CategoryID,
		SubcategoryID:      req.SubcategoryID,
		ServiceName:        req.ServiceName,
		ServiceDescription: req.ServiceDescription,
		ServiceMode:        req.ServiceMode,
		CoverageScope:      req.CoverageScope,
		PricingModel:       req.PricingModel,
		IsPrimary:          req.IsPrimary,
		IsActive:           req.IsActive,
	}
	if upd.IsZero() {
		writeError(w, http.StatusBadRequest, "Nothing to update")
		return
	}

	updated, err := s.Store.UpdateListing(listing.ID, upd)
	if err != nil {
		s.Log.Error("update listing", "listing_id", listing.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to update service")
		return
	}
	writeData(w, http.StatusOK, updated)
}

func (s *Service) myListingsHandler(w http.ResponseWriter, r *http.Request) {
	profile, ok := s.Store.ProviderByUserID(userID(r))
	if !ok {
		writeData(w, http.StatusOK, []model.ServiceListing{})
		return
	}
	rows := s.Store.ListingsByProvider(profile.ID)
	if rows == nil {
		rows = []model.ServiceListing{}
	}
	writeData(w, http.StatusOK, rows)
}

// providerSuspended consults the moderation cache; on cache errors
// publishing is allowed rather than blocked.
func (s *Service) providerSuspended(r *http.Request, providerID string) bool {
	if s.Moderation == nil {
		return false
	}
	status, err := s.Moderation.Check(r.Context(), providerID)
	if err != nil {
		s.Log.Warn("moderation check", "provider_id", providerID, "err", err)
		return false
	}
	return status == moderation.StatusSuspended
}

// normalizeServiceInput derives a normalized name (first two words, or the
// declared role) and simple tags from free-form service text. Deterministic
// stand-in for a smarter normalizer.
func normalizeServiceInput(raw, role string) (normalized string, tags []string) {
	if role != "" {
		normalized = strings.ToLower(role)
	}
	text := strings.TrimSpace(raw)
	if text == "" {
		return normalized, nil
	}

	tokens := strings.Fields(text)
	if normalized == "" {
		n := len(tokens)
		if n > 2 {
			n = 2
		}
		normalized = strings.ToLower(strings.Join(tokens[:n], " "))
	}

	seen := map[string]bool{}
	for _, t := range tokens {
		t = strings.ToLower(t)
		if len(t) > 3 && !seen[t] {
			seen[t] = true
			tags = append(tags, t)
		}
		if len(tags) == 10 {
			break
		}
	}
	sort.Strings(tags)
	return normalized, tags
}

func firstOf(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
