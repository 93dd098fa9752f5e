package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"providerhub-backend/internal/model"
)

type addressPayload struct {
	RawAddress string `json:"raw_address" validate:"required"`
}

type createProfileRequest struct {
	ProviderType    string          `json:"provider_type" validate:"required"`
	DisplayName     string          `json:"display_name" validate:"required"`
	Bio             string          `json:"bio"`
	ProfileImageURL string          `json:"profile_image_url" validate:"omitempty,url"`
	LocationCountry string          `json:"location_country" validate:"required"`
	LocationState   string          `json:"location_state"`
	LocationCity    string          `json:"location_city"`
	IsActive        *bool           `json:"is_active"`
	Address         *addressPayload `json:"address"`
}

type profileResponse struct {
	model.Provider
	Addresses []model.Address `json:"addresses"`
}

func (s *Service) createProfileHandler(w http.ResponseWriter, r *http.Request) {
	var req createProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	uid := userID(r)
	if _, exists := s.Store.ProviderByUserID(uid); exists {
		writeError(w, http.StatusConflict, "Provider profile already exists for user")
		return
	}

	p := model.Provider{
		ID:                uuid.NewString(),
		UserID:            uid,
		ProviderType:      req.ProviderType,
		DisplayName:       req.DisplayName,
		Bio:               req.Bio,
		ProfileImageURL:   req.ProfileImageURL,
		LocationCountry:   req.LocationCountry,
		LocationState:     req.LocationState,
		LocationCity:      req.LocationCity,
		VerificationLevel: model.VerificationNone,
		IsActive:          req.IsActive == nil || *req.IsActive,
		CreatedAt:         nowRFC3339(),
	}
	if err := s.Store.InsertProvider(p); err != nil {
		s.Log.Error("insert provider", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to save profile")
		return
	}

	resp := profileResponse{Provider: p, Addresses: []model.Address{}}

	// Address save is best effort: a parse or write failure must not block
	// profile creation.
	if req.Address != nil && req.Address.RawAddress != "" {
		if addr, err := s.Store.InsertAddress(model.Address{
			ProviderID: p.ID,
			RawAddress: req.Address.RawAddress,
		}); err == nil {
			resp.Addresses = append(resp.Addresses, addr)
		} else {
			s.Log.Warn("insert address", "provider_id", p.ID, "err", err)
		}
	}

	writeData(w, http.StatusCreated, resp)
}

func (s *Service) myProfileHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := s.Store.ProviderByUserID(userID(r))
	if !ok {
		writeError(w, http.StatusNotFound, "Profile not found")
		return
	}
	resp := profileResponse{Provider: p, Addresses: s.Store.AddressesByProvider(p.ID)}
	if resp.Addresses == nil {
		resp.Addresses = []model.Address{}
	}
	writeData(w, http.StatusOK, resp)
}
