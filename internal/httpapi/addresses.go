package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"providerhub-backend/internal/model"
	"providerhub-backend/internal/store"
)

type createAddressRequest struct {
	RawAddress string   `json:"raw_address" validate:"required"`
	ServiceID  string   `json:"service_id"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
}

func (s *Service) createAddressHandler(w http.ResponseWriter, r *http.Request) {
	var req createAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.RawAddress) == "" {
		writeError(w, http.StatusBadRequest, "raw_address is required")
		return
	}

	profile, ok := s.Store.ProviderByUserID(userID(r))
	if !ok {
		writeError(w, http.StatusBadRequest, "Provider profile required")
		return
	}
	if req.ServiceID != "" {
		listing, ok := s.Store.ListingByID(req.ServiceID)
		if !ok || listing.ProviderID != profile.ID {
			writeError(w, http.StatusForbidden, "Not allowed")
			return
		}
	}

	saved, err := s.Store.InsertAddress(model.Address{
		ProviderID: profile.ID,
		ServiceID:  req.ServiceID,
		RawAddress: req.RawAddress,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
	})
	if err != nil {
		s.Log.Error("insert address", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to save address")
		return
	}
	writeData(w, http.StatusCreated, saved)
}

type updateAddressRequest struct {
	RawAddress *string  `json:"raw_address"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
}

func (s *Service) updateAddressHandler(w http.ResponseWriter, r *http.Request) {
	var req updateAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.RawAddress == nil && req.Latitude == nil && req.Longitude == nil {
		writeError(w, http.StatusBadRequest, "Nothing to update")
		return
	}
	if req.RawAddress != nil && strings.TrimSpace(*req.RawAddress) == "" {
		writeError(w, http.StatusBadRequest, "raw_address cannot be empty")
		return
	}

	profile, ok := s.Store.ProviderByUserID(userID(r))
	if !ok {
		writeError(w, http.StatusBadRequest, "Provider profile required")
		return
	}
	id := mux.Vars(r)["id"]
	if !ownsAddress(s.Store.AddressesByProvider(profile.ID), id) {
		writeError(w, http.StatusNotFound, "Address not found")
		return
	}

	updated, err := s.Store.UpdateAddress(id, store.AddressUpdate{
		RawAddress: req.RawAddress,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
	})
	if err != nil {
		s.Log.Error("update address", "address_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to update address")
		return
	}
	writeData(w, http.StatusOK, updated)
}

func ownsAddress(addrs []model.Address, id string) bool {
	for _, a := range addrs {
		if a.ID == id {
			return true
		}
	}
	return false
}

type createSettingRequest struct {
	Key   string `json:"key" validate:"required"`
	Value string `json:"value"`
}

func (s *Service) createSettingHandler(w http.ResponseWriter, r *http.Request) {
	var req createSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Key) == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}

	listing, ok := s.listingOwnedBy(w, r)
	if !ok {
		return
	}
	saved, err := s.Store.InsertSetting(model.ServiceSetting{
		ServiceID: listing.ID,
		Key:       req.Key,
		Value:     req.Value,
	})
	if err != nil {
		s.Log.Error("insert setting", "listing_id", listing.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to save setting")
		return
	}
	writeData(w, http.StatusCreated, saved)
}

func (s *Service) listSettingsHandler(w http.ResponseWriter, r *http.Request) {
	listing, ok := s.listingOwnedBy(w, r)
	if !ok {
		return
	}
	rows := s.Store.SettingsByListing(listing.ID)
	if rows == nil {
		rows = []model.ServiceSetting{}
	}
	writeData(w, http.StatusOK, rows)
}

// listingOwnedBy resolves the {id} path listing and checks it belongs to
// the caller's profile; on failure a response has already been written.
func (s *Service) listingOwnedBy(w http.ResponseWriter, r *http.Request) (model.ServiceListing, bool) {
	profile, ok := s.Store.ProviderByUserID(userID(r))
	if !ok {
		writeError(w, http.StatusBadRequest, "Provider profile required")
		return model.ServiceListing{}, false
	}
	listing, ok := s.Store.ListingByID(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "Service not found")
		return model.ServiceListing{}, false
	}
	if listing.ProviderID != profile.ID {
		writeError(w, http.StatusForbidden, "Not allowed")
		return model.ServiceListing{}, false
	}
	return listing, true
}
