package httpapi

import (
	"net/http"
	"strconv"

	"providerhub-backend/internal/model"
	"providerhub-backend/internal/trust"
)

type listingStats struct {
	model.ServiceListing
	Views     int `json:"views"`
	Inquiries int `json:"inquiries"`
	Bookings  int `json:"bookings"`
}

type dashboardResponse struct {
	Profile           model.Provider `json:"profile"`
	Trust             trust.Result   `json:"trust"`
	ProfileCompletion int            `json:"profile_completion"`
	MissingFields     []string       `json:"missing_fields"`
	Services          []listingStats `json:"services"`
}

func (s *Service) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	profile, ok := s.Store.ProviderByUserID(userID(r))
	if !ok {
		writeError(w, http.StatusNotFound, "Provider profile not found")
		return
	}

	listings := s.Store.ListingsByProvider(profile.ID)

	// Engagement counters are not collected yet, so every listing reports
	// zeros rather than omitting the fields clients already read.
	services := make([]listingStats, 0, len(listings))
	for _, l := range listings {
		services = append(services, listingStats{ServiceListing: l})
	}

	completion, missing := profileCompletion(s, profile, listings)
	writeData(w, http.StatusOK, dashboardResponse{
		Profile:           profile,
		Trust:             trust.Compute(profile, s.trustContext(listings)),
		ProfileCompletion: completion,
		MissingFields:     missing,
		Services:          services,
	})
}

// trustContext pulls moderation-adjacent signals out of listing settings:
// "incidents" and "response_rate" keys when present, a neutral response
// rate otherwise.
func (s *Service) trustContext(listings []model.ServiceListing) trust.Context {
	ctx := trust.Context{ResponseRate: 0.5}
	for _, l := range listings {
		for _, set := range s.Store.SettingsByListing(l.ID) {
			switch set.Key {
			case "incidents":
				if n, err := strconv.Atoi(set.Value); err == nil {
					ctx.Incidents += n
				}
			case "response_rate":
				if v, err := strconv.ParseFloat(set.Value, 64); err == nil {
					ctx.ResponseRate = v
				}
			}
		}
	}
	return ctx
}

// profileCompletion scores four onboarding steps equally: an address on
// file, a meaningful service description, a declared service mode, and a
// contact phone.
func profileCompletion(s *Service, p model.Provider, listings []model.ServiceListing) (int, []string) {
	missing := []string{}

	if len(s.Store.AddressesByProvider(p.ID)) == 0 {
		missing = append(missing, "address")
	}

	described := false
	modeSet := false
	for _, l := range listings {
		if len(l.ServiceDescription) > 10 {
			described = true
		}
		if l.ServiceMode != "" {
			modeSet = true
		}
	}
	if !described {
		missing = append(missing, "service_description")
	}
	if !modeSet {
		missing = append(missing, "service_mode")
	}

	phone := false
	for _, l := range listings {
		for _, set := range s.Store.SettingsByListing(l.ID) {
			if set.Key == "phone" && set.Value != "" {
				phone = true
			}
		}
	}
	if !phone {
		missing = append(missing, "phone")
	}

	return (4 - len(missing)) * 100 / 4, missing
}
