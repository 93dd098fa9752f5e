// Package httpapi is the HTTP surface of the provider service: provider
// and listing CRUD, address and settings management, bulk catalog import,
// and the discovery search endpoint.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"providerhub-backend/internal/logging"
	"providerhub-backend/internal/moderation"
	"providerhub-backend/internal/search"
	"providerhub-backend/internal/store"
)

// validate checks request payloads against struct tags.
var validate = validator.New()

type ctxKey int

const userIDKey ctxKey = iota

// Service bundles the dependencies of all handlers.
type Service struct {
	Store         *store.Store
	Engine        *search.Engine
	Log           *logging.Logger
	Broker        string
	Moderation    *moderation.Service
	RejectionsDir string
}

// RegisterRoutes wires all provider API routes.
func (s *Service) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.requireAuth)

	api.HandleFunc("/service-categories", s.categoriesHandler).Methods(http.MethodGet)

	api.HandleFunc("/provider/profile", s.createProfileHandler).Methods(http.MethodPost)
	api.HandleFunc("/provider/profile/me", s.myProfileHandler).Methods(http.MethodGet)
	api.HandleFunc("/provider/dashboard", s.dashboardHandler).Methods(http.MethodGet)

	api.HandleFunc("/provider/services", s.createListingHandler).Methods(http.MethodPost)
	api.HandleFunc("/provider/services/me", s.myListingsHandler).Methods(http.MethodGet)
	api.HandleFunc("/provider/services/{id}", s.updateListingHandler).Methods(http.MethodPut)
	api.HandleFunc("/provider/services/{id}/settings", s.createSettingHandler).Methods(http.MethodPost)
	api.HandleFunc("/provider/services/{id}/settings", s.listSettingsHandler).Methods(http.MethodGet)

	api.HandleFunc("/provider/addresses", s.createAddressHandler).Methods(http.MethodPost)
	api.HandleFunc("/provider/addresses/{id}", s.updateAddressHandler).Methods(http.MethodPut)

	api.HandleFunc("/services/search", s.searchHandler).Methods(http.MethodGet)

	api.HandleFunc("/catalog/import", s.importHandler).Methods(http.MethodPost)
}

// requireAuth trusts the gateway-set X-User-ID header, with a fixed dev
// token fallback for local use.
func (s *Service) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-ID")
		if userID == "" && r.Header.Get("Authorization") == "Bearer dev-token" {
			userID = "dev-user"
		}
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

func userID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

func (s *Service) healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "provider"})
}

func (s *Service) categoriesHandler(w http.ResponseWriter, r *http.Request) {
	rows := s.Store.Categories(r.URL.Query().Get("parent_id"))
	writeData(w, http.StatusOK, rows)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeData wraps a payload in the success envelope.
func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{"success": true, "data": data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

func nowRFC3339() string { return time.Now().UTC().Format(time.RFC3339Nano) }
