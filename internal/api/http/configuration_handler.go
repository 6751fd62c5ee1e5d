package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"librental-backend/internal/domain"
	"librental-backend/internal/service"
)

// ConfigurationHandler serves the business configuration. Reads are open to
// any staff; updates require the admin role (enforced by routing).
type ConfigurationHandler struct {
	configuration service.ConfigurationService
}

func NewConfigurationHandler(configuration service.ConfigurationService) *ConfigurationHandler {
	return &ConfigurationHandler{configuration: configuration}
}

func (h *ConfigurationHandler) Get(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.configuration.GetCurrent(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *ConfigurationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var cfg domain.Configuration
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	actorID := ""
	if claims := ClaimsFromContext(r.Context()); claims != nil {
		actorID = strconv.Itoa(int(claims.UserID))
	}

	updated, err := h.configuration.Update(r.Context(), &cfg, actorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// InvalidateCache forces the next read to hit the database. Useful after
// an out-of-band change to the configurations table.
func (h *ConfigurationHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	h.configuration.InvalidateCache()
	writeJSON(w, http.StatusNoContent, nil)
}
