package handlers

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/lubetrack/workshop-backend/internal/fipe"
)

// CatalogHandler proxies the FIPE vehicle catalog
type CatalogHandler struct {
	fipe *fipe.Client
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(client *fipe.Client) *CatalogHandler {
	return &CatalogHandler{fipe: client}
}

// Brands lists car brands
func (h *CatalogHandler) Brands(w http.ResponseWriter, r *http.Request) {
	items, err := h.fipe.Brands(r.Context())
	if err != nil {
		log.WithError(err).Error("FIPE brands lookup failed")
		http.Error(w, "Vehicle catalog unavailable", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// Models lists models for a brand
func (h *CatalogHandler) Models(w http.ResponseWriter, r *http.Request) {
	brand := r.PathValue("brand")
	items, err := h.fipe.Models(r.Context(), brand)
	if err != nil {
		log.WithError(err).WithField("brand", brand).Error("FIPE models lookup failed")
		http.Error(w, "Vehicle catalog unavailable", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// Years lists model years for a brand and model
func (h *CatalogHandler) Years(w http.ResponseWriter, r *http.Request) {
	brand := r.PathValue("brand")
	model := r.PathValue("model")
	items, err := h.fipe.Years(r.Context(), brand, model)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"brand": brand,
			"model": model,
		}).Error("FIPE years lookup failed")
		http.Error(w, "Vehicle catalog unavailable", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, items)
}
