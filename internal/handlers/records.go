package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/lubetrack/workshop-backend/internal/middleware"
	"github.com/lubetrack/workshop-backend/internal/workshop"
)

const (
	defaultAlertDays = 30
	defaultAlertKM   = 1000
)

// RecordHandler handles service record requests
type RecordHandler struct {
	workshop workshop.Service
}

// NewRecordHandler creates a new service record handler
func NewRecordHandler(workshopService workshop.Service) *RecordHandler {
	return &RecordHandler{workshop: workshopService}
}

// Create opens a new service record. The authenticated user is recorded
// as the performer.
func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input workshop.CreateServiceRecordInput
	if !decodeJSON(w, r, &input) {
		return
	}

	performedBy := ""
	if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
		performedBy = claims.UserID
	}

	detail, err := h.workshop.CreateServiceRecord(r.Context(), input, performedBy)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, detail)
}

// Get returns a record with its vehicle and oil resolved
func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.workshop.GetServiceRecord(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// List returns records newest first, filtered by vehicle, oil, or date range
func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := workshop.ListOptions{
		VehicleID: r.URL.Query().Get("vehicle_id"),
		OilID:     r.URL.Query().Get("oil_id"),
	}

	if from := r.URL.Query().Get("from"); from != "" {
		t, err := parseDate(from)
		if err != nil {
			http.Error(w, "Invalid from date", http.StatusBadRequest)
			return
		}
		opts.From = &t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := parseDate(to)
		if err != nil {
			http.Error(w, "Invalid to date", http.StatusBadRequest)
			return
		}
		opts.To = &t
	}

	opts.Page, opts.PerPage = parsePagination(r)

	result, err := h.workshop.ListServiceRecords(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Update applies a partial update to a record and reprices it
func (h *RecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch workshop.ServiceRecordPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	detail, err := h.workshop.UpdateServiceRecord(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// Delete removes a record and returns its stock
func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.workshop.DeleteServiceRecord(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Upcoming returns vehicles whose next service falls inside the window
func (h *RecordHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	days := defaultAlertDays
	if v := r.URL.Query().Get("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			http.Error(w, "Invalid days window", http.StatusBadRequest)
			return
		}
		days = parsed
	}

	km := int64(defaultAlertKM)
	if v := r.URL.Query().Get("km"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil || parsed < 0 {
			http.Error(w, "Invalid km window", http.StatusBadRequest)
			return
		}
		km = parsed
	}

	alerts, err := h.workshop.UpcomingMaintenance(r.Context(), days, km)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, alerts)
}

// Stats returns the revenue rollup for an optional date range
func (h *RecordHandler) Stats(w http.ResponseWriter, r *http.Request) {
	var from, to *time.Time
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			http.Error(w, "Invalid from date", http.StatusBadRequest)
			return
		}
		from = &t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			http.Error(w, "Invalid to date", http.StatusBadRequest)
			return
		}
		to = &t
	}

	stats, err := h.workshop.Statistics(r.Context(), from, to)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
