package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lubetrack/workshop-backend/internal/db"
	"github.com/lubetrack/workshop-backend/internal/models"
)

// ServiceTypeHandler handles labor catalog requests
type ServiceTypeHandler struct {
	types db.ServiceTypeCollection
}

// NewServiceTypeHandler creates a new service type handler
func NewServiceTypeHandler(types db.ServiceTypeCollection) *ServiceTypeHandler {
	return &ServiceTypeHandler{types: types}
}

// Create registers a new service type
func (h *ServiceTypeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var st models.ServiceType
	if !decodeJSON(w, r, &st) {
		return
	}

	if st.Name == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}
	if st.BasePrice.IsNegative() {
		http.Error(w, "Base price cannot be negative", http.StatusBadRequest)
		return
	}

	st.ID = primitive.NewObjectID()
	st.Active = true
	st.CreatedAt = time.Now()
	st.UpdatedAt = time.Now()

	if err := h.types.InsertServiceType(r.Context(), st); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, st)
}

// Get returns a single service type
func (h *ServiceTypeHandler) Get(w http.ResponseWriter, r *http.Request) {
	st, err := h.types.FindServiceTypeByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, st)
}

// List returns service types, optionally searched by name
func (h *ServiceTypeHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if q := r.URL.Query().Get("q"); q != "" {
		filter["name"] = bson.M{"$regex": q, "$options": "i"}
	}
	if active := r.URL.Query().Get("active"); active != "" {
		parsed, err := strconv.ParseBool(active)
		if err != nil {
			http.Error(w, "Invalid active flag", http.StatusBadRequest)
			return
		}
		filter["active"] = parsed
	}

	page, perPage := parsePagination(r)

	total, err := h.types.CountServiceTypes(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetSkip(int64((page - 1) * perPage)).
		SetLimit(int64(perPage))

	cursor, err := h.types.FindServiceTypes(r.Context(), filter, findOpts)
	if err != nil {
		writeError(w, err)
		return
	}
	defer cursor.Close(r.Context())

	items := []models.ServiceType{}
	if err := cursor.All(r.Context(), &items); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ServiceTypePage{
		Total: total,
		Page:  page,
		Pages: pageCount(total, perPage),
		Items: items,
	})
}

// Update applies a partial update to a service type
func (h *ServiceTypeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch struct {
		Name        *string          `json:"name"`
		Description *string          `json:"description"`
		BasePrice   *decimal.Decimal `json:"base_price"`
		Active      *bool            `json:"active"`
	}
	if !decodeJSON(w, r, &patch) {
		return
	}

	id := r.PathValue("id")
	st, err := h.types.FindServiceTypeByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	if patch.Name != nil {
		if *patch.Name == "" {
			http.Error(w, "Name is required", http.StatusBadRequest)
			return
		}
		st.Name = *patch.Name
	}
	if patch.Description != nil {
		st.Description = *patch.Description
	}
	if patch.BasePrice != nil {
		if patch.BasePrice.IsNegative() {
			http.Error(w, "Base price cannot be negative", http.StatusBadRequest)
			return
		}
		st.BasePrice = *patch.BasePrice
	}
	if patch.Active != nil {
		st.Active = *patch.Active
	}

	if err := h.types.UpdateServiceType(r.Context(), id, *st); err != nil {
		writeError(w, err)
		return
	}

	st.UpdatedAt = time.Now()
	writeJSON(w, http.StatusOK, st)
}

// Delete deactivates a service type
func (h *ServiceTypeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	st, err := h.types.FindServiceTypeByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	st.Active = false
	if err := h.types.UpdateServiceType(r.Context(), id, *st); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
