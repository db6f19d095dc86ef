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
	"github.com/lubetrack/workshop-backend/internal/inventory"
	"github.com/lubetrack/workshop-backend/internal/models"
)

// PartHandler handles part SKU requests
type PartHandler struct {
	parts db.PartCollection
}

// NewPartHandler creates a new part handler
func NewPartHandler(parts db.PartCollection) *PartHandler {
	return &PartHandler{parts: parts}
}

// Create registers a new part SKU
func (h *PartHandler) Create(w http.ResponseWriter, r *http.Request) {
	var part models.Part
	if !decodeJSON(w, r, &part) {
		return
	}

	if part.Name == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}
	if part.Unit != "" && !models.IsValidPartUnit(part.Unit) {
		http.Error(w, "Invalid unit", http.StatusBadRequest)
		return
	}
	if part.UnitCost.IsNegative() || part.UnitPrice.IsNegative() {
		http.Error(w, "Prices cannot be negative", http.StatusBadRequest)
		return
	}
	if part.Stock < 0 || part.MinStock < 0 {
		http.Error(w, "Stock cannot be negative", http.StatusBadRequest)
		return
	}
	if part.MinStock == 0 {
		part.MinStock = 5
	}

	part.ID = primitive.NewObjectID()
	part.Active = true
	part.CreatedAt = time.Now()
	part.UpdatedAt = time.Now()

	if err := h.parts.InsertPart(r.Context(), part); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, part)
}

// Get returns a single part SKU
func (h *PartHandler) Get(w http.ResponseWriter, r *http.Request) {
	part, err := h.parts.FindPartByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, part)
}

// List returns part SKUs, optionally searched by name or brand
func (h *PartHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if q := r.URL.Query().Get("q"); q != "" {
		regex := bson.M{"$regex": q, "$options": "i"}
		filter["$or"] = []bson.M{{"name": regex}, {"brand": regex}}
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

	total, err := h.parts.CountParts(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetSkip(int64((page - 1) * perPage)).
		SetLimit(int64(perPage))

	cursor, err := h.parts.FindParts(r.Context(), filter, findOpts)
	if err != nil {
		writeError(w, err)
		return
	}
	defer cursor.Close(r.Context())

	items := []models.Part{}
	if err := cursor.All(r.Context(), &items); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.PartPage{
		Total: total,
		Page:  page,
		Pages: pageCount(total, perPage),
		Items: items,
	})
}

// Update applies a partial update to a part SKU. Stock only moves
// through the stock endpoint.
func (h *PartHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch struct {
		Name      *string          `json:"name"`
		Brand     *string          `json:"brand"`
		Unit      *string          `json:"unit"`
		UnitCost  *decimal.Decimal `json:"unit_cost"`
		UnitPrice *decimal.Decimal `json:"unit_price"`
		MinStock  *int64           `json:"min_stock"`
		Active    *bool            `json:"active"`
		Notes     *string          `json:"notes"`
	}
	if !decodeJSON(w, r, &patch) {
		return
	}

	id := r.PathValue("id")
	part, err := h.parts.FindPartByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	if patch.Name != nil {
		if *patch.Name == "" {
			http.Error(w, "Name is required", http.StatusBadRequest)
			return
		}
		part.Name = *patch.Name
	}
	if patch.Brand != nil {
		part.Brand = *patch.Brand
	}
	if patch.Unit != nil {
		if *patch.Unit != "" && !models.IsValidPartUnit(*patch.Unit) {
			http.Error(w, "Invalid unit", http.StatusBadRequest)
			return
		}
		part.Unit = *patch.Unit
	}
	if patch.UnitCost != nil {
		if patch.UnitCost.IsNegative() {
			http.Error(w, "Prices cannot be negative", http.StatusBadRequest)
			return
		}
		part.UnitCost = *patch.UnitCost
	}
	if patch.UnitPrice != nil {
		if patch.UnitPrice.IsNegative() {
			http.Error(w, "Prices cannot be negative", http.StatusBadRequest)
			return
		}
		part.UnitPrice = *patch.UnitPrice
	}
	if patch.MinStock != nil {
		if *patch.MinStock < 0 {
			http.Error(w, "Stock cannot be negative", http.StatusBadRequest)
			return
		}
		part.MinStock = *patch.MinStock
	}
	if patch.Active != nil {
		part.Active = *patch.Active
	}
	if patch.Notes != nil {
		part.Notes = *patch.Notes
	}

	if err := h.parts.UpdatePart(r.Context(), id, *part); err != nil {
		writeError(w, err)
		return
	}

	part.UpdatedAt = time.Now()
	writeJSON(w, http.StatusOK, part)
}

// AdjustStock adds units to or removes units from a part's stock.
// Removal fails when stock is insufficient.
func (h *PartHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Op       string `json:"op"`
		Quantity int64  `json:"quantity"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Quantity <= 0 {
		http.Error(w, "Quantity must be positive", http.StatusBadRequest)
		return
	}

	id := r.PathValue("id")
	part, err := h.parts.FindPartByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	switch req.Op {
	case "add":
		inventory.ReleasePart(part, req.Quantity)
	case "remove":
		if err := inventory.ReservePart(part, req.Quantity); err != nil {
			writeError(w, err)
			return
		}
	default:
		http.Error(w, "Op must be add or remove", http.StatusBadRequest)
		return
	}

	if err := h.parts.UpdatePartStock(r.Context(), id, part.Stock); err != nil {
		writeError(w, err)
		return
	}

	part.UpdatedAt = time.Now()
	writeJSON(w, http.StatusOK, part)
}

// LowStock returns active parts below their minimum stock
func (h *PartHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	parts, err := h.parts.FindLowStockParts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if parts == nil {
		parts = []models.Part{}
	}

	writeJSON(w, http.StatusOK, parts)
}

// Delete deactivates a part SKU. Existing records keep referencing it.
func (h *PartHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	part, err := h.parts.FindPartByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	part.Active = false
	if err := h.parts.UpdatePart(r.Context(), id, *part); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
