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

// OilHandler handles oil SKU requests
type OilHandler struct {
	oils db.OilCollection
}

// NewOilHandler creates a new oil handler
func NewOilHandler(oils db.OilCollection) *OilHandler {
	return &OilHandler{oils: oils}
}

// Create registers a new oil SKU
func (h *OilHandler) Create(w http.ResponseWriter, r *http.Request) {
	var oil models.Oil
	if !decodeJSON(w, r, &oil) {
		return
	}

	if oil.Name == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}
	if oil.OilType != "" && !models.IsValidOilType(oil.OilType) {
		http.Error(w, "Invalid oil type", http.StatusBadRequest)
		return
	}
	if oil.UnitCost.IsNegative() || oil.UnitPrice.IsNegative() {
		http.Error(w, "Prices cannot be negative", http.StatusBadRequest)
		return
	}
	if oil.StockLiters.IsNegative() || oil.MinStockLiters.IsNegative() {
		http.Error(w, "Stock cannot be negative", http.StatusBadRequest)
		return
	}
	if oil.MinStockLiters.IsZero() {
		oil.MinStockLiters = decimal.NewFromInt(5)
	}

	oil.ID = primitive.NewObjectID()
	oil.Active = true
	oil.CreatedAt = time.Now()
	oil.UpdatedAt = time.Now()

	if err := h.oils.InsertOil(r.Context(), oil); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, oil)
}

// Get returns a single oil SKU
func (h *OilHandler) Get(w http.ResponseWriter, r *http.Request) {
	oil, err := h.oils.FindOilByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, oil)
}

// List returns oil SKUs, optionally searched by name or brand
func (h *OilHandler) List(w http.ResponseWriter, r *http.Request) {
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

	total, err := h.oils.CountOils(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetSkip(int64((page - 1) * perPage)).
		SetLimit(int64(perPage))

	cursor, err := h.oils.FindOils(r.Context(), filter, findOpts)
	if err != nil {
		writeError(w, err)
		return
	}
	defer cursor.Close(r.Context())

	items := []models.Oil{}
	if err := cursor.All(r.Context(), &items); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.OilPage{
		Total: total,
		Page:  page,
		Pages: pageCount(total, perPage),
		Items: items,
	})
}

// Update applies a partial update to an oil SKU. Stock only moves
// through the stock endpoint.
func (h *OilHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch struct {
		Name           *string          `json:"name"`
		Brand          *string          `json:"brand"`
		Viscosity      *string          `json:"viscosity"`
		OilType        *string          `json:"oil_type"`
		UnitCost       *decimal.Decimal `json:"unit_cost"`
		UnitPrice      *decimal.Decimal `json:"unit_price"`
		MinStockLiters *decimal.Decimal `json:"min_stock_liters"`
		Active         *bool            `json:"active"`
		Notes          *string          `json:"notes"`
	}
	if !decodeJSON(w, r, &patch) {
		return
	}

	id := r.PathValue("id")
	oil, err := h.oils.FindOilByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	if patch.Name != nil {
		if *patch.Name == "" {
			http.Error(w, "Name is required", http.StatusBadRequest)
			return
		}
		oil.Name = *patch.Name
	}
	if patch.Brand != nil {
		oil.Brand = *patch.Brand
	}
	if patch.Viscosity != nil {
		oil.Viscosity = *patch.Viscosity
	}
	if patch.OilType != nil {
		if *patch.OilType != "" && !models.IsValidOilType(*patch.OilType) {
			http.Error(w, "Invalid oil type", http.StatusBadRequest)
			return
		}
		oil.OilType = *patch.OilType
	}
	if patch.UnitCost != nil {
		if patch.UnitCost.IsNegative() {
			http.Error(w, "Prices cannot be negative", http.StatusBadRequest)
			return
		}
		oil.UnitCost = *patch.UnitCost
	}
	if patch.UnitPrice != nil {
		if patch.UnitPrice.IsNegative() {
			http.Error(w, "Prices cannot be negative", http.StatusBadRequest)
			return
		}
		oil.UnitPrice = *patch.UnitPrice
	}
	if patch.MinStockLiters != nil {
		if patch.MinStockLiters.IsNegative() {
			http.Error(w, "Stock cannot be negative", http.StatusBadRequest)
			return
		}
		oil.MinStockLiters = *patch.MinStockLiters
	}
	if patch.Active != nil {
		oil.Active = *patch.Active
	}
	if patch.Notes != nil {
		oil.Notes = *patch.Notes
	}

	if err := h.oils.UpdateOil(r.Context(), id, *oil); err != nil {
		writeError(w, err)
		return
	}

	oil.UpdatedAt = time.Now()
	writeJSON(w, http.StatusOK, oil)
}

// AdjustStock adds liters to or removes liters from an oil's stock.
// Removal fails when stock is insufficient.
func (h *OilHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Op     string          `json:"op"`
		Liters decimal.Decimal `json:"liters"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if !req.Liters.IsPositive() {
		http.Error(w, "Liters must be positive", http.StatusBadRequest)
		return
	}

	id := r.PathValue("id")
	oil, err := h.oils.FindOilByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	switch req.Op {
	case "add":
		inventory.ReleaseOil(oil, req.Liters)
	case "remove":
		if err := inventory.ReserveOil(oil, req.Liters); err != nil {
			writeError(w, err)
			return
		}
	default:
		http.Error(w, "Op must be add or remove", http.StatusBadRequest)
		return
	}

	if err := h.oils.UpdateOilStock(r.Context(), id, oil.StockLiters); err != nil {
		writeError(w, err)
		return
	}

	oil.UpdatedAt = time.Now()
	writeJSON(w, http.StatusOK, oil)
}

// LowStock returns active oils below their minimum stock
func (h *OilHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	oils, err := h.oils.FindLowStockOils(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if oils == nil {
		oils = []models.Oil{}
	}

	writeJSON(w, http.StatusOK, oils)
}

// Delete deactivates an oil SKU. Existing records keep referencing it.
func (h *OilHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	oil, err := h.oils.FindOilByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	oil.Active = false
	if err := h.oils.UpdateOil(r.Context(), id, *oil); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
