package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lubetrack/workshop-backend/internal/db"
	"github.com/lubetrack/workshop-backend/internal/models"
	"github.com/lubetrack/workshop-backend/internal/workshop"
)

// VehicleHandler handles vehicle CRUD requests
type VehicleHandler struct {
	vehicles  db.VehicleCollection
	customers db.CustomerCollection
	workshop  workshop.Service
}

// NewVehicleHandler creates a new vehicle handler
func NewVehicleHandler(vehicles db.VehicleCollection, customers db.CustomerCollection, workshopService workshop.Service) *VehicleHandler {
	return &VehicleHandler{
		vehicles:  vehicles,
		customers: customers,
		workshop:  workshopService,
	}
}

// Create registers a new vehicle under an existing customer
func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var vehicle models.Vehicle
	if !decodeJSON(w, r, &vehicle) {
		return
	}

	if vehicle.Plate == "" {
		http.Error(w, "Plate is required", http.StatusBadRequest)
		return
	}
	if vehicle.Make == "" || vehicle.Model == "" {
		http.Error(w, "Make and model are required", http.StatusBadRequest)
		return
	}
	if vehicle.CustomerID.IsZero() {
		http.Error(w, "Customer id is required", http.StatusBadRequest)
		return
	}
	if vehicle.Year != 0 && (vehicle.Year < 1900 || vehicle.Year > time.Now().Year()+1) {
		http.Error(w, "Invalid year", http.StatusBadRequest)
		return
	}
	if vehicle.Transmission != "" && !models.IsValidTransmission(vehicle.Transmission) {
		http.Error(w, "Invalid transmission", http.StatusBadRequest)
		return
	}
	if vehicle.CurrentKM < 0 {
		http.Error(w, "Odometer cannot be negative", http.StatusBadRequest)
		return
	}

	if _, err := h.customers.FindCustomerByID(r.Context(), vehicle.CustomerID.Hex()); err != nil {
		writeError(w, err)
		return
	}

	vehicle.Plate = strings.ToUpper(vehicle.Plate)
	_, err := h.vehicles.FindVehicleByPlate(r.Context(), vehicle.Plate)
	if err == nil {
		http.Error(w, "Plate already registered", http.StatusConflict)
		return
	}

	vehicle.ID = primitive.NewObjectID()
	vehicle.Active = true
	vehicle.CreatedAt = time.Now()
	vehicle.UpdatedAt = time.Now()

	if err := h.vehicles.InsertVehicle(r.Context(), vehicle); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, vehicle)
}

// Get returns a single vehicle
func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	vehicle, err := h.vehicles.FindVehicleByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, vehicle)
}

// List returns vehicles filtered by owner, plate search, or active flag
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if customerID := r.URL.Query().Get("customer_id"); customerID != "" {
		oid, err := primitive.ObjectIDFromHex(customerID)
		if err != nil {
			writeError(w, fmt.Errorf("customer id %q: %w", customerID, models.ErrValidation))
			return
		}
		filter["customer_id"] = oid
	}
	if plate := r.URL.Query().Get("plate"); plate != "" {
		filter["plate"] = bson.M{"$regex": strings.ToUpper(plate), "$options": "i"}
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

	total, err := h.vehicles.CountVehicles(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "plate", Value: 1}}).
		SetSkip(int64((page - 1) * perPage)).
		SetLimit(int64(perPage))

	cursor, err := h.vehicles.FindVehicles(r.Context(), filter, findOpts)
	if err != nil {
		writeError(w, err)
		return
	}
	defer cursor.Close(r.Context())

	items := []models.Vehicle{}
	if err := cursor.All(r.Context(), &items); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.VehiclePage{
		Total: total,
		Page:  page,
		Pages: pageCount(total, perPage),
		Items: items,
	})
}

// Update applies a partial update to a vehicle
func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch struct {
		CustomerID   *string `json:"customer_id"`
		Plate        *string `json:"plate"`
		Make         *string `json:"make"`
		Model        *string `json:"model"`
		Year         *int    `json:"year"`
		Transmission *string `json:"transmission"`
		Color        *string `json:"color"`
		Notes        *string `json:"notes"`
	}
	if !decodeJSON(w, r, &patch) {
		return
	}

	id := r.PathValue("id")
	vehicle, err := h.vehicles.FindVehicleByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	if patch.CustomerID != nil {
		customer, err := h.customers.FindCustomerByID(r.Context(), *patch.CustomerID)
		if err != nil {
			writeError(w, err)
			return
		}
		vehicle.CustomerID = customer.ID
	}
	if patch.Plate != nil {
		plate := strings.ToUpper(*patch.Plate)
		if plate == "" {
			http.Error(w, "Plate is required", http.StatusBadRequest)
			return
		}
		if plate != vehicle.Plate {
			existing, err := h.vehicles.FindVehicleByPlate(r.Context(), plate)
			if err == nil && existing.ID != vehicle.ID {
				http.Error(w, "Plate already registered", http.StatusConflict)
				return
			}
			vehicle.Plate = plate
		}
	}
	if patch.Make != nil {
		vehicle.Make = *patch.Make
	}
	if patch.Model != nil {
		vehicle.Model = *patch.Model
	}
	if patch.Year != nil {
		if *patch.Year != 0 && (*patch.Year < 1900 || *patch.Year > time.Now().Year()+1) {
			http.Error(w, "Invalid year", http.StatusBadRequest)
			return
		}
		vehicle.Year = *patch.Year
	}
	if patch.Transmission != nil {
		if *patch.Transmission != "" && !models.IsValidTransmission(*patch.Transmission) {
			http.Error(w, "Invalid transmission", http.StatusBadRequest)
			return
		}
		vehicle.Transmission = *patch.Transmission
	}
	if patch.Color != nil {
		vehicle.Color = *patch.Color
	}
	if patch.Notes != nil {
		vehicle.Notes = *patch.Notes
	}

	if err := h.vehicles.UpdateVehicle(r.Context(), id, *vehicle); err != nil {
		writeError(w, err)
		return
	}

	vehicle.UpdatedAt = time.Now()
	writeJSON(w, http.StatusOK, vehicle)
}

// UpdateOdometer sets a vehicle's odometer. Readings never decrease.
func (h *VehicleHandler) UpdateOdometer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentKM int64 `json:"current_km"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	id := r.PathValue("id")
	vehicle, err := h.vehicles.FindVehicleByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	if req.CurrentKM < vehicle.CurrentKM {
		writeError(w, fmt.Errorf("odometer %d below current %d: %w",
			req.CurrentKM, vehicle.CurrentKM, models.ErrInvalidOdometer))
		return
	}

	if err := h.vehicles.UpdateVehicleOdometer(r.Context(), id, req.CurrentKM); err != nil {
		writeError(w, err)
		return
	}

	vehicle.CurrentKM = req.CurrentKM
	vehicle.UpdatedAt = time.Now()
	writeJSON(w, http.StatusOK, vehicle)
}

// Delete deactivates a vehicle. History stays; the predictor and new
// service records stop seeing it.
func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	vehicle, err := h.vehicles.FindVehicleByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	vehicle.Active = false
	if err := h.vehicles.UpdateVehicle(r.Context(), id, *vehicle); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ServiceRecords returns the vehicle's service history, newest first
func (h *VehicleHandler) ServiceRecords(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.vehicles.FindVehicleByID(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	page, perPage := parsePagination(r)
	result, err := h.workshop.ListServiceRecords(r.Context(), workshop.ListOptions{
		VehicleID: id,
		Page:      page,
		PerPage:   perPage,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
