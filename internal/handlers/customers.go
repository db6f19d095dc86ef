package handlers

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lubetrack/workshop-backend/internal/db"
	"github.com/lubetrack/workshop-backend/internal/models"
)

// CustomerHandler handles customer CRUD requests
type CustomerHandler struct {
	customers db.CustomerCollection
	vehicles  db.VehicleCollection
	tx        db.TxRunner
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customers db.CustomerCollection, vehicles db.VehicleCollection, tx db.TxRunner) *CustomerHandler {
	return &CustomerHandler{
		customers: customers,
		vehicles:  vehicles,
		tx:        tx,
	}
}

// Create registers a new customer
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var customer models.Customer
	if !decodeJSON(w, r, &customer) {
		return
	}

	if customer.Name == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}

	// Tax ids are unique across customers when set
	if customer.TaxID != "" {
		_, err := h.customers.FindCustomerByTaxID(r.Context(), customer.TaxID)
		if err == nil {
			http.Error(w, "Tax id already registered", http.StatusConflict)
			return
		}
	}

	customer.ID = primitive.NewObjectID()
	customer.CreatedAt = time.Now()
	customer.UpdatedAt = time.Now()

	if err := h.customers.InsertCustomer(r.Context(), customer); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, customer)
}

// Get returns a single customer
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	customer, err := h.customers.FindCustomerByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, customer)
}

// List returns customers, optionally filtered by a name or tax id search
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if q := r.URL.Query().Get("q"); q != "" {
		regex := bson.M{"$regex": q, "$options": "i"}
		filter["$or"] = []bson.M{{"name": regex}, {"tax_id": regex}}
	}

	page, perPage := parsePagination(r)

	total, err := h.customers.CountCustomers(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetSkip(int64((page - 1) * perPage)).
		SetLimit(int64(perPage))

	cursor, err := h.customers.FindCustomers(r.Context(), filter, findOpts)
	if err != nil {
		writeError(w, err)
		return
	}
	defer cursor.Close(r.Context())

	items := []models.Customer{}
	if err := cursor.All(r.Context(), &items); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.CustomerPage{
		Total: total,
		Page:  page,
		Pages: pageCount(total, perPage),
		Items: items,
	})
}

// Update applies a partial update to a customer
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch struct {
		Name  *string `json:"name"`
		TaxID *string `json:"tax_id"`
		Phone *string `json:"phone"`
		Email *string `json:"email"`
		Notes *string `json:"notes"`
	}
	if !decodeJSON(w, r, &patch) {
		return
	}

	id := r.PathValue("id")
	customer, err := h.customers.FindCustomerByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	if patch.Name != nil {
		if *patch.Name == "" {
			http.Error(w, "Name is required", http.StatusBadRequest)
			return
		}
		customer.Name = *patch.Name
	}
	if patch.TaxID != nil && *patch.TaxID != customer.TaxID {
		if *patch.TaxID != "" {
			existing, err := h.customers.FindCustomerByTaxID(r.Context(), *patch.TaxID)
			if err == nil && existing.ID != customer.ID {
				http.Error(w, "Tax id already registered", http.StatusConflict)
				return
			}
		}
		customer.TaxID = *patch.TaxID
	}
	if patch.Phone != nil {
		customer.Phone = *patch.Phone
	}
	if patch.Email != nil {
		customer.Email = *patch.Email
	}
	if patch.Notes != nil {
		customer.Notes = *patch.Notes
	}

	if err := h.customers.UpdateCustomer(r.Context(), id, *customer); err != nil {
		writeError(w, err)
		return
	}

	customer.UpdatedAt = time.Now()
	writeJSON(w, http.StatusOK, customer)
}

// Delete removes a customer and every vehicle they own, atomically
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := h.tx.RunTransaction(r.Context(), func(ctx context.Context) error {
		customer, err := h.customers.FindCustomerByID(ctx, id)
		if err != nil {
			return err
		}

		removed, err := h.vehicles.DeleteVehiclesByCustomer(ctx, customer.ID)
		if err != nil {
			return err
		}
		if removed > 0 {
			log.WithFields(log.Fields{
				"customer_id": id,
				"vehicles":    removed,
			}).Info("Removed customer vehicles")
		}

		return h.customers.DeleteCustomer(ctx, id)
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
