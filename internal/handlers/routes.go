package handlers

import (
	"net/http"

	"github.com/lubetrack/workshop-backend/internal/middleware"
	"github.com/lubetrack/workshop-backend/internal/models"
)

// RouterConfig carries every handler the API mounts plus the auth
// middleware used for per-route gates.
type RouterConfig struct {
	Auth         *AuthHandler
	Customers    *CustomerHandler
	Vehicles     *VehicleHandler
	Oils         *OilHandler
	Parts        *PartHandler
	ServiceTypes *ServiceTypeHandler
	Records      *RecordHandler
	Catalog      *CatalogHandler
	Guard        *middleware.AuthMiddleware
}

// NewRouter builds the API route table. Method and path matching is the
// mux's job; role and permission gates wrap individual routes. Reads are
// open to any authenticated user unless the permission matrix says
// otherwise; catalog SKU management is manager-only.
func NewRouter(cfg RouterConfig) *http.ServeMux {
	perm := func(action string, h http.HandlerFunc) http.Handler {
		return cfg.Guard.RequirePermission(action)(h)
	}
	manager := func(h http.HandlerFunc) http.Handler {
		return cfg.Guard.RequireRole(models.RoleManager)(h)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", Health)

	mux.HandleFunc("POST /api/v1/auth/login", cfg.Auth.Login)
	mux.HandleFunc("POST /api/v1/auth/register", cfg.Auth.Register)
	mux.HandleFunc("GET /api/v1/auth/profile", cfg.Auth.GetProfile)
	mux.HandleFunc("PUT /api/v1/auth/profile", cfg.Auth.UpdateProfile)
	mux.HandleFunc("POST /api/v1/auth/change-password", cfg.Auth.ChangePassword)

	mux.Handle("POST /api/v1/customers", perm("manage_customers", cfg.Customers.Create))
	mux.HandleFunc("GET /api/v1/customers", cfg.Customers.List)
	mux.HandleFunc("GET /api/v1/customers/{id}", cfg.Customers.Get)
	mux.Handle("PUT /api/v1/customers/{id}", perm("manage_customers", cfg.Customers.Update))
	mux.Handle("DELETE /api/v1/customers/{id}", perm("manage_customers", cfg.Customers.Delete))

	mux.Handle("POST /api/v1/vehicles", perm("manage_vehicles", cfg.Vehicles.Create))
	mux.HandleFunc("GET /api/v1/vehicles", cfg.Vehicles.List)
	mux.HandleFunc("GET /api/v1/vehicles/{id}", cfg.Vehicles.Get)
	mux.Handle("PUT /api/v1/vehicles/{id}", perm("manage_vehicles", cfg.Vehicles.Update))
	mux.Handle("PATCH /api/v1/vehicles/{id}/odometer", perm("manage_vehicles", cfg.Vehicles.UpdateOdometer))
	mux.Handle("DELETE /api/v1/vehicles/{id}", perm("manage_vehicles", cfg.Vehicles.Delete))
	mux.Handle("GET /api/v1/vehicles/{id}/service-records", perm("view_records", cfg.Vehicles.ServiceRecords))

	mux.Handle("POST /api/v1/oils", manager(cfg.Oils.Create))
	mux.Handle("GET /api/v1/oils", perm("view_inventory", cfg.Oils.List))
	mux.Handle("GET /api/v1/oils/low-stock", perm("view_inventory", cfg.Oils.LowStock))
	mux.Handle("GET /api/v1/oils/{id}", perm("view_inventory", cfg.Oils.Get))
	mux.Handle("PUT /api/v1/oils/{id}", manager(cfg.Oils.Update))
	mux.Handle("POST /api/v1/oils/{id}/stock", perm("adjust_stock", cfg.Oils.AdjustStock))
	mux.Handle("DELETE /api/v1/oils/{id}", manager(cfg.Oils.Delete))

	mux.Handle("POST /api/v1/parts", manager(cfg.Parts.Create))
	mux.Handle("GET /api/v1/parts", perm("view_inventory", cfg.Parts.List))
	mux.Handle("GET /api/v1/parts/low-stock", perm("view_inventory", cfg.Parts.LowStock))
	mux.Handle("GET /api/v1/parts/{id}", perm("view_inventory", cfg.Parts.Get))
	mux.Handle("PUT /api/v1/parts/{id}", manager(cfg.Parts.Update))
	mux.Handle("POST /api/v1/parts/{id}/stock", perm("adjust_stock", cfg.Parts.AdjustStock))
	mux.Handle("DELETE /api/v1/parts/{id}", manager(cfg.Parts.Delete))

	mux.Handle("POST /api/v1/service-types", manager(cfg.ServiceTypes.Create))
	mux.HandleFunc("GET /api/v1/service-types", cfg.ServiceTypes.List)
	mux.HandleFunc("GET /api/v1/service-types/{id}", cfg.ServiceTypes.Get)
	mux.Handle("PUT /api/v1/service-types/{id}", manager(cfg.ServiceTypes.Update))
	mux.Handle("DELETE /api/v1/service-types/{id}", manager(cfg.ServiceTypes.Delete))

	mux.Handle("POST /api/v1/records", perm("create_service_record", cfg.Records.Create))
	mux.Handle("GET /api/v1/records", perm("view_records", cfg.Records.List))
	mux.Handle("GET /api/v1/records/upcoming", perm("view_reports", cfg.Records.Upcoming))
	mux.Handle("GET /api/v1/records/stats", perm("view_reports", cfg.Records.Stats))
	mux.Handle("GET /api/v1/records/{id}", perm("view_records", cfg.Records.Get))
	mux.Handle("PATCH /api/v1/records/{id}", perm("update_service_record", cfg.Records.Update))
	mux.Handle("DELETE /api/v1/records/{id}", manager(cfg.Records.Delete))

	mux.HandleFunc("GET /api/v1/catalog/brands", cfg.Catalog.Brands)
	mux.HandleFunc("GET /api/v1/catalog/brands/{brand}/models", cfg.Catalog.Models)
	mux.HandleFunc("GET /api/v1/catalog/brands/{brand}/models/{model}/years", cfg.Catalog.Years)

	return mux
}
