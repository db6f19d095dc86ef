package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lubetrack/workshop-backend/internal/auth"
	"github.com/lubetrack/workshop-backend/internal/middleware"
	"github.com/lubetrack/workshop-backend/internal/models"
	"github.com/lubetrack/workshop-backend/internal/workshop"
)

// routerFixture is the full route table with mock-backed handlers, wrapped
// in the auth middleware the way the server composes it.
type routerFixture struct {
	handler http.Handler
	auth    *auth.Service
	oils    *MockOilCollection
	records *MockWorkshopService
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	authService, err := auth.NewService()
	require.NoError(t, err)

	oils := new(MockOilCollection)
	records := new(MockWorkshopService)
	guard := middleware.NewAuthMiddleware(authService)

	mux := NewRouter(RouterConfig{
		Auth:         NewAuthHandler(authService, new(MockUserCollection)),
		Customers:    NewCustomerHandler(new(MockCustomerCollection), new(MockVehicleCollection), passthroughTx{}),
		Vehicles:     NewVehicleHandler(new(MockVehicleCollection), new(MockCustomerCollection), records),
		Oils:         NewOilHandler(oils),
		Parts:        NewPartHandler(new(MockPartCollection)),
		ServiceTypes: NewServiceTypeHandler(new(MockServiceTypeCollection)),
		Records:      NewRecordHandler(records),
		Catalog:      NewCatalogHandler(nil),
		Guard:        guard,
	})

	return &routerFixture{
		handler: guard.Authenticate(mux),
		auth:    authService,
		oils:    oils,
		records: records,
	}
}

func (f *routerFixture) tokenFor(t *testing.T, role models.Role) string {
	t.Helper()
	token, err := f.auth.GenerateToken(&models.User{
		ID:       primitive.NewObjectID(),
		Username: "route-test-" + string(role),
		Role:     role,
	})
	require.NoError(t, err)
	return token
}

func (f *routerFixture) do(t *testing.T, method, path, token string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func TestRouter_Gates(t *testing.T) {
	f := newRouterFixture(t)

	t.Run("rejects gated routes without a token", func(t *testing.T) {
		w := f.do(t, "GET", "/api/v1/records", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("health is open", func(t *testing.T) {
		w := f.do(t, "GET", "/health", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "ok")
	})

	t.Run("mechanic can open a record", func(t *testing.T) {
		f.records.On("CreateServiceRecord", mock.Anything, mock.Anything, mock.Anything).
			Return(recordDetail(), nil).Once()

		body, _ := json.Marshal(workshop.CreateServiceRecordInput{
			VehicleID: primitive.NewObjectID().Hex(),
			OilID:     primitive.NewObjectID().Hex(),
		})
		w := f.do(t, "POST", "/api/v1/records", f.tokenFor(t, models.RoleMechanic), body)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("mechanic cannot manage customers", func(t *testing.T) {
		w := f.do(t, "POST", "/api/v1/customers", f.tokenFor(t, models.RoleMechanic),
			[]byte(`{"name": "Maria Souza"}`))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("attendant cannot delete records", func(t *testing.T) {
		id := primitive.NewObjectID().Hex()
		w := f.do(t, "DELETE", "/api/v1/records/"+id, f.tokenFor(t, models.RoleAttendant), nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin passes the manager gate", func(t *testing.T) {
		id := primitive.NewObjectID().Hex()
		f.records.On("DeleteServiceRecord", mock.Anything, id).Return(nil).Once()

		w := f.do(t, "DELETE", "/api/v1/records/"+id, f.tokenFor(t, models.RoleAdmin), nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestRouter_Matching(t *testing.T) {
	f := newRouterFixture(t)

	t.Run("low-stock wins over the id wildcard", func(t *testing.T) {
		f.oils.On("FindLowStockOils", mock.Anything).Return([]models.Oil{}, nil).Once()

		w := f.do(t, "GET", "/api/v1/oils/low-stock", f.tokenFor(t, models.RoleMechanic), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "[]\n", w.Body.String())
	})

	t.Run("wrong method yields 405", func(t *testing.T) {
		w := f.do(t, "POST", "/health", "", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})

	t.Run("unknown path yields 404", func(t *testing.T) {
		w := f.do(t, "GET", "/api/v1/invoices", f.tokenFor(t, models.RoleAdmin), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
