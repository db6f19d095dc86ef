package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lubetrack/workshop-backend/internal/models"
	"github.com/lubetrack/workshop-backend/internal/workshop"
)

func recordDetail() *models.ServiceRecordDetail {
	return &models.ServiceRecordDetail{
		ServiceRecord: models.ServiceRecord{
			ID:          primitive.NewObjectID(),
			VehicleID:   primitive.NewObjectID(),
			OilID:       primitive.NewObjectID(),
			ServiceDate: time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
			Odometer:    52000,
			LitersUsed:  dec("4.5"),
			OilCharge:   dec("202.05"),
			LaborCharge: dec("80"),
			Total:       dec("282.05"),
		},
	}
}

func TestRecordHandler_Create(t *testing.T) {
	t.Run("records the authenticated user as performer", func(t *testing.T) {
		service := new(MockWorkshopService)
		handler := NewRecordHandler(service)

		detail := recordDetail()
		input := workshop.CreateServiceRecordInput{
			VehicleID:  detail.VehicleID.Hex(),
			OilID:      detail.OilID.Hex(),
			Odometer:   52000,
			LitersUsed: dec("4.5"),
		}
		userID := primitive.NewObjectID().Hex()
		service.On("CreateServiceRecord", mock.Anything, mock.MatchedBy(func(got workshop.CreateServiceRecordInput) bool {
			return got.VehicleID == input.VehicleID && got.Odometer == 52000
		}), userID).Return(detail, nil)

		body, _ := json.Marshal(input)
		req := httptest.NewRequest("POST", "/api/v1/records", bytes.NewBuffer(body))
		req = withClaims(req, &models.Claims{UserID: userID, Username: "mechanic1", Role: models.RoleMechanic})
		w := httptest.NewRecorder()

		handler.Create(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var got models.ServiceRecordDetail
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.True(t, got.Total.Equal(dec("282.05")), "got %s", got.Total)

		service.AssertExpectations(t)
	})

	t.Run("leaves performer empty without claims", func(t *testing.T) {
		service := new(MockWorkshopService)
		handler := NewRecordHandler(service)

		detail := recordDetail()
		service.On("CreateServiceRecord", mock.Anything, mock.Anything, "").Return(detail, nil)

		body, _ := json.Marshal(workshop.CreateServiceRecordInput{
			VehicleID: detail.VehicleID.Hex(),
			OilID:     detail.OilID.Hex(),
		})
		req := httptest.NewRequest("POST", "/api/v1/records", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Create(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		service.AssertExpectations(t)
	})

	t.Run("surfaces stock insufficiency as a client error", func(t *testing.T) {
		service := new(MockWorkshopService)
		handler := NewRecordHandler(service)

		service.On("CreateServiceRecord", mock.Anything, mock.Anything, "").
			Return(nil, fmt.Errorf("oil %q: requested 6 L, available 2 L: %w", "5W30", models.ErrInsufficientStock))

		body, _ := json.Marshal(workshop.CreateServiceRecordInput{
			VehicleID:  primitive.NewObjectID().Hex(),
			OilID:      primitive.NewObjectID().Hex(),
			LitersUsed: dec("6"),
		})
		req := httptest.NewRequest("POST", "/api/v1/records", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Create(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "available 2 L")
	})
}

func TestRecordHandler_List(t *testing.T) {
	t.Run("passes filters and pagination through", func(t *testing.T) {
		service := new(MockWorkshopService)
		handler := NewRecordHandler(service)

		vehicleID := primitive.NewObjectID().Hex()
		from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

		service.On("ListServiceRecords", mock.Anything, mock.MatchedBy(func(opts workshop.ListOptions) bool {
			return opts.VehicleID == vehicleID &&
				opts.From != nil && opts.From.Equal(from) &&
				opts.To != nil && opts.To.Equal(to) &&
				opts.Page == 2 && opts.PerPage == 5
		})).Return(&models.ServiceRecordPage{Total: 12, Page: 2, Pages: 3, Items: []models.ServiceRecord{}}, nil)

		url := "/api/v1/records?vehicle_id=" + vehicleID + "&from=2026-01-01&to=2026-02-01T00:00:00Z&page=2&per_page=5"
		req := httptest.NewRequest("GET", url, nil)
		w := httptest.NewRecorder()

		handler.List(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var page models.ServiceRecordPage
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		assert.Equal(t, int64(12), page.Total)
		assert.Equal(t, 3, page.Pages)

		service.AssertExpectations(t)
	})

	t.Run("rejects a malformed date", func(t *testing.T) {
		service := new(MockWorkshopService)
		handler := NewRecordHandler(service)

		req := httptest.NewRequest("GET", "/api/v1/records?from=last-tuesday", nil)
		w := httptest.NewRecorder()

		handler.List(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		service.AssertNotCalled(t, "ListServiceRecords", mock.Anything, mock.Anything)
	})
}

func TestRecordHandler_Update(t *testing.T) {
	service := new(MockWorkshopService)
	handler := NewRecordHandler(service)

	detail := recordDetail()
	id := detail.ID.Hex()
	service.On("UpdateServiceRecord", mock.Anything, id, mock.MatchedBy(func(patch workshop.ServiceRecordPatch) bool {
		return patch.LitersUsed != nil && patch.LitersUsed.Equal(dec("5")) && patch.OilID == nil
	})).Return(detail, nil)

	body := []byte(`{"liters_used": "5"}`)
	w := httptest.NewRecorder()
	handler.Update(w, pathRequest("PATCH", "/api/v1/records/"+id, id, body))

	assert.Equal(t, http.StatusOK, w.Code)
	service.AssertExpectations(t)
}

func TestRecordHandler_Delete(t *testing.T) {
	t.Run("deletes a record", func(t *testing.T) {
		service := new(MockWorkshopService)
		handler := NewRecordHandler(service)

		id := primitive.NewObjectID().Hex()
		service.On("DeleteServiceRecord", mock.Anything, id).Return(nil)

		w := httptest.NewRecorder()
		handler.Delete(w, pathRequest("DELETE", "/api/v1/records/"+id, id, nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
		service.AssertExpectations(t)
	})

	t.Run("returns 404 for a missing record", func(t *testing.T) {
		service := new(MockWorkshopService)
		handler := NewRecordHandler(service)

		id := primitive.NewObjectID().Hex()
		service.On("DeleteServiceRecord", mock.Anything, id).Return(notFoundErr("service record", id))

		w := httptest.NewRecorder()
		handler.Delete(w, pathRequest("DELETE", "/api/v1/records/"+id, id, nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRecordHandler_Upcoming(t *testing.T) {
	t.Run("uses the default windows", func(t *testing.T) {
		service := new(MockWorkshopService)
		handler := NewRecordHandler(service)

		service.On("UpcomingMaintenance", mock.Anything, 30, int64(1000)).
			Return([]models.MaintenanceAlert{}, nil)

		req := httptest.NewRequest("GET", "/api/v1/records/upcoming", nil)
		w := httptest.NewRecorder()

		handler.Upcoming(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		service.AssertExpectations(t)
	})

	t.Run("honors query overrides", func(t *testing.T) {
		service := new(MockWorkshopService)
		handler := NewRecordHandler(service)

		alerts := []models.MaintenanceAlert{{Plate: "ABC1D23", Urgent: true}}
		service.On("UpcomingMaintenance", mock.Anything, 7, int64(500)).Return(alerts, nil)

		req := httptest.NewRequest("GET", "/api/v1/records/upcoming?days=7&km=500", nil)
		w := httptest.NewRecorder()

		handler.Upcoming(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var got []models.MaintenanceAlert
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "ABC1D23", got[0].Plate)

		service.AssertExpectations(t)
	})

	t.Run("rejects a malformed window", func(t *testing.T) {
		service := new(MockWorkshopService)
		handler := NewRecordHandler(service)

		req := httptest.NewRequest("GET", "/api/v1/records/upcoming?days=soon", nil)
		w := httptest.NewRecorder()

		handler.Upcoming(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		service.AssertNotCalled(t, "UpcomingMaintenance", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRecordHandler_Stats(t *testing.T) {
	service := new(MockWorkshopService)
	handler := NewRecordHandler(service)

	stats := &models.WorkshopStats{
		TotalRecords:  4,
		TotalRevenue:  dec("1128.20"),
		AverageTicket: dec("282.05"),
	}
	service.On("Statistics", mock.Anything, (*time.Time)(nil), (*time.Time)(nil)).Return(stats, nil)

	req := httptest.NewRequest("GET", "/api/v1/records/stats", nil)
	w := httptest.NewRecorder()

	handler.Stats(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var got models.WorkshopStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, int64(4), got.TotalRecords)
	assert.True(t, got.AverageTicket.Equal(dec("282.05")), "got %s", got.AverageTicket)

	service.AssertExpectations(t)
}
