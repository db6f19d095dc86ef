package handlers

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lubetrack/workshop-backend/internal/db"
	"github.com/lubetrack/workshop-backend/internal/models"
	"github.com/lubetrack/workshop-backend/internal/workshop"
)

// passthroughTx runs the callback directly; handler tests assert store
// calls, not transaction mechanics.
type passthroughTx struct{}

func (passthroughTx) RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// customerCursor serves a fixed customer slice.
type customerCursor struct {
	items []models.Customer
}

func (c *customerCursor) All(ctx context.Context, out interface{}) error {
	*out.(*[]models.Customer) = append([]models.Customer{}, c.items...)
	return nil
}

func (c *customerCursor) Close(ctx context.Context) error { return nil }

// vehicleCursor serves a fixed vehicle slice.
type vehicleCursor struct {
	items []models.Vehicle
}

func (c *vehicleCursor) All(ctx context.Context, out interface{}) error {
	*out.(*[]models.Vehicle) = append([]models.Vehicle{}, c.items...)
	return nil
}

func (c *vehicleCursor) Close(ctx context.Context) error { return nil }

// oilCursor serves a fixed oil slice.
type oilCursor struct {
	items []models.Oil
}

func (c *oilCursor) All(ctx context.Context, out interface{}) error {
	*out.(*[]models.Oil) = append([]models.Oil{}, c.items...)
	return nil
}

func (c *oilCursor) Close(ctx context.Context) error { return nil }

// MockCustomerCollection is a mock implementation of CustomerCollection
type MockCustomerCollection struct {
	mock.Mock
}

func (m *MockCustomerCollection) InsertCustomer(ctx context.Context, customer models.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerCollection) FindCustomerByID(ctx context.Context, id string) (*models.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerCollection) FindCustomerByTaxID(ctx context.Context, taxID string) (*models.Customer, error) {
	args := m.Called(ctx, taxID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerCollection) FindCustomers(ctx context.Context, filter bson.M, opts ...*options.FindOptions) (db.Cursor, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(db.Cursor), args.Error(1)
}

func (m *MockCustomerCollection) CountCustomers(ctx context.Context, filter bson.M) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerCollection) UpdateCustomer(ctx context.Context, id string, customer models.Customer) error {
	args := m.Called(ctx, id, customer)
	return args.Error(0)
}

func (m *MockCustomerCollection) DeleteCustomer(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockVehicleCollection is a mock implementation of VehicleCollection
type MockVehicleCollection struct {
	mock.Mock
}

func (m *MockVehicleCollection) InsertVehicle(ctx context.Context, vehicle models.Vehicle) error {
	args := m.Called(ctx, vehicle)
	return args.Error(0)
}

func (m *MockVehicleCollection) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *MockVehicleCollection) FindVehicleByPlate(ctx context.Context, plate string) (*models.Vehicle, error) {
	args := m.Called(ctx, plate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *MockVehicleCollection) FindVehicles(ctx context.Context, filter bson.M, opts ...*options.FindOptions) (db.Cursor, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(db.Cursor), args.Error(1)
}

func (m *MockVehicleCollection) CountVehicles(ctx context.Context, filter bson.M) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockVehicleCollection) UpdateVehicle(ctx context.Context, id string, vehicle models.Vehicle) error {
	args := m.Called(ctx, id, vehicle)
	return args.Error(0)
}

func (m *MockVehicleCollection) UpdateVehicleOdometer(ctx context.Context, id string, km int64) error {
	args := m.Called(ctx, id, km)
	return args.Error(0)
}

func (m *MockVehicleCollection) DeleteVehicle(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockVehicleCollection) DeleteVehiclesByCustomer(ctx context.Context, customerID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(int64), args.Error(1)
}

// MockOilCollection is a mock implementation of OilCollection
type MockOilCollection struct {
	mock.Mock
}

func (m *MockOilCollection) InsertOil(ctx context.Context, oil models.Oil) error {
	args := m.Called(ctx, oil)
	return args.Error(0)
}

func (m *MockOilCollection) FindOilByID(ctx context.Context, id string) (*models.Oil, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Oil), args.Error(1)
}

func (m *MockOilCollection) FindOils(ctx context.Context, filter bson.M, opts ...*options.FindOptions) (db.Cursor, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(db.Cursor), args.Error(1)
}

func (m *MockOilCollection) CountOils(ctx context.Context, filter bson.M) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOilCollection) UpdateOil(ctx context.Context, id string, oil models.Oil) error {
	args := m.Called(ctx, id, oil)
	return args.Error(0)
}

func (m *MockOilCollection) UpdateOilStock(ctx context.Context, id string, liters decimal.Decimal) error {
	args := m.Called(ctx, id, liters)
	return args.Error(0)
}

func (m *MockOilCollection) FindLowStockOils(ctx context.Context) ([]models.Oil, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Oil), args.Error(1)
}

func (m *MockOilCollection) DeleteOil(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPartCollection is a mock implementation of PartCollection
type MockPartCollection struct {
	mock.Mock
}

func (m *MockPartCollection) InsertPart(ctx context.Context, part models.Part) error {
	args := m.Called(ctx, part)
	return args.Error(0)
}

func (m *MockPartCollection) FindPartByID(ctx context.Context, id string) (*models.Part, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Part), args.Error(1)
}

func (m *MockPartCollection) FindParts(ctx context.Context, filter bson.M, opts ...*options.FindOptions) (db.Cursor, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(db.Cursor), args.Error(1)
}

func (m *MockPartCollection) CountParts(ctx context.Context, filter bson.M) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPartCollection) UpdatePart(ctx context.Context, id string, part models.Part) error {
	args := m.Called(ctx, id, part)
	return args.Error(0)
}

func (m *MockPartCollection) UpdatePartStock(ctx context.Context, id string, stock int64) error {
	args := m.Called(ctx, id, stock)
	return args.Error(0)
}

func (m *MockPartCollection) FindLowStockParts(ctx context.Context) ([]models.Part, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Part), args.Error(1)
}

func (m *MockPartCollection) DeletePart(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockServiceTypeCollection is a mock implementation of ServiceTypeCollection
type MockServiceTypeCollection struct {
	mock.Mock
}

func (m *MockServiceTypeCollection) InsertServiceType(ctx context.Context, st models.ServiceType) error {
	args := m.Called(ctx, st)
	return args.Error(0)
}

func (m *MockServiceTypeCollection) FindServiceTypeByID(ctx context.Context, id string) (*models.ServiceType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceType), args.Error(1)
}

func (m *MockServiceTypeCollection) FindServiceTypes(ctx context.Context, filter bson.M, opts ...*options.FindOptions) (db.Cursor, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(db.Cursor), args.Error(1)
}

func (m *MockServiceTypeCollection) CountServiceTypes(ctx context.Context, filter bson.M) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockServiceTypeCollection) UpdateServiceType(ctx context.Context, id string, st models.ServiceType) error {
	args := m.Called(ctx, id, st)
	return args.Error(0)
}

func (m *MockServiceTypeCollection) DeleteServiceType(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockWorkshopService is a mock implementation of workshop.Service
type MockWorkshopService struct {
	mock.Mock
}

func (m *MockWorkshopService) CreateServiceRecord(ctx context.Context, input workshop.CreateServiceRecordInput, performedBy string) (*models.ServiceRecordDetail, error) {
	args := m.Called(ctx, input, performedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceRecordDetail), args.Error(1)
}

func (m *MockWorkshopService) GetServiceRecord(ctx context.Context, id string) (*models.ServiceRecordDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceRecordDetail), args.Error(1)
}

func (m *MockWorkshopService) ListServiceRecords(ctx context.Context, opts workshop.ListOptions) (*models.ServiceRecordPage, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceRecordPage), args.Error(1)
}

func (m *MockWorkshopService) UpdateServiceRecord(ctx context.Context, id string, patch workshop.ServiceRecordPatch) (*models.ServiceRecordDetail, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceRecordDetail), args.Error(1)
}

func (m *MockWorkshopService) DeleteServiceRecord(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWorkshopService) UpcomingMaintenance(ctx context.Context, daysWindow int, kmWindow int64) ([]models.MaintenanceAlert, error) {
	args := m.Called(ctx, daysWindow, kmWindow)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MaintenanceAlert), args.Error(1)
}

func (m *MockWorkshopService) Statistics(ctx context.Context, from, to *time.Time) (*models.WorkshopStats, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WorkshopStats), args.Error(1)
}
