package workshop

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lubetrack/workshop-backend/internal/db"
	"github.com/lubetrack/workshop-backend/internal/models"
)

// Map-backed fakes for the collection interfaces. Reads hand out copies,
// like documents decoded off the wire, so in-memory mutation reaches the
// store only through explicit update calls.

type fakeVehicles struct {
	store map[string]*models.Vehicle
}

func (f *fakeVehicles) InsertVehicle(_ context.Context, vehicle models.Vehicle) error {
	f.store[vehicle.ID.Hex()] = &vehicle
	return nil
}

func (f *fakeVehicles) FindVehicleByID(_ context.Context, id string) (*models.Vehicle, error) {
	vehicle, ok := f.store[id]
	if !ok {
		return nil, fmt.Errorf("vehicle %s: %w", id, models.ErrNotFound)
	}
	clone := *vehicle
	return &clone, nil
}

func (f *fakeVehicles) FindVehicleByPlate(_ context.Context, plate string) (*models.Vehicle, error) {
	for _, vehicle := range f.store {
		if vehicle.Plate == plate {
			clone := *vehicle
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("vehicle plate %s: %w", plate, models.ErrNotFound)
}

func (f *fakeVehicles) FindVehicles(context.Context, bson.M, ...*options.FindOptions) (db.Cursor, error) {
	return emptyCursor{}, nil
}

func (f *fakeVehicles) CountVehicles(context.Context, bson.M) (int64, error) {
	return int64(len(f.store)), nil
}

func (f *fakeVehicles) UpdateVehicle(_ context.Context, id string, vehicle models.Vehicle) error {
	if _, ok := f.store[id]; !ok {
		return fmt.Errorf("vehicle %s: %w", id, models.ErrNotFound)
	}
	f.store[id] = &vehicle
	return nil
}

func (f *fakeVehicles) UpdateVehicleOdometer(_ context.Context, id string, km int64) error {
	vehicle, ok := f.store[id]
	if !ok {
		return fmt.Errorf("vehicle %s: %w", id, models.ErrNotFound)
	}
	vehicle.CurrentKM = km
	return nil
}

func (f *fakeVehicles) DeleteVehicle(_ context.Context, id string) error {
	if _, ok := f.store[id]; !ok {
		return fmt.Errorf("vehicle %s: %w", id, models.ErrNotFound)
	}
	delete(f.store, id)
	return nil
}

func (f *fakeVehicles) DeleteVehiclesByCustomer(_ context.Context, customerID primitive.ObjectID) (int64, error) {
	var deleted int64
	for id, vehicle := range f.store {
		if vehicle.CustomerID == customerID {
			delete(f.store, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakeOils struct {
	store map[string]*models.Oil
}

func (f *fakeOils) InsertOil(_ context.Context, oil models.Oil) error {
	f.store[oil.ID.Hex()] = &oil
	return nil
}

func (f *fakeOils) FindOilByID(_ context.Context, id string) (*models.Oil, error) {
	oil, ok := f.store[id]
	if !ok {
		return nil, fmt.Errorf("oil %s: %w", id, models.ErrNotFound)
	}
	clone := *oil
	return &clone, nil
}

func (f *fakeOils) FindOils(context.Context, bson.M, ...*options.FindOptions) (db.Cursor, error) {
	return emptyCursor{}, nil
}

func (f *fakeOils) CountOils(context.Context, bson.M) (int64, error) {
	return int64(len(f.store)), nil
}

func (f *fakeOils) UpdateOil(_ context.Context, id string, oil models.Oil) error {
	if _, ok := f.store[id]; !ok {
		return fmt.Errorf("oil %s: %w", id, models.ErrNotFound)
	}
	f.store[id] = &oil
	return nil
}

func (f *fakeOils) UpdateOilStock(_ context.Context, id string, liters decimal.Decimal) error {
	oil, ok := f.store[id]
	if !ok {
		return fmt.Errorf("oil %s: %w", id, models.ErrNotFound)
	}
	oil.StockLiters = liters
	return nil
}

func (f *fakeOils) FindLowStockOils(context.Context) ([]models.Oil, error) {
	low := []models.Oil{}
	for _, oil := range f.store {
		if oil.Active && oil.StockLiters.LessThan(oil.MinStockLiters) {
			low = append(low, *oil)
		}
	}
	return low, nil
}

func (f *fakeOils) DeleteOil(_ context.Context, id string) error {
	if _, ok := f.store[id]; !ok {
		return fmt.Errorf("oil %s: %w", id, models.ErrNotFound)
	}
	delete(f.store, id)
	return nil
}

type fakeParts struct {
	store map[string]*models.Part
}

func (f *fakeParts) InsertPart(_ context.Context, part models.Part) error {
	f.store[part.ID.Hex()] = &part
	return nil
}

func (f *fakeParts) FindPartByID(_ context.Context, id string) (*models.Part, error) {
	part, ok := f.store[id]
	if !ok {
		return nil, fmt.Errorf("part %s: %w", id, models.ErrNotFound)
	}
	clone := *part
	return &clone, nil
}

func (f *fakeParts) FindParts(context.Context, bson.M, ...*options.FindOptions) (db.Cursor, error) {
	return emptyCursor{}, nil
}

func (f *fakeParts) CountParts(context.Context, bson.M) (int64, error) {
	return int64(len(f.store)), nil
}

func (f *fakeParts) UpdatePart(_ context.Context, id string, part models.Part) error {
	if _, ok := f.store[id]; !ok {
		return fmt.Errorf("part %s: %w", id, models.ErrNotFound)
	}
	f.store[id] = &part
	return nil
}

func (f *fakeParts) UpdatePartStock(_ context.Context, id string, stock int64) error {
	part, ok := f.store[id]
	if !ok {
		return fmt.Errorf("part %s: %w", id, models.ErrNotFound)
	}
	part.Stock = stock
	return nil
}

func (f *fakeParts) FindLowStockParts(context.Context) ([]models.Part, error) {
	low := []models.Part{}
	for _, part := range f.store {
		if part.Active && part.Stock < part.MinStock {
			low = append(low, *part)
		}
	}
	return low, nil
}

func (f *fakeParts) DeletePart(_ context.Context, id string) error {
	if _, ok := f.store[id]; !ok {
		return fmt.Errorf("part %s: %w", id, models.ErrNotFound)
	}
	delete(f.store, id)
	return nil
}

type fakeCustomers struct {
	store map[string]*models.Customer
}

func (f *fakeCustomers) InsertCustomer(_ context.Context, customer models.Customer) error {
	f.store[customer.ID.Hex()] = &customer
	return nil
}

func (f *fakeCustomers) FindCustomerByID(_ context.Context, id string) (*models.Customer, error) {
	customer, ok := f.store[id]
	if !ok {
		return nil, fmt.Errorf("customer %s: %w", id, models.ErrNotFound)
	}
	clone := *customer
	return &clone, nil
}

func (f *fakeCustomers) FindCustomerByTaxID(_ context.Context, taxID string) (*models.Customer, error) {
	for _, customer := range f.store {
		if customer.TaxID == taxID {
			clone := *customer
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("customer tax id %s: %w", taxID, models.ErrNotFound)
}

func (f *fakeCustomers) FindCustomers(context.Context, bson.M, ...*options.FindOptions) (db.Cursor, error) {
	return emptyCursor{}, nil
}

func (f *fakeCustomers) CountCustomers(context.Context, bson.M) (int64, error) {
	return int64(len(f.store)), nil
}

func (f *fakeCustomers) UpdateCustomer(_ context.Context, id string, customer models.Customer) error {
	if _, ok := f.store[id]; !ok {
		return fmt.Errorf("customer %s: %w", id, models.ErrNotFound)
	}
	f.store[id] = &customer
	return nil
}

func (f *fakeCustomers) DeleteCustomer(_ context.Context, id string) error {
	if _, ok := f.store[id]; !ok {
		return fmt.Errorf("customer %s: %w", id, models.ErrNotFound)
	}
	delete(f.store, id)
	return nil
}

type fakeRecords struct {
	store map[string]*models.ServiceRecord
}

func (f *fakeRecords) InsertServiceRecord(_ context.Context, record models.ServiceRecord) error {
	f.store[record.ID.Hex()] = &record
	return nil
}

func (f *fakeRecords) FindServiceRecordByID(_ context.Context, id string) (*models.ServiceRecord, error) {
	record, ok := f.store[id]
	if !ok {
		return nil, fmt.Errorf("service record %s: %w", id, models.ErrNotFound)
	}
	clone := *record
	return &clone, nil
}

func (f *fakeRecords) matches(record models.ServiceRecord, filter bson.M) bool {
	if oid, ok := filter["vehicle_id"].(primitive.ObjectID); ok && record.VehicleID != oid {
		return false
	}
	if oid, ok := filter["oil_id"].(primitive.ObjectID); ok && record.OilID != oid {
		return false
	}
	if dateFilter, ok := filter["service_date"].(bson.M); ok {
		if from, ok := dateFilter["$gte"].(time.Time); ok && record.ServiceDate.Before(from) {
			return false
		}
		if to, ok := dateFilter["$lte"].(time.Time); ok && record.ServiceDate.After(to) {
			return false
		}
	}
	return true
}

func (f *fakeRecords) FindServiceRecords(_ context.Context, filter bson.M, opts ...*options.FindOptions) (db.Cursor, error) {
	matched := []models.ServiceRecord{}
	for _, record := range f.store {
		if f.matches(*record, filter) {
			matched = append(matched, *record)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].ServiceDate.Equal(matched[j].ServiceDate) {
			return matched[i].ServiceDate.After(matched[j].ServiceDate)
		}
		return matched[i].ID.Hex() > matched[j].ID.Hex()
	})
	if len(opts) > 0 && opts[0] != nil {
		if opts[0].Skip != nil {
			skip := int(*opts[0].Skip)
			if skip > len(matched) {
				skip = len(matched)
			}
			matched = matched[skip:]
		}
		if opts[0].Limit != nil && int(*opts[0].Limit) < len(matched) {
			matched = matched[:int(*opts[0].Limit)]
		}
	}
	return &recordCursor{records: matched}, nil
}

func (f *fakeRecords) CountServiceRecords(_ context.Context, filter bson.M) (int64, error) {
	var count int64
	for _, record := range f.store {
		if f.matches(*record, filter) {
			count++
		}
	}
	return count, nil
}

func (f *fakeRecords) UpdateServiceRecord(_ context.Context, id string, record models.ServiceRecord) error {
	if _, ok := f.store[id]; !ok {
		return fmt.Errorf("service record %s: %w", id, models.ErrNotFound)
	}
	f.store[id] = &record
	return nil
}

func (f *fakeRecords) DeleteServiceRecord(_ context.Context, id string) error {
	if _, ok := f.store[id]; !ok {
		return fmt.Errorf("service record %s: %w", id, models.ErrNotFound)
	}
	delete(f.store, id)
	return nil
}

func (f *fakeRecords) FindLatestPerVehicle(context.Context) ([]models.ServiceRecord, error) {
	latest := map[primitive.ObjectID]models.ServiceRecord{}
	for _, record := range f.store {
		current, ok := latest[record.VehicleID]
		if !ok || record.ServiceDate.After(current.ServiceDate) ||
			(record.ServiceDate.Equal(current.ServiceDate) && record.ID.Hex() > current.ID.Hex()) {
			latest[record.VehicleID] = *record
		}
	}
	out := make([]models.ServiceRecord, 0, len(latest))
	for _, record := range latest {
		out = append(out, record)
	}
	return out, nil
}

func (f *fakeRecords) AggregateStats(_ context.Context, filter bson.M) (*models.StatsTotals, error) {
	totals := &models.StatsTotals{}
	for _, record := range f.store {
		if !f.matches(*record, filter) {
			continue
		}
		totals.Count++
		totals.Revenue = totals.Revenue.Add(record.Total)
		totals.OilCharges = totals.OilCharges.Add(record.OilCharge)
		totals.LaborCharges = totals.LaborCharges.Add(record.LaborCharge)
		totals.Liters = totals.Liters.Add(record.LitersUsed)
	}
	return totals, nil
}

type recordCursor struct {
	records []models.ServiceRecord
}

func (c *recordCursor) All(_ context.Context, out interface{}) error {
	*out.(*[]models.ServiceRecord) = append([]models.ServiceRecord{}, c.records...)
	return nil
}

func (c *recordCursor) Close(context.Context) error { return nil }

type emptyCursor struct{}

func (emptyCursor) All(context.Context, interface{}) error { return nil }
func (emptyCursor) Close(context.Context) error            { return nil }

// passthroughTx runs the callback directly. The service performs every
// store write after all validation has passed, so a failed workflow must
// leave the fakes untouched even without rollback support.
type passthroughTx struct {
	calls int
}

func (r *passthroughTx) RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	r.calls++
	return fn(ctx)
}

type capturePublisher struct {
	alerts []models.StockAlert
}

func (p *capturePublisher) PublishStockAlert(alert models.StockAlert) error {
	p.alerts = append(p.alerts, alert)
	return nil
}

func (p *capturePublisher) Close() {}

type fixture struct {
	vehicles  *fakeVehicles
	oils      *fakeOils
	parts     *fakeParts
	customers *fakeCustomers
	records   *fakeRecords
	tx        *passthroughTx
	publisher *capturePublisher
	clock     *clockz.FakeClock
	svc       Service
}

func newFixture() *fixture {
	f := &fixture{
		vehicles:  &fakeVehicles{store: map[string]*models.Vehicle{}},
		oils:      &fakeOils{store: map[string]*models.Oil{}},
		parts:     &fakeParts{store: map[string]*models.Part{}},
		customers: &fakeCustomers{store: map[string]*models.Customer{}},
		records:   &fakeRecords{store: map[string]*models.ServiceRecord{}},
		tx:        &passthroughTx{},
		publisher: &capturePublisher{},
		clock:     clockz.NewFakeClock(),
	}
	f.svc = NewService(Config{
		Records:   f.records,
		Vehicles:  f.vehicles,
		Oils:      f.oils,
		Parts:     f.parts,
		Customers: f.customers,
		Tx:        f.tx,
		Publisher: f.publisher,
		Clock:     f.clock,
	})
	return f
}

func (f *fixture) addCustomer(name string) *models.Customer {
	customer := &models.Customer{ID: primitive.NewObjectID(), Name: name}
	f.customers.store[customer.ID.Hex()] = customer
	return customer
}

func (f *fixture) addVehicle(km int64) *models.Vehicle {
	vehicle := &models.Vehicle{
		ID:         primitive.NewObjectID(),
		CustomerID: primitive.NewObjectID(),
		Plate:      "ABC1D23",
		Make:       "Fiat",
		Model:      "Argo",
		Year:       2021,
		CurrentKM:  km,
		Active:     true,
	}
	f.vehicles.store[vehicle.ID.Hex()] = vehicle
	return vehicle
}

func (f *fixture) addOil(stock, minStock string) *models.Oil {
	oil := &models.Oil{
		ID:             primitive.NewObjectID(),
		Name:           "5W30 Synthetic",
		Viscosity:      "5W30",
		UnitPrice:      decimal.RequireFromString("44.90"),
		StockLiters:    decimal.RequireFromString(stock),
		MinStockLiters: decimal.RequireFromString(minStock),
		Active:         true,
	}
	f.oils.store[oil.ID.Hex()] = oil
	return oil
}

func (f *fixture) addPart(stock, minStock int64, price string) *models.Part {
	part := &models.Part{
		ID:        primitive.NewObjectID(),
		Name:      "Oil filter",
		Unit:      "unit",
		UnitPrice: decimal.RequireFromString(price),
		Stock:     stock,
		MinStock:  minStock,
		Active:    true,
	}
	f.parts.store[part.ID.Hex()] = part
	return part
}

func (f *fixture) addRecord(record models.ServiceRecord) *models.ServiceRecord {
	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}
	f.records.store[record.ID.Hex()] = &record
	return &record
}

func (f *fixture) oilStock(t *testing.T, oil *models.Oil) decimal.Decimal {
	t.Helper()
	stored, ok := f.oils.store[oil.ID.Hex()]
	require.True(t, ok, "oil %s not in store", oil.ID.Hex())
	return stored.StockLiters
}

func (f *fixture) partStock(t *testing.T, part *models.Part) int64 {
	t.Helper()
	stored, ok := f.parts.store[part.ID.Hex()]
	require.True(t, ok, "part %s not in store", part.ID.Hex())
	return stored.Stock
}

func (f *fixture) vehicleKM(t *testing.T, vehicle *models.Vehicle) int64 {
	t.Helper()
	stored, ok := f.vehicles.store[vehicle.ID.Hex()]
	require.True(t, ok, "vehicle %s not in store", vehicle.ID.Hex())
	return stored.CurrentKM
}

// d parses a decimal literal for assertions.
func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decEqual(t *testing.T, want, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	require.True(t, want.Equal(got), "want %s, got %s %v", want, got, msgAndArgs)
}
