// Package workshop implements the oil-change workflows: transactional
// record creation with stock reservation, wholesale item replacement,
// compensating deletion, maintenance due prediction, and statistics.
package workshop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/zoobzio/clockz"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lubetrack/workshop-backend/internal/db"
	"github.com/lubetrack/workshop-backend/internal/inventory"
	"github.com/lubetrack/workshop-backend/internal/models"
	"github.com/lubetrack/workshop-backend/internal/notify"
	"github.com/lubetrack/workshop-backend/internal/pricing"
)

// maxLitersPerService caps a single fill. Nothing on the floor takes
// more than a truck sump.
var maxLitersPerService = decimal.NewFromInt(50)

var oneHundred = decimal.NewFromInt(100)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// Service exposes the service-record workflows.
type Service interface {
	CreateServiceRecord(ctx context.Context, input CreateServiceRecordInput, performedBy string) (*models.ServiceRecordDetail, error)
	GetServiceRecord(ctx context.Context, id string) (*models.ServiceRecordDetail, error)
	ListServiceRecords(ctx context.Context, opts ListOptions) (*models.ServiceRecordPage, error)
	UpdateServiceRecord(ctx context.Context, id string, patch ServiceRecordPatch) (*models.ServiceRecordDetail, error)
	DeleteServiceRecord(ctx context.Context, id string) error
	UpcomingMaintenance(ctx context.Context, daysWindow int, kmWindow int64) ([]models.MaintenanceAlert, error)
	Statistics(ctx context.Context, from, to *time.Time) (*models.WorkshopStats, error)
}

// Config wires a Service to its stores and collaborators.
type Config struct {
	Records   db.ServiceRecordCollection
	Vehicles  db.VehicleCollection
	Oils      db.OilCollection
	Parts     db.PartCollection
	Customers db.CustomerCollection
	Tx        db.TxRunner
	Pricing   *pricing.Calculator
	Publisher notify.Publisher
	Clock     clockz.Clock
}

// NewService builds the workshop service. Pricing and Publisher may be
// left nil; a default calculator and a no-op publisher are used.
func NewService(cfg Config) Service {
	svc := &service{
		records:   cfg.Records,
		vehicles:  cfg.Vehicles,
		oils:      cfg.Oils,
		parts:     cfg.Parts,
		customers: cfg.Customers,
		tx:        cfg.Tx,
		pricing:   cfg.Pricing,
		publisher: cfg.Publisher,
		clock:     cfg.Clock,
	}
	if svc.pricing == nil {
		svc.pricing = pricing.NewCalculator()
	}
	if svc.publisher == nil {
		svc.publisher = notify.NoopPublisher{}
	}
	return svc
}

type service struct {
	records   db.ServiceRecordCollection
	vehicles  db.VehicleCollection
	oils      db.OilCollection
	parts     db.PartCollection
	customers db.CustomerCollection
	tx        db.TxRunner
	pricing   *pricing.Calculator
	publisher notify.Publisher
	clock     clockz.Clock
}

func (s *service) getClock() clockz.Clock {
	if s.clock == nil {
		return clockz.RealClock
	}
	return s.clock
}

// CreateServiceRecord opens a record inside one transaction: every
// validation runs before any write, and a failed step leaves no trace.
// Oil liters and part quantities are reserved against current stock; the
// vehicle's odometer advances to the reported reading.
func (s *service) CreateServiceRecord(ctx context.Context, input CreateServiceRecordInput, performedBy string) (*models.ServiceRecordDetail, error) {
	if err := s.validateCreate(input); err != nil {
		return nil, err
	}

	var performer *primitive.ObjectID
	if performedBy != "" {
		oid, err := primitive.ObjectIDFromHex(performedBy)
		if err != nil {
			return nil, fmt.Errorf("performer id %q: %w", performedBy, models.ErrValidation)
		}
		performer = &oid
	}

	var (
		detail  *models.ServiceRecordDetail
		touched map[string]*models.Part
		oil     *models.Oil
	)
	err := s.tx.RunTransaction(ctx, func(ctx context.Context) error {
		// The runner may retry after a write conflict; every attempt
		// starts from freshly read state.
		detail, touched, oil = nil, nil, nil

		vehicle, err := s.vehicles.FindVehicleByID(ctx, input.VehicleID)
		if err != nil {
			return err
		}

		oil, err = s.oils.FindOilByID(ctx, input.OilID)
		if err != nil {
			return err
		}
		if !oil.Active {
			return fmt.Errorf("oil %q: %w", oil.Name, models.ErrInactive)
		}
		if err := inventory.ReserveOil(oil, input.LitersUsed); err != nil {
			return err
		}

		if input.Odometer < vehicle.CurrentKM {
			return fmt.Errorf("odometer %d is below the vehicle's recorded %d km: %w",
				input.Odometer, vehicle.CurrentKM, models.ErrInvalidOdometer)
		}

		touched = map[string]*models.Part{}
		items, err := s.buildLineItems(ctx, input.Items, touched)
		if err != nil {
			return err
		}

		now := s.getClock().Now()
		record := models.ServiceRecord{
			ID:           primitive.NewObjectID(),
			VehicleID:    vehicle.ID,
			OilID:        oil.ID,
			PerformedBy:  performer,
			ServiceDate:  input.ServiceDate,
			Odometer:     input.Odometer,
			LitersUsed:   input.LitersUsed,
			OilCharge:    input.OilCharge,
			LaborCharge:  input.LaborCharge,
			DiscountPct:  input.DiscountPct,
			DiscountAmt:  input.DiscountAmt,
			DiscountNote: input.DiscountNote,
			Total:        s.pricing.Total(input.OilCharge, input.LaborCharge, pricingItems(items), input.DiscountPct, input.DiscountAmt),
			NextDueKM:    input.NextDueKM,
			NextDueDate:  input.NextDueDate,
			Notes:        input.Notes,
			Items:        items,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := s.records.InsertServiceRecord(ctx, record); err != nil {
			return err
		}
		if err := s.oils.UpdateOilStock(ctx, oil.ID.Hex(), oil.StockLiters); err != nil {
			return err
		}
		for id, part := range touched {
			if err := s.parts.UpdatePartStock(ctx, id, part.Stock); err != nil {
				return err
			}
		}
		if input.Odometer > vehicle.CurrentKM {
			if err := s.vehicles.UpdateVehicleOdometer(ctx, vehicle.ID.Hex(), input.Odometer); err != nil {
				return err
			}
			vehicle.CurrentKM = input.Odometer
		}

		detail = &models.ServiceRecordDetail{ServiceRecord: record, Vehicle: vehicle, Oil: oil}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishLowStock(oil, touched)
	return detail, nil
}

// GetServiceRecord returns one record with its vehicle and oil resolved.
func (s *service) GetServiceRecord(ctx context.Context, id string) (*models.ServiceRecordDetail, error) {
	record, err := s.records.FindServiceRecordByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.buildDetail(ctx, record)
}

// ListServiceRecords returns a page of records, newest first.
func (s *service) ListServiceRecords(ctx context.Context, opts ListOptions) (*models.ServiceRecordPage, error) {
	filter := bson.M{}
	if opts.VehicleID != "" {
		oid, err := primitive.ObjectIDFromHex(opts.VehicleID)
		if err != nil {
			return nil, fmt.Errorf("vehicle id %q: %w", opts.VehicleID, models.ErrValidation)
		}
		filter["vehicle_id"] = oid
	}
	if opts.OilID != "" {
		oid, err := primitive.ObjectIDFromHex(opts.OilID)
		if err != nil {
			return nil, fmt.Errorf("oil id %q: %w", opts.OilID, models.ErrValidation)
		}
		filter["oil_id"] = oid
	}
	if opts.From != nil || opts.To != nil {
		dateFilter := bson.M{}
		if opts.From != nil {
			dateFilter["$gte"] = *opts.From
		}
		if opts.To != nil {
			dateFilter["$lte"] = *opts.To
		}
		filter["service_date"] = dateFilter
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	perPage := opts.PerPage
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	total, err := s.records.CountServiceRecords(ctx, filter)
	if err != nil {
		return nil, err
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "service_date", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64((page - 1) * perPage)).
		SetLimit(int64(perPage))

	cursor, err := s.records.FindServiceRecords(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []models.ServiceRecord{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}

	pages := 0
	if total > 0 {
		pages = int((total + int64(perPage) - 1) / int64(perPage))
	}

	return &models.ServiceRecordPage{Total: total, Page: page, Pages: pages, Items: items}, nil
}

// UpdateServiceRecord applies a partial patch inside one transaction. A
// non-nil Items set is replaced wholesale: prior quantities are released
// first, then the new set is validated and reserved against the adjusted
// stock. Oil stock is never adjusted here, whatever the patch changes.
func (s *service) UpdateServiceRecord(ctx context.Context, id string, patch ServiceRecordPatch) (*models.ServiceRecordDetail, error) {
	if err := s.validatePatch(patch); err != nil {
		return nil, err
	}

	var (
		detail  *models.ServiceRecordDetail
		touched map[string]*models.Part
	)
	err := s.tx.RunTransaction(ctx, func(ctx context.Context) error {
		detail, touched = nil, nil

		record, err := s.records.FindServiceRecordByID(ctx, id)
		if err != nil {
			return err
		}

		reprice := false
		if patch.OilID != nil {
			// Only existence is re-checked on an oil swap.
			oil, err := s.oils.FindOilByID(ctx, *patch.OilID)
			if err != nil {
				return err
			}
			record.OilID = oil.ID
		}
		if patch.ServiceDate != nil {
			record.ServiceDate = *patch.ServiceDate
		}
		if patch.LitersUsed != nil {
			record.LitersUsed = *patch.LitersUsed
		}
		if patch.OilCharge != nil {
			record.OilCharge = *patch.OilCharge
			reprice = true
		}
		if patch.LaborCharge != nil {
			record.LaborCharge = *patch.LaborCharge
			reprice = true
		}
		if patch.DiscountPct != nil {
			record.DiscountPct = *patch.DiscountPct
			reprice = true
		}
		if patch.DiscountAmt != nil {
			record.DiscountAmt = *patch.DiscountAmt
			reprice = true
		}
		if patch.DiscountNote != nil {
			record.DiscountNote = *patch.DiscountNote
		}
		if patch.NextDueKM != nil {
			record.NextDueKM = patch.NextDueKM
		}
		if patch.NextDueDate != nil {
			record.NextDueDate = patch.NextDueDate
		}
		if patch.Notes != nil {
			record.Notes = *patch.Notes
		}

		if patch.Items != nil {
			touched = map[string]*models.Part{}
			for _, item := range record.Items {
				part, ok := touched[item.PartID.Hex()]
				if !ok {
					part, err = s.parts.FindPartByID(ctx, item.PartID.Hex())
					if err != nil {
						if errors.Is(err, models.ErrNotFound) {
							// Part hard-deleted since the sale; nothing
							// to return stock to.
							continue
						}
						return err
					}
					touched[item.PartID.Hex()] = part
				}
				inventory.ReleasePart(part, item.Quantity)
			}

			items, err := s.buildLineItems(ctx, patch.Items, touched)
			if err != nil {
				return err
			}
			record.Items = items
			reprice = true
		}

		if reprice {
			record.Total = s.pricing.Total(record.OilCharge, record.LaborCharge, pricingItems(record.Items), record.DiscountPct, record.DiscountAmt)
		}
		record.UpdatedAt = s.getClock().Now()

		if err := s.records.UpdateServiceRecord(ctx, id, *record); err != nil {
			return err
		}
		for pid, part := range touched {
			if err := s.parts.UpdatePartStock(ctx, pid, part.Stock); err != nil {
				return err
			}
		}

		detail, err = s.buildDetail(ctx, record)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishLowStock(nil, touched)
	return detail, nil
}

// DeleteServiceRecord removes a record and compensates its stock
// movements: liters go back to the oil, quantities to their parts. SKUs
// that were hard-deleted in the meantime are skipped silently. The
// vehicle's odometer is not reverted.
func (s *service) DeleteServiceRecord(ctx context.Context, id string) error {
	return s.tx.RunTransaction(ctx, func(ctx context.Context) error {
		record, err := s.records.FindServiceRecordByID(ctx, id)
		if err != nil {
			return err
		}

		oil, err := s.oils.FindOilByID(ctx, record.OilID.Hex())
		switch {
		case err == nil:
			inventory.ReleaseOil(oil, record.LitersUsed)
			if err := s.oils.UpdateOilStock(ctx, oil.ID.Hex(), oil.StockLiters); err != nil {
				return err
			}
		case !errors.Is(err, models.ErrNotFound):
			return err
		}

		touched := map[string]*models.Part{}
		for _, item := range record.Items {
			part, ok := touched[item.PartID.Hex()]
			if !ok {
				part, err = s.parts.FindPartByID(ctx, item.PartID.Hex())
				if err != nil {
					if errors.Is(err, models.ErrNotFound) {
						continue
					}
					return err
				}
				touched[item.PartID.Hex()] = part
			}
			inventory.ReleasePart(part, item.Quantity)
		}
		for pid, part := range touched {
			if err := s.parts.UpdatePartStock(ctx, pid, part.Stock); err != nil {
				return err
			}
		}

		return s.records.DeleteServiceRecord(ctx, id)
	})
}

func (s *service) validateCreate(input CreateServiceRecordInput) error {
	if input.ServiceDate.IsZero() {
		return fmt.Errorf("service date is required: %w", models.ErrValidation)
	}
	if dateOnly(input.ServiceDate).After(dateOnly(s.getClock().Now())) {
		return fmt.Errorf("service date %s is in the future: %w",
			input.ServiceDate.Format("2006-01-02"), models.ErrInvalidOdometer)
	}
	if input.Odometer < 0 {
		return fmt.Errorf("odometer cannot be negative: %w", models.ErrInvalidOdometer)
	}
	if !input.LitersUsed.IsPositive() {
		return fmt.Errorf("liters used must be positive: %w", models.ErrValidation)
	}
	if input.LitersUsed.GreaterThan(maxLitersPerService) {
		return fmt.Errorf("liters used %s exceeds the %s L limit: %w",
			input.LitersUsed, maxLitersPerService, models.ErrValidation)
	}
	if input.OilCharge.IsNegative() || input.LaborCharge.IsNegative() {
		return fmt.Errorf("charges cannot be negative: %w", models.ErrValidation)
	}
	if input.DiscountPct.IsNegative() || input.DiscountPct.GreaterThan(oneHundred) {
		return fmt.Errorf("discount percentage must be between 0 and 100: %w", models.ErrValidation)
	}
	if input.DiscountAmt.IsNegative() {
		return fmt.Errorf("fixed discount cannot be negative: %w", models.ErrValidation)
	}
	return validateItemInputs(input.Items)
}

func (s *service) validatePatch(patch ServiceRecordPatch) error {
	if patch.ServiceDate != nil && dateOnly(*patch.ServiceDate).After(dateOnly(s.getClock().Now())) {
		return fmt.Errorf("service date %s is in the future: %w",
			patch.ServiceDate.Format("2006-01-02"), models.ErrInvalidOdometer)
	}
	if patch.LitersUsed != nil {
		if !patch.LitersUsed.IsPositive() {
			return fmt.Errorf("liters used must be positive: %w", models.ErrValidation)
		}
		if patch.LitersUsed.GreaterThan(maxLitersPerService) {
			return fmt.Errorf("liters used %s exceeds the %s L limit: %w",
				patch.LitersUsed, maxLitersPerService, models.ErrValidation)
		}
	}
	if patch.OilCharge != nil && patch.OilCharge.IsNegative() {
		return fmt.Errorf("oil charge cannot be negative: %w", models.ErrValidation)
	}
	if patch.LaborCharge != nil && patch.LaborCharge.IsNegative() {
		return fmt.Errorf("labor charge cannot be negative: %w", models.ErrValidation)
	}
	if patch.DiscountPct != nil && (patch.DiscountPct.IsNegative() || patch.DiscountPct.GreaterThan(oneHundred)) {
		return fmt.Errorf("discount percentage must be between 0 and 100: %w", models.ErrValidation)
	}
	if patch.DiscountAmt != nil && patch.DiscountAmt.IsNegative() {
		return fmt.Errorf("fixed discount cannot be negative: %w", models.ErrValidation)
	}
	return validateItemInputs(patch.Items)
}

func validateItemInputs(items []LineItemInput) error {
	for _, item := range items {
		if item.Quantity <= 0 {
			return fmt.Errorf("item quantity must be positive: %w", models.ErrValidation)
		}
		if item.UnitPrice != nil && item.UnitPrice.IsNegative() {
			return fmt.Errorf("item unit price cannot be negative: %w", models.ErrValidation)
		}
	}
	return nil
}

// buildLineItems validates and reserves every requested part. Duplicate
// part ids compose against the same in-memory struct, so their combined
// quantity is what gets availability-checked. touched accumulates every
// part whose stock changed, keyed by hex id.
func (s *service) buildLineItems(ctx context.Context, inputs []LineItemInput, touched map[string]*models.Part) ([]models.LineItem, error) {
	items := make([]models.LineItem, 0, len(inputs))
	for _, input := range inputs {
		part, ok := touched[input.PartID]
		if !ok {
			var err error
			part, err = s.parts.FindPartByID(ctx, input.PartID)
			if err != nil {
				return nil, err
			}
			touched[input.PartID] = part
		}
		if !part.Active {
			return nil, fmt.Errorf("part %q: %w", part.Name, models.ErrInactive)
		}
		if err := inventory.ReservePart(part, input.Quantity); err != nil {
			return nil, err
		}

		unitPrice := part.UnitPrice
		if input.UnitPrice != nil {
			unitPrice = *input.UnitPrice
		}
		items = append(items, models.LineItem{
			PartID:    part.ID,
			PartName:  part.Name,
			Quantity:  input.Quantity,
			UnitPrice: unitPrice,
			Total:     s.pricing.LineTotal(pricing.Item{Quantity: input.Quantity, UnitPrice: unitPrice}),
		})
	}
	return items, nil
}

// buildDetail resolves the record's vehicle and oil. Either may have been
// hard-deleted since; the detail carries nil for those instead of failing.
func (s *service) buildDetail(ctx context.Context, record *models.ServiceRecord) (*models.ServiceRecordDetail, error) {
	detail := &models.ServiceRecordDetail{ServiceRecord: *record}

	vehicle, err := s.vehicles.FindVehicleByID(ctx, record.VehicleID.Hex())
	switch {
	case err == nil:
		detail.Vehicle = vehicle
	case !errors.Is(err, models.ErrNotFound):
		return nil, err
	}

	oil, err := s.oils.FindOilByID(ctx, record.OilID.Hex())
	switch {
	case err == nil:
		detail.Oil = oil
	case !errors.Is(err, models.ErrNotFound):
		return nil, err
	}

	return detail, nil
}

// publishLowStock emits an alert for each SKU that ended below its
// minimum. Runs after commit; failures are logged, never propagated.
func (s *service) publishLowStock(oil *models.Oil, parts map[string]*models.Part) {
	if oil != nil && inventory.OilLow(oil) {
		s.publishAlert(models.StockAlert{
			Kind:     "oil",
			EntityID: oil.ID.Hex(),
			Name:     oil.Name,
			Stock:    oil.StockLiters,
			Minimum:  oil.MinStockLiters,
		})
	}
	for id, part := range parts {
		if inventory.PartLow(part) {
			s.publishAlert(models.StockAlert{
				Kind:     "part",
				EntityID: id,
				Name:     part.Name,
				Stock:    decimal.NewFromInt(part.Stock),
				Minimum:  decimal.NewFromInt(part.MinStock),
			})
		}
	}
}

func (s *service) publishAlert(alert models.StockAlert) {
	if err := s.publisher.PublishStockAlert(alert); err != nil {
		log.WithError(err).WithField("name", alert.Name).Warn("Failed to publish low stock alert")
	}
}

func pricingItems(items []models.LineItem) []pricing.Item {
	out := make([]pricing.Item, 0, len(items))
	for _, item := range items {
		out = append(out, pricing.Item{Quantity: item.Quantity, UnitPrice: item.UnitPrice})
	}
	return out
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
