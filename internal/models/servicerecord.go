package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServiceRecord is an oil-change event. It owns its line items: they are
// embedded in the record document and are created, replaced wholesale, and
// deleted together with it.
type ServiceRecord struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	VehicleID    primitive.ObjectID  `bson:"vehicle_id" json:"vehicle_id"`
	OilID        primitive.ObjectID  `bson:"oil_id" json:"oil_id"`
	PerformedBy  *primitive.ObjectID `bson:"performed_by,omitempty" json:"performed_by,omitempty"` // technician user, nullable
	ServiceDate  time.Time           `bson:"service_date" json:"service_date"`
	Odometer     int64               `bson:"odometer" json:"odometer"` // km at service time
	LitersUsed   decimal.Decimal     `bson:"liters_used" json:"liters_used"`
	OilCharge    decimal.Decimal     `bson:"oil_charge" json:"oil_charge"`
	LaborCharge  decimal.Decimal     `bson:"labor_charge" json:"labor_charge"`
	DiscountPct  decimal.Decimal     `bson:"discount_pct" json:"discount_pct"` // [0,100]
	DiscountAmt  decimal.Decimal     `bson:"discount_amount" json:"discount_amount"`
	DiscountNote string              `bson:"discount_note,omitempty" json:"discount_note,omitempty"`
	Total        decimal.Decimal     `bson:"total" json:"total"`
	NextDueKM    *int64              `bson:"next_due_km,omitempty" json:"next_due_km,omitempty"`
	NextDueDate  *time.Time          `bson:"next_due_date,omitempty" json:"next_due_date,omitempty"`
	Notes        string              `bson:"notes,omitempty" json:"notes,omitempty"`
	Items        []LineItem          `bson:"items" json:"items"`
	CreatedAt    time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `bson:"updated_at" json:"updated_at"`
}

// LineItem is one part applied during a service. UnitPrice is captured at
// time of sale; Total = Quantity * UnitPrice.
type LineItem struct {
	PartID    primitive.ObjectID `bson:"part_id" json:"part_id"`
	PartName  string             `bson:"part_name" json:"part_name"`
	Quantity  int64              `bson:"quantity" json:"quantity"`
	UnitPrice decimal.Decimal    `bson:"unit_price" json:"unit_price"`
	Total     decimal.Decimal    `bson:"total" json:"total"`
}

// ServiceRecordDetail is a record with its referenced entities resolved.
type ServiceRecordDetail struct {
	ServiceRecord
	Vehicle *Vehicle `json:"vehicle,omitempty"`
	Oil     *Oil     `json:"oil,omitempty"`
}

// ServiceRecordPage is a paginated record listing.
type ServiceRecordPage struct {
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Pages int             `json:"pages"`
	Items []ServiceRecord `json:"items"`
}

// MaintenanceAlert flags a vehicle whose next service is due soon, by
// calendar date, by odometer, or both.
type MaintenanceAlert struct {
	VehicleID     primitive.ObjectID `json:"vehicle_id"`
	Plate         string             `json:"plate"`
	Model         string             `json:"model"`
	CustomerName  string             `json:"customer_name"`
	LastService   time.Time          `json:"last_service"`
	NextDueKM     *int64             `json:"next_due_km,omitempty"`
	NextDueDate   *time.Time         `json:"next_due_date,omitempty"`
	CurrentKM     int64              `json:"current_km"`
	DaysRemaining *int               `json:"days_remaining,omitempty"`
	KMRemaining   *int64             `json:"km_remaining,omitempty"`
	Urgent        bool               `json:"urgent"`
}

// WorkshopStats is the rollup over a date-filtered record set.
type WorkshopStats struct {
	TotalRecords  int64           `json:"total_records"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	OilRevenue    decimal.Decimal `json:"oil_revenue"`
	LaborRevenue  decimal.Decimal `json:"labor_revenue"`
	LitersUsed    decimal.Decimal `json:"liters_used"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
}

// StatsTotals carries raw aggregation sums out of the store; derived
// values (average ticket) are computed by the caller.
type StatsTotals struct {
	Count        int64           `bson:"count"`
	Revenue      decimal.Decimal `bson:"revenue"`
	OilCharges   decimal.Decimal `bson:"oil_charges"`
	LaborCharges decimal.Decimal `bson:"labor_charges"`
	Liters       decimal.Decimal `bson:"liters"`
}

// StockAlert is the payload published when a SKU crosses its minimum.
type StockAlert struct {
	Kind     string          `json:"kind"` // "oil" or "part"
	EntityID string          `json:"entity_id"`
	Name     string          `json:"name"`
	Stock    decimal.Decimal `json:"stock"`
	Minimum  decimal.Decimal `json:"minimum"`
}
