package workshop

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateServiceRecordInput carries everything needed to open a service
// record. Charges arrive already priced; the total never does, it is
// always computed server-side.
type CreateServiceRecordInput struct {
	VehicleID    string          `json:"vehicle_id"`
	OilID        string          `json:"oil_id"`
	ServiceDate  time.Time       `json:"service_date"`
	Odometer     int64           `json:"odometer"`
	LitersUsed   decimal.Decimal `json:"liters_used"`
	OilCharge    decimal.Decimal `json:"oil_charge"`
	LaborCharge  decimal.Decimal `json:"labor_charge"`
	DiscountPct  decimal.Decimal `json:"discount_pct"`
	DiscountAmt  decimal.Decimal `json:"discount_amount"`
	DiscountNote string          `json:"discount_note"`
	NextDueKM    *int64          `json:"next_due_km"`
	NextDueDate  *time.Time      `json:"next_due_date"`
	Notes        string          `json:"notes"`
	Items        []LineItemInput `json:"items"`
}

// LineItemInput is one part line in a create or items replacement. A nil
// UnitPrice means "charge the part's current sale price".
type LineItemInput struct {
	PartID    string           `json:"part_id"`
	Quantity  int64            `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// ServiceRecordPatch updates a record field by field. Nil means "leave
// unchanged"; a non-nil Items slice replaces the item set wholesale, so
// an empty non-nil slice clears it.
type ServiceRecordPatch struct {
	OilID        *string          `json:"oil_id"`
	ServiceDate  *time.Time       `json:"service_date"`
	LitersUsed   *decimal.Decimal `json:"liters_used"`
	OilCharge    *decimal.Decimal `json:"oil_charge"`
	LaborCharge  *decimal.Decimal `json:"labor_charge"`
	DiscountPct  *decimal.Decimal `json:"discount_pct"`
	DiscountAmt  *decimal.Decimal `json:"discount_amount"`
	DiscountNote *string          `json:"discount_note"`
	NextDueKM    *int64           `json:"next_due_km"`
	NextDueDate  *time.Time       `json:"next_due_date"`
	Notes        *string          `json:"notes"`
	Items        []LineItemInput  `json:"items"`
}

// ListOptions filters and paginates record listings.
type ListOptions struct {
	VehicleID string
	OilID     string
	From      *time.Time
	To        *time.Time
	Page      int
	PerPage   int
}
