package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Oil represents a lubricant SKU. Stock is tracked in liters.
type Oil struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Brand          string             `bson:"brand" json:"brand"`
	Viscosity      string             `bson:"viscosity" json:"viscosity"` // e.g. "5W30"
	OilType        string             `bson:"oil_type" json:"oil_type"`   // "mineral", "semi_synthetic", "synthetic"
	UnitCost       decimal.Decimal    `bson:"unit_cost" json:"unit_cost"`   // per liter
	UnitPrice      decimal.Decimal    `bson:"unit_price" json:"unit_price"` // sale price per liter
	StockLiters    decimal.Decimal    `bson:"stock_liters" json:"stock_liters"`
	MinStockLiters decimal.Decimal    `bson:"min_stock_liters" json:"min_stock_liters"`
	Active         bool               `bson:"active" json:"active"`
	Notes          string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// OilPage is a paginated oil listing.
type OilPage struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
	Items []Oil `json:"items"`
}

// IsValidOilType checks an oil type against the known set.
func IsValidOilType(t string) bool {
	switch t {
	case "mineral", "semi_synthetic", "synthetic":
		return true
	default:
		return false
	}
}
