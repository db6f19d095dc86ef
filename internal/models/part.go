package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Part represents an auxiliary item SKU (filters, plugs, additives).
// Stock is a discrete count, unlike Oil's volume.
type Part struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Brand     string             `bson:"brand" json:"brand"`
	Unit      string             `bson:"unit" json:"unit"` // "piece", "set", "kit"
	UnitCost  decimal.Decimal    `bson:"unit_cost" json:"unit_cost"`
	UnitPrice decimal.Decimal    `bson:"unit_price" json:"unit_price"`
	Stock     int64              `bson:"stock" json:"stock"`
	MinStock  int64              `bson:"min_stock" json:"min_stock"`
	Active    bool               `bson:"active" json:"active"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// PartPage is a paginated part listing.
type PartPage struct {
	Total int64  `json:"total"`
	Page  int    `json:"page"`
	Pages int    `json:"pages"`
	Items []Part `json:"items"`
}

// IsValidPartUnit checks a part unit against the known set.
func IsValidPartUnit(u string) bool {
	switch u {
	case "piece", "set", "kit":
		return true
	default:
		return false
	}
}
