package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vehicle represents a customer vehicle serviced by the workshop.
type Vehicle struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID   primitive.ObjectID `bson:"customer_id" json:"customer_id"`
	Plate        string             `bson:"plate" json:"plate"` // uppercased, unique
	Make         string             `bson:"make" json:"make"`
	Model        string             `bson:"model" json:"model"`
	Year         int                `bson:"year" json:"year"`
	Transmission string             `bson:"transmission" json:"transmission"` // "manual", "automatic", "cvt", "automated", "dual_clutch", "other"
	CurrentKM    int64              `bson:"current_km" json:"current_km"`     // odometer, never decreases
	Color        string             `bson:"color,omitempty" json:"color,omitempty"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Active       bool               `bson:"active" json:"active"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// VehiclePage is a paginated vehicle listing.
type VehiclePage struct {
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Pages int       `json:"pages"`
	Items []Vehicle `json:"items"`
}

// IsValidTransmission checks a transmission kind against the known set.
func IsValidTransmission(t string) bool {
	switch t {
	case "manual", "automatic", "cvt", "automated", "dual_clutch", "other":
		return true
	default:
		return false
	}
}
