// Package inventory guards stock non-negativity for the two stock pools:
// oil volume (liters) and part counts. Functions mutate the entity structs
// in memory; persisting the result is the caller's job, inside whatever
// transaction encloses the operation.
package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/lubetrack/workshop-backend/internal/models"
)

// ReserveOil decrements the oil's stock by liters. It fails without
// mutating anything when stock is insufficient; the error message carries
// the available quantity.
func ReserveOil(o *models.Oil, liters decimal.Decimal) error {
	if o.StockLiters.LessThan(liters) {
		return fmt.Errorf("oil %q: requested %s L, available %s L: %w",
			o.Name, liters, o.StockLiters, models.ErrInsufficientStock)
	}
	o.StockLiters = o.StockLiters.Sub(liters)
	return nil
}

// ReleaseOil returns liters to the oil's stock. Used for compensating
// rollback and delete; no upper bound is enforced.
func ReleaseOil(o *models.Oil, liters decimal.Decimal) {
	o.StockLiters = o.StockLiters.Add(liters)
}

// OilLow reports whether the oil's stock is below its minimum threshold.
func OilLow(o *models.Oil) bool {
	return o.StockLiters.LessThan(o.MinStockLiters)
}

// ReservePart decrements the part's stock by qty, failing without
// mutation when stock is insufficient.
func ReservePart(p *models.Part, qty int64) error {
	if p.Stock < qty {
		return fmt.Errorf("part %q: requested %d, available %d: %w",
			p.Name, qty, p.Stock, models.ErrInsufficientStock)
	}
	p.Stock -= qty
	return nil
}

// ReleasePart returns qty units to the part's stock.
func ReleasePart(p *models.Part, qty int64) {
	p.Stock += qty
}

// PartLow reports whether the part's stock is below its minimum threshold.
func PartLow(p *models.Part) bool {
	return p.Stock < p.MinStock
}
