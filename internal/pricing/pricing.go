// Package pricing computes the final charge for a service event. The
// computation is pure: no caching of intermediate subtotals, so every
// update re-derives the same total from current values.
package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Item is one priced line: quantity of a part at a captured unit price.
type Item struct {
	Quantity  int64
	UnitPrice decimal.Decimal
}

// Calculator derives service totals from raw charges, line items, and the
// dual discount model (percentage plus fixed amount).
type Calculator struct{}

// NewCalculator creates a pricing calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// LineTotal returns quantity times unit price for a single item.
func (c *Calculator) LineTotal(item Item) decimal.Decimal {
	return item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity))
}

// PartsTotal sums the line totals. Zero items yields zero.
func (c *Calculator) PartsTotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(c.LineTotal(item))
	}
	return total
}

// Total computes the final charge:
//
//	subtotal = oilCharge + laborCharge + sum of line totals
//	total    = subtotal - subtotal*discountPct/100 - discountFixed
//
// A discount larger than the subtotal clamps the total to zero instead
// of erroring. The result is rounded to 2 decimal places.
func (c *Calculator) Total(oilCharge, laborCharge decimal.Decimal, items []Item, discountPct, discountFixed decimal.Decimal) decimal.Decimal {
	subtotal := oilCharge.Add(laborCharge).Add(c.PartsTotal(items))
	pctDeduction := subtotal.Mul(discountPct).Div(hundred)
	total := subtotal.Sub(pctDeduction).Sub(discountFixed)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total.Round(2)
}
