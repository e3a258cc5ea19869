// Package pricing turns line items and a restaurant fee schedule into an
// order cost breakdown. It is the only place the fee percentages live.
package pricing

import (
	"github.com/Shashank-1177/SBFood/apperr"
	"github.com/Shashank-1177/SBFood/models"

	"github.com/shopspring/decimal"
)

var (
	ServiceFeeRate = decimal.RequireFromString("0.05")
	TaxRate        = decimal.RequireFromString("0.08")
)

// MinorUnits is the number of decimal places money is rounded to.
const MinorUnits = 2

type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
	Modifiers []decimal.Decimal
}

// UnitTotal is the unit price plus all variant modifiers.
func (l Line) UnitTotal() decimal.Decimal {
	p := l.UnitPrice
	for _, m := range l.Modifiers {
		p = p.Add(m)
	}
	return p
}

// Total is UnitTotal times quantity.
func (l Line) Total() decimal.Decimal {
	return l.UnitTotal().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Calculate computes the breakdown. Inputs are rejected before any sum is taken.
func Calculate(lines []Line, deliveryFee decimal.Decimal) (models.Pricing, error) {
	if deliveryFee.IsNegative() {
		return models.Pricing{}, apperr.Validation("Delivery fee cannot be negative")
	}
	for i, l := range lines {
		if l.Quantity <= 0 {
			return models.Pricing{}, apperr.Validation("Line %d: quantity must be at least 1", i+1)
		}
		if l.UnitPrice.IsNegative() {
			return models.Pricing{}, apperr.Validation("Line %d: price cannot be negative", i+1)
		}
		for _, m := range l.Modifiers {
			if m.IsNegative() {
				return models.Pricing{}, apperr.Validation("Line %d: variant modifier cannot be negative", i+1)
			}
		}
	}

	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Total())
	}
	serviceFee := Round(subtotal.Mul(ServiceFeeRate))
	tax := Round(subtotal.Mul(TaxRate))

	return models.Pricing{
		Subtotal:    subtotal,
		DeliveryFee: deliveryFee,
		ServiceFee:  serviceFee,
		Tax:         tax,
		Discount:    decimal.Zero,
		Total:       subtotal.Add(deliveryFee).Add(serviceFee).Add(tax),
	}, nil
}

// Round rounds half away from zero to the currency's minor unit.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(MinorUnits)
}

// CartLines converts cart items to pricing lines using the given unit prices.
// Items without a price entry are skipped.
func CartLines(items []models.CartItem, prices map[uint]decimal.Decimal) []Line {
	lines := make([]Line, 0, len(items))
	for _, it := range items {
		price, ok := prices[it.ProductID]
		if !ok {
			continue
		}
		lines = append(lines, Line{UnitPrice: price, Quantity: it.Quantity, Modifiers: modifiers(it.Variants)})
	}
	return lines
}

func modifiers(vs []models.SelectedVariant) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.PriceModifier)
	}
	return out
}

// LineFor builds a line from a product and the variants chosen for it.
func LineFor(price decimal.Decimal, quantity int, variants []models.SelectedVariant) Line {
	return Line{UnitPrice: price, Quantity: quantity, Modifiers: modifiers(variants)}
}
