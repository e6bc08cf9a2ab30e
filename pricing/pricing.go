// Package pricing derives cart totals from line items.
package pricing

import (
	"github.com/shopspring/decimal"

	"alphastore/models"
)

// DefaultTaxRate is the flat sales tax applied at checkout.
var DefaultTaxRate = decimal.RequireFromString("0.05")

// Line is the pricing view of a cart line.
type Line struct {
	UnitPrice     decimal.Decimal
	DiscountPrice *decimal.Decimal
	Quantity      int
}

// Effective returns the price charged per unit.
func (l Line) Effective() decimal.Decimal {
	if l.DiscountPrice != nil {
		return *l.DiscountPrice
	}
	return l.UnitPrice
}

// Summary holds the derived totals. No rounding is applied.
type Summary struct {
	Items      int
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	GrandTotal decimal.Decimal
}

// Calculator applies a fixed tax rate to a set of lines.
type Calculator struct {
	Rate decimal.Decimal
}

// New returns a Calculator for the given rate.
func New(rate float64) Calculator {
	return Calculator{Rate: decimal.NewFromFloat(rate)}
}

// Default returns a Calculator using DefaultTaxRate.
func Default() Calculator {
	return Calculator{Rate: DefaultTaxRate}
}

// Calculate sums effective price times quantity over all lines and applies
// the tax rate: GrandTotal = Subtotal + Subtotal*Rate.
func (c Calculator) Calculate(lines []Line) Summary {
	s := Summary{Subtotal: decimal.Zero}
	for _, l := range lines {
		qty := decimal.NewFromInt(int64(l.Quantity))
		s.Subtotal = s.Subtotal.Add(l.Effective().Mul(qty))
		s.Items += l.Quantity
	}
	s.Tax = s.Subtotal.Mul(c.Rate)
	s.GrandTotal = s.Subtotal.Add(s.Tax)
	return s
}

// CalculateCart prices a slice of cart lines.
func (c Calculator) CalculateCart(lines []models.CartLine) Summary {
	return c.Calculate(FromCart(lines))
}

// FromCart converts cart lines into pricing lines.
func FromCart(lines []models.CartLine) []Line {
	out := make([]Line, len(lines))
	for i, l := range lines {
		out[i] = Line{
			UnitPrice: decimal.NewFromFloat(l.UnitPrice),
			Quantity:  l.Quantity,
		}
		if l.DiscountPrice != nil {
			d := decimal.NewFromFloat(*l.DiscountPrice)
			out[i].DiscountPrice = &d
		}
	}
	return out
}

// Float converts an amount for storage, rounded to cents.
func Float(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
