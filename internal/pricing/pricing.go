// Package pricing holds the sale pricing arithmetic. All functions are
// pure: they take decimals in and return decimals out, with no I/O and
// no rounding beyond what the inputs carry.
package pricing

import "github.com/shopspring/decimal"

// ItemInput is the per-line pricing breakdown of a sale item.
type ItemInput struct {
	GoldPrice        decimal.Decimal
	StonePrice       decimal.Decimal
	CraftsmanshipFee decimal.Decimal
	Discount         decimal.Decimal
	Quantity         int
}

// ItemSubtotal prices one sale line:
// (goldPrice + stonePrice + craftsmanshipFee - discount) * quantity.
func ItemSubtotal(in ItemInput) decimal.Decimal {
	unit := in.GoldPrice.
		Add(in.StonePrice).
		Add(in.CraftsmanshipFee).
		Sub(in.Discount)
	return unit.Mul(decimal.NewFromInt(int64(in.Quantity)))
}

// UnitPrice is the effective per-unit price of a line after its
// per-unit discount.
func UnitPrice(in ItemInput) decimal.Decimal {
	return in.GoldPrice.
		Add(in.StonePrice).
		Add(in.CraftsmanshipFee).
		Sub(in.Discount)
}

// Totals is the document-level result of pricing a sale.
type Totals struct {
	Subtotal decimal.Decimal
	Total    decimal.Decimal
}

// SaleTotals sums line subtotals and applies document-level tax and
// discount: total = subtotal + tax - discount.
func SaleTotals(items []ItemInput, tax, discount decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(ItemSubtotal(it))
	}
	return Totals{
		Subtotal: subtotal,
		Total:    subtotal.Add(tax).Sub(discount),
	}
}
