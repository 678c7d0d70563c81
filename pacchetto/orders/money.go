package orders

import "github.com/shopspring/decimal"

func init() {
	// Amounts travel as JSON numbers on the wire.
	decimal.MarshalJSONWithoutQuotes = true
}

// DefaultTaxRate is the VAT applied to the subtotal of every order.
var DefaultTaxRate = decimal.RequireFromString("0.026")

// CHF parses a franc amount such as "6.00". It panics on malformed input and
// is meant for constants and fixtures.
func CHF(amount string) decimal.Decimal {
	return decimal.RequireFromString(amount)
}

// Totals holds the monetary components of an order. The total is always
// derived from them.
type Totals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	TaxAmount   decimal.Decimal `json:"taxAmount"`
	Discount    decimal.Decimal `json:"discount"`
}

func (t Totals) Total() decimal.Decimal {
	return t.Subtotal.Add(t.DeliveryFee).Add(t.TaxAmount).Sub(t.Discount)
}

// ComputeTotals prices items, applies taxRate to the subtotal and caps the
// discount at the subtotal. Tax is rounded to the centime.
func ComputeTotals(items []Item, deliveryFee, taxRate, discount decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.LineTotal())
	}

	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	return Totals{
		Subtotal:    subtotal,
		DeliveryFee: deliveryFee,
		TaxAmount:   subtotal.Mul(taxRate).Round(2),
		Discount:    discount,
	}
}
