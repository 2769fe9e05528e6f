package service

import (
	"github.com/shopspring/decimal"
)

// PricingRules are merchant-configured and loaded once at process start.
type PricingRules struct {
	TaxRatePercent        decimal.Decimal
	ShippingFlatFee       decimal.Decimal
	ShippingFreeThreshold decimal.Decimal
}

type PricedLine struct {
	PriceEach decimal.Decimal
	Quantity  int
}

type Totals struct {
	Subtotal decimal.Decimal
	Taxes    decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// quantize rounds to 2 decimal places, half up. Cart display and order
// persistence must share this rounding so the price-match check stays exact.
func quantize(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ComputeTotals is the pure pricing engine: subtotal, taxes, shipping, total
// from the line set and rules. No side effects.
func ComputeTotals(lines []PricedLine, rules PricingRules) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.PriceEach.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	subtotal = quantize(subtotal)

	taxes := decimal.Zero.Round(2)
	if rules.TaxRatePercent.IsPositive() {
		taxes = quantize(subtotal.Mul(rules.TaxRatePercent.Div(hundred)))
	}

	shipping := decimal.Zero.Round(2)
	if rules.ShippingFlatFee.IsPositive() {
		free := rules.ShippingFreeThreshold.IsPositive() &&
			subtotal.GreaterThanOrEqual(rules.ShippingFreeThreshold)
		if !free {
			shipping = quantize(rules.ShippingFlatFee)
		}
	}

	return Totals{
		Subtotal: subtotal,
		Taxes:    taxes,
		Shipping: shipping,
		Total:    quantize(subtotal.Add(taxes).Add(shipping)),
	}
}
