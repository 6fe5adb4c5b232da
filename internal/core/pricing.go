package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places kept for every monetary amount.
const MoneyPlaces = 2

// Stored precision of catalog and purchase inputs.
const (
	PricePlaces   = 4
	TaxRatePlaces = 2
)

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)

	// maxPrice bounds unit prices to eight integer digits.
	maxPrice = decimal.New(1, 8)
	// maxAmount bounds order and line totals to twelve integer digits.
	maxAmount = decimal.New(1, 12)
)

// fitsPlaces reports whether d has no non-zero digit beyond places decimals.
func fitsPlaces(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}

// checkPrice validates a unit price against its stored precision.
func checkPrice(name string, d decimal.Decimal) error {
	switch {
	case d.IsNegative():
		return fmt.Errorf("%s cannot be negative, got %s", name, d)
	case !fitsPlaces(d, PricePlaces):
		return fmt.Errorf("%s allows at most %d decimal places, got %s", name, PricePlaces, d)
	case d.GreaterThanOrEqual(maxPrice):
		return fmt.Errorf("%s must be below %s, got %s", name, maxPrice, d)
	}
	return nil
}

// LinePrice is the priced result of one sale line.
type LinePrice struct {
	LineTotal  decimal.Decimal
	TaxAmount  decimal.Decimal
	CentralTax decimal.Decimal
	StateTax   decimal.Decimal
}

// RoundMoney rounds half away from zero to MoneyPlaces.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// PriceSaleLine computes the line total and tax split for quantity units at
// unitPrice with taxRate percent. CentralTax + StateTax always equals TaxAmount;
// when TaxAmount has an odd last cent the extra cent goes to StateTax.
func PriceSaleLine(unitPrice decimal.Decimal, quantity int64, taxRate decimal.Decimal) LinePrice {
	lineTotal := RoundMoney(unitPrice.Mul(decimal.NewFromInt(quantity)))
	tax := RoundMoney(lineTotal.Mul(taxRate).Div(hundred))
	central := RoundMoney(tax.Div(two))
	if central.Mul(two).GreaterThan(tax) {
		// half-up pushed the central share past half; keep it the smaller share
		central = central.Sub(decimal.New(1, -MoneyPlaces))
	}
	return LinePrice{
		LineTotal:  lineTotal,
		TaxAmount:  tax,
		CentralTax: central,
		StateTax:   tax.Sub(central),
	}
}

// PricePurchaseLine returns unitPurchasePrice × units, rounded.
func PricePurchaseLine(unitPurchasePrice decimal.Decimal, units int64) decimal.Decimal {
	return RoundMoney(unitPurchasePrice.Mul(decimal.NewFromInt(units)))
}

// SaleTotals accumulates order-level totals across priced lines.
type SaleTotals struct {
	SubTotal   decimal.Decimal
	TotalTax   decimal.Decimal
	GrandTotal decimal.Decimal
}

// Add folds one priced line into the totals.
func (t *SaleTotals) Add(p LinePrice) {
	t.SubTotal = t.SubTotal.Add(p.LineTotal)
	t.TotalTax = t.TotalTax.Add(p.TaxAmount)
	t.GrandTotal = t.SubTotal.Add(t.TotalTax)
}
