package core_test

import (
	"testing"

	"pharmacy-erp/internal/core"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPriceSaleLine(t *testing.T) {
	tests := []struct {
		name        string
		unitPrice   string
		qty         int64
		taxRate     string
		wantLine    string
		wantTax     string
		wantCentral string
		wantState   string
	}{
		{"twelve percent of 100", "10.00", 10, "12", "100.00", "12.00", "6.00", "6.00"},
		{"zero tax", "5.00", 8, "0", "40.00", "0.00", "0.00", "0.00"},
		{"five percent", "5.50", 3, "5", "16.50", "0.83", "0.41", "0.42"},
		{"odd cent split", "0.50", 1, "10", "0.50", "0.05", "0.02", "0.03"},
		{"eighteen percent", "12.75", 7, "18", "89.25", "16.07", "8.03", "8.04"},
		{"fractional rate", "99.99", 2, "2.5", "199.98", "5.00", "2.50", "2.50"},
		{"sub-cent unit price", "0.125", 3, "12", "0.38", "0.05", "0.02", "0.03"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.PriceSaleLine(d(tt.unitPrice), tt.qty, d(tt.taxRate))
			if got.LineTotal.StringFixed(2) != tt.wantLine {
				t.Errorf("LineTotal = %s, want %s", got.LineTotal.StringFixed(2), tt.wantLine)
			}
			if got.TaxAmount.StringFixed(2) != tt.wantTax {
				t.Errorf("TaxAmount = %s, want %s", got.TaxAmount.StringFixed(2), tt.wantTax)
			}
			if got.CentralTax.StringFixed(2) != tt.wantCentral {
				t.Errorf("CentralTax = %s, want %s", got.CentralTax.StringFixed(2), tt.wantCentral)
			}
			if got.StateTax.StringFixed(2) != tt.wantState {
				t.Errorf("StateTax = %s, want %s", got.StateTax.StringFixed(2), tt.wantState)
			}
			if !got.CentralTax.Add(got.StateTax).Equal(got.TaxAmount) {
				t.Errorf("tax halves %s + %s do not sum to %s", got.CentralTax, got.StateTax, got.TaxAmount)
			}
		})
	}
}

func TestPriceSaleLine_HalvesAlwaysSum(t *testing.T) {
	rates := []string{"0", "5", "12", "18", "28", "2.5", "0.1"}
	for cents := int64(1); cents <= 2500; cents += 7 {
		price := decimal.New(cents, -2)
		for _, r := range rates {
			p := core.PriceSaleLine(price, 3, d(r))
			if !p.CentralTax.Add(p.StateTax).Equal(p.TaxAmount) {
				t.Fatalf("price %s rate %s: %s + %s != %s", price, r, p.CentralTax, p.StateTax, p.TaxAmount)
			}
			diff := p.StateTax.Sub(p.CentralTax)
			if diff.IsNegative() || diff.GreaterThan(d("0.01")) {
				t.Fatalf("price %s rate %s: halves %s and %s differ by more than one cent", price, r, p.CentralTax, p.StateTax)
			}
		}
	}
}

func TestPricePurchaseLine(t *testing.T) {
	got := core.PricePurchaseLine(d("2.00"), 50)
	if got.StringFixed(2) != "100.00" {
		t.Errorf("PricePurchaseLine = %s, want 100.00", got.StringFixed(2))
	}
	if !core.PricePurchaseLine(d("0"), 10).IsZero() {
		t.Error("free goods should total zero")
	}
}

func TestSaleTotals_Add(t *testing.T) {
	var totals core.SaleTotals
	totals.Add(core.PriceSaleLine(d("5.00"), 8, d("12")))
	totals.Add(core.PriceSaleLine(d("5.50"), 2, d("5")))

	if totals.SubTotal.StringFixed(2) != "51.00" {
		t.Errorf("SubTotal = %s, want 51.00", totals.SubTotal.StringFixed(2))
	}
	if totals.TotalTax.StringFixed(2) != "5.35" {
		t.Errorf("TotalTax = %s, want 5.35", totals.TotalTax.StringFixed(2))
	}
	if totals.GrandTotal.StringFixed(2) != "56.35" {
		t.Errorf("GrandTotal = %s, want 56.35", totals.GrandTotal.StringFixed(2))
	}
}
