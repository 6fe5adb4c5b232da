package id_test

import (
	"strings"
	"testing"

	"pharmacy-erp/internal/id"
)

func TestNew(t *testing.T) {
	tests := []struct {
		prefix id.Prefix
		want   string
	}{
		{id.PrefixMedicine, "med_"},
		{id.PrefixBatch, "bat_"},
		{id.PrefixLedgerEntry, "txn_"},
		{id.PrefixSale, "sale_"},
		{id.PrefixSaleItem, "si_"},
		{id.PrefixPurchase, "pur_"},
		{id.PrefixPurchaseItem, "pi_"},
	}

	for _, tt := range tests {
		t.Run(string(tt.prefix), func(t *testing.T) {
			got := id.New(tt.prefix)
			if !strings.HasPrefix(got, tt.want) {
				t.Errorf("expected prefix %q, got %q", tt.want, got)
			}
			if !id.Is(got, tt.prefix) {
				t.Errorf("Is(%q, %q) = false", got, tt.prefix)
			}
		})
	}
}

func TestNewIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		v := id.New(id.PrefixLedgerEntry)
		if seen[v] {
			t.Fatalf("duplicate id generated: %s", v)
		}
		seen[v] = true
	}
}

func TestParse(t *testing.T) {
	v := id.New(id.PrefixBatch)
	prefix, err := id.Parse(v)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", v, err)
	}
	if prefix != id.PrefixBatch {
		t.Errorf("expected prefix %q, got %q", id.PrefixBatch, prefix)
	}

	for _, bad := range []string{"", "not an id", "bat_!!!"} {
		if _, err := id.Parse(bad); err == nil {
			t.Errorf("Parse(%q) should fail", bad)
		}
	}
}
