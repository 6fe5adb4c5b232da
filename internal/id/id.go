// Package id generates prefixed, K-sortable identifiers for every stored entity.
//
// Identifiers use the TypeID format "prefix_suffix" so that a batch id can
// never be mistaken for a medicine id when it reaches an API boundary.
package id

import (
	"fmt"
	"strings"

	"go.jetify.com/typeid/v2"
)

// Prefix identifies the entity type encoded in an identifier.
type Prefix string

const (
	PrefixMedicine     Prefix = "med"
	PrefixBatch        Prefix = "bat"
	PrefixLedgerEntry  Prefix = "txn"
	PrefixSale         Prefix = "sale"
	PrefixSaleItem     Prefix = "si"
	PrefixPurchase     Prefix = "pur"
	PrefixPurchaseItem Prefix = "pi"
)

// New returns a fresh identifier with the given prefix.
// It panics if prefix is not a valid TypeID prefix (programming error).
func New(prefix Prefix) string {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", prefix, err))
	}
	return tid.String()
}

// Parse validates s as an identifier and returns its prefix.
func Parse(s string) (Prefix, error) {
	if s == "" {
		return "", fmt.Errorf("id: parse %q: empty string", s)
	}
	tid, err := typeid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("id: parse %q: %w", s, err)
	}
	return Prefix(tid.Prefix()), nil
}

// Is reports whether s looks like an identifier of the given entity type.
// It only inspects the prefix; callers that need a full check use Parse.
func Is(s string, prefix Prefix) bool {
	return strings.HasPrefix(s, string(prefix)+"_")
}
