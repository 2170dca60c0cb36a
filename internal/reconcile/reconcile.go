// Package reconcile merges duplicate basket and list entries: it combines two
// free-text quantities and finds the existing entry a new one should be
// absorbed into, using a specificity-tiered identity match.
package reconcile

import (
	"github.com/shopspring/decimal"

	"github.com/rgoulet/pricebook/internal/pricing"
)

// MergeQuantities combines two free-text quantities. When both parse as real
// numbers the result is their sum, rendered without a decimal point when
// whole. Otherwise the fallback is the literal concatenation "a+b" — a
// non-numeric quantity like "a bunch" is an expected case, not an error.
func MergeQuantities(a, b string) string {
	da, errA := decimal.NewFromString(a)
	db, errB := decimal.NewFromString(b)
	if errA != nil || errB != nil {
		return a + "+" + b
	}
	sum := da.Add(db)
	if sum.IsInteger() {
		return sum.Truncate(0).String()
	}
	return sum.String()
}

// FindMatch returns the index of the first existing item the candidate should
// merge into, or -1 when a new entry should be created instead. Items are
// tried in their given order against three mutually exclusive tiers:
//
//	store tier:   both sides reference the same price record and carry equal
//	              purchase-unit references (including both absent);
//	variant tier: neither side has a price record, both reference the same
//	              variant, and purchase-unit references are equal;
//	product tier: neither side has a price record or variant, both reference
//	              the same bare product.
//
// A store-tier match requires price records that the variant tier explicitly
// forbids, so an item never matches at a lower tier than its own specificity.
func FindMatch(candidate pricing.LineItem, existing []pricing.LineItem) int {
	for i, item := range existing {
		if sameStoreTier(candidate, item) || sameVariantTier(candidate, item) || sameProductTier(candidate, item) {
			return i
		}
	}
	return -1
}

func sameStoreTier(a, b pricing.LineItem) bool {
	return refsEqual(a.PriceRecordRef(), b.PriceRecordRef()) &&
		a.PriceRecordRef() != nil &&
		refsEqual(a.PurchaseUnitRef(), b.PurchaseUnitRef())
}

func sameVariantTier(a, b pricing.LineItem) bool {
	return a.PriceRecordRef() == nil && b.PriceRecordRef() == nil &&
		a.VariantRef() != nil &&
		refsEqual(a.VariantRef(), b.VariantRef()) &&
		refsEqual(a.PurchaseUnitRef(), b.PurchaseUnitRef())
}

func sameProductTier(a, b pricing.LineItem) bool {
	return a.PriceRecordRef() == nil && b.PriceRecordRef() == nil &&
		a.VariantRef() == nil && b.VariantRef() == nil &&
		a.ProductRef() != nil &&
		refsEqual(a.ProductRef(), b.ProductRef())
}

// refsEqual treats two nullable ID references as equal when both are absent
// or both point at the same identity.
func refsEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
