package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rgoulet/pricebook/internal/model"
)

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func i64Ptr(v int64) *int64 { return &v }

func f64Ptr(v float64) *float64 { return &v }

func TestPriceForPurchaseUnit(t *testing.T) {
	rec := model.StoreVariantInfo{
		PricePerUnit:          decPtr("3.50"),
		PricingUnitID:         i64Ptr(7),
		PricingUnitConversion: f64Ptr(2),
	}
	target := model.PurchaseUnit{ConversionToBase: 4}

	got, ok := PriceForPurchaseUnit(rec, target)
	if !ok {
		t.Fatal("expected a derived price")
	}
	if want := decimal.RequireFromString("1.75"); !got.Equal(want) {
		t.Errorf("derived price = %s, want %s", got, want)
	}
}

func TestPriceForPurchaseUnitSurvivesUnitDeletion(t *testing.T) {
	rec := model.StoreVariantInfo{
		PricePerUnit:          decPtr("3.50"),
		PricingUnitID:         i64Ptr(7),
		PricingUnitConversion: f64Ptr(2),
	}
	target := model.PurchaseUnit{ConversionToBase: 4}

	before, ok := PriceForPurchaseUnit(rec, target)
	if !ok {
		t.Fatal("expected a derived price")
	}

	// Deleting the pricing purchase unit nullifies the reference but leaves
	// the snapshot; the derivation must not change.
	rec.PricingUnitID = nil
	after, ok := PriceForPurchaseUnit(rec, target)
	if !ok {
		t.Fatal("expected a derived price after pricing-unit deletion")
	}
	if !after.Equal(before) {
		t.Errorf("price changed after pricing-unit deletion: %s != %s", after, before)
	}
}

func TestPriceForPurchaseUnitNoPrice(t *testing.T) {
	rec := model.StoreVariantInfo{PricingUnitConversion: f64Ptr(2)}
	if _, ok := PriceForPurchaseUnit(rec, model.PurchaseUnit{ConversionToBase: 4}); ok {
		t.Error("expected absence when the record has no price")
	}
}

func TestPriceForPurchaseUnitZeroFactor(t *testing.T) {
	rec := model.StoreVariantInfo{PricePerUnit: decPtr("3.50")}
	if _, ok := PriceForPurchaseUnit(rec, model.PurchaseUnit{ConversionToBase: 0}); ok {
		t.Error("expected absence for a zero target conversion")
	}
}

func TestPricePerBaseUnit(t *testing.T) {
	tests := []struct {
		name string
		rec  model.StoreVariantInfo
		want string
		ok   bool
	}{
		{
			name: "no pricing unit ever set",
			rec:  model.StoreVariantInfo{PricePerUnit: decPtr("2.99")},
			want: "2.99",
			ok:   true,
		},
		{
			name: "priced per purchase unit",
			rec: model.StoreVariantInfo{
				PricePerUnit:          decPtr("0.50"),
				PricingUnitID:         i64Ptr(3),
				PricingUnitConversion: f64Ptr(8),
			},
			want: "4",
			ok:   true,
		},
		{
			name: "snapshot kept after unit deletion",
			rec: model.StoreVariantInfo{
				PricePerUnit:          decPtr("0.50"),
				PricingUnitConversion: f64Ptr(8),
			},
			want: "4",
			ok:   true,
		},
		{
			name: "no price",
			rec:  model.StoreVariantInfo{},
			ok:   false,
		},
	}

	for _, tt := range tests {
		got, ok := PricePerBaseUnit(tt.rec)
		if ok != tt.ok {
			t.Errorf("%s: ok = %v, want %v", tt.name, ok, tt.ok)
			continue
		}
		if ok && !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("%s: price = %s, want %s", tt.name, got, tt.want)
		}
	}
}
