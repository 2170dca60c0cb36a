package receipt

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rgoulet/pricebook/internal/model"
	"github.com/rgoulet/pricebook/internal/unit"
)

func i64Ptr(v int64) *int64 { return &v }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func fixtureSnapshot() Snapshot {
	return Snapshot{
		Products: []model.Product{
			{ID: 1, Name: "Milk"},
			{ID: 2, Name: "Eggs"},
			{ID: 3, Name: "Coffee"},
		},
		Brands: []model.Brand{
			{ID: 1, Name: "Hilltop"},
			{ID: 2, Name: "Morningside"},
		},
		Variants: []model.ProductVariant{
			{ID: 10, ProductID: 1, BrandID: i64Ptr(1), BaseUnit: unit.Liter},
			{ID: 11, ProductID: 1, BrandID: i64Ptr(2), BaseUnit: unit.Liter},
			{ID: 12, ProductID: 2, BaseUnit: unit.Count},
		},
		Prices: []model.StoreVariantInfo{
			{ID: 30, VariantID: 10, StoreID: 1, PricePerUnit: decPtr("1.20")},
			{ID: 31, VariantID: 12, StoreID: 2, PricePerUnit: decPtr("3.99")},
		},
	}
}

func TestClassifyNoHint(t *testing.T) {
	items := []model.ParsedReceiptItem{
		{Text: "  WHL  MLK 2%", TotalPrice: decimal.RequireFromString("2.49"), Quantity: 1},
	}
	got := Classify(items, 1, fixtureSnapshot())
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
	m := got[0]
	if m.Status != model.MatchStatusNoMatch {
		t.Errorf("status = %s, want no_match", m.Status)
	}
	if m.Name != "Whl Mlk 2%" {
		t.Errorf("suggested name = %q, want %q", m.Name, "Whl Mlk 2%")
	}
	if !m.Included {
		t.Error("items should default to included")
	}
}

func TestClassifyHintNotInCatalog(t *testing.T) {
	items := []model.ParsedReceiptItem{
		{Text: "ORG BNNA", ProductName: "Bananas", TotalPrice: decimal.RequireFromString("1.10"), Quantity: 1},
	}
	got := Classify(items, 1, fixtureSnapshot())
	if got[0].Status != model.MatchStatusNoMatch {
		t.Fatalf("status = %s, want no_match", got[0].Status)
	}
	// The parser's hint is used verbatim, not the cleaned receipt text.
	if got[0].Name != "Bananas" {
		t.Errorf("suggested name = %q, want %q", got[0].Name, "Bananas")
	}
}

func TestClassifyCaseInsensitiveProductLookup(t *testing.T) {
	items := []model.ParsedReceiptItem{
		{Text: "COFFEE", ProductName: "coffee", TotalPrice: decimal.RequireFromString("7.99"), Quantity: 1},
	}
	got := Classify(items, 1, fixtureSnapshot())
	if got[0].Status != model.MatchStatusMatched {
		t.Fatalf("status = %s, want matched", got[0].Status)
	}
	if got[0].ProductID == nil || *got[0].ProductID != 3 {
		t.Errorf("product = %v, want 3", got[0].ProductID)
	}
	// Coffee has no variants: nothing to select.
	if got[0].VariantID != nil {
		t.Errorf("variant = %v, want nil", got[0].VariantID)
	}
}

func TestClassifyBrandHintSelectsVariant(t *testing.T) {
	items := []model.ParsedReceiptItem{
		{Text: "MILK", ProductName: "Milk", BrandName: "morningside", TotalPrice: decimal.RequireFromString("1.35"), Quantity: 1},
	}
	got := Classify(items, 1, fixtureSnapshot())
	m := got[0]
	if m.Status != model.MatchStatusMatched {
		t.Fatalf("status = %s, want matched", m.Status)
	}
	if m.VariantID == nil || *m.VariantID != 11 {
		t.Fatalf("variant = %v, want 11", m.VariantID)
	}
	// Variant 11 has no price at store 1.
	if m.StoreVariantInfoID != nil {
		t.Errorf("price record = %v, want nil", m.StoreVariantInfoID)
	}
}

func TestClassifyAmbiguousVariantLeftUnselected(t *testing.T) {
	// Milk has two variants and no brand hint: deliberately not guessed.
	items := []model.ParsedReceiptItem{
		{Text: "MILK", ProductName: "Milk", TotalPrice: decimal.RequireFromString("1.35"), Quantity: 1},
	}
	got := Classify(items, 1, fixtureSnapshot())
	if got[0].Status != model.MatchStatusMatched {
		t.Fatalf("status = %s, want matched", got[0].Status)
	}
	if got[0].VariantID != nil {
		t.Errorf("variant = %v, want nil for ambiguous product", got[0].VariantID)
	}
}

func TestClassifySingleVariantWithStorePrice(t *testing.T) {
	items := []model.ParsedReceiptItem{
		{Text: "EGGS LG", ProductName: "Eggs", TotalPrice: decimal.RequireFromString("3.99"), Quantity: 1},
	}
	got := Classify(items, 2, fixtureSnapshot())
	m := got[0]
	if m.VariantID == nil || *m.VariantID != 12 {
		t.Fatalf("variant = %v, want 12", m.VariantID)
	}
	if m.StoreVariantInfoID == nil || *m.StoreVariantInfoID != 31 {
		t.Errorf("price record = %v, want 31", m.StoreVariantInfoID)
	}
}

func TestClassifyDefaultLinePrice(t *testing.T) {
	items := []model.ParsedReceiptItem{
		{Text: "A", TotalPrice: decimal.RequireFromString("4.50"), Quantity: 3},
		{Text: "B", TotalPrice: decimal.RequireFromString("4.50"), Quantity: 3, UnitPrice: decPtr("1.49")},
	}
	got := Classify(items, 1, fixtureSnapshot())
	if want := decimal.RequireFromString("1.50"); got[0].Price == nil || !got[0].Price.Equal(want) {
		t.Errorf("derived price = %v, want %s", got[0].Price, want)
	}
	if want := decimal.RequireFromString("1.49"); got[1].Price == nil || !got[1].Price.Equal(want) {
		t.Errorf("declared price = %v, want %s", got[1].Price, want)
	}
}

func TestCleanName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"WHL MILK", "Whl Milk"},
		{"  two   spaces ", "Two Spaces"},
		{"2% milk", "2% Milk"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CleanName(tt.in); got != tt.want {
			t.Errorf("CleanName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
