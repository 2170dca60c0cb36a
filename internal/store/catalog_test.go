package store

import (
	"testing"

	"github.com/rgoulet/pricebook/internal/database"
	"github.com/rgoulet/pricebook/internal/unit"
)

func setupCatalogTestDB(t *testing.T) *CatalogStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewCatalogStore(db)
}

func TestProductCRUD(t *testing.T) {
	cs := setupCatalogTestDB(t)

	p, err := cs.CreateProduct("Milk", "Dairy")
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if p.Name != "Milk" || p.Category != "Dairy" {
		t.Errorf("product = %+v, want Milk/Dairy", p)
	}

	got, err := cs.GetProductByID(p.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if got.Name != "Milk" {
		t.Errorf("got name = %q, want Milk", got.Name)
	}

	updated, err := cs.UpdateProduct(p.ID, "Whole Milk", "Dairy")
	if err != nil {
		t.Fatalf("update product: %v", err)
	}
	if updated.Name != "Whole Milk" {
		t.Errorf("updated name = %q, want Whole Milk", updated.Name)
	}

	if err := cs.DeleteProduct(p.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}
	got, err = cs.GetProductByID(p.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestVariantLifecycle(t *testing.T) {
	cs := setupCatalogTestDB(t)

	p, _ := cs.CreateProduct("Milk", "Dairy")
	b, _ := cs.CreateBrand("Hilltop")

	v, err := cs.CreateVariant(p.ID, &b.ID, "2% fat", unit.Liter)
	if err != nil {
		t.Fatalf("create variant: %v", err)
	}
	if v.BaseUnit != unit.Liter {
		t.Errorf("base unit = %s, want l", v.BaseUnit)
	}
	if v.BrandID == nil || *v.BrandID != b.ID {
		t.Errorf("brand = %v, want %d", v.BrandID, b.ID)
	}

	variants, err := cs.ListVariantsByProduct(p.ID)
	if err != nil {
		t.Fatalf("list variants: %v", err)
	}
	if len(variants) != 1 {
		t.Fatalf("variants = %d, want 1", len(variants))
	}

	// Deleting the brand nulls the variant's reference, not the variant.
	if err := cs.DeleteBrand(b.ID); err != nil {
		t.Fatalf("delete brand: %v", err)
	}
	got, _ := cs.GetVariantByID(v.ID)
	if got == nil {
		t.Fatal("variant should survive brand deletion")
	}
	if got.BrandID != nil {
		t.Errorf("brand ref = %v, want nil after brand deletion", got.BrandID)
	}
}

func TestChangeBaseUnitClearsPurchaseUnits(t *testing.T) {
	cs := setupCatalogTestDB(t)

	p, _ := cs.CreateProduct("Rice", "Pantry")
	v, _ := cs.CreateVariant(p.ID, nil, "", unit.Gram)
	if _, err := cs.CreatePurchaseUnit(v.ID, "bag", unit.Gram, 0.001, false); err != nil {
		t.Fatalf("create purchase unit: %v", err)
	}

	changed, err := cs.ChangeBaseUnit(v.ID, unit.Kilogram)
	if err != nil {
		t.Fatalf("change base unit: %v", err)
	}
	if changed.BaseUnit != unit.Kilogram {
		t.Errorf("base unit = %s, want kg", changed.BaseUnit)
	}

	units, err := cs.ListPurchaseUnitsByVariant(v.ID)
	if err != nil {
		t.Fatalf("list purchase units: %v", err)
	}
	if len(units) != 0 {
		t.Errorf("purchase units = %d, want 0 after base unit change", len(units))
	}
}

func TestPurchaseUnitRoundTrip(t *testing.T) {
	cs := setupCatalogTestDB(t)

	p, _ := cs.CreateProduct("Soda", "Beverages")
	v, _ := cs.CreateVariant(p.ID, nil, "", unit.Liter)

	u, err := cs.CreatePurchaseUnit(v.ID, "bottle", unit.Liter, 0.5, true)
	if err != nil {
		t.Fatalf("create purchase unit: %v", err)
	}
	if u.ConversionToBase != 0.5 {
		t.Errorf("conversion = %v, want 0.5", u.ConversionToBase)
	}
	if !u.IsInverted {
		t.Error("expected inverted flag to round-trip")
	}

	updated, err := cs.UpdatePurchaseUnit(u.ID, "bottle", unit.Liter, 2, false)
	if err != nil {
		t.Fatalf("update purchase unit: %v", err)
	}
	if updated.ConversionToBase != 2 || updated.IsInverted {
		t.Errorf("updated = %+v, want conversion 2, not inverted", updated)
	}
}

func TestGetStoreByNameCaseInsensitive(t *testing.T) {
	cs := setupCatalogTestDB(t)

	if _, err := cs.CreateStore("Corner Market", "Main St"); err != nil {
		t.Fatalf("create store: %v", err)
	}

	st, err := cs.GetStoreByName("corner market")
	if err != nil {
		t.Fatalf("get store by name: %v", err)
	}
	if st == nil {
		t.Fatal("expected case-insensitive match")
	}
	if st.Name != "Corner Market" {
		t.Errorf("name = %q, want Corner Market", st.Name)
	}

	missing, err := cs.GetStoreByName("nowhere")
	if err != nil {
		t.Fatalf("get missing store: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown store")
	}
}
