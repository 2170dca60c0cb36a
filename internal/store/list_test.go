package store

import (
	"testing"

	"github.com/rgoulet/pricebook/internal/database"
	"github.com/rgoulet/pricebook/internal/model"
	"github.com/rgoulet/pricebook/internal/unit"
)

func i64Ptr(v int64) *int64 { return &v }

func setupListTestDB(t *testing.T) (*ListStore, *CatalogStore, *PriceStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewListStore(db), NewCatalogStore(db), NewPriceStore(db)
}

func TestDefaultShoppingListSeed(t *testing.T) {
	ls, _, _ := setupListTestDB(t)

	lists, err := ls.ListShoppingLists()
	if err != nil {
		t.Fatalf("list shopping lists: %v", err)
	}
	if len(lists) != 1 || lists[0].Name != "Weekly" {
		t.Fatalf("lists = %+v, want one seeded list named Weekly", lists)
	}
}

func TestAddToBuyItemMergesSameProduct(t *testing.T) {
	ls, cs, _ := setupListTestDB(t)

	p, _ := cs.CreateProduct("Bread", "Bakery")

	first, merged, err := ls.AddToBuyItem(model.ItemRefs{Quantity: "2", ProductID: &p.ID})
	if err != nil {
		t.Fatalf("add first: %v", err)
	}
	if merged {
		t.Error("first add should not merge")
	}

	second, merged, err := ls.AddToBuyItem(model.ItemRefs{Quantity: "3", ProductID: &p.ID})
	if err != nil {
		t.Fatalf("add second: %v", err)
	}
	if !merged {
		t.Fatal("second add should merge into the first")
	}
	if second.ID != first.ID {
		t.Errorf("merged into item %d, want %d", second.ID, first.ID)
	}
	if second.Quantity != "5" {
		t.Errorf("merged quantity = %q, want 5", second.Quantity)
	}

	items, _ := ls.ListToBuyItems()
	if len(items) != 1 {
		t.Errorf("items = %d, want 1", len(items))
	}
}

func TestAddToBuyItemNonNumericQuantityConcatenates(t *testing.T) {
	ls, cs, _ := setupListTestDB(t)

	p, _ := cs.CreateProduct("Basil", "Produce")

	if _, _, err := ls.AddToBuyItem(model.ItemRefs{Quantity: "a bunch", ProductID: &p.ID}); err != nil {
		t.Fatalf("add first: %v", err)
	}
	got, merged, err := ls.AddToBuyItem(model.ItemRefs{Quantity: "2", ProductID: &p.ID})
	if err != nil {
		t.Fatalf("add second: %v", err)
	}
	if !merged {
		t.Fatal("expected a merge")
	}
	if got.Quantity != "a bunch+2" {
		t.Errorf("quantity = %q, want %q", got.Quantity, "a bunch+2")
	}
}

func TestAddToBuyItemDoesNotMergeAcrossTiers(t *testing.T) {
	ls, cs, ps := setupListTestDB(t)

	p, _ := cs.CreateProduct("Milk", "Dairy")
	v, _ := cs.CreateVariant(p.ID, nil, "", unit.Liter)
	st, _ := cs.CreateStore("Corner Market", "")
	rec, _ := ps.Create(v.ID, st.ID, decPtr("1.20"), nil)

	if _, _, err := ls.AddToBuyItem(model.ItemRefs{Quantity: "1", VariantID: &v.ID}); err != nil {
		t.Fatalf("add variant item: %v", err)
	}
	_, merged, err := ls.AddToBuyItem(model.ItemRefs{Quantity: "1", StoreVariantInfoID: &rec.ID})
	if err != nil {
		t.Fatalf("add store-priced item: %v", err)
	}
	if merged {
		t.Error("store-priced item must not merge with a variant-tier item")
	}

	items, _ := ls.ListToBuyItems()
	if len(items) != 2 {
		t.Errorf("items = %d, want 2", len(items))
	}
}

func TestAddToBuyItemSkipsCheckedItems(t *testing.T) {
	ls, cs, _ := setupListTestDB(t)

	p, _ := cs.CreateProduct("Bread", "Bakery")
	first, _, _ := ls.AddToBuyItem(model.ItemRefs{Quantity: "1", ProductID: &p.ID})
	if _, err := ls.SetToBuyChecked(first.ID, true); err != nil {
		t.Fatalf("check item: %v", err)
	}

	_, merged, err := ls.AddToBuyItem(model.ItemRefs{Quantity: "1", ProductID: &p.ID})
	if err != nil {
		t.Fatalf("add after check: %v", err)
	}
	if merged {
		t.Error("checked items must not absorb new entries")
	}
}

func TestDeletePurchaseUnitNullifiesLineItemRef(t *testing.T) {
	ls, cs, _ := setupListTestDB(t)

	p, _ := cs.CreateProduct("Soda", "Beverages")
	v, _ := cs.CreateVariant(p.ID, nil, "", unit.Liter)
	pu, _ := cs.CreatePurchaseUnit(v.ID, "bottle", unit.Liter, 2, false)

	item, _, err := ls.AddToBuyItem(model.ItemRefs{Quantity: "2", VariantID: &v.ID, PurchaseUnitID: &pu.ID})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	if err := cs.DeletePurchaseUnit(pu.ID); err != nil {
		t.Fatalf("delete purchase unit: %v", err)
	}

	got, err := ls.GetToBuyItemByID(item.ID)
	if err != nil {
		t.Fatalf("reload item: %v", err)
	}
	if got == nil {
		t.Fatal("line item should survive purchase-unit deletion")
	}
	if got.PurchaseUnitID != nil {
		t.Errorf("purchase unit ref = %v, want nil", got.PurchaseUnitID)
	}
}

func TestShoppingListItemsAndTemplates(t *testing.T) {
	ls, cs, _ := setupListTestDB(t)

	p, _ := cs.CreateProduct("Rice", "Pantry")
	lists, _ := ls.ListShoppingLists()

	item, err := ls.CreateListItem(lists[0].ID, model.ItemRefs{Quantity: "1", ProductID: &p.ID})
	if err != nil {
		t.Fatalf("create list item: %v", err)
	}
	items, _ := ls.ListItemsByList(lists[0].ID)
	if len(items) != 1 || items[0].ID != item.ID {
		t.Fatalf("items = %+v, want the created item", items)
	}

	tpl, err := ls.CreateTemplate("Staples")
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	if _, err := ls.CreateTemplateItem(tpl.ID, model.ItemRefs{Quantity: "2", ProductID: &p.ID}); err != nil {
		t.Fatalf("create template item: %v", err)
	}

	added, mergedCount, err := ls.InstantiateTemplate(tpl.ID)
	if err != nil {
		t.Fatalf("instantiate template: %v", err)
	}
	if added != 1 || mergedCount != 0 {
		t.Errorf("instantiate = %d added, %d merged; want 1, 0", added, mergedCount)
	}

	// Instantiating again merges into the basket entry created above.
	added, mergedCount, err = ls.InstantiateTemplate(tpl.ID)
	if err != nil {
		t.Fatalf("instantiate again: %v", err)
	}
	if added != 0 || mergedCount != 1 {
		t.Errorf("second instantiate = %d added, %d merged; want 0, 1", added, mergedCount)
	}

	toBuy, _ := ls.ListToBuyItems()
	if len(toBuy) != 1 || toBuy[0].Quantity != "4" {
		t.Fatalf("basket = %+v, want one item with quantity 4", toBuy)
	}
}
