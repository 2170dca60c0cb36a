package store

import (
	"database/sql"
	"fmt"

	"github.com/rgoulet/pricebook/internal/model"
	"github.com/rgoulet/pricebook/internal/pricing"
	"github.com/rgoulet/pricebook/internal/reconcile"
)

// ListStore persists the to-buy basket, named shopping lists, and reusable
// list templates.
type ListStore struct {
	db *sql.DB
}

func NewListStore(db *sql.DB) *ListStore {
	return &ListStore{db: db}
}

const itemRefCols = `quantity, purchase_unit_id, store_variant_info_id, variant_id, product_id`

func scanItemRefs(refs *model.ItemRefs, purchaseUnitID, priceRecordID, variantID, productID *sql.NullInt64) {
	if purchaseUnitID.Valid {
		refs.PurchaseUnitID = &purchaseUnitID.Int64
	}
	if priceRecordID.Valid {
		refs.StoreVariantInfoID = &priceRecordID.Int64
	}
	if variantID.Valid {
		refs.VariantID = &variantID.Int64
	}
	if productID.Valid {
		refs.ProductID = &productID.Int64
	}
}

// --- To-buy basket ---

const toBuyCols = `id, ` + itemRefCols + `, checked, sort_order, created_at`

func scanToBuyItem(scanner interface{ Scan(...any) error }) (*model.ToBuyItem, error) {
	var item model.ToBuyItem
	var purchaseUnitID, priceRecordID, variantID, productID sql.NullInt64
	var checked int

	err := scanner.Scan(
		&item.ID, &item.Quantity, &purchaseUnitID, &priceRecordID, &variantID, &productID,
		&checked, &item.SortOrder, &item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	scanItemRefs(&item.ItemRefs, &purchaseUnitID, &priceRecordID, &variantID, &productID)
	item.Checked = checked != 0
	return &item, nil
}

func (s *ListStore) GetToBuyItemByID(id int64) (*model.ToBuyItem, error) {
	row := s.db.QueryRow(`SELECT `+toBuyCols+` FROM to_buy_items WHERE id = ?`, id)
	item, err := scanToBuyItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get to-buy item: %w", err)
	}
	return item, nil
}

func (s *ListStore) ListToBuyItems() ([]model.ToBuyItem, error) {
	rows, err := s.db.Query(`SELECT ` + toBuyCols + ` FROM to_buy_items ORDER BY checked ASC, sort_order ASC, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list to-buy items: %w", err)
	}
	defer rows.Close()

	var items []model.ToBuyItem
	for rows.Next() {
		item, err := scanToBuyItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan to-buy item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// AddToBuyItem adds an entry to the basket, merging it into an existing
// unchecked entry of the same specificity tier when one exists. On a merge
// the quantities are combined and the existing row is returned with merged
// reported true.
func (s *ListStore) AddToBuyItem(refs model.ItemRefs) (item *model.ToBuyItem, merged bool, err error) {
	existing, err := s.ListToBuyItems()
	if err != nil {
		return nil, false, err
	}

	candidates := make([]pricing.LineItem, 0, len(existing))
	open := make([]model.ToBuyItem, 0, len(existing))
	for _, it := range existing {
		if it.Checked {
			continue
		}
		candidates = append(candidates, it)
		open = append(open, it)
	}

	if i := reconcile.FindMatch(model.ToBuyItem{ItemRefs: refs}, candidates); i >= 0 {
		target := open[i]
		quantity := reconcile.MergeQuantities(target.Quantity, refs.Quantity)
		if _, err := s.db.Exec(`UPDATE to_buy_items SET quantity = ? WHERE id = ?`, quantity, target.ID); err != nil {
			return nil, false, fmt.Errorf("merge to-buy item: %w", err)
		}
		got, err := s.GetToBuyItemByID(target.ID)
		return got, true, err
	}

	result, err := s.db.Exec(
		`INSERT INTO to_buy_items (`+itemRefCols+`) VALUES (?, ?, ?, ?, ?)`,
		refs.Quantity, nullableID(refs.PurchaseUnitID), nullableID(refs.StoreVariantInfoID),
		nullableID(refs.VariantID), nullableID(refs.ProductID),
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert to-buy item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("last insert id: %w", err)
	}
	got, err := s.GetToBuyItemByID(id)
	return got, false, err
}

func (s *ListStore) UpdateToBuyItem(id int64, refs model.ItemRefs) (*model.ToBuyItem, error) {
	_, err := s.db.Exec(
		`UPDATE to_buy_items SET quantity = ?, purchase_unit_id = ?, store_variant_info_id = ?, variant_id = ?, product_id = ? WHERE id = ?`,
		refs.Quantity, nullableID(refs.PurchaseUnitID), nullableID(refs.StoreVariantInfoID),
		nullableID(refs.VariantID), nullableID(refs.ProductID), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update to-buy item: %w", err)
	}
	return s.GetToBuyItemByID(id)
}

func (s *ListStore) SetToBuyChecked(id int64, checked bool) (*model.ToBuyItem, error) {
	v := 0
	if checked {
		v = 1
	}
	if _, err := s.db.Exec(`UPDATE to_buy_items SET checked = ? WHERE id = ?`, v, id); err != nil {
		return nil, fmt.Errorf("set to-buy checked: %w", err)
	}
	return s.GetToBuyItemByID(id)
}

func (s *ListStore) DeleteToBuyItem(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM to_buy_items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete to-buy item: %w", err)
	}
	return nil
}

func (s *ListStore) ClearCheckedToBuyItems() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM to_buy_items WHERE checked = 1`)
	if err != nil {
		return 0, fmt.Errorf("clear checked: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}

// --- Shopping lists ---

const listCols = `id, name, sort_order, created_at`

func scanList(scanner interface{ Scan(...any) error }) (*model.ShoppingList, error) {
	var l model.ShoppingList
	if err := scanner.Scan(&l.ID, &l.Name, &l.SortOrder, &l.CreatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *ListStore) ListShoppingLists() ([]model.ShoppingList, error) {
	rows, err := s.db.Query(`SELECT ` + listCols + ` FROM shopping_lists ORDER BY sort_order ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list shopping lists: %w", err)
	}
	defer rows.Close()

	var lists []model.ShoppingList
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shopping list: %w", err)
		}
		lists = append(lists, *l)
	}
	return lists, rows.Err()
}

func (s *ListStore) GetShoppingListByID(id int64) (*model.ShoppingList, error) {
	row := s.db.QueryRow(`SELECT `+listCols+` FROM shopping_lists WHERE id = ?`, id)
	l, err := scanList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shopping list: %w", err)
	}
	return l, nil
}

func (s *ListStore) CreateShoppingList(name string) (*model.ShoppingList, error) {
	result, err := s.db.Exec(`INSERT INTO shopping_lists (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("insert shopping list: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetShoppingListByID(id)
}

func (s *ListStore) DeleteShoppingList(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM shopping_lists WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete shopping list: %w", err)
	}
	return nil
}

const listItemCols = `id, list_id, ` + itemRefCols + `, sort_order, created_at`

func scanListItem(scanner interface{ Scan(...any) error }) (*model.ShoppingListItem, error) {
	var item model.ShoppingListItem
	var purchaseUnitID, priceRecordID, variantID, productID sql.NullInt64

	err := scanner.Scan(
		&item.ID, &item.ListID, &item.Quantity, &purchaseUnitID, &priceRecordID, &variantID, &productID,
		&item.SortOrder, &item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	scanItemRefs(&item.ItemRefs, &purchaseUnitID, &priceRecordID, &variantID, &productID)
	return &item, nil
}

func (s *ListStore) ListItemsByList(listID int64) ([]model.ShoppingListItem, error) {
	rows, err := s.db.Query(`SELECT `+listItemCols+` FROM shopping_list_items WHERE list_id = ? ORDER BY sort_order ASC, created_at ASC`, listID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.ShoppingListItem
	for rows.Next() {
		item, err := scanListItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan list item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (s *ListStore) GetListItemByID(id int64) (*model.ShoppingListItem, error) {
	row := s.db.QueryRow(`SELECT `+listItemCols+` FROM shopping_list_items WHERE id = ?`, id)
	item, err := scanListItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get list item: %w", err)
	}
	return item, nil
}

func (s *ListStore) CreateListItem(listID int64, refs model.ItemRefs) (*model.ShoppingListItem, error) {
	result, err := s.db.Exec(
		`INSERT INTO shopping_list_items (list_id, `+itemRefCols+`) VALUES (?, ?, ?, ?, ?, ?)`,
		listID, refs.Quantity, nullableID(refs.PurchaseUnitID), nullableID(refs.StoreVariantInfoID),
		nullableID(refs.VariantID), nullableID(refs.ProductID),
	)
	if err != nil {
		return nil, fmt.Errorf("insert list item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetListItemByID(id)
}

func (s *ListStore) UpdateListItem(id int64, refs model.ItemRefs) (*model.ShoppingListItem, error) {
	_, err := s.db.Exec(
		`UPDATE shopping_list_items SET quantity = ?, purchase_unit_id = ?, store_variant_info_id = ?, variant_id = ?, product_id = ? WHERE id = ?`,
		refs.Quantity, nullableID(refs.PurchaseUnitID), nullableID(refs.StoreVariantInfoID),
		nullableID(refs.VariantID), nullableID(refs.ProductID), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update list item: %w", err)
	}
	return s.GetListItemByID(id)
}

func (s *ListStore) DeleteListItem(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM shopping_list_items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete list item: %w", err)
	}
	return nil
}

// --- List templates ---

const templateCols = `id, name, created_at`

func scanTemplate(scanner interface{ Scan(...any) error }) (*model.ListTemplate, error) {
	var t model.ListTemplate
	if err := scanner.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *ListStore) ListTemplates() ([]model.ListTemplate, error) {
	rows, err := s.db.Query(`SELECT ` + templateCols + ` FROM list_templates ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []model.ListTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

func (s *ListStore) GetTemplateByID(id int64) (*model.ListTemplate, error) {
	row := s.db.QueryRow(`SELECT `+templateCols+` FROM list_templates WHERE id = ?`, id)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

func (s *ListStore) CreateTemplate(name string) (*model.ListTemplate, error) {
	result, err := s.db.Exec(`INSERT INTO list_templates (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("insert template: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetTemplateByID(id)
}

func (s *ListStore) DeleteTemplate(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM list_templates WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}

const templateItemCols = `id, template_id, ` + itemRefCols + `, sort_order, created_at`

func scanTemplateItem(scanner interface{ Scan(...any) error }) (*model.ListTemplateItem, error) {
	var item model.ListTemplateItem
	var purchaseUnitID, priceRecordID, variantID, productID sql.NullInt64

	err := scanner.Scan(
		&item.ID, &item.TemplateID, &item.Quantity, &purchaseUnitID, &priceRecordID, &variantID, &productID,
		&item.SortOrder, &item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	scanItemRefs(&item.ItemRefs, &purchaseUnitID, &priceRecordID, &variantID, &productID)
	return &item, nil
}

func (s *ListStore) ListTemplateItems(templateID int64) ([]model.ListTemplateItem, error) {
	rows, err := s.db.Query(`SELECT `+templateItemCols+` FROM list_template_items WHERE template_id = ? ORDER BY sort_order ASC, created_at ASC`, templateID)
	if err != nil {
		return nil, fmt.Errorf("list template items: %w", err)
	}
	defer rows.Close()

	var items []model.ListTemplateItem
	for rows.Next() {
		item, err := scanTemplateItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (s *ListStore) GetTemplateItemByID(id int64) (*model.ListTemplateItem, error) {
	row := s.db.QueryRow(`SELECT `+templateItemCols+` FROM list_template_items WHERE id = ?`, id)
	item, err := scanTemplateItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get template item: %w", err)
	}
	return item, nil
}

func (s *ListStore) CreateTemplateItem(templateID int64, refs model.ItemRefs) (*model.ListTemplateItem, error) {
	result, err := s.db.Exec(
		`INSERT INTO list_template_items (template_id, `+itemRefCols+`) VALUES (?, ?, ?, ?, ?, ?)`,
		templateID, refs.Quantity, nullableID(refs.PurchaseUnitID), nullableID(refs.StoreVariantInfoID),
		nullableID(refs.VariantID), nullableID(refs.ProductID),
	)
	if err != nil {
		return nil, fmt.Errorf("insert template item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetTemplateItemByID(id)
}

func (s *ListStore) DeleteTemplateItem(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM list_template_items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete template item: %w", err)
	}
	return nil
}

// InstantiateTemplate copies every entry of a template into the to-buy
// basket, merging with existing entries tier by tier.
func (s *ListStore) InstantiateTemplate(templateID int64) (added, mergedCount int, err error) {
	items, err := s.ListTemplateItems(templateID)
	if err != nil {
		return 0, 0, err
	}
	for _, item := range items {
		_, merged, err := s.AddToBuyItem(item.ItemRefs)
		if err != nil {
			return added, mergedCount, err
		}
		if merged {
			mergedCount++
		} else {
			added++
		}
	}
	return added, mergedCount, nil
}
