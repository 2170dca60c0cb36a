package model

import "time"

// ItemRefs is the specificity override chain shared by every line-item kind.
// StoreVariantInfoID is the most specific reference, falling back to
// VariantID, falling back to a bare ProductID. Effective product, variant and
// store are always derived by walking the chain outward, never by treating
// the three fields as independently authoritative.
//
// Quantity is deliberately free text: the UI lets users type partially-numeric
// or descriptive quantities ("2 bags", "a bunch") and several behaviors depend
// on the graceful non-numeric fallback.
type ItemRefs struct {
	Quantity           string `json:"quantity"`
	PurchaseUnitID     *int64 `json:"purchase_unit_id"`
	StoreVariantInfoID *int64 `json:"store_variant_info_id"`
	VariantID          *int64 `json:"variant_id"`
	ProductID          *int64 `json:"product_id"`
}

// ToBuyItem is an entry in the running to-buy basket.
type ToBuyItem struct {
	ID int64 `json:"id"`
	ItemRefs
	Checked   bool      `json:"checked"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

type ShoppingList struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

// ShoppingListItem is an entry on a named shopping list.
type ShoppingListItem struct {
	ID     int64 `json:"id"`
	ListID int64 `json:"list_id"`
	ItemRefs
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

type ListTemplate struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ListTemplateItem is an entry on a reusable list template.
type ListTemplateItem struct {
	ID         int64 `json:"id"`
	TemplateID int64 `json:"template_id"`
	ItemRefs
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

// The pricing.LineItem capability, implemented once here and embedded by all
// three line-item kinds.

func (r ItemRefs) QuantityText() string       { return r.Quantity }
func (r ItemRefs) PurchaseUnitRef() *int64    { return r.PurchaseUnitID }
func (r ItemRefs) PriceRecordRef() *int64     { return r.StoreVariantInfoID }
func (r ItemRefs) VariantRef() *int64         { return r.VariantID }
func (r ItemRefs) ProductRef() *int64         { return r.ProductID }
