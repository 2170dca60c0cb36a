package pricing

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rgoulet/pricebook/internal/model"
)

// LineItem is the capability shared by to-buy entries, shopping-list entries
// and template entries: a free-text quantity plus the specificity override
// chain (price record → variant → product) and an optional purchase unit.
// Resolution and price estimation are written once against this interface.
type LineItem interface {
	QuantityText() string
	PurchaseUnitRef() *int64
	PriceRecordRef() *int64
	VariantRef() *int64
	ProductRef() *int64
}

// Catalog is a read-only in-memory snapshot of the entities a resolution pass
// needs, keyed by ID. The persistence layer supplies it; the engine only
// reads it.
type Catalog struct {
	Products      map[int64]model.Product
	Brands        map[int64]model.Brand
	Stores        map[int64]model.Store
	Variants      map[int64]model.ProductVariant
	PurchaseUnits map[int64]model.PurchaseUnit
	PriceRecords  map[int64]model.StoreVariantInfo
}

// NewCatalog builds a snapshot from entity slices.
func NewCatalog(products []model.Product, brands []model.Brand, stores []model.Store,
	variants []model.ProductVariant, purchaseUnits []model.PurchaseUnit, priceRecords []model.StoreVariantInfo) *Catalog {
	c := &Catalog{
		Products:      make(map[int64]model.Product, len(products)),
		Brands:        make(map[int64]model.Brand, len(brands)),
		Stores:        make(map[int64]model.Store, len(stores)),
		Variants:      make(map[int64]model.ProductVariant, len(variants)),
		PurchaseUnits: make(map[int64]model.PurchaseUnit, len(purchaseUnits)),
		PriceRecords:  make(map[int64]model.StoreVariantInfo, len(priceRecords)),
	}
	for _, p := range products {
		c.Products[p.ID] = p
	}
	for _, b := range brands {
		c.Brands[b.ID] = b
	}
	for _, s := range stores {
		c.Stores[s.ID] = s
	}
	for _, v := range variants {
		c.Variants[v.ID] = v
	}
	for _, u := range purchaseUnits {
		c.PurchaseUnits[u.ID] = u
	}
	for _, r := range priceRecords {
		c.PriceRecords[r.ID] = r
	}
	return c
}

// priceRecord resolves the item's price-record reference, absent when the
// item has none or the reference is dangling.
func (c *Catalog) priceRecord(item LineItem) (model.StoreVariantInfo, bool) {
	if item.PriceRecordRef() == nil {
		return model.StoreVariantInfo{}, false
	}
	rec, ok := c.PriceRecords[*item.PriceRecordRef()]
	return rec, ok
}

// EffectiveVariant walks the override chain to the most specific variant: the
// price record's own variant first, else the item's direct variant reference.
func (c *Catalog) EffectiveVariant(item LineItem) (model.ProductVariant, bool) {
	if rec, ok := c.priceRecord(item); ok {
		v, ok := c.Variants[rec.VariantID]
		return v, ok
	}
	if item.VariantRef() != nil {
		v, ok := c.Variants[*item.VariantRef()]
		return v, ok
	}
	return model.ProductVariant{}, false
}

// EffectiveProduct resolves the product the item ultimately refers to: the
// effective variant's product when one exists, else the item's bare product
// reference.
func (c *Catalog) EffectiveProduct(item LineItem) (model.Product, bool) {
	if v, ok := c.EffectiveVariant(item); ok {
		p, ok := c.Products[v.ProductID]
		return p, ok
	}
	if item.ProductRef() != nil {
		p, ok := c.Products[*item.ProductRef()]
		return p, ok
	}
	return model.Product{}, false
}

// EffectiveStore is defined only when the item references a price record.
func (c *Catalog) EffectiveStore(item LineItem) (model.Store, bool) {
	rec, ok := c.priceRecord(item)
	if !ok {
		return model.Store{}, false
	}
	s, ok := c.Stores[rec.StoreID]
	return s, ok
}

// EstimatedPrice computes the estimated total cost of the item: the
// per-selected-unit price times the numeric part of the free-text quantity.
// Absent when the item has no price record, the quantity contains no digits,
// or the unit conversion degenerates. Never an error: a line item is allowed
// to reference only a bare product or variant with no known price.
func (c *Catalog) EstimatedPrice(item LineItem) (decimal.Decimal, bool) {
	rec, ok := c.priceRecord(item)
	if !ok {
		return decimal.Decimal{}, false
	}
	qty, ok := ParseQuantity(item.QuantityText())
	if !ok {
		return decimal.Decimal{}, false
	}

	var perUnit decimal.Decimal
	if item.PurchaseUnitRef() != nil {
		pu, ok := c.PurchaseUnits[*item.PurchaseUnitRef()]
		if !ok {
			return decimal.Decimal{}, false
		}
		perUnit, ok = PriceForPurchaseUnit(rec, pu)
		if !ok {
			return decimal.Decimal{}, false
		}
	} else {
		perUnit, ok = PricePerBaseUnit(rec)
		if !ok {
			return decimal.Decimal{}, false
		}
	}
	return perUnit.Mul(decimal.NewFromInt(qty)), true
}

// ParseQuantity extracts the numeric part of a free-text quantity by keeping
// only ASCII digits and parsing the remainder. Deliberately lossy: "2 bags"
// and "2" both yield 2, and a purely alphabetic quantity yields absence.
func ParseQuantity(quantity string) (int64, bool) {
	var b strings.Builder
	for i := 0; i < len(quantity); i++ {
		if quantity[i] >= '0' && quantity[i] <= '9' {
			b.WriteByte(quantity[i])
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
