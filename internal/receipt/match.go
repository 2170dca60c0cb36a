// Package receipt maps externally parsed receipt lines onto catalog entities
// with graded confidence, and applies user-approved classifications back to
// the catalog as price updates and new products.
package receipt

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/rgoulet/pricebook/internal/model"
)

// Snapshot is the read-only catalog state a classification pass runs against.
// Classification never mutates any entity; it only classifies.
type Snapshot struct {
	Products []model.Product
	Brands   []model.Brand
	Variants []model.ProductVariant
	Prices   []model.StoreVariantInfo
}

// Classify maps each parsed line to a catalog product, variant and price
// record where possible. Three confidence tiers fall out for the review UI:
// a full match carries a price record (the price can be updated in place), a
// partial match knows the product or variant but has no price at this store
// yet, and a no-match line proposes a name for a product to create.
func Classify(items []model.ParsedReceiptItem, storeID int64, snap Snapshot) []model.MatchedReceiptItem {
	out := make([]model.MatchedReceiptItem, 0, len(items))
	for _, parsed := range items {
		m := model.MatchedReceiptItem{
			Parsed:   parsed,
			Included: true,
			Price:    defaultLinePrice(parsed),
		}

		if parsed.ProductName == "" {
			m.Status = model.MatchStatusNoMatch
			m.Name = CleanName(parsed.Text)
			out = append(out, m)
			continue
		}

		product, found := findProduct(snap.Products, parsed.ProductName)
		if !found {
			// The parser's hint is a better name than the raw receipt text.
			m.Status = model.MatchStatusNoMatch
			m.Name = parsed.ProductName
			out = append(out, m)
			continue
		}

		m.Status = model.MatchStatusMatched
		m.ProductID = &product.ID
		m.Name = product.Name

		if variant, ok := selectVariant(snap, product.ID, parsed.BrandName); ok {
			m.VariantID = &variant.ID
			if rec, ok := findPrice(snap.Prices, variant.ID, storeID); ok {
				m.StoreVariantInfoID = &rec.ID
			}
		}
		out = append(out, m)
	}
	return out
}

// findProduct looks a product up by exact name, falling back to
// case-insensitive exact comparison.
func findProduct(products []model.Product, name string) (model.Product, bool) {
	for _, p := range products {
		if p.Name == name {
			return p, true
		}
	}
	for _, p := range products {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return model.Product{}, false
}

// selectVariant picks one variant of the product: the brand-hinted one when a
// brand matches case-insensitively and owns a variant of this product, else
// the product's only variant when it has exactly one. An ambiguous product is
// deliberately left unselected rather than guessed.
func selectVariant(snap Snapshot, productID int64, brandHint string) (model.ProductVariant, bool) {
	if brandHint != "" {
		for _, b := range snap.Brands {
			if !strings.EqualFold(b.Name, brandHint) {
				continue
			}
			for _, v := range snap.Variants {
				if v.ProductID == productID && v.BrandID != nil && *v.BrandID == b.ID {
					return v, true
				}
			}
		}
	}

	var only model.ProductVariant
	count := 0
	for _, v := range snap.Variants {
		if v.ProductID == productID {
			only = v
			count++
		}
	}
	if count == 1 {
		return only, true
	}
	return model.ProductVariant{}, false
}

// findPrice is a single-pass scan for the variant's price record at the
// store; first match wins, since (variant, store) is intended to be unique.
func findPrice(prices []model.StoreVariantInfo, variantID, storeID int64) (model.StoreVariantInfo, bool) {
	for _, rec := range prices {
		if rec.VariantID == variantID && rec.StoreID == storeID {
			return rec, true
		}
	}
	return model.StoreVariantInfo{}, false
}

// defaultLinePrice proposes the per-unit price the commit would write: the
// declared unit price when the parser supplied one, else the line total
// divided by the quantity.
func defaultLinePrice(parsed model.ParsedReceiptItem) *decimal.Decimal {
	if parsed.UnitPrice != nil {
		p := *parsed.UnitPrice
		return &p
	}
	if parsed.Quantity > 0 && parsed.Quantity != 1 {
		p := parsed.TotalPrice.Div(decimal.NewFromFloat(parsed.Quantity)).Round(2)
		return &p
	}
	p := parsed.TotalPrice
	return &p
}

// CleanName turns raw receipt text into a presentable product name by
// normalizing whitespace and title-casing each word.
func CleanName(text string) string {
	words := strings.Fields(text)
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

func titleWord(w string) string {
	runes := []rune(strings.ToLower(w))
	for i, r := range runes {
		if unicode.IsLetter(r) {
			runes[i] = unicode.ToUpper(r)
			break
		}
	}
	return string(runes)
}
