package receipt

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rgoulet/pricebook/internal/category"
	"github.com/rgoulet/pricebook/internal/model"
	"github.com/rgoulet/pricebook/internal/store"
	"github.com/rgoulet/pricebook/internal/unit"
)

// Committer applies user-approved classifications to the catalog.
type Committer struct {
	catalog *store.CatalogStore
	prices  *store.PriceStore
	trips   *store.TripStore
}

func NewCommitter(catalog *store.CatalogStore, prices *store.PriceStore, trips *store.TripStore) *Committer {
	return &Committer{catalog: catalog, prices: prices, trips: trips}
}

// CommitResult aggregates what a commit did.
type CommitResult struct {
	PricesUpdated   int                 `json:"prices_updated"`
	ProductsCreated int                 `json:"products_created"`
	Trip            *model.PurchaseTrip `json:"trip"`
}

// Commit writes every included item back to the catalog:
//
//   - matched with an existing price record: update that record in place;
//   - matched with a variant but no record: create a record at the store;
//   - matched product only: reuse the product's single variant when it has
//     exactly one, else create a new bare variant, then create a record;
//   - no match: create a product, a bare variant, and a record.
//
// The first three count as a price update, the last as a product creation.
// All committed lines are grouped under a new purchase trip.
func (c *Committer) Commit(storeID int64, merchant string, items []model.MatchedReceiptItem) (*CommitResult, error) {
	result := &CommitResult{}
	var lines []model.PurchaseTripLine
	total := decimal.Zero

	for _, item := range items {
		if !item.Included {
			continue
		}

		line := model.PurchaseTripLine{
			Text:       item.Parsed.Text,
			Quantity:   item.Parsed.Quantity,
			TotalPrice: item.Parsed.TotalPrice,
		}

		switch {
		case item.Status == model.MatchStatusMatched && item.StoreVariantInfoID != nil:
			rec, err := c.updatePrice(*item.StoreVariantInfoID, item.Price)
			if err != nil {
				return nil, err
			}
			line.StoreVariantInfoID = &rec.ID
			line.VariantID = &rec.VariantID
			line.ProductID = item.ProductID
			result.PricesUpdated++

		case item.Status == model.MatchStatusMatched && item.VariantID != nil:
			rec, err := c.prices.Create(*item.VariantID, storeID, item.Price, nil)
			if err != nil {
				return nil, fmt.Errorf("create price record: %w", err)
			}
			line.StoreVariantInfoID = &rec.ID
			line.VariantID = item.VariantID
			line.ProductID = item.ProductID
			result.PricesUpdated++

		case item.Status == model.MatchStatusMatched && item.ProductID != nil:
			variantID, err := c.variantForProduct(*item.ProductID)
			if err != nil {
				return nil, err
			}
			rec, err := c.prices.Create(variantID, storeID, item.Price, nil)
			if err != nil {
				return nil, fmt.Errorf("create price record: %w", err)
			}
			line.StoreVariantInfoID = &rec.ID
			line.VariantID = &variantID
			line.ProductID = item.ProductID
			result.PricesUpdated++

		default:
			product, err := c.catalog.CreateProduct(item.Name, category.Suggest(item.Name))
			if err != nil {
				return nil, fmt.Errorf("create product: %w", err)
			}
			variant, err := c.catalog.CreateVariant(product.ID, nil, "", unit.Count)
			if err != nil {
				return nil, fmt.Errorf("create variant: %w", err)
			}
			rec, err := c.prices.Create(variant.ID, storeID, item.Price, nil)
			if err != nil {
				return nil, fmt.Errorf("create price record: %w", err)
			}
			line.StoreVariantInfoID = &rec.ID
			line.VariantID = &variant.ID
			line.ProductID = &product.ID
			result.ProductsCreated++
		}

		lines = append(lines, line)
		total = total.Add(item.Parsed.TotalPrice)
	}

	trip, err := c.trips.Create(&storeID, merchant, total, lines)
	if err != nil {
		return nil, fmt.Errorf("create trip: %w", err)
	}
	result.Trip = trip
	return result, nil
}

// updatePrice rewrites a record's price, keeping its pricing unit and
// refreshing the conversion snapshot when that unit still exists.
func (c *Committer) updatePrice(recordID int64, price *decimal.Decimal) (*model.StoreVariantInfo, error) {
	rec, err := c.prices.GetByID(recordID)
	if err != nil {
		return nil, fmt.Errorf("get price record: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("price record %d not found", recordID)
	}
	updated, err := c.prices.UpdatePrice(rec.ID, price, rec.PricingUnitID)
	if err != nil {
		return nil, fmt.Errorf("update price record: %w", err)
	}
	return updated, nil
}

// variantForProduct reuses the product's only variant, or creates a bare one
// when the product has none or several.
func (c *Committer) variantForProduct(productID int64) (int64, error) {
	variants, err := c.catalog.ListVariantsByProduct(productID)
	if err != nil {
		return 0, fmt.Errorf("list variants: %w", err)
	}
	if len(variants) == 1 {
		return variants[0].ID, nil
	}
	variant, err := c.catalog.CreateVariant(productID, nil, "", unit.Count)
	if err != nil {
		return 0, fmt.Errorf("create variant: %w", err)
	}
	return variant.ID, nil
}
