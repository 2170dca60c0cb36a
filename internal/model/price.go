package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StoreVariantInfo is the price record for a (variant, store) pair.
//
// PricePerUnit is the price for one unit of the pricing unit, or for one base
// unit when no pricing unit is set. PricingUnitConversion snapshots the
// pricing unit's ConversionToBase at write time; the snapshot, not the live
// purchase unit, is the durable source of truth for price derivation, so
// deleting the purchase unit later (which nulls PricingUnitID) does not
// corrupt stored prices.
type StoreVariantInfo struct {
	ID                    int64            `json:"id"`
	VariantID             int64            `json:"variant_id"`
	StoreID               int64            `json:"store_id"`
	PricePerUnit          *decimal.Decimal `json:"price_per_unit"`
	PricingUnitID         *int64           `json:"pricing_unit_id"`
	PricingUnitConversion *float64         `json:"pricing_unit_conversion"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

// PricePoint is one entry in a price record's append-only history.
type PricePoint struct {
	ID                    int64            `json:"id"`
	StoreVariantInfoID    int64            `json:"store_variant_info_id"`
	Price                 *decimal.Decimal `json:"price"`
	PricingUnitID         *int64           `json:"pricing_unit_id"`
	PricingUnitConversion *float64         `json:"pricing_unit_conversion"`
	RecordedAt            time.Time        `json:"recorded_at"`
}
