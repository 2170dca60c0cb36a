package pricing

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/rgoulet/pricebook/internal/model"
)

// sourceFactor is the conversion the record's price is quoted against: the
// snapshot captured when the price was written, or 1 when the price was
// entered per base unit. The snapshot survives deletion of the purchase unit
// that produced it.
func sourceFactor(rec model.StoreVariantInfo) float64 {
	if rec.PricingUnitConversion != nil {
		return *rec.PricingUnitConversion
	}
	return 1
}

// PriceForPurchaseUnit derives the price of one target purchase unit from a
// stored price record:
//
//	price × (sourceFactor / target.ConversionToBase)
//
// Both factors are "purchase units per base unit" in the same orientation, so
// their ratio rescales the price without involving the base unit itself.
// Absent when the record has no price, or when the ratio is not finite: a
// zero conversion factor makes the ratio Inf or NaN, and decimals cannot
// carry either, so the derived price is reported as missing.
func PriceForPurchaseUnit(rec model.StoreVariantInfo, target model.PurchaseUnit) (decimal.Decimal, bool) {
	if rec.PricePerUnit == nil {
		return decimal.Decimal{}, false
	}
	return scalePrice(*rec.PricePerUnit, sourceFactor(rec)/target.ConversionToBase)
}

// PricePerBaseUnit derives the price of one base unit: price × sourceFactor
// when a pricing unit was ever set, else the stored price unchanged.
func PricePerBaseUnit(rec model.StoreVariantInfo) (decimal.Decimal, bool) {
	if rec.PricePerUnit == nil {
		return decimal.Decimal{}, false
	}
	if rec.PricingUnitConversion == nil {
		return *rec.PricePerUnit, true
	}
	return scalePrice(*rec.PricePerUnit, *rec.PricingUnitConversion)
}

func scalePrice(price decimal.Decimal, factor float64) (decimal.Decimal, bool) {
	if math.IsInf(factor, 0) || math.IsNaN(factor) {
		return decimal.Decimal{}, false
	}
	return price.Mul(decimal.NewFromFloat(factor)), true
}
