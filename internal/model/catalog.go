package model

import (
	"time"

	"github.com/rgoulet/pricebook/internal/unit"
)

type Brand struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Store struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"`
}

type Product struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductVariant is a purchasable form of a product: a specific brand/detail
// combination. BaseUnit is the canonical unit every purchase unit and price of
// this variant is ultimately expressed in.
type ProductVariant struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	BrandID   *int64    `json:"brand_id"`
	Detail    string    `json:"detail"`
	BaseUnit  unit.Unit `json:"base_unit"`
	CreatedAt time.Time `json:"created_at"`
}

// PurchaseUnit is a user-defined alternate unit of sale for one variant
// ("bottle", "bag"). ConversionToBase is always stored in the canonical
// orientation: ConversionToBase purchase units equal one base unit.
// IsInverted only records how the user entered the number, so the edit form
// can redisplay it the same way; price math never looks at it. Unit is
// display/auto-fill metadata, not part of the conversion.
type PurchaseUnit struct {
	ID               int64     `json:"id"`
	VariantID        int64     `json:"variant_id"`
	Name             string    `json:"name"`
	Unit             unit.Unit `json:"unit"`
	ConversionToBase float64   `json:"conversion_to_base"`
	IsInverted       bool      `json:"is_inverted"`
	CreatedAt        time.Time `json:"created_at"`
}
