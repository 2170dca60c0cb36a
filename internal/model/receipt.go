package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ParsedReceiptItem is one line of an externally parsed receipt. It is
// transient scan input, never persisted as-is. ProductName and BrandName are
// the upstream parser's best guesses at what catalog entities the line refers
// to; both may be empty.
type ParsedReceiptItem struct {
	Text        string           `json:"text"`
	TotalPrice  decimal.Decimal  `json:"total_price"`
	Quantity    float64          `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	ProductName string           `json:"product_name"`
	BrandName   string           `json:"brand_name"`
}

// MatchStatus classifies a receipt line against the catalog.
type MatchStatus string

const (
	MatchStatusMatched MatchStatus = "matched"
	MatchStatusNoMatch MatchStatus = "no_match"
)

// MatchedReceiptItem is a parsed line plus its classification and the
// user-editable review state. Pure transient reconciliation state, discarded
// once the user commits or cancels the scan.
//
// For a matched line, ProductID is always set; VariantID is set unless the
// variant was ambiguous; StoreVariantInfoID is set when a price already
// exists for the variant at the target store. For a no-match line, Name
// carries the suggested name for the product to create.
type MatchedReceiptItem struct {
	Parsed             ParsedReceiptItem `json:"parsed"`
	Status             MatchStatus       `json:"status"`
	ProductID          *int64            `json:"product_id"`
	VariantID          *int64            `json:"variant_id"`
	StoreVariantInfoID *int64            `json:"store_variant_info_id"`
	Name               string            `json:"name"`
	Price              *decimal.Decimal  `json:"price"`
	Included           bool              `json:"included"`
}

// PurchaseTrip groups the lines committed from one receipt scan.
type PurchaseTrip struct {
	ID        int64           `json:"id"`
	StoreID   *int64          `json:"store_id"`
	Merchant  string          `json:"merchant"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}

// PurchaseTripLine is one committed receipt line.
type PurchaseTripLine struct {
	ID                 int64           `json:"id"`
	TripID             int64           `json:"trip_id"`
	Text               string          `json:"text"`
	Quantity           float64         `json:"quantity"`
	TotalPrice         decimal.Decimal `json:"total_price"`
	ProductID          *int64          `json:"product_id"`
	VariantID          *int64          `json:"variant_id"`
	StoreVariantInfoID *int64          `json:"store_variant_info_id"`
}
