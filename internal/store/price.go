package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rgoulet/pricebook/internal/model"
)

// PriceStore persists price records and their append-only history. Every
// write captures the pricing unit's conversion factor as a snapshot so price
// derivation keeps working after the purchase unit is deleted.
type PriceStore struct {
	db      *sql.DB
	catalog *CatalogStore
}

func NewPriceStore(db *sql.DB) *PriceStore {
	return &PriceStore{db: db, catalog: NewCatalogStore(db)}
}

const priceCols = `id, variant_id, store_id, price_per_unit, pricing_unit_id, pricing_unit_conversion, created_at, updated_at`

func scanPrice(scanner interface{ Scan(...any) error }) (*model.StoreVariantInfo, error) {
	var rec model.StoreVariantInfo
	var price sql.NullString
	var pricingUnitID sql.NullInt64
	var conversion sql.NullFloat64

	err := scanner.Scan(
		&rec.ID, &rec.VariantID, &rec.StoreID, &price,
		&pricingUnitID, &conversion, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if price.Valid {
		d, err := decimal.NewFromString(price.String)
		if err != nil {
			return nil, fmt.Errorf("parse price %q: %w", price.String, err)
		}
		rec.PricePerUnit = &d
	}
	if pricingUnitID.Valid {
		rec.PricingUnitID = &pricingUnitID.Int64
	}
	if conversion.Valid {
		rec.PricingUnitConversion = &conversion.Float64
	}
	return &rec, nil
}

func (s *PriceStore) GetByID(id int64) (*model.StoreVariantInfo, error) {
	row := s.db.QueryRow(`SELECT `+priceCols+` FROM store_variant_info WHERE id = ?`, id)
	rec, err := scanPrice(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get price record: %w", err)
	}
	return rec, nil
}

// GetByVariantAndStore returns the price record for the pair, or nil. The
// pair is intended to be unique; the first row wins.
func (s *PriceStore) GetByVariantAndStore(variantID, storeID int64) (*model.StoreVariantInfo, error) {
	row := s.db.QueryRow(
		`SELECT `+priceCols+` FROM store_variant_info WHERE variant_id = ? AND store_id = ? LIMIT 1`,
		variantID, storeID,
	)
	rec, err := scanPrice(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get price by variant and store: %w", err)
	}
	return rec, nil
}

func (s *PriceStore) List() ([]model.StoreVariantInfo, error) {
	rows, err := s.db.Query(`SELECT ` + priceCols + ` FROM store_variant_info ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list price records: %w", err)
	}
	defer rows.Close()
	return collectPrices(rows)
}

func (s *PriceStore) ListByVariant(variantID int64) ([]model.StoreVariantInfo, error) {
	rows, err := s.db.Query(`SELECT `+priceCols+` FROM store_variant_info WHERE variant_id = ? ORDER BY id ASC`, variantID)
	if err != nil {
		return nil, fmt.Errorf("list price records by variant: %w", err)
	}
	defer rows.Close()
	return collectPrices(rows)
}

func collectPrices(rows *sql.Rows) ([]model.StoreVariantInfo, error) {
	var records []model.StoreVariantInfo
	for rows.Next() {
		rec, err := scanPrice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan price record: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// snapshotConversion reads the live conversion factor of the pricing unit at
// write time. A nil pricing unit means the price is quoted per base unit and
// no snapshot is taken.
func (s *PriceStore) snapshotConversion(pricingUnitID *int64) (*float64, error) {
	if pricingUnitID == nil {
		return nil, nil
	}
	pu, err := s.catalog.GetPurchaseUnitByID(*pricingUnitID)
	if err != nil {
		return nil, err
	}
	if pu == nil {
		return nil, fmt.Errorf("pricing unit %d not found", *pricingUnitID)
	}
	return &pu.ConversionToBase, nil
}

// Create inserts a price record for a (variant, store) pair and writes the
// first history entry.
func (s *PriceStore) Create(variantID, storeID int64, price *decimal.Decimal, pricingUnitID *int64) (*model.StoreVariantInfo, error) {
	conversion, err := s.snapshotConversion(pricingUnitID)
	if err != nil {
		return nil, fmt.Errorf("snapshot conversion: %w", err)
	}

	result, err := s.db.Exec(
		`INSERT INTO store_variant_info (variant_id, store_id, price_per_unit, pricing_unit_id, pricing_unit_conversion) VALUES (?, ?, ?, ?, ?)`,
		variantID, storeID, priceArg(price), nullableID(pricingUnitID), nullableFloat(conversion),
	)
	if err != nil {
		return nil, fmt.Errorf("insert price record: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if err := s.appendHistory(id, price, pricingUnitID, conversion); err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// UpdatePrice sets a record's price and pricing unit, refreshes the snapshot,
// and appends to the history.
func (s *PriceStore) UpdatePrice(id int64, price *decimal.Decimal, pricingUnitID *int64) (*model.StoreVariantInfo, error) {
	conversion, err := s.snapshotConversion(pricingUnitID)
	if err != nil {
		return nil, fmt.Errorf("snapshot conversion: %w", err)
	}

	_, err = s.db.Exec(
		`UPDATE store_variant_info SET price_per_unit = ?, pricing_unit_id = ?, pricing_unit_conversion = ?, updated_at = ? WHERE id = ?`,
		priceArg(price), nullableID(pricingUnitID), nullableFloat(conversion), time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update price record: %w", err)
	}

	if err := s.appendHistory(id, price, pricingUnitID, conversion); err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

func (s *PriceStore) Delete(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM store_variant_info WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete price record: %w", err)
	}
	return nil
}

func (s *PriceStore) appendHistory(recordID int64, price *decimal.Decimal, pricingUnitID *int64, conversion *float64) error {
	_, err := s.db.Exec(
		`INSERT INTO price_history (store_variant_info_id, price, pricing_unit_id, pricing_unit_conversion) VALUES (?, ?, ?, ?)`,
		recordID, priceArg(price), nullableID(pricingUnitID), nullableFloat(conversion),
	)
	if err != nil {
		return fmt.Errorf("append price history: %w", err)
	}
	return nil
}

const historyCols = `id, store_variant_info_id, price, pricing_unit_id, pricing_unit_conversion, recorded_at`

// History returns a record's price points, oldest first.
func (s *PriceStore) History(recordID int64) ([]model.PricePoint, error) {
	rows, err := s.db.Query(`SELECT `+historyCols+` FROM price_history WHERE store_variant_info_id = ? ORDER BY id ASC`, recordID)
	if err != nil {
		return nil, fmt.Errorf("list price history: %w", err)
	}
	defer rows.Close()

	var points []model.PricePoint
	for rows.Next() {
		var p model.PricePoint
		var price sql.NullString
		var pricingUnitID sql.NullInt64
		var conversion sql.NullFloat64
		if err := rows.Scan(&p.ID, &p.StoreVariantInfoID, &price, &pricingUnitID, &conversion, &p.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan price point: %w", err)
		}
		if price.Valid {
			d, err := decimal.NewFromString(price.String)
			if err != nil {
				return nil, fmt.Errorf("parse history price %q: %w", price.String, err)
			}
			p.Price = &d
		}
		if pricingUnitID.Valid {
			p.PricingUnitID = &pricingUnitID.Int64
		}
		if conversion.Valid {
			p.PricingUnitConversion = &conversion.Float64
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func priceArg(price *decimal.Decimal) any {
	if price == nil {
		return nil
	}
	return price.String()
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func nullableFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
