package store

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rgoulet/pricebook/internal/model"
)

// TripStore persists purchase trips: one row per committed receipt scan plus
// the committed lines.
type TripStore struct {
	db *sql.DB
}

func NewTripStore(db *sql.DB) *TripStore {
	return &TripStore{db: db}
}

const tripCols = `id, store_id, merchant, total, created_at`

func scanTrip(scanner interface{ Scan(...any) error }) (*model.PurchaseTrip, error) {
	var t model.PurchaseTrip
	var storeID sql.NullInt64
	var total string
	if err := scanner.Scan(&t.ID, &storeID, &t.Merchant, &total, &t.CreatedAt); err != nil {
		return nil, err
	}
	if storeID.Valid {
		t.StoreID = &storeID.Int64
	}
	d, err := decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("parse trip total %q: %w", total, err)
	}
	t.Total = d
	return &t, nil
}

func (s *TripStore) GetByID(id int64) (*model.PurchaseTrip, error) {
	row := s.db.QueryRow(`SELECT `+tripCols+` FROM purchase_trips WHERE id = ?`, id)
	t, err := scanTrip(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get trip: %w", err)
	}
	return t, nil
}

func (s *TripStore) List() ([]model.PurchaseTrip, error) {
	rows, err := s.db.Query(`SELECT ` + tripCols + ` FROM purchase_trips ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer rows.Close()

	var trips []model.PurchaseTrip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		trips = append(trips, *t)
	}
	return trips, rows.Err()
}

// Create inserts a trip and its lines in one transaction.
func (s *TripStore) Create(storeID *int64, merchant string, total decimal.Decimal, lines []model.PurchaseTripLine) (*model.PurchaseTrip, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO purchase_trips (store_id, merchant, total) VALUES (?, ?, ?)`,
		nullableID(storeID), merchant, total.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert trip: %w", err)
	}
	tripID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	for _, line := range lines {
		_, err := tx.Exec(
			`INSERT INTO purchase_trip_lines (trip_id, text, quantity, total_price, product_id, variant_id, store_variant_info_id) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			tripID, line.Text, line.Quantity, line.TotalPrice.String(),
			nullableID(line.ProductID), nullableID(line.VariantID), nullableID(line.StoreVariantInfoID),
		)
		if err != nil {
			return nil, fmt.Errorf("insert trip line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(tripID)
}

const tripLineCols = `id, trip_id, text, quantity, total_price, product_id, variant_id, store_variant_info_id`

// Lines returns a trip's committed lines in insertion order.
func (s *TripStore) Lines(tripID int64) ([]model.PurchaseTripLine, error) {
	rows, err := s.db.Query(`SELECT `+tripLineCols+` FROM purchase_trip_lines WHERE trip_id = ? ORDER BY id ASC`, tripID)
	if err != nil {
		return nil, fmt.Errorf("list trip lines: %w", err)
	}
	defer rows.Close()

	var lines []model.PurchaseTripLine
	for rows.Next() {
		var l model.PurchaseTripLine
		var total string
		var productID, variantID, priceRecordID sql.NullInt64
		if err := rows.Scan(&l.ID, &l.TripID, &l.Text, &l.Quantity, &total, &productID, &variantID, &priceRecordID); err != nil {
			return nil, fmt.Errorf("scan trip line: %w", err)
		}
		d, err := decimal.NewFromString(total)
		if err != nil {
			return nil, fmt.Errorf("parse line total %q: %w", total, err)
		}
		l.TotalPrice = d
		if productID.Valid {
			l.ProductID = &productID.Int64
		}
		if variantID.Valid {
			l.VariantID = &variantID.Int64
		}
		if priceRecordID.Valid {
			l.StoreVariantInfoID = &priceRecordID.Int64
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
