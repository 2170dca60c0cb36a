package store

import (
	"database/sql"
	"fmt"

	"github.com/rgoulet/pricebook/internal/model"
	"github.com/rgoulet/pricebook/internal/unit"
)

// CatalogStore persists the product catalog: brands, stores, products,
// variants and purchase units.
type CatalogStore struct {
	db *sql.DB
}

func NewCatalogStore(db *sql.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

// --- Brand methods ---

const brandCols = `id, name, created_at`

func scanBrand(scanner interface{ Scan(...any) error }) (*model.Brand, error) {
	var b model.Brand
	if err := scanner.Scan(&b.ID, &b.Name, &b.CreatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *CatalogStore) ListBrands() ([]model.Brand, error) {
	rows, err := s.db.Query(`SELECT ` + brandCols + ` FROM brands ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	defer rows.Close()

	var brands []model.Brand
	for rows.Next() {
		b, err := scanBrand(rows)
		if err != nil {
			return nil, fmt.Errorf("scan brand: %w", err)
		}
		brands = append(brands, *b)
	}
	return brands, rows.Err()
}

func (s *CatalogStore) GetBrandByID(id int64) (*model.Brand, error) {
	row := s.db.QueryRow(`SELECT `+brandCols+` FROM brands WHERE id = ?`, id)
	b, err := scanBrand(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get brand: %w", err)
	}
	return b, nil
}

func (s *CatalogStore) CreateBrand(name string) (*model.Brand, error) {
	result, err := s.db.Exec(`INSERT INTO brands (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("insert brand: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetBrandByID(id)
}

func (s *CatalogStore) DeleteBrand(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM brands WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete brand: %w", err)
	}
	return nil
}

// --- Store methods ---

const storeCols = `id, name, location, created_at`

func scanStore(scanner interface{ Scan(...any) error }) (*model.Store, error) {
	var st model.Store
	if err := scanner.Scan(&st.ID, &st.Name, &st.Location, &st.CreatedAt); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *CatalogStore) ListStores() ([]model.Store, error) {
	rows, err := s.db.Query(`SELECT ` + storeCols + ` FROM stores ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	var stores []model.Store
	for rows.Next() {
		st, err := scanStore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		stores = append(stores, *st)
	}
	return stores, rows.Err()
}

func (s *CatalogStore) GetStoreByID(id int64) (*model.Store, error) {
	row := s.db.QueryRow(`SELECT `+storeCols+` FROM stores WHERE id = ?`, id)
	st, err := scanStore(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get store: %w", err)
	}
	return st, nil
}

// GetStoreByName matches case-insensitively, for mapping a detected receipt
// merchant onto an existing store.
func (s *CatalogStore) GetStoreByName(name string) (*model.Store, error) {
	row := s.db.QueryRow(`SELECT `+storeCols+` FROM stores WHERE name = ? COLLATE NOCASE LIMIT 1`, name)
	st, err := scanStore(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get store by name: %w", err)
	}
	return st, nil
}

func (s *CatalogStore) CreateStore(name, location string) (*model.Store, error) {
	result, err := s.db.Exec(`INSERT INTO stores (name, location) VALUES (?, ?)`, name, location)
	if err != nil {
		return nil, fmt.Errorf("insert store: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetStoreByID(id)
}

func (s *CatalogStore) DeleteStore(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM stores WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete store: %w", err)
	}
	return nil
}

// --- Product methods ---

const productCols = `id, name, category, created_at`

func scanProduct(scanner interface{ Scan(...any) error }) (*model.Product, error) {
	var p model.Product
	if err := scanner.Scan(&p.ID, &p.Name, &p.Category, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *CatalogStore) ListProducts() ([]model.Product, error) {
	rows, err := s.db.Query(`SELECT ` + productCols + ` FROM products ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (s *CatalogStore) GetProductByID(id int64) (*model.Product, error) {
	row := s.db.QueryRow(`SELECT `+productCols+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (s *CatalogStore) CreateProduct(name, category string) (*model.Product, error) {
	result, err := s.db.Exec(`INSERT INTO products (name, category) VALUES (?, ?)`, name, category)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetProductByID(id)
}

func (s *CatalogStore) UpdateProduct(id int64, name, category string) (*model.Product, error) {
	_, err := s.db.Exec(`UPDATE products SET name = ?, category = ? WHERE id = ?`, name, category, id)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return s.GetProductByID(id)
}

func (s *CatalogStore) DeleteProduct(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM products WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// --- Variant methods ---

const variantCols = `id, product_id, brand_id, detail, base_unit, created_at`

func scanVariant(scanner interface{ Scan(...any) error }) (*model.ProductVariant, error) {
	var v model.ProductVariant
	var brandID sql.NullInt64
	var baseUnit string
	if err := scanner.Scan(&v.ID, &v.ProductID, &brandID, &v.Detail, &baseUnit, &v.CreatedAt); err != nil {
		return nil, err
	}
	if brandID.Valid {
		v.BrandID = &brandID.Int64
	}
	v.BaseUnit, _ = unit.Parse(baseUnit)
	return &v, nil
}

func (s *CatalogStore) ListVariants() ([]model.ProductVariant, error) {
	rows, err := s.db.Query(`SELECT ` + variantCols + ` FROM product_variants ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()
	return collectVariants(rows)
}

func (s *CatalogStore) ListVariantsByProduct(productID int64) ([]model.ProductVariant, error) {
	rows, err := s.db.Query(`SELECT `+variantCols+` FROM product_variants WHERE product_id = ? ORDER BY id ASC`, productID)
	if err != nil {
		return nil, fmt.Errorf("list variants by product: %w", err)
	}
	defer rows.Close()
	return collectVariants(rows)
}

func collectVariants(rows *sql.Rows) ([]model.ProductVariant, error) {
	var variants []model.ProductVariant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		variants = append(variants, *v)
	}
	return variants, rows.Err()
}

func (s *CatalogStore) GetVariantByID(id int64) (*model.ProductVariant, error) {
	row := s.db.QueryRow(`SELECT `+variantCols+` FROM product_variants WHERE id = ?`, id)
	v, err := scanVariant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get variant: %w", err)
	}
	return v, nil
}

func (s *CatalogStore) CreateVariant(productID int64, brandID *int64, detail string, baseUnit unit.Unit) (*model.ProductVariant, error) {
	var bID sql.NullInt64
	if brandID != nil {
		bID = sql.NullInt64{Int64: *brandID, Valid: true}
	}
	result, err := s.db.Exec(
		`INSERT INTO product_variants (product_id, brand_id, detail, base_unit) VALUES (?, ?, ?, ?)`,
		productID, bID, detail, string(baseUnit),
	)
	if err != nil {
		return nil, fmt.Errorf("insert variant: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetVariantByID(id)
}

func (s *CatalogStore) UpdateVariant(id int64, brandID *int64, detail string) (*model.ProductVariant, error) {
	var bID sql.NullInt64
	if brandID != nil {
		bID = sql.NullInt64{Int64: *brandID, Valid: true}
	}
	_, err := s.db.Exec(`UPDATE product_variants SET brand_id = ?, detail = ? WHERE id = ?`, bID, detail, id)
	if err != nil {
		return nil, fmt.Errorf("update variant: %w", err)
	}
	return s.GetVariantByID(id)
}

// ChangeBaseUnit sets a variant's base unit and deletes every purchase unit
// of the variant in the same transaction: their conversion factors are
// expressed relative to the old base and would silently mean something else
// under the new one.
func (s *CatalogStore) ChangeBaseUnit(id int64, baseUnit unit.Unit) (*model.ProductVariant, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE product_variants SET base_unit = ? WHERE id = ?`, string(baseUnit), id); err != nil {
		return nil, fmt.Errorf("update base unit: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM purchase_units WHERE variant_id = ?`, id); err != nil {
		return nil, fmt.Errorf("clear purchase units: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetVariantByID(id)
}

func (s *CatalogStore) DeleteVariant(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM product_variants WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete variant: %w", err)
	}
	return nil
}

// --- Purchase unit methods ---

const purchaseUnitCols = `id, variant_id, name, unit, conversion_to_base, is_inverted, created_at`

func scanPurchaseUnit(scanner interface{ Scan(...any) error }) (*model.PurchaseUnit, error) {
	var u model.PurchaseUnit
	var unitCode string
	var inverted int
	if err := scanner.Scan(&u.ID, &u.VariantID, &u.Name, &unitCode, &u.ConversionToBase, &inverted, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Unit, _ = unit.Parse(unitCode)
	u.IsInverted = inverted != 0
	return &u, nil
}

func (s *CatalogStore) ListPurchaseUnits() ([]model.PurchaseUnit, error) {
	rows, err := s.db.Query(`SELECT ` + purchaseUnitCols + ` FROM purchase_units ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list purchase units: %w", err)
	}
	defer rows.Close()
	return collectPurchaseUnits(rows)
}

func (s *CatalogStore) ListPurchaseUnitsByVariant(variantID int64) ([]model.PurchaseUnit, error) {
	rows, err := s.db.Query(`SELECT `+purchaseUnitCols+` FROM purchase_units WHERE variant_id = ? ORDER BY id ASC`, variantID)
	if err != nil {
		return nil, fmt.Errorf("list purchase units by variant: %w", err)
	}
	defer rows.Close()
	return collectPurchaseUnits(rows)
}

func collectPurchaseUnits(rows *sql.Rows) ([]model.PurchaseUnit, error) {
	var units []model.PurchaseUnit
	for rows.Next() {
		u, err := scanPurchaseUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase unit: %w", err)
		}
		units = append(units, *u)
	}
	return units, rows.Err()
}

func (s *CatalogStore) GetPurchaseUnitByID(id int64) (*model.PurchaseUnit, error) {
	row := s.db.QueryRow(`SELECT `+purchaseUnitCols+` FROM purchase_units WHERE id = ?`, id)
	u, err := scanPurchaseUnit(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get purchase unit: %w", err)
	}
	return u, nil
}

func (s *CatalogStore) CreatePurchaseUnit(variantID int64, name string, u unit.Unit, conversionToBase float64, isInverted bool) (*model.PurchaseUnit, error) {
	inverted := 0
	if isInverted {
		inverted = 1
	}
	result, err := s.db.Exec(
		`INSERT INTO purchase_units (variant_id, name, unit, conversion_to_base, is_inverted) VALUES (?, ?, ?, ?, ?)`,
		variantID, name, string(u), conversionToBase, inverted,
	)
	if err != nil {
		return nil, fmt.Errorf("insert purchase unit: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetPurchaseUnitByID(id)
}

func (s *CatalogStore) UpdatePurchaseUnit(id int64, name string, u unit.Unit, conversionToBase float64, isInverted bool) (*model.PurchaseUnit, error) {
	inverted := 0
	if isInverted {
		inverted = 1
	}
	_, err := s.db.Exec(
		`UPDATE purchase_units SET name = ?, unit = ?, conversion_to_base = ?, is_inverted = ? WHERE id = ?`,
		name, string(u), conversionToBase, inverted, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update purchase unit: %w", err)
	}
	return s.GetPurchaseUnitByID(id)
}

// DeletePurchaseUnit removes the unit; price records and line items that
// referenced it keep their rows with the reference nulled by the schema.
func (s *CatalogStore) DeletePurchaseUnit(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM purchase_units WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete purchase unit: %w", err)
	}
	return nil
}
