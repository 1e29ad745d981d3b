package services

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"business-assistant-backend/models"

	_ "modernc.org/sqlite"
)

// CatalogService serves product search, details, categories, and stock
// checks from the SQLite catalog database.
type CatalogService struct {
	db *sql.DB
}

// OpenCatalogDB opens (creating if needed) the catalog database and
// ensures its schema.
func OpenCatalogDB(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog db: %w", err)
	}
	if err := ensureCatalogSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func ensureCatalogSchema(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS products (
			sku TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			description TEXT,
			material TEXT,
			diameter_mm REAL,
			unit TEXT NOT NULL DEFAULT 'each',
			unit_price REAL NOT NULL,
			quantity_on_hand INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			customer_name TEXT NOT NULL,
			customer_email TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			order_id INTEGER NOT NULL REFERENCES orders(id),
			sku TEXT NOT NULL REFERENCES products(sku),
			quantity INTEGER NOT NULL,
			unit_price REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category)`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to ensure catalog schema: %w", err)
		}
	}
	return nil
}

func NewCatalogService(db *sql.DB) *CatalogService {
	return &CatalogService{db: db}
}

// SearchProducts matches query against name, description, material, and
// category, optionally filtered to one category. Returns at most 10 rows.
func (s *CatalogService) SearchProducts(ctx context.Context, query, category string) ([]models.Product, error) {
	term := "%" + query + "%"

	var rows *sql.Rows
	var err error
	if category != "" {
		rows, err = s.db.QueryContext(ctx, `
			SELECT sku, name, category, description, material, diameter_mm, unit, unit_price, quantity_on_hand
			FROM products
			WHERE (name LIKE ? OR description LIKE ? OR material LIKE ?)
			AND LOWER(category) = LOWER(?)
			ORDER BY name
			LIMIT 10`, term, term, term, category)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT sku, name, category, description, material, diameter_mm, unit, unit_price, quantity_on_hand
			FROM products
			WHERE name LIKE ? OR description LIKE ? OR material LIKE ? OR category LIKE ?
			ORDER BY name
			LIMIT 10`, term, term, term, term)
	}
	if err != nil {
		return nil, fmt.Errorf("product search failed: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// GetProduct returns a single product by SKU, or sql.ErrNoRows.
func (s *CatalogService) GetProduct(ctx context.Context, sku string) (*models.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT sku, name, category, description, material, diameter_mm, unit, unit_price, quantity_on_hand
		FROM products WHERE sku = ?`, sku)

	var p models.Product
	var diameter sql.NullFloat64
	err := row.Scan(&p.SKU, &p.Name, &p.Category, &p.Description, &p.Material,
		&diameter, &p.Unit, &p.UnitPrice, &p.QuantityOnHand)
	if err != nil {
		return nil, err
	}
	p.DiameterMM = diameter.Float64
	return &p, nil
}

// ListCategories returns distinct categories in alphabetical order.
func (s *CatalogService) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT category FROM products ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CheckStock reports availability for a SKU.
func (s *CatalogService) CheckStock(ctx context.Context, sku string) (*models.StockStatus, error) {
	row := s.db.QueryRowContext(ctx, `SELECT sku, name, quantity_on_hand FROM products WHERE sku = ?`, sku)

	var st models.StockStatus
	if err := row.Scan(&st.SKU, &st.Name, &st.QuantityOnHand); err != nil {
		return nil, err
	}
	st.InStock = st.QuantityOnHand > 0
	return &st, nil
}

// Stock level thresholds for inventory reporting.
const (
	stockCritical = 50
	stockLow      = 100
)

// InventoryStatus is one product's stock position.
type InventoryStatus struct {
	SKU            string  `json:"sku"`
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	QuantityOnHand int     `json:"quantity_on_hand"`
	StockValue     float64 `json:"stock_value"`
	Status         string  `json:"status"`
}

// CheckInventory lists stock positions, lowest quantities first, at
// most 15 rows. With lowStockOnly only items under the low threshold
// are returned.
func (s *CatalogService) CheckInventory(ctx context.Context, category string, lowStockOnly bool) ([]InventoryStatus, error) {
	query := `
		SELECT sku, name, category, quantity_on_hand, quantity_on_hand * unit_price
		FROM products`
	var conditions []string
	var params []any

	if category != "" {
		conditions = append(conditions, "LOWER(category) = LOWER(?)")
		params = append(params, category)
	}
	if lowStockOnly {
		conditions = append(conditions, "quantity_on_hand < ?")
		params = append(params, stockLow)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY quantity_on_hand ASC LIMIT 15"

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("inventory check failed: %w", err)
	}
	defer rows.Close()

	var items []InventoryStatus
	for rows.Next() {
		var it InventoryStatus
		if err := rows.Scan(&it.SKU, &it.Name, &it.Category, &it.QuantityOnHand, &it.StockValue); err != nil {
			return nil, err
		}
		switch {
		case it.QuantityOnHand < stockCritical:
			it.Status = "CRITICAL"
		case it.QuantityOnHand < stockLow:
			it.Status = "LOW"
		default:
			it.Status = "OK"
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// InventoryCategorySummary aggregates one category's stock.
type InventoryCategorySummary struct {
	Category string  `json:"category"`
	Products int     `json:"products"`
	Units    int     `json:"units"`
	Value    float64 `json:"value"`
}

// InventorySummary aggregates stock across the whole catalog.
type InventorySummary struct {
	Categories    []InventoryCategorySummary `json:"categories"`
	TotalProducts int                        `json:"total_products"`
	TotalUnits    int                        `json:"total_units"`
	TotalValue    float64                    `json:"total_value"`
}

// GetInventorySummary aggregates product counts, units, and stock value
// per category, plus catalog-wide totals.
func (s *CatalogService) GetInventorySummary(ctx context.Context) (*InventorySummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category,
		       COUNT(DISTINCT sku),
		       COALESCE(SUM(quantity_on_hand), 0),
		       COALESCE(SUM(quantity_on_hand * unit_price), 0)
		FROM products
		GROUP BY category
		ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("inventory summary failed: %w", err)
	}
	defer rows.Close()

	summary := &InventorySummary{}
	for rows.Next() {
		var cs InventoryCategorySummary
		if err := rows.Scan(&cs.Category, &cs.Products, &cs.Units, &cs.Value); err != nil {
			return nil, err
		}
		summary.Categories = append(summary.Categories, cs)
		summary.TotalProducts += cs.Products
		summary.TotalUnits += cs.Units
		summary.TotalValue += cs.Value
	}
	return summary, rows.Err()
}

func scanProducts(rows *sql.Rows) ([]models.Product, error) {
	var products []models.Product
	for rows.Next() {
		var p models.Product
		var diameter sql.NullFloat64
		err := rows.Scan(&p.SKU, &p.Name, &p.Category, &p.Description, &p.Material,
			&diameter, &p.Unit, &p.UnitPrice, &p.QuantityOnHand)
		if err != nil {
			return nil, err
		}
		p.DiameterMM = diameter.Float64
		products = append(products, p)
	}
	return products, rows.Err()
}
