package services

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
)

// ReportService summarizes sales from the orders tables and exports the
// summary as an xlsx workbook.
type ReportService struct {
	db  *sql.DB
	dir string
}

func NewReportService(db *sql.DB, dir string) (*ReportService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create reports directory: %w", err)
	}
	return &ReportService{db: db, dir: dir}, nil
}

// SalesSummary aggregates completed orders over the trailing period.
type SalesSummary struct {
	PeriodDays  int             `json:"period_days"`
	OrderCount  int             `json:"order_count"`
	Revenue     float64         `json:"revenue"`
	TopProducts []ProductVolume `json:"top_products"`
}

type ProductVolume struct {
	SKU      string  `json:"sku"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// GetSalesSummary aggregates orders created within the last periodDays,
// excluding cancelled ones.
func (s *ReportService) GetSalesSummary(ctx context.Context, periodDays int) (*SalesSummary, error) {
	if periodDays <= 0 {
		periodDays = 30
	}
	since := time.Now().AddDate(0, 0, -periodDays)

	summary := &SalesSummary{PeriodDays: periodDays}

	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT o.id), COALESCE(SUM(oi.quantity * oi.unit_price), 0)
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		WHERE o.created_at >= ? AND o.status != 'cancelled'`, since)
	if err := row.Scan(&summary.OrderCount, &summary.Revenue); err != nil {
		return nil, fmt.Errorf("failed to aggregate sales: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT oi.sku, COALESCE(p.name, oi.sku), SUM(oi.quantity), SUM(oi.quantity * oi.unit_price)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		LEFT JOIN products p ON p.sku = oi.sku
		WHERE o.created_at >= ? AND o.status != 'cancelled'
		GROUP BY oi.sku
		ORDER BY SUM(oi.quantity * oi.unit_price) DESC
		LIMIT 5`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate top products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pv ProductVolume
		if err := rows.Scan(&pv.SKU, &pv.Name, &pv.Quantity, &pv.Revenue); err != nil {
			return nil, err
		}
		summary.TopProducts = append(summary.TopProducts, pv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summary, nil
}

// ExportSalesSummary writes the summary to an xlsx workbook and returns
// its path.
func (s *ReportService) ExportSalesSummary(ctx context.Context, summary *SalesSummary) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sales Summary"
	f.SetSheetName("Sheet1", sheet)

	f.SetCellValue(sheet, "A1", "Sales Summary")
	f.SetCellValue(sheet, "A2", "Period (days)")
	f.SetCellValue(sheet, "B2", summary.PeriodDays)
	f.SetCellValue(sheet, "A3", "Orders")
	f.SetCellValue(sheet, "B3", summary.OrderCount)
	f.SetCellValue(sheet, "A4", "Revenue")
	f.SetCellValue(sheet, "B4", summary.Revenue)

	f.SetCellValue(sheet, "A6", "SKU")
	f.SetCellValue(sheet, "B6", "Product")
	f.SetCellValue(sheet, "C6", "Quantity")
	f.SetCellValue(sheet, "D6", "Revenue")

	row := 7
	for _, pv := range summary.TopProducts {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), pv.SKU)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), pv.Name)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), pv.Quantity)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), pv.Revenue)
		row++
	}

	path := filepath.Join(s.dir, fmt.Sprintf("sales-summary-%s.xlsx", time.Now().Format("20060102-150405")))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to write report workbook: %w", err)
	}
	return path, nil
}
