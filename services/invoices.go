package services

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"business-assistant-backend/models"

	"github.com/xuri/excelize/v2"
)

const invoiceTaxRate = 0.0825

// InvoiceService generates sequentially numbered invoice workbooks.
type InvoiceService struct {
	db  *sql.DB
	dir string
}

func NewInvoiceService(db *sql.DB, dir string) (*InvoiceService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create invoices directory: %w", err)
	}
	return &InvoiceService{db: db, dir: dir}, nil
}

// NextInvoiceNumber derives the next INV-%06d number from files already
// in the invoices directory.
func (s *InvoiceService) NextInvoiceNumber() (string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", fmt.Errorf("failed to read invoices directory: %w", err)
	}

	maxNum := 0
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "INV-") || !strings.HasSuffix(name, ".xlsx") {
			continue
		}
		numPart := strings.TrimSuffix(strings.TrimPrefix(name, "INV-"), ".xlsx")
		if n, err := strconv.Atoi(numPart); err == nil && n > maxNum {
			maxNum = n
		}
	}
	return fmt.Sprintf("INV-%06d", maxNum+1), nil
}

// CreateInvoiceForOrder builds an invoice from an order's line items and
// writes it as an xlsx workbook.
func (s *InvoiceService) CreateInvoiceForOrder(ctx context.Context, order *models.Order) (*models.Invoice, error) {
	if len(order.Items) == 0 {
		return nil, fmt.Errorf("order %d has no items to invoice", order.ID)
	}

	items := make([]models.InvoiceItem, len(order.Items))
	var subtotal float64
	for i, li := range order.Items {
		total := float64(li.Quantity) * li.UnitPrice
		items[i] = models.InvoiceItem{
			Description: li.Name,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
			Total:       total,
		}
		subtotal += total
	}

	return s.CreateInvoice(ctx, order.CustomerName, order.CustomerEmail, items, subtotal)
}

// CreateInvoice writes the invoice workbook and returns its metadata.
func (s *InvoiceService) CreateInvoice(ctx context.Context, customerName, customerEmail string, items []models.InvoiceItem, subtotal float64) (*models.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	number, err := s.NextInvoiceNumber()
	if err != nil {
		return nil, err
	}

	tax := subtotal * invoiceTaxRate
	inv := &models.Invoice{
		Number:        number,
		CustomerName:  customerName,
		CustomerEmail: customerEmail,
		Items:         items,
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         subtotal + tax,
		CreatedAt:     time.Now(),
		FilePath:      filepath.Join(s.dir, number+".xlsx"),
	}

	if err := s.writeWorkbook(inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *InvoiceService) writeWorkbook(inv *models.Invoice) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Invoice"
	f.SetSheetName("Sheet1", sheet)

	f.SetCellValue(sheet, "A1", "INVOICE")
	f.SetCellValue(sheet, "A2", "Invoice Number")
	f.SetCellValue(sheet, "B2", inv.Number)
	f.SetCellValue(sheet, "A3", "Date")
	f.SetCellValue(sheet, "B3", inv.CreatedAt.Format("2006-01-02"))

	f.SetCellValue(sheet, "A5", "From")
	f.SetCellValue(sheet, "B5", "Warehouse Supply Co., 123 Industrial Blvd, Chicago, IL 60601")
	f.SetCellValue(sheet, "A6", "Bill To")
	f.SetCellValue(sheet, "B6", fmt.Sprintf("%s <%s>", inv.CustomerName, inv.CustomerEmail))

	header := 8
	f.SetCellValue(sheet, fmt.Sprintf("A%d", header), "Item")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", header), "Qty")
	f.SetCellValue(sheet, fmt.Sprintf("C%d", header), "Price")
	f.SetCellValue(sheet, fmt.Sprintf("D%d", header), "Total")

	row := header + 1
	for _, item := range inv.Items {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), item.Description)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), item.Quantity)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), item.UnitPrice)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), item.Total)
		row++
	}

	row++
	f.SetCellValue(sheet, fmt.Sprintf("C%d", row), "Subtotal")
	f.SetCellValue(sheet, fmt.Sprintf("D%d", row), inv.Subtotal)
	row++
	f.SetCellValue(sheet, fmt.Sprintf("C%d", row), fmt.Sprintf("Tax (%.2f%%)", invoiceTaxRate*100))
	f.SetCellValue(sheet, fmt.Sprintf("D%d", row), inv.Tax)
	row++
	f.SetCellValue(sheet, fmt.Sprintf("C%d", row), "Total")
	f.SetCellValue(sheet, fmt.Sprintf("D%d", row), inv.Total)

	if err := f.SaveAs(inv.FilePath); err != nil {
		return fmt.Errorf("failed to write invoice workbook: %w", err)
	}
	return nil
}

// ListInvoices returns invoice numbers on disk, newest number first.
func (s *InvoiceService) ListInvoices() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read invoices directory: %w", err)
	}
	var numbers []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, "INV-") && strings.HasSuffix(name, ".xlsx") {
			numbers = append(numbers, strings.TrimSuffix(name, ".xlsx"))
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(numbers)))
	return numbers, nil
}
