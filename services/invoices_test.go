package services

import (
	"context"
	"math"
	"os"
	"testing"

	"business-assistant-backend/models"
)

func TestNextInvoiceNumber(t *testing.T) {
	dir := t.TempDir()
	svc, err := NewInvoiceService(nil, dir)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	num, err := svc.NextInvoiceNumber()
	if err != nil {
		t.Fatalf("next number: %v", err)
	}
	if num != "INV-000001" {
		t.Errorf("first number = %s, want INV-000001", num)
	}

	for _, name := range []string{"INV-000003.xlsx", "INV-000017.xlsx", "notes.txt"} {
		if err := os.WriteFile(dir+"/"+name, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	num, err = svc.NextInvoiceNumber()
	if err != nil {
		t.Fatalf("next number: %v", err)
	}
	if num != "INV-000018" {
		t.Errorf("number = %s, want INV-000018", num)
	}
}

func TestCreateInvoiceTotals(t *testing.T) {
	svc, err := NewInvoiceService(nil, t.TempDir())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	items := []models.InvoiceItem{
		{Description: "Nylon Rope 12mm", Quantity: 10, UnitPrice: 24.99, Total: 249.90},
		{Description: "Sand Bags", Quantity: 100, UnitPrice: 1.75, Total: 175.00},
	}
	inv, err := svc.CreateInvoice(context.Background(), "Acme Corp", "purchasing@acme.test", items, 424.90)
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	if math.Abs(inv.Tax-424.90*invoiceTaxRate) > 1e-9 {
		t.Errorf("tax = %f", inv.Tax)
	}
	if math.Abs(inv.Total-(424.90*(1+invoiceTaxRate))) > 1e-9 {
		t.Errorf("total = %f", inv.Total)
	}
	if _, err := os.Stat(inv.FilePath); err != nil {
		t.Errorf("workbook not written: %v", err)
	}

	numbers, err := svc.ListInvoices()
	if err != nil {
		t.Fatalf("list invoices: %v", err)
	}
	if len(numbers) != 1 || numbers[0] != inv.Number {
		t.Errorf("list = %v, want [%s]", numbers, inv.Number)
	}
}

func TestCreateInvoiceForOrderRequiresItems(t *testing.T) {
	svc, err := NewInvoiceService(nil, t.TempDir())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	_, err = svc.CreateInvoiceForOrder(context.Background(), &models.Order{ID: 7})
	if err == nil {
		t.Errorf("expected error for order without items")
	}
}
