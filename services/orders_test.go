package services

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"testing"
)

func TestGetOrderWithItems(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	svc := NewOrderService(db)

	order, err := svc.GetOrder(context.Background(), 1)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if order.CustomerEmail != "purchasing@acme.test" || order.Status != "shipped" {
		t.Errorf("unexpected order: %+v", order)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(order.Items))
	}
	wantTotal := 10*24.99 + 200*1.75
	if math.Abs(order.Total-wantTotal) > 1e-9 {
		t.Errorf("total = %f, want %f", order.Total, wantTotal)
	}

	if _, err := svc.GetOrder(context.Background(), 999); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("missing order err = %v, want sql.ErrNoRows", err)
	}
}

func TestListOrdersByCustomer(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	svc := NewOrderService(db)

	orders, err := svc.ListOrdersByCustomer(context.Background(), "purchasing@acme.test")
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}
	if orders[0].Total <= 0 {
		t.Errorf("order total not aggregated: %f", orders[0].Total)
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	svc := NewOrderService(db)

	if err := svc.UpdateOrderStatus(context.Background(), 1, "delivered"); err != nil {
		t.Fatalf("update status: %v", err)
	}
	order, err := svc.GetOrder(context.Background(), 1)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if order.Status != "delivered" {
		t.Errorf("status = %s, want delivered", order.Status)
	}

	if err := svc.UpdateOrderStatus(context.Background(), 1, "teleported"); err == nil {
		t.Errorf("invalid status accepted")
	}
	if err := svc.UpdateOrderStatus(context.Background(), 999, "paid"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("missing order err = %v, want sql.ErrNoRows", err)
	}
}
