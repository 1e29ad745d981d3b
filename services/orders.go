package services

import (
	"context"
	"database/sql"
	"fmt"

	"business-assistant-backend/models"
)

// OrderService answers order-tracking questions from the catalog database.
type OrderService struct {
	db *sql.DB
}

func NewOrderService(db *sql.DB) *OrderService {
	return &OrderService{db: db}
}

// GetOrder returns an order with its line items, or sql.ErrNoRows.
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, customer_name, customer_email, status, created_at
		FROM orders WHERE id = ?`, id)

	var o models.Order
	if err := row.Scan(&o.ID, &o.CustomerName, &o.CustomerEmail, &o.Status, &o.CreatedAt); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT oi.sku, COALESCE(p.name, oi.sku), oi.quantity, oi.unit_price
		FROM order_items oi
		LEFT JOIN products p ON p.sku = oi.sku
		WHERE oi.order_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.SKU, &item.Name, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, item)
		o.Total += float64(item.Quantity) * item.UnitPrice
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListOrdersByCustomer returns a customer's orders, newest first.
func (s *OrderService) ListOrdersByCustomer(ctx context.Context, email string) ([]models.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.id, o.customer_name, o.customer_email, o.status, o.created_at,
		       COALESCE(SUM(oi.quantity * oi.unit_price), 0)
		FROM orders o
		LEFT JOIN order_items oi ON oi.order_id = o.id
		WHERE o.customer_email = ?
		GROUP BY o.id
		ORDER BY o.created_at DESC
		LIMIT 20`, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.CustomerName, &o.CustomerEmail, &o.Status, &o.CreatedAt, &o.Total); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// UpdateOrderStatus moves an order along the fulfilment pipeline.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id int64, status string) error {
	switch status {
	case models.OrderStatusPending, models.OrderStatusPaid, models.OrderStatusShipped,
		models.OrderStatusDelivered, models.OrderStatusCancelled:
	default:
		return fmt.Errorf("invalid order status: %s", status)
	}

	res, err := s.db.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
