package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/sagarchy-05/ecommerce-backend/internal/apperr"
	"github.com/sagarchy-05/ecommerce-backend/internal/models"
)

// OrderRepository is keyed storage for orders and their line items.
type OrderRepository struct{}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

// Insert persists the order row. Line items are inserted separately so the
// whole placement runs on one transaction.
func (r *OrderRepository) Insert(ctx context.Context, q DBTX, o *models.Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now

	_, err := q.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, total_price, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, o.ID, o.UserID, o.TotalPrice, o.Status, o.CreatedAt, o.UpdatedAt)
	return err
}

func (r *OrderRepository) InsertItem(ctx context.Context, q DBTX, item *models.OrderItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO order_items (id, order_id, product_id, quantity, price_at_purchase)
		VALUES ($1, $2, $3, $4, $5)
	`, item.ID, item.OrderID, item.ProductID, item.Quantity, item.PriceAtPurchase)
	return err
}

// GetByID loads the order row with its line items. Lock the row via
// forUpdate when the caller is about to mutate it.
func (r *OrderRepository) GetByID(ctx context.Context, q DBTX, id string, forUpdate bool) (*models.Order, error) {
	query := `SELECT id, user_id, total_price, status, created_at, updated_at FROM orders WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var o models.Order
	err := q.QueryRowContext(ctx, query, id).Scan(
		&o.ID, &o.UserID, &o.TotalPrice, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := r.itemsForOrders(ctx, q, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	if o.Items == nil {
		o.Items = []models.OrderItem{}
	}
	return &o, nil
}

// ListAll returns every order with its owning user summary, most recent
// first. Admin listing only.
func (r *OrderRepository) ListAll(ctx context.Context, q DBTX) ([]*models.Order, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT o.id, o.user_id, o.total_price, o.status, o.created_at, o.updated_at,
		       u.id, u.name, u.email
		FROM orders o
		JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]*models.Order, 0)
	for rows.Next() {
		var o models.Order
		var u models.UserSummary
		if err := rows.Scan(&o.ID, &o.UserID, &o.TotalPrice, &o.Status,
			&o.CreatedAt, &o.UpdatedAt, &u.ID, &u.Name, &u.Email); err != nil {
			return nil, err
		}
		o.User = &u
		orders = append(orders, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return r.attachItems(ctx, q, orders)
}

// ListByUser returns the user's orders, most recent first.
func (r *OrderRepository) ListByUser(ctx context.Context, q DBTX, userID string) ([]*models.Order, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, user_id, total_price, status, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]*models.Order, 0)
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.TotalPrice, &o.Status,
			&o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return r.attachItems(ctx, q, orders)
}

// GetUserSummary loads the id/name/email slice for admin order views.
func (r *OrderRepository) GetUserSummary(ctx context.Context, q DBTX, userID string) (*models.UserSummary, error) {
	var u models.UserSummary
	err := q.QueryRowContext(ctx,
		`SELECT id, name, email FROM users WHERE id = $1`, userID).
		Scan(&u.ID, &u.Name, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, q DBTX, id string, status models.OrderStatus) error {
	res, err := q.ExecContext(ctx, `
		UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// DeleteItems removes every line item belonging to the order.
func (r *OrderRepository) DeleteItems(ctx context.Context, q DBTX, orderID string) error {
	_, err := q.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID)
	return err
}

func (r *OrderRepository) attachItems(ctx context.Context, q DBTX, orders []*models.Order) ([]*models.Order, error) {
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}

	items, err := r.itemsForOrders(ctx, q, ids)
	if err != nil {
		return nil, err
	}

	for _, o := range orders {
		o.Items = items[o.ID]
		if o.Items == nil {
			o.Items = []models.OrderItem{}
		}
	}
	return orders, nil
}

// itemsForOrders fetches line items for a set of orders in one query, each
// with its product summary. The join is LEFT so items survive a deleted
// product.
func (r *OrderRepository) itemsForOrders(ctx context.Context, q DBTX, orderIDs []string) (map[string][]models.OrderItem, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT i.id, i.order_id, i.product_id, i.quantity, i.price_at_purchase,
		       p.id, p.name, p.price
		FROM order_items i
		LEFT JOIN products p ON p.id = i.product_id
		WHERE i.order_id = ANY($1)
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[string][]models.OrderItem)
	for rows.Next() {
		var item models.OrderItem
		var pid, pname sql.NullString
		var pprice sql.NullString
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID,
			&item.Quantity, &item.PriceAtPurchase, &pid, &pname, &pprice); err != nil {
			return nil, err
		}
		if pid.Valid {
			summary := &models.ProductSummary{ID: pid.String, Name: pname.String}
			if err := summary.Price.Scan(pprice.String); err != nil {
				return nil, err
			}
			item.Product = summary
		}
		items[item.OrderID] = append(items[item.OrderID], item)
	}
	return items, rows.Err()
}
