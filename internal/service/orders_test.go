package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"

	"github.com/sagarchy-05/ecommerce-backend/internal/apperr"
	"github.com/sagarchy-05/ecommerce-backend/internal/auth"
	"github.com/sagarchy-05/ecommerce-backend/internal/events"
	"github.com/sagarchy-05/ecommerce-backend/internal/models"
	"github.com/sagarchy-05/ecommerce-backend/internal/repository"
)

func newOrderService(t *testing.T) (*OrderService, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}

	svc := NewOrderService(
		db,
		repository.NewOrderRepository(),
		repository.NewProductRepository(),
		events.NopPublisher{},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return svc, mock, func() { db.Close() }
}

func productRows(id, name, price string, stock int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "name", "description", "price", "stock", "category_id", "created_at", "updated_at",
	}).AddRow(id, name, "", price, stock, "cat-1", now, now)
}

func orderRows(id, userID, total string, status models.OrderStatus) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "user_id", "total_price", "status", "created_at", "updated_at",
	}).AddRow(id, userID, total, string(status), now, now)
}

var itemColumns = []string{
	"id", "order_id", "product_id", "quantity", "price_at_purchase",
	"p_id", "p_name", "p_price",
}

const (
	selectProductForUpdate = `FROM products WHERE id = \$1 FOR UPDATE`
	adjustStock            = `UPDATE products SET stock = stock \+ \$2`
	insertOrder            = `INSERT INTO orders`
	insertItem             = `INSERT INTO order_items`
	selectOrder            = `FROM orders WHERE id = \$1`
	selectOrderForUpdate   = `FROM orders WHERE id = \$1 FOR UPDATE`
	selectItems            = `FROM order_items i`
	updateStatus           = `UPDATE orders SET status = \$2`
	deleteItems            = `DELETE FROM order_items WHERE order_id = \$1`
)

func TestPlaceOrder_Success(t *testing.T) {
	svc, mock, done := newOrderService(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery(selectProductForUpdate).
		WithArgs("prod-1").
		WillReturnRows(productRows("prod-1", "Widget", "10.00", 5))
	mock.ExpectExec(adjustStock).
		WithArgs("prod-1", -3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertOrder).
		WithArgs(sqlmock.AnyArg(), "user-1", sqlmock.AnyArg(), "pending",
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertItem).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "prod-1", 3, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	order, err := svc.PlaceOrder(context.Background(), "user-1", []OrderItemRequest{
		{ProductID: "prod-1", Quantity: 3},
	})
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	if order.Status != models.OrderStatusPending {
		t.Errorf("expected status pending, got %s", order.Status)
	}
	if want := decimal.RequireFromString("30.00"); !order.TotalPrice.Equal(want) {
		t.Errorf("expected total 30.00, got %s", order.TotalPrice)
	}
	if len(order.Items) != 1 || order.Items[0].Quantity != 3 {
		t.Errorf("unexpected line items: %+v", order.Items)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPlaceOrder_InsufficientStockRollsBack(t *testing.T) {
	svc, mock, done := newOrderService(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery(selectProductForUpdate).
		WithArgs("prod-1").
		WillReturnRows(productRows("prod-1", "Widget", "10.00", 5))
	mock.ExpectRollback()

	_, err := svc.PlaceOrder(context.Background(), "user-1", []OrderItemRequest{
		{ProductID: "prod-1", Quantity: 100},
	})
	if !errors.Is(err, apperr.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPlaceOrder_UnknownProductRollsBack(t *testing.T) {
	svc, mock, done := newOrderService(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery(selectProductForUpdate).
		WithArgs("prod-missing").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := svc.PlaceOrder(context.Background(), "user-1", []OrderItemRequest{
		{ProductID: "prod-missing", Quantity: 1},
	})
	if !errors.Is(err, apperr.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// A failure on the second line rolls back the decrement already applied to
// the first.
func TestPlaceOrder_MidOrderFailureRollsBackEverything(t *testing.T) {
	svc, mock, done := newOrderService(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery(selectProductForUpdate).
		WithArgs("prod-1").
		WillReturnRows(productRows("prod-1", "Widget", "10.00", 5))
	mock.ExpectExec(adjustStock).
		WithArgs("prod-1", -2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(selectProductForUpdate).
		WithArgs("prod-2").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := svc.PlaceOrder(context.Background(), "user-1", []OrderItemRequest{
		{ProductID: "prod-1", Quantity: 2},
		{ProductID: "prod-2", Quantity: 1},
	})
	if !errors.Is(err, apperr.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// The same product twice in one request sees the already reduced stock on
// the second line.
func TestPlaceOrder_RepeatedProductConsumesStockSequentially(t *testing.T) {
	svc, mock, done := newOrderService(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery(selectProductForUpdate).
		WithArgs("prod-1").
		WillReturnRows(productRows("prod-1", "Widget", "10.00", 5))
	mock.ExpectExec(adjustStock).
		WithArgs("prod-1", -4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(selectProductForUpdate).
		WithArgs("prod-1").
		WillReturnRows(productRows("prod-1", "Widget", "10.00", 1))
	mock.ExpectRollback()

	_, err := svc.PlaceOrder(context.Background(), "user-1", []OrderItemRequest{
		{ProductID: "prod-1", Quantity: 4},
		{ProductID: "prod-1", Quantity: 2},
	})
	if !errors.Is(err, apperr.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPlaceOrder_RejectsEmptyAndInvalidRequests(t *testing.T) {
	svc, _, done := newOrderService(t)
	defer done()

	if _, err := svc.PlaceOrder(context.Background(), "user-1", nil); !apperr.IsValidation(err) {
		t.Errorf("empty order: expected validation error, got %v", err)
	}

	_, err := svc.PlaceOrder(context.Background(), "user-1", []OrderItemRequest{
		{ProductID: "prod-1", Quantity: 0},
	})
	if !apperr.IsValidation(err) {
		t.Errorf("zero quantity: expected validation error, got %v", err)
	}

	_, err = svc.PlaceOrder(context.Background(), "user-1", []OrderItemRequest{
		{ProductID: "", Quantity: 1},
	})
	if !apperr.IsValidation(err) {
		t.Errorf("missing product id: expected validation error, got %v", err)
	}
}

func TestGetOrder_OwnerAndAdminOnly(t *testing.T) {
	svc, mock, done := newOrderService(t)
	defer done()

	mock.ExpectQuery(selectOrder).
		WithArgs("order-1").
		WillReturnRows(orderRows("order-1", "owner-1", "30.00", models.OrderStatusPending))
	mock.ExpectQuery(selectItems).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(itemColumns))

	_, err := svc.GetOrder(context.Background(), auth.Identity{UserID: "stranger"}, "order-1")
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", err)
	}

	mock.ExpectQuery(selectOrder).
		WithArgs("order-1").
		WillReturnRows(orderRows("order-1", "owner-1", "30.00", models.OrderStatusPending))
	mock.ExpectQuery(selectItems).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(itemColumns).
			AddRow("item-1", "order-1", "prod-1", 3, "10.00", "prod-1", "Widget", "10.00"))
	mock.ExpectQuery(`SELECT id, name, email FROM users`).
		WithArgs("owner-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).
			AddRow("owner-1", "Owner", "owner@example.com"))

	order, err := svc.GetOrder(context.Background(), auth.Identity{UserID: "owner-1"}, "order-1")
	if err != nil {
		t.Fatalf("owner fetch failed: %v", err)
	}
	if order.User == nil || order.User.Email != "owner@example.com" {
		t.Errorf("expected user summary attached, got %+v", order.User)
	}
	if len(order.Items) != 1 || order.Items[0].Product == nil {
		t.Errorf("expected one item with product summary, got %+v", order.Items)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestListAllOrders_AdminOnly(t *testing.T) {
	svc, mock, done := newOrderService(t)
	defer done()

	if _, err := svc.ListAllOrders(context.Background(), auth.Identity{UserID: "u1"}); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-admin, got %v", err)
	}

	now := time.Now()
	mock.ExpectQuery(`FROM orders o`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "total_price", "status", "created_at", "updated_at",
			"u_id", "u_name", "u_email",
		}).AddRow("order-1", "u1", "30.00", "pending", now, now, "u1", "User One", "one@example.com"))
	mock.ExpectQuery(selectItems).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(itemColumns))

	orders, err := svc.ListAllOrders(context.Background(), auth.Identity{UserID: "admin", IsAdmin: true})
	if err != nil {
		t.Fatalf("ListAllOrders failed: %v", err)
	}
	if len(orders) != 1 || orders[0].User == nil {
		t.Fatalf("expected one order with user summary, got %+v", orders)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestEditStatus_AdvancesOneStep(t *testing.T) {
	svc, mock, done := newOrderService(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery(selectOrderForUpdate).
		WithArgs("order-1").
		WillReturnRows(orderRows("order-1", "u1", "30.00", models.OrderStatusPending))
	mock.ExpectQuery(selectItems).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(itemColumns))
	mock.ExpectExec(updateStatus).
		WithArgs("order-1", "processing").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	admin := auth.Identity{UserID: "admin", IsAdmin: true}
	if err := svc.EditStatus(context.Background(), admin, "order-1", models.OrderStatusProcessing); err != nil {
		t.Fatalf("EditStatus failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestEditStatus_RejectsSkippedSteps(t *testing.T) {
	svc, mock, done := newOrderService(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery(selectOrderForUpdate).
		WithArgs("order-1").
		WillReturnRows(orderRows("order-1", "u1", "30.00", models.OrderStatusPending))
	mock.ExpectQuery(selectItems).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(itemColumns))
	mock.ExpectRollback()

	admin := auth.Identity{UserID: "admin", IsAdmin: true}
	err := svc.EditStatus(context.Background(), admin, "order-1", models.OrderStatusShipped)
	if !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestEditStatus_RejectsNonAdminAndUnknownStatus(t *testing.T) {
	svc, _, done := newOrderService(t)
	defer done()

	user := auth.Identity{UserID: "u1"}
	if err := svc.EditStatus(context.Background(), user, "order-1", models.OrderStatusProcessing); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("expected ErrForbidden for non-admin, got %v", err)
	}

	admin := auth.Identity{UserID: "admin", IsAdmin: true}
	if err := svc.EditStatus(context.Background(), admin, "order-1", models.OrderStatus("teleported")); !apperr.IsValidation(err) {
		t.Errorf("expected validation error for unknown status, got %v", err)
	}
}

func TestCancel_RestoresStockAndDeletesItems(t *testing.T) {
	svc, mock, done := newOrderService(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery(selectOrderForUpdate).
		WithArgs("order-1").
		WillReturnRows(orderRows("order-1", "owner-1", "20.00", models.OrderStatusShipped))
	mock.ExpectQuery(selectItems).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(itemColumns).
			AddRow("item-1", "order-1", "prod-1", 2, "10.00", "prod-1", "Widget", "10.00"))
	mock.ExpectExec(adjustStock).
		WithArgs("prod-1", 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(deleteItems).
		WithArgs("order-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(updateStatus).
		WithArgs("order-1", "cancelled").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	owner := auth.Identity{UserID: "owner-1"}
	if err := svc.Cancel(context.Background(), owner, "order-1"); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// A line item whose product has since been deleted has no stock to restore;
// the cancellation still completes.
func TestCancel_ToleratesDeletedProduct(t *testing.T) {
	svc, mock, done := newOrderService(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery(selectOrderForUpdate).
		WithArgs("order-1").
		WillReturnRows(orderRows("order-1", "owner-1", "20.00", models.OrderStatusPending))
	mock.ExpectQuery(selectItems).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(itemColumns).
			AddRow("item-1", "order-1", "prod-gone", 2, "10.00", nil, nil, nil))
	mock.ExpectExec(adjustStock).
		WithArgs("prod-gone", 2).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(deleteItems).
		WithArgs("order-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(updateStatus).
		WithArgs("order-1", "cancelled").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	owner := auth.Identity{UserID: "owner-1"}
	if err := svc.Cancel(context.Background(), owner, "order-1"); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// Late-stage and already-cancelled orders stay as they are. A repeat cancel
// must not restore stock or rewrite the status a second time.
func TestCancel_RejectsLateStages(t *testing.T) {
	for _, status := range []models.OrderStatus{
		models.OrderStatusDelivering,
		models.OrderStatusDelivered,
		models.OrderStatusCancelled,
	} {
		t.Run(string(status), func(t *testing.T) {
			svc, mock, done := newOrderService(t)
			defer done()

			mock.ExpectBegin()
			mock.ExpectQuery(selectOrderForUpdate).
				WithArgs("order-1").
				WillReturnRows(orderRows("order-1", "owner-1", "20.00", status))
			mock.ExpectQuery(selectItems).
				WithArgs(sqlmock.AnyArg()).
				WillReturnRows(sqlmock.NewRows(itemColumns))
			mock.ExpectRollback()

			owner := auth.Identity{UserID: "owner-1"}
			err := svc.Cancel(context.Background(), owner, "order-1")
			if !errors.Is(err, apperr.ErrInvalidState) {
				t.Fatalf("expected ErrInvalidState, got %v", err)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

func TestCancel_StrangerForbidden(t *testing.T) {
	svc, mock, done := newOrderService(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery(selectOrderForUpdate).
		WithArgs("order-1").
		WillReturnRows(orderRows("order-1", "owner-1", "20.00", models.OrderStatusPending))
	mock.ExpectQuery(selectItems).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(itemColumns))
	mock.ExpectRollback()

	err := svc.Cancel(context.Background(), auth.Identity{UserID: "stranger"}, "order-1")
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCancel_MissingOrder(t *testing.T) {
	svc, mock, done := newOrderService(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery(selectOrderForUpdate).
		WithArgs("order-missing").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := svc.Cancel(context.Background(), auth.Identity{UserID: "owner-1"}, "order-missing")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
