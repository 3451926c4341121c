package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/sagarchy-05/ecommerce-backend/internal/apperr"
	"github.com/sagarchy-05/ecommerce-backend/internal/auth"
	"github.com/sagarchy-05/ecommerce-backend/internal/events"
	"github.com/sagarchy-05/ecommerce-backend/internal/metrics"
	"github.com/sagarchy-05/ecommerce-backend/internal/models"
	"github.com/sagarchy-05/ecommerce-backend/internal/repository"
)

// OrderItemRequest is one product+quantity entry in a placement request.
type OrderItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// OrderService is the order engine. Placement and cancellation run inside a
// single transaction; product rows are locked with SELECT ... FOR UPDATE so
// the check-then-decrement sequence cannot lose updates to a concurrent
// placement. Caller identity is always an explicit argument.
type OrderService struct {
	db        *sql.DB
	orders    *repository.OrderRepository
	products  *repository.ProductRepository
	publisher events.Publisher
	logger    *slog.Logger
}

func NewOrderService(
	db *sql.DB,
	orders *repository.OrderRepository,
	products *repository.ProductRepository,
	publisher events.Publisher,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		db:        db,
		orders:    orders,
		products:  products,
		publisher: publisher,
		logger:    logger,
	}
}

// PlaceOrder atomically creates an order with one line item per request
// entry, decrementing stock as it goes. Stock is persisted per item inside
// the transaction, so a later entry for the same product sees the already
// reduced stock. Any failure rolls everything back.
func (s *OrderService) PlaceOrder(ctx context.Context, callerID string, items []OrderItemRequest) (*models.Order, error) {
	if len(items) == 0 {
		return nil, apperr.NewValidationError("items", "order must contain items")
	}
	for _, item := range items {
		if item.ProductID == "" {
			return nil, apperr.NewValidationError("productId", "product id is required")
		}
		if item.Quantity <= 0 {
			return nil, apperr.NewValidationError("quantity", "quantity must be positive")
		}
	}

	var order *models.Order

	err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		total := decimal.Zero
		lineItems := make([]models.OrderItem, 0, len(items))

		for _, req := range items {
			product, err := s.products.GetForUpdate(ctx, tx, req.ProductID)
			if errors.Is(err, apperr.ErrNotFound) {
				return fmt.Errorf("%w: %s", apperr.ErrProductNotFound, req.ProductID)
			}
			if err != nil {
				return err
			}
			if product.Stock < req.Quantity {
				return fmt.Errorf("%w: product %s has %d left",
					apperr.ErrInsufficientStock, product.ID, product.Stock)
			}

			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(req.Quantity))))
			lineItems = append(lineItems, models.OrderItem{
				ProductID:       product.ID,
				Quantity:        req.Quantity,
				PriceAtPurchase: product.Price,
			})

			if err := s.products.AdjustStock(ctx, tx, product.ID, -req.Quantity); err != nil {
				return err
			}
		}

		order = &models.Order{
			UserID:     callerID,
			TotalPrice: total.Round(2),
			Status:     models.OrderStatusPending,
		}
		if err := s.orders.Insert(ctx, tx, order); err != nil {
			return err
		}

		for i := range lineItems {
			lineItems[i].OrderID = order.ID
			if err := s.orders.InsertItem(ctx, tx, &lineItems[i]); err != nil {
				return err
			}
		}
		order.Items = lineItems
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrInsufficientStock):
			metrics.OrderPlacementFailures.WithLabelValues("insufficient_stock").Inc()
		case errors.Is(err, apperr.ErrProductNotFound):
			metrics.OrderPlacementFailures.WithLabelValues("product_not_found").Inc()
		}
		return nil, err
	}

	metrics.OrdersPlaced.Inc()
	s.logger.Info("order placed",
		"order_id", order.ID, "user_id", callerID,
		"total", order.TotalPrice.String(), "items", len(order.Items))

	if err := s.publisher.OrderPlaced(ctx, order); err != nil {
		s.logger.Error("failed to publish order placed event",
			"order_id", order.ID, "error", err)
	}

	return order, nil
}

// GetOrder fetches one order with its line items. Only the owner or an
// admin may see it.
func (s *OrderService) GetOrder(ctx context.Context, caller auth.Identity, orderID string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, s.db, orderID, false)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin && caller.UserID != order.UserID {
		return nil, apperr.ErrForbidden
	}

	user, err := s.orders.GetUserSummary(ctx, s.db, order.UserID)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	order.User = user
	return order, nil
}

// ListAllOrders returns every order with owning user details. Admin only.
func (s *OrderService) ListAllOrders(ctx context.Context, caller auth.Identity) ([]*models.Order, error) {
	if !caller.IsAdmin {
		return nil, apperr.ErrForbidden
	}
	return s.orders.ListAll(ctx, s.db)
}

// ListMyOrders returns the caller's orders.
func (s *OrderService) ListMyOrders(ctx context.Context, callerID string) ([]*models.Order, error) {
	return s.orders.ListByUser(ctx, s.db, callerID)
}

// statusTransitions is the legal edit graph. Cancellation is not an edit;
// it goes through Cancel so stock is restored.
var statusTransitions = map[models.OrderStatus]models.OrderStatus{
	models.OrderStatusPending:    models.OrderStatusProcessing,
	models.OrderStatusProcessing: models.OrderStatusShipped,
	models.OrderStatusShipped:    models.OrderStatusDelivering,
	models.OrderStatusDelivering: models.OrderStatusDelivered,
}

// EditStatus overwrites an order's status. Admin only. The new status must
// be a member of the enumeration and the next step in the lifecycle.
func (s *OrderService) EditStatus(ctx context.Context, caller auth.Identity, orderID string, status models.OrderStatus) error {
	if !caller.IsAdmin {
		return apperr.ErrForbidden
	}
	if !status.Valid() {
		return apperr.NewValidationError("status", "unknown order status")
	}

	var order *models.Order
	var previous models.OrderStatus

	err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		order, err = s.orders.GetByID(ctx, tx, orderID, true)
		if err != nil {
			return err
		}

		if statusTransitions[order.Status] != status {
			return fmt.Errorf("%w: cannot move order from %s to %s",
				apperr.ErrInvalidState, order.Status, status)
		}

		previous = order.Status
		if err := s.orders.UpdateStatus(ctx, tx, orderID, status); err != nil {
			return err
		}
		order.Status = status
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("order status updated",
		"order_id", orderID, "from", string(previous), "to", string(status))

	if err := s.publisher.OrderStatusChanged(ctx, order, previous); err != nil {
		s.logger.Error("failed to publish status change event",
			"order_id", orderID, "error", err)
	}
	return nil
}

// Cancel restores stock for every line item, deletes the items, and marks
// the order cancelled, all in one transaction. Owner or admin only. Orders
// out for delivery or already delivered cannot be cancelled.
func (s *OrderService) Cancel(ctx context.Context, caller auth.Identity, orderID string) error {
	var order *models.Order

	err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		order, err = s.orders.GetByID(ctx, tx, orderID, true)
		if err != nil {
			return err
		}
		if !caller.IsAdmin && caller.UserID != order.UserID {
			return apperr.ErrForbidden
		}
		if !order.CanCancel() {
			return fmt.Errorf("%w: order is %s", apperr.ErrInvalidState, order.Status)
		}

		for _, item := range order.Items {
			err := s.products.AdjustStock(ctx, tx, item.ProductID, item.Quantity)
			if err != nil && !errors.Is(err, apperr.ErrNotFound) {
				return err
			}
			// a product removed from the catalog since purchase has no
			// stock to restore
		}

		if err := s.orders.DeleteItems(ctx, tx, orderID); err != nil {
			return err
		}
		if err := s.orders.UpdateStatus(ctx, tx, orderID, models.OrderStatusCancelled); err != nil {
			return err
		}
		order.Status = models.OrderStatusCancelled
		return nil
	})
	if err != nil {
		return err
	}

	metrics.OrdersCancelled.Inc()
	s.logger.Info("order cancelled", "order_id", orderID, "user_id", order.UserID)

	if err := s.publisher.OrderCancelled(ctx, order); err != nil {
		s.logger.Error("failed to publish order cancelled event",
			"order_id", orderID, "error", err)
	}
	return nil
}
