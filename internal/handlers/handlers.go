package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sagarchy-05/ecommerce-backend/internal/apperr"
	"github.com/sagarchy-05/ecommerce-backend/internal/auth"
	"github.com/sagarchy-05/ecommerce-backend/internal/models"
	"github.com/sagarchy-05/ecommerce-backend/internal/service"
)

// OrderPlacer is the order engine surface the HTTP layer needs.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, callerID string, items []service.OrderItemRequest) (*models.Order, error)
	GetOrder(ctx context.Context, caller auth.Identity, orderID string) (*models.Order, error)
	ListAllOrders(ctx context.Context, caller auth.Identity) ([]*models.Order, error)
	ListMyOrders(ctx context.Context, callerID string) ([]*models.Order, error)
	EditStatus(ctx context.Context, caller auth.Identity, orderID string, status models.OrderStatus) error
	Cancel(ctx context.Context, caller auth.Identity, orderID string) error
}

// Handlers binds all HTTP endpoints to their services.
type Handlers struct {
	orders    OrderPlacer
	catalog   *service.CatalogService
	users     *service.UserService
	addresses *service.AddressService
	images    *service.ImageService
	logger    *slog.Logger
}

func NewHandlers(
	orders OrderPlacer,
	catalog *service.CatalogService,
	users *service.UserService,
	addresses *service.AddressService,
	images *service.ImageService,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		orders:    orders,
		catalog:   catalog,
		users:     users,
		addresses: addresses,
		images:    images,
		logger:    logger,
	}
}

// handleError maps the error taxonomy onto status codes: 400 for
// validation and state conflicts, 403/404 for authorization and missing
// entities, 500 with a generic message for everything else.
func (h *Handlers) handleError(c *gin.Context, err error) {
	switch {
	case apperr.IsValidation(err),
		errors.Is(err, apperr.ErrInsufficientStock),
		errors.Is(err, apperr.ErrProductNotFound),
		errors.Is(err, apperr.ErrInvalidState),
		errors.Is(err, apperr.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, apperr.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "unauthorized"})
	default:
		h.logger.Error("request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// identity returns the verified caller, aborting with 403 if the
// authentication middleware did not run.
func (h *Handlers) identity(c *gin.Context) (auth.Identity, bool) {
	id, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "unauthorized"})
	}
	return id, ok
}
