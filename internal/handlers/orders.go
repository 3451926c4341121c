package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sagarchy-05/ecommerce-backend/internal/models"
	"github.com/sagarchy-05/ecommerce-backend/internal/service"
)

type placeOrderRequest struct {
	Items []service.OrderItemRequest `json:"items"`
}

// PlaceOrder handles POST /api/orders
func (h *Handlers) PlaceOrder(c *gin.Context) {
	caller, ok := h.identity(c)
	if !ok {
		return
	}

	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order must contain items"})
		return
	}

	order, err := h.orders.PlaceOrder(c.Request.Context(), caller.UserID, req.Items)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"orderId": order.ID,
	})
}

// ListAllOrders handles GET /api/orders/all (admin).
func (h *Handlers) ListAllOrders(c *gin.Context) {
	caller, ok := h.identity(c)
	if !ok {
		return
	}

	orders, err := h.orders.ListAllOrders(c.Request.Context(), caller)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// ListMyOrders handles GET /api/orders
func (h *Handlers) ListMyOrders(c *gin.Context) {
	caller, ok := h.identity(c)
	if !ok {
		return
	}

	orders, err := h.orders.ListMyOrders(c.Request.Context(), caller.UserID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetOrder handles GET /api/orders/:id
func (h *Handlers) GetOrder(c *gin.Context) {
	caller, ok := h.identity(c)
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type editOrderRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// EditOrder handles PUT /api/orders/:id (admin).
func (h *Handlers) EditOrder(c *gin.Context) {
	caller, ok := h.identity(c)
	if !ok {
		return
	}

	var req editOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	if err := h.orders.EditStatus(c.Request.Context(), caller, c.Param("id"), req.Status); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order edited successfully"})
}

// CancelOrder handles DELETE /api/orders/:id
func (h *Handlers) CancelOrder(c *gin.Context) {
	caller, ok := h.identity(c)
	if !ok {
		return
	}

	if err := h.orders.Cancel(c.Request.Context(), caller, c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled and stock restored"})
}
