package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sagarchy-05/ecommerce-backend/internal/models"
)

type addressRequest struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// CreateAddress handles POST /api/addresses
func (h *Handlers) CreateAddress(c *gin.Context) {
	caller, ok := h.identity(c)
	if !ok {
		return
	}

	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	address := &models.Address{
		Street:  req.Street,
		City:    req.City,
		Zip:     req.Zip,
		Country: req.Country,
	}
	if err := h.addresses.Create(c.Request.Context(), caller.UserID, address); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, address)
}

// ListAddresses handles GET /api/addresses
func (h *Handlers) ListAddresses(c *gin.Context) {
	caller, ok := h.identity(c)
	if !ok {
		return
	}

	addresses, err := h.addresses.List(c.Request.Context(), caller.UserID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, addresses)
}

// GetAddress handles GET /api/addresses/:id
func (h *Handlers) GetAddress(c *gin.Context) {
	caller, ok := h.identity(c)
	if !ok {
		return
	}

	address, err := h.addresses.Get(c.Request.Context(), caller.UserID, c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, address)
}

// UpdateAddress handles PUT /api/addresses/:id
func (h *Handlers) UpdateAddress(c *gin.Context) {
	caller, ok := h.identity(c)
	if !ok {
		return
	}

	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	address, err := h.addresses.Update(c.Request.Context(), caller.UserID, c.Param("id"), models.Address{
		Street:  req.Street,
		City:    req.City,
		Zip:     req.Zip,
		Country: req.Country,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, address)
}

// DeleteAddress handles DELETE /api/addresses/:id
func (h *Handlers) DeleteAddress(c *gin.Context) {
	caller, ok := h.identity(c)
	if !ok {
		return
	}

	if err := h.addresses.Delete(c.Request.Context(), caller.UserID, c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
