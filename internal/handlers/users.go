package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sagarchy-05/ecommerce-backend/internal/service"
)

type userPatchRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsAdmin  *bool  `json:"isAdmin"`
}

func (r userPatchRequest) toPatch() service.UserPatch {
	return service.UserPatch{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
		IsAdmin:  r.IsAdmin,
	}
}

// GetProfile handles GET /api/user/profile
func (h *Handlers) GetProfile(c *gin.Context) {
	caller, ok := h.identity(c)
	if !ok {
		return
	}

	user, err := h.users.GetProfile(c.Request.Context(), caller.UserID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile handles PUT /api/user/profile
func (h *Handlers) UpdateProfile(c *gin.Context) {
	caller, ok := h.identity(c)
	if !ok {
		return
	}

	var req userPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.users.UpdateProfile(c.Request.Context(), caller.UserID, req.toPatch()); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}

// DeleteProfile handles DELETE /api/user/profile
func (h *Handlers) DeleteProfile(c *gin.Context) {
	caller, ok := h.identity(c)
	if !ok {
		return
	}

	if err := h.users.DeleteProfile(c.Request.Context(), caller.UserID); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User account deleted successfully"})
}

// ListUsers handles GET /api/user/all (admin).
func (h *Handlers) ListUsers(c *gin.Context) {
	caller, ok := h.identity(c)
	if !ok {
		return
	}

	users, err := h.users.ListUsers(c.Request.Context(), caller)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser handles GET /api/user/:id (admin).
func (h *Handlers) GetUser(c *gin.Context) {
	caller, ok := h.identity(c)
	if !ok {
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUser handles PUT /api/user/:id (admin).
func (h *Handlers) UpdateUser(c *gin.Context) {
	caller, ok := h.identity(c)
	if !ok {
		return
	}

	var req userPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.users.UpdateUser(c.Request.Context(), caller, c.Param("id"), req.toPatch()); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User updated successfully"})
}

// DeleteUser handles DELETE /api/user/:id (admin).
func (h *Handlers) DeleteUser(c *gin.Context) {
	caller, ok := h.identity(c)
	if !ok {
		return
	}

	if err := h.users.DeleteUser(c.Request.Context(), caller, c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
