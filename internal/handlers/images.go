package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// UploadImage handles POST /api/product-images/upload (admin, multipart).
func (h *Handlers) UploadImage(c *gin.Context) {
	productID := c.PostForm("productId")
	if productID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productId is required"})
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.handleError(c, err)
		return
	}

	img, err := h.images.Upload(c.Request.Context(), productID,
		header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Image uploaded successfully",
		"url":     img.URL,
	})
}

// ListImages handles GET /api/product-images/:productId (public).
func (h *Handlers) ListImages(c *gin.Context) {
	images, err := h.images.ListByProduct(c.Request.Context(), c.Param("productId"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, images)
}

// DeleteImage handles DELETE /api/product-images/:id (admin).
func (h *Handlers) DeleteImage(c *gin.Context) {
	if err := h.images.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Image deleted successfully"})
}
