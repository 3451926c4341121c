package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/sagarchy-05/ecommerce-backend/internal/apperr"
	"github.com/sagarchy-05/ecommerce-backend/internal/clients"
	"github.com/sagarchy-05/ecommerce-backend/internal/models"
	"github.com/sagarchy-05/ecommerce-backend/internal/repository"
)

// ImageService uploads product images to object storage and tracks their
// public URLs.
type ImageService struct {
	db       *sql.DB
	images   *repository.ProductImageRepository
	products *repository.ProductRepository
	storage  clients.ObjectStorage
	logger   *slog.Logger
}

func NewImageService(
	db *sql.DB,
	images *repository.ProductImageRepository,
	products *repository.ProductRepository,
	storage clients.ObjectStorage,
	logger *slog.Logger,
) *ImageService {
	return &ImageService{
		db:       db,
		images:   images,
		products: products,
		storage:  storage,
		logger:   logger,
	}
}

// Upload stores the file and records its URL against the product.
func (s *ImageService) Upload(ctx context.Context, productID, filename, contentType string, data []byte) (*models.ProductImage, error) {
	if len(data) == 0 {
		return nil, apperr.NewValidationError("image", "no file uploaded")
	}
	if _, err := s.products.GetByID(ctx, s.db, productID); err != nil {
		return nil, err
	}

	url, err := s.storage.Put(ctx, clients.ObjectKey("products", filename), contentType, data)
	if err != nil {
		return nil, err
	}

	img := &models.ProductImage{
		ProductID: productID,
		URL:       url,
	}
	if err := s.images.Create(ctx, s.db, img); err != nil {
		return nil, err
	}

	s.logger.Info("product image uploaded", "product_id", productID, "image_id", img.ID)
	return img, nil
}

func (s *ImageService) ListByProduct(ctx context.Context, productID string) ([]models.ProductImage, error) {
	return s.images.ListByProduct(ctx, s.db, productID)
}

func (s *ImageService) Delete(ctx context.Context, id string) error {
	return s.images.Delete(ctx, s.db, id)
}
