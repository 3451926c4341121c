package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/sagarchy-05/ecommerce-backend/internal/apperr"
	"github.com/sagarchy-05/ecommerce-backend/internal/models"
	"github.com/sagarchy-05/ecommerce-backend/internal/repository"
)

// CatalogService covers category and product CRUD. Reads may be served from
// the catalog cache; every admin write invalidates it. The order engine
// bypasses this service entirely.
type CatalogService struct {
	db         *sql.DB
	products   *repository.ProductRepository
	categories *repository.CategoryRepository
	images     *repository.ProductImageRepository
	cache      repository.CatalogCache
	logger     *slog.Logger
}

func NewCatalogService(
	db *sql.DB,
	products *repository.ProductRepository,
	categories *repository.CategoryRepository,
	images *repository.ProductImageRepository,
	cache repository.CatalogCache,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		db:         db,
		products:   products,
		categories: categories,
		images:     images,
		cache:      cache,
		logger:     logger,
	}
}

// --- categories ---

func (s *CatalogService) CreateCategory(ctx context.Context, c *models.Category) error {
	if c.Name == "" {
		return apperr.NewValidationError("name", "category name is required")
	}
	if c.Slug == "" {
		return apperr.NewValidationError("slug", "category slug is required")
	}
	return s.categories.Create(ctx, s.db, c)
}

func (s *CatalogService) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	return s.categories.GetByID(ctx, s.db, id)
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return s.categories.List(ctx, s.db)
}

// UpdateCategory overwrites only the fields present in patch, keeping the
// original's partial-update behavior.
func (s *CatalogService) UpdateCategory(ctx context.Context, id string, patch models.Category) (*models.Category, error) {
	c, err := s.categories.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != "" {
		c.Name = patch.Name
	}
	if patch.Slug != "" {
		c.Slug = patch.Slug
	}
	if patch.Description != "" {
		c.Description = patch.Description
	}
	if err := s.categories.Update(ctx, s.db, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	return s.categories.Delete(ctx, s.db, id)
}

// --- products ---

func (s *CatalogService) CreateProduct(ctx context.Context, p *models.Product) error {
	if p.Name == "" {
		return apperr.NewValidationError("name", "product name is required")
	}
	if p.Price.IsNegative() {
		return apperr.NewValidationError("price", "price cannot be negative")
	}
	if p.Stock < 0 {
		return apperr.NewValidationError("stock", "stock cannot be negative")
	}
	if _, err := s.categories.GetByID(ctx, s.db, p.CategoryID); err != nil {
		return apperr.NewValidationError("categoryId", "unknown category")
	}

	if err := s.products.Create(ctx, s.db, p); err != nil {
		return err
	}
	s.invalidate(ctx, p.ID)
	return nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	if cached, err := s.cache.GetProduct(ctx, id); err == nil && cached != nil {
		return cached, nil
	}

	p, err := s.products.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	images, err := s.images.ListByProduct(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	p.Images = images

	if err := s.cache.SetProduct(ctx, p); err != nil {
		s.logger.Warn("failed to cache product", "product_id", id, "error", err)
	}
	return p, nil
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]*models.Product, error) {
	if cached, err := s.cache.GetProductList(ctx); err == nil && cached != nil {
		return cached, nil
	}

	products, err := s.products.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetProductList(ctx, products); err != nil {
		s.logger.Warn("failed to cache product list", "error", err)
	}
	return products, nil
}

func (s *CatalogService) ListProductsByCategory(ctx context.Context, categoryID string) ([]*models.Product, error) {
	return s.products.ListByCategory(ctx, s.db, categoryID)
}

func (s *CatalogService) SearchProducts(ctx context.Context, query string) ([]*models.Product, error) {
	if query == "" {
		return nil, apperr.NewValidationError("query", "search query is required")
	}
	return s.products.Search(ctx, s.db, query)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, p *models.Product) error {
	if p.Price.IsNegative() {
		return apperr.NewValidationError("price", "price cannot be negative")
	}
	if p.Stock < 0 {
		return apperr.NewValidationError("stock", "stock cannot be negative")
	}
	if err := s.products.Update(ctx, s.db, p); err != nil {
		return err
	}
	s.invalidate(ctx, p.ID)
	return nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, s.db, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// InvalidateProduct drops cached entries after an out-of-band stock change.
func (s *CatalogService) InvalidateProduct(ctx context.Context, id string) {
	s.invalidate(ctx, id)
}

func (s *CatalogService) invalidate(ctx context.Context, productID string) {
	if err := s.cache.Invalidate(ctx, productID); err != nil {
		s.logger.Warn("failed to invalidate catalog cache",
			"product_id", productID, "error", err)
	}
}
