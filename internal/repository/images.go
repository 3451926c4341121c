package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sagarchy-05/ecommerce-backend/internal/apperr"
	"github.com/sagarchy-05/ecommerce-backend/internal/models"
)

type ProductImageRepository struct{}

func NewProductImageRepository() *ProductImageRepository {
	return &ProductImageRepository{}
}

func (r *ProductImageRepository) Create(ctx context.Context, q DBTX, img *models.ProductImage) error {
	if img.ID == "" {
		img.ID = uuid.NewString()
	}
	img.CreatedAt = time.Now()

	_, err := q.ExecContext(ctx, `
		INSERT INTO product_images (id, product_id, url, created_at)
		VALUES ($1, $2, $3, $4)
	`, img.ID, img.ProductID, img.URL, img.CreatedAt)
	return err
}

func (r *ProductImageRepository) ListByProduct(ctx context.Context, q DBTX, productID string) ([]models.ProductImage, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, product_id, url, created_at
		FROM product_images WHERE product_id = $1 ORDER BY created_at
	`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := make([]models.ProductImage, 0)
	for rows.Next() {
		var img models.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.URL, &img.CreatedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (r *ProductImageRepository) Delete(ctx context.Context, q DBTX, id string) error {
	res, err := q.ExecContext(ctx, `DELETE FROM product_images WHERE id = $1`, id)
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
