package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/sagarchy-05/ecommerce-backend/internal/apperr"
	"github.com/sagarchy-05/ecommerce-backend/internal/models"
)

type CategoryRepository struct{}

func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{}
}

func (r *CategoryRepository) Create(ctx context.Context, q DBTX, c *models.Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO categories (id, name, slug, description) VALUES ($1, $2, $3, $4)
	`, c.ID, c.Name, c.Slug, c.Description)
	return err
}

func (r *CategoryRepository) GetByID(ctx context.Context, q DBTX, id string) (*models.Category, error) {
	var c models.Category
	err := q.QueryRowContext(ctx,
		`SELECT id, name, slug, description FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Slug, &c.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepository) Update(ctx context.Context, q DBTX, c *models.Category) error {
	res, err := q.ExecContext(ctx, `
		UPDATE categories SET name = $2, slug = $3, description = $4 WHERE id = $1
	`, c.ID, c.Name, c.Slug, c.Description)
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

func (r *CategoryRepository) Delete(ctx context.Context, q DBTX, id string) error {
	res, err := q.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
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

func (r *CategoryRepository) List(ctx context.Context, q DBTX) ([]*models.Category, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, name, slug, description FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]*models.Category, 0)
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description); err != nil {
			return nil, err
		}
		categories = append(categories, &c)
	}
	return categories, rows.Err()
}
