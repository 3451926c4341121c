package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/sagarchy-05/ecommerce-backend/internal/apperr"
	"github.com/sagarchy-05/ecommerce-backend/internal/models"
)

// AddressRepository scopes every lookup to the owning user, so a caller can
// never read or mutate another user's address book.
type AddressRepository struct{}

func NewAddressRepository() *AddressRepository {
	return &AddressRepository{}
}

func (r *AddressRepository) Create(ctx context.Context, q DBTX, a *models.Address) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO addresses (id, user_id, street, city, zip, country)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, a.ID, a.UserID, a.Street, a.City, a.Zip, a.Country)
	return err
}

func (r *AddressRepository) GetByID(ctx context.Context, q DBTX, id, userID string) (*models.Address, error) {
	var a models.Address
	err := q.QueryRowContext(ctx, `
		SELECT id, user_id, street, city, zip, country
		FROM addresses WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(&a.ID, &a.UserID, &a.Street, &a.City, &a.Zip, &a.Country)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AddressRepository) ListByUser(ctx context.Context, q DBTX, userID string) ([]*models.Address, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, user_id, street, city, zip, country
		FROM addresses WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	addresses := make([]*models.Address, 0)
	for rows.Next() {
		var a models.Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.Street, &a.City, &a.Zip, &a.Country); err != nil {
			return nil, err
		}
		addresses = append(addresses, &a)
	}
	return addresses, rows.Err()
}

func (r *AddressRepository) Update(ctx context.Context, q DBTX, a *models.Address) error {
	res, err := q.ExecContext(ctx, `
		UPDATE addresses SET street = $3, city = $4, zip = $5, country = $6
		WHERE id = $1 AND user_id = $2
	`, a.ID, a.UserID, a.Street, a.City, a.Zip, a.Country)
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

func (r *AddressRepository) Delete(ctx context.Context, q DBTX, id, userID string) error {
	res, err := q.ExecContext(ctx,
		`DELETE FROM addresses WHERE id = $1 AND user_id = $2`, id, userID)
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
