package service

import (
	"context"
	"database/sql"

	"github.com/sagarchy-05/ecommerce-backend/internal/apperr"
	"github.com/sagarchy-05/ecommerce-backend/internal/models"
	"github.com/sagarchy-05/ecommerce-backend/internal/repository"
)

// AddressService is the per-user address book. Every operation is scoped to
// the owning user at the repository level.
type AddressService struct {
	db        *sql.DB
	addresses *repository.AddressRepository
}

func NewAddressService(db *sql.DB, addresses *repository.AddressRepository) *AddressService {
	return &AddressService{db: db, addresses: addresses}
}

func (s *AddressService) Create(ctx context.Context, userID string, a *models.Address) error {
	if a.Street == "" || a.City == "" || a.Country == "" {
		return apperr.NewValidationError("body", "street, city and country are required")
	}
	a.UserID = userID
	return s.addresses.Create(ctx, s.db, a)
}

func (s *AddressService) Get(ctx context.Context, userID, id string) (*models.Address, error) {
	return s.addresses.GetByID(ctx, s.db, id, userID)
}

func (s *AddressService) List(ctx context.Context, userID string) ([]*models.Address, error) {
	return s.addresses.ListByUser(ctx, s.db, userID)
}

func (s *AddressService) Update(ctx context.Context, userID, id string, patch models.Address) (*models.Address, error) {
	a, err := s.addresses.GetByID(ctx, s.db, id, userID)
	if err != nil {
		return nil, err
	}
	if patch.Street != "" {
		a.Street = patch.Street
	}
	if patch.City != "" {
		a.City = patch.City
	}
	if patch.Zip != "" {
		a.Zip = patch.Zip
	}
	if patch.Country != "" {
		a.Country = patch.Country
	}
	if err := s.addresses.Update(ctx, s.db, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AddressService) Delete(ctx context.Context, userID, id string) error {
	return s.addresses.Delete(ctx, s.db, id, userID)
}
