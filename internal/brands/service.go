package brands

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/brandprices-backend/internal/prices"
	"github.com/angelmondragon/brandprices-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/brandprices-backend/pkg/errors"
)

// Service exposes brand management.
type Service interface {
	ListBrands(ctx context.Context) ([]BrandDTO, error)
	GetBrand(ctx context.Context, id int64) (*BrandDTO, error)
	CreateBrand(ctx context.Context, input BrandInput) (*BrandDTO, error)
	UpdateBrand(ctx context.Context, id int64, input BrandInput) (*BrandDTO, error)
	DeleteBrand(ctx context.Context, id int64) error
	ListBrandPrices(ctx context.Context, id int64) ([]prices.PriceDTO, error)
}

type service struct {
	store Store
}

// NewService constructs a brand service instance.
func NewService(store Store) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("brand store required")
	}
	return &service{store: store}, nil
}

func (s *service) ListBrands(ctx context.Context) ([]BrandDTO, error) {
	rows, err := s.store.ListBrands(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list brands")
	}
	return toBrandDTOs(rows), nil
}

func (s *service) GetBrand(ctx context.Context, id int64) (*BrandDTO, error) {
	brand, err := s.store.GetBrand(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, id, "db: get brand")
	}
	dto := ToBrandDTO(*brand)
	return &dto, nil
}

func (s *service) CreateBrand(ctx context.Context, input BrandInput) (*BrandDTO, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	brand := input.toModel()
	if err := s.store.CreateBrand(ctx, brand); err != nil {
		return nil, mapStoreError(err, input.ID, "db: insert brand")
	}
	dto := ToBrandDTO(*brand)
	return &dto, nil
}

func (s *service) UpdateBrand(ctx context.Context, id int64, input BrandInput) (*BrandDTO, error) {
	if input.ID != 0 && input.ID != id {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "id does not match path").
			WithDetails(map[string]any{"path_id": id, "body_id": input.ID})
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	brand := input.toModel()
	brand.ID = id
	if err := s.store.UpdateBrand(ctx, brand); err != nil {
		return nil, mapStoreError(err, id, "db: update brand")
	}
	dto := ToBrandDTO(*brand)
	return &dto, nil
}

// DeleteBrand removes the brand together with its prices.
func (s *service) DeleteBrand(ctx context.Context, id int64) error {
	if err := s.store.DeleteBrand(ctx, id); err != nil {
		return mapStoreError(err, id, "db: delete brand")
	}
	return nil
}

func (s *service) ListBrandPrices(ctx context.Context, id int64) ([]prices.PriceDTO, error) {
	rows, err := s.store.ListBrandPrices(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, id, "db: list brand prices")
	}
	return prices.ToPriceDTOs(rows), nil
}

func validateInput(input BrandInput) error {
	if input.ID < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "id cannot be negative")
	}
	if input.toModel().Name == "" {
		return pkgerrors.Validation("validation failed", map[string]string{"name": "is required"})
	}
	return nil
}

func mapStoreError(err error, id int64, step string) error {
	switch {
	case db.IsNotFound(err):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, fmt.Sprintf("brand not found with id %d", id))
	case errors.Is(err, db.ErrDuplicateKey):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, fmt.Sprintf("brand already exists with id %d", id))
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, step)
	}
}
