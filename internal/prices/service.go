package prices

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/brandprices-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/brandprices-backend/pkg/errors"
)

// Service exposes price management and resolution.
type Service interface {
	ListPrices(ctx context.Context) ([]PriceDTO, error)
	GetPrice(ctx context.Context, id int64) (*PriceDTO, error)
	ResolvePrice(ctx context.Context, at time.Time, productID, brandID int64) (ResolvedPriceDTO, bool, error)
	CreatePrice(ctx context.Context, input PriceInput) (*PriceDTO, error)
	UpdatePrice(ctx context.Context, id int64, input PriceInput) (*PriceDTO, error)
	DeletePrice(ctx context.Context, id int64) error
}

type service struct {
	store    Store
	resolver *Resolver
}

// NewService constructs a price service instance.
func NewService(store Store, resolver *Resolver) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("price store required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("price resolver required")
	}
	return &service{store: store, resolver: resolver}, nil
}

func (s *service) ListPrices(ctx context.Context) ([]PriceDTO, error) {
	rows, err := s.store.ListPrices(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list prices")
	}
	return ToPriceDTOs(rows), nil
}

func (s *service) GetPrice(ctx context.Context, id int64) (*PriceDTO, error) {
	price, err := s.store.GetPrice(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, id, "db: get price")
	}
	dto := ToPriceDTO(*price)
	return &dto, nil
}

func (s *service) ResolvePrice(ctx context.Context, at time.Time, productID, brandID int64) (ResolvedPriceDTO, bool, error) {
	price, ok, err := s.resolver.Resolve(ctx, at, productID, brandID)
	if err != nil {
		return ResolvedPriceDTO{}, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: resolve price")
	}
	if !ok {
		return ResolvedPriceDTO{}, false, nil
	}
	return toResolvedPriceDTO(price), true, nil
}

// CreatePrice inserts a price for an existing brand. The store performs the brand and
// duplicate-id checks and the insert atomically.
func (s *service) CreatePrice(ctx context.Context, input PriceInput) (*PriceDTO, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if input.ID < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "priceId cannot be negative")
	}

	price := input.toModel()
	if err := s.store.CreatePrice(ctx, price); err != nil {
		return nil, mapStoreError(err, input.ID, "db: insert price")
	}
	dto := ToPriceDTO(*price)
	return &dto, nil
}

// UpdatePrice overwrites every mutable field of price id.
func (s *service) UpdatePrice(ctx context.Context, id int64, input PriceInput) (*PriceDTO, error) {
	if input.ID != 0 && input.ID != id {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "priceId does not match path").
			WithDetails(map[string]any{"path_id": id, "body_id": input.ID})
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	price := input.toModel()
	price.ID = id
	if err := s.store.UpdatePrice(ctx, price); err != nil {
		return nil, mapStoreError(err, id, "db: update price")
	}
	dto := ToPriceDTO(*price)
	return &dto, nil
}

func (s *service) DeletePrice(ctx context.Context, id int64) error {
	if err := s.store.DeletePrice(ctx, id); err != nil {
		return mapStoreError(err, id, "db: delete price")
	}
	return nil
}

// Amounts are stored as numeric(10,2).
const amountScale = 2

var maxAmount = decimal.New(1, 8)

// validateInput enforces field-level rules only. Overlapping windows across records are
// accepted as-is.
func validateInput(input PriceInput) error {
	details := map[string]string{}
	if input.BrandID <= 0 {
		details["brandId"] = "must be positive"
	}
	if input.ProductID <= 0 {
		details["productId"] = "must be positive"
	}
	if input.StartDate.IsZero() {
		details["startDate"] = "is required"
	}
	if input.EndDate.IsZero() {
		details["endDate"] = "is required"
	}
	if !input.StartDate.IsZero() && !input.EndDate.IsZero() && input.EndDate.Before(input.StartDate) {
		details["endDate"] = "must not be before startDate"
	}
	switch {
	case input.Amount.IsNegative():
		details["price"] = "must be non-negative"
	case !input.Amount.Equal(input.Amount.Round(amountScale)):
		details["price"] = "must have at most 2 decimal places"
	case input.Amount.GreaterThanOrEqual(maxAmount):
		details["price"] = "must be less than 100000000"
	}
	if len(strings.TrimSpace(input.Currency)) != 3 {
		details["curr"] = "must be a 3-letter ISO code"
	}
	if len(details) > 0 {
		return pkgerrors.Validation("validation failed", details)
	}
	return nil
}

func mapStoreError(err error, id int64, step string) error {
	switch {
	case errors.Is(err, db.ErrMissingReference):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "brand not found")
	case db.IsNotFound(err):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, fmt.Sprintf("price not found with id %d", id))
	case errors.Is(err, db.ErrDuplicateKey):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, fmt.Sprintf("price already exists with id %d", id))
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, step)
	}
}
