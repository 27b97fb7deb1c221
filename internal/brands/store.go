package brands

import (
	"context"

	"github.com/angelmondragon/brandprices-backend/pkg/db/models"
)

// Store persists brands. ListBrandPrices is derived from prices.brand_id.
type Store interface {
	ListBrands(ctx context.Context) ([]models.Brand, error)
	GetBrand(ctx context.Context, id int64) (*models.Brand, error)
	CreateBrand(ctx context.Context, brand *models.Brand) error
	UpdateBrand(ctx context.Context, brand *models.Brand) error
	DeleteBrand(ctx context.Context, id int64) error
	ListBrandPrices(ctx context.Context, brandID int64) ([]models.Price, error)
}
