// Package seed loads the reference rate card used by local environments and smoke tests.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/brandprices-backend/pkg/db"
	"github.com/angelmondragon/brandprices-backend/pkg/db/models"
	"github.com/angelmondragon/brandprices-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

// Writer is the subset of the brand and price stores the loader needs.
type Writer interface {
	CreateBrand(ctx context.Context, brand *models.Brand) error
	CreatePrice(ctx context.Context, price *models.Price) error
}

// Catalog is a set of brands and their prices.
type Catalog struct {
	Brands []models.Brand
	Prices []models.Price
}

// Result counts what Apply inserted and skipped.
type Result struct {
	BrandsCreated int
	PricesCreated int
	Skipped       int
}

func day(year int, month time.Month, d, hour, minute, second int) time.Time {
	return time.Date(year, month, d, hour, minute, second, 0, time.UTC)
}

// DefaultCatalog returns brand 1 with the four price lists for product 35455.
func DefaultCatalog() Catalog {
	const (
		brandID   int64 = 1
		productID int64 = 35455
	)
	price := func(id int64, start, end time.Time, priority int, amount string) models.Price {
		return models.Price{
			ID:        id,
			BrandID:   brandID,
			StartDate: start,
			EndDate:   end,
			PriceList: int(id),
			ProductID: productID,
			Priority:  priority,
			Amount:    decimal.RequireFromString(amount),
			Currency:  "EUR",
		}
	}

	return Catalog{
		Brands: []models.Brand{
			{ID: brandID, Name: "ZARA", Description: "Inditex fashion retail chain"},
		},
		Prices: []models.Price{
			price(1, day(2020, time.June, 14, 0, 0, 0), day(2020, time.December, 31, 23, 59, 59), 0, "35.50"),
			price(2, day(2020, time.June, 14, 15, 0, 0), day(2020, time.June, 14, 18, 30, 0), 1, "25.45"),
			price(3, day(2020, time.June, 15, 0, 0, 0), day(2020, time.June, 15, 11, 0, 0), 1, "30.50"),
			price(4, day(2020, time.June, 15, 16, 0, 0), day(2020, time.December, 31, 23, 59, 59), 1, "38.95"),
		},
	}
}

// Apply inserts the catalog. Records whose id already exists are skipped, so running it
// twice is harmless.
func Apply(ctx context.Context, w Writer, catalog Catalog, logg *logger.Logger) (Result, error) {
	var res Result
	for i := range catalog.Brands {
		brand := catalog.Brands[i]
		err := w.CreateBrand(ctx, &brand)
		switch {
		case err == nil:
			res.BrandsCreated++
		case errors.Is(err, db.ErrDuplicateKey):
			res.Skipped++
		default:
			return res, fmt.Errorf("seed brand %d: %w", brand.ID, err)
		}
	}
	for i := range catalog.Prices {
		price := catalog.Prices[i]
		err := w.CreatePrice(ctx, &price)
		switch {
		case err == nil:
			res.PricesCreated++
		case errors.Is(err, db.ErrDuplicateKey):
			res.Skipped++
		default:
			return res, fmt.Errorf("seed price %d: %w", price.ID, err)
		}
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"brands_created": res.BrandsCreated,
			"prices_created": res.PricesCreated,
			"skipped":        res.Skipped,
		}), "seed catalog applied")
	}
	return res, nil
}
