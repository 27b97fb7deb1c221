package backend

import (
	"context"
	"fmt"

	"github.com/angelmondragon/brandprices-backend/internal/brands"
	"github.com/angelmondragon/brandprices-backend/internal/memstore"
	"github.com/angelmondragon/brandprices-backend/internal/prices"
	"github.com/angelmondragon/brandprices-backend/internal/seed"
	"github.com/angelmondragon/brandprices-backend/pkg/config"
	"github.com/angelmondragon/brandprices-backend/pkg/db"
	"github.com/angelmondragon/brandprices-backend/pkg/db/models"
	"github.com/angelmondragon/brandprices-backend/pkg/logger"
	"github.com/angelmondragon/brandprices-backend/pkg/migrate"
)

// Backend bundles the stores for the configured driver.
type Backend struct {
	Driver  string
	Prices  prices.Store
	Brands  brands.Store
	Catalog seed.Writer
	Pinger  db.Pinger

	close func() error
}

// catalogWriter routes seed writes to the brand and price repositories.
type catalogWriter struct {
	brands *brands.Repository
	prices *prices.Repository
}

func (w catalogWriter) CreateBrand(ctx context.Context, brand *models.Brand) error {
	return w.brands.CreateBrand(ctx, brand)
}

func (w catalogWriter) CreatePrice(ctx context.Context, price *models.Price) error {
	return w.prices.CreatePrice(ctx, price)
}

// Open connects to the configured store. Dev SQL databases are migrated when the
// auto-migrate flag is on.
func Open(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*Backend, error) {
	if cfg.DB.IsMemory() {
		store := memstore.New()
		logg.Info(logg.WithField(ctx, "driver", config.DriverMemory), "using in-memory store")
		return &Backend{
			Driver:  config.DriverMemory,
			Prices:  store,
			Brands:  store,
			Catalog: store,
			Pinger:  store,
			close:   func() error { return nil },
		}, nil
	}

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap database: %w", err)
	}
	if err := migrate.MaybeRunDev(ctx, cfg, logg, client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("dev migrations: %w", err)
	}

	priceRepo := prices.NewRepository(client.DB())
	brandRepo := brands.NewRepository(client.DB())
	return &Backend{
		Driver:  client.Driver(),
		Prices:  priceRepo,
		Brands:  brandRepo,
		Catalog: catalogWriter{brands: brandRepo, prices: priceRepo},
		Pinger:  client,
		close:   client.Close,
	}, nil
}

// Seed loads the default catalog.
func (b *Backend) Seed(ctx context.Context, logg *logger.Logger) (seed.Result, error) {
	return seed.Apply(ctx, b.Catalog, seed.DefaultCatalog(), logg)
}

func (b *Backend) Close() error {
	if b == nil || b.close == nil {
		return nil
	}
	return b.close()
}
