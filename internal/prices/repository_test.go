package prices

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/angelmondragon/brandprices-backend/pkg/db"
	"github.com/angelmondragon/brandprices-backend/pkg/db/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepository(t *testing.T) (*Repository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, conn.AutoMigrate(models.All()...))
	require.NoError(t, conn.Create(&models.Brand{ID: testBrand, Name: "ZARA"}).Error)
	return NewRepository(conn), conn
}

func newPrice(id int64, start, end string, priority int, amount string) *models.Price {
	return &models.Price{
		ID:        id,
		BrandID:   testBrand,
		ProductID: testProduct,
		StartDate: ts(start),
		EndDate:   ts(end),
		PriceList: int(id),
		Priority:  priority,
		Amount:    decimal.RequireFromString(amount),
		Currency:  "EUR",
	}
}

func TestRepositoryFindMatching(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.CreatePrice(ctx, newPrice(2, "2020-06-14T15:00:00", "2020-06-14T18:30:00", 1, "25.45")))
	require.NoError(t, repo.CreatePrice(ctx, newPrice(1, "2020-06-14T00:00:00", "2020-12-31T23:59:59", 0, "35.50")))

	rows, err := repo.FindMatching(ctx, ts("2020-06-14T16:00:00"), testProduct, testBrand)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0].ID)
	assert.Equal(t, int64(2), rows[1].ID)
	assert.Equal(t, "25.45", rows[1].Amount.StringFixed(2))

	rows, err = repo.FindMatching(ctx, ts("2020-06-14T18:30:00"), testProduct, testBrand)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = repo.FindMatching(ctx, ts("2020-06-14T18:30:01"), testProduct, testBrand)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	rows, err = repo.FindMatching(ctx, ts("2020-06-14T16:00:00"), testProduct, 99)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRepositoryCreateRejectsDuplicateAndMissingBrand(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.CreatePrice(ctx, newPrice(1, "2020-06-14T00:00:00", "2020-12-31T23:59:59", 0, "35.50")))

	err := repo.CreatePrice(ctx, newPrice(1, "2021-01-01T00:00:00", "2021-01-31T23:59:59", 3, "1.00"))
	require.ErrorIs(t, err, db.ErrDuplicateKey)

	orphan := newPrice(5, "2020-06-14T00:00:00", "2020-12-31T23:59:59", 0, "35.50")
	orphan.BrandID = 404
	require.ErrorIs(t, repo.CreatePrice(ctx, orphan), db.ErrMissingReference)

	rows, err := repo.ListPrices(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 0, rows[0].Priority)
	assert.Equal(t, "35.50", rows[0].Amount.StringFixed(2))
}

func TestRepositoryCreateAssignsID(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	price := newPrice(0, "2020-06-14T00:00:00", "2020-12-31T23:59:59", 0, "35.50")
	require.NoError(t, repo.CreatePrice(ctx, price))
	assert.NotZero(t, price.ID)

	got, err := repo.GetPrice(ctx, price.ID)
	require.NoError(t, err)
	assert.Equal(t, price.StartDate, got.StartDate.UTC())
	assert.Equal(t, price.EndDate, got.EndDate.UTC())
	assert.Equal(t, "EUR", got.Currency)
}

func TestRepositoryUpdateAndDelete(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	price := newPrice(1, "2020-06-14T00:00:00", "2020-12-31T23:59:59", 0, "35.50")
	require.NoError(t, repo.CreatePrice(ctx, price))

	changed := newPrice(1, "2020-06-15T00:00:00", "2020-06-15T11:00:00", 1, "30.50")
	require.NoError(t, repo.UpdatePrice(ctx, changed))

	got, err := repo.GetPrice(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Priority)
	assert.Equal(t, "30.50", got.Amount.StringFixed(2))
	assert.Equal(t, ts("2020-06-15T11:00:00"), got.EndDate.UTC())

	require.ErrorIs(t, repo.UpdatePrice(ctx, newPrice(9, "2020-06-15T00:00:00", "2020-06-15T11:00:00", 1, "30.50")), db.ErrNotFound)

	orphan := newPrice(1, "2020-06-15T00:00:00", "2020-06-15T11:00:00", 1, "30.50")
	orphan.BrandID = 404
	require.ErrorIs(t, repo.UpdatePrice(ctx, orphan), db.ErrMissingReference)

	require.NoError(t, repo.DeletePrice(ctx, 1))
	require.ErrorIs(t, repo.DeletePrice(ctx, 1), db.ErrNotFound)
	_, err = repo.GetPrice(ctx, 1)
	require.ErrorIs(t, err, db.ErrNotFound)
}

func TestRepositoryCreateThenGetRoundTrips(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	for i, amount := range []string{"25.45", "0.10", "99999999.99"} {
		saved := newPrice(int64(10+i), "2020-06-14T15:00:00", "2020-06-14T18:30:00", -1+i, amount)
		want := *saved
		require.NoError(t, repo.CreatePrice(ctx, saved))

		got, err := repo.GetPrice(ctx, want.ID)
		require.NoError(t, err)
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.BrandID, got.BrandID)
		assert.Equal(t, want.ProductID, got.ProductID)
		assert.True(t, want.StartDate.Equal(got.StartDate), "start %s", got.StartDate)
		assert.True(t, want.EndDate.Equal(got.EndDate), "end %s", got.EndDate)
		assert.Equal(t, want.PriceList, got.PriceList)
		assert.Equal(t, want.Priority, got.Priority)
		assert.True(t, want.Amount.Equal(got.Amount), "amount %s want %s", got.Amount, want.Amount)
		assert.Equal(t, want.Currency, got.Currency)
	}
}
