package prices

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/brandprices-backend/internal/memstore"
	"github.com/angelmondragon/brandprices-backend/pkg/db/models"
	"github.com/angelmondragon/brandprices-backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testProduct int64 = 35455
	testBrand   int64 = 1
)

func ts(value string) time.Time {
	t, err := time.Parse("2006-01-02T15:04:05", value)
	if err != nil {
		panic(err)
	}
	return t
}

type fakeMatcher struct {
	rows  []models.Price
	err   error
	calls int
}

func (f *fakeMatcher) FindMatching(ctx context.Context, at time.Time, productID, brandID int64) ([]models.Price, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

// tieredStore loads a base all-season tier plus an afternoon and an evening promotion.
func tieredStore(t *testing.T) *memstore.Store {
	t.Helper()
	ctx := context.Background()
	store := memstore.New()
	require.NoError(t, store.CreateBrand(ctx, &models.Brand{ID: testBrand, Name: "ZARA"}))

	tiers := []models.Price{
		{ID: 1, StartDate: ts("2020-06-14T00:00:00"), EndDate: ts("2020-12-31T23:59:59"), PriceList: 1, Priority: 0, Amount: decimal.RequireFromString("35.50")},
		{ID: 2, StartDate: ts("2020-06-14T15:00:00"), EndDate: ts("2020-06-14T18:30:00"), PriceList: 2, Priority: 1, Amount: decimal.RequireFromString("25.45")},
		{ID: 3, StartDate: ts("2020-06-14T20:00:00"), EndDate: ts("2020-06-14T22:00:00"), PriceList: 3, Priority: 1, Amount: decimal.RequireFromString("30.50")},
	}
	for i := range tiers {
		tiers[i].BrandID = testBrand
		tiers[i].ProductID = testProduct
		tiers[i].Currency = "EUR"
		require.NoError(t, store.CreatePrice(ctx, &tiers[i]))
	}
	return store
}

func TestResolveTieredScenarios(t *testing.T) {
	t.Parallel()
	resolver, err := NewResolver(tieredStore(t), nil)
	require.NoError(t, err)

	cases := []struct {
		name      string
		at        string
		product   int64
		wantOK    bool
		wantPrice string
		wantPrio  int
		wantList  int
	}{
		{name: "morning base tier", at: "2020-06-14T10:00:00", product: testProduct, wantOK: true, wantPrice: "35.50", wantPrio: 0, wantList: 1},
		{name: "afternoon promotion", at: "2020-06-14T16:00:00", product: testProduct, wantOK: true, wantPrice: "25.45", wantPrio: 1, wantList: 2},
		{name: "evening promotion", at: "2020-06-14T21:00:00", product: testProduct, wantOK: true, wantPrice: "30.50", wantPrio: 1, wantList: 3},
		{name: "next day falls back", at: "2020-06-15T10:00:00", product: testProduct, wantOK: true, wantPrice: "35.50", wantPrio: 0, wantList: 1},
		{name: "unknown product", at: "2020-06-14T10:00:00", product: 1, wantOK: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok, err := resolver.Resolve(context.Background(), ts(tc.at), tc.product, testBrand)
			require.NoError(t, err)
			require.Equal(t, tc.wantOK, ok)
			if !tc.wantOK {
				assert.Equal(t, models.Price{}, got)
				return
			}
			assert.Equal(t, tc.wantPrice, got.Amount.StringFixed(2))
			assert.Equal(t, tc.wantPrio, got.Priority)
			assert.Equal(t, tc.wantList, got.PriceList)
			assert.Equal(t, "EUR", got.Currency)
		})
	}
}

func TestResolveBoundariesAreInclusive(t *testing.T) {
	t.Parallel()
	resolver, err := NewResolver(tieredStore(t), nil)
	require.NoError(t, err)
	ctx := context.Background()

	for _, at := range []string{"2020-06-14T15:00:00", "2020-06-14T18:30:00"} {
		got, ok, err := resolver.Resolve(ctx, ts(at), testProduct, testBrand)
		require.NoError(t, err)
		require.True(t, ok, at)
		assert.Equal(t, 2, got.PriceList, at)
	}

	got, ok, err := resolver.Resolve(ctx, ts("2020-06-14T18:30:01"), testProduct, testBrand)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, got.PriceList)

	_, ok, err = resolver.Resolve(ctx, ts("2021-01-01T00:00:00"), testProduct, testBrand)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolveTieKeepsFirstInStoreOrder(t *testing.T) {
	t.Parallel()
	matcher := &fakeMatcher{rows: []models.Price{
		{ID: 9, Priority: 0},
		{ID: 4, Priority: 2},
		{ID: 1, Priority: 2},
		{ID: 3, Priority: 1},
	}}
	resolver, err := NewResolver(matcher, nil)
	require.NoError(t, err)

	got, ok, err := resolver.Resolve(context.Background(), time.Now(), 1, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(4), got.ID)
}

func TestResolveNoMatchIsStable(t *testing.T) {
	t.Parallel()
	matcher := &fakeMatcher{}
	resolver, err := NewResolver(matcher, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, ok, err := resolver.Resolve(context.Background(), time.Now(), 1, 1)
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.Equal(t, 3, matcher.calls)
}

func TestResolvePropagatesStoreErrors(t *testing.T) {
	t.Parallel()
	storeErr := errors.New("connection reset")
	resolver, err := NewResolver(&fakeMatcher{err: storeErr}, nil)
	require.NoError(t, err)

	_, ok, err := resolver.Resolve(context.Background(), time.Now(), 1, 1)
	require.Error(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, err, storeErr)
}

func TestResolveRecordsOutcomeMetrics(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	m := metrics.NewResolverMetrics(reg)
	resolver, err := NewResolver(tieredStore(t), m)
	require.NoError(t, err)
	ctx := context.Background()

	_, _, err = resolver.Resolve(ctx, ts("2020-06-14T16:00:00"), testProduct, testBrand)
	require.NoError(t, err)
	_, _, err = resolver.Resolve(ctx, ts("2019-01-01T00:00:00"), testProduct, testBrand)
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	byOutcome := map[string]float64{}
	for _, family := range families {
		if family.GetName() != "price_resolutions_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "outcome" {
					byOutcome[label.GetValue()] += metric.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, float64(1), byOutcome[metrics.OutcomeHit])
	assert.Equal(t, float64(1), byOutcome[metrics.OutcomeMiss])
}

func TestNewResolverRequiresStore(t *testing.T) {
	t.Parallel()
	if _, err := NewResolver(nil, nil); err == nil {
		t.Fatal("expected error for nil store")
	}
}
