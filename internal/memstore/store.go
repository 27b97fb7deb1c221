// Package memstore keeps brands and prices in process memory. It satisfies both
// prices.Store and brands.Store and is safe for concurrent use.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/angelmondragon/brandprices-backend/pkg/db"
	"github.com/angelmondragon/brandprices-backend/pkg/db/models"
)

// Store holds brands and prices in maps guarded by one RWMutex. Reads return copies
// sorted by ascending id.
type Store struct {
	mu          sync.RWMutex
	brands      map[int64]models.Brand
	prices      map[int64]models.Price
	nextBrandID int64
	nextPriceID int64
	now         func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		brands: map[int64]models.Brand{},
		prices: map[int64]models.Price{},
		now:    time.Now,
	}
}

// FindMatching returns prices covering at for the product and brand, ascending by id.
func (s *Store) FindMatching(ctx context.Context, at time.Time, productID, brandID int64) ([]models.Price, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Price, 0)
	for _, price := range s.prices {
		if price.ProductID == productID && price.BrandID == brandID && price.Covers(at) {
			out = append(out, price)
		}
	}
	sortPrices(out)
	return out, nil
}

func (s *Store) ListPrices(ctx context.Context) ([]models.Price, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Price, 0, len(s.prices))
	for _, price := range s.prices {
		out = append(out, price)
	}
	sortPrices(out)
	return out, nil
}

func (s *Store) GetPrice(ctx context.Context, id int64) (*models.Price, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	price, ok := s.prices[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &price, nil
}

// CreatePrice checks the brand and the id and inserts under a single write lock.
func (s *Store) CreatePrice(ctx context.Context, price *models.Price) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.brands[price.BrandID]; !ok {
		return db.ErrMissingReference
	}
	if price.ID > 0 {
		if _, exists := s.prices[price.ID]; exists {
			return db.ErrDuplicateKey
		}
	} else {
		price.ID = s.allocPriceID()
	}
	if price.ID > s.nextPriceID {
		s.nextPriceID = price.ID
	}

	now := s.now().UTC()
	price.CreatedAt = now
	price.UpdatedAt = now
	s.prices[price.ID] = *price
	return nil
}

func (s *Store) UpdatePrice(ctx context.Context, price *models.Price) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.prices[price.ID]
	if !ok {
		return db.ErrNotFound
	}
	if _, ok := s.brands[price.BrandID]; !ok {
		return db.ErrMissingReference
	}

	price.CreatedAt = existing.CreatedAt
	price.UpdatedAt = s.now().UTC()
	s.prices[price.ID] = *price
	return nil
}

func (s *Store) DeletePrice(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.prices[id]; !ok {
		return db.ErrNotFound
	}
	delete(s.prices, id)
	return nil
}

func (s *Store) ListBrands(ctx context.Context) ([]models.Brand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Brand, 0, len(s.brands))
	for _, brand := range s.brands {
		out = append(out, brand)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetBrand(ctx context.Context, id int64) (*models.Brand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	brand, ok := s.brands[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &brand, nil
}

func (s *Store) CreateBrand(ctx context.Context, brand *models.Brand) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if brand.ID > 0 {
		if _, exists := s.brands[brand.ID]; exists {
			return db.ErrDuplicateKey
		}
	} else {
		brand.ID = s.allocBrandID()
	}
	if brand.ID > s.nextBrandID {
		s.nextBrandID = brand.ID
	}

	now := s.now().UTC()
	brand.CreatedAt = now
	brand.UpdatedAt = now
	s.brands[brand.ID] = *brand
	return nil
}

func (s *Store) UpdateBrand(ctx context.Context, brand *models.Brand) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.brands[brand.ID]
	if !ok {
		return db.ErrNotFound
	}
	brand.CreatedAt = existing.CreatedAt
	brand.UpdatedAt = s.now().UTC()
	s.brands[brand.ID] = *brand
	return nil
}

// DeleteBrand removes the brand and every price that references it.
func (s *Store) DeleteBrand(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.brands[id]; !ok {
		return db.ErrNotFound
	}
	for priceID, price := range s.prices {
		if price.BrandID == id {
			delete(s.prices, priceID)
		}
	}
	delete(s.brands, id)
	return nil
}

func (s *Store) ListBrandPrices(ctx context.Context, brandID int64) ([]models.Price, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.brands[brandID]; !ok {
		return nil, db.ErrNotFound
	}
	out := make([]models.Price, 0)
	for _, price := range s.prices {
		if price.BrandID == brandID {
			out = append(out, price)
		}
	}
	sortPrices(out)
	return out, nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error {
	return nil
}

func (s *Store) allocPriceID() int64 {
	for {
		s.nextPriceID++
		if _, taken := s.prices[s.nextPriceID]; !taken {
			return s.nextPriceID
		}
	}
}

func (s *Store) allocBrandID() int64 {
	for {
		s.nextBrandID++
		if _, taken := s.brands[s.nextBrandID]; !taken {
			return s.nextBrandID
		}
	}
}

func sortPrices(rows []models.Price) {
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
}
