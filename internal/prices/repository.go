package prices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/brandprices-backend/pkg/db"
	"github.com/angelmondragon/brandprices-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository is the GORM-backed Store.
type Repository struct {
	db *gorm.DB
}

var _ Store = (*Repository)(nil)

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{db: conn}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindMatching loads the candidate prices for a resolution request.
func (r *Repository) FindMatching(ctx context.Context, at time.Time, productID, brandID int64) ([]models.Price, error) {
	var rows []models.Price
	at = at.UTC()
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND brand_id = ?", productID, brandID).
		Where("start_date <= ? AND end_date >= ?", at, at).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListPrices returns every stored price ordered by id.
func (r *Repository) ListPrices(ctx context.Context) ([]models.Price, error) {
	var rows []models.Price
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetPrice loads a single price.
func (r *Repository) GetPrice(ctx context.Context, id int64) (*models.Price, error) {
	var price models.Price
	if err := r.db.WithContext(ctx).First(&price, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, db.ErrNotFound
		}
		return nil, err
	}
	return &price, nil
}

// CreatePrice checks the brand and the id and inserts the row in one transaction.
func (r *Repository) CreatePrice(ctx context.Context, price *models.Price) error {
	return db.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := ensureBrand(tx, price.BrandID); err != nil {
			return err
		}
		if price.ID != 0 {
			var count int64
			if err := tx.Model(&models.Price{}).Where("id = ?", price.ID).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return fmt.Errorf("price %d: %w", price.ID, db.ErrDuplicateKey)
			}
		}
		if err := tx.Create(price).Error; err != nil {
			if db.IsUniqueViolation(err, "") {
				return fmt.Errorf("price %d: %w", price.ID, db.ErrDuplicateKey)
			}
			return err
		}
		return nil
	})
}

// UpdatePrice overwrites every mutable column of an existing price.
func (r *Repository) UpdatePrice(ctx context.Context, price *models.Price) error {
	return db.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Price{}).Where("id = ?", price.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("price %d: %w", price.ID, db.ErrNotFound)
		}
		if err := ensureBrand(tx, price.BrandID); err != nil {
			return err
		}
		if err := tx.Model(&models.Price{}).
			Where("id = ?", price.ID).
			Select("brand_id", "start_date", "end_date", "price_list", "product_id", "priority", "price", "curr", "updated_at").
			Updates(price).Error; err != nil {
			return err
		}
		return tx.First(price, "id = ?", price.ID).Error
	})
}

// DeletePrice removes a price by id.
func (r *Repository) DeletePrice(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&models.Price{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("price %d: %w", id, db.ErrNotFound)
	}
	return nil
}

func ensureBrand(tx *gorm.DB, brandID int64) error {
	var count int64
	if err := tx.Model(&models.Brand{}).Where("id = ?", brandID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("brand %d: %w", brandID, db.ErrMissingReference)
	}
	return nil
}
