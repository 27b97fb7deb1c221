package brands

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/brandprices-backend/pkg/db"
	"github.com/angelmondragon/brandprices-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository is the GORM-backed brand Store.
type Repository struct {
	db *gorm.DB
}

var _ Store = (*Repository)(nil)

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{db: conn}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) ListBrands(ctx context.Context) ([]models.Brand, error) {
	var rows []models.Brand
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) GetBrand(ctx context.Context, id int64) (*models.Brand, error) {
	var brand models.Brand
	if err := r.db.WithContext(ctx).First(&brand, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("brand %d: %w", id, db.ErrNotFound)
		}
		return nil, err
	}
	return &brand, nil
}

func (r *Repository) CreateBrand(ctx context.Context, brand *models.Brand) error {
	return db.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		if brand.ID != 0 {
			var count int64
			if err := tx.Model(&models.Brand{}).Where("id = ?", brand.ID).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return fmt.Errorf("brand %d: %w", brand.ID, db.ErrDuplicateKey)
			}
		}
		if err := tx.Create(brand).Error; err != nil {
			if db.IsUniqueViolation(err, "") {
				return fmt.Errorf("brand %d: %w", brand.ID, db.ErrDuplicateKey)
			}
			return err
		}
		return nil
	})
}

func (r *Repository) UpdateBrand(ctx context.Context, brand *models.Brand) error {
	return db.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Brand{}).Where("id = ?", brand.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("brand %d: %w", brand.ID, db.ErrNotFound)
		}
		if err := tx.Model(&models.Brand{}).
			Where("id = ?", brand.ID).
			Select("name", "description", "updated_at").
			Updates(brand).Error; err != nil {
			return err
		}
		return tx.First(brand, "id = ?", brand.ID).Error
	})
}

// DeleteBrand removes the brand's prices and then the brand in one transaction.
func (r *Repository) DeleteBrand(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Where("brand_id = ?", id).Delete(&models.Price{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Brand{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("brand %d: %w", id, db.ErrNotFound)
		}
		return nil
	})
}

func (r *Repository) ListBrandPrices(ctx context.Context, brandID int64) ([]models.Price, error) {
	if _, err := r.GetBrand(ctx, brandID); err != nil {
		return nil, err
	}
	var rows []models.Price
	if err := r.db.WithContext(ctx).
		Where("brand_id = ?", brandID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
