package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Price is one priced validity window for a product within a brand's rate card.
type Price struct {
	ID        int64           `gorm:"column:id;primaryKey;autoIncrement"`
	BrandID   int64           `gorm:"column:brand_id;not null;index:idx_prices_lookup,priority:2"`
	StartDate time.Time       `gorm:"column:start_date;not null;index:idx_prices_lookup,priority:3"`
	EndDate   time.Time       `gorm:"column:end_date;not null"`
	PriceList int             `gorm:"column:price_list;not null"`
	ProductID int64           `gorm:"column:product_id;not null;index:idx_prices_lookup,priority:1"`
	Priority  int             `gorm:"column:priority;not null;default:0"`
	Amount    decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Currency  string          `gorm:"column:curr;type:varchar(3);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Price) TableName() string {
	return "prices"
}

// Covers reports whether at falls inside the inclusive [StartDate, EndDate] window.
func (p Price) Covers(at time.Time) bool {
	return !at.Before(p.StartDate) && !at.After(p.EndDate)
}
