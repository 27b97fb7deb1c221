package models

import "time"

// Brand is a retail chain owning a rate card. Its prices are looked up by BrandID;
// the model carries no back-reference.
type Brand struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description;not null;default:''"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Brand) TableName() string {
	return "brands"
}

// All lists the models managed by this service, in dependency order.
func All() []any {
	return []any{&Brand{}, &Price{}}
}
