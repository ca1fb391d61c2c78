package models

import "time"

// MaterialType links materials to an optional category.
type MaterialType struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name       string    `gorm:"column:name;not null"`
	CategoryID *int64    `gorm:"column:category_id;index"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (MaterialType) TableName() string { return "material_types" }
