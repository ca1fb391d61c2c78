package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material is a stocked catalog entry. Stock never goes negative.
type Material struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string          `gorm:"column:name;not null"`
	Description *string         `gorm:"column:description"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null;default:0"`
	Stock       int             `gorm:"column:stock;not null;default:0"`
	MinStock    int             `gorm:"column:min_stock;not null;default:3"`
	TypeID      int64           `gorm:"column:type_id;not null;index"`
	Location    *string         `gorm:"column:location"`
	Sellable    bool            `gorm:"column:sellable;not null;default:false"`
	Consumable  bool            `gorm:"column:consumable;not null;default:false"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Material) TableName() string { return "materials" }
