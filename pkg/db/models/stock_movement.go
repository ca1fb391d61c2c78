package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/pkg/enums"
)

// StockMovement is an immutable ledger entry. Material and type names are
// snapshots taken when the movement was recorded.
type StockMovement struct {
	ID            uuid.UUID                    `gorm:"column:id;type:uuid;primaryKey"`
	MaterialID    int64                        `gorm:"column:material_id;not null;index"`
	MaterialName  string                       `gorm:"column:material_name;not null"`
	TypeName      string                       `gorm:"column:type_name;not null"`
	Direction     enums.StockMovementDirection `gorm:"column:direction;type:stock_movement_direction;not null"`
	Quantity      int                          `gorm:"column:quantity;not null"`
	UnitPrice     decimal.Decimal              `gorm:"column:unit_price;type:numeric(10,2);not null"`
	Reason        string                       `gorm:"column:reason;not null"`
	RequisitionID *int64                       `gorm:"column:requisition_id;index"`
	ActorID       *int64                       `gorm:"column:actor_id"`
	CreatedAt     time.Time                    `gorm:"column:created_at;autoCreateTime"`
}

func (StockMovement) TableName() string { return "stock_movements" }

func (m *StockMovement) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
