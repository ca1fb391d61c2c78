package models

import (
	"time"

	"github.com/angelmondragon/stockroom-backend/pkg/enums"
)

// RequisitionItem is one requested line. Quantities satisfy
// 0 <= ReturnedQty <= FulfilledQty <= RequestedQty.
type RequisitionItem struct {
	ID              int64                       `gorm:"column:id;primaryKey;autoIncrement"`
	RequisitionID   int64                       `gorm:"column:requisition_id;not null;index"`
	MaterialID      *int64                      `gorm:"column:material_id;index"`
	Description     *string                     `gorm:"column:description"`
	RequestedQty    int                         `gorm:"column:requested_qty;not null"`
	FulfilledQty    int                         `gorm:"column:fulfilled_qty;not null;default:0"`
	ReturnedQty     int                         `gorm:"column:returned_qty;not null;default:0"`
	Status          enums.RequisitionItemStatus `gorm:"column:status;type:requisition_item_status;not null;default:'pending'"`
	ReturnState     enums.ReturnState           `gorm:"column:return_state;type:return_state;not null;default:'none'"`
	ReturnCondition *enums.ReturnCondition      `gorm:"column:return_condition;type:return_condition"`
	ReturnNotes     *string                     `gorm:"column:return_notes"`
	ReturnedAt      *time.Time                  `gorm:"column:returned_at"`
	CreatedAt       time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}

func (RequisitionItem) TableName() string { return "requisition_items" }

// Remaining is the quantity that can still be fulfilled.
func (i RequisitionItem) Remaining() int {
	return i.RequestedQty - i.FulfilledQty
}

// InUse is the quantity handed out and not yet returned.
func (i RequisitionItem) InUse() int {
	return i.FulfilledQty - i.ReturnedQty
}
