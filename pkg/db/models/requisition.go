package models

import (
	"time"

	"github.com/angelmondragon/stockroom-backend/pkg/enums"
)

// Requisition is the header of a material request. Code is assigned from the
// id inside the creating transaction.
type Requisition struct {
	ID               int64                   `gorm:"column:id;primaryKey;autoIncrement"`
	Code             string                  `gorm:"column:code;uniqueIndex"`
	RequesterID      int64                   `gorm:"column:requester_id;not null;index"`
	Status           enums.RequisitionStatus `gorm:"column:status;type:requisition_status;not null;default:'pending'"`
	RequestedAt      time.Time               `gorm:"column:requested_at;not null"`
	NeededBy         *time.Time              `gorm:"column:needed_by"`
	DeliveryLocation *string                 `gorm:"column:delivery_location"`
	Justification    *string                 `gorm:"column:justification"`
	Notes            *string                 `gorm:"column:notes"`
	DecidedBy        *int64                  `gorm:"column:decided_by"`
	DecidedAt        *time.Time              `gorm:"column:decided_at"`
	CreatedAt        time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time               `gorm:"column:updated_at;autoUpdateTime"`

	Items     []RequisitionItem     `gorm:"foreignKey:RequisitionID;constraint:OnDelete:CASCADE"`
	Decisions []RequisitionDecision `gorm:"foreignKey:RequisitionID;constraint:OnDelete:CASCADE"`
}

func (Requisition) TableName() string { return "requisitions" }
