package models

import (
	"time"

	"github.com/angelmondragon/stockroom-backend/pkg/enums"
)

// RequisitionDecision is an append-only approval verdict.
type RequisitionDecision struct {
	ID            int64                         `gorm:"column:id;primaryKey;autoIncrement"`
	RequisitionID int64                         `gorm:"column:requisition_id;not null;index"`
	ActorID       int64                         `gorm:"column:actor_id;not null"`
	Kind          enums.RequisitionDecisionKind `gorm:"column:kind;type:requisition_decision_kind;not null"`
	Reason        *string                       `gorm:"column:reason"`
	DecidedAt     time.Time                     `gorm:"column:decided_at;not null"`
}

func (RequisitionDecision) TableName() string { return "requisition_decisions" }
