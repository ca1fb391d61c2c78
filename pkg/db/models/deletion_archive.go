package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/pkg/enums"
)

// DeletionArchive keeps a snapshot of a row removed from a domain table.
type DeletionArchive struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	SourceTable string              `gorm:"column:source_table;not null;index:idx_deletion_archive_source"`
	RecordID    int64               `gorm:"column:record_id;not null;index:idx_deletion_archive_source"`
	Action      enums.ArchiveAction `gorm:"column:action;not null"`
	OldData     json.RawMessage     `gorm:"column:old_data;type:jsonb"`
	NewData     json.RawMessage     `gorm:"column:new_data;type:jsonb"`
	ActorID     *int64              `gorm:"column:actor_id"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (DeletionArchive) TableName() string { return "deletion_archive" }

func (a *DeletionArchive) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
