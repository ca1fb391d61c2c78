package archive

import (
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Entry describes a row about to be destroyed.
type Entry struct {
	SourceTable string
	RecordID    int64
	Action      enums.ArchiveAction
	Before      any
	ActorID     *int64
}

// Repository writes deletion snapshots.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Archive(ctx context.Context, entry Entry) (*models.DeletionArchive, error)
	ListByRecord(ctx context.Context, sourceTable string, recordID int64) ([]models.DeletionArchive, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an archive repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Archive(ctx context.Context, entry Entry) (*models.DeletionArchive, error) {
	if entry.SourceTable == "" {
		return nil, fmt.Errorf("source table is required")
	}
	if entry.RecordID <= 0 {
		return nil, fmt.Errorf("record id is required")
	}
	action := entry.Action
	if action == "" {
		action = enums.ArchiveActionDelete
	}

	snapshot, err := json.Marshal(entry.Before)
	if err != nil {
		return nil, fmt.Errorf("encode %s/%d snapshot: %w", entry.SourceTable, entry.RecordID, err)
	}

	row := &models.DeletionArchive{
		SourceTable: entry.SourceTable,
		RecordID:    entry.RecordID,
		Action:      action,
		OldData:     snapshot,
		ActorID:     entry.ActorID,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *repository) ListByRecord(ctx context.Context, sourceTable string, recordID int64) ([]models.DeletionArchive, error) {
	var rows []models.DeletionArchive
	if err := r.db.WithContext(ctx).
		Where("source_table = ? AND record_id = ?", sourceTable, recordID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Decode unmarshals an archived snapshot into dest.
func Decode(row models.DeletionArchive, dest any) error {
	if len(row.OldData) == 0 {
		return fmt.Errorf("archive %s has no snapshot", row.ID)
	}
	return json.Unmarshal(row.OldData, dest)
}
