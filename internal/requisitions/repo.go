package requisitions

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/stockroom-backend/internal/archive"
	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
)

const requisitionsTable = "requisitions"

// errItemChanged signals that a guarded item update matched no row because
// the quantities moved since they were read.
var errItemChanged = errors.New("requisition item changed concurrently")

type repository struct {
	db *gorm.DB
}

// NewRepository returns the aggregate repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// CreateRequisition inserts the header without a code; AssignCode fills it once the id is known.
func (r *repository) CreateRequisition(ctx context.Context, header *models.Requisition) error {
	return r.db.WithContext(ctx).Omit("Code", clause.Associations).Create(header).Error
}

func (r *repository) AssignCode(ctx context.Context, requisitionID int64, code string) error {
	return r.db.WithContext(ctx).
		Model(&models.Requisition{}).
		Where("id = ?", requisitionID).
		Update("code", code).Error
}

func (r *repository) CreateItems(ctx context.Context, items []models.RequisitionItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) CreateDecision(ctx context.Context, decision *models.RequisitionDecision) error {
	return r.db.WithContext(ctx).Create(decision).Error
}

func (r *repository) FindRequisition(ctx context.Context, requisitionID int64) (*models.Requisition, error) {
	var header models.Requisition
	if err := r.db.WithContext(ctx).Where("id = ?", requisitionID).Take(&header).Error; err != nil {
		return nil, err
	}
	return &header, nil
}

func (r *repository) FindItems(ctx context.Context, requisitionID int64) ([]models.RequisitionItem, error) {
	var items []models.RequisitionItem
	if err := r.db.WithContext(ctx).
		Where("requisition_id = ?", requisitionID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// LockItems re-reads the listed items of a requisition under a row lock.
func (r *repository) LockItems(ctx context.Context, requisitionID int64, itemIDs []int64) ([]models.RequisitionItem, error) {
	var items []models.RequisitionItem
	if len(itemIDs) == 0 {
		return items, nil
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("requisition_id = ? AND id IN ?", requisitionID, itemIDs).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) ApplyFulfillment(ctx context.Context, update FulfillmentUpdate) error {
	res := r.db.WithContext(ctx).
		Model(&models.RequisitionItem{}).
		Where("id = ? AND fulfilled_qty = ? AND requested_qty >= ?", update.ItemID, update.ExpectedFulfilled, update.NewFulfilled).
		Updates(map[string]any{
			"fulfilled_qty": update.NewFulfilled,
			"status":        update.Status,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errItemChanged
	}
	return nil
}

func (r *repository) ApplyReturn(ctx context.Context, update ReturnUpdate) error {
	updates := map[string]any{
		"returned_qty": update.NewReturned,
		"status":       update.Status,
		"return_state": update.ReturnState,
		"returned_at":  update.ReturnedAt,
	}
	if update.Condition != nil {
		updates["return_condition"] = *update.Condition
	}
	if update.Notes != nil {
		updates["return_notes"] = *update.Notes
	}
	res := r.db.WithContext(ctx).
		Model(&models.RequisitionItem{}).
		Where("id = ? AND returned_qty = ? AND fulfilled_qty >= ?", update.ItemID, update.ExpectedReturned, update.NewReturned).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errItemChanged
	}
	return nil
}

func (r *repository) UpdateRequisition(ctx context.Context, requisitionID int64, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Requisition{}).
		Where("id = ?", requisitionID).
		Updates(updates).Error
}

func (r *repository) ListAll(ctx context.Context) ([]models.Requisition, error) {
	var rows []models.Requisition
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) itemsMatching(where string, args ...any) *gorm.DB {
	return r.db.Session(&gorm.Session{NewDB: true}).
		Table("requisition_items AS i").
		Select("i.requisition_id").
		Joins("JOIN materials m ON m.id = i.material_id").
		Joins("LEFT JOIN material_types t ON t.id = m.type_id").
		Where(where, args...)
}

// ListByCategories returns headers having at least one item whose material
// belongs to one of the categories.
func (r *repository) ListByCategories(ctx context.Context, categoryIDs []int64) ([]models.Requisition, error) {
	var rows []models.Requisition
	if len(categoryIDs) == 0 {
		return rows, nil
	}
	if err := r.db.WithContext(ctx).
		Where("id IN (?)", r.itemsMatching("t.category_id IN ?", categoryIDs)).
		Order("id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListWithSellableItems(ctx context.Context) ([]models.Requisition, error) {
	var rows []models.Requisition
	if err := r.db.WithContext(ctx).
		Where("id IN (?)", r.itemsMatching("m.sellable = ?", true)).
		Order("id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListByRequester(ctx context.Context, requesterID int64) ([]models.Requisition, error) {
	var rows []models.Requisition
	if err := r.db.WithContext(ctx).
		Where("requester_id = ?", requesterID).
		Order("id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListIDs pages through requisition ids in ascending order.
func (r *repository) ListIDs(ctx context.Context, afterID int64, limit int) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).
		Model(&models.Requisition{}).
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repository) ItemsByRequisitions(ctx context.Context, requisitionIDs []int64) (map[int64][]models.RequisitionItem, error) {
	out := make(map[int64][]models.RequisitionItem, len(requisitionIDs))
	if len(requisitionIDs) == 0 {
		return out, nil
	}
	var items []models.RequisitionItem
	if err := r.db.WithContext(ctx).
		Where("requisition_id IN ?", requisitionIDs).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	for _, item := range items {
		out[item.RequisitionID] = append(out[item.RequisitionID], item)
	}
	return out, nil
}

func (r *repository) DecisionsByRequisitions(ctx context.Context, requisitionIDs []int64) (map[int64][]models.RequisitionDecision, error) {
	out := make(map[int64][]models.RequisitionDecision, len(requisitionIDs))
	if len(requisitionIDs) == 0 {
		return out, nil
	}
	var decisions []models.RequisitionDecision
	if err := r.db.WithContext(ctx).
		Where("requisition_id IN ?", requisitionIDs).
		Order("decided_at ASC, id ASC").
		Find(&decisions).Error; err != nil {
		return nil, err
	}
	for _, decision := range decisions {
		out[decision.RequisitionID] = append(out[decision.RequisitionID], decision)
	}
	return out, nil
}

// RemoveWithArchive snapshots the header with its items and decisions into
// the deletion archive and then destroys them, all in one transaction. It
// returns gorm.ErrRecordNotFound without archiving when the header is missing.
func (r *repository) RemoveWithArchive(ctx context.Context, requisitionID int64, actorID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var header models.Requisition
		if err := tx.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
			Preload("Decisions", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
			Where("id = ?", requisitionID).
			Take(&header).Error; err != nil {
			return err
		}

		if _, err := archive.NewRepository(tx).Archive(ctx, archive.Entry{
			SourceTable: requisitionsTable,
			RecordID:    requisitionID,
			Action:      enums.ArchiveActionDelete,
			Before:      header,
			ActorID:     &actorID,
		}); err != nil {
			return err
		}

		// children go first so the delete holds without relying on FK cascades.
		if err := tx.Where("requisition_id = ?", requisitionID).Delete(&models.RequisitionDecision{}).Error; err != nil {
			return err
		}
		if err := tx.Where("requisition_id = ?", requisitionID).Delete(&models.RequisitionItem{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", requisitionID).Delete(&models.Requisition{}).Error
	})
}
