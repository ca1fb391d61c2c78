package ledger

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
)

// Repository manages persistence for stock movements. Rows are append-only.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, movement *models.StockMovement) error
	ListByRequisition(ctx context.Context, requisitionID int64) ([]models.StockMovement, error)
	NetByRequisition(ctx context.Context, requisitionID int64) (map[int64]int, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, movement *models.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

func (r *repository) ListByRequisition(ctx context.Context, requisitionID int64) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	if err := r.db.WithContext(ctx).
		Where("requisition_id = ?", requisitionID).
		Order("created_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

type netRow struct {
	MaterialID int64
	Net        int
}

// NetByRequisition sums out minus in per material for movements linked to the requisition.
func (r *repository) NetByRequisition(ctx context.Context, requisitionID int64) (map[int64]int, error) {
	var rows []netRow
	if err := r.db.WithContext(ctx).
		Model(&models.StockMovement{}).
		Select("material_id, SUM(CASE WHEN direction = ? THEN quantity ELSE -quantity END) AS net", enums.StockMovementOut).
		Where("requisition_id = ?", requisitionID).
		Group("material_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[int64]int, len(rows))
	for _, row := range rows {
		out[row.MaterialID] = row.Net
	}
	return out, nil
}
