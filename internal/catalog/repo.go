package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
)

// Material is a catalog entry resolved together with its type and category.
type Material struct {
	ID         int64
	Name       string
	Price      decimal.Decimal
	Stock      int
	Sellable   bool
	Consumable bool
	TypeID     int64
	TypeName   string
	CategoryID *int64
}

// Repository reads materials and applies guarded stock adjustments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindMaterial(ctx context.Context, id int64) (*Material, error)
	FindMaterials(ctx context.Context, ids []int64) (map[int64]Material, error)
	DecrementStock(ctx context.Context, materialID int64, qty int) error
	IncrementStock(ctx context.Context, materialID int64, qty int) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) materialQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("materials AS m").
		Select(`m.id, m.name, m.price, m.stock, m.sellable, m.consumable, m.type_id,
			COALESCE(t.name, '') AS type_name, t.category_id AS category_id`).
		Joins("LEFT JOIN material_types t ON t.id = m.type_id")
}

// FindMaterial returns gorm.ErrRecordNotFound when the material does not exist.
func (r *repository) FindMaterial(ctx context.Context, id int64) (*Material, error) {
	var mat Material
	if err := r.materialQuery(ctx).Where("m.id = ?", id).Take(&mat).Error; err != nil {
		return nil, err
	}
	return &mat, nil
}

func (r *repository) FindMaterials(ctx context.Context, ids []int64) (map[int64]Material, error) {
	out := make(map[int64]Material, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []Material
	if err := r.materialQuery(ctx).Where("m.id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// DecrementStock removes qty units, failing with INSUFFICIENT_STOCK instead of
// letting stock go negative.
func (r *repository) DecrementStock(ctx context.Context, materialID int64, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	res := r.db.WithContext(ctx).Exec(`
		UPDATE materials
		SET stock = stock - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock >= ?
	`, qty, materialID, qty)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "decrement stock")
	}
	if res.RowsAffected > 0 {
		return nil
	}

	stock, err := r.currentStock(ctx, materialID)
	if err != nil {
		return err
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, fmt.Sprintf("material %d has %d in stock, %d requested", materialID, stock, qty)).
		WithDetails(map[string]any{"material_id": materialID, "stock": stock, "requested": qty})
}

func (r *repository) IncrementStock(ctx context.Context, materialID int64, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	res := r.db.WithContext(ctx).Exec(`
		UPDATE materials
		SET stock = stock + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, qty, materialID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "increment stock")
	}
	if res.RowsAffected == 0 {
		return materialNotFound(materialID)
	}
	return nil
}

func (r *repository) currentStock(ctx context.Context, materialID int64) (int, error) {
	var mat models.Material
	err := r.db.WithContext(ctx).Select("id", "stock").Where("id = ?", materialID).Take(&mat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, materialNotFound(materialID)
	}
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read stock")
	}
	return mat.Stock, nil
}

func materialNotFound(materialID int64) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("material %d not found", materialID)).
		WithDetails(map[string]any{"material_id": materialID})
}
