package requisitions

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
)

// Repository is the requisition aggregate: header, items and decisions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateRequisition(ctx context.Context, header *models.Requisition) error
	AssignCode(ctx context.Context, requisitionID int64, code string) error
	CreateItems(ctx context.Context, items []models.RequisitionItem) error
	CreateDecision(ctx context.Context, decision *models.RequisitionDecision) error
	FindRequisition(ctx context.Context, requisitionID int64) (*models.Requisition, error)
	FindItems(ctx context.Context, requisitionID int64) ([]models.RequisitionItem, error)
	LockItems(ctx context.Context, requisitionID int64, itemIDs []int64) ([]models.RequisitionItem, error)
	ApplyFulfillment(ctx context.Context, update FulfillmentUpdate) error
	ApplyReturn(ctx context.Context, update ReturnUpdate) error
	UpdateRequisition(ctx context.Context, requisitionID int64, updates map[string]any) error
	ListAll(ctx context.Context) ([]models.Requisition, error)
	ListByCategories(ctx context.Context, categoryIDs []int64) ([]models.Requisition, error)
	ListWithSellableItems(ctx context.Context) ([]models.Requisition, error)
	ListByRequester(ctx context.Context, requesterID int64) ([]models.Requisition, error)
	ListIDs(ctx context.Context, afterID int64, limit int) ([]int64, error)
	ItemsByRequisitions(ctx context.Context, requisitionIDs []int64) (map[int64][]models.RequisitionItem, error)
	DecisionsByRequisitions(ctx context.Context, requisitionIDs []int64) (map[int64][]models.RequisitionDecision, error)
	RemoveWithArchive(ctx context.Context, requisitionID int64, actorID int64) error
}

// FulfillmentUpdate is a compare-and-set on an item's fulfilled quantity.
type FulfillmentUpdate struct {
	ItemID            int64
	ExpectedFulfilled int
	NewFulfilled      int
	Status            enums.RequisitionItemStatus
}

// ReturnUpdate is a compare-and-set on an item's returned quantity.
type ReturnUpdate struct {
	ItemID           int64
	ExpectedReturned int
	NewReturned      int
	Status           enums.RequisitionItemStatus
	ReturnState      enums.ReturnState
	Condition        *enums.ReturnCondition
	Notes            *string
	ReturnedAt       time.Time
}
