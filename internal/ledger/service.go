package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
)

// Service records stock movements against the ledger.
type Service interface {
	WithTx(tx *gorm.DB) Service
	RecordMovement(ctx context.Context, input RecordMovementInput) (*models.StockMovement, error)
	NetByRequisition(ctx context.Context, requisitionID int64) (map[int64]int, error)
}

type service struct {
	repo Repository
}

// RecordMovementInput captures the immutable data a movement requires. Names
// and unit price are snapshots of the catalog at the time of the movement.
type RecordMovementInput struct {
	MaterialID    int64                        `json:"material_id"`
	MaterialName  string                       `json:"material_name"`
	TypeName      string                       `json:"type_name"`
	Direction     enums.StockMovementDirection `json:"direction"`
	Quantity      int                          `json:"quantity"`
	UnitPrice     decimal.Decimal              `json:"unit_price"`
	Reason        string                       `json:"reason"`
	RequisitionID *int64                       `json:"requisition_id,omitempty"`
	ActorID       *int64                       `json:"actor_id,omitempty"`
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx)}
}

func (s *service) RecordMovement(ctx context.Context, input RecordMovementInput) (*models.StockMovement, error) {
	if input.MaterialID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "material id is required")
	}
	if !input.Direction.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid movement direction %q", input.Direction))
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.UnitPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price must not be negative")
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason is required")
	}

	movement := &models.StockMovement{
		MaterialID:    input.MaterialID,
		MaterialName:  input.MaterialName,
		TypeName:      input.TypeName,
		Direction:     input.Direction,
		Quantity:      input.Quantity,
		UnitPrice:     input.UnitPrice,
		Reason:        reason,
		RequisitionID: input.RequisitionID,
		ActorID:       input.ActorID,
	}

	if err := s.repo.Create(ctx, movement); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append stock movement")
	}
	return movement, nil
}

func (s *service) NetByRequisition(ctx context.Context, requisitionID int64) (map[int64]int, error) {
	if requisitionID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "requisition id is required")
	}
	net, err := s.repo.NetByRequisition(ctx, requisitionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum stock movements")
	}
	return net, nil
}
