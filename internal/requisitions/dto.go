package requisitions

import (
	"time"

	"github.com/angelmondragon/stockroom-backend/internal/access"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
)

// CreateItemInput is one requested line. Either MaterialID or Description is required.
type CreateItemInput struct {
	MaterialID  *int64  `json:"material_id" validate:"omitempty,gt=0"`
	Description *string `json:"description" validate:"omitempty,max=255"`
	Quantity    int     `json:"quantity" validate:"gt=0"`
}

// CreateInput carries a new requisition with its items.
type CreateInput struct {
	Actor            access.Actor      `json:"-"`
	Items            []CreateItemInput `json:"items" validate:"required,min=1,dive"`
	NeededBy         *time.Time        `json:"needed_by"`
	DeliveryLocation *string           `json:"delivery_location" validate:"omitempty,max=120"`
	Justification    *string           `json:"justification" validate:"omitempty,max=255"`
	Notes            *string           `json:"notes" validate:"omitempty,max=255"`
}

// ListInput scopes the listing to what the actor may see.
type ListInput struct {
	Actor            access.Actor
	IncludeItems     bool
	IncludeDecisions bool
}

// FulfillLine hands out quantity units of one item.
type FulfillLine struct {
	ItemID   int64 `json:"item_id" validate:"gt=0"`
	Quantity int   `json:"quantity" validate:"gt=0"`
}

// FulfillInput is a batch of fulfillments applied atomically.
type FulfillInput struct {
	RequisitionID  int64         `json:"requisition_id" validate:"gt=0"`
	Actor          access.Actor  `json:"-"`
	Lines          []FulfillLine `json:"lines" validate:"required,min=1,dive"`
	IdempotencyKey string        `json:"-"`
}

// ReturnLine takes back quantity units of one item.
type ReturnLine struct {
	ItemID    int64                  `json:"item_id" validate:"gt=0"`
	Quantity  int                    `json:"quantity" validate:"gt=0"`
	Condition *enums.ReturnCondition `json:"condition" validate:"omitempty,oneof=good damaged lost"`
	Notes     *string                `json:"notes" validate:"omitempty,max=255"`
}

// ReturnInput is a batch of returns applied atomically.
type ReturnInput struct {
	RequisitionID  int64        `json:"requisition_id" validate:"gt=0"`
	Actor          access.Actor `json:"-"`
	Lines          []ReturnLine `json:"lines" validate:"required,min=1,dive"`
	IdempotencyKey string       `json:"-"`
}

// DecideInput records an approval verdict.
type DecideInput struct {
	RequisitionID int64                         `json:"requisition_id" validate:"gt=0"`
	Actor         access.Actor                  `json:"-"`
	Decision      enums.RequisitionDecisionKind `json:"decision" validate:"required,oneof=approve reject cancel"`
	Reason        *string                       `json:"reason" validate:"omitempty,max=255"`
}

// Drift reports a material whose ledger net for a requisition disagrees with
// the quantities still handed out on its items.
type Drift struct {
	MaterialID int64 `json:"material_id"`
	LedgerNet  int   `json:"ledger_net"`
	ItemNet    int   `json:"item_net"`
}
