package requisitions

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
)

// State conflict reasons carried in error details.
const (
	ReasonSellableMaterial   = "sellable_material"
	ReasonConsumableMaterial = "consumable_material"
	ReasonCategoryUnresolved = "category_unresolved"
	ReasonMaterialMissing    = "material_missing"
)

func requisitionNotFound(requisitionID int64) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("requisition %d not found", requisitionID)).
		WithDetails(map[string]any{"requisition_id": requisitionID})
}

func itemNotFound(requisitionID, itemID int64) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("item %d not found on requisition %d", itemID, requisitionID)).
		WithDetails(map[string]any{"requisition_id": requisitionID, "item_id": itemID})
}

func materialNotFound(itemID int64, materialID *int64) error {
	details := map[string]any{"item_id": itemID}
	if materialID == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("item %d has no catalog material", itemID)).
			WithDetails(details)
	}
	details["material_id"] = *materialID
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("material %d for item %d not found", *materialID, itemID)).
		WithDetails(details)
}

func capacityExceeded(itemID int64, requested, limit int, what string) error {
	return pkgerrors.New(pkgerrors.CodeCapacityExceeded, fmt.Sprintf("item %d: %d requested but only %d %s", itemID, requested, limit, what)).
		WithDetails(map[string]any{"item_id": itemID, "requested": requested, "limit": limit})
}

func stateConflict(reason string, itemID, materialID int64, message string) error {
	details := map[string]any{"item_id": itemID, "reason": reason}
	if materialID > 0 {
		details["material_id"] = materialID
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("item %d: %s", itemID, message)).WithDetails(details)
}

// dependency wraps untyped storage failures; typed errors pass through untouched.
func dependency(err error, message string) error {
	if err == nil {
		return nil
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
