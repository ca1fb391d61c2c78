package requisitions

import "github.com/angelmondragon/stockroom-backend/pkg/enums"

// ItemStatus derives an item's status from its quantities. Returns take
// precedence over fulfillment progress.
func ItemStatus(requested, fulfilled, returned int) enums.RequisitionItemStatus {
	switch {
	case fulfilled > 0 && returned >= fulfilled:
		return enums.RequisitionItemStatusReturned
	case returned > 0:
		return enums.RequisitionItemStatusInUse
	case fulfilled == 0:
		return enums.RequisitionItemStatusPending
	case fulfilled >= requested:
		return enums.RequisitionItemStatusFulfilled
	default:
		return enums.RequisitionItemStatusPartial
	}
}

// ItemReturnState flags how much of the fulfilled quantity has come back.
func ItemReturnState(fulfilled, returned int) enums.ReturnState {
	switch {
	case returned <= 0:
		return enums.ReturnStateNone
	case returned >= fulfilled:
		return enums.ReturnStateFull
	default:
		return enums.ReturnStatePartial
	}
}

// ItemSnapshot is the slice of an item the header deriver needs.
type ItemSnapshot struct {
	Requested  int
	Fulfilled  int
	Returned   int
	Consumable bool
}

// HeaderStatus derives the requisition status from its items.
//
// Consumables never count as outstanding. A header is in_use only once
// returns have started on a fully fulfilled requisition that still has
// non-consumable quantity out; before any return it stays fulfilled.
func HeaderStatus(items []ItemSnapshot) enums.RequisitionStatus {
	anyFulfilled := false
	allFulfilled := len(items) > 0
	outstanding := 0
	returnedAny := false
	nonConsumables := 0
	allNonConsumablesReturned := true

	for _, it := range items {
		if it.Fulfilled > 0 {
			anyFulfilled = true
		}
		if it.Fulfilled < it.Requested {
			allFulfilled = false
		}
		if it.Consumable {
			continue
		}
		nonConsumables++
		if out := it.Fulfilled - it.Returned; out > 0 {
			outstanding += out
		}
		if it.Returned > 0 {
			returnedAny = true
		}
		if it.Fulfilled == 0 || it.Returned < it.Fulfilled {
			allNonConsumablesReturned = false
		}
	}

	switch {
	case !anyFulfilled:
		return enums.RequisitionStatusPending
	case outstanding > 0 && !allFulfilled:
		return enums.RequisitionStatusPartial
	case outstanding > 0 && returnedAny:
		return enums.RequisitionStatusInUse
	case outstanding > 0:
		return enums.RequisitionStatusFulfilled
	case nonConsumables > 0 && allNonConsumablesReturned && allFulfilled:
		return enums.RequisitionStatusReturned
	case allFulfilled:
		return enums.RequisitionStatusFulfilled
	default:
		return enums.RequisitionStatusPartial
	}
}
