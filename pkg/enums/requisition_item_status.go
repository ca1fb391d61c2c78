package enums

import "fmt"

// RequisitionItemStatus tracks fulfillment and return progress of a single item.
type RequisitionItemStatus string

const (
	RequisitionItemStatusPending   RequisitionItemStatus = "pending"
	RequisitionItemStatusPartial   RequisitionItemStatus = "partial"
	RequisitionItemStatusFulfilled RequisitionItemStatus = "fulfilled"
	RequisitionItemStatusInUse     RequisitionItemStatus = "in_use"
	RequisitionItemStatusReturned  RequisitionItemStatus = "returned"
)

var validRequisitionItemStatuses = []RequisitionItemStatus{
	RequisitionItemStatusPending,
	RequisitionItemStatusPartial,
	RequisitionItemStatusFulfilled,
	RequisitionItemStatusInUse,
	RequisitionItemStatusReturned,
}

// String implements fmt.Stringer.
func (s RequisitionItemStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known RequisitionItemStatus.
func (s RequisitionItemStatus) IsValid() bool {
	for _, candidate := range validRequisitionItemStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseRequisitionItemStatus converts raw input into a RequisitionItemStatus.
func ParseRequisitionItemStatus(value string) (RequisitionItemStatus, error) {
	for _, candidate := range validRequisitionItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid requisition item status %q", value)
}
