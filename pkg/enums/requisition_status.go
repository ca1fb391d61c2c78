package enums

import "fmt"

// RequisitionStatus is the header lifecycle state of a requisition.
type RequisitionStatus string

const (
	RequisitionStatusPending   RequisitionStatus = "pending"
	RequisitionStatusApproved  RequisitionStatus = "approved"
	RequisitionStatusRejected  RequisitionStatus = "rejected"
	RequisitionStatusCancelled RequisitionStatus = "cancelled"
	RequisitionStatusPartial   RequisitionStatus = "partial"
	RequisitionStatusFulfilled RequisitionStatus = "fulfilled"
	RequisitionStatusInUse     RequisitionStatus = "in_use"
	RequisitionStatusReturned  RequisitionStatus = "returned"
)

var validRequisitionStatuses = []RequisitionStatus{
	RequisitionStatusPending,
	RequisitionStatusApproved,
	RequisitionStatusRejected,
	RequisitionStatusCancelled,
	RequisitionStatusPartial,
	RequisitionStatusFulfilled,
	RequisitionStatusInUse,
	RequisitionStatusReturned,
}

// String implements fmt.Stringer.
func (s RequisitionStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known RequisitionStatus.
func (s RequisitionStatus) IsValid() bool {
	for _, candidate := range validRequisitionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseRequisitionStatus converts raw input into a RequisitionStatus.
func ParseRequisitionStatus(value string) (RequisitionStatus, error) {
	for _, candidate := range validRequisitionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid requisition status %q", value)
}
