package enums

import "fmt"

// RequisitionDecisionKind is the approval verdict recorded against a requisition.
type RequisitionDecisionKind string

const (
	RequisitionDecisionApprove RequisitionDecisionKind = "approve"
	RequisitionDecisionReject  RequisitionDecisionKind = "reject"
	RequisitionDecisionCancel  RequisitionDecisionKind = "cancel"
)

var validRequisitionDecisionKinds = []RequisitionDecisionKind{
	RequisitionDecisionApprove,
	RequisitionDecisionReject,
	RequisitionDecisionCancel,
}

// String implements fmt.Stringer.
func (k RequisitionDecisionKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known RequisitionDecisionKind.
func (k RequisitionDecisionKind) IsValid() bool {
	for _, candidate := range validRequisitionDecisionKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// TargetStatus maps the decision onto the header status it produces.
func (k RequisitionDecisionKind) TargetStatus() RequisitionStatus {
	switch k {
	case RequisitionDecisionApprove:
		return RequisitionStatusApproved
	case RequisitionDecisionReject:
		return RequisitionStatusRejected
	case RequisitionDecisionCancel:
		return RequisitionStatusCancelled
	default:
		return ""
	}
}

// ParseRequisitionDecisionKind converts raw input into a RequisitionDecisionKind.
func ParseRequisitionDecisionKind(value string) (RequisitionDecisionKind, error) {
	for _, candidate := range validRequisitionDecisionKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid requisition decision %q", value)
}
