package enums

import "testing"

func TestParseRequisitionStatus(t *testing.T) {
	got, err := ParseRequisitionStatus("in_use")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != RequisitionStatusInUse {
		t.Fatalf("expected in_use, got %s", got)
	}
	if _, err := ParseRequisitionStatus("finished"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestDecisionTargetStatus(t *testing.T) {
	cases := map[RequisitionDecisionKind]RequisitionStatus{
		RequisitionDecisionApprove: RequisitionStatusApproved,
		RequisitionDecisionReject:  RequisitionStatusRejected,
		RequisitionDecisionCancel:  RequisitionStatusCancelled,
	}
	for kind, want := range cases {
		if got := kind.TargetStatus(); got != want {
			t.Fatalf("%s: expected %s, got %s", kind, want, got)
		}
	}
	if got := RequisitionDecisionKind("escalate").TargetStatus(); got != "" {
		t.Fatalf("expected empty status for unknown decision, got %s", got)
	}
}

func TestStockMovementDirectionSign(t *testing.T) {
	if StockMovementOut.Sign() != 1 || StockMovementIn.Sign() != -1 {
		t.Fatal("unexpected direction signs")
	}
	if _, err := ParseStockMovementDirection("sideways"); err == nil {
		t.Fatal("expected error for unknown direction")
	}
}

func TestReturnConditionValidity(t *testing.T) {
	if !ReturnConditionDamaged.IsValid() {
		t.Fatal("damaged should be valid")
	}
	if ReturnCondition("broken").IsValid() {
		t.Fatal("broken should be invalid")
	}
}
