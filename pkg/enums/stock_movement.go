package enums

import "fmt"

// StockMovementDirection is the sign of a ledger entry relative to stock.
type StockMovementDirection string

const (
	StockMovementIn  StockMovementDirection = "in"
	StockMovementOut StockMovementDirection = "out"
)

// String implements fmt.Stringer.
func (d StockMovementDirection) String() string {
	return string(d)
}

// IsValid reports whether the value is a known StockMovementDirection.
func (d StockMovementDirection) IsValid() bool {
	return d == StockMovementIn || d == StockMovementOut
}

// Sign returns +1 for outbound movements and -1 for inbound ones, the
// orientation used when netting movements against quantities handed out.
func (d StockMovementDirection) Sign() int {
	switch d {
	case StockMovementOut:
		return 1
	case StockMovementIn:
		return -1
	default:
		return 0
	}
}

// ParseStockMovementDirection converts raw input into a StockMovementDirection.
func ParseStockMovementDirection(value string) (StockMovementDirection, error) {
	d := StockMovementDirection(value)
	if !d.IsValid() {
		return "", fmt.Errorf("invalid stock movement direction %q", value)
	}
	return d, nil
}
