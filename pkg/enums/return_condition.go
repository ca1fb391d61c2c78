package enums

import "fmt"

// ReturnCondition describes the state a returned material came back in.
type ReturnCondition string

const (
	ReturnConditionGood    ReturnCondition = "good"
	ReturnConditionDamaged ReturnCondition = "damaged"
	ReturnConditionLost    ReturnCondition = "lost"
)

var validReturnConditions = []ReturnCondition{
	ReturnConditionGood,
	ReturnConditionDamaged,
	ReturnConditionLost,
}

// String implements fmt.Stringer.
func (c ReturnCondition) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ReturnCondition.
func (c ReturnCondition) IsValid() bool {
	for _, candidate := range validReturnConditions {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseReturnCondition converts raw input into a ReturnCondition.
func ParseReturnCondition(value string) (ReturnCondition, error) {
	for _, candidate := range validReturnConditions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid return condition %q", value)
}
