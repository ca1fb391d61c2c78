package enums

// ReturnState flags how much of the fulfilled quantity has come back.
type ReturnState string

const (
	ReturnStateNone    ReturnState = "none"
	ReturnStatePartial ReturnState = "partial"
	ReturnStateFull    ReturnState = "full"
)

// String implements fmt.Stringer.
func (s ReturnState) String() string {
	return string(s)
}
