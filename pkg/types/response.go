package types

// SuccessEnvelope wraps every successful ops response.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public shape of a typed error. RequestID echoes the
// X-Request-Id header so operators can find the matching log lines.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
