// Package types defines the wire envelopes shared by every Servana API
// response.
package types

// SuccessEnvelope wraps a successful payload under the "data" key.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the client-facing error body: a stable machine code, a
// human-readable message, and optional structured details such as
// per-field validation failures.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an APIError under the "error" key.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
