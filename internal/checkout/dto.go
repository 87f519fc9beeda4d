package checkout

import "github.com/shopspring/decimal"

// CreateSessionRequest is the payload for hosted checkout creation.
// Amount is in major currency units; conversion to the gateway's minor
// units happens server-side.
type CreateSessionRequest struct {
	Amount        decimal.Decimal   `json:"amount" validate:"required"`
	Currency      string            `json:"currency,omitempty"`
	ServiceName   string            `json:"serviceName" validate:"required"`
	VendorName    string            `json:"vendorName,omitempty"`
	CustomerEmail string            `json:"customerEmail,omitempty" validate:"omitempty,email"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// CreateSessionResponse carries the hosted payment page handle.
type CreateSessionResponse struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}
