package payment

import (
	"context"
	"encoding/json"
	"time"
)

// SessionItem is one priced line forwarded to the payment gateway.
type SessionItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type SessionRequest struct {
	OrderID  string        `json:"orderId"`
	Currency string        `json:"currency"`
	Items    []SessionItem `json:"items"`
}

// Session is the opaque payment-session descriptor returned by the
// gateway. Raw holds the full gateway payload so it can be forwarded to
// the order-creation caller untouched.
type Session struct {
	ID        string          `json:"id"`
	URL       string          `json:"url"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
	Raw       json.RawMessage `json:"-"`
}

// Gateway creates payment sessions with the remote payment service.
type Gateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
}
