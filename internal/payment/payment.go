package payment

import (
	"context"
	"encoding/json"
	"errors"
)

// EventCheckoutCompleted is the only gateway event that changes state.
const EventCheckoutCompleted = "checkout.session.completed"

var ErrInvalidSignature = errors.New("payment: invalid webhook signature")

type CheckoutRequest struct {
	UserID      string
	CourseID    string
	CourseTitle string
	ImageURL    string
	// Amount in major currency units.
	Amount     float64
	Currency   string
	SuccessURL string
	CancelURL  string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// Event is a verified webhook notification.
type Event struct {
	ID        string
	Type      string
	SessionID string
	// Captured amount in minor units; zero when the gateway did not report one.
	AmountTotal int64
	Object      json.RawMessage
}

type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	// ParseWebhook verifies the signature over the raw body before decoding it.
	ParseWebhook(payload []byte, signature string) (*Event, error)
}
