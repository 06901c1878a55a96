package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

type StripeGateway struct {
	client        *client.API
	webhookSecret string
	logger        *slog.Logger
}

func NewStripeGateway(cfg StripeConfig, logger *slog.Logger) (*StripeGateway, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("payment: stripe secret key is required")
	}
	if cfg.WebhookSecret == "" {
		return nil, errors.New("payment: stripe webhook secret is required")
	}

	sc := &client.API{}
	sc.Init(cfg.SecretKey, nil)

	return &StripeGateway{
		client:        sc,
		webhookSecret: cfg.WebhookSecret,
		logger:        logger.With("component", "stripe_gateway"),
	}, nil
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(req.CourseTitle),
	}
	if req.ImageURL != "" {
		product.Images = stripe.StringSlice([]string{req.ImageURL})
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripe.String(strings.ToLower(req.Currency)),
					ProductData: product,
					UnitAmount:  stripe.Int64(ToMinorUnits(req.Amount)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		Metadata: map[string]string{
			"courseId": req.CourseID,
			"userId":   req.UserID,
		},
	}
	params.Context = ctx

	session, err := g.client.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	g.logger.Info("Created checkout session", "session_id", session.ID, "course_id", req.CourseID)

	return &CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	result := &Event{ID: event.ID, Type: string(event.Type)}
	if event.Data == nil {
		return result, nil
	}
	result.Object = event.Data.Raw

	if result.Type == EventCheckoutCompleted {
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("failed to decode checkout session: %w", err)
		}
		result.SessionID = session.ID
		result.AmountTotal = session.AmountTotal
	}

	return result, nil
}

// ToMinorUnits converts a major-unit price to the gateway's integer amount.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromMinorUnits is the inverse of ToMinorUnits.
func FromMinorUnits(amount int64) float64 {
	return float64(amount) / 100
}
