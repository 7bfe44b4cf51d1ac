// Package payment collects consultancy fees through Stripe payment intents.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/paymentintent"
	"github.com/stripe/stripe-go/v80/webhook"
)

const (
	metadataInterestID = "interest_id"

	EventSucceeded = "payment_intent.succeeded"
)

var ErrInvalidAmount = errors.New("payment amount must be positive")

// Intent is a created payment intent as handed to the client.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// Event is the part of a verified webhook event the service acts on.
type Event struct {
	Type       string
	InterestID string
	Reference  string
}

type Gateway interface {
	CreateIntent(ctx context.Context, interestID string, amount decimal.Decimal, email string) (*Intent, error)
	ParseEvent(payload []byte, signature string) (*Event, error)
}

type StripeGateway struct {
	intents       paymentintent.Client
	webhookSecret string
	currency      string
}

func NewStripeGateway(secretKey, webhookSecret, currency string) *StripeGateway {
	return NewStripeGatewayWithBackend(stripe.GetBackend(stripe.APIBackend), secretKey, webhookSecret, currency)
}

// NewStripeGatewayWithBackend talks to the given Stripe backend.
func NewStripeGatewayWithBackend(b stripe.Backend, secretKey, webhookSecret, currency string) *StripeGateway {
	if currency == "" {
		currency = string(stripe.CurrencyINR)
	}
	return &StripeGateway{
		intents:       paymentintent.Client{B: b, Key: secretKey},
		webhookSecret: webhookSecret,
		currency:      currency,
	}
}

// MinorUnits converts an amount to the smallest currency unit.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func (g *StripeGateway) CreateIntent(ctx context.Context, interestID string, amount decimal.Decimal, email string) (*Intent, error) {
	units := MinorUnits(amount)
	if units <= 0 {
		return nil, ErrInvalidAmount
	}
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(units),
		Currency:           stripe.String(g.currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	if email != "" {
		params.ReceiptEmail = stripe.String(email)
	}
	params.AddMetadata(metadataInterestID, interestID)

	pi, err := g.intents.New(params)
	if err != nil {
		return nil, fmt.Errorf("StripeGateway.CreateIntent: %w", err)
	}
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
	}, nil
}

// ParseEvent verifies the Stripe-Signature header and extracts the interest
// reference of payment intent events.
func (g *StripeGateway) ParseEvent(payload []byte, signature string) (*Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("StripeGateway.ParseEvent: %w", err)
	}
	out := &Event{Type: string(ev.Type)}
	if ev.Data == nil {
		return out, nil
	}
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("StripeGateway.ParseEvent: decode payment intent: %w", err)
	}
	out.Reference = pi.ID
	out.InterestID = pi.Metadata[metadataInterestID]
	return out, nil
}

var _ Gateway = (*StripeGateway)(nil)
