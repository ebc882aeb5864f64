// Package gateway wraps the card payment processor behind a small interface
// so the order coordinator never touches SDK types or global client state.
package gateway

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotConfigured is returned by every call when no processor key is set.
	ErrNotConfigured = errors.New("payment gateway not configured")
	// ErrAccountInvalid means the connected account was revoked or is unknown.
	ErrAccountInvalid = errors.New("connected account invalid")
	// ErrInvalidSignature is returned for webhooks that fail verification.
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// EventPaymentSucceeded is the webhook type that confirms an order.
const EventPaymentSucceeded = "payment_intent.succeeded"

// Gateway is the payment processor capability used by the services.
type Gateway interface {
	CreateIntent(ctx context.Context, p IntentParams) (*Intent, error)
	RetrieveAccountStatus(ctx context.Context, accountID string) (*AccountStatus, error)
	CreateConnectedAccount(ctx context.Context, p AccountParams) (string, error)
	CreateOnboardingLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error)
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

// IntentParams describes a card payment intent. Amounts are minor units.
// An empty Destination creates a direct charge on the platform account.
type IntentParams struct {
	Amount         int64
	Currency       string
	Destination    string
	ApplicationFee int64
	Metadata       map[string]string
}

// Intent is a created payment intent.
type Intent struct {
	ID           string
	ClientSecret string
	Amount       int64
}

// AccountStatus mirrors the onboarding flags of a connected account.
type AccountStatus struct {
	ID               string
	ChargesEnabled   bool
	PayoutsEnabled   bool
	DetailsSubmitted bool
}

// Onboarded reports whether the account can receive destination charges.
func (s AccountStatus) Onboarded() bool {
	return s.DetailsSubmitted && s.ChargesEnabled && s.PayoutsEnabled
}

// AccountParams is the input for a new connected account.
type AccountParams struct {
	Email        string
	BusinessName string
}

// WebhookEvent is a verified processor notification.
type WebhookEvent struct {
	ID              string
	Type            string
	PaymentIntentID string
	OrderID         string
}

// MinorUnits converts a currency amount to integer cents, rounding half away
// from zero.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// Disabled is used when no processor credentials are configured.
type Disabled struct{}

func (Disabled) CreateIntent(context.Context, IntentParams) (*Intent, error) {
	return nil, ErrNotConfigured
}

func (Disabled) RetrieveAccountStatus(context.Context, string) (*AccountStatus, error) {
	return nil, ErrNotConfigured
}

func (Disabled) CreateConnectedAccount(context.Context, AccountParams) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) CreateOnboardingLink(context.Context, string, string, string) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) ParseWebhook([]byte, string) (*WebhookEvent, error) {
	return nil, ErrNotConfigured
}
