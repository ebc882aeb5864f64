package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeConfig holds credentials for the Stripe gateway. APIURL overrides
// the API endpoint and is only set against stub servers.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	APIURL        string
	Log           logrus.FieldLogger
}

// Stripe implements Gateway on Stripe Connect.
type Stripe struct {
	sc            *client.API
	webhookSecret string
}

// NewStripe builds a Stripe gateway with its own client instance.
func NewStripe(cfg StripeConfig) *Stripe {
	log := cfg.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	backendCfg := &stripe.BackendConfig{LeveledLogger: log}
	if cfg.APIURL != "" {
		backendCfg.URL = stripe.String(cfg.APIURL)
		backendCfg.MaxNetworkRetries = stripe.Int64(0)
	}
	backends := &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendCfg),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendCfg),
	}
	return &Stripe{
		sc:            client.New(cfg.SecretKey, backends),
		webhookSecret: cfg.WebhookSecret,
	}
}

func (s *Stripe) CreateIntent(ctx context.Context, p IntentParams) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(p.Amount),
		Currency: stripe.String(p.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if p.Destination != "" {
		params.ApplicationFeeAmount = stripe.Int64(p.ApplicationFee)
		params.TransferData = &stripe.PaymentIntentTransferDataParams{
			Destination: stripe.String(p.Destination),
		}
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := s.sc.PaymentIntents.New(params)
	if err != nil {
		return nil, classify(err)
	}
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret, Amount: pi.Amount}, nil
}

func (s *Stripe) RetrieveAccountStatus(ctx context.Context, accountID string) (*AccountStatus, error) {
	acct, err := s.sc.Accounts.GetByID(accountID, &stripe.AccountParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return nil, classify(err)
	}
	return &AccountStatus{
		ID:               acct.ID,
		ChargesEnabled:   acct.ChargesEnabled,
		PayoutsEnabled:   acct.PayoutsEnabled,
		DetailsSubmitted: acct.DetailsSubmitted,
	}, nil
}

func (s *Stripe) CreateConnectedAccount(ctx context.Context, p AccountParams) (string, error) {
	params := &stripe.AccountParams{
		Params: stripe.Params{Context: ctx},
		Type:   stripe.String(string(stripe.AccountTypeExpress)),
		Email:  stripe.String(p.Email),
		BusinessProfile: &stripe.AccountBusinessProfileParams{
			Name:               stripe.String(p.BusinessName),
			ProductDescription: stripe.String("Restaurant food and beverage sales"),
		},
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{Requested: stripe.Bool(true)},
			Transfers:    &stripe.AccountCapabilitiesTransfersParams{Requested: stripe.Bool(true)},
		},
	}
	acct, err := s.sc.Accounts.New(params)
	if err != nil {
		return "", classify(err)
	}
	return acct.ID, nil
}

func (s *Stripe) CreateOnboardingLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	link, err := s.sc.AccountLinks.New(&stripe.AccountLinkParams{
		Params:     stripe.Params{Context: ctx},
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(refreshURL),
		ReturnURL:  stripe.String(returnURL),
		Type:       stripe.String("account_onboarding"),
	})
	if err != nil {
		return "", classify(err)
	}
	return link.URL, nil
}

func (s *Stripe) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	if s.webhookSecret == "" {
		return nil, ErrNotConfigured
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	out := &WebhookEvent{ID: event.ID, Type: string(event.Type)}
	if out.Type != EventPaymentSucceeded || event.Data == nil {
		return out, nil
	}
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("decode payment intent: %w", err)
	}
	out.PaymentIntentID = pi.ID
	out.OrderID = pi.Metadata["order_id"]
	return out, nil
}

// classify maps revoked or unknown connected accounts to ErrAccountInvalid
// and leaves every other processor error as is.
func classify(err error) error {
	var serr *stripe.Error
	if errors.As(err, &serr) {
		if string(serr.Code) == "account_invalid" || serr.HTTPStatusCode == http.StatusForbidden {
			return fmt.Errorf("%w: %s", ErrAccountInvalid, serr.Msg)
		}
	}
	return err
}
