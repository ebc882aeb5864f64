package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
	"github.com/tableorder/api/internal/database"
	"github.com/tableorder/api/internal/gateway"
)

// AccountStore defines the DB methods needed for payment account onboarding.
// Satisfied by *database.Queries.
type AccountStore interface {
	GetRestaurantPaymentAccount(ctx context.Context, id uuid.UUID) (database.GetRestaurantPaymentAccountRow, error)
	SetRestaurantStripeAccount(ctx context.Context, arg database.SetRestaurantStripeAccountParams) error
	SetRestaurantOnboarded(ctx context.Context, arg database.SetRestaurantOnboardedParams) error
	ClearRestaurantStripeAccount(ctx context.Context, id uuid.UUID) error
}

// AccountService manages a restaurant's connected payment account.
type AccountService struct {
	store   AccountStore
	gateway gateway.Gateway
	baseURL string
	log     logrus.FieldLogger
}

// NewAccountService creates a new AccountService. baseURL is the public
// dashboard origin the processor redirects back to.
func NewAccountService(store AccountStore, gw gateway.Gateway, baseURL string, log logrus.FieldLogger) *AccountService {
	if gw == nil {
		gw = gateway.Disabled{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AccountService{
		store:   store,
		gateway: gw,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

// Onboarding is a freshly created connected account and its setup link.
type Onboarding struct {
	AccountID string
	URL       string
}

// PaymentAccountStatus is the onboarding state of a restaurant.
type PaymentAccountStatus struct {
	HasAccount       bool
	AccountID        string
	Onboarded        bool
	ChargesEnabled   bool
	PayoutsEnabled   bool
	DetailsSubmitted bool
	Cleared          bool
}

// StartOnboarding creates a connected account for the restaurant and returns
// the hosted onboarding link.
func (s *AccountService) StartOnboarding(ctx context.Context, restaurantID uuid.UUID) (*Onboarding, error) {
	acct, err := s.account(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if acct.StripeAccountID.Valid && acct.StripeAccountID.String != "" {
		return nil, ErrAccountExists
	}

	accountID, err := s.gateway.CreateConnectedAccount(ctx, gateway.AccountParams{
		Email:        acct.Email,
		BusinessName: acct.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create account: %w", ErrGateway, err)
	}
	if err := s.store.SetRestaurantStripeAccount(ctx, database.SetRestaurantStripeAccountParams{
		ID:              restaurantID,
		StripeAccountID: optionalText(accountID),
	}); err != nil {
		return nil, fmt.Errorf("store account: %w", err)
	}

	url, err := s.gateway.CreateOnboardingLink(ctx, accountID,
		s.baseURL+"/dashboard/payments/refresh",
		s.baseURL+"/dashboard/payments/success")
	if err != nil {
		return nil, fmt.Errorf("%w: create onboarding link: %w", ErrGateway, err)
	}

	s.log.WithFields(logrus.Fields{
		"restaurant_id": restaurantID,
		"account_id":    accountID,
	}).Info("payment account created")
	return &Onboarding{AccountID: accountID, URL: url}, nil
}

// AccountStatus refreshes the onboarding flags from the processor and
// persists any change. An account the processor no longer recognizes is
// cleared and reported with Cleared set.
func (s *AccountService) AccountStatus(ctx context.Context, restaurantID uuid.UUID) (*PaymentAccountStatus, error) {
	acct, err := s.account(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if !acct.StripeAccountID.Valid || acct.StripeAccountID.String == "" {
		return &PaymentAccountStatus{}, nil
	}
	accountID := acct.StripeAccountID.String

	st, err := s.gateway.RetrieveAccountStatus(ctx, accountID)
	if err != nil {
		if errors.Is(err, gateway.ErrAccountInvalid) {
			s.log.WithFields(logrus.Fields{
				"restaurant_id": restaurantID,
				"account_id":    accountID,
			}).Warn("payment account invalid, clearing")
			if err := s.store.ClearRestaurantStripeAccount(ctx, restaurantID); err != nil {
				return nil, fmt.Errorf("clear account: %w", err)
			}
			return &PaymentAccountStatus{Cleared: true}, nil
		}
		return nil, fmt.Errorf("%w: retrieve account: %w", ErrGateway, err)
	}

	onboarded := st.Onboarded()
	if onboarded != acct.StripeOnboarded {
		if err := s.store.SetRestaurantOnboarded(ctx, database.SetRestaurantOnboardedParams{
			ID:              restaurantID,
			StripeOnboarded: onboarded,
		}); err != nil {
			return nil, fmt.Errorf("update onboarded: %w", err)
		}
	}

	return &PaymentAccountStatus{
		HasAccount:       true,
		AccountID:        accountID,
		Onboarded:        onboarded,
		ChargesEnabled:   st.ChargesEnabled,
		PayoutsEnabled:   st.PayoutsEnabled,
		DetailsSubmitted: st.DetailsSubmitted,
	}, nil
}

func (s *AccountService) account(ctx context.Context, restaurantID uuid.UUID) (database.GetRestaurantPaymentAccountRow, error) {
	acct, err := s.store.GetRestaurantPaymentAccount(ctx, restaurantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return acct, ErrRestaurantNotFound
		}
		return acct, fmt.Errorf("get payment account: %w", err)
	}
	return acct, nil
}
