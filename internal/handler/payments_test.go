package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tableorder/api/internal/handler"
	"github.com/tableorder/api/internal/service"
)

type mockAccountService struct {
	startFn  func(ctx context.Context, restaurantID uuid.UUID) (*service.Onboarding, error)
	statusFn func(ctx context.Context, restaurantID uuid.UUID) (*service.PaymentAccountStatus, error)
}

func (m *mockAccountService) StartOnboarding(ctx context.Context, restaurantID uuid.UUID) (*service.Onboarding, error) {
	return m.startFn(ctx, restaurantID)
}

func (m *mockAccountService) AccountStatus(ctx context.Context, restaurantID uuid.UUID) (*service.PaymentAccountStatus, error) {
	return m.statusFn(ctx, restaurantID)
}

func setupPaymentAccountRouter(svc *mockAccountService) *chi.Mux {
	h := handler.NewPaymentAccountHandler(svc, testLogger())
	return mountStaff("/payment-account", h.RegisterRoutes)
}

func TestPaymentAccount_StartOnboarding(t *testing.T) {
	rid := uuid.New()
	svc := &mockAccountService{
		startFn: func(_ context.Context, restaurantID uuid.UUID) (*service.Onboarding, error) {
			if restaurantID != rid {
				t.Errorf("restaurant: got %s, want %s", restaurantID, rid)
			}
			return &service.Onboarding{AccountID: "acct_123", URL: "https://connect.stripe.com/setup/e/acct_123"}, nil
		},
	}
	r := setupPaymentAccountRouter(svc)

	rr := doAuthRequest(t, r, "POST", "/restaurants/"+rid.String()+"/payment-account/onboarding", nil, testClaims(rid))

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["account_id"] != "acct_123" {
		t.Errorf("account_id: got %v", resp["account_id"])
	}
	if resp["url"] != "https://connect.stripe.com/setup/e/acct_123" {
		t.Errorf("url: got %v", resp["url"])
	}
}

func TestPaymentAccount_StartOnboardingErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"already exists", service.ErrAccountExists, http.StatusConflict},
		{"restaurant gone", service.ErrRestaurantNotFound, http.StatusNotFound},
		{"stripe down", errors.Join(service.ErrGateway, errors.New("timeout")), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rid := uuid.New()
			svc := &mockAccountService{
				startFn: func(context.Context, uuid.UUID) (*service.Onboarding, error) {
					return nil, tt.err
				},
			}
			r := setupPaymentAccountRouter(svc)

			rr := doAuthRequest(t, r, "POST", "/restaurants/"+rid.String()+"/payment-account/onboarding", nil, testClaims(rid))

			if rr.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rr.Code, tt.wantStatus)
			}
		})
	}
}

func TestPaymentAccount_Status(t *testing.T) {
	rid := uuid.New()
	svc := &mockAccountService{
		statusFn: func(context.Context, uuid.UUID) (*service.PaymentAccountStatus, error) {
			return &service.PaymentAccountStatus{
				HasAccount:       true,
				AccountID:        "acct_123",
				Onboarded:        false,
				ChargesEnabled:   true,
				DetailsSubmitted: true,
			}, nil
		},
	}
	r := setupPaymentAccountRouter(svc)

	rr := doAuthRequest(t, r, "GET", "/restaurants/"+rid.String()+"/payment-account", nil, testClaims(rid))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["has_account"] != true || resp["onboarded"] != false {
		t.Errorf("flags: got %v", resp)
	}
	if resp["charges_enabled"] != true || resp["payouts_enabled"] != false {
		t.Errorf("capabilities: got %v", resp)
	}
	if _, ok := resp["cleared"]; ok {
		t.Error("cleared should be omitted when false")
	}
}

func TestPaymentAccount_StatusCleared(t *testing.T) {
	rid := uuid.New()
	svc := &mockAccountService{
		statusFn: func(context.Context, uuid.UUID) (*service.PaymentAccountStatus, error) {
			return &service.PaymentAccountStatus{Cleared: true}, nil
		},
	}
	r := setupPaymentAccountRouter(svc)

	rr := doAuthRequest(t, r, "GET", "/restaurants/"+rid.String()+"/payment-account", nil, testClaims(rid))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeResponse(t, rr)
	if resp["has_account"] != false || resp["cleared"] != true {
		t.Errorf("body: got %v", resp)
	}
}

func TestPaymentAccount_OtherRestaurant(t *testing.T) {
	r := setupPaymentAccountRouter(&mockAccountService{})

	rr := doAuthRequest(t, r, "GET", "/restaurants/"+uuid.New().String()+"/payment-account", nil, testClaims(uuid.New()))

	if rr.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusForbidden)
	}
}
