package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tableorder/api/internal/service"
)

// AccountServicer defines the onboarding methods needed by the payment
// account handler. Satisfied by *service.AccountService.
type AccountServicer interface {
	StartOnboarding(ctx context.Context, restaurantID uuid.UUID) (*service.Onboarding, error)
	AccountStatus(ctx context.Context, restaurantID uuid.UUID) (*service.PaymentAccountStatus, error)
}

// PaymentAccountHandler exposes the restaurant's connected payment account.
type PaymentAccountHandler struct {
	svc AccountServicer
	log logrus.FieldLogger
}

// NewPaymentAccountHandler creates a new PaymentAccountHandler.
func NewPaymentAccountHandler(svc AccountServicer, log logrus.FieldLogger) *PaymentAccountHandler {
	return &PaymentAccountHandler{svc: svc, log: log}
}

// RegisterRoutes registers payment account endpoints.
// Expected to be mounted at /restaurants/{rid}/payment-account.
func (h *PaymentAccountHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Status)
	r.Post("/onboarding", h.StartOnboarding)
}

type onboardingResponse struct {
	AccountID string `json:"account_id"`
	URL       string `json:"url"`
}

type accountStatusResponse struct {
	HasAccount       bool   `json:"has_account"`
	AccountID        string `json:"account_id,omitempty"`
	Onboarded        bool   `json:"onboarded"`
	ChargesEnabled   bool   `json:"charges_enabled"`
	PayoutsEnabled   bool   `json:"payouts_enabled"`
	DetailsSubmitted bool   `json:"details_submitted"`
	Cleared          bool   `json:"cleared,omitempty"`
}

// StartOnboarding handles POST /restaurants/{rid}/payment-account/onboarding.
func (h *PaymentAccountHandler) StartOnboarding(w http.ResponseWriter, r *http.Request) {
	rid, ok := urlUUID(w, r, "rid", "restaurant")
	if !ok {
		return
	}

	ob, err := h.svc.StartOnboarding(r.Context(), rid)
	if err != nil {
		writeServiceError(w, h.log, "start onboarding", err)
		return
	}
	writeJSON(w, http.StatusCreated, onboardingResponse{AccountID: ob.AccountID, URL: ob.URL})
}

// Status handles GET /restaurants/{rid}/payment-account.
func (h *PaymentAccountHandler) Status(w http.ResponseWriter, r *http.Request) {
	rid, ok := urlUUID(w, r, "rid", "restaurant")
	if !ok {
		return
	}

	st, err := h.svc.AccountStatus(r.Context(), rid)
	if err != nil {
		writeServiceError(w, h.log, "payment account status", err)
		return
	}
	writeJSON(w, http.StatusOK, accountStatusResponse{
		HasAccount:       st.HasAccount,
		AccountID:        st.AccountID,
		Onboarded:        st.Onboarded,
		ChargesEnabled:   st.ChargesEnabled,
		PayoutsEnabled:   st.PayoutsEnabled,
		DetailsSubmitted: st.DetailsSubmitted,
		Cleared:          st.Cleared,
	})
}
