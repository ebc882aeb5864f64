package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tableorder/api/internal/database"
	"github.com/tableorder/api/internal/gateway"
	"github.com/tableorder/api/internal/service"
)

const maxWebhookBody = 64 << 10

// WebhookParser verifies processor notifications.
// Satisfied by gateway.Gateway.
type WebhookParser interface {
	ParseWebhook(payload []byte, signature string) (*gateway.WebhookEvent, error)
}

// OrderConfirmer confirms paid orders.
type OrderConfirmer interface {
	ConfirmOrder(ctx context.Context, req service.ConfirmRequest) (*database.Order, error)
}

// WebhookHandler receives payment processor webhooks.
type WebhookHandler struct {
	parser WebhookParser
	orders OrderConfirmer
	log    logrus.FieldLogger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(parser WebhookParser, orders OrderConfirmer, log logrus.FieldLogger) *WebhookHandler {
	return &WebhookHandler{parser: parser, orders: orders, log: log}
}

// RegisterRoutes registers webhook endpoints.
func (h *WebhookHandler) RegisterRoutes(r chi.Router) {
	r.Post("/webhooks/stripe", h.Stripe)
}

// Stripe handles POST /webhooks/stripe. A succeeded payment confirms its
// order. Events for orders that are already confirmed, cancelled or unknown
// are acknowledged so the processor stops retrying; only unexpected
// failures return 5xx.
func (h *WebhookHandler) Stripe(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	event, err := h.parser.ParseWebhook(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, gateway.ErrNotConfigured) {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "webhooks not configured"})
			return
		}
		h.log.WithError(err).Warn("webhook rejected")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid signature"})
		return
	}

	log := h.log.WithFields(logrus.Fields{
		"event_id":          event.ID,
		"event_type":        event.Type,
		"payment_intent_id": event.PaymentIntentID,
	})
	if event.Type != gateway.EventPaymentSucceeded {
		log.Debug("webhook ignored")
		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	orderID, err := uuid.Parse(event.OrderID)
	if err != nil {
		log.Warn("webhook without order id")
		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}
	log = log.WithField("order_id", orderID)

	_, err = h.orders.ConfirmOrder(r.Context(), service.ConfirmRequest{
		OrderID:         orderID,
		Source:          service.SourceWebhook,
		PaymentIntentID: event.PaymentIntentID,
	})
	switch {
	case err == nil:
		log.Info("order confirmed by webhook")
	case errors.Is(err, service.ErrAlreadyProcessed), errors.Is(err, service.ErrInvalidTransition):
		log.WithError(err).Info("webhook for processed order acknowledged")
	case errors.Is(err, service.ErrOrderNotFound):
		log.Warn("webhook for unknown order acknowledged")
	default:
		log.WithError(err).Error("confirm order from webhook")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
