package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/tableorder/api/internal/audit"
	"github.com/tableorder/api/internal/database"
	"github.com/tableorder/api/internal/events"
	"github.com/tableorder/api/internal/gateway"
)

// Charge routing of a card intent.
const (
	PaymentTypeDirect  = "direct"
	PaymentTypeConnect = "connect"
)

const anonymousCustomer = "Anonymous"

// DefaultPlatformFeePercent applies when a restaurant has no fee configured.
var DefaultPlatformFeePercent = decimal.NewFromInt(1)

// CardIntent is what the browser needs to complete a card payment.
type CardIntent struct {
	ClientSecret    string
	PaymentIntentID string
	Amount          int64
	PlatformFee     int64
	Currency        string
	PaymentType     string
}

type chargePlan struct {
	paymentType string
	destination string
	fee         int64
	feePercent  decimal.Decimal
	note        string
	cleared     bool
}

// PlatformFee is percent of amountMinor, rounded to the nearest minor unit.
func PlatformFee(amountMinor int64, percent decimal.Decimal) int64 {
	return decimal.NewFromInt(amountMinor).Mul(percent).Div(decimal.NewFromInt(100)).Round(0).IntPart()
}

func planCharge(acct database.GetRestaurantPaymentAccountRow, amount int64) chargePlan {
	if !acct.StripeAccountID.Valid || acct.StripeAccountID.String == "" || !acct.StripeOnboarded {
		return chargePlan{
			paymentType: PaymentTypeDirect,
			note:        "restaurant not onboarded, charged to platform account",
		}
	}
	pct := DefaultPlatformFeePercent
	if acct.PlatformFeePercent.Valid {
		pct = numericToDecimal(acct.PlatformFeePercent)
	}
	return chargePlan{
		paymentType: PaymentTypeConnect,
		destination: acct.StripeAccountID.String,
		fee:         PlatformFee(amount, pct),
		feePercent:  pct,
	}
}

// CreateCardPaymentIntent opens a card payment for an unpaid order. Onboarded
// restaurants get a destination charge minus the platform fee; the rest are
// charged directly. A connected account the processor rejects is cleared
// from the restaurant and the charge falls back to direct.
//
// No row lock is held across the processor call. The card selection is
// stored with a conditional update afterwards, so an order paid in the
// meantime yields a conflict.
func (s *OrderService) CreateCardPaymentIntent(ctx context.Context, orderID uuid.UUID) (*CardIntent, error) {
	store := s.newStore(s.db)
	row, err := store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	o := row.Order

	if isPaid(o.Status) {
		return nil, s.blockStandalone(ctx, o, "order already paid, card payment rejected")
	}
	if !awaitingPayment(o.Status) {
		return nil, &TransitionError{From: o.Status, To: database.OrderStatusCONFIRMED}
	}

	acct, err := store.GetRestaurantPaymentAccount(ctx, o.RestaurantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("get payment account: %w", err)
	}

	total := numericToDecimal(o.Total)
	amount := gateway.MinorUnits(total)
	customer := o.CustomerName.String
	if customer == "" {
		customer = anonymousCustomer
	}
	meta := map[string]string{
		"order_id":        o.ID.String(),
		"restaurant_id":   o.RestaurantID.String(),
		"customer_name":   customer,
		"restaurant_name": row.RestaurantName,
	}

	plan := planCharge(acct, amount)
	intent, err := s.createIntent(ctx, plan, amount, meta)
	if errors.Is(err, gateway.ErrAccountInvalid) && plan.destination != "" {
		log := s.log.WithFields(logrus.Fields{
			"restaurant_id": o.RestaurantID,
			"account_id":    plan.destination,
		})
		log.WithError(err).Warn("connected account rejected, clearing and charging directly")
		if cerr := store.ClearRestaurantStripeAccount(ctx, o.RestaurantID); cerr != nil {
			log.WithError(cerr).Error("clear connected account failed")
		}
		plan = chargePlan{
			paymentType: PaymentTypeDirect,
			note:        "connected account invalid, charged to platform account",
			cleared:     true,
		}
		intent, err = s.createIntent(ctx, plan, amount, meta)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: create intent: %w", ErrGateway, err)
	}

	s.audit.Record(ctx, audit.Entry{
		OrderID:        o.ID,
		Action:         database.PaymentLogActionCardPayment,
		Amount:         decimal.NewNullDecimal(total),
		PaymentID:      intent.ID,
		PreviousStatus: o.Status,
		NewStatus:      o.Status,
		Metadata:       plan.metadata(amount, s.currency),
	})

	updated, err := store.SetOrderCardPayment(ctx, database.SetOrderCardPaymentParams{
		ID:        o.ID,
		PaymentID: optionalText(intent.ID),
	})
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("set card payment: %w", err)
		}
		current, rerr := store.GetOrder(ctx, o.ID)
		if rerr != nil {
			return nil, fmt.Errorf("re-read order: %w", rerr)
		}
		if !isPaid(current.Order.Status) {
			return nil, &TransitionError{From: current.Order.Status, To: database.OrderStatusCONFIRMED}
		}
		return nil, s.blockStandalone(ctx, current.Order, "order paid while card payment was being created")
	}

	s.notify(ctx, events.TypePaymentSelected, updated, o.Status)
	return &CardIntent{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		Amount:          amount,
		PlatformFee:     plan.fee,
		Currency:        s.currency,
		PaymentType:     plan.paymentType,
	}, nil
}

func (s *OrderService) createIntent(ctx context.Context, plan chargePlan, amount int64, meta map[string]string) (*gateway.Intent, error) {
	md := make(map[string]string, len(meta)+1)
	for k, v := range meta {
		md[k] = v
	}
	md["payment_type"] = plan.paymentType
	return s.gateway.CreateIntent(ctx, gateway.IntentParams{
		Amount:         amount,
		Currency:       s.currency,
		Destination:    plan.destination,
		ApplicationFee: plan.fee,
		Metadata:       md,
	})
}

func (s *OrderService) blockStandalone(ctx context.Context, o database.Order, reason string) error {
	s.audit.Record(ctx, blockedEntry(o, database.PaymentLogActionBackToPayment, database.OrderStatusCONFIRMED,
		reason, map[string]any{"paymentMethod": "card"}))
	return &ConflictError{Status: o.Status, Reason: reason}
}

func (p chargePlan) metadata(amount int64, currency string) map[string]any {
	m := map[string]any{
		"paymentMethod": "card",
		"paymentType":   p.paymentType,
		"amountMinor":   amount,
		"currency":      currency,
		"platformFee":   p.fee,
	}
	if p.destination != "" {
		m["destination"] = p.destination
		m["platformFeePercent"] = p.feePercent.String()
	}
	if p.note != "" {
		m["note"] = p.note
	}
	if p.cleared {
		m["accountCleared"] = true
	}
	return m
}
