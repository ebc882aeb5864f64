package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tableorder/api/internal/audit"
	"github.com/tableorder/api/internal/database"
	"github.com/tableorder/api/internal/events"
)

// CashTokenPrefix starts the synthesized payment reference of cash orders.
const CashTokenPrefix = "cash_payment_"

// Card confirmation sources.
const (
	SourceRedirect = "redirect"
	SourceWebhook  = "webhook"
)

// ConfirmRequest confirms a card-paid order.
type ConfirmRequest struct {
	OrderID         uuid.UUID
	Source          string
	PaymentIntentID string
}

// SelectCashPayment moves a PENDING order to PENDING_CASH_PAYMENT and
// stores a cash token as its payment reference. Selecting cash again while
// already waiting for cash returns the order unchanged.
func (s *OrderService) SelectCashPayment(ctx context.Context, orderID uuid.UUID) (*database.Order, error) {
	var (
		result  database.Order
		changed bool
	)
	err := s.inTx(ctx, func(tx pgx.Tx, store OrderStore) error {
		o, err := s.lockOrder(ctx, store, orderID, Customer())
		if err != nil {
			return err
		}
		switch {
		case isPaid(o.Status):
			return s.block(ctx, tx, o, database.PaymentLogActionBackToPayment, database.OrderStatusPENDINGCASHPAYMENT,
				"order already paid, cash selection rejected", map[string]any{"paymentMethod": "cash"})
		case o.Status == database.OrderStatusPENDINGCASHPAYMENT:
			result = o
			return nil
		case o.Status != database.OrderStatusPENDING:
			return &TransitionError{From: o.Status, To: database.OrderStatusPENDINGCASHPAYMENT}
		}

		token := fmt.Sprintf("%s%d", CashTokenPrefix, s.now().UnixMilli())
		updated, err := s.apply(ctx, tx, store, o, database.OrderStatusPENDINGCASHPAYMENT, func() (database.Order, error) {
			return store.SelectCashPayment(ctx, database.SelectCashPaymentParams{
				ID:        o.ID,
				PaymentID: optionalText(token),
			})
		}, database.PaymentLogActionCashSelected, map[string]any{"paymentMethod": "cash"})
		if err != nil {
			return err
		}
		result, changed = updated, true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.notify(ctx, events.TypePaymentSelected, result, database.OrderStatusPENDING)
	}
	return &result, nil
}

// ConfirmCashPayment records that staff received the cash and confirms the
// order.
func (s *OrderService) ConfirmCashPayment(ctx context.Context, restaurantID, orderID uuid.UUID) (*database.Order, error) {
	var result database.Order
	err := s.inTx(ctx, func(tx pgx.Tx, store OrderStore) error {
		o, err := s.lockOrder(ctx, store, orderID, Staff(restaurantID))
		if err != nil {
			return err
		}
		result, err = s.confirmCashLocked(ctx, tx, store, o)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, events.TypeOrderStatusChanged, result, database.OrderStatusPENDINGCASHPAYMENT)
	return &result, nil
}

func (s *OrderService) confirmCashLocked(ctx context.Context, tx pgx.Tx, store OrderStore, o database.Order) (database.Order, error) {
	if isPaid(o.Status) {
		return database.Order{}, s.block(ctx, tx, o, database.PaymentLogActionBackToPayment, database.OrderStatusCONFIRMED,
			"order already paid, cash confirmation rejected", map[string]any{"paymentMethod": "cash"})
	}
	if o.Status != database.OrderStatusPENDINGCASHPAYMENT {
		return database.Order{}, &TransitionError{From: o.Status, To: database.OrderStatusCONFIRMED}
	}
	return s.apply(ctx, tx, store, o, database.OrderStatusCONFIRMED, s.moveTo(ctx, store, o, database.OrderStatusCONFIRMED),
		database.PaymentLogActionCashConfirmed, map[string]any{"paymentMethod": "cash", "confirmedBy": "staff"})
}

// ConfirmOrder confirms a card payment reported by the payment redirect or
// a verified webhook. A repeated confirmation is rejected with a conflict
// and leaves a blocked entry in the payment log. An order waiting for cash
// is only accepted if a card intent was opened for it.
func (s *OrderService) ConfirmOrder(ctx context.Context, req ConfirmRequest) (*database.Order, error) {
	source := req.Source
	if source == "" {
		source = SourceRedirect
	}
	var (
		result   database.Order
		previous database.OrderStatus
	)
	err := s.inTx(ctx, func(tx pgx.Tx, store OrderStore) error {
		o, err := s.lockOrder(ctx, store, req.OrderID, Customer())
		if err != nil {
			return err
		}
		meta := map[string]any{"source": source}
		if req.PaymentIntentID != "" {
			meta["paymentIntentId"] = req.PaymentIntentID
		}
		if isPaid(o.Status) {
			return s.block(ctx, tx, o, database.PaymentLogActionStatusChange, database.OrderStatusCONFIRMED,
				"order already confirmed, duplicate payment confirmation", meta)
		}
		if !cardConfirmable(o) {
			return &TransitionError{From: o.Status, To: database.OrderStatusCONFIRMED}
		}
		meta["paymentMethod"] = paymentMethodOf(o)
		previous = o.Status
		result, err = s.apply(ctx, tx, store, o, database.OrderStatusCONFIRMED, s.moveTo(ctx, store, o, database.OrderStatusCONFIRMED),
			database.PaymentLogActionStatusChange, meta)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, events.TypeOrderStatusChanged, result, previous)
	return &result, nil
}

// AdvanceStatus moves an order to the requested status on behalf of staff.
// Only the next linear status is accepted; CONFIRMED on a cash order
// confirms the cash and CANCELLED cancels.
func (s *OrderService) AdvanceStatus(ctx context.Context, restaurantID, orderID uuid.UUID, to database.OrderStatus) (*database.Order, error) {
	if !to.Valid() {
		return nil, ErrInvalidStatus
	}
	if to == database.OrderStatusCANCELLED {
		return s.CancelOrder(ctx, orderID, Staff(restaurantID))
	}

	var (
		result   database.Order
		previous database.OrderStatus
	)
	err := s.inTx(ctx, func(tx pgx.Tx, store OrderStore) error {
		o, err := s.lockOrder(ctx, store, orderID, Staff(restaurantID))
		if err != nil {
			return err
		}
		previous = o.Status

		if to == database.OrderStatusCONFIRMED {
			if o.Status == database.OrderStatusPENDINGCASHPAYMENT {
				result, err = s.confirmCashLocked(ctx, tx, store, o)
				return err
			}
			if isPaid(o.Status) {
				return s.block(ctx, tx, o, database.PaymentLogActionStatusChange, to,
					"order already confirmed", map[string]any{"changedBy": "staff"})
			}
		}
		if isTerminal(o.Status) {
			return &TransitionError{From: o.Status, To: to}
		}
		if next, ok := nextStatus[o.Status]; !ok || next != to {
			return &TransitionError{From: o.Status, To: to}
		}
		result, err = s.apply(ctx, tx, store, o, to, s.moveTo(ctx, store, o, to),
			database.PaymentLogActionStatusChange, map[string]any{"changedBy": "staff"})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, events.TypeOrderStatusChanged, result, previous)
	return &result, nil
}

// CancelOrder moves an order to CANCELLED. Customers may only cancel before
// payment; staff may cancel any order that is not delivered. Cancelling a
// cancelled order returns it unchanged.
func (s *OrderService) CancelOrder(ctx context.Context, orderID uuid.UUID, actor Actor) (*database.Order, error) {
	var (
		result   database.Order
		previous database.OrderStatus
		changed  bool
	)
	err := s.inTx(ctx, func(tx pgx.Tx, store OrderStore) error {
		o, err := s.lockOrder(ctx, store, orderID, actor)
		if err != nil {
			return err
		}
		switch {
		case o.Status == database.OrderStatusCANCELLED:
			result = o
			return nil
		case isTerminal(o.Status),
			!actor.Staff && !awaitingPayment(o.Status):
			return &TransitionError{From: o.Status, To: database.OrderStatusCANCELLED}
		}
		previous = o.Status
		result, err = s.apply(ctx, tx, store, o, database.OrderStatusCANCELLED, s.moveTo(ctx, store, o, database.OrderStatusCANCELLED),
			database.PaymentLogActionStatusChange, map[string]any{"cancelledBy": actor.String()})
		changed = err == nil
		return err
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.notify(ctx, events.TypeOrderStatusChanged, result, previous)
	}
	return &result, nil
}

// --- Transaction plumbing ---

// inTx runs fn in a transaction. A *ConflictError from fn still commits so
// the blocked-attempt entry written by fn is kept; fn never mutates the
// order on that path.
func (s *OrderService) inTx(ctx context.Context, fn func(tx pgx.Tx, store OrderStore) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	fnErr := fn(tx, s.newStore(tx))
	var conflict *ConflictError
	if fnErr != nil && !errors.As(fnErr, &conflict) {
		return fnErr
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return fnErr
}

// lockOrder reads the order FOR NO KEY UPDATE so concurrent transitions of
// the same order serialize on the row.
func (s *OrderService) lockOrder(ctx context.Context, store OrderStore, id uuid.UUID, actor Actor) (database.Order, error) {
	o, err := store.GetOrderForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("lock order: %w", err)
	}
	if !actor.owns(o) {
		return database.Order{}, ErrOrderNotFound
	}
	return o, nil
}

func (s *OrderService) moveTo(ctx context.Context, store OrderStore, o database.Order, to database.OrderStatus) func() (database.Order, error) {
	return func() (database.Order, error) {
		return store.TransitionOrderStatus(ctx, database.TransitionOrderStatusParams{
			Status:           to,
			ID:               o.ID,
			ExpectedStatuses: statusStrings(o.Status),
		})
	}
}

// apply runs a conditional update and logs it under a savepoint. Zero
// updated rows means another writer got there first: the order is re-read
// and a payment attempt on an order paid meanwhile is blocked; anything else
// is rejected as a transition from the new status.
func (s *OrderService) apply(ctx context.Context, tx pgx.Tx, store OrderStore, from database.Order, to database.OrderStatus,
	update func() (database.Order, error), action database.PaymentLogAction, meta map[string]any,
) (database.Order, error) {
	updated, err := update()
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, fmt.Errorf("update order: %w", err)
		}
		current, rerr := store.GetOrderForUpdate(ctx, from.ID)
		if rerr != nil {
			return database.Order{}, fmt.Errorf("re-read order: %w", rerr)
		}
		if isPaid(current.Status) && paysFor(to) {
			return database.Order{}, s.block(ctx, tx, current, blockedAction(action), to,
				"order paid concurrently", meta)
		}
		return database.Order{}, &TransitionError{From: current.Status, To: to}
	}

	s.audit.RecordTx(ctx, tx, audit.Entry{
		OrderID:        updated.ID,
		Action:         action,
		Amount:         amountOf(updated),
		PaymentID:      updated.PaymentID.String,
		PreviousStatus: from.Status,
		NewStatus:      updated.Status,
		Metadata:       meta,
	})
	return updated, nil
}

func paysFor(to database.OrderStatus) bool {
	return to == database.OrderStatusCONFIRMED || to == database.OrderStatusPENDINGCASHPAYMENT
}

// blockedAction is the log action of a rejected attempt. Cash steps are
// logged as a return to payment, as the direct guards do.
func blockedAction(action database.PaymentLogAction) database.PaymentLogAction {
	switch action {
	case database.PaymentLogActionCashSelected, database.PaymentLogActionCashConfirmed:
		return database.PaymentLogActionBackToPayment
	}
	return action
}

// block logs a rejected payment attempt and returns the conflict.
func (s *OrderService) block(ctx context.Context, tx pgx.Tx, o database.Order, action database.PaymentLogAction,
	attempted database.OrderStatus, reason string, meta map[string]any,
) error {
	s.audit.RecordTx(ctx, tx, blockedEntry(o, action, attempted, reason, meta))
	return &ConflictError{Status: o.Status, Reason: reason}
}

func blockedEntry(o database.Order, action database.PaymentLogAction, attempted database.OrderStatus,
	reason string, meta map[string]any,
) audit.Entry {
	m := map[string]any{
		"reason":          reason,
		"attemptedStatus": string(attempted),
	}
	for k, v := range meta {
		m[k] = v
	}
	return audit.Entry{
		OrderID:        o.ID,
		Action:         action,
		Amount:         amountOf(o),
		PaymentID:      o.PaymentID.String,
		PreviousStatus: o.Status,
		NewStatus:      o.Status,
		Metadata:       m,
	}
}

func amountOf(o database.Order) decimal.NullDecimal {
	if !o.Total.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(numericToDecimal(o.Total))
}

func paymentMethodOf(o database.Order) string {
	if o.PaymentMethod.Valid {
		return strings.ToLower(string(o.PaymentMethod.PaymentMethod))
	}
	return "card"
}
