package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tableorder/api/internal/database"
	"github.com/tableorder/api/internal/events"
)

func metadataOf(t *testing.T, l database.PaymentLog) map[string]any {
	t.Helper()
	require.True(t, l.Metadata.Valid, "metadata is null")
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(l.Metadata.String), &m))
	return m
}

func requireConflict(t *testing.T, err error, status database.OrderStatus) {
	t.Helper()
	require.ErrorIs(t, err, ErrAlreadyProcessed)
	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, status, conflict.Status)
}

// requireBlocked checks that l records a rejected attempt that left the
// order in status.
func requireBlocked(t *testing.T, l database.PaymentLog, action database.PaymentLogAction, status database.OrderStatus) {
	t.Helper()
	assert.Equal(t, action, l.Action)
	assert.Equal(t, string(status), l.PreviousStatus.String)
	assert.Equal(t, string(status), l.NewStatus.String)
	assert.NotEmpty(t, metadataOf(t, l)["reason"])
}

// --- SelectCashPayment ---

func TestSelectCashPayment_FromPending(t *testing.T) {
	f := newFixture(t)
	o := f.orderIn(t, database.OrderStatusPENDING)

	got, err := f.svc.SelectCashPayment(context.Background(), o.ID)
	require.NoError(t, err)

	assert.Equal(t, database.OrderStatusPENDINGCASHPAYMENT, got.Status)
	assert.Equal(t, database.PaymentMethodCASH, got.PaymentMethod.PaymentMethod)
	assert.Equal(t, fmt.Sprintf("cash_payment_%d", testNow.UnixMilli()), got.PaymentID.String)
	assert.True(t, f.db.lastTx().committed)

	logs := f.store.logsFor(o.ID)
	require.Len(t, logs, 1)
	assert.Equal(t, database.PaymentLogActionCashSelected, logs[0].Action)
	assert.True(t, numericEquals(logs[0].Amount, "25.00"))
	assert.Equal(t, got.PaymentID.String, logs[0].PaymentID.String)
	assert.Equal(t, "PENDING", logs[0].PreviousStatus.String)
	assert.Equal(t, "PENDING_CASH_PAYMENT", logs[0].NewStatus.String)

	require.Len(t, f.notes.events, 1)
	assert.Equal(t, events.TypePaymentSelected, f.notes.events[0].Type)
	assert.Equal(t, "PENDING", f.notes.events[0].PreviousStatus)
	assert.Equal(t, "CASH", f.notes.events[0].PaymentMethod)
}

func TestSelectCashPayment_RepeatIsNoop(t *testing.T) {
	f := newFixture(t)
	o := f.orderIn(t, database.OrderStatusPENDING)
	ctx := context.Background()

	first, err := f.svc.SelectCashPayment(ctx, o.ID)
	require.NoError(t, err)
	second, err := f.svc.SelectCashPayment(ctx, o.ID)
	require.NoError(t, err)

	assert.Equal(t, first.PaymentID, second.PaymentID)
	assert.Len(t, f.store.logsFor(o.ID), 1)
	assert.Len(t, f.notes.events, 1)
}

func TestSelectCashPayment_AlreadyPaid(t *testing.T) {
	for _, status := range []database.OrderStatus{
		database.OrderStatusCONFIRMED,
		database.OrderStatusPREPARING,
		database.OrderStatusREADY,
		database.OrderStatusDELIVERED,
	} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(t)
			o := f.orderIn(t, status)

			_, err := f.svc.SelectCashPayment(context.Background(), o.ID)
			requireConflict(t, err, status)

			assert.Equal(t, status, f.store.order(o.ID).Status)
			assert.False(t, f.store.order(o.ID).PaymentMethod.Valid)
			assert.True(t, f.db.lastTx().committed, "blocked entry must be committed")

			logs := f.store.logsFor(o.ID)
			require.Len(t, logs, 1)
			requireBlocked(t, logs[0], database.PaymentLogActionBackToPayment, status)
			assert.Equal(t, "PENDING_CASH_PAYMENT", metadataOf(t, logs[0])["attemptedStatus"])
			assert.Empty(t, f.notes.events)
		})
	}
}

func TestSelectCashPayment_PaidConcurrently(t *testing.T) {
	f := newFixture(t)
	o := f.orderIn(t, database.OrderStatusPENDING)
	f.store.beforeWrite = func(id uuid.UUID) {
		f.store.setStatus(id, database.OrderStatusCONFIRMED)
	}

	_, err := f.svc.SelectCashPayment(context.Background(), o.ID)
	requireConflict(t, err, database.OrderStatusCONFIRMED)
	assert.True(t, f.db.lastTx().committed, "blocked entry must be committed")

	logs := f.store.logsFor(o.ID)
	require.Len(t, logs, 1)
	requireBlocked(t, logs[0], database.PaymentLogActionBackToPayment, database.OrderStatusCONFIRMED)
	assert.Equal(t, "PENDING_CASH_PAYMENT", metadataOf(t, logs[0])["attemptedStatus"])
	assert.Empty(t, f.notes.events)
}

func TestSelectCashPayment_Cancelled(t *testing.T) {
	f := newFixture(t)
	o := f.orderIn(t, database.OrderStatusCANCELLED)

	_, err := f.svc.SelectCashPayment(context.Background(), o.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, f.store.logsFor(o.ID))
	assert.False(t, f.db.lastTx().committed)
}

func TestSelectCashPayment_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SelectCashPayment(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestSelectCashPayment_AuditFailureDoesNotAbort(t *testing.T) {
	f := newFixture(t)
	o := f.orderIn(t, database.OrderStatusPENDING)
	f.store.logErr = errors.New("disk full")

	got, err := f.svc.SelectCashPayment(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, database.OrderStatusPENDINGCASHPAYMENT, got.Status)

	entry := f.hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "payment log write failed", entry.Message)

	tx := f.db.lastTx()
	assert.True(t, tx.committed)
	require.Len(t, tx.savepoints, 1)
	assert.True(t, tx.savepoints[0].rolledBack)
}

// --- ConfirmCashPayment ---

func TestConfirmCashPayment(t *testing.T) {
	f := newFixture(t)
	o := f.orderIn(t, database.OrderStatusPENDING)
	ctx := context.Background()
	_, err := f.svc.SelectCashPayment(ctx, o.ID)
	require.NoError(t, err)
	f.notes.events = nil

	got, err := f.svc.ConfirmCashPayment(ctx, f.restaurant, o.ID)
	require.NoError(t, err)
	assert.Equal(t, database.OrderStatusCONFIRMED, got.Status)

	logs := f.store.logsFor(o.ID)
	require.Len(t, logs, 2)
	assert.Equal(t, database.PaymentLogActionCashConfirmed, logs[1].Action)
	assert.Equal(t, "PENDING_CASH_PAYMENT", logs[1].PreviousStatus.String)
	assert.Equal(t, "CONFIRMED", logs[1].NewStatus.String)
	meta := metadataOf(t, logs[1])
	assert.Equal(t, "cash", meta["paymentMethod"])
	assert.Equal(t, "staff", meta["confirmedBy"])

	require.Len(t, f.notes.events, 1)
	assert.Equal(t, events.TypeOrderStatusChanged, f.notes.events[0].Type)
	assert.Equal(t, "CONFIRMED", f.notes.events[0].Status)
}

func TestConfirmCashPayment_Twice(t *testing.T) {
	f := newFixture(t)
	o := f.orderIn(t, database.OrderStatusPENDINGCASHPAYMENT)
	ctx := context.Background()

	_, err := f.svc.ConfirmCashPayment(ctx, f.restaurant, o.ID)
	require.NoError(t, err)
	_, err = f.svc.ConfirmCashPayment(ctx, f.restaurant, o.ID)
	requireConflict(t, err, database.OrderStatusCONFIRMED)

	logs := f.store.logsFor(o.ID)
	require.Len(t, logs, 2)
	requireBlocked(t, logs[1], database.PaymentLogActionBackToPayment, database.OrderStatusCONFIRMED)
}

func TestConfirmCashPayment_NotAwaitingCash(t *testing.T) {
	f := newFixture(t)
	o := f.orderIn(t, database.OrderStatusPENDING)

	_, err := f.svc.ConfirmCashPayment(context.Background(), f.restaurant, o.ID)
	var te *TransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, database.OrderStatusPENDING, te.From)
	assert.Equal(t, database.OrderStatusCONFIRMED, te.To)
}

func TestConfirmCashPayment_OtherRestaurant(t *testing.T) {
	f := newFixture(t)
	o := f.orderIn(t, database.OrderStatusPENDINGCASHPAYMENT)

	_, err := f.svc.ConfirmCashPayment(context.Background(), uuid.New(), o.ID)
	require.ErrorIs(t, err, ErrOrderNotFound)
	assert.Equal(t, database.OrderStatusPENDINGCASHPAYMENT, f.store.order(o.ID).Status)
	assert.Empty(t, f.store.logsFor(o.ID))
}

// --- ConfirmOrder ---

func TestConfirmOrder_CardWebhook(t *testing.T) {
	f := newFixture(t)
	o := f.orderIn(t, database.OrderStatusPENDING)
	ctx := context.Background()
	intent, err := f.svc.CreateCardPaymentIntent(ctx, o.ID)
	require.NoError(t, err)

	got, err := f.svc.ConfirmOrder(ctx, ConfirmRequest{
		OrderID:         o.ID,
		Source:          SourceWebhook,
		PaymentIntentID: intent.PaymentIntentID,
	})
	require.NoError(t, err)
	assert.Equal(t, database.OrderStatusCONFIRMED, got.Status)

	logs := f.store.logsFor(o.ID)
	require.Len(t, logs, 2)
	assert.Equal(t, database.PaymentLogActionStatusChange, logs[1].Action)
	assert.Equal(t, "PENDING", logs[1].PreviousStatus.String)
	assert.Equal(t, "CONFIRMED", logs[1].NewStatus.String)
	meta := metadataOf(t, logs[1])
	assert.Equal(t, "card", meta["paymentMethod"])
	assert.Equal(t, "webhook", meta["source"])
	assert.Equal(t, intent.PaymentIntentID, meta["paymentIntentId"])
}

func TestConfirmOrder_DefaultsToRedirect(t *testing.T) {
	f := newFixture(t)
	o := f.orderIn(t, database.OrderStatusPENDING)

	_, err := f.svc.ConfirmOrder(context.Background(), ConfirmRequest{OrderID: o.ID})
	require.NoError(t, err)

	logs := f.store.logsFor(o.ID)
	require.Len(t, logs, 1)
	assert.Equal(t, "redirect", metadataOf(t, logs[0])["source"])
	assert.Equal(t, "card", metadataOf(t, logs[0])["paymentMethod"])
}

// Redirect and webhook both report the same payment: the first wins and
// the second is logged as blocked.
func TestConfirmOrder_DoubleConfirmation(t *testing.T) {
	f := newFixture(t)
	o := f.orderIn(t, database.OrderStatusPENDING)
	ctx := context.Background()

	_, err := f.svc.ConfirmOrder(ctx, ConfirmRequest{OrderID: o.ID, Source: SourceRedirect})
	require.NoError(t, err)
	_, err = f.svc.ConfirmOrder(ctx, ConfirmRequest{OrderID: o.ID, Source: SourceWebhook})
	requireConflict(t, err, database.OrderStatusCONFIRMED)

	logs := f.store.logsFor(o.ID)
	require.Len(t, logs, 2)
	requireBlocked(t, logs[1], database.PaymentLogActionStatusChange, database.OrderStatusCONFIRMED)
	assert.Equal(t, "webhook", metadataOf(t, logs[1])["source"])
	assert.Len(t, f.notes.events, 1)
}

func TestConfirmOrder_ConcurrentWriterWins(t *testing.T) {
	f := newFixture(t)
	o := f.orderIn(t, database.OrderStatusPENDING)
	f.store.beforeWrite = func(id uuid.UUID) {
		f.store.setStatus(id, database.OrderStatusCONFIRMED)
	}

	_, err := f.svc.ConfirmOrder(context.Background(), ConfirmRequest{OrderID: o.ID})
	requireConflict(t, err, database.OrderStatusCONFIRMED)
	assert.Empty(t, f.notes.events)

	logs := f.store.logsFor(o.ID)
	require.Len(t, logs, 1)
	requireBlocked(t, logs[0], database.PaymentLogActionStatusChange, database.OrderStatusCONFIRMED)
	assert.Equal(t, "CONFIRMED", metadataOf(t, logs[0])["attemptedStatus"])
}

func TestConfirmOrder_CancelledConcurrently(t *testing.T) {
	f := newFixture(t)
	o := f.orderIn(t, database.OrderStatusPENDING)
	f.store.beforeWrite = func(id uuid.UUID) {
		f.store.setStatus(id, database.OrderStatusCANCELLED)
	}

	_, err := f.svc.ConfirmOrder(context.Background(), ConfirmRequest{OrderID: o.ID})
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.NotErrorIs(t, err, ErrAlreadyProcessed)
	var te *TransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, database.OrderStatusCANCELLED, te.From)
	assert.Empty(t, f.store.logsFor(o.ID))
	assert.Empty(t, f.notes.events)
}

// A customer who chose cash cannot confirm the order through the card
// redirect; only staff confirm cash.
func TestConfirmOrder_CashOrderWithoutCardIntent(t *testing.T) {
	f := newFixture(t)
	o := f.placeOrder(t)
	ctx := context.Background()
	_, err := f.svc.SelectCashPayment(ctx, o.ID)
	require.NoError(t, err)
	f.notes.events = nil

	for _, source := range []string{SourceRedirect, SourceWebhook} {
		_, err = f.svc.ConfirmOrder(ctx, ConfirmRequest{OrderID: o.ID, Source: source})
		require.ErrorIs(t, err, ErrInvalidTransition, "source %s", source)
	}

	got := f.store.order(o.ID)
	assert.Equal(t, database.OrderStatusPENDINGCASHPAYMENT, got.Status)
	assert.Equal(t, database.PaymentMethodCASH, got.PaymentMethod.PaymentMethod)
	logs := f.store.logsFor(o.ID)
	require.Len(t, logs, 1)
	assert.Equal(t, database.PaymentLogActionCashSelected, logs[0].Action)
	assert.Empty(t, f.notes.events)
}

// Switching from cash to card opens an intent, after which the card
// confirmation is accepted.
func TestConfirmOrder_CashThenCard(t *testing.T) {
	f := newFixture(t)
	o := f.placeOrder(t)
	ctx := context.Background()
	_, err := f.svc.SelectCashPayment(ctx, o.ID)
	require.NoError(t, err)
	intent, err := f.svc.CreateCardPaymentIntent(ctx, o.ID)
	require.NoError(t, err)

	got, err := f.svc.ConfirmOrder(ctx, ConfirmRequest{
		OrderID:         o.ID,
		Source:          SourceWebhook,
		PaymentIntentID: intent.PaymentIntentID,
	})
	require.NoError(t, err)
	assert.Equal(t, database.OrderStatusCONFIRMED, got.Status)

	logs := f.store.logsFor(o.ID)
	require.Len(t, logs, 3)
	assert.Equal(t, "PENDING_CASH_PAYMENT", logs[2].PreviousStatus.String)
	assert.Equal(t, "card", metadataOf(t, logs[2])["paymentMethod"])
}

func TestConfirmOrder_Cancelled(t *testing.T) {
	f := newFixture(t)
	o := f.orderIn(t, database.OrderStatusCANCELLED)

	_, err := f.svc.ConfirmOrder(context.Background(), ConfirmRequest{OrderID: o.ID})
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, f.store.logsFor(o.ID))
}

// --- AdvanceStatus ---

func TestAdvanceStatus_RaceLosesToStaffCancel(t *testing.T) {
	f := newFixture(t)
	o := f.orderIn(t, database.OrderStatusCONFIRMED)
	f.store.beforeWrite = func(id uuid.UUID) {
		f.store.setStatus(id, database.OrderStatusCANCELLED)
	}

	_, err := f.svc.AdvanceStatus(context.Background(), f.restaurant, o.ID, database.OrderStatusPREPARING)
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, f.store.logsFor(o.ID))
}

func TestAdvanceStatus_KitchenProgression(t *testing.T) {
	f := newFixture(t)
	o := f.orderIn(t, database.OrderStatusCONFIRMED)
	ctx := context.Background()

	for _, next := range []database.OrderStatus{
		database.OrderStatusPREPARING,
		database.OrderStatusREADY,
		database.OrderStatusDELIVERED,
	} {
		got, err := f.svc.AdvanceStatus(ctx, f.restaurant, o.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, got.Status)
	}

	logs := f.store.logsFor(o.ID)
	require.Len(t, logs, 3)
	for _, l := range logs {
		assert.Equal(t, database.PaymentLogActionStatusChange, l.Action)
		assert.Equal(t, "staff", metadataOf(t, l)["changedBy"])
	}
	assert.Equal(t, "READY", logs[2].PreviousStatus.String)
	assert.Equal(t, "DELIVERED", logs[2].NewStatus.String)
	assert.Len(t, f.notes.events, 3)
}

func TestAdvanceStatus_InvalidStatus(t *testing.T) {
	f := newFixture(t)
	o := f.orderIn(t, database.OrderStatusCONFIRMED)

	_, err := f.svc.AdvanceStatus(context.Background(), f.restaurant, o.ID, database.OrderStatus("COOKING"))
	require.ErrorIs(t, err, ErrInvalidStatus)
	assert.True(t, IsValidation(err))
	assert.Empty(t, f.db.txs)
}

func TestAdvanceStatus_ConfirmsCashOrder(t *testing.T) {
	f := newFixture(t)
	o := f.orderIn(t, database.OrderStatusPENDINGCASHPAYMENT)

	got, err := f.svc.AdvanceStatus(context.Background(), f.restaurant, o.ID, database.OrderStatusCONFIRMED)
	require.NoError(t, err)
	assert.Equal(t, database.OrderStatusCONFIRMED, got.Status)

	logs := f.store.logsFor(o.ID)
	require.Len(t, logs, 1)
	assert.Equal(t, database.PaymentLogActionCashConfirmed, logs[0].Action)
}

func TestAdvanceStatus_OtherRestaurant(t *testing.T) {
	f := newFixture(t)
	o := f.orderIn(t, database.OrderStatusCONFIRMED)

	_, err := f.svc.AdvanceStatus(context.Background(), uuid.New(), o.ID, database.OrderStatusPREPARING)
	require.ErrorIs(t, err, ErrOrderNotFound)
	assert.Equal(t, database.OrderStatusCONFIRMED, f.store.order(o.ID).Status)
}

// --- CancelOrder ---

func TestCancelOrder(t *testing.T) {
	tests := []struct {
		from     database.OrderStatus
		staff    bool
		wantErr  error
		wantLogs int
	}{
		{database.OrderStatusPENDING, false, nil, 1},
		{database.OrderStatusPENDINGCASHPAYMENT, false, nil, 1},
		{database.OrderStatusCONFIRMED, false, ErrInvalidTransition, 0},
		{database.OrderStatusPREPARING, false, ErrInvalidTransition, 0},
		{database.OrderStatusREADY, false, ErrInvalidTransition, 0},
		{database.OrderStatusDELIVERED, false, ErrInvalidTransition, 0},
		{database.OrderStatusCANCELLED, false, nil, 0},
		{database.OrderStatusPENDING, true, nil, 1},
		{database.OrderStatusPENDINGCASHPAYMENT, true, nil, 1},
		{database.OrderStatusCONFIRMED, true, nil, 1},
		{database.OrderStatusPREPARING, true, nil, 1},
		{database.OrderStatusREADY, true, nil, 1},
		{database.OrderStatusDELIVERED, true, ErrInvalidTransition, 0},
		{database.OrderStatusCANCELLED, true, nil, 0},
	}
	for _, tt := range tests {
		actor := Customer()
		name := "customer/" + string(tt.from)
		if tt.staff {
			name = "staff/" + string(tt.from)
		}
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			o := f.orderIn(t, tt.from)
			if tt.staff {
				actor = Staff(f.restaurant)
			}

			got, err := f.svc.CancelOrder(context.Background(), o.ID, actor)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.from, f.store.order(o.ID).Status)
			} else {
				require.NoError(t, err)
				assert.Equal(t, database.OrderStatusCANCELLED, got.Status)
			}

			logs := f.store.logsFor(o.ID)
			require.Len(t, logs, tt.wantLogs)
			if tt.wantLogs == 1 {
				assert.Equal(t, actor.String(), metadataOf(t, logs[0])["cancelledBy"])
				assert.Equal(t, "CANCELLED", logs[0].NewStatus.String)
			}
			assert.Len(t, f.notes.events, tt.wantLogs)
		})
	}
}

// --- State machine ---

// TestLifecycle_AllPairs drives every (from, to) pair through the staff
// entry point and checks the outcome against the allowed edges.
func TestLifecycle_AllPairs(t *testing.T) {
	type edge struct{ from, to database.OrderStatus }
	allowed := map[edge]bool{
		{database.OrderStatusPENDING, database.OrderStatusCONFIRMED}:            true,
		{database.OrderStatusPENDINGCASHPAYMENT, database.OrderStatusCONFIRMED}: true,
		{database.OrderStatusCONFIRMED, database.OrderStatusPREPARING}:          true,
		{database.OrderStatusPREPARING, database.OrderStatusREADY}:              true,
		{database.OrderStatusREADY, database.OrderStatusDELIVERED}:              true,
		{database.OrderStatusPENDING, database.OrderStatusCANCELLED}:            true,
		{database.OrderStatusPENDINGCASHPAYMENT, database.OrderStatusCANCELLED}: true,
		{database.OrderStatusCONFIRMED, database.OrderStatusCANCELLED}:          true,
		{database.OrderStatusPREPARING, database.OrderStatusCANCELLED}:          true,
		{database.OrderStatusREADY, database.OrderStatusCANCELLED}:              true,
	}
	paid := map[database.OrderStatus]bool{
		database.OrderStatusCONFIRMED: true,
		database.OrderStatusPREPARING: true,
		database.OrderStatusREADY:     true,
		database.OrderStatusDELIVERED: true,
	}

	for _, from := range database.AllOrderStatusValues() {
		for _, to := range database.AllOrderStatusValues() {
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				f := newFixture(t)
				o := f.orderIn(t, from)

				got, err := f.svc.AdvanceStatus(context.Background(), f.restaurant, o.ID, to)
				switch {
				case from == database.OrderStatusCANCELLED && to == database.OrderStatusCANCELLED:
					require.NoError(t, err)
					assert.Equal(t, database.OrderStatusCANCELLED, got.Status)
					assert.Empty(t, f.store.logsFor(o.ID))
				case allowed[edge{from, to}]:
					require.NoError(t, err)
					assert.Equal(t, to, got.Status)
					assert.Len(t, f.store.logsFor(o.ID), 1)
				case to == database.OrderStatusCONFIRMED && paid[from]:
					requireConflict(t, err, from)
					assert.Equal(t, from, f.store.order(o.ID).Status)
				default:
					require.ErrorIs(t, err, ErrInvalidTransition)
					assert.Equal(t, from, f.store.order(o.ID).Status)
					assert.Empty(t, f.store.logsFor(o.ID))
				}
			})
		}
	}
}

func TestIsTerminalAndIsPaid(t *testing.T) {
	for _, s := range database.AllOrderStatusValues() {
		terminal := s == database.OrderStatusDELIVERED || s == database.OrderStatusCANCELLED
		assert.Equal(t, terminal, isTerminal(s), "isTerminal(%s)", s)
		if terminal {
			_, ok := nextStatus[s]
			assert.False(t, ok, "terminal %s has a successor", s)
		}
	}
	assert.False(t, isPaid(database.OrderStatusCANCELLED))
	assert.False(t, isPaid(database.OrderStatusPENDINGCASHPAYMENT))
	assert.True(t, isPaid(database.OrderStatusDELIVERED))
}

func TestCardConfirmable(t *testing.T) {
	card := database.NullPaymentMethod{PaymentMethod: database.PaymentMethodCARD, Valid: true}
	cash := database.NullPaymentMethod{PaymentMethod: database.PaymentMethodCASH, Valid: true}
	tests := []struct {
		status database.OrderStatus
		method database.NullPaymentMethod
		want   bool
	}{
		{database.OrderStatusPENDING, database.NullPaymentMethod{}, true},
		{database.OrderStatusPENDING, card, true},
		{database.OrderStatusPENDINGCASHPAYMENT, card, true},
		{database.OrderStatusPENDINGCASHPAYMENT, cash, false},
		{database.OrderStatusPENDINGCASHPAYMENT, database.NullPaymentMethod{}, false},
		{database.OrderStatusCONFIRMED, card, false},
		{database.OrderStatusCANCELLED, card, false},
	}
	for _, tt := range tests {
		o := database.Order{Status: tt.status, PaymentMethod: tt.method}
		assert.Equal(t, tt.want, cardConfirmable(o), "%s/%v", tt.status, tt.method)
	}
}
