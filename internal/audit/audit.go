// Package audit keeps the append-only payment log of an order.
//
// Writes are best effort: a failed insert is reported through Result and the
// injected logger, and never aborts the operation that triggered it.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/tableorder/api/internal/database"
)

// Store is the persistence needed by the recorder.
// Satisfied by *database.Queries.
type Store interface {
	CreatePaymentLog(ctx context.Context, arg database.CreatePaymentLogParams) (database.PaymentLog, error)
	ListPaymentLogsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.PaymentLog, error)
}

// NewStore builds a Store bound to a pool or transaction.
type NewStore func(db database.DBTX) Store

// Entry is one payment log row to append.
type Entry struct {
	OrderID        uuid.UUID
	Action         database.PaymentLogAction
	Amount         decimal.NullDecimal
	PaymentID      string
	PreviousStatus database.OrderStatus
	NewStatus      database.OrderStatus
	Metadata       map[string]any
}

// Result reports the outcome of a write. Err is set when the row could not
// be stored; Log is nil in that case.
type Result struct {
	Log *database.PaymentLog
	Err error
}

// OK reports whether the entry was stored.
func (r Result) OK() bool { return r.Err == nil }

// Recorder appends entries and builds per-order summaries.
type Recorder struct {
	store    Store
	newStore NewStore
	log      logrus.FieldLogger
}

// NewRecorder creates a Recorder. store is used for standalone writes and
// reads, newStore to bind writes to a caller's transaction.
func NewRecorder(store Store, newStore NewStore, log logrus.FieldLogger) *Recorder {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Recorder{store: store, newStore: newStore, log: log}
}

// Record appends an entry outside of any transaction.
func (r *Recorder) Record(ctx context.Context, e Entry) Result {
	return r.write(ctx, r.store, e)
}

// RecordTx appends an entry inside tx under a savepoint. A failed insert
// rolls back the savepoint only, leaving tx usable.
func (r *Recorder) RecordTx(ctx context.Context, tx pgx.Tx, e Entry) Result {
	sp, err := tx.Begin(ctx)
	if err != nil {
		return r.fail(e, fmt.Errorf("begin savepoint: %w", err))
	}
	defer sp.Rollback(ctx) //nolint:errcheck

	res := r.write(ctx, r.newStore(sp), e)
	if res.Err != nil {
		return res
	}
	if err := sp.Commit(ctx); err != nil {
		return r.fail(e, fmt.Errorf("release savepoint: %w", err))
	}
	return res
}

func (r *Recorder) write(ctx context.Context, store Store, e Entry) Result {
	params, err := e.params()
	if err != nil {
		return r.fail(e, err)
	}
	row, err := store.CreatePaymentLog(ctx, params)
	if err != nil {
		return r.fail(e, fmt.Errorf("create payment log: %w", err))
	}
	r.log.WithFields(logrus.Fields{
		"order_id": e.OrderID,
		"action":   e.Action,
	}).Debug("payment log recorded")
	return Result{Log: &row}
}

func (r *Recorder) fail(e Entry, err error) Result {
	r.log.WithFields(logrus.Fields{
		"order_id": e.OrderID,
		"action":   e.Action,
	}).WithError(err).Error("payment log write failed")
	return Result{Err: err}
}

func (e Entry) params() (database.CreatePaymentLogParams, error) {
	p := database.CreatePaymentLogParams{
		OrderID:        e.OrderID,
		Action:         e.Action,
		PaymentID:      optionalText(e.PaymentID),
		PreviousStatus: optionalText(string(e.PreviousStatus)),
		NewStatus:      optionalText(string(e.NewStatus)),
	}
	if e.Amount.Valid {
		if err := p.Amount.Scan(e.Amount.Decimal.StringFixed(2)); err != nil {
			return p, fmt.Errorf("encode amount: %w", err)
		}
	}
	if len(e.Metadata) > 0 {
		b, err := json.Marshal(e.Metadata)
		if err != nil {
			return p, fmt.Errorf("encode metadata: %w", err)
		}
		p.Metadata = pgtype.Text{String: string(b), Valid: true}
	}
	return p, nil
}

func optionalText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

// SummaryEntry is one log row as exposed to dashboards.
type SummaryEntry struct {
	ID             uuid.UUID                 `json:"id"`
	Action         database.PaymentLogAction `json:"action"`
	Amount         *string                   `json:"amount,omitempty"`
	PaymentID      *string                   `json:"payment_id,omitempty"`
	PreviousStatus *string                   `json:"previous_status,omitempty"`
	NewStatus      *string                   `json:"new_status,omitempty"`
	Details        map[string]any            `json:"details"`
	Timestamp      time.Time                 `json:"timestamp"`
}

// Summary is the read view of an order's payment log.
type Summary struct {
	OrderID                    uuid.UUID                  `json:"order_id"`
	TotalEntries               int                        `json:"total_entries"`
	Entries                    []SummaryEntry             `json:"entries"`
	HasMultiplePaymentAttempts bool                       `json:"has_multiple_payment_attempts"`
	LastPaymentMethod          *database.PaymentLogAction `json:"last_payment_method"`
}

// Summarize returns the order's entries oldest first with derived views.
func (r *Recorder) Summarize(ctx context.Context, orderID uuid.UUID) (*Summary, error) {
	logs, err := r.store.ListPaymentLogsByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list payment logs: %w", err)
	}
	return summarize(orderID, logs, r.log), nil
}

func summarize(orderID uuid.UUID, logs []database.PaymentLog, log logrus.FieldLogger) *Summary {
	s := &Summary{
		OrderID:      orderID,
		TotalEntries: len(logs),
		Entries:      make([]SummaryEntry, 0, len(logs)),
	}
	attempts := 0
	for _, l := range logs {
		if isPaymentAttempt(l.Action) {
			attempts++
			action := l.Action
			s.LastPaymentMethod = &action
		}
		entry := SummaryEntry{
			ID:             l.ID,
			Action:         l.Action,
			PaymentID:      textPtr(l.PaymentID),
			PreviousStatus: textPtr(l.PreviousStatus),
			NewStatus:      textPtr(l.NewStatus),
			Timestamp:      l.CreatedAt,
		}
		if l.Amount.Valid {
			if v, err := l.Amount.Value(); err == nil && v != nil {
				amount := v.(string)
				entry.Amount = &amount
			}
		}
		if l.Metadata.Valid && l.Metadata.String != "" {
			if err := json.Unmarshal([]byte(l.Metadata.String), &entry.Details); err != nil {
				log.WithField("log_id", l.ID).WithError(err).Warn("undecodable payment log metadata")
			}
		}
		s.Entries = append(s.Entries, entry)
	}
	s.HasMultiplePaymentAttempts = attempts > 1
	return s
}

// isPaymentAttempt reports whether the action establishes a payment method.
func isPaymentAttempt(a database.PaymentLogAction) bool {
	switch a {
	case database.PaymentLogActionCashSelected, database.PaymentLogActionCardPayment:
		return true
	}
	return false
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}
