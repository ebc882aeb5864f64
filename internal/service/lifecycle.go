package service

import "github.com/tableorder/api/internal/database"

// nextStatus is the linear kitchen progression staff can advance through.
var nextStatus = map[database.OrderStatus]database.OrderStatus{
	database.OrderStatusPENDING:   database.OrderStatusCONFIRMED,
	database.OrderStatusCONFIRMED: database.OrderStatusPREPARING,
	database.OrderStatusPREPARING: database.OrderStatusREADY,
	database.OrderStatusREADY:     database.OrderStatusDELIVERED,
}

// isTerminal reports whether no transition leaves s.
func isTerminal(s database.OrderStatus) bool {
	switch s {
	case database.OrderStatusDELIVERED, database.OrderStatusCANCELLED:
		return true
	case database.OrderStatusPENDING, database.OrderStatusPENDINGCASHPAYMENT,
		database.OrderStatusCONFIRMED, database.OrderStatusPREPARING, database.OrderStatusREADY:
		return false
	}
	return false
}

// isPaid reports whether the order has passed payment. Any move into
// CONFIRMED from one of these states is a double payment.
func isPaid(s database.OrderStatus) bool {
	switch s {
	case database.OrderStatusCONFIRMED, database.OrderStatusPREPARING,
		database.OrderStatusREADY, database.OrderStatusDELIVERED:
		return true
	case database.OrderStatusPENDING, database.OrderStatusPENDINGCASHPAYMENT,
		database.OrderStatusCANCELLED:
		return false
	}
	return false
}

// awaitingPayment reports whether a card intent or customer cancel is
// still allowed.
func awaitingPayment(s database.OrderStatus) bool {
	return s == database.OrderStatusPENDING || s == database.OrderStatusPENDINGCASHPAYMENT
}

// cardConfirmable reports whether a card confirmation may move o to
// CONFIRMED. A cash order only qualifies once the customer switched to card
// by opening a card intent; otherwise the cash must be confirmed by staff.
func cardConfirmable(o database.Order) bool {
	switch o.Status {
	case database.OrderStatusPENDING:
		return true
	case database.OrderStatusPENDINGCASHPAYMENT:
		return o.PaymentMethod.Valid && o.PaymentMethod.PaymentMethod == database.PaymentMethodCARD
	}
	return false
}

func statusStrings(ss ...database.OrderStatus) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = string(s)
	}
	return out
}
