// Package events carries order lifecycle notifications to dashboards and
// other consumers. Delivery is best effort; dashboards also poll.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tableorder/api/internal/ws"
)

// Event types.
const (
	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"
	TypePaymentSelected    = "order.payment_selected"
)

// Event describes one committed order change.
type Event struct {
	Type           string    `json:"type"`
	OrderID        uuid.UUID `json:"order_id"`
	RestaurantID   uuid.UUID `json:"restaurant_id"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	PaymentMethod  string    `json:"payment_method,omitempty"`
	Total          string    `json:"total"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Notifier receives events after the order change has been committed.
// Implementations must not block the caller for long and report their own
// failures.
type Notifier interface {
	Notify(ctx context.Context, e Event)
}

// Multi fans an event out to several notifiers in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, e Event) {
	for _, n := range m {
		n.Notify(ctx, e)
	}
}

// Nop discards events.
type Nop struct{}

func (Nop) Notify(context.Context, Event) {}

// Broadcaster is the part of the WebSocket hub used here.
type Broadcaster interface {
	BroadcastToRestaurant(restaurantID uuid.UUID, msg ws.Message)
}

// HubNotifier pushes events to the restaurant's dashboard sockets.
type HubNotifier struct {
	hub Broadcaster
	log logrus.FieldLogger
}

func NewHubNotifier(hub Broadcaster, log logrus.FieldLogger) *HubNotifier {
	return &HubNotifier{hub: hub, log: log}
}

func (n *HubNotifier) Notify(_ context.Context, e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		n.log.WithError(err).WithField("order_id", e.OrderID).Error("events: marshal for websocket")
		return
	}
	n.hub.BroadcastToRestaurant(e.RestaurantID, ws.Message{Type: e.Type, Payload: payload})
}
