package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tableorder/api/internal/audit"
	"github.com/tableorder/api/internal/database"
	"github.com/tableorder/api/internal/service"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
	GetOrder(ctx context.Context, orderID uuid.UUID, actor service.Actor) (*service.OrderDetail, error)
	ListTodayOrders(ctx context.Context, restaurantID uuid.UUID) ([]database.ListRestaurantOrdersSinceRow, error)
	ListDeviceOrders(ctx context.Context, deviceID string, f service.DeviceOrderFilter) ([]service.OrderDetail, error)
	SelectCashPayment(ctx context.Context, orderID uuid.UUID) (*database.Order, error)
	ConfirmCashPayment(ctx context.Context, restaurantID, orderID uuid.UUID) (*database.Order, error)
	CreateCardPaymentIntent(ctx context.Context, orderID uuid.UUID) (*service.CardIntent, error)
	ConfirmOrder(ctx context.Context, req service.ConfirmRequest) (*database.Order, error)
	AdvanceStatus(ctx context.Context, restaurantID, orderID uuid.UUID, to database.OrderStatus) (*database.Order, error)
	CancelOrder(ctx context.Context, orderID uuid.UUID, actor service.Actor) (*database.Order, error)
	GetAuditSummary(ctx context.Context, orderID uuid.UUID, actor service.Actor) (*audit.Summary, error)
}

// OrderHandler serves the restaurant dashboard's order endpoints.
type OrderHandler struct {
	svc OrderServicer
	log logrus.FieldLogger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, log logrus.FieldLogger) *OrderHandler {
	return &OrderHandler{svc: svc, log: log}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted inside a restaurant-scoped subrouter: /restaurants/{rid}/orders
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Post("/{id}/confirm-cash", h.ConfirmCash)
	r.Delete("/{id}", h.Cancel)
	r.Get("/{id}/payment-logs", h.PaymentLogs)
}

// --- Request / Response types ---

type updateStatusRequest struct {
	Status string `json:"status"`
}

type orderResponse struct {
	ID             uuid.UUID           `json:"id"`
	RestaurantID   uuid.UUID           `json:"restaurant_id"`
	RestaurantName string              `json:"restaurant_name,omitempty"`
	TableNumber    int32               `json:"table_number,omitempty"`
	CustomerName   *string             `json:"customer_name"`
	Total          string              `json:"total"`
	Status         string              `json:"status"`
	PaymentMethod  *string             `json:"payment_method"`
	PaymentID      *string             `json:"payment_id"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	Items          []orderItemResponse `json:"items,omitempty"`
}

type orderItemResponse struct {
	ID         uuid.UUID `json:"id"`
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Name       string    `json:"name,omitempty"`
	Quantity   int32     `json:"quantity"`
	Price      string    `json:"price"`
	Comment    *string   `json:"comment"`
}

func toOrderResponse(o database.Order) orderResponse {
	resp := orderResponse{
		ID:           o.ID,
		RestaurantID: o.RestaurantID,
		CustomerName: textPtr(o.CustomerName),
		Total:        numericToString(o.Total),
		Status:       string(o.Status),
		PaymentID:    textPtr(o.PaymentID),
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
	if o.PaymentMethod.Valid {
		s := string(o.PaymentMethod.PaymentMethod)
		resp.PaymentMethod = &s
	}
	return resp
}

func toOrderDetailResponse(d service.OrderDetail) orderResponse {
	resp := toOrderResponse(d.Order)
	resp.RestaurantName = d.RestaurantName
	resp.TableNumber = d.TableNumber
	resp.Items = make([]orderItemResponse, len(d.Items))
	for i, it := range d.Items {
		resp.Items[i] = toOrderItemResponse(it.OrderItem)
		resp.Items[i].Name = it.MenuItemName
	}
	return resp
}

func toOrderItemResponse(it database.OrderItem) orderItemResponse {
	return orderItemResponse{
		ID:         it.ID,
		MenuItemID: it.MenuItemID,
		Quantity:   it.Quantity,
		Price:      numericToString(it.Price),
		Comment:    textPtr(it.Comment),
	}
}

// --- Handlers ---

// List handles GET /restaurants/{rid}/orders: today's orders, newest first.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	rid, ok := urlUUID(w, r, "rid", "restaurant")
	if !ok {
		return
	}

	rows, err := h.svc.ListTodayOrders(r.Context(), rid)
	if err != nil {
		writeServiceError(w, h.log, "list orders", err)
		return
	}

	resp := make([]orderResponse, len(rows))
	for i, row := range rows {
		resp[i] = toOrderResponse(row.Order)
		resp[i].TableNumber = row.TableNumber
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /restaurants/{rid}/orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	rid, ok := urlUUID(w, r, "rid", "restaurant")
	if !ok {
		return
	}
	orderID, ok := urlUUID(w, r, "id", "order")
	if !ok {
		return
	}

	detail, err := h.svc.GetOrder(r.Context(), orderID, service.Staff(rid))
	if err != nil {
		writeServiceError(w, h.log, "get order", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDetailResponse(*detail))
}

// UpdateStatus handles PATCH /restaurants/{rid}/orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	rid, ok := urlUUID(w, r, "rid", "restaurant")
	if !ok {
		return
	}
	orderID, ok := urlUUID(w, r, "id", "order")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}

	order, err := h.svc.AdvanceStatus(r.Context(), rid, orderID, database.OrderStatus(req.Status))
	if err != nil {
		writeServiceError(w, h.log, "update order status", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(*order))
}

// ConfirmCash handles POST /restaurants/{rid}/orders/{id}/confirm-cash.
func (h *OrderHandler) ConfirmCash(w http.ResponseWriter, r *http.Request) {
	rid, ok := urlUUID(w, r, "rid", "restaurant")
	if !ok {
		return
	}
	orderID, ok := urlUUID(w, r, "id", "order")
	if !ok {
		return
	}

	order, err := h.svc.ConfirmCashPayment(r.Context(), rid, orderID)
	if err != nil {
		writeServiceError(w, h.log, "confirm cash payment", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(*order))
}

// Cancel handles DELETE /restaurants/{rid}/orders/{id}.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	rid, ok := urlUUID(w, r, "rid", "restaurant")
	if !ok {
		return
	}
	orderID, ok := urlUUID(w, r, "id", "order")
	if !ok {
		return
	}

	order, err := h.svc.CancelOrder(r.Context(), orderID, service.Staff(rid))
	if err != nil {
		writeServiceError(w, h.log, "cancel order", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(*order))
}

// PaymentLogs handles GET /restaurants/{rid}/orders/{id}/payment-logs.
func (h *OrderHandler) PaymentLogs(w http.ResponseWriter, r *http.Request) {
	rid, ok := urlUUID(w, r, "rid", "restaurant")
	if !ok {
		return
	}
	orderID, ok := urlUUID(w, r, "id", "order")
	if !ok {
		return
	}

	summary, err := h.svc.GetAuditSummary(r.Context(), orderID, service.Staff(rid))
	if err != nil {
		writeServiceError(w, h.log, "get payment logs", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
