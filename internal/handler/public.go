package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
	"github.com/tableorder/api/internal/database"
	"github.com/tableorder/api/internal/service"
)

// PublicMenuStore defines the database methods behind the customer menu.
// Satisfied by *database.Queries.
type PublicMenuStore interface {
	GetRestaurantByID(ctx context.Context, id uuid.UUID) (database.Restaurant, error)
	ListAvailableMenuItems(ctx context.Context, restaurantID uuid.UUID) ([]database.MenuItem, error)
}

// PublicHandler serves the unauthenticated customer flow reached from a
// table's QR code. Orders are addressed by their unguessable ID.
type PublicHandler struct {
	svc   OrderServicer
	store PublicMenuStore
	log   logrus.FieldLogger
}

// NewPublicHandler creates a new PublicHandler.
func NewPublicHandler(svc OrderServicer, store PublicMenuStore, log logrus.FieldLogger) *PublicHandler {
	return &PublicHandler{svc: svc, store: store, log: log}
}

// RegisterRoutes registers customer endpoints. Expected to be mounted at /public.
func (h *PublicHandler) RegisterRoutes(r chi.Router) {
	r.Get("/restaurants/{rid}", h.Restaurant)
	r.Get("/restaurants/{rid}/menu", h.Menu)
	r.Post("/orders", h.CreateOrder)
	r.Get("/orders/{id}", h.GetOrder)
	r.Post("/orders/{id}/cash-payment", h.SelectCash)
	r.Post("/orders/{id}/payment-intent", h.CreatePaymentIntent)
	r.Post("/orders/{id}/confirm", h.Confirm)
	r.Post("/orders/{id}/cancel", h.Cancel)
	r.Get("/devices/{deviceId}/orders", h.DeviceOrders)
}

// --- Request / Response types ---

type createOrderRequest struct {
	RestaurantID string                   `json:"restaurant_id"`
	TableNumber  int32                    `json:"table_number"`
	CustomerName string                   `json:"customer_name"`
	DeviceID     string                   `json:"device_id"`
	Items        []createOrderItemRequest `json:"items"`
}

type createOrderItemRequest struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int32  `json:"quantity"`
	Price      string `json:"price"`
	Comment    string `json:"comment"`
}

type confirmRequest struct {
	PaymentIntentID string `json:"payment_intent_id"`
}

type menuResponse struct {
	Restaurant publicRestaurant   `json:"restaurant"`
	Items      []menuItemResponse `json:"items"`
}

type publicRestaurant struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Phone   *string   `json:"phone"`
	Address *string   `json:"address"`
}

func toPublicRestaurant(r database.Restaurant) publicRestaurant {
	return publicRestaurant{
		ID:      r.ID,
		Name:    r.Name,
		Phone:   textPtr(r.Phone),
		Address: textPtr(r.Address),
	}
}

type paymentIntentResponse struct {
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
	Amount          int64  `json:"amount"`
	PlatformFee     int64  `json:"platform_fee"`
	Currency        string `json:"currency"`
	PaymentType     string `json:"payment_type"`
}

// --- Handlers ---

// Restaurant handles GET /public/restaurants/{rid}: the contact details
// shown on the table's landing page.
func (h *PublicHandler) Restaurant(w http.ResponseWriter, r *http.Request) {
	restaurant, ok := h.loadRestaurant(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toPublicRestaurant(restaurant))
}

// Menu handles GET /public/restaurants/{rid}/menu.
func (h *PublicHandler) Menu(w http.ResponseWriter, r *http.Request) {
	restaurant, ok := h.loadRestaurant(w, r)
	if !ok {
		return
	}

	items, err := h.store.ListAvailableMenuItems(r.Context(), restaurant.ID)
	if err != nil {
		h.log.WithError(err).Error("list menu items")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := menuResponse{
		Restaurant: toPublicRestaurant(restaurant),
		Items:      make([]menuItemResponse, len(items)),
	}
	for i, it := range items {
		resp.Items[i] = toMenuItemResponse(it)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PublicHandler) loadRestaurant(w http.ResponseWriter, r *http.Request) (database.Restaurant, bool) {
	rid, ok := urlUUID(w, r, "rid", "restaurant")
	if !ok {
		return database.Restaurant{}, false
	}

	restaurant, err := h.store.GetRestaurantByID(r.Context(), rid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "restaurant not found"})
			return database.Restaurant{}, false
		}
		h.log.WithError(err).Error("get restaurant")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return database.Restaurant{}, false
	}
	return restaurant, true
}

// CreateOrder handles POST /public/orders.
func (h *PublicHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	rid, err := uuid.Parse(req.RestaurantID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant_id"})
		return
	}

	items := make([]service.CreateOrderItemRequest, len(req.Items))
	for i, it := range req.Items {
		items[i] = service.CreateOrderItemRequest{
			MenuItemID: it.MenuItemID,
			Quantity:   it.Quantity,
			Price:      it.Price,
			Comment:    it.Comment,
		}
	}

	result, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		RestaurantID: rid,
		TableNumber:  req.TableNumber,
		CustomerName: req.CustomerName,
		DeviceID:     req.DeviceID,
		Items:        items,
	})
	if err != nil {
		writeServiceError(w, h.log, "create order", err)
		return
	}

	resp := toOrderResponse(result.Order)
	resp.TableNumber = result.TableNumber
	resp.Items = make([]orderItemResponse, len(result.Items))
	for i, it := range result.Items {
		resp.Items[i] = toOrderItemResponse(it)
	}
	writeJSON(w, http.StatusCreated, resp)
}

// GetOrder handles GET /public/orders/{id}.
func (h *PublicHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := urlUUID(w, r, "id", "order")
	if !ok {
		return
	}

	detail, err := h.svc.GetOrder(r.Context(), orderID, service.Customer())
	if err != nil {
		writeServiceError(w, h.log, "get order", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDetailResponse(*detail))
}

// SelectCash handles POST /public/orders/{id}/cash-payment.
func (h *PublicHandler) SelectCash(w http.ResponseWriter, r *http.Request) {
	orderID, ok := urlUUID(w, r, "id", "order")
	if !ok {
		return
	}

	order, err := h.svc.SelectCashPayment(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, h.log, "select cash payment", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(*order))
}

// CreatePaymentIntent handles POST /public/orders/{id}/payment-intent.
func (h *PublicHandler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	orderID, ok := urlUUID(w, r, "id", "order")
	if !ok {
		return
	}

	intent, err := h.svc.CreateCardPaymentIntent(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, h.log, "create payment intent", err)
		return
	}
	writeJSON(w, http.StatusOK, paymentIntentResponse{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.PaymentIntentID,
		Amount:          intent.Amount,
		PlatformFee:     intent.PlatformFee,
		Currency:        intent.Currency,
		PaymentType:     intent.PaymentType,
	})
}

// Confirm handles POST /public/orders/{id}/confirm, called by the browser
// after the card payment redirect.
func (h *PublicHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	orderID, ok := urlUUID(w, r, "id", "order")
	if !ok {
		return
	}

	var req confirmRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
	}

	order, err := h.svc.ConfirmOrder(r.Context(), service.ConfirmRequest{
		OrderID:         orderID,
		Source:          service.SourceRedirect,
		PaymentIntentID: req.PaymentIntentID,
	})
	if err != nil {
		writeServiceError(w, h.log, "confirm order", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(*order))
}

// Cancel handles POST /public/orders/{id}/cancel.
func (h *PublicHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	orderID, ok := urlUUID(w, r, "id", "order")
	if !ok {
		return
	}

	order, err := h.svc.CancelOrder(r.Context(), orderID, service.Customer())
	if err != nil {
		writeServiceError(w, h.log, "cancel order", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(*order))
}

// DeviceOrders handles GET /public/devices/{deviceId}/orders with optional
// restaurant_id and table_number filters.
func (h *PublicHandler) DeviceOrders(w http.ResponseWriter, r *http.Request) {
	var f service.DeviceOrderFilter
	if s := r.URL.Query().Get("restaurant_id"); s != "" {
		rid, err := uuid.Parse(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant_id"})
			return
		}
		f.RestaurantID = &rid
	}
	if s := r.URL.Query().Get("table_number"); s != "" {
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table_number"})
			return
		}
		number := int32(n)
		f.TableNumber = &number
	}

	orders, err := h.svc.ListDeviceOrders(r.Context(), chi.URLParam(r, "deviceId"), f)
	if err != nil {
		writeServiceError(w, h.log, "list device orders", err)
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, d := range orders {
		resp[i] = toOrderDetailResponse(d)
	}
	writeJSON(w, http.StatusOK, resp)
}
