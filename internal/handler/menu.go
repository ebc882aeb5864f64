package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/tableorder/api/internal/database"
)

// MenuStore defines the database methods needed by menu item handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type MenuStore interface {
	ListMenuItemsByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]database.MenuItem, error)
	GetMenuItem(ctx context.Context, arg database.GetMenuItemParams) (database.MenuItem, error)
	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
	UpdateMenuItem(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error)
	SoftDeleteMenuItem(ctx context.Context, arg database.SoftDeleteMenuItemParams) (uuid.UUID, error)
}

// MenuHandler handles menu item CRUD endpoints.
type MenuHandler struct {
	store MenuStore
	log   logrus.FieldLogger
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(store MenuStore, log logrus.FieldLogger) *MenuHandler {
	return &MenuHandler{store: store, log: log}
}

// RegisterRoutes registers menu item endpoints on the given Chi router.
// Expected to be mounted inside a restaurant-scoped subrouter: /restaurants/{rid}/menu-items
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

// menuItemRequest is shared by create and update. IsAvailable defaults to
// true when omitted.
type menuItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Category    string `json:"category"`
	IsAvailable *bool  `json:"is_available"`
}

type menuItemResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Price       string    `json:"price"`
	Category    *string   `json:"category"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toMenuItemResponse(m database.MenuItem) menuItemResponse {
	return menuItemResponse{
		ID:          m.ID,
		Name:        m.Name,
		Description: textPtr(m.Description),
		Price:       numericToString(m.Price),
		Category:    textPtr(m.Category),
		IsAvailable: m.IsAvailable,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

var errNegativePrice = errors.New("negative price")

func parsePrice(s string) (pgtype.Numeric, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return pgtype.Numeric{}, err
	}
	if d.IsNegative() {
		return pgtype.Numeric{}, errNegativePrice
	}
	var n pgtype.Numeric
	if err := n.Scan(d.StringFixed(2)); err != nil {
		return pgtype.Numeric{}, err
	}
	return n, nil
}

// validate checks the request and returns the parsed price, or writes a 400.
func (req *menuItemRequest) validate(w http.ResponseWriter) (pgtype.Numeric, bool) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return pgtype.Numeric{}, false
	}
	if req.Price == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price is required"})
		return pgtype.Numeric{}, false
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		if errors.Is(err, errNegativePrice) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price must be >= 0"})
		} else {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
		}
		return pgtype.Numeric{}, false
	}
	return price, true
}

func (req *menuItemRequest) available() bool {
	return req.IsAvailable == nil || *req.IsAvailable
}

// --- Handlers ---

// List returns all active menu items of the restaurant.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	rid, ok := urlUUID(w, r, "rid", "restaurant")
	if !ok {
		return
	}

	items, err := h.store.ListMenuItemsByRestaurant(r.Context(), rid)
	if err != nil {
		h.log.WithError(err).Error("list menu items")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]menuItemResponse, len(items))
	for i, m := range items {
		resp[i] = toMenuItemResponse(m)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single menu item.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	rid, ok := urlUUID(w, r, "rid", "restaurant")
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id", "menu item")
	if !ok {
		return
	}

	item, err := h.store.GetMenuItem(r.Context(), database.GetMenuItemParams{ID: id, RestaurantID: rid})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		h.log.WithError(err).Error("get menu item")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// Create adds a menu item to the restaurant.
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	rid, ok := urlUUID(w, r, "rid", "restaurant")
	if !ok {
		return
	}

	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	price, ok := req.validate(w)
	if !ok {
		return
	}

	item, err := h.store.CreateMenuItem(r.Context(), database.CreateMenuItemParams{
		RestaurantID: rid,
		Name:         req.Name,
		Description:  optionalText(req.Description),
		Price:        price,
		Category:     optionalText(req.Category),
		IsAvailable:  req.available(),
	})
	if err != nil {
		h.log.WithError(err).Error("create menu item")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toMenuItemResponse(item))
}

// Update replaces a menu item's fields. Orders keep the price they were
// placed with.
func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	rid, ok := urlUUID(w, r, "rid", "restaurant")
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id", "menu item")
	if !ok {
		return
	}

	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	price, ok := req.validate(w)
	if !ok {
		return
	}

	item, err := h.store.UpdateMenuItem(r.Context(), database.UpdateMenuItemParams{
		ID:           id,
		RestaurantID: rid,
		Name:         req.Name,
		Description:  optionalText(req.Description),
		Price:        price,
		Category:     optionalText(req.Category),
		IsAvailable:  req.available(),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		h.log.WithError(err).Error("update menu item")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// Delete soft-deletes a menu item by setting is_active=false. Past order
// items still reference it.
func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	rid, ok := urlUUID(w, r, "rid", "restaurant")
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id", "menu item")
	if !ok {
		return
	}

	_, err := h.store.SoftDeleteMenuItem(r.Context(), database.SoftDeleteMenuItemParams{ID: id, RestaurantID: rid})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		h.log.WithError(err).Error("delete menu item")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
