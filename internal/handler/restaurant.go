package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
	"github.com/tableorder/api/internal/database"
	"golang.org/x/crypto/bcrypt"
)

// RestaurantStore defines the database methods needed by restaurant account handlers.
// Satisfied by *database.Queries.
type RestaurantStore interface {
	GetRestaurantByID(ctx context.Context, id uuid.UUID) (database.Restaurant, error)
	GetRestaurantProfile(ctx context.Context, id uuid.UUID) (database.GetRestaurantProfileRow, error)
	UpdateRestaurantPassword(ctx context.Context, arg database.UpdateRestaurantPasswordParams) (int64, error)
}

// RestaurantHandler serves the signed-in restaurant's own account.
type RestaurantHandler struct {
	store RestaurantStore
	log   logrus.FieldLogger
}

// NewRestaurantHandler creates a new RestaurantHandler.
func NewRestaurantHandler(store RestaurantStore, log logrus.FieldLogger) *RestaurantHandler {
	return &RestaurantHandler{store: store, log: log}
}

// RegisterRoutes registers account endpoints directly on a router already
// scoped to /restaurants/{rid}.
func (h *RestaurantHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Profile)
	r.Put("/password", h.ChangePassword)
}

// --- Request / Response types ---

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type profileCounts struct {
	Tables    int64 `json:"tables"`
	MenuItems int64 `json:"menu_items"`
	Orders    int64 `json:"orders"`
}

type profileResponse struct {
	ID              uuid.UUID     `json:"id"`
	Name            string        `json:"name"`
	Email           string        `json:"email"`
	Phone           *string       `json:"phone"`
	Address         *string       `json:"address"`
	StripeOnboarded bool          `json:"stripe_onboarded"`
	Counts          profileCounts `json:"counts"`
}

// --- Handlers ---

// Profile handles GET /restaurants/{rid}.
func (h *RestaurantHandler) Profile(w http.ResponseWriter, r *http.Request) {
	rid, ok := urlUUID(w, r, "rid", "restaurant")
	if !ok {
		return
	}

	p, err := h.store.GetRestaurantProfile(r.Context(), rid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "restaurant not found"})
			return
		}
		h.log.WithError(err).Error("get restaurant profile")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		ID:              p.ID,
		Name:            p.Name,
		Email:           p.Email,
		Phone:           textPtr(p.Phone),
		Address:         textPtr(p.Address),
		StripeOnboarded: p.StripeOnboarded,
		Counts: profileCounts{
			Tables:    p.TableCount,
			MenuItems: p.MenuItemCount,
			Orders:    p.OrderCount,
		},
	})
}

// ChangePassword handles PUT /restaurants/{rid}/password. The current
// password must match before the new one is stored.
func (h *RestaurantHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	rid, ok := urlUUID(w, r, "rid", "restaurant")
	if !ok {
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "current_password and new_password are required"})
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "password must be at least 8 characters"})
		return
	}

	restaurant, err := h.store.GetRestaurantByID(r.Context(), rid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "restaurant not found"})
			return
		}
		h.log.WithError(err).Error("get restaurant by id")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(restaurant.HashedPassword), []byte(req.CurrentPassword)); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "current password is incorrect"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		h.log.WithError(err).Error("hash password")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	n, err := h.store.UpdateRestaurantPassword(r.Context(), database.UpdateRestaurantPasswordParams{
		ID:             rid,
		HashedPassword: string(hashed),
	})
	if err != nil {
		h.log.WithError(err).Error("update password")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if n == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "restaurant not found"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "password changed"})
}
