package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/sirupsen/logrus"
	"github.com/tableorder/api/internal/database"
)

// TableStore defines the database methods needed by table handlers.
// Satisfied by *database.Queries.
type TableStore interface {
	ListTablesByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]database.Table, error)
	CreateTable(ctx context.Context, arg database.CreateTableParams) (database.Table, error)
	DeleteTable(ctx context.Context, arg database.DeleteTableParams) (int64, error)
}

// TableHandler manages a restaurant's tables and their QR code targets.
type TableHandler struct {
	store   TableStore
	baseURL string
	log     logrus.FieldLogger
}

// NewTableHandler creates a new TableHandler. baseURL is the public origin
// of the customer app encoded into QR codes.
func NewTableHandler(store TableStore, baseURL string, log logrus.FieldLogger) *TableHandler {
	return &TableHandler{store: store, baseURL: strings.TrimRight(baseURL, "/"), log: log}
}

// RegisterRoutes registers table endpoints.
// Expected to be mounted at /restaurants/{rid}/tables.
func (h *TableHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Delete("/{tid}", h.Delete)
}

type createTableRequest struct {
	Number   int32  `json:"number"`
	Capacity *int32 `json:"capacity"`
}

type tableResponse struct {
	ID        uuid.UUID `json:"id"`
	Number    int32     `json:"number"`
	Capacity  *int32    `json:"capacity"`
	QRCode    string    `json:"qr_code"`
	CreatedAt time.Time `json:"created_at"`
}

func toTableResponse(t database.Table) tableResponse {
	resp := tableResponse{
		ID:        t.ID,
		Number:    t.Number,
		QRCode:    t.QrCode,
		CreatedAt: t.CreatedAt,
	}
	if t.Capacity.Valid {
		c := t.Capacity.Int32
		resp.Capacity = &c
	}
	return resp
}

// QRCodeURL is the customer menu URL printed on a table's QR code.
func QRCodeURL(baseURL string, restaurantID uuid.UUID, number int32) string {
	return fmt.Sprintf("%s/menu/%s/%d", strings.TrimRight(baseURL, "/"), restaurantID, number)
}

// List returns the restaurant's tables ordered by number.
func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	rid, ok := urlUUID(w, r, "rid", "restaurant")
	if !ok {
		return
	}

	tables, err := h.store.ListTablesByRestaurant(r.Context(), rid)
	if err != nil {
		h.log.WithError(err).Error("list tables")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]tableResponse, len(tables))
	for i, t := range tables {
		resp[i] = toTableResponse(t)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create adds a table.
func (h *TableHandler) Create(w http.ResponseWriter, r *http.Request) {
	rid, ok := urlUUID(w, r, "rid", "restaurant")
	if !ok {
		return
	}

	var req createTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Number <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "number must be > 0"})
		return
	}
	capacity := pgtype.Int4{}
	if req.Capacity != nil {
		if *req.Capacity <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "capacity must be > 0"})
			return
		}
		capacity = pgtype.Int4{Int32: *req.Capacity, Valid: true}
	}

	table, err := h.store.CreateTable(r.Context(), database.CreateTableParams{
		RestaurantID: rid,
		Number:       req.Number,
		Capacity:     capacity,
		QrCode:       QRCodeURL(h.baseURL, rid, req.Number),
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "table number already exists"})
			return
		}
		h.log.WithError(err).Error("create table")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toTableResponse(table))
}

// Delete removes a table that has no orders.
func (h *TableHandler) Delete(w http.ResponseWriter, r *http.Request) {
	rid, ok := urlUUID(w, r, "rid", "restaurant")
	if !ok {
		return
	}
	tid, ok := urlUUID(w, r, "tid", "table")
	if !ok {
		return
	}

	n, err := h.store.DeleteTable(r.Context(), database.DeleteTableParams{ID: tid, RestaurantID: rid})
	if err != nil {
		if isForeignKeyViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "table has orders"})
			return
		}
		h.log.WithError(err).Error("delete table")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if n == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
