package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/tableorder/api/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("encode JSON response")
	}
}

// writeServiceError maps service errors to status codes. Only unexpected
// errors are logged.
func writeServiceError(w http.ResponseWriter, log logrus.FieldLogger, op string, err error) {
	var conflict *service.ConflictError
	switch {
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, map[string]string{
			"error":  "order already processed",
			"status": string(conflict.Status),
		})
	case errors.Is(err, service.ErrInvalidTransition), errors.Is(err, service.ErrAccountExists):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case service.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": notFoundMessage(err)})
	case service.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrGateway):
		log.WithError(err).Error(op)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "payment provider error"})
	default:
		log.WithError(err).Error(op)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func notFoundMessage(err error) string {
	for _, target := range []error{
		service.ErrOrderNotFound, service.ErrTableNotFound,
		service.ErrRestaurantNotFound, service.ErrMenuItemNotFound,
	} {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return "not found"
}

// urlUUID parses a UUID path parameter, writing a 400 on failure.
func urlUUID(w http.ResponseWriter, r *http.Request, param, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + what + " ID"})
		return uuid.Nil, false
	}
	return id, true
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func numericToString(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

func optionalText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}
