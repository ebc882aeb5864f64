package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/tableorder/api/internal/auth"
)

type contextKey string

const claimsKey contextKey = "claims"

var (
	ErrMissingToken   = errors.New("missing authorization header")
	ErrMalformedToken = errors.New("invalid authorization format")
	ErrInvalidToken   = errors.New("invalid token")
)

// Verify validates the bearer token of r. When the Authorization header is
// absent and queryParam is set, the token is read from that query parameter
// instead, for clients such as browser WebSockets that cannot set headers.
func Verify(secret string, r *http.Request, queryParam string) (*auth.Claims, error) {
	var token string
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, rest, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || rest == "" {
			return nil, ErrMalformedToken
		}
		token = rest
	} else if queryParam != "" {
		token = r.URL.Query().Get(queryParam)
	}
	if token == "" {
		return nil, ErrMissingToken
	}

	claims, err := auth.ValidateToken(secret, token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authenticate requires a valid access token and stores its claims in the
// request context.
func Authenticate(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := Verify(jwtSecret, r, "")
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireRestaurant rejects requests whose {rid} path value is not the
// restaurant in the token. There is no cross-tenant role.
func RequireRestaurant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
			return
		}

		ridStr := r.PathValue("rid")
		if ridStr == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing restaurant ID"})
			return
		}

		rid, err := uuid.Parse(ridStr)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
			return
		}

		if claims.RestaurantID != rid {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "access denied for this restaurant"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireRole admits only tokens carrying one of roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch claims := ClaimsFromContext(r.Context()); {
			case claims == nil:
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
			case !slices.Contains(roles, claims.Role):
				writeJSON(w, http.StatusForbidden, map[string]string{"error": "role not permitted"})
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// ClaimsFromContext returns the claims stored by Authenticate, or nil.
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// WithClaims stores claims in ctx the way Authenticate does.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
