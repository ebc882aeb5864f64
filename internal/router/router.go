package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/tableorder/api/internal/audit"
	"github.com/tableorder/api/internal/auth"
	"github.com/tableorder/api/internal/config"
	"github.com/tableorder/api/internal/database"
	"github.com/tableorder/api/internal/events"
	"github.com/tableorder/api/internal/gateway"
	"github.com/tableorder/api/internal/handler"
	mw "github.com/tableorder/api/internal/middleware"
	"github.com/tableorder/api/internal/service"
	"github.com/tableorder/api/internal/ws"
)

// Deps are the long-lived collaborators owned by the caller.
type Deps struct {
	Gateway gateway.Gateway
	// Notifier receives events in addition to the dashboard hub. Optional.
	Notifier events.Notifier
	// Limiter throttles the public customer routes. The caller runs its sweeper.
	Limiter *mw.RateLimiter
	Log     logrus.FieldLogger
}

// New creates a Chi router with all application routes wired up.
// Applies authentication, restaurant scoping, and role-based middleware as needed.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub, deps Deps) chi.Router {
	log := deps.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	gw := deps.Gateway
	if gw == nil {
		gw = gateway.Disabled{}
	}
	limiter := deps.Limiter
	if limiter == nil {
		limiter = mw.NewRateLimiter(cfg.PublicRateRPS, cfg.PublicRateBurst)
	}
	notifier := events.Multi{events.NewHubNotifier(hub, log)}
	if deps.Notifier != nil {
		notifier = append(notifier, deps.Notifier)
	}

	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	recorder := audit.NewRecorder(queries, func(db database.DBTX) audit.Store {
		return database.New(db)
	}, log.WithField("component", "audit"))

	orderService := service.NewOrderService(pool, func(db database.DBTX) service.OrderStore {
		return database.New(db)
	}, recorder, service.Options{
		Gateway:  gw,
		Notifier: notifier,
		Log:      log.WithField("component", "orders"),
		Currency: cfg.StripeCurrency,
		Location: cfg.Location(),
	})
	accountService := service.NewAccountService(queries, gw, cfg.BaseURL, log.WithField("component", "accounts"))

	// Auth routes (public)
	handler.NewAuthHandler(queries, cfg.JWTSecret, log).RegisterRoutes(r)

	// Payment processor callbacks, authenticated by signature
	handler.NewWebhookHandler(gw, orderService, log).RegisterRoutes(r)

	// Customer routes: capability is the order id, throttled per IP
	r.Route("/public", func(r chi.Router) {
		r.Use(limiter.Handler)
		handler.NewPublicHandler(orderService, queries, log).RegisterRoutes(r)
	})

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/restaurants/{rid}/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Staff routes (require authentication, scoped to the token's restaurant)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		r.Route("/restaurants/{rid}", func(r chi.Router) {
			r.Use(mw.RequireRestaurant)
			r.Use(mw.RequireRole(auth.RoleOwner))

			handler.NewRestaurantHandler(queries, log).RegisterRoutes(r)
			r.Route("/orders", handler.NewOrderHandler(orderService, log).RegisterRoutes)
			r.Route("/tables", handler.NewTableHandler(queries, cfg.BaseURL, log).RegisterRoutes)
			r.Route("/menu-items", handler.NewMenuHandler(queries, log).RegisterRoutes)
			r.Route("/payment-account", handler.NewPaymentAccountHandler(accountService, log).RegisterRoutes)
		})
	})

	log.Info("router initialized")
	return r
}
