package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/tableorder/api/internal/config"
	"github.com/tableorder/api/internal/database"
	"github.com/tableorder/api/internal/events"
	"github.com/tableorder/api/internal/gateway"
	mw "github.com/tableorder/api/internal/middleware"
	"github.com/tableorder/api/internal/router"
	"github.com/tableorder/api/internal/ws"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	var gw gateway.Gateway = gateway.Disabled{}
	if cfg.PaymentsEnabled() {
		gw = gateway.NewStripe(gateway.StripeConfig{
			SecretKey:     cfg.StripeSecretKey,
			WebhookSecret: cfg.StripeWebhookSecret,
			Log:           log.WithField("component", "stripe"),
		})
	} else {
		log.Warn("STRIPE_SECRET_KEY not set, card payments disabled")
	}

	var notifier events.Notifier
	if cfg.AMQPURL != "" {
		publisher, err := events.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange, log.WithField("component", "amqp"))
		if err != nil {
			return fmt.Errorf("connect amqp: %w", err)
		}
		defer publisher.Close()
		notifier = publisher
	}

	hub := ws.NewHub(log.WithField("component", "ws"))
	limiter := mw.NewRateLimiter(cfg.PublicRateRPS, cfg.PublicRateBurst)

	r := router.New(cfg, database.New(pool), pool, hub, router.Deps{
		Gateway:  gw,
		Notifier: notifier,
		Limiter:  limiter,
		Log:      log,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hub.Run(gctx) })
	g.Go(func() error { return limiter.Run(gctx) })
	g.Go(func() error {
		log.WithField("port", cfg.Port).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newLogger(cfg *config.Config) (*logrus.Logger, error) {
	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	log.SetLevel(level)
	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log, nil
}
