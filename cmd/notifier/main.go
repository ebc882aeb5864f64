// Command notifier consumes order events from the broker and logs them.
// It is the reference consumer for kitchen printers and other integrations.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"github.com/tableorder/api/internal/config"
	"github.com/tableorder/api/internal/events"
	"golang.org/x/sync/errgroup"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	if err := run(log); err != nil {
		log.WithError(err).Fatal("notifier stopped")
	}
}

func run(log *logrus.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.AMQPURL == "" {
		return fmt.Errorf("AMQP_URL is required")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		return fmt.Errorf("dial amqp: %w", err)
	}
	defer conn.Close()
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("exchange", cfg.AMQPExchange).Info("consuming order events")
		return events.Subscribe(gctx, ch, cfg.AMQPExchange, log, func(e events.Event) {
			log.WithFields(logrus.Fields{
				"type":            e.Type,
				"order_id":        e.OrderID,
				"restaurant_id":   e.RestaurantID,
				"status":          e.Status,
				"previous_status": e.PreviousStatus,
				"payment_method":  e.PaymentMethod,
				"total":           e.Total,
			}).Info("order event")
		})
	})
	g.Go(func() error {
		closed := conn.NotifyClose(make(chan *amqp.Error, 1))
		select {
		case <-gctx.Done():
			return nil
		case err := <-closed:
			if err == nil {
				return nil
			}
			return fmt.Errorf("broker connection closed: %w", err)
		}
	})
	return g.Wait()
}
