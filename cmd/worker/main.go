package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/railbooking/config"
	"github.com/Domenick1991/railbooking/internal/bootstrap"
	"github.com/Domenick1991/railbooking/internal/fare"
	"github.com/Domenick1991/railbooking/internal/logger"
	"github.com/Domenick1991/railbooking/internal/notify"
	"github.com/Domenick1991/railbooking/internal/service/booking"
	"github.com/Domenick1991/railbooking/internal/worker"
	"github.com/sirupsen/logrus"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logger.New(cfg.Log).WithField("component", "worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Storage.Driver == "memory" {
		log.Warn("in-memory storage is not shared with the API process; refunds will not be visible there")
	}
	store, err := bootstrap.OpenStorage(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("open storage")
	}
	defer store.Close()

	publisher, err := bootstrap.NewPublisher(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("connect event broker")
	}
	defer publisher.Close()

	bookingService := booking.NewBookingService(
		store.Reservations,
		store.Trains,
		fare.NewCalculator(),
		cfg.Booking,
		log,
		booking.WithPublisher(publisher),
	)
	w := worker.New(bookingService, notify.NewSender(log), log)

	subscriber, err := bootstrap.NewSubscriber(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("subscribe to reservation events")
	}

	consumerErr := make(chan error, 1)
	if subscriber != nil {
		defer subscriber.Close()
		go func() { consumerErr <- subscriber.Consume(ctx, w.Handle) }()
	} else {
		log.Info("events disabled, only reporting stats")
	}

	go w.RunStats(ctx, cfg.Worker.StatsInterval())
	log.WithField("events_driver", cfg.Events.Driver).Info("worker started")

	select {
	case <-ctx.Done():
		log.Info("received signal, shutting down")
	case err := <-consumerErr:
		if err != nil && ctx.Err() == nil {
			log.WithError(err).Error("consumer stopped")
			stop()
			os.Exit(1)
		}
	}
}
