package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/example/redshop/internal/config"
	"github.com/example/redshop/internal/notification"
	"github.com/example/redshop/internal/notifier"
	"github.com/example/redshop/internal/rabbitmq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	log := logrus.New()
	if cfg.IsProduction() {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	log.WithFields(logrus.Fields{
		"env":   cfg.Env,
		"queue": cfg.Broker.Queue,
	}).Info("starting notification service")

	// Delivery channel is chosen once here and injected; outside production
	// notifications are only recorded and printed.
	var channel notifier.Notifier
	if cfg.IsProduction() {
		channel = notifier.NewSMTPNotifier(cfg.SMTP)
	} else {
		channel = notifier.NewLogNotifier(log.WithField("component", "notifier"))
	}

	dispatcher := notification.NewDispatcher(channel, log.WithField("component", "dispatcher"))

	// A broker that cannot be reached at startup is fatal; exit non-zero
	// instead of degrading silently.
	consumer, err := rabbitmq.NewConsumer(cfg.Broker, log.WithField("component", "consumer"))
	if err != nil {
		log.WithError(err).Fatal("failed to connect to broker")
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- consumer.Run(ctx, dispatcher.Handle)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info("shutting down")
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.WithError(err).Fatal("consumer stopped")
		}
	}
}
