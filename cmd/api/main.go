package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/example/redshop/internal/api"
	"github.com/example/redshop/internal/catalog"
	"github.com/example/redshop/internal/config"
	"github.com/example/redshop/internal/order"
	"github.com/example/redshop/internal/rabbitmq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	log := newLogger(cfg)
	log.WithFields(logrus.Fields{
		"env":     cfg.Env,
		"port":    cfg.APIPort,
		"queue":   cfg.Broker.Queue,
		"catalog": cfg.CatalogBaseURL,
	}).Info("starting order service")

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	repo := order.NewRepository(db)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		log.WithError(err).Fatal("failed to ensure schema")
	}

	publisher := rabbitmq.NewPublisher(cfg.Broker, log.WithField("component", "publisher"))
	catalogClient := catalog.NewClient(cfg.CatalogBaseURL, cfg.CatalogTimeout)
	orderSvc := order.NewService(repo, catalogClient, publisher, log.WithField("component", "orders"))

	handlers := api.NewHandlers(orderSvc, log.WithField("component", "api"))
	router := api.NewRouter(handlers, log.WithField("component", "api"))

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.APIPort),
		Handler: router,
	}

	go func() {
		log.WithField("addr", server.Addr).Info("order service listening")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown error")
	}
}

func newLogger(cfg config.Config) *logrus.Logger {
	log := logrus.New()
	if cfg.IsProduction() {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}
