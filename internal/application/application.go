package application

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/support-ticket/request-service/internal/config"
	"github.com/support-ticket/request-service/internal/database"
	"github.com/support-ticket/request-service/internal/event"
	"github.com/support-ticket/request-service/internal/handler"
	"github.com/support-ticket/request-service/internal/router"
	"github.com/support-ticket/request-service/internal/service"
	"go.uber.org/zap"
)

// API wires config, storage, services and the HTTP server together.
type API struct {
	cfg      *config.Config
	log      *zap.Logger
	httpSrv  *http.Server
	producer *event.KafkaProducer
}

// NewAPI builds the application for the api command: validate config, run
// migrations, open the database, assemble handlers.
func NewAPI(cfg *config.Config, log *zap.Logger) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := database.MigrateUp(cfg.DatabaseURL()); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	requestSvc := service.NewRequestService(db)
	producer := event.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopicRequest, log)
	webhook := event.NewWebhookNotifier(cfg.WebhookURL, log)
	events := event.NewFanout(producer, webhook)
	requestHandler := handler.NewRequestHandler(requestSvc, events, log, cfg.StrictTransitions)

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.New(requestHandler, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &API{
		cfg:      cfg,
		log:      log,
		httpSrv:  httpSrv,
		producer: producer,
	}, nil
}

// Run starts the HTTP server and blocks until ctx is cancelled, then shuts
// down gracefully.
func (a *API) Run(ctx context.Context) error {
	host := a.cfg.AppHost
	if host == "0.0.0.0" {
		host = "localhost"
	}
	base := "http://" + host + ":" + a.cfg.HTTPPort
	a.log.Info("http server listening",
		zap.String("addr", a.httpSrv.Addr),
		zap.String("swagger", base+"/swagger"),
		zap.String("health", base+"/health"))

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if err := a.producer.Close(); err != nil {
		a.log.Warn("kafka close", zap.Error(err))
	}
	return nil
}
