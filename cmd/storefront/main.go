package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/joao-fontenele/storefront/internal/catalog"
	"github.com/joao-fontenele/storefront/internal/config"
	"github.com/joao-fontenele/storefront/internal/health"
	"github.com/joao-fontenele/storefront/internal/messaging"
	"github.com/joao-fontenele/storefront/internal/orders"
	"github.com/joao-fontenele/storefront/internal/server"
	"github.com/joao-fontenele/storefront/internal/store"
	"github.com/joao-fontenele/storefront/internal/telemetry"
)

const (
	serviceName    = "storefront"
	serviceVersion = "0.1.0"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(".env")
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.OTLPEndpoint, serviceName, serviceVersion)
		if err != nil {
			logger.Error("failed to initialize tracer", "error", err)
			os.Exit(1)
		}
		defer func() { _ = shutdownTracer(context.Background()) }()
	}

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(serviceName, serviceVersion)
	if err != nil {
		logger.Error("failed to initialize meter provider", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(context.Background()) }()

	if err := runtime.Start(); err != nil {
		logger.Warn("failed to start runtime metrics", "error", err)
	}

	orderMetrics, err := telemetry.NewOrderMetrics()
	if err != nil {
		logger.Error("failed to register order metrics", "error", err)
		os.Exit(1)
	}

	connectCtx, cancelConnect := context.WithTimeout(ctx, 10*time.Second)
	st, err := store.Open(connectCtx, cfg.DatabaseURL, cfg.DatabaseName)
	cancelConnect()
	if err != nil {
		logger.Warn("store unavailable, running in degraded mode", "error", err)
		st = store.NewUnavailable(err)
	} else {
		logger.Info("store connected", "backend", st.Name())
	}
	defer func() { _ = st.Close() }()

	orderOpts := []orders.Option{orders.WithMetrics(orderMetrics)}
	if len(cfg.KafkaBrokers) > 0 {
		producer := messaging.NewProducer(cfg.KafkaBrokers, messaging.TopicOrderReceived)
		defer func() { _ = producer.Close() }()
		orderOpts = append(orderOpts, orders.WithPublisher(producer))
	}

	catalogSvc := catalog.NewService(st, logger)
	ordersSvc := orders.NewService(st, catalogSvc, logger, orderOpts...)

	readiness := health.NewHandler(serviceVersion)
	readiness.RegisterChecker("store", health.NewSimpleChecker("store", st.Ping))

	router := server.NewRouter(server.Deps{
		Products:       catalog.NewHandler(catalogSvc, logger),
		Orders:         orders.NewHandler(ordersSvc, logger),
		Readiness:      readiness,
		Diagnostics:    health.NewDiagnostics(st, cfg.DatabaseURL != "", logger),
		Metrics:        metricsHandler,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("starting storefront service", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
