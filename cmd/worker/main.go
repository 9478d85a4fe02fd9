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

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/joao-fontenele/storefront/internal/config"
	"github.com/joao-fontenele/storefront/internal/domain"
	"github.com/joao-fontenele/storefront/internal/messaging"
	"github.com/joao-fontenele/storefront/internal/telemetry"
	"github.com/joao-fontenele/storefront/internal/worker"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if len(cfg.KafkaBrokers) == 0 {
		logger.Error("KAFKA_BROKERS environment variable is required")
		os.Exit(1)
	}

	emailServiceURL := os.Getenv("EMAIL_SERVICE_URL")
	if emailServiceURL == "" {
		logger.Error("EMAIL_SERVICE_URL environment variable is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.OTLPEndpoint, "receipt-worker", "0.1.0")
		if err != nil {
			logger.Error("failed to initialize tracer", "error", err)
			os.Exit(1)
		}
		defer func() { _ = shutdownTracer(context.Background()) }()
	}

	consumer := messaging.NewConsumer(cfg.KafkaBrokers, messaging.TopicOrderReceived, "receipt-worker")
	defer func() { _ = consumer.Close() }()

	httpClient := &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	receipts := worker.NewReceiptHandler(emailServiceURL, httpClient, logger)

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	logger.Info("starting receipt worker", "brokers", cfg.KafkaBrokers)

	if err := consumer.Consume(ctx, messaging.DecodeJSON[domain.OrderReceivedEvent](receipts.Handle)); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("consumer stopped")
			return
		}
		logger.Error("consumer error", "error", err)
		os.Exit(1)
	}
}
