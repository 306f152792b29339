package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/tastykitchen/order-service/internal/dispatcher"
	"github.com/tastykitchen/order-service/internal/messaging"
	"github.com/tastykitchen/order-service/internal/telemetry"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "dispatcher", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	kafkaBrokers := os.Getenv("KAFKA_BROKERS")
	if kafkaBrokers == "" {
		logger.Error("KAFKA_BROKERS environment variable is required")
		os.Exit(1)
	}
	brokers := strings.Split(kafkaBrokers, ",")

	producer := messaging.NewProducer(brokers, messaging.TopicOrderDispatched)
	defer func() { _ = producer.Close() }()

	consumer := messaging.NewConsumer(brokers, messaging.TopicOrderAccepted, "dispatcher", logger)
	defer func() { _ = consumer.Close() }()

	fulfillment := dispatcher.NewFulfillmentHandler(producer, logger)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	logger.Info("starting dispatcher", "brokers", brokers)

	if err := consumer.Consume(runCtx, fulfillment.Handle); err != nil {
		if runCtx.Err() == context.Canceled {
			logger.Info("consumer stopped")
			return
		}
		logger.Error("consumer error", "error", err)
		os.Exit(1)
	}
}
