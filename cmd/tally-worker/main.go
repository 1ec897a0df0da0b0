package main

import (
	"context"
	"errors"
	"os"
	"time"

	"tally/internal/amqp"
	"tally/internal/cli"
	"tally/internal/config"
	applog "tally/internal/log"
	"tally/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)

	logger.Info("Starting tally-worker", applog.FieldOperation, applog.OpStartup)

	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).Validate, (*config.Config).ValidateWorker)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	result := cli.InitBackend(ctx, logger, cfg)
	defer result.Close()
	if result.Writer == nil {
		logger.Error("Data backend is read-only", applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}

	importWorker := worker.NewImportWorker(result.Writer, logger)

	err := consumeWithReconnect(ctx, logger, func() (consumer, error) {
		return amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	}, importWorker.HandleImportMessage)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	stats := importWorker.Stats()
	logger.Info("Worker stopped gracefully", "processed", stats.Processed, "failed", stats.Failed)
}

type consumer interface {
	ConsumeTransactionImports(ctx context.Context, handler amqp.Handler) error
	Close() error
}

// consumeWithReconnect keeps a consumer running until ctx ends, redialling
// with exponential backoff whenever the broker connection drops. Any other
// error is returned.
func consumeWithReconnect(ctx context.Context, logger *applog.Logger, dial func() (consumer, error), handler amqp.Handler) error {
	for attempt := 0; ; attempt++ {
		c, err := dial()
		if err == nil {
			attempt = 0
			logger.Info("Connected to AMQP broker", applog.FieldOperation, applog.OpConsume)
			err = c.ConsumeTransactionImports(ctx, handler)
			c.Close()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !amqp.IsConnectionError(err) {
			return err
		}

		delay := amqp.ExponentialBackoff(attempt)
		logger.Warn("AMQP connection lost, reconnecting",
			applog.FieldError, err,
			"attempt", attempt+1,
			"delay", delay)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}
