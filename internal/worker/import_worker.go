// Package worker applies queued transaction imports to a writable source.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"tally/internal/amqp"
	applog "tally/internal/log"
	"tally/internal/source"
)

// ImportWorker inserts each imported transaction through a TransactionWriter.
type ImportWorker struct {
	writer source.TransactionWriter
	logger *applog.Logger

	processed atomic.Int64
	skipped   atomic.Int64
	failed    atomic.Int64
}

// Stats are running totals since the worker started.
type Stats struct {
	Processed int64
	Skipped   int64
	Failed    int64
}

func NewImportWorker(writer source.TransactionWriter, logger *applog.Logger) *ImportWorker {
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	return &ImportWorker{
		writer: writer,
		logger: logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleImportMessage inserts msg's transaction. A transaction whose ID is
// already stored counts as skipped and the message is acknowledged, so
// re-running an import is harmless. Any other error makes the consumer
// requeue the message.
func (w *ImportWorker) HandleImportMessage(ctx context.Context, msg *amqp.TransactionImportMessage) error {
	if msg == nil {
		return fmt.Errorf("nil import message: %w", amqp.ErrRejected)
	}
	t := msg.Transaction

	err := w.writer.InsertTransaction(ctx, t)
	if errors.Is(err, source.ErrDuplicate) {
		w.skipped.Add(1)
		w.logger.WarnContext(ctx, "Transaction already imported",
			applog.FieldOperation, applog.OpInsert,
			applog.FieldTransaction, t.ID)
		return nil
	}
	if err != nil {
		w.failed.Add(1)
		w.logger.ErrorContext(ctx, "Failed to import transaction",
			applog.FieldOperation, applog.OpInsert,
			applog.FieldTransaction, t.ID,
			applog.FieldError, err)
		return fmt.Errorf("insert transaction %d: %w", t.ID, err)
	}

	w.processed.Add(1)
	w.logger.InfoContext(ctx, "Transaction imported",
		applog.FieldOperation, applog.OpInsert,
		applog.FieldTransaction, t.ID,
		"date", t.Date.String(),
		"queued_at", msg.Timestamp)
	return nil
}

func (w *ImportWorker) Stats() Stats {
	return Stats{Processed: w.processed.Load(), Skipped: w.skipped.Load(), Failed: w.failed.Load()}
}
