package http

import (
	"context"
	"net/http"
	"time"

	"tally/internal/core"
	applog "tally/internal/log"
	"tally/internal/source"
)

const (
	msgTransactionsFailed     = "Failed to load transaction data"
	msgDemoTransactionsFailed = "Failed to load demo transaction data"
)

// readyTimeout bounds the source ping behind /readyz.
const readyTimeout = 2 * time.Second

// listHandler serves the full list from lister, or a 500 with failMessage.
func listHandler(lister source.TransactionLister, failMessage string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := applog.FromContext(ctx)

		txns, err := lister.ListTransactions(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to list transactions",
				applog.FieldOperation, applog.OpList,
				applog.FieldError, err)
			WriteError(w, r, http.StatusInternalServerError, failMessage)
			return
		}
		if txns == nil {
			txns = []core.Transaction{}
		}

		logger.DebugContext(ctx, "Transactions listed", applog.FieldCount, len(txns))
		WriteJSON(w, r, http.StatusOK, txns)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func readyHandler(pinger source.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if pinger != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
			defer cancel()
			if err := pinger.Ping(ctx); err != nil {
				applog.FromContext(ctx).WarnContext(ctx, "Readiness check failed", applog.FieldError, err)
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("not ready"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}
}
