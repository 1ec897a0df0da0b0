package source

import (
	"context"
	"errors"

	"tally/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionLister reads the full transaction set with one read-only query.
	TransactionLister interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	// TransactionWriter stores imported transactions. Only SQL sources implement it.
	TransactionWriter interface {
		InsertTransaction(ctx context.Context, t core.Transaction) error
	}

	// Pinger reports whether the source is reachable.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)

// ErrDuplicate is returned by a TransactionWriter when a row with the same ID
// already exists.
var ErrDuplicate = errors.New("duplicate transaction")
