package cache

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"tally/internal/core"
	"tally/internal/source"
)

const transactionsKey = "transactions"

// CachedLister serves ListTransactions from the cache while the entry is
// fresh. Errors are never cached.
type CachedLister struct {
	next  source.TransactionLister
	cache Cache[[]core.Transaction]
}

// NewCachedLister wraps next. A ttl of zero or less returns next unchanged.
func NewCachedLister(next source.TransactionLister, ttl time.Duration) (source.TransactionLister, func(), error) {
	if ttl <= 0 {
		return next, func() {}, nil
	}
	c, err := NewTTLCache[[]core.Transaction](8, ttl)
	if err != nil {
		return nil, nil, err
	}
	return &CachedLister{next: next, cache: c}, c.Close, nil
}

func (l *CachedLister) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	if txns, ok := l.cache.Get(transactionsKey); ok {
		slog.DebugContext(ctx, "Transactions served from cache", "count", len(txns))
		return slices.Clone(txns), nil
	}

	txns, err := l.next.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	l.cache.Set(transactionsKey, slices.Clone(txns))
	return txns, nil
}
