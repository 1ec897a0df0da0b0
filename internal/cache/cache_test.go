package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally/internal/core"
)

type countingLister struct {
	calls int
	txns  []core.Transaction
	err   error
}

func (l *countingLister) ListTransactions(context.Context) ([]core.Transaction, error) {
	l.calls++
	return l.txns, l.err
}

func TestTTLCache_SetGetDelete(t *testing.T) {
	c, err := NewTTLCache[int](4, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	c.Set("a", 1)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	c.Delete("a")
	_, ok = c.Get("a")
	assert.False(t, ok)
}

func TestTTLCache_Expires(t *testing.T) {
	c, err := NewTTLCache[string](4, 20*time.Millisecond)
	require.NoError(t, err)
	defer c.Close()

	c.Set("k", "v")
	_, ok := c.Get("k")
	require.True(t, ok, "entry admitted before it expires")
	assert.Eventually(t, func() bool {
		_, ok := c.Get("k")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestCachedLister_ServesFromCache(t *testing.T) {
	next := &countingLister{txns: []core.Transaction{{ID: 1}}}
	lister, closeFn, err := NewCachedLister(next, time.Minute)
	require.NoError(t, err)
	defer closeFn()

	for range 3 {
		txns, err := lister.ListTransactions(context.Background())
		require.NoError(t, err)
		assert.Len(t, txns, 1)
	}
	assert.Equal(t, 1, next.calls)
}

func TestCachedLister_DoesNotCacheErrors(t *testing.T) {
	next := &countingLister{err: errors.New("db down")}
	lister, closeFn, err := NewCachedLister(next, time.Minute)
	require.NoError(t, err)
	defer closeFn()

	_, err = lister.ListTransactions(context.Background())
	require.Error(t, err)
	_, err = lister.ListTransactions(context.Background())
	require.Error(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCachedLister_ZeroTTLPassesThrough(t *testing.T) {
	next := &countingLister{}
	lister, closeFn, err := NewCachedLister(next, 0)
	require.NoError(t, err)
	defer closeFn()
	assert.Same(t, next, lister)
}
