package worker

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally/internal/amqp"
	"tally/internal/core"
	applog "tally/internal/log"
	"tally/internal/storage"
)

type fakeWriter struct {
	inserted []core.Transaction
	err      error
}

func (f *fakeWriter) InsertTransaction(_ context.Context, t core.Transaction) error {
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, t)
	return nil
}

func quiet() *applog.Logger {
	return applog.New(applog.Config{Output: io.Discard})
}

func TestHandleImportMessage_Inserts(t *testing.T) {
	w := &fakeWriter{}
	iw := NewImportWorker(w, quiet())

	txn := core.Transaction{ID: 3, Date: core.NewDate(2024, 8, 7), Category: "Shopping", Value: -30}
	require.NoError(t, iw.HandleImportMessage(context.Background(), amqp.NewTransactionImportMessage(txn)))

	require.Len(t, w.inserted, 1)
	assert.Equal(t, txn, w.inserted[0])
	assert.Equal(t, Stats{Processed: 1}, iw.Stats())
}

func TestHandleImportMessage_WriterError(t *testing.T) {
	dbErr := errors.New("UNIQUE constraint failed")
	iw := NewImportWorker(&fakeWriter{err: dbErr}, quiet())

	err := iw.HandleImportMessage(context.Background(),
		amqp.NewTransactionImportMessage(core.Transaction{ID: 3, Date: core.NewDate(2024, 8, 7)}))
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, amqp.ErrRejected)
	assert.Equal(t, Stats{Failed: 1}, iw.Stats())
}

func TestHandleImportMessage_Nil(t *testing.T) {
	iw := NewImportWorker(&fakeWriter{}, nil)
	assert.ErrorIs(t, iw.HandleImportMessage(context.Background(), nil), amqp.ErrRejected)
}

func TestHandleImportMessage_DuplicateIsSkipped(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "tally.db"), false)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	iw := NewImportWorker(repo, quiet())

	msg := amqp.NewTransactionImportMessage(core.Transaction{ID: 9, Date: core.NewDate(2024, 8, 7), Value: -12})
	require.NoError(t, iw.HandleImportMessage(context.Background(), msg))
	require.NoError(t, iw.HandleImportMessage(context.Background(), msg))

	assert.Equal(t, Stats{Processed: 1, Skipped: 1}, iw.Stats())
	txns, err := repo.ListTransactions(context.Background())
	require.NoError(t, err)
	assert.Len(t, txns, 1)
}
