package demo

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally/internal/core"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "demoTransactions.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestListTransactions(t *testing.T) {
	path := writeFile(t, `[
		{"id":1,"date":"2024-08-05","type":"DPC","description":"Vets4Pets","category":"Pets","subCategory":"Vet","accountName":"JOINT","balance":3000,"value":-50},
		{"id":2,"date":"2024-08-06","type":"D/D","description":"City Council","category":"Bill","subCategory":"CouncilTax","accountName":"JOINT","balance":2900,"value":100}
	]`)

	txns, err := New(path).ListTransactions(context.Background())
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, int64(1), txns[0].ID)
	assert.Equal(t, core.NewDate(2024, 8, 5), txns[0].Date)
	assert.Equal(t, "Vet", txns[0].SubCategory)
	// sign is left as stored
	assert.Equal(t, -50.0, txns[0].Value)
	assert.Equal(t, "CouncilTax", txns[1].SubCategory)
}

func TestListTransactions_EmptyArray(t *testing.T) {
	txns, err := New(writeFile(t, `[]`)).ListTransactions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, txns)
	assert.NotNil(t, txns)
}

func TestListTransactions_Missing(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nope.json"))
	_, err := s.ListTransactions(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Error(t, s.Ping(context.Background()))
}

func TestListTransactions_Malformed(t *testing.T) {
	for _, content := range []string{`{"id":1}`, `not json`, `null`, `[{"date":"yesterday"}]`} {
		_, err := New(writeFile(t, content)).ListTransactions(context.Background())
		assert.Error(t, err, content)
	}
	_, err := New(writeFile(t, `null`)).ListTransactions(context.Background())
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestNewWithOpener(t *testing.T) {
	s := NewWithOpener("mem", func(context.Context) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(`[{"id":9,"date":"2024-01-31"}]`)), nil
	})
	txns, err := s.ListTransactions(context.Background())
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, int64(9), txns[0].ID)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestParseGCSURI(t *testing.T) {
	bucket, object, ok := parseGCSURI("gs://finance-demo/data/demoTransactions.json")
	assert.True(t, ok)
	assert.Equal(t, "finance-demo", bucket)
	assert.Equal(t, "data/demoTransactions.json", object)

	for _, uri := range []string{"./data/demo.json", "gs://", "gs://bucket", "gs:///object"} {
		_, _, ok := parseGCSURI(uri)
		assert.False(t, ok, uri)
	}
}
