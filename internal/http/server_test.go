package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally/internal/core"
	applog "tally/internal/log"
	"tally/internal/source/demo"
)

type fakeLister struct {
	txns []core.Transaction
	err  error
}

func (f fakeLister) ListTransactions(context.Context) ([]core.Transaction, error) {
	return f.txns, f.err
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type panicLister struct{}

func (panicLister) ListTransactions(context.Context) ([]core.Transaction, error) {
	panic("boom")
}

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{Output: io.Discard})
}

func serve(t *testing.T, srv *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(method, path, nil))
	return rr
}

var sample = []core.Transaction{
	{ID: 1, Date: core.NewDate(2024, 8, 5), Type: "DPC", Description: "Vets4Pets", Category: "Pets", SubCategory: "Vet", AccountName: "JOINT", Balance: 3000, Value: -50},
	{ID: 2, Date: core.NewDate(2024, 8, 6), Type: "D/D", Description: "Council", Category: "Bill", SubCategory: "CouncilTax", AccountName: "JOINT", Balance: 2900, Value: 100},
}

func TestTransactions_OK(t *testing.T) {
	srv := NewServer(":0", Options{Transactions: fakeLister{txns: sample}, Logger: quietLogger()})

	rr := serve(t, srv, http.MethodGet, "/api/transactions")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var got []core.Transaction
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, sample, got)
	assert.Contains(t, rr.Body.String(), `"date":"2024-08-05"`)
	assert.Contains(t, rr.Body.String(), `"subCategory":"Vet"`)
}

func TestTransactions_EmptyIsArray(t *testing.T) {
	srv := NewServer(":0", Options{Transactions: fakeLister{}, Logger: quietLogger()})

	rr := serve(t, srv, http.MethodGet, "/api/transactions")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestTransactions_SourceFailure(t *testing.T) {
	srv := NewServer(":0", Options{Transactions: fakeLister{err: errors.New("connection refused")}, Logger: quietLogger()})

	rr := serve(t, srv, http.MethodGet, "/api/transactions")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"message":"Failed to load transaction data"}`, rr.Body.String())
	assert.NotContains(t, rr.Body.String(), "connection refused")
}

func TestDemoTransactions_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":9,"date":"2024-08-07","type":"POS","description":"Lush","category":"Shopping","subCategory":"InStore","accountName":"JOINT","balance":1,"value":-30}]`), 0o600))

	srv := NewServer(":0", Options{Demo: demo.New(path), Logger: quietLogger()})

	rr := serve(t, srv, http.MethodGet, "/api/demoTransactions")
	require.Equal(t, http.StatusOK, rr.Code)
	var got []core.Transaction
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, -30.0, got[0].Value)
}

func TestDemoTransactions_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))

	srv := NewServer(":0", Options{Demo: demo.New(path), Logger: quietLogger()})

	rr := serve(t, srv, http.MethodGet, "/api/demoTransactions")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"message":"Failed to load demo transaction data"}`, rr.Body.String())
}

func TestDemoTransactions_MissingFile(t *testing.T) {
	srv := NewServer(":0", Options{Demo: demo.New(filepath.Join(t.TempDir(), "nope.json")), Logger: quietLogger()})

	rr := serve(t, srv, http.MethodGet, "/api/demoTransactions")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"message":"Failed to load demo transaction data"}`, rr.Body.String())
}

func TestHealthAndReady(t *testing.T) {
	srv := NewServer(":0", Options{Ready: fakePinger{}, Logger: quietLogger()})

	rr := serve(t, srv, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())

	rr = serve(t, srv, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ready", rr.Body.String())

	srv = NewServer(":0", Options{Ready: fakePinger{err: errors.New("down")}, Logger: quietLogger()})
	rr = serve(t, srv, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestRouting_NotFoundAndMethod(t *testing.T) {
	srv := NewServer(":0", Options{Transactions: fakeLister{}, Logger: quietLogger()})

	rr := serve(t, srv, http.MethodGet, "/api/nope")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"message":"Not found"}`, rr.Body.String())

	rr = serve(t, srv, http.MethodPost, "/api/transactions")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestMiddleware_HeadersAndRequestID(t *testing.T) {
	srv := NewServer(":0", Options{Transactions: fakeLister{}, Logger: quietLogger(), CORSAllowedOrigins: []string{"*"}})

	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, int64(1), srv.Metrics().TotalRequests)
}

func TestMiddleware_RecoversPanic(t *testing.T) {
	srv := NewServer(":0", Options{Transactions: panicLister{}, Logger: quietLogger()})

	rr := serve(t, srv, http.MethodGet, "/api/transactions")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"message":"Internal server error"}`, rr.Body.String())
}

func TestRateLimit(t *testing.T) {
	srv := NewServer(":0", Options{Transactions: fakeLister{}, Logger: quietLogger(), RateLimitPerMinute: 1})
	defer srv.Shutdown(context.Background())

	assert.Equal(t, http.StatusOK, serve(t, srv, http.MethodGet, "/api/transactions").Code)
	rr := serve(t, srv, http.MethodGet, "/api/transactions")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.JSONEq(t, `{"message":"Rate limit exceeded"}`, rr.Body.String())

	// health checks are not limited
	assert.Equal(t, http.StatusOK, serve(t, srv, http.MethodGet, "/healthz").Code)
}

func TestExtractClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.5:1234"
	req.Header.Set("X-Forwarded-For", "198.51.100.1")
	assert.Equal(t, "203.0.113.5", extractClientIP(req))

	req.RemoteAddr = "10.0.0.2:1234"
	assert.Equal(t, "198.51.100.1", extractClientIP(req))

	req.Header.Del("X-Forwarded-For")
	req.Header.Set("X-Real-IP", "198.51.100.2")
	assert.Equal(t, "198.51.100.2", extractClientIP(req))
}
