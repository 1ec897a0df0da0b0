package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tally/internal/core"
)

const (
	TransactionsPath     = "/api/transactions"
	DemoTransactionsPath = "/api/demoTransactions"
)

// ErrUnexpectedStatus is returned for any non-2xx response.
var ErrUnexpectedStatus = errors.New("unexpected status")

// APIClient fetches transactions from the transaction API.
type APIClient struct {
	baseURL string
	path    string
	http    *http.Client
}

// ClientOption configures an APIClient.
type ClientOption func(*APIClient)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(a *APIClient) { a.http = c }
}

// WithDemo makes the client read /api/demoTransactions.
func WithDemo(demo bool) ClientOption {
	return func(a *APIClient) {
		if demo {
			a.path = DemoTransactionsPath
		} else {
			a.path = TransactionsPath
		}
	}
}

// WithTimeout sets the HTTP client timeout on a copy of the current client,
// leaving a client passed to WithHTTPClient untouched.
func WithTimeout(d time.Duration) ClientOption {
	return func(a *APIClient) {
		c := *a.http
		c.Timeout = d
		a.http = &c
	}
}

// NewAPIClient creates a client for the API rooted at baseURL.
func NewAPIClient(baseURL string, opts ...ClientOption) *APIClient {
	a := &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		path:    TransactionsPath,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// URL is the endpoint the client reads.
func (a *APIClient) URL() string {
	return a.baseURL + a.path
}

// FetchTransactions performs one GET. Transport errors, non-2xx statuses and
// bodies that are not a JSON array of transactions are all errors.
func (a *APIClient) FetchTransactions(ctx context.Context) ([]core.Transaction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.URL(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", a.URL(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("get %s: %w %d: %s", a.URL(), ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var txns []core.Transaction
	if err := json.NewDecoder(resp.Body).Decode(&txns); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	if txns == nil {
		return nil, fmt.Errorf("decode transactions: body is not an array")
	}
	return txns, nil
}
