// Package demo serves transactions from a static JSON file standing in for a database.
package demo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"

	"tally/internal/core"
	"tally/internal/source"
)

var _ source.TransactionLister = (*Store)(nil)

// ErrMalformed is returned when the file is not a JSON array of transactions.
var ErrMalformed = errors.New("malformed demo transaction data")

// Opener returns a reader over the demo file.
type Opener func(ctx context.Context) (io.ReadCloser, error)

// Store reads the demo file on every call; it keeps no copy in memory.
type Store struct {
	path string
	open Opener
}

// New creates a Store for a local path or a gs://bucket/object URI.
func New(path string) *Store {
	s := &Store{path: path}
	if bucket, object, ok := parseGCSURI(path); ok {
		s.open = gcsOpener(bucket, object)
	} else {
		s.open = fileOpener(path)
	}
	return s
}

// NewWithOpener creates a Store reading through open.
func NewWithOpener(path string, open Opener) *Store {
	return &Store{path: path, open: open}
}

// Path returns the configured location.
func (s *Store) Path() string { return s.path }

// ListTransactions parses the whole file. Values are returned as stored.
func (s *Store) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rc, err := s.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open demo data %s: %w", s.path, err)
	}
	defer rc.Close()

	var txns []core.Transaction
	if err := json.NewDecoder(rc).Decode(&txns); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, s.path, err)
	}
	if txns == nil {
		// a literal null is not an array
		return nil, fmt.Errorf("%w: %s: not an array", ErrMalformed, s.path)
	}
	return txns, nil
}

// Ping checks that the file can be opened.
func (s *Store) Ping(ctx context.Context) error {
	rc, err := s.open(ctx)
	if err != nil {
		return err
	}
	return rc.Close()
}

func fileOpener(path string) Opener {
	return func(context.Context) (io.ReadCloser, error) {
		return os.Open(path)
	}
}

func gcsOpener(bucket, object string) Opener {
	return func(ctx context.Context) (io.ReadCloser, error) {
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("create storage client: %w", err)
		}
		r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("read gs://%s/%s: %w", bucket, object, err)
		}
		return &gcsReader{Reader: r, client: client}, nil
	}
}

type gcsReader struct {
	*storage.Reader
	client *storage.Client
}

func (r *gcsReader) Close() error {
	err := r.Reader.Close()
	if cerr := r.client.Close(); err == nil {
		err = cerr
	}
	return err
}

func parseGCSURI(uri string) (bucket, object string, ok bool) {
	rest, found := strings.CutPrefix(uri, "gs://")
	if !found {
		return "", "", false
	}
	bucket, object, found = strings.Cut(rest, "/")
	if !found || bucket == "" || object == "" {
		return "", "", false
	}
	return bucket, object, true
}
