// Package store is the client-side transaction cache. It fetches the full
// list once per session and answers every filtered view from memory.
package store

import (
	"context"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	"tally/internal/core"
	applog "tally/internal/log"
)

// Fetcher retrieves the full transaction list in server order.
type Fetcher interface {
	FetchTransactions(ctx context.Context) ([]core.Transaction, error)
}

// State is everything the store holds; it is what a session persists.
type State struct {
	Transactions   []core.Transaction  `json:"transactions"`
	AnalysisConfig core.AnalysisConfig `json:"analysisConfig"`
}

// Store holds the cached transactions and the analysis configuration.
// The transaction list is either empty or the complete result of one
// successful fetch.
type Store struct {
	fetcher Fetcher
	logger  *applog.Logger
	loads   singleflight.Group

	mu     sync.RWMutex
	txns   []core.Transaction
	config core.AnalysisConfig
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report load failures.
func WithLogger(logger *applog.Logger) Option {
	return func(s *Store) {
		s.logger = logger.WithComponent(applog.ComponentStore)
	}
}

// WithState restores a previously snapshotted state.
func WithState(state State) Option {
	return func(s *Store) {
		s.txns = slices.Clone(state.Transactions)
		s.config = cloneConfig(state.AnalysisConfig)
	}
}

// New creates an empty store that loads through fetcher.
func New(fetcher Fetcher, opts ...Option) *Store {
	s := &Store{
		fetcher: fetcher,
		logger:  applog.FromContext(context.Background()).WithComponent(applog.ComponentStore),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches the transaction list unless one is already cached. Failures
// leave the list empty and are only logged. Concurrent calls share a single
// fetch, which runs detached from ctx's cancellation so one caller giving up
// does not empty the list for the others; the fetcher's own timeout bounds it.
func (s *Store) Load(ctx context.Context) {
	if s.loaded() {
		return
	}

	_, _, _ = s.loads.Do("load", func() (any, error) {
		if s.loaded() {
			return nil, nil
		}

		txns, err := s.fetcher.FetchTransactions(context.WithoutCancel(ctx))
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to load transactions",
				applog.FieldOperation, applog.OpLoad,
				applog.FieldError, err)
			txns = []core.Transaction{}
		} else {
			s.logger.InfoContext(ctx, "Transactions loaded",
				applog.FieldOperation, applog.OpLoad,
				applog.FieldCount, len(txns))
		}

		s.mu.Lock()
		s.txns = txns
		s.mu.Unlock()
		return nil, nil
	})
}

func (s *Store) loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.txns) > 0
}

// SetAnalysisConfig replaces the configuration wholesale. No validation.
func (s *Store) SetAnalysisConfig(cfg core.AnalysisConfig) {
	s.mu.Lock()
	s.config = cloneConfig(cfg)
	s.mu.Unlock()
}

func (s *Store) AnalysisConfig() core.AnalysisConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneConfig(s.config)
}

// Transactions returns a copy of the cached list.
func (s *Store) Transactions() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.txns)
}

// DateRange returns the earliest and latest cached dates, or
// core.ErrNoTransactions when nothing is cached.
func (s *Store) DateRange() (start, end core.Date, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.DateRange(s.txns)
}

// ByDateRange returns cached transactions within [start, end] in their
// original order.
func (s *Store) ByDateRange(start, end core.Date) []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.ByDateRange(s.txns, start, end)
}

// FilteredByConfig applies the current analysis configuration.
func (s *Store) FilteredByConfig() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.FilterByConfig(s.txns, s.config)
}

func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.Categories(s.txns)
}

func (s *Store) SubCategories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.SubCategories(s.txns)
}

func (s *Store) Accounts() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.Accounts(s.txns)
}

// Summary totals FilteredByConfig.
func (s *Store) Summary() core.AnalysisSummary {
	return core.Summarize(s.FilteredByConfig())
}

// Snapshot copies the current state for persistence.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		Transactions:   slices.Clone(s.txns),
		AnalysisConfig: cloneConfig(s.config),
	}
}

func cloneConfig(c core.AnalysisConfig) core.AnalysisConfig {
	out := core.AnalysisConfig{
		SelectedCategories:    slices.Clone(c.SelectedCategories),
		SelectedSubCategories: slices.Clone(c.SelectedSubCategories),
		SelectedAccounts:      slices.Clone(c.SelectedAccounts),
	}
	if c.StartDate != nil {
		d := *c.StartDate
		out.StartDate = &d
	}
	if c.EndDate != nil {
		d := *c.EndDate
		out.EndDate = &d
	}
	return out
}
