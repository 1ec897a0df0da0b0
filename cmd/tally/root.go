package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"tally/internal/amqp"
	"tally/internal/core"
	applog "tally/internal/log"
	"tally/internal/session"
	"tally/internal/store"
)

// publisher sends transactions to the import queue.
type publisher interface {
	PublishTransactionImport(ctx context.Context, t core.Transaction) error
	Close() error
}

// deps lets tests swap the network-facing pieces.
type deps struct {
	newFetcher   func(Settings) store.Fetcher
	newPublisher func(Settings) (publisher, error)
}

func defaultDeps() *deps {
	return &deps{
		newFetcher: func(s Settings) store.Fetcher {
			return store.NewAPIClient(s.APIURL, store.WithDemo(s.Demo), store.WithTimeout(s.Timeout))
		},
		newPublisher: func(s Settings) (publisher, error) {
			return amqp.NewClient(s.AMQPURL, s.AMQPExchange, s.AMQPQueue)
		},
	}
}

// app is built once per invocation by the root command's pre-run hook.
type app struct {
	deps     *deps
	settings Settings
	logger   *applog.Logger
	session  *session.File
	store    *store.Store
}

func (a *app) init(cmd *cobra.Command) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	a.settings = settings

	level := slog.LevelWarn
	if settings.Verbose {
		level = slog.LevelDebug
	}
	a.logger = applog.New(applog.Config{Level: level, Component: applog.ComponentCLI, Output: cmd.ErrOrStderr()})

	a.session = session.New(settings.SessionFile)
	state, err := a.session.Load()
	if err != nil {
		a.logger.Warn("Ignoring unreadable session", applog.FieldError, err)
		state = store.State{}
	}

	a.store = store.New(a.deps.newFetcher(settings), store.WithLogger(a.logger), store.WithState(state))
	return nil
}

// load fills the store (a no-op when the session already holds transactions)
// and persists the result.
func (a *app) load(ctx context.Context) error {
	a.store.Load(ctx)
	return a.save()
}

func (a *app) save() error {
	return a.session.Save(a.store.Snapshot())
}

func newRootCmd(d *deps) *cobra.Command {
	if d == nil {
		d = defaultDeps()
	}
	a := &app{deps: d}

	root := &cobra.Command{
		Use:   "tally",
		Short: "Browse and analyse bank transactions",
		Long: `Tally loads your transactions once per session from the tally API and
answers filtered views (date range, categories, sub-categories, accounts)
from a local session cache.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}
	addSettingsFlags(root)

	root.AddCommand(
		newTransactionsCmd(a),
		newRangeCmd(a),
		newSetupCmd(a),
		newAnalyzeCmd(a),
		newSessionCmd(a),
		newImportCmd(a),
	)
	return root
}
