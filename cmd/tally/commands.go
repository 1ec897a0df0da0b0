package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tally/internal/core"
)

func newTransactionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"ls"},
		Short:   "Load (once per session) and list all transactions",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			return printTransactions(cmd.OutOrStdout(), a.settings.Output, a.store.Transactions())
		},
	}
}

func newRangeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "range",
		Short: "Print the earliest and latest transaction dates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			start, end, err := a.store.DateRange()
			if errors.Is(err, core.ErrNoTransactions) {
				return fmt.Errorf("no transactions loaded: %w", err)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", start, end)
			return nil
		},
	}
}

type setupFlags struct {
	from, to      string
	categories    []string
	subCategories []string
	accounts      []string
	list          bool
}

func newSetupCmd(a *app) *cobra.Command {
	var f setupFlags
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Replace the analysis configuration",
		Long: `Replace the analysis configuration. Omitted flags clear that part of the
configuration: an unset --from or --to leaves that side of the date range open
and an empty selection means no restriction.`,
		Example: `  tally setup --from 2024-08-01 --to 2024-08-31 --account JOINT
  tally setup --category Bill --category Pets
  tally setup --list`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.list {
				if err := a.load(cmd.Context()); err != nil {
					return err
				}
				printChoices(cmd.OutOrStdout(), a.store.Categories(), a.store.SubCategories(), a.store.Accounts())
				return nil
			}

			cfg, err := f.config()
			if err != nil {
				return err
			}
			a.store.SetAnalysisConfig(cfg)
			if err := a.save(); err != nil {
				return err
			}
			printConfig(cmd.OutOrStdout(), cfg)
			return nil
		},
	}
	cmd.Flags().StringVar(&f.from, "from", "", "first date to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "last date to include (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&f.categories, "category", nil, "category to include (repeatable)")
	cmd.Flags().StringSliceVar(&f.subCategories, "sub-category", nil, "sub-category to include (repeatable)")
	cmd.Flags().StringSliceVar(&f.accounts, "account", nil, "account to include (repeatable)")
	cmd.Flags().BoolVar(&f.list, "list", false, "list the categories, sub-categories and accounts available")
	return cmd
}

func (f setupFlags) config() (core.AnalysisConfig, error) {
	cfg := core.AnalysisConfig{
		SelectedCategories:    nonNil(f.categories),
		SelectedSubCategories: nonNil(f.subCategories),
		SelectedAccounts:      nonNil(f.accounts),
	}
	if f.from != "" {
		d, err := core.ParseDate(f.from)
		if err != nil {
			return cfg, fmt.Errorf("--from: %w", err)
		}
		cfg.StartDate = &d
	}
	if f.to != "" {
		d, err := core.ParseDate(f.to)
		if err != nil {
			return cfg, fmt.Errorf("--to: %w", err)
		}
		cfg.EndDate = &d
	}
	return cfg, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func newAnalyzeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "List transactions matching the analysis configuration, with totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			filtered := a.store.FilteredByConfig()
			summary := core.Summarize(filtered)

			out := cmd.OutOrStdout()
			if a.settings.Output == outputJSON {
				return writeJSON(out, struct {
					Transactions []core.Transaction   `json:"transactions"`
					Summary      core.AnalysisSummary `json:"summary"`
				}{filtered, summary})
			}
			if err := printTransactions(out, outputTable, filtered); err != nil {
				return err
			}
			printSummary(out, summary)
			return nil
		},
	}
}

func newSessionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage the local session cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Forget cached transactions and analysis settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.Reset(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Session cleared:", a.session.Path())
			return nil
		},
	})
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Queue transactions from a JSON file for insertion by tally-worker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.settings.AMQPURL == "" {
				return errors.New("import needs --amqp-url or TALLY_AMQP_URL")
			}
			txns, err := readTransactionsFile(file)
			if err != nil {
				return err
			}

			pub, err := a.deps.newPublisher(a.settings)
			if err != nil {
				return fmt.Errorf("connect to broker: %w", err)
			}
			defer pub.Close()

			for i, t := range txns {
				if err := pub.PublishTransactionImport(cmd.Context(), t); err != nil {
					return fmt.Errorf("publish transaction %d of %d: %w", i+1, len(txns), err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Queued %d transactions\n", len(txns))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON array of transactions")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readTransactionsFile(path string) ([]core.Transaction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var txns []core.Transaction
	if err := json.Unmarshal(data, &txns); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	for i, t := range txns {
		if t.Date.IsZero() {
			return nil, fmt.Errorf("decode %s: transaction %d has no date", path, i+1)
		}
	}
	return txns, nil
}
