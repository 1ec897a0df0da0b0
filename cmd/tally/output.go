package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"tally/internal/core"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTransactions(w io.Writer, format string, txns []core.Transaction) error {
	if format == outputJSON {
		return writeJSON(w, txns)
	}
	if len(txns) == 0 {
		fmt.Fprintln(w, "No transactions.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTYPE\tDESCRIPTION\tCATEGORY\tSUB-CATEGORY\tACCOUNT\tVALUE\tBALANCE\t")
	for _, t := range txns {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			t.ID, t.Date, t.Type, t.Description, t.Category, t.SubCategory, t.AccountName,
			money(t.Value), money(t.Balance))
	}
	return tw.Flush()
}

func printSummary(w io.Writer, s core.AnalysisSummary) {
	fmt.Fprintf(w, "\n%d transactions, total %s\n", s.Count, money(s.Total))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, c := range s.ByCategory {
		name := c.Name
		if name == "" {
			name = "(uncategorised)"
		}
		fmt.Fprintf(tw, "  %s\t%d\t%s\n", name, c.Count, money(c.Amount))
	}
	_ = tw.Flush()
}

func printChoices(w io.Writer, categories, subCategories, accounts []string) {
	fmt.Fprintln(w, "Categories:    ", strings.Join(categories, ", "))
	fmt.Fprintln(w, "Sub-categories:", strings.Join(subCategories, ", "))
	fmt.Fprintln(w, "Accounts:      ", strings.Join(accounts, ", "))
}

func printConfig(w io.Writer, cfg core.AnalysisConfig) {
	start, end := cfg.Bounds()
	fmt.Fprintf(w, "From:           %s\n", orAny(start.String()))
	fmt.Fprintf(w, "To:             %s\n", orAny(end.String()))
	fmt.Fprintf(w, "Categories:     %s\n", orAny(strings.Join(cfg.SelectedCategories, ", ")))
	fmt.Fprintf(w, "Sub-categories: %s\n", orAny(strings.Join(cfg.SelectedSubCategories, ", ")))
	fmt.Fprintf(w, "Accounts:       %s\n", orAny(strings.Join(cfg.SelectedAccounts, ", ")))
}

func orAny(s string) string {
	if s == "" {
		return "any"
	}
	return s
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
