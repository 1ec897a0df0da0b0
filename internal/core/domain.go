package core

import (
	"errors"
	"slices"
)

type (
	// Transaction is one ledger entry from a bank account feed.
	Transaction struct {
		ID          int64   `json:"id"`
		Date        Date    `json:"date"`
		Type        string  `json:"type"` // method code, e.g. DPC, D/D, POS
		Description string  `json:"description"`
		Category    string  `json:"category"`
		SubCategory string  `json:"subCategory"`
		AccountName string  `json:"accountName"`
		Balance     float64 `json:"balance"` // account balance after the transaction
		Value       float64 `json:"value"`
	}

	// AnalysisConfig is the filter a user configured for the analysis view.
	// Empty selections mean "no restriction"; a nil bound leaves that side open.
	AnalysisConfig struct {
		StartDate             *Date    `json:"startDate,omitempty"`
		EndDate               *Date    `json:"endDate,omitempty"`
		SelectedCategories    []string `json:"selectedCategories"`
		SelectedSubCategories []string `json:"selectedSubCategories"`
		SelectedAccounts      []string `json:"selectedAccounts"`
	}
)

var (
	ErrInvalidDate    = errors.New("invalid date")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrNoTransactions = errors.New("no transactions")
)

// Bounds returns the configured date bounds, zero where unset.
func (c AnalysisConfig) Bounds() (start, end Date) {
	if c.StartDate != nil {
		start = *c.StartDate
	}
	if c.EndDate != nil {
		end = *c.EndDate
	}
	return start, end
}

// Matches reports whether t passes the category, sub-category and account selections.
// Date bounds are not considered.
func (c AnalysisConfig) Matches(t Transaction) bool {
	return allowed(c.SelectedCategories, t.Category) &&
		allowed(c.SelectedSubCategories, t.SubCategory) &&
		allowed(c.SelectedAccounts, t.AccountName)
}

func allowed(set []string, v string) bool {
	return len(set) == 0 || slices.Contains(set, v)
}
