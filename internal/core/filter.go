package core

import "slices"

// DateRange returns the earliest and latest transaction dates.
// It sorts a copy, so txns keeps its order.
func DateRange(txns []Transaction) (start, end Date, err error) {
	if len(txns) == 0 {
		return Date{}, Date{}, ErrNoTransactions
	}
	sorted := slices.Clone(txns)
	slices.SortStableFunc(sorted, func(a, b Transaction) int {
		return a.Date.Compare(b.Date.Time)
	})
	return sorted[0].Date, sorted[len(sorted)-1].Date, nil
}

// ByDateRange keeps transactions dated within [start, end], preserving order.
// A zero bound is open on that side.
func ByDateRange(txns []Transaction, start, end Date) []Transaction {
	out := make([]Transaction, 0, len(txns))
	for _, t := range txns {
		if !start.IsZero() && t.Date.Before(start) {
			continue
		}
		if !end.IsZero() && t.Date.After(end) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// FilterByConfig applies the config's date bounds, then its set selections.
func FilterByConfig(txns []Transaction, cfg AnalysisConfig) []Transaction {
	start, end := cfg.Bounds()
	inRange := ByDateRange(txns, start, end)
	out := inRange[:0]
	for _, t := range inRange {
		if cfg.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// Categories returns distinct categories in first-seen order.
func Categories(txns []Transaction) []string {
	return distinct(txns, func(t Transaction) string { return t.Category })
}

// SubCategories returns distinct sub-categories in first-seen order.
func SubCategories(txns []Transaction) []string {
	return distinct(txns, func(t Transaction) string { return t.SubCategory })
}

// Accounts returns distinct account names in first-seen order.
func Accounts(txns []Transaction) []string {
	return distinct(txns, func(t Transaction) string { return t.AccountName })
}

func distinct(txns []Transaction, key func(Transaction) string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0)
	for _, t := range txns {
		k := key(t)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
