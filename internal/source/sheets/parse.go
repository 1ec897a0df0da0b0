package sheets

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"tally/internal/core"
)

// serialEpoch is day zero of the spreadsheet serial date system.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var requiredHeaders = []string{"id", "date", "type", "description", "category", "subcategory", "accountname", "balance", "value"}

// parseTransactions converts a values matrix (as returned by the Sheets API)
// into transactions. Row 0 holds headers, matched case-insensitively and
// ignoring spaces, so "Sub Category" and "subCategory" are the same column.
// Fully blank rows are skipped.
func parseTransactions(values [][]interface{}) ([]core.Transaction, error) {
	txns := []core.Transaction{}
	if len(values) == 0 {
		return txns, nil
	}

	cols := map[string]int{}
	for i, h := range toStrings(values[0]) {
		cols[normalizeHeader(h)] = i
	}
	var missing []string
	for _, h := range requiredHeaders {
		if _, ok := cols[h]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("unexpected header: missing %s", strings.Join(missing, ","))
	}

	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		if blank(row) {
			continue
		}
		get := func(h string) string { return safeGet(row, cols[h]) }

		id, err := strconv.ParseInt(get("id"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid id %q", i+1, get("id"))
		}
		date, err := parseDateCell(values[i], cols["date"], get("date"))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		balance, err := parseOptionalAmount(get("balance"))
		if err != nil {
			return nil, fmt.Errorf("row %d: balance: %w", i+1, err)
		}
		value, err := core.ParseAmount(get("value"))
		if err != nil {
			return nil, fmt.Errorf("row %d: value: %w", i+1, err)
		}

		txns = append(txns, core.Transaction{
			ID:          id,
			Date:        date,
			Type:        get("type"),
			Description: get("description"),
			Category:    get("category"),
			SubCategory: get("subcategory"),
			AccountName: get("accountname"),
			Balance:     balance,
			Value:       value,
		})
	}
	return txns, nil
}

// parseDateCell reads date cells rendered as serial numbers, and ISO text for
// dates stored as plain strings.
func parseDateCell(raw []interface{}, col int, text string) (core.Date, error) {
	if col < len(raw) {
		if serial, ok := raw[col].(float64); ok {
			return core.DateOf(serialEpoch.AddDate(0, 0, int(math.Floor(serial)))), nil
		}
	}
	return core.ParseDate(text)
}

func parseOptionalAmount(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return core.ParseAmount(s)
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(h), " ", ""))
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		switch x := v.(type) {
		case nil:
		case string:
			out[i] = strings.TrimSpace(x)
		case float64:
			out[i] = strconv.FormatFloat(x, 'f', -1, 64)
		default:
			out[i] = strings.TrimSpace(fmt.Sprint(x))
		}
	}
	return out
}

func safeGet(row []string, i int) string {
	if i >= 0 && i < len(row) {
		return row[i]
	}
	return ""
}

func blank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
