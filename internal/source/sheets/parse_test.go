package sheets

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally/internal/core"
)

var header = []interface{}{"ID", "Date", "Type", "Description", "Category", "Sub Category", "Account Name", "Balance", "Value"}

func TestParseTransactions(t *testing.T) {
	values := [][]interface{}{
		header,
		{float64(1), "2024-08-05", "DPC", "Vets4Pets", "Pets", "Vet", "JOINT", float64(3000), float64(-50)},
		{},
		{"2", "2024-08-06", "D/D", " City Council ", "Bill", "CouncilTax", "JOINT", "£2,900.00", "100"},
		{"3", "2024-08-07", "POS", "Lush", "Shopping", "InStore", "JOINT", "", "30"},
	}

	txns, err := parseTransactions(values)
	require.NoError(t, err)
	require.Len(t, txns, 3)

	assert.Equal(t, core.Transaction{
		ID: 1, Date: core.NewDate(2024, 8, 5), Type: "DPC", Description: "Vets4Pets",
		Category: "Pets", SubCategory: "Vet", AccountName: "JOINT", Balance: 3000, Value: -50,
	}, txns[0])
	assert.Equal(t, "City Council", txns[1].Description)
	assert.Equal(t, 2900.0, txns[1].Balance)
	assert.Equal(t, 0.0, txns[2].Balance)
}

func TestParseTransactions_SerialDates(t *testing.T) {
	values := [][]interface{}{
		header,
		{float64(1), float64(45509), "DPC", "Rent", "Bill", "Rent", "JOINT", float64(1000), float64(-800)},
		{float64(2), 45510.75, "POS", "Vet", "Pets", "Vet", "JOINT", float64(950), float64(-50)},
	}

	txns, err := parseTransactions(values)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.True(t, txns[0].Date.Equal(core.NewDate(2024, 8, 5)), txns[0].Date.String())
	assert.True(t, txns[1].Date.Equal(core.NewDate(2024, 8, 6)), txns[1].Date.String())
}

func TestParseTransactions_ShortRows(t *testing.T) {
	// the API trims trailing empty cells
	values := [][]interface{}{
		header,
		{"4", "2024-08-08", "", "", "", "", "", "", "12"},
	}
	txns, err := parseTransactions(values)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, 12.0, txns[0].Value)
}

func TestParseTransactions_Errors(t *testing.T) {
	_, err := parseTransactions([][]interface{}{{"ID", "Date"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing type,description")

	_, err = parseTransactions([][]interface{}{header, {"x", "2024-08-05", "", "", "", "", "", "", "1"}})
	assert.ErrorContains(t, err, "invalid id")

	_, err = parseTransactions([][]interface{}{header, {"1", "soon", "", "", "", "", "", "", "1"}})
	assert.ErrorIs(t, err, core.ErrInvalidDate)

	_, err = parseTransactions([][]interface{}{header, {"1", "2024-08-05", "", "", "", "", "", "", ""}})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestParseTransactions_Empty(t *testing.T) {
	txns, err := parseTransactions(nil)
	require.NoError(t, err)
	assert.Empty(t, txns)
}

type fakeGetter struct {
	values    [][]interface{}
	err       error
	lastRange string
}

func (f *fakeGetter) Get(_ context.Context, _ string, readRange string) ([][]interface{}, error) {
	f.lastRange = readRange
	return f.values, f.err
}

func TestClient_ListTransactions(t *testing.T) {
	g := &fakeGetter{values: [][]interface{}{header, {"1", "2024-08-05", "DPC", "x", "Pets", "Vet", "JOINT", "1", "2"}}}
	c := NewWithGetter(g, "sheet-id", "Ledger")

	txns, err := c.ListTransactions(context.Background())
	require.NoError(t, err)
	assert.Len(t, txns, 1)
	assert.Equal(t, "Ledger!A:I", g.lastRange)

	require.NoError(t, c.Ping(context.Background()))
	assert.Equal(t, "Ledger!A1:I1", g.lastRange)

	g.err = errors.New("quota")
	_, err = c.ListTransactions(context.Background())
	assert.ErrorContains(t, err, "quota")
}

func TestNew_MissingSettings(t *testing.T) {
	_, err := New(context.Background(), Options{})
	assert.EqualError(t, err, "missing GOOGLE_SPREADSHEET_ID")

	_, err = New(context.Background(), Options{SpreadsheetID: "id"})
	assert.ErrorContains(t, err, "missing service account credentials")

	_, err = New(context.Background(), Options{SpreadsheetID: "id", ServiceAccountFile: "/nonexistent/sa.json"})
	assert.ErrorContains(t, err, "read service account file")
}
