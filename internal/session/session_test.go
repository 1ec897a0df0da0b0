package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally/internal/core"
	"tally/internal/store"
)

func TestFile_SaveLoadReset(t *testing.T) {
	f := New(filepath.Join(t.TempDir(), "sub", "session.json"))

	state, err := f.Load()
	require.NoError(t, err)
	assert.Empty(t, state.Transactions)

	start := core.NewDate(2024, 8, 5)
	saved := store.State{
		Transactions: []core.Transaction{{ID: 1, Date: start, AccountName: "JOINT", Value: -50}},
		AnalysisConfig: core.AnalysisConfig{
			StartDate:        &start,
			SelectedAccounts: []string{"JOINT"},
		},
	}
	require.NoError(t, f.Save(saved))

	got, err := f.Load()
	require.NoError(t, err)
	require.Len(t, got.Transactions, 1)
	assert.True(t, got.Transactions[0].Date.Equal(start))
	require.NotNil(t, got.AnalysisConfig.StartDate)
	assert.True(t, got.AnalysisConfig.StartDate.Equal(start))
	assert.Nil(t, got.AnalysisConfig.EndDate)
	assert.Equal(t, []string{"JOINT"}, got.AnalysisConfig.SelectedAccounts)

	require.NoError(t, f.Reset())
	_, err = os.Stat(f.Path())
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, f.Reset())
}

func TestFile_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	_, err := New(path).Load()
	assert.ErrorContains(t, err, "decode session")
}

func TestFile_RestoresStoreWithoutFetch(t *testing.T) {
	f := New(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, f.Save(store.State{Transactions: []core.Transaction{{ID: 7, Date: core.NewDate(2024, 1, 2)}}}))

	state, err := f.Load()
	require.NoError(t, err)
	s := store.New(nil, store.WithState(state))
	assert.Len(t, s.Transactions(), 1)
}
