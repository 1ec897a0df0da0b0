package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want Date
		ok   bool
	}{
		{"2024-08-05", NewDate(2024, 8, 5), true},
		{" 2024-08-05 ", NewDate(2024, 8, 5), true},
		{"2024-08-05T00:00:00.000Z", NewDate(2024, 8, 5), true},
		{"2024-08-05T23:10:00+01:00", NewDate(2024, 8, 5), true},
		{"2024-08-05 12:00:00", NewDate(2024, 8, 5), true},
		{"05/08/2024", Date{}, false},
		{"", Date{}, false},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if !tc.ok {
			assert.ErrorIs(t, err, ErrInvalidDate, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestDateJSON(t *testing.T) {
	var tx Transaction
	require.NoError(t, json.Unmarshal([]byte(`{"id":7,"date":"2024-08-06","value":-12.5}`), &tx))
	assert.Equal(t, NewDate(2024, 8, 6), tx.Date)
	assert.Equal(t, -12.5, tx.Value)

	b, err := json.Marshal(tx.Date)
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-08-06"`, string(b))

	b, err = json.Marshal(Date{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))

	assert.Error(t, json.Unmarshal([]byte(`{"date":42}`), &tx))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, 8, 7, 15, 4, 5, 0, time.UTC)))
	assert.Equal(t, NewDate(2024, 8, 7), d)

	require.NoError(t, d.Scan([]byte("2024-08-05")))
	assert.Equal(t, NewDate(2024, 8, 5), d)

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.ErrorIs(t, d.Scan(42), ErrInvalidDate)

	v, err := NewDate(2024, 1, 2).Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", v)
}
