package activity

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func testEntry() Entry {
	return Entry{
		Timestamp: testTime,
		Action:    "expense.add",
		Subject:   "tx_3f6c1a2b",
		Amount:    "49.99",
		Balance:   "1450.01",
		Details:   "Supermercado, Mercadona",
	}
}

func logPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "logs", "activity.csv")
}

func TestAppend_NewFile(t *testing.T) {
	path := logPath(t)
	require.NoError(t, Append(path, testEntry()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "timestamp,action,subject,amount,balance,details", lines[0])
	assert.Contains(t, lines[1], `"Supermercado, Mercadona"`)
}

func TestAppend_ExistingFile(t *testing.T) {
	path := logPath(t)
	require.NoError(t, Append(path, testEntry()))

	e2 := testEntry()
	e2.Action = "fund.deposit"
	e2.Subject = ""
	require.NoError(t, Append(path, e2))

	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "expense.add", entries[0].Action)
	assert.Equal(t, "fund.deposit", entries[1].Action)
}

func TestRead_RoundTrip(t *testing.T) {
	path := logPath(t)
	original := testEntry()
	require.NoError(t, Append(path, original))

	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, original, entries[0])
}

func TestRead_NoFile(t *testing.T) {
	entries, err := Read(logPath(t))
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestRead_BadRow(t *testing.T) {
	path := logPath(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("timestamp,action,subject,amount,balance,details\nyesterday,a,b,c,d,e\n"), 0o644))

	_, err := Read(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestTail(t *testing.T) {
	path := logPath(t)
	var entries []Entry
	for i := 0; i < 5; i++ {
		e := testEntry()
		e.Timestamp = testTime.Add(time.Duration(i) * time.Hour)
		entries = append(entries, e)
	}
	require.NoError(t, Append(path, entries...))

	got, err := Tail(path, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, testTime.Add(4*time.Hour), got[1].Timestamp)

	all, err := Tail(path, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}
