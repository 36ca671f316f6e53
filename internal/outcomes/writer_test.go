// File: internal/outcomes/writer_test.go
package outcomes

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/studyroom-bot/internal/booking"
	"github.com/example/studyroom-bot/internal/portal"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	return lines
}

func TestWriterAppendsLineDelimitedRecords(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	require.NoError(t, err)
	defer w.Close()

	slot := &portal.Slot{
		ResourceID: "A1",
		Start:      time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC),
		End:        time.Date(2025, 9, 1, 11, 0, 0, 0, time.UTC),
		Available:  true,
	}
	require.NoError(t, w.Append(booking.Outcome{
		RunID: "run-1", Account: "alice", Slot: slot,
		Success: true, Timestamp: time.Now(), FinalState: "Booked",
	}))
	require.NoError(t, w.Append(booking.Outcome{
		RunID: "run-1", Account: "bob",
		Success: false, Timestamp: time.Now(),
		Reason: booking.ReasonNoSlotAvailable, FinalState: "Failed",
	}))

	lines := readLines(t, filepath.Join(dir, LogName))
	require.Len(t, lines, 2)

	var first, second booking.Outcome
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))

	assert.Equal(t, "alice", first.Account)
	require.NotNil(t, first.Slot)
	assert.Equal(t, "A1", first.Slot.ResourceID)
	assert.True(t, first.Success)

	assert.Equal(t, "bob", second.Account)
	assert.Nil(t, second.Slot)
	assert.Equal(t, booking.ReasonNoSlotAvailable, second.Reason)
}

func TestWriterAppendsAcrossReopens(t *testing.T) {
	// The log is append-only: a later run must not clobber earlier
	// records.
	dir := t.TempDir()

	w, err := NewWriter(dir)
	require.NoError(t, err)
	require.NoError(t, w.Append(booking.Outcome{RunID: "run-1", Account: "alice", FinalState: "Booked"}))
	require.NoError(t, w.Close())

	w, err = NewWriter(dir)
	require.NoError(t, err)
	require.NoError(t, w.Append(booking.Outcome{RunID: "run-2", Account: "alice", FinalState: "Failed"}))
	require.NoError(t, w.Close())

	lines := readLines(t, filepath.Join(dir, LogName))
	assert.Len(t, lines, 2)
}

func TestNewWriterCreatesOutputFolder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	w, err := NewWriter(dir)
	require.NoError(t, err)
	defer w.Close()

	_, err = os.Stat(dir)
	assert.NoError(t, err)
}
