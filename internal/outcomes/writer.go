// File: internal/outcomes/writer.go

// Package outcomes persists booking outcome records as line-delimited
// JSON. Records are append-only: written once, never mutated.
package outcomes

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/example/studyroom-bot/internal/booking"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// LogName is the outcome log file inside the output folder.
const LogName = "bookings.jsonl"

// Writer appends outcome records to the run log. Safe for concurrent use
// by parallel agents.
type Writer struct {
	mu   sync.Mutex
	file *os.File
}

// NewWriter opens (creating if needed) the outcome log inside the output
// folder.
func NewWriter(outputFolder string) (*Writer, error) {
	if err := os.MkdirAll(outputFolder, 0o755); err != nil {
		return nil, fmt.Errorf("create output folder: %w", err)
	}
	path := filepath.Join(outputFolder, LogName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open outcome log: %w", err)
	}
	return &Writer{file: f}, nil
}

// Append writes one outcome record and flushes it immediately, so an
// aborted run loses at most the record in flight.
func (w *Writer) Append(o booking.Outcome) error {
	line, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}
	line = append(line, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.file.Write(line); err != nil {
		return fmt.Errorf("append outcome: %w", err)
	}
	return w.file.Sync()
}

// Close closes the underlying log file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}
