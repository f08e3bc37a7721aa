// Package audit appends one JSONL record per wrapper API call. The log
// answers "what did this CLI send, when, and how did it go" without
// storing conversation content; that lives in the transcript store.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Event represents a single API call
type Event struct {
	Timestamp  time.Time `json:"timestamp"`
	ExchangeID string    `json:"exchange_id,omitempty"`
	Op         string    `json:"op"`
	BaseURL    string    `json:"base_url"`
	ProjectURL string    `json:"project_url,omitempty"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms"`
}

// Logger appends events to a JSONL file
type Logger struct {
	path string
}

// NewLogger creates a logger writing to path. The file and its directory
// are created on first append.
func NewLogger(path string) *Logger {
	return &Logger{path: path}
}

// Append writes one event to the log
func (l *Logger) Append(ev Event) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create audit log directory: %w", err)
	}

	// Open file in append mode
	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer file.Close()

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write audit event: %w", err)
	}

	return nil
}

// ReadAll reads every event in the log, oldest first. Malformed lines are
// skipped.
func (l *Logger) ReadAll() ([]Event, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Event{}, nil // No events yet
		}
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}

	var events []Event
	for _, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}

		var ev Event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			// Skip malformed lines
			continue
		}

		events = append(events, ev)
	}

	return events, nil
}

// Recent returns the n most recent events
func (l *Logger) Recent(n int) ([]Event, error) {
	events, err := l.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(events) <= n {
		return events, nil
	}

	return events[len(events)-n:], nil
}
