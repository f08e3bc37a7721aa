package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndReadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "requests.log")
	logger := NewLogger(path)

	require.NoError(t, logger.Append(Event{
		ExchangeID: "ex-1",
		Op:         "chat",
		BaseURL:    "http://vm:8000",
		Success:    true,
		DurationMS: 1500,
	}))
	require.NoError(t, logger.Append(Event{
		Op:      "status",
		BaseURL: "http://vm:8000",
		Success: false,
		Error:   "status: connection failed: dial tcp: refused",
	}))

	events, err := logger.ReadAll()
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "chat", events[0].Op)
	assert.Equal(t, "ex-1", events[0].ExchangeID)
	assert.True(t, events[0].Success)
	assert.False(t, events[0].Timestamp.IsZero(), "zero timestamp is stamped on append")

	assert.Equal(t, "status", events[1].Op)
	assert.Contains(t, events[1].Error, "connection failed")
}

func TestEventsAreOneJSONPerLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requests.log")
	logger := NewLogger(path)

	require.NoError(t, logger.Append(Event{Op: "chat", BaseURL: "http://vm:8000", Success: true}))
	require.NoError(t, logger.Append(Event{Op: "projects", BaseURL: "http://vm:8000", Success: true}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	assert.Len(t, lines, 2)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "{"))
		assert.True(t, strings.HasSuffix(line, "}"))
	}
}

func TestReadAllSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requests.log")
	logger := NewLogger(path)

	require.NoError(t, logger.Append(Event{Op: "chat", BaseURL: "http://vm:8000", Success: true}))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("this is not json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, logger.Append(Event{Op: "reload", BaseURL: "http://vm:8000", Success: true}))

	events, err := logger.ReadAll()
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "chat", events[0].Op)
	assert.Equal(t, "reload", events[1].Op)
}

func TestReadAllMissingFile(t *testing.T) {
	logger := NewLogger(filepath.Join(t.TempDir(), "never-written.log"))

	events, err := logger.ReadAll()
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requests.log")
	logger := NewLogger(path)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		require.NoError(t, logger.Append(Event{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Op:        fmt.Sprintf("chat-%d", i),
			BaseURL:   "http://vm:8000",
		}))
	}

	recent, err := logger.Recent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "chat-3", recent[0].Op)
	assert.Equal(t, "chat-4", recent[1].Op)

	all, err := logger.Recent(100)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}
