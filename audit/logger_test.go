package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessella/docpipe/core"
)

type captureSink struct {
	events []*core.Event
	err    error
	closed bool
}

func (c *captureSink) Write(_ context.Context, event *core.Event) error {
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, event)
	return nil
}

func (c *captureSink) Close() error {
	c.closed = true
	return nil
}

func testWorkflow() core.WorkflowInfo {
	return core.WorkflowInfo{
		WorkflowID:   "wf-1",
		WorkflowName: "ingest",
		ExecutionID:  "exec-9",
		NodeID:       "node-3",
	}
}

func TestRecordBuildsEvent(t *testing.T) {
	sink := &captureSink{}
	at := time.Date(2025, 6, 15, 9, 41, 0, 0, time.UTC)
	logger := NewLogger(WithSink(sink), WithClock(func() time.Time { return at }))

	event := logger.Record(context.Background(), core.LevelInfo, "", testWorkflow(), map[string]any{
		"document_id": "doc_x",
		"status":      "success",
		"text":        "raw document body that must not leak",
	})

	require.NotNil(t, event)
	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, at, event.Timestamp)
	assert.Equal(t, core.LevelInfo, event.Level)
	assert.Equal(t, core.CategoryDocument, event.Category)
	assert.Equal(t, "wf-1", event.Workflow.WorkflowID)

	assert.Equal(t, "doc_x", event.Payload["document_id"])
	assert.Equal(t, "36", event.Payload["text_length"])
	assert.NotContains(t, event.Payload, "text")

	require.Len(t, sink.events, 1)
	assert.Same(t, event, sink.events[0])
}

func TestRecordUnknownLevelFallsBack(t *testing.T) {
	logger := NewLogger()
	event := logger.Record(context.Background(), "critical", "", core.WorkflowInfo{}, nil)
	assert.Equal(t, core.LevelInfo, event.Level)
}

func TestRecordSinkFailureDoesNotPropagate(t *testing.T) {
	failing := &captureSink{err: errors.New("disk full")}
	working := &captureSink{}
	logger := NewLogger(WithSink(failing), WithSink(working))

	event := logger.Record(context.Background(), core.LevelError, core.CategorySystem, testWorkflow(), map[string]any{
		"event_type": "sink_check",
	})

	require.NotNil(t, event)
	assert.Len(t, working.events, 1)
}

func TestRecordUniqueEventIDs(t *testing.T) {
	logger := NewLogger()
	a := logger.Record(context.Background(), core.LevelInfo, "", core.WorkflowInfo{}, nil)
	b := logger.Record(context.Background(), core.LevelInfo, "", core.WorkflowInfo{}, nil)
	assert.NotEqual(t, a.EventID, b.EventID)
}

func TestLoggerClose(t *testing.T) {
	sink := &captureSink{}
	logger := NewLogger(WithSink(sink))
	require.NoError(t, logger.Close())
	assert.True(t, sink.closed)
}

func TestInferCategory(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		want    string
	}{
		{"vector operation", map[string]any{"operation": "search"}, core.CategoryVectorStore},
		{"unknown operation with doc", map[string]any{"operation": "compact", "document_id": "d"}, core.CategoryDocument},
		{"document", map[string]any{"document_id": "doc_x"}, core.CategoryDocument},
		{"system", map[string]any{"event_type": "startup"}, core.CategorySystem},
		{"fallback", map[string]any{"anything": 1}, core.CategoryWorkflow},
		{"empty", nil, core.CategoryWorkflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferCategory(tt.payload))
		})
	}
}

func TestSanitizeDropsUnknownFields(t *testing.T) {
	sanitized := Sanitize(map[string]any{
		"document_id":  "doc_x",
		"operation":    "index",
		"chunk_count":  7,
		"completeness": 0.75,
		"api_key":      "secret",
		"raw_payload":  map[string]any{"x": 1},
	})

	assert.Equal(t, "doc_x", sanitized["document_id"])
	assert.Equal(t, "index", sanitized["operation"])
	assert.Equal(t, "7", sanitized["chunk_count"])
	assert.Equal(t, "0.75", sanitized["completeness"])
	assert.NotContains(t, sanitized, "api_key")
	assert.NotContains(t, sanitized, "raw_payload")
}

func TestSanitizeDerivedCounts(t *testing.T) {
	sanitized := Sanitize(map[string]any{
		"text":    "0123456789",
		"query":   "find me",
		"chunks":  []core.Chunk{{}, {}, {}},
		"results": []any{"a", "b"},
	})

	assert.Equal(t, "10", sanitized["text_length"])
	assert.Equal(t, "7", sanitized["query_length"])
	assert.Equal(t, "3", sanitized["chunks_count"])
	assert.Equal(t, "2", sanitized["results_count"])
	assert.NotContains(t, sanitized, "text")
	assert.NotContains(t, sanitized, "query")
	assert.NotContains(t, sanitized, "chunks")
	assert.NotContains(t, sanitized, "results")
}

func TestStreamSinkAppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.log")
	sink, err := NewStreamSink(path)
	require.NoError(t, err)

	logger := NewLogger(WithSink(sink))
	logger.Record(context.Background(), core.LevelInfo, "", testWorkflow(), map[string]any{"document_id": "doc_1"})
	logger.Record(context.Background(), core.LevelWarning, "", testWorkflow(), map[string]any{"event_type": "retry"})
	require.NoError(t, logger.Close())

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var lines int
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var record map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &record))
		assert.NotEmpty(t, record["event_id"])
		assert.NotEmpty(t, record["category"])
		lines++
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, 2, lines)
}
