package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessella/docpipe/ai/mock"
	"github.com/tessella/docpipe/audit"
	"github.com/tessella/docpipe/core"
	"github.com/tessella/docpipe/extract"
	"github.com/tessella/docpipe/metadata"
	"github.com/tessella/docpipe/vector"
)

// plainExtractor stands in for a real document format in stage tests.
type plainExtractor struct{}

func (plainExtractor) Extensions() []string { return []string{".txt"} }

func (plainExtractor) Extract(_ context.Context, path string) (*extract.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &extract.Result{Text: string(data), Method: "plain"}, nil
}

type recordingSink struct {
	events []*core.Event
}

func (r *recordingSink) Write(_ context.Context, event *core.Event) error {
	r.events = append(r.events, event)
	return nil
}

func (r *recordingSink) Close() error { return nil }

func testRegistry(t *testing.T) (*Registry, *recordingSink) {
	t.Helper()
	extractors := extract.NewRegistry()
	extractors.Register(plainExtractor{})

	sink := &recordingSink{}
	events := audit.NewLogger(audit.WithSink(sink))

	registry := NewDefaultRegistry(
		extractors,
		metadata.NewNormalizer(),
		vector.NewIndex(mock.NewMockEmbedder()),
		events,
	)
	return registry, sink
}

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileParsingExecute(t *testing.T) {
	registry, sink := testRegistry(t)
	p, err := registry.Get(StageFileParsing)
	require.NoError(t, err)

	path := writeSource(t, "plain text body for the parsing stage")
	ec := NewExecutionContext("wf-1", "ingest", "exec-1")
	ec.SetInput("n1", map[string]any{"file_path": path})

	output, err := p.Execute(context.Background(), Node{ID: "n1", Name: "parse"}, ec)
	require.NoError(t, err)

	assert.Equal(t, "plain text body for the parsing stage", output["text"])
	assert.Equal(t, string(extract.StatusSuccess), output["status"])
	require.Len(t, sink.events, 1)
	assert.NotContains(t, sink.events[0].Payload, "text")
	assert.Equal(t, "37", sink.events[0].Payload["text_length"])
}

func TestFileParsingMissingInput(t *testing.T) {
	registry, _ := testRegistry(t)
	p, err := registry.Get(StageFileParsing)
	require.NoError(t, err)

	ec := NewExecutionContext("wf-1", "ingest", "exec-1")
	_, err = p.Execute(context.Background(), Node{ID: "n1"}, ec)
	assert.ErrorIs(t, err, ErrMissingInput)
}

func TestFileParsingFatalErrorBubbles(t *testing.T) {
	registry, _ := testRegistry(t)
	p, err := registry.Get(StageFileParsing)
	require.NoError(t, err)

	ec := NewExecutionContext("wf-1", "ingest", "exec-1")
	ec.SetInput("n1", map[string]any{"file_path": "/nonexistent.txt"})

	_, err = p.Execute(context.Background(), Node{ID: "n1"}, ec)
	assert.ErrorIs(t, err, extract.ErrNotFound)
}

func TestMetadataManagerExecute(t *testing.T) {
	registry, _ := testRegistry(t)
	p, err := registry.Get(StageMetadataManager)
	require.NoError(t, err)

	path := writeSource(t, "the body and the rest of the content in this file")
	ec := NewExecutionContext("wf-1", "ingest", "exec-1")
	ec.SetInput("n2", map[string]any{
		"text":      "the body and the rest of the content in this file",
		"metadata":  map[string]any{"/Title": "A Title"},
		"file_info": extract.FileInfo{Path: path, Name: "source.txt", Extension: ".txt"},
	})

	output, err := p.Execute(context.Background(), Node{ID: "n2"}, ec)
	require.NoError(t, err)

	fields, ok := output["processed_metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "A Title", fields["title"])
	assert.NotEmpty(t, fields["document_id"])
	assert.NotEmpty(t, fields["content_hash"])

	validation, ok := output["validation_result"].(metadata.Validation)
	require.True(t, ok)
	assert.NotEqual(t, metadata.StatusInvalid, validation.Status)
}

func TestDocumentProcessorExecute(t *testing.T) {
	registry, sink := testRegistry(t)
	p, err := registry.Get(StageDocumentProcessor)
	require.NoError(t, err)

	text := strings.Repeat("abcde ", 250)
	ec := NewExecutionContext("wf-1", "ingest", "exec-1")
	ec.SetInput("n3", map[string]any{
		"text":               text,
		"file_path":          "/data/sample.txt",
		"processed_metadata": map[string]any{"title": "Sample"},
	})

	node := Node{ID: "n3", Config: map[string]any{"chunk_size": 500, "chunk_overlap": 50}}
	output, err := p.Execute(context.Background(), node, ec)
	require.NoError(t, err)

	chunks, ok := output["chunks"].([]core.Chunk)
	require.True(t, ok)
	assert.Len(t, chunks, 4)
	assert.NotEmpty(t, output["document_id"])

	stats, ok := output["processing_stats"].(core.ChunkStats)
	require.True(t, ok)
	assert.Equal(t, 4, stats.ChunkCount)

	require.NotEmpty(t, sink.events)
	last := sink.events[len(sink.events)-1]
	assert.Equal(t, "4", last.Payload["chunk_count"])
}

func TestDocumentProcessorValidateConfig(t *testing.T) {
	p := NewDocumentProcessor(nil)

	assert.NoError(t, p.ValidateConfig(map[string]any{"chunk_size": 500, "chunk_overlap": 50}))
	assert.NoError(t, p.ValidateConfig(map[string]any{}))
	assert.ErrorIs(t, p.ValidateConfig(map[string]any{"chunk_size": 50}), ErrInvalidConfig)
	assert.ErrorIs(t, p.ValidateConfig(map[string]any{"chunk_size": 200, "chunk_overlap": 200}), ErrInvalidConfig)
	assert.ErrorIs(t, p.ValidateConfig(map[string]any{"window": 500}), ErrUnknownConfigKey)
}

func TestVectorStoreIndexAndSearch(t *testing.T) {
	registry, _ := testRegistry(t)
	p, err := registry.Get(StageVectorStore)
	require.NoError(t, err)
	ctx := context.Background()

	chunks := []core.Chunk{
		{
			ChunkID:    core.ChunkID("doc_a", 0),
			DocumentID: "doc_a",
			Text:       "searchable chunk content",
			Metadata:   map[string]any{"document_id": "doc_a"},
		},
	}

	ec := NewExecutionContext("wf-1", "ingest", "exec-1")
	ec.SetInput("n4", map[string]any{"document_id": "doc_a", "chunks": chunks})

	output, err := p.Execute(ctx, Node{ID: "n4", Config: map[string]any{"operation": "index"}}, ec)
	require.NoError(t, err)
	assert.Equal(t, vector.StatusSuccess, output["status"])
	assert.Equal(t, 1, output["indexed_count"])

	ec.SetInput("n5", map[string]any{"query": "searchable chunk content"})
	output, err = p.Execute(ctx, Node{ID: "n5", Config: map[string]any{"operation": "search", "limit": 1}}, ec)
	require.NoError(t, err)
	assert.Equal(t, vector.StatusSuccess, output["status"])
	assert.Equal(t, 1, output["total_found"])
}

func TestVectorStoreValidateConfig(t *testing.T) {
	p := NewVectorStoreProcessor(nil, nil)

	assert.NoError(t, p.ValidateConfig(map[string]any{"operation": "delete"}))
	assert.NoError(t, p.ValidateConfig(map[string]any{"operation": "search", "limit": 100}))
	assert.ErrorIs(t, p.ValidateConfig(map[string]any{"operation": "compact"}), ErrInvalidConfig)
	assert.ErrorIs(t, p.ValidateConfig(map[string]any{"operation": "search", "limit": 0}), ErrInvalidConfig)
	assert.ErrorIs(t, p.ValidateConfig(map[string]any{"collection": "x"}), ErrUnknownConfigKey)
}

func TestEventLoggerExecute(t *testing.T) {
	registry, sink := testRegistry(t)
	p, err := registry.Get(StageEventLogger)
	require.NoError(t, err)

	ec := NewExecutionContext("wf-1", "ingest", "exec-1")
	ec.SetInput("n6", map[string]any{"event_type": "ingest_complete", "status": "success"})

	node := Node{ID: "n6", Config: map[string]any{"log_level": "info"}}
	output, err := p.Execute(context.Background(), node, ec)
	require.NoError(t, err)

	assert.Equal(t, "logged", output["status"])
	assert.NotEmpty(t, output["event_id"])
	require.NotEmpty(t, sink.events)
	assert.Equal(t, core.CategorySystem, sink.events[len(sink.events)-1].Category)
}

func TestEventLoggerValidateConfig(t *testing.T) {
	p := NewEventLoggerProcessor(audit.NewLogger())

	assert.NoError(t, p.ValidateConfig(map[string]any{"log_level": "debug"}))
	assert.NoError(t, p.ValidateConfig(nil))
	assert.ErrorIs(t, p.ValidateConfig(map[string]any{"log_level": "critical"}), ErrInvalidConfig)
	assert.ErrorIs(t, p.ValidateConfig(map[string]any{"verbosity": 3}), ErrUnknownConfigKey)
}
