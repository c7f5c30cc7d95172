package pipeline

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
	"github.com/tessella/docpipe/engine"
	"github.com/tessella/docpipe/extract"
	"github.com/tessella/docpipe/metadata"
	"github.com/tessella/docpipe/vector"
)

// plainExtractor reads .txt files verbatim so the chain can run without
// binary fixtures.
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

func newTestPipeline(t *testing.T, opts ...Option) (*Pipeline, *vector.Index, *recordingSink) {
	t.Helper()

	extractors := extract.NewRegistry()
	extractors.Register(plainExtractor{})

	sink := &recordingSink{}
	index := vector.NewIndex(mock.NewMockEmbedder())

	registry := engine.NewDefaultRegistry(
		extractors,
		metadata.NewNormalizer(),
		index,
		audit.NewLogger(audit.WithSink(sink)),
	)

	p, err := NewPipeline(registry, opts...)
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p, index, sink
}

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewPipelineRequiresRegistry(t *testing.T) {
	_, err := NewPipeline(nil)
	assert.ErrorIs(t, err, ErrRegistryRequired)
}

func TestNewPipelineRejectsBadChunkConfig(t *testing.T) {
	extractors := extract.NewRegistry()
	registry := engine.NewDefaultRegistry(extractors, metadata.NewNormalizer(), vector.NewIndex(mock.NewMockEmbedder()), audit.NewLogger())

	_, err := NewPipeline(registry, WithChunkConfig(200, 200))
	assert.Error(t, err)
}

func TestIngestFile(t *testing.T) {
	p, index, sink := newTestPipeline(t, WithChunkConfig(500, 50))
	path := writeSource(t, "report.txt", strings.Repeat("abcde ", 250))

	result, err := p.IngestFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, vector.StatusSuccess, result.Status)
	assert.NotEmpty(t, result.DocumentID)
	assert.Equal(t, 4, result.ChunkCount)
	assert.Equal(t, 4, result.IndexedCount)
	assert.Equal(t, 4, index.Count())

	// Every stage records its own audit event.
	require.GreaterOrEqual(t, len(sink.events), 4)
	for _, event := range sink.events {
		assert.Equal(t, "document_ingest", event.Workflow.WorkflowName)
	}
}

func TestIngestFileNoText(t *testing.T) {
	p, index, _ := newTestPipeline(t)
	path := writeSource(t, "empty.txt", "   \n\n   ")

	result, err := p.IngestFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, StatusNoText, result.Status)
	assert.Zero(t, result.ChunkCount)
	assert.Zero(t, index.Count())
}

func TestIngestFileNotFound(t *testing.T) {
	p, _, _ := newTestPipeline(t)

	_, err := p.IngestFile(context.Background(), "/nonexistent/report.txt")
	assert.ErrorIs(t, err, extract.ErrNotFound)
}

func TestIngestFiles(t *testing.T) {
	p, index, _ := newTestPipeline(t, WithPoolSize(2))

	paths := []string{
		writeSource(t, "one.txt", "first document body with enough words to chunk once"),
		"/nonexistent/two.txt",
		writeSource(t, "three.txt", "third document body with enough words to chunk once"),
	}

	results := p.IngestFiles(context.Background(), paths)
	require.Len(t, results, 3)

	assert.Equal(t, paths[0], results[0].FilePath)
	assert.Equal(t, vector.StatusSuccess, results[0].Status)

	assert.Equal(t, StatusFailed, results[1].Status)
	assert.ErrorIs(t, results[1].Err, extract.ErrNotFound)

	assert.Equal(t, vector.StatusSuccess, results[2].Status)
	assert.Equal(t, 2, index.Count())
}

func TestSearchAndDelete(t *testing.T) {
	p, index, _ := newTestPipeline(t)
	ctx := context.Background()

	path := writeSource(t, "facts.txt", "the annual maintenance window opens in june")
	result, err := p.IngestFile(ctx, path)
	require.NoError(t, err)
	require.Equal(t, vector.StatusSuccess, result.Status)

	output, err := p.Search(ctx, "the annual maintenance window opens in june", 5)
	require.NoError(t, err)
	assert.Equal(t, vector.StatusSuccess, output["status"])
	assert.Equal(t, 1, output["total_found"])

	output, err = p.Delete(ctx, result.DocumentID, nil)
	require.NoError(t, err)
	assert.Equal(t, vector.StatusSuccess, output["status"])
	assert.Zero(t, index.Count())
}
