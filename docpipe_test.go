package docpipe

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessella/docpipe/ai/mock"
	"github.com/tessella/docpipe/core"
	"github.com/tessella/docpipe/extract"
	"github.com/tessella/docpipe/vector"
)

type plainExtractor struct{}

func (plainExtractor) Extensions() []string { return []string{".txt"} }

func (plainExtractor) Extract(_ context.Context, path string) (*extract.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &extract.Result{Text: string(data), Method: "plain"}, nil
}

func newTestSystem(t *testing.T) *System {
	t.Helper()
	system, err := NewSystem(t.TempDir(), WithEmbedder(mock.NewMockEmbedder()))
	require.NoError(t, err)
	t.Cleanup(func() { system.Close() })
	system.RegisterExtractor(plainExtractor{})
	return system
}

func TestSystemEndToEnd(t *testing.T) {
	system := newTestSystem(t)
	ctx := context.Background()

	p, err := system.NewPipeline()
	require.NoError(t, err)
	defer p.Release()

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("the quarterly report covers revenue and churn"), 0o644))

	result, err := p.IngestFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, vector.StatusSuccess, result.Status)
	assert.Equal(t, 1, system.Index().Count())

	search := system.Index().Search(ctx, "the quarterly report covers revenue and churn", 3)
	require.Equal(t, vector.StatusSuccess, search.Status)
	require.NotEmpty(t, search.Results)
	assert.Equal(t, result.DocumentID, search.Results[0].Metadata["document_id"])

	// Each stage left an audit event behind the store sink.
	events, err := system.Events().EventsByCategory(ctx, core.CategoryDocument, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, events)
}

func TestSystemAuditLogStream(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "audit.jsonl")
	system, err := NewSystem(t.TempDir(),
		WithEmbedder(mock.NewMockEmbedder()),
		WithAuditLog(logPath),
	)
	require.NoError(t, err)

	event := system.AuditLogger().Record(context.Background(),
		core.LevelInfo, core.CategorySystem, core.WorkflowInfo{},
		map[string]any{"event_type": "startup"})

	// Both durable sinks received the event.
	stored, err := system.Events().GetEvent(context.Background(), event.EventID)
	require.NoError(t, err)
	assert.Equal(t, core.CategorySystem, stored.Category)

	require.NoError(t, system.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], event.EventID)
	assert.Contains(t, lines[0], core.CategorySystem)
}

func TestSystemDegradedWithoutEmbedder(t *testing.T) {
	system, err := NewSystem(t.TempDir())
	require.NoError(t, err)
	defer system.Close()

	assert.True(t, system.Index().Degraded())

	result := system.Index().Search(context.Background(), "anything", 5)
	assert.Equal(t, vector.StatusSimulated, result.Status)
}
