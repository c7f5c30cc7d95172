package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopProcessor struct{}

func (noopProcessor) Execute(context.Context, Node, *ExecutionContext) (map[string]any, error) {
	return map[string]any{}, nil
}

func (noopProcessor) ValidateConfig(map[string]any) error { return nil }

func TestRegistryGetUnknownListsAvailable(t *testing.T) {
	r := NewRegistry()
	r.Register("beta", noopProcessor{})
	r.Register("alpha", noopProcessor{})

	_, err := r.Get("gamma")
	require.ErrorIs(t, err, ErrUnknownProcessor)
	assert.Contains(t, err.Error(), "alpha, beta")
}

func TestRegistryGetAndNames(t *testing.T) {
	r := NewRegistry()
	r.Register("stage", noopProcessor{})

	p, err := r.Get("stage")
	require.NoError(t, err)
	assert.NotNil(t, p)
	assert.Equal(t, []string{"stage"}, r.Names())
}

func TestExecutionContextInputs(t *testing.T) {
	ec := NewExecutionContext("wf-1", "ingest", "exec-9")

	assert.Empty(t, ec.InputFor("n1"))

	ec.SetInput("n1", map[string]any{"file_path": "/tmp/a.pdf"})
	assert.Equal(t, "/tmp/a.pdf", ec.InputFor("n1")["file_path"])

	info := ec.WorkflowInfo("n1")
	assert.Equal(t, "wf-1", info.WorkflowID)
	assert.Equal(t, "ingest", info.WorkflowName)
	assert.Equal(t, "exec-9", info.ExecutionID)
	assert.Equal(t, "n1", info.NodeID)
}

func TestConfigIntForms(t *testing.T) {
	got, err := configInt(map[string]any{"n": 5}, "n", 1)
	require.NoError(t, err)
	assert.Equal(t, 5, got)

	got, err = configInt(map[string]any{"n": float64(7)}, "n", 1)
	require.NoError(t, err)
	assert.Equal(t, 7, got)

	got, err = configInt(map[string]any{}, "n", 42)
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	_, err = configInt(map[string]any{"n": 1.5}, "n", 1)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = configInt(map[string]any{"n": "nine"}, "n", 1)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
