// Copyright 2025 Tessella Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/tessella/docpipe/chunk"
	"github.com/tessella/docpipe/core"
	"github.com/tessella/docpipe/engine"
	"github.com/tessella/docpipe/extract"
	"github.com/tessella/docpipe/vector"
)

// ErrRegistryRequired indicates the pipeline was built without a stage
// registry.
var ErrRegistryRequired = errors.New("processor registry is required")

// StatusNoText marks a document that extracted to nothing: zero chunks,
// no index call issued.
const StatusNoText = string(extract.StatusNoText)

// StatusFailed marks a document whose chain failed terminally.
const StatusFailed = "failed"

// Result summarizes one document's trip through the chain. For indexed
// documents Status carries the index operation status (success,
// simulated, error).
type Result struct {
	FilePath     string
	DocumentID   string
	Status       string
	ChunkCount   int
	IndexedCount int
	Err          error
}

// Pipeline runs the four ingestion stages in sequence per document and
// many documents concurrently.
type Pipeline struct {
	registry     *engine.Registry
	workflowName string
	chunkSize    int
	chunkOverlap int
	pool         *ants.Pool
	logger       *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent documents.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithChunkConfig sets the window passed to the chunking stage.
func WithChunkConfig(size, overlap int) Option {
	return func(p *Pipeline) error {
		cfg := chunk.Config{Size: size, Overlap: overlap}
		if err := cfg.Validate(); err != nil {
			return err
		}
		p.chunkSize = size
		p.chunkOverlap = overlap
		return nil
	}
}

// WithWorkflowName overrides the workflow name stamped on audit events.
func WithWorkflowName(name string) Option {
	return func(p *Pipeline) error {
		if name != "" {
			p.workflowName = name
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a pipeline over a stage registry.
func NewPipeline(registry *engine.Registry, opts ...Option) (*Pipeline, error) {
	if registry == nil {
		return nil, ErrRegistryRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		registry:     registry,
		workflowName: "document_ingest",
		chunkSize:    chunk.DefaultChunkSize,
		chunkOverlap: chunk.DefaultChunkOverlap,
		pool:         pool,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			p.Release()
			return nil, err
		}
	}
	return p, nil
}

// Release releases the worker pool. The pipeline should not be used
// after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// IngestFile runs one document through the whole chain. Path, format and
// size violations surface as errors; a document with no extractable text
// completes with StatusNoText and never reaches the index.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (*Result, error) {
	ec := engine.NewExecutionContext(uuid.NewString(), p.workflowName, uuid.NewString())
	state := map[string]any{"file_path": path}

	output, err := p.runStage(ctx, ec, engine.StageFileParsing, "parse", nil, state)
	if err != nil {
		return nil, err
	}
	mergeState(state, output)

	if status, _ := state["status"].(string); status == StatusNoText {
		p.logger.Warn("no text extracted", "path", path)
		return &Result{FilePath: path, Status: StatusNoText}, nil
	}

	output, err = p.runStage(ctx, ec, engine.StageMetadataManager, "normalize", nil, state)
	if err != nil {
		return nil, err
	}
	mergeState(state, output)

	output, err = p.runStage(ctx, ec, engine.StageDocumentProcessor, "assemble", map[string]any{
		"chunk_size":    p.chunkSize,
		"chunk_overlap": p.chunkOverlap,
	}, state)
	if err != nil {
		return nil, err
	}
	mergeState(state, output)

	output, err = p.runStage(ctx, ec, engine.StageVectorStore, "index", map[string]any{
		"operation": string(vector.OpIndex),
	}, state)
	if err != nil {
		return nil, err
	}

	result := &Result{FilePath: path}
	result.DocumentID, _ = state["document_id"].(string)
	result.Status, _ = output["status"].(string)
	result.IndexedCount, _ = output["indexed_count"].(int)
	if chunks, ok := state["chunks"].([]core.Chunk); ok {
		result.ChunkCount = len(chunks)
	}

	p.logger.Info("document ingested",
		"path", path,
		"document_id", result.DocumentID,
		"status", result.Status,
		"chunks", result.ChunkCount)
	return result, nil
}

// IngestFiles runs many documents concurrently over the worker pool.
// The returned slice is position-aligned with paths; per-document
// failures land in the Result, they do not abort the batch.
func (p *Pipeline) IngestFiles(ctx context.Context, paths []string) []*Result {
	results := make([]*Result, len(paths))
	var wg sync.WaitGroup

	for i, path := range paths {
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			result, err := p.IngestFile(ctx, path)
			if err != nil {
				result = &Result{FilePath: path, Status: StatusFailed, Err: err}
			}
			results[i] = result
		})
		if err != nil {
			wg.Done()
			results[i] = &Result{FilePath: path, Status: StatusFailed, Err: err}
		}
	}

	wg.Wait()
	return results
}

// Search runs a query through the vector store stage.
func (p *Pipeline) Search(ctx context.Context, query string, limit int) (map[string]any, error) {
	ec := engine.NewExecutionContext(uuid.NewString(), p.workflowName, uuid.NewString())
	return p.runStage(ctx, ec, engine.StageVectorStore, "search", map[string]any{
		"operation": string(vector.OpSearch),
		"limit":     limit,
	}, map[string]any{"query": query})
}

// Delete removes a document, or specific chunks of it, from the index.
func (p *Pipeline) Delete(ctx context.Context, documentID string, chunkIDs []string) (map[string]any, error) {
	ec := engine.NewExecutionContext(uuid.NewString(), p.workflowName, uuid.NewString())
	input := map[string]any{"document_id": documentID}
	if len(chunkIDs) > 0 {
		input["chunk_ids"] = chunkIDs
	}
	return p.runStage(ctx, ec, engine.StageVectorStore, "delete", map[string]any{
		"operation": string(vector.OpDelete),
	}, input)
}

func (p *Pipeline) runStage(ctx context.Context, ec *engine.ExecutionContext, stage, nodeID string, config, input map[string]any) (map[string]any, error) {
	proc, err := p.registry.Get(stage)
	if err != nil {
		return nil, err
	}
	node := engine.Node{ID: nodeID, Name: stage, Type: stage, Config: config}
	if err := proc.ValidateConfig(node.Config); err != nil {
		return nil, err
	}
	ec.SetInput(nodeID, input)
	return proc.Execute(ctx, node, ec)
}

// mergeState folds a stage output into the accumulated document state.
// Later stages win on key collisions.
func mergeState(state, output map[string]any) {
	for key, value := range output {
		state[key] = value
	}
}
