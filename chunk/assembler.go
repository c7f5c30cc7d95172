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

package chunk

import (
	"log/slog"
	"maps"
	"time"

	"github.com/tessella/docpipe/core"
)

// methodSlidingWindow is recorded in processing info for traceability.
const methodSlidingWindow = "sliding_window"

// Assembler turns canonical text plus enriched metadata into an immutable
// Document with its chunk set and aggregate stats.
type Assembler struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// WithLogger sets the logger used for assembly summaries.
func WithLogger(logger *slog.Logger) AssemblerOption {
	return func(a *Assembler) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithClock overrides the time source. Used by tests to pin document IDs.
func WithClock(now func() time.Time) AssemblerOption {
	return func(a *Assembler) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAssembler validates cfg and creates an assembler. A zero-valued cfg
// gets the defaults before validation.
func NewAssembler(cfg Config, opts ...AssemblerOption) (*Assembler, error) {
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &Assembler{
		cfg:    cfg,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Assemble splits text and wraps the result in a Document. The document ID
// comes from fields when the normalizer set one, otherwise it is derived
// from content, path and the current time bucket. Empty text yields a
// document with zero chunks, not an error.
func (a *Assembler) Assemble(text string, fields map[string]any, path string) (*core.Document, core.ChunkStats) {
	documentID, _ := fields["document_id"].(string)
	if documentID == "" {
		documentID = core.NewDocumentID(text, path, a.now())
	}

	pieces := Split(text, a.cfg)

	chunks := make([]core.Chunk, 0, len(pieces))
	totalChunkBytes := 0
	for i, piece := range pieces {
		chunkMeta := maps.Clone(fields)
		if chunkMeta == nil {
			chunkMeta = make(map[string]any, 4)
		}
		chunkMeta["chunk_index"] = i
		chunkMeta["total_chunks"] = len(pieces)
		chunkMeta["chunk_size"] = len(piece)
		chunkMeta["document_id"] = documentID

		chunks = append(chunks, core.Chunk{
			ChunkID:    core.ChunkID(documentID, i),
			DocumentID: documentID,
			Text:       piece,
			Metadata:   chunkMeta,
		})
		totalChunkBytes += len(piece)
	}

	doc := &core.Document{
		DocumentID:   documentID,
		OriginalText: text,
		Metadata:     fields,
		Chunks:       chunks,
		Processing: core.ProcessingInfo{
			ChunkCount:   len(chunks),
			TotalLength:  len(text),
			ProcessedAt:  a.now().UTC(),
			ChunkSize:    a.cfg.Size,
			ChunkOverlap: a.cfg.Overlap,
			Method:       methodSlidingWindow,
		},
	}

	stats := core.ChunkStats{
		ChunkCount:  len(chunks),
		TotalLength: len(text),
	}
	if len(chunks) > 0 {
		stats.AverageChunkSize = float64(totalChunkBytes) / float64(len(chunks))
	}

	a.logger.Info("document assembled",
		"document_id", documentID,
		"chunks", len(chunks),
		"total_length", len(text))

	return doc, stats
}
