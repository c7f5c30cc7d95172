package core

import (
	"time"
)

// Document is the assembled output of the chunking stage: the original text,
// the enriched metadata, and the chunk set derived from it. Documents are
// immutable once assembled; only the metadata map may be enriched before
// indexing.
type Document struct {
	DocumentID   string
	OriginalText string
	Metadata     map[string]any
	Chunks       []Chunk
	Processing   ProcessingInfo
}

// Chunk is a bounded contiguous slice of document text, the unit that gets
// embedded, indexed and retrieved. Its metadata always carries chunk_index,
// total_chunks, chunk_size and document_id so every chunk can be traced back
// to its parent document.
type Chunk struct {
	ChunkID    string
	DocumentID string
	Text       string
	Metadata   map[string]any
}

// ProcessingInfo records how a document was assembled.
type ProcessingInfo struct {
	ChunkCount   int
	TotalLength  int
	ProcessedAt  time.Time
	ChunkSize    int
	ChunkOverlap int
	Method       string
}

// ChunkStats aggregates chunking statistics reported alongside an assembled
// document.
type ChunkStats struct {
	ChunkCount       int
	AverageChunkSize float64
	TotalLength      int
}

// Event levels, mirroring slog's.
const (
	LevelDebug   = "debug"
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Event categories. When a caller does not set a category explicitly it is
// inferred from the payload shape.
const (
	CategoryVectorStore = "vector_store"
	CategoryDocument    = "document_processing"
	CategorySystem      = "system_event"
	CategoryWorkflow    = "workflow"
)

// WorkflowInfo identifies the workflow execution an event belongs to.
type WorkflowInfo struct {
	WorkflowID   string
	WorkflowName string
	ExecutionID  string
	NodeID       string
}

// Event is a single audit record. Events are append-only: once created they
// are never mutated. Payload holds only sanitized fields (identifiers,
// statuses and derived counts), never document content.
type Event struct {
	EventID   string
	Timestamp time.Time
	Level     string
	Category  string
	Workflow  WorkflowInfo
	Payload   map[string]string
}
