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

package engine

import (
	"context"
	"fmt"

	"github.com/tessella/docpipe/audit"
	"github.com/tessella/docpipe/chunk"
	"github.com/tessella/docpipe/core"
	"github.com/tessella/docpipe/extract"
	"github.com/tessella/docpipe/metadata"
	"github.com/tessella/docpipe/vector"
)

// Logical stage names the registry is keyed by.
const (
	StageFileParsing       = "file_parsing"
	StageMetadataManager   = "metadata_manager"
	StageDocumentProcessor = "document_processor"
	StageVectorStore       = "vector_store"
	StageEventLogger       = "event_logger"
)

// NewDefaultRegistry wires all five stage processors into a registry.
// The audit logger may be nil; stages then skip boundary events.
func NewDefaultRegistry(
	extractors *extract.Registry,
	normalizer *metadata.Normalizer,
	index *vector.Index,
	events *audit.Logger,
) *Registry {
	r := NewRegistry()
	r.Register(StageFileParsing, NewFileParsingProcessor(extractors, events))
	r.Register(StageMetadataManager, NewMetadataManagerProcessor(normalizer, events))
	r.Register(StageDocumentProcessor, NewDocumentProcessor(events))
	r.Register(StageVectorStore, NewVectorStoreProcessor(index, events))
	r.Register(StageEventLogger, NewEventLoggerProcessor(events))
	return r
}

// FileParsingProcessor runs extraction against a file path input.
type FileParsingProcessor struct {
	extractors *extract.Registry
	events     *audit.Logger
}

var _ Processor = (*FileParsingProcessor)(nil)

// NewFileParsingProcessor creates the extraction stage.
func NewFileParsingProcessor(extractors *extract.Registry, events *audit.Logger) *FileParsingProcessor {
	return &FileParsingProcessor{extractors: extractors, events: events}
}

// ValidateConfig implements Processor. The stage takes no options.
func (p *FileParsingProcessor) ValidateConfig(config map[string]any) error {
	return checkConfigKeys(config)
}

// Execute implements Processor. Path, format and size violations are
// fatal and bubble to the caller; everything else lands in the result.
func (p *FileParsingProcessor) Execute(ctx context.Context, node Node, ec *ExecutionContext) (map[string]any, error) {
	input := ec.InputFor(node.ID)
	path, _ := input["file_path"].(string)
	if path == "" {
		return nil, fmt.Errorf("%w: file_path", ErrMissingInput)
	}

	result, err := p.extractors.ExtractFile(ctx, path)
	if err != nil {
		p.record(ctx, node, ec, core.LevelError, map[string]any{
			"status": string(extract.StatusFailed),
			"text":   "",
		})
		return nil, err
	}

	level := core.LevelInfo
	if result.Status == extract.StatusNoText {
		level = core.LevelWarning
	}
	p.record(ctx, node, ec, level, map[string]any{
		"status":    string(result.Status),
		"method":    result.Method,
		"file_size": result.File.Size,
		"text":      result.Text,
	})

	return map[string]any{
		"text":              result.Text,
		"metadata":          result.Metadata,
		"file_info":         result.File,
		"file_path":         path,
		"status":            string(result.Status),
		"extraction_method": result.Method,
	}, nil
}

func (p *FileParsingProcessor) record(ctx context.Context, node Node, ec *ExecutionContext, level string, payload map[string]any) {
	if p.events != nil {
		p.events.Record(ctx, level, core.CategoryDocument, ec.WorkflowInfo(node.ID), payload)
	}
}

// MetadataManagerProcessor runs normalization over extracted metadata.
type MetadataManagerProcessor struct {
	normalizer *metadata.Normalizer
	events     *audit.Logger
}

var _ Processor = (*MetadataManagerProcessor)(nil)

// NewMetadataManagerProcessor creates the normalization stage.
func NewMetadataManagerProcessor(normalizer *metadata.Normalizer, events *audit.Logger) *MetadataManagerProcessor {
	return &MetadataManagerProcessor{normalizer: normalizer, events: events}
}

// ValidateConfig implements Processor. The stage takes no options.
func (p *MetadataManagerProcessor) ValidateConfig(config map[string]any) error {
	return checkConfigKeys(config)
}

// Execute implements Processor.
func (p *MetadataManagerProcessor) Execute(ctx context.Context, node Node, ec *ExecutionContext) (map[string]any, error) {
	input := ec.InputFor(node.ID)
	raw, _ := input["metadata"].(map[string]any)
	fileInfo, _ := input["file_info"].(extract.FileInfo)
	text, _ := input["text"].(string)

	result := p.normalizer.Normalize(raw, fileInfo, text)

	if p.events != nil {
		p.events.Record(ctx, core.LevelInfo, "", ec.WorkflowInfo(node.ID), map[string]any{
			"document_id":       result.Fields["document_id"],
			"validation_status": result.Validation.Status,
			"completeness":      result.Completeness,
			"metadata_fields":   len(result.Fields),
		})
	}

	return map[string]any{
		"processed_metadata":    result.Fields,
		"validation_result":     result.Validation,
		"metadata_completeness": result.Completeness,
	}, nil
}

// DocumentProcessor runs chunking and document assembly.
type DocumentProcessor struct {
	events *audit.Logger
}

var _ Processor = (*DocumentProcessor)(nil)

// NewDocumentProcessor creates the chunking stage.
func NewDocumentProcessor(events *audit.Logger) *DocumentProcessor {
	return &DocumentProcessor{events: events}
}

// ValidateConfig implements Processor. chunk_size and chunk_overlap must
// form a window the splitter accepts.
func (p *DocumentProcessor) ValidateConfig(config map[string]any) error {
	if err := checkConfigKeys(config, "chunk_size", "chunk_overlap"); err != nil {
		return err
	}
	cfg, err := p.chunkConfig(config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Execute implements Processor.
func (p *DocumentProcessor) Execute(ctx context.Context, node Node, ec *ExecutionContext) (map[string]any, error) {
	input := ec.InputFor(node.ID)
	text, _ := input["text"].(string)
	path, _ := input["file_path"].(string)
	fields, _ := input["processed_metadata"].(map[string]any)
	if fields == nil {
		fields, _ = input["metadata"].(map[string]any)
	}

	cfg, err := p.chunkConfig(node.Config)
	if err != nil {
		return nil, err
	}
	assembler, err := chunk.NewAssembler(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	doc, stats := assembler.Assemble(text, fields, path)

	if p.events != nil {
		p.events.Record(ctx, core.LevelInfo, "", ec.WorkflowInfo(node.ID), map[string]any{
			"document_id": doc.DocumentID,
			"chunk_count": stats.ChunkCount,
			"status":      "success",
		})
	}

	return map[string]any{
		"processed_document": doc,
		"document_id":        doc.DocumentID,
		"chunks":             doc.Chunks,
		"processing_stats":   stats,
	}, nil
}

func (p *DocumentProcessor) chunkConfig(config map[string]any) (chunk.Config, error) {
	size, err := configInt(config, "chunk_size", chunk.DefaultChunkSize)
	if err != nil {
		return chunk.Config{}, err
	}
	overlap, err := configInt(config, "chunk_overlap", chunk.DefaultChunkOverlap)
	if err != nil {
		return chunk.Config{}, err
	}
	return chunk.Config{Size: size, Overlap: overlap}, nil
}

// VectorStoreProcessor runs the configured index operation.
type VectorStoreProcessor struct {
	index  *vector.Index
	events *audit.Logger
}

var _ Processor = (*VectorStoreProcessor)(nil)

// NewVectorStoreProcessor creates the index stage.
func NewVectorStoreProcessor(index *vector.Index, events *audit.Logger) *VectorStoreProcessor {
	return &VectorStoreProcessor{index: index, events: events}
}

// ValidateConfig implements Processor.
func (p *VectorStoreProcessor) ValidateConfig(config map[string]any) error {
	if err := checkConfigKeys(config, "operation", "limit"); err != nil {
		return err
	}
	cfg, err := p.vectorConfig(config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Execute implements Processor. Backend failures surface in the result
// payload with status "error", never as an execution error.
func (p *VectorStoreProcessor) Execute(ctx context.Context, node Node, ec *ExecutionContext) (map[string]any, error) {
	cfg, err := p.vectorConfig(node.Config)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	input := ec.InputFor(node.ID)
	documentID, chunks := documentInput(input)

	var output map[string]any
	switch cfg.Operation {
	case vector.OpIndex:
		result := p.index.Index(ctx, documentID, chunks)
		output = map[string]any{
			"status":        result.Status,
			"operation":     string(result.Operation),
			"document_id":   result.DocumentID,
			"indexed_count": result.IndexedCount,
			"chunk_ids":     result.ChunkIDs,
		}
	case vector.OpUpdate:
		result := p.index.Update(ctx, documentID, chunks)
		output = map[string]any{
			"status":        result.Status,
			"operation":     string(result.Operation),
			"document_id":   result.DocumentID,
			"indexed_count": result.IndexedCount,
			"chunk_ids":     result.ChunkIDs,
		}
	case vector.OpSearch:
		query, _ := input["query"].(string)
		if query == "" {
			query, _ = input["search_query"].(string)
		}
		result := p.index.Search(ctx, query, cfg.Limit)
		output = map[string]any{
			"status":      result.Status,
			"operation":   string(result.Operation),
			"query":       result.Query,
			"results":     result.Results,
			"total_found": result.TotalFound,
		}
	case vector.OpDelete:
		result := p.index.Delete(ctx, documentID, stringSlice(input["chunk_ids"]))
		output = map[string]any{
			"status":        result.Status,
			"operation":     string(result.Operation),
			"document_id":   result.DocumentID,
			"deleted_count": result.DeletedCount,
			"deleted_ids":   result.DeletedIDs,
		}
	}

	if p.events != nil {
		p.events.Record(ctx, core.LevelInfo, "", ec.WorkflowInfo(node.ID), output)
	}
	return output, nil
}

func (p *VectorStoreProcessor) vectorConfig(config map[string]any) (vector.Config, error) {
	op, err := configString(config, "operation", string(vector.OpIndex))
	if err != nil {
		return vector.Config{}, err
	}
	limit, err := configInt(config, "limit", vector.DefaultSearchLimit)
	if err != nil {
		return vector.Config{}, err
	}
	return vector.Config{Operation: vector.Operation(op), Limit: limit}, nil
}

// EventLoggerProcessor records an explicit audit event from its input.
type EventLoggerProcessor struct {
	events *audit.Logger
}

var _ Processor = (*EventLoggerProcessor)(nil)

// NewEventLoggerProcessor creates the audit stage.
func NewEventLoggerProcessor(events *audit.Logger) *EventLoggerProcessor {
	return &EventLoggerProcessor{events: events}
}

// ValidateConfig implements Processor.
func (p *EventLoggerProcessor) ValidateConfig(config map[string]any) error {
	if err := checkConfigKeys(config, "log_level", "event_category"); err != nil {
		return err
	}
	level, err := configString(config, "log_level", core.LevelInfo)
	if err != nil {
		return err
	}
	if err := core.ValidateLevel(level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := configString(config, "event_category", ""); err != nil {
		return err
	}
	return nil
}

// Execute implements Processor.
func (p *EventLoggerProcessor) Execute(ctx context.Context, node Node, ec *ExecutionContext) (map[string]any, error) {
	if p.events == nil {
		return nil, fmt.Errorf("%w: event_logger requires an audit logger", ErrInvalidConfig)
	}

	level, err := configString(node.Config, "log_level", core.LevelInfo)
	if err != nil {
		return nil, err
	}
	category, err := configString(node.Config, "event_category", "")
	if err != nil {
		return nil, err
	}

	event := p.events.Record(ctx, level, category, ec.WorkflowInfo(node.ID), ec.InputFor(node.ID))

	return map[string]any{
		"event":    event,
		"event_id": event.EventID,
		"status":   "logged",
	}, nil
}

// documentInput pulls the document id and chunk set out of a stage input,
// accepting either the assembled document or the bare chunk list.
func documentInput(input map[string]any) (string, []core.Chunk) {
	documentID, _ := input["document_id"].(string)

	if doc, ok := input["processed_document"].(*core.Document); ok && doc != nil {
		if documentID == "" {
			documentID = doc.DocumentID
		}
		return documentID, doc.Chunks
	}
	chunks, _ := input["chunks"].([]core.Chunk)
	if documentID == "" && len(chunks) > 0 {
		documentID = chunks[0].DocumentID
	}
	return documentID, chunks
}

func stringSlice(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
