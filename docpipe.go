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

package docpipe

import (
	"log/slog"
	"path/filepath"

	"github.com/tessella/docpipe/ai"
	"github.com/tessella/docpipe/ai/openai"
	"github.com/tessella/docpipe/audit"
	"github.com/tessella/docpipe/engine"
	"github.com/tessella/docpipe/extract"
	"github.com/tessella/docpipe/metadata"
	"github.com/tessella/docpipe/pipeline"
	"github.com/tessella/docpipe/storage"
	"github.com/tessella/docpipe/storage/badger"
	"github.com/tessella/docpipe/vector"
)

// System wires the ingestion stages, the vector index and the audit
// trail over one data directory. Audit events persist under
// dataDir/events, vectors under dataDir/vectors.
type System struct {
	store    storage.EventStore
	events   *audit.Logger
	index    *vector.Index
	registry *engine.Registry

	extractors *extract.Registry
	normalizer *metadata.Normalizer
	logger     *slog.Logger
}

// SystemOption configures a System.
type SystemOption func(*systemOptions)

type systemOptions struct {
	aiConfig   *ai.Config
	embedder   ai.Embedder
	collection string
	auditLog   string
}

// WithAIConfig sets the embedding service configuration. Without it, and
// without an injected embedder, the vector index runs degraded and
// reports simulated results.
func WithAIConfig(config *ai.Config) SystemOption {
	return func(o *systemOptions) {
		o.aiConfig = config
	}
}

// WithEmbedder injects an embedder directly, bypassing the embedding
// service configuration.
func WithEmbedder(embedder ai.Embedder) SystemOption {
	return func(o *systemOptions) {
		o.embedder = embedder
	}
}

// WithCollection sets the vector collection name.
func WithCollection(name string) SystemOption {
	return func(o *systemOptions) {
		o.collection = name
	}
}

// WithAuditLog adds an append-only JSON-lines audit stream at path,
// alongside the queryable event store.
func WithAuditLog(path string) SystemOption {
	return func(o *systemOptions) {
		o.auditLog = path
	}
}

// NewSystem opens a complete document system rooted at dataDir.
func NewSystem(dataDir string, opts ...SystemOption) (*System, error) {
	options := &systemOptions{
		collection: vector.DefaultCollection,
	}
	for _, opt := range opts {
		opt(options)
	}

	embedder := options.embedder
	if embedder == nil && options.aiConfig != nil {
		var err error
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			return nil, err
		}
	}

	store, err := badger.NewEventStore(filepath.Join(dataDir, "events"))
	if err != nil {
		return nil, err
	}

	index := vector.NewIndex(embedder,
		vector.WithPersistPath(filepath.Join(dataDir, "vectors")),
		vector.WithCollectionName(options.collection),
	)

	sinks := []audit.Option{audit.WithSink(audit.NewStoreSink(store))}
	if options.auditLog != "" {
		stream, err := audit.NewStreamSink(options.auditLog)
		if err != nil {
			store.Close()
			return nil, err
		}
		sinks = append(sinks, audit.WithSink(stream))
	}

	events := audit.NewLogger(sinks...)
	extractors := extract.NewRegistry()
	normalizer := metadata.NewNormalizer()

	return &System{
		store:      store,
		events:     events,
		index:      index,
		registry:   engine.NewDefaultRegistry(extractors, normalizer, index, events),
		extractors: extractors,
		normalizer: normalizer,
		logger:     slog.Default(),
	}, nil
}

// Close flushes the audit sinks and closes the event store.
func (s *System) Close() error {
	if err := s.events.Close(); err != nil {
		s.logger.Error("error closing audit logger", "err", err)
		return err
	}
	return nil
}

// RegisterExtractor adds a document format to the extraction registry.
func (s *System) RegisterExtractor(e extract.Extractor) {
	s.extractors.Register(e)
}

// NewPipeline creates an ingestion pipeline over the system's stages.
func (s *System) NewPipeline(opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	return pipeline.NewPipeline(s.registry, opts...)
}

// Index returns the vector index.
func (s *System) Index() *vector.Index {
	return s.index
}

// Events returns the audit event store for queries.
func (s *System) Events() storage.EventStore {
	return s.store
}

// AuditLogger returns the audit logger shared by the stages.
func (s *System) AuditLogger() *audit.Logger {
	return s.events
}
