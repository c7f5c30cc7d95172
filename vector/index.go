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

package vector

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	chromem "github.com/philippgille/chromem-go"

	"github.com/tessella/docpipe/ai"
	"github.com/tessella/docpipe/core"
)

// DefaultCollection is the collection name used unless overridden.
const DefaultCollection = "docpipe_documents"

// Index is the single vector store contract. The backing collection is
// created lazily on first construction and keyed by chunk_id. The
// collection's own concurrency control is the sole serialization point;
// callers must not issue concurrent mutations for one document_id.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   ai.Embedder
	logger     *slog.Logger
	name       string
	path       string
	degraded   bool
}

// IndexOption configures an Index.
type IndexOption func(*Index)

// WithPersistPath stores the collection on disk instead of in memory.
func WithPersistPath(path string) IndexOption {
	return func(ix *Index) { ix.path = path }
}

// WithCollectionName overrides the collection name.
func WithCollectionName(name string) IndexOption {
	return func(ix *Index) {
		if name != "" {
			ix.name = name
		}
	}
}

// WithLogger sets the logger used for operation summaries.
func WithLogger(logger *slog.Logger) IndexOption {
	return func(ix *Index) {
		if logger != nil {
			ix.logger = logger
		}
	}
}

// NewIndex creates an index over the given embedding capability. A nil
// embedder or an unreachable store does not fail construction: the index
// comes up degraded and every operation reports status "simulated".
func NewIndex(embedder ai.Embedder, opts ...IndexOption) *Index {
	ix := &Index{
		embedder: embedder,
		logger:   slog.Default(),
		name:     DefaultCollection,
	}
	for _, opt := range opts {
		opt(ix)
	}

	if ix.embedder == nil {
		ix.degraded = true
		ix.logger.Warn("no embedder configured, vector index degraded")
		return ix
	}

	var err error
	if ix.path != "" {
		ix.db, err = chromem.NewPersistentDB(ix.path, false)
	} else {
		ix.db = chromem.NewDB()
	}
	if err == nil {
		ix.collection, err = ix.db.GetOrCreateCollection(ix.name, map[string]string{"hnsw:space": "cosine"}, nil)
	}
	if err != nil {
		ix.degraded = true
		ix.logger.Warn("vector store unreachable, index degraded", "error", err)
	}
	return ix
}

// Degraded reports whether operations are simulated.
func (ix *Index) Degraded() bool {
	return ix.degraded
}

// Count returns the number of indexed chunks, zero when degraded.
func (ix *Index) Count() int {
	if ix.degraded {
		return 0
	}
	return ix.collection.Count()
}

// Index embeds every chunk and commits them as one logical unit: on any
// failure the already-written ids of this batch are rolled back so the
// caller never observes a partial state.
func (ix *Index) Index(ctx context.Context, documentID string, chunks []core.Chunk) *IndexResult {
	result := &IndexResult{Operation: OpIndex, DocumentID: documentID}

	if len(chunks) == 0 {
		result.Status = StatusNoChunks
		return result
	}

	ids := make([]string, len(chunks))
	texts := make([]string, len(chunks))
	metadatas := make([]map[string]string, len(chunks))
	for i, chunk := range chunks {
		ids[i] = chunk.ChunkID
		texts[i] = chunk.Text
		metadatas[i] = stringifyMetadata(chunk.Metadata)
	}

	if ix.degraded {
		result.Status = StatusSimulated
		result.IndexedCount = len(chunks)
		result.ChunkIDs = ids
		ix.logger.Warn("index simulated", "document_id", documentID, "chunks", len(chunks))
		return result
	}

	embeddings, err := ix.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		result.Status = StatusError
		result.Error = fmt.Sprintf("embed chunks: %v", err)
		ix.logger.Error("chunk embedding failed", "document_id", documentID, "error", err)
		return result
	}

	if err := ix.collection.Add(ctx, ids, embeddings, metadatas, texts); err != nil {
		// Roll back whatever part of the batch landed.
		if delErr := ix.collection.Delete(ctx, nil, nil, ids...); delErr != nil {
			ix.logger.Error("index rollback failed", "document_id", documentID, "error", delErr)
		}
		result.Status = StatusError
		result.Error = fmt.Sprintf("add chunks: %v", err)
		ix.logger.Error("indexing failed", "document_id", documentID, "error", err)
		return result
	}

	result.Status = StatusSuccess
	result.IndexedCount = len(chunks)
	result.ChunkIDs = ids
	ix.logger.Info("chunks indexed", "document_id", documentID, "indexed_count", len(chunks))
	return result
}

// Search embeds the query with the same capability used for indexing and
// returns up to limit nearest neighbors ordered by increasing distance.
// An empty query yields an empty result, not an error.
func (ix *Index) Search(ctx context.Context, query string, limit int) *SearchResult {
	result := &SearchResult{Operation: OpSearch, Query: query, Results: []Match{}}

	if query == "" {
		result.Status = StatusNoQuery
		return result
	}

	if ix.degraded {
		result.Status = StatusSimulated
		ix.logger.Warn("search simulated", "query_length", len(query))
		return result
	}

	if limit < MinSearchLimit {
		limit = DefaultSearchLimit
	}
	if count := ix.collection.Count(); count == 0 {
		result.Status = StatusSuccess
		return result
	} else if limit > count {
		limit = count
	}

	embedding, err := ix.embedder.EmbedText(ctx, query)
	if err != nil {
		result.Status = StatusError
		result.Error = fmt.Sprintf("embed query: %v", err)
		ix.logger.Error("query embedding failed", "error", err)
		return result
	}

	hits, err := ix.collection.QueryEmbedding(ctx, embedding, limit, nil, nil)
	if err != nil {
		result.Status = StatusError
		result.Error = fmt.Sprintf("query: %v", err)
		ix.logger.Error("vector search failed", "error", err)
		return result
	}

	for _, hit := range hits {
		result.Results = append(result.Results, Match{
			Text:     hit.Content,
			Metadata: hit.Metadata,
			Distance: 1 - hit.Similarity,
			ID:       hit.ID,
		})
	}
	result.Status = StatusSuccess
	result.TotalFound = len(result.Results)
	ix.logger.Info("search completed", "query_length", len(query), "results_count", result.TotalFound)
	return result
}

// Update replaces every chunk registered under the document: the delete
// fully completes before indexing begins, so stale and fresh entries never
// overlap under one document_id.
func (ix *Index) Update(ctx context.Context, documentID string, chunks []core.Chunk) *IndexResult {
	if ix.degraded {
		result := ix.Index(ctx, documentID, chunks)
		result.Operation = OpUpdate
		return result
	}

	deleted := ix.Delete(ctx, documentID, nil)
	if deleted.Status != StatusSuccess {
		return &IndexResult{
			Status:     deleted.Status,
			Operation:  OpUpdate,
			DocumentID: documentID,
			Error:      deleted.Error,
		}
	}

	result := ix.Index(ctx, documentID, chunks)
	result.Operation = OpUpdate
	return result
}

// Delete removes exactly the given chunk ids, or, when none are supplied,
// every chunk registered under documentID via a metadata-filtered lookup.
// Unknown identifiers delete nothing and still report success; DeletedIDs
// holds only the ids that were present.
func (ix *Index) Delete(ctx context.Context, documentID string, chunkIDs []string) *DeleteResult {
	result := &DeleteResult{Operation: OpDelete, DocumentID: documentID}

	if documentID == "" && len(chunkIDs) == 0 {
		result.Status = StatusNoIdentifiers
		return result
	}

	if ix.degraded {
		result.Status = StatusSimulated
		result.DeletedCount = len(chunkIDs)
		result.DeletedIDs = chunkIDs
		ix.logger.Warn("delete simulated", "document_id", documentID)
		return result
	}

	before := ix.collection.Count()
	if before == 0 {
		result.Status = StatusSuccess
		return result
	}

	var err error
	if len(chunkIDs) > 0 {
		// Ids that do not exist are dropped up front so DeletedIDs
		// reports what was actually removed.
		present := make([]string, 0, len(chunkIDs))
		for _, id := range chunkIDs {
			if _, getErr := ix.collection.GetByID(ctx, id); getErr == nil {
				present = append(present, id)
			}
		}
		if len(present) > 0 {
			err = ix.collection.Delete(ctx, nil, nil, present...)
		}
		result.DeletedIDs = present
	} else {
		err = ix.collection.Delete(ctx, map[string]string{"document_id": documentID}, nil)
	}
	if err != nil {
		result.Status = StatusError
		result.Error = fmt.Sprintf("delete chunks: %v", err)
		ix.logger.Error("deletion failed", "document_id", documentID, "error", err)
		return result
	}

	result.Status = StatusSuccess
	result.DeletedCount = before - ix.collection.Count()
	ix.logger.Info("chunks deleted", "document_id", documentID, "deleted_count", result.DeletedCount)
	return result
}

// stringifyMetadata flattens a chunk metadata map to the string form the
// store persists. Nested maps are dropped; scalars are formatted.
func stringifyMetadata(metadata map[string]any) map[string]string {
	out := make(map[string]string, len(metadata))
	for key, value := range metadata {
		switch v := value.(type) {
		case string:
			out[key] = v
		case []string:
			if len(v) > 0 {
				out[key] = strings.Join(v, ",")
			}
		case map[string]any:
			// skip
		case nil:
			// skip
		default:
			out[key] = fmt.Sprint(v)
		}
	}
	return out
}
