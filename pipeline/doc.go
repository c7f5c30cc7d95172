// Package pipeline drives documents through the ingestion stages.
//
// Within one document the stages run strictly in sequence: extraction,
// metadata normalization, chunking, indexing. Across documents the
// pipeline fans out over a worker pool; the vector store backend is the
// only shared mutable resource and its own concurrency control is the
// serialization point.
package pipeline
