package core

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// hashHex returns the hex-encoded BLAKE2b digest of text using size digest
// bytes.
func hashHex(text string, size int) string {
	h, _ := blake2b.New(size, nil)
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// ContentHash returns a stable digest of text. Byte-identical content always
// produces the same hash, independent of source path or ingestion time, so
// it is usable for deduplication.
func ContentHash(text string) string {
	return hashHex(text, 16)
}

// TimeBucket formats t into the coarse bucket embedded in document IDs.
// Resolution is one minute: re-ingesting the same file within one bucket
// yields the same document ID and overwrites on index.
func TimeBucket(t time.Time) string {
	return t.UTC().Format("20060102_1504")
}

// NewDocumentID derives a deterministic, human-scannable document identifier
// from content, source path and a coarse timestamp bucket:
//
//	doc_<bucket>_<content hash prefix>_<path hash prefix>
//
// Identical content at the same path in the same bucket reproduces the same
// ID.
func NewDocumentID(content, path string, t time.Time) string {
	return fmt.Sprintf("doc_%s_%s_%s",
		TimeBucket(t), hashHex(content, 16)[:8], hashHex(path, 16)[:8])
}

// ChunkID returns the identifier of the chunk at the given ordinal within a
// document. Chunk IDs are unique within their document and stable for a
// fixed chunking outcome.
func ChunkID(documentID string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", documentID, index)
}
