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


package core

import (
	"fmt"
)

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - ChunkID must not be empty
//   - DocumentID must not be empty
//   - Text must not be empty (empty slices are dropped during chunking,
//     never emitted)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.ChunkID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyChunkID)
	}

	if chunk.DocumentID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyDocumentID)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyChunkText)
	}

	return nil
}

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - DocumentID must not be empty
//   - every chunk must pass ValidateChunk
//   - every chunk must reference the document's ID
//
// NOT validated:
//   - OriginalText (a document with status no_text_extracted has none)
//   - Metadata (schema validation is the normalizer's concern)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.DocumentID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyDocumentID)
	}

	for i := range doc.Chunks {
		if err := ValidateChunk(&doc.Chunks[i]); err != nil {
			return fmt.Errorf("%w: chunk %d: %w", ErrInvalidDocument, i, err)
		}
		if doc.Chunks[i].DocumentID != doc.DocumentID {
			return fmt.Errorf("%w: chunk %d: %w", ErrInvalidDocument, i, ErrChunkDocumentMismatch)
		}
	}

	return nil
}

// ValidateLevel validates that an event level has a known value.
func ValidateLevel(level string) error {
	switch level {
	case LevelDebug, LevelInfo, LevelWarning, LevelError:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidLevel, level)
}

// ValidateEvent validates an Event according to domain rules.
//
// Validation rules:
//   - EventID must not be empty
//   - Level must be a known level
//
// NOT validated:
//   - Category (free-form categories are allowed alongside the inferred set)
//   - Payload (already sanitized by the audit logger)
func ValidateEvent(event *Event) error {
	if event == nil {
		return fmt.Errorf("%w: event is nil", ErrInvalidEvent)
	}

	if event.EventID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, ErrEmptyEventID)
	}

	if err := ValidateLevel(event.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}

	return nil
}
