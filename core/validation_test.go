package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidateChunk(t *testing.T) {
	tests := []struct {
		name    string
		chunk   *Chunk
		wantErr error
	}{
		{
			name: "valid chunk",
			chunk: &Chunk{
				ChunkID:    "doc_1_chunk_0",
				DocumentID: "doc_1",
				Text:       "some text",
			},
			wantErr: nil,
		},
		{
			name:    "nil chunk",
			chunk:   nil,
			wantErr: ErrInvalidChunk,
		},
		{
			name: "empty chunk ID",
			chunk: &Chunk{
				DocumentID: "doc_1",
				Text:       "some text",
			},
			wantErr: ErrEmptyChunkID,
		},
		{
			name: "empty document ID",
			chunk: &Chunk{
				ChunkID: "doc_1_chunk_0",
				Text:    "some text",
			},
			wantErr: ErrEmptyDocumentID,
		},
		{
			name: "empty text",
			chunk: &Chunk{
				ChunkID:    "doc_1_chunk_0",
				DocumentID: "doc_1",
			},
			wantErr: ErrEmptyChunkText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChunk(tt.chunk)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDocument(t *testing.T) {
	valid := &Document{
		DocumentID: "doc_1",
		Chunks: []Chunk{
			{ChunkID: "doc_1_chunk_0", DocumentID: "doc_1", Text: "a"},
			{ChunkID: "doc_1_chunk_1", DocumentID: "doc_1", Text: "b"},
		},
	}
	if err := ValidateDocument(valid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := ValidateDocument(nil); !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("got %v, want ErrInvalidDocument", err)
	}

	foreign := &Document{
		DocumentID: "doc_1",
		Chunks: []Chunk{
			{ChunkID: "doc_2_chunk_0", DocumentID: "doc_2", Text: "a"},
		},
	}
	if err := ValidateDocument(foreign); !errors.Is(err, ErrChunkDocumentMismatch) {
		t.Fatalf("got %v, want ErrChunkDocumentMismatch", err)
	}
}

func TestValidateEvent(t *testing.T) {
	valid := &Event{
		EventID:   "6f1c9f4e",
		Timestamp: time.Now().UTC(),
		Level:     LevelInfo,
		Category:  CategoryDocument,
	}
	if err := ValidateEvent(valid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := ValidateEvent(nil); !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("got %v, want ErrInvalidEvent", err)
	}

	badLevel := &Event{EventID: "6f1c9f4e", Level: "severe"}
	if err := ValidateEvent(badLevel); !errors.Is(err, ErrInvalidLevel) {
		t.Fatalf("got %v, want ErrInvalidLevel", err)
	}
}
