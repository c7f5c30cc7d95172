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

package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/tessella/docpipe/core"
)

// StreamSink appends events to a line-structured log file, one JSON
// object per line.
type StreamSink struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

var _ Sink = (*StreamSink)(nil)

// streamRecord is the wire form of one log line.
type streamRecord struct {
	EventID      string            `json:"event_id"`
	Timestamp    time.Time         `json:"timestamp"`
	Level        string            `json:"level"`
	Category     string            `json:"category"`
	WorkflowID   string            `json:"workflow_id,omitempty"`
	WorkflowName string            `json:"workflow_name,omitempty"`
	ExecutionID  string            `json:"execution_id,omitempty"`
	NodeID       string            `json:"node_id,omitempty"`
	Payload      map[string]string `json:"payload,omitempty"`
}

// NewStreamSink opens (or creates) the log file in append mode.
func NewStreamSink(path string) (*StreamSink, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	return &StreamSink{file: file, enc: json.NewEncoder(file)}, nil
}

// Write implements Sink.
func (s *StreamSink) Write(_ context.Context, event *core.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(streamRecord{
		EventID:      event.EventID,
		Timestamp:    event.Timestamp,
		Level:        event.Level,
		Category:     event.Category,
		WorkflowID:   event.Workflow.WorkflowID,
		WorkflowName: event.Workflow.WorkflowName,
		ExecutionID:  event.Workflow.ExecutionID,
		NodeID:       event.Workflow.NodeID,
		Payload:      event.Payload,
	})
}

// Close implements Sink.
func (s *StreamSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

// EventStore is the slice of the audit store this package needs.
type EventStore interface {
	AddEvent(ctx context.Context, event *core.Event) error
	Close() error
}

// StoreSink writes events to the queryable audit store.
type StoreSink struct {
	store EventStore
}

var _ Sink = (*StoreSink)(nil)

// NewStoreSink wraps an event store as a sink.
func NewStoreSink(store EventStore) *StoreSink {
	return &StoreSink{store: store}
}

// Write implements Sink.
func (s *StoreSink) Write(ctx context.Context, event *core.Event) error {
	return s.store.AddEvent(ctx, event)
}

// Close implements Sink.
func (s *StoreSink) Close() error {
	return s.store.Close()
}
