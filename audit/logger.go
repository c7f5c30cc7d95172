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
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tessella/docpipe/core"
)

// Sink receives finished events. Implementations must tolerate concurrent
// writes.
type Sink interface {
	Write(ctx context.Context, event *core.Event) error
	Close() error
}

// Logger builds sanitized audit events and fans them out to its sinks.
// Sink failures are logged, never propagated.
type Logger struct {
	logger *slog.Logger
	sinks  []Sink
	newID  func() string
	now    func() time.Time
}

// Option configures a Logger.
type Option func(*Logger)

// WithSink appends a durable sink. Order is preserved.
func WithSink(sink Sink) Option {
	return func(l *Logger) {
		if sink != nil {
			l.sinks = append(l.sinks, sink)
		}
	}
}

// WithLogger sets the application logger events are mirrored to.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Logger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLogger creates an audit logger. Without sinks it still mirrors
// events to the application log.
func NewLogger(opts ...Option) *Logger {
	l := &Logger{
		logger: slog.Default(),
		newID:  uuid.NewString,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record builds an event from the raw payload and dispatches it. An
// unknown level falls back to info; an empty category is inferred from
// the payload shape. The returned event is already sanitized.
func (l *Logger) Record(ctx context.Context, level, category string, workflow core.WorkflowInfo, payload map[string]any) *core.Event {
	if core.ValidateLevel(level) != nil {
		level = core.LevelInfo
	}
	if category == "" {
		category = InferCategory(payload)
	}

	event := &core.Event{
		EventID:   l.newID(),
		Timestamp: l.now().UTC(),
		Level:     level,
		Category:  category,
		Workflow:  workflow,
		Payload:   Sanitize(payload),
	}

	l.mirror(event)

	for _, sink := range l.sinks {
		if err := sink.Write(ctx, event); err != nil {
			l.logger.Error("audit sink write failed",
				"event_id", event.EventID,
				"category", event.Category,
				"error", err)
		}
	}

	return event
}

// Close closes every sink, returning the first error encountered.
func (l *Logger) Close() error {
	var first error
	for _, sink := range l.sinks {
		if err := sink.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (l *Logger) mirror(event *core.Event) {
	attrs := []any{
		"event_id", event.EventID,
		"category", event.Category,
		"workflow_id", event.Workflow.WorkflowID,
	}
	switch event.Level {
	case core.LevelDebug:
		l.logger.Debug("audit event", attrs...)
	case core.LevelWarning:
		l.logger.Warn("audit event", attrs...)
	case core.LevelError:
		l.logger.Error("audit event", attrs...)
	default:
		l.logger.Info("audit event", attrs...)
	}
}
