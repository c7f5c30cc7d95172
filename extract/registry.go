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

package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultMaxFileSize is the ceiling applied to source files unless
// overridden with WithMaxFileSize.
const DefaultMaxFileSize = 50 << 20

// Status classifies the outcome of an extraction.
type Status string

const (
	StatusSuccess Status = "success"
	StatusNoText  Status = "no_text_extracted"
	StatusFailed  Status = "failed"
)

// FileInfo captures the source file as seen at extraction time.
type FileInfo struct {
	Path      string
	Name      string
	Extension string
	Size      int64
	Timestamp time.Time
}

// PageTrace records the per-page outcome of a PDF extraction. Pages that
// failed carry the error text and no method.
type PageTrace struct {
	Page          int
	Method        string
	StructuralLen int
	LayoutLen     int
	Error         string
}

// Result is the output of a single extraction.
type Result struct {
	Text     string
	Metadata map[string]any
	Pages    []PageTrace
	Method   string
	Status   Status
	File     FileInfo
}

// Extractor converts one file format into text and metadata. Raw text is
// returned as-is; the registry owns cleaning and status assignment.
type Extractor interface {
	Extract(ctx context.Context, path string) (*Result, error)
	Extensions() []string
}

// Registry routes files to extractors by extension and enforces the
// shared validation ladder before any format-specific work runs.
type Registry struct {
	mu          sync.RWMutex
	extractors  map[string]Extractor
	maxFileSize int64
	logger      *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithMaxFileSize overrides the file size ceiling in bytes.
func WithMaxFileSize(limit int64) Option {
	return func(r *Registry) {
		if limit > 0 {
			r.maxFileSize = limit
		}
	}
}

// WithLogger sets the logger used for extraction diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates a registry with the PDF extractor pre-registered.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		extractors:  make(map[string]Extractor),
		maxFileSize: DefaultMaxFileSize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.Register(NewPDFExtractor(r.logger))
	return r
}

// Register installs an extractor for each extension it claims. Extensions
// are matched case-insensitively; a later registration for the same
// extension replaces the earlier one.
func (r *Registry) Register(e Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range e.Extensions() {
		r.extractors[strings.ToLower(ext)] = e
	}
}

// Supported returns the registered extensions in sorted order.
func (r *Registry) Supported() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.extractors))
	for ext := range r.extractors {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ExtractFile validates the file, dispatches to the matching extractor and
// post-processes the result. Validation failures surface as wrapped
// sentinel errors in ladder order: ErrNotFound, then ErrUnsupportedFormat,
// then ErrTooLarge.
func (r *Registry) ExtractFile(ctx context.Context, path string) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	r.mu.RLock()
	extractor, ok := r.extractors[ext]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	if info.Size() > r.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, info.Size(), r.maxFileSize)
	}

	result, err := extractor.Extract(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}

	result.Text = CleanText(result.Text)
	if result.Text == "" {
		result.Status = StatusNoText
	} else {
		result.Status = StatusSuccess
	}
	if result.Metadata == nil {
		result.Metadata = make(map[string]any)
	}
	result.File = FileInfo{
		Path:      path,
		Name:      filepath.Base(path),
		Extension: ext,
		Size:      info.Size(),
		Timestamp: time.Now().UTC(),
	}

	r.logger.Info("file extracted",
		"path", path,
		"status", result.Status,
		"method", result.Method,
		"text_length", len(result.Text))

	return result, nil
}
