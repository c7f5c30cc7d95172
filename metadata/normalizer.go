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

package metadata

import (
	"encoding/hex"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-crypt/x/blake2b"

	"github.com/tessella/docpipe/core"
	"github.com/tessella/docpipe/extract"
)

// untitledFallback is used when neither filename nor text yields a title.
const untitledFallback = "Untitled Document"

// processorVersion is stamped into processing_metadata.
const processorVersion = "1.0.0"

// fieldAliases maps vendor key spellings (lowercased, leading slash
// stripped) to canonical schema names. Keys not listed pass through.
var fieldAliases = map[string]string{
	"creationdate":     "creation_date",
	"moddate":          "modification_date",
	"modificationdate": "modification_date",
	"keywords":         "tags",
	"keyword":          "tags",
	"lang":             "language",
}

// stringFields are the free-text fields subject to whitespace cleanup.
var stringFields = []string{"title", "author", "subject", "creator", "producer", "category"}

// Result is the normalized field map with its validation outcome.
type Result struct {
	Fields       map[string]any
	Validation   Validation
	Completeness float64
}

// Normalizer canonicalizes extracted metadata. It is safe for concurrent
// use; all state is per-call.
type Normalizer struct {
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithLogger sets the logger used for non-fatal diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Normalizer) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithClock overrides the time source. Used by tests to pin document IDs.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		if now != nil {
			n.now = now
		}
	}
}

// NewNormalizer creates a normalizer.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize merges raw extracted metadata with file information and
// produces the canonical field map. content_hash is always recomputed
// from text; missing document_id, title and language are backfilled.
func (n *Normalizer) Normalize(raw map[string]any, file extract.FileInfo, text string) *Result {
	fields := make(map[string]any, len(raw)+8)

	if file.Path != "" {
		fields["file_path"] = file.Path
		fields["file_name"] = file.Name
		fields["file_size"] = file.Size
		fields["file_extension"] = file.Extension
		if !file.Timestamp.IsZero() {
			fields["processing_timestamp"] = file.Timestamp.UTC().Format(time.RFC3339)
		}
	}

	for key, value := range raw {
		fields[canonicalKey(key)] = value
	}

	if !fieldPresent(fields["document_id"]) {
		stamp := file.Timestamp
		if stamp.IsZero() {
			stamp = n.now()
		}
		fields["document_id"] = core.NewDocumentID(text, file.Path, stamp)
	}

	if path, ok := fields["file_path"].(string); ok && path != "" && !fieldPresent(fields["file_hash"]) {
		if hash, err := hashFile(path); err == nil {
			fields["file_hash"] = hash
		} else {
			n.logger.Warn("file hash skipped", "path", path, "error", err)
		}
	}

	normalizeDates(fields)
	cleanStringFields(fields)
	fields["tags"] = NormalizeTags(fields["tags"])

	if !fieldPresent(fields["language"]) {
		fields["language"] = DetectLanguage(text)
	}
	if !fieldPresent(fields["title"]) {
		fields["title"] = deriveTitle(fields, text)
	}

	fields["content_hash"] = core.ContentHash(text)

	validation := Validate(fields)
	fields["processing_metadata"] = map[string]any{
		"processed_at":      n.now().UTC().Format(time.RFC3339),
		"processor_version": processorVersion,
		"validation_status": validation.Status,
		"validation_errors": validation.Errors,
	}

	result := &Result{
		Fields:       fields,
		Validation:   validation,
		Completeness: Completeness(fields),
	}

	n.logger.Info("metadata normalized",
		"document_id", fields["document_id"],
		"status", validation.Status,
		"completeness", result.Completeness)

	return result
}

// canonicalKey lowercases a raw key, strips a leading slash and resolves
// vendor aliases to schema names.
func canonicalKey(key string) string {
	k := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(key, "/")))
	k = strings.ReplaceAll(k, " ", "_")
	if canonical, ok := fieldAliases[strings.ReplaceAll(k, "_", "")]; ok {
		return canonical
	}
	return k
}

// cleanStringFields trims free-text fields and collapses internal
// whitespace runs to single spaces.
func cleanStringFields(fields map[string]any) {
	for _, field := range stringFields {
		if value, ok := fields[field].(string); ok {
			fields[field] = strings.Join(strings.Fields(value), " ")
		}
	}
}

// NormalizeTags accepts a tag list or a delimited string and returns
// lowercased, de-duplicated tags in first-seen order.
func NormalizeTags(value any) []string {
	var parts []string
	switch v := value.(type) {
	case nil:
		return []string{}
	case string:
		parts = strings.Fields(strings.NewReplacer(",", " ", ";", " ").Replace(v))
	case []string:
		parts = v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
	default:
		return []string{}
	}

	seen := make(map[string]struct{}, len(parts))
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		tag := strings.ToLower(strings.TrimSpace(part))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// deriveTitle backfills a title from the filename stem, then from the
// first usable text line, then a fixed fallback.
func deriveTitle(fields map[string]any, text string) string {
	if name, ok := fields["file_name"].(string); ok && name != "" {
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		stem = strings.NewReplacer("_", " ", "-", " ").Replace(stem)
		title := capitalizeWords(stem)
		if len(title) > 5 {
			return title
		}
	}

	if len(text) > 20 {
		firstLine := strings.TrimSpace(strings.SplitN(text, "\n", 2)[0])
		if len(firstLine) > 10 && len(firstLine) < 100 {
			if len(firstLine) > 80 {
				return firstLine[:80] + "..."
			}
			return firstLine
		}
	}

	return untitledFallback
}

func capitalizeWords(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// hashFile streams the file through BLAKE2b-256.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h, err := blake2b.New(32, nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
