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
	"strings"

	"github.com/ledongthuc/pdf"
)

// Structural reads the content stream in object order; layout reassembles
// text from glyph positions. Scanned or oddly encoded PDFs often yield
// usable text from only one of the two.
const (
	methodStructural = "structural"
	methodLayout     = "layout"
)

// PDFExtractor extracts text and document info from PDF files. Both
// strategies run on every page and the longer total wins.
type PDFExtractor struct {
	logger *slog.Logger
}

// NewPDFExtractor creates a PDF extractor.
func NewPDFExtractor(logger *slog.Logger) *PDFExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFExtractor{logger: logger}
}

var _ Extractor = (*PDFExtractor)(nil)

// Extensions implements Extractor.
func (e *PDFExtractor) Extensions() []string {
	return []string{".pdf"}
}

// Extract implements Extractor. A page that fails under both strategies is
// recorded in its trace and skipped; ErrAllPagesFailed is returned only
// when no page yields anything.
func (e *PDFExtractor) Extract(ctx context.Context, path string) (*Result, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer file.Close()

	numPages := reader.NumPage()
	metadata := infoMetadata(reader)
	metadata["pages"] = numPages

	var structural, layout strings.Builder
	traces := make([]PageTrace, 0, numPages)
	failed := 0

	for i := 1; i <= numPages; i++ {
		trace := PageTrace{Page: i}
		page := reader.Page(i)
		if page.V.IsNull() {
			trace.Error = "missing page object"
			traces = append(traces, trace)
			failed++
			continue
		}

		sText, sErr := structuralText(page)
		lText, lErr := layoutText(page)
		if sErr != nil && lErr != nil {
			trace.Error = fmt.Sprintf("structural: %v; layout: %v", sErr, lErr)
			traces = append(traces, trace)
			failed++
			e.logger.Warn("pdf page unreadable", "path", path, "page", i,
				"structural_error", sErr, "layout_error", lErr)
			continue
		}

		trace.StructuralLen = len(sText)
		trace.LayoutLen = len(lText)
		traces = append(traces, trace)

		structural.WriteString(sText)
		structural.WriteString("\n")
		layout.WriteString(lText)
		layout.WriteString("\n")
	}

	if numPages > 0 && failed == numPages {
		return nil, ErrAllPagesFailed
	}

	text, method := structural.String(), methodStructural
	if len(strings.TrimSpace(layout.String())) > len(strings.TrimSpace(text)) {
		text, method = layout.String(), methodLayout
	}
	for i := range traces {
		if traces[i].Error == "" {
			traces[i].Method = method
		}
	}

	e.logger.Debug("pdf extracted", "path", path, "pages", numPages,
		"failed_pages", failed, "method", method)

	return &Result{
		Text:     text,
		Metadata: metadata,
		Pages:    traces,
		Method:   method,
	}, nil
}

// structuralText reads the page content stream. The parser panics on some
// malformed streams, so failures are converted to errors here.
func structuralText(page pdf.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()
	return page.GetPlainText(nil)
}

// layoutText reassembles the page from positioned text rows.
func layoutText(page pdf.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	rows, err := page.GetTextByRow()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, row := range rows {
		for _, word := range row.Content {
			b.WriteString(word.S)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

// infoMetadata copies the document info dictionary into raw metadata keys.
// Values stay as-written; normalization happens downstream.
func infoMetadata(reader *pdf.Reader) map[string]any {
	metadata := make(map[string]any)

	info := reader.Trailer().Key("Info")
	if info.IsNull() {
		return metadata
	}

	fields := map[string]string{
		"Title":        "title",
		"Author":       "author",
		"Subject":      "subject",
		"Creator":      "creator",
		"Producer":     "producer",
		"CreationDate": "creation_date",
		"ModDate":      "modification_date",
	}
	for key, name := range fields {
		value := info.Key(key)
		if value.Kind() != pdf.String {
			continue
		}
		if s := strings.TrimSpace(value.RawString()); s != "" {
			metadata[name] = s
		}
	}
	return metadata
}
