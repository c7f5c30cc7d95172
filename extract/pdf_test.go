package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimalPDF assembles a one-page PDF with a single text object and an
// Info dictionary. Cross-reference offsets are computed from the
// serialized objects, so the fixture stays valid when the text changes.
func minimalPDF(text string) []byte {
	content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
		"<< /Title (Quarterly Review) /Author (Dana Osei) /CreationDate (D:20240115093000) >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, object := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, object)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, offset := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offset)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R /Info 6 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(objects)+1, xref)
	return buf.Bytes()
}

func writePDF(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.pdf")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestPDFExtract(t *testing.T) {
	path := writePDF(t, minimalPDF("Hello ingestion pipeline"))

	e := NewPDFExtractor(nil)
	result, err := e.Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Contains(t, result.Text, "Hello ingestion pipeline")
	assert.Equal(t, methodStructural, result.Method)

	require.Len(t, result.Pages, 1)
	trace := result.Pages[0]
	assert.Equal(t, 1, trace.Page)
	assert.Equal(t, methodStructural, trace.Method)
	assert.Empty(t, trace.Error)
	assert.Greater(t, trace.StructuralLen, 0)
	assert.Greater(t, trace.LayoutLen, 0)
}

func TestPDFExtractInfoMetadata(t *testing.T) {
	path := writePDF(t, minimalPDF("Body text"))

	e := NewPDFExtractor(nil)
	result, err := e.Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Metadata["pages"])
	assert.Equal(t, "Quarterly Review", result.Metadata["title"])
	assert.Equal(t, "Dana Osei", result.Metadata["author"])
	assert.Equal(t, "D:20240115093000", result.Metadata["creation_date"])
	assert.NotContains(t, result.Metadata, "subject")
}

func TestPDFExtractMalformed(t *testing.T) {
	path := writePDF(t, []byte("%PDF-1.4\nnot actually a pdf"))

	e := NewPDFExtractor(nil)
	_, err := e.Extract(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open pdf")
}

func TestRegistryExtractsPDFByDefault(t *testing.T) {
	path := writePDF(t, minimalPDF("Registered format coverage"))

	r := NewRegistry()
	result, err := r.ExtractFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, ".pdf", result.File.Extension)
	assert.Equal(t, "sample.pdf", result.File.Name)
	assert.Contains(t, result.Text, "Registered format coverage")
}
