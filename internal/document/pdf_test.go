package document

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "asha/internal/errors"
)

// buildPDF writes a single-page PDF showing text, with a correct xref table.
func buildPDF(text string) []byte {
	content := fmt.Sprintf("BT /F1 12 Tf 72 712 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestExtractText(t *testing.T) {
	text, err := ExtractText(buildPDF("Python developer"))
	require.NoError(t, err)
	assert.Contains(t, text, "Python developer")
}

func TestExtractText_NotAPDF(t *testing.T) {
	_, err := ExtractText([]byte("just some plain text"))
	assert.ErrorIs(t, err, apperrors.ErrExtractionFailed)

	_, err = ExtractText(nil)
	assert.ErrorIs(t, err, apperrors.ErrExtractionFailed)
}

func tempFiles(t *testing.T, dir string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return entries
}

func TestIngest_RemovesTempFileOnSuccess(t *testing.T) {
	dir := t.TempDir()

	text, err := NewIngestor(dir).Ingest(bytes.NewReader(buildPDF("Leadership")))
	require.NoError(t, err)
	assert.Contains(t, text, "Leadership")
	assert.Empty(t, tempFiles(t, dir))
}

func TestIngest_RemovesTempFileOnFailure(t *testing.T) {
	dir := t.TempDir()

	_, err := NewIngestor(dir).Ingest(strings.NewReader("not a pdf"))
	assert.ErrorIs(t, err, apperrors.ErrExtractionFailed)
	assert.Empty(t, tempFiles(t, dir))
}

func TestIngest_RejectsOversized(t *testing.T) {
	dir := t.TempDir()

	_, err := NewIngestor(dir).Ingest(bytes.NewReader(make([]byte, MaxUploadBytes+10)))
	assert.ErrorIs(t, err, apperrors.ErrInvalidUpload)
	assert.Empty(t, tempFiles(t, dir))
}
