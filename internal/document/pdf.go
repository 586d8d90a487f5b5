// Package document turns uploaded resumes into plain text.
package document

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	apperrors "asha/internal/errors"
)

// MaxUploadBytes is the largest accepted upload.
const MaxUploadBytes = 10 << 20

// ExtractText returns the plain text of a PDF document.
func ExtractText(data []byte) (text string, err error) {
	defer func() {
		// the parser panics on some malformed cross-reference tables
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: %v", apperrors.ErrExtractionFailed, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrExtractionFailed, err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			slog.Debug("skipping unreadable pdf page", slog.Int("page", i), slog.Any("error", err))
			continue
		}
		b.WriteString(pageText)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String()), nil
}

// Ingestor spools uploads to a temporary file before extraction.
type Ingestor struct {
	dir string
}

// NewIngestor returns an Ingestor writing temp files into dir
// (the system temp directory when dir is empty).
func NewIngestor(dir string) *Ingestor {
	return &Ingestor{dir: dir}
}

// Ingest copies r to a temp file, extracts its text and removes the file
// whatever the outcome. Removal errors are logged only.
func (in *Ingestor) Ingest(r io.Reader) (string, error) {
	if in.dir != "" {
		if err := os.MkdirAll(in.dir, 0o755); err != nil {
			return "", fmt.Errorf("create upload dir: %w", err)
		}
	}
	f, err := os.CreateTemp(in.dir, "resume-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Error("failed to remove temp upload", slog.String("path", path), slog.Any("error", err))
		}
	}()

	_, copyErr := io.Copy(f, io.LimitReader(r, MaxUploadBytes+1))
	closeErr := f.Close()
	if copyErr != nil {
		return "", fmt.Errorf("spool upload: %w", copyErr)
	}
	if closeErr != nil {
		return "", fmt.Errorf("spool upload: %w", closeErr)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read spooled upload: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return "", apperrors.ErrInvalidUpload
	}
	return ExtractText(data)
}
