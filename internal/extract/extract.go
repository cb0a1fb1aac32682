// Package extract turns uploaded sources into plain text for ingestion.
// Each source kind has one Extractor; the pipeline only depends on the
// contract, so further kinds (docx, pptx, OCR, audio transcripts) plug in
// without touching the pipeline.
package extract

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

var ErrUnsupportedType = errors.New("unsupported file type")

// Result is extracted source text plus whatever structure the format offers.
// PageCount is zero when the format has no page concept.
type Result struct {
	Text      string
	Title     string
	PageCount int
}

type Extractor interface {
	Extract(r io.Reader, name string) (Result, error)
}

// ForFile picks the extractor for a file name by extension.
func ForFile(name string) (Extractor, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return PDF{}, nil
	case ".txt", ".md", ".markdown":
		return Plain{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, name)
	}
}

// TitleFromName derives a display title from a file name.
func TitleFromName(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
