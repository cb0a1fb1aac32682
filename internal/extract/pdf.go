package extract

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// PDF extracts plain text from PDF bytes and reports the page count so
// chunk metadata can carry an approximate page marker.
type PDF struct{}

func (PDF) Extract(r io.Reader, name string) (Result, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("read pdf failed: %w", err)
	}
	if len(b) == 0 {
		return Result{Title: TitleFromName(name)}, nil
	}

	reader, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return Result{}, fmt.Errorf("open pdf failed: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return Result{}, fmt.Errorf("extract pdf text failed: %w", err)
	}
	text, err := io.ReadAll(plain)
	if err != nil {
		return Result{}, fmt.Errorf("read pdf text failed: %w", err)
	}

	return Result{
		Text:      string(text),
		Title:     TitleFromName(name),
		PageCount: reader.NumPage(),
	}, nil
}
