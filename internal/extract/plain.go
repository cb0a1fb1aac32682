package extract

import (
	"fmt"
	"io"
)

// Plain passes text files through unchanged.
type Plain struct{}

func (Plain) Extract(r io.Reader, name string) (Result, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("read text file failed: %w", err)
	}
	return Result{
		Text:  string(b),
		Title: TitleFromName(name),
	}, nil
}
