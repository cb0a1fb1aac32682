package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForFile(t *testing.T) {
	ex, err := ForFile("notes.pdf")
	require.NoError(t, err)
	assert.IsType(t, PDF{}, ex)

	ex, err = ForFile("NOTES.MD")
	require.NoError(t, err)
	assert.IsType(t, Plain{}, ex)

	_, err = ForFile("slides.pptx")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestPlainExtract(t *testing.T) {
	res, err := Plain{}.Extract(strings.NewReader("hello study notes"), "week1.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello study notes", res.Text)
	assert.Equal(t, "week1", res.Title)
	assert.Equal(t, 0, res.PageCount)
}

func TestTitleFromName(t *testing.T) {
	assert.Equal(t, "lecture-3", TitleFromName("/uploads/lecture-3.pdf"))
	assert.Equal(t, "readme", TitleFromName("readme"))
}
