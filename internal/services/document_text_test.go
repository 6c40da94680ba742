package services

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectDocumentType(t *testing.T) {
	tests := []struct {
		filename    string
		contentType string
		want        string
	}{
		{"resume.pdf", "application/pdf", MimePDF},
		{"resume.bin", "application/pdf", MimePDF},
		{"resume.pdf", "application/octet-stream", MimePDF},
		{"Resume.DOCX", "", MimeDOCX},
		{"notes", "text/plain; charset=utf-8", MimeText},
		{"notes.txt", "", MimeText},
		{"photo.png", "image/png", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectDocumentType(tt.filename, tt.contentType), tt.filename)
	}
}

func TestExtractText_PlainText(t *testing.T) {
	svc := NewDocumentTextService(20000)

	text, err := svc.ExtractText("resume.txt", "text/plain", []byte("  Ada Lovelace \n\n\n  Go engineer\n"))
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace\nGo engineer", text)
}

func TestExtractText_TruncatesByRunes(t *testing.T) {
	svc := NewDocumentTextService(5)

	text, err := svc.ExtractText("resume.txt", "", []byte("héllo wörld"))
	require.NoError(t, err)
	assert.Equal(t, "héllo", text)
	assert.Equal(t, 5, utf8.RuneCountInString(text))
}

func TestExtractText_Errors(t *testing.T) {
	svc := NewDocumentTextService(100)

	_, err := svc.ExtractText("photo.png", "image/png", []byte{0x89, 'P', 'N', 'G'})
	assert.True(t, errors.Is(err, ErrUnsupportedDocument))

	_, err = svc.ExtractText("blank.txt", "text/plain", []byte(" \n\t\n"))
	assert.True(t, errors.Is(err, ErrEmptyDocument))

	_, err = svc.ExtractText("bad.txt", "text/plain", []byte{0xff, 0xfe})
	assert.True(t, errors.Is(err, ErrUnsupportedDocument))

	_, err = svc.ExtractText("broken.pdf", "application/pdf", []byte("%PDF-1.4 not really"))
	assert.Error(t, err)

	_, err = svc.ExtractText("broken.docx", "", []byte("PK not a zip"))
	assert.Error(t, err)
}

func TestDocxXMLToText(t *testing.T) {
	xml := `<w:document><w:body>` +
		`<w:p><w:r><w:t>Ada Lovelace</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Go</w:t></w:r><w:r><w:tab/><w:t>SQL &amp; Kafka</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>line</w:t><w:br/><w:t>break</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	got := CleanText(docxXMLToText(xml))
	assert.Equal(t, "Ada Lovelace\nGo\tSQL & Kafka\nline\nbreak", got)
	assert.False(t, strings.Contains(got, "<"))
}
