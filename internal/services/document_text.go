package services

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeText = "text/plain"
)

var (
	ErrUnsupportedDocument = errors.New("unsupported document type")
	ErrEmptyDocument       = errors.New("no text content found in document")
)

type DocumentTextService interface {
	// ExtractText returns the document's text, pages separated by newlines,
	// truncated to the configured rune limit.
	ExtractText(filename, contentType string, data []byte) (string, error)
}

type documentTextService struct {
	maxChars int
}

func NewDocumentTextService(maxChars int) DocumentTextService {
	return &documentTextService{maxChars: maxChars}
}

func (d *documentTextService) ExtractText(filename, contentType string, data []byte) (string, error) {
	var (
		text string
		err  error
	)

	switch DetectDocumentType(filename, contentType) {
	case MimePDF:
		text, err = pdfText(data)
	case MimeDOCX:
		text, err = docxText(data)
	case MimeText:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: %s is not valid UTF-8 text", ErrUnsupportedDocument, filename)
		}
		text = string(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDocument, filename)
	}
	if err != nil {
		return "", err
	}

	text = CleanText(text)
	if text == "" {
		return "", ErrEmptyDocument
	}

	return truncateRunes(text, d.maxChars), nil
}

// DetectDocumentType trusts a known content type first and falls back to
// the file extension.
func DetectDocumentType(filename, contentType string) string {
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	switch mediaType {
	case MimePDF, MimeDOCX, MimeText:
		return mediaType
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return MimePDF
	case ".docx":
		return MimeDOCX
	case ".txt", ".md":
		return MimeText
	}
	return ""
}

func pdfText(data []byte) (text string, err error) {
	// ledongthuc/pdf panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("failed to read PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n")
	}

	return textBuilder.String(), nil
}

func docxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return docxXMLToText(doc.Editable().GetContent()), nil
}

var (
	docxBreak = regexp.MustCompile(`</w:p>|<w:br\s*/>|<w:tab\s*/>`)
	xmlTag    = regexp.MustCompile(`<[^>]+>`)
)

// docxXMLToText flattens word/document.xml into plain text, one paragraph
// per line.
func docxXMLToText(content string) string {
	content = docxBreak.ReplaceAllStringFunc(content, func(tag string) string {
		if strings.HasPrefix(tag, "<w:tab") {
			return "\t"
		}
		return "\n"
	})
	content = xmlTag.ReplaceAllString(content, "")
	return html.UnescapeString(content)
}

// CleanText trims every line and drops blank ones.
func CleanText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}

func truncateRunes(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit])
}
