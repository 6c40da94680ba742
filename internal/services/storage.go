package services

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
)

var ErrFileTooLarge = errors.New("file too large")

// Upload is a resume file held in memory. Uploads are parsed and discarded,
// never written to disk.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type StorageService interface {
	ReadUpload(file *multipart.FileHeader) (*Upload, error)
}

type storageService struct {
	maxFileSize int64
}

func NewStorageService(maxFileSize int64) StorageService {
	return &storageService{
		maxFileSize: maxFileSize,
	}
}

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
	".md":   true,
}

func (s *storageService) ReadUpload(file *multipart.FileHeader) (*Upload, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	contentType := file.Header.Get("Content-Type")
	if !allowedExtensions[ext] && DetectDocumentType(file.Filename, contentType) == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDocument, file.Filename)
	}

	if s.maxFileSize > 0 && file.Size > s.maxFileSize {
		return nil, fmt.Errorf("%w: max size is %d bytes", ErrFileTooLarge, s.maxFileSize)
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	// Read one byte past the limit so an understated Size is still caught.
	reader := io.Reader(src)
	if s.maxFileSize > 0 {
		reader = io.LimitReader(src, s.maxFileSize+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if s.maxFileSize > 0 && int64(len(data)) > s.maxFileSize {
		return nil, fmt.Errorf("%w: max size is %d bytes", ErrFileTooLarge, s.maxFileSize)
	}

	return &Upload{
		Filename:    file.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}
