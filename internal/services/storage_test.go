package services

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, filename, contentType string, data []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func TestReadUpload(t *testing.T) {
	svc := NewStorageService(64)

	upload, err := svc.ReadUpload(fileHeader(t, "resume.txt", "text/plain", []byte("Ada Lovelace")))
	require.NoError(t, err)
	assert.Equal(t, "resume.txt", upload.Filename)
	assert.Equal(t, "text/plain", upload.ContentType)
	assert.Equal(t, []byte("Ada Lovelace"), upload.Data)
}

func TestReadUpload_Rejects(t *testing.T) {
	svc := NewStorageService(8)

	_, err := svc.ReadUpload(fileHeader(t, "resume.txt", "text/plain", []byte("way more than eight bytes")))
	assert.True(t, errors.Is(err, ErrFileTooLarge))

	_, err = svc.ReadUpload(fileHeader(t, "malware.exe", "application/octet-stream", []byte("MZ")))
	assert.True(t, errors.Is(err, ErrUnsupportedDocument))
}
