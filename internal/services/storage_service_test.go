// internal/services/storage_service_test.go
package services

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricepulse/pricepulse-backend/internal/config"
	"github.com/pricepulse/pricepulse-backend/internal/models"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

func makeUpload(t *testing.T, filename string, content []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	file, header, err := req.FormFile("image")
	require.NoError(t, err)
	return file, header
}

func TestNewStorageServiceWithoutCredentials(t *testing.T) {
	svc, err := NewStorageService(&config.Config{})
	require.NoError(t, err)
	require.NotNil(t, svc)
}

func TestUploadProductImageLocalFallback(t *testing.T) {
	svc, err := NewStorageService(&config.Config{})
	require.NoError(t, err)

	content := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0x00}, 64)...)
	file, header := makeUpload(t, "product.png", content)

	result, err := svc.UploadProductImage(file, header)
	require.NoError(t, err)
	assert.Contains(t, result.URL, result.Key)
	assert.Contains(t, result.Key, "products/")
	assert.Equal(t, int64(len(content)), result.Size)
}

func TestUploadProductImageRejectsBadExtension(t *testing.T) {
	svc, err := NewStorageService(&config.Config{})
	require.NoError(t, err)

	file, header := makeUpload(t, "script.exe", pngHeader)

	_, err = svc.UploadProductImage(file, header)
	assert.True(t, models.IsValidation(err))
}

func TestUploadProductImageRejectsBadSignature(t *testing.T) {
	svc, err := NewStorageService(&config.Config{})
	require.NoError(t, err)

	file, header := makeUpload(t, "fake.png", []byte("definitely not an image"))

	_, err = svc.UploadProductImage(file, header)
	assert.True(t, models.IsValidation(err))
}

func TestUploadProductImageRejectsOversizedFile(t *testing.T) {
	svc, err := NewStorageService(&config.Config{})
	require.NoError(t, err)

	oversized := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0x00}, maxProductImageSize)...)
	file, header := makeUpload(t, "huge.png", oversized)

	_, err = svc.UploadProductImage(file, header)
	assert.True(t, models.IsValidation(err))
}
