package handlers

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func multipartUpload(t *testing.T, fieldName, fileName string, size int) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(fieldName, fileName)
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	if _, err := part.Write(bytes.Repeat([]byte{0xAB}, size)); err != nil {
		t.Fatalf("part write failed: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("multipart close failed: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestFileStoreRejectsOversizedUpload(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewFileHandler(nil, logger, t.TempDir(), "http://localhost:3333")

	body, contentType := multipartUpload(t, "file", "avatar.png", maxUploadBytes+1)
	req := httptest.NewRequest(http.MethodPost, "/files", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Store(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversized upload, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Validation fails") {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
}

func TestFileStoreRejectsMissingPart(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewFileHandler(nil, logger, t.TempDir(), "http://localhost:3333")

	body, contentType := multipartUpload(t, "not-file", "avatar.png", 16)
	req := httptest.NewRequest(http.MethodPost, "/files", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Store(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without a file part, got %d", rec.Code)
	}
}
