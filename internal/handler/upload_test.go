package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func multipartRequest(t *testing.T, field string, names []string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, name := range names {
		fw, err := w.CreateFormFile(field, name)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		if _, err := fw.Write([]byte("fake image bytes")); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestUploadStoresFiles(t *testing.T) {
	dir := t.TempDir()
	h := NewUploadHandler(dir, nopLogger())

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(multipartRequest(t, "images", []string{"cat.png", "dog.jpg"}), rec)
	if err := h.Upload(c); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		FileNames []string `json:"fileNames"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.FileNames) != 2 {
		t.Fatalf("fileNames = %v, want 2 entries", resp.FileNames)
	}
	for i, want := range []string{"cat.png", "dog.jpg"} {
		if !strings.HasSuffix(resp.FileNames[i], "-"+want) {
			t.Errorf("fileNames[%d] = %q, want suffix -%s", i, resp.FileNames[i], want)
		}
		if _, err := os.Stat(filepath.Join(dir, resp.FileNames[i])); err != nil {
			t.Errorf("stored file missing: %v", err)
		}
	}
}

func TestUploadRejectsEmptyAndOversized(t *testing.T) {
	dir := t.TempDir()
	h := NewUploadHandler(dir, nopLogger())
	e := echo.New()

	// Wrong field name means zero files.
	rec := httptest.NewRecorder()
	c := e.NewContext(multipartRequest(t, "attachments", []string{"x.png"}), rec)
	if err := h.Upload(c); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for missing field", rec.Code)
	}

	// Eleven files exceeds the cap.
	names := make([]string, 11)
	for i := range names {
		names[i] = "f.png"
	}
	rec = httptest.NewRecorder()
	c = e.NewContext(multipartRequest(t, "images", names), rec)
	if err := h.Upload(c); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for too many files", rec.Code)
	}
}
