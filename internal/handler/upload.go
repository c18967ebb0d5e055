package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// maxUploadFiles caps the number of images accepted in one request.
const maxUploadFiles = 10

// UploadHandler stores post images on local disk under Dir. Files are
// served back as static assets from the same directory.
type UploadHandler struct {
	Dir    string
	Logger *zap.Logger
}

func NewUploadHandler(dir string, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{Dir: dir, Logger: logger}
}

// Upload handles POST /api/upload. The multipart field is "images";
// each stored file gets a millisecond-timestamp prefix so repeated
// uploads of the same filename never collide.
func (h *UploadHandler) Upload(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return validationFailed(c, "no files uploaded")
	}
	files := form.File["images"]
	if len(files) == 0 {
		return validationFailed(c, "no files uploaded")
	}
	if len(files) > maxUploadFiles {
		return validationFailed(c, "too many files, maximum is 10")
	}

	if err := os.MkdirAll(h.Dir, 0o755); err != nil {
		h.Logger.Error("upload: create dir", zap.Error(err))
		return serverError(c)
	}

	names := make([]string, 0, len(files))
	for _, fh := range files {
		name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(fh.Filename))
		if err := h.saveFile(fh, filepath.Join(h.Dir, name)); err != nil {
			h.Logger.Error("upload: save file", zap.String("file", fh.Filename), zap.Error(err))
			return serverError(c)
		}
		names = append(names, name)
	}
	return c.JSON(http.StatusOK, echo.Map{"fileNames": names})
}

func (h *UploadHandler) saveFile(fh *multipart.FileHeader, dst string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}
