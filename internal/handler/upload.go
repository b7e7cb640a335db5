package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/poker-club/internal/logging"
)

// imageTypes maps sniffed content types to stored extensions.
var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

const defaultFolder = "images"

var folderJunk = regexp.MustCompile(`[^a-z0-9-]+`)

// SanitizeFolder keeps [a-z0-9-] so the folder can never leave the upload
// root.
func SanitizeFolder(raw string) string {
	f := folderJunk.ReplaceAllString(strings.ToLower(strings.TrimSpace(raw)), "-")
	f = strings.Trim(f, "-")
	if len(f) > 64 {
		f = strings.Trim(f[:64], "-")
	}
	if f == "" {
		return defaultFolder
	}
	return f
}

// UploadHandler stores admin image uploads on local disk; they are served
// back under /uploads.
type UploadHandler struct {
	Dir      string
	MaxBytes int64
	BaseURL  string
	Log      *logging.Logger
}

func NewUploadHandler(dir string, maxBytes int64, baseURL string, log *logging.Logger) *UploadHandler {
	return &UploadHandler{
		Dir:      dir,
		MaxBytes: maxBytes,
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Log:      loggerOr(log).With("handler", "upload"),
	}
}

var errTooLarge = errors.New("file too large")

// Image handles POST /api/admin/images (multipart field "file", optional
// "folder") and answers {"url": ...}.
func (h *UploadHandler) Image(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file is required"})
	}
	if h.MaxBytes > 0 && fh.Size > h.MaxBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": errTooLarge.Error()})
	}
	src, err := fh.Open()
	if err != nil {
		return fail(c, h.Log, "upload", err)
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return fail(c, h.Log, "upload", err)
	}
	head = head[:n]
	ext, ok := imageTypes[http.DetectContentType(head)]
	if !ok {
		return c.JSON(http.StatusUnsupportedMediaType, echo.Map{"error": "only jpeg, png, gif and webp images are accepted"})
	}

	folder := SanitizeFolder(c.FormValue("folder"))
	dir := filepath.Join(h.Dir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fail(c, h.Log, "upload", err)
	}
	name := uuid.NewString() + ext
	path := filepath.Join(dir, name)

	if err := h.write(path, head, src); err != nil {
		_ = os.Remove(path)
		if errors.Is(err, errTooLarge) {
			return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": err.Error()})
		}
		return fail(c, h.Log, "upload", err)
	}

	url := fmt.Sprintf("%s/uploads/%s/%s", h.BaseURL, folder, name)
	h.Log.Info("image uploaded", "path", path, "bytes", fh.Size)
	return c.JSON(http.StatusCreated, echo.Map{"url": url})
}

// write copies head plus the rest of src, enforcing MaxBytes on the bytes
// actually read.
func (h *UploadHandler) write(path string, head []byte, src io.Reader) error {
	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := dst.Write(head); err != nil {
		return err
	}
	rest := src
	if h.MaxBytes > 0 {
		rest = io.LimitReader(src, h.MaxBytes-int64(len(head))+1)
	}
	n, err := io.Copy(dst, rest)
	if err != nil {
		return err
	}
	if h.MaxBytes > 0 && int64(len(head))+n > h.MaxBytes {
		return errTooLarge
	}
	return dst.Sync()
}
