package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/productkb/kbctl/pkg/models"
)

// Uploader posts image files to an item's upload endpoint. It runs only
// after a successful create or update; a failed upload leaves the item in
// place with no images attached (the caller surfaces the error, nothing is
// rolled back).
type Uploader struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewUploader creates an Uploader for the API at baseURL.
func NewUploader(baseURL string, logger *zap.Logger) *Uploader {
	return &Uploader{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  http.DefaultClient,
		logger:  logger,
	}
}

// Upload sends up to models.MaxImages files (excess silently discarded) as
// multipart form data, with the item's display name as an extra field.
// Doing nothing when paths is empty keeps save flows unconditional.
func (u *Uploader) Upload(ctx context.Context, id, name string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	if len(paths) > models.MaxImages {
		paths = paths[:models.MaxImages]
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range paths {
		if err := addFilePart(w, p); err != nil {
			return err
		}
	}
	if name != "" {
		if err := w.WriteField("name", name); err != nil {
			return fmt.Errorf("write name field: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finish multipart body: %w", err)
	}

	endpoint := u.baseURL + "/api/items/" + url.PathEscape(id) + "/images"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	u.logger.Debug("uploading images", zap.String("id", id), zap.Int("files", len(paths)))

	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("upload images for %q: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return &UploadError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	return nil
}

// addFilePart streams one local file into the multipart writer under the
// repeated "files" field.
func addFilePart(w *multipart.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open image %q: %w", path, err)
	}
	defer f.Close()

	part, err := w.CreateFormFile("files", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("create form file %q: %w", path, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("read image %q: %w", path, err)
	}
	return nil
}
