package catalog_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/productkb/kbctl/internal/catalog"
	"github.com/productkb/kbctl/internal/testutil"
	"github.com/productkb/kbctl/pkg/models"
)

func writeTempImages(t *testing.T, n int) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, 0, n)
	for i := 0; i < n; i++ {
		p := filepath.Join(dir, fmt.Sprintf("img-%02d.png", i))
		if err := os.WriteFile(p, []byte("png-bytes"), 0o644); err != nil {
			t.Fatalf("write temp image: %v", err)
		}
		paths = append(paths, p)
	}
	return paths
}

func TestUploadPostsMultipart(t *testing.T) {
	var gotPath, gotName string
	var gotFiles []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		gotName = r.FormValue("name")
		for _, fh := range r.MultipartForm.File["files"] {
			gotFiles = append(gotFiles, fh.Filename)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	u := catalog.NewUploader(srv.URL, testutil.Logger())
	paths := writeTempImages(t, 2)
	if err := u.Upload(context.Background(), "a1", "Widget", paths); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if gotPath != "/api/items/a1/images" {
		t.Errorf("path = %q, want item-scoped endpoint", gotPath)
	}
	if gotName != "Widget" {
		t.Errorf("name field = %q, want %q", gotName, "Widget")
	}
	if len(gotFiles) != 2 || gotFiles[0] != "img-00.png" {
		t.Errorf("files = %v, want both basenames", gotFiles)
	}
}

func TestUploadDiscardsExcessFiles(t *testing.T) {
	var gotCount int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		gotCount = len(r.MultipartForm.File["files"])
	}))
	t.Cleanup(srv.Close)

	u := catalog.NewUploader(srv.URL, testutil.Logger())
	paths := writeTempImages(t, models.MaxImages+4)
	if err := u.Upload(context.Background(), "a1", "", paths); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if gotCount != models.MaxImages {
		t.Errorf("server saw %d files, want %d", gotCount, models.MaxImages)
	}
}

func TestUploadNoFilesIsNoop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected when no files are selected")
	}))
	t.Cleanup(srv.Close)

	u := catalog.NewUploader(srv.URL, testutil.Logger())
	if err := u.Upload(context.Background(), "a1", "Widget", nil); err != nil {
		t.Errorf("Upload with no files = %v, want nil", err)
	}
}

func TestUploadFailureCarriesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "disk full", http.StatusInsufficientStorage)
	}))
	t.Cleanup(srv.Close)

	u := catalog.NewUploader(srv.URL, testutil.Logger())
	err := u.Upload(context.Background(), "a1", "", writeTempImages(t, 1))

	var ue *catalog.UploadError
	if !errors.As(err, &ue) {
		t.Fatalf("Upload = %v, want *UploadError", err)
	}
	if ue.Body != "disk full" {
		t.Errorf("Body = %q, want server text", ue.Body)
	}
}

func TestUploadMissingFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	t.Cleanup(srv.Close)

	u := catalog.NewUploader(srv.URL, testutil.Logger())
	err := u.Upload(context.Background(), "a1", "", []string{filepath.Join(t.TempDir(), "nope.png")})
	if err == nil {
		t.Error("Upload with missing local file should fail")
	}
}
