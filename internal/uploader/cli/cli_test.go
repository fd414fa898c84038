package cli

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// galleryServer serves the page meta tags, accepts uploads and lists photos
type galleryServer struct {
	mu       sync.Mutex
	names    []string
	modes    []string
	tokens   []string
	rejectAt int
	listed   int
}

func (g *galleryServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html><head><meta name="_csrf" content="page-token"></head></html>`)
	})
	mux.HandleFunc("POST /api/photos", func(w http.ResponseWriter, r *http.Request) {
		_, fh, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "missing file", http.StatusBadRequest)
			return
		}
		g.mu.Lock()
		defer g.mu.Unlock()
		g.names = append(g.names, fh.Filename)
		g.modes = append(g.modes, r.URL.Query().Get("onDuplicate"))
		g.tokens = append(g.tokens, r.Header.Get("X-CSRF-TOKEN"))
		if len(g.names) == g.rejectAt {
			http.Error(w, "Duplicate file", http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"id":%d,"originalName":%q}`, len(g.names), fh.Filename)
	})
	mux.HandleFunc("GET /api/photos", func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		g.listed++
		g.mu.Unlock()
		_, _ = io.WriteString(w, `[]`)
	})
	mux.HandleFunc("POST /api/upload", func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		g.names = append(g.names, "legacy")
		g.mu.Unlock()
		_, _ = io.WriteString(w, `{"success":true}`)
	})
	return mux
}

func writePhotos(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, 0, len(names))
	for _, name := range names {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("fake image "+name), 0o600))
		paths = append(paths, p)
	}
	return paths
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("OTEL_TRACES_ENABLED", "false")
	t.Setenv("OTEL_METRICS_ENABLED", "false")

	root := NewRootCmd("1.2.3")
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3\n", out)
}

func TestUploadCommand(t *testing.T) {
	t.Run("uploads in order using page token", func(t *testing.T) {
		g := &galleryServer{}
		srv := httptest.NewServer(g.handler())
		defer srv.Close()

		paths := writePhotos(t, "a.jpg", "b.png")
		out, _, err := execute(t, append([]string{"upload", "--server", srv.URL, "--on-duplicate", "skip"}, paths...)...)
		require.NoError(t, err)

		assert.Equal(t, []string{"a.jpg", "b.png"}, g.names)
		assert.Equal(t, []string{"skip", "skip"}, g.modes)
		assert.Equal(t, []string{"page-token", "page-token"}, g.tokens)
		assert.Equal(t, 1, g.listed)
		assert.Contains(t, out, "uploaded a.jpg (id 1)")
		assert.Contains(t, out, "uploaded b.png (id 2)")
	})

	t.Run("rejection stops batch", func(t *testing.T) {
		g := &galleryServer{rejectAt: 2}
		srv := httptest.NewServer(g.handler())
		defer srv.Close()

		paths := writePhotos(t, "a.jpg", "b.jpg", "c.jpg")
		out, errOut, err := execute(t, append([]string{"upload", "--server", srv.URL, "--csrf-token", "flag-token"}, paths...)...)
		require.Error(t, err)

		assert.Equal(t, []string{"a.jpg", "b.jpg"}, g.names)
		assert.Equal(t, []string{"flag-token", "flag-token"}, g.tokens)
		assert.Equal(t, []string{"cancel", "cancel"}, g.modes)
		assert.Zero(t, g.listed)
		assert.Contains(t, out, "uploaded a.jpg")
		assert.Contains(t, errOut, "Upload failed: Duplicate file")
	})

	t.Run("legacy endpoint", func(t *testing.T) {
		g := &galleryServer{}
		srv := httptest.NewServer(g.handler())
		defer srv.Close()

		paths := writePhotos(t, "a.jpg")
		_, _, err := execute(t, append([]string{"upload", "--server", srv.URL, "--legacy", "--no-csrf"}, paths...)...)
		require.NoError(t, err)
		assert.Equal(t, []string{"legacy"}, g.names)
		assert.Equal(t, 1, g.listed)
	})

	t.Run("legacy endpoint needs no gallery page", func(t *testing.T) {
		g := &galleryServer{}
		mux := http.NewServeMux()
		full := g.handler()
		mux.Handle("POST /api/upload", full)
		mux.Handle("GET /api/photos", full)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		paths := writePhotos(t, "a.jpg", "b.jpg")
		_, errOut, err := execute(t, append([]string{"upload", "--server", srv.URL, "--legacy"}, paths...)...)
		require.NoError(t, err)
		assert.Equal(t, []string{"legacy", "legacy"}, g.names)
		assert.Equal(t, 1, g.listed)
		assert.NotContains(t, errOut, "Network error")
	})

	t.Run("missing file", func(t *testing.T) {
		g := &galleryServer{}
		srv := httptest.NewServer(g.handler())
		defer srv.Close()

		_, errOut, err := execute(t, "upload", "--server", srv.URL, "--csrf-token", "t", filepath.Join(t.TempDir(), "nope.jpg"))
		require.Error(t, err)
		assert.Empty(t, g.names)
		assert.Contains(t, errOut, "Upload failed: ")
	})

	t.Run("no files", func(t *testing.T) {
		_, errOut, err := execute(t, "upload", "--server", "http://127.0.0.1:1")
		require.NoError(t, err)
		assert.Contains(t, errOut, "no files selected")
	})

	t.Run("invalid server URL", func(t *testing.T) {
		_, _, err := execute(t, "upload", "--server", "ftp://example.com", "a.jpg")
		assert.Error(t, err)
	})
}
