package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subtitle-burner/internal/registry"
)

func storeOutput(t *testing.T, env *testEnv, id, display, content string) string {
	t.Helper()
	path := filepath.Join(env.dirs.DurableDir(), id+".mp4")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	env.store.Put(registry.Entry{JobID: id, FilePath: path, DisplayName: display, Size: int64(len(content))})
	return path
}

func TestDownloadUnknownJob(t *testing.T) {
	env := newTestEnv(t, Config{})
	rec := env.do(httptest.NewRequest(http.MethodGet, "/download/does-not-exist", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
	if detail := decodeDetail(t, rec); detail != "Job not found" {
		t.Errorf("Unexpected detail %q", detail)
	}
}

func TestDownloadMissingFilePrunesEntry(t *testing.T) {
	env := newTestEnv(t, Config{})
	path := storeOutput(t, env, "job-1", "movie.mp4", "DATA")
	if err := os.Remove(path); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}

	rec := env.do(httptest.NewRequest(http.MethodGet, "/download/job-1", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
	if detail := decodeDetail(t, rec); detail != "File not found" {
		t.Errorf("Unexpected detail %q", detail)
	}
	if env.store.Len() != 0 {
		t.Error("Expected entry to be pruned")
	}

	rec = env.do(httptest.NewRequest(http.MethodGet, "/download/job-1", nil))
	if detail := decodeDetail(t, rec); detail != "Job not found" {
		t.Errorf("Expected pruned entry to read as unknown, got %q", detail)
	}
}

func TestDownloadRange(t *testing.T) {
	env := newTestEnv(t, Config{})
	storeOutput(t, env, "job-2", "movie.mp4", "0123456789")

	req := httptest.NewRequest(http.MethodGet, "/download/job-2", nil)
	req.Header.Set("Range", "bytes=2-5")
	rec := env.do(req)

	if rec.Code != http.StatusPartialContent {
		t.Fatalf("Expected 206, got %d", rec.Code)
	}
	if rec.Body.String() != "2345" {
		t.Errorf("Unexpected body %q", rec.Body.String())
	}
}

func TestDownloadHead(t *testing.T) {
	env := newTestEnv(t, Config{})
	storeOutput(t, env, "job-3", "my movie.mp4", "0123456789")

	rec := env.do(httptest.NewRequest(http.MethodHead, "/download/job-3", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("Content-Length") != "10" {
		t.Errorf("Expected Content-Length 10, got %q", rec.Header().Get("Content-Length"))
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, `"my movie.mp4"`) {
		t.Errorf("Expected quoted display name, got %q", cd)
	}
}
