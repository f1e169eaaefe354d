package startup

import (
	"net/http"
	"testing"

	"github.com/gorilla/mux"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	if info.Version == "" {
		t.Error("Expected Version to be set")
	}
	if info.GoVersion != GoVersion {
		t.Errorf("Expected GoVersion=%s, got %s", GoVersion, info.GoVersion)
	}
	if info.OS == "" || info.Arch == "" {
		t.Error("Expected OS and Arch to be set")
	}
}

func TestGetRoutes(t *testing.T) {
	noop := func(http.ResponseWriter, *http.Request) {}

	router := mux.NewRouter()
	router.HandleFunc("/health", noop).Methods("GET").Name("health")
	router.HandleFunc("/burn-subtitles", noop).Methods("POST", "OPTIONS")
	router.HandleFunc("/download/{job_id}", noop).Methods("GET")

	routes, err := GetRoutes(router)
	if err != nil {
		t.Fatalf("GetRoutes() error: %v", err)
	}
	if len(routes) != 4 {
		t.Fatalf("Expected 4 method/path pairs, got %d: %v", len(routes), routes)
	}

	found := false
	for _, r := range routes {
		if r.Path == "/download/{job_id}" && r.Method == "GET" {
			found = true
		}
		if r.Path == "/health" && r.Name != "health" {
			t.Errorf("Expected route name to be carried, got %q", r.Name)
		}
	}
	if !found {
		t.Error("Expected download route template in results")
	}
}

func TestGetRouteGroup(t *testing.T) {
	tests := map[string]string{
		"/":                   "",
		"/health":             "health",
		"/download/{job_id}":  "download",
		"/burn-subtitles-url": "burn-subtitles-url",
	}

	for path, want := range tests {
		if got := getRouteGroup(path); got != want {
			t.Errorf("getRouteGroup(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestLifecycleLoggingDoesNotPanic(_ *testing.T) {
	LogWorkdirInit("/tmp/scratch", "/tmp/storage", true)
	LogWorkdirInit("/tmp/scratch", "/tmp/storage", false)
	LogBurnerInit("ffmpeg version 6.1", nil)
	LogBurnerInit("", errNotFound{})
	LogHTTPRoutes(mux.NewRouter(), false)
	LogServerStarted(ServerConfig{Port: "8000", MetricsPort: "9090", MetricsEnabled: true})
	LogShutdownInitiated("SIGTERM")
	LogShutdownStep("Stopping server")
	LogShutdownStepComplete("Server stopped")
	LogShutdownComplete()
}

type errNotFound struct{}

func (errNotFound) Error() string { return "ffmpeg not found in PATH" }
