package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subtitle_burner_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "subtitle_burner_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "subtitle_burner_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	HTTPPanicsRecovered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "subtitle_burner_http_panics_recovered_total",
			Help: "Total number of handler panics converted to 500 responses",
		},
	)
)

// Job metrics
var (
	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subtitle_burner_jobs_total",
			Help: "Total number of burn jobs by endpoint mode and outcome",
		},
		[]string{"mode", "outcome"}, // mode: link, inline, url; outcome: success or error kind
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "subtitle_burner_job_duration_seconds",
			Help:    "End-to-end job duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200},
		},
		[]string{"mode"},
	)

	JobStateTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subtitle_burner_job_state_transitions_total",
			Help: "Total number of job state transitions by target state",
		},
		[]string{"state"},
	)
)

// Input resolver metrics
var (
	InputResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subtitle_burner_input_resolutions_total",
			Help: "Total number of input resolutions by slot, source and status",
		},
		[]string{"slot", "source", "status"}, // source: upload, url
	)

	InputFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "subtitle_burner_input_fetch_duration_seconds",
			Help:    "Remote input download duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"slot"},
	)

	InputBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subtitle_burner_input_bytes_total",
			Help: "Total bytes written to job directories by slot",
		},
		[]string{"slot"},
	)
)

// Burner metrics
var (
	BurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subtitle_burner_burns_total",
			Help: "Total number of ffmpeg burn invocations",
		},
		[]string{"status"},
	)

	BurnDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "subtitle_burner_burn_duration_seconds",
			Help:    "ffmpeg burn duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200},
		},
	)

	BurnsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "subtitle_burner_burns_in_progress",
			Help: "Number of ffmpeg burn processes currently running",
		},
	)

	BurnsWaiting = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "subtitle_burner_burns_waiting",
			Help: "Number of jobs waiting for a burn slot",
		},
	)
)

// Storage metrics
var (
	RegistryEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "subtitle_burner_registry_entries",
			Help: "Number of download entries held in the job registry",
		},
	)

	RegistrySizeBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "subtitle_burner_registry_size_bytes",
			Help: "Summed size recorded for the outputs held in the job registry",
		},
	)

	RegistryOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subtitle_burner_registry_operations_total",
			Help: "Total number of registry operations",
		},
		[]string{"operation", "status"},
	)

	WorkDirsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "subtitle_burner_work_dirs_active",
			Help: "Number of job working directories currently on disk",
		},
	)

	WorkDirCleanupFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "subtitle_burner_work_dir_cleanup_failures_total",
			Help: "Total number of best-effort working directory removals that failed",
		},
	)

	StorageSizeBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "subtitle_burner_storage_size_bytes",
			Help: "Total size of files in the storage directory in bytes",
		},
	)
)

// Filesystem retry metrics
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subtitle_burner_filesystem_retry_attempts_total",
			Help: "Total number of filesystem retries after stale file handle errors",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subtitle_burner_filesystem_retry_failures_total",
			Help: "Total number of filesystem operations that failed after all retries",
		},
		[]string{"operation", "volume"},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "subtitle_burner_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
