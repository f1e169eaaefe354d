// Package startup handles configuration loading and startup/shutdown logging.
//
// # Configuration
//
// [LoadConfig] reads environment variables layered over an optional TOML
// file named by CONFIG_FILE. Environment values win over the file, and the
// file wins over built-in defaults. File keys are the lower-case variable
// names (port, scratch_dir, burn_timeout, ...).
//
//   - PORT: HTTP server port (default: 8000)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable the metrics server (default: true)
//   - SCRATCH_DIR: Root for per-job working directories (default: $TMPDIR/subtitle_api)
//   - STORAGE_DIR: Durable storage for download artifacts (default: $TMPDIR/subtitle_api_outputs)
//   - FFMPEG_PATH: ffmpeg binary (default: ffmpeg from PATH)
//   - DEFAULT_STYLE: force_style used when a request has none
//   - VIDEO_FETCH_TIMEOUT: Video URL fetch budget as Go duration (default: 300s)
//   - SUBTITLE_FETCH_TIMEOUT: SRT URL fetch budget as Go duration (default: 60s)
//   - BURN_TIMEOUT: Hard limit on one ffmpeg run, 0 disables (default: 0)
//   - BURN_CONCURRENCY: Simultaneous ffmpeg runs; 0 or "unlimited", "auto", or a count (default: 0)
//   - MAX_UPLOAD_BYTES: Request body cap for uploads, 0 disables (default: 0)
//   - PUBLIC_BASE_URL: Base for download links; derived from the request when empty
//   - CORS_ALLOWED_ORIGINS: Comma-separated origins (default: *)
//   - LOG_LEVEL: debug, info, warn, error (default: info)
//   - LOG_HEALTH_CHECKS: Log health probe requests (default: true)
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
//
// # Lifecycle Logging
//
// The Log* functions print the sectioned startup and shutdown report:
//
//	config, err := startup.LoadConfig()
//	if err != nil {
//	    startup.LogFatal("Configuration error: %v", err)
//	}
//	startup.LogBurnerInit(ffmpegVersion, err)
//	startup.LogHTTPRoutes(router, config.LogHealthChecks)
//	startup.LogServerStarted(startup.ServerConfig{...})
package startup
