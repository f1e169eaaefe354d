// Package main provides the entry point for the Subtitle Burner service.
//
// Subtitle Burner is an HTTP service that renders SRT subtitles permanently
// into a video with FFmpeg. Inputs arrive as multipart uploads or are fetched
// from URLs; the result is either streamed back in the response or stored and
// exposed through a one-off download link.
//
// # Application Lifecycle
//
//  1. Configuration Loading: environment variables, optionally layered over
//     a TOML file named by CONFIG_FILE
//  2. Directory Setup: creates the scratch root and storage directory, locks
//     the scratch root and sweeps leftovers from a previous run
//  3. Component Initialization:
//     - Input resolver for uploads and remote fetches
//     - Burner wrapping the ffmpeg binary (availability is checked, not required)
//     - In-memory download registry
//     - Metrics collector sampling registry and storage sizes
//  4. HTTP Server Setup: routes, middleware (recovery, CORS, logging, metrics)
//  5. Graceful Shutdown: on SIGINT/SIGTERM, drains requests, kills running
//     ffmpeg processes and removes the scratch root
//
// # HTTP Servers
//
//  1. Main Server (default port 8000): burn endpoints, downloads and health
//  2. Metrics Server (default port 9090, optional): /metrics and /health
//
// # Requirements
//
// The ffmpeg binary must be on PATH (or FFMPEG_PATH) and built with libass
// for the subtitles filter.
//
//	go build -o subtitle-burner ./cmd/subtitle-burner
//
// # Related Packages
//
//   - [subtitle-burner/internal/handlers]: HTTP request handlers
//   - [subtitle-burner/internal/burner]: FFmpeg invocation
//   - [subtitle-burner/internal/inputs]: Upload and URL input resolution
//   - [subtitle-burner/internal/registry]: Download registry
//   - [subtitle-burner/internal/workdir]: Per-job scratch directories
//   - [subtitle-burner/internal/startup]: Configuration and initialization
package main
