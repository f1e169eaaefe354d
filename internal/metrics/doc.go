// Package metrics provides Prometheus instrumentation for the subtitle burner.
//
// All metrics are prefixed with "subtitle_burner_" and registered on the
// default registry through promauto.
//
// # Metric Categories
//
// HTTP: request totals, duration and in-flight gauge, plus a counter of
// recovered handler panics.
//
// Jobs: totals by endpoint mode ("link", "inline", "url") and outcome,
// end-to-end duration, and a counter of job state transitions.
//
// Inputs: resolutions by slot and source, remote fetch duration, and bytes
// written into job directories.
//
// Burner: ffmpeg invocations by status, duration, and gauges for running and
// waiting burns.
//
// Storage: registry size, active working directories, cleanup failures and
// total size of registry-backed artifacts. The storage gauges are sampled by
// Collector rather than updated inline.
package metrics
