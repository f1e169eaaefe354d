package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	modes := []string{"link", "inline", "url"}
	outcomes := []string{"success", "validation", "fetch", "processing", "io", "internal"}
	for _, mode := range modes {
		for _, outcome := range outcomes {
			JobsTotal.WithLabelValues(mode, outcome)
		}
		JobDuration.WithLabelValues(mode)
	}

	for _, state := range []string{"created", "resolving_inputs", "invoking", "succeeded", "responding", "failed"} {
		JobStateTransitions.WithLabelValues(state)
	}

	for _, slot := range []string{"video", "subtitles"} {
		for _, source := range []string{"upload", "url"} {
			InputResolutionsTotal.WithLabelValues(slot, source, "success")
			InputResolutionsTotal.WithLabelValues(slot, source, "error")
		}
		InputFetchDuration.WithLabelValues(slot)
		InputBytesTotal.WithLabelValues(slot)
	}

	for _, status := range []string{"success", "error", "timeout"} {
		BurnsTotal.WithLabelValues(status)
	}

	for _, op := range []string{"put", "get", "remove"} {
		RegistryOperationsTotal.WithLabelValues(op, "success")
		RegistryOperationsTotal.WithLabelValues(op, "miss")
	}

	for _, op := range []string{"stat", "open"} {
		for _, vol := range []string{"scratch", "storage", "unknown"} {
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
		}
	}
}
