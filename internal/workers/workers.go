// Package workers sizes concurrency limits from the CPUs available to the
// process.
package workers

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

// Count returns a worker count of multiplier per available CPU.
// It respects container CPU limits via GOMAXPROCS (Go 1.19+).
//
// The limit parameter caps the worker count to prevent resource exhaustion.
// Use 0 for no limit.
func Count(multiplier float64, limit int) int {
	// GOMAXPROCS is automatically set to container CPU limit in Go 1.19+
	available := runtime.GOMAXPROCS(0)

	workers := int(float64(available) * multiplier)

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}

	return workers
}

// ForCPU returns worker count for CPU-bound tasks (1 per CPU).
// The limit parameter caps the maximum number of workers.
func ForCPU(limit int) int {
	return Count(1.0, limit)
}

// Parse interprets a concurrency setting. An empty string or "0" means
// unlimited and yields 0; "auto" yields one worker per CPU; anything else
// must be a non-negative integer.
func Parse(value string) (int, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	switch value {
	case "", "0", "unlimited":
		return 0, nil
	case "auto":
		return ForCPU(0), nil
	}

	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid concurrency %q: want a non-negative integer or \"auto\"", value)
	}
	return n, nil
}
