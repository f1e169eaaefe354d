// Package registry maps job identifiers to finished artifacts so they can be
// downloaded after the originating request has completed.
//
// The registry is in-memory only and is discarded on restart. Entries are
// never evicted; they are removed only when their backing file is found
// missing at download time.
package registry

import (
	"errors"
	"sync"
	"time"

	"subtitle-burner/internal/metrics"
)

// ErrNotFound is returned by Get when no entry exists for a job.
var ErrNotFound = errors.New("job not found")

// Entry describes a registry-owned artifact.
type Entry struct {
	JobID       string    `json:"jobId"`
	FilePath    string    `json:"-"`
	DisplayName string    `json:"filename"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Store is the registry contract used by request handlers.
type Store interface {
	Put(entry Entry)
	Get(jobID string) (Entry, error)
	Remove(jobID string)
	Len() int
}

// Memory is a Store guarded by a read-write mutex. Lookups may run
// concurrently; mutations are exclusive.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemory creates an empty in-memory registry.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]Entry)}
}

// Put inserts or overwrites the entry for entry.JobID.
func (m *Memory) Put(entry Entry) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	m.mu.Lock()
	m.entries[entry.JobID] = entry
	n := len(m.entries)
	m.mu.Unlock()

	metrics.RegistryOperationsTotal.WithLabelValues("put", "success").Inc()
	metrics.RegistryEntries.Set(float64(n))
}

// Get returns the entry for jobID or ErrNotFound.
func (m *Memory) Get(jobID string) (Entry, error) {
	m.mu.RLock()
	entry, ok := m.entries[jobID]
	m.mu.RUnlock()

	if !ok {
		metrics.RegistryOperationsTotal.WithLabelValues("get", "miss").Inc()
		return Entry{}, ErrNotFound
	}
	metrics.RegistryOperationsTotal.WithLabelValues("get", "success").Inc()
	return entry, nil
}

// Remove deletes the entry for jobID. Removing an unknown id is a no-op.
func (m *Memory) Remove(jobID string) {
	m.mu.Lock()
	_, ok := m.entries[jobID]
	delete(m.entries, jobID)
	n := len(m.entries)
	m.mu.Unlock()

	status := "success"
	if !ok {
		status = "miss"
	}
	metrics.RegistryOperationsTotal.WithLabelValues("remove", status).Inc()
	metrics.RegistryEntries.Set(float64(n))
}

// Len returns the number of entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// TotalSize returns the summed recorded size of all entries.
func (m *Memory) TotalSize() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var total int64
	for _, e := range m.entries {
		total += e.Size
	}
	return total
}
