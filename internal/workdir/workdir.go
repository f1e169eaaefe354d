// Package workdir allocates and removes the per-job scratch directories the
// burn pipeline works in, and owns the durable storage directory that
// registry-backed artifacts are relocated into.
package workdir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"subtitle-burner/internal/apperr"
	"subtitle-burner/internal/logging"
	"subtitle-burner/internal/metrics"
)

const lockFileName = ".lock"

// Manager owns the scratch root and the durable storage directory.
type Manager struct {
	root       string
	storageDir string
	lock       *flock.Flock
	locked     bool
	active     atomic.Int64
}

// New creates a Manager. Nothing touches the filesystem until Initialize.
func New(root, storageDir string) *Manager {
	return &Manager{
		root:       filepath.Clean(root),
		storageDir: filepath.Clean(storageDir),
		lock:       flock.New(filepath.Join(filepath.Clean(root), lockFileName)),
	}
}

// Root returns the scratch root.
func (m *Manager) Root() string {
	return m.root
}

// DurableDir returns the directory registry-backed artifacts live in.
func (m *Manager) DurableDir() string {
	return m.storageDir
}

// Initialize creates the scratch root and storage directory, takes the
// scratch-root lock and sweeps leftovers from a previous run. When another
// process holds the lock the sweep is skipped since those directories may
// still be in use.
func (m *Manager) Initialize() error {
	if isWithin(m.root, m.storageDir) || m.root == m.storageDir {
		return fmt.Errorf("storage directory %s must be outside the scratch root %s", m.storageDir, m.root)
	}

	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return fmt.Errorf("create scratch root: %w", err)
	}
	if err := os.MkdirAll(m.storageDir, 0o755); err != nil {
		return fmt.Errorf("create storage directory: %w", err)
	}

	ok, err := m.lock.TryLock()
	if err != nil {
		logging.Warn("Failed to lock scratch root %s: %v", m.root, err)
		return nil
	}
	if !ok {
		logging.Warn("Scratch root %s is locked by another process, skipping stale directory sweep", m.root)
		return nil
	}
	m.locked = true

	removed := sweep(m.root, func(e os.DirEntry) bool { return e.IsDir() })
	if removed > 0 {
		logging.Info("Removed %d stale job directories from %s", removed, m.root)
	}

	// The registry does not survive a restart, so anything left in storage
	// is unreachable.
	orphans := sweep(m.storageDir, func(os.DirEntry) bool { return true })
	if orphans > 0 {
		logging.Info("Removed %d orphaned artifacts from %s", orphans, m.storageDir)
	}

	return nil
}

func sweep(dir string, match func(os.DirEntry) bool) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logging.Warn("failed to read %s: %v", dir, err)
		return 0
	}

	removed := 0
	for _, entry := range entries {
		if entry.Name() == lockFileName || !match(entry) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			logging.Warn("failed to remove %s: %v", path, err)
			continue
		}
		removed++
	}
	return removed
}

// Allocate creates an exclusively owned directory for jobID.
func (m *Manager) Allocate(jobID string) (string, error) {
	if jobID == "" || jobID == "." || jobID == ".." || strings.ContainsAny(jobID, `/\`) {
		return "", apperr.IO("allocate job directory", fmt.Errorf("invalid job id %q", jobID))
	}

	dir := filepath.Join(m.root, jobID)
	if err := os.Mkdir(dir, 0o700); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Scratch root vanished (tmp cleaner); recreate once.
			if mkErr := os.MkdirAll(m.root, 0o755); mkErr == nil {
				err = os.Mkdir(dir, 0o700)
			}
		}
		if err != nil {
			return "", apperr.IO("allocate job directory", err)
		}
	}

	metrics.WorkDirsActive.Set(float64(m.active.Add(1)))
	logging.Debug("Allocated job directory %s", dir)
	return dir, nil
}

// Release removes dir and everything in it. Failures are logged and never
// returned so cleanup cannot mask the error being reported to the client.
// Paths outside the scratch root are refused.
func (m *Manager) Release(dir string) {
	if dir == "" {
		return
	}
	if !isWithin(m.root, dir) {
		logging.Error("Refusing to remove %s: outside scratch root %s", dir, m.root)
		return
	}

	if err := os.RemoveAll(dir); err != nil {
		metrics.WorkDirCleanupFailures.Inc()
		logging.Warn("failed to remove job directory %s: %v", dir, err)
		return
	}

	metrics.WorkDirsActive.Set(float64(m.active.Add(-1)))
	logging.Debug("Released job directory %s", dir)
}

// Active returns the number of allocated directories not yet released.
func (m *Manager) Active() int {
	return int(m.active.Load())
}

// StorageSize returns the total size of files in the storage directory.
func (m *Manager) StorageSize() int64 {
	var size int64
	err := filepath.WalkDir(m.storageDir, func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			if info, err := d.Info(); err == nil {
				size += info.Size()
			}
		}
		return nil
	})
	if err != nil {
		logging.Debug("storage size walk failed: %v", err)
	}
	return size
}

// Locked reports whether this Manager holds the scratch-root lock.
func (m *Manager) Locked() bool {
	return m.locked
}

// Shutdown wipes the scratch root and releases the lock. Registry-backed
// artifacts in the storage directory are left alone. A Manager that never
// obtained the lock leaves the root to the process that owns it.
func (m *Manager) Shutdown() {
	if !m.locked {
		logging.Warn("Scratch root %s is owned by another process, not wiping it", m.root)
		return
	}

	if err := m.lock.Unlock(); err != nil {
		logging.Warn("failed to release scratch root lock: %v", err)
	}
	m.locked = false

	if err := os.RemoveAll(m.root); err != nil {
		logging.Warn("failed to remove scratch root %s: %v", m.root, err)
		return
	}
	m.active.Store(0)
	metrics.WorkDirsActive.Set(0)
}

// isWithin reports whether path is strictly inside root.
func isWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == "." || rel == ".." || filepath.IsAbs(rel) {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
