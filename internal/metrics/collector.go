package metrics

import (
	"time"

	"subtitle-burner/internal/logging"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current storage statistics
type Stats struct {
	RegistryEntries int
	RegistryBytes   int64
	ActiveWorkDirs  int
	StorageBytes    int64
}

// Collector periodically collects and updates metrics
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	RegistryEntries.Set(float64(stats.RegistryEntries))
	RegistrySizeBytes.Set(float64(stats.RegistryBytes))
	WorkDirsActive.Set(float64(stats.ActiveWorkDirs))
	StorageSizeBytes.Set(float64(stats.StorageBytes))

	logging.Debug("Metrics collected: registry=%d (%d bytes), workdirs=%d, storage=%d bytes",
		stats.RegistryEntries, stats.RegistryBytes, stats.ActiveWorkDirs, stats.StorageBytes)
}
