package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"subtitle-burner/internal/burner"
	"subtitle-burner/internal/filesystem"
	"subtitle-burner/internal/handlers"
	"subtitle-burner/internal/inputs"
	"subtitle-burner/internal/logging"
	"subtitle-burner/internal/metrics"
	"subtitle-burner/internal/middleware"
	"subtitle-burner/internal/registry"
	"subtitle-burner/internal/startup"
	"subtitle-burner/internal/workdir"
)

const (
	shutdownTimeout   = 30 * time.Second
	collectorInterval = time.Minute
	ffmpegCheckTime   = 10 * time.Second
)

// shutdownDone is closed once graceful shutdown has finished.
var shutdownDone = make(chan struct{})

// statsSource is what the metrics collector samples.
type statsSource interface {
	Len() int
	TotalSize() int64
}

type dirStats interface {
	Active() int
	StorageSize() int64
}

// statsAdapter adapts the registry and work directory manager to
// metrics.StatsProvider.
type statsAdapter struct {
	store statsSource
	dirs  dirStats
}

// GetStats implements metrics.StatsProvider
func (a *statsAdapter) GetStats() metrics.Stats {
	return metrics.Stats{
		RegistryEntries: a.store.Len(),
		RegistryBytes:   a.store.TotalSize(),
		ActiveWorkDirs:  a.dirs.Active(),
		StorageBytes:    a.dirs.StorageSize(),
	}
}

func main() {
	startTime := time.Now()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{
		"scratch": config.ScratchDir,
		"storage": config.StorageDir,
	}))

	dirs := workdir.New(config.ScratchDir, config.StorageDir)
	if err := dirs.Initialize(); err != nil {
		startup.LogFatal("Failed to prepare directories: %v", err)
	}
	startup.LogWorkdirInit(config.ScratchDir, config.StorageDir, dirs.Locked())

	store := registry.NewMemory()

	resolver := inputs.NewResolver(inputs.Config{
		VideoTimeout:    config.VideoFetchTimeout,
		SubtitleTimeout: config.SubtitleFetchTimeout,
		UserAgent:       "subtitle-burner/" + startup.Version,
	})

	burn := burner.New(burner.Config{
		FFmpegPath:  config.FFmpegPath,
		Timeout:     config.BurnTimeout,
		Concurrency: config.BurnConcurrency,
	})
	checkCtx, cancelCheck := context.WithTimeout(context.Background(), ffmpegCheckTime)
	version, checkErr := burn.CheckAvailable(checkCtx)
	cancelCheck()
	startup.LogBurnerInit(version, checkErr)

	metrics.InitializeMetrics()
	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)
	collector := metrics.NewCollector(&statsAdapter{store: store, dirs: dirs}, collectorInterval)
	collector.Start()

	h := handlers.New(store, dirs, resolver, burn, handlers.Config{
		DefaultStyle:   config.DefaultStyle,
		MaxUploadBytes: config.MaxUploadBytes,
		PublicBaseURL:  config.PublicBaseURL,
	})

	router := h.Routes()
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = config.CORSAllowedOrigins

	handler := middleware.Chain(router,
		middleware.Recovery(),
		middleware.CORS(corsConfig),
		middleware.Logger(loggingConfig),
		middleware.Metrics(middleware.DefaultMetricsConfig()),
	)

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		// Uploads, fetches and burns can all run for minutes.
		ReadTimeout:  0,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsSrv = newMetricsServer(config.MetricsPort)
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	go handleShutdown(srv, metricsSrv, collector, burn, dirs)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		dirs.Shutdown()
		startup.LogFatal("Server error: %v", err)
	}

	// ListenAndServe returns as soon as Shutdown starts; wait for it to finish.
	<-shutdownDone
}

func newMetricsServer(port string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", (*handlers.Handlers)(nil).MetricsHandler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}
}

func handleShutdown(srv, metricsSrv *http.Server, collector *metrics.Collector, burn *burner.Burner, dirs *workdir.Manager) {
	defer close(shutdownDone)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownStep("Stopping ffmpeg processes")
	if n := burn.Running(); n > 0 {
		logging.Info("  Killing %d running ffmpeg processes", n)
	}
	burn.Cleanup()
	startup.LogShutdownStepComplete("Burner stopped")

	startup.LogShutdownStep("Stopping metrics collector")
	collector.Stop()
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		}
	}
	startup.LogShutdownStepComplete("Metrics stopped")

	startup.LogShutdownStep("Removing scratch root")
	dirs.Shutdown()
	startup.LogShutdownStepComplete("Scratch root removed")

	startup.LogShutdownComplete()
}
