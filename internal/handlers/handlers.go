package handlers

import (
	"context"
	"sync"
	"time"

	"subtitle-burner/internal/inputs"
	"subtitle-burner/internal/registry"
	"subtitle-burner/internal/streaming"
	"subtitle-burner/internal/workdir"
)

// Invoker renders subtitles into a video. *burner.Burner satisfies it.
type Invoker interface {
	Burn(ctx context.Context, videoPath, subtitlePath, style, outputPath string) error
	CheckAvailable(ctx context.Context) (string, error)
}

// Config holds request-handling settings.
type Config struct {
	DefaultStyle   string
	MaxUploadBytes int64
	PublicBaseURL  string
	Stream         streaming.Config
}

// Handlers serves the HTTP API.
type Handlers struct {
	store    registry.Store
	dirs     *workdir.Manager
	resolver *inputs.Resolver
	invoker  Invoker
	config   Config

	readyMu      sync.Mutex
	readyChecked time.Time
	readyErr     error
}

// New wires the handlers to their collaborators.
func New(store registry.Store, dirs *workdir.Manager, resolver *inputs.Resolver, invoker Invoker, config Config) *Handlers {
	if config.Stream.WriteTimeout == 0 {
		config.Stream = streaming.DefaultConfig()
	}
	return &Handlers{
		store:    store,
		dirs:     dirs,
		resolver: resolver,
		invoker:  invoker,
		config:   config,
	}
}
