package streaming

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"time"

	"subtitle-burner/internal/logging"
)

var (
	// ErrWriteTimeout indicates a single write took longer than WriteTimeout,
	// or the transfer ran past MaxDuration.
	ErrWriteTimeout = errors.New("write timeout exceeded")

	// ErrClientGone indicates the request context was canceled mid-transfer.
	ErrClientGone = errors.New("client disconnected")

	// ErrStreamCanceled indicates the writer was closed or stopped by the
	// idle checker.
	ErrStreamCanceled = errors.New("stream canceled")
)

// Config controls TimeoutWriter behavior.
type Config struct {
	// WriteTimeout bounds a single write to the client.
	WriteTimeout time.Duration
	// IdleTimeout bounds the gap between successful writes. Zero disables it.
	IdleTimeout time.Duration
	// MaxDuration bounds the whole transfer. Zero means unlimited.
	MaxDuration time.Duration
	// ChunkSize splits large writes so cancellation is noticed promptly.
	ChunkSize int
	// OnProgress, if set, is called roughly once per MiB written.
	OnProgress func(bytesWritten int64, elapsed time.Duration)
}

// DefaultConfig returns the settings used for video responses.
func DefaultConfig() Config {
	return Config{
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ChunkSize:    64 * 1024,
	}
}

// TimeoutWriter wraps an http.ResponseWriter and fails writes that stall.
// Stalls are bounded with per-write connection deadlines, so a failed write
// never leaves anything touching the ResponseWriter after Write returns.
type TimeoutWriter struct {
	w       http.ResponseWriter
	rc      *http.ResponseController
	flusher http.Flusher
	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	config  Config

	mu        sync.Mutex
	start     time.Time
	lastWrite time.Time
	written   int64
	closed    bool
}

// NewTimeoutWriter starts an idle checker that lives until Close is called
// or ctx is done.
func NewTimeoutWriter(ctx context.Context, w http.ResponseWriter, config Config) *TimeoutWriter {
	writerCtx, cancel := context.WithCancel(ctx)
	now := time.Now()

	tw := &TimeoutWriter{
		w:         w,
		rc:        http.NewResponseController(w),
		parent:    ctx,
		ctx:       writerCtx,
		cancel:    cancel,
		config:    config,
		start:     now,
		lastWrite: now,
	}
	if f, ok := w.(http.Flusher); ok {
		tw.flusher = f
	}

	go tw.watchIdle()
	return tw
}

// Write implements io.Writer.
func (tw *TimeoutWriter) Write(p []byte) (int, error) {
	tw.mu.Lock()
	closed := tw.closed
	tw.mu.Unlock()
	if closed {
		return 0, ErrStreamCanceled
	}

	if err := tw.ctxErr(); err != nil {
		return 0, err
	}
	if tw.config.MaxDuration > 0 && time.Since(tw.start) > tw.config.MaxDuration {
		return 0, ErrWriteTimeout
	}

	chunk := tw.config.ChunkSize
	if chunk <= 0 || len(p) <= chunk {
		return tw.writeOnce(p)
	}

	total := 0
	for len(p) > 0 {
		if err := tw.ctxErr(); err != nil {
			return total, err
		}
		n := min(chunk, len(p))
		written, err := tw.writeOnce(p[:n])
		total += written
		if err != nil {
			return total, err
		}
		p = p[n:]
		if tw.flusher != nil {
			tw.flusher.Flush()
		}
	}
	return total, nil
}

func (tw *TimeoutWriter) writeOnce(p []byte) (int, error) {
	if tw.config.WriteTimeout > 0 {
		tw.setDeadline(time.Now().Add(tw.config.WriteTimeout))
	}

	n, err := tw.w.Write(p)
	if n > 0 {
		tw.mu.Lock()
		before := tw.written
		tw.written += int64(n)
		tw.lastWrite = time.Now()
		after := tw.written
		tw.mu.Unlock()

		if tw.config.OnProgress != nil && before>>20 != after>>20 {
			tw.config.OnProgress(after, time.Since(tw.start))
		}
	}
	if err == nil {
		return n, nil
	}

	if ctxErr := tw.ctxErr(); ctxErr != nil {
		return n, ctxErr
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		tw.cancel()
		return n, ErrWriteTimeout
	}
	return n, err
}

// setDeadline sets the connection write deadline. Writers that cannot
// carry a deadline (recorders, some wrappers) are written to unbounded.
func (tw *TimeoutWriter) setDeadline(t time.Time) {
	if err := tw.rc.SetWriteDeadline(t); err != nil && !errors.Is(err, http.ErrNotSupported) {
		logging.Debug("failed to set write deadline: %v", err)
	}
}

func (tw *TimeoutWriter) watchIdle() {
	if tw.config.IdleTimeout <= 0 {
		return
	}

	ticker := time.NewTicker(tw.config.IdleTimeout / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			tw.mu.Lock()
			idle := time.Since(tw.lastWrite)
			closed := tw.closed
			tw.mu.Unlock()

			if closed {
				return
			}
			if idle > tw.config.IdleTimeout {
				logging.Warn("Response idle for %v, aborting transfer", idle)
				tw.cancel()
				// Unblock a write stuck on a stalled client.
				tw.setDeadline(time.Now())
				return
			}
		case <-tw.ctx.Done():
			return
		}
	}
}

// ctxErr distinguishes a client disconnect from a local cancel.
func (tw *TimeoutWriter) ctxErr() error {
	if tw.ctx.Err() == nil {
		return nil
	}
	if tw.parent.Err() != nil {
		return ErrClientGone
	}
	return ErrStreamCanceled
}

// Close stops the idle checker and clears the write deadline so the
// connection can be reused. It is safe to call more than once.
func (tw *TimeoutWriter) Close() error {
	tw.mu.Lock()
	if tw.closed {
		tw.mu.Unlock()
		return nil
	}
	tw.closed = true
	tw.cancel()
	tw.mu.Unlock()

	if tw.config.WriteTimeout > 0 {
		tw.setDeadline(time.Time{})
	}
	return nil
}

// Stats returns bytes written and time since the writer was created.
func (tw *TimeoutWriter) Stats() (int64, time.Duration) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.written, time.Since(tw.start)
}
