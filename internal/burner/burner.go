package burner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"subtitle-burner/internal/apperr"
	"subtitle-burner/internal/logging"
	"subtitle-burner/internal/metrics"
)

// DefaultStyle renders subtitles on a semi-transparent box behind the text.
const DefaultStyle = "OutlineColour=&H40000000,BorderStyle=3"

const maxStderrBytes = 64 * 1024

// Config configures a Burner.
type Config struct {
	// FFmpegPath is the ffmpeg binary; defaults to "ffmpeg" looked up in PATH.
	FFmpegPath string
	// Timeout bounds a single burn. Zero means no limit.
	Timeout time.Duration
	// Concurrency caps simultaneous burns. Zero means unlimited.
	Concurrency int
}

// Burner runs ffmpeg burn invocations.
type Burner struct {
	ffmpegPath string
	timeout    time.Duration
	slots      *semaphore.Weighted

	processes map[string]*exec.Cmd
	processMu sync.Mutex
}

// New creates a new Burner instance.
func New(cfg Config) *Burner {
	b := &Burner{
		ffmpegPath: cfg.FFmpegPath,
		timeout:    cfg.Timeout,
		processes:  make(map[string]*exec.Cmd),
	}
	if b.ffmpegPath == "" {
		b.ffmpegPath = "ffmpeg"
	}
	if cfg.Concurrency > 0 {
		b.slots = semaphore.NewWeighted(int64(cfg.Concurrency))
	}
	return b
}

// BuildArgs returns the ffmpeg argument vector that burns subtitlePath into
// videoPath with the given force_style and writes outputPath, overwriting
// any existing file.
func BuildArgs(videoPath, subtitlePath, style, outputPath string) []string {
	filter := "subtitles=filename=" + EscapeFilterValue(subtitlePath)
	if style != "" {
		filter += ":force_style=" + EscapeFilterValue(style)
	}

	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", videoPath,
		"-map", "0:v:0",
		"-map", "0:a?",
		"-vf", filter,
		"-c:a", "aac",
		"-movflags", "+faststart",
		outputPath,
	}
}

// EscapeFilterValue escapes s for use as a filter option value inside a
// filter graph. Option-level escaping protects ':' and quotes; graph-level
// escaping then protects the characters that separate filters and links.
func EscapeFilterValue(s string) string {
	opt := escapeChars(s, `\':`)
	return escapeChars(opt, `\'[],;`)
}

func escapeChars(s, special string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		if strings.ContainsRune(special, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Burn renders subtitlePath into videoPath and writes outputPath. The
// request context only governs waiting for a burn slot; once ffmpeg starts
// it runs to completion (or until the configured timeout) even if the client
// goes away.
func (b *Burner) Burn(ctx context.Context, videoPath, subtitlePath, style, outputPath string) error {
	if b.slots != nil {
		metrics.BurnsWaiting.Inc()
		err := b.slots.Acquire(ctx, 1)
		metrics.BurnsWaiting.Dec()
		if err != nil {
			return fmt.Errorf("waiting for burn slot: %w", err)
		}
		defer b.slots.Release(1)
	}

	runCtx := context.WithoutCancel(ctx)
	if b.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, b.timeout)
		defer cancel()
	}

	args := BuildArgs(videoPath, subtitlePath, style, outputPath)
	cmd := exec.CommandContext(runCtx, b.ffmpegPath, args...)
	stderr := &tailBuffer{limit: maxStderrBytes}
	cmd.Stderr = stderr
	cmd.WaitDelay = 5 * time.Second

	logging.Debug("Running %s %s", b.ffmpegPath, strings.Join(args, " "))

	b.processMu.Lock()
	b.processes[outputPath] = cmd
	b.processMu.Unlock()
	defer func() {
		b.processMu.Lock()
		delete(b.processes, outputPath)
		b.processMu.Unlock()
	}()

	metrics.BurnsInProgress.Inc()
	start := time.Now()
	err := cmd.Run()
	metrics.BurnsInProgress.Dec()
	metrics.BurnDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		if b.timeout > 0 && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			metrics.BurnsTotal.WithLabelValues("timeout").Inc()
			return apperr.Processing("FFmpeg processing failed", fmt.Errorf("timed out after %v", b.timeout))
		}
		metrics.BurnsTotal.WithLabelValues("error").Inc()

		diag := strings.TrimSpace(stderr.String())
		if diag == "" {
			return apperr.Processing("FFmpeg processing failed", err)
		}
		logging.Error("FFmpeg stderr: %s", diag)
		return apperr.Processing("FFmpeg processing failed", errors.New(diag))
	}

	if _, err := os.Stat(outputPath); err != nil {
		metrics.BurnsTotal.WithLabelValues("error").Inc()
		return apperr.Processing("FFmpeg processing failed", fmt.Errorf("ffmpeg exited cleanly but produced no output: %w", err))
	}

	metrics.BurnsTotal.WithLabelValues("success").Inc()
	logging.Debug("Burn completed in %v: %s", time.Since(start), outputPath)
	return nil
}

// CheckAvailable verifies that the ffmpeg binary can be found and run, and
// returns the first line of its version banner.
func (b *Burner) CheckAvailable(ctx context.Context) (string, error) {
	path, err := exec.LookPath(b.ffmpegPath)
	if err != nil {
		return "", fmt.Errorf("%s not found in PATH", b.ffmpegPath)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	output, err := exec.CommandContext(ctx, path, "-version").Output()
	if err != nil {
		return "", fmt.Errorf("failed to get ffmpeg version: %w", err)
	}

	line, _, _ := strings.Cut(string(output), "\n")
	return strings.TrimSpace(line), nil
}

// Running returns the number of ffmpeg processes currently tracked.
func (b *Burner) Running() int {
	b.processMu.Lock()
	defer b.processMu.Unlock()
	return len(b.processes)
}

// Cleanup stops all active burn processes.
func (b *Burner) Cleanup() {
	b.processMu.Lock()
	defer b.processMu.Unlock()

	for path, cmd := range b.processes {
		if cmd.Process != nil {
			logging.Info("Killing burn process for: %s", path)
			if err := cmd.Process.Kill(); err != nil {
				logging.Warn("failed to kill burn process for %s: %v", path, err)
			}
		}
	}
}

// tailBuffer keeps the last limit bytes written to it. FFmpeg prints the
// actual failure reason at the end of its output.
type tailBuffer struct {
	mu        sync.Mutex
	buf       []byte
	limit     int
	truncated bool
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
		t.truncated = true
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.truncated {
		return "..." + string(t.buf)
	}
	return string(t.buf)
}
