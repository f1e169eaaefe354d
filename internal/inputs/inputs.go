package inputs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"subtitle-burner/internal/apperr"
	"subtitle-burner/internal/logging"
	"subtitle-burner/internal/metrics"
)

// Slot identifies which input of a job is being resolved.
type Slot string

const (
	// SlotVideo is the video input.
	SlotVideo Slot = "video"
	// SlotSubtitles is the SRT subtitle input.
	SlotSubtitles Slot = "subtitles"
)

const (
	// DefaultVideoTimeout bounds a remote video download.
	DefaultVideoTimeout = 300 * time.Second
	// DefaultSubtitleTimeout bounds a remote subtitle download.
	DefaultSubtitleTimeout = 60 * time.Second

	defaultVideoExt  = ".mp4"
	subtitleFileName = "subtitles.srt"
	maxExtLen        = 16
)

// Source describes where a slot's content comes from. Uploaded is true when
// the request carried a multipart part for the slot, even one without a
// filename; Body is then the part content.
type Source struct {
	Uploaded bool
	Filename string
	Body     io.Reader
	URL      string
}

// Resolved is a slot materialised on local disk.
type Resolved struct {
	Slot         Slot
	Path         string
	OriginalName string // upload filename; empty for URL sources
	FromURL      bool
	Bytes        int64
}

// Config configures a Resolver.
type Config struct {
	VideoTimeout    time.Duration
	SubtitleTimeout time.Duration
	UserAgent       string
	Client          *http.Client
}

// Resolver writes uploads and fetches remote inputs.
type Resolver struct {
	client          *http.Client
	videoTimeout    time.Duration
	subtitleTimeout time.Duration
	userAgent       string
}

// NewResolver creates a Resolver, filling unset fields with defaults.
func NewResolver(cfg Config) *Resolver {
	r := &Resolver{
		client:          cfg.Client,
		videoTimeout:    cfg.VideoTimeout,
		subtitleTimeout: cfg.SubtitleTimeout,
		userAgent:       cfg.UserAgent,
	}
	if r.client == nil {
		r.client = &http.Client{}
	}
	if r.videoTimeout <= 0 {
		r.videoTimeout = DefaultVideoTimeout
	}
	if r.subtitleTimeout <= 0 {
		r.subtitleTimeout = DefaultSubtitleTimeout
	}
	return r
}

func (s Slot) label() string {
	if s == SlotSubtitles {
		return "SRT"
	}
	return "Video"
}

func (s Slot) field() string {
	if s == SlotSubtitles {
		return "srt"
	}
	return "video"
}

// Validate checks a slot's source without touching disk or network so that
// request-level errors are reported before any work starts.
func Validate(slot Slot, src Source) error {
	if src.Uploaded {
		if strings.TrimSpace(src.Filename) == "" {
			return apperr.Validation(slot.label() + " filename is required")
		}
		if slot == SlotSubtitles && !strings.HasSuffix(strings.ToLower(src.Filename), ".srt") {
			return apperr.Validation("Subtitle file must be .srt format")
		}
		return nil
	}

	raw := strings.TrimSpace(src.URL)
	if raw == "" {
		return apperr.Validation(fmt.Sprintf("Either %s file or %s_url must be provided", slot.field(), slot.field()))
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperr.Validation(fmt.Sprintf("%s_url must be an absolute http or https URL", slot.field()))
	}
	return nil
}

// Resolve materialises slot inside jobDir. Uploads win over URLs.
func (r *Resolver) Resolve(ctx context.Context, slot Slot, src Source, jobDir string) (Resolved, error) {
	if err := Validate(slot, src); err != nil {
		return Resolved{}, err
	}

	if src.Uploaded {
		if src.URL != "" {
			logging.Debug("Both upload and URL given for %s, using upload", slot)
		}
		res, err := r.resolveUpload(slot, src, jobDir)
		recordResolution(slot, "upload", err)
		return res, err
	}

	start := time.Now()
	res, err := r.fetch(ctx, slot, strings.TrimSpace(src.URL), jobDir)
	metrics.InputFetchDuration.WithLabelValues(string(slot)).Observe(time.Since(start).Seconds())
	recordResolution(slot, "url", err)
	return res, err
}

func recordResolution(slot Slot, source string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.InputResolutionsTotal.WithLabelValues(string(slot), source, status).Inc()
}

func (r *Resolver) resolveUpload(slot Slot, src Source, jobDir string) (Resolved, error) {
	var dst string
	if slot == SlotSubtitles {
		dst = filepath.Join(jobDir, subtitleFileName)
	} else {
		dst = filepath.Join(jobDir, "input"+cleanExt(filepath.Ext(src.Filename)))
	}

	body := src.Body
	if body == nil {
		body = strings.NewReader("")
	}
	n, err := writeFile(dst, body)
	if err != nil {
		return Resolved{}, apperr.IO("save uploaded "+string(slot), err)
	}
	metrics.InputBytesTotal.WithLabelValues(string(slot)).Add(float64(n))

	return Resolved{Slot: slot, Path: dst, OriginalName: src.Filename, Bytes: n}, nil
}

func (r *Resolver) fetch(ctx context.Context, slot Slot, rawURL, jobDir string) (Resolved, error) {
	timeout := r.videoTimeout
	if slot == SlotSubtitles {
		timeout = r.subtitleTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	what := "video"
	if slot == SlotSubtitles {
		what = "SRT"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Resolved{}, apperr.Fetchf("Failed to download %s from URL: %v", what, err)
	}
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Resolved{}, apperr.Fetchf("Failed to download %s from URL: timed out after %v", what, timeout)
		}
		return Resolved{}, apperr.Fetchf("Failed to download %s from URL: %v", what, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Debug("failed to close response body for %s: %v", rawURL, err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Resolved{}, apperr.Fetchf("Failed to download %s from URL: HTTP %d", what, resp.StatusCode)
	}

	var dst string
	if slot == SlotSubtitles {
		dst = filepath.Join(jobDir, subtitleFileName)
	} else {
		dst = filepath.Join(jobDir, "input"+ExtFromURL(rawURL, defaultVideoExt))
	}

	n, err := writeFile(dst, resp.Body)
	if err != nil {
		_ = os.Remove(dst)
		if ctx.Err() != nil {
			return Resolved{}, apperr.Fetchf("Failed to download %s from URL: timed out after %v", what, timeout)
		}
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			return Resolved{}, apperr.IO("save downloaded "+string(slot), err)
		}
		return Resolved{}, apperr.Fetchf("Failed to download %s from URL: %v", what, err)
	}
	metrics.InputBytesTotal.WithLabelValues(string(slot)).Add(float64(n))

	logging.Debug("Fetched %s (%d bytes) from %s", slot, n, rawURL)
	return Resolved{Slot: slot, Path: dst, FromURL: true, Bytes: n}, nil
}

// ExtFromURL returns the extension of the last path segment of rawURL,
// ignoring any query string or fragment, or def when there is none.
func ExtFromURL(rawURL, def string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return def
	}
	ext := cleanExt(path.Ext(u.Path))
	if ext == "" {
		return def
	}
	return ext
}

// cleanExt drops extensions that cannot be a real container suffix so they
// never end up in a filesystem path.
func cleanExt(ext string) string {
	if len(ext) < 2 || len(ext) > maxExtLen {
		return ""
	}
	for _, c := range ext[1:] {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-') {
			return ""
		}
	}
	return ext
}

func writeFile(dst string, r io.Reader) (int64, error) {
	f, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return n, err
}
