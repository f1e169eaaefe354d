package streaming

import (
	"context"
	"io"
	"mime"
	"net/http"
	"strconv"

	"subtitle-burner/internal/apperr"
	"subtitle-burner/internal/filesystem"
	"subtitle-burner/internal/logging"
)

// ContentTypeMP4 is the media type of every rendered video.
const ContentTypeMP4 = "video/mp4"

// ContentDisposition returns an attachment disposition carrying filename.
// Non-ASCII names are encoded per RFC 2231.
func ContentDisposition(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment"
}

// SendFile writes the file at path as a video/mp4 attachment named
// filename. An apperr IO error means nothing was written yet; any other
// error means a partial transfer.
func SendFile(ctx context.Context, w http.ResponseWriter, path, filename string, config Config) error {
	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return apperr.IO("open output file", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logging.Warn("failed to close %s: %v", path, cerr)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return apperr.IO("stat output file", err)
	}

	h := w.Header()
	h.Set("Content-Type", ContentTypeMP4)
	h.Set("Content-Disposition", ContentDisposition(filename))
	h.Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	tw := NewTimeoutWriter(ctx, w, config)
	defer func() { _ = tw.Close() }()

	_, err = io.Copy(tw, f)

	written, elapsed := tw.Stats()
	logging.Debug("Sent %s: %d of %d bytes in %v", filename, written, info.Size(), elapsed)
	return err
}
