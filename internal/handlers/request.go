package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"subtitle-burner/internal/apperr"
	"subtitle-burner/internal/inputs"
	"subtitle-burner/internal/logging"
)

// multipartMemory is how much of a multipart body is held in memory before
// parts spill to temporary files.
const multipartMemory = 32 << 20

// jobRequest is the parsed form of a burn request.
type jobRequest struct {
	video      inputs.Source
	subtitles  inputs.Source
	style      string
	outputName string

	form    *multipart.Form
	closers []io.Closer
}

// close releases opened upload parts and multipart temp files.
func (req *jobRequest) close() {
	for _, c := range req.closers {
		if err := c.Close(); err != nil {
			logging.Debug("failed to close upload part: %v", err)
		}
	}
	if req.form != nil {
		if err := req.form.RemoveAll(); err != nil {
			logging.Warn("failed to remove multipart temp files: %v", err)
		}
	}
}

// parseJobRequest reads the burn form. Multipart and urlencoded bodies are
// both accepted; uploads are only honoured when allowUploads is set.
func (h *Handlers) parseJobRequest(w http.ResponseWriter, r *http.Request, allowUploads bool) (*jobRequest, error) {
	if h.config.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadBytes)
	}

	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperr.Validation(fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit))
		}
		return nil, apperr.Validation("Invalid form data: " + err.Error())
	}

	req := &jobRequest{
		style:      r.FormValue("style"),
		outputName: r.FormValue("output_name"),
		form:       r.MultipartForm,
	}
	req.video = req.source(r, "video", allowUploads)
	req.subtitles = req.source(r, "srt", allowUploads)

	return req, nil
}

// source builds the inputs.Source for a form field pair (field, field_url).
func (req *jobRequest) source(r *http.Request, field string, allowUploads bool) inputs.Source {
	src := inputs.Source{URL: strings.TrimSpace(r.FormValue(field + "_url"))}
	if !allowUploads {
		return src
	}

	if req.form != nil {
		if files := req.form.File[field]; len(files) > 0 {
			fh := files[0]
			f, err := fh.Open()
			if err != nil {
				// Treated as a part without a usable file.
				logging.Warn("failed to open uploaded %s part: %v", field, err)
				src.Uploaded = true
				return src
			}
			req.closers = append(req.closers, f)
			src.Uploaded = true
			src.Filename = fh.Filename
			src.Body = f
			return src
		}
	}

	// A part sent without a filename arrives as a plain value.
	if values := r.PostForm[field]; len(values) > 0 && values[0] != "" {
		src.Uploaded = true
		src.Body = strings.NewReader(values[0])
	}
	return src
}

// requireURLs enforces the URL-only endpoint's required fields.
func requireURLs(req *jobRequest) error {
	if req.video.URL == "" {
		return apperr.Validation("video_url is required")
	}
	if req.subtitles.URL == "" {
		return apperr.Validation("srt_url is required")
	}
	return nil
}
