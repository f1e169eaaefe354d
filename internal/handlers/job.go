package handlers

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"subtitle-burner/internal/apperr"
	"subtitle-burner/internal/inputs"
	"subtitle-burner/internal/logging"
	"subtitle-burner/internal/metrics"
)

// Job modes, used as metric labels.
const (
	modeLink   = "link"
	modeInline = "inline"
	modeURL    = "url"
)

type jobState string

const (
	stateCreated    jobState = "created"
	stateResolving  jobState = "resolving_inputs"
	stateInvoking   jobState = "invoking"
	stateSucceeded  jobState = "succeeded"
	stateResponding jobState = "responding"
	stateFailed     jobState = "failed"
)

const outputFileName = "output.mp4"

// job is one request's unit of work.
type job struct {
	id    string
	mode  string
	start time.Time
	state jobState
	log   logging.JobLogger

	dir        string
	outputPath string
	filename   string
	finished   bool
}

func newJob(mode string) *job {
	id := uuid.NewString()
	j := &job{
		id:    id,
		mode:  mode,
		start: time.Now(),
		log:   logging.Job(id),
	}
	j.transition(stateCreated)
	return j
}

func (j *job) transition(s jobState) {
	j.state = s
	metrics.JobStateTransitions.WithLabelValues(string(s)).Inc()
	j.log.Debug("state -> %s", s)
}

// finish records the job outcome. A non-nil err moves the job to Failed.
func (j *job) finish(err error) {
	j.finished = true
	outcome := "success"
	if err != nil {
		outcome = apperr.KindOf(err).String()
		j.transition(stateFailed)
		j.log.Info("failed after %v: %v", time.Since(j.start), err)
	} else {
		j.log.Info("completed in %v: %s", time.Since(j.start), j.filename)
	}
	metrics.JobsTotal.WithLabelValues(j.mode, outcome).Inc()
	metrics.JobDuration.WithLabelValues(j.mode).Observe(time.Since(j.start).Seconds())
}

// finishOnPanic records a job that panicked before finishing as an internal
// failure, then re-panics so the recovery middleware answers the request.
// It must be deferred directly.
func (j *job) finishOnPanic() {
	rec := recover()
	if rec == nil {
		return
	}
	if !j.finished {
		j.finish(fmt.Errorf("panic: %v", rec))
	}
	panic(rec)
}

// execute validates both inputs, resolves them concurrently into a fresh
// working directory and burns the subtitles. On return j.dir is set if a
// directory was allocated; the caller must release it.
func (h *Handlers) execute(ctx context.Context, j *job, req *jobRequest) error {
	j.transition(stateResolving)

	if err := inputs.Validate(inputs.SlotVideo, req.video); err != nil {
		return err
	}
	if err := inputs.Validate(inputs.SlotSubtitles, req.subtitles); err != nil {
		return err
	}

	dir, err := h.dirs.Allocate(j.id)
	if err != nil {
		return err
	}
	j.dir = dir

	var video, subtitles inputs.Resolved
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		video, err = h.resolver.Resolve(gctx, inputs.SlotVideo, req.video, dir)
		return err
	})
	g.Go(func() error {
		var err error
		subtitles, err = h.resolver.Resolve(gctx, inputs.SlotSubtitles, req.subtitles, dir)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	j.log.Debug("inputs ready: video %s (%d bytes), subtitles %s (%d bytes)",
		video.Path, video.Bytes, subtitles.Path, subtitles.Bytes)

	j.filename = OutputName(req.outputName, video.OriginalName, j.id)
	j.outputPath = filepath.Join(dir, outputFileName)

	style := req.style
	if strings.TrimSpace(style) == "" {
		style = h.config.DefaultStyle
	}

	j.transition(stateInvoking)
	if err := h.invoker.Burn(ctx, video.Path, subtitles.Path, style, j.outputPath); err != nil {
		return err
	}
	j.transition(stateSucceeded)
	return nil
}
