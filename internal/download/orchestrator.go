package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hbomb79/Riptide/internal/engine"
	"github.com/hbomb79/Riptide/internal/format"
	"github.com/hbomb79/Riptide/pkg/logger"
)

// ErrPlanExhausted indicates every selector in the fallback plan was
// attempted without producing an artifact.
var ErrPlanExhausted = errors.New("all download attempts failed")

// Artifact is the file the engine left in the output directory after a
// successful attempt. Its extension is whatever the engine decided on.
type Artifact struct {
	Path     string
	Filename string
}

// execute drives the selector plan against the engine, attempt by attempt,
// stopping at the first attempt that both succeeds and leaves a locatable
// artifact behind. One job identifier covers the whole request: it is the
// output filename prefix, the cleanup scope between attempts, and the
// correlation key for artifact lookup.
//
// Engine failures and success-without-artifact are soft: they are logged and
// the plan continues. A timeout aborts the remaining plan outright, since
// retrying a selector after the deadline already lapsed is pointless.
func (service *Service) execute(ctx context.Context, mediaURL string, jobID string, plan []string, kind format.Kind) (*Artifact, error) {
	opts := engine.DownloadOptions{
		OutputTemplate: filepath.Join(service.outputDir, jobID+".%(ext)s"),
	}
	if kind == format.KindVideo {
		opts.MergeContainer = service.policy.PreferredContainer
	}

	var lastErr error
	for attempt, sel := range plan {
		service.removePartials(jobID)

		opts.Selector = sel
		log.Emit(logger.DEBUG, "job %s attempt %d/%d with selector %q\n", jobID, attempt+1, len(plan), sel)

		if err := service.engine.Download(ctx, mediaURL, opts); err != nil {
			if errors.Is(err, engine.ErrTimeout) {
				service.removePartials(jobID)
				return nil, err
			}

			log.Emit(logger.WARNING, "job %s selector %q failed: %s\n", jobID, sel, err.Error())
			lastErr = err
			continue
		}

		path, found := Locate(service.outputDir, jobID)
		if !found {
			// Engine claimed success but left nothing behind; treat the
			// attempt as failed and move on.
			log.Emit(logger.WARNING, "job %s selector %q reported success but produced no artifact\n", jobID, sel)
			lastErr = fmt.Errorf("selector %q produced no artifact", sel)
			continue
		}

		log.Emit(logger.SUCCESS, "job %s complete, artifact %s\n", jobID, filepath.Base(path))

		return &Artifact{Path: path, Filename: filepath.Base(path)}, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %s", ErrPlanExhausted, lastErr.Error())
	}

	return nil, ErrPlanExhausted
}

// removePartials deletes any files a previous attempt left under this job's
// prefix. Best effort: deletion errors are logged and otherwise ignored, as
// a leftover partial cannot block the next attempt from overwriting it.
func (service *Service) removePartials(jobID string) {
	entries, err := os.ReadDir(service.outputDir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), jobID+".") {
			continue
		}

		if err := os.Remove(filepath.Join(service.outputDir, entry.Name())); err != nil {
			log.Emit(logger.WARNING, "job %s failed to remove stale artifact %s: %s\n", jobID, entry.Name(), err.Error())
		}
	}
}
