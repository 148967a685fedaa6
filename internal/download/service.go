// Package download contains Riptide's request-level orchestration: deriving
// the quality ladder for a fetch, and driving the selector fallback plan to
// completion for a download. The engine and the output directory are
// injected so the whole package is testable against a fake engine and a
// temporary directory.
package download

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/google/uuid"
	"github.com/hbomb79/Riptide/internal/engine"
	"github.com/hbomb79/Riptide/internal/format"
	"github.com/hbomb79/Riptide/internal/selector"
	"github.com/hbomb79/Riptide/pkg/logger"
)

var log = logger.Get("DownloadServ")

type (
	// Engine is the boundary to the external extraction tool. It must be
	// treated as unreliable: failures, hangs and silent no-output successes
	// are all expected behaviours.
	Engine interface {
		Probe(ctx context.Context, mediaURL string) (*engine.MediaInfo, error)
		Download(ctx context.Context, mediaURL string, opts engine.DownloadOptions) error
	}

	// MediaDetails is the result of a fetch: the source metadata plus the
	// derived quality ladder.
	MediaDetails struct {
		Title     string
		Thumbnail string
		Duration  float64
		Uploader  string
		ViewCount int64
		Qualities []format.QualityOption
	}

	// Request describes a single download: the source URL, the selector the
	// caller picked from a previous ladder (possibly stale or arbitrary),
	// the media kind, and a display label used only for the suggested
	// filename.
	Request struct {
		URL          string
		Selector     string
		Kind         format.Kind
		QualityLabel string
	}

	// Result points at the stored artifact and carries the display filename
	// a client should save it under.
	Result struct {
		StoredName string
		Filename   string
	}

	Service struct {
		engine    Engine
		policy    format.Policy
		outputDir string
	}
)

func New(eng Engine, policy format.Policy, outputDir string) *Service {
	return &Service{
		engine:    eng,
		policy:    policy,
		outputDir: outputDir,
	}
}

// Fetch probes the source URL and derives the quality ladder from the raw
// format enumeration. Extraction failures are not retried; only selector
// fallback (during Download) is retried, never URL resolution.
func (service *Service) Fetch(ctx context.Context, mediaURL string) (*MediaDetails, error) {
	info, err := service.engine.Probe(ctx, mediaURL)
	if err != nil {
		return nil, err
	}

	if len(info.Formats) == 0 {
		return nil, fmt.Errorf("no downloadable formats found for this URL")
	}

	return &MediaDetails{
		Title:     info.Title,
		Thumbnail: info.Thumbnail,
		Duration:  info.Duration,
		Uploader:  info.Uploader,
		ViewCount: info.ViewCount,
		Qualities: service.policy.BuildLadder(info.Formats),
	}, nil
}

// Download expands the request's selector into a fallback plan and executes
// it. On success, the returned result names the artifact as stored in the
// output directory, and a sanitized display filename carrying the requested
// quality label and the real (engine-chosen) extension.
func (service *Service) Download(ctx context.Context, request Request) (*Result, error) {
	jobID := uuid.New().String()[:8]
	plan := selector.Plan(request.Selector, request.Kind)
	log.Emit(logger.INFO, "job %s downloading %s (%d planned attempts)\n", jobID, request.URL, len(plan))

	artifact, err := service.execute(ctx, request.URL, jobID, plan, request.Kind)
	if err != nil {
		return nil, err
	}

	label := request.QualityLabel
	if label == "" {
		label = string(request.Kind)
	}

	return &Result{
		StoredName: artifact.Filename,
		Filename:   sanitizeFilename(label) + filepath.Ext(artifact.Filename),
	}, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^\w\-.]`)

// sanitizeFilename strips anything outside the word/dash/dot set and caps
// the length, mirroring what browsers tolerate in a disposition filename.
func sanitizeFilename(name string) string {
	safe := unsafeFilenameChars.ReplaceAllString(name, "_")
	if runes := []rune(safe); len(runes) > 80 {
		safe = string(runes[:80])
	}

	return safe
}
