// Package engine wraps the external extraction tool (yt-dlp) behind a small
// boundary the rest of Riptide can treat as unreliable: invocations may fail
// outright, hang past their deadline, or report success without producing
// the output they were asked for. All process mechanics live here.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/hbomb79/Riptide/internal/format"
	"github.com/hbomb79/Riptide/pkg/logger"
)

var (
	log = logger.Get("Engine")

	// ErrTimeout indicates the engine process exceeded its deadline and was
	// killed. Surfaced distinctly so the API layer can report a timeout
	// status rather than a generic failure.
	ErrTimeout = errors.New("engine invocation timed out")
)

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type Config struct {
	BinPath         string        `yaml:"bin_path" env:"ENGINE_BIN_PATH" env-default:"yt-dlp"`
	CookieFilePath  string        `yaml:"cookie_file" env:"ENGINE_COOKIE_FILE"`
	ProbeTimeout    time.Duration `yaml:"probe_timeout" env:"ENGINE_PROBE_TIMEOUT" env-default:"45s"`
	DownloadTimeout time.Duration `yaml:"download_timeout" env:"ENGINE_DOWNLOAD_TIMEOUT" env-default:"10m"`
}

// MediaInfo is the structured metadata returned by a probe, including the
// raw format enumeration the ladder is derived from.
type MediaInfo struct {
	Title     string                   `json:"title"`
	Thumbnail string                   `json:"thumbnail"`
	Duration  float64                  `json:"duration"`
	Uploader  string                   `json:"uploader"`
	ViewCount int64                    `json:"view_count"`
	Formats   []format.CandidateFormat `json:"formats"`
}

// DownloadOptions carries everything a single download attempt needs: the
// selector expression to resolve, the output path template (prefix
// controlled by the caller, extension chosen by the engine) and, for video
// requests, the container streams should be merged into.
type DownloadOptions struct {
	Selector       string
	OutputTemplate string
	MergeContainer string
}

type YtDlp struct {
	config Config
}

func New(config Config) *YtDlp {
	return &YtDlp{config: config}
}

// Probe runs the engine in metadata-only mode and decodes the JSON dump it
// emits. The invocation is bounded by the configured probe timeout.
func (engine *YtDlp) Probe(ctx context.Context, mediaURL string) (*MediaInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, engine.config.ProbeTimeout)
	defer cancel()

	args := engine.commonArgs()
	args = append(args, "--dump-json", "--skip-download", "--ignore-no-formats-error", mediaURL)

	stdout, err := engine.run(ctx, args)
	if err != nil {
		return nil, err
	}

	info := &MediaInfo{}
	if err := json.Unmarshal(stdout, info); err != nil {
		return nil, fmt.Errorf("failed to decode engine metadata: %w", err)
	}

	return info, nil
}

// Download runs the engine in download mode for a single selector attempt.
// The engine owns the final filename; only the template prefix is
// predictable. Bounded by the configured download timeout.
func (engine *YtDlp) Download(ctx context.Context, mediaURL string, opts DownloadOptions) error {
	ctx, cancel := context.WithTimeout(ctx, engine.config.DownloadTimeout)
	defer cancel()

	args := engine.commonArgs()
	args = append(args, "-f", opts.Selector, "-o", opts.OutputTemplate)
	if opts.MergeContainer != "" {
		args = append(args, "--merge-output-format", opts.MergeContainer)
	}
	args = append(args, mediaURL)

	_, err := engine.run(ctx, args)

	return err
}

func (engine *YtDlp) commonArgs() []string {
	args := []string{
		"--no-warnings",
		"--no-playlist",
		"--user-agent", browserUserAgent,
	}

	if engine.config.CookieFilePath != "" {
		if _, err := os.Stat(engine.config.CookieFilePath); err == nil {
			args = append(args, "--cookies", engine.config.CookieFilePath)
		}
	}

	return args
}

func (engine *YtDlp) run(ctx context.Context, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, engine.config.BinPath, args...)

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	log.Emit(logger.DEBUG, "running %s %s\n", engine.config.BinPath, strings.Join(args, " "))
	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}

	// CommandContext kills the process on deadline expiry; report that as a
	// timeout rather than whatever exit error the kill produced.
	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
		return nil, ErrTimeout
	}

	if diagnostic := lastDiagnosticLine(stderr.Bytes()); diagnostic != "" {
		return nil, fmt.Errorf("engine failure: %s", diagnostic)
	}

	return nil, fmt.Errorf("engine failure: %w", err)
}

// lastDiagnosticLine extracts the final non-empty stderr line, which is
// where the engine places its most specific complaint.
func lastDiagnosticLine(stderr []byte) string {
	lines := strings.Split(strings.TrimSpace(string(stderr)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}

	return ""
}
