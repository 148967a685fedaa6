package medias

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hbomb79/Riptide/internal/download"
	"github.com/hbomb79/Riptide/internal/engine"
	"github.com/hbomb79/Riptide/internal/format"
	"github.com/hbomb79/Riptide/pkg/logger"
	"github.com/labstack/echo/v4"
)

var controllerLogger = logger.Get("MediasController")

type (
	FetchRequest struct {
		URL string `json:"url" validate:"required,url"`
	}

	FetchResponse struct {
		Title     string                 `json:"title"`
		Thumbnail string                 `json:"thumbnail"`
		Duration  float64                `json:"duration"`
		Uploader  string                 `json:"uploader"`
		ViewCount int64                  `json:"view_count"`
		Qualities []format.QualityOption `json:"qualities"`
	}

	DownloadRequest struct {
		URL          string `json:"url" validate:"required,url"`
		Selector     string `json:"selector"`
		Kind         string `json:"kind" validate:"required,oneof=video audio"`
		QualityLabel string `json:"quality_label"`
	}

	DownloadResponse struct {
		DownloadURL string `json:"download_url"`
		Filename    string `json:"filename"`
	}

	// Service is the slice of the download service this controller consumes.
	Service interface {
		Fetch(ctx context.Context, mediaURL string) (*download.MediaDetails, error)
		Download(ctx context.Context, request download.Request) (*download.Result, error)
	}

	// Controller defines the routes for media fetching, downloading and
	// artifact serving, delegating all decisions to the download service.
	Controller struct {
		validate  *validator.Validate
		service   Service
		outputDir string
	}
)

func New(validate *validator.Validate, service Service, outputDir string) *Controller {
	return &Controller{validate: validate, service: service, outputDir: outputDir}
}

// SetRoutes accepts the Echo group for the media endpoints and sets the
// routes on them.
func (controller *Controller) SetRoutes(eg *echo.Group) {
	eg.POST("/fetch", controller.fetch)
	eg.POST("/download", controller.download)
	eg.GET("/files/:name", controller.serveFile)
}

// fetch probes the submitted URL and responds with the source metadata and
// the derived quality ladder. Extraction failures are the client's fault
// (bad or unsupported URL); only a timeout is reported differently.
func (controller *Controller) fetch(ec echo.Context) error {
	var request FetchRequest
	if err := ec.Bind(&request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Request body is not valid JSON")
	}
	if err := controller.validate.Struct(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "A valid 'url' is required")
	}

	details, err := controller.service.Fetch(ec.Request().Context(), request.URL)
	if err != nil {
		if errors.Is(err, engine.ErrTimeout) {
			return echo.NewHTTPError(http.StatusGatewayTimeout, "Metadata fetch timed out")
		}

		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return ec.JSON(http.StatusOK, FetchResponse{
		Title:     details.Title,
		Thumbnail: details.Thumbnail,
		Duration:  details.Duration,
		Uploader:  details.Uploader,
		ViewCount: details.ViewCount,
		Qualities: details.Qualities,
	})
}

// download runs the full selector fallback plan for the chosen option. The
// caller only ever sees the terminal outcome; intermediate attempt failures
// are recovered internally.
func (controller *Controller) download(ec echo.Context) error {
	var request DownloadRequest
	if err := ec.Bind(&request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Request body is not valid JSON")
	}
	if err := controller.validate.Struct(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "A valid 'url' and a 'kind' of video or audio are required")
	}

	result, err := controller.service.Download(ec.Request().Context(), download.Request{
		URL:          request.URL,
		Selector:     request.Selector,
		Kind:         format.Kind(request.Kind),
		QualityLabel: request.QualityLabel,
	})
	if err != nil {
		if errors.Is(err, engine.ErrTimeout) {
			return echo.NewHTTPError(http.StatusGatewayTimeout, "Download timed out")
		}

		controllerLogger.Emit(logger.ERROR, "download of %s failed: %s\n", request.URL, err.Error())

		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return ec.JSON(http.StatusOK, DownloadResponse{
		DownloadURL: "/files/" + result.StoredName,
		Filename:    result.Filename,
	})
}

// serveFile streams a previously produced artifact. Requests are resolved
// strictly within the output directory; any traversal-shaped name is
// rejected before touching the filesystem.
func (controller *Controller) serveFile(ec echo.Context) error {
	name := ec.Param("name")
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid file name")
	}

	path := filepath.Join(controller.outputDir, name)
	if _, err := os.Stat(path); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "File not found")
	}

	return ec.Attachment(path, name)
}
