package medias_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/hbomb79/Riptide/internal/api/medias"
	"github.com/hbomb79/Riptide/internal/download"
	"github.com/hbomb79/Riptide/internal/engine"
	"github.com/hbomb79/Riptide/internal/format"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	details     *download.MediaDetails
	fetchErr    error
	result      *download.Result
	downloadErr error

	lastRequest download.Request
}

func (s *stubService) Fetch(_ context.Context, _ string) (*download.MediaDetails, error) {
	return s.details, s.fetchErr
}

func (s *stubService) Download(_ context.Context, request download.Request) (*download.Result, error) {
	s.lastRequest = request
	return s.result, s.downloadErr
}

func newRouter(service medias.Service, outputDir string) *echo.Echo {
	ec := echo.New()
	medias.New(validator.New(), service, outputDir).SetRoutes(ec.Group(""))

	return ec
}

func performJSON(router *echo.Echo, method string, target string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func Test_Fetch_ReturnsLadder(t *testing.T) {
	service := &stubService{
		details: &download.MediaDetails{
			Title: "Some Title",
			Qualities: []format.QualityOption{
				{Label: "1080p", Selector: "137", Kind: format.KindVideo, Height: 1080},
			},
		},
	}

	rec := performJSON(newRouter(service, t.TempDir()), http.MethodPost, "/fetch", `{"url":"https://example.com/watch?v=1"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"1080p"`)
	assert.Contains(t, rec.Body.String(), `"Some Title"`)
}

func Test_Fetch_InvalidRequests(t *testing.T) {
	tests := []struct {
		summary string
		body    string
	}{
		{summary: "Missing URL", body: `{}`},
		{summary: "Malformed URL", body: `{"url":"not a url"}`},
		{summary: "Invalid JSON", body: `{"url":`},
	}

	for _, tt := range tests {
		t.Run(tt.summary, func(t *testing.T) {
			rec := performJSON(newRouter(&stubService{}, t.TempDir()), http.MethodPost, "/fetch", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func Test_Fetch_ErrorMapping(t *testing.T) {
	tests := []struct {
		summary  string
		fetchErr error
		wantCode int
	}{
		{summary: "Extraction failure is client fault", fetchErr: errors.New("Unsupported URL"), wantCode: http.StatusBadRequest},
		{summary: "Timeout is distinct", fetchErr: engine.ErrTimeout, wantCode: http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.summary, func(t *testing.T) {
			service := &stubService{fetchErr: tt.fetchErr}
			rec := performJSON(newRouter(service, t.TempDir()), http.MethodPost, "/fetch", `{"url":"https://example.com/watch?v=1"}`)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func Test_Download_Success(t *testing.T) {
	service := &stubService{
		result: &download.Result{StoredName: "abc12345.mp4", Filename: "1080p.mp4"},
	}

	rec := performJSON(newRouter(service, t.TempDir()), http.MethodPost, "/download",
		`{"url":"https://example.com/watch?v=1","selector":"137","kind":"video","quality_label":"1080p"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"/files/abc12345.mp4"`)
	assert.Contains(t, rec.Body.String(), `"1080p.mp4"`)
	assert.Equal(t, format.KindVideo, service.lastRequest.Kind)
	assert.Equal(t, "137", service.lastRequest.Selector)
}

func Test_Download_ErrorMapping(t *testing.T) {
	tests := []struct {
		summary     string
		downloadErr error
		wantCode    int
	}{
		{summary: "Plan exhaustion is server fault", downloadErr: download.ErrPlanExhausted, wantCode: http.StatusInternalServerError},
		{summary: "Timeout is distinct", downloadErr: engine.ErrTimeout, wantCode: http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.summary, func(t *testing.T) {
			service := &stubService{downloadErr: tt.downloadErr}
			rec := performJSON(newRouter(service, t.TempDir()), http.MethodPost, "/download",
				`{"url":"https://example.com/watch?v=1","kind":"video"}`)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func Test_Download_InvalidKind(t *testing.T) {
	rec := performJSON(newRouter(&stubService{}, t.TempDir()), http.MethodPost, "/download",
		`{"url":"https://example.com/watch?v=1","kind":"podcast"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_ServeFile_RejectsTraversal(t *testing.T) {
	router := newRouter(&stubService{}, t.TempDir())

	names := []string{
		"..%2F..%2Fetc%2Fpasswd",
		"..%5C..%5Cwindows",
		"..",
	}

	for _, name := range names {
		req := httptest.NewRequest(http.MethodGet, "/files/"+name, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "traversal name %q must be rejected", name)
	}
}

func Test_ServeFile_Missing(t *testing.T) {
	rec := performJSON(newRouter(&stubService{}, t.TempDir()), http.MethodGet, "/files/nope.mp4", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_ServeFile_StreamsArtifact(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "abc12345.mp4"), []byte("video-bytes"), 0o644))

	rec := performJSON(newRouter(&stubService{}, dir), http.MethodGet, "/files/abc12345.mp4", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "video-bytes", rec.Body.String())
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "abc12345.mp4")
}
