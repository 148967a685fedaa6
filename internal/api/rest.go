package api

import (
	"context"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/hbomb79/Riptide/internal/api/medias"
	"github.com/hbomb79/Riptide/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

var log = logger.Get("API")

type (
	RestConfig struct {
		HostAddr       string   `yaml:"host_address" env:"API_HOST_ADDR" env-default:"0.0.0.0:8080"`
		AllowedOrigins []string `yaml:"allowed_origins" env:"API_ALLOWED_ORIGINS" env-default:"*"`
	}

	controller interface {
		SetRoutes(*echo.Group)
	}

	// The RestGateway is a thin wrapper around the Echo HTTP router. Its sole
	// responsibility is to create the routes Riptide exposes and apply the
	// shared middleware (logging, recovery, CORS).
	RestGateway struct {
		config          *RestConfig
		ec              *echo.Echo
		mediaController controller
	}
)

// NewRestGateway constructs the Echo router and populates it with the routes
// defined by the media controller, plus the trivial liveness probe.
func NewRestGateway(config *RestConfig, mediaService medias.Service, outputDir string) *RestGateway {
	ec := echo.New()
	ec.OnAddRouteHandler = func(host string, route echo.Route, handler echo.HandlerFunc, middleware []echo.MiddlewareFunc) {
		log.Emit(logger.DEBUG, "Registered new route %s %s\n", route.Method, route.Path)
	}
	ec.HidePort = true
	ec.HideBanner = true

	gateway := &RestGateway{
		config:          config,
		ec:              ec,
		mediaController: medias.New(validator.New(), mediaService, outputDir),
	}

	ec.Use(middleware.Logger())
	ec.Use(middleware.Recover())
	ec.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: config.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodOptions},
	}))

	liveness := func(ec echo.Context) error {
		return ec.JSON(http.StatusOK, map[string]string{"status": "running"})
	}
	ec.GET("/", liveness)
	ec.HEAD("/", liveness)

	gateway.mediaController.SetRoutes(ec.Group(""))

	return gateway
}

// Run starts the router and blocks until the provided context is cancelled
// or the server fails.
func (gateway *RestGateway) Run(parentCtx context.Context) error {
	ctx, ctxCancel := context.WithCancelCause(parentCtx)
	wg := &sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := gateway.ec.Start(gateway.config.HostAddr); err != nil {
			ctxCancel(err)
		}
	}()

	go func(ec *echo.Echo) {
		<-ctx.Done()
		ec.Close()
	}(gateway.ec)

	wg.Wait()

	// Return cancellation cause if any, otherwise nil as parent context
	// cancellation is not an error case we should report.
	if cause := context.Cause(ctx); cause != ctx.Err() {
		return cause
	}

	return nil
}
