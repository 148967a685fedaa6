package internal

import (
	"context"
	"fmt"
	"os"

	"github.com/hbomb79/Riptide/internal/api"
	"github.com/hbomb79/Riptide/internal/download"
	"github.com/hbomb79/Riptide/internal/engine"
	"github.com/hbomb79/Riptide/pkg/logger"
)

var log = logger.Get("Core")

// Riptide represents the top-level object for the server and is responsible
// for constructing the engine boundary, the download service and the REST
// gateway, and tying their lifetimes to a single context.
type riptideImpl struct {
	config          RiptideConfig
	downloadService *download.Service
	restGateway     *api.RestGateway
}

func New(config RiptideConfig) *riptideImpl {
	log.Emit(logger.DEBUG, "Bootstrapping Riptide services using config: %#v\n", config)

	outputDir := config.getOutputDir()
	downloadService := download.New(engine.New(config.Engine), config.Ladder, outputDir)

	return &riptideImpl{
		config:          config,
		downloadService: downloadService,
		restGateway:     api.NewRestGateway(&config.Rest, downloadService, outputDir),
	}
}

// Run brings up the REST gateway after ensuring the output directory exists.
// This function will not return until Riptide is stopped; to stop Riptide,
// the provided context must be cancelled. Errors from which Riptide cannot
// recover will also cause it to stop.
func (riptide *riptideImpl) Run(parent context.Context) error {
	outputDir := riptide.config.getOutputDir()
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	log.Emit(logger.NEW, "Starting REST gateway on %s (artifacts in %s)...\n", riptide.config.Rest.HostAddr, outputDir)
	if err := riptide.restGateway.Run(parent); err != nil {
		return err
	}

	log.Emit(logger.STOP, "Riptide stopped\n")

	return nil
}
