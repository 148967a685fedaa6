package internal

import (
	"fmt"
	"path/filepath"

	"github.com/hbomb79/Riptide/internal/api"
	"github.com/hbomb79/Riptide/internal/engine"
	"github.com/hbomb79/Riptide/internal/format"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/mitchellh/go-homedir"
)

// RiptideConfig is the struct used to contain the various user config
// supplied by file or environment. Ladder weights and the minimum
// acceptable height live here too: they are preference constants, not
// correctness constraints, and so are user-tunable.
type RiptideConfig struct {
	Rest          api.RestConfig `yaml:"api"`
	Engine        engine.Config  `yaml:"engine"`
	Ladder        format.Policy  `yaml:"ladder"`
	OutputDirPath string         `yaml:"output_dir" env:"OUTPUT_DIR"`
}

const riptideDirSuffix = "riptide/downloads"

// LoadFromFile loads a YAML-formatted configuration file in to this
// RiptideConfig, applying environment variable overrides on top.
func (config *RiptideConfig) LoadFromFile(configPath string) error {
	if err := cleanenv.ReadConfig(configPath, config); err != nil {
		return fmt.Errorf("failed to load configuration for RiptideConfig - %v", err.Error())
	}

	return nil
}

// LoadFromEnv populates this RiptideConfig purely from environment variables
// and tag defaults, for deployments without a config file.
func (config *RiptideConfig) LoadFromEnv() error {
	if err := cleanenv.ReadEnv(config); err != nil {
		return fmt.Errorf("failed to load configuration for RiptideConfig - %v", err.Error())
	}

	return nil
}

// getOutputDir returns the directory path used for storing downloaded
// artifacts. It will first look in the config for a value, but if none is
// found, a default under the user's home directory is derived. If the
// default cannot be derived due to an error, a panic will occur.
func (config *RiptideConfig) getOutputDir() string {
	if config.OutputDirPath != "" {
		return config.OutputDirPath
	}

	dir, err := homedir.Dir()
	if err != nil {
		panic(fmt.Sprintf("FAILURE to derive user home dir %s", err))
	}

	return filepath.Join(dir, riptideDirSuffix)
}
