package common

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/jonesrussell/subsift/internal/config"
	"github.com/jonesrussell/subsift/internal/dataset"
	"github.com/jonesrussell/subsift/internal/logger"
	"github.com/jonesrussell/subsift/internal/runlog"
)

// NewCommandDeps creates CommandDeps by loading config and creating the logger.
// This consolidates the common initialization code from Execute().
func NewCommandDeps() (CommandDeps, error) {
	cfg, err := config.Load()
	if err != nil {
		return CommandDeps{}, fmt.Errorf("load config: %w", err)
	}

	logLevel := viper.GetString("logger.level")
	if logLevel == "" {
		logLevel = "info"
	}
	logLevel = strings.ToLower(logLevel)

	logCfg := &logger.Config{
		Level:       logger.Level(logLevel),
		Development: viper.GetBool("logger.development"),
		Encoding:    viper.GetString("logger.encoding"),
		OutputPaths: viper.GetStringSlice("logger.output_paths"),
	}

	log, err := logger.New(logCfg)
	if err != nil {
		return CommandDeps{}, fmt.Errorf("create logger: %w", err)
	}

	deps := CommandDeps{
		Logger: log,
		Config: cfg,
	}

	if validateErr := deps.Validate(); validateErr != nil {
		return CommandDeps{}, fmt.Errorf("validate deps: %w", validateErr)
	}

	return deps, nil
}

// OpenStore opens the CSV dataset store from configuration.
func OpenStore(deps CommandDeps) (*dataset.Store, error) {
	cfg := deps.Config.GetDatasetConfig()
	if cfg.Path == "" {
		return nil, fmt.Errorf("dataset path is not configured")
	}
	return dataset.NewStore(cfg.Path, deps.Logger), nil
}

// OpenRunLog opens the SQLite run ledger from configuration.
func OpenRunLog(deps CommandDeps) (*runlog.Repository, error) {
	cfg := deps.Config.GetDatasetConfig()
	if cfg.RunLogPath == "" {
		return nil, fmt.Errorf("run log path is not configured")
	}

	repo, err := runlog.Open(cfg.RunLogPath)
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}
	return repo, nil
}
