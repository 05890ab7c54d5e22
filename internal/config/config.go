// Package config provides configuration management for subsift. Values are
// loaded from a YAML file, environment variables and defaults via Viper;
// credentials are only ever read from the environment (or a .env file).
package config

import (
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/jonesrussell/subsift/internal/logger"
)

// Interface defines read access to the application configuration.
type Interface interface {
	// GetAppConfig returns the application-level configuration.
	GetAppConfig() *AppConfig
	// GetLoggerConfig returns the logger configuration.
	GetLoggerConfig() *logger.Config
	// GetRedditConfig returns the Reddit API client configuration.
	GetRedditConfig() *RedditConfig
	// GetScraperConfig returns the scraper configuration.
	GetScraperConfig() *ScraperConfig
	// GetDatasetConfig returns the dataset storage configuration.
	GetDatasetConfig() *DatasetConfig
	// GetTrainingConfig returns the model training configuration.
	GetTrainingConfig() *TrainingConfig
	// GetElasticsearchConfig returns the Elasticsearch configuration.
	GetElasticsearchConfig() *ElasticsearchConfig
	// GetServerConfig returns the HTTP server configuration.
	GetServerConfig() *ServerConfig
	// Validate validates the configuration.
	Validate() error
}

// Ensure Config implements Interface.
var _ Interface = (*Config)(nil)

// Config represents the application configuration.
type Config struct {
	App           AppConfig           `mapstructure:"app"           yaml:"app"`
	Logger        logger.Config       `mapstructure:"logger"        yaml:"logger"`
	Reddit        RedditConfig        `mapstructure:"reddit"        yaml:"reddit"`
	Scraper       ScraperConfig       `mapstructure:"scraper"       yaml:"scraper"`
	Dataset       DatasetConfig       `mapstructure:"dataset"       yaml:"dataset"`
	Training      TrainingConfig      `mapstructure:"training"      yaml:"training"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch" yaml:"elasticsearch"`
	Server        ServerConfig        `mapstructure:"server"        yaml:"server"`
}

// Load builds a Config from the current Viper state. The root command is
// responsible for reading the config file, binding environment variables
// and setting defaults before calling Load.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults fills zero values that have no Viper default.
func (c *Config) applyDefaults() {
	c.Scraper.applyDefaults()
	c.Training.applyDefaults()
	c.Elasticsearch.applyDefaults()
	c.Server.applyDefaults()
}

// GetAppConfig returns the application-level configuration.
func (c *Config) GetAppConfig() *AppConfig { return &c.App }

// GetLoggerConfig returns the logger configuration.
func (c *Config) GetLoggerConfig() *logger.Config { return &c.Logger }

// GetRedditConfig returns the Reddit API client configuration.
func (c *Config) GetRedditConfig() *RedditConfig { return &c.Reddit }

// GetScraperConfig returns the scraper configuration.
func (c *Config) GetScraperConfig() *ScraperConfig { return &c.Scraper }

// GetDatasetConfig returns the dataset storage configuration.
func (c *Config) GetDatasetConfig() *DatasetConfig { return &c.Dataset }

// GetTrainingConfig returns the model training configuration.
func (c *Config) GetTrainingConfig() *TrainingConfig { return &c.Training }

// GetElasticsearchConfig returns the Elasticsearch configuration.
func (c *Config) GetElasticsearchConfig() *ElasticsearchConfig { return &c.Elasticsearch }

// GetServerConfig returns the HTTP server configuration.
func (c *Config) GetServerConfig() *ServerConfig { return &c.Server }

// Validate validates the configuration common to all commands.
func (c *Config) Validate() error {
	if c.Dataset.Path == "" {
		return errors.New("dataset path is required")
	}
	return nil
}
