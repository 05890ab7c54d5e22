// Package cmd implements the command-line interface for subsift.
// It provides the root command and subcommands for scraping Reddit,
// inspecting the dataset and training subreddit classifiers.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jonesrussell/subsift/cmd/classify"
	cmddataset "github.com/jonesrussell/subsift/cmd/dataset"
	"github.com/jonesrussell/subsift/cmd/evaluate"
	"github.com/jonesrussell/subsift/cmd/httpd"
	cmdscheduler "github.com/jonesrussell/subsift/cmd/scheduler"
	cmdscrape "github.com/jonesrussell/subsift/cmd/scrape"
	"github.com/jonesrussell/subsift/cmd/search"
	"github.com/jonesrussell/subsift/cmd/train"
	"github.com/jonesrussell/subsift/internal/config"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// Debug enables debug mode for all commands
	Debug bool

	// rootCmd represents the root command for the subsift CLI.
	rootCmd = &cobra.Command{
		Use:   "subsift",
		Short: "Scrape Reddit titles and train subreddit classifiers",
		Long: `subsift collects post titles from configured subreddits through the
Reddit API, maintains a deduplicated CSV dataset, and trains text
classifiers that predict which subreddit a title came from.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command
func Execute() error {
	// Load .env file early so environment variables are available
	_ = godotenv.Load()

	// Parse flags early to get debug flag before creating logger
	_ = rootCmd.ParseFlags(os.Args[1:])

	// Initialize configuration
	if err := initConfig(); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	// Execute the root command with a fresh context
	return rootCmd.ExecuteContext(context.Background())
}

// init initializes the root command and its subcommands.
func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is ./config.yaml or ./config/config.yaml)",
	)
	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "enable debug mode")

	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("subsift version %s\n", viper.GetString("app.version"))
		},
	})

	// Add subcommands
	rootCmd.AddCommand(cmdscrape.Command())
	rootCmd.AddCommand(cmdscheduler.Command())
	rootCmd.AddCommand(cmddataset.Command())
	rootCmd.AddCommand(train.Command())
	rootCmd.AddCommand(evaluate.Command())
	rootCmd.AddCommand(classify.Command())
	rootCmd.AddCommand(search.Command())
	rootCmd.AddCommand(httpd.Command())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	// Set config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	// Enable automatic environment variable reading BEFORE setting defaults
	// so environment variables take precedence over defaults
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	// Config file is optional; defaults and environment variables cover
	// everything except Reddit credentials
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Config file not found: %v (using defaults and environment variables)\n", err)
	}

	if err := bindCommandLineFlags(); err != nil {
		return err
	}
	if err := bindAppEnvVars(); err != nil {
		return err
	}
	if err := bindRedditEnvVars(); err != nil {
		return err
	}
	if err := bindElasticsearchEnvVars(); err != nil {
		return err
	}

	setupDevelopmentLogging()

	return nil
}

// bindCommandLineFlags binds command-line flags to Viper.
func bindCommandLineFlags() error {
	if err := viper.BindPFlag("app.debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		return fmt.Errorf("failed to bind debug flag: %w", err)
	}
	return nil
}

// bindAppEnvVars binds application and logger environment variables to config keys.
func bindAppEnvVars() error {
	if err := viper.BindEnv("app.environment", "APP_ENV"); err != nil {
		return fmt.Errorf("failed to bind APP_ENV: %w", err)
	}
	if err := viper.BindEnv("app.debug", "APP_DEBUG"); err != nil {
		return fmt.Errorf("failed to bind APP_DEBUG: %w", err)
	}
	if err := viper.BindEnv("logger.level", "LOG_LEVEL"); err != nil {
		return fmt.Errorf("failed to bind LOG_LEVEL: %w", err)
	}
	if err := viper.BindEnv("logger.encoding", "LOG_FORMAT"); err != nil {
		return fmt.Errorf("failed to bind LOG_FORMAT: %w", err)
	}
	return nil
}

// bindRedditEnvVars binds Reddit credential environment variables to config
// keys. Credentials never come from the config file.
func bindRedditEnvVars() error {
	if err := viper.BindEnv("reddit.client_id", "REDDIT_CLIENT_ID"); err != nil {
		return fmt.Errorf("failed to bind REDDIT_CLIENT_ID: %w", err)
	}
	if err := viper.BindEnv("reddit.client_secret", "REDDIT_CLIENT_SECRET"); err != nil {
		return fmt.Errorf("failed to bind REDDIT_CLIENT_SECRET: %w", err)
	}
	if err := viper.BindEnv("reddit.username", "REDDIT_USERNAME"); err != nil {
		return fmt.Errorf("failed to bind REDDIT_USERNAME: %w", err)
	}
	if err := viper.BindEnv("reddit.password", "REDDIT_PASSWORD"); err != nil {
		return fmt.Errorf("failed to bind REDDIT_PASSWORD: %w", err)
	}
	if err := viper.BindEnv("reddit.user_agent", "REDDIT_USER_AGENT"); err != nil {
		return fmt.Errorf("failed to bind REDDIT_USER_AGENT: %w", err)
	}
	return nil
}

// bindElasticsearchEnvVars binds Elasticsearch environment variables to config keys.
func bindElasticsearchEnvVars() error {
	if err := viper.BindEnv("elasticsearch.addresses", "ELASTICSEARCH_HOSTS", "ELASTICSEARCH_ADDRESSES"); err != nil {
		return fmt.Errorf("failed to bind Elasticsearch addresses: %w", err)
	}
	if err := viper.BindEnv("elasticsearch.username", "ELASTICSEARCH_USERNAME"); err != nil {
		return fmt.Errorf("failed to bind Elasticsearch username: %w", err)
	}
	if err := viper.BindEnv("elasticsearch.password", "ELASTIC_PASSWORD", "ELASTICSEARCH_PASSWORD"); err != nil {
		return fmt.Errorf("failed to bind Elasticsearch password: %w", err)
	}
	if err := viper.BindEnv("elasticsearch.api_key", "ELASTICSEARCH_API_KEY"); err != nil {
		return fmt.Errorf("failed to bind Elasticsearch API key: %w", err)
	}
	if err := viper.BindEnv("elasticsearch.index_name", "ELASTICSEARCH_INDEX_NAME"); err != nil {
		return fmt.Errorf("failed to bind Elasticsearch index name: %w", err)
	}
	return nil
}

// setupDevelopmentLogging configures development logging settings based on
// environment and the debug flag.
func setupDevelopmentLogging() {
	debugFlag := Debug || viper.GetBool("app.debug")
	isDev := viper.GetString("app.environment") == "development"

	if debugFlag {
		viper.Set("logger.level", "debug")
	}

	if isDev {
		viper.Set("logger.development", true)
		viper.Set("logger.encoding", "console")
	}

	Debug = debugFlag
}

// setDefaults sets default configuration values
func setDefaults() {
	// App defaults - production safe
	viper.SetDefault("app", map[string]any{
		"name":        "subsift",
		"version":     "1.0.0",
		"environment": "production",
		"debug":       false,
	})

	// Logger defaults - production safe
	viper.SetDefault("logger", map[string]any{
		"level":        "info",
		"development":  false,
		"encoding":     "json",
		"output_paths": []string{"stdout"},
	})

	// Reddit API defaults; credentials come from the environment
	viper.SetDefault("reddit", map[string]any{
		"user_agent":      "subsift/1.0",
		"auth_url":        "https://www.reddit.com",
		"api_url":         "https://oauth.reddit.com",
		"request_timeout": "30s",
	})

	// Scraper defaults
	viper.SetDefault("scraper", map[string]any{
		"subreddits":         []string{},
		"pages":              config.DefaultPages,
		"page_limit":         config.DefaultPageLimit,
		"request_interval":   "2s",
		"max_retries":        config.DefaultMaxRetries,
		"retry_initial_wait": "1s",
	})

	// Dataset defaults
	viper.SetDefault("dataset", map[string]any{
		"path":         "data/posts.csv",
		"run_log_path": "data/runs.db",
	})

	// Training defaults
	viper.SetDefault("training", map[string]any{
		"test_split":   config.DefaultTestSplit,
		"folds":        config.DefaultFolds,
		"seed":         config.DefaultSeed,
		"min_doc_freq": config.DefaultMinDocFreq,
		"max_vocab":    config.DefaultMaxVocab,
		"tfidf":        true,
		"alpha":        config.DefaultNBAlpha,
		"trees":        config.DefaultTrees,
		"max_depth":    config.DefaultMaxDepth,
		"min_leaf":     config.DefaultMinLeaf,
		"model_path":   "data/model.json",
	})

	// Elasticsearch defaults - indexing is opt-in
	// Use 127.0.0.1 instead of localhost to avoid IPv6 resolution issues
	viper.SetDefault("elasticsearch", map[string]any{
		"enabled":    false,
		"addresses":  []string{config.DefaultESAddress},
		"index_name": config.DefaultESIndexName,
		"bulk_size":  config.DefaultESBulkSize,
	})

	// Server defaults - production safe
	viper.SetDefault("server", map[string]any{
		"address":       ":8080",
		"read_timeout":  "15s",
		"write_timeout": "15s",
		"idle_timeout":  "60s",
	})
}
