package config

import (
	"errors"
	"fmt"
	"time"
)

// Scraper defaults. The 2s request interval mirrors Reddit's guidance for
// script-type OAuth clients.
const (
	DefaultPageLimit        = 100
	DefaultPages            = 10
	DefaultRequestInterval  = 2 * time.Second
	DefaultMaxRetries       = 3
	DefaultRetryInitialWait = 1 * time.Second
)

// Training defaults.
const (
	DefaultTestSplit  = 0.25
	DefaultFolds      = 5
	DefaultSeed       = 42
	DefaultMinDocFreq = 2
	DefaultMaxVocab   = 20000
	DefaultNBAlpha    = 1.0
	DefaultTrees      = 100
	DefaultMaxDepth   = 12
	DefaultMinLeaf    = 2
)

// Server defaults.
const (
	DefaultServerAddress      = ":8080"
	DefaultServerReadTimeout  = 15 * time.Second
	DefaultServerWriteTimeout = 15 * time.Second
	DefaultServerIdleTimeout  = 60 * time.Second
)

// Elasticsearch defaults.
const (
	DefaultESAddress   = "http://127.0.0.1:9200"
	DefaultESIndexName = "subsift-posts"
	DefaultESBulkSize  = 500
)

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `mapstructure:"name"        yaml:"name"`
	Version     string `mapstructure:"version"     yaml:"version"`
	Environment string `mapstructure:"environment" yaml:"environment"`
	Debug       bool   `mapstructure:"debug"       yaml:"debug"`
}

// RedditConfig holds Reddit OAuth credentials and endpoints. Credentials
// come from the environment (REDDIT_CLIENT_ID etc.), never config files.
type RedditConfig struct {
	ClientID       string        `mapstructure:"client_id"       yaml:"-"`
	ClientSecret   string        `mapstructure:"client_secret"   yaml:"-"`
	Username       string        `mapstructure:"username"        yaml:"-"`
	Password       string        `mapstructure:"password"        yaml:"-"`
	UserAgent      string        `mapstructure:"user_agent"      yaml:"user_agent"`
	AuthURL        string        `mapstructure:"auth_url"        yaml:"auth_url"`
	APIURL         string        `mapstructure:"api_url"         yaml:"api_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
}

// Validate checks that the credentials required for scraping are present.
func (c *RedditConfig) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return errors.New("reddit client id and secret are required (REDDIT_CLIENT_ID, REDDIT_CLIENT_SECRET)")
	}
	if c.Username == "" || c.Password == "" {
		return errors.New("reddit username and password are required (REDDIT_USERNAME, REDDIT_PASSWORD)")
	}
	if c.UserAgent == "" {
		return errors.New("reddit user agent is required")
	}
	return nil
}

// ScraperConfig holds scraping parameters.
type ScraperConfig struct {
	// Subreddits are the communities scraped by the scheduler and, when no
	// --subreddit flag is given, the one-shot scrape command.
	Subreddits []string `mapstructure:"subreddits" yaml:"subreddits"`
	// Pages is the number of listing pages fetched per subreddit.
	Pages int `mapstructure:"pages" yaml:"pages"`
	// PageLimit is the number of posts requested per page (Reddit caps at 100).
	PageLimit int `mapstructure:"page_limit" yaml:"page_limit"`
	// RequestInterval is the minimum delay between listing requests.
	RequestInterval time.Duration `mapstructure:"request_interval" yaml:"request_interval"`
	// MaxRetries bounds retry attempts on throttled or failed requests.
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`
	// RetryInitialWait is the first backoff delay; it doubles per attempt.
	RetryInitialWait time.Duration `mapstructure:"retry_initial_wait" yaml:"retry_initial_wait"`
	// Schedule is the cron expression used by the scheduler command.
	Schedule string `mapstructure:"schedule" yaml:"schedule"`
}

func (c *ScraperConfig) applyDefaults() {
	if c.Pages <= 0 {
		c.Pages = DefaultPages
	}
	if c.PageLimit <= 0 || c.PageLimit > DefaultPageLimit {
		c.PageLimit = DefaultPageLimit
	}
	if c.RequestInterval <= 0 {
		c.RequestInterval = DefaultRequestInterval
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.RetryInitialWait <= 0 {
		c.RetryInitialWait = DefaultRetryInitialWait
	}
}

// DatasetConfig holds paths for the persisted dataset and run ledger.
type DatasetConfig struct {
	// Path is the CSV dataset file (columns: subreddit, title, id).
	Path string `mapstructure:"path" yaml:"path"`
	// RunLogPath is the SQLite database recording scrape executions.
	RunLogPath string `mapstructure:"run_log_path" yaml:"run_log_path"`
}

// TrainingConfig holds model training parameters.
type TrainingConfig struct {
	TestSplit  float64 `mapstructure:"test_split"   yaml:"test_split"`
	Folds      int     `mapstructure:"folds"        yaml:"folds"`
	Seed       int64   `mapstructure:"seed"         yaml:"seed"`
	MinDocFreq int     `mapstructure:"min_doc_freq" yaml:"min_doc_freq"`
	MaxVocab   int     `mapstructure:"max_vocab"    yaml:"max_vocab"`
	TFIDF      bool    `mapstructure:"tfidf"        yaml:"tfidf"`
	// Alpha is the Laplace smoothing parameter for Naive Bayes.
	Alpha float64 `mapstructure:"alpha" yaml:"alpha"`
	// Trees, MaxDepth and MinLeaf parameterize the random forest.
	Trees    int `mapstructure:"trees"     yaml:"trees"`
	MaxDepth int `mapstructure:"max_depth" yaml:"max_depth"`
	MinLeaf  int `mapstructure:"min_leaf"  yaml:"min_leaf"`
	// ModelPath is where the selected model is persisted.
	ModelPath string `mapstructure:"model_path" yaml:"model_path"`
}

func (c *TrainingConfig) applyDefaults() {
	if c.TestSplit <= 0 || c.TestSplit >= 1 {
		c.TestSplit = DefaultTestSplit
	}
	if c.Folds < 2 {
		c.Folds = DefaultFolds
	}
	if c.Seed == 0 {
		c.Seed = DefaultSeed
	}
	if c.MinDocFreq <= 0 {
		c.MinDocFreq = DefaultMinDocFreq
	}
	if c.MaxVocab <= 0 {
		c.MaxVocab = DefaultMaxVocab
	}
	if c.Alpha <= 0 {
		c.Alpha = DefaultNBAlpha
	}
	if c.Trees <= 0 {
		c.Trees = DefaultTrees
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	if c.MinLeaf <= 0 {
		c.MinLeaf = DefaultMinLeaf
	}
}

// Validate checks the training parameters.
func (c *TrainingConfig) Validate() error {
	if c.TestSplit <= 0 || c.TestSplit >= 1 {
		return fmt.Errorf("test split must be in (0, 1), got %v", c.TestSplit)
	}
	if c.Folds < 2 {
		return fmt.Errorf("cross-validation needs at least 2 folds, got %d", c.Folds)
	}
	return nil
}

// ElasticsearchConfig holds Elasticsearch connection settings. Indexing is
// optional; when disabled the scraper only writes the CSV dataset.
type ElasticsearchConfig struct {
	Enabled   bool     `mapstructure:"enabled"    yaml:"enabled"`
	Addresses []string `mapstructure:"addresses"  yaml:"addresses"`
	Username  string   `mapstructure:"username"   yaml:"-"`
	Password  string   `mapstructure:"password"   yaml:"-"`
	APIKey    string   `mapstructure:"api_key"    yaml:"-"`
	IndexName string   `mapstructure:"index_name" yaml:"index_name"`
	BulkSize  int      `mapstructure:"bulk_size"  yaml:"bulk_size"`
}

func (c *ElasticsearchConfig) applyDefaults() {
	if len(c.Addresses) == 0 {
		c.Addresses = []string{DefaultESAddress}
	}
	if c.IndexName == "" {
		c.IndexName = DefaultESIndexName
	}
	if c.BulkSize <= 0 {
		c.BulkSize = DefaultESBulkSize
	}
}

// Validate checks the Elasticsearch settings.
func (c *ElasticsearchConfig) Validate() error {
	if len(c.Addresses) == 0 {
		return errors.New("elasticsearch addresses are required")
	}
	if c.IndexName == "" {
		return errors.New("elasticsearch index name is required")
	}
	return nil
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address      string        `mapstructure:"address"       yaml:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"  yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"  yaml:"idle_timeout"`
}

func (c *ServerConfig) applyDefaults() {
	if c.Address == "" {
		c.Address = DefaultServerAddress
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultServerReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = DefaultServerWriteTimeout
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = DefaultServerIdleTimeout
	}
}
