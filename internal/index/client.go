// Package index provides the optional Elasticsearch index of scraped posts,
// used for full-text search over titles. The CSV dataset remains the source
// of truth; the index can always be rebuilt from it.
package index

import (
	"errors"
	"fmt"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/jonesrussell/subsift/internal/config"
	"github.com/jonesrussell/subsift/internal/logger"
)

// NewClient creates and pings an Elasticsearch client from configuration.
func NewClient(cfg *config.ElasticsearchConfig, log logger.Interface) (*es.Client, error) {
	if cfg == nil {
		return nil, errors.New("elasticsearch configuration is required")
	}

	if len(cfg.Addresses) > 0 {
		log.Debug("Connecting to Elasticsearch", "addresses", cfg.Addresses)
	}

	clientConfig := es.Config{
		Addresses: cfg.Addresses,
	}
	if cfg.APIKey != "" {
		clientConfig.APIKey = cfg.APIKey
	} else if cfg.Username != "" && cfg.Password != "" {
		clientConfig.Username = cfg.Username
		clientConfig.Password = cfg.Password
	}

	client, err := es.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	res, err := client.Ping()
	if err != nil {
		return nil, fmt.Errorf("failed to ping Elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("error pinging Elasticsearch: %s", res.String())
	}
	return client, nil
}
