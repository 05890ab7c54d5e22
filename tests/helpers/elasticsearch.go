// Package helpers provides testing utilities for integration tests.
package helpers

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/elasticsearch"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// ElasticsearchPassword is the password the test container is started with.
	ElasticsearchPassword = "changeme"
	// startupTimeout bounds container startup.
	startupTimeout = 60 * time.Second
	// healthRetries is the number of health check attempts after startup.
	healthRetries = 30
)

// ElasticsearchContainer manages a test Elasticsearch instance.
type ElasticsearchContainer struct {
	Container testcontainers.Container
	Address   string
}

// StartElasticsearch starts an Elasticsearch container for testing.
// It returns a container instance that should be stopped with Stop().
func StartElasticsearch(ctx context.Context) (*ElasticsearchContainer, error) {
	esContainer, err := elasticsearch.Run(
		ctx,
		"docker.elastic.co/elasticsearch/elasticsearch:8.11.0",
		elasticsearch.WithPassword(ElasticsearchPassword),
		testcontainers.WithWaitStrategy(
			wait.ForHTTP("/").WithPort("9200/tcp").WithStartupTimeout(startupTimeout),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start Elasticsearch container: %w", err)
	}

	host, err := esContainer.Host(ctx)
	if err != nil {
		_ = esContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	mappedPort, err := esContainer.MappedPort(ctx, "9200")
	if err != nil {
		_ = esContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	address := fmt.Sprintf("http://%s", net.JoinHostPort(host, mappedPort.Port()))

	if waitErr := waitForElasticsearch(ctx, address); waitErr != nil {
		_ = esContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to wait for Elasticsearch: %w", waitErr)
	}

	return &ElasticsearchContainer{
		Container: esContainer,
		Address:   address,
	}, nil
}

// Stop stops and removes the Elasticsearch container.
func (e *ElasticsearchContainer) Stop(ctx context.Context) error {
	if e.Container == nil {
		return nil
	}
	return e.Container.Terminate(ctx)
}

// waitForElasticsearch polls the cluster health endpoint until it answers.
func waitForElasticsearch(ctx context.Context, address string) error {
	client := &http.Client{Timeout: 5 * time.Second}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/_cluster/health", address), http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth("elastic", ElasticsearchPassword)

	for range healthRetries {
		resp, doErr := client.Do(req)
		if doErr == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(1 * time.Second):
		}
	}

	return fmt.Errorf("elasticsearch did not become ready within %d seconds", healthRetries)
}
