package search_engine

import (
	"net/http"
	"time"

	"cms-search/domain"
	"cms-search/driver"
	"cms-search/gateway"
	"cms-search/port"

	"github.com/meilisearch/meilisearch-go"
)

func NewMeilisearchClient(host string, apiKey string, timeout time.Duration) meilisearch.ServiceManager {
	return meilisearch.New(host,
		meilisearch.WithAPIKey(apiKey),
		meilisearch.WithCustomClient(&http.Client{Timeout: timeout}),
	)
}

// NewRemoteFactory builds Meilisearch-backed providers with the given request timeout.
func NewRemoteFactory(timeout time.Duration) RemoteFactory {
	return func(cfg *domain.SearchProviderConfig) (port.SearchProvider, error) {
		client := NewMeilisearchClient(cfg.Host, cfg.APIKey, timeout)
		return gateway.NewSearchEngineGateway(driver.NewMeilisearchDriver(client, timeout), cfg), nil
	}
}
