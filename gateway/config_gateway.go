package gateway

import (
	"fmt"
	"net/url"
	"strings"

	"cms-search/domain"
	"cms-search/port"
)

// ConfigDriver defines the interface for configuration data source
type ConfigDriver interface {
	GetEnv(key string) string
}

// ConfigGateway implements the configuration repository port.
// It is read on every registry decision so a rotated host or key takes effect without restart.
type ConfigGateway struct {
	driver ConfigDriver
}

var _ port.ConfigRepository = (*ConfigGateway)(nil)

func NewConfigGateway(driver ConfigDriver) *ConfigGateway {
	return &ConfigGateway{
		driver: driver,
	}
}

// LoadSearchProviderConfig reads the remote engine settings. Missing host or key is not an error.
func (g *ConfigGateway) LoadSearchProviderConfig() (*domain.SearchProviderConfig, error) {
	cfg, err := g.convertToDomain(
		g.driver.GetEnv("MEILISEARCH_HOST"),
		g.driver.GetEnv("MEILISEARCH_API_KEY"),
		g.driver.GetEnv("MEILISEARCH_INDEX_PREFIX"),
	)
	if err != nil {
		return nil, &domain.RepositoryError{
			Op:  "LoadSearchProviderConfig",
			Err: err.Error(),
		}
	}

	if pre := g.driver.GetEnv("SEARCH_HIGHLIGHT_PRE_TAG"); pre != "" {
		cfg.HighlightPreTag = pre
	}
	if post := g.driver.GetEnv("SEARCH_HIGHLIGHT_POST_TAG"); post != "" {
		cfg.HighlightPostTag = post
	}

	return cfg, nil
}

func (g *ConfigGateway) convertToDomain(host, apiKey, indexPrefix string) (*domain.SearchProviderConfig, error) {
	cfg := domain.NewSearchProviderConfig(host, apiKey, indexPrefix)
	if cfg.Host == "" {
		return cfg, nil
	}

	parsed, err := url.Parse(cfg.Host)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("invalid MEILISEARCH_HOST %q", cfg.Host)
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, fmt.Errorf("MEILISEARCH_HOST must use http or https, got %q", parsed.Scheme)
	}
	return cfg, nil
}
