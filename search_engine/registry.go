package search_engine

import (
	"sync"

	"cms-search/domain"
	"cms-search/logger"
	"cms-search/port"
)

// RemoteFactory constructs a remote provider for one configuration.
type RemoteFactory func(cfg *domain.SearchProviderConfig) (port.SearchProvider, error)

// ProviderRegistry picks the active provider from the current configuration.
type ProviderRegistry struct {
	config  port.ConfigRepository
	local   *LocalProvider
	factory RemoteFactory

	mu        sync.Mutex
	remoteKey string
	remote    port.SearchProvider
}

var _ port.ProviderSource = (*ProviderRegistry)(nil)

func NewProviderRegistry(config port.ConfigRepository, local *LocalProvider, factory RemoteFactory) *ProviderRegistry {
	return &ProviderRegistry{
		config:  config,
		local:   local,
		factory: factory,
	}
}

// Local returns the process-wide fallback provider.
func (r *ProviderRegistry) Local() *LocalProvider {
	return r.local
}

// Provider re-reads configuration on every call and memoizes the remote provider per host and prefix.
func (r *ProviderRegistry) Provider() port.SearchProvider {
	cfg, err := r.config.LoadSearchProviderConfig()
	if err != nil {
		logger.Logger.Warn("search provider config unreadable, using local provider", "err", err)
		return r.useLocal()
	}
	if !cfg.RemoteEnabled() || r.factory == nil {
		return r.useLocal()
	}

	key := cfg.CacheKey()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.remote != nil && r.remoteKey == key {
		return r.remote
	}

	provider, err := r.factory(cfg)
	if err != nil {
		logger.Logger.Error("failed to build remote search provider", "err", err, "host", cfg.Host)
		r.remote = nil
		r.remoteKey = ""
		return r.local
	}

	logger.Logger.Info("remote search provider configured", "host", cfg.Host, "index_prefix", cfg.IndexPrefix)
	r.remote = provider
	r.remoteKey = key
	return provider
}

func (r *ProviderRegistry) useLocal() port.SearchProvider {
	r.mu.Lock()
	r.remote = nil
	r.remoteKey = ""
	r.mu.Unlock()
	return r.local
}
