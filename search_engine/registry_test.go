package search_engine

import (
	"context"
	"errors"
	"testing"

	"cms-search/domain"
	"cms-search/port"

	"github.com/stretchr/testify/assert"
)

type stubConfigRepository struct {
	cfg *domain.SearchProviderConfig
	err error
}

func (s *stubConfigRepository) LoadSearchProviderConfig() (*domain.SearchProviderConfig, error) {
	return s.cfg, s.err
}

type stubRemote struct {
	key string
}

func (s *stubRemote) Name() string { return "remote" }

func (s *stubRemote) IndexDocuments(context.Context, []domain.SearchDocument) error { return nil }

func (s *stubRemote) DeleteDocuments(context.Context, []domain.DocumentRef) error { return nil }

func (s *stubRemote) Search(context.Context, domain.SearchQuery) (*domain.SearchResult, error) {
	return domain.EmptySearchResult(), nil
}

func TestProviderRegistry_Provider(t *testing.T) {
	config := &stubConfigRepository{cfg: domain.NewSearchProviderConfig("", "", "")}
	built := 0
	factory := func(cfg *domain.SearchProviderConfig) (port.SearchProvider, error) {
		built++
		return &stubRemote{key: cfg.CacheKey()}, nil
	}
	local := NewLocalProvider(nil)
	registry := NewProviderRegistry(config, local, factory)

	assert.Same(t, local, registry.Provider())
	assert.Equal(t, 0, built)

	config.cfg = domain.NewSearchProviderConfig("http://meili:7700", "key", "a_")
	first := registry.Provider()
	assert.Equal(t, "remote", first.Name())
	assert.Same(t, first, registry.Provider())
	assert.Equal(t, 1, built)

	config.cfg = domain.NewSearchProviderConfig("http://meili:7700", "rotated", "a_")
	assert.Same(t, first, registry.Provider())

	config.cfg = domain.NewSearchProviderConfig("http://meili:7700", "key", "b_")
	second := registry.Provider()
	assert.NotSame(t, first, second)
	assert.Equal(t, "http://meili:7700:b_", second.(*stubRemote).key)
	assert.Equal(t, 2, built)

	config.cfg = domain.NewSearchProviderConfig("http://meili:7700", "", "b_")
	assert.Same(t, local, registry.Provider())

	config.cfg = domain.NewSearchProviderConfig("http://meili:7700", "key", "b_")
	registry.Provider()
	assert.Equal(t, 3, built)
}

func TestProviderRegistry_FallsBackOnErrors(t *testing.T) {
	local := NewLocalProvider(nil)

	registry := NewProviderRegistry(&stubConfigRepository{err: errors.New("bad host")}, local, nil)
	assert.Same(t, local, registry.Provider())

	failing := func(*domain.SearchProviderConfig) (port.SearchProvider, error) {
		return nil, errors.New("boom")
	}
	registry = NewProviderRegistry(&stubConfigRepository{cfg: domain.NewSearchProviderConfig("http://h", "k", "")}, local, failing)
	assert.Same(t, local, registry.Provider())
}
