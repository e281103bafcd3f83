package port

import (
	"context"

	"cms-search/domain"
)

// SearchProvider is implemented identically by the local and remote providers.
// Writes are idempotent and keyed by (orgId, id).
type SearchProvider interface {
	Name() string
	IndexDocuments(ctx context.Context, docs []domain.SearchDocument) error
	DeleteDocuments(ctx context.Context, refs []domain.DocumentRef) error
	Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchResult, error)
}

// OrgClearer wipes one tenant before a full reindex.
type OrgClearer interface {
	ClearOrg(ctx context.Context, orgID string) error
}

// HealthChecker never fails; transport problems are reported in the returned status.
type HealthChecker interface {
	Health(ctx context.Context) domain.ProviderHealth
}

// ProviderSource hands out the provider that is active for the current configuration.
type ProviderSource interface {
	Provider() SearchProvider
}
