package port

import (
	"context"

	"cms-search/domain"
)

// ContentFilter narrows ListContents. Zero values mean no filter.
type ContentFilter struct {
	Type   domain.ContentType
	Status domain.ContentStatus
	Locale string
	Limit  int
}

// ContentRepository is the authoritative document store for pages and articles.
type ContentRepository interface {
	GetContent(ctx context.Context, orgID string, contentType domain.ContentType, id string) (*domain.Content, error)
	ListContents(ctx context.Context, orgID string, filter ContentFilter) ([]*domain.Content, error)
	SaveContent(ctx context.Context, content *domain.Content) error
	DeleteContent(ctx context.Context, orgID string, contentType domain.ContentType, id string) error
}

type OrganizationRepository interface {
	GetOrganizationByID(ctx context.Context, orgID string) (*domain.Organization, error)
	GetOrganizationBySlug(ctx context.Context, slug string) (*domain.Organization, error)
}

// OrganizationLister enumerates tenants for full backfills.
type OrganizationLister interface {
	ListOrganizationIDs(ctx context.Context) ([]string, error)
}

// TaxonomyRepository resolves categories and tags by id or slug within one organization.
type TaxonomyRepository interface {
	FindCategory(ctx context.Context, orgID, idOrSlug string) (*domain.Taxon, error)
	FindTag(ctx context.Context, orgID, idOrSlug string) (*domain.Taxon, error)
}

type ConfigRepository interface {
	LoadSearchProviderConfig() (*domain.SearchProviderConfig, error)
}
