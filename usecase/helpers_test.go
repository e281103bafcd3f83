package usecase

import (
	"context"
	"sync"
	"time"

	"cms-search/domain"
	"cms-search/driver"
	"cms-search/gateway"
	"cms-search/port"
	"cms-search/search_engine"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type staticSource struct {
	provider port.SearchProvider
}

func (s staticSource) Provider() port.SearchProvider { return s.provider }

// failingProvider reports every search as unavailable.
type failingProvider struct{}

func (failingProvider) Name() string { return "remote" }

func (failingProvider) IndexDocuments(context.Context, []domain.SearchDocument) error {
	return &domain.SearchEngineError{Op: "IndexDocuments", Err: "connection refused"}
}

func (failingProvider) DeleteDocuments(context.Context, []domain.DocumentRef) error {
	return &domain.SearchEngineError{Op: "DeleteDocuments", Err: "connection refused"}
}

func (failingProvider) Search(context.Context, domain.SearchQuery) (*domain.SearchResult, error) {
	return nil, &domain.SearchEngineError{Op: "Search", Err: "connection refused"}
}

type recordingIndexer struct {
	mu      sync.Mutex
	synced  []*domain.Content
	deleted []domain.DocumentRef
}

func (r *recordingIndexer) SyncAsync(_ *domain.Organization, content *domain.Content) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.synced = append(r.synced, content)
}

func (r *recordingIndexer) DeleteAsync(ref domain.DocumentRef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, ref)
}

type fixture struct {
	store *driver.MemoryContentDriver
	repo  *gateway.ContentRepositoryGateway
	local *search_engine.LocalProvider
	org   *domain.Organization
}

func newFixture() *fixture {
	store := driver.NewMemoryContentDriver()
	store.PutOrganization(driver.OrganizationRow{
		ID:               "org-1",
		Slug:             "acme",
		Name:             "Acme",
		DefaultLocale:    "fr-CA",
		SupportedLocales: []string{"fr-CA", "en-CA"},
	})
	store.PutOrganization(driver.OrganizationRow{ID: "org-2", Slug: "other", Name: "Other"})
	store.PutCategory(driver.TaxonRow{ID: "cat-1", OrgID: "org-1", Name: "Nouvelles", Slug: "nouvelles"})
	store.PutTag(driver.TaxonRow{ID: "tag-1", OrgID: "org-1", Name: "Vélo", Slug: "velo"})

	return &fixture{
		store: store,
		repo:  gateway.NewContentRepositoryGateway(store),
		local: search_engine.NewLocalProvider(nil),
		org: &domain.Organization{
			ID:               "org-1",
			Slug:             "acme",
			DefaultLocale:    "fr-CA",
			SupportedLocales: []string{"fr-CA", "en-CA"},
		},
	}
}

func (f *fixture) save(c *domain.Content) {
	if err := f.repo.SaveContent(context.Background(), c); err != nil {
		panic(err)
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func article(id, title, excerpt string, published time.Time) *domain.Content {
	return &domain.Content{
		ID:          id,
		OrgID:       "org-1",
		Type:        domain.ContentTypeArticle,
		Status:      domain.StatusPublished,
		Locale:      "fr-CA",
		Title:       title,
		Slug:        id,
		Excerpt:     excerpt,
		PublishedAt: timePtr(published),
		UpdatedAt:   published,
	}
}

func page(id, title string, blocks ...domain.Block) *domain.Content {
	return &domain.Content{
		ID:        id,
		OrgID:     "org-1",
		Type:      domain.ContentTypePage,
		Status:    domain.StatusPublished,
		Locale:    "fr-CA",
		Title:     title,
		Slug:      id,
		Blocks:    blocks,
		UpdatedAt: fixedNow.Add(-time.Hour),
	}
}
