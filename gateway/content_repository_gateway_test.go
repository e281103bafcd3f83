package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"cms-search/domain"
	"cms-search/driver"
	"cms-search/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeededStore() *driver.MemoryContentDriver {
	store := driver.NewMemoryContentDriver()
	store.PutOrganization(driver.OrganizationRow{
		ID:               "org-1",
		Slug:             "acme",
		Name:             "Acme",
		DefaultLocale:    "fr-CA",
		SupportedLocales: []string{"fr-CA", "en-CA"},
	})
	store.PutCategory(driver.TaxonRow{ID: "cat-1", OrgID: "org-1", Name: "News", Slug: "news"})
	store.PutTag(driver.TaxonRow{ID: "tag-1", OrgID: "org-1", Name: "Go", Slug: "go"})
	return store
}

func TestContentRepositoryGateway_Organizations(t *testing.T) {
	g := NewContentRepositoryGateway(newSeededStore())

	org, err := g.GetOrganizationBySlug(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, "org-1", org.ID)
	assert.True(t, org.SupportsLocale("en-CA"))

	_, err = g.GetOrganizationByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrOrgNotFound)
}

func TestContentRepositoryGateway_SaveAndGet(t *testing.T) {
	g := NewContentRepositoryGateway(newSeededStore())
	published := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	in := &domain.Content{
		ID:       "a1",
		OrgID:    "org-1",
		Type:     domain.ContentTypeArticle,
		Status:   domain.StatusPublished,
		Locale:   "fr-CA",
		Title:    "Bonjour",
		Slug:     "bonjour",
		Excerpt:  "Résumé",
		AuthorID: "u1",
		TagIDs:   []string{"tag-1"},
		Blocks: []domain.Block{
			{ID: "b1", Type: domain.BlockRichText, HTML: "<p>Hello</p>"},
		},
		PublishedAt: &published,
		UpdatedAt:   published,
	}
	require.NoError(t, g.SaveContent(context.Background(), in))

	out, err := g.GetContent(context.Background(), "org-1", domain.ContentTypeArticle, "a1")
	require.NoError(t, err)
	assert.Equal(t, in.Title, out.Title)
	assert.Equal(t, "Résumé", out.Excerpt)
	assert.Equal(t, "", out.CategoryID)
	require.Len(t, out.Blocks, 1)
	assert.Equal(t, "<p>Hello</p>", out.Blocks[0].HTML)
	assert.Equal(t, published, *out.PublishedAt)

	list, err := g.ListContents(context.Background(), "org-1", port.ContentFilter{Type: domain.ContentTypeArticle})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, g.DeleteContent(context.Background(), "org-1", domain.ContentTypeArticle, "a1"))
	_, err = g.GetContent(context.Background(), "org-1", domain.ContentTypeArticle, "a1")
	assert.ErrorIs(t, err, domain.ErrContentNotFound)
}

func TestContentRepositoryGateway_Taxonomy(t *testing.T) {
	g := NewContentRepositoryGateway(newSeededStore())

	cat, err := g.FindCategory(context.Background(), "org-1", "news")
	require.NoError(t, err)
	require.NotNil(t, cat)
	assert.Equal(t, "cat-1", cat.ID)

	tag, err := g.FindTag(context.Background(), "org-1", "tag-1")
	require.NoError(t, err)
	require.NotNil(t, tag)
	assert.Equal(t, "go", tag.Slug)

	missing, err := g.FindTag(context.Background(), "org-2", "go")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

type failingStore struct {
	*driver.MemoryContentDriver
}

func (f failingStore) ListContents(ctx context.Context, orgID string, opts driver.ContentListOptions) ([]*driver.ContentRow, error) {
	return nil, &driver.DriverError{Op: "ListContents", Err: "connection reset"}
}

func (f failingStore) GetContent(ctx context.Context, orgID, contentType, id string) (*driver.ContentRow, error) {
	return &driver.ContentRow{ID: id, OrgID: orgID, Type: contentType, Blocks: []byte("{broken")}, nil
}

func TestContentRepositoryGateway_Errors(t *testing.T) {
	g := NewContentRepositoryGateway(failingStore{driver.NewMemoryContentDriver()})

	_, err := g.ListContents(context.Background(), "org-1", port.ContentFilter{})
	var repoErr *domain.RepositoryError
	require.True(t, errors.As(err, &repoErr))
	assert.Equal(t, "ListContents", repoErr.Op)

	_, err = g.GetContent(context.Background(), "org-1", domain.ContentTypePage, "p1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode blocks")
}
