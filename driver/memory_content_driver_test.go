package driver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryContentDriver_UpsertGetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryContentDriver()

	row := &ContentRow{ID: "a1", OrgID: "org-1", Type: "article", Status: "published", Title: "First"}
	require.NoError(t, m.UpsertContent(ctx, row))

	row.Title = "Updated"
	require.NoError(t, m.UpsertContent(ctx, row))

	got, err := m.GetContent(ctx, "org-1", "article", "a1")
	require.NoError(t, err)
	assert.Equal(t, "Updated", got.Title)

	_, err = m.GetContent(ctx, "org-2", "article", "a1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.DeleteContent(ctx, "org-1", "article", "a1"))
	require.NoError(t, m.DeleteContent(ctx, "org-1", "article", "a1"), "delete is idempotent")
	_, err = m.GetContent(ctx, "org-1", "article", "a1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryContentDriver_ListContents(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryContentDriver()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	later := base.Add(48 * time.Hour)

	require.NoError(t, m.UpsertContent(ctx, &ContentRow{ID: "a1", OrgID: "org-1", Type: "article", Status: "published", Locale: "fr-CA", UpdatedAt: base}))
	require.NoError(t, m.UpsertContent(ctx, &ContentRow{ID: "a2", OrgID: "org-1", Type: "article", Status: "published", Locale: "en-US", PublishedAt: &later}))
	require.NoError(t, m.UpsertContent(ctx, &ContentRow{ID: "a3", OrgID: "org-1", Type: "article", Status: "draft", UpdatedAt: base}))
	require.NoError(t, m.UpsertContent(ctx, &ContentRow{ID: "p1", OrgID: "org-1", Type: "page", Status: "published", UpdatedAt: base}))
	require.NoError(t, m.UpsertContent(ctx, &ContentRow{ID: "x1", OrgID: "org-2", Type: "article", Status: "published", UpdatedAt: base}))

	rows, err := m.ListContents(ctx, "org-1", ContentListOptions{Type: "article", Status: "published"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "a2", rows[0].ID)
	assert.Equal(t, "a1", rows[1].ID)

	rows, err = m.ListContents(ctx, "org-1", ContentListOptions{Locale: "fr-CA"})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	rows, err = m.ListContents(ctx, "org-1", ContentListOptions{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestMemoryContentDriver_Taxonomy(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryContentDriver()
	m.PutCategory(TaxonRow{ID: "cat-1", OrgID: "org-1", Name: "News", Slug: "news"})
	m.PutCategory(TaxonRow{ID: "news", OrgID: "org-1", Name: "Id collides with slug", Slug: "other"})
	m.PutTag(TaxonRow{ID: "tag-1", OrgID: "org-1", Name: "Go", Slug: "go"})

	cat, err := m.FindCategory(ctx, "org-1", "news")
	require.NoError(t, err)
	assert.Equal(t, "news", cat.ID, "id match wins over slug match")

	cat, err = m.FindCategory(ctx, "org-1", "cat-1")
	require.NoError(t, err)
	assert.Equal(t, "news", cat.Slug)

	tag, err := m.FindTag(ctx, "org-1", "go")
	require.NoError(t, err)
	assert.Equal(t, "tag-1", tag.ID)

	_, err = m.FindTag(ctx, "org-2", "go")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryContentDriver_Organizations(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryContentDriver()
	m.PutOrganization(OrganizationRow{ID: "org-1", Slug: "acme", DefaultLocale: "fr-CA"})

	org, err := m.GetOrganizationBySlug(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "org-1", org.ID)

	_, err = m.GetOrganizationByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
