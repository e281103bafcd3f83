package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"cms-search/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededSearch(t *testing.T) (*fixture, *SearchContentUsecase) {
	t.Helper()
	f := newFixture()
	sync := NewSyncContentUsecase(staticSource{f.local}, "https://cms.example.com", WithClock(fixedClock))

	velo := article("a-velo", "Le vélo en hiver", "Conseils pratiques", fixedNow.Add(-48*time.Hour))
	velo.TagIDs = []string{"tag-1"}
	velo.CategoryID = "cat-1"
	cafe := article("a-cafe", "Cafés de Montréal", "Un vélo devant chaque café", fixedNow.Add(-24*time.Hour))
	english := article("a-en", "Winter biking", "velo tips", fixedNow.Add(-time.Hour))
	english.Locale = "en-CA"
	guide := page("p-guide", "Guide", domain.Block{Type: domain.BlockRichText, HTML: "<p>Réparer son <b>vélo</b></p>"})

	for _, c := range []*domain.Content{velo, cafe, english, guide} {
		require.NoError(t, sync.Sync(context.Background(), f.org, c))
	}

	return f, NewSearchContentUsecase(f.repo, f.repo, staticSource{f.local}, nil)
}

func TestSearchContentUsecase_Ranking(t *testing.T) {
	_, u := seededSearch(t)

	out, err := u.Execute(context.Background(), SearchContentInput{OrgSlug: "acme", Q: "vélo"})
	require.NoError(t, err)

	require.Len(t, out.Items, 3)
	assert.Equal(t, "a-velo", out.Items[0].ID)
	assert.Equal(t, "a-cafe", out.Items[1].ID)
	assert.Equal(t, "p-guide", out.Items[2].ID)
	assert.Equal(t, 3, out.Total)
	assert.Equal(t, "local", out.Provider)
	assert.Equal(t, domain.DefaultSearchLimit, out.Limit)
	assert.Equal(t, "https://cms.example.com/o/acme/blog/a-velo?locale=fr-CA", out.Items[0].URL)
}

func TestSearchContentUsecase_Filters(t *testing.T) {
	_, u := seededSearch(t)

	tests := []struct {
		name  string
		input SearchContentInput
		want  []string
	}{
		{name: "locale", input: SearchContentInput{OrgSlug: "acme", Q: "velo", Locale: "en-CA"}, want: []string{"a-en"}},
		{name: "type", input: SearchContentInput{OrgSlug: "acme", Q: "velo", Type: "page"}, want: []string{"p-guide"}},
		{name: "tag by slug", input: SearchContentInput{OrgSlug: "acme", Q: "velo", Tag: "velo"}, want: []string{"a-velo"}},
		{name: "category by id", input: SearchContentInput{OrgSlug: "acme", Q: "velo", Category: "cat-1"}, want: []string{"a-velo"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := u.Execute(context.Background(), tt.input)
			require.NoError(t, err)
			got := make([]string, 0, len(out.Items))
			for _, item := range out.Items {
				got = append(got, item.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSearchContentUsecase_UnknownTaxonDropsFilter(t *testing.T) {
	_, u := seededSearch(t)
	ctx := context.Background()

	unfiltered, err := u.Execute(ctx, SearchContentInput{OrgSlug: "acme", Q: "velo"})
	require.NoError(t, err)
	require.NotEmpty(t, unfiltered.Items)

	for _, in := range []SearchContentInput{
		{OrgSlug: "acme", Q: "velo", Tag: "inconnu"},
		{OrgSlug: "acme", Q: "velo", Category: "inconnue"},
	} {
		out, err := u.Execute(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, unfiltered.Total, out.Total)
		assert.Equal(t, unfiltered.Items, out.Items)
	}
}

func TestSearchContentUsecase_Pagination(t *testing.T) {
	_, u := seededSearch(t)

	out, err := u.Execute(context.Background(), SearchContentInput{OrgSlug: "acme", Q: "velo", Limit: "1", Offset: "1"})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "a-cafe", out.Items[0].ID)
	assert.Equal(t, 3, out.Total)
	assert.Equal(t, 1, out.Offset)
}

func TestSearchContentUsecase_Validation(t *testing.T) {
	_, u := seededSearch(t)

	tests := []struct {
		name      string
		input     SearchContentInput
		wantField string
	}{
		{name: "missing q", input: SearchContentInput{OrgSlug: "acme", Q: "  "}, wantField: "q"},
		{name: "short q", input: SearchContentInput{OrgSlug: "acme", Q: "a"}, wantField: "q"},
		{name: "control char", input: SearchContentInput{OrgSlug: "acme", Q: "ab\x01"}, wantField: "q"},
		{name: "limit zero", input: SearchContentInput{OrgSlug: "acme", Q: "velo", Limit: "0"}, wantField: "limit"},
		{name: "limit too large", input: SearchContentInput{OrgSlug: "acme", Q: "velo", Limit: "51"}, wantField: "limit"},
		{name: "limit not a number", input: SearchContentInput{OrgSlug: "acme", Q: "velo", Limit: "ten"}, wantField: "limit"},
		{name: "negative offset", input: SearchContentInput{OrgSlug: "acme", Q: "velo", Offset: "-1"}, wantField: "offset"},
		{name: "bad type", input: SearchContentInput{OrgSlug: "acme", Q: "velo", Type: "video"}, wantField: "type"},
		{name: "unsupported locale", input: SearchContentInput{OrgSlug: "acme", Q: "velo", Locale: "de-DE"}, wantField: "locale"},
		{name: "unsafe author", input: SearchContentInput{OrgSlug: "acme", Q: "velo", Author: `x" OR 1`}, wantField: "author"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := u.Execute(context.Background(), tt.input)
			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestSearchContentUsecase_UnknownOrg(t *testing.T) {
	_, u := seededSearch(t)

	_, err := u.Execute(context.Background(), SearchContentInput{OrgSlug: "nope", Q: "velo"})
	assert.ErrorIs(t, err, domain.ErrOrgNotFound)
}

func TestSearchContentUsecase_TenantIsolation(t *testing.T) {
	_, u := seededSearch(t)

	out, err := u.Execute(context.Background(), SearchContentInput{OrgSlug: "other", Q: "velo"})
	require.NoError(t, err)
	assert.Empty(t, out.Items)
}

func TestSearchContentUsecase_ProviderFailure(t *testing.T) {
	f := newFixture()
	f.save(article("a1", "Vélo d'hiver", "", fixedNow.Add(-time.Hour)))

	t.Run("without fallback", func(t *testing.T) {
		u := NewSearchContentUsecase(f.repo, f.repo, staticSource{failingProvider{}}, nil)
		_, err := u.Execute(context.Background(), SearchContentInput{OrgSlug: "acme", Q: "velo"})
		assert.ErrorIs(t, err, domain.ErrSearchUnavailable)
	})

	t.Run("legacy fallback", func(t *testing.T) {
		legacy := NewLegacySearchUsecase(f.repo, f.repo, f.repo, "")
		legacy.now = fixedClock
		u := NewSearchContentUsecase(f.repo, f.repo, staticSource{failingProvider{}}, legacy)

		out, err := u.Execute(context.Background(), SearchContentInput{OrgSlug: "acme", Q: "velo", Offset: "5"})
		require.NoError(t, err)
		assert.True(t, out.Degraded)
		assert.Equal(t, ProviderNameLegacy, out.Provider)
		assert.Equal(t, 0, out.Offset)
		require.Len(t, out.Items, 1)
		assert.Equal(t, "a1", out.Items[0].ID)
	})
}
