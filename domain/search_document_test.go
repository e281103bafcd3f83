package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testOrg() *Organization {
	return &Organization{
		ID:               "org-1",
		Slug:             "acme",
		DefaultLocale:    "fr-CA",
		SupportedLocales: []string{"fr-CA", "en-US"},
	}
}

func TestBlocksToContentText(t *testing.T) {
	tests := []struct {
		name   string
		blocks []Block
		want   string
	}{
		{name: "nil blocks", blocks: nil, want: ""},
		{
			name:   "hero with subtitle",
			blocks: []Block{{Type: BlockHero, Title: "Bienvenue", Subtitle: "chez nous"}},
			want:   "Bienvenue chez nous",
		},
		{
			name:   "hero without subtitle",
			blocks: []Block{{Type: BlockHero, Title: "Seul"}},
			want:   "Seul",
		},
		{
			name:   "rich text strips tags",
			blocks: []Block{{Type: BlockRichText, HTML: "<p>Hello <strong>world</strong></p>\n<ul><li>one</li></ul>"}},
			want:   "Hello world one",
		},
		{
			name: "faq keeps order",
			blocks: []Block{{Type: BlockFAQ, Items: []FAQItem{
				{Question: "Q1?", Answer: "A1"},
				{Question: "Q2?", Answer: "A2"},
			}}},
			want: "Q1? A1 Q2? A2",
		},
		{
			name:   "cta label only",
			blocks: []Block{{Type: BlockCTA, Label: "Contact", URL: "https://acme.test/contact"}},
			want:   "Contact",
		},
		{
			name:   "unknown block ignored",
			blocks: []Block{{Type: "video", Title: "ignored"}, {Type: BlockCTA, Label: "Go"}},
			want:   "Go",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BlocksToContentText(tt.blocks))
		})
	}
}

func TestNewSearchDocument_Article(t *testing.T) {
	published := time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)
	c := &Content{
		ID:          "a1",
		OrgID:       "org-1",
		Type:        ContentTypeArticle,
		Status:      StatusPublished,
		Locale:      "en-US",
		Title:       "Launch",
		Slug:        "launch",
		Excerpt:     "Short summary",
		Blocks:      []Block{{Type: BlockRichText, HTML: "<p>Body</p>"}},
		PublishedAt: &published,
		CategoryID:  "cat-1",
		TagIDs:      []string{"t1", "t2"},
		AuthorID:    "u1",
	}

	doc := NewSearchDocument(testOrg(), c, "https://cms.test/")

	assert.Equal(t, "a1", doc.ID)
	assert.Equal(t, "org-1", doc.OrgID)
	assert.Equal(t, ContentTypeArticle, doc.Type)
	assert.Equal(t, "en-US", doc.Locale)
	assert.Equal(t, "Short summary", doc.Excerpt)
	assert.Equal(t, "Body", doc.ContentText)
	assert.Equal(t, "2024-06-01T08:30:00.000Z", doc.PublishedAt)
	assert.Equal(t, "https://cms.test/o/acme/blog/launch?locale=en-US", doc.URL)
	assert.Equal(t, "cat-1", doc.CategoryID)
	assert.Equal(t, []string{"t1", "t2"}, doc.TagIDs)
	assert.Equal(t, "u1", doc.AuthorID)
}

func TestNewSearchDocument_Page(t *testing.T) {
	c := &Content{
		ID:             "p1",
		OrgID:          "org-1",
		Type:           ContentTypePage,
		Title:          "About",
		SEODescription: "About the team",
		Excerpt:        "ignored for pages",
		CategoryID:     "ignored",
		TagIDs:         []string{"ignored"},
	}

	doc := NewSearchDocument(testOrg(), c, "")

	assert.Equal(t, "About the team", doc.Excerpt)
	assert.Equal(t, "p1", doc.Slug, "slug falls back to id")
	assert.Equal(t, "fr-CA", doc.Locale, "locale falls back to org default")
	assert.Equal(t, "https://example.com/o/acme/p1", doc.URL, "no locale query without content locale")
	assert.Empty(t, doc.PublishedAt)
	assert.Empty(t, doc.CategoryID)
	assert.Empty(t, doc.AuthorID)
	assert.NotNil(t, doc.TagIDs)
	assert.Empty(t, doc.TagIDs)
	assert.Empty(t, doc.ContentText)
}

func TestNewSearchDocument_RoundTripDisplay(t *testing.T) {
	contents := []*Content{
		{ID: "a1", OrgID: "org-1", Type: ContentTypeArticle, Title: "Guide <b>pratique</b>", Slug: "guide", Locale: "fr-CA",
			Blocks: []Block{{Type: BlockRichText, HTML: "<div><p>Texte <em>riche</em></p></div>"}}},
		{ID: "p1", OrgID: "org-1", Type: ContentTypePage, Title: "Accueil", Slug: "accueil",
			Blocks: []Block{{Type: BlockRichText, HTML: "<h1>Titre</h1><script>x</script>"}}},
	}

	for _, c := range contents {
		t.Run(c.ID, func(t *testing.T) {
			doc := NewSearchDocument(testOrg(), c, "cms.test")
			item := NewDisplayItem(SearchResultItem{Doc: doc, Score: 3})

			assert.Equal(t, doc.Title, item.Title)
			assert.Equal(t, doc.Slug, item.Slug)
			assert.Equal(t, doc.URL, item.URL)
			assert.True(t, strings.HasPrefix(item.URL, "https://cms.test/o/acme/"))
			assert.NotContains(t, doc.ContentText, "<")
			assert.NotContains(t, doc.ContentText, ">")
		})
	}
}

func TestSearchQuery_EffectiveLimit(t *testing.T) {
	assert.Equal(t, 20, SearchQuery{}.EffectiveLimit())
	assert.Equal(t, 5, SearchQuery{Limit: 5}.EffectiveLimit())
	assert.Equal(t, 50, SearchQuery{Limit: 500}.EffectiveLimit())
	assert.Equal(t, 0, SearchQuery{Offset: -3}.EffectiveOffset())
}

func TestSearchQuery_Matches(t *testing.T) {
	doc := SearchDocument{ID: "a1", OrgID: "org-1", Type: ContentTypeArticle, Locale: "fr-CA", CategoryID: "c1", TagIDs: []string{"t1"}, AuthorID: "u1"}

	assert.True(t, SearchQuery{OrgID: "org-1"}.Matches(doc))
	assert.False(t, SearchQuery{OrgID: "org-2"}.Matches(doc))
	assert.False(t, SearchQuery{OrgID: "org-1", Locale: "en-US"}.Matches(doc))
	assert.False(t, SearchQuery{OrgID: "org-1", Type: ContentTypePage}.Matches(doc))
	assert.True(t, SearchQuery{OrgID: "org-1", TagID: "t1", CategoryID: "c1", AuthorID: "u1"}.Matches(doc))
	assert.False(t, SearchQuery{OrgID: "org-1", TagID: "t2"}.Matches(doc))
}

func TestSearchProviderConfig(t *testing.T) {
	cfg := NewSearchProviderConfig(" http://meili:7700 ", " key ", "")
	assert.True(t, cfg.RemoteEnabled())
	assert.Equal(t, "http://meili:7700:", cfg.CacheKey())

	assert.False(t, NewSearchProviderConfig("http://meili:7700", "", "p_").RemoteEnabled())
	assert.False(t, (*SearchProviderConfig)(nil).RemoteEnabled())
}

func TestValidateFilterValue(t *testing.T) {
	assert.NoError(t, ValidateFilterValue("tag", "news-2024"))
	assert.NoError(t, ValidateFilterValue("locale", "fr-CA"))
	assert.Error(t, ValidateFilterValue("tag", "  "))
	assert.Error(t, ValidateFilterValue("tag", `x" OR orgId = "y`))
	assert.Error(t, ValidateFilterValue("tag", strings.Repeat("a", 101)))
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "entities decoded", in: "<p>Caf&eacute; &amp; vélo</p>", want: "Café & vélo"},
		{name: "script and style dropped", in: "<style>p{}</style><p>Texte</p><script>alert(1)</script>", want: "Texte"},
		{name: "adjacent blocks separated", in: "<h2>Titre</h2><p>Corps</p>", want: "Titre Corps"},
		{name: "plain text", in: "  déjà   vu ", want: "déjà vu"},
		{name: "encoded tags removed", in: "<p>Le &lt;b&gt;gras&lt;/b&gt; ici</p>", want: "Le gras ici"},
		{name: "encoded script removed", in: "<p>Use &lt;script&gt;alert(1)&lt;/script&gt; carefully</p>", want: "Use alert(1) carefully"},
		{name: "lone angle bracket kept", in: "<p>3 &lt; 4</p>", want: "3 < 4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripHTML(tt.in))
		})
	}
}

func TestBlocksToContentText_NoTags(t *testing.T) {
	got := BlocksToContentText([]Block{{Type: BlockRichText, HTML: "<p>Use &lt;script&gt;alert(1)&lt;/script&gt; carefully</p>"}})
	assert.Equal(t, "Use alert(1) carefully", got)
	assert.NotRegexp(t, `<[^>]+>`, got)
}
