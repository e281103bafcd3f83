package domain

import "time"

// PublishedAtLayout is fixed-width so lexicographic order matches time order.
const PublishedAtLayout = "2006-01-02T15:04:05.000Z"

// SearchDocument is the provider-agnostic projection of a publishable content item.
type SearchDocument struct {
	ID          string      `json:"id"`
	OrgID       string      `json:"orgId"`
	Type        ContentType `json:"type"`
	Locale      string      `json:"locale"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	Excerpt     string      `json:"excerpt,omitempty"`
	ContentText string      `json:"contentText,omitempty"`
	PublishedAt string      `json:"publishedAt,omitempty"`
	URL         string      `json:"url"`
	CategoryID  string      `json:"categoryId,omitempty"`
	TagIDs      []string    `json:"tagIds"`
	AuthorID    string      `json:"authorId,omitempty"`
}

// Key is the store key shared by every provider: "{orgId}:{id}".
func (d SearchDocument) Key() string {
	return DocumentKey(d.OrgID, d.ID)
}

func (d SearchDocument) Ref() DocumentRef {
	return DocumentRef{ID: d.ID, OrgID: d.OrgID}
}

func (d SearchDocument) HasTag(tagID string) bool {
	for _, t := range d.TagIDs {
		if t == tagID {
			return true
		}
	}
	return false
}

// DocumentRef identifies an index entry for deletion.
type DocumentRef struct {
	ID    string `json:"id"`
	OrgID string `json:"orgId"`
}

func (r DocumentRef) Key() string {
	return DocumentKey(r.OrgID, r.ID)
}

func DocumentKey(orgID, id string) string {
	return orgID + ":" + id
}

// FormatPublishedAt renders t in PublishedAtLayout, or "" for nil.
func FormatPublishedAt(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(PublishedAtLayout)
}

// NewSearchDocument projects content into its index document. It does not
// decide visibility; callers check IsCurrentlyPublished first.
func NewSearchDocument(org *Organization, c *Content, baseURL string) SearchDocument {
	slug := c.Slug
	if slug == "" {
		slug = c.ID
	}
	locale := c.Locale
	if locale == "" {
		locale = org.FallbackLocale()
	}
	orgID := c.OrgID
	if org != nil && org.ID != "" {
		orgID = org.ID
	}
	orgSlug := ""
	if org != nil {
		orgSlug = org.Slug
	}
	baseURL = NormalizeBaseURL(baseURL)

	doc := SearchDocument{
		ID:          c.ID,
		OrgID:       orgID,
		Type:        c.Type,
		Locale:      locale,
		Title:       c.Title,
		Slug:        slug,
		ContentText: BlocksToContentText(c.Blocks),
		URL:         PublicContentURL(baseURL, orgSlug, c.Type, slug, c.Locale),
		TagIDs:      []string{},
	}

	switch c.Type {
	case ContentTypeArticle:
		doc.Excerpt = c.Excerpt
		doc.PublishedAt = FormatPublishedAt(c.PublishedAt)
		doc.CategoryID = c.CategoryID
		doc.AuthorID = c.AuthorID
		if len(c.TagIDs) > 0 {
			doc.TagIDs = append(doc.TagIDs, c.TagIDs...)
		}
	default:
		doc.Excerpt = c.SEODescription
	}
	return doc
}

// SearchQuery is the provider request. OrgID is mandatory; other filters are optional exact matches.
type SearchQuery struct {
	OrgID      string
	Q          string
	Locale     string
	Type       ContentType
	CategoryID string
	TagID      string
	AuthorID   string
	Limit      int
	Offset     int
}

const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 50
	MinQueryLength     = 2
)

// EffectiveLimit applies the default and the hard cap.
func (q SearchQuery) EffectiveLimit() int {
	switch {
	case q.Limit <= 0:
		return DefaultSearchLimit
	case q.Limit > MaxSearchLimit:
		return MaxSearchLimit
	default:
		return q.Limit
	}
}

func (q SearchQuery) EffectiveOffset() int {
	if q.Offset < 0 {
		return 0
	}
	return q.Offset
}

// Matches applies the tenant scope and optional exact-match filters.
func (q SearchQuery) Matches(d SearchDocument) bool {
	if d.OrgID != q.OrgID {
		return false
	}
	if q.Locale != "" && d.Locale != q.Locale {
		return false
	}
	if q.Type != "" && d.Type != q.Type {
		return false
	}
	if q.CategoryID != "" && d.CategoryID != q.CategoryID {
		return false
	}
	if q.TagID != "" && !d.HasTag(q.TagID) {
		return false
	}
	if q.AuthorID != "" && d.AuthorID != q.AuthorID {
		return false
	}
	return true
}

type Highlights struct {
	Title       string `json:"title,omitempty"`
	Excerpt     string `json:"excerpt,omitempty"`
	ContentText string `json:"contentText,omitempty"`
}

// SearchResultItem carries a relative, non-normalized score.
type SearchResultItem struct {
	Doc        SearchDocument `json:"doc"`
	Score      float64        `json:"score"`
	Highlights *Highlights    `json:"highlights,omitempty"`
}

type SearchResult struct {
	Items []SearchResultItem `json:"items"`
	Total int                `json:"total"`
}

// EmptySearchResult is returned for short queries and empty indexes.
func EmptySearchResult() *SearchResult {
	return &SearchResult{Items: []SearchResultItem{}, Total: 0}
}

// DisplayItem is the public shape of a search hit.
type DisplayItem struct {
	ID          string      `json:"id"`
	Type        ContentType `json:"type"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	URL         string      `json:"url"`
	Excerpt     string      `json:"excerpt,omitempty"`
	Locale      string      `json:"locale"`
	PublishedAt string      `json:"publishedAt,omitempty"`
	Score       float64     `json:"score"`
	Highlights  *Highlights `json:"highlights,omitempty"`
}

func NewDisplayItem(item SearchResultItem) DisplayItem {
	return DisplayItem{
		ID:          item.Doc.ID,
		Type:        item.Doc.Type,
		Title:       item.Doc.Title,
		Slug:        item.Doc.Slug,
		URL:         item.Doc.URL,
		Excerpt:     item.Doc.Excerpt,
		Locale:      item.Doc.Locale,
		PublishedAt: item.Doc.PublishedAt,
		Score:       item.Score,
		Highlights:  item.Highlights,
	}
}

// ProviderStatus is the operational state reported by a provider health check.
type ProviderStatus string

const (
	ProviderStatusOK       ProviderStatus = "ok"
	ProviderStatusDegraded ProviderStatus = "degraded"
	ProviderStatusError    ProviderStatus = "error"
)

type ProviderHealth struct {
	Status  ProviderStatus `json:"status"`
	Details string         `json:"details,omitempty"`
}
