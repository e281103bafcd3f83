package domain

import (
	"errors"
	"slices"
	"time"
)

// DefaultLocale is used when neither the content nor its organization names a locale.
const DefaultLocale = "fr-CA"

type ContentType string

const (
	ContentTypeArticle ContentType = "article"
	ContentTypePage    ContentType = "page"
)

func (t ContentType) Valid() bool {
	return t == ContentTypeArticle || t == ContentTypePage
}

type ContentStatus string

const (
	StatusDraft     ContentStatus = "draft"
	StatusPreview   ContentStatus = "preview"
	StatusPublished ContentStatus = "published"
	StatusArchived  ContentStatus = "archived"
)

func (s ContentStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPreview, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// Organization is a tenant. All content and index entries are partitioned by its ID.
type Organization struct {
	ID               string   `json:"id"`
	Slug             string   `json:"slug"`
	Name             string   `json:"name"`
	DefaultLocale    string   `json:"defaultLocale"`
	SupportedLocales []string `json:"supportedLocales"`
}

func (o *Organization) SupportsLocale(locale string) bool {
	return locale != "" && slices.Contains(o.SupportedLocales, locale)
}

// FallbackLocale returns the organization default, or DefaultLocale when unset.
func (o *Organization) FallbackLocale() string {
	if o == nil || o.DefaultLocale == "" {
		return DefaultLocale
	}
	return o.DefaultLocale
}

// Schedule bounds the time a published item is publicly visible.
type Schedule struct {
	PublishAt   *time.Time `json:"publishAt,omitempty"`
	UnpublishAt *time.Time `json:"unpublishAt,omitempty"`
}

// Content is a page or an article as held by the document store.
type Content struct {
	ID                 string        `json:"id"`
	OrgID              string        `json:"orgId"`
	Type               ContentType   `json:"type"`
	Status             ContentStatus `json:"status"`
	Locale             string        `json:"locale"`
	TranslationGroupID string        `json:"translationGroupId,omitempty"`
	Title              string        `json:"title"`
	Slug               string        `json:"slug"`
	Blocks             []Block       `json:"blocks"`
	SEODescription     string        `json:"seoDescription,omitempty"`

	// Article only.
	Excerpt     string     `json:"excerpt,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	AuthorID    string     `json:"authorId,omitempty"`
	CategoryID  string     `json:"categoryId,omitempty"`
	TagIDs      []string   `json:"tagIds,omitempty"`

	Schedule  Schedule  `json:"schedule"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Content) Validate() error {
	if c.ID == "" {
		return errors.New("content ID cannot be empty")
	}
	if c.OrgID == "" {
		return errors.New("content org ID cannot be empty")
	}
	if !c.Type.Valid() {
		return &ValidationError{Field: "type", Message: "must be article or page"}
	}
	if !c.Status.Valid() {
		return &ValidationError{Field: "status", Message: "unknown status " + string(c.Status)}
	}
	if c.Title == "" {
		return &ValidationError{Field: "title", Message: "cannot be empty"}
	}
	return nil
}

// Ref identifies the index entry derived from this content.
func (c *Content) Ref() DocumentRef {
	return DocumentRef{ID: c.ID, OrgID: c.OrgID}
}

// Taxon is a category or tag owned by one organization.
type Taxon struct {
	ID    string
	OrgID string
	Name  string
	Slug  string
}
