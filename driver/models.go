package driver

import (
	"encoding/json"
	"time"
)

// MeiliDocument is the wire shape of one index entry. ID is the encoded composite key.
type MeiliDocument struct {
	ID          string   `json:"id"`
	ContentID   string   `json:"contentId"`
	OrgID       string   `json:"orgId"`
	Type        string   `json:"type"`
	Locale      string   `json:"locale"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Excerpt     string   `json:"excerpt"`
	ContentText string   `json:"contentText"`
	PublishedAt *string  `json:"publishedAt"`
	URL         string   `json:"url"`
	CategoryID  *string  `json:"categoryId"`
	TagIDs      []string `json:"tagIds"`
	AuthorID    *string  `json:"authorId"`
}

// MeiliFormatted holds highlighted copies of the searchable fields.
type MeiliFormatted struct {
	Title       string `json:"title"`
	Excerpt     string `json:"excerpt"`
	ContentText string `json:"contentText"`
}

// MeiliHit is a decoded search hit.
type MeiliHit struct {
	MeiliDocument
	Formatted    *MeiliFormatted `json:"_formatted,omitempty"`
	RankingScore float64         `json:"_rankingScore"`
}

// MeiliSearchRequest is the engine-independent part of a search call.
type MeiliSearchRequest struct {
	Query            string
	Filter           []string
	Sort             []string
	Limit            int64
	Offset           int64
	HighlightFields  []string
	HighlightPreTag  string
	HighlightPostTag string
}

type MeiliSearchResponse struct {
	Hits               []MeiliHit
	EstimatedTotalHits int64
}

// IndexSettings is applied to every tenant index.
type IndexSettings struct {
	PrimaryKey string
	Searchable []string
	Filterable []string
	Sortable   []string
}

// ContentRow is a content record as stored in Postgres.
type ContentRow struct {
	ID                 string
	OrgID              string
	Type               string
	Status             string
	Locale             string
	TranslationGroupID *string
	Title              string
	Slug               string
	Excerpt            *string
	SEODescription     *string
	Blocks             json.RawMessage
	AuthorID           *string
	CategoryID         *string
	TagIDs             []string
	PublishedAt        *time.Time
	PublishAt          *time.Time
	UnpublishAt        *time.Time
	UpdatedAt          time.Time
}

type OrganizationRow struct {
	ID               string
	Slug             string
	Name             string
	DefaultLocale    string
	SupportedLocales []string
}

type TaxonRow struct {
	ID    string
	OrgID string
	Name  string
	Slug  string
}

// DriverError represents an error from the driver layer
type DriverError struct {
	Op  string
	Err string
}

func (e *DriverError) Error() string {
	return e.Op + ": " + e.Err
}
