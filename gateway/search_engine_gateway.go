package gateway

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"cms-search/domain"
	"cms-search/driver"
)

// ProviderNameRemote identifies the Meilisearch-backed provider.
const ProviderNameRemote = "remote"

const indexNameSuffix = "_content"

var unsafeIndexChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// highlightFields are also the searchable attributes.
var highlightFields = []string{"title", "excerpt", "contentText"}

var tenantIndexSettings = driver.IndexSettings{
	PrimaryKey: "id",
	Searchable: highlightFields,
	Filterable: []string{"orgId", "type", "locale", "categoryId", "tagIds", "authorId"},
	Sortable:   []string{"publishedAt"},
}

type SearchDriver interface {
	EnsureIndex(ctx context.Context, indexName string, settings driver.IndexSettings) error
	IndexDocuments(ctx context.Context, indexName string, docs []driver.MeiliDocument) error
	DeleteDocuments(ctx context.Context, indexName string, ids []string) error
	DeleteAllDocuments(ctx context.Context, indexName string) error
	Search(ctx context.Context, indexName string, req driver.MeiliSearchRequest) (*driver.MeiliSearchResponse, error)
	Health(ctx context.Context) (string, error)
}

// SearchEngineGateway is the remote search provider: one Meilisearch index per tenant.
type SearchEngineGateway struct {
	driver     SearchDriver
	prefix     string
	preTag     string
	postTag    string
	mu         sync.Mutex
	ensuredIdx map[string]bool
}

func NewSearchEngineGateway(driver SearchDriver, cfg *domain.SearchProviderConfig) *SearchEngineGateway {
	g := &SearchEngineGateway{
		driver:     driver,
		preTag:     domain.DefaultHighlightPreTag,
		postTag:    domain.DefaultHighlightPostTag,
		ensuredIdx: make(map[string]bool),
	}
	if cfg != nil {
		g.prefix = cfg.IndexPrefix
		if cfg.HighlightPreTag != "" {
			g.preTag = cfg.HighlightPreTag
		}
		if cfg.HighlightPostTag != "" {
			g.postTag = cfg.HighlightPostTag
		}
	}
	return g
}

func (g *SearchEngineGateway) Name() string {
	return ProviderNameRemote
}

// IndexName is deterministic: {prefix}org_{sanitized orgId}_content.
func (g *SearchEngineGateway) IndexName(orgID string) string {
	return g.prefix + "org_" + unsafeIndexChars.ReplaceAllString(orgID, "_") + indexNameSuffix
}

// ensureIndex creates and configures a tenant index once per gateway instance.
func (g *SearchEngineGateway) ensureIndex(ctx context.Context, indexName string) error {
	g.mu.Lock()
	done := g.ensuredIdx[indexName]
	g.mu.Unlock()
	if done {
		return nil
	}

	if err := g.driver.EnsureIndex(ctx, indexName, tenantIndexSettings); err != nil {
		return err
	}

	g.mu.Lock()
	g.ensuredIdx[indexName] = true
	g.mu.Unlock()
	return nil
}

func toMeiliDocument(doc domain.SearchDocument) driver.MeiliDocument {
	tagIDs := doc.TagIDs
	if tagIDs == nil {
		tagIDs = []string{}
	}
	return driver.MeiliDocument{
		ID:          driver.EncodeDocumentID(doc.OrgID, doc.ID),
		ContentID:   doc.ID,
		OrgID:       doc.OrgID,
		Type:        string(doc.Type),
		Locale:      doc.Locale,
		Title:       doc.Title,
		Slug:        doc.Slug,
		Excerpt:     doc.Excerpt,
		ContentText: doc.ContentText,
		PublishedAt: optionalString(doc.PublishedAt),
		URL:         doc.URL,
		CategoryID:  optionalString(doc.CategoryID),
		TagIDs:      tagIDs,
		AuthorID:    optionalString(doc.AuthorID),
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toResultItem(hit driver.MeiliHit) domain.SearchResultItem {
	id := hit.ContentID
	if id == "" {
		id = driver.DecodeDocumentID(hit.ID)
	}
	tagIDs := hit.TagIDs
	if tagIDs == nil {
		tagIDs = []string{}
	}
	item := domain.SearchResultItem{
		Doc: domain.SearchDocument{
			ID:          id,
			OrgID:       hit.OrgID,
			Type:        domain.ContentType(hit.Type),
			Locale:      hit.Locale,
			Title:       hit.Title,
			Slug:        hit.Slug,
			Excerpt:     hit.Excerpt,
			ContentText: hit.ContentText,
			PublishedAt: derefString(hit.PublishedAt),
			URL:         hit.URL,
			CategoryID:  derefString(hit.CategoryID),
			TagIDs:      tagIDs,
			AuthorID:    derefString(hit.AuthorID),
		},
		Score: hit.RankingScore,
	}
	if f := hit.Formatted; f != nil && (f.Title != "" || f.Excerpt != "" || f.ContentText != "") {
		item.Highlights = &domain.Highlights{
			Title:       f.Title,
			Excerpt:     f.Excerpt,
			ContentText: f.ContentText,
		}
	}
	return item
}

// IndexDocuments upserts documents into their tenants' indexes.
func (g *SearchEngineGateway) IndexDocuments(ctx context.Context, docs []domain.SearchDocument) error {
	if len(docs) == 0 {
		return nil
	}

	orgOrder := make([]string, 0, 1)
	byOrg := make(map[string][]driver.MeiliDocument)
	for _, doc := range docs {
		if _, ok := byOrg[doc.OrgID]; !ok {
			orgOrder = append(orgOrder, doc.OrgID)
		}
		byOrg[doc.OrgID] = append(byOrg[doc.OrgID], toMeiliDocument(doc))
	}

	for _, orgID := range orgOrder {
		indexName := g.IndexName(orgID)
		if err := g.ensureIndex(ctx, indexName); err != nil {
			return &domain.SearchEngineError{
				Op:  "IndexDocuments",
				Err: err.Error(),
			}
		}
		if err := g.driver.IndexDocuments(ctx, indexName, byOrg[orgID]); err != nil {
			return &domain.SearchEngineError{
				Op:  "IndexDocuments",
				Err: err.Error(),
			}
		}
	}

	return nil
}

// DeleteDocuments removes documents, grouped per tenant index.
func (g *SearchEngineGateway) DeleteDocuments(ctx context.Context, refs []domain.DocumentRef) error {
	if len(refs) == 0 {
		return nil
	}

	orgOrder := make([]string, 0, 1)
	byOrg := make(map[string][]string)
	for _, ref := range refs {
		if _, ok := byOrg[ref.OrgID]; !ok {
			orgOrder = append(orgOrder, ref.OrgID)
		}
		byOrg[ref.OrgID] = append(byOrg[ref.OrgID], driver.EncodeDocumentID(ref.OrgID, ref.ID))
	}

	for _, orgID := range orgOrder {
		if err := g.driver.DeleteDocuments(ctx, g.IndexName(orgID), byOrg[orgID]); err != nil {
			return &domain.SearchEngineError{
				Op:  "DeleteDocuments",
				Err: err.Error(),
			}
		}
	}

	return nil
}

// ClearOrg empties a tenant index. The driver already treats a missing index as empty.
func (g *SearchEngineGateway) ClearOrg(ctx context.Context, orgID string) error {
	if err := g.driver.DeleteAllDocuments(ctx, g.IndexName(orgID)); err != nil {
		return &domain.SearchEngineError{
			Op:  "ClearOrg",
			Err: err.Error(),
		}
	}
	return nil
}

func (g *SearchEngineGateway) Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchResult, error) {
	trimmed := strings.TrimSpace(query.Q)
	if utf8.RuneCountInString(trimmed) < domain.MinQueryLength {
		return domain.EmptySearchResult(), nil
	}

	indexName := g.IndexName(query.OrgID)
	if err := g.ensureIndex(ctx, indexName); err != nil {
		return nil, &domain.SearchEngineError{
			Op:  "Search",
			Err: err.Error(),
		}
	}

	filters := driver.BuildExactFilters(
		driver.FilterField{Name: "orgId", Value: query.OrgID},
		driver.FilterField{Name: "locale", Value: query.Locale},
		driver.FilterField{Name: "type", Value: string(query.Type)},
		driver.FilterField{Name: "categoryId", Value: query.CategoryID},
		driver.FilterField{Name: "tagIds", Value: query.TagID},
		driver.FilterField{Name: "authorId", Value: query.AuthorID},
	)

	resp, err := g.driver.Search(ctx, indexName, driver.MeiliSearchRequest{
		Query:            trimmed,
		Filter:           filters,
		Sort:             []string{"publishedAt:desc"},
		Limit:            int64(query.EffectiveLimit()),
		Offset:           int64(query.EffectiveOffset()),
		HighlightFields:  highlightFields,
		HighlightPreTag:  g.preTag,
		HighlightPostTag: g.postTag,
	})
	if err != nil {
		return nil, &domain.SearchEngineError{
			Op:  "Search",
			Err: err.Error(),
		}
	}

	items := make([]domain.SearchResultItem, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		items = append(items, toResultItem(hit))
	}

	total := int(resp.EstimatedTotalHits)
	if total < len(items) {
		total = len(items)
	}
	return &domain.SearchResult{Items: items, Total: total}, nil
}

// Health maps the engine status: "available" is ok, anything else degraded, transport failure error.
func (g *SearchEngineGateway) Health(ctx context.Context) domain.ProviderHealth {
	status, err := g.driver.Health(ctx)
	if err != nil {
		return domain.ProviderHealth{Status: domain.ProviderStatusError, Details: err.Error()}
	}
	if status == "available" {
		return domain.ProviderHealth{Status: domain.ProviderStatusOK}
	}
	return domain.ProviderHealth{Status: domain.ProviderStatusDegraded, Details: status}
}
