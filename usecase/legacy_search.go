package usecase

import (
	"context"
	"fmt"
	"time"

	"cms-search/domain"
	"cms-search/port"
	"cms-search/search_engine"
	"cms-search/tokenize"
)

// legacyIndexLimit caps how many published articles the per-request index considers.
const legacyIndexLimit = 500

// LegacySearchUsecase serves the v1 article search from the content store directly.
// It builds a throwaway index per request, so it works without any search provider.
type LegacySearchUsecase struct {
	parser   *searchRequestParser
	contents port.ContentRepository
	baseURL  string
	now      func() time.Time
}

type LegacySearchOutput struct {
	Items []domain.DisplayItem `json:"items"`
	Total int                  `json:"total"`
	Query string               `json:"query"`
	Limit int                  `json:"limit"`
}

func NewLegacySearchUsecase(
	orgs port.OrganizationRepository,
	taxonomy port.TaxonomyRepository,
	contents port.ContentRepository,
	baseURL string,
) *LegacySearchUsecase {
	return &LegacySearchUsecase{
		parser:   newSearchRequestParser(orgs, taxonomy),
		contents: contents,
		baseURL:  baseURL,
		now:      time.Now,
	}
}

// Execute serves the v1 route, which ignores offset and locale: articles of every locale match.
func (u *LegacySearchUsecase) Execute(ctx context.Context, in SearchContentInput) (*LegacySearchOutput, error) {
	in.Offset, in.Locale = "", ""
	org, query, err := u.parser.parse(ctx, in)
	if err != nil {
		return nil, err
	}
	query.Locale = ""

	result, err := u.Search(ctx, org, query)
	if err != nil {
		return nil, err
	}

	items := make([]domain.DisplayItem, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, domain.NewDisplayItem(item))
	}
	return &LegacySearchOutput{
		Items: items,
		Total: result.Total,
		Query: query.Q,
		Limit: query.EffectiveLimit(),
	}, nil
}

type legacyEntry struct {
	doc      domain.SearchDocument
	title    string
	excerpt  string
	text     string
	tieBreak string
}

// Search ranks published articles of org. Offset is not supported and pages are never returned.
func (u *LegacySearchUsecase) Search(ctx context.Context, org *domain.Organization, query domain.SearchQuery) (*domain.SearchResult, error) {
	words := tokenize.WithoutStopWords(tokenize.QueryWords(query.Q))
	if len(words) == 0 {
		return domain.EmptySearchResult(), nil
	}

	entries, err := u.buildIndex(ctx, org)
	if err != nil {
		return nil, err
	}

	hits := make([]search_engine.Scored, 0, len(entries))
	for _, e := range entries {
		if !query.Matches(e.doc) {
			continue
		}
		score := search_engine.ScoreFields(words, e.title, e.excerpt, e.text)
		if score == 0 {
			continue
		}
		hits = append(hits, search_engine.Scored{Doc: e.doc, Score: score, TieBreak: e.tieBreak})
	}

	search_engine.SortScored(hits)
	return search_engine.Paginate(hits, query.EffectiveLimit(), 0), nil
}

func (u *LegacySearchUsecase) buildIndex(ctx context.Context, org *domain.Organization) ([]legacyEntry, error) {
	contents, err := u.contents.ListContents(ctx, org.ID, port.ContentFilter{
		Type:   domain.ContentTypeArticle,
		Status: domain.StatusPublished,
		Limit:  legacyIndexLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("list articles for legacy search: %w", err)
	}

	now := u.now()
	entries := make([]legacyEntry, 0, len(contents))
	for _, c := range contents {
		if !domain.IsCurrentlyPublished(c, now) {
			continue
		}
		doc := domain.NewSearchDocument(org, c, u.baseURL)

		tieBreak := doc.PublishedAt
		if tieBreak == "" && !c.UpdatedAt.IsZero() {
			tieBreak = domain.FormatPublishedAt(&c.UpdatedAt)
		}

		entries = append(entries, legacyEntry{
			doc:      doc,
			title:    tokenize.NormalizeForLegacyIndex(doc.Title),
			excerpt:  tokenize.NormalizeForLegacyIndex(doc.Excerpt),
			text:     tokenize.NormalizeForLegacyIndex(doc.Title + " " + doc.Excerpt + " " + doc.ContentText),
			tieBreak: tieBreak,
		})
	}
	return entries, nil
}
