package search_engine

import (
	"context"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"cms-search/domain"
	"cms-search/port"
	"cms-search/tokenize"
)

// ProviderNameLocal identifies the in-process fallback provider.
const ProviderNameLocal = "local"

const localHealthDetails = "no external search provider configured"

type localEntry struct {
	doc     domain.SearchDocument
	title   string
	excerpt string
	body    string
	seq     uint64
}

// LocalProvider keeps documents in memory and ranks them with ScoreFields.
type LocalProvider struct {
	highlighter *tokenize.Highlighter
	mu          sync.RWMutex
	entries     map[string]localEntry
	nextSeq     uint64
}

var (
	_ port.SearchProvider = (*LocalProvider)(nil)
	_ port.OrgClearer     = (*LocalProvider)(nil)
	_ port.HealthChecker  = (*LocalProvider)(nil)
)

// NewLocalProvider accepts a nil highlighter; hits then carry no highlights.
func NewLocalProvider(highlighter *tokenize.Highlighter) *LocalProvider {
	return &LocalProvider{
		highlighter: highlighter,
		entries:     make(map[string]localEntry),
	}
}

func (p *LocalProvider) Name() string {
	return ProviderNameLocal
}

// IndexDocuments upserts by "{orgId}:{id}". Re-indexing keeps the original insertion position.
func (p *LocalProvider) IndexDocuments(_ context.Context, docs []domain.SearchDocument) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, doc := range docs {
		key := doc.Key()
		seq := p.nextSeq + 1
		if existing, ok := p.entries[key]; ok {
			seq = existing.seq
		} else {
			p.nextSeq = seq
		}
		p.entries[key] = localEntry{
			doc:     doc,
			title:   tokenize.Normalize(doc.Title),
			excerpt: tokenize.Normalize(doc.Excerpt),
			body:    tokenize.Normalize(doc.ContentText),
			seq:     seq,
		}
	}
	return nil
}

func (p *LocalProvider) DeleteDocuments(_ context.Context, refs []domain.DocumentRef) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, ref := range refs {
		delete(p.entries, ref.Key())
	}
	return nil
}

func (p *LocalProvider) ClearOrg(_ context.Context, orgID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for key, e := range p.entries {
		if e.doc.OrgID == orgID {
			delete(p.entries, key)
		}
	}
	return nil
}

func (p *LocalProvider) Search(_ context.Context, query domain.SearchQuery) (*domain.SearchResult, error) {
	trimmed := strings.TrimSpace(query.Q)
	if utf8.RuneCountInString(trimmed) < domain.MinQueryLength {
		return domain.EmptySearchResult(), nil
	}

	words := tokenize.QueryWords(trimmed)
	if len(words) == 0 {
		return domain.EmptySearchResult(), nil
	}

	p.mu.RLock()
	candidates := make([]localEntry, 0)
	for _, e := range p.entries {
		if query.Matches(e.doc) {
			candidates = append(candidates, e)
		}
	}
	p.mu.RUnlock()

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].seq < candidates[j].seq
	})

	hits := make([]Scored, 0, len(candidates))
	for _, e := range candidates {
		score := ScoreFields(words, e.title, e.excerpt, e.body)
		if score == 0 {
			continue
		}
		hits = append(hits, Scored{Doc: e.doc, Score: score, TieBreak: e.doc.PublishedAt})
	}

	SortScored(hits)
	result := Paginate(hits, query.EffectiveLimit(), query.EffectiveOffset())
	p.highlight(result.Items, words)
	return result, nil
}

func (p *LocalProvider) highlight(items []domain.SearchResultItem, words []string) {
	if p.highlighter == nil {
		return
	}
	for i := range items {
		d := items[i].Doc
		var hl domain.Highlights
		title, okTitle := p.highlighter.Mark(d.Title, words)
		excerpt, okExcerpt := p.highlighter.Mark(d.Excerpt, words)
		body, okBody := p.highlighter.Mark(d.ContentText, words)
		if !okTitle && !okExcerpt && !okBody {
			continue
		}
		hl.Title, hl.Excerpt, hl.ContentText = title, excerpt, body
		items[i].Highlights = &hl
	}
}

func (p *LocalProvider) Health(_ context.Context) domain.ProviderHealth {
	return domain.ProviderHealth{
		Status:  domain.ProviderStatusOK,
		Details: localHealthDetails,
	}
}

// Len reports the number of indexed documents.
func (p *LocalProvider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}
