package search_engine

import (
	"sort"
	"strings"

	"cms-search/domain"
)

const (
	titleWeight   = 5
	excerptWeight = 2
	bodyWeight    = 1
)

// ScoreFields sums per-word substring hits over already-normalized fields.
func ScoreFields(words []string, title, excerpt, body string) int {
	score := 0
	for _, w := range words {
		if strings.Contains(title, w) {
			score += titleWeight
		}
		if strings.Contains(excerpt, w) {
			score += excerptWeight
		}
		if strings.Contains(body, w) {
			score += bodyWeight
		}
	}
	return score
}

// Scored is a candidate hit with the key used to break score ties.
type Scored struct {
	Doc      domain.SearchDocument
	Score    int
	TieBreak string
}

// SortScored orders by score desc then tie-break desc. Equal keys keep their input order.
func SortScored(hits []Scored) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].TieBreak > hits[j].TieBreak
	})
}

// Paginate slices sorted hits; Total is the count before slicing.
func Paginate(hits []Scored, limit, offset int) *domain.SearchResult {
	total := len(hits)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	items := make([]domain.SearchResultItem, 0, end-offset)
	for _, h := range hits[offset:end] {
		items = append(items, domain.SearchResultItem{
			Doc:   h.Doc,
			Score: float64(h.Score),
		})
	}
	return &domain.SearchResult{Items: items, Total: total}
}
