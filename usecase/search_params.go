package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"cms-search/domain"
	"cms-search/port"
	"cms-search/utils"
)

// SearchContentInput carries raw public search parameters.
// Limit and Offset stay strings so that an explicit bad value can be told apart from an omitted one.
type SearchContentInput struct {
	OrgSlug  string
	Q        string
	Locale   string
	Type     string
	Category string
	Tag      string
	Author   string
	Limit    string
	Offset   string
}

type searchRequestParser struct {
	orgs      port.OrganizationRepository
	taxonomy  port.TaxonomyRepository
	sanitizer *utils.QuerySanitizer
}

func newSearchRequestParser(orgs port.OrganizationRepository, taxonomy port.TaxonomyRepository) *searchRequestParser {
	return &searchRequestParser{
		orgs:      orgs,
		taxonomy:  taxonomy,
		sanitizer: utils.NewQuerySanitizer(utils.DefaultSecurityConfig()),
	}
}

// parse resolves the tenant and turns raw parameters into a validated query.
func (p *searchRequestParser) parse(ctx context.Context, in SearchContentInput) (*domain.Organization, domain.SearchQuery, error) {
	org, err := p.orgs.GetOrganizationBySlug(ctx, strings.TrimSpace(in.OrgSlug))
	if err != nil {
		return nil, domain.SearchQuery{}, err
	}

	q, err := p.sanitizer.SanitizeQuery(in.Q)
	if err != nil {
		var secErr *utils.SecurityError
		if errors.As(err, &secErr) {
			return nil, domain.SearchQuery{}, &domain.ValidationError{Field: "q", Message: secErr.Message}
		}
		return nil, domain.SearchQuery{}, err
	}
	if q == "" {
		return nil, domain.SearchQuery{}, &domain.ValidationError{Field: "q", Message: "search query is required"}
	}
	if utf8.RuneCountInString(q) < domain.MinQueryLength {
		return nil, domain.SearchQuery{}, &domain.ValidationError{
			Field:   "q",
			Message: fmt.Sprintf("search query must contain at least %d characters", domain.MinQueryLength),
		}
	}

	limit := domain.DefaultSearchLimit
	if raw := strings.TrimSpace(in.Limit); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > domain.MaxSearchLimit {
			return nil, domain.SearchQuery{}, &domain.ValidationError{
				Field:   "limit",
				Message: fmt.Sprintf("invalid limit (1-%d)", domain.MaxSearchLimit),
			}
		}
		limit = n
	}

	offset := 0
	if raw := strings.TrimSpace(in.Offset); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, domain.SearchQuery{}, &domain.ValidationError{Field: "offset", Message: "invalid offset"}
		}
		offset = n
	}

	var contentType domain.ContentType
	if raw := strings.TrimSpace(in.Type); raw != "" {
		contentType = domain.ContentType(raw)
		if !contentType.Valid() {
			return nil, domain.SearchQuery{}, &domain.ValidationError{Field: "type", Message: "must be article or page"}
		}
	}

	locale := strings.TrimSpace(in.Locale)
	if locale != "" && len(org.SupportedLocales) > 0 && !org.SupportsLocale(locale) {
		return nil, domain.SearchQuery{}, &domain.ValidationError{Field: "locale", Message: "locale not supported by this organization"}
	}

	categoryID, err := p.resolveTaxon(ctx, org.ID, in.Category, p.taxonomy.FindCategory)
	if err != nil {
		return nil, domain.SearchQuery{}, err
	}
	tagID, err := p.resolveTaxon(ctx, org.ID, in.Tag, p.taxonomy.FindTag)
	if err != nil {
		return nil, domain.SearchQuery{}, err
	}

	authorID := strings.TrimSpace(in.Author)
	filters := []struct{ field, value string }{
		{"category", categoryID},
		{"tag", tagID},
		{"author", authorID},
	}
	for _, f := range filters {
		if f.value == "" {
			continue
		}
		if err := domain.ValidateFilterValue(f.field, f.value); err != nil {
			return nil, domain.SearchQuery{}, err
		}
	}

	return org, domain.SearchQuery{
		OrgID:      org.ID,
		Q:          q,
		Locale:     domain.ResolveLocale(org, locale),
		Type:       contentType,
		CategoryID: categoryID,
		TagID:      tagID,
		AuthorID:   authorID,
		Limit:      limit,
		Offset:     offset,
	}, nil
}

type taxonFinder func(ctx context.Context, orgID, idOrSlug string) (*domain.Taxon, error)

// resolveTaxon maps an id or slug to an id. An unknown value yields "", which leaves the filter off.
func (p *searchRequestParser) resolveTaxon(ctx context.Context, orgID, raw string, find taxonFinder) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	taxon, err := find(ctx, orgID, raw)
	if err != nil {
		return "", err
	}
	if taxon == nil {
		return "", nil
	}
	return taxon.ID, nil
}
