package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cms-search/domain"
	"cms-search/logger"
	"cms-search/port"
	appOtel "cms-search/utils/otel"
)

// ProviderNameLegacy marks results served by the legacy article index.
const ProviderNameLegacy = "legacy"

type SearchContentOutput struct {
	Items    []domain.DisplayItem `json:"items"`
	Total    int                  `json:"total"`
	Query    string               `json:"query"`
	Limit    int                  `json:"limit"`
	Offset   int                  `json:"offset"`
	Provider string               `json:"provider"`
	Degraded bool                 `json:"degraded,omitempty"`
}

// SearchContentUsecase answers public full-text queries through the active provider.
type SearchContentUsecase struct {
	parser    *searchRequestParser
	providers port.ProviderSource
	fallback  *LegacySearchUsecase
}

// NewSearchContentUsecase accepts a nil fallback; provider failures are then returned as unavailable.
func NewSearchContentUsecase(
	orgs port.OrganizationRepository,
	taxonomy port.TaxonomyRepository,
	providers port.ProviderSource,
	fallback *LegacySearchUsecase,
) *SearchContentUsecase {
	return &SearchContentUsecase{
		parser:    newSearchRequestParser(orgs, taxonomy),
		providers: providers,
		fallback:  fallback,
	}
}

func (u *SearchContentUsecase) Execute(ctx context.Context, in SearchContentInput) (*SearchContentOutput, error) {
	org, query, err := u.parser.parse(ctx, in)
	if err != nil {
		return nil, err
	}

	provider := u.providers.Provider()
	ctx = logger.WithProvider(logger.WithOrgID(ctx, org.ID), provider.Name())

	start := time.Now()
	result, err := provider.Search(ctx, query)
	appOtel.Metrics.RecordSearch(ctx, provider.Name(), time.Since(start).Seconds())

	providerName := provider.Name()
	degraded := false
	if err != nil {
		appOtel.Metrics.RecordError(ctx, "search")
		if !errors.Is(err, domain.ErrSearchUnavailable) || u.fallback == nil {
			return nil, fmt.Errorf("search org %s: %w", org.ID, errors.Join(domain.ErrSearchUnavailable, err))
		}

		logger.GlobalContext.WithContext(ctx).Warn("search provider unavailable, serving legacy index", "err", err)
		appOtel.Metrics.RecordFallback(ctx)

		result, err = u.fallback.Search(ctx, org, query)
		if err != nil {
			return nil, fmt.Errorf("legacy search org %s: %w", org.ID, errors.Join(domain.ErrSearchUnavailable, err))
		}
		providerName = ProviderNameLegacy
		degraded = true
		query.Offset = 0
	}

	items := make([]domain.DisplayItem, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, domain.NewDisplayItem(item))
	}

	return &SearchContentOutput{
		Items:    items,
		Total:    result.Total,
		Query:    query.Q,
		Limit:    query.EffectiveLimit(),
		Offset:   query.EffectiveOffset(),
		Provider: providerName,
		Degraded: degraded,
	}, nil
}
