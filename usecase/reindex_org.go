package usecase

import (
	"context"
	"fmt"
	"time"

	"cms-search/domain"
	"cms-search/logger"
	"cms-search/port"
	appOtel "cms-search/utils/otel"

	"golang.org/x/sync/errgroup"
)

// DefaultIndexBatchSize is the number of documents sent per IndexDocuments call.
const DefaultIndexBatchSize = 200

type ReindexOrgUsecase struct {
	orgs      port.OrganizationRepository
	contents  port.ContentRepository
	providers port.ProviderSource
	baseURL   string
	batchSize int
	now       func() time.Time
}

type ReindexResult struct {
	OrgID    string `json:"orgId"`
	Provider string `json:"provider"`
	Indexed  int    `json:"indexed"`
	Skipped  int    `json:"skipped"`
	Batches  int    `json:"batches"`
}

func NewReindexOrgUsecase(
	orgs port.OrganizationRepository,
	contents port.ContentRepository,
	providers port.ProviderSource,
	baseURL string,
	batchSize int,
) *ReindexOrgUsecase {
	if batchSize <= 0 {
		batchSize = DefaultIndexBatchSize
	}
	return &ReindexOrgUsecase{
		orgs:      orgs,
		contents:  contents,
		providers: providers,
		baseURL:   baseURL,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// Execute rebuilds the tenant's index from the content store.
func (u *ReindexOrgUsecase) Execute(ctx context.Context, orgID string) (*ReindexResult, error) {
	start := time.Now()
	org, err := u.orgs.GetOrganizationByID(ctx, orgID)
	if err != nil {
		return nil, err
	}

	provider := u.providers.Provider()
	ctx = logger.WithProvider(logger.WithOrgID(ctx, org.ID), provider.Name())

	var pages, articles []*domain.Content
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pages, err = u.contents.ListContents(gctx, org.ID, port.ContentFilter{
			Type:   domain.ContentTypePage,
			Status: domain.StatusPublished,
		})
		return err
	})
	g.Go(func() error {
		var err error
		articles, err = u.contents.ListContents(gctx, org.ID, port.ContentFilter{
			Type:   domain.ContentTypeArticle,
			Status: domain.StatusPublished,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		appOtel.Metrics.RecordError(ctx, "reindex")
		return nil, fmt.Errorf("list contents for reindex: %w", err)
	}

	if clearer, ok := provider.(port.OrgClearer); ok {
		if err := clearer.ClearOrg(ctx, org.ID); err != nil {
			appOtel.Metrics.RecordError(ctx, "reindex")
			return nil, fmt.Errorf("clear org index: %w", err)
		}
	}

	now := u.now()
	result := &ReindexResult{OrgID: org.ID, Provider: provider.Name()}
	docs := make([]domain.SearchDocument, 0, len(pages)+len(articles))
	for _, c := range append(pages, articles...) {
		if !domain.IsCurrentlyPublished(c, now) {
			result.Skipped++
			continue
		}
		docs = append(docs, domain.NewSearchDocument(org, c, u.baseURL))
	}

	for begin := 0; begin < len(docs); begin += u.batchSize {
		end := min(begin+u.batchSize, len(docs))
		if err := provider.IndexDocuments(ctx, docs[begin:end]); err != nil {
			appOtel.Metrics.RecordError(ctx, "reindex")
			return nil, fmt.Errorf("index batch %d: %w", result.Batches+1, err)
		}
		result.Batches++
		result.Indexed += end - begin
		appOtel.Metrics.RecordIndexed(ctx, provider.Name(), end-begin)
	}

	elapsed := time.Since(start)
	appOtel.Metrics.RecordReindex(ctx, provider.Name(), elapsed.Seconds())
	logger.GlobalContext.WithContext(ctx).Info("reindex completed",
		"indexed", result.Indexed,
		"skipped", result.Skipped,
		"batches", result.Batches,
		"duration_ms", elapsed.Milliseconds(),
	)
	return result, nil
}
