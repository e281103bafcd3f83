package usecase

import (
	"context"
	"errors"
	"fmt"

	"cms-search/logger"
	"cms-search/port"
	"cms-search/search_engine"
)

type orgReindexer interface {
	Execute(ctx context.Context, orgID string) (*ReindexResult, error)
}

// BackfillUsecase warms the in-memory local index after a restart by reindexing every
// organization. A remote engine keeps its documents, so it is left alone.
type BackfillUsecase struct {
	orgs      port.OrganizationLister
	reindex   orgReindexer
	providers port.ProviderSource
}

type BackfillResult struct {
	Orgs    int
	Indexed int
	Failed  []string
	Skipped bool
}

func NewBackfillUsecase(orgs port.OrganizationLister, reindex *ReindexOrgUsecase, providers port.ProviderSource) *BackfillUsecase {
	return &BackfillUsecase{orgs: orgs, reindex: reindex, providers: providers}
}

// Execute keeps going past a failing organization and reports all failures together.
// It does nothing when the active provider is not the local one.
func (u *BackfillUsecase) Execute(ctx context.Context) (*BackfillResult, error) {
	if u.providers != nil && u.providers.Provider().Name() != search_engine.ProviderNameLocal {
		return &BackfillResult{Skipped: true}, nil
	}

	ids, err := u.orgs.ListOrganizationIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}

	result := &BackfillResult{Orgs: len(ids)}
	var errs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		r, err := u.reindex.Execute(ctx, id)
		if err != nil {
			logger.GlobalContext.LogError(logger.WithOrgID(ctx, id), "backfill", err)
			result.Failed = append(result.Failed, id)
			errs = append(errs, fmt.Errorf("org %s: %w", id, err))
			continue
		}
		result.Indexed += r.Indexed
	}
	return result, errors.Join(errs...)
}
