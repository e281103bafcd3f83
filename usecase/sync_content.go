package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cms-search/domain"
	"cms-search/logger"
	"cms-search/port"
	appOtel "cms-search/utils/otel"
)

// DefaultSyncTimeout bounds one detached sync.
const DefaultSyncTimeout = 15 * time.Second

// SyncContentUsecase keeps the active search provider in step with content mutations.
type SyncContentUsecase struct {
	providers port.ProviderSource
	baseURL   string
	timeout   time.Duration
	now       func() time.Time
	inflight  sync.WaitGroup
}

type SyncOption func(*SyncContentUsecase)

// WithClock replaces time.Now when deciding publication state.
func WithClock(now func() time.Time) SyncOption {
	return func(u *SyncContentUsecase) {
		u.now = now
	}
}

func WithSyncTimeout(timeout time.Duration) SyncOption {
	return func(u *SyncContentUsecase) {
		if timeout > 0 {
			u.timeout = timeout
		}
	}
}

func NewSyncContentUsecase(providers port.ProviderSource, baseURL string, opts ...SyncOption) *SyncContentUsecase {
	u := &SyncContentUsecase{
		providers: providers,
		baseURL:   baseURL,
		timeout:   DefaultSyncTimeout,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Sync indexes content that is publicly visible now and removes everything else.
func (u *SyncContentUsecase) Sync(ctx context.Context, org *domain.Organization, content *domain.Content) error {
	provider := u.providers.Provider()

	if !domain.IsCurrentlyPublished(content, u.now()) {
		if err := provider.DeleteDocuments(ctx, []domain.DocumentRef{content.Ref()}); err != nil {
			appOtel.Metrics.RecordError(ctx, "sync")
			return fmt.Errorf("remove unpublished content %s: %w", content.ID, err)
		}
		appOtel.Metrics.RecordDeleted(ctx, provider.Name(), 1)
		return nil
	}

	doc := domain.NewSearchDocument(org, content, u.baseURL)
	if err := provider.IndexDocuments(ctx, []domain.SearchDocument{doc}); err != nil {
		appOtel.Metrics.RecordError(ctx, "sync")
		return fmt.Errorf("index content %s: %w", content.ID, err)
	}
	appOtel.Metrics.RecordIndexed(ctx, provider.Name(), 1)
	return nil
}

// Delete removes the index entry of content that no longer exists.
func (u *SyncContentUsecase) Delete(ctx context.Context, ref domain.DocumentRef) error {
	provider := u.providers.Provider()
	if err := provider.DeleteDocuments(ctx, []domain.DocumentRef{ref}); err != nil {
		appOtel.Metrics.RecordError(ctx, "delete")
		return fmt.Errorf("delete content %s: %w", ref.ID, err)
	}
	appOtel.Metrics.RecordDeleted(ctx, provider.Name(), 1)
	return nil
}

// SyncAsync runs Sync detached from the caller. Failures are logged, never returned.
func (u *SyncContentUsecase) SyncAsync(org *domain.Organization, content *domain.Content) {
	ctx := logger.WithContent(logger.WithOrgID(context.Background(), content.OrgID), string(content.Type), content.ID)
	u.detach(ctx, "search_sync", func(ctx context.Context) error {
		return u.Sync(ctx, org, content)
	})
}

// DeleteAsync runs Delete detached from the caller. Failures are logged, never returned.
func (u *SyncContentUsecase) DeleteAsync(ref domain.DocumentRef) {
	ctx := logger.WithContent(logger.WithOrgID(context.Background(), ref.OrgID), "", ref.ID)
	u.detach(ctx, "search_delete", func(ctx context.Context) error {
		return u.Delete(ctx, ref)
	})
}

// Wait blocks until every detached sync has finished.
func (u *SyncContentUsecase) Wait() {
	u.inflight.Wait()
}

func (u *SyncContentUsecase) detach(ctx context.Context, operation string, fn func(context.Context) error) {
	u.inflight.Add(1)
	go func() {
		defer u.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				appOtel.Metrics.RecordError(ctx, operation)
				logger.GlobalContext.LogError(ctx, operation, fmt.Errorf("panic: %v", r))
			}
		}()

		runCtx, cancel := context.WithTimeout(ctx, u.timeout)
		defer cancel()

		start := time.Now()
		if err := fn(runCtx); err != nil {
			logger.GlobalContext.LogError(ctx, operation, err)
			return
		}
		logger.GlobalContext.LogDurationTime(ctx, operation, time.Since(start))
	}()
}
