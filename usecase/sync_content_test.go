package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"cms-search/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncContentUsecase_Sync(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		mutate    func(c *domain.Content)
		wantIndex bool
	}{
		{name: "published", mutate: func(c *domain.Content) {}, wantIndex: true},
		{name: "draft", mutate: func(c *domain.Content) { c.Status = domain.StatusDraft }, wantIndex: false},
		{name: "scheduled in the future", mutate: func(c *domain.Content) {
			c.Schedule.PublishAt = timePtr(fixedNow.Add(time.Second))
		}, wantIndex: false},
		{name: "publish boundary is inclusive", mutate: func(c *domain.Content) {
			c.Schedule.PublishAt = timePtr(fixedNow)
		}, wantIndex: true},
		{name: "unpublish boundary is exclusive", mutate: func(c *domain.Content) {
			c.Schedule.UnpublishAt = timePtr(fixedNow)
		}, wantIndex: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			u := NewSyncContentUsecase(staticSource{f.local}, "https://cms.example.com", WithClock(fixedClock))

			c := article("a1", "Balade à vélo", "", fixedNow.Add(-24*time.Hour))
			require.NoError(t, u.Sync(ctx, f.org, c))
			require.Equal(t, 1, f.local.Len())

			tt.mutate(c)
			require.NoError(t, u.Sync(ctx, f.org, c))
			if tt.wantIndex {
				assert.Equal(t, 1, f.local.Len())
			} else {
				assert.Equal(t, 0, f.local.Len())
			}
		})
	}
}

func TestSyncContentUsecase_Delete(t *testing.T) {
	f := newFixture()
	u := NewSyncContentUsecase(staticSource{f.local}, "", WithClock(fixedClock))

	require.NoError(t, u.Sync(context.Background(), f.org, article("a1", "Titre", "", fixedNow)))
	require.NoError(t, u.Delete(context.Background(), domain.DocumentRef{ID: "a1", OrgID: "org-1"}))
	assert.Equal(t, 0, f.local.Len())
}

func TestSyncContentUsecase_SyncErrorWrapsUnavailable(t *testing.T) {
	f := newFixture()
	u := NewSyncContentUsecase(staticSource{failingProvider{}}, "", WithClock(fixedClock))

	err := u.Sync(context.Background(), f.org, article("a1", "Titre", "", fixedNow))
	assert.True(t, errors.Is(err, domain.ErrSearchUnavailable))
}

func TestSyncContentUsecase_AsyncNeverFails(t *testing.T) {
	f := newFixture()
	u := NewSyncContentUsecase(staticSource{f.local}, "", WithClock(fixedClock), WithSyncTimeout(time.Second))

	u.SyncAsync(f.org, article("a1", "Titre", "", fixedNow))
	u.Wait()
	assert.Equal(t, 1, f.local.Len())

	u.DeleteAsync(domain.DocumentRef{ID: "a1", OrgID: "org-1"})
	u.Wait()
	assert.Equal(t, 0, f.local.Len())

	failing := NewSyncContentUsecase(staticSource{failingProvider{}}, "", WithClock(fixedClock))
	assert.NotPanics(t, func() {
		failing.SyncAsync(f.org, article("a2", "Titre", "", fixedNow))
		failing.DeleteAsync(domain.DocumentRef{ID: "a2", OrgID: "org-1"})
		failing.Wait()
	})
}

func TestSyncContentUsecase_AsyncRecoversPanics(t *testing.T) {
	u := NewSyncContentUsecase(staticSource{nil}, "", WithClock(fixedClock))

	assert.NotPanics(t, func() {
		u.DeleteAsync(domain.DocumentRef{ID: "a1", OrgID: "org-1"})
		u.Wait()
	})
}
