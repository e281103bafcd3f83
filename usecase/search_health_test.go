package usecase

import (
	"context"
	"testing"

	"cms-search/domain"

	"github.com/stretchr/testify/assert"
)

func TestSearchHealthUsecase_Execute(t *testing.T) {
	f := newFixture()

	out := NewSearchHealthUsecase(staticSource{f.local}).Execute(context.Background())
	assert.Equal(t, "local", out.Provider)
	assert.Equal(t, domain.ProviderStatusOK, out.Status)
	assert.Equal(t, "no external search provider configured", out.Details)

	out = NewSearchHealthUsecase(staticSource{failingProvider{}}).Execute(context.Background())
	assert.Equal(t, "remote", out.Provider)
	assert.Equal(t, domain.ProviderStatusOK, out.Status)
}
