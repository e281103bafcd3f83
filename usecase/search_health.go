package usecase

import (
	"context"

	"cms-search/domain"
	"cms-search/port"
)

type SearchHealthOutput struct {
	Provider string                `json:"provider"`
	Status   domain.ProviderStatus `json:"status"`
	Details  string                `json:"details,omitempty"`
}

// SearchHealthUsecase reports the state of whichever provider is active now.
type SearchHealthUsecase struct {
	providers port.ProviderSource
}

func NewSearchHealthUsecase(providers port.ProviderSource) *SearchHealthUsecase {
	return &SearchHealthUsecase{providers: providers}
}

func (u *SearchHealthUsecase) Execute(ctx context.Context) SearchHealthOutput {
	provider := u.providers.Provider()
	out := SearchHealthOutput{Provider: provider.Name(), Status: domain.ProviderStatusOK}

	if checker, ok := provider.(port.HealthChecker); ok {
		health := checker.Health(ctx)
		out.Status = health.Status
		out.Details = health.Details
	}
	return out
}
