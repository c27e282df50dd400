package ports

import (
	"context"

	"fx-rate-proxy/internal/domain/model"
)

//go:generate mockgen -source=provider.go -destination=../../mocks/mock_provider.go -package=mocks

// RateProvider is an upstream rate source. FetchRate never returns an error:
// failures come back as a ProviderResult with Err set. Providers that quote
// a converted amount instead of a rate derive the rate from amount.
type RateProvider interface {
	Name() string
	FetchRate(ctx context.Context, pair model.CurrencyPair, amount float64) model.ProviderResult
}
