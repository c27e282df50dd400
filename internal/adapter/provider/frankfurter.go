package provider

import (
	"context"
	"fmt"
	"net/url"

	"fx-rate-proxy/internal/domain/model"
	"fx-rate-proxy/pkg/logger"
)

const FrankfurterName = "frankfurter"

// Frankfurter asks the Frankfurter API for the latest rate of a pair. It
// ignores the amount.
type Frankfurter struct {
	client *apiClient
	log    *logger.Logger
}

type frankfurterResponse struct {
	Amount float64             `json:"amount"`
	Base   string              `json:"base"`
	Date   string              `json:"date"`
	Rates  map[string]*float64 `json:"rates"`
}

func NewFrankfurter(opts Options, log *logger.Logger) *Frankfurter {
	return &Frankfurter{
		client: newAPIClient(opts, log),
		log:    log.With("provider", FrankfurterName),
	}
}

func (f *Frankfurter) Name() string {
	return FrankfurterName
}

func (f *Frankfurter) FetchRate(ctx context.Context, pair model.CurrencyPair, _ float64) model.ProviderResult {
	f.log.Debug("Fetching rate", "pair", pair.String())

	query := url.Values{}
	query.Set("from", pair.Origin.String())
	query.Set("to", pair.Target.String())

	var apiResp frankfurterResponse
	if err := f.client.getJSON(ctx, "/latest", query, &apiResp); err != nil {
		return f.fail(pair, err)
	}

	rate := apiResp.Rates[pair.Target.String()]
	if rate == nil {
		return f.fail(pair, fmt.Errorf("rate not found for currency: %s", pair.Target))
	}

	f.log.Info("Fetched rate", "pair", pair.String(), "rate", *rate)
	return model.RateResult(FrankfurterName, *rate)
}

func (f *Frankfurter) fail(pair model.CurrencyPair, err error) model.ProviderResult {
	f.log.Warn("Rate fetch failed", "pair", pair.String(), "error", err)
	return model.FailedResult(FrankfurterName, err)
}
