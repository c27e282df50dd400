package provider

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"fx-rate-proxy/internal/domain/model"
	"fx-rate-proxy/pkg/logger"
)

const ExchangeRateHostName = "exchangerate.host"

// ExchangeRateHost uses the exchangerate.host /convert endpoint, which
// returns a converted amount rather than a rate. The rate is derived as
// result / amount, and is zero when amount is zero.
type ExchangeRateHost struct {
	client *apiClient
	apiKey string
	log    *logger.Logger
}

type exchangeRateHostResponse struct {
	Success *bool    `json:"success,omitempty"`
	Result  *float64 `json:"result"`
	Error   *struct {
		Code int    `json:"code"`
		Type string `json:"type"`
		Info string `json:"info"`
	} `json:"error,omitempty"`
}

func NewExchangeRateHost(opts Options, log *logger.Logger) *ExchangeRateHost {
	return &ExchangeRateHost{
		client: newAPIClient(opts, log),
		apiKey: opts.APIKey,
		log:    log.With("provider", ExchangeRateHostName),
	}
}

func (e *ExchangeRateHost) Name() string {
	return ExchangeRateHostName
}

func (e *ExchangeRateHost) FetchRate(ctx context.Context, pair model.CurrencyPair, amount float64) model.ProviderResult {
	e.log.Debug("Fetching conversion", "pair", pair.String(), "amount", amount)

	query := url.Values{}
	query.Set("from", pair.Origin.String())
	query.Set("to", pair.Target.String())
	query.Set("amount", strconv.FormatFloat(amount, 'f', -1, 64))
	if e.apiKey != "" {
		query.Set("access_key", e.apiKey)
	}

	var apiResp exchangeRateHostResponse
	if err := e.client.getJSON(ctx, "/convert", query, &apiResp); err != nil {
		return e.fail(pair, err)
	}

	// An explicit failure flag wins over any result in the same body.
	if apiResp.Success != nil && !*apiResp.Success {
		return e.fail(pair, apiFailure(apiResp))
	}
	if apiResp.Result == nil {
		return e.fail(pair, errors.New("response has no result"))
	}

	rate := 0.0
	if amount != 0 {
		rate = *apiResp.Result / amount
	}

	e.log.Info("Fetched rate", "pair", pair.String(), "rate", rate)
	return model.RateResult(ExchangeRateHostName, rate)
}

func (e *ExchangeRateHost) fail(pair model.CurrencyPair, err error) model.ProviderResult {
	e.log.Warn("Rate fetch failed", "pair", pair.String(), "error", err)
	return model.FailedResult(ExchangeRateHostName, err)
}

func apiFailure(resp exchangeRateHostResponse) error {
	if resp.Error == nil {
		return errors.New("API reported failure")
	}
	return fmt.Errorf("API reported failure: %d %s: %s", resp.Error.Code, resp.Error.Type, resp.Error.Info)
}
