package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"fx-rate-proxy/internal/domain/model"
	"fx-rate-proxy/internal/domain/ports"
	"fx-rate-proxy/internal/metrics"
	"fx-rate-proxy/pkg/logger"
	"fx-rate-proxy/pkg/utils"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrMissingOrigin      = fmt.Errorf("%w: missing origin currency", ErrInvalidInput)
	ErrInvalidAmount      = fmt.Errorf("%w: invalid amount", ErrInvalidInput)
	ErrAllProvidersFailed = errors.New("all rate providers failed")
	ErrNonFiniteResult    = errors.New("conversion result is not finite")
)

const (
	resultPrecision = 6
	defaultAmount   = 1.0
)

var _ ports.ConversionService = (*RateResolver)(nil)

type ResolverConfig struct {
	DefaultTarget string
	// Coalesce shares one upstream fetch between concurrent misses.
	Coalesce bool
}

// RateResolver answers conversions from the cache, then the primary
// provider, then the fallback provider. Fresh rates are written back to the
// cache unrounded.
type RateResolver struct {
	cache         ports.RateCache
	primary       ports.RateProvider
	fallback      ports.RateProvider
	defaultTarget model.Currency
	coalesce      bool
	group         singleflight.Group
	metrics       *metrics.Metrics
	log           *logger.Logger
}

// NewRateResolver requires every dependency, including metrics.
func NewRateResolver(
	cache ports.RateCache,
	primary, fallback ports.RateProvider,
	cfg ResolverConfig,
	m *metrics.Metrics,
	log *logger.Logger,
) *RateResolver {
	return &RateResolver{
		cache:         cache,
		primary:       primary,
		fallback:      fallback,
		defaultTarget: model.NormalizeCurrency(cfg.DefaultTarget),
		coalesce:      cfg.Coalesce,
		metrics:       m,
		log:           log,
	}
}

func (r *RateResolver) ParseRequest(from, to, amount string) (model.ConversionRequest, error) {
	value, err := utils.ParseAmount(amount, defaultAmount)
	if err != nil {
		return model.ConversionRequest{}, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}

	request := model.ConversionRequest{
		From:   model.NormalizeCurrency(from),
		To:     model.NormalizeCurrency(to),
		Amount: value,
	}
	if request.From.IsEmpty() {
		return model.ConversionRequest{}, ErrMissingOrigin
	}
	if request.To.IsEmpty() {
		request.To = r.defaultTarget
	}

	return request, nil
}

func (r *RateResolver) Convert(ctx context.Context, request model.ConversionRequest) (*model.Conversion, error) {
	request.From = model.NormalizeCurrency(request.From.String())
	request.To = model.NormalizeCurrency(request.To.String())
	if request.From.IsEmpty() {
		return nil, ErrMissingOrigin
	}
	if request.To.IsEmpty() {
		request.To = r.defaultTarget
	}
	if !utils.IsFinite(request.Amount) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, request.Amount)
	}

	pair := request.Pair()
	r.log.Info("Conversion requested", "pair", pair.String(), "amount", request.Amount)

	if rate, found := r.cache.Lookup(pair); found {
		r.metrics.ObserveCacheLookup(true)
		return r.conversion(request, rate, true, "")
	}
	r.metrics.ObserveCacheLookup(false)

	rate, source, err := r.resolve(ctx, pair, request.Amount)
	if err != nil {
		return nil, err
	}

	return r.conversion(request, rate, false, source)
}

func (r *RateResolver) resolve(ctx context.Context, pair model.CurrencyPair, amount float64) (float64, model.Source, error) {
	primaryKey := fmt.Sprintf("primary|%q|%q", pair.Origin, pair.Target)
	primary := r.fetch(ctx, r.primary, model.SourcePrimary, primaryKey, pair, amount)
	if primary.OK() {
		return primary.Rate, model.SourcePrimary, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, "", err
	}

	// Codes are free-form and may contain any separator, so each is quoted.
	fallbackKey := fmt.Sprintf("fallback|%q|%q|%s", pair.Origin, pair.Target, strconv.FormatFloat(amount, 'g', -1, 64))
	fallback := r.fetch(ctx, r.fallback, model.SourceFallback, fallbackKey, pair, amount)
	if fallback.OK() {
		return fallback.Rate, model.SourceFallback, nil
	}

	r.log.Error("All rate providers failed", "pair", pair.String(),
		"primary_error", primary.Err, "fallback_error", fallback.Err)
	return 0, "", fmt.Errorf("%w: %s", ErrAllProvidersFailed, pair)
}

// fetch queries provider, sharing the call with concurrent callers for the
// same key when coalescing is on. A caller whose context ends stops waiting
// without cancelling the shared fetch.
func (r *RateResolver) fetch(
	ctx context.Context,
	provider ports.RateProvider,
	source model.Source,
	key string,
	pair model.CurrencyPair,
	amount float64,
) model.ProviderResult {
	if !r.coalesce {
		return r.fetchAndStore(ctx, provider, source, pair, amount)
	}

	ch := r.group.DoChan(key, func() (interface{}, error) {
		return r.fetchAndStore(context.WithoutCancel(ctx), provider, source, pair, amount), nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			r.log.Debug("Shared upstream fetch", "key", key)
		}
		return res.Val.(model.ProviderResult)
	case <-ctx.Done():
		return model.FailedResult(provider.Name(), ctx.Err())
	}
}

func (r *RateResolver) fetchAndStore(
	ctx context.Context,
	provider ports.RateProvider,
	source model.Source,
	pair model.CurrencyPair,
	amount float64,
) model.ProviderResult {
	start := time.Now()
	result := provider.FetchRate(ctx, pair, amount)
	r.metrics.ObserveProvider(provider.Name(), result.OK(), time.Since(start).Seconds())
	if !result.OK() {
		return result
	}

	if result.Rate <= 0 || !utils.IsFinite(result.Rate) {
		r.log.Warn("Caching degenerate rate", "pair", pair.String(), "rate", result.Rate, "source", source)
	}
	r.cache.Store(pair, result.Rate)
	r.log.Info("Rate cached", "pair", pair.String(), "rate", result.Rate, "source", source)

	return result
}

func (r *RateResolver) conversion(request model.ConversionRequest, rate float64, cached bool, source model.Source) (*model.Conversion, error) {
	result := rate * request.Amount
	if !utils.IsFinite(result) {
		return nil, fmt.Errorf("%w: %v * %v", ErrNonFiniteResult, rate, request.Amount)
	}

	rounded := utils.Round(result, resultPrecision)
	if rounded == 0 {
		// -0 would render as "-0" in JSON.
		rounded = 0
	}

	return &model.Conversion{
		Result: rounded,
		Cached: cached,
		From:   request.From,
		To:     request.To,
		Source: source,
		Rate:   rate,
	}, nil
}

func (r *RateResolver) Health() model.HealthStatus {
	return model.HealthStatus{
		Status:       "ok",
		CacheEntries: r.cache.Size(),
		TTLSeconds:   int(r.cache.TTL() / time.Second),
	}
}

func (r *RateResolver) CacheStats() model.CacheStats {
	keys := r.cache.Keys()
	pairs := make([]string, 0, len(keys))
	for _, pair := range keys {
		pairs = append(pairs, pair.String())
	}

	return model.CacheStats{
		Entries: len(pairs),
		Pairs:   pairs,
	}
}

func (r *RateResolver) ClearCache() {
	r.cache.Clear()
	r.log.Info("Cache cleared")
}
