package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrProviderUnavailable marks a failed upstream fetch. It only ever travels
// inside a ProviderResult.
var ErrProviderUnavailable = errors.New("provider unavailable")

// CurrencyPair is an ordered (origin, target) pair. (A,B) and (B,A) are
// different pairs.
type CurrencyPair struct {
	Origin Currency `json:"from"`
	Target Currency `json:"to"`
}

func NewCurrencyPair(origin, target string) CurrencyPair {
	return CurrencyPair{
		Origin: NormalizeCurrency(origin),
		Target: NormalizeCurrency(target),
	}
}

func (p CurrencyPair) String() string {
	return fmt.Sprintf("%s:%s", p.Origin, p.Target)
}

// CacheEntry is a rate observed at CapturedAt. Rate is stored exactly as the
// provider reported it, including zero or negative values.
type CacheEntry struct {
	Rate       float64
	CapturedAt time.Time
}

// Source tells which upstream produced a fresh rate.
type Source string

const (
	SourcePrimary  Source = "primary"
	SourceFallback Source = "fallback"
)

// ProviderResult is the outcome of a single provider call: a rate when Err is
// nil, otherwise the reason the provider could not answer.
type ProviderResult struct {
	Provider string
	Rate     float64
	Err      error
}

func (r ProviderResult) OK() bool {
	return r.Err == nil
}

func RateResult(provider string, rate float64) ProviderResult {
	return ProviderResult{Provider: provider, Rate: rate}
}

// FailedResult wraps reason with ErrProviderUnavailable.
func FailedResult(provider string, reason error) ProviderResult {
	return ProviderResult{
		Provider: provider,
		Err:      fmt.Errorf("%w: %s: %v", ErrProviderUnavailable, provider, reason),
	}
}

type ConversionRequest struct {
	From   Currency `json:"from"`
	To     Currency `json:"to"`
	Amount float64  `json:"amount"`
}

func (r ConversionRequest) Pair() CurrencyPair {
	return CurrencyPair{Origin: r.From, Target: r.To}
}

// Conversion is a resolved conversion. Result is rounded for display while
// Rate keeps full precision.
type Conversion struct {
	Result float64  `json:"result"`
	Cached bool     `json:"cached"`
	From   Currency `json:"from"`
	To     Currency `json:"to"`
	Source Source   `json:"source,omitempty"`
	Rate   float64  `json:"-"`
}

type HealthStatus struct {
	Status       string `json:"status"`
	CacheEntries int    `json:"cache_entries"`
	TTLSeconds   int    `json:"ttl_seconds"`
}

type CacheStats struct {
	Entries int      `json:"entries"`
	Pairs   []string `json:"pairs"`
}
