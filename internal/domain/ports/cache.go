package ports

import (
	"time"

	"fx-rate-proxy/internal/domain/model"
)

type RateCache interface {
	Lookup(pair model.CurrencyPair) (float64, bool)
	Store(pair model.CurrencyPair, rate float64)
	Clear()
	Size() int
	Keys() []model.CurrencyPair
	PurgeExpired() int
	TTL() time.Duration
}
