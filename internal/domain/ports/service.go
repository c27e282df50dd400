package ports

import (
	"context"

	"fx-rate-proxy/internal/domain/model"
)

//go:generate mockgen -source=service.go -destination=../../mocks/mock_service.go -package=mocks

type ConversionService interface {
	ParseRequest(from, to, amount string) (model.ConversionRequest, error)
	Convert(ctx context.Context, request model.ConversionRequest) (*model.Conversion, error)
	Health() model.HealthStatus
	CacheStats() model.CacheStats
	ClearCache()
}
