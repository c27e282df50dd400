package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"fx-rate-proxy/internal/domain/ports"
	"fx-rate-proxy/internal/metrics"
	"fx-rate-proxy/internal/service"
	"fx-rate-proxy/pkg/logger"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

const (
	msgMissingOrigin  = "Missing 'from' parameter"
	msgInvalidAmount  = "Invalid amount parameter"
	msgInvalidInput   = "Invalid request parameters"
	msgUpstreamFailed = "Could not fetch exchange rate from any API"
	msgNonFinite      = "Conversion result is not a finite number"
	msgInternal       = "internal server error"
	msgClientClosed   = "client closed request"
	msgTimeout        = "request timed out"
)

// statusClientClosedRequest is the nginx convention for a caller that went
// away before the response was written.
const statusClientClosedRequest = 499

type Handler struct {
	service ports.ConversionService
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewHandler(service ports.ConversionService, log *logger.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service: service,
		log:     log,
		metrics: metrics,
	}
}

func (h *Handler) ConvertHandler(w http.ResponseWriter, r *http.Request) {
	h.metrics.ConversionRequestsTotal.Inc()

	query := r.URL.Query()
	request, err := h.service.ParseRequest(query.Get("from"), query.Get("to"), query.Get("amount"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	result, err := h.service.Convert(r.Context(), request)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.sendSuccessResponse(w, result)
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.sendSuccessResponse(w, h.service.Health())
}

func (h *Handler) ClearCacheHandler(w http.ResponseWriter, r *http.Request) {
	h.service.ClearCache()
	h.sendSuccessResponse(w, StatusResponse{Status: "cache cleared"})
}

func (h *Handler) CacheStatsHandler(w http.ResponseWriter, r *http.Request) {
	h.sendSuccessResponse(w, h.service.CacheStats())
}

func (h *Handler) sendSuccessResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) sendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message}); err != nil {
		h.log.Error("Failed to encode error response", "error", err)
	}
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode := http.StatusInternalServerError
	errorMessage := msgInternal

	switch {
	case errors.Is(err, service.ErrMissingOrigin):
		statusCode = http.StatusBadRequest
		errorMessage = msgMissingOrigin
	case errors.Is(err, service.ErrInvalidAmount):
		statusCode = http.StatusBadRequest
		errorMessage = msgInvalidAmount
	case errors.Is(err, service.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		errorMessage = msgInvalidInput
	case errors.Is(err, service.ErrAllProvidersFailed):
		statusCode = http.StatusBadGateway
		errorMessage = msgUpstreamFailed
	case errors.Is(err, service.ErrNonFiniteResult):
		statusCode = http.StatusBadGateway
		errorMessage = msgNonFinite
	case errors.Is(err, context.Canceled):
		statusCode = statusClientClosedRequest
		errorMessage = msgClientClosed
	case errors.Is(err, context.DeadlineExceeded):
		statusCode = http.StatusGatewayTimeout
		errorMessage = msgTimeout
	}

	log := h.log.With("request_id", RequestIDFromContext(r.Context()))
	switch {
	case statusCode == statusClientClosedRequest:
		log.Debug("Client closed request", "error", err)
	case statusCode < http.StatusInternalServerError:
		log.Warn("Rejected request", "error", err, "status_code", statusCode)
	default:
		log.Error("Service error", "error", err, "status_code", statusCode)
	}
	h.sendErrorResponse(w, statusCode, errorMessage)
}
