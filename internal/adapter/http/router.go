package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"fx-rate-proxy/internal/metrics"
	"fx-rate-proxy/pkg/logger"
)

const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestIDFromContext returns the id assigned by the logging middleware, or
// an empty string outside a request.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type Router struct {
	handler *Handler
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewRouter(handler *Handler, log *logger.Logger, metrics *metrics.Metrics) *Router {
	return &Router{
		handler: handler,
		log:     log,
		metrics: metrics,
	}
}

func (r *Router) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()

		requestID := req.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)
		req = req.WithContext(context.WithValue(req.Context(), requestIDKey{}, requestID))

		crw := &customResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(crw, req)

		// Label by route pattern so arbitrary paths do not create new series.
		route := req.Pattern
		if route == "" {
			route = "unmatched"
		}
		duration := time.Since(start)
		r.metrics.HTTPRequestDuration.WithLabelValues(route, req.Method).Observe(duration.Seconds())
		r.metrics.HTTPRequestsTotal.WithLabelValues(route, req.Method, strconv.Itoa(crw.statusCode/100)+"xx").Inc()

		r.log.Info("HTTP request",
			"request_id", requestID,
			"method", req.Method,
			"path", req.URL.Path,
			"query", req.URL.RawQuery,
			"status", crw.statusCode,
			"duration", duration,
			"remote_addr", req.RemoteAddr,
			"user_agent", req.UserAgent(),
		)
	})
}

type customResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (crw *customResponseWriter) WriteHeader(code int) {
	crw.statusCode = code
	crw.ResponseWriter.WriteHeader(code)
}

func (r *Router) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /convert", r.handler.ConvertHandler)
	mux.HandleFunc("GET /health", r.handler.HealthHandler)
	mux.HandleFunc("GET /cache/clear", r.handler.ClearCacheHandler)
	mux.HandleFunc("POST /cache/clear", r.handler.ClearCacheHandler)
	mux.HandleFunc("GET /cache/stats", r.handler.CacheStatsHandler)

	apiWithMiddleware := r.loggingMiddleware(mux)

	rootMux := http.NewServeMux()
	rootMux.Handle("/", apiWithMiddleware)
	rootMux.Handle("GET /metrics", r.metrics.Handler())

	return rootMux
}
