package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_requests_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status_code"},
	)

	// Store metrics (dynamodb / s3)
	storeOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operations_total",
			Help: "Total number of key-value and object store operations",
		},
		[]string{"backend", "operation", "status"},
	)

	storeOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_operation_duration_seconds",
			Help:    "Store operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		},
		[]string{"backend", "operation"},
	)

	// Auth metrics
	authEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_events_total",
			Help: "Authentication events by outcome",
		},
		[]string{"event", "outcome"}, // register/login/authenticate/change_password, ok/<error code>
	)

	// Task lifecycle metrics
	orphanedImagePrefixesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "task_orphaned_image_prefixes_total",
			Help: "Task deletions whose image cleanup failed after the record was removed",
		},
	)

	// Rate limiting metrics
	rateLimitDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratelimit_dropped_total",
			Help: "Total number of requests dropped due to rate limiting",
		},
		[]string{"scope"}, // api or login
	)

	// Idempotency metrics
	idempotencyHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "idempotency_hits_total",
			Help: "Total number of idempotency hits",
		},
		[]string{"type"}, // miss, replay or conflict
	)

	registerOnce sync.Once
)

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() error {
	var err error
	registerOnce.Do(func() {
		for _, c := range []prometheus.Collector{
			httpRequestsTotal,
			httpRequestDuration,
			storeOperationsTotal,
			storeOperationDuration,
			authEventsTotal,
			orphanedImagePrefixesTotal,
			rateLimitDroppedTotal,
			idempotencyHitsTotal,
		} {
			if regErr := prometheus.Register(c); regErr != nil {
				err = regErr
				return
			}
		}
	})
	return err
}

// HTTPMetricsMiddleware records HTTP metrics
func HTTPMetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		method := c.Method()
		route := c.Route().Path
		if route == "" {
			route = c.Path()
		}
		statusCode := strconv.Itoa(c.Response().StatusCode())

		httpRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
		httpRequestDuration.WithLabelValues(method, route, statusCode).Observe(duration)

		return err
	}
}

// RecordStoreOperation records a DynamoDB or S3 call
func RecordStoreOperation(backend, operation string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	storeOperationsTotal.WithLabelValues(backend, operation, status).Inc()
	storeOperationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}

// RecordAuthEvent records the outcome of an auth operation
func RecordAuthEvent(event, outcome string) {
	authEventsTotal.WithLabelValues(event, outcome).Inc()
}

// RecordOrphanedImages counts a task whose images outlived its record
func RecordOrphanedImages() {
	orphanedImagePrefixesTotal.Inc()
}

// RecordRateLimitDrop records rate limit drops
func RecordRateLimitDrop(scope string) {
	rateLimitDroppedTotal.WithLabelValues(scope).Inc()
}

// RecordIdempotencyHit records an idempotency lookup outcome
func RecordIdempotencyHit(hitType string) {
	idempotencyHitsTotal.WithLabelValues(hitType).Inc()
}

// PrometheusHandler returns the Prometheus metrics handler
func PrometheusHandler() fiber.Handler {
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	}
}
