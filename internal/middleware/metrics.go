package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis command failures by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mingle_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"operation"})

	// SaveConflicts counts optimistic save retries by operation. A
	// sustained rate here means posts are hot enough that the bounded
	// retry loop is being exercised.
	SaveConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mingle_post_save_conflicts_total",
		Help: "Total number of optimistic post save conflicts by operation",
	}, []string{"operation"})
)

// InitMetrics creates the Prometheus request-metrics middleware for the
// named service.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the handler recording per-request metrics.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
