package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts Redis command failures by command name.
var RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "socialconnect_redis_errors_total",
	Help: "Total number of Redis errors by command",
}, []string{"operation"})

// NotificationsPublished counts realtime notification publishes by type.
var NotificationsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "socialconnect_notifications_published_total",
	Help: "Total number of notifications published to Redis by type",
}, []string{"type"})

// InitMetrics creates the Prometheus HTTP metrics middleware for the service.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware wraps the fiberprometheus middleware as a fiber.Handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
