// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"

	"property-feed-service/internal/domain"
)

// NewHealthCheck creates a Fiber healthcheck middleware with Kubernetes-style endpoints.
//
// Endpoints:
//   - GET /livez  - Liveness probe (app is running)
//   - GET /readyz - Readiness probe (app is ready to serve, cache store reachable)
//
// This middleware should be registered BEFORE other routes.
func NewHealthCheck(store domain.CacheStore, namespace, key string) fiber.Handler {
	return healthcheck.New(healthcheck.Config{
		LivenessEndpoint: "/livez",
		LivenessProbe: func(_ *fiber.Ctx) bool {
			return true
		},

		// Ready once the cache store answers. An empty cache is still
		// ready; only an unreachable backend is not.
		ReadinessEndpoint: "/readyz",
		ReadinessProbe: func(c *fiber.Ctx) bool {
			if store == nil {
				return false
			}
			_, err := store.Exists(c.Context(), namespace, key)

			return err == nil
		},
	})
}
