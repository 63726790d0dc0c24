package handler

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RouterConfig struct {
	JWTSecret       string
	RateLimitPerMin int
	RateLimitBurst  int
	AllowedOrigins  []string
	Production      bool
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

func NewRouter(cfg RouterConfig, bookings *BookingHandler, checks map[string]HealthCheck, logger *zap.Logger) *gin.Engine {
	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(logger), cors.New(corsConfig(cfg.AllowedOrigins)))

	r.GET("/health", health(checks, logger))

	api := r.Group("/api/bookings")
	{
		admin := AdminAuth(cfg.JWTSecret)

		api.POST("", RateLimit(cfg.RateLimitPerMin, cfg.RateLimitBurst, logger), bookings.CreateBooking)
		api.GET("/availability/:property_id", bookings.CheckAvailability)
		api.GET("/stats/overview", admin, bookings.Stats)
		api.GET("", admin, bookings.ListBookings)
		api.GET("/:id", bookings.GetBooking)
		api.PATCH("/:id/status", admin, bookings.UpdateStatus)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", idempotencyHeader, requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

// health reports each dependency as ok or unavailable; the failure cause is
// only logged.
func health(checks map[string]HealthCheck, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		deps := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
				deps[name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			deps[name] = "ok"
		}

		c.JSON(status, gin.H{
			"success":      status == http.StatusOK,
			"status":       http.StatusText(status),
			"timestamp":    time.Now().UTC(),
			"dependencies": deps,
		})
	}
}
