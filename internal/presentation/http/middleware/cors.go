package middleware

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/sangkips/salonpos-api/internal/config"
)

// Headers the POS terminals send on every request.
var requiredRequestHeaders = []string{
	"Accept",
	"Authorization",
	"Content-Type",
	"Origin",
	"X-Request-ID",
	IdempotencyKeyHeader,
}

// Headers the terminals read back: request tracing, idempotent replays,
// rate limit state and the report download name.
var exposedResponseHeaders = []string{
	"Content-Length",
	"Content-Type",
	"Content-Disposition",
	"X-Request-ID",
	"X-Idempotency-Replayed",
	"X-RateLimit-Limit",
	"X-RateLimit-Remaining",
	"Retry-After",
}

// CORSMiddleware builds the CORS policy for the POS front ends. Configured
// headers are extended with the ones the sale flow depends on.
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}

	methods := cfg.AllowedMethods
	if len(methods) == 0 {
		methods = []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		}
	}

	headers := slices.Clone(cfg.AllowedHeaders)
	for _, h := range requiredRequestHeaders {
		if !slices.Contains(headers, h) {
			headers = append(headers, h)
		}
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     methods,
		AllowHeaders:     headers,
		ExposeHeaders:    exposedResponseHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
