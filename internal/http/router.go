// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, CORS,
// security headers, compression, and rate limiting.
//
// Two route families with different contracts share this router:
//   - /webhook/whatsapp: the Meta delivery endpoint. Registered BEFORE the
//     rate limiter so throttling can never make Meta mark the subscription
//     unhealthy; the upstream has its own pacing.
//   - /api/v1/*: the operator dashboard API, fully limited and CORS-guarded.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/kuwex/whatsapp-ai-backend/internal/ai"
	"github.com/kuwex/whatsapp-ai-backend/internal/config"
	"github.com/kuwex/whatsapp-ai-backend/internal/http/handlers"
	"github.com/kuwex/whatsapp-ai-backend/internal/http/middleware"
	"github.com/kuwex/whatsapp-ai-backend/internal/services"
	"github.com/kuwex/whatsapp-ai-backend/internal/whatsapp"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics and /metrics endpoint
//  7. Webhook routes (before the rate limiter, see package comment)
//  8. Rate limiter (per IP)
//  9. CORS, security headers, gzip (dashboard surface)
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Dependency injection: services ← db/config
	aiClient := ai.NewClient(ai.Config{
		APIKey:        cfg.OpenRouter.APIKey,
		BaseURL:       cfg.OpenRouter.BaseURL,
		PrimaryModel:  cfg.OpenRouter.PrimaryModel,
		FallbackModel: cfg.OpenRouter.FallbackModel,
		MaxTokens:     cfg.OpenRouter.MaxTokens,
		Temperature:   float32(cfg.OpenRouter.Temperature),
		Timeout:       cfg.OpenRouter.Timeout,
	})
	sender := whatsapp.NewSender(whatsapp.SenderConfig{
		BaseURL:    cfg.WhatsApp.GraphBaseURL,
		APIVersion: cfg.WhatsApp.APIVersion,
		Timeout:    cfg.WhatsApp.SendTimeout,
	})
	pipeline := services.NewPipeline(db, aiClient, sender)
	pipeline.HistoryLimit = cfg.HistoryLimit

	wh := handlers.NewWebhookHandler(cfg.WhatsApp.VerifyToken, pipeline)
	h := handlers.New(
		services.NewTenantService(db),
		services.NewConversationService(db),
		services.NewAnalyticsService(db),
		services.NewEscalationService(db),
	)

	// 7) Webhook endpoints, exempt from rate limiting and CORS
	r.GET("/webhook/whatsapp", wh.Verify)
	r.POST("/webhook/whatsapp", wh.Receive)

	// 8) Token-bucket rate limiter per IP (dashboard surface only)
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByIP())
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Compress dashboard responses; webhook routes are registered above this
	// point and stay uncompressed.
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dashboard API
	api := groupWithPrefix(r, cfg.APIBasePath) // e.g. "/api/v1"
	{
		// Clients
		api.POST("/clients", h.CreateTenant)
		api.GET("/clients", h.ListTenants)
		api.GET("/clients/:id", h.GetTenant)
		api.PUT("/clients/:id", h.UpdateTenant)
		api.PATCH("/clients/:id/active", h.SetTenantActive)
		api.DELETE("/clients/:id", h.DeleteTenant)

		// Conversations
		api.GET("/conversations", h.ListConversations)
		api.GET("/conversations/:phone", h.GetConversation)

		// Escalations
		api.GET("/escalations", h.ListEscalations)
		api.PATCH("/escalations/:id/status", h.UpdateEscalationStatus)

		// Analytics
		api.GET("/stats", h.GetStats)
		api.GET("/analytics", h.GetAnalytics)
	}
}

// limitBody caps the request body size for all endpoints using
// http.MaxBytesReader; reads past the cap error downstream.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
