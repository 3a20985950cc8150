// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, CORS,
// security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/evamaria/fanchat-backend/docs"
	"github.com/evamaria/fanchat-backend/internal/config"
	"github.com/evamaria/fanchat-backend/internal/http/handlers"
	"github.com/evamaria/fanchat-backend/internal/http/middleware"
	"github.com/evamaria/fanchat-backend/internal/persona"
	"github.com/evamaria/fanchat-backend/internal/realtime"
	"github.com/evamaria/fanchat-backend/internal/repo"
	"github.com/evamaria/fanchat-backend/internal/services"
	"github.com/evamaria/fanchat-backend/internal/storage"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), idempotency and rate
// limiting, CORS and security headers, compression, health and metrics
// endpoints, and then mounts the versioned public API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured request logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter (sized for multipart avatar uploads)
//  6. Metrics
//  7. Idempotency validator (before rate limiter to allow bypass on replay)
//  8. Rate limiter (per user/IP, bypass on replay)
//  9. CORS and security headers
//  10. Gzip compression
func RegisterRoutes(r *gin.Engine, db *gorm.DB, hub *realtime.Hub, avatars storage.AvatarStore, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit. The avatar cap plus multipart framing
	// dominates; JSON endpoints are bounded again by their own validation.
	r.Use(limitBody(cfg.Avatar.MaxBytes + 1<<20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
		},
		func(ctx context.Context, userID, chatID, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, userID, chatID, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 8) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey},
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

	// 10) Compress JSON responses. Skip the WebSocket upgrade (mounted under
	// the API base path) and metrics.
	wsPath := strings.TrimSuffix(cfg.APIBasePath, "/") + "/ws"
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{wsPath, "/metrics"})))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.CodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.CodeBadRequest, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Swagger UI, opt-in
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Public avatar files
	r.Static(cfg.Avatar.BaseURL, cfg.Avatar.Dir)

	// Dependency injection: services ← repo/db/hub/stores
	accountSvc := &services.AccountService{
		DB:             db,
		Avatars:        avatars,
		MinPasswordLen: cfg.Auth.PasswordMinLen,
		MaxAvatarBytes: cfg.Avatar.MaxBytes,
	}
	chatSvc := &services.ChatService{
		DB:            db,
		Hub:           hub,
		MaxTextRunes:  2000,
		HistoryWindow: cfg.Persona.HistoryWindow,
	}
	responder := persona.NewResponder(
		persona.NewClient(cfg.Persona.APIKey, cfg.Persona.UpstreamTimeout),
		cfg.Persona.Flavor,
	)
	responder.ImageEnabled = cfg.Persona.ImageEnabled
	responder.DelayMin = cfg.Persona.ReplyDelayMin
	responder.DelayMax = cfg.Persona.ReplyDelayMax

	h := handlers.New(handlers.Options{
		Accounts:       accountSvc,
		Chats:          chatSvc,
		Respond:        responder,
		Hub:            hub,
		DB:             db,
		TokenSecret:    cfg.Auth.JWTSecret,
		TokenTTL:       cfg.Auth.TokenTTL,
		IdempotencyTTL: cfg.IdempotencyTTL,
	})

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Accounts
		api.POST("/auth/signup", h.Signup)
		api.POST("/auth/login", h.Login)

		authed := api.Group("", middleware.AuthRequired(cfg.Auth.JWTSecret))
		{
			authed.GET("/me", h.Me)
			authed.PUT("/me/password", h.ChangePassword)
			authed.PUT("/me/avatar", h.UpdateAvatar)
			authed.DELETE("/me", h.DeleteAccount)

			// Support chat (caller's own thread)
			authed.POST("/chat", h.OpenChat)
			authed.GET("/chat", h.GetChat)
			authed.GET("/chat/messages", h.ListChatMessages)
			authed.POST("/chat/messages", h.SendChatMessage)
			authed.POST("/chat/read", h.MarkChatRead)

			// Persona
			authed.POST("/ai/chat", h.AIChat)

			// Live updates
			authed.GET("/ws", h.Subscribe)

			// Admin inbox
			admin := authed.Group("/admin", middleware.AdminRequired())
			{
				admin.GET("/chats", h.AdminListChats)
				admin.GET("/chats/:id/messages", h.AdminListMessages)
				admin.POST("/chats/:id/messages", h.AdminSendMessage)
				admin.POST("/chats/:id/read", h.AdminMarkRead)
			}
		}
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
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
