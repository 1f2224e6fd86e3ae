// Package api exposes the metadata store over HTTP.
//
// The surface is a thin JSON layer: identity comes from the X-Identity
// header (opaque and trusted, authentication is out of scope), request
// bodies are the record shapes from pkg/metadata, and domain errors map to
// status codes via their ErrorCode.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zeroten/pindex/internal/ratelimiter"
	"github.com/zeroten/pindex/pkg/metadata"
	"github.com/zeroten/pindex/pkg/metrics"
)

// Server holds the HTTP handler and its collaborators.
type Server struct {
	store   *metadata.Store
	gateway metadata.PinGateway
	limiter *ratelimiter.RateLimiter
	metrics *metrics.APIMetrics
	engine  *gin.Engine
}

// Config carries the Server's collaborators and settings.
type Config struct {
	Store   *metadata.Store
	Gateway metadata.PinGateway

	// RateLimit is the sustained requests-per-second limit (0 = unlimited)
	RateLimit uint

	// RateBurst is the rate limiter burst capacity
	RateBurst uint

	// Metrics enables the /metrics endpoint and per-request collection
	Metrics *metrics.APIMetrics
}

// NewServer creates the HTTP server and registers all routes.
func NewServer(cfg Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		store:   cfg.Store,
		gateway: cfg.Gateway,
		limiter: ratelimiter.New(cfg.RateLimit, cfg.RateBurst),
		metrics: cfg.Metrics,
		engine:  gin.New(),
	}
	s.engine.Use(gin.Recovery())
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler to serve.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.health)

	if metrics.IsEnabled() {
		s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(
			metrics.GetRegistry(), promhttp.HandlerOpts{})))
	}

	authed := s.engine.Group("/")
	authed.Use(s.observeMiddleware(), s.rateLimitMiddleware(), s.identityMiddleware())

	authed.POST("/upload", s.upload)
	authed.POST("/unpin", s.unpin)

	authed.GET("/files", s.listFiles)
	authed.POST("/files", s.createFile)
	authed.PUT("/files/:id", s.updateFile)
	authed.DELETE("/files/:id", s.deleteFile)
	authed.GET("/files/:id/shares", s.listSharesForFile)

	authed.GET("/folders", s.listFolders)
	authed.POST("/folders", s.createFolder)
	authed.PUT("/folders/:id", s.updateFolder)
	authed.DELETE("/folders/:id", s.deleteFolder)

	authed.POST("/shares", s.createShare)
	authed.DELETE("/shares", s.revokeShare)
	authed.GET("/shares/with-me", s.listSharedWithMe)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// identityMiddleware extracts the caller identity from the X-Identity
// header. Identity is an opaque trusted string; requests without one are
// rejected.
func (s *Server) identityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := c.GetHeader("X-Identity")
		if identity == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing X-Identity header"})
			c.Abort()
			return
		}
		c.Set("identity", identity)
		c.Next()
	}
}

// rateLimitMiddleware rejects requests over the configured rate.
func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// observeMiddleware records request count and latency.
func (s *Server) observeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.metrics.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}

func identityOf(c *gin.Context) string {
	return c.GetString("identity")
}
