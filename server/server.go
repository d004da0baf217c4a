// Package server exposes the labeling worker over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cubelab/solfilter/domain"
	"github.com/cubelab/solfilter/transport"
)

// RequestIDHeader carries the request identifier on every response
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// Config holds the HTTP settings
type Config struct {
	Addr            string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the default server settings
func DefaultConfig() Config {
	return Config{
		Addr:            domain.DefaultServerAddr,
		RequestTimeout:  time.Duration(domain.DefaultRequestTimeoutSeconds) * time.Second,
		ShutdownTimeout: time.Duration(domain.DefaultShutdownTimeoutSeconds) * time.Second,
	}
}

// Server serves POST /v1/label, GET /healthz and GET /metrics
type Server struct {
	config  Config
	worker  *transport.Worker
	logger  *zap.Logger
	metrics *Metrics
	router  *gin.Engine
}

// New creates a server around a worker. A nil logger discards logs.
func New(config Config, worker *transport.Worker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		config:  config,
		worker:  worker,
		logger:  logger,
		metrics: NewMetrics(),
	}
	s.router = s.setupRoutes()
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Metrics returns the server metrics
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

func (s *Server) setupRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestID(), s.accessLog())

	router.GET("/healthz", handleHealth)
	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	v1 := router.Group("/v1")
	{
		v1.POST("/label", s.handleLabel)
	}
	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", s.config.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	s.logger.Info("server shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// requestID propagates an incoming X-Request-ID or assigns a new one
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString(requestIDKey)),
		)
	}
}
