package http_api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/core-coin/capwatch/internal/metrics"
	"github.com/core-coin/capwatch/internal/models"
	"github.com/core-coin/capwatch/pkg/logger"
)

const (
	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout = 10 * time.Second
	// DefaultMaxConcurrentEvents bounds how many events of one delivery run at once
	DefaultMaxConcurrentEvents = 8
	// maxBodyBytes caps the size of a webhook delivery
	maxBodyBytes = 4 << 20
)

// HTTPServer is the HTTP server that receives transaction webhooks
type HTTPServer struct {
	// logger is the logger instance
	logger *logger.Logger

	// router is the HTTP router
	router *gin.Engine
	// port is the port on which the server will listen
	port int

	// server is the underlying HTTP server
	server *http.Server

	// capwatch runs the alert pipeline for each event
	capwatch models.CapwatchI
	// metrics is optional
	metrics *metrics.Metrics

	maxConcurrentEvents int
}

// NewHTTPServer creates a new HTTP server instance
func NewHTTPServer(
	capwatch models.CapwatchI,
	port int,
	maxConcurrentEvents int,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *HTTPServer {
	if maxConcurrentEvents < 1 {
		maxConcurrentEvents = DefaultMaxConcurrentEvents
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(accessLogMiddleware(logger))

	server := &HTTPServer{
		router:              router,
		port:                port,
		capwatch:            capwatch,
		logger:              logger,
		metrics:             metrics,
		maxConcurrentEvents: maxConcurrentEvents,
	}

	// Define routes
	server.routes()

	return server
}

// Handler returns the router, used by tests and embedding servers
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *HTTPServer) Start() {
	addr := fmt.Sprintf("0.0.0.0:%v", s.port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Infow("Starting HTTP server", "address", addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Fatal("Failed to start the HTTP server: ", err)
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *HTTPServer) Shutdown() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server...")
	if err := s.server.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "HTTP server shutdown error")
	}

	s.logger.Info("HTTP server shut down successfully")
	return nil
}
