package http_api

import "github.com/gin-gonic/gin"

// routes sets up the routes for the HTTP server.
func (s *HTTPServer) routes() {
	s.router.POST("/webhook", s.webhook)
	s.router.GET("/healthz", s.health)
	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
}
