// Package api exposes the AML engine facade over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cardwatch/amlengine/internal/aml/engine"
	"github.com/cardwatch/amlengine/internal/aml/limits"
	"github.com/cardwatch/amlengine/internal/aml/mcc"
)

var validate = validator.New()

// Server is the HTTP front of the detection engine.
type Server struct {
	router   *gin.Engine
	logger   *zap.Logger
	engine   *engine.Engine
	limits   *limits.Tracker
	registry *mcc.Registry
}

// NewServer creates the API server with injected engine and supporting controls.
func NewServer(logger *zap.Logger, amlEngine *engine.Engine, tracker *limits.Tracker, registry *mcc.Registry) *Server {
	server := &Server{
		logger:   logger,
		engine:   amlEngine,
		limits:   tracker,
		registry: registry,
	}

	router := gin.New()
	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logger, true))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	server.router = router
	server.registerRoutes()
	return server
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/aml/analyze", s.handleAnalyze)
		v1.POST("/limits/check", s.handleLimitsCheck)
		v1.POST("/mcc/blocklist", s.handleAddBlocklist)
		v1.DELETE("/mcc/blocklist/:code", s.handleRemoveBlocklist)
	}
}

// Start starts the API server.
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting AML engine API server", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Handler exposes the router for tests and custom http.Server setups.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
