// Package report exposes a finished backtest run's equity curve, trade
// log, and metrics over HTTP as JSON. It is a presentation layer outside
// the core's synchronous loop — the core hands it an already-computed
// engine.Result.
package report

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/archwright/barstate/applog"
	"github.com/archwright/barstate/engine"
)

// Server serves one or more finished runs, keyed by an opaque run ID the
// caller assigns when it registers a result.
type Server struct {
	engine *gin.Engine
	server *http.Server
	log    *applog.Logger

	results map[string]engine.Result
}

// NewServer constructs a Server listening on port.
func NewServer(port int, log *applog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	e := gin.New()
	e.Use(gin.Recovery())
	e.Use(corsMiddleware())
	e.Use(loggerMiddleware(log))

	s := &Server{
		engine:  e,
		log:     log,
		results: make(map[string]engine.Result),
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: e,
		},
	}
	s.setupRoutes()
	return s
}

// Register makes a finished run's result available at /report/:runID.
func (s *Server) Register(runID string, result engine.Result) {
	s.results[runID] = result
}

func (s *Server) setupRoutes() {
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	report := s.engine.Group("/report")
	{
		report.GET("/:runID", s.getReport)
		report.GET("/:runID/equity", s.getEquity)
		report.GET("/:runID/trades", s.getTrades)
		report.GET("/:runID/metrics", s.getMetrics)
	}
}

func (s *Server) lookup(c *gin.Context) (engine.Result, bool) {
	result, ok := s.results[c.Param("runID")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown run id"})
	}
	return result, ok
}

func (s *Server) getReport(c *gin.Context) {
	result, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": result.Success,
		"equity":  result.Equity,
		"trades":  result.Trades,
		"metrics": result.Metrics,
	})
}

func (s *Server) getEquity(c *gin.Context) {
	result, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, result.Equity)
}

func (s *Server) getTrades(c *gin.Context) {
	result, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, result.Trades)
}

func (s *Server) getMetrics(c *gin.Context) {
	result, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, result.Metrics)
}

// Start blocks serving until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("report server starting")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func loggerMiddleware(log *applog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
