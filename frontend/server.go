// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package frontend

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/poiesic/morphit/core"
	"github.com/poiesic/morphit/exchange"
	"github.com/poiesic/morphit/launcher"
	"github.com/poiesic/morphit/metrics"
)

//go:embed index.html
var indexHTML []byte

const (
	DefaultTimeout       = 30 * time.Second
	DefaultStatusTimeout = 3 * time.Second

	shutdownTimeout = 5 * time.Second
)

// Host is the part of the launcher the server drives.
type Host interface {
	Launch(ctx context.Context) (*launcher.Result, error)
	Launched() bool
	Reset()
	Executable() string
	Model() string
}

// Server is the web frontend: a prompt form plus the JSON endpoints that
// start the host and relay prompts through the exchange.
type Server struct {
	requester     exchange.Requester
	host          Host
	metrics       *metrics.Metrics
	logger        *slog.Logger
	timeout       time.Duration
	statusTimeout time.Duration
	allowOrigins  []string
	location      string

	mu          sync.Mutex
	lastSuccess time.Time

	engine *gin.Engine
}

// Option configures a Server.
type Option func(*Server) error

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithMetrics instruments requests and serves /metrics from m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) error {
		s.metrics = m
		return nil
	}
}

// WithTimeouts sets how long generation requests and status checks wait.
func WithTimeouts(generate, status time.Duration) Option {
	return func(s *Server) error {
		if generate <= 0 || status <= 0 {
			return errors.New("timeouts must be positive")
		}
		s.timeout = generate
		s.statusTimeout = status
		return nil
	}
}

// WithAllowOrigins enables CORS for the given origins.
func WithAllowOrigins(origins ...string) Option {
	return func(s *Server) error {
		s.allowOrigins = origins
		return nil
	}
}

// WithExchangeLocation sets the exchange description reported by /config.
func WithExchangeLocation(location string) Option {
	return func(s *Server) error {
		s.location = location
		return nil
	}
}

// New builds the server and its routes.
func New(requester exchange.Requester, host Host, opts ...Option) (*Server, error) {
	if requester == nil {
		return nil, ErrRequesterRequired
	}
	if host == nil {
		return nil, ErrHostRequired
	}

	s := &Server{
		requester:     requester,
		host:          host,
		logger:        slog.Default(),
		timeout:       DefaultTimeout,
		statusTimeout: DefaultStatusTimeout,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.engine = s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("frontend listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.observe())

	if len(s.allowOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins: s.allowOrigins,
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Content-Type", "X-Requested-With"},
		}))
	}

	router.GET("/", s.index)
	router.GET("/healthcheck", healthCheck)
	router.GET("/status", s.status)
	router.GET("/config", s.config)
	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	router.POST("/generate", s.generate)
	router.POST("/start", s.start)
	router.POST("/start-blender", s.start)
	router.POST("/reset-status", s.resetStatus)

	return router
}

// observe logs each request and records it in metrics.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		s.metrics.ObserveHTTP(c.FullPath(), c.Writer.Status(), elapsed)
		s.logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", elapsed)
	}
}

func healthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (s *Server) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

func (s *Server) generate(c *gin.Context) {
	var body generateRequest
	if err := c.ShouldBindJSON(&body); err != nil || body.Prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No prompt provided"})
		return
	}
	if !s.host.Launched() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please start the host first using the 'Start Host' button."})
		return
	}

	resp, err := s.requester.Submit(c.Request.Context(), body.Prompt, s.timeout)
	switch {
	case errors.Is(err, exchange.ErrTimeout):
		c.JSON(http.StatusRequestTimeout, gin.H{"error": "Timeout waiting for host response. The host might be busy or closed."})
		return
	case errors.Is(err, exchange.ErrCorruptResponse):
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to parse the host's response. It may be corrupted."})
		return
	case err != nil:
		s.logger.Error("generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	success := resp.Status == core.StatusCompleted
	if success {
		s.mu.Lock()
		s.lastSuccess = time.Now()
		s.mu.Unlock()
	}
	c.JSON(http.StatusOK, gin.H{
		"success": success,
		"message": resp.Message,
		"details": resp,
	})
}

// responsive reports whether a launched host answers a status check.
func (s *Server) responsive(ctx context.Context) bool {
	if !s.host.Launched() {
		return false
	}
	if _, err := s.requester.Ping(ctx, s.statusTimeout); err != nil {
		s.logger.Debug("status check failed", "error", err)
		return false
	}
	return true
}

func (s *Server) start(c *gin.Context) {
	if s.responsive(c.Request.Context()) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Host is already running and responsive!"})
		return
	}

	result, err := s.host.Launch(c.Request.Context())
	if err != nil {
		s.logger.Error("failed to launch host", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    result.Message,
		"process_id": result.PID,
	})
}

func (s *Server) status(c *gin.Context) {
	s.mu.Lock()
	last := s.lastSuccess
	s.mu.Unlock()

	var lastSuccess any
	if !last.IsZero() {
		lastSuccess = core.Timestamp(last)
	}

	_, modelErr := os.Stat(s.host.Model())
	_, exeErr := exec.LookPath(s.host.Executable())
	c.JSON(http.StatusOK, gin.H{
		"host_running":      s.responsive(c.Request.Context()),
		"host_started_once": s.host.Launched(),
		"model_file":        absPath(s.host.Model()),
		"model_exists":      modelErr == nil,
		"host_executable":   s.host.Executable(),
		"host_exists":       exeErr == nil,
		"last_success":      lastSuccess,
		"timestamp":         core.Timestamp(time.Now()),
	})
}

func (s *Server) resetStatus(c *gin.Context) {
	s.host.Reset()
	s.mu.Lock()
	s.lastSuccess = time.Time{}
	s.mu.Unlock()

	if err := s.requester.Reset(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": fmt.Sprintf("failed to clear exchange: %v", err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Status reset. You can now start the host again."})
}

func (s *Server) config(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"model_file":      absPath(s.host.Model()),
		"host_executable": s.host.Executable(),
		"exchange":        s.location,
	})
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
