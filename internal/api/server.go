// Package api is the HTTP front end of the operation service.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"

	"github.com/FahadBinHussain/Xenovate/internal/api/handlers"
	log "github.com/FahadBinHussain/Xenovate/internal/logging"
	"github.com/FahadBinHussain/Xenovate/internal/service"
)

// Server owns the gin engine and the listening http.Server.
type Server struct {
	engine     *gin.Engine
	handler    http.Handler
	server     *http.Server
	runtime    *service.Runtime
	accessKeys atomic.Pointer[[]string]
}

// NewServer builds the engine and routes for rt. Nothing listens until Start.
func NewServer(rt *service.Runtime) *Server {
	if !rt.Config.Debug && gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	s := &Server{engine: engine, runtime: rt}
	s.UpdateAccessKeys(rt.Config.APIKeys)
	s.setupMiddleware()
	s.setupRoutes()
	s.handler = gzhttp.GzipHandler(engine)

	addr := net.JoinHostPort(rt.Config.Host, strconv.Itoa(rt.Config.Port))
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	h := handlers.New(s.runtime)

	s.engine.GET("/healthz", h.Health)
	s.engine.GET("/metrics", gin.WrapH(s.runtime.Metrics.Handler()))

	api := s.engine.Group("/api", s.accessKeyMiddleware())
	api.POST("/analyze", h.Analyze)
	api.POST("/optimize", h.Optimize)
	api.POST("/convert", h.Convert)
	api.POST("/explain", h.Explain)
	api.GET("/models", h.Models)
	api.GET("/usage", h.Usage)
}

// Handler returns the root handler, including response compression.
func (s *Server) Handler() http.Handler { return s.handler }

// Addr is the configured listen address.
func (s *Server) Addr() string { return s.server.Addr }

// Start listens and serves until Shutdown. It returns nil after a clean
// shutdown.
func (s *Server) Start() error {
	log.Infof("xenovate listening on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// UpdateAccessKeys replaces the keys accepted on /api routes. An empty list
// disables the check.
func (s *Server) UpdateAccessKeys(keys []string) {
	cleaned := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			cleaned = append(cleaned, k)
		}
	}
	s.accessKeys.Store(&cleaned)
}

// AccessKeys returns a copy of the current access keys.
func (s *Server) AccessKeys() []string {
	keys := s.accessKeys.Load()
	if keys == nil {
		return nil
	}
	return slices.Clone(*keys)
}
