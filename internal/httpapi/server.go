// Package httpapi exposes the parser and per-session playback engines over HTTP.
//
// POST /api/parse answers with {"success", "subtitles", "errors"} for every
// outcome, but the status code carries the result as well: 200 on success,
// 400 for upload problems (no file, wrong extension, oversized or unreadable
// body) and 422 when a non-blank document yields no cues. Clients that only
// read the body keep working.
package httpapi

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/mgpai22/subclock/internal/config"
	"github.com/mgpai22/subclock/internal/logging"
	"github.com/mgpai22/subclock/internal/session"
)

type Server struct {
	registry *session.Registry
	logger   *logging.Logger

	maxUploadBytes int64
	allowOrigin    string
	tick           time.Duration

	mux *http.ServeMux

	mu     sync.Mutex
	server *http.Server
}

type Option func(*Server)

func WithLogger(logger *logging.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

func WithServerConfig(cfg config.ServerConfig) Option {
	return func(s *Server) {
		if cfg.MaxUploadBytes > 0 {
			s.maxUploadBytes = cfg.MaxUploadBytes
		}
		s.allowOrigin = cfg.AllowOrigin
	}
}

// cadence of websocket snapshot pushes
func WithTick(tick time.Duration) Option {
	return func(s *Server) {
		if tick > 0 {
			s.tick = tick
		}
	}
}

func NewServer(registry *session.Registry, opts ...Option) *Server {
	defaults := config.Default()
	s := &Server{
		registry:       registry,
		logger:         logging.NewNop(),
		maxUploadBytes: defaults.Server.MaxUploadBytes,
		allowOrigin:    defaults.Server.AllowOrigin,
		tick:           defaults.Player.Tick,
		mux:            http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.withCORS(s.mux)
}

func (s *Server) ListenAndServe(addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.mu.Lock()
	s.server = server
	s.mu.Unlock()
	return server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	server := s.server
	s.mu.Unlock()
	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/parse", s.handleParse)
	s.mux.HandleFunc("/api/sessions", s.handleSessions)
	s.mux.HandleFunc("/api/sessions/", s.handleSession)
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.allowOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", s.allowOrigin)
		}
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
