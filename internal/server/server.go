// Package server exposes the background message router over HTTP.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	domainErrors "github.com/thomas-vilte/prbuddy/internal/errors"
	"github.com/thomas-vilte/prbuddy/internal/logger"
	"github.com/thomas-vilte/prbuddy/internal/protocol"
)

const (
	shutdownTimeout = 5 * time.Second
	maxBodyBytes    = 1 << 20
)

// Dispatcher answers protocol requests.
type Dispatcher interface {
	Dispatch(ctx context.Context, req protocol.Request) protocol.Response
}

// Option configures who may post messages.
type Option func(*access)

// WithAllowedOrigins admits browser requests from origins. An entry ending in
// * matches any origin with that prefix. Requests without an Origin header,
// such as CLI clients, are not affected.
func WithAllowedOrigins(origins ...string) Option {
	return func(a *access) {
		a.origins = append(a.origins, origins...)
	}
}

// WithToken requires every message to carry "Authorization: Bearer <token>".
func WithToken(token string) Option {
	return func(a *access) {
		a.token = token
	}
}

// NewRouter builds the HTTP routes around d. Completions are not given a
// deadline here; only the client's own cancellation stops them.
func NewRouter(d Dispatcher, log *slog.Logger, opts ...Option) http.Handler {
	h := &handler{dispatcher: d, log: log}
	a := &access{}
	for _, opt := range opts {
		opt(a)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/health", h.healthCheck)
	r.Route("/api", func(r chi.Router) {
		r.Use(a.guard)
		r.Post("/messages", h.postMessage)
	})
	return r
}

type access struct {
	origins []string
	token   string
}

// guard keeps web pages away from the message endpoint. A foreign Origin is
// refused, bodies must be JSON so browsers have to preflight, and the shared
// token is checked when one is set.
func (a *access) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			if !a.allowsOrigin(origin) {
				respondWithJSON(w, http.StatusForbidden, protocol.Fail(domainErrors.ErrOriginNotAllowed.WithContext("detail", origin)))
				return
			}
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", http.MethodPost)
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}

		if r.Method == http.MethodPost {
			mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mediaType != "application/json" {
				respondWithJSON(w, http.StatusUnsupportedMediaType, protocol.Fail(domainErrors.ErrUnsupportedMediaType))
				return
			}
		}

		if a.token != "" && !a.validToken(r.Header.Get("Authorization")) {
			respondWithJSON(w, http.StatusUnauthorized, protocol.Fail(domainErrors.ErrServerUnauthorized))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (a *access) allowsOrigin(origin string) bool {
	for _, allowed := range a.origins {
		if prefix, ok := strings.CutSuffix(allowed, "*"); ok {
			if strings.HasPrefix(origin, prefix) {
				return true
			}
			continue
		}
		if origin == allowed {
			return true
		}
	}
	return false
}

func (a *access) validToken(header string) bool {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(a.token)) == 1
}

type handler struct {
	dispatcher Dispatcher
	log        *slog.Logger
}

func (h *handler) healthCheck(w http.ResponseWriter, _ *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// postMessage decodes one protocol request and always answers with a protocol
// response. Failures of the action itself are still 200s; only malformed
// requests get a 400.
func (h *handler) postMessage(w http.ResponseWriter, r *http.Request) {
	req, err := protocol.DecodeRequest(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondWithJSON(w, http.StatusBadRequest, protocol.Fail(err))
		return
	}

	ctx := logger.WithLogger(r.Context(), h.log.With(
		"request_id", middleware.GetReqID(r.Context()),
		"action", req.Action))
	respondWithJSON(w, http.StatusOK, h.dispatcher.Dispatch(ctx, req))
}

func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("request served",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"request_id", middleware.GetReqID(r.Context()),
				"duration_ms", time.Since(start).Milliseconds())
		})
	}
}

// Server serves the router until its context is cancelled.
type Server struct {
	srv *http.Server
	log *slog.Logger
}

func New(addr string, d Dispatcher, log *slog.Logger, opts ...Option) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(d, log, opts...),
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Run listens on the configured address and shuts down gracefully when ctx
// is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", "addr", ln.Addr().String())
		errCh <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
