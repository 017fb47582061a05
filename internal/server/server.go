// Package server is the HTTP host for mounted charts.
//
// Each chart created through the API is mounted on its own offscreen
// surface and kept in memory behind a mutex. Definitions (config and data)
// are persisted to a [store.Store] so charts survive a restart; a handle is
// rebuilt from its definition on first access. Settled artifacts are
// produced by the shared [pipeline.Runner] and cached by spec hash.
//
// Routes:
//
//	POST   /charts                     create from {"config", "data"}
//	GET    /charts                     list stored definitions
//	GET    /charts/{id}                status and last pass summary
//	PUT    /charts/{id}/data           replace the data (JSON, TOML or CSV)
//	PUT    /charts/{id}/size           {"width", "height"}
//	GET    /charts/{id}/frame.svg?t=ms advance the chart clock and snapshot
//	GET    /charts/{id}/render.{fmt}   settled artifact (svg, png, pdf, json, dot)
//	DELETE /charts/{id}                unmount and forget
//	GET    /healthz
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/chartkit/pkg/httputil"
	"github.com/matzehuels/chartkit/pkg/observability"
	"github.com/matzehuels/chartkit/pkg/pipeline"
	"github.com/matzehuels/chartkit/pkg/store"
)

// Defaults for [Options].
const (
	DefaultAddr            = ":8080"
	DefaultRequestTimeout  = 30 * time.Second
	DefaultShutdownTimeout = 5 * time.Second
)

// Options configures a Server.
type Options struct {
	// Runner renders settled artifacts. Nil uses an uncached runner.
	Runner *pipeline.Runner
	// Store persists chart definitions. Nil keeps them in memory.
	Store store.Store
	// Logger receives request and chart logs. Nil discards.
	Logger *log.Logger
	// MaxBody caps request bodies. Zero uses httputil.DefaultMaxBody.
	MaxBody int64
	// RequestTimeout bounds each request. Zero uses DefaultRequestTimeout.
	RequestTimeout time.Duration
}

// Server serves the chart API.
type Server struct {
	runner  *pipeline.Runner
	store   store.Store
	logger  *log.Logger
	maxBody int64
	timeout time.Duration
	now     func() time.Time

	mu      sync.Mutex
	handles map[string]*handle
	renders singleflight.Group
}

// New creates a server. Nil options fall back to in-memory defaults.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	if opts.Store == nil {
		opts.Store = store.NewMemoryStore()
	}
	if opts.MaxBody == 0 {
		opts.MaxBody = httputil.DefaultMaxBody
	}
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	return &Server{
		runner:  opts.Runner,
		store:   opts.Store,
		logger:  opts.Logger,
		maxBody: opts.MaxBody,
		timeout: opts.RequestTimeout,
		now:     time.Now,
		handles: make(map[string]*handle),
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/healthz", s.healthz)
	r.Route("/charts", func(r chi.Router) {
		r.Post("/", s.createChart)
		r.Get("/", s.listCharts)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getChart)
			r.Delete("/", s.deleteChart)
			r.Put("/data", s.putData)
			r.Put("/size", s.putSize)
			r.Get("/frame.svg", s.getFrame)
			r.Get("/render.{format}", s.getRender)
		})
	})
	return r
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	return err
}

// Close unmounts every chart. Stored definitions are kept.
func (s *Server) Close() {
	s.mu.Lock()
	handles := s.handles
	s.handles = make(map[string]*handle)
	s.mu.Unlock()
	for _, h := range handles {
		h.unmount()
	}
}

// handle returns the mounted chart for id, rebuilding it from the store
// when it is not in memory.
func (s *Server) handle(ctx context.Context, id string) (*handle, error) {
	s.mu.Lock()
	h, ok := s.handles[id]
	s.mu.Unlock()
	if ok {
		return h, nil
	}

	def, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	h, err = newHandle(*def, s.logger)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.handles[id]; ok {
		h.unmount()
		return existing, nil
	}
	s.handles[id] = h
	s.logger.Debug("restored chart", "chart", id)
	return h, nil
}

func (s *Server) add(h *handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handles[h.def.ID] = h
}

// remove forgets id and returns its handle, if mounted.
func (s *Server) remove(id string) (*handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.handles[id]
	delete(s.handles, id)
	return h, ok
}

// observe reports requests to the HTTP hooks and the logger.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		start := time.Now()
		hooks.OnRequest(r.Context(), r.Method, r.Host, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		duration := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.Host, r.URL.Path, status, duration)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", duration,
			"request_id", middleware.GetReqID(r.Context()))
	})
}
