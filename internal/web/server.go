// Package web serves the HTTP endpoints of the tag sync service.
package web

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/dnswlt/tagsync/internal/health"
	"github.com/dnswlt/tagsync/internal/mapper"
)

type ServerOptions struct {
	Addr    string // E.g., "localhost:8080"
	Version string
}

type Server struct {
	opts     ServerOptions
	checker  *health.Checker
	registry *mapper.Registry
}

func NewServer(opts ServerOptions, checker *health.Checker, registry *mapper.Registry) *Server {
	return &Server{
		opts:     opts,
		checker:  checker,
		registry: registry,
	}
}

// withRequestLogging wraps a handler and logs each request.
// Logs include method, path, status, size, remote address, and duration.
func (s *Server) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap ResponseWriter to capture status code
		lrw := &loggingResponseWriter{ResponseWriter: w}

		next.ServeHTTP(lrw, r)

		duration := time.Since(start)
		log.Printf("%s %s %d %dB %dms (remote=%s)",
			r.Method,
			r.URL.Path,
			lrw.statusCode,
			lrw.size,
			duration.Milliseconds(),
			r.RemoteAddr,
		)
	})
}

func (s *Server) serveJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to write JSON response: %v", err)
	}
}

// serveHealth reports the reachability of Kafka and Ranger.
// Unreachable dependencies are reported as false with status 200.
func (s *Server) serveHealth(w http.ResponseWriter, r *http.Request) {
	var st health.Status
	if s.checker != nil {
		st = s.checker.Check(r.Context())
	}
	s.serveJSON(w, st)
}

// serveMappers lists the mapper registered for each entity type.
func (s *Server) serveMappers(w http.ResponseWriter, r *http.Request) {
	mappers := map[string]string{}
	if s.registry != nil {
		for _, t := range s.registry.EntityTypes() {
			m, _ := s.registry.Lookup(t)
			mappers[t] = m.Name()
		}
	}
	s.serveJSON(w, mappers)
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.serveHealth)
	mux.HandleFunc("GET /mappers", s.serveMappers)
	mux.HandleFunc("GET /version", func(w http.ResponseWriter, r *http.Request) {
		s.serveJSON(w, map[string]string{"version": s.opts.Version})
	})

	return mux
}

// Serve starts the HTTP server on s.opts.Addr using the wrapped handler.
func (s *Server) Serve() error {
	handler := s.Handler()
	log.Printf("Go server listening on http://%s", s.opts.Addr)
	return http.ListenAndServe(s.opts.Addr, handler)
}

func (s *Server) Handler() http.Handler {
	return s.withRequestLogging(s.routes())
}
