// Package api serves the analysis pipeline over HTTP.
//
// # Endpoints
//
//	GET  /healthz        liveness and build version
//	POST /v1/analyze     body: newline-separated links → JSON report
//	POST /v1/render      body: newline-separated links → DOT, SVG, PNG, PDF or JSON
//
// Both POST endpoints accept the query parameters prefix, all, strategy and
// workers; /v1/render additionally takes format, engine, detailed and
// highlight. Unset parameters fall back to the server's defaults.
//
// Every response carries an X-Request-ID header. Errors are JSON objects
// {"code": ..., "message": ...} with the HTTP status derived from the
// pkg/errors code.
//
// Identical concurrent analyses (same input and options) are collapsed into
// one pipeline run and share its report, including the run ID.
package api

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/lanparty/pkg/pipeline"
)

// DefaultMaxBodyBytes limits request bodies.
const DefaultMaxBodyBytes = 32 << 20

// Server holds the HTTP handlers' dependencies.
type Server struct {
	runner   *pipeline.Runner
	logger   *log.Logger
	defaults pipeline.Options
	group    singleflight.Group

	// MaxBodyBytes limits request bodies. Zero uses DefaultMaxBodyBytes.
	MaxBodyBytes int64
}

// New creates a server. defaults seeds the analysis options of every request;
// query parameters override them.
func New(runner *pipeline.Runner, logger *log.Logger, defaults pipeline.Options) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner:   runner,
		logger:   logger,
		defaults: defaults,
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/render", s.handleRender)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErrorCode(w, http.StatusNotFound, "NOT_FOUND", "no route for "+r.Method+" "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeErrorCode(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" not allowed on "+r.URL.Path)
	})
	return r
}

func (s *Server) maxBody() int64 {
	if s.MaxBodyBytes > 0 {
		return s.MaxBodyBytes
	}
	return DefaultMaxBodyBytes
}
