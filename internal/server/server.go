// Package server provides a local mock of the PokeAPI GraphQL endpoint that
// serves an embedded fixture catalog.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/handler/lru"
	"github.com/raphaelgruber/pokerub/internal/schema"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// maxBodyBytes bounds a request body.
const maxBodyBytes = 1 << 20

// queryCacheSize is the number of parsed documents kept.
const queryCacheSize = 1000

// Server answers GraphQL queries over HTTP from a Catalog.
type Server struct {
	catalog *Catalog
	schema  *ast.Schema
	queries graphql.Cache[*ast.QueryDocument]
	latency time.Duration
	logger  *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithCatalog serves c instead of the embedded fixtures.
func WithCatalog(c *Catalog) Option {
	return func(s *Server) { s.catalog = c }
}

// WithLatency delays every GraphQL response by d.
func WithLatency(d time.Duration) Option {
	return func(s *Server) { s.latency = d }
}

// New creates a mock server.
func New(logger *slog.Logger, opts ...Option) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	sch, err := schema.Load()
	if err != nil {
		return nil, err
	}
	s := &Server{
		schema:  sch,
		queries: lru.New[*ast.QueryDocument](queryCacheSize),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.catalog == nil {
		if s.catalog, err = DefaultCatalog(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Handler returns the routes, wrapped in request logging:
//
//	POST /graphql          GraphQL endpoint
//	POST /graphql/v1beta   same, matching the public endpoint path
//	GET  /schema.graphql   the served SDL
//	GET  /health           liveness
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /graphql", s.handleGraphQL)
	mux.HandleFunc("POST /graphql/v1beta", s.handleGraphQL)
	mux.HandleFunc("GET /schema.graphql", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, schema.SDL())
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	return LoggingMiddleware(s.logger)(mux)
}

type graphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

type graphQLResponse struct {
	Data   any           `json:"data,omitempty"`
	Errors gqlerror.List `json:"errors,omitempty"`
}

func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if id := r.Header.Get(requestIDHeader); id != "" {
		w.Header().Set(requestIDHeader, id)
	}

	var req graphQLRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, graphQLResponse{
			Errors: gqlerror.List{gqlerror.Errorf("invalid request body: %s", err)},
		})
		return
	}
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, graphQLResponse{
			Errors: gqlerror.List{gqlerror.Errorf("query is required")},
		})
		return
	}
	if info := requestInfoFrom(ctx); info != nil {
		info.operation = req.OperationName
		info.query = req.Query
	}

	if s.latency > 0 {
		select {
		case <-time.After(s.latency):
		case <-ctx.Done():
			return
		}
	}

	doc, errs := s.parse(ctx, req.Query)
	if len(errs) > 0 {
		writeJSON(w, http.StatusOK, graphQLResponse{Errors: errs})
		return
	}

	data, errs := s.execute(doc, req.OperationName, req.Variables)
	writeJSON(w, http.StatusOK, graphQLResponse{Data: data, Errors: errs})
}

// parse validates query against the schema, caching documents by text.
func (s *Server) parse(ctx context.Context, query string) (*ast.QueryDocument, gqlerror.List) {
	if doc, ok := s.queries.Get(ctx, query); ok {
		return doc, nil
	}
	doc, errs := gqlparser.LoadQuery(s.schema, query)
	if len(errs) > 0 {
		return nil, errs
	}
	s.queries.Add(ctx, query, doc)
	return doc, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
