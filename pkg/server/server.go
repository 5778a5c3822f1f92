// Package server serves a read-only HTTP view of an opened store.
package server

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/luxfi/cfdump/pkg/database"
	"github.com/luxfi/cfdump/pkg/inspect"
	"github.com/luxfi/cfdump/pkg/render"
)

const (
	contentTypeJSON        = "application/json"
	defaultAddr            = ":8080"
	defaultShutdownTimeout = 5 * time.Second

	DefaultLimit = 100
	MaxLimit     = 10000
)

// Server exposes partitions, entries, properties and metrics over HTTP.
type Server struct {
	store      *database.Store
	inspector  *inspect.Inspector
	gatherer   prometheus.Gatherer
	log        log.Logger
	addr       string
	httpServer *http.Server
	listener   net.Listener
}

// New creates a server for store. A nil gatherer disables /metrics.
func New(store *database.Store, gatherer prometheus.Gatherer, logger log.Logger, addr string) *Server {
	if addr == "" {
		addr = defaultAddr
	}
	return &Server{
		store:     store,
		inspector: inspect.NewInspector(store),
		gatherer:  gatherer,
		log:       logger,
		addr:      addr,
	}
}

// Addr returns the bound address once Start has returned.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Start binds the listen address and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("HTTP server error", "error", err)
		}
	}()

	s.log.Info("HTTP server started", "addr", s.Addr())
	return nil
}

// Stop shuts the server down, waiting up to five seconds for requests.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	return nil
}

// Router builds the chi router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)
	r.Get("/partitions", s.handlePartitions)
	r.Get("/partitions/{name}/entries", s.handleEntries)
	r.Get("/properties/{name}", s.handleProperty)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return r
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Warn("Error encoding response", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, newOKResponse())
}

func (s *Server) handlePartitions(w http.ResponseWriter, _ *http.Request) {
	parts := s.store.Partitions()
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		names = append(names, p.Name())
	}
	s.writeJSON(w, http.StatusOK, PartitionsResponse{Engine: string(s.store.Engine()), Partitions: names})
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	q := r.URL.Query()

	limit := DefaultLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeJSON(w, http.StatusBadRequest, newErrorResponse("limit must be a positive integer"))
			return
		}
		limit = min(n, MaxLimit)
	}

	format := render.Auto
	if v := q.Get("format"); v != "" {
		f, err := render.Parse(v)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, newErrorResponse(err.Error()))
			return
		}
		format = f
	}

	opts := inspect.ScanOptions{Limit: limit + 1}
	if v := q.Get("prefix"); v != "" {
		opts.Prefix = render.ParseInput(v)
	}
	if v := q.Get("from"); v != "" {
		opts.From = render.ParseInput(v)
	}

	results, err := s.inspector.Scan(r.Context(), name, opts)
	switch {
	case errors.Is(err, database.ErrPartitionNotFound):
		s.writeJSON(w, http.StatusNotFound, newErrorResponse(err.Error()))
		return
	case err != nil:
		s.log.Warn("Scan failed", "partition", name, "error", err)
		s.writeJSON(w, http.StatusInternalServerError, newErrorResponse(err.Error()))
		return
	}

	resp := EntriesResponse{Partition: name, Format: string(format), Entries: make([]Entry, 0, len(results))}
	if len(results) > limit {
		resp.Next = "0x" + hex.EncodeToString(results[limit].Key)
		results = results[:limit]
	}
	for _, res := range results {
		resp.Entries = append(resp.Entries, Entry{Key: format.Bytes(res.Key), Value: format.Bytes(res.Value)})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleProperty(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	value, ok := s.store.Property(name)
	if !ok {
		s.writeJSON(w, http.StatusNotFound, newErrorResponse("unknown property "+name))
		return
	}
	s.writeJSON(w, http.StatusOK, PropertyResponse{Name: name, Value: value})
}
