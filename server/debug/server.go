//
// Tencent is pleased to support the open source community by making trpc-agent-tracelog available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-tracelog is licensed under the Apache License Version 2.0.
//
//

// Package debug provides an HTTP server for rebuilding execution logs from
// trace snapshots. The admin portal posts a session's trace events plus the
// current graph and gets back the ordered, deduplicated timeline.
package debug

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/panjf2000/ants/v2"
	"github.com/rs/cors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"trpc.group/trpc-go/trpc-agent-tracelog/event"
	"trpc.group/trpc-go/trpc-agent-tracelog/graph"
	"trpc.group/trpc-go/trpc-agent-tracelog/log"
	"trpc.group/trpc-go/trpc-agent-tracelog/render"
	"trpc.group/trpc-go/trpc-agent-tracelog/telemetry"
	"trpc.group/trpc-go/trpc-agent-tracelog/timeline"
)

// defaultPoolSize bounds concurrent session rebuilds in the batch endpoint.
// A single session's rebuild is always single-threaded and deterministic;
// the pool only spreads independent sessions across workers.
const defaultPoolSize = 8

// Server exposes the log-rebuild endpoints over HTTP.
type Server struct {
	router   *mux.Router
	pool     *ants.Pool
	poolSize int
}

// Option configures the Server instance.
type Option func(*Server)

// WithPoolSize sets the worker count for batch rebuilds.
func WithPoolSize(size int) Option {
	return func(s *Server) {
		if size > 0 {
			s.poolSize = size
		}
	}
}

// New creates the debug HTTP server.
func New(opts ...Option) (*Server, error) {
	s := &Server{
		router:   mux.NewRouter(),
		poolSize: defaultPoolSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	pool, err := ants.NewPool(s.poolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	s.pool = pool

	// CORS middleware for the admin portal frontend.
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
	})
	s.router.Use(c.Handler)
	s.registerRoutes()
	return s, nil
}

// Handler returns the http.Handler for the server.
func (s *Server) Handler() http.Handler { return s.router }

// Close releases the batch worker pool.
func (s *Server) Close() {
	s.pool.Release()
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/v1/logs/rebuild", s.handleRebuild).Methods(http.MethodPost)
	s.router.HandleFunc("/v1/logs/rebuild-batch", s.handleRebuildBatch).Methods(http.MethodPost)
	s.router.HandleFunc("/v1/logs/render", s.handleRender).Methods(http.MethodPost)

	// OPTIONS handlers to allow CORS pre-flight.
	preflight := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
	s.router.HandleFunc("/v1/logs/rebuild", preflight).Methods(http.MethodOptions)
	s.router.HandleFunc("/v1/logs/rebuild-batch", preflight).Methods(http.MethodOptions)
	s.router.HandleFunc("/v1/logs/render", preflight).Methods(http.MethodOptions)
}

// rebuildRequest is one session's rebuild input. Messages are the fallback
// when the session has no trace events.
type rebuildRequest struct {
	Events         []*event.Event     `json:"events"`
	Graph          *graph.Graph       `json:"graph"`
	KnowledgeNames map[string]string  `json:"knowledgeNames,omitempty"`
	Messages       []timeline.Message `json:"messages,omitempty"`
}

// rebuildResponse is the ordered timeline for one session.
type rebuildResponse struct {
	Entries   []*timeline.Entry `json:"entries"`
	TotalTime string            `json:"totalTime"`
}

// rebuild runs the reconstruction pipeline for one request.
func rebuild(req *rebuildRequest) rebuildResponse {
	if len(req.Events) == 0 && len(req.Messages) > 0 {
		return rebuildResponse{Entries: timeline.BuildFromMessages(req.Messages)}
	}
	a := timeline.New(req.Graph, timeline.WithKnowledgeNames(req.KnowledgeNames))
	entries, totalTime := a.Build(req.Events)
	return rebuildResponse{Entries: entries, TotalTime: totalTime}
}

// ---- Handlers -----------------------------------------------------------

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	_, span := telemetry.Tracer.Start(r.Context(), "tracelog.rebuild")
	defer span.End()

	var req rebuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	resp := rebuild(&req)
	span.SetAttributes(
		attribute.Int("tracelog.events", len(req.Events)),
		attribute.Int("tracelog.entries", len(resp.Entries)),
	)
	writeJSON(w, http.StatusOK, resp)
}

// batchRequest rebuilds several sessions in one call.
type batchRequest struct {
	Sessions map[string]*rebuildRequest `json:"sessions"`
}

func (s *Server) handleRebuildBatch(w http.ResponseWriter, r *http.Request) {
	_, span := telemetry.Tracer.Start(r.Context(), "tracelog.rebuild_batch",
		trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]rebuildResponse, len(req.Sessions))
	)
	for id, session := range req.Sessions {
		if session == nil {
			continue
		}
		wg.Add(1)
		if err := s.pool.Submit(func() {
			defer wg.Done()
			resp := rebuild(session)
			mu.Lock()
			results[id] = resp
			mu.Unlock()
		}); err != nil {
			wg.Done()
			log.Errorf("batch rebuild submit failed for session %s: %v", id, err)
		}
	}
	wg.Wait()

	span.SetAttributes(attribute.Int("tracelog.sessions", len(results)))
	writeJSON(w, http.StatusOK, map[string]any{"sessions": results})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req rebuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	resp := rebuild(&req)
	html, err := render.HTML(resp.Entries, resp.TotalTime)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(html)); err != nil {
		log.Errorf("write render response: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Errorf("write json response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
