// Package server exposes resource handlers over http.
//
// Routes:
//
//  POST /invoke     invoke a handler once and return its progress event
//  POST /runs       drive a request to a terminal event
//  GET  /runs/{id}  get the checkpoint of a run
//  GET  /types      list supported resource types
//  GET  /metrics    prometheus metrics
//
// Request and response bodies are json. Handler failures are not http
// errors: a FAILED progress event is returned with status 200.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/func/cfn-sagemaker/handler"
	"github.com/func/cfn-sagemaker/orchestrator"
	"github.com/func/cfn-sagemaker/storage"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Handlers dispatches requests to resource handlers. It is implemented by
// *handler.Registry.
type Handlers interface {
	Invoke(ctx context.Context, req *handler.Request, logger *zap.Logger) *handler.ProgressEvent
	Types() []string
}

// An Error is a json encoded error message from the server.
type Error struct {
	Msg string `json:"message"`
}

// Server serves handler requests over http.
type Server struct {
	Handlers Handlers
	Logger   *zap.Logger

	// Driver drives runs. The driver's invoker is replaced with Handlers. If
	// not set, the /runs routes are not available.
	Driver *orchestrator.Driver

	// Metrics collects invocation metrics. If not set, metrics are collected
	// in a new registry.
	Metrics *Metrics

	once    sync.Once
	router  *http.ServeMux
	handler http.Handler
	driver  *orchestrator.Driver
}

func (s *Server) setupRoutes() {
	if s.Logger == nil {
		s.Logger = zap.NewNop()
	}
	if s.Metrics == nil {
		s.Metrics = NewMetrics()
	}
	s.Metrics.setTypes(s.Handlers.Types())
	s.router = http.NewServeMux()
	s.router.HandleFunc("/invoke", s.handleInvoke())
	s.router.HandleFunc("/types", s.handleTypes())
	s.router.Handle("/metrics", s.Metrics.Handler())
	if s.Driver != nil {
		d := *s.Driver
		d.Invoker = &instrumented{handlers: s.Handlers, metrics: s.Metrics}
		if d.Logger == nil {
			d.Logger = s.Logger
		}
		s.driver = &d
		s.router.HandleFunc("/runs", s.handleRun())
		s.router.HandleFunc("/runs/", s.handleGetRun())
	}
	s.handler = logMiddleware(s.Logger)(s.router)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.once.Do(s.setupRoutes)
	s.handler.ServeHTTP(w, r)
}

func (s *Server) respond(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.Logger.Error("Could not encode json response", zap.Error(err))
	}
}

// decodeRequest decodes a handler request from a json body. On failure, an
// error response is written and false is returned.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (*handler.Request, bool) {
	if r.Method != http.MethodPost {
		s.respond(w, Error{Msg: "Method not allowed"}, http.StatusMethodNotAllowed)
		return nil, false
	}
	if r.Body == nil || r.Body == http.NoBody {
		s.Logger.Debug("Body not set")
		s.respond(w, Error{Msg: "No body"}, http.StatusBadRequest)
		return nil, false
	}
	defer func() {
		_ = r.Body.Close()
	}()
	if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		s.respond(w, Error{Msg: "Invalid content type"}, http.StatusUnsupportedMediaType)
		return nil, false
	}

	var req handler.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.Logger.Debug("Could not decode body", zap.Error(err))
		s.respond(w, Error{Msg: "Could not decode body"}, http.StatusBadRequest)
		return nil, false
	}
	if req.TypeName == "" {
		s.respond(w, Error{Msg: "typeName is required"}, http.StatusBadRequest)
		return nil, false
	}
	return &req, true
}

func (s *Server) handleInvoke() http.HandlerFunc {
	inv := &instrumented{handlers: s.Handlers, metrics: s.Metrics}
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := s.decodeRequest(w, r)
		if !ok {
			return
		}
		ev := inv.Invoke(r.Context(), req, s.Logger)
		s.respond(w, ev, http.StatusOK)
	}
}

type typesResponse struct {
	Types []string `json:"types"`
}

func (s *Server) handleTypes() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			s.respond(w, Error{Msg: "Method not allowed"}, http.StatusMethodNotAllowed)
			return
		}
		s.respond(w, typesResponse{Types: s.Handlers.Types()}, http.StatusOK)
	}
}

type runResponse struct {
	ID          string                 `json:"id"`
	Event       *handler.ProgressEvent `json:"event"`
	Models      []interface{}          `json:"models,omitempty"`
	Invocations int                    `json:"invocations"`
}

func (s *Server) handleRun() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := s.decodeRequest(w, r)
		if !ok {
			return
		}
		res, err := s.driver.Run(r.Context(), req)
		if err != nil {
			s.Logger.Error("Run error", zap.Error(err))
			s.respond(w, Error{Msg: "Could not complete run"}, http.StatusInternalServerError)
			return
		}
		s.Metrics.observeRun(req, res.Event.Status)
		s.respond(w, runResponse{
			ID:          res.ID,
			Event:       res.Event,
			Models:      res.Models,
			Invocations: res.Invocations,
		}, http.StatusOK)
	}
}

func (s *Server) handleGetRun() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			s.respond(w, Error{Msg: "Method not allowed"}, http.StatusMethodNotAllowed)
			return
		}
		if s.driver.Runs == nil {
			s.respond(w, Error{Msg: "Runs are not stored"}, http.StatusNotFound)
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/runs/")
		cp, err := s.driver.Runs.Get(r.Context(), id)
		if err != nil {
			if errors.Cause(err) == storage.ErrNotFound {
				s.respond(w, Error{Msg: "Run not found"}, http.StatusNotFound)
				return
			}
			s.Logger.Error("Get run", zap.Error(err))
			s.respond(w, Error{Msg: "Could not get run"}, http.StatusInternalServerError)
			return
		}
		s.respond(w, cp, http.StatusOK)
	}
}

// instrumented records metrics for every invocation.
type instrumented struct {
	handlers Handlers
	metrics  *Metrics
}

func (i *instrumented) Invoke(ctx context.Context, req *handler.Request, logger *zap.Logger) *handler.ProgressEvent {
	start := time.Now()
	ev := i.handlers.Invoke(ctx, req, logger)
	i.metrics.observeInvocation(req, ev, time.Since(start))
	return ev
}
