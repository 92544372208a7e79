// Copyright 2025 The SatQuest Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server runs the SatQuest HTTP server: the GitHub webhook endpoint,
// the REST API, health checks and Prometheus metrics on one listener.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

// WebhookPath is where GitHub delivers webhook events.
const WebhookPath = "/api/webhooks/github"

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Registrar adds routes to a mux.
type Registrar interface {
	Register(mux *http.ServeMux)
}

// Server is the SatQuest HTTP server.
type Server struct {
	addr     string
	port     int
	webhook  http.Handler
	metrics  http.Handler
	api      Registrar
	database Pinger
	server   *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithWebhook serves GitHub webhook deliveries with h.
func WithWebhook(h http.Handler) Option {
	return func(s *Server) { s.webhook = h }
}

// WithAPI registers the REST API routes.
func WithAPI(r Registrar) Option {
	return func(s *Server) { s.api = r }
}

// WithMetrics serves h on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithHealthCheck makes /healthz fail while p cannot be pinged.
func WithHealthCheck(p Pinger) Option {
	return func(s *Server) { s.database = p }
}

// New creates a server listening on addr:port.
func New(addr string, port int, opts ...Option) *Server {
	s := &Server{addr: addr, port: port}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the complete request handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}
	if s.webhook != nil {
		mux.Handle(WebhookPath, s.webhook)
	}
	if s.api != nil {
		s.api.Register(mux)
	}
	return requestLogger(mux)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.addr, s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return context.WithoutCancel(ctx)
		},
	}

	errChan := make(chan error, 1)
	go func() {
		log.FromContext(ctx).Info("Starting server", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	log.FromContext(ctx).Info("Shutting down server")
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.database != nil {
		if err := s.database.Ping(r.Context()); err != nil {
			log.FromContext(r.Context()).Error(err, "Health check failed")
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK")) //nolint:errcheck
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// requestLogger tags the request context with a request ID and logs each
// request once it completes.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := log.FromContext(r.Context()).WithValues(
			"requestID", uuid.NewString(),
			"method", r.Method,
			"path", r.URL.Path,
		)
		r = r.WithContext(log.IntoContext(r.Context(), logger))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.V(1).Info("Request completed", "status", rec.status, "duration", time.Since(start))
	})
}
