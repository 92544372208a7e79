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

package webhook

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/satquest/satquest/internal/config"
)

// maxPayloadBytes is GitHub's documented upper bound for webhook payloads.
const maxPayloadBytes = 25 << 20

// Handler is the HTTP endpoint GitHub delivers webhooks to.
type Handler struct {
	router        *Router
	secret        string
	surfaceErrors bool
	rateLimiter   *RateLimiter
	recorder      Recorder
}

// Option configures a Handler.
type Option func(*Handler)

// WithRecorder reports every delivery outcome to rec.
func WithRecorder(rec Recorder) Option {
	return func(h *Handler) {
		h.recorder = rec
	}
}

// WithRateLimiter replaces the rate limiter built from the configuration.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(h *Handler) {
		h.rateLimiter = rl
	}
}

// NewHandler creates the webhook endpoint from cfg.
func NewHandler(cfg config.WebhookConfig, router *Router, opts ...Option) *Handler {
	h := &Handler{
		router:        router,
		secret:        cfg.Secret,
		surfaceErrors: cfg.SurfaceStorageErrors,
	}
	if cfg.RateLimit > 0 {
		h.rateLimiter = NewRateLimiter(cfg.RateLimit, time.Second)
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP handles one GitHub webhook delivery.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
		return
	}

	signature := r.Header.Get(HeaderSignature)
	event := r.Header.Get(HeaderEvent)
	delivery := r.Header.Get(HeaderDelivery)
	if signature == "" || event == "" || delivery == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required headers"})
		return
	}

	logger := log.FromContext(r.Context()).WithValues("delivery", delivery, "event", event)
	ctx := log.IntoContext(r.Context(), logger)

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		logger.Error(err, "Failed to read request body")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}
	defer r.Body.Close()

	if err := Verify(payload, signature, h.secret); err != nil {
		if errors.Is(err, ErrSecretNotConfigured) {
			logger.Error(err, "Rejecting delivery")
		} else {
			logger.Info("Invalid webhook signature")
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid signature"})
		return
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		logger.Error(err, "Failed to parse JSON payload")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	if h.rateLimiter != nil && !h.rateLimiter.Allow(env.Repository.FullName) {
		logger.Info("Rate limit exceeded", "repository", env.Repository.FullName)
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "Too many requests"})
		return
	}

	res, err := h.router.Route(ctx, event, payload)
	if err != nil {
		logger.Error(err, "Failed to decode event payload")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}
	res.Delivery = delivery
	h.record(res)

	switch res.Outcome {
	case OutcomeFailed:
		logger.Error(res.Err, "Failed to process delivery", "action", res.Action, "repository", env.Repository.HTMLURL)
		if h.surfaceErrors {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to process event"})
			return
		}
	case OutcomeApplied, OutcomeDuplicate:
		logger.Info("Processed delivery", "action", res.Action, "project", res.ProjectID, "outcome", res.Outcome)
	default:
		logger.V(1).Info("Skipped delivery", "action", res.Action, "outcome", res.Outcome)
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) record(res Result) {
	if h.recorder != nil {
		h.recorder.RecordDelivery(res.Event, res.Outcome)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}
