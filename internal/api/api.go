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

// Package api implements the SatQuest JSON REST API: sign-in, projects,
// their bounty issues and rewards, and the GitHub repository and webhook
// management used to connect a project to SatQuest.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/satquest/satquest/internal/auth"
	"github.com/satquest/satquest/internal/config"
	"github.com/satquest/satquest/internal/model"
	"github.com/satquest/satquest/internal/store"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
	maxBodyBytes    = 1 << 20
)

// Store is the persistence the API reads and writes.
type Store interface {
	CreateProject(ctx context.Context, p *model.Project) error
	GetProject(ctx context.Context, id int64) (*model.Project, error)
	ListProjects(ctx context.Context, limit, offset int) ([]*model.Project, int, error)
	UpdateProject(ctx context.Context, p *model.Project) error
	DeleteProject(ctx context.Context, id int64) error

	CreateIssue(ctx context.Context, is *model.Issue) error
	GetIssue(ctx context.Context, projectID, id int64) (*model.Issue, error)
	ListProjectIssues(ctx context.Context, projectID int64, status model.Status) ([]*model.Issue, error)
	ListIssues(ctx context.Context, status model.Status, limit, offset int) ([]*model.IssueWithProject, int, error)
	UpdateIssue(ctx context.Context, is *model.Issue) error
	DeleteIssue(ctx context.Context, projectID, id int64) error

	PayReward(ctx context.Context, r *model.Reward, pay store.PayFunc) error

	UpsertProfile(ctx context.Context, p *model.Profile) (bool, error)
	GetProfile(ctx context.Context, userID int64) (*model.Profile, error)
}

// RewardRecorder observes reward payment results.
type RewardRecorder interface {
	RecordReward(paid bool)
}

// API serves the REST endpoints.
type API struct {
	store    Store
	auth     *auth.Service
	cfg      *config.Config
	pay      store.PayFunc
	recorder RewardRecorder
}

// Option configures an API.
type Option func(*API)

// WithPayer sets the function that sends reward payments. Without one,
// rewards are recorded as paid immediately.
func WithPayer(pay store.PayFunc) Option {
	return func(a *API) { a.pay = pay }
}

// WithRewardRecorder reports reward payment results to rec.
func WithRewardRecorder(rec RewardRecorder) Option {
	return func(a *API) { a.recorder = rec }
}

// New creates the API.
func New(cfg *config.Config, s Store, authSvc *auth.Service, opts ...Option) *API {
	a := &API{
		store: s,
		auth:  authSvc,
		cfg:   cfg,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Register adds the API routes to mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/auth/github", a.handleAuthStart)
	mux.HandleFunc("GET /api/auth/github/callback", a.handleAuthCallback)
	mux.Handle("POST /api/auth/logout", a.requireUser(a.handleLogout))
	mux.Handle("GET /api/me", a.requireUser(a.handleMe))
	mux.Handle("GET /api/profile", a.requireUser(a.handleGetProfile))
	mux.Handle("POST /api/profile", a.requireUser(a.handleUpsertProfile))

	mux.HandleFunc("GET /api/projects", a.handleListProjects)
	mux.Handle("POST /api/projects", a.requireUser(a.handleCreateProject))
	mux.HandleFunc("GET /api/projects/{projectID}", a.handleGetProject)
	mux.Handle("PUT /api/projects/{projectID}", a.requireUser(a.handleUpdateProject))
	mux.Handle("DELETE /api/projects/{projectID}", a.requireUser(a.handleDeleteProject))

	mux.HandleFunc("GET /api/projects/{projectID}/issues", a.handleListProjectIssues)
	mux.Handle("POST /api/projects/{projectID}/issues", a.requireUser(a.handleCreateIssue))
	mux.HandleFunc("GET /api/projects/{projectID}/issues/{issueID}", a.handleGetIssue)
	mux.Handle("PUT /api/projects/{projectID}/issues/{issueID}", a.requireUser(a.handleUpdateIssue))
	mux.Handle("DELETE /api/projects/{projectID}/issues/{issueID}", a.requireUser(a.handleDeleteIssue))
	mux.Handle("POST /api/projects/{projectID}/issues/{issueID}/reward", a.requireUser(a.handlePayReward))

	mux.HandleFunc("GET /api/issues", a.handleListIssues)

	mux.Handle("GET /api/github/repos", a.requireUser(a.handleListRepos))
	mux.Handle("GET /api/github/webhooks", a.requireUser(a.handleListWebhooks))
	mux.Handle("POST /api/github/webhooks", a.requireUser(a.handleCreateWebhook))
	mux.Handle("DELETE /api/github/webhooks", a.requireUser(a.handleDeleteWebhook))
}

func (a *API) requireUser(h http.HandlerFunc) http.Handler {
	return a.auth.RequireUser(h)
}

// currentUser returns the user put into the request context by requireUser.
func currentUser(r *http.Request) *model.User {
	u, _ := auth.UserFromContext(r.Context())
	return u
}

// Pagination describes one page of a list response.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// pageParams reads page and limit from the query string. Missing or invalid
// values fall back to the first page of defaultPageSize.
func pageParams(r *http.Request) (page, limit int) {
	page, limit = 1, defaultPageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = min(v, maxPageSize)
	}
	return page, limit
}

func newPagination(total, page, limit int) Pagination {
	return Pagination{
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: int(math.Ceil(float64(total) / float64(limit))),
	}
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil && id > 0
}

// decodeBody reads a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// internalError logs err and answers 500 with msg.
func internalError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	log.FromContext(r.Context()).Error(err, msg, "method", r.Method, "path", r.URL.Path)
	writeError(w, http.StatusInternalServerError, msg)
}

// ownedProject loads the project named in the path and checks that the
// current user owns it. It writes the error response and returns nil when
// the request cannot proceed.
func (a *API) ownedProject(w http.ResponseWriter, r *http.Request, action string) *model.Project {
	projectID, ok := pathID(r, "projectID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid project ID")
		return nil
	}

	project, err := a.store.GetProject(r.Context(), projectID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Project not found")
		return nil
	case err != nil:
		internalError(w, r, err, "Failed to fetch project")
		return nil
	}

	if project.OwnerID != currentUser(r).ID {
		writeError(w, http.StatusForbidden, "You do not have permission to "+action)
		return nil
	}
	return project
}
