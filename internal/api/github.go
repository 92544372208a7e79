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

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/satquest/satquest/internal/auth"
	"github.com/satquest/satquest/internal/github"
)

// userClient returns a GitHub client acting as the current user, writing the
// error response when there is none.
func (a *API) userClient(w http.ResponseWriter, r *http.Request) github.Client {
	client, err := a.auth.GitHubClient(r.Context(), currentUser(r).ID)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			writeError(w, http.StatusUnauthorized, "GitHub token not found or expired")
			return nil
		}
		internalError(w, r, err, "Failed to create GitHub client")
		return nil
	}
	return client
}

// githubError relays a failed GitHub call, keeping GitHub's status code when
// there is one.
func githubError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	status := github.StatusCode(err)
	if status < 400 {
		internalError(w, r, err, msg)
		return
	}
	writeJSON(w, status, map[string]string{"error": msg, "details": err.Error()})
}

func (a *API) handleListRepos(w http.ResponseWriter, r *http.Request) {
	client := a.userClient(w, r)
	if client == nil {
		return
	}

	q := r.URL.Query()
	opts := github.RepositoryListOptions{Page: 1, PerPage: 30, Visibility: "all"}
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		opts.Page = v
	}
	if v, err := strconv.Atoi(q.Get("per_page")); err == nil && v > 0 {
		opts.PerPage = min(v, maxPageSize)
	}
	switch v := q.Get("visibility"); v {
	case "":
	case "all", "public", "private":
		opts.Visibility = v
	default:
		writeError(w, http.StatusBadRequest, "Visibility must be one of all, public, private")
		return
	}

	repos, err := client.ListRepositories(r.Context(), opts)
	if err != nil {
		githubError(w, r, err, "Failed to fetch repositories")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"repos": repos})
}

func (a *API) handleListWebhooks(w http.ResponseWriter, r *http.Request) {
	owner, repo := r.URL.Query().Get("owner"), r.URL.Query().Get("repo")
	if owner == "" || repo == "" {
		writeError(w, http.StatusBadRequest, "Owner and repo query parameters are required")
		return
	}

	client := a.userClient(w, r)
	if client == nil {
		return
	}

	hooks, err := client.ListHooks(r.Context(), owner, repo)
	if err != nil {
		githubError(w, r, err, "Failed to fetch webhooks")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"webhooks": hooks})
}

type webhookRequest struct {
	Owner  string   `json:"owner"`
	Repo   string   `json:"repo"`
	Events []string `json:"events"`
	Config struct {
		URL         string `json:"url"`
		ContentType string `json:"content_type"`
	} `json:"config"`
}

// handleCreateWebhook registers SatQuest's webhook on a repository. The hook
// is always signed with the configured webhook secret.
func (a *API) handleCreateWebhook(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Owner == "" || req.Repo == "" {
		writeError(w, http.StatusBadRequest, "Owner and repo are required")
		return
	}
	if a.cfg.Webhook.Secret == "" {
		writeError(w, http.StatusServiceUnavailable, "Webhook secret is not configured")
		return
	}

	hookReq := &github.HookRequest{
		URL:         a.cfg.WebhookURL(),
		Events:      req.Events,
		ContentType: "json",
		Secret:      a.cfg.Webhook.Secret,
	}
	if len(hookReq.Events) == 0 {
		hookReq.Events = []string{"issues"}
	}
	if req.Config.URL != "" {
		hookReq.URL = req.Config.URL
	}
	if req.Config.ContentType != "" {
		hookReq.ContentType = req.Config.ContentType
	}

	client := a.userClient(w, r)
	if client == nil {
		return
	}

	hook, err := client.CreateHook(r.Context(), req.Owner, req.Repo, hookReq)
	if err != nil {
		githubError(w, r, err, "Failed to create webhook")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"webhook": hook})
}

type deleteWebhookRequest struct {
	Owner  string `json:"owner"`
	Repo   string `json:"repo"`
	HookID int64  `json:"hookId"`
}

func (a *API) handleDeleteWebhook(w http.ResponseWriter, r *http.Request) {
	var req deleteWebhookRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Owner == "" || req.Repo == "" || req.HookID == 0 {
		writeError(w, http.StatusBadRequest, "Owner, repo, and hookId are required")
		return
	}

	client := a.userClient(w, r)
	if client == nil {
		return
	}

	if err := client.DeleteHook(r.Context(), req.Owner, req.Repo, req.HookID); err != nil {
		githubError(w, r, err, "Failed to delete webhook")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
