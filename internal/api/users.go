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
	"net/url"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/satquest/satquest/internal/auth"
	"github.com/satquest/satquest/internal/model"
	"github.com/satquest/satquest/internal/store"
)

func (a *API) handleAuthStart(w http.ResponseWriter, r *http.Request) {
	state := auth.NewState()
	authURL, err := a.auth.AuthURL(state)
	if err != nil {
		if errors.Is(err, auth.ErrNotConfigured) {
			writeError(w, http.StatusServiceUnavailable, "GitHub sign-in is not configured")
			return
		}
		internalError(w, r, err, "Failed to start sign-in")
		return
	}

	a.auth.SetStateCookie(w, state)
	writeJSON(w, http.StatusOK, map[string]string{"url": authURL})
}

func (a *API) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	code := q.Get("code")
	if code == "" {
		signInError(w, r, "missing_code")
		return
	}
	if !a.auth.CheckState(w, r, q.Get("state")) {
		signInError(w, r, "invalid_state")
		return
	}

	_, sess, err := a.auth.Login(r.Context(), code)
	if err != nil {
		log.FromContext(r.Context()).Error(err, "GitHub sign-in failed")
		signInError(w, r, "auth_failed")
		return
	}

	a.auth.SetSessionCookie(w, sess)
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func signInError(w http.ResponseWriter, r *http.Request, reason string) {
	http.Redirect(w, r, "/sign-in?error="+url.QueryEscape(reason), http.StatusFound)
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := auth.SessionFromContext(r.Context()); ok {
		if err := a.auth.Logout(r.Context(), sess.Token); err != nil {
			internalError(w, r, err, "Failed to sign out")
			return
		}
	}
	a.auth.ClearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"user": currentUser(r)})
}

func (a *API) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := a.store.GetProfile(r.Context(), currentUser(r).ID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Profile not found")
		return
	case err != nil:
		internalError(w, r, err, "Failed to fetch profile")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profile": profile})
}

type profileRequest struct {
	DisplayName      string `json:"display_name"`
	GitHubUsername   string `json:"github_username"`
	LightningAddress string `json:"lightning_address"`
	Bio              string `json:"bio"`
}

func (a *API) handleUpsertProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.DisplayName == "" || req.GitHubUsername == "" {
		writeError(w, http.StatusBadRequest, "Display name and GitHub username are required")
		return
	}

	created, err := a.store.UpsertProfile(r.Context(), &model.Profile{
		UserID:           currentUser(r).ID,
		DisplayName:      req.DisplayName,
		GitHubUsername:   req.GitHubUsername,
		LightningAddress: req.LightningAddress,
		Bio:              req.Bio,
	})
	if err != nil {
		internalError(w, r, err, "Failed to save profile")
		return
	}

	msg := "Profile updated successfully"
	if created {
		msg = "Profile created successfully"
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}
