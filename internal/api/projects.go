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

	"github.com/satquest/satquest/internal/model"
	"github.com/satquest/satquest/internal/store"
)

type projectRequest struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	RepositoryURL string   `json:"repository_url"`
	Languages     []string `json:"languages"`
}

func (req *projectRequest) valid() bool {
	return req.Name != "" && req.Description != "" && req.RepositoryURL != ""
}

func (a *API) handleListProjects(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)

	projects, total, err := a.store.ListProjects(r.Context(), limit, (page-1)*limit)
	if err != nil {
		internalError(w, r, err, "Failed to fetch projects")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"projects":   projects,
		"pagination": newPagination(total, page, limit),
	})
}

func (a *API) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.valid() {
		writeError(w, http.StatusBadRequest, "Name, description, and repository URL are required")
		return
	}

	user := currentUser(r)
	project := &model.Project{
		Name:          req.Name,
		Description:   req.Description,
		RepositoryURL: req.RepositoryURL,
		Languages:     req.Languages,
		OwnerID:       user.ID,
		GitHubOwnerID: user.GitHubID,
	}
	if err := a.store.CreateProject(r.Context(), project); err != nil {
		internalError(w, r, err, "Failed to create project")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Project created successfully",
		"project": project,
	})
}

func (a *API) handleGetProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(r, "projectID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	project, err := a.store.GetProject(r.Context(), projectID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Project not found")
		return
	case err != nil:
		internalError(w, r, err, "Failed to fetch project")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"project": project})
}

func (a *API) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	project := a.ownedProject(w, r, "update this project")
	if project == nil {
		return
	}

	var req projectRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.valid() {
		writeError(w, http.StatusBadRequest, "Name, description, and repository URL are required")
		return
	}

	project.Name = req.Name
	project.Description = req.Description
	project.RepositoryURL = req.RepositoryURL
	project.Languages = req.Languages
	if err := a.store.UpdateProject(r.Context(), project); err != nil {
		internalError(w, r, err, "Failed to update project")
		return
	}

	updated, err := a.store.GetProject(r.Context(), project.ID)
	if err != nil {
		internalError(w, r, err, "Failed to fetch project")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Project updated successfully",
		"project": updated,
	})
}

func (a *API) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	project := a.ownedProject(w, r, "delete this project")
	if project == nil {
		return
	}

	if err := a.store.DeleteProject(r.Context(), project.ID); err != nil {
		internalError(w, r, err, "Failed to delete project")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Project deleted successfully"})
}
