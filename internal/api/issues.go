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

type issueRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Number       int    `json:"github_issue_id"`
	RewardAmount int64  `json:"reward_amount"`
	Status       string `json:"status"`
}

func (req *issueRequest) valid() bool {
	return req.Title != "" && req.Description != "" && req.Number > 0 && req.RewardAmount > 0
}

const issueFieldsRequired = "Title, description, GitHub issue ID, and reward amount are required"

func (a *API) handleListIssues(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)

	status := model.StatusOpen
	if v := r.URL.Query().Get("status"); v != "" {
		st, err := model.ParseStatus(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid status")
			return
		}
		status = st
	}

	issues, total, err := a.store.ListIssues(r.Context(), status, limit, (page-1)*limit)
	if err != nil {
		internalError(w, r, err, "Failed to fetch issues")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"issues":     issues,
		"pagination": newPagination(total, page, limit),
	})
}

func (a *API) handleListProjectIssues(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(r, "projectID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var status model.Status
	if v := r.URL.Query().Get("status"); v != "" {
		st, err := model.ParseStatus(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid status")
			return
		}
		status = st
	}

	issues, err := a.store.ListProjectIssues(r.Context(), projectID, status)
	if err != nil {
		internalError(w, r, err, "Failed to fetch issues")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"issues": issues})
}

func (a *API) handleCreateIssue(w http.ResponseWriter, r *http.Request) {
	project := a.ownedProject(w, r, "add issues")
	if project == nil {
		return
	}

	var req issueRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.valid() {
		writeError(w, http.StatusBadRequest, issueFieldsRequired)
		return
	}

	issue := &model.Issue{
		ProjectID:    project.ID,
		Number:       req.Number,
		Title:        req.Title,
		Body:         req.Description,
		Status:       model.StatusOpen,
		RewardAmount: req.RewardAmount,
	}
	if err := a.store.CreateIssue(r.Context(), issue); err != nil {
		internalError(w, r, err, "Failed to create issue")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Issue created successfully",
		"issue":   issue,
	})
}

func (a *API) handleGetIssue(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(r, "projectID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}
	issueID, ok := pathID(r, "issueID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid issue ID")
		return
	}

	issue, err := a.store.GetIssue(r.Context(), projectID, issueID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Issue not found")
		return
	case err != nil:
		internalError(w, r, err, "Failed to fetch issue")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"issue": issue})
}

func (a *API) handleUpdateIssue(w http.ResponseWriter, r *http.Request) {
	project := a.ownedProject(w, r, "update issues")
	if project == nil {
		return
	}
	issueID, ok := pathID(r, "issueID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid issue ID")
		return
	}

	var req issueRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.valid() {
		writeError(w, http.StatusBadRequest, issueFieldsRequired)
		return
	}

	status := model.StatusOpen
	if req.Status != "" {
		st, err := model.ParseStatus(req.Status)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid status")
			return
		}
		status = st
	}

	err := a.store.UpdateIssue(r.Context(), &model.Issue{
		ID:           issueID,
		ProjectID:    project.ID,
		Number:       req.Number,
		Title:        req.Title,
		Body:         req.Description,
		Status:       status,
		RewardAmount: req.RewardAmount,
	})
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Issue not found")
		return
	case err != nil:
		internalError(w, r, err, "Failed to update issue")
		return
	}

	issue, err := a.store.GetIssue(r.Context(), project.ID, issueID)
	if err != nil {
		internalError(w, r, err, "Failed to fetch issue")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Issue updated successfully",
		"issue":   issue,
	})
}

func (a *API) handleDeleteIssue(w http.ResponseWriter, r *http.Request) {
	project := a.ownedProject(w, r, "delete issues")
	if project == nil {
		return
	}
	issueID, ok := pathID(r, "issueID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid issue ID")
		return
	}

	err := a.store.DeleteIssue(r.Context(), project.ID, issueID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Issue not found")
		return
	case err != nil:
		internalError(w, r, err, "Failed to delete issue")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Issue deleted successfully"})
}
