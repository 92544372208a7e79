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

// Package model defines the records SatQuest stores: projects, the GitHub
// issues, pull requests and comments mirrored into them, and the bounty
// rewards paid out against issues.
package model

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of an Issue or PullRequest.
type Status string

const (
	StatusOpen       Status = "open"
	StatusClosed     Status = "closed"
	StatusReopened   Status = "reopened"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

var validStatuses = map[Status]bool{
	StatusOpen:       true,
	StatusClosed:     true,
	StatusReopened:   true,
	StatusInProgress: true,
	StatusCompleted:  true,
}

// ParseStatus returns the Status for s or an error if s is not a known status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !validStatuses[st] {
		return "", fmt.Errorf("invalid status %q", s)
	}
	return st, nil
}

// RewardStatus is the payment state of a Reward.
type RewardStatus string

const (
	RewardPending RewardStatus = "pending"
	RewardPaid    RewardStatus = "paid"
	RewardFailed  RewardStatus = "failed"
)

// Project is a GitHub repository listed by a maintainer. RepositoryURL is the
// key webhook deliveries are resolved against and is compared verbatim.
type Project struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	RepositoryURL string    `json:"repository_url"`
	Languages     []string  `json:"languages"`
	OwnerID       int64     `json:"owner_id"`
	GitHubOwnerID string    `json:"github_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Issue is a bounty-bearing issue. GitHubID is GitHub's stable issue id and
// is unique across all projects.
type Issue struct {
	ID             int64     `json:"id"`
	ProjectID      int64     `json:"project_id"`
	GitHubID       string    `json:"github_id"`
	Number         int       `json:"github_issue_id"`
	Title          string    `json:"title"`
	Body           string    `json:"description"`
	Status         Status    `json:"status"`
	GitHubURL      string    `json:"github_url,omitempty"`
	AuthorGitHubID string    `json:"user_github_id,omitempty"`
	AuthorLogin    string    `json:"user_login,omitempty"`
	RewardAmount   int64     `json:"reward_amount"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IssueWithProject is an Issue joined with a summary of its Project, as
// returned by the cross-project bounty listing.
type IssueWithProject struct {
	Issue
	Project ProjectSummary `json:"projects"`
}

// ProjectSummary is the subset of Project shown next to an issue.
type ProjectSummary struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	RepositoryURL string   `json:"repository_url"`
	Languages     []string `json:"languages"`
}

// PullRequest mirrors a GitHub pull request of a tracked project.
type PullRequest struct {
	ID             int64     `json:"id"`
	ProjectID      int64     `json:"project_id"`
	GitHubID       string    `json:"github_id"`
	Number         int       `json:"pr_number"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	Status         Status    `json:"status"`
	GitHubURL      string    `json:"github_url,omitempty"`
	AuthorGitHubID string    `json:"user_github_id,omitempty"`
	AuthorLogin    string    `json:"user_login,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Comment is a GitHub issue comment. Comments are never updated.
type Comment struct {
	ID             int64     `json:"id"`
	IssueGitHubID  string    `json:"issue_github_id"`
	GitHubID       string    `json:"comment_github_id"`
	Body           string    `json:"body"`
	AuthorGitHubID string    `json:"user_github_id"`
	AuthorLogin    string    `json:"user_login"`
	CreatedAt      time.Time `json:"created_at"`
}

// Reward is a bounty payout for a completed issue.
type Reward struct {
	ID               int64        `json:"id"`
	IssueID          int64        `json:"issue_id"`
	ProjectID        int64        `json:"project_id"`
	RecipientID      string       `json:"recipient_id"`
	LightningAddress string       `json:"lightning_address"`
	Amount           int64        `json:"amount"`
	Status           RewardStatus `json:"status"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}
