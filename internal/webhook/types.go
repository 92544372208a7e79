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
	"context"

	"github.com/satquest/satquest/internal/model"
)

// GitHub webhook request headers.
const (
	HeaderSignature = "X-Hub-Signature-256"
	HeaderEvent     = "X-GitHub-Event"
	HeaderDelivery  = "X-GitHub-Delivery"
)

// Event types the router handles.
const (
	EventIssues       = "issues"
	EventIssueComment = "issue_comment"
	EventPullRequest  = "pull_request"
)

// Outcome classifies what happened to a delivery.
type Outcome string

const (
	// OutcomeApplied means the delivery was written to the store.
	OutcomeApplied Outcome = "applied"
	// OutcomeDuplicate means the delivery carried a record already stored
	// and nothing was written.
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeIgnored means the event type or action is not handled.
	OutcomeIgnored Outcome = "ignored"
	// OutcomeUntracked means the repository is not a tracked project.
	OutcomeUntracked Outcome = "untracked"
	// OutcomeFailed means resolving or storing the delivery failed.
	OutcomeFailed Outcome = "failed"
)

// Result is the outcome of routing one delivery. Err is set only when
// Outcome is OutcomeFailed.
type Result struct {
	Event     string
	Action    string
	Delivery  string
	ProjectID int64
	Outcome   Outcome
	Err       error
}

// Store is the persistence the router writes through.
type Store interface {
	GetProjectByRepositoryURL(ctx context.Context, url string) (*model.Project, error)
	UpsertIssue(ctx context.Context, is *model.Issue) error
	UpsertPullRequest(ctx context.Context, pr *model.PullRequest) error
	InsertComment(ctx context.Context, c *model.Comment) (bool, error)
}

// Recorder observes delivery outcomes, typically for metrics.
type Recorder interface {
	RecordDelivery(event string, outcome Outcome)
}

// envelope holds the fields shared by every event payload.
type envelope struct {
	Action     string `json:"action"`
	Repository struct {
		FullName string `json:"full_name"`
		HTMLURL  string `json:"html_url"`
	} `json:"repository"`
}
