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
	"errors"
	"fmt"
	"strconv"

	"github.com/google/go-github/v66/github"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/satquest/satquest/internal/model"
)

var (
	issueActions       = sets.New("opened", "closed", "reopened")
	pullRequestActions = sets.New("opened", "closed", "reopened")
	commentActions     = sets.New("created")
)

// handleIssue upserts the issue of an issues event keyed by its GitHub id.
func (r *Router) handleIssue(ctx context.Context, e *github.IssuesEvent) Result {
	res := Result{Event: EventIssues, Action: e.GetAction()}
	if !issueActions.Has(res.Action) {
		res.Outcome = OutcomeIgnored
		return res
	}

	issue := e.GetIssue()
	if issue == nil || issue.ID == nil {
		res.Outcome = OutcomeFailed
		res.Err = errors.New("issues event without issue")
		return res
	}

	projectID, ok := r.resolve(ctx, &res, e.GetRepo().GetHTMLURL())
	if !ok {
		return res
	}

	err := r.store.UpsertIssue(ctx, &model.Issue{
		ProjectID:      projectID,
		GitHubID:       strconv.FormatInt(issue.GetID(), 10),
		Number:         issue.GetNumber(),
		Title:          issue.GetTitle(),
		Body:           issue.GetBody(),
		Status:         model.Status(issue.GetState()),
		GitHubURL:      issue.GetHTMLURL(),
		AuthorGitHubID: userID(issue.GetUser()),
		AuthorLogin:    issue.GetUser().GetLogin(),
	})
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = fmt.Errorf("upserting issue #%d: %w", issue.GetNumber(), err)
		return res
	}

	res.Outcome = OutcomeApplied
	return res
}

// handleIssueComment stores a newly created comment. Redelivered comments are
// reported as duplicates.
func (r *Router) handleIssueComment(ctx context.Context, e *github.IssueCommentEvent) Result {
	res := Result{Event: EventIssueComment, Action: e.GetAction()}
	if !commentActions.Has(res.Action) {
		res.Outcome = OutcomeIgnored
		return res
	}

	comment, issue := e.GetComment(), e.GetIssue()
	if comment == nil || comment.ID == nil || issue == nil || issue.ID == nil {
		res.Outcome = OutcomeFailed
		res.Err = errors.New("issue_comment event without comment or issue")
		return res
	}

	if _, ok := r.resolve(ctx, &res, e.GetRepo().GetHTMLURL()); !ok {
		return res
	}

	inserted, err := r.store.InsertComment(ctx, &model.Comment{
		IssueGitHubID:  strconv.FormatInt(issue.GetID(), 10),
		GitHubID:       strconv.FormatInt(comment.GetID(), 10),
		Body:           comment.GetBody(),
		AuthorGitHubID: userID(comment.GetUser()),
		AuthorLogin:    comment.GetUser().GetLogin(),
		CreatedAt:      comment.GetCreatedAt().Time,
	})
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = fmt.Errorf("inserting comment %d: %w", comment.GetID(), err)
		return res
	}

	if !inserted {
		res.Outcome = OutcomeDuplicate
		return res
	}
	res.Outcome = OutcomeApplied
	return res
}

// handlePullRequest upserts the pull request of a pull_request event keyed by
// its GitHub id.
func (r *Router) handlePullRequest(ctx context.Context, e *github.PullRequestEvent) Result {
	res := Result{Event: EventPullRequest, Action: e.GetAction()}
	if !pullRequestActions.Has(res.Action) {
		res.Outcome = OutcomeIgnored
		return res
	}

	pr := e.GetPullRequest()
	if pr == nil || pr.ID == nil {
		res.Outcome = OutcomeFailed
		res.Err = errors.New("pull_request event without pull request")
		return res
	}

	projectID, ok := r.resolve(ctx, &res, e.GetRepo().GetHTMLURL())
	if !ok {
		return res
	}

	err := r.store.UpsertPullRequest(ctx, &model.PullRequest{
		ProjectID:      projectID,
		GitHubID:       strconv.FormatInt(pr.GetID(), 10),
		Number:         pr.GetNumber(),
		Title:          pr.GetTitle(),
		Body:           pr.GetBody(),
		Status:         model.Status(pr.GetState()),
		GitHubURL:      pr.GetHTMLURL(),
		AuthorGitHubID: userID(pr.GetUser()),
		AuthorLogin:    pr.GetUser().GetLogin(),
	})
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = fmt.Errorf("upserting pull request #%d: %w", pr.GetNumber(), err)
		return res
	}

	res.Outcome = OutcomeApplied
	return res
}

func userID(u *github.User) string {
	if u == nil || u.ID == nil {
		return ""
	}
	return strconv.FormatInt(u.GetID(), 10)
}
