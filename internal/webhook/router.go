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
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/go-github/v66/github"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

// ErrMalformedPayload is returned by Route when the payload of a handled
// event cannot be decoded.
var ErrMalformedPayload = errors.New("malformed webhook payload")

// Router dispatches deliveries to the handler for their event type.
type Router struct {
	store    Store
	resolver *Resolver
}

// NewRouter creates a Router writing through s.
func NewRouter(s Store) *Router {
	return &Router{
		store:    s,
		resolver: NewResolver(s),
	}
}

// Route decodes payload according to event and applies it. Handler failures
// are reported in the Result, never as the returned error; the error is only
// set when the payload is malformed.
func (r *Router) Route(ctx context.Context, event string, payload []byte) (Result, error) {
	switch event {
	case EventIssues:
		var e github.IssuesEvent
		if err := json.Unmarshal(payload, &e); err != nil {
			return Result{Event: event, Outcome: OutcomeFailed, Err: err}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
		}
		return r.handleIssue(ctx, &e), nil

	case EventIssueComment:
		var e github.IssueCommentEvent
		if err := json.Unmarshal(payload, &e); err != nil {
			return Result{Event: event, Outcome: OutcomeFailed, Err: err}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
		}
		return r.handleIssueComment(ctx, &e), nil

	case EventPullRequest:
		var e github.PullRequestEvent
		if err := json.Unmarshal(payload, &e); err != nil {
			return Result{Event: event, Outcome: OutcomeFailed, Err: err}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
		}
		return r.handlePullRequest(ctx, &e), nil

	default:
		log.FromContext(ctx).V(1).Info("Ignoring unhandled event", "event", event)
		return Result{Event: event, Outcome: OutcomeIgnored}, nil
	}
}

// resolve looks up the project for repositoryURL and records untracked or
// failed outcomes on res. It returns false when the handler should stop.
func (r *Router) resolve(ctx context.Context, res *Result, repositoryURL string) (int64, bool) {
	project, err := r.resolver.Resolve(ctx, repositoryURL)
	switch {
	case errors.Is(err, ErrUntracked):
		log.FromContext(ctx).Info("Repository not tracked", "repository", repositoryURL)
		res.Outcome = OutcomeUntracked
		return 0, false
	case err != nil:
		res.Outcome = OutcomeFailed
		res.Err = err
		return 0, false
	}
	res.ProjectID = project.ID
	return project.ID, true
}
