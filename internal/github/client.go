// MIT License
//
// Copyright (c) 2025 The SatQuest Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package github

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

// RetryConfig defines the retry behavior for API calls
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
}

// DefaultRetryConfig is used by clients created with NewClient.
var DefaultRetryConfig = RetryConfig{
	MaxRetries:     3,
	InitialBackoff: 100 * time.Millisecond,
	MaxBackoff:     30 * time.Second,
	BackoffFactor:  2.0,
}

// githubClient implements the Client interface using go-github
type githubClient struct {
	client      *github.Client
	retryConfig *RetryConfig
}

// NewClient creates a GitHub client authenticated with an OAuth access token.
// It satisfies ClientFactory.
func NewClient(ctx context.Context, token string) (Client, error) {
	var httpClient *http.Client
	if token != "" {
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	}

	cfg := DefaultRetryConfig
	return &githubClient{
		client:      github.NewClient(httpClient),
		retryConfig: &cfg,
	}, nil
}

// GetAuthenticatedUser returns the owner of the client's token
func (c *githubClient) GetAuthenticatedUser(ctx context.Context) (*User, error) {
	var u *github.User

	err := c.executeWithRetry(ctx, func() error {
		var err error
		u, _, err = c.client.Users.Get(ctx, "")
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get authenticated user: %w", err)
	}

	return &User{
		ID:        u.GetID(),
		Login:     u.GetLogin(),
		Name:      u.GetName(),
		Email:     u.GetEmail(),
		AvatarURL: u.GetAvatarURL(),
	}, nil
}

// ListRepositories returns one page of repositories the user owns or
// collaborates on, most recently updated first
func (c *githubClient) ListRepositories(ctx context.Context, opts RepositoryListOptions) ([]*Repository, error) {
	listOpts := &github.RepositoryListByAuthenticatedUserOptions{
		Visibility: opts.Visibility,
		Sort:       "updated",
		ListOptions: github.ListOptions{
			Page:    opts.Page,
			PerPage: opts.PerPage,
		},
	}

	var repos []*github.Repository
	err := c.executeWithRetry(ctx, func() error {
		var err error
		repos, _, err = c.client.Repositories.ListByAuthenticatedUser(ctx, listOpts)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}

	result := make([]*Repository, 0, len(repos))
	for _, repo := range repos {
		if repo != nil {
			result = append(result, convertRepository(repo))
		}
	}
	return result, nil
}

// ListHooks retrieves all webhooks of a repository
func (c *githubClient) ListHooks(ctx context.Context, owner, repo string) ([]*Hook, error) {
	allHooks := []*Hook{}
	opts := &github.ListOptions{
		PerPage: 100,
	}

	for {
		var hooks []*github.Hook
		var resp *github.Response

		err := c.executeWithRetry(ctx, func() error {
			var err error
			hooks, resp, err = c.client.Repositories.ListHooks(ctx, owner, repo, opts)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list hooks: %w", err)
		}

		for _, hook := range hooks {
			if hook != nil {
				allHooks = append(allHooks, convertHook(hook))
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allHooks, nil
}

// CreateHook registers an active "web" hook on a repository
func (c *githubClient) CreateHook(ctx context.Context, owner, repo string, req *HookRequest) (*Hook, error) {
	if req == nil || req.URL == "" {
		return nil, errors.New("hook url is required")
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "json"
	}

	hook := &github.Hook{
		Name:   github.String("web"),
		Active: github.Bool(true),
		Events: req.Events,
		Config: &github.HookConfig{
			URL:         github.String(req.URL),
			ContentType: github.String(contentType),
			InsecureSSL: github.String("0"),
		},
	}
	if req.Secret != "" {
		hook.Config.Secret = github.String(req.Secret)
	}

	var created *github.Hook
	err := c.executeWithRetry(ctx, func() error {
		var err error
		created, _, err = c.client.Repositories.CreateHook(ctx, owner, repo, hook)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create hook: %w", err)
	}

	return convertHook(created), nil
}

// DeleteHook removes a webhook from a repository
func (c *githubClient) DeleteHook(ctx context.Context, owner, repo string, id int64) error {
	err := c.executeWithRetry(ctx, func() error {
		_, err := c.client.Repositories.DeleteHook(ctx, owner, repo, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete hook: %w", err)
	}
	return nil
}

// executeWithRetry executes an operation with exponential backoff retry
func (c *githubClient) executeWithRetry(ctx context.Context, operation func() error) error {
	var lastErr error

	for attempt := 0; attempt <= c.retryConfig.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lastErr = operation()
		if lastErr == nil {
			return nil
		}

		if !isRetryableError(lastErr) {
			return lastErr
		}

		if attempt == c.retryConfig.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.calculateBackoff(attempt)):
		}
	}

	return fmt.Errorf("operation failed after %d retries: %w", c.retryConfig.MaxRetries, lastErr)
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return true
	}

	var ghErr *github.ErrorResponse
	if !errors.As(err, &ghErr) || ghErr.Response == nil {
		return false
	}

	switch ghErr.Response.StatusCode {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	case http.StatusForbidden:
		return ghErr.Message == "API rate limit exceeded"
	}
	return false
}

// calculateBackoff calculates the backoff duration for a retry attempt
func (c *githubClient) calculateBackoff(attempt int) time.Duration {
	factor := c.retryConfig.BackoffFactor
	if factor < 1 {
		factor = 2.0
	}
	base := float64(c.retryConfig.InitialBackoff)
	for range attempt {
		base *= factor
	}

	// ±20% jitter
	jitter := (rand.Float64() * 0.4) - 0.2
	backoff := time.Duration(base * (1 + jitter))

	if backoff > c.retryConfig.MaxBackoff {
		backoff = c.retryConfig.MaxBackoff
	}
	return backoff
}

func convertRepository(repo *github.Repository) *Repository {
	return &Repository{
		ID:          repo.GetID(),
		Name:        repo.GetName(),
		FullName:    repo.GetFullName(),
		Owner:       repo.GetOwner().GetLogin(),
		Description: repo.GetDescription(),
		HTMLURL:     repo.GetHTMLURL(),
		Language:    repo.GetLanguage(),
		Private:     repo.GetPrivate(),
		UpdatedAt:   repo.GetUpdatedAt().Time,
	}
}

func convertHook(hook *github.Hook) *Hook {
	if hook == nil {
		return nil
	}

	result := &Hook{
		ID:        hook.GetID(),
		Name:      hook.GetName(),
		Events:    hook.Events,
		Active:    hook.GetActive(),
		CreatedAt: hook.GetCreatedAt().Time,
	}
	if hook.Config != nil {
		result.URL = hook.Config.GetURL()
		result.ContentType = hook.Config.GetContentType()
	}
	if result.Events == nil {
		result.Events = []string{}
	}
	return result
}

// StatusCode returns the HTTP status of the GitHub response behind err, or 0
// when err did not come from a GitHub API response.
func StatusCode(err error) int {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode
	}
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) && rateErr.Response != nil {
		return rateErr.Response.StatusCode
	}
	return 0
}
