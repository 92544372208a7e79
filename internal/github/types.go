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
	"time"
)

// Client is the subset of the GitHub API SatQuest calls on behalf of a
// signed-in user.
type Client interface {
	// GetAuthenticatedUser returns the user the client's token belongs to
	GetAuthenticatedUser(ctx context.Context) (*User, error)
	// ListRepositories returns one page of the user's repositories
	ListRepositories(ctx context.Context, opts RepositoryListOptions) ([]*Repository, error)
	// ListHooks returns every webhook registered on a repository
	ListHooks(ctx context.Context, owner, repo string) ([]*Hook, error)
	// CreateHook registers a new webhook on a repository
	CreateHook(ctx context.Context, owner, repo string, hook *HookRequest) (*Hook, error)
	// DeleteHook removes a webhook from a repository
	DeleteHook(ctx context.Context, owner, repo string, id int64) error
}

// ClientFactory builds a Client authenticated with an OAuth access token.
type ClientFactory func(ctx context.Context, token string) (Client, error)

// User is a GitHub account
type User struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// RepositoryListOptions selects a page of repositories
type RepositoryListOptions struct {
	Page    int
	PerPage int
	// Visibility is one of all, public or private. Empty means all.
	Visibility string
}

// Repository is a GitHub repository the user has access to
type Repository struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"`
	Owner       string    `json:"owner"`
	Description string    `json:"description"`
	HTMLURL     string    `json:"html_url"`
	Language    string    `json:"language,omitempty"`
	Private     bool      `json:"private"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Hook is a repository webhook
type Hook struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	Events      []string  `json:"events"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// HookRequest describes a webhook to register
type HookRequest struct {
	URL         string
	Events      []string
	ContentType string // json or form
	Secret      string
}
