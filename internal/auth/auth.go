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

// Package auth signs users in with GitHub OAuth and authenticates API
// requests by session token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/satquest/satquest/internal/config"
	"github.com/satquest/satquest/internal/github"
	"github.com/satquest/satquest/internal/model"
	"github.com/satquest/satquest/internal/store"
)

// Cookie names.
const (
	SessionCookie = "satquest_session"
	StateCookie   = "github_oauth_state"
)

// StateTTL is how long an OAuth state cookie is accepted.
const StateTTL = 10 * time.Minute

var (
	// ErrUnauthenticated is returned when a request carries no valid session.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotConfigured is returned when GitHub OAuth credentials are missing.
	ErrNotConfigured = errors.New("github oauth not configured")
)

// Store is the persistence the auth service needs.
type Store interface {
	UpsertUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id int64) (*model.User, error)
	SaveAuthToken(ctx context.Context, t *model.AuthToken) error
	GetAuthToken(ctx context.Context, userID int64) (*model.AuthToken, error)
	CreateSession(ctx context.Context, sess *model.Session) error
	GetSession(ctx context.Context, token string) (*model.Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// Service implements the GitHub sign-in flow and session handling.
type Service struct {
	store         Store
	oauth         *oauth2.Config
	configured    bool
	newClient     github.ClientFactory
	sessionTTL    time.Duration
	secureCookies bool
	now           func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithEndpoint overrides the GitHub OAuth endpoint.
func WithEndpoint(ep oauth2.Endpoint) Option {
	return func(s *Service) { s.oauth.Endpoint = ep }
}

// WithClock overrides the time source used for session expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service from cfg. newClient builds the GitHub client
// used to identify users after the code exchange.
func NewService(cfg *config.Config, s Store, newClient github.ClientFactory, opts ...Option) *Service {
	svc := &Service{
		store: s,
		oauth: &oauth2.Config{
			ClientID:     cfg.GitHub.ClientID,
			ClientSecret: cfg.GitHub.ClientSecret,
			RedirectURL:  cfg.GitHub.RedirectURI,
			Scopes:       cfg.GitHub.Scopes,
			Endpoint:     githuboauth.Endpoint,
		},
		configured:    cfg.OAuthConfigured(),
		newClient:     newClient,
		sessionTTL:    cfg.Session.TTL,
		secureCookies: cfg.Session.CookieSecure,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// NewState returns a fresh OAuth state value.
func NewState() string {
	return uuid.NewString()
}

// AuthURL returns the GitHub authorization URL for state.
func (s *Service) AuthURL(state string) (string, error) {
	if !s.configured {
		return "", ErrNotConfigured
	}
	return s.oauth.AuthCodeURL(state), nil
}

// Login exchanges an authorization code, records the GitHub user and their
// token and opens a session.
func (s *Service) Login(ctx context.Context, code string) (*model.User, *model.Session, error) {
	if !s.configured {
		return nil, nil, ErrNotConfigured
	}
	logger := log.FromContext(ctx)

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("exchanging code: %w", err)
	}

	client, err := s.newClient(ctx, token.AccessToken)
	if err != nil {
		return nil, nil, fmt.Errorf("creating github client: %w", err)
	}
	ghUser, err := client.GetAuthenticatedUser(ctx)
	if err != nil {
		return nil, nil, err
	}

	user := &model.User{
		GitHubID:  fmt.Sprintf("%d", ghUser.ID),
		Username:  ghUser.Login,
		Email:     ghUser.Email,
		AvatarURL: ghUser.AvatarURL,
	}
	if err := s.store.UpsertUser(ctx, user); err != nil {
		return nil, nil, err
	}

	if err := s.store.SaveAuthToken(ctx, &model.AuthToken{
		UserID:       user.ID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Scopes:       grantedScopes(token),
		ExpiresAt:    token.Expiry,
	}); err != nil {
		return nil, nil, err
	}

	sess, err := s.CreateSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("User signed in", "user", user.Username, "userID", user.ID)
	return user, sess, nil
}

// CreateSession opens a new session for userID. Expired sessions are purged
// on the way.
func (s *Service) CreateSession(ctx context.Context, userID int64) (*model.Session, error) {
	now := s.now()
	if n, err := s.store.DeleteExpiredSessions(ctx, now); err != nil {
		log.FromContext(ctx).Error(err, "Failed to purge expired sessions")
	} else if n > 0 {
		log.FromContext(ctx).V(1).Info("Purged expired sessions", "count", n)
	}

	sess := &model.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Authenticate resolves the user of r from its bearer token or session
// cookie.
func (s *Service) Authenticate(r *http.Request) (*model.User, *model.Session, error) {
	token := sessionToken(r)
	if token == "" {
		return nil, nil, ErrUnauthenticated
	}

	sess, err := s.store.GetSession(r.Context(), token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrUnauthenticated
		}
		return nil, nil, err
	}

	user, err := s.store.GetUser(r.Context(), sess.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrUnauthenticated
		}
		return nil, nil, err
	}
	return user, sess, nil
}

// Logout ends the session identified by token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.store.DeleteSession(ctx, token)
}

// GitHubClient returns a GitHub client acting as userID.
func (s *Service) GitHubClient(ctx context.Context, userID int64) (github.Client, error) {
	tok, err := s.store.GetAuthToken(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	if tok.Expired(s.now()) {
		return nil, ErrUnauthenticated
	}
	return s.newClient(ctx, tok.AccessToken)
}

// SetSessionCookie writes the session cookie for sess.
func (s *Service) SetSessionCookie(w http.ResponseWriter, sess *model.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func (s *Service) ClearSessionCookie(w http.ResponseWriter) {
	s.clearCookie(w, SessionCookie)
}

// SetStateCookie stores the OAuth state for the callback to check.
func (s *Service) SetStateCookie(w http.ResponseWriter, state string) {
	http.SetCookie(w, &http.Cookie{
		Name:     StateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int(StateTTL / time.Second),
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// CheckState reports whether state matches the state cookie of r and clears
// the cookie.
func (s *Service) CheckState(w http.ResponseWriter, r *http.Request, state string) bool {
	c, err := r.Cookie(StateCookie)
	s.clearCookie(w, StateCookie)
	return err == nil && state != "" && c.Value == state
}

func (s *Service) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func sessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// grantedScopes reads the comma separated scope list GitHub returns with a
// token.
func grantedScopes(token *oauth2.Token) []string {
	raw, _ := token.Extra("scope").(string)
	if raw == "" {
		return nil
	}
	var scopes []string
	for _, sc := range strings.Split(raw, ",") {
		if sc = strings.TrimSpace(sc); sc != "" {
			scopes = append(scopes, sc)
		}
	}
	return scopes
}
