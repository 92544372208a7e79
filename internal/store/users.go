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

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/satquest/satquest/internal/model"
)

// UpsertUser creates or updates the user with u.GitHubID and fills in u.ID.
func (s *Store) UpsertUser(ctx context.Context, u *model.User) error {
	now := s.timestamp()

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO users (github_id, username, email, avatar_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(github_id) DO UPDATE SET
			username = excluded.username,
			email = excluded.email,
			avatar_url = excluded.avatar_url,
			updated_at = excluded.updated_at`,
		u.GitHubID, u.Username, nullString(u.Email), nullString(u.AvatarURL), now, now,
	); err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}

	saved, err := s.getUser(ctx, `github_id = ?`, u.GitHubID)
	if err != nil {
		return err
	}
	*u = *saved
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return s.getUser(ctx, `id = ?`, id)
}

func (s *Store) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, github_id, username, email, avatar_url, created_at, updated_at FROM users WHERE `+where, arg)

	var (
		u                    model.User
		email, avatar        sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&u.ID, &u.GitHubID, &u.Username, &email, &avatar, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	u.Email = email.String
	u.AvatarURL = avatar.String

	var err error
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// SaveAuthToken stores the GitHub token for t.UserID, replacing any previous one.
func (s *Store) SaveAuthToken(ctx context.Context, t *model.AuthToken) error {
	var expiresAt sql.NullString
	if !t.ExpiresAt.IsZero() {
		expiresAt = sql.NullString{String: formatTime(t.ExpiresAt), Valid: true}
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO auth_tokens (user_id, access_token, refresh_token, scopes, expires_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			scopes = excluded.scopes,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at`,
		t.UserID, t.AccessToken, nullString(t.RefreshToken), strings.Join(t.Scopes, " "), expiresAt, s.timestamp(),
	); err != nil {
		return fmt.Errorf("saving auth token: %w", err)
	}
	return nil
}

// GetAuthToken retrieves the stored GitHub token of a user.
func (s *Store) GetAuthToken(ctx context.Context, userID int64) (*model.AuthToken, error) {
	var (
		t                  model.AuthToken
		refresh, expiresAt sql.NullString
		scopes             string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, access_token, refresh_token, scopes, expires_at FROM auth_tokens WHERE user_id = ?`, userID,
	).Scan(&t.UserID, &t.AccessToken, &refresh, &scopes, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning auth token: %w", err)
	}

	t.RefreshToken = refresh.String
	t.Scopes = strings.Fields(scopes)
	if t.ExpiresAt, err = parseTime(expiresAt.String); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateSession stores a new session.
func (s *Store) CreateSession(ctx context.Context, sess *model.Session) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)`,
		sess.Token, sess.UserID, formatTime(sess.ExpiresAt),
	); err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by token. Expired sessions are reported as
// ErrNotFound.
func (s *Store) GetSession(ctx context.Context, token string) (*model.Session, error) {
	var (
		sess      model.Session
		expiresAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT token, user_id, expires_at FROM sessions WHERE token = ?`, token,
	).Scan(&sess.Token, &sess.UserID, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}

	if sess.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return nil, err
	}
	if !sess.ExpiresAt.After(s.now()) {
		return nil, ErrNotFound
	}
	return &sess, nil
}

// DeleteSession removes a session. Deleting an unknown token is not an error.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes sessions that expired before now and reports
// how many were removed.
func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, formatTime(now))
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}
	return res.RowsAffected()
}

// UpsertProfile creates or updates the profile of p.UserID. It reports
// whether a new profile was created.
func (s *Store) UpsertProfile(ctx context.Context, p *model.Profile) (created bool, err error) {
	_, err = s.GetProfile(ctx, p.UserID)
	switch {
	case errors.Is(err, ErrNotFound):
		created = true
	case err != nil:
		return false, err
	}

	now := s.timestamp()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, display_name, github_username, lightning_address, bio, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			display_name = excluded.display_name,
			github_username = excluded.github_username,
			lightning_address = excluded.lightning_address,
			bio = excluded.bio,
			updated_at = excluded.updated_at`,
		p.UserID, p.DisplayName, p.GitHubUsername, nullString(p.LightningAddress), nullString(p.Bio), now, now,
	); err != nil {
		return false, fmt.Errorf("upserting profile: %w", err)
	}
	return created, nil
}

// GetProfile retrieves the profile of a user.
func (s *Store) GetProfile(ctx context.Context, userID int64) (*model.Profile, error) {
	var (
		p                    model.Profile
		lightning, bio       sql.NullString
		createdAt, updatedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, display_name, github_username, lightning_address, bio, created_at, updated_at
		 FROM profiles WHERE user_id = ?`, userID,
	).Scan(&p.UserID, &p.DisplayName, &p.GitHubUsername, &lightning, &bio, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning profile: %w", err)
	}

	p.LightningAddress = lightning.String
	p.Bio = bio.String
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
