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

package model

import "time"

// User is a person signed in through GitHub.
type User struct {
	ID        int64     `json:"id"`
	GitHubID  string    `json:"github_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthToken is the GitHub OAuth token stored for a user.
type AuthToken struct {
	UserID       int64
	AccessToken  string
	RefreshToken string
	Scopes       []string
	ExpiresAt    time.Time // zero when the token does not expire
}

// Expired reports whether the token has a known expiry before now.
func (t *AuthToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && t.ExpiresAt.Before(now)
}

// Session is an opaque login session looked up by Token.
type Session struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
}

// Profile holds the contributor details needed to receive rewards.
type Profile struct {
	UserID           int64     `json:"user_id"`
	DisplayName      string    `json:"display_name"`
	GitHubUsername   string    `json:"github_username"`
	LightningAddress string    `json:"lightning_address"`
	Bio              string    `json:"bio"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
