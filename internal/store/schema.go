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
	"fmt"
	"strconv"
)

const currentSchemaVersion = 2

// schemaDDL contains the CREATE TABLE statements for the initial schema.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT
);

CREATE TABLE IF NOT EXISTS users (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	github_id  TEXT NOT NULL UNIQUE,
	username   TEXT NOT NULL,
	email      TEXT,
	avatar_url TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS auth_tokens (
	user_id       INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
	access_token  TEXT NOT NULL,
	refresh_token TEXT,
	scopes        TEXT NOT NULL DEFAULT '',
	expires_at    TEXT,
	updated_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
	token      TEXT PRIMARY KEY,
	user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	expires_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS projects (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	name           TEXT NOT NULL,
	description    TEXT NOT NULL,
	repository_url TEXT NOT NULL,
	languages      TEXT NOT NULL DEFAULT '[]',
	owner_id       INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	github_id      TEXT,
	created_at     TEXT NOT NULL,
	updated_at     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS issues (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id     INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	github_id      TEXT UNIQUE,
	issue_number   INTEGER NOT NULL,
	title          TEXT NOT NULL,
	body           TEXT,
	status         TEXT NOT NULL DEFAULT 'open',
	github_url     TEXT,
	user_github_id TEXT,
	user_login     TEXT,
	reward_amount  INTEGER NOT NULL DEFAULT 0,
	created_at     TEXT NOT NULL,
	updated_at     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS pull_requests (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id     INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	github_id      TEXT NOT NULL UNIQUE,
	pr_number      INTEGER NOT NULL,
	title          TEXT NOT NULL,
	body           TEXT,
	status         TEXT NOT NULL,
	github_url     TEXT,
	user_github_id TEXT,
	user_login     TEXT,
	updated_at     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS issue_comments (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	issue_github_id   TEXT NOT NULL,
	comment_github_id TEXT NOT NULL UNIQUE,
	body              TEXT,
	user_github_id    TEXT,
	user_login        TEXT,
	created_at        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS rewards (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	issue_id          INTEGER NOT NULL REFERENCES issues(id) ON DELETE CASCADE,
	project_id        INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	recipient_id      TEXT NOT NULL,
	lightning_address TEXT NOT NULL,
	amount            INTEGER NOT NULL,
	status            TEXT NOT NULL DEFAULT 'pending',
	created_at        TEXT NOT NULL,
	updated_at        TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_projects_repository_url ON projects(repository_url);
CREATE INDEX IF NOT EXISTS idx_projects_owner_id ON projects(owner_id);
CREATE INDEX IF NOT EXISTS idx_issues_project_id ON issues(project_id);
CREATE INDEX IF NOT EXISTS idx_issues_status ON issues(status);
CREATE INDEX IF NOT EXISTS idx_pull_requests_project_id ON pull_requests(project_id);
CREATE INDEX IF NOT EXISTS idx_issue_comments_issue ON issue_comments(issue_github_id);
CREATE INDEX IF NOT EXISTS idx_rewards_issue_id ON rewards(issue_id);

CREATE TABLE IF NOT EXISTS profiles (
	user_id           INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
	display_name      TEXT NOT NULL,
	github_username   TEXT NOT NULL,
	lightning_address TEXT,
	bio               TEXT,
	created_at        TEXT NOT NULL,
	updated_at        TEXT NOT NULL
);
`

// migrations is keyed by the version they migrate TO.
var migrations = map[int]func(tx *sql.Tx) error{
	2: func(tx *sql.Tx) error {
		_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS profiles (
	user_id           INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
	display_name      TEXT NOT NULL,
	github_username   TEXT NOT NULL,
	lightning_address TEXT,
	bio               TEXT,
	created_at        TEXT NOT NULL,
	updated_at        TEXT NOT NULL
);
`)
		return err
	},
}

// Migrate creates all tables if they don't exist and applies any pending
// migrations sequentially. It is a no-op when already at the latest version.
func (s *Store) Migrate(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	// Fresh databases start at the latest version.
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO meta (key, value) VALUES ('schema_version', ?)`,
		strconv.Itoa(currentSchemaVersion),
	); err != nil {
		return fmt.Errorf("setting schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema: %w", err)
	}

	version, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for v := version + 1; v <= currentSchemaVersion; v++ {
		migrateFn, ok := migrations[v]
		if !ok {
			return fmt.Errorf("missing migration for version %d", v)
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning migration %d transaction: %w", v, err)
		}
		if err := migrateFn(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", v, err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE meta SET value = ? WHERE key = 'schema_version'`,
			strconv.Itoa(v),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("updating schema version to %d: %w", v, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", v, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version from the meta table.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var val string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&val)
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}

	v, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("parsing schema version %q: %w", val, err)
	}
	return v, nil
}
