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

	"github.com/satquest/satquest/internal/model"
)

// InsertComment stores a GitHub issue comment. A comment whose GitHub id is
// already stored is left untouched and inserted is false, so redelivered
// webhooks do not duplicate rows.
func (s *Store) InsertComment(ctx context.Context, c *model.Comment) (inserted bool, err error) {
	if c.GitHubID == "" {
		return false, errors.New("inserting comment: empty github id")
	}
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO issue_comments (issue_github_id, comment_github_id, body, user_github_id, user_login, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(comment_github_id) DO NOTHING`,
		c.IssueGitHubID, c.GitHubID, c.Body, nullString(c.AuthorGitHubID), nullString(c.AuthorLogin),
		formatTime(createdAt),
	)
	if err != nil {
		return false, fmt.Errorf("inserting comment: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking rows affected: %w", err)
	}
	return n > 0, nil
}

// ListComments retrieves all comments for a GitHub issue, ordered by creation
// time ascending.
func (s *Store) ListComments(ctx context.Context, issueGitHubID string) ([]*model.Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, issue_github_id, comment_github_id, body, user_github_id, user_login, created_at
		 FROM issue_comments WHERE issue_github_id = ? ORDER BY created_at ASC, id ASC`, issueGitHubID)
	if err != nil {
		return nil, fmt.Errorf("querying comments: %w", err)
	}
	defer rows.Close()

	comments := make([]*model.Comment, 0)
	for rows.Next() {
		var (
			c                       model.Comment
			body, userID, userLogin sql.NullString
			createdAt               string
		)
		if err := rows.Scan(&c.ID, &c.IssueGitHubID, &c.GitHubID, &body, &userID, &userLogin, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning comment row: %w", err)
		}
		c.Body = body.String
		c.AuthorGitHubID = userID.String
		c.AuthorLogin = userLogin.String
		if c.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		comments = append(comments, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating comment rows: %w", err)
	}
	return comments, nil
}
