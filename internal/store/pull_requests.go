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

const pullRequestColumns = `id, project_id, github_id, pr_number, title, body, status, github_url,
	user_github_id, user_login, updated_at`

// UpsertPullRequest inserts or overwrites the pull request sharing
// pr.GitHubID in a single statement.
func (s *Store) UpsertPullRequest(ctx context.Context, pr *model.PullRequest) error {
	if pr.GitHubID == "" {
		return errors.New("upserting pull request: empty github id")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pull_requests (project_id, github_id, pr_number, title, body, status, github_url,
			user_github_id, user_login, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(github_id) DO UPDATE SET
			project_id = excluded.project_id,
			pr_number = excluded.pr_number,
			title = excluded.title,
			body = excluded.body,
			status = excluded.status,
			github_url = excluded.github_url,
			user_github_id = excluded.user_github_id,
			user_login = excluded.user_login,
			updated_at = excluded.updated_at`,
		pr.ProjectID, pr.GitHubID, pr.Number, pr.Title, pr.Body, string(pr.Status), nullString(pr.GitHubURL),
		nullString(pr.AuthorGitHubID), nullString(pr.AuthorLogin), s.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("upserting pull request: %w", err)
	}
	return nil
}

// GetPullRequestByGitHubID retrieves a pull request by its GitHub id.
func (s *Store) GetPullRequestByGitHubID(ctx context.Context, githubID string) (*model.PullRequest, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+pullRequestColumns+` FROM pull_requests WHERE github_id = ?`, githubID)

	pr, err := scanPullRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning pull request: %w", err)
	}
	return pr, nil
}

// ListPullRequests returns the pull requests of a project ordered by number.
func (s *Store) ListPullRequests(ctx context.Context, projectID int64) ([]*model.PullRequest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+pullRequestColumns+` FROM pull_requests WHERE project_id = ? ORDER BY pr_number ASC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("querying pull requests: %w", err)
	}
	defer rows.Close()

	prs := make([]*model.PullRequest, 0)
	for rows.Next() {
		pr, err := scanPullRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning pull request row: %w", err)
		}
		prs = append(prs, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pull request rows: %w", err)
	}
	return prs, nil
}

func scanPullRequest(sc scanner) (*model.PullRequest, error) {
	var (
		pr                model.PullRequest
		body, githubURL   sql.NullString
		userID, userLogin sql.NullString
		status, updatedAt string
	)
	if err := sc.Scan(&pr.ID, &pr.ProjectID, &pr.GitHubID, &pr.Number, &pr.Title, &body, &status,
		&githubURL, &userID, &userLogin, &updatedAt); err != nil {
		return nil, err
	}

	pr.Body = body.String
	pr.GitHubURL = githubURL.String
	pr.AuthorGitHubID = userID.String
	pr.AuthorLogin = userLogin.String
	pr.Status = model.Status(status)

	var err error
	if pr.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &pr, nil
}
