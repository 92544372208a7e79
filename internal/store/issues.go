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

const issueColumns = `id, project_id, github_id, issue_number, title, body, status, github_url,
	user_github_id, user_login, reward_amount, created_at, updated_at`

// CreateIssue inserts an issue created through the API.
func (s *Store) CreateIssue(ctx context.Context, is *model.Issue) error {
	if is.Status == "" {
		is.Status = model.StatusOpen
	}
	now := s.timestamp()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO issues (project_id, github_id, issue_number, title, body, status, github_url,
			user_github_id, user_login, reward_amount, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		is.ProjectID, nullString(is.GitHubID), is.Number, is.Title, is.Body, string(is.Status),
		nullString(is.GitHubURL), nullString(is.AuthorGitHubID), nullString(is.AuthorLogin),
		is.RewardAmount, now, now,
	)
	if err != nil {
		return fmt.Errorf("inserting issue: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	is.ID = id
	is.CreatedAt, _ = parseTime(now)
	is.UpdatedAt = is.CreatedAt
	return nil
}

// UpsertIssue inserts or overwrites the issue sharing is.GitHubID in a single
// statement. The last write wins; reward_amount and created_at are kept.
func (s *Store) UpsertIssue(ctx context.Context, is *model.Issue) error {
	if is.GitHubID == "" {
		return errors.New("upserting issue: empty github id")
	}
	now := s.timestamp()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO issues (project_id, github_id, issue_number, title, body, status, github_url,
			user_github_id, user_login, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(github_id) DO UPDATE SET
			project_id = excluded.project_id,
			issue_number = excluded.issue_number,
			title = excluded.title,
			body = excluded.body,
			status = excluded.status,
			github_url = excluded.github_url,
			user_github_id = excluded.user_github_id,
			user_login = excluded.user_login,
			updated_at = excluded.updated_at`,
		is.ProjectID, is.GitHubID, is.Number, is.Title, is.Body, string(is.Status), nullString(is.GitHubURL),
		nullString(is.AuthorGitHubID), nullString(is.AuthorLogin), now, now,
	)
	if err != nil {
		return fmt.Errorf("upserting issue: %w", err)
	}
	return nil
}

// GetIssue retrieves an issue by ID within a project.
func (s *Store) GetIssue(ctx context.Context, projectID, id int64) (*model.Issue, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+issueColumns+` FROM issues WHERE id = ? AND project_id = ?`, id, projectID)
	return scanIssueRow(row)
}

// GetIssueByGitHubID retrieves an issue by its GitHub id.
func (s *Store) GetIssueByGitHubID(ctx context.Context, githubID string) (*model.Issue, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+issueColumns+` FROM issues WHERE github_id = ?`, githubID)
	return scanIssueRow(row)
}

// ListProjectIssues returns the issues of a project, newest first, optionally
// filtered by status.
func (s *Store) ListProjectIssues(ctx context.Context, projectID int64, status model.Status) ([]*model.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE project_id = ?`
	args := []any{projectID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying issues: %w", err)
	}
	defer rows.Close()

	issues := make([]*model.Issue, 0)
	for rows.Next() {
		is, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning issue row: %w", err)
		}
		issues = append(issues, is)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating issue rows: %w", err)
	}
	return issues, nil
}

// ListIssues returns one page of issues across all projects with the given
// status, each joined with its project summary, and the total match count.
func (s *Store) ListIssues(ctx context.Context, status model.Status, limit, offset int) ([]*model.IssueWithProject, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM issues WHERE status = ?`, string(status)).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting issues: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT i.id, i.project_id, i.github_id, i.issue_number, i.title, i.body, i.status, i.github_url,
			i.user_github_id, i.user_login, i.reward_amount, i.created_at, i.updated_at,
			p.id, p.name, p.repository_url, p.languages
		 FROM issues i JOIN projects p ON p.id = i.project_id
		 WHERE i.status = ?
		 ORDER BY i.created_at DESC, i.id DESC
		 LIMIT ? OFFSET ?`,
		string(status), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("querying issues: %w", err)
	}
	defer rows.Close()

	issues := make([]*model.IssueWithProject, 0)
	for rows.Next() {
		var (
			iw                   model.IssueWithProject
			githubID, body       sql.NullString
			githubURL            sql.NullString
			userID, userLogin    sql.NullString
			status               string
			createdAt, updatedAt string
			langs                string
		)
		if err := rows.Scan(&iw.ID, &iw.ProjectID, &githubID, &iw.Number, &iw.Title, &body, &status,
			&githubURL, &userID, &userLogin, &iw.RewardAmount, &createdAt, &updatedAt,
			&iw.Project.ID, &iw.Project.Name, &iw.Project.RepositoryURL, &langs); err != nil {
			return nil, 0, fmt.Errorf("scanning issue row: %w", err)
		}
		iw.GitHubID = githubID.String
		iw.Body = body.String
		iw.GitHubURL = githubURL.String
		iw.AuthorGitHubID = userID.String
		iw.AuthorLogin = userLogin.String
		iw.Status = model.Status(status)
		if iw.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, 0, err
		}
		if iw.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, 0, err
		}
		if iw.Project.Languages, err = decodeStrings(langs); err != nil {
			return nil, 0, err
		}
		issues = append(issues, &iw)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating issue rows: %w", err)
	}
	return issues, total, nil
}

// UpdateIssue overwrites the API-editable fields of the issue with is.ID in
// project is.ProjectID.
func (s *Store) UpdateIssue(ctx context.Context, is *model.Issue) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE issues SET title = ?, body = ?, issue_number = ?, reward_amount = ?, status = ?, updated_at = ?
		 WHERE id = ? AND project_id = ?`,
		is.Title, is.Body, is.Number, is.RewardAmount, string(is.Status), s.timestamp(), is.ID, is.ProjectID,
	)
	if err != nil {
		return fmt.Errorf("updating issue: %w", err)
	}
	return expectOneRow(res)
}

// DeleteIssue removes an issue from a project.
func (s *Store) DeleteIssue(ctx context.Context, projectID, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM issues WHERE id = ? AND project_id = ?`, id, projectID)
	if err != nil {
		return fmt.Errorf("deleting issue: %w", err)
	}
	return expectOneRow(res)
}

func scanIssueRow(row *sql.Row) (*model.Issue, error) {
	is, err := scanIssue(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning issue: %w", err)
	}
	return is, nil
}

func scanIssue(sc scanner) (*model.Issue, error) {
	var (
		is                   model.Issue
		githubID, body       sql.NullString
		githubURL            sql.NullString
		userID, userLogin    sql.NullString
		status               string
		createdAt, updatedAt string
	)
	if err := sc.Scan(&is.ID, &is.ProjectID, &githubID, &is.Number, &is.Title, &body, &status,
		&githubURL, &userID, &userLogin, &is.RewardAmount, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	is.GitHubID = githubID.String
	is.Body = body.String
	is.GitHubURL = githubURL.String
	is.AuthorGitHubID = userID.String
	is.AuthorLogin = userLogin.String
	is.Status = model.Status(status)

	var err error
	if is.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if is.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &is, nil
}
