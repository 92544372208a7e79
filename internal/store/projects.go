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

const projectColumns = `id, name, description, repository_url, languages, owner_id, github_id, created_at, updated_at`

// CreateProject inserts p and fills in its ID and timestamps.
func (s *Store) CreateProject(ctx context.Context, p *model.Project) error {
	langs, err := encodeStrings(p.Languages)
	if err != nil {
		return err
	}
	now := s.timestamp()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (name, description, repository_url, languages, owner_id, github_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Description, p.RepositoryURL, langs, p.OwnerID, nullString(p.GitHubOwnerID), now, now,
	)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	p.ID = id
	p.CreatedAt, _ = parseTime(now)
	p.UpdatedAt = p.CreatedAt
	if p.Languages == nil {
		p.Languages = []string{}
	}
	return nil
}

// GetProject retrieves a project by ID.
func (s *Store) GetProject(ctx context.Context, id int64) (*model.Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	return scanProjectRow(row)
}

// GetProjectByRepositoryURL retrieves the project whose repository URL equals
// url exactly. No normalization is applied to either side.
func (s *Store) GetProjectByRepositoryURL(ctx context.Context, url string) (*model.Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE repository_url = ? ORDER BY id LIMIT 1`, url)
	return scanProjectRow(row)
}

// ListProjects returns one page of projects, newest first, and the total
// number of projects.
func (s *Store) ListProjects(ctx context.Context, limit, offset int) ([]*model.Project, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting projects: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	projects := make([]*model.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning project row: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating project rows: %w", err)
	}
	return projects, total, nil
}

// UpdateProject overwrites the mutable fields of the project with p.ID.
func (s *Store) UpdateProject(ctx context.Context, p *model.Project) error {
	langs, err := encodeStrings(p.Languages)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET name = ?, description = ?, repository_url = ?, languages = ?, updated_at = ?
		 WHERE id = ?`,
		p.Name, p.Description, p.RepositoryURL, langs, s.timestamp(), p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}
	if err := expectOneRow(res); err != nil {
		return err
	}
	return nil
}

// DeleteProject removes a project and, through cascades, its issues, pull
// requests and rewards.
func (s *Store) DeleteProject(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	return expectOneRow(res)
}

func scanProjectRow(row *sql.Row) (*model.Project, error) {
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}
	return p, nil
}

func scanProject(sc scanner) (*model.Project, error) {
	var (
		p                    model.Project
		langs                string
		githubID             sql.NullString
		createdAt, updatedAt string
	)
	if err := sc.Scan(&p.ID, &p.Name, &p.Description, &p.RepositoryURL, &langs,
		&p.OwnerID, &githubID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if p.Languages, err = decodeStrings(langs); err != nil {
		return nil, err
	}
	p.GitHubOwnerID = githubID.String
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
