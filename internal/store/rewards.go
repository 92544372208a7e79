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

var (
	// ErrPaymentFailed is returned by PayReward when the payment step fails.
	// The reward is still recorded with status failed.
	ErrPaymentFailed = errors.New("reward payment failed")
	// ErrAlreadyCompleted is returned by PayReward for an issue that has
	// already been rewarded.
	ErrAlreadyCompleted = errors.New("issue already completed")
)

// PayFunc sends the payment for a pending reward.
type PayFunc func(ctx context.Context, r *model.Reward) error

// PayReward records a reward for the issue r.IssueID of project r.ProjectID
// and pays it. The amount is taken from the issue's reward_amount.
//
// Everything happens in one transaction: the reward is inserted as pending,
// pay is called, and then either the issue is marked completed and the reward
// paid, or the reward is marked failed and the issue left as it was. A nil pay
// always succeeds.
func (s *Store) PayReward(ctx context.Context, r *model.Reward, pay PayFunc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var status string
	if err := tx.QueryRowContext(ctx,
		`SELECT reward_amount, status FROM issues WHERE id = ? AND project_id = ?`,
		r.IssueID, r.ProjectID,
	).Scan(&r.Amount, &status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("reading issue reward amount: %w", err)
	}
	if model.Status(status) == model.StatusCompleted {
		return ErrAlreadyCompleted
	}

	now := s.timestamp()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO rewards (issue_id, project_id, recipient_id, lightning_address, amount, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.IssueID, r.ProjectID, r.RecipientID, r.LightningAddress, r.Amount, string(model.RewardPending), now, now,
	)
	if err != nil {
		return fmt.Errorf("inserting reward: %w", err)
	}
	if r.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	r.Status = model.RewardPending
	r.CreatedAt, _ = parseTime(now)

	var payErr error
	if pay != nil {
		payErr = pay(ctx, r)
	}

	if payErr != nil {
		r.Status = model.RewardFailed
	} else {
		if _, err := tx.ExecContext(ctx,
			`UPDATE issues SET status = ?, updated_at = ? WHERE id = ? AND project_id = ?`,
			string(model.StatusCompleted), now, r.IssueID, r.ProjectID,
		); err != nil {
			return fmt.Errorf("completing issue: %w", err)
		}
		r.Status = model.RewardPaid
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE rewards SET status = ?, updated_at = ? WHERE id = ?`,
		string(r.Status), now, r.ID,
	); err != nil {
		return fmt.Errorf("updating reward status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	r.UpdatedAt = r.CreatedAt

	if payErr != nil {
		return fmt.Errorf("%w: %w", ErrPaymentFailed, payErr)
	}
	return nil
}

// GetReward retrieves a reward by ID.
func (s *Store) GetReward(ctx context.Context, id int64) (*model.Reward, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, issue_id, project_id, recipient_id, lightning_address, amount, status, created_at, updated_at
		 FROM rewards WHERE id = ?`, id)

	var (
		r                    model.Reward
		status               string
		createdAt, updatedAt string
	)
	if err := row.Scan(&r.ID, &r.IssueID, &r.ProjectID, &r.RecipientID, &r.LightningAddress,
		&r.Amount, &status, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning reward: %w", err)
	}
	r.Status = model.RewardStatus(status)

	var err error
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}
