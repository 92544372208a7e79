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

package webhook

import (
	"context"
	"errors"
	"fmt"

	"github.com/satquest/satquest/internal/model"
	"github.com/satquest/satquest/internal/store"
)

// ErrUntracked is returned by Resolve when no project tracks the repository.
var ErrUntracked = errors.New("repository not tracked")

// Resolver maps the repository of a delivery to a tracked project.
type Resolver struct {
	store Store
}

// NewResolver creates a Resolver reading projects from s.
func NewResolver(s Store) *Resolver {
	return &Resolver{store: s}
}

// Resolve returns the project whose repository URL equals repositoryURL
// exactly. It returns ErrUntracked when there is none; any other error means
// the lookup itself failed and the delivery may be retried.
func (r *Resolver) Resolve(ctx context.Context, repositoryURL string) (*model.Project, error) {
	if repositoryURL == "" {
		return nil, ErrUntracked
	}

	project, err := r.store.GetProjectByRepositoryURL(ctx, repositoryURL)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUntracked
		}
		return nil, fmt.Errorf("resolving project for %s: %w", repositoryURL, err)
	}
	return project, nil
}
