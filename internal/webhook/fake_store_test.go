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
	"sync"

	"github.com/satquest/satquest/internal/model"
	"github.com/satquest/satquest/internal/store"
)

// fakeStore is an in-memory Store with per-method error injection.
type fakeStore struct {
	mu       sync.Mutex
	projects map[string]*model.Project
	issues   map[string]*model.Issue
	prs      map[string]*model.PullRequest
	comments map[string]*model.Comment
	writes   int

	lookupErr  error
	upsertErr  error
	commentErr error
}

func newFakeStore(projects ...*model.Project) *fakeStore {
	fs := &fakeStore{
		projects: make(map[string]*model.Project),
		issues:   make(map[string]*model.Issue),
		prs:      make(map[string]*model.PullRequest),
		comments: make(map[string]*model.Comment),
	}
	for _, p := range projects {
		fs.projects[p.RepositoryURL] = p
	}
	return fs
}

func (f *fakeStore) GetProjectByRepositoryURL(_ context.Context, url string) (*model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	p, ok := f.projects[url]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) UpsertIssue(_ context.Context, is *model.Issue) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.upsertErr != nil {
		return f.upsertErr
	}
	cp := *is
	f.issues[is.GitHubID] = &cp
	f.writes++
	return nil
}

func (f *fakeStore) UpsertPullRequest(_ context.Context, pr *model.PullRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.upsertErr != nil {
		return f.upsertErr
	}
	cp := *pr
	f.prs[pr.GitHubID] = &cp
	f.writes++
	return nil
}

func (f *fakeStore) InsertComment(_ context.Context, c *model.Comment) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.commentErr != nil {
		return false, f.commentErr
	}
	if _, ok := f.comments[c.GitHubID]; ok {
		return false, nil
	}
	cp := *c
	f.comments[c.GitHubID] = &cp
	f.writes++
	return true, nil
}

// recorder counts outcomes per event.
type recorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *recorder) RecordDelivery(event string, outcome Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.counts == nil {
		r.counts = make(map[string]int)
	}
	r.counts[event+"/"+string(outcome)]++
}

func (r *recorder) count(event string, outcome Outcome) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[event+"/"+string(outcome)]
}
