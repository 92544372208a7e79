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
	"testing"
)

func TestResolve(t *testing.T) {
	fs := newFakeStore(trackedProject())
	resolver := NewResolver(fs)

	p, err := resolver.Resolve(context.Background(), testRepoURL)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if p.ID != 3 {
		t.Errorf("Resolve() project = %d, expected 3", p.ID)
	}

	for _, url := range []string{"", "https://github.com/acme/unknown"} {
		if _, err := resolver.Resolve(context.Background(), url); !errors.Is(err, ErrUntracked) {
			t.Errorf("Resolve(%q) error = %v, expected ErrUntracked", url, err)
		}
	}
}

func TestResolve_LookupFailureIsNotUntracked(t *testing.T) {
	fs := newFakeStore(trackedProject())
	fs.lookupErr = errors.New("database is locked")
	resolver := NewResolver(fs)

	_, err := resolver.Resolve(context.Background(), testRepoURL)
	if err == nil {
		t.Fatal("Resolve() succeeded, expected error")
	}
	if errors.Is(err, ErrUntracked) {
		t.Errorf("Resolve() error = %v, lookup failures must not be reported as untracked", err)
	}
}
