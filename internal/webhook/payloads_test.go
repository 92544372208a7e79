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
	"encoding/json"
	"testing"
)

const (
	testRepoURL  = "https://github.com/acme/widgets"
	testRepoName = "acme/widgets"
)

func repository(url, fullName string) map[string]any {
	return map[string]any{
		"id":        1296269,
		"full_name": fullName,
		"html_url":  url,
	}
}

func issuePayload(action, state, repoURL string) map[string]any {
	return map[string]any{
		"action": action,
		"issue": map[string]any{
			"id":       1001,
			"number":   42,
			"title":    "Fix crash",
			"body":     "It crashes on start",
			"state":    state,
			"html_url": repoURL + "/issues/42",
			"user":     map[string]any{"id": 7, "login": "octocat"},
		},
		"repository": repository(repoURL, testRepoName),
	}
}

func commentPayload(action string, commentID int, repoURL string) map[string]any {
	return map[string]any{
		"action": action,
		"issue": map[string]any{
			"id":     1001,
			"number": 42,
		},
		"comment": map[string]any{
			"id":         commentID,
			"body":       "I'd like to work on this",
			"user":       map[string]any{"id": 8, "login": "hubot"},
			"created_at": "2024-05-01T10:00:00Z",
		},
		"repository": repository(repoURL, testRepoName),
	}
}

func pullRequestPayload(action, state, repoURL string) map[string]any {
	return map[string]any{
		"action": action,
		"number": 7,
		"pull_request": map[string]any{
			"id":       2002,
			"number":   7,
			"title":    "Fix crash on start",
			"body":     "Closes #42",
			"state":    state,
			"html_url": repoURL + "/pull/7",
			"user":     map[string]any{"id": 8, "login": "hubot"},
		},
		"repository": repository(repoURL, testRepoName),
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()

	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json.Marshal() failed: %v", err)
	}
	return b
}
