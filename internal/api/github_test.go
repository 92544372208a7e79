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

package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	gogithub "github.com/google/go-github/v66/github"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/satquest/satquest/internal/github"
	"github.com/satquest/satquest/internal/model"
)

var _ = Describe("GitHub", func() {
	var env *testEnv

	BeforeEach(func() {
		env = newTestEnv()
	})

	Context("when listing repositories", func() {
		It("should pass paging and visibility through", func() {
			env.gh.repos = []*github.Repository{{ID: 1, Name: "widgets", FullName: "acme/widgets"}}

			w := env.do(http.MethodGet, "/api/github/repos?page=2&per_page=500&visibility=private", env.aliceToken, nil)
			Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())
			Expect(env.gh.listOpts).To(Equal(github.RepositoryListOptions{Page: 2, PerPage: 100, Visibility: "private"}))

			var resp struct {
				Repos []github.Repository `json:"repos"`
			}
			decode(w, &resp)
			Expect(resp.Repos).To(HaveLen(1))
			Expect(resp.Repos[0].FullName).To(Equal("acme/widgets"))
		})

		It("should reject an unknown visibility", func() {
			w := env.do(http.MethodGet, "/api/github/repos?visibility=internal", env.aliceToken, nil)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("should relay GitHub's status code", func() {
			req, _ := http.NewRequest(http.MethodGet, "https://api.github.com/user/repos", nil)
			env.gh.err = fmt.Errorf("listing repositories: %w", &gogithub.ErrorResponse{
				Response: &http.Response{StatusCode: http.StatusForbidden, Request: req},
				Message:  "Resource not accessible by integration",
			})

			w := env.do(http.MethodGet, "/api/github/repos", env.aliceToken, nil)
			Expect(w.Code).To(Equal(http.StatusForbidden))

			var resp map[string]string
			decode(w, &resp)
			Expect(resp["error"]).To(Equal("Failed to fetch repositories"))
			Expect(resp["details"]).To(ContainSubstring("Resource not accessible"))
		})

		It("should answer 500 for errors without a status", func() {
			env.gh.err = context.DeadlineExceeded
			Expect(env.do(http.MethodGet, "/api/github/repos", env.aliceToken, nil).Code).To(Equal(http.StatusInternalServerError))
		})

		It("should answer 401 when the user's GitHub token has expired", func() {
			Expect(env.store.SaveAuthToken(context.Background(), &model.AuthToken{
				UserID:      env.alice.ID,
				AccessToken: "gho_alice",
				ExpiresAt:   time.Now().Add(-time.Hour),
			})).To(Succeed())

			w := env.do(http.MethodGet, "/api/github/repos", env.aliceToken, nil)
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(errorMessage(w)).To(Equal("GitHub token not found or expired"))
		})
	})

	Context("when managing webhooks", func() {
		It("should require owner and repo to list hooks", func() {
			Expect(env.do(http.MethodGet, "/api/github/webhooks?owner=acme", env.aliceToken, nil).Code).To(Equal(http.StatusBadRequest))

			env.gh.hooks = []*github.Hook{{ID: 7, Name: "web", Events: []string{"issues"}}}
			w := env.do(http.MethodGet, "/api/github/webhooks?owner=acme&repo=widgets", env.aliceToken, nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(env.gh.hookOwner).To(Equal("acme"))
			Expect(env.gh.hookRepo).To(Equal("widgets"))

			var resp struct {
				Webhooks []github.Hook `json:"webhooks"`
			}
			decode(w, &resp)
			Expect(resp.Webhooks).To(HaveLen(1))
			Expect(resp.Webhooks[0].ID).To(Equal(int64(7)))
		})

		It("should register the SatQuest webhook with defaults", func() {
			w := env.do(http.MethodPost, "/api/github/webhooks", env.aliceToken, map[string]any{
				"owner": "acme", "repo": "widgets",
			})
			Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())

			Expect(env.gh.created).To(Equal(&github.HookRequest{
				URL:         "https://satquest.example.com/api/webhooks/github",
				Events:      []string{"issues"},
				ContentType: "json",
				Secret:      "hook-secret",
			}))
		})

		It("should honour requested events and config but keep the secret", func() {
			w := env.do(http.MethodPost, "/api/github/webhooks", env.aliceToken, map[string]any{
				"owner":  "acme",
				"repo":   "widgets",
				"events": []string{"issues", "issue_comment", "pull_request"},
				"config": map[string]any{"url": "https://hooks.example.com/in", "content_type": "form", "secret": "mine"},
			})
			Expect(w.Code).To(Equal(http.StatusOK))

			Expect(env.gh.created.Events).To(Equal([]string{"issues", "issue_comment", "pull_request"}))
			Expect(env.gh.created.URL).To(Equal("https://hooks.example.com/in"))
			Expect(env.gh.created.ContentType).To(Equal("form"))
			Expect(env.gh.created.Secret).To(Equal("hook-secret"))
		})

		It("should refuse to register a hook without a configured secret", func() {
			env.cfg.Webhook.Secret = ""

			w := env.do(http.MethodPost, "/api/github/webhooks", env.aliceToken, map[string]any{
				"owner": "acme", "repo": "widgets",
			})
			Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
			Expect(env.gh.created).To(BeNil())
		})

		It("should delete a hook", func() {
			Expect(env.do(http.MethodDelete, "/api/github/webhooks", env.aliceToken, map[string]any{
				"owner": "acme", "repo": "widgets",
			}).Code).To(Equal(http.StatusBadRequest))

			w := env.do(http.MethodDelete, "/api/github/webhooks", env.aliceToken, map[string]any{
				"owner": "acme", "repo": "widgets", "hookId": 12,
			})
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(env.gh.deleted).To(Equal(int64(12)))
		})
	})

	It("should require a session for every GitHub route", func() {
		for _, route := range []struct{ method, path string }{
			{http.MethodGet, "/api/github/repos"},
			{http.MethodGet, "/api/github/webhooks?owner=a&repo=b"},
			{http.MethodPost, "/api/github/webhooks"},
			{http.MethodDelete, "/api/github/webhooks"},
		} {
			Expect(env.do(route.method, route.path, "", nil).Code).To(Equal(http.StatusUnauthorized), route.path)
		}
	})
})
