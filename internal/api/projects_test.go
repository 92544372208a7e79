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
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/satquest/satquest/internal/model"
)

var _ = Describe("Projects", func() {
	var env *testEnv

	BeforeEach(func() {
		env = newTestEnv()
	})

	Context("when creating a project", func() {
		It("should require a session", func() {
			w := env.do(http.MethodPost, "/api/projects", "", map[string]any{
				"name": "widgets", "description": "d", "repository_url": "https://github.com/acme/widgets",
			})
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(errorMessage(w)).To(Equal("Unauthorized"))
		})

		It("should reject missing fields", func() {
			w := env.do(http.MethodPost, "/api/projects", env.aliceToken, map[string]any{"name": "widgets"})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(errorMessage(w)).To(Equal("Name, description, and repository URL are required"))
		})

		It("should reject a malformed body", func() {
			w := env.do(http.MethodPost, "/api/projects", env.aliceToken, "not an object")
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("should store the project owned by the caller", func() {
			p := env.createProject(env.aliceToken, "https://github.com/acme/widgets")

			Expect(p.ID).NotTo(BeZero())
			Expect(p.OwnerID).To(Equal(env.alice.ID))
			Expect(p.GitHubOwnerID).To(Equal(env.alice.GitHubID))
			Expect(p.Languages).To(Equal([]string{"Go"}))
		})
	})

	Context("when listing projects", func() {
		BeforeEach(func() {
			for _, repo := range []string{"a", "b", "c"} {
				env.createProject(env.aliceToken, "https://github.com/acme/"+repo)
			}
		})

		It("should paginate without a session", func() {
			w := env.do(http.MethodGet, "/api/projects?page=2&limit=2", "", nil)
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp struct {
				Projects   []model.Project `json:"projects"`
				Pagination Pagination      `json:"pagination"`
			}
			decode(w, &resp)
			Expect(resp.Projects).To(HaveLen(1))
			Expect(resp.Pagination).To(Equal(Pagination{Total: 3, Page: 2, Limit: 2, Pages: 2}))
		})

		It("should fall back to the default page size", func() {
			w := env.do(http.MethodGet, "/api/projects?page=zero&limit=-4", "", nil)

			var resp struct {
				Pagination Pagination `json:"pagination"`
			}
			decode(w, &resp)
			Expect(resp.Pagination).To(Equal(Pagination{Total: 3, Page: 1, Limit: 10, Pages: 1}))
		})
	})

	Context("with an existing project", func() {
		var project *model.Project

		BeforeEach(func() {
			project = env.createProject(env.aliceToken, "https://github.com/acme/widgets")
		})

		It("should return it by id", func() {
			w := env.do(http.MethodGet, projectPath(project.ID), "", nil)
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp struct {
				Project model.Project `json:"project"`
			}
			decode(w, &resp)
			Expect(resp.Project.RepositoryURL).To(Equal("https://github.com/acme/widgets"))
		})

		It("should answer 404 for an unknown id and 400 for a bad one", func() {
			Expect(env.do(http.MethodGet, projectPath(project.ID+100), "", nil).Code).To(Equal(http.StatusNotFound))
			Expect(env.do(http.MethodGet, "/api/projects/widgets", "", nil).Code).To(Equal(http.StatusBadRequest))
		})

		It("should let the owner update it", func() {
			w := env.do(http.MethodPut, projectPath(project.ID), env.aliceToken, map[string]any{
				"name":           "gadgets",
				"description":    "Now with gadgets",
				"repository_url": "https://github.com/acme/gadgets",
				"languages":      []string{"Go", "Rust"},
			})
			Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())

			var resp struct {
				Message string        `json:"message"`
				Project model.Project `json:"project"`
			}
			decode(w, &resp)
			Expect(resp.Message).To(Equal("Project updated successfully"))
			Expect(resp.Project.Name).To(Equal("gadgets"))
			Expect(resp.Project.Languages).To(Equal([]string{"Go", "Rust"}))
		})

		It("should forbid other users from changing it", func() {
			body := map[string]any{"name": "x", "description": "y", "repository_url": "z"}

			w := env.do(http.MethodPut, projectPath(project.ID), env.bobToken, body)
			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(errorMessage(w)).To(Equal("You do not have permission to update this project"))

			w = env.do(http.MethodDelete, projectPath(project.ID), env.bobToken, nil)
			Expect(w.Code).To(Equal(http.StatusForbidden))
		})

		It("should let the owner delete it", func() {
			By("deleting the project")
			w := env.do(http.MethodDelete, projectPath(project.ID), env.aliceToken, nil)
			Expect(w.Code).To(Equal(http.StatusOK))

			By("checking it is gone")
			Expect(env.do(http.MethodGet, projectPath(project.ID), "", nil).Code).To(Equal(http.StatusNotFound))
			Expect(env.do(http.MethodDelete, projectPath(project.ID), env.aliceToken, nil).Code).To(Equal(http.StatusNotFound))
		})
	})
})
