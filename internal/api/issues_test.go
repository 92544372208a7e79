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
	"errors"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/satquest/satquest/internal/model"
)

var _ = Describe("Issues", func() {
	var (
		env     *testEnv
		project *model.Project
	)

	BeforeEach(func() {
		env = newTestEnv()
		project = env.createProject(env.aliceToken, "https://github.com/acme/widgets")
	})

	Context("when creating an issue", func() {
		It("should open it with the requested bounty", func() {
			issue := env.createIssue(env.aliceToken, project.ID, 42, 5000)

			Expect(issue.ProjectID).To(Equal(project.ID))
			Expect(issue.Number).To(Equal(42))
			Expect(issue.Status).To(Equal(model.StatusOpen))
			Expect(issue.RewardAmount).To(Equal(int64(5000)))
			Expect(issue.GitHubID).To(BeEmpty())
		})

		It("should reject missing or zero fields", func() {
			w := env.do(http.MethodPost, projectPath(project.ID)+"/issues", env.aliceToken, map[string]any{
				"title": "Fix crash", "description": "d", "github_issue_id": 42, "reward_amount": 0,
			})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(errorMessage(w)).To(Equal(issueFieldsRequired))
		})

		It("should only let the project owner add issues", func() {
			w := env.do(http.MethodPost, projectPath(project.ID)+"/issues", env.bobToken, map[string]any{
				"title": "Fix crash", "description": "d", "github_issue_id": 42, "reward_amount": 10,
			})
			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(errorMessage(w)).To(Equal("You do not have permission to add issues"))
		})

		It("should answer 404 for an unknown project", func() {
			w := env.do(http.MethodPost, projectPath(project.ID+1)+"/issues", env.aliceToken, map[string]any{
				"title": "Fix crash", "description": "d", "github_issue_id": 42, "reward_amount": 10,
			})
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	Context("with an existing issue", func() {
		var issue *model.Issue

		BeforeEach(func() {
			issue = env.createIssue(env.aliceToken, project.ID, 42, 5000)
		})

		It("should return it scoped to its project", func() {
			w := env.do(http.MethodGet, issuePath(project.ID, issue.ID), "", nil)
			Expect(w.Code).To(Equal(http.StatusOK))

			other := env.createProject(env.aliceToken, "https://github.com/acme/gadgets")
			w = env.do(http.MethodGet, issuePath(other.ID, issue.ID), "", nil)
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		It("should default the status to open on update", func() {
			By("moving the issue to in progress")
			w := env.do(http.MethodPut, issuePath(project.ID, issue.ID), env.aliceToken, map[string]any{
				"title": "Fix crash", "description": "d", "github_issue_id": 42, "reward_amount": 6000, "status": "in_progress",
			})
			Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())

			var resp struct {
				Issue model.Issue `json:"issue"`
			}
			decode(w, &resp)
			Expect(resp.Issue.Status).To(Equal(model.StatusInProgress))
			Expect(resp.Issue.RewardAmount).To(Equal(int64(6000)))

			By("updating without a status")
			w = env.do(http.MethodPut, issuePath(project.ID, issue.ID), env.aliceToken, map[string]any{
				"title": "Fix crash", "description": "d", "github_issue_id": 42, "reward_amount": 6000,
			})
			Expect(w.Code).To(Equal(http.StatusOK))
			decode(w, &resp)
			Expect(resp.Issue.Status).To(Equal(model.StatusOpen))
		})

		It("should reject an unknown status", func() {
			w := env.do(http.MethodPut, issuePath(project.ID, issue.ID), env.aliceToken, map[string]any{
				"title": "Fix crash", "description": "d", "github_issue_id": 42, "reward_amount": 1, "status": "merged",
			})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(errorMessage(w)).To(Equal("Invalid status"))
		})

		It("should list project issues filtered by status", func() {
			var resp struct {
				Issues []model.Issue `json:"issues"`
			}

			w := env.do(http.MethodGet, projectPath(project.ID)+"/issues", "", nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			decode(w, &resp)
			Expect(resp.Issues).To(HaveLen(1))

			w = env.do(http.MethodGet, projectPath(project.ID)+"/issues?status=closed", "", nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			decode(w, &resp)
			Expect(resp.Issues).To(BeEmpty())

			w = env.do(http.MethodGet, projectPath(project.ID)+"/issues?status=bogus", "", nil)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("should delete it", func() {
			Expect(env.do(http.MethodDelete, issuePath(project.ID, issue.ID), env.bobToken, nil).Code).To(Equal(http.StatusForbidden))
			Expect(env.do(http.MethodDelete, issuePath(project.ID, issue.ID), env.aliceToken, nil).Code).To(Equal(http.StatusOK))
			Expect(env.do(http.MethodDelete, issuePath(project.ID, issue.ID), env.aliceToken, nil).Code).To(Equal(http.StatusNotFound))
		})
	})

	Context("when browsing bounties across projects", func() {
		BeforeEach(func() {
			env.createIssue(env.aliceToken, project.ID, 1, 100)
			env.createIssue(env.aliceToken, project.ID, 2, 200)
			closed := env.createIssue(env.aliceToken, project.ID, 3, 300)

			w := env.do(http.MethodPut, issuePath(project.ID, closed.ID), env.aliceToken, map[string]any{
				"title": "Fix crash", "description": "d", "github_issue_id": 3, "reward_amount": 300, "status": "closed",
			})
			Expect(w.Code).To(Equal(http.StatusOK))
		})

		It("should list open issues with their project by default", func() {
			w := env.do(http.MethodGet, "/api/issues", "", nil)
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp struct {
				Issues     []model.IssueWithProject `json:"issues"`
				Pagination Pagination               `json:"pagination"`
			}
			decode(w, &resp)
			Expect(resp.Issues).To(HaveLen(2))
			Expect(resp.Pagination.Total).To(Equal(2))
			for _, is := range resp.Issues {
				Expect(is.Status).To(Equal(model.StatusOpen))
				Expect(is.Project.ID).To(Equal(project.ID))
				Expect(is.Project.Name).To(Equal("widgets"))
				Expect(is.Project.Languages).To(Equal([]string{"Go"}))
			}
		})

		It("should honour an explicit status", func() {
			w := env.do(http.MethodGet, "/api/issues?status=closed", "", nil)

			var resp struct {
				Issues []model.IssueWithProject `json:"issues"`
			}
			decode(w, &resp)
			Expect(resp.Issues).To(HaveLen(1))
			Expect(resp.Issues[0].Number).To(Equal(3))
		})

		It("should reject an unknown status", func() {
			Expect(env.do(http.MethodGet, "/api/issues?status=nope", "", nil).Code).To(Equal(http.StatusBadRequest))
		})
	})
})

var _ = Describe("Rewards", func() {
	var (
		env     *testEnv
		project *model.Project
		issue   *model.Issue
		body    map[string]any
	)

	BeforeEach(func() {
		env = newTestEnv()
		project = env.createProject(env.aliceToken, "https://github.com/acme/widgets")
		issue = env.createIssue(env.aliceToken, project.ID, 42, 21000)
		body = map[string]any{"recipient_id": "bob", "lightning_address": "bob@getalby.com"}
	})

	rewardPath := func() string {
		return issuePath(project.ID, issue.ID) + "/reward"
	}

	issueStatus := func() model.Status {
		w := env.do(http.MethodGet, issuePath(project.ID, issue.ID), "", nil)
		var resp struct {
			Issue model.Issue `json:"issue"`
		}
		decode(w, &resp)
		return resp.Issue.Status
	}

	It("should pay the issue's bounty and complete the issue", func() {
		w := env.do(http.MethodPost, rewardPath(), env.aliceToken, body)
		Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())

		var resp struct {
			Message string       `json:"message"`
			Reward  model.Reward `json:"reward"`
		}
		decode(w, &resp)
		Expect(resp.Message).To(Equal("Reward processed successfully"))
		Expect(resp.Reward.Amount).To(Equal(int64(21000)))
		Expect(resp.Reward.Status).To(Equal(model.RewardPaid))
		Expect(resp.Reward.LightningAddress).To(Equal("bob@getalby.com"))

		Expect(issueStatus()).To(Equal(model.StatusCompleted))
		Expect(env.rewards.paid).To(Equal(1))
	})

	It("should refuse to pay an issue twice", func() {
		Expect(env.do(http.MethodPost, rewardPath(), env.aliceToken, body).Code).To(Equal(http.StatusOK))

		w := env.do(http.MethodPost, rewardPath(), env.aliceToken, body)
		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(errorMessage(w)).To(Equal("Issue has already been rewarded"))
		Expect(env.rewards.paid).To(Equal(1))
	})

	It("should record a failed payment and leave the issue open", func() {
		env.payErr = errors.New("lightning node unreachable")

		w := env.do(http.MethodPost, rewardPath(), env.aliceToken, body)
		Expect(w.Code).To(Equal(http.StatusBadGateway))

		var resp struct {
			Error  string       `json:"error"`
			Reward model.Reward `json:"reward"`
		}
		decode(w, &resp)
		Expect(resp.Error).To(Equal("Reward payment failed"))
		Expect(resp.Reward.Status).To(Equal(model.RewardFailed))

		Expect(issueStatus()).To(Equal(model.StatusOpen))
		Expect(env.rewards.failed).To(Equal(1))

		By("retrying once the payment goes through")
		env.payErr = nil
		Expect(env.do(http.MethodPost, rewardPath(), env.aliceToken, body).Code).To(Equal(http.StatusOK))
		Expect(issueStatus()).To(Equal(model.StatusCompleted))
	})

	It("should require a recipient and lightning address", func() {
		w := env.do(http.MethodPost, rewardPath(), env.aliceToken, map[string]any{"recipient_id": "bob"})
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(errorMessage(w)).To(Equal("Recipient ID and Lightning address are required"))
	})

	It("should only let the project owner pay", func() {
		w := env.do(http.MethodPost, rewardPath(), env.bobToken, body)
		Expect(w.Code).To(Equal(http.StatusForbidden))
		Expect(issueStatus()).To(Equal(model.StatusOpen))
	})

	It("should answer 404 for an issue of another project", func() {
		other := env.createProject(env.aliceToken, "https://github.com/acme/gadgets")

		w := env.do(http.MethodPost, issuePath(other.ID, issue.ID)+"/reward", env.aliceToken, body)
		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(errorMessage(w)).To(Equal("Issue not found"))
	})
})
