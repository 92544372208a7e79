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
	"net/http/httptest"
	"net/url"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/satquest/satquest/internal/auth"
	"github.com/satquest/satquest/internal/model"
)

var _ = Describe("Sign-in", func() {
	var env *testEnv

	BeforeEach(func() {
		env = newTestEnv()
	})

	get := func(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		w := httptest.NewRecorder()
		env.mux.ServeHTTP(w, req)
		return w
	}

	cookieNamed := func(w *httptest.ResponseRecorder, name string) *http.Cookie {
		for _, c := range w.Result().Cookies() {
			if c.Name == name {
				return c
			}
		}
		return nil
	}

	It("should hand out the GitHub authorization URL with a state cookie", func() {
		w := get("/api/auth/github")
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp struct {
			URL string `json:"url"`
		}
		decode(w, &resp)
		u, err := url.Parse(resp.URL)
		Expect(err).NotTo(HaveOccurred())
		Expect(u.Query().Get("client_id")).To(Equal("client-id"))

		state := cookieNamed(w, auth.StateCookie)
		Expect(state).NotTo(BeNil())
		Expect(u.Query().Get("state")).To(Equal(state.Value))
	})

	It("should answer 503 when GitHub sign-in is not configured", func() {
		env.cfg.GitHub.ClientID = ""
		env.auth = auth.NewService(env.cfg, env.store, nil)
		env.mux = http.NewServeMux()
		New(env.cfg, env.store, env.auth).Register(env.mux)

		Expect(get("/api/auth/github").Code).To(Equal(http.StatusServiceUnavailable))
	})

	DescribeTable("callback failures redirect back to sign-in",
		func(query, wantReason string, withState bool) {
			var cookies []*http.Cookie
			if withState {
				cookies = append(cookies, &http.Cookie{Name: auth.StateCookie, Value: "s1"})
			}
			w := get("/api/auth/github/callback?"+query, cookies...)

			Expect(w.Code).To(Equal(http.StatusFound))
			Expect(w.Header().Get("Location")).To(Equal("/sign-in?error=" + wantReason))
		},
		Entry("no code", "state=s1", "missing_code", true),
		Entry("no state cookie", "code=good-code&state=s1", "invalid_state", false),
		Entry("state mismatch", "code=good-code&state=s2", "invalid_state", true),
		Entry("code rejected by GitHub", "code=bad-code&state=s1", "auth_failed", true),
	)

	It("should sign the user in and start a session", func() {
		By("starting the flow")
		start := get("/api/auth/github")
		state := cookieNamed(start, auth.StateCookie)
		Expect(state).NotTo(BeNil())

		By("returning from GitHub")
		w := get("/api/auth/github/callback?code=good-code&state="+url.QueryEscape(state.Value), state)
		Expect(w.Code).To(Equal(http.StatusFound))
		Expect(w.Header().Get("Location")).To(Equal("/dashboard"))

		session := cookieNamed(w, auth.SessionCookie)
		Expect(session).NotTo(BeNil())
		Expect(session.HttpOnly).To(BeTrue())

		By("using the session cookie")
		me := get("/api/me", session)
		Expect(me.Code).To(Equal(http.StatusOK))

		var resp struct {
			User model.User `json:"user"`
		}
		decode(me, &resp)
		Expect(resp.User.Username).To(Equal("octocat"))
		Expect(resp.User.GitHubID).To(Equal("583231"))
	})

	It("should end the session on logout", func() {
		Expect(env.do(http.MethodGet, "/api/me", env.aliceToken, nil).Code).To(Equal(http.StatusOK))

		w := env.do(http.MethodPost, "/api/auth/logout", env.aliceToken, nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(cookieNamed(w, auth.SessionCookie).MaxAge).To(BeNumerically("<", 0))

		Expect(env.do(http.MethodGet, "/api/me", env.aliceToken, nil).Code).To(Equal(http.StatusUnauthorized))
		Expect(env.do(http.MethodGet, "/api/me", env.bobToken, nil).Code).To(Equal(http.StatusOK))
	})
})

var _ = Describe("Profiles", func() {
	var env *testEnv

	BeforeEach(func() {
		env = newTestEnv()
	})

	It("should create then update the caller's profile", func() {
		Expect(env.do(http.MethodGet, "/api/profile", env.aliceToken, nil).Code).To(Equal(http.StatusNotFound))

		body := map[string]any{
			"display_name":      "Alice",
			"github_username":   "alice",
			"lightning_address": "alice@getalby.com",
		}

		var resp struct {
			Message string `json:"message"`
		}
		w := env.do(http.MethodPost, "/api/profile", env.aliceToken, body)
		Expect(w.Code).To(Equal(http.StatusOK))
		decode(w, &resp)
		Expect(resp.Message).To(Equal("Profile created successfully"))

		body["bio"] = "Rustacean turned gopher"
		w = env.do(http.MethodPost, "/api/profile", env.aliceToken, body)
		decode(w, &resp)
		Expect(resp.Message).To(Equal("Profile updated successfully"))

		w = env.do(http.MethodGet, "/api/profile", env.aliceToken, nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		var got struct {
			Profile model.Profile `json:"profile"`
		}
		decode(w, &got)
		Expect(got.Profile.UserID).To(Equal(env.alice.ID))
		Expect(got.Profile.Bio).To(Equal("Rustacean turned gopher"))
		Expect(got.Profile.LightningAddress).To(Equal("alice@getalby.com"))
	})

	It("should require a display name and GitHub username", func() {
		w := env.do(http.MethodPost, "/api/profile", env.aliceToken, map[string]any{"display_name": "Alice"})
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(errorMessage(w)).To(Equal("Display name and GitHub username are required"))
	})

	It("should require a session", func() {
		Expect(env.do(http.MethodGet, "/api/profile", "", nil).Code).To(Equal(http.StatusUnauthorized))
	})
})
