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

// Package webhook ingests GitHub webhook deliveries for SatQuest.
//
// The endpoint mirrors the state of issues, issue comments and pull requests
// of tracked repositories into the local store. A delivery flows through four
// stages:
//
//   - Signature verification: the raw body is checked against the
//     X-Hub-Signature-256 header using HMAC-SHA256 and the configured secret.
//     An unset secret rejects every delivery.
//   - Routing: the X-GitHub-Event header selects the issue, issue_comment or
//     pull_request handler. Other events are acknowledged and ignored.
//   - Project resolution: repository.html_url must equal the repository URL
//     of a tracked project exactly. Deliveries for other repositories are
//     acknowledged and ignored.
//   - Upsert: each handler performs a single write keyed by GitHub's stable id.
//
// Webhook Security:
//
// The X-Hub-Signature-256, X-GitHub-Event and X-GitHub-Delivery headers are
// required. A request missing any of them is rejected with HTTP 400 before its
// body is read; a bad signature is rejected with HTTP 401.
//
// Event Handling:
//
//   - issues: opened, closed, reopened upsert the issue
//   - pull_request: opened, closed, reopened upsert the pull request
//   - issue_comment: created inserts the comment once per comment id
//
// Failures:
//
// Each delivery produces a Result. Storage failures are logged and counted
// but, unless configured otherwise, still answered with HTTP 200 so that one
// bad event never breaks the endpoint.
//
// Example usage:
//
//	router := webhook.NewRouter(store)
//	handler := webhook.NewHandler(cfg.Webhook, router, webhook.WithRecorder(metrics))
//	mux.Handle("/api/webhooks/github", handler)
package webhook
