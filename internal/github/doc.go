// MIT License
//
// Copyright (c) 2025 The SatQuest Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package github provides GitHub API integration for SatQuest.
//
// Maintainers sign in with GitHub OAuth. The access token stored at sign-in
// is used to build a per-user Client which SatQuest calls to:
//   - Identify the signed-in user
//   - List the repositories a maintainer can turn into projects
//   - List and register the webhooks that feed issue, comment and pull
//     request events back to SatQuest
//
// Example usage:
//
//	client, err := github.NewClient(ctx, token)
//	if err != nil {
//	    return err
//	}
//
//	hook, err := client.CreateHook(ctx, "acme", "widgets", &github.HookRequest{
//	    URL:    "https://satquest.example.com/api/webhooks/github",
//	    Events: []string{"issues"},
//	    Secret: secret,
//	})
//
// Retry Logic:
//
// Failed requests are retried with exponential backoff and ±20% jitter:
//   - Initial backoff: 100 milliseconds
//   - Maximum backoff: 30 seconds
//   - Maximum retries: 3
//
// Retries are performed for transient errors (429, 502, 503, 504 and primary
// rate limit responses). Waiting is bounded by the caller's context.
package github
