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
	"sync"
	"time"
)

// RateLimiter provides per-repository fixed-window rate limiting
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
	now     func() time.Time
}

type window struct {
	remaining int
	start     time.Time
}

// NewRateLimiter allows limit deliveries per repository in every period.
func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
		now:     time.Now,
	}
}

// Allow checks if a delivery for the given repository should be accepted
func (rl *RateLimiter) Allow(repo string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[repo]
	if !ok || now.Sub(w.start) >= rl.period {
		w = &window{remaining: rl.limit, start: now}
		rl.windows[repo] = w
	}

	if w.remaining == 0 {
		return false
	}
	w.remaining--
	return true
}
