/*
Copyright (c) 2025 The SatQuest Authors

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

package cleanup

import (
	"context"
	"time"

	"sigs.k8s.io/controller-runtime/pkg/log"
)

// SessionStore is the storage the scheduler purges.
type SessionStore interface {
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// Scheduler periodically removes expired login sessions so the sessions table
// does not grow with every sign-in.
type Scheduler struct {
	store    SessionStore
	interval time.Duration
	now      func() time.Time
}

// NewScheduler creates a cleanup scheduler that runs every interval.
func NewScheduler(s SessionStore, interval time.Duration) *Scheduler {
	return &Scheduler{
		store:    s,
		interval: interval,
		now:      time.Now,
	}
}

// Start runs a cleanup pass every interval until ctx is cancelled. A failed
// pass is logged and retried on the next tick.
func (s *Scheduler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger := log.FromContext(ctx).WithName("cleanup")
	logger.Info("Starting session cleanup", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.cleanup(ctx); err != nil {
				logger.Error(err, "cleanup pass failed")
			}
		}
	}
}

// cleanup performs a single pass, deleting every session whose expiry is
// before now.
func (s *Scheduler) cleanup(ctx context.Context) error {
	n, err := s.store.DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		return err
	}
	if n > 0 {
		log.FromContext(ctx).V(1).Info("Purged expired sessions", "count", n)
	}
	return nil
}
