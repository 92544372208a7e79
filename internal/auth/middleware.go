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

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/satquest/satquest/internal/model"
)

type contextKey struct{}

type principal struct {
	user    *model.User
	session *model.Session
}

// WithUser returns a copy of ctx carrying the authenticated user and session.
func WithUser(ctx context.Context, u *model.User, sess *model.Session) context.Context {
	return context.WithValue(ctx, contextKey{}, principal{user: u, session: sess})
}

// UserFromContext returns the user stored by RequireUser.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	p, ok := ctx.Value(contextKey{}).(principal)
	return p.user, ok && p.user != nil
}

// SessionFromContext returns the session stored by RequireUser.
func SessionFromContext(ctx context.Context) (*model.Session, bool) {
	p, ok := ctx.Value(contextKey{}).(principal)
	return p.session, ok && p.session != nil
}

// RequireUser rejects requests without a valid session with 401 and passes
// the rest on with the user in their context.
func (s *Service) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, sess, err := s.Authenticate(r)
		if err != nil {
			if !errors.Is(err, ErrUnauthenticated) {
				log.FromContext(r.Context()).Error(err, "Failed to authenticate request")
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"}) //nolint:errcheck
			return
		}

		logger := log.FromContext(r.Context()).WithValues("userID", user.ID)
		ctx := log.IntoContext(WithUser(r.Context(), user, sess), logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
