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
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

const signaturePrefix = "sha256="

var (
	// ErrSecretNotConfigured is returned when no webhook secret is set.
	ErrSecretNotConfigured = errors.New("webhook secret not configured")
	// ErrInvalidSignature is returned when the signature is missing, malformed
	// or does not match the payload.
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// Sign returns the X-Hub-Signature-256 value for payload under secret.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// Verify checks the HMAC-SHA256 signature of a GitHub webhook payload.
//
// payload must be the body exactly as received. The signature must have the
// form "sha256=<hex-encoded-hmac>". An empty secret never verifies.
func Verify(payload []byte, signature, secret string) error {
	if secret == "" {
		return ErrSecretNotConfigured
	}
	if signature == "" || !strings.HasPrefix(signature, signaturePrefix) {
		return ErrInvalidSignature
	}

	// Constant-time comparison.
	if !hmac.Equal([]byte(signature), []byte(Sign(payload, secret))) {
		return ErrInvalidSignature
	}
	return nil
}
