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

// Package config loads the SatQuest server configuration.
//
// Configuration is read once at startup from an optional YAML file, then
// environment variables override individual fields. The resulting Config is
// passed explicitly to every component that needs it.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvWebhookSecret      = "SATQUEST_WEBHOOK_SECRET"
	EnvGitHubClientID     = "GITHUB_CLIENT_ID"
	EnvGitHubClientSecret = "GITHUB_CLIENT_SECRET"
	EnvGitHubRedirectURI  = "GITHUB_REDIRECT_URI"
	EnvPublicURL          = "SATQUEST_PUBLIC_URL"
	EnvDatabasePath       = "SATQUEST_DATABASE_PATH"
	EnvAddr               = "SATQUEST_ADDR"
	EnvPort               = "SATQUEST_PORT"
	EnvLogLevel           = "SATQUEST_LOG_LEVEL"
)

// DefaultScopes are the GitHub OAuth scopes needed to list repositories and
// register webhooks on them.
var DefaultScopes = []string{"repo", "admin:repo_hook", "read:org"}

// Config is the complete server configuration.
type Config struct {
	Addr         string        `yaml:"addr"`
	Port         int           `yaml:"port"`
	PublicURL    string        `yaml:"publicURL"`
	DatabasePath string        `yaml:"databasePath"`
	LogLevel     string        `yaml:"logLevel"`
	Webhook      WebhookConfig `yaml:"webhook"`
	GitHub       GitHubConfig  `yaml:"github"`
	Session      SessionConfig `yaml:"session"`
}

// WebhookConfig configures the GitHub webhook endpoint.
type WebhookConfig struct {
	// Secret is the shared secret deliveries are signed with. When empty every
	// delivery is rejected.
	Secret string `yaml:"secret"`
	// RateLimit is the number of deliveries accepted per repository per
	// second. Zero disables rate limiting.
	RateLimit int `yaml:"rateLimit"`
	// SurfaceStorageErrors answers 500 instead of 200 when a delivery could
	// not be stored, so that GitHub redelivers it.
	SurfaceStorageErrors bool `yaml:"surfaceStorageErrors"`
}

// GitHubConfig holds the OAuth application credentials.
type GitHubConfig struct {
	ClientID     string   `yaml:"clientID"`
	ClientSecret string   `yaml:"clientSecret"`
	RedirectURI  string   `yaml:"redirectURI"`
	Scopes       []string `yaml:"scopes"`
}

// SessionConfig configures login sessions.
type SessionConfig struct {
	TTL          time.Duration `yaml:"ttl"`
	CookieSecure bool          `yaml:"cookieSecure"`
	// CleanupInterval is how often expired sessions are purged. Zero
	// disables the purge.
	CleanupInterval time.Duration `yaml:"cleanupInterval"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Addr:         "",
		Port:         8080,
		PublicURL:    "http://localhost:8080",
		DatabasePath: "satquest.db",
		LogLevel:     "info",
		GitHub: GitHubConfig{
			RedirectURI: "http://localhost:8080/api/auth/github/callback",
			Scopes:      append([]string(nil), DefaultScopes...),
		},
		Session: SessionConfig{
			TTL:             30 * 24 * time.Hour,
			CleanupInterval: time.Hour,
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		EnvWebhookSecret:      &c.Webhook.Secret,
		EnvGitHubClientID:     &c.GitHub.ClientID,
		EnvGitHubClientSecret: &c.GitHub.ClientSecret,
		EnvGitHubRedirectURI:  &c.GitHub.RedirectURI,
		EnvPublicURL:          &c.PublicURL,
		EnvDatabasePath:       &c.DatabasePath,
		EnvAddr:               &c.Addr,
		EnvLogLevel:           &c.LogLevel,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		c.Port = port
	}
	return nil
}

// Validate reports configuration errors that would prevent the server from
// starting.
func (c *Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("databasePath is required"))
	}
	if c.Webhook.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("webhook.rateLimit must not be negative, got %d", c.Webhook.RateLimit))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, fmt.Errorf("session.ttl must be positive, got %s", c.Session.TTL))
	}
	if c.Session.CleanupInterval < 0 {
		errs = append(errs, fmt.Errorf("session.cleanupInterval must not be negative, got %s", c.Session.CleanupInterval))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "error":
	default:
		errs = append(errs, fmt.Errorf("logLevel must be one of debug, info, error, got %q", c.LogLevel))
	}

	return errors.Join(errs...)
}

// WebhookURL is the URL GitHub should deliver events to.
func (c *Config) WebhookURL() string {
	return strings.TrimRight(c.PublicURL, "/") + "/api/webhooks/github"
}

// OAuthConfigured reports whether GitHub OAuth credentials are present.
func (c *Config) OAuthConfigured() bool {
	return c.GitHub.ClientID != "" && c.GitHub.ClientSecret != ""
}
