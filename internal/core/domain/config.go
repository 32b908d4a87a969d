package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Config is the user's shiftsheet configuration.
type Config struct {
	Auth     AuthConfig     `toml:"auth"`
	Graph    GraphConfig    `toml:"graph"`
	Workbook WorkbookConfig `toml:"workbook"`
	Sync     SyncConfig     `toml:"sync"`
}

// AuthConfig selects the app registration and sign-in mode.
type AuthConfig struct {
	Mode         AuthMode `toml:"mode"`
	TenantID     string   `toml:"tenant_id"`
	ClientID     string   `toml:"client_id"`
	ClientSecret string   `toml:"client_secret,omitempty"`
	// RedirectPort is the loopback port for interactive sign-in; 0 picks a free port.
	RedirectPort int      `toml:"redirect_port"`
	Scopes       []string `toml:"scopes,omitempty"`
	// ActsAs is the user ID app-only requests act on behalf of.
	ActsAs string `toml:"acts_as,omitempty"`
}

// GraphConfig tunes the Microsoft Graph client.
type GraphConfig struct {
	BaseURL           string  `toml:"base_url"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	MaxRetries        int     `toml:"max_retries"`
}

// WorkbookConfig locates the spreadsheet.
type WorkbookConfig struct {
	Path string `toml:"path"`
}

// SyncConfig holds reconciliation defaults.
type SyncConfig struct {
	UnknownUserPolicy UnknownUserPolicy `toml:"unknown_user_policy"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Auth: AuthConfig{
			Mode:     AuthModeInteractive,
			TenantID: "organizations",
		},
		Graph: GraphConfig{
			BaseURL:           "https://graph.microsoft.com/v1.0",
			RequestsPerSecond: 4,
			Burst:             8,
			TimeoutSeconds:    60,
			MaxRetries:        3,
		},
		Workbook: WorkbookConfig{Path: "shiftsheet.xlsx"},
		Sync:     SyncConfig{UnknownUserPolicy: UnknownUserSkip},
	}
}

// Validate checks the configuration is usable for signing in.
func (c *Config) Validate() error {
	if !c.Auth.Mode.Valid() {
		return fmt.Errorf("%w: auth.mode %q", ErrInvalidInput, c.Auth.Mode)
	}
	if c.Auth.ClientID == "" {
		return fmt.Errorf("%w: auth.client_id is not set", ErrInvalidInput)
	}
	if c.Auth.Mode == AuthModeClientSecret {
		if c.Auth.ClientSecret == "" {
			return fmt.Errorf("%w: auth.client_secret is required for client_secret mode", ErrInvalidInput)
		}
		if c.Auth.ActsAs == "" {
			return fmt.Errorf("%w: auth.acts_as is required for client_secret mode", ErrInvalidInput)
		}
		if c.Auth.TenantID == "" || c.Auth.TenantID == "organizations" || c.Auth.TenantID == "common" {
			return fmt.Errorf("%w: client_secret mode needs a specific auth.tenant_id", ErrInvalidInput)
		}
	}
	if c.Auth.RedirectPort < 0 || c.Auth.RedirectPort > 65535 {
		return fmt.Errorf("%w: auth.redirect_port %d", ErrInvalidInput, c.Auth.RedirectPort)
	}
	if !c.Sync.UnknownUserPolicy.Valid() {
		return fmt.Errorf("%w: sync.unknown_user_policy %q", ErrInvalidInput, c.Sync.UnknownUserPolicy)
	}
	return nil
}

type configField struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func intField(ptr func(c *Config) *int) configField {
	return configField{
		get: func(c *Config) string { return strconv.Itoa(*ptr(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			*ptr(c) = n
			return nil
		},
	}
}

func stringField(ptr func(c *Config) *string) configField {
	return configField{
		get: func(c *Config) string { return *ptr(c) },
		set: func(c *Config, v string) error {
			*ptr(c) = v
			return nil
		},
	}
}

var configFields = map[string]configField{
	"auth.mode": {
		get: func(c *Config) string { return string(c.Auth.Mode) },
		set: func(c *Config, v string) error {
			if !AuthMode(v).Valid() {
				return fmt.Errorf("unknown mode %q", v)
			}
			c.Auth.Mode = AuthMode(v)
			return nil
		},
	},
	"auth.tenant_id":     stringField(func(c *Config) *string { return &c.Auth.TenantID }),
	"auth.client_id":     stringField(func(c *Config) *string { return &c.Auth.ClientID }),
	"auth.client_secret": stringField(func(c *Config) *string { return &c.Auth.ClientSecret }),
	"auth.acts_as":       stringField(func(c *Config) *string { return &c.Auth.ActsAs }),
	"auth.redirect_port": intField(func(c *Config) *int { return &c.Auth.RedirectPort }),
	"auth.scopes": {
		get: func(c *Config) string { return strings.Join(c.Auth.Scopes, " ") },
		set: func(c *Config, v string) error {
			c.Auth.Scopes = strings.Fields(strings.ReplaceAll(v, ",", " "))
			return nil
		},
	},
	"graph.base_url": stringField(func(c *Config) *string { return &c.Graph.BaseURL }),
	"graph.requests_per_second": {
		get: func(c *Config) string { return strconv.FormatFloat(c.Graph.RequestsPerSecond, 'f', -1, 64) },
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return err
			}
			c.Graph.RequestsPerSecond = f
			return nil
		},
	},
	"graph.burst":           intField(func(c *Config) *int { return &c.Graph.Burst }),
	"graph.timeout_seconds": intField(func(c *Config) *int { return &c.Graph.TimeoutSeconds }),
	"graph.max_retries":     intField(func(c *Config) *int { return &c.Graph.MaxRetries }),
	"workbook.path":         stringField(func(c *Config) *string { return &c.Workbook.Path }),
	"sync.unknown_user_policy": {
		get: func(c *Config) string { return string(c.Sync.UnknownUserPolicy) },
		set: func(c *Config, v string) error {
			if !UnknownUserPolicy(v).Valid() {
				return fmt.Errorf("unknown policy %q (want skip or fail)", v)
			}
			c.Sync.UnknownUserPolicy = UnknownUserPolicy(v)
			return nil
		},
	},
}

// ConfigKeys returns the settable keys in sorted order.
func ConfigKeys() []string {
	keys := make([]string, 0, len(configFields))
	for k := range configFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value of a dotted key such as "auth.client_id".
func (c *Config) Get(key string) (string, error) {
	f, ok := configFields[key]
	if !ok {
		return "", fmt.Errorf("%w: unknown config key %q", ErrInvalidInput, key)
	}
	return f.get(c), nil
}

// Set assigns a dotted key from its string form.
func (c *Config) Set(key, value string) error {
	f, ok := configFields[key]
	if !ok {
		return fmt.Errorf("%w: unknown config key %q", ErrInvalidInput, key)
	}
	if err := f.set(c, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidInput, key, err)
	}
	return nil
}
