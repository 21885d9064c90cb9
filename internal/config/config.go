// Package config loads and validates the server configuration from the
// environment once, at startup.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     int    `env:"PORT, default=4444"`
	Database string `env:"DATABASE, required"`

	CookieHashKey  string `env:"COOKIE_HASH_KEY, required"`
	CookieBlockKey string `env:"COOKIE_BLOCK_KEY"`
	HTTPSCookies   bool   `env:"HTTPS_COOKIES, default=false"`
	CORSOrigin     string `env:"CORS_ORIGIN"`

	// Which format to use for logging: either text or json
	LoggerFormat string `env:"LOGGER_FORMAT, default=text"`

	// Optional third party snippets; left out of pages when empty
	AnalyticsKey  string `env:"ANALYTICS_KEY"`
	ShareUsername string `env:"SHARE_USERNAME"`

	MenuFile      string        `env:"MENU_FILE"`
	CacheTTL      time.Duration `env:"CACHE_TTL, default=1h"`
	CaptchaLength int           `env:"CAPTCHA_LENGTH, default=6"`

	DebugEndpoints bool `env:"DEBUG_ENDPOINTS, default=false"`
}

// Error reports configuration that can't be served with. It only ever comes
// out of [Load].
type Error struct {
	Problems []string
}

func (e *Error) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

// Load reads the configuration through l, or the process environment when l
// is nil, and validates it.
func Load(ctx context.Context, l envconfig.Lookuper) (Config, error) {
	if l == nil {
		l = envconfig.OsLookuper()
	}

	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return Config{}, &Error{Problems: []string{err.Error()}}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the values envconfig can't check by itself.
func (c Config) Validate() error {
	var problems []string

	if n := len(c.CookieHashKey); n != 32 && n != 64 {
		problems = append(problems, fmt.Sprintf("COOKIE_HASH_KEY must be 32 or 64 bytes, got %d", n))
	}
	switch len(c.CookieBlockKey) {
	case 0, 16, 24, 32:
	default:
		problems = append(problems, fmt.Sprintf("COOKIE_BLOCK_KEY must be 16, 24 or 32 bytes, got %d", len(c.CookieBlockKey)))
	}
	if c.LoggerFormat != "text" && c.LoggerFormat != "json" {
		problems = append(problems, fmt.Sprintf("LOGGER_FORMAT must be text or json, got %q", c.LoggerFormat))
	}
	if c.Port <= 0 || c.Port > 65535 {
		problems = append(problems, fmt.Sprintf("PORT out of range: %d", c.Port))
	}
	if c.CaptchaLength < 4 || c.CaptchaLength > 10 {
		problems = append(problems, fmt.Sprintf("CAPTCHA_LENGTH must be between 4 and 10, got %d", c.CaptchaLength))
	}
	if c.CacheTTL <= 0 {
		problems = append(problems, "CACHE_TTL must be positive")
	}

	if len(problems) > 0 {
		return &Error{Problems: problems}
	}

	return nil
}
