// Package config provides YAML configuration parsing for typecast.
//
// This package enables running typecast as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	port: 5000
//	poll_interval: 2s
//
//	source:
//	  url: ${TYPECAST_SOURCE_URL:-http://localhost:5001/latest_response}
//	  timeout: 5s
//	  format: json
//	  field: response
//
//	animation:
//	  reveal_interval: 100ms
//	  fade_duration: 10s
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jpalmerr/typecast/internal/display"
)

// minPollInterval is the minimum allowed polling interval for configs.
// This prevents accidental hammering of the source.
const minPollInterval = 1 * time.Second

const (
	defaultPort         = 8080
	defaultPollInterval = 2 * time.Second
	defaultField        = "response"
)

// Response formats understood by [SourceConfig.Format].
const (
	FormatJSON  = "json"
	FormatText  = "text"
	FormatRegex = "regex"
)

// Config is the root configuration structure for typecast.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is the overlay page title. Defaults to "AI Overlay" if not set.
	Title string `yaml:"title"`

	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port"`

	// PollInterval is the time between polls of the source.
	// Accepts duration strings like "2s", "1m", "500ms". Defaults to 2s.
	PollInterval Duration `yaml:"poll_interval"`

	// PollOnStart polls once immediately instead of waiting one interval.
	PollOnStart bool `yaml:"poll_on_start"`

	// Placeholder is shown before the first value arrives. Nil means the
	// SDK default; an explicit empty string shows nothing.
	Placeholder *string `yaml:"placeholder"`

	// Source is the endpoint publishing the latest response.
	Source SourceConfig `yaml:"source"`

	// Animation tunes the reveal and fade.
	Animation AnimationConfig `yaml:"animation"`

	// Overlay controls the HTTP overlay server.
	Overlay OverlayConfig `yaml:"overlay"`

	// Terminal controls the terminal renderer used by the CLI.
	Terminal TerminalConfig `yaml:"terminal"`
}

// SourceConfig defines the polled endpoint.
type SourceConfig struct {
	// URL is the endpoint URL.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	URL string `yaml:"url"`

	// Method is the HTTP method (GET or POST). Defaults to GET.
	Method string `yaml:"method"`

	// Timeout is the request timeout. Defaults to 10s.
	Timeout Duration `yaml:"timeout"`

	// Headers are custom HTTP headers sent with each request.
	// Values support environment variable substitution.
	Headers map[string]string `yaml:"headers"`

	// Format is how the body is read: "json" (default), "text" or "regex".
	Format string `yaml:"format"`

	// Field is the dot path of the text for format json.
	// Defaults to "response".
	Field string `yaml:"field"`

	// Pattern is the regular expression for format regex. Its first
	// capture group is the text.
	Pattern string `yaml:"pattern"`
}

// AnimationConfig defines the reveal and fade timing.
type AnimationConfig struct {
	// RevealInterval is the delay between revealed characters. Defaults to 100ms.
	RevealInterval Duration `yaml:"reveal_interval"`

	// FadeDuration is the length of the fade-out. Defaults to 10s.
	FadeDuration Duration `yaml:"fade_duration"`

	// FadeTick is the interval between opacity updates. Defaults to 16ms.
	FadeTick Duration `yaml:"fade_tick"`
}

// OverlayConfig controls the HTTP overlay server.
type OverlayConfig struct {
	// Enabled defaults to true when omitted.
	Enabled *bool `yaml:"enabled"`
}

// TerminalConfig controls the terminal renderer.
type TerminalConfig struct {
	Enabled bool `yaml:"enabled"`
}

// OverlayEnabled reports whether the HTTP overlay server should run.
func (c *Config) OverlayEnabled() bool {
	return c.Overlay.Enabled == nil || *c.Overlay.Enabled
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// already have an error, skip processing
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		// submatches[2] is ":-..." (non-empty if default syntax was used)
		// submatches[3] is the actual default value (may be empty for ${VAR:-})
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the source URL and headers are expanded.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Defaults are applied before validation, see [Default].
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Source.expandEnv(); err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns an unvalidated configuration with every default applied
// and no source URL. The CLI uses it when only --url is given.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.PollInterval == 0 {
		c.PollInterval = Duration(defaultPollInterval)
	}
	if c.Source.Format == "" {
		c.Source.Format = FormatJSON
	}
	if c.Source.Format == FormatJSON && c.Source.Field == "" {
		c.Source.Field = defaultField
	}
	if c.Animation.RevealInterval == 0 {
		c.Animation.RevealInterval = Duration(display.DefaultRevealInterval)
	}
	if c.Animation.FadeDuration == 0 {
		c.Animation.FadeDuration = Duration(display.DefaultFadeDuration)
	}
	if c.Animation.FadeTick == 0 {
		c.Animation.FadeTick = Duration(display.DefaultFadeTick)
	}
}

// Validate checks every field without modifying the Config. It is called by
// [Parse]; call it again after changing a Config. Environment variables are
// expanded only once, by [Parse].
func (c *Config) Validate() error {
	if c.PollInterval.Duration() < minPollInterval {
		return fmt.Errorf("poll_interval must be at least %s, got %s", minPollInterval, c.PollInterval.Duration())
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if err := c.Source.validate(); err != nil {
		return fmt.Errorf("source: %w", err)
	}

	if err := c.Animation.validate(); err != nil {
		return fmt.Errorf("animation: %w", err)
	}

	if !c.OverlayEnabled() && !c.Terminal.Enabled {
		return errors.New("at least one of overlay or terminal must be enabled")
	}

	return nil
}

// expandEnv substitutes environment variables in the URL and header values.
func (s *SourceConfig) expandEnv() error {
	expanded, err := expandEnvVars(s.URL)
	if err != nil {
		return fmt.Errorf("url: %w", err)
	}
	s.URL = expanded

	for k, v := range s.Headers {
		expanded, err := expandEnvVars(v)
		if err != nil {
			return fmt.Errorf("headers[%s]: %w", k, err)
		}
		s.Headers[k] = expanded
	}
	return nil
}

func (s *SourceConfig) validate() error {
	if s.URL == "" {
		return errors.New("url is required")
	}

	parsedURL, err := url.Parse(s.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if parsedURL.Scheme == "" {
		return errors.New("url must have a scheme (http:// or https://)")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return errors.New("url must have a host")
	}

	if s.Method != "" && s.Method != "GET" && s.Method != "POST" {
		return fmt.Errorf("method must be GET or POST, got %q", s.Method)
	}

	if s.Timeout != 0 {
		if s.Timeout.Duration() < 0 {
			return fmt.Errorf("timeout cannot be negative, got %s", s.Timeout.Duration())
		}
		if s.Timeout.Duration() < time.Second {
			return fmt.Errorf("timeout must be at least 1s if specified, got %s", s.Timeout.Duration())
		}
	}

	switch s.Format {
	case FormatJSON:
		if s.Field == "" {
			return errors.New("format 'json' requires a field")
		}
	case FormatText:
		// whole body
	case FormatRegex:
		if s.Pattern == "" {
			return errors.New("format 'regex' requires a pattern")
		}
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern: %w", err)
		}
		if re.NumSubexp() < 1 {
			return fmt.Errorf("pattern %q needs a capture group", s.Pattern)
		}
	default:
		return fmt.Errorf("unknown format %q (expected 'json', 'text' or 'regex')", s.Format)
	}

	return nil
}

func (a AnimationConfig) validate() error {
	if a.RevealInterval.Duration() < time.Millisecond {
		return fmt.Errorf("reveal_interval must be at least 1ms, got %s", a.RevealInterval.Duration())
	}
	timing := display.Timing{
		RevealInterval: a.RevealInterval.Duration(),
		FadeDuration:   a.FadeDuration.Duration(),
		FadeTick:       a.FadeTick.Duration(),
	}
	return timing.Validate()
}
