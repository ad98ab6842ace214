package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/longregen/voicedemo/internal/domain/models"
)

const DefaultDemoName = "default"

// Config holds all configuration for voicedemo
type Config struct {
	LiveKit    LiveKitConfig    `json:"livekit"`
	Server     ServerConfig     `json:"server"`
	Database   DatabaseConfig   `json:"database"`
	Connection ConnectionConfig `json:"connection"`
	Demos      []DemoConfig     `json:"demos"`
	Tracing    bool             `json:"tracing"`
	LogLevel   string           `json:"log_level"`
}

// LiveKitConfig holds LiveKit server configuration. Secrets are optional at load
// time; a bootstrap without them fails with a configuration error.
type LiveKitConfig struct {
	URL          string `json:"url"`           // WebSocket URL (e.g., wss://project.livekit.cloud)
	APIKey       string `json:"api_key"`       // LiveKit API key
	APISecret    string `json:"api_secret"`    // LiveKit API secret
	EmptyTimeout int    `json:"empty_timeout"` // Seconds a registered room survives without participants
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host        string   `json:"host"`
	Port        int      `json:"port"`
	CORSOrigins []string `json:"cors_origins"` // Allowed CORS origins
}

// DatabaseConfig holds the optional session ledger connection
type DatabaseConfig struct {
	PostgresURL string `json:"postgres_url"`
}

// ConnectionConfig holds defaults applied to every demo
type ConnectionConfig struct {
	TokenTTL       Duration            `json:"token_ttl"`
	DefaultDemo    string              `json:"default_demo"`
	AgentName      string              `json:"agent_name"`
	DispatchMode   models.DispatchMode `json:"dispatch_mode"`
	RoomPrefix     string              `json:"room_prefix"`
	IdentityPrefix string              `json:"identity_prefix"`
}

// DemoConfig describes one demo front end. Empty fields inherit from
// ConnectionConfig and LiveKitConfig.
type DemoConfig struct {
	Name           string              `json:"name"`
	Title          string              `json:"title"`
	AgentName      string              `json:"agent_name,omitempty"`
	DispatchMode   models.DispatchMode `json:"dispatch_mode,omitempty"`
	RoomPrefix     string              `json:"room_prefix,omitempty"`
	IdentityPrefix string              `json:"identity_prefix,omitempty"`
	EnvPrefix      string              `json:"env_prefix,omitempty"` // e.g. DAY4 reads DAY4_LIVEKIT_URL
	LiveKit        LiveKitConfig       `json:"livekit"`
}

// Duration is a time.Duration that reads "15m" style strings or plain seconds from JSON.
type Duration time.Duration

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := parseDuration(s)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
		return nil
	}

	var seconds int64
	if err := json.Unmarshal(data, &seconds); err != nil {
		return fmt.Errorf("duration must be a string like \"15m\" or a number of seconds: %w", err)
	}
	*d = Duration(time.Duration(seconds) * time.Second)
	return nil
}

// parseDuration accepts Go duration syntax or a bare number of seconds.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if seconds, err := strconv.Atoi(s); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	return time.ParseDuration(s)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		LiveKit: LiveKitConfig{
			EmptyTimeout: 300,
		},
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			CORSOrigins: []string{"http://localhost:3000"}, // Default development origin
		},
		Connection: ConnectionConfig{
			TokenTTL:       Duration(15 * time.Minute),
			DispatchMode:   models.DispatchModeAPI,
			RoomPrefix:     "voice_assistant_room",
			IdentityPrefix: "voice_assistant_user",
		},
		Demos: []DemoConfig{
			{Name: DefaultDemoName, Title: "Voice Assistant"},
		},
		LogLevel: "info",
	}
}

// GetEnvWithFallback returns the primary variable, then the fallback, then the default.
func GetEnvWithFallback(primary, fallback, defaultValue string) string {
	if v := os.Getenv(primary); v != "" {
		return v
	}
	if fallback != "" {
		if v := os.Getenv(fallback); v != "" {
			return v
		}
	}
	return defaultValue
}

// envString loads a string environment variable into the target pointer if set
func envString(key string, target *string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

// envStringFallback loads primary, then fallback, into the target pointer if either is set
func envStringFallback(primary, fallback string, target *string) {
	*target = GetEnvWithFallback(primary, fallback, *target)
}

// envInt loads an integer environment variable into the target pointer if set and valid
func envInt(key string, target *int) {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*target = i
		}
	}
}

// envIntFallback is envInt with a fallback variable name
func envIntFallback(primary, fallback string, target *int) {
	if v := GetEnvWithFallback(primary, fallback, ""); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*target = i
		}
	}
}

// envBool loads a boolean environment variable into the target pointer if set and valid
func envBool(key string, target *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*target = b
		}
	}
}

// envDuration loads a duration environment variable ("15m" or seconds) if set and valid
func envDuration(key string, target *Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := parseDuration(v); err == nil {
			*target = Duration(d)
		}
	}
}

// envStringSlice loads a comma-separated environment variable into a string slice
func envStringSlice(key string, target *[]string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			*target = result
		}
	}
}

// Load loads configuration from the config file and environment variables
func Load() (*Config, error) {
	cfg := DefaultConfig()

	configPath := getConfigPath()
	if data, err := os.ReadFile(configPath); err == nil {
		// json.Unmarshal decodes array elements over the existing ones, so a
		// file's demo list must not land on top of the built-in default.
		defaults := cfg.Demos
		cfg.Demos = nil
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
		if len(cfg.Demos) == 0 {
			cfg.Demos = defaults
		}
	}

	// LiveKit credentials: the prefixed name wins over the plain one the LiveKit CLI uses
	envStringFallback("VOICEDEMO_LIVEKIT_URL", "LIVEKIT_URL", &cfg.LiveKit.URL)
	envStringFallback("VOICEDEMO_LIVEKIT_API_KEY", "LIVEKIT_API_KEY", &cfg.LiveKit.APIKey)
	envStringFallback("VOICEDEMO_LIVEKIT_API_SECRET", "LIVEKIT_API_SECRET", &cfg.LiveKit.APISecret)
	envInt("VOICEDEMO_LIVEKIT_EMPTY_TIMEOUT", &cfg.LiveKit.EmptyTimeout)

	envStringFallback("VOICEDEMO_SERVER_HOST", "HOST", &cfg.Server.Host)
	envIntFallback("VOICEDEMO_SERVER_PORT", "PORT", &cfg.Server.Port)
	envStringSlice("VOICEDEMO_CORS_ORIGINS", &cfg.Server.CORSOrigins)

	envStringFallback("VOICEDEMO_POSTGRES_URL", "DATABASE_URL", &cfg.Database.PostgresURL)

	envDuration("VOICEDEMO_TOKEN_TTL", &cfg.Connection.TokenTTL)
	envString("VOICEDEMO_DEFAULT_DEMO", &cfg.Connection.DefaultDemo)
	envString("VOICEDEMO_AGENT_NAME", &cfg.Connection.AgentName)
	if v := os.Getenv("VOICEDEMO_DISPATCH_MODE"); v != "" {
		cfg.Connection.DispatchMode = models.DispatchMode(strings.ToLower(strings.TrimSpace(v)))
	}
	envString("VOICEDEMO_ROOM_PREFIX", &cfg.Connection.RoomPrefix)
	envString("VOICEDEMO_IDENTITY_PREFIX", &cfg.Connection.IdentityPrefix)

	envBool("VOICEDEMO_TRACING", &cfg.Tracing)
	envString("VOICEDEMO_LOG_LEVEL", &cfg.LogLevel)

	// Demos are primarily configured via config file, but can be augmented via env
	if demosJSON := os.Getenv("VOICEDEMO_DEMOS"); demosJSON != "" {
		var envDemos []DemoConfig
		if err := json.Unmarshal([]byte(demosJSON), &envDemos); err != nil {
			return nil, fmt.Errorf("failed to parse VOICEDEMO_DEMOS: %w", err)
		}
		cfg.Demos = mergeDemos(cfg.Demos, envDemos)
	}

	// Per-demo credential overrides
	for i := range cfg.Demos {
		if prefix := cfg.Demos[i].envPrefix(); prefix != "" {
			envString(prefix+"_LIVEKIT_URL", &cfg.Demos[i].LiveKit.URL)
			envString(prefix+"_LIVEKIT_API_KEY", &cfg.Demos[i].LiveKit.APIKey)
			envString(prefix+"_LIVEKIT_API_SECRET", &cfg.Demos[i].LiveKit.APISecret)
			envString(prefix+"_AGENT_NAME", &cfg.Demos[i].AgentName)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// mergeDemos appends extra demos, replacing any existing demo of the same name.
func mergeDemos(base, extra []DemoConfig) []DemoConfig {
	merged := make([]DemoConfig, 0, len(base)+len(extra))
	merged = append(merged, base...)
	for _, demo := range extra {
		replaced := false
		for i := range merged {
			if merged[i].Name == demo.Name {
				merged[i] = demo
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, demo)
		}
	}
	return merged
}

func (d DemoConfig) envPrefix() string {
	return strings.ToUpper(strings.TrimSuffix(strings.TrimSpace(d.EnvPrefix), "_"))
}

// IsLiveKitConfigured returns true if the shared LiveKit credentials are complete
func (c *Config) IsLiveKitConfigured() bool {
	return c.LiveKit.URL != "" && c.LiveKit.APIKey != "" && c.LiveKit.APISecret != ""
}

// IsDatabaseConfigured returns true if the session ledger is enabled
func (c *Config) IsDatabaseConfigured() bool {
	return c.Database.PostgresURL != ""
}

// Demo resolves a demo by name, applying connection defaults and shared credentials.
func (c *Config) Demo(name string) (models.Demo, bool) {
	for _, d := range c.Demos {
		if d.Name == name {
			return c.resolve(d), true
		}
	}
	return models.Demo{}, false
}

// DefaultDemo resolves the demo served by /api/connection-details: the named
// default if set, otherwise the first configured demo.
func (c *Config) DefaultDemo() (models.Demo, bool) {
	if c.Connection.DefaultDemo != "" {
		return c.Demo(c.Connection.DefaultDemo)
	}
	if len(c.Demos) == 0 {
		return models.Demo{}, false
	}
	return c.resolve(c.Demos[0]), true
}

// ResolvedDemos returns every configured demo in declaration order.
func (c *Config) ResolvedDemos() []models.Demo {
	demos := make([]models.Demo, 0, len(c.Demos))
	for _, d := range c.Demos {
		demos = append(demos, c.resolve(d))
	}
	return demos
}

func (c *Config) resolve(d DemoConfig) models.Demo {
	demo := models.Demo{
		Name:           d.Name,
		Title:          firstNonEmpty(d.Title, d.Name),
		AgentName:      firstNonEmpty(d.AgentName, c.Connection.AgentName),
		DispatchMode:   models.DispatchMode(firstNonEmpty(string(d.DispatchMode), string(c.Connection.DispatchMode), string(models.DispatchModeAPI))),
		RoomPrefix:     firstNonEmpty(d.RoomPrefix, c.Connection.RoomPrefix),
		IdentityPrefix: firstNonEmpty(d.IdentityPrefix, c.Connection.IdentityPrefix),
		EnvPrefix:      d.envPrefix(),
		Credentials: models.Credentials{
			URL:       firstNonEmpty(d.LiveKit.URL, c.LiveKit.URL),
			APIKey:    firstNonEmpty(d.LiveKit.APIKey, c.LiveKit.APIKey),
			APISecret: firstNonEmpty(d.LiveKit.APISecret, c.LiveKit.APISecret),
		},
	}
	if demo.EnvPrefix != "" {
		demo.Credentials.URLVar = demo.EnvPrefix + "_LIVEKIT_URL"
		demo.Credentials.APIKeyVar = demo.EnvPrefix + "_LIVEKIT_API_KEY"
		demo.Credentials.APISecretVar = demo.EnvPrefix + "_LIVEKIT_API_SECRET"
	}
	return demo
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// isValidURL validates that a URL has proper format
func isValidURL(urlStr string) bool {
	u, err := url.Parse(urlStr)
	return err == nil && u.Scheme != "" && u.Host != ""
}

var demoNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}

// Validate checks that the configuration has valid values
func (c *Config) Validate() error {
	var errs []string

	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, "server port must be between 1 and 65535")
	}

	// LiveKit validation (if set)
	if c.LiveKit.URL != "" && !isValidURL(c.LiveKit.URL) {
		errs = append(errs, "LiveKit URL must be a valid URL")
	}
	if c.LiveKit.EmptyTimeout < 0 {
		errs = append(errs, "LiveKit empty timeout must not be negative")
	}

	// Database validation (optional but validate if set)
	if c.Database.PostgresURL != "" && !isValidURL(c.Database.PostgresURL) {
		errs = append(errs, "PostgreSQL URL must be a valid URL")
	}

	// Connection validation
	if c.Connection.TokenTTL.Std() <= 0 {
		errs = append(errs, "token TTL must be positive")
	} else if c.Connection.TokenTTL.Std() > 24*time.Hour {
		errs = append(errs, "token TTL must not exceed 24h")
	}
	if c.Connection.DispatchMode != "" && !c.Connection.DispatchMode.IsValid() {
		errs = append(errs, fmt.Sprintf("dispatch mode must be 'api' or 'token', got %q", c.Connection.DispatchMode))
	}

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("log level must be one of debug, info, warn, error, got %q", c.LogLevel))
	}

	// Demo validation
	if len(c.Demos) == 0 {
		errs = append(errs, "at least one demo is required")
	}
	seen := make(map[string]bool, len(c.Demos))
	for i, demo := range c.Demos {
		if demo.Name == "" {
			errs = append(errs, fmt.Sprintf("demo %d: name is required", i))
			continue
		}
		if !demoNamePattern.MatchString(demo.Name) {
			errs = append(errs, fmt.Sprintf("demo %s: name must be lowercase letters, digits, '-' or '_'", demo.Name))
		}
		if seen[demo.Name] {
			errs = append(errs, fmt.Sprintf("demo %s: duplicate name", demo.Name))
		}
		seen[demo.Name] = true
		if demo.DispatchMode != "" && !demo.DispatchMode.IsValid() {
			errs = append(errs, fmt.Sprintf("demo %s: dispatch mode must be 'api' or 'token'", demo.Name))
		}
		if demo.LiveKit.URL != "" && !isValidURL(demo.LiveKit.URL) {
			errs = append(errs, fmt.Sprintf("demo %s: LiveKit URL must be a valid URL", demo.Name))
		}
	}
	if c.Connection.DefaultDemo != "" && !seen[c.Connection.DefaultDemo] {
		errs = append(errs, fmt.Sprintf("default demo %q is not defined", c.Connection.DefaultDemo))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// getConfigPath returns the path to the config file
func getConfigPath() string {
	if path := os.Getenv("VOICEDEMO_CONFIG"); path != "" {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "config.json"
	}

	return filepath.Join(homeDir, ".config", "voicedemo", "config.json")
}
