package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	CONFIG_PATH = "config.json"
	ENV_PREFIX  = "MCPM"
	APP_DIR     = "mcp-manager"
)

type Config struct {
	LogLevel          string            `mapstructure:"log_level"`           // debug|info|warn|error
	ConfigDirPath     string            `mapstructure:"-"`                   // directory holding config.json
	Bind              string            `mapstructure:"bind"`                // HTTP listen address
	FragmentDir       string            `mapstructure:"fragment_dir"`        // fragment files
	AgentDir          string            `mapstructure:"agent_dir"`           // agent envelopes
	Targets           map[string]string `mapstructure:"targets"`             // target name -> file path
	Auth              *AuthConfig       `mapstructure:"auth"`                // API key auth for /api
	SessionGCInterval time.Duration     `mapstructure:"session_gc_interval"` // how often idle sessions are collected
	SessionTimeout    time.Duration     `mapstructure:"session_timeout"`     // idle time before a session is dropped
}

// DefaultConfigDir is <UserConfigDir>/mcp-manager, or ./.mcp-manager when the
// user config dir cannot be determined.
func DefaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "." + APP_DIR
	}
	return filepath.Join(dir, APP_DIR)
}

// InitConfig loads <cfgDir>/config.json and MCPM_* environment variables on
// top of the defaults. A missing file is not an error.
func InitConfig(cfgDir string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(filepath.Join(cfgDir, CONFIG_PATH))
	v.SetConfigType("json")
	v.SetEnvPrefix(ENV_PREFIX)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log_level", "info")
	v.SetDefault("bind", "127.0.0.1:8765")
	v.SetDefault("fragment_dir", "")
	v.SetDefault("agent_dir", "")
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.api_key", "")
	v.SetDefault("session_gc_interval", "5m")
	v.SetDefault("session_timeout", "30m")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.ConfigDirPath = cfgDir
	cfg.Default()
	return cfg, nil
}

// Default fills every unset field.
func (c *Config) Default() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Bind == "" {
		c.Bind = "127.0.0.1:8765"
	}
	if c.ConfigDirPath == "" {
		c.ConfigDirPath = DefaultConfigDir()
	}
	if c.FragmentDir == "" {
		c.FragmentDir = filepath.Join(c.ConfigDirPath, "data")
	}
	if c.AgentDir == "" {
		c.AgentDir = filepath.Join(c.FragmentDir, "templates")
	}
	if c.Auth == nil {
		c.Auth = &AuthConfig{}
	}
	if c.SessionGCInterval <= 0 {
		c.SessionGCInterval = 5 * time.Minute
	}
	if c.SessionTimeout <= 0 {
		c.SessionTimeout = 6 * c.SessionGCInterval
	}
	if c.Targets == nil {
		c.Targets = map[string]string{}
	}
	for name, path := range DefaultTargets() {
		if _, ok := c.Targets[name]; !ok {
			c.Targets[name] = path
		}
	}
}

func (c *Config) GetAuthConfig() *AuthConfig {
	if c.Auth == nil {
		c.Auth = &AuthConfig{}
	}
	return c.Auth
}

type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
	ApiKey  string `mapstructure:"api_key" json:"api_key"`
}

func (c *AuthConfig) IsEnabled() bool {
	return c != nil && c.Enabled
}

func (c *AuthConfig) GetApiKey() string {
	return c.ApiKey
}

func (c *Config) GetConfigPath() string {
	return filepath.Join(c.ConfigDirPath, CONFIG_PATH)
}

// SaveConfig writes the effective configuration back to config.json.
func (c *Config) SaveConfig() error {
	file := map[string]any{
		"log_level":           c.LogLevel,
		"bind":                c.Bind,
		"fragment_dir":        c.FragmentDir,
		"agent_dir":           c.AgentDir,
		"targets":             c.Targets,
		"auth":                c.GetAuthConfig(),
		"session_gc_interval": c.SessionGCInterval.String(),
		"session_timeout":     c.SessionTimeout.String(),
	}
	data, err := json.MarshalIndent(file, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(c.ConfigDirPath, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(c.GetConfigPath(), data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
