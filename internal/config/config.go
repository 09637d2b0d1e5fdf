package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"ssiserve/internal/paths"
)

// SupportedConfigVersions lists config schema versions this build understands
var SupportedConfigVersions = []int{1}

// ConfigPathEnvVar points at an explicit config file, bypassing the search path
const ConfigPathEnvVar = "SSISERVE_CONFIG"

// Config represents the complete ssiserve configuration
type Config struct {
	Version int `json:"version" mapstructure:"version" toml:"version" yaml:"version"`

	Server  ServerConfig  `json:"server" mapstructure:"server" toml:"server" yaml:"server"`
	Include IncludeConfig `json:"include" mapstructure:"include" toml:"include" yaml:"include"`
	Render  RenderConfig  `json:"render" mapstructure:"render" toml:"render" yaml:"render"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging" toml:"logging" yaml:"logging"`
}

// ServerConfig contains listener and document root settings
type ServerConfig struct {
	Host                string `json:"host" mapstructure:"host" toml:"host" yaml:"host"`
	Port                int    `json:"port" mapstructure:"port" toml:"port" yaml:"port"`
	Root                string `json:"root" mapstructure:"root" toml:"root" yaml:"root"`
	ReadTimeoutSeconds  int    `json:"readTimeoutSeconds" mapstructure:"readTimeoutSeconds" toml:"readTimeoutSeconds" yaml:"readTimeoutSeconds"`
	WriteTimeoutSeconds int    `json:"writeTimeoutSeconds" mapstructure:"writeTimeoutSeconds" toml:"writeTimeoutSeconds" yaml:"writeTimeoutSeconds"`
	IdleTimeoutSeconds  int    `json:"idleTimeoutSeconds" mapstructure:"idleTimeoutSeconds" toml:"idleTimeoutSeconds" yaml:"idleTimeoutSeconds"`
	Compress            bool   `json:"compress" mapstructure:"compress" toml:"compress" yaml:"compress"`
}

// IncludeConfig controls path resolution and include expansion
type IncludeConfig struct {
	MaxDepth            int      `json:"maxDepth" mapstructure:"maxDepth" toml:"maxDepth" yaml:"maxDepth"`
	IndexFiles          []string `json:"indexFiles" mapstructure:"indexFiles" toml:"indexFiles" yaml:"indexFiles"`
	ForbiddenExtensions []string `json:"forbiddenExtensions" mapstructure:"forbiddenExtensions" toml:"forbiddenExtensions" yaml:"forbiddenExtensions"`
	RenderExtensions    []string `json:"renderExtensions" mapstructure:"renderExtensions" toml:"renderExtensions" yaml:"renderExtensions"`
}

// RenderConfig contains render cache settings
type RenderConfig struct {
	// TempDir holds per-request render files. Empty means os.TempDir().
	TempDir string `json:"tempDir" mapstructure:"tempDir" toml:"tempDir" yaml:"tempDir"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `json:"level" mapstructure:"level" toml:"level" yaml:"level"`
	File       string `json:"file" mapstructure:"file" toml:"file" yaml:"file"`
	MaxSize    string `json:"maxSize" mapstructure:"maxSize" toml:"maxSize" yaml:"maxSize"`
	MaxBackups int    `json:"maxBackups" mapstructure:"maxBackups" toml:"maxBackups" yaml:"maxBackups"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Server: ServerConfig{
			Host:                "",
			Port:                8000,
			Root:                ".",
			ReadTimeoutSeconds:  15,
			WriteTimeoutSeconds: 30,
			IdleTimeoutSeconds:  60,
			Compress:            false,
		},
		Include: IncludeConfig{
			MaxDepth:            16,
			IndexFiles:          []string{"index.html", "index.htm", "index.shtml"},
			ForbiddenExtensions: []string{".py", ".pyc", ".cgi", ".pl", ".php"},
			RenderExtensions:    []string{".html", ".shtml"},
		},
		Render: RenderConfig{
			TempDir: "",
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxBackups: 3,
		},
	}
}

// LoadResult describes where a configuration came from
type LoadResult struct {
	Config       *Config
	ConfigPath   string
	UsedDefaults bool
	EnvOverrides []EnvOverride
}

// LoadConfig loads configuration for a document root, applying env overrides
func LoadConfig(root string) (*Config, error) {
	result, err := LoadConfigWithDetails(root)
	if err != nil {
		return nil, err
	}
	return result.Config, nil
}

// LoadConfigWithDetails loads configuration and reports its source.
// Search order: $SSISERVE_CONFIG, <root>/.ssiserve/config.*, <home>/config.*.
// Any format viper understands (json, toml, yaml) is accepted.
func LoadConfigWithDetails(root string) (*LoadResult, error) {
	v := viper.New()

	defaults := map[string]interface{}{}
	data, err := json.Marshal(DefaultConfig())
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &defaults); err != nil {
		return nil, err
	}
	setDefaults(v, "", defaults)

	if explicit := os.Getenv(ConfigPathEnvVar); explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(paths.GetLocalDir(root))
		if home, err := paths.GetHome(); err == nil {
			v.AddConfigPath(home)
		}
	}

	result := &LoadResult{}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		result.UsedDefaults = true
	} else {
		result.ConfigPath = v.ConfigFileUsed()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	result.EnvOverrides = applyEnvOverrides(&cfg)
	result.Config = &cfg
	return result, nil
}

// setDefaults registers every leaf of a nested map as a viper default so
// that a partial config file keeps the remaining defaults.
func setDefaults(v *viper.Viper, prefix string, m map[string]interface{}) {
	for k, val := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := val.(map[string]interface{}); ok {
			setDefaults(v, key, nested)
			continue
		}
		v.SetDefault(key, val)
	}
}

// Save writes the configuration to <root>/.ssiserve/config.json
func (c *Config) Save(root string) error {
	dir := paths.GetLocalDir(root)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	supported := false
	for _, v := range SupportedConfigVersions {
		if c.Version == v {
			supported = true
			break
		}
	}
	if !supported {
		return &ConfigError{Field: "version", Message: fmt.Sprintf("unsupported config version %d", c.Version)}
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return &ConfigError{Field: "server.port", Message: fmt.Sprintf("port %d out of range", c.Server.Port)}
	}
	if c.Include.MaxDepth < 1 {
		return &ConfigError{Field: "include.maxDepth", Message: "must be at least 1"}
	}
	for _, ext := range append(append([]string{}, c.Include.ForbiddenExtensions...), c.Include.RenderExtensions...) {
		if !strings.HasPrefix(ext, ".") {
			return &ConfigError{Field: "include", Message: fmt.Sprintf("extension %q must start with '.'", ext)}
		}
	}
	if len(c.Include.RenderExtensions) == 0 {
		return &ConfigError{Field: "include.renderExtensions", Message: "at least one extension is required"}
	}

	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
