package config

import (
	"os"
	"strconv"
	"strings"
)

// EnvOverride records one environment variable applied on top of the file config
type EnvOverride struct {
	EnvVar    string `json:"envVar"`
	FromValue string `json:"fromValue"`
	Path      string `json:"path"`
}

type envKind int

const (
	envString envKind = iota
	envInt
	envBool
	envList
)

type envSpec struct {
	name string
	path string
	kind envKind
}

var envSpecs = []envSpec{
	{"SSISERVE_HOST", "server.host", envString},
	{"SSISERVE_PORT", "server.port", envInt},
	{"SSISERVE_ROOT", "server.root", envString},
	{"SSISERVE_COMPRESS", "server.compress", envBool},
	{"SSISERVE_INCLUDE_MAX_DEPTH", "include.maxDepth", envInt},
	{"SSISERVE_INDEX_FILES", "include.indexFiles", envList},
	{"SSISERVE_FORBIDDEN_EXTENSIONS", "include.forbiddenExtensions", envList},
	{"SSISERVE_TEMP_DIR", "render.tempDir", envString},
	{"SSISERVE_LOG_LEVEL", "logging.level", envString},
	{"SSISERVE_LOG_FILE", "logging.file", envString},
}

// GetSupportedEnvVars returns every env var that overrides a config field
func GetSupportedEnvVars() []string {
	vars := make([]string, 0, len(envSpecs))
	for _, s := range envSpecs {
		vars = append(vars, s.name)
	}
	return vars
}

// EnvVarPath returns the config path an env var overrides, or "" if unknown
func EnvVarPath(name string) string {
	for _, s := range envSpecs {
		if s.name == name {
			return s.path
		}
	}
	return ""
}

// applyEnvOverrides applies SSISERVE_* variables to cfg.
// Values that fail to parse are ignored and not recorded.
func applyEnvOverrides(cfg *Config) []EnvOverride {
	var overrides []EnvOverride
	for _, s := range envSpecs {
		raw, ok := os.LookupEnv(s.name)
		if !ok || raw == "" {
			continue
		}

		var value interface{}
		switch s.kind {
		case envString:
			value = raw
		case envInt:
			n, err := strconv.Atoi(raw)
			if err != nil {
				continue
			}
			value = n
		case envBool:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				continue
			}
			value = b
		case envList:
			var items []string
			for _, item := range strings.Split(raw, ",") {
				if item = strings.TrimSpace(item); item != "" {
					items = append(items, item)
				}
			}
			value = items
		}

		if applyOverride(cfg, s.path, value) {
			overrides = append(overrides, EnvOverride{EnvVar: s.name, FromValue: raw, Path: s.path})
		}
	}
	return overrides
}

// applyOverride sets a single config field by dotted path
func applyOverride(cfg *Config, path string, value interface{}) bool {
	switch path {
	case "server.host":
		if v, ok := value.(string); ok {
			cfg.Server.Host = v
			return true
		}
	case "server.port":
		if v, ok := value.(int); ok {
			cfg.Server.Port = v
			return true
		}
	case "server.root":
		if v, ok := value.(string); ok {
			cfg.Server.Root = v
			return true
		}
	case "server.compress":
		if v, ok := value.(bool); ok {
			cfg.Server.Compress = v
			return true
		}
	case "include.maxDepth":
		if v, ok := value.(int); ok {
			cfg.Include.MaxDepth = v
			return true
		}
	case "include.indexFiles":
		if v, ok := value.([]string); ok {
			cfg.Include.IndexFiles = v
			return true
		}
	case "include.forbiddenExtensions":
		if v, ok := value.([]string); ok {
			cfg.Include.ForbiddenExtensions = v
			return true
		}
	case "render.tempDir":
		if v, ok := value.(string); ok {
			cfg.Render.TempDir = v
			return true
		}
	case "logging.level":
		if v, ok := value.(string); ok {
			cfg.Logging.Level = v
			return true
		}
	case "logging.file":
		if v, ok := value.(string); ok {
			cfg.Logging.File = v
			return true
		}
	}
	return false
}
