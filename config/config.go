// Package config loads, validates and watches the leader configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/grovetools/leader/errors"
	"github.com/grovetools/leader/pkg/paths"
	"github.com/grovetools/leader/util/pathutil"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	// EnvConfig names an explicit config file path.
	EnvConfig = "LEADER_CONFIG"

	DefaultTimeout        = 5 * time.Second
	DefaultSettleDelay    = 500 * time.Millisecond
	DefaultCommandTimeout = 60 * time.Second
	DefaultShell          = "/bin/sh"
	DefaultLeaderKey      = "ctrl+space"
	DefaultEndKey         = "esc"
)

// FileNames lists the names searched for in the config directory, in order.
var FileNames = []string{"config.yml", "config.yaml", "config.toml", "config.json"}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// Format is the syntax of a config document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFor picks the format from a file extension. Unknown extensions are YAML.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	}
	return FormatYAML
}

// Locate resolves the config file path: explicit, then $LEADER_CONFIG, then
// the first existing file in the config directory.
func Locate(explicit string) (string, error) {
	if explicit == "" {
		explicit = os.Getenv(EnvConfig)
	}
	if explicit != "" {
		p, err := pathutil.Expand(explicit)
		if err != nil {
			return "", errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid config path").WithDetail("path", explicit)
		}
		return p, nil
	}
	dir := paths.ConfigDir()
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", errors.ConfigNotFound(filepath.Join(dir, FileNames[0]))
}

// DefaultPath is where `leader init` writes a new config.
func DefaultPath() string {
	return filepath.Join(paths.ConfigDir(), FileNames[0])
}

// Load reads and parses a leader configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}

	cfg, err := LoadFromBytes(data, FormatFor(path))
	if err != nil {
		if le, ok := errors.As(err); ok {
			return nil, le.WithDetail("path", path)
		}
		return nil, err
	}
	return cfg, nil
}

// LoadFromBytes parses, schema-checks, decodes, defaults and validates a document.
func LoadFromBytes(data []byte, format Format) (*Config, error) {
	raw, err := parse([]byte(expandEnvVars(string(data))), format)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, fmt.Sprintf("failed to parse %s configuration", format))
	}

	validator, err := NewSchemaValidator()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create validator")
	}
	if err := validator.Validate(raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigValidation, "schema validation failed")
	}

	var cfg Config
	if err := decode(raw, &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to decode configuration")
	}

	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// parse decodes a document into a JSON-compatible map.
func parse(data []byte, format Format) (map[string]interface{}, error) {
	var doc interface{}
	switch format {
	case FormatTOML:
		var m map[string]interface{}
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		doc = m
	default:
		// yaml.v3 also reads JSON documents.
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	}
	if doc == nil {
		return map[string]interface{}{}, nil
	}

	// Round-trip through JSON so every value has a JSON type.
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("top level must be a mapping: %w", err)
	}
	return raw, nil
}

// Default returns a configuration with defaults applied and no actions.
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills unset settings.
func (c *Config) SetDefaults() {
	if c.Version == "" {
		c.Version = "1"
	}
	if c.Leader.Timeout == 0 {
		c.Leader.Timeout = Duration(DefaultTimeout)
	}
	if c.Leader.SettleDelay == 0 {
		c.Leader.SettleDelay = Duration(DefaultSettleDelay)
	}
	if c.Leader.CommandTimeout == 0 {
		c.Leader.CommandTimeout = Duration(DefaultCommandTimeout)
	}
	if c.Leader.Shell == "" {
		c.Leader.Shell = DefaultShell
	}
	if c.Notifications.Enabled == nil {
		enabled := true
		c.Notifications.Enabled = &enabled
	}
	if c.TTY.LeaderKey == "" {
		c.TTY.LeaderKey = DefaultLeaderKey
	}
	if c.TTY.EndKey == "" {
		c.TTY.EndKey = DefaultEndKey
	}
}

// expandEnvVars replaces ${VAR} and ${VAR:-default}.
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		varName := envVarRegex.FindStringSubmatch(match)[1]

		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]
		defaultValue := ""
		if len(parts) > 1 {
			defaultValue = parts[1]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultValue
	})
}

// Sample is the starter configuration written by `leader init`.
const Sample = `# leader configuration
version: "1"

leader:
  timeout: 5s
  settle_delay: 500ms
  command_timeout: 60s

notifications:
  enabled: true
  on_success: false

actions:
  - key: t
    type: application
    value: /Applications/Utilities/Terminal.app
    label: Terminal
  - key: o
    label: Open
    actions:
      - key: g
        type: url
        value: https://github.com
        label: GitHub
      - key: h
        type: folder
        value: ~/
        label: Home
  - key: s
    label: Scripts
    actions:
      - key: u
        type: command
        value: echo "hello from leader"
        label: Hello
`
