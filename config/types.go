package config

import (
	"fmt"
	"reflect"
	"time"

	"github.com/grovetools/leader/logging"
	"github.com/invopop/jsonschema"
	"github.com/mitchellh/mapstructure"
)

// Config is the root of the leader configuration file.
type Config struct {
	Version       string              `yaml:"version,omitempty" toml:"version,omitempty" json:"version,omitempty" jsonschema:"description=Configuration version (e.g. '1')"`
	Leader        LeaderConfig        `yaml:"leader,omitempty" toml:"leader,omitempty" json:"leader" jsonschema:"description=Leader mode timing and command execution"`
	Notifications NotificationsConfig `yaml:"notifications,omitempty" toml:"notifications,omitempty" json:"notifications" jsonschema:"description=Desktop notification settings"`
	TTY           TTYConfig           `yaml:"tty,omitempty" toml:"tty,omitempty" json:"tty" jsonschema:"description=Key bindings for the terminal key source"`
	Logging       logging.Config      `yaml:"logging,omitempty" toml:"logging,omitempty" json:"logging" jsonschema:"description=Log level and format and sinks"`
	Actions       []Node              `yaml:"actions,omitempty" toml:"actions,omitempty" json:"actions" jsonschema:"description=Tree of groups and actions bound to key sequences"`
}

// LeaderConfig controls the leader-mode state machine.
type LeaderConfig struct {
	Timeout        Duration `yaml:"timeout,omitempty" toml:"timeout,omitempty" json:"timeout" jsonschema:"description=Inactivity timeout that ends leader mode (default 5s)"`
	SettleDelay    Duration `yaml:"settle_delay,omitempty" toml:"settle_delay,omitempty" json:"settle_delay" jsonschema:"description=Wait before dispatching a sequence that a longer one extends (default 500ms)"`
	CommandTimeout Duration `yaml:"command_timeout,omitempty" toml:"command_timeout,omitempty" json:"command_timeout" jsonschema:"description=Wall-clock limit for command actions (default 60s)"`
	Shell          string   `yaml:"shell,omitempty" toml:"shell,omitempty" json:"shell" jsonschema:"description=Shell used to run command actions (default /bin/sh)"`
}

// NotificationsConfig controls failure and success notifications.
type NotificationsConfig struct {
	Enabled   *bool `yaml:"enabled,omitempty" toml:"enabled,omitempty" json:"enabled" jsonschema:"description=Send desktop notifications (default true); when false they are only logged"`
	OnSuccess bool  `yaml:"on_success,omitempty" toml:"on_success,omitempty" json:"on_success" jsonschema:"description=Also notify when an action succeeds"`
}

// TTYConfig configures `leader tty`.
type TTYConfig struct {
	LeaderKey string `yaml:"leader_key,omitempty" toml:"leader_key,omitempty" json:"leader_key" jsonschema:"description=Key that activates leader mode (default ctrl+space)"`
	EndKey    string `yaml:"end_key,omitempty" toml:"end_key,omitempty" json:"end_key" jsonschema:"description=Key that ends leader mode (default esc)"`
}

// NodeType names a node in the actions tree.
type NodeType string

const (
	NodeGroup       NodeType = "group"
	NodeApplication NodeType = "application"
	NodeURL         NodeType = "url"
	NodeCommand     NodeType = "command"
	NodeFolder      NodeType = "folder"
)

// Node is a group (with children) or an action (with a value).
type Node struct {
	Key     string   `yaml:"key" toml:"key" json:"key" jsonschema:"description=Only the first character is used; it is lowercased"`
	Type    NodeType `yaml:"type,omitempty" toml:"type,omitempty" json:"type,omitempty" jsonschema:"enum=group,enum=application,enum=url,enum=command,enum=folder,description=Node type; defaults to group when actions are present"`
	Value   string   `yaml:"value,omitempty" toml:"value,omitempty" json:"value,omitempty" jsonschema:"description=Application path or URL or shell command or folder path"`
	Label   string   `yaml:"label,omitempty" toml:"label,omitempty" json:"label,omitempty" jsonschema:"description=Display name"`
	Actions []Node   `yaml:"actions,omitempty" toml:"actions,omitempty" json:"actions,omitempty" jsonschema:"description=Children of a group"`
}

// EffectiveType resolves an omitted type to group when the node has children.
func (n Node) EffectiveType() NodeType {
	if n.Type == "" && len(n.Actions) > 0 {
		return NodeGroup
	}
	return n.Type
}

// NotificationsEnabled reports the effective notifications.enabled value.
func (c *Config) NotificationsEnabled() bool {
	return c.Notifications.Enabled == nil || *c.Notifications.Enabled
}

// Duration is a time.Duration written as a Go duration string ("500ms").
type Duration time.Duration

// D returns the value as a time.Duration.
func (d Duration) D() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// JSONSchema describes Duration as a duration string.
func (Duration) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "string",
		Pattern:     `^([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`,
		Description: "Go duration string, e.g. 500ms, 5s, 1m30s",
	}
}

// durationHook lets mapstructure decode duration strings into Duration.
func durationHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if to != reflect.TypeOf(Duration(0)) {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q: %w", v, err)
		}
		return Duration(d), nil
	case Duration:
		return v, nil
	}
	return nil, fmt.Errorf("expected a duration string, got %T", data)
}

// decode maps a generic document onto cfg using yaml field names.
func decode(raw map[string]interface{}, cfg *Config) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      cfg,
		TagName:     "yaml",
		DecodeHook:  durationHook,
		ErrorUnused: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}
	return decoder.Decode(raw)
}
