package config

import (
	"strings"
	"testing"
	"time"

	"github.com/grovetools/leader/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"negative timeout", func(c *Config) { c.Leader.Timeout = Duration(-time.Second) }, "leader.timeout must not be negative"},
		{"settle equals timeout", func(c *Config) { c.Leader.SettleDelay = c.Leader.Timeout }, "must be shorter"},
		{"relative shell", func(c *Config) { c.Leader.Shell = "bash" }, "absolute path"},
		{"group with value", func(c *Config) {
			c.Actions = []Node{{Key: "g", Type: NodeGroup, Value: "x"}}
		}, "actions[0]: group \"g\" must not have a value"},
		{"action with children", func(c *Config) {
			c.Actions = []Node{{Key: "a", Type: NodeURL, Value: "https://x", Actions: []Node{{Key: "b"}}}}
		}, "cannot have child actions"},
		{"nested missing type", func(c *Config) {
			c.Actions = []Node{{Key: "g", Actions: []Node{{Key: "x", Value: "v"}}}}
		}, "actions[0].actions[0]: node \"x\" needs a type"},
		{"unknown type", func(c *Config) {
			c.Actions = []Node{{Key: "a", Type: "script", Value: "v"}}
		}, "unknown type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeConfigValidation))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Leader.Shell = "sh"
	cfg.Actions = []Node{{Key: "a", Type: NodeURL}, {Key: "b", Type: NodeCommand}}

	err := cfg.Validate()
	le, ok := errors.As(err)
	require.True(t, ok)
	problems, _ := le.Details["problems"].([]string)
	assert.Len(t, problems, 3)
	assert.Equal(t, 3, strings.Count(le.Message, "\n- "))
}
