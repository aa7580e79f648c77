package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFallsBackToDefault(t *testing.T) {
	assert.Equal(t, "kanagawa", New("no-such-theme").Name)
	assert.Equal(t, "terminal", New(" Terminal ").Name)
}

func TestNameFromEnv(t *testing.T) {
	t.Setenv(EnvTheme, "TERMINAL")
	assert.Equal(t, "terminal", Name())
}

func TestNoColorSelectsTerminalPalette(t *testing.T) {
	t.Setenv(EnvTheme, "")
	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, "terminal", Name())
}
