// Package pathutil expands user-supplied paths from the config file.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome expands a leading ~ to the user's home directory. Other
// ~user forms are returned unchanged.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// Expand expands ~ and environment variables in a path and returns it
// absolute.
func Expand(path string) (string, error) {
	if strings.HasPrefix(path, "~") && path != "~" && !strings.HasPrefix(path, "~/") {
		return "", fmt.Errorf("unsupported home directory form in %q", path)
	}
	path = ExpandHome(path)
	path = os.ExpandEnv(path)
	return filepath.Abs(path)
}
