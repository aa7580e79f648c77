//go:build darwin

package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/grovetools/leader/command"
)

// osascriptBackend posts notifications through Notification Center.
type osascriptBackend struct {
	builder *command.SafeBuilder
}

// Platform returns the osascript backend.
func Platform() (Backend, error) {
	b := command.NewSafeBuilder()
	if !b.Exists("osascript") {
		return nil, fmt.Errorf("osascript not found")
	}
	return &osascriptBackend{builder: b}, nil
}

func (b *osascriptBackend) Name() string { return "osascript" }

func (b *osascriptBackend) Send(n Notification) error {
	script := fmt.Sprintf("display notification %s with title %s", appleScriptString(n.Body), appleScriptString(n.Title))
	cmd, err := b.builder.Build(context.Background(), "osascript", "-e", script)
	if err != nil {
		return err
	}
	_, err = cmd.Run()
	return err
}

func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
