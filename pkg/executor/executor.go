// Package executor launches applications, opens URLs and reveals folders
// using the host platform's helpers.
package executor

import (
	"context"
	"os"
	"strings"

	"github.com/grovetools/leader/command"
	"github.com/grovetools/leader/errors"
	"github.com/grovetools/leader/logging"
	"github.com/grovetools/leader/util/pathutil"
	"github.com/sirupsen/logrus"
)

// Platform implements the application, URL and folder executors.
type Platform struct {
	builder *command.SafeBuilder
	logger  *logrus.Entry
	opener  opener
}

// opener is the platform-specific half of Platform.
type opener interface {
	launch(ctx context.Context, p *Platform, path string) error
	openURL(ctx context.Context, p *Platform, raw string) error
	reveal(ctx context.Context, p *Platform, path string) error
	isApplication(path string, info os.FileInfo) bool
}

// New returns the executors for the current platform.
func New() *Platform {
	return NewWithBuilder(command.NewSafeBuilder())
}

// NewWithBuilder returns executors that run helpers through b.
func NewWithBuilder(b *command.SafeBuilder) *Platform {
	return &Platform{
		builder: b,
		logger:  logging.NewLogger("executor"),
		opener:  platformOpener(),
	}
}

// Launch starts the application at path.
func (p *Platform) Launch(ctx context.Context, path string) error {
	path = pathutil.ExpandHome(path)
	if err := p.builder.Validate("path", path); err != nil {
		return errors.AppNotFound(path).WithDetail("reason", err.Error())
	}
	info, err := os.Stat(path)
	if err != nil {
		return errors.AppNotFound(path)
	}
	if !p.opener.isApplication(path, info) {
		return errors.NotAnApplication(path)
	}
	p.logger.WithField("path", path).Debug("Launching application")
	if err := p.opener.launch(ctx, p, path); err != nil {
		if errors.GetCode(err) == errors.ErrCodeLaunchFailed {
			return err
		}
		return errors.LaunchFailed(path, err)
	}
	return nil
}

// OpenURL opens raw with the default handler for its scheme.
func (p *Platform) OpenURL(ctx context.Context, raw string) error {
	raw = strings.TrimSpace(raw)
	if err := p.builder.Validate("url", raw); err != nil {
		return errors.InvalidURL(raw).WithDetail("reason", err.Error())
	}
	p.logger.WithField("url", raw).Debug("Opening URL")
	if err := p.opener.openURL(ctx, p, raw); err != nil {
		return errors.OpenFailed(raw, err)
	}
	return nil
}

// Reveal shows the folder at path in the file browser.
func (p *Platform) Reveal(ctx context.Context, path string) error {
	path = pathutil.ExpandHome(path)
	if err := p.builder.Validate("path", path); err != nil {
		return errors.FolderNotFound(path).WithDetail("reason", err.Error())
	}
	info, err := os.Stat(path)
	if err != nil {
		return errors.FolderNotFound(path)
	}
	if !info.IsDir() {
		return errors.NotADirectory(path)
	}
	p.logger.WithField("path", path).Debug("Revealing folder")
	if err := p.opener.reveal(ctx, p, path); err != nil {
		return errors.OpenFailed(path, err)
	}
	return nil
}

// run builds and runs a helper command.
func (p *Platform) run(ctx context.Context, name string, args ...string) error {
	cmd, err := p.builder.Build(ctx, name, args...)
	if err != nil {
		return err
	}
	_, err = cmd.Run()
	return err
}
