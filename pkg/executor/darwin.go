//go:build darwin

package executor

import (
	"context"
	"os"
	"strings"
)

type darwinOpener struct{}

func platformOpener() opener { return darwinOpener{} }

// isApplication accepts .app bundles.
func (darwinOpener) isApplication(path string, info os.FileInfo) bool {
	return info.IsDir() && strings.HasSuffix(strings.TrimSuffix(path, "/"), ".app")
}

func (darwinOpener) launch(ctx context.Context, p *Platform, path string) error {
	return p.run(ctx, "open", "-a", path)
}

func (darwinOpener) openURL(ctx context.Context, p *Platform, raw string) error {
	return p.run(ctx, "open", raw)
}

func (darwinOpener) reveal(ctx context.Context, p *Platform, path string) error {
	return p.run(ctx, "open", path)
}
