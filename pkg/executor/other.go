//go:build !darwin && !linux

package executor

import (
	"context"
	"fmt"
	"os"
	"runtime"
)

type unsupportedOpener struct{}

func platformOpener() opener { return unsupportedOpener{} }

func (unsupportedOpener) isApplication(path string, info os.FileInfo) bool {
	return !info.IsDir()
}

func (unsupportedOpener) launch(ctx context.Context, p *Platform, path string) error {
	return fmt.Errorf("launching applications is not supported on %s", runtime.GOOS)
}

func (unsupportedOpener) openURL(ctx context.Context, p *Platform, raw string) error {
	return fmt.Errorf("opening URLs is not supported on %s", runtime.GOOS)
}

func (unsupportedOpener) reveal(ctx context.Context, p *Platform, path string) error {
	return fmt.Errorf("revealing folders is not supported on %s", runtime.GOOS)
}
