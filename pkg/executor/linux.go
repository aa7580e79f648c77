//go:build linux

package executor

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/godbus/dbus/v5"
)

const (
	fileManagerDest      = "org.freedesktop.FileManager1"
	fileManagerPath      = "/org/freedesktop/FileManager1"
	fileManagerInterface = "org.freedesktop.FileManager1"
)

type linuxOpener struct{}

func platformOpener() opener { return linuxOpener{} }

// isApplication accepts .desktop entries and executable files.
func (linuxOpener) isApplication(path string, info os.FileInfo) bool {
	if info.IsDir() {
		return false
	}
	if strings.HasSuffix(path, ".desktop") {
		return true
	}
	return info.Mode()&0111 != 0
}

func (linuxOpener) launch(ctx context.Context, p *Platform, path string) error {
	if strings.HasSuffix(path, ".desktop") {
		if p.builder.Exists("gio") {
			return p.run(ctx, "gio", "launch", path)
		}
		return p.run(ctx, "gtk-launch", strings.TrimSuffix(filepath.Base(path), ".desktop"))
	}

	return p.builder.Detach(path)
}

func (linuxOpener) openURL(ctx context.Context, p *Platform, raw string) error {
	return p.run(ctx, "xdg-open", raw)
}

// reveal asks the file manager over D-Bus and falls back to xdg-open.
func (linuxOpener) reveal(ctx context.Context, p *Platform, path string) error {
	err := showFolder(path)
	if err == nil {
		return nil
	}
	p.logger.WithError(err).Debug("FileManager1.ShowFolders failed, falling back to xdg-open")
	return p.run(ctx, "xdg-open", path)
}

func showFolder(path string) error {
	conn, err := dbus.SessionBus()
	if err != nil {
		return err
	}
	uri := (&url.URL{Scheme: "file", Path: path}).String()
	call := conn.Object(fileManagerDest, fileManagerPath).
		Call(fileManagerInterface+".ShowFolders", 0, []string{uri}, "")
	return call.Err
}
