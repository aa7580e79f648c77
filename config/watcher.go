package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/grovetools/leader/logging"
	"github.com/moby/patternmatcher"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce coalesces the burst of events editors produce on save.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reports changes to a config file. It watches the file's directory
// so atomic saves (write temp file, rename over) are seen, and follows a
// symlinked config to its target directory.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	matcher  *patternmatcher.PatternMatcher
	debounce time.Duration
	logger   *logrus.Entry
	onReload func(path string)

	mu     sync.Mutex
	timer  *time.Timer
	closed bool
}

// NewWatcher watches path and calls onReload, at most once per debounce
// window, after it changes.
func NewWatcher(path string, debounce time.Duration, onReload func(path string)) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	logger := logging.NewLogger("config-watcher")

	names := []string{filepath.Base(abs)}
	dirs := map[string]bool{filepath.Dir(abs): true}

	// fsnotify doesn't follow symlinks, so watch the target too.
	if info, err := os.Lstat(abs); err == nil && info.Mode()&os.ModeSymlink != 0 {
		if target, err := filepath.EvalSymlinks(abs); err == nil {
			names = append(names, filepath.Base(target))
			dirs[filepath.Dir(target)] = true
			logger.Debugf("Following symlinked config to %s", target)
		} else {
			logger.WithError(err).Warn("Failed to resolve config symlink")
		}
	}

	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, err
		}
	}

	matcher, err := patternmatcher.New(names)
	if err != nil {
		fw.Close()
		return nil, err
	}

	return &Watcher{
		watcher:  fw,
		path:     abs,
		matcher:  matcher,
		debounce: debounce,
		logger:   logger,
		onReload: onReload,
	}, nil
}

// Path returns the watched config path.
func (w *Watcher) Path() string {
	return w.path
}

// Start processes file events until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			matched, err := w.matcher.MatchesOrParentMatches(filepath.Base(event.Name))
			if err != nil || !matched {
				continue
			}
			w.logger.Debugf("fsnotify event: %s op=%v", event.Name, event.Op)
			w.schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Errorf("Watcher error: %v", err)
		case <-ctx.Done():
			w.Close()
			return
		}
	}
}

// schedule (re)starts the debounce timer so the callback runs once the
// burst of events has settled.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		closed := w.closed
		w.mu.Unlock()
		if closed {
			return
		}
		w.logger.Infof("Config changed: %s", filepath.Base(w.path))
		if w.onReload != nil {
			w.onReload(w.path)
		}
	})
}

// Close stops the watcher. Pending reloads are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}
