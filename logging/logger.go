package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/grovetools/leader/pkg/paths"
	"github.com/grovetools/leader/util/pathutil"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex
	current   Config

	// Open file sinks keyed by path, shared between components.
	sinks = make(map[string]*os.File)
)

// NewLogger creates and returns a pre-configured logger for a specific component.
// Loggers are cached per component; Configure updates all of them in place.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	logger := logrus.New()
	apply(logger, current)

	entry := logger.WithField("component", component)
	loggers[component] = entry
	return entry
}

// Configure applies cfg to every existing logger and to loggers created later.
// It is called once the config file has been loaded and again on reload.
func Configure(cfg Config) {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	current = cfg
	for _, entry := range loggers {
		apply(entry.Logger, cfg)
	}
}

func apply(logger *logrus.Logger, cfg Config) {
	levelStr := "info"
	if env := os.Getenv("LEADER_LOG_LEVEL"); env != "" {
		levelStr = env
	} else if cfg.Level != "" {
		levelStr = cfg.Level
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	logger.SetReportCaller(os.Getenv("LEADER_LOG_CALLER") == "true" || cfg.ReportCaller)

	switch cfg.Format.Preset {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "simple":
		logger.SetFormatter(&TextFormatter{Config: FormatConfig{
			DisableTimestamp: true,
			DisableComponent: true,
		}})
	default:
		logger.SetFormatter(&TextFormatter{Config: cfg.Format})
	}

	var writers []io.Writer

	if cfg.File.Enabled {
		logFilePath := pathutil.ExpandHome(cfg.File.Path)
		if logFilePath == "" {
			logFilePath = DefaultLogFile(time.Now())
		}
		if file, err := openSink(logFilePath); err == nil {
			writers = append(writers, file)
		} else {
			fmt.Fprintf(os.Stderr, "leader: failed to open log file %s: %v\n", logFilePath, err)
		}
	}

	if shouldLogToStderr(cfg, level) {
		writers = append(writers, defaultGlobalWriter)
	}

	switch len(writers) {
	case 0:
		logger.SetOutput(io.Discard)
	case 1:
		logger.SetOutput(writers[0])
	default:
		logger.SetOutput(io.MultiWriter(writers...))
	}
}

// DefaultLogFile is the file every component shares when logging.file.path
// is unset: one file per day under the state directory.
func DefaultLogFile(day time.Time) string {
	return filepath.Join(paths.LogDir(), fmt.Sprintf("leader-%s.log", day.Format("2006-01-02")))
}

// shouldLogToStderr resolves the structured_to_stderr mode. In "auto" mode
// logs reach stderr when debugging or when stderr is not a terminal.
func shouldLogToStderr(cfg Config, level logrus.Level) bool {
	switch cfg.Format.StructuredToStderr {
	case "always":
		return true
	case "never":
		return false
	}
	isDebug := os.Getenv("LEADER_DEBUG") == "1" || level >= logrus.DebugLevel
	isInteractive := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	return isDebug || !isInteractive
}

// openSink must be called with loggersMu held.
func openSink(path string) (*os.File, error) {
	if f, ok := sinks[path]; ok {
		return f, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	sinks[path] = f
	return f, nil
}

// LogFiles returns the paths of the file sinks currently open.
func LogFiles() []string {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	files := make([]string, 0, len(sinks))
	for path := range sinks {
		files = append(files, path)
	}
	return files
}
