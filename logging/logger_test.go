package logging

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

// resetLoggers clears the component cache so tests see fresh configuration.
func resetLoggers(t *testing.T) {
	t.Helper()
	loggersMu.Lock()
	loggers = make(map[string]*logrus.Entry)
	current = Config{}
	loggersMu.Unlock()
	t.Cleanup(func() {
		loggersMu.Lock()
		loggers = make(map[string]*logrus.Entry)
		current = Config{}
		loggersMu.Unlock()
	})
}

func TestNewLogger(t *testing.T) {
	resetLoggers(t)

	logger := NewLogger("test-component")
	if logger == nil {
		t.Fatal("Expected logger to be created")
	}
	if logger.Data["component"] != "test-component" {
		t.Errorf("Expected component to be 'test-component', got %v", logger.Data["component"])
	}
	if again := NewLogger("test-component"); again != logger {
		t.Error("Expected the same entry for the same component")
	}
}

func TestLoggerOutput(t *testing.T) {
	var buf bytes.Buffer

	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&TextFormatter{Config: FormatConfig{}})

	logger.WithField("component", "leader").Info("Leader mode activated")

	output := buf.String()
	for _, want := range []string{"[INFO]", "[leader]", "Leader mode activated"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q, got: %s", want, output)
		}
	}
}

func TestTextFormatter(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name    string
		config  FormatConfig
		entry   *logrus.Entry
		want    []string
		notWant []string
	}{
		{
			name:   "default format",
			config: FormatConfig{},
			entry: &logrus.Entry{
				Time:    fixed,
				Level:   logrus.InfoLevel,
				Message: "Dispatching action",
				Data:    logrus.Fields{"component": "leader", "kind": "url"},
			},
			want: []string{"2026-01-02 03:04:05", "[INFO]", "[leader]", "Dispatching action", "kind=url"},
		},
		{
			name:   "timestamp disabled",
			config: FormatConfig{DisableTimestamp: true},
			entry: &logrus.Entry{
				Time:    fixed,
				Level:   logrus.DebugLevel,
				Message: "Classified buffer",
				Data:    logrus.Fields{"component": "leader"},
			},
			want:    []string{"[DEBUG]", "Classified buffer"},
			notWant: []string{"2026-01-02"},
		},
		{
			name:   "component disabled and warn shortened",
			config: FormatConfig{DisableComponent: true},
			entry: &logrus.Entry{
				Time:    fixed,
				Level:   logrus.WarnLevel,
				Message: "Duplicate sequence",
				Data:    logrus.Fields{"component": "config"},
			},
			want:    []string{"[WARN]", "Duplicate sequence"},
			notWant: []string{"[config]", "WARNING"},
		},
		{
			name:   "caller information",
			config: FormatConfig{},
			entry: func() *logrus.Entry {
				logger := logrus.New()
				logger.SetReportCaller(true)
				return &logrus.Entry{
					Logger:  logger,
					Time:    fixed,
					Level:   logrus.InfoLevel,
					Message: "with caller",
					Data:    logrus.Fields{"component": "dispatch"},
					Caller: &runtime.Frame{
						File:     "/path/to/dispatcher.go",
						Line:     42,
						Function: "github.com/grovetools/leader/pkg/dispatch.(*Dispatcher).Dispatch",
					},
				}
			}(),
			want: []string{"[dispatcher.go:42 dispatch.(*Dispatcher).Dispatch]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := &TextFormatter{Config: tt.config}
			output, err := formatter.Format(tt.entry)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			outputStr := string(output)
			for _, want := range tt.want {
				if !strings.Contains(outputStr, want) {
					t.Errorf("Expected output to contain '%s', got: %s", want, outputStr)
				}
			}
			for _, notWant := range tt.notWant {
				if strings.Contains(outputStr, notWant) {
					t.Errorf("Expected output NOT to contain '%s', got: %s", notWant, outputStr)
				}
			}
		})
	}
}

func TestTextFormatterSortsFields(t *testing.T) {
	formatter := &TextFormatter{Config: FormatConfig{DisableTimestamp: true}}
	out, err := formatter.Format(&logrus.Entry{
		Level:   logrus.InfoLevel,
		Message: "m",
		Data:    logrus.Fields{"session": "s1", "buffer": "os", "kind": "app"},
	})
	if err != nil {
		t.Fatal(err)
	}
	line := string(out)
	if !(strings.Index(line, "buffer=") < strings.Index(line, "kind=") && strings.Index(line, "kind=") < strings.Index(line, "session=")) {
		t.Errorf("Expected sorted fields, got: %s", line)
	}
}

func TestEnvironmentVariables(t *testing.T) {
	resetLoggers(t)
	t.Setenv("LEADER_LOG_LEVEL", "debug")
	t.Setenv("LEADER_LOG_CALLER", "true")

	logger := NewLogger("env-test")
	if logger.Logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("Expected debug level, got %v", logger.Logger.GetLevel())
	}
	if !logger.Logger.ReportCaller {
		t.Error("Expected caller reporting to be enabled")
	}
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	resetLoggers(t)
	t.Setenv("LEADER_LOG_LEVEL", "loud")

	if got := NewLogger("bad-level").Logger.GetLevel(); got != logrus.InfoLevel {
		t.Errorf("Expected info level, got %v", got)
	}
}

func TestConfigureUpdatesExistingLoggers(t *testing.T) {
	resetLoggers(t)
	t.Setenv("LEADER_LOG_LEVEL", "")

	logger := NewLogger("engine")
	Configure(Config{Level: "warn", Format: FormatConfig{Preset: "json"}})

	if logger.Logger.GetLevel() != logrus.WarnLevel {
		t.Errorf("Expected warn level after Configure, got %v", logger.Logger.GetLevel())
	}
	if _, ok := logger.Logger.Formatter.(*logrus.JSONFormatter); !ok {
		t.Errorf("Expected JSON formatter, got %T", logger.Logger.Formatter)
	}
	if later := NewLogger("server"); later.Logger.GetLevel() != logrus.WarnLevel {
		t.Errorf("Expected loggers created after Configure to use it, got %v", later.Logger.GetLevel())
	}
}

func TestFileSink(t *testing.T) {
	resetLoggers(t)
	t.Setenv("LEADER_LOG_LEVEL", "")
	path := filepath.Join(t.TempDir(), "logs", "leader.log")

	Configure(Config{
		File:   FileSinkConfig{Enabled: true, Path: path},
		Format: FormatConfig{StructuredToStderr: "never"},
	})
	NewLogger("file-test").Info("written to file")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected log file to exist: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("Expected log line in file, got: %s", data)
	}

	found := false
	for _, f := range LogFiles() {
		if f == path {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected %s in LogFiles()", path)
	}
}

func TestNeverToStderrDiscards(t *testing.T) {
	resetLoggers(t)
	t.Setenv("LEADER_LOG_LEVEL", "")
	Configure(Config{Format: FormatConfig{StructuredToStderr: "never"}})

	if out := NewLogger("quiet").Logger.Out; out != io.Discard {
		t.Errorf("Expected io.Discard output, got %T", out)
	}
}

func TestGlobalOutputRedirect(t *testing.T) {
	resetLoggers(t)
	t.Setenv("LEADER_LOG_LEVEL", "")
	var buf bytes.Buffer
	SetGlobalOutput(&buf)
	t.Cleanup(func() { SetGlobalOutput(os.Stderr) })

	Configure(Config{Format: FormatConfig{StructuredToStderr: "always"}})
	NewLogger("redirected").Info("to buffer")

	if !strings.Contains(buf.String(), "to buffer") {
		t.Errorf("Expected redirected output, got: %q", buf.String())
	}
}

func TestPretty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPretty().WithWriter(&buf)

	p.Success("Configuration valid")
	p.Warn("duplicate sequence \"os\"")
	p.Sequence("os", 4, "Safari")
	p.Field("entries", 3)

	out := buf.String()
	for _, want := range []string{"✓", "Configuration valid", "⚠", "os", "Safari", "entries", "3"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output, got: %s", want, out)
		}
	}
}
