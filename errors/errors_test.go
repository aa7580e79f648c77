package errors

import (
	"fmt"
	"testing"
	"time"
)

func TestLeaderError(t *testing.T) {
	// Test basic error creation
	err := New(ErrCodeAppNotFound, "application not found")
	if err.Code != ErrCodeAppNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeAppNotFound, err.Code)
	}

	// Test error wrapping
	cause := fmt.Errorf("underlying error")
	wrapped := Wrap(cause, ErrCodeCommandFailed, "command failed")

	if wrapped.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}

	if !Is(wrapped, ErrCodeCommandFailed) {
		t.Error("Is should return true for matching code")
	}

	if Is(wrapped, ErrCodeAppNotFound) {
		t.Error("Is should return false for non-matching code")
	}

	// Wrapped by fmt.Errorf
	outer := fmt.Errorf("dispatch: %w", wrapped)
	if GetCode(outer) != ErrCodeCommandFailed {
		t.Errorf("GetCode should see through %%w wrapping, got %q", GetCode(outer))
	}

	detailed := err.WithDetail("path", "/Applications/Nope.app")
	if detailed.Details["path"] != "/Applications/Nope.app" {
		t.Error("WithDetail should add details")
	}
}

func TestIsNil(t *testing.T) {
	if Is(nil, ErrCodeInternal) {
		t.Error("Is(nil) should be false")
	}
	if Is(fmt.Errorf("plain"), "") {
		t.Error("Is with empty code should be false")
	}
}

func TestErrorConstructors(t *testing.T) {
	err := FolderNotFound("/tmp/missing")
	if err.Code != ErrCodeFolderNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeFolderNotFound, err.Code)
	}
	if err.Details["path"] != "/tmp/missing" {
		t.Error("FolderNotFound should include path detail")
	}

	err = CommandTimeout("sleep 100", 2*time.Second)
	if err.Code != ErrCodeCommandTimeout {
		t.Errorf("expected code %s, got %s", ErrCodeCommandTimeout, err.Code)
	}
	if err.Details["timeout"] != "2s" {
		t.Errorf("CommandTimeout should include timeout detail, got %v", err.Details["timeout"])
	}

	err = CommandExited("false", 2, "boom")
	if err.Details["exitCode"] != 2 {
		t.Error("CommandExited should include exit code")
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"plain error", fmt.Errorf("boom"), "boom"},
		{"structured", InvalidURL("::"), `invalid URL: "::"`},
		{"with output", CommandExited("ls /nope", 2, "No such file"), "command exited with status 2: ls /nope\nNo such file"},
		{"with cause", LaunchFailed("/x.app", fmt.Errorf("exec: no such file")), "failed to launch /x.app: exec: no such file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
