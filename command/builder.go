package command

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/grovetools/leader/errors"
	"github.com/grovetools/leader/pkg/process"
)

const (
	// DefaultOpenTimeout bounds helper commands such as open and xdg-open,
	// which hand off to another process and return quickly.
	DefaultOpenTimeout = 10 * time.Second

	// MaxTimeout is the maximum allowed timeout
	MaxTimeout = 10 * time.Minute
)

// SafeBuilder builds helper commands from validated arguments.
type SafeBuilder struct {
	defaultTimeout time.Duration
	validators     map[string]func(string) error
	executor       Executor
}

// NewSafeBuilder creates a new SafeBuilder instance with a RealExecutor
func NewSafeBuilder() *SafeBuilder {
	return NewSafeBuilderWithExecutor(&RealExecutor{})
}

// NewSafeBuilderWithExecutor creates a new SafeBuilder with a custom Executor
func NewSafeBuilderWithExecutor(exec Executor) *SafeBuilder {
	return &SafeBuilder{
		defaultTimeout: DefaultOpenTimeout,
		validators:     makeDefaultValidators(),
		executor:       exec,
	}
}

func makeDefaultValidators() map[string]func(string) error {
	return map[string]func(string) error{
		"path":     validatePath,
		"url":      validateURL,
		"argument": validateArgument,
	}
}

// validateArgument rejects values a helper could mistake for a flag.
func validateArgument(arg string) error {
	if arg == "" {
		return fmt.Errorf("argument cannot be empty")
	}
	if strings.ContainsRune(arg, 0) {
		return fmt.Errorf("argument contains a NUL byte")
	}
	if strings.HasPrefix(arg, "-") {
		return fmt.Errorf("argument cannot start with '-': %s", arg)
	}
	return nil
}

// validatePath requires an absolute, clean-able filesystem path.
func validatePath(path string) error {
	if err := validateArgument(path); err != nil {
		return err
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("path must be absolute: %s", path)
	}
	return nil
}

// validateURL requires a URL with a scheme and no whitespace.
func validateURL(raw string) error {
	if err := validateArgument(raw); err != nil {
		return err
	}
	if strings.ContainsAny(raw, " \t\r\n") {
		return fmt.Errorf("url contains whitespace: %q", raw)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme == "" {
		return fmt.Errorf("url has no scheme: %s", raw)
	}
	if (u.Scheme == "http" || u.Scheme == "https") && u.Host == "" {
		return fmt.Errorf("url has no host: %s", raw)
	}
	return nil
}

// Command is a validated helper invocation.
type Command struct {
	ctx      context.Context
	name     string
	args     []string
	timeout  time.Duration
	executor Executor
}

// Build creates a new command. Arguments must already have been checked
// with Validate; Build only rejects NUL bytes.
func (sb *SafeBuilder) Build(ctx context.Context, name string, args ...string) (*Command, error) {
	if name == "" {
		return nil, fmt.Errorf("command name cannot be empty")
	}
	for _, a := range args {
		if strings.ContainsRune(a, 0) {
			return nil, fmt.Errorf("argument contains a NUL byte")
		}
	}

	return &Command{
		ctx:      ctx,
		name:     name,
		args:     args,
		timeout:  sb.defaultTimeout,
		executor: sb.executor,
	}, nil
}

// WithTimeout sets a custom timeout for the command
func (c *Command) WithTimeout(timeout time.Duration) *Command {
	if timeout > MaxTimeout {
		timeout = MaxTimeout
	}
	c.timeout = timeout
	return c
}

// Validate validates specific arguments
func (sb *SafeBuilder) Validate(argType string, value string) error {
	validator, exists := sb.validators[argType]
	if !exists {
		return fmt.Errorf("no validator for argument type: %s", argType)
	}

	return validator(value)
}

// Exists reports whether name resolves to an executable.
func (sb *SafeBuilder) Exists(name string) bool {
	_, err := sb.executor.LookPath(name)
	return err == nil
}

// String renders the command line for logs and error messages.
func (c *Command) String() string {
	return strings.Join(append([]string{c.name}, c.args...), " ")
}

// Run executes the command and returns its combined output. A command that
// outlives its timeout is killed and reported as COMMAND_TIMEOUT.
func (c *Command) Run() ([]byte, error) {
	ctx, cancel := context.WithTimeout(c.ctx, c.timeout)
	defer cancel()

	out, err := c.executor.CommandContext(ctx, c.name, c.args...).CombinedOutput() //nolint:gosec // arguments are validated by SafeBuilder
	if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return out, errors.CommandTimeout(c.String(), c.timeout)
	}
	if err != nil {
		return out, errors.CommandFailed(c.String(), err)
	}
	return out, nil
}

// Detach starts name in its own process group and reaps it in the
// background without waiting.
func (sb *SafeBuilder) Detach(name string, args ...string) error {
	cmd := sb.executor.Command(name, args...)
	process.SetProcessGroup(cmd)
	if err := cmd.Start(); err != nil {
		return errors.LaunchFailed(name, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
