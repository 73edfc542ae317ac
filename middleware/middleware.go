// Package middleware wraps command actions: logging, panic recovery,
// timeouts and business validation. It only knows the Context interface, so
// it does not import snap; *snap.Context satisfies it.
package middleware

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Context describes the runtime information and lifecycle controls that
// middleware can rely on. It is implemented by *snap.Context.
type Context interface {
	// Done returns a channel that is closed when the command's context is
	// canceled or times out.
	Done() <-chan struct{}

	// Cancel requests cancellation of the current command's context.
	Cancel()

	// Args returns the raw positional arguments of the current command.
	Args() []string

	// Set and Get store metadata shared between middleware and actions.
	Set(key string, value any)
	Get(key string) any

	// Typed option access. The boolean is false when the option has no value.
	String(name string) (string, bool)
	Int(name string) (int, bool)
	Bool(name string) (bool, bool)
	Duration(name string) (time.Duration, bool)
	StringSlice(name string) ([]string, bool)

	// IsSet reports whether the option was given on the command line, in the
	// environment, by a value source or a prompt. Defaults do not count.
	IsSet(name string) bool

	// ID identifies one invocation of the program; every command in the
	// chain shares it.
	ID() string

	// CommandPath is the names from the root command down to this one.
	CommandPath() []string

	Command() Command
}

// Command interface will be satisfied by *snap.Command
type Command interface {
	Name() string
	Description() string
}

// ActionFunc represents command action function signature
type ActionFunc func(ctx Context) error

// Middleware defines the middleware function signature
type Middleware func(next ActionFunc) ActionFunc

// MiddlewareChain represents a chain of middleware functions
type MiddlewareChain []Middleware

// Apply applies the middleware chain to an ActionFunc. The first middleware
// in the chain is the outermost.
func (chain MiddlewareChain) Apply(action ActionFunc) ActionFunc {
	for i := len(chain) - 1; i >= 0; i-- {
		action = chain[i](action)
	}
	return action
}

// Use returns a new chain with the provided middleware appended.
func (chain MiddlewareChain) Use(middleware ...Middleware) MiddlewareChain {
	return append(chain[:len(chain):len(chain)], middleware...)
}

// Chain creates a new middleware chain from the provided middleware, preserving
// order.
func Chain(middleware ...Middleware) MiddlewareChain {
	return MiddlewareChain(middleware)
}

// Error types for middleware

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Value   any
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error { return e.Cause }

// TimeoutError represents a timeout error
type TimeoutError struct {
	Duration time.Duration
	Command  string
}

func (e *TimeoutError) Error() string {
	return "command '" + e.Command + "' timed out after " + e.Duration.String()
}

// RecoveryError represents a panic recovery
type RecoveryError struct {
	Panic   any
	Command string
	Stack   []byte
}

func (e *RecoveryError) Error() string {
	return "command '" + e.Command + "' panicked: " + toString(e.Panic)
}

// Configuration types

// MiddlewareConfig contains configuration for middleware behavior
type MiddlewareConfig struct {
	LogLevel       LogLevel
	LogFormat      LogFormat
	Output         io.Writer
	IncludeArgs    bool
	PrintStack     bool
	StackSize      int
	DefaultTimeout time.Duration
}

// LogLevel represents logging levels
type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelError
	LogLevelInfo
	LogLevelDebug
)

// LogFormat represents log formats
type LogFormat int

const (
	LogFormatText LogFormat = iota
	LogFormatJSON
)

// MiddlewareOption configures a middleware constructor.
type MiddlewareOption func(config *MiddlewareConfig)

// DefaultConfig logs at info level to stderr and keeps 4KiB stacks.
func DefaultConfig() *MiddlewareConfig {
	return &MiddlewareConfig{
		LogLevel:       LogLevelInfo,
		LogFormat:      LogFormatText,
		Output:         os.Stderr,
		IncludeArgs:    true,
		PrintStack:     true,
		StackSize:      4096,
		DefaultTimeout: 30 * time.Second,
	}
}

func newConfig(options []MiddlewareOption) *MiddlewareConfig {
	config := DefaultConfig()
	for _, option := range options {
		option(config)
	}
	return config
}

func WithLogLevel(level LogLevel) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.LogLevel = level
	}
}

func WithLogFormat(format LogFormat) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.LogFormat = format
	}
}

// WithOutput sends log lines and panic traces to w.
func WithOutput(w io.Writer) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.Output = w
	}
}

func WithArgs(enabled bool) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.IncludeArgs = enabled
	}
}

func WithTimeout(timeout time.Duration) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.DefaultTimeout = timeout
	}
}

func WithStackTrace(enabled bool) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.PrintStack = enabled
	}
}

// Utility functions

func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return x
	case error:
		return x.Error()
	default:
		return fmt.Sprint(x)
	}
}

func getCommandName(ctx Context) string {
	cmd := ctx.Command()
	if cmd == nil {
		return "unknown"
	}
	return cmd.Name()
}
