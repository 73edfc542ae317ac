package snap

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrorKind classifies parse failures and print-and-exit signals.
// Kinds drive suggestion rendering and exit-code mapping (via ExitCodeManager).
type ErrorKind string

const (
	KindUsage             ErrorKind = "usage"
	KindNoSuchOption      ErrorKind = "no_such_option"
	KindNoSuchSubcommand  ErrorKind = "no_such_subcommand"
	KindMissingParameter  ErrorKind = "missing_parameter"
	KindBadOptionUsage    ErrorKind = "bad_option_usage"
	KindBadArgumentUsage  ErrorKind = "bad_argument_usage"
	KindBadParameterValue ErrorKind = "bad_parameter_value"
	KindMutuallyExclusive ErrorKind = "mutually_exclusive"
	KindInvalidFileFormat ErrorKind = "invalid_file_format"
	KindFileNotFound      ErrorKind = "file_not_found"

	// KindInvalidDeclaration reports a malformed command tree. It is a
	// programming error, not a usage error.
	KindInvalidDeclaration ErrorKind = "invalid_declaration"

	// Terminal signals: the parse completed early and the caller should
	// print Message (or help) and exit.
	KindPrintHelp    ErrorKind = "print_help"
	KindPrintMessage ErrorKind = "print_message"
	KindAbort        ErrorKind = "abort"
)

// IsUsage reports whether the kind describes bad user input.
func (k ErrorKind) IsUsage() bool {
	switch k {
	case KindPrintHelp, KindPrintMessage, KindAbort, KindInvalidDeclaration:
		return false
	default:
		return true
	}
}

// IsTerminal reports whether the kind is a print-and-exit signal.
func (k ErrorKind) IsTerminal() bool {
	return k == KindPrintHelp || k == KindPrintMessage
}

// Sentinels for errors.Is. A *ParseError matches the sentinel of its kind.
var (
	ErrUsage             = &ParseError{Kind: KindUsage}
	ErrNoSuchOption      = &ParseError{Kind: KindNoSuchOption}
	ErrNoSuchSubcommand  = &ParseError{Kind: KindNoSuchSubcommand}
	ErrMissingParameter  = &ParseError{Kind: KindMissingParameter}
	ErrBadOptionUsage    = &ParseError{Kind: KindBadOptionUsage}
	ErrBadArgumentUsage  = &ParseError{Kind: KindBadArgumentUsage}
	ErrBadParameterValue = &ParseError{Kind: KindBadParameterValue}
	ErrMutuallyExclusive = &ParseError{Kind: KindMutuallyExclusive}
	ErrInvalidFileFormat = &ParseError{Kind: KindInvalidFileFormat}
	ErrFileNotFound      = &ParseError{Kind: KindFileNotFound}
	ErrAbort             = &ParseError{Kind: KindAbort}

	// ErrHelpShown matches the terminal signal raised by --help.
	ErrHelpShown = &ParseError{Kind: KindPrintHelp}
	// ErrVersionShown matches the terminal signal raised by --version.
	ErrVersionShown = &ParseError{Kind: KindPrintMessage}
)

// ParseError is the single error type produced by tokenizing, matching and
// finalization. Kind selects the variant; the remaining fields carry
// whatever context that variant has.
type ParseError struct {
	Kind    ErrorKind
	Message string

	// Param is the option or argument name involved, e.g. "--port" or "FILE".
	Param string

	// Suggestions lists close declared names for unknown options/commands.
	Suggestions []string

	// Source is the @file path a token came from, empty for raw argv.
	Source string

	// Command is the command being parsed when the error was raised and
	// CommandPath its name chain from the root.
	Command     *Command
	CommandPath []string

	// HelpError marks a KindPrintHelp signal caused by bad input (no
	// subcommand given); it defaults to exit code 1 instead of 0.
	HelpError bool

	Cause error

	code    int
	hasCode bool
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Source != "" {
		b.WriteString(" (from @")
		b.WriteString(e.Source)
		b.WriteString(")")
	}
	switch len(e.Suggestions) {
	case 0:
	case 1:
		fmt.Fprintf(&b, ". Did you mean %s?", e.Suggestions[0])
	default:
		fmt.Fprintf(&b, ". (Possible options: %s)", strings.Join(e.Suggestions, ", "))
	}
	return b.String()
}

// Unwrap returns the underlying cause, if any.
func (e *ParseError) Unwrap() error { return e.Cause }

// Is matches sentinel errors of the same kind.
func (e *ParseError) Is(target error) bool {
	t, ok := target.(*ParseError)
	if !ok || t.Message != "" || t.Command != nil {
		return false
	}
	return t.Kind == e.Kind
}

// WithExitCode overrides the exit code reported for this error.
func (e *ParseError) WithExitCode(code int) *ParseError {
	e.code = code
	e.hasCode = true
	return e
}

// ExitCode returns the per-error override, if one was set.
func (e *ParseError) ExitCode() (int, bool) {
	return e.code, e.hasCode
}

// newError builds a ParseError with a formatted message.
func newError(kind ErrorKind, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// attach records the command context on the error unless already set.
func (e *ParseError) attach(ctx *Context) {
	if ctx == nil || e.Command != nil {
		return
	}
	e.Command = ctx.command
	e.CommandPath = ctx.CommandPath()
}

// MultiUsageError aggregates usage errors detected in the same pass so the
// user sees every problem at once.
type MultiUsageError struct {
	errs []*ParseError
}

func (m *MultiUsageError) Error() string {
	lines := make([]string, len(m.errs))
	for i, err := range m.errs {
		lines[i] = err.Error()
	}
	return strings.Join(lines, "\n")
}

// Errors returns the aggregated errors in detection order.
func (m *MultiUsageError) Errors() []*ParseError { return m.errs }

// Unwrap exposes the aggregated errors to errors.Is / errors.As.
func (m *MultiUsageError) Unwrap() []error {
	out := make([]error, len(m.errs))
	for i, err := range m.errs {
		out[i] = err
	}
	return out
}

// joinUsageErrors returns nil, the lone error, or a MultiUsageError.
func joinUsageErrors(errs []*ParseError) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return &MultiUsageError{errs: errs}
	}
}

// attachContext stamps command context on every ParseError inside err.
func attachContext(err error, ctx *Context) {
	var multi *MultiUsageError
	if errors.As(err, &multi) {
		for _, e := range multi.errs {
			e.attach(ctx)
		}
		return
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		pe.attach(ctx)
	}
}

// ErrorHandler renders parse errors for humans. Rendering stays outside the
// parser: the App calls it once the pipeline has returned.
type ErrorHandler struct {
	showUsage      bool
	customHandlers map[ErrorKind]func(*ParseError) *ParseError
}

// NewErrorHandler creates a new error handler with defaults
func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{
		showUsage:      true,
		customHandlers: make(map[ErrorKind]func(*ParseError) *ParseError),
	}
}

// ShowUsage controls whether a "Usage: ..." line precedes the error.
func (eh *ErrorHandler) ShowUsage(enabled bool) *ErrorHandler {
	eh.showUsage = enabled
	return eh
}

// Handle registers a hook that may rewrite errors of the given kind before
// they are rendered.
func (eh *ErrorHandler) Handle(kind ErrorKind, handler func(*ParseError) *ParseError) *ErrorHandler {
	eh.customHandlers[kind] = handler
	return eh
}

// process applies custom handlers.
func (eh *ErrorHandler) process(err *ParseError) *ParseError {
	if handler, ok := eh.customHandlers[err.Kind]; ok {
		if replaced := handler(err); replaced != nil {
			return replaced
		}
	}
	return err
}

// Render writes "Usage: ...\n\nError: ..." for usage errors. Errors that
// are not parse errors are written as "Error: <msg>".
func (eh *ErrorHandler) Render(w io.Writer, err error) {
	var multi *MultiUsageError
	if errors.As(err, &multi) {
		errs := multi.Errors()
		if len(errs) == 0 {
			return
		}
		eh.writeUsage(w, errs[0])
		for _, e := range errs {
			fmt.Fprintf(w, "Error: %s\n", eh.process(e).Error())
		}
		return
	}

	var pe *ParseError
	if errors.As(err, &pe) {
		pe = eh.process(pe)
		eh.writeUsage(w, pe)
		fmt.Fprintf(w, "Error: %s\n", pe.Error())
		return
	}
	fmt.Fprintf(w, "Error: %s\n", err.Error())
}

func (eh *ErrorHandler) writeUsage(w io.Writer, pe *ParseError) {
	if !eh.showUsage || pe.Command == nil {
		return
	}
	fmt.Fprintf(w, "%s\n\n", usageLine(pe.Command, pe.CommandPath))
}
