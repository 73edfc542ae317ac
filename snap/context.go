package snap

import (
	"context"
	"errors"
	stdio "io"
	"strings"
	"time"

	snapio "github.com/dzonerzy/snapargv/io"
	"github.com/dzonerzy/snapargv/middleware"
)

// Context is the per-command parse state. Each dispatched subcommand gets
// its own Context whose Parent is the invoking command's.
type Context struct {
	App     *App
	command *Command
	parent  *Context
	ctx     context.Context
	cancel  context.CancelFunc
	id      string

	// matched holds the argv invocations in match order.
	matched []matchedInvocation
	result  *matchResult
	values  map[*Flag]*flagValue

	positional []string
	argValues  map[*Arg]any
	argSet     map[*Arg]bool

	invoked  []string
	children []*Context
	metadata map[string]any
	obj      any
	closers  []func() error
}

type matchedInvocation struct {
	flag *Flag
	inv  Invocation
}

type flagValue struct {
	value  any
	source SourceType
	invs   []Invocation
}

func newContext(app *App, cmd *Command, parent *Context, ctx context.Context, id string) *Context {
	return &Context{
		App:       app,
		command:   cmd,
		parent:    parent,
		ctx:       ctx,
		id:        id,
		values:    make(map[*Flag]*flagValue, len(cmd.flags)),
		argValues: make(map[*Arg]any, len(cmd.args)),
		argSet:    make(map[*Arg]bool, len(cmd.args)),
	}
}

// Context methods for accessing the underlying Go context

// Context returns the underlying Go context for cancellation/timeouts
func (c *Context) Context() context.Context {
	return c.ctx
}

// Deadline returns the time when work done on behalf of this context should be canceled
func (c *Context) Deadline() (time.Time, bool) {
	return c.ctx.Deadline()
}

// Done returns a channel that's closed when work done on behalf of this context should be canceled
func (c *Context) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Err returns a non-nil error value after Done is closed
func (c *Context) Err() error {
	return c.ctx.Err()
}

// Value returns the value associated with this context for key
func (c *Context) Value(key any) any {
	return c.ctx.Value(key)
}

// Cancel cancels the Go context shared by every context of the run.
func (c *Context) Cancel() {
	if root := c.Root(); root.cancel != nil {
		root.cancel()
	}
}

// ID is the invocation ID shared by every context of one parse.
func (c *Context) ID() string { return c.id }

// Parent returns the parent context
func (c *Context) Parent() *Context {
	return c.parent
}

// Root returns the context of the top-level command.
func (c *Context) Root() *Context {
	ctx := c
	for ctx.parent != nil {
		ctx = ctx.parent
	}
	return ctx
}

// Command returns the command this context belongs to (implements middleware.Context interface)
func (c *Context) Command() middleware.Command {
	return c.command
}

// Cmd returns the concrete command.
func (c *Context) Cmd() *Command { return c.command }

// CommandPath returns the command names from the root down to this context.
func (c *Context) CommandPath() []string {
	return c.command.Path()
}

// InvokedSubcommand returns the name of the subcommand dispatched from this
// context, or "" when none ran. With multiple subcommands it is the last one.
func (c *Context) InvokedSubcommand() string {
	if len(c.invoked) == 0 {
		return ""
	}
	return c.invoked[len(c.invoked)-1]
}

// InvokedSubcommands returns every subcommand dispatched from this context, in order.
func (c *Context) InvokedSubcommands() []string { return c.invoked }

// Children returns the contexts of the dispatched subcommands, in order.
func (c *Context) Children() []*Context { return c.children }

// Leaf follows the last dispatched subcommand down to the deepest context.
func (c *Context) Leaf() *Context {
	ctx := c
	for len(ctx.children) > 0 {
		ctx = ctx.children[len(ctx.children)-1]
	}
	return ctx
}

// Context management methods

// Set stores a key-value pair in the context metadata
func (c *Context) Set(key string, value any) {
	if c.metadata == nil {
		c.metadata = make(map[string]any)
	}
	c.metadata[key] = value
}

// Get retrieves a value from the context metadata
func (c *Context) Get(key string) any {
	if c.metadata == nil {
		return nil
	}
	return c.metadata[key]
}

// SetObject attaches an arbitrary object to this context. Child contexts
// find it through FindObject.
func (c *Context) SetObject(obj any) { c.obj = obj }

// FindObject returns the nearest object of type T walking up from ctx.
func FindObject[T any](ctx *Context) (T, bool) {
	for c := ctx; c != nil; c = c.parent {
		if v, ok := c.obj.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// OnClose registers fn to run when the parse finishes. Callbacks run in
// reverse registration order and all of them run even if one fails.
func (c *Context) OnClose(fn func() error) {
	c.closers = append(c.closers, fn)
}

func (c *Context) close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// Exit helpers integrate with ExitCodeManager. They store an exit request
// in context metadata and cancel the context; App handles mapping at the end.
func (c *Context) Exit(code int) {
	c.Set("__exit_error__", &ExitError{Code: code})
	c.Cancel()
}

func (c *Context) ExitWithError(err error, code int) {
	c.Set("__exit_error__", &ExitError{Code: code, Err: err})
	c.Cancel()
}

func (c *Context) ExitOnError(err error) {
	if err == nil {
		return
	}
	c.ExitWithError(err, c.App.ExitCodes().resolve(err))
}

// PrintMessage returns a terminal error that stops the parse and prints
// msg. Eager flags return it, e.g. a custom --licence.
func (c *Context) PrintMessage(msg string) error {
	return &ParseError{Kind: KindPrintMessage, Message: msg}
}

// Abort returns an error that stops the run without printing help.
func (c *Context) Abort(msg string) error {
	return &ParseError{Kind: KindAbort, Message: msg}
}

// IO accessors
func (c *Context) IO() *snapio.IOManager { return c.App.IO() }
func (c *Context) Stdout() stdio.Writer  { return c.App.IO().Out() }
func (c *Context) Stderr() stdio.Writer  { return c.App.IO().Err() }
func (c *Context) Stdin() stdio.Reader   { return c.App.IO().In() }

// Logger returns the App's logger, or nil if none was configured.
func (c *Context) Logger() *snapio.Logger { return c.App.logger }

// trace writes a debug line tagged with the invocation ID.
func (c *Context) trace(format string, args ...any) {
	if c.App == nil || c.App.logger == nil {
		return
	}
	c.App.logger.Debug("[%s] %s: "+format, append([]any{c.id, strings.Join(c.CommandPath(), " ")}, args...)...)
}

func (c *Context) valueSource() ValueSource { return c.App.valueSource }

func (c *Context) envReader() EnvReader { return c.App.envReader }

// Flag values

// lookup finds the finalized value of the named option in this context or
// the closest ancestor declaring it. name may be given with or without dashes.
func (c *Context) lookup(name string) (*flagValue, *Flag) {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		flag := ctx.command.findFlag(name)
		if flag == nil {
			continue
		}
		return ctx.values[flag], flag
	}
	return nil, nil
}

func (cmd *Command) findFlag(name string) *Flag {
	if strings.HasPrefix(name, "-") {
		return cmd.byName[name]
	}
	if f := cmd.byName["--"+name]; f != nil {
		return f
	}
	return cmd.byName["-"+name]
}

func get[T any](c *Context, name string) (T, bool) {
	var zero T
	v, _ := c.lookup(name)
	if v == nil || v.source == SourceNone {
		return zero, false
	}
	t, ok := v.value.(T)
	return t, ok
}

// IsSet reports whether the option got a value from anywhere but its default.
func (c *Context) IsSet(name string) bool {
	v, _ := c.lookup(name)
	return v != nil && v.source > SourceDefault
}

// Source reports where the option's value came from.
func (c *Context) Source(name string) SourceType {
	v, _ := c.lookup(name)
	if v == nil {
		return SourceNone
	}
	return v.source
}

// Invocations returns the invocations the option was finalized from.
func (c *Context) Invocations(name string) []Invocation {
	v, _ := c.lookup(name)
	if v == nil {
		return nil
	}
	return v.invs
}

// String retrieves a string flag value (safe access)
func (c *Context) String(name string) (string, bool) { return get[string](c, name) }

// MustString retrieves a string flag value with default fallback
func (c *Context) MustString(name, defaultValue string) string {
	if v, ok := c.String(name); ok {
		return v
	}
	return defaultValue
}

// Int retrieves an int flag value (safe access)
func (c *Context) Int(name string) (int, bool) { return get[int](c, name) }

// MustInt retrieves an int flag value with default fallback
func (c *Context) MustInt(name string, defaultValue int) int {
	if v, ok := c.Int(name); ok {
		return v
	}
	return defaultValue
}

// Count returns how often a count flag was given, 0 if never.
func (c *Context) Count(name string) int {
	v, _ := get[int](c, name)
	return v
}

// Bool retrieves a bool flag value (safe access)
func (c *Context) Bool(name string) (bool, bool) { return get[bool](c, name) }

// MustBool retrieves a bool flag value with default fallback
func (c *Context) MustBool(name string, defaultValue bool) bool {
	if v, ok := c.Bool(name); ok {
		return v
	}
	return defaultValue
}

// Duration retrieves a duration flag value (safe access)
func (c *Context) Duration(name string) (time.Duration, bool) { return get[time.Duration](c, name) }

// MustDuration retrieves a duration flag value with default fallback
func (c *Context) MustDuration(name string, defaultValue time.Duration) time.Duration {
	if v, ok := c.Duration(name); ok {
		return v
	}
	return defaultValue
}

// Float retrieves a float64 flag value (safe access)
func (c *Context) Float(name string) (float64, bool) { return get[float64](c, name) }

// MustFloat retrieves a float64 flag value with default fallback
func (c *Context) MustFloat(name string, defaultValue float64) float64 {
	if v, ok := c.Float(name); ok {
		return v
	}
	return defaultValue
}

// Enum retrieves an enum flag value (safe access)
func (c *Context) Enum(name string) (string, bool) { return get[string](c, name) }

// MustEnum retrieves an enum flag value with default fallback
func (c *Context) MustEnum(name, defaultValue string) string {
	return c.MustString(name, defaultValue)
}

// StringSlice retrieves a string slice flag value (safe access)
func (c *Context) StringSlice(name string) ([]string, bool) { return get[[]string](c, name) }

// MustStringSlice retrieves a string slice flag value with default fallback
func (c *Context) MustStringSlice(name string, defaultValue []string) []string {
	if v, ok := c.StringSlice(name); ok {
		return v
	}
	return defaultValue
}

// IntSlice retrieves an int slice flag value (safe access)
func (c *Context) IntSlice(name string) ([]int, bool) { return get[[]int](c, name) }

// MustIntSlice retrieves an int slice flag value with default fallback
func (c *Context) MustIntSlice(name string, defaultValue []int) []int {
	if v, ok := c.IntSlice(name); ok {
		return v
	}
	return defaultValue
}

// Positional arguments

// Args returns the positional tokens this command received
func (c *Context) Args() []string {
	return c.positional
}

// NArgs returns the number of positional arguments
func (c *Context) NArgs() int {
	return len(c.positional)
}

func getArg[T any](c *Context, name string) (T, bool) {
	var zero T
	for _, arg := range c.command.args {
		if arg.Name == name {
			v, ok := c.argValues[arg].(T)
			return v, ok && c.argSet[arg]
		}
	}
	return zero, false
}

// ArgString returns a string argument
func (c *Context) ArgString(name string) (string, bool) { return getArg[string](c, name) }

// ArgStrings returns a slice argument
func (c *Context) ArgStrings(name string) ([]string, bool) { return getArg[[]string](c, name) }

// ArgInt returns an integer argument
func (c *Context) ArgInt(name string) (int, bool) { return getArg[int](c, name) }

// ArgInts returns an integer slice argument
func (c *Context) ArgInts(name string) ([]int, bool) { return getArg[[]int](c, name) }

// ArgFloat returns a float64 argument
func (c *Context) ArgFloat(name string) (float64, bool) { return getArg[float64](c, name) }

// ArgDuration returns a duration argument
func (c *Context) ArgDuration(name string) (time.Duration, bool) {
	return getArg[time.Duration](c, name)
}

// ArgBool returns a boolean argument
func (c *Context) ArgBool(name string) (bool, bool) { return getArg[bool](c, name) }
