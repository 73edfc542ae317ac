package snap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"

	snapio "github.com/dzonerzy/snapargv/io"
	"github.com/dzonerzy/snapargv/middleware"
)

// ActionFunc defines the command execution function
type ActionFunc func(*Context) error

// Author represents an application author
type Author struct {
	Name  string
	Email string
}

// App represents the main CLI application. The App is the root command plus
// the collaborators the parse pipeline reads from: value sources, the
// environment, the @file reader and the I/O streams.
type App struct {
	root     *Command
	version  string
	authors  []Author
	helpFlag bool

	// Execution context
	beforeAction ActionFunc
	afterAction  ActionFunc

	// Error handling
	errorHandler *ErrorHandler

	// Middleware
	middleware []middleware.Middleware

	// IO management
	ioManager *snapio.IOManager
	logger    *snapio.Logger

	// Exit code management
	exitCodes *ExitCodeManager

	// Value lookup
	valueSource   ValueSource
	envReader     EnvReader
	autoEnvPrefix string
	fileReader    FileReader

	builtins bool
}

// New creates a new CLI application with fluent API
func New(name, description string) *App {
	return &App{
		root:         newCommand(name, description),
		helpFlag:     true, // Enable help by default
		errorHandler: NewErrorHandler(),
		ioManager:    snapio.New(),
		envReader:    os.LookupEnv,
		fileReader:   OSFileReader{},
	}
}

// App configuration methods

// Name returns the program name.
func (a *App) Name() string { return a.root.name }

// Root returns the root command.
func (a *App) Root() *Command { return a.root }

// Version sets the application version and enables --version.
func (a *App) Version(version string) *App {
	a.version = version
	return a
}

// Author adds an application author
func (a *App) Author(name, email string) *App {
	a.authors = append(a.authors, Author{Name: name, Email: email})
	return a
}

// Authors sets multiple application authors
func (a *App) Authors(authors ...Author) *App {
	a.authors = append(a.authors, authors...)
	return a
}

// HelpText sets detailed help text for the application
func (a *App) HelpText(help string) *App {
	a.root.HelpText = help
	return a
}

// Action sets the root command's action.
func (a *App) Action(fn ActionFunc) *App {
	a.root.Action = fn
	return a
}

// Use adds middleware to the application
func (a *App) Use(middleware ...middleware.Middleware) *App {
	a.middleware = append(a.middleware, middleware...)
	return a
}

// DisableHelp disables automatic help flag generation
func (a *App) DisableHelp() *App {
	a.helpFlag = false
	return a
}

// Before sets a function to run before any command action
func (a *App) Before(fn ActionFunc) *App {
	a.beforeAction = fn
	return a
}

// After sets a function to run after every command in the chain has run
func (a *App) After(fn ActionFunc) *App {
	a.afterAction = fn
	return a
}

// IO returns the application's IOManager for fluent configuration.
func (a *App) IO() *snapio.IOManager {
	if a.ioManager == nil {
		a.ioManager = snapio.New()
	}
	return a.ioManager
}

// WithLogger enables parse tracing at debug level.
func (a *App) WithLogger(logger *snapio.Logger) *App {
	a.logger = logger
	return a
}

// ValueSource sets the fallback consulted for options missing from argv
// and the environment. Use ChainedValueSource to layer several.
func (a *App) ValueSource(vs ValueSource) *App {
	a.valueSource = vs
	return a
}

// EnvReader replaces os.LookupEnv as the environment lookup.
func (a *App) EnvReader(reader EnvReader) *App {
	a.envReader = reader
	return a
}

// AutoEnvPrefix reads PREFIX_[SUBCOMMAND_]OPTION for options without
// explicit environment variables.
func (a *App) AutoEnvPrefix(prefix string) *App {
	a.autoEnvPrefix = prefix
	return a
}

// FileReader sets how @file arguments are loaded.
func (a *App) FileReader(reader FileReader) *App {
	a.fileReader = reader
	return a
}

// DisableArgFiles treats @file tokens literally.
func (a *App) DisableArgFiles() *App {
	a.fileReader = nil
	return a
}

// Root command settings

// DisallowInterspersedArgs treats everything after the first positional as positional.
func (a *App) DisallowInterspersedArgs() *App {
	a.root.Settings.AllowInterspersedArgs = false
	return a
}

// AllowMultipleSubcommands lets several subcommands run in one invocation.
func (a *App) AllowMultipleSubcommands() *App {
	a.root.Settings.AllowMultipleSubcommands = true
	return a
}

// TreatUnknownOptionsAsArgs passes unknown options through as positionals.
func (a *App) TreatUnknownOptionsAsArgs() *App {
	a.root.Settings.TreatUnknownOptionsAsArgs = true
	return a
}

// InvokeWithoutSubcommand runs the root action even when no subcommand is given.
func (a *App) InvokeWithoutSubcommand() *App {
	a.root.Settings.InvokeWithoutSubcommand = true
	return a
}

// PrintHelpOnEmptyArgs shows help when the program gets no arguments.
func (a *App) PrintHelpOnEmptyArgs() *App {
	a.root.Settings.PrintHelpOnEmptyArgs = true
	return a
}

// Flag builders - Type-safe flag definitions

// StringFlag adds a string flag to the application
func (a *App) StringFlag(name, description string) *FlagBuilder[string, *App] {
	return stringFlag(a, name, description)
}

// IntFlag adds an integer flag to the application
func (a *App) IntFlag(name, description string) *FlagBuilder[int, *App] {
	return intFlag(a, name, description)
}

// BoolFlag adds a boolean flag to the application
func (a *App) BoolFlag(name, description string) *FlagBuilder[bool, *App] {
	return boolFlag(a, name, description)
}

// CountFlag adds a flag counting its occurrences
func (a *App) CountFlag(name, description string) *FlagBuilder[int, *App] {
	return countFlag(a, name, description)
}

// DurationFlag adds a duration flag to the application
func (a *App) DurationFlag(name, description string) *FlagBuilder[time.Duration, *App] {
	return durationFlag(a, name, description)
}

// FloatFlag adds a float64 flag to the application
func (a *App) FloatFlag(name, description string) *FlagBuilder[float64, *App] {
	return floatFlag(a, name, description)
}

// EnumFlag adds an enum flag to the application
func (a *App) EnumFlag(name, description string, values ...string) *FlagBuilder[string, *App] {
	return enumFlag(a, name, description, values)
}

// StringSliceFlag adds a string slice flag to the application
func (a *App) StringSliceFlag(name, description string) *FlagBuilder[[]string, *App] {
	return stringSliceFlag(a, name, description)
}

// IntSliceFlag adds an int slice flag to the application
func (a *App) IntSliceFlag(name, description string) *FlagBuilder[[]int, *App] {
	return intSliceFlag(a, name, description)
}

// Positional argument methods

// StringArg adds a string positional argument to the root command
func (a *App) StringArg(name, description string) *ArgBuilder[string] {
	b := stringArg(a.root, name, description)
	b.parentApp = a
	return b
}

// IntArg adds an integer positional argument to the root command
func (a *App) IntArg(name, description string) *ArgBuilder[int] {
	b := intArg(a.root, name, description)
	b.parentApp = a
	return b
}

// BoolArg adds a boolean positional argument to the root command
func (a *App) BoolArg(name, description string) *ArgBuilder[bool] {
	b := boolArg(a.root, name, description)
	b.parentApp = a
	return b
}

// FloatArg adds a float64 positional argument to the root command
func (a *App) FloatArg(name, description string) *ArgBuilder[float64] {
	b := floatArg(a.root, name, description)
	b.parentApp = a
	return b
}

// DurationArg adds a duration positional argument to the root command
func (a *App) DurationArg(name, description string) *ArgBuilder[time.Duration] {
	b := durationArg(a.root, name, description)
	b.parentApp = a
	return b
}

// StringSliceArg adds a variadic string argument to the root command
func (a *App) StringSliceArg(name, description string) *ArgBuilder[[]string] {
	b := stringSliceArg(a.root, name, description)
	b.parentApp = a
	return b
}

// IntSliceArg adds a variadic int argument to the root command
func (a *App) IntSliceArg(name, description string) *ArgBuilder[[]int] {
	b := intSliceArg(a.root, name, description)
	b.parentApp = a
	return b
}

// Command builder

// Command adds a command to the application
func (a *App) Command(name, description string) *CommandBuilder {
	cmd := newCommand(name, description)
	cmd.parent = a.root
	a.root.subcommands = append(a.root.subcommands, cmd)
	return &CommandBuilder{command: cmd, app: a}
}

// FlagParent interface implementation

func (a *App) attachFlag(flag *Flag) {
	a.root.flags = append(a.root.flags, flag)
}

// addFlagGroup adds a flag group to the app (implements FlagGroupParent interface)
func (a *App) addFlagGroup(group *FlagGroup) {
	a.root.flagGroups = append(a.root.flagGroups, group)
}

// FlagGroup creates a new flag group builder
func (a *App) FlagGroup(name string) *FlagGroupBuilder[*App] {
	return newFlagGroup(a, name)
}

// ErrorHandler returns the app's error handler for configuration
func (a *App) ErrorHandler() *ErrorHandler {
	return a.errorHandler
}

// ExitCodes returns the exit-code manager for this app. Use it to override
// defaults or register custom mappings. Resolution precedence is:
// ExitError > ParseError.WithExitCode > Kind > concrete error type (DefineError) > defaults.
func (a *App) ExitCodes() *ExitCodeManager {
	if a.exitCodes == nil {
		a.exitCodes = newExitCodeManager()
	}
	return a.exitCodes
}

// Execution methods

// Parse runs the parse pipeline on args without invoking any action and
// returns the root context. Eager flags still run, so --help yields a
// KindPrintHelp error. On success call Cancel on the result to release its
// Go context; on error it is already released.
func (a *App) Parse(args []string) (*Context, error) {
	return a.execute(context.Background(), args, false)
}

// Run parses command line arguments and executes the appropriate action
func (a *App) Run() error {
	return a.RunContext(context.Background())
}

// RunContext runs the application with a context for cancellation
func (a *App) RunContext(ctx context.Context) error {
	return a.RunWithArgs(ctx, os.Args[1:])
}

// RunWithArgs runs the application with provided arguments. Help, version
// and parse errors are written to the configured streams; the error is
// returned unchanged so callers can map it to an exit code.
func (a *App) RunWithArgs(ctx context.Context, args []string) error {
	// Windows: auto-enable Virtual Terminal (ANSI) when writing to a TTY, unless disabled
	if runtime.GOOS == "windows" && a.IO().IsTTY() && os.Getenv("SNAP_DISABLE_VT") == "" {
		_ = a.IO().EnableVirtualTerminal()
	}

	root, err := a.execute(ctx, args, true)
	if root != nil {
		root.Cancel()
	}
	if err != nil {
		a.handleError(err)
	}
	return err
}

// RunAndGetExitCode executes the app and returns the mapped exit code according
// to ExitCodes(). Useful for embedding in your own main() without os.Exit.
func (a *App) RunAndGetExitCode() int {
	return a.ExitCode(a.Run())
}

// ExitCode maps the result of a run to a process exit code.
func (a *App) ExitCode(err error) int {
	if err == nil {
		return a.ExitCodes().defaults.Success
	}
	return a.ExitCodes().resolve(err)
}

// RunAndExit executes the app and terminates the process with the mapped exit
// code. Equivalent to os.Exit(a.RunAndGetExitCode()).
func (a *App) RunAndExit() {
	os.Exit(a.RunAndGetExitCode())
}

// prepare installs the built-in flags and validates the command tree. Both
// happen once.
func (a *App) prepare() error {
	if !a.builtins {
		a.installBuiltins(a.root)
		a.builtins = true
	}
	return a.root.seal()
}

// installBuiltins adds the eager --help flag to every command and --version
// to the root. Names the user already declared are left alone.
func (a *App) installBuiltins(cmd *Command) {
	if a.helpFlag && !nameTaken(cmd, "--help") {
		help := &Flag{
			Name:        "help",
			Description: "Show this message and exit",
			Type:        FlagTypeBool,
			Eager:       true,
			builtin:     true,
			eagerAction: func(ctx *Context) error {
				return &ParseError{Kind: KindPrintHelp, Command: ctx.command, CommandPath: ctx.CommandPath()}
			},
		}
		if !nameTaken(cmd, "-h") {
			help.Short = 'h'
		}
		cmd.flags = append(cmd.flags, help)
	}

	if cmd == a.root && a.version != "" && !nameTaken(cmd, "--version") {
		cmd.flags = append(cmd.flags, &Flag{
			Name:        "version",
			Description: "Show the version and exit",
			Type:        FlagTypeBool,
			Eager:       true,
			builtin:     true,
			eagerAction: func(ctx *Context) error {
				return ctx.PrintMessage(fmt.Sprintf("%s version %s", a.root.name, a.version))
			},
		})
	}

	for _, sub := range cmd.subcommands {
		a.installBuiltins(sub)
	}
}

func nameTaken(cmd *Command, name string) bool {
	for _, flag := range cmd.flags {
		for _, n := range flag.Names() {
			if n == name {
				return true
			}
		}
	}
	return false
}

// execute is the driver loop. Each level creates a Context, matches its
// tokens, finalizes, optionally runs, and then either recurses into the
// chosen subcommand, hands the rest back to the parent for the next sibling
// subcommand, or stops. Close callbacks of every context run before it
// returns, most recent context first.
func (a *App) execute(parent context.Context, argv []string, run bool) (root *Context, err error) {
	if err := a.prepare(); err != nil {
		return nil, err
	}

	tokens, err := ExpandTokens(argv, a.fileReader)
	if err != nil {
		// @files are expanded before any command is matched, so the error
		// belongs to the root command.
		attachContext(err, newContext(a, a.root, nil, parent, ""))
		return nil, err
	}

	runCtx, cancel := context.WithCancel(parent)
	id := uuid.NewString()

	var contexts []*Context
	defer func() {
		var errs []error
		for i := len(contexts) - 1; i >= 0; i-- {
			if cerr := contexts[i].close(); cerr != nil {
				errs = append(errs, cerr)
			}
		}
		if cerr := errors.Join(errs...); cerr != nil && err == nil {
			err = cerr
		}
		// On success the root context owns cancel.
		if err != nil {
			cancel()
		}
	}()

	var (
		cmd       = a.root
		parentCtx *Context
	)
	for {
		c := newContext(a, cmd, parentCtx, runCtx, id)
		if root == nil {
			c.cancel = cancel
			root = c
		} else {
			parentCtx.children = append(parentCtx.children, c)
		}
		contexts = append(contexts, c)
		c.trace("parse %v", tokenValues(tokens))

		if err := a.step(c, tokens, run); err != nil {
			attachContext(err, c)
			return root, err
		}
		res := c.result

		switch {
		case res.subcommand != nil:
			parentCtx = c
			cmd = res.subcommand
			tokens = res.rest
		case res.sibling:
			sub := parentCtx.command.lookupSubcommand(res.rest[0].Value)
			parentCtx.invoked = append(parentCtx.invoked, sub.name)
			cmd = sub
			tokens = res.rest[1:]
		default:
			if run && a.afterAction != nil {
				if err := a.afterAction(root); err != nil {
					return root, err
				}
			}
			return root, nil
		}
	}
}

// step runs one level of the pipeline for c.
func (a *App) step(c *Context, tokens []Token, run bool) error {
	cmd := c.command
	if cmd.Settings.PrintHelpOnEmptyArgs && len(tokens) == 0 {
		return &ParseError{Kind: KindPrintHelp, Command: cmd, CommandPath: c.CommandPath(), HelpError: true}
	}

	var siblings *Command
	if c.parent != nil && c.parent.command.Settings.AllowMultipleSubcommands {
		siblings = c.parent.command
	}

	res, err := c.match(tokens, siblings)
	if err != nil {
		// An eager flag matched before the error still wins: "--help --bogus"
		// shows help.
		if eagerErr := c.finalizeEager(); eagerErr != nil {
			return eagerErr
		}
		return err
	}
	c.result = res

	if err := c.finalize(res); err != nil {
		return err
	}

	if res.subcommand != nil {
		c.invoked = append(c.invoked, res.subcommand.name)
	} else if len(cmd.subcommands) > 0 && !res.sibling && !cmd.Settings.InvokeWithoutSubcommand {
		return &ParseError{Kind: KindPrintHelp, Command: cmd, CommandPath: c.CommandPath(), HelpError: true}
	}

	if !run {
		return nil
	}
	return a.invoke(c)
}

// invoke runs the hooks and the middleware-wrapped action of c's command.
func (a *App) invoke(c *Context) error {
	cmd := c.command
	if c.parent == nil && a.beforeAction != nil {
		if err := a.beforeAction(c); err != nil {
			return err
		}
	}
	if cmd.beforeAction != nil {
		if err := cmd.beforeAction(c); err != nil {
			return err
		}
	}

	var actionErr error
	if cmd.Action != nil {
		actionErr = a.wrapActionWithMiddleware(cmd.Action, cmd)(c)
	}

	if cmd.afterAction != nil {
		if afterErr := cmd.afterAction(c); afterErr != nil && actionErr == nil {
			actionErr = afterErr
		}
	}

	// If the action requested exit via context, prefer that
	if ee, ok := c.Get("__exit_error__").(*ExitError); ok && ee != nil {
		actionErr = ee
	}
	return actionErr
}

// wrapActionWithMiddleware wraps the action with app-level and command-level middleware
func (a *App) wrapActionWithMiddleware(action ActionFunc, cmd *Command) ActionFunc {
	// Combine app-level and command-level middleware
	allMiddleware := make([]middleware.Middleware, 0, len(a.middleware)+len(cmd.middleware))
	allMiddleware = append(allMiddleware, a.middleware...)
	allMiddleware = append(allMiddleware, cmd.middleware...)

	if len(allMiddleware) == 0 {
		return action
	}

	chain := middleware.Chain(allMiddleware...)

	// Convert snap.ActionFunc to middleware.ActionFunc using an adapter
	middlewareAction := func(ctx middleware.Context) error {
		snapCtx, ok := ctx.(*Context)
		if !ok {
			return newError(KindUsage, "invalid middleware context type %T", ctx)
		}
		return action(snapCtx)
	}

	wrapped := chain.Apply(middlewareAction)
	return func(ctx *Context) error {
		return wrapped(ctx)
	}
}

// handleError writes help, messages and errors to the configured streams.
func (a *App) handleError(err error) {
	var pe *ParseError
	if errors.As(err, &pe) {
		switch pe.Kind {
		case KindPrintHelp:
			w := a.IO().Out()
			if pe.HelpError {
				w = a.IO().Err()
			}
			a.renderHelp(w, pe.Command, pe.CommandPath)
			return
		case KindPrintMessage:
			fmt.Fprintln(a.IO().Out(), pe.Message)
			return
		case KindAbort:
			if pe.Message != "" {
				fmt.Fprintln(a.IO().Err(), pe.Message)
			}
			return
		}
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}
	a.errorHandler.Render(a.IO().Err(), err)
}

func tokenValues(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Value
	}
	return out
}
