package snap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dzonerzy/snapargv/internal/names"
	"github.com/dzonerzy/snapargv/middleware"
)

// Settings control how a command matches its tokens.
type Settings struct {
	// AllowInterspersedArgs lets options follow positional arguments.
	// When false, everything after the first positional is positional.
	AllowInterspersedArgs bool
	// AllowMultipleSubcommands dispatches sibling subcommands in sequence:
	// "app a --x b --y" runs a then b.
	AllowMultipleSubcommands bool
	// TreatUnknownOptionsAsArgs turns unknown options into positionals.
	TreatUnknownOptionsAsArgs bool
	// InvokeWithoutSubcommand runs the command even when none of its
	// subcommands was given.
	InvokeWithoutSubcommand bool
	// PrintHelpOnEmptyArgs shows help when the command gets no tokens.
	PrintHelpOnEmptyArgs bool
}

func defaultSettings() Settings {
	return Settings{AllowInterspersedArgs: true}
}

// Command represents a CLI command or subcommand
type Command struct {
	name        string
	description string
	HelpText    string
	Aliases     []string
	Hidden      bool
	Settings    Settings

	flags       []*Flag
	args        []*Arg
	subcommands []*Command
	flagGroups  []*FlagGroup
	parent      *Command

	Action       ActionFunc
	beforeAction ActionFunc              // Runs before the action
	afterAction  ActionFunc              // Runs after the action
	middleware   []middleware.Middleware // Command-level middleware

	// Filled by seal.
	sealed   bool
	byName   map[string]*Flag
	index    names.Index
	subs     map[string]*Command
	subIndex names.Index
}

func newCommand(name, description string) *Command {
	return &Command{
		name:        name,
		description: description,
		Settings:    defaultSettings(),
	}
}

// Name returns the command name (implements middleware.Command interface)
func (c *Command) Name() string {
	return c.name
}

// Description returns the command description (implements middleware.Command interface)
func (c *Command) Description() string {
	return c.description
}

// Flags returns the declared flags in declaration order.
func (c *Command) Flags() []*Flag { return c.flags }

// Args returns the declared positional arguments in declaration order.
func (c *Command) Args() []*Arg { return c.args }

// Subcommands returns the child commands in declaration order.
func (c *Command) Subcommands() []*Command { return c.subcommands }

// Parent returns the enclosing command, nil for the root.
func (c *Command) Parent() *Command { return c.parent }

// Path returns the names from the root down to c.
func (c *Command) Path() []string {
	var path []string
	for cmd := c; cmd != nil; cmd = cmd.parent {
		path = append(path, cmd.name)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// lookupFlag finds a flag by one of its dashed names.
func (c *Command) lookupFlag(name string) *Flag {
	return c.byName[name]
}

// lookupSubcommand finds a child by name or alias.
func (c *Command) lookupSubcommand(name string) *Command {
	return c.subs[name]
}

// seal validates the declaration and builds the lookup tables. It runs once,
// on the first parse, and recurses into subcommands.
func (c *Command) seal() error {
	if c.sealed {
		return nil
	}

	c.byName = make(map[string]*Flag, len(c.flags)*2)
	for _, flag := range c.flags {
		if flag.Name == "" && flag.Short == 0 && len(flag.Aliases) == 0 {
			return c.declErr("flag without a name")
		}
		if flag.Arity < 0 {
			return c.declErr("option %s has negative arity", flag.DisplayName())
		}
		if flag.Arity > 1 && !flag.IsSlice() {
			return c.declErr("option %s: only slice options take more than one value", flag.DisplayName())
		}
		for _, n := range flag.Names() {
			if _, dup := c.byName[n]; dup {
				return c.declErr("duplicate option name %s", n)
			}
			c.byName[n] = flag
			if !flag.Hidden {
				c.index.Add(n)
			}
		}
	}

	variadic := 0
	seen := make(map[string]bool, len(c.args))
	for _, arg := range c.args {
		if arg.Nargs == 0 {
			return c.declErr("argument %s: nargs cannot be 0", upper(arg.Name))
		}
		if arg.IsVariadic() {
			variadic++
		}
		if arg.Nargs > 1 && arg.Type != ArgTypeStringSlice && arg.Type != ArgTypeIntSlice {
			return c.declErr("argument %s: only slice arguments take more than one value", upper(arg.Name))
		}
		if seen[arg.Name] {
			return c.declErr("duplicate argument name %s", upper(arg.Name))
		}
		seen[arg.Name] = true
	}
	if variadic > 1 {
		return c.declErr("only one argument can be variadic")
	}

	c.subs = make(map[string]*Command, len(c.subcommands))
	for _, sub := range c.subcommands {
		for _, n := range append([]string{sub.name}, sub.Aliases...) {
			if _, dup := c.subs[n]; dup {
				return c.declErr("duplicate subcommand name %s", n)
			}
			c.subs[n] = sub
			if !sub.Hidden {
				c.subIndex.Add(n)
			}
		}
		if err := sub.seal(); err != nil {
			return err
		}
	}

	c.sealed = true
	return nil
}

func (c *Command) declErr(format string, args ...any) *ParseError {
	err := &ParseError{
		Kind:        KindInvalidDeclaration,
		Message:     fmt.Sprintf("%s: %s", strings.Join(c.Path(), " "), fmt.Sprintf(format, args...)),
		Command:     c,
		CommandPath: c.Path(),
	}
	return err
}

// CommandBuilder provides fluent API for building commands
type CommandBuilder struct {
	command *Command
	app     *App
}

// Command configuration methods

// Alias adds aliases for the command
func (c *CommandBuilder) Alias(aliases ...string) *CommandBuilder {
	c.command.Aliases = append(c.command.Aliases, aliases...)
	return c
}

// Action sets the action function for the command
func (c *CommandBuilder) Action(fn ActionFunc) *CommandBuilder {
	c.command.Action = fn
	return c
}

// Hidden marks the command as hidden from help
func (c *CommandBuilder) Hidden() *CommandBuilder {
	c.command.Hidden = true
	return c
}

// HelpText sets detailed help text for the command
func (c *CommandBuilder) HelpText(help string) *CommandBuilder {
	c.command.HelpText = help
	return c
}

// Use adds middleware to the command
func (c *CommandBuilder) Use(middleware ...middleware.Middleware) *CommandBuilder {
	c.command.middleware = append(c.command.middleware, middleware...)
	return c
}

// Before sets a function to run before the command action
func (c *CommandBuilder) Before(fn ActionFunc) *CommandBuilder {
	c.command.beforeAction = fn
	return c
}

// After sets a function to run after the command action
func (c *CommandBuilder) After(fn ActionFunc) *CommandBuilder {
	c.command.afterAction = fn
	return c
}

// Settings

// DisallowInterspersedArgs treats everything after the first positional as positional.
func (c *CommandBuilder) DisallowInterspersedArgs() *CommandBuilder {
	c.command.Settings.AllowInterspersedArgs = false
	return c
}

// AllowMultipleSubcommands lets several subcommands run in one invocation.
func (c *CommandBuilder) AllowMultipleSubcommands() *CommandBuilder {
	c.command.Settings.AllowMultipleSubcommands = true
	return c
}

// TreatUnknownOptionsAsArgs passes unknown options through as positionals.
func (c *CommandBuilder) TreatUnknownOptionsAsArgs() *CommandBuilder {
	c.command.Settings.TreatUnknownOptionsAsArgs = true
	return c
}

// InvokeWithoutSubcommand runs the action even when no subcommand is given.
func (c *CommandBuilder) InvokeWithoutSubcommand() *CommandBuilder {
	c.command.Settings.InvokeWithoutSubcommand = true
	return c
}

// PrintHelpOnEmptyArgs shows help when the command gets no tokens at all.
func (c *CommandBuilder) PrintHelpOnEmptyArgs() *CommandBuilder {
	c.command.Settings.PrintHelpOnEmptyArgs = true
	return c
}

// Flag builders for command-specific flags

func (c *CommandBuilder) StringFlag(name, description string) *FlagBuilder[string, *CommandBuilder] {
	return stringFlag(c, name, description)
}

func (c *CommandBuilder) IntFlag(name, description string) *FlagBuilder[int, *CommandBuilder] {
	return intFlag(c, name, description)
}

func (c *CommandBuilder) BoolFlag(name, description string) *FlagBuilder[bool, *CommandBuilder] {
	return boolFlag(c, name, description)
}

// CountFlag adds a flag counting its occurrences (-vvv is 3)
func (c *CommandBuilder) CountFlag(name, description string) *FlagBuilder[int, *CommandBuilder] {
	return countFlag(c, name, description)
}

func (c *CommandBuilder) DurationFlag(name, description string) *FlagBuilder[time.Duration, *CommandBuilder] {
	return durationFlag(c, name, description)
}

func (c *CommandBuilder) FloatFlag(name, description string) *FlagBuilder[float64, *CommandBuilder] {
	return floatFlag(c, name, description)
}

func (c *CommandBuilder) EnumFlag(name, description string, values ...string) *FlagBuilder[string, *CommandBuilder] {
	return enumFlag(c, name, description, values)
}

func (c *CommandBuilder) StringSliceFlag(name, description string) *FlagBuilder[[]string, *CommandBuilder] {
	return stringSliceFlag(c, name, description)
}

func (c *CommandBuilder) IntSliceFlag(name, description string) *FlagBuilder[[]int, *CommandBuilder] {
	return intSliceFlag(c, name, description)
}

// Positional argument methods

// StringArg adds a string positional argument to the command
func (c *CommandBuilder) StringArg(name, description string) *ArgBuilder[string] {
	b := stringArg(c.command, name, description)
	b.parentCmd = c
	return b
}

// IntArg adds an integer positional argument to the command
func (c *CommandBuilder) IntArg(name, description string) *ArgBuilder[int] {
	b := intArg(c.command, name, description)
	b.parentCmd = c
	return b
}

// BoolArg adds a boolean positional argument to the command
func (c *CommandBuilder) BoolArg(name, description string) *ArgBuilder[bool] {
	b := boolArg(c.command, name, description)
	b.parentCmd = c
	return b
}

// FloatArg adds a float64 positional argument to the command
func (c *CommandBuilder) FloatArg(name, description string) *ArgBuilder[float64] {
	b := floatArg(c.command, name, description)
	b.parentCmd = c
	return b
}

// DurationArg adds a duration positional argument to the command
func (c *CommandBuilder) DurationArg(name, description string) *ArgBuilder[time.Duration] {
	b := durationArg(c.command, name, description)
	b.parentCmd = c
	return b
}

// StringSliceArg adds a variadic string argument. Use Nargs for a fixed count.
func (c *CommandBuilder) StringSliceArg(name, description string) *ArgBuilder[[]string] {
	b := stringSliceArg(c.command, name, description)
	b.parentCmd = c
	return b
}

// IntSliceArg adds a variadic int argument. Use Nargs for a fixed count.
func (c *CommandBuilder) IntSliceArg(name, description string) *ArgBuilder[[]int] {
	b := intSliceArg(c.command, name, description)
	b.parentCmd = c
	return b
}

// Subcommand builder

// Command adds a subcommand to this command
func (c *CommandBuilder) Command(name, description string) *CommandBuilder {
	cmd := newCommand(name, description)
	cmd.parent = c.command
	c.command.subcommands = append(c.command.subcommands, cmd)
	return &CommandBuilder{command: cmd, app: c.app}
}

// FlagParent interface implementation

func (c *CommandBuilder) attachFlag(flag *Flag) {
	c.command.flags = append(c.command.flags, flag)
}

// addFlagGroup adds a flag group to the command (implements FlagGroupParent interface)
func (c *CommandBuilder) addFlagGroup(group *FlagGroup) {
	c.command.flagGroups = append(c.command.flagGroups, group)
}

// FlagGroup creates a new flag group builder for the command
func (c *CommandBuilder) FlagGroup(name string) *FlagGroupBuilder[*CommandBuilder] {
	return newFlagGroup(c, name)
}

// Builder termination

// App returns to the app for continued chaining
func (c *CommandBuilder) App() *App {
	return c.app
}

// Parent returns the builder of the enclosing command, or nil at top level.
func (c *CommandBuilder) Parent() *CommandBuilder {
	if c.command.parent == nil || c.command.parent == c.app.root {
		return nil
	}
	return &CommandBuilder{command: c.command.parent, app: c.app}
}

// Build returns the command being built.
func (c *CommandBuilder) Build() *Command {
	return c.command
}
