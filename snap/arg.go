package snap

import (
	"time"
)

// ArgType represents the type of a positional argument
type ArgType string

const (
	// ArgTypeString indicates a string-valued argument.
	ArgTypeString ArgType = "string"
	// ArgTypeBool indicates a boolean argument.
	ArgTypeBool ArgType = "bool"
	// ArgTypeInt indicates an integer argument.
	ArgTypeInt ArgType = "int"
	// ArgTypeDuration indicates a time.Duration argument.
	ArgTypeDuration ArgType = "duration"
	// ArgTypeFloat indicates a float64 argument.
	ArgTypeFloat ArgType = "float64"
	// ArgTypeStringSlice indicates a []string argument.
	ArgTypeStringSlice ArgType = "[]string"
	// ArgTypeIntSlice indicates a []int argument.
	ArgTypeIntSlice ArgType = "[]int"
)

// Arg represents a positional command-line argument with all its properties
type Arg struct {
	Name        string
	Description string
	Type        ArgType
	Position    int // 0-indexed position

	// Nargs is the number of tokens taken: a positive fixed count, or a
	// value <= 0 for a variadic argument that takes all spare tokens.
	Nargs int

	Required bool
	Default  any

	// Validator receives the converted value.
	Validator func(any) error

	hasDefault bool
}

// IsRequired returns true if the argument is required
func (a *Arg) IsRequired() bool {
	return a.Required
}

// IsVariadic returns true if the argument accepts any number of values
func (a *Arg) IsVariadic() bool {
	return a.Nargs <= 0
}

// Metavar is the argument name as shown in usage lines.
func (a *Arg) Metavar() string {
	name := upper(a.Name)
	switch {
	case a.IsVariadic():
		name += "..."
	case a.Nargs > 1:
		name += "..."
	}
	if !a.Required {
		return "[" + name + "]"
	}
	return name
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		switch {
		case c >= 'a' && c <= 'z':
			b[i] = c - 32
		case c == '-':
			b[i] = '_'
		}
	}
	return string(b)
}

// ArgBuilder provides a fluent interface for building positional arguments
type ArgBuilder[T any] struct {
	arg       *Arg
	parentApp *App            // Set if parent is *App
	parentCmd *CommandBuilder // Set if parent is *CommandBuilder
}

// Required marks the argument as required
func (b *ArgBuilder[T]) Required() *ArgBuilder[T] {
	b.arg.Required = true
	return b
}

// Optional lets the argument be omitted. Optional arguments without a
// default convert to the zero value.
func (b *ArgBuilder[T]) Optional() *ArgBuilder[T] {
	b.arg.Required = false
	return b
}

// Default sets the default value and makes the argument optional
func (b *ArgBuilder[T]) Default(value T) *ArgBuilder[T] {
	b.arg.Required = false
	b.arg.Default = value
	b.arg.hasDefault = true
	return b
}

// Nargs sets the number of tokens taken. n <= 0 makes the argument variadic.
func (b *ArgBuilder[T]) Nargs(n int) *ArgBuilder[T] {
	b.arg.Nargs = n
	return b
}

// Variadic makes the argument take every spare token.
func (b *ArgBuilder[T]) Variadic() *ArgBuilder[T] {
	b.arg.Nargs = -1
	return b
}

// Validate adds a validation function for the argument
func (b *ArgBuilder[T]) Validate(fn func(T) error) *ArgBuilder[T] {
	b.arg.Validator = func(v any) error {
		t, ok := v.(T)
		if !ok {
			return nil
		}
		return fn(t)
	}
	return b
}

// App returns to the parent App builder (panics if parent is not *App)
func (b *ArgBuilder[T]) App() *App {
	if b.parentApp != nil {
		return b.parentApp
	}
	panic("ArgBuilder parent is not *App")
}

// Command returns to the parent CommandBuilder (panics if parent is not *CommandBuilder)
func (b *ArgBuilder[T]) Command() *CommandBuilder {
	if b.parentCmd != nil {
		return b.parentCmd
	}
	panic("ArgBuilder parent is not *CommandBuilder")
}

// Arg returns the argument under construction.
func (b *ArgBuilder[T]) Arg() *Arg {
	return b.arg
}

// newArg appends a new argument to cmd. Fixed arguments start out
// required, slice arguments start out variadic and optional.
func newArg[T any](cmd *Command, name, description string, typ ArgType) *ArgBuilder[T] {
	arg := &Arg{
		Name:        name,
		Description: description,
		Type:        typ,
		Position:    len(cmd.args),
		Nargs:       1,
		Required:    true,
	}
	if typ == ArgTypeStringSlice || typ == ArgTypeIntSlice {
		arg.Nargs = -1
		arg.Required = false
	}
	cmd.args = append(cmd.args, arg)
	return &ArgBuilder[T]{arg: arg}
}

func stringArg(cmd *Command, name, desc string) *ArgBuilder[string] {
	return newArg[string](cmd, name, desc, ArgTypeString)
}

func intArg(cmd *Command, name, desc string) *ArgBuilder[int] {
	return newArg[int](cmd, name, desc, ArgTypeInt)
}

func boolArg(cmd *Command, name, desc string) *ArgBuilder[bool] {
	return newArg[bool](cmd, name, desc, ArgTypeBool)
}

func floatArg(cmd *Command, name, desc string) *ArgBuilder[float64] {
	return newArg[float64](cmd, name, desc, ArgTypeFloat)
}

func durationArg(cmd *Command, name, desc string) *ArgBuilder[time.Duration] {
	return newArg[time.Duration](cmd, name, desc, ArgTypeDuration)
}

func stringSliceArg(cmd *Command, name, desc string) *ArgBuilder[[]string] {
	return newArg[[]string](cmd, name, desc, ArgTypeStringSlice)
}

func intSliceArg(cmd *Command, name, desc string) *ArgBuilder[[]int] {
	return newArg[[]int](cmd, name, desc, ArgTypeIntSlice)
}
