package snap

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
)

// FlagParent interface allows App, CommandBuilder and FlagGroupBuilder to be used as flag parents
type FlagParent interface {
	attachFlag(flag *Flag)
}

// FlagType represents the type of a flag
type FlagType string

const (
	// Core types
	FlagTypeString   FlagType = "string"
	FlagTypeBool     FlagType = "bool"
	FlagTypeInt      FlagType = "int"
	FlagTypeDuration FlagType = "duration"
	FlagTypeFloat    FlagType = "float64"
	FlagTypeEnum     FlagType = "enum"
	FlagTypeCount    FlagType = "count"

	// Collection types
	FlagTypeStringSlice FlagType = "[]string"
	FlagTypeIntSlice    FlagType = "[]int"
)

// Flag represents a command-line option with all its properties.
type Flag struct {
	// Name is the primary long name without dashes ("verbose" for --verbose).
	Name        string
	Description string
	Usage       string
	Type        FlagType
	Short       rune
	// Aliases are extra names. Bare names become long options; names that
	// already start with a dash ("-foo") are used verbatim.
	Aliases []string

	// Arity is the number of values consumed per occurrence: 0 for bool and
	// count flags, 1 otherwise. Slice flags may take more.
	Arity int

	Default  any
	Required bool
	Hidden   bool

	// Eager flags are finalized before everything else and may stop the
	// parse (help, version).
	Eager       bool
	eagerAction ActionFunc

	EnvVars        []string
	ValueSourceKey string

	Prompt     string
	HidePrompt bool

	// Enum-specific fields
	EnumValues []string

	// Validator receives the converted value.
	Validator func(any) error

	group      *FlagGroup
	hasDefault bool
	builtin    bool
}

// Names returns every spelling of the flag, dashes included.
func (f *Flag) Names() []string {
	out := make([]string, 0, 2+len(f.Aliases))
	if f.Name != "" {
		if len(f.Name) == 1 && f.Short == 0 {
			out = append(out, "-"+f.Name)
		} else {
			out = append(out, "--"+f.Name)
		}
	}
	for _, a := range f.Aliases {
		if strings.HasPrefix(a, "-") {
			out = append(out, a)
		} else {
			out = append(out, "--"+a)
		}
	}
	if f.Short != 0 {
		out = append(out, "-"+string(f.Short))
	}
	return out
}

// DisplayName is the name used in messages, the first long name if any.
func (f *Flag) DisplayName() string {
	names := f.Names()
	for _, n := range names {
		if strings.HasPrefix(n, "--") {
			return n
		}
	}
	if len(names) > 0 {
		return names[0]
	}
	return f.Name
}

// key is the lookup key for value sources and env derivation.
func (f *Flag) key() string {
	if f.ValueSourceKey != "" {
		return f.ValueSourceKey
	}
	return f.Name
}

// RequiresValue returns true if the flag consumes values on the command line
func (f *Flag) RequiresValue() bool {
	return f.Arity > 0
}

// IsSlice reports whether values accumulate across occurrences.
func (f *Flag) IsSlice() bool {
	return f.Type == FlagTypeStringSlice || f.Type == FlagTypeIntSlice
}

// Group returns the flag group the flag belongs to, or nil.
func (f *Flag) Group() *FlagGroup { return f.group }

func defaultArity(t FlagType) int {
	switch t {
	case FlagTypeBool, FlagTypeCount:
		return 0
	default:
		return 1
	}
}

// Validation helper functions

// ValidateFile creates a validation function for file paths
func ValidateFile(mustExist bool) func(string) error {
	return func(path string) error {
		if path == "" {
			return fmt.Errorf("file path cannot be empty")
		}
		if mustExist {
			if _, err := os.Stat(path); os.IsNotExist(err) {
				return fmt.Errorf("file does not exist: %s", path)
			} else if err != nil {
				return fmt.Errorf("cannot access file %s: %v", path, err)
			}
		}
		return nil
	}
}

// ValidateDir creates a validation function for directory paths
func ValidateDir(mustExist bool) func(string) error {
	return func(path string) error {
		if path == "" {
			return fmt.Errorf("directory path cannot be empty")
		}
		if mustExist {
			info, err := os.Stat(path)
			if os.IsNotExist(err) {
				return fmt.Errorf("directory does not exist: %s", path)
			} else if err != nil {
				return fmt.Errorf("cannot access directory %s: %v", path, err)
			} else if !info.IsDir() {
				return fmt.Errorf("path is not a directory: %s", path)
			}
		}
		return nil
	}
}

// ValidateRegex creates a validation function that validates strings against a regex pattern
func ValidateRegex(pattern string) func(string) error {
	regex, err := regexp.Compile(pattern)
	if err != nil {
		return func(string) error {
			return fmt.Errorf("invalid regex pattern '%s': %v", pattern, err)
		}
	}

	return func(value string) error {
		if !regex.MatchString(value) {
			return fmt.Errorf("value '%s' does not match pattern '%s'", value, pattern)
		}
		return nil
	}
}

// ValidateOneOf creates a validation function that ensures the value is one of the allowed values
func ValidateOneOf[T comparable](values ...T) func(T) error {
	return func(value T) error {
		for _, v := range values {
			if value == v {
				return nil
			}
		}
		return fmt.Errorf("value %v is not one of the allowed values: %v", value, values)
	}
}

// FlagBuilder provides fluent API for configuring flags with type safety
// T is the flag value type, P is the parent type (*App, *CommandBuilder or *FlagGroupBuilder)
type FlagBuilder[T any, P FlagParent] struct {
	flag   *Flag
	parent P
}

func newFlag[T any, P FlagParent](parent P, name, description string, typ FlagType) *FlagBuilder[T, P] {
	flag := &Flag{
		Name:        name,
		Description: description,
		Type:        typ,
		Arity:       defaultArity(typ),
	}
	parent.attachFlag(flag)
	return &FlagBuilder[T, P]{flag: flag, parent: parent}
}

// Flag modifiers - Type-safe configuration methods

// Default sets the default value for the flag
func (f *FlagBuilder[T, P]) Default(value T) *FlagBuilder[T, P] {
	f.flag.Default = value
	f.flag.hasDefault = true
	return f
}

// Required marks the flag as required
func (f *FlagBuilder[T, P]) Required() *FlagBuilder[T, P] {
	f.flag.Required = true
	return f
}

// Short sets a short flag alias (single character)
func (f *FlagBuilder[T, P]) Short(short rune) *FlagBuilder[T, P] {
	f.flag.Short = short
	return f
}

// Alias adds alternative names. "name" adds --name, "-name" is kept as is.
func (f *FlagBuilder[T, P]) Alias(names ...string) *FlagBuilder[T, P] {
	f.flag.Aliases = append(f.flag.Aliases, names...)
	return f
}

// Hidden hides the flag from help output
func (f *FlagBuilder[T, P]) Hidden() *FlagBuilder[T, P] {
	f.flag.Hidden = true
	return f
}

// FromEnv binds the flag to environment variables (checked in precedence order)
func (f *FlagBuilder[T, P]) FromEnv(envVars ...string) *FlagBuilder[T, P] {
	f.flag.EnvVars = envVars
	return f
}

// SourceKey overrides the key used to look the flag up in value sources.
func (f *FlagBuilder[T, P]) SourceKey(key string) *FlagBuilder[T, P] {
	f.flag.ValueSourceKey = key
	return f
}

// Arity sets how many values each occurrence consumes. Only slice flags
// accept an arity above 1.
func (f *FlagBuilder[T, P]) Arity(n int) *FlagBuilder[T, P] {
	f.flag.Arity = n
	return f
}

// Prompt asks for the value interactively when it was not otherwise given.
func (f *FlagBuilder[T, P]) Prompt(text string) *FlagBuilder[T, P] {
	f.flag.Prompt = text
	return f
}

// HideInput reads the prompted value without echo.
func (f *FlagBuilder[T, P]) HideInput() *FlagBuilder[T, P] {
	f.flag.HidePrompt = true
	return f
}

// Eager marks the flag as eager and runs fn when it is given. fn may stop
// the parse by returning a terminal error, see Context.PrintMessage.
func (f *FlagBuilder[T, P]) Eager(fn ActionFunc) *FlagBuilder[T, P] {
	f.flag.Eager = true
	f.flag.eagerAction = fn
	return f
}

// Usage sets a detailed usage description
func (f *FlagBuilder[T, P]) Usage(usage string) *FlagBuilder[T, P] {
	f.flag.Usage = usage
	return f
}

// Validate adds a validation function for the flag value
func (f *FlagBuilder[T, P]) Validate(fn func(T) error) *FlagBuilder[T, P] {
	f.flag.Validator = func(v any) error {
		t, ok := v.(T)
		if !ok {
			return nil
		}
		return fn(t)
	}
	return f
}

// Convenience methods - syntactic sugar over validation functions

// Range sets inclusive min/max validation for numeric flags (int and float64).
// The value must satisfy min <= value <= max.
func Range[T int | float64, P FlagParent](f *FlagBuilder[T, P], min, max T) *FlagBuilder[T, P] {
	return f.Validate(func(value T) error {
		if value < min || value > max {
			return fmt.Errorf("value %v is not within range [%v, %v]", value, min, max)
		}
		return nil
	})
}

// OneOf sets validation to ensure the value is one of the allowed values (for string flags)
func OneOf[P FlagParent](f *FlagBuilder[string, P], values ...string) *FlagBuilder[string, P] {
	return f.Validate(ValidateOneOf(values...))
}

// File sets file path validation for string flags
func File[P FlagParent](f *FlagBuilder[string, P], mustExist bool) *FlagBuilder[string, P] {
	return f.Validate(ValidateFile(mustExist))
}

// Dir sets directory path validation for string flags
func Dir[P FlagParent](f *FlagBuilder[string, P], mustExist bool) *FlagBuilder[string, P] {
	return f.Validate(ValidateDir(mustExist))
}

// Regex sets regex pattern validation for string flags
func Regex[P FlagParent](f *FlagBuilder[string, P], pattern string) *FlagBuilder[string, P] {
	return f.Validate(ValidateRegex(pattern))
}

// Back returns to the parent builder context for continued chaining.
func (f *FlagBuilder[T, P]) Back() P {
	return f.parent
}

// Flag returns the flag under construction.
func (f *FlagBuilder[T, P]) Flag() *Flag {
	return f.flag
}

// Typed constructors shared by every FlagParent.

func stringFlag[P FlagParent](p P, name, desc string) *FlagBuilder[string, P] {
	return newFlag[string](p, name, desc, FlagTypeString)
}

func intFlag[P FlagParent](p P, name, desc string) *FlagBuilder[int, P] {
	return newFlag[int](p, name, desc, FlagTypeInt)
}

func boolFlag[P FlagParent](p P, name, desc string) *FlagBuilder[bool, P] {
	return newFlag[bool](p, name, desc, FlagTypeBool)
}

func countFlag[P FlagParent](p P, name, desc string) *FlagBuilder[int, P] {
	return newFlag[int](p, name, desc, FlagTypeCount)
}

func durationFlag[P FlagParent](p P, name, desc string) *FlagBuilder[time.Duration, P] {
	return newFlag[time.Duration](p, name, desc, FlagTypeDuration)
}

func floatFlag[P FlagParent](p P, name, desc string) *FlagBuilder[float64, P] {
	return newFlag[float64](p, name, desc, FlagTypeFloat)
}

func enumFlag[P FlagParent](p P, name, desc string, values []string) *FlagBuilder[string, P] {
	b := newFlag[string](p, name, desc, FlagTypeEnum)
	b.flag.EnumValues = values
	return b
}

func stringSliceFlag[P FlagParent](p P, name, desc string) *FlagBuilder[[]string, P] {
	return newFlag[[]string](p, name, desc, FlagTypeStringSlice)
}

func intSliceFlag[P FlagParent](p P, name, desc string) *FlagBuilder[[]int, P] {
	return newFlag[[]int](p, name, desc, FlagTypeIntSlice)
}
