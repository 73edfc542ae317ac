package middleware

import (
	"errors"
	"fmt"
	"os"
)

// ValidatorFunc checks business rules before the action runs. Option
// relationships (required, mutually exclusive) belong to flag groups; use
// validators for checks that need external state.
type ValidatorFunc func(ctx Context) error

// NamedValidator associates a human-readable name with a ValidatorFunc for
// clearer error reporting.
type NamedValidator struct {
	Name string
	Fn   ValidatorFunc
}

// Custom wraps an arbitrary ValidatorFunc with a name for reporting.
func Custom(name string, fn ValidatorFunc) NamedValidator {
	return NamedValidator{Name: name, Fn: fn}
}

// File returns a NamedValidator that ensures the given file options name
// existing files.
func File(flagNames ...string) NamedValidator {
	return NamedValidator{Name: "file_exists", Fn: FileExists(flagNames...)}
}

// Dir returns a NamedValidator that ensures the given options name existing
// directories.
func Dir(flagNames ...string) NamedValidator {
	return NamedValidator{Name: "directory_exists", Fn: DirectoryExists(flagNames...)}
}

// Validate runs the validators in order before the action. The first
// failure is returned as a *ValidationError.
//
// Example:
//
//	app.Use(middleware.Validate(
//	    middleware.Custom("port_range", checkPort),
//	    middleware.File("config"),
//	))
func Validate(validators ...NamedValidator) Middleware {
	return func(next ActionFunc) ActionFunc {
		return func(ctx Context) error {
			for _, v := range validators {
				if v.Fn == nil {
					continue
				}
				if err := v.Fn(ctx); err != nil {
					var validationErr *ValidationError
					if errors.As(err, &validationErr) {
						return validationErr
					}
					return &ValidationError{Field: v.Name, Message: "validation failed", Cause: err}
				}
			}
			return next(ctx)
		}
	}
}

// ConditionalRequired requires requiredFlags whenever condition returns nil.
func ConditionalRequired(condition ValidatorFunc, requiredFlags ...string) ValidatorFunc {
	return func(ctx Context) error {
		if condition(ctx) != nil {
			return nil
		}
		for _, name := range requiredFlags {
			if !ctx.IsSet(name) {
				return &ValidationError{Field: name, Message: fmt.Sprintf("option --%s is required here", name)}
			}
		}
		return nil
	}
}

// FileExists checks that every given string option that has a value names
// an existing regular file.
func FileExists(flagNames ...string) ValidatorFunc {
	return pathCheck(flagNames, validateFileExists)
}

// DirectoryExists checks that every given string option that has a value
// names an existing directory.
func DirectoryExists(flagNames ...string) ValidatorFunc {
	return pathCheck(flagNames, validateDirectoryExists)
}

func pathCheck(flagNames []string, check func(string) error) ValidatorFunc {
	return func(ctx Context) error {
		for _, name := range flagNames {
			path, ok := ctx.String(name)
			if !ok || path == "" {
				continue
			}
			if err := check(path); err != nil {
				return &ValidationError{Field: name, Value: path, Message: "invalid path for --" + name, Cause: err}
			}
		}
		return nil
	}
}

func validateFileExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

func validateDirectoryExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}
