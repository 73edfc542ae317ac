package snap

import (
	"errors"
	"reflect"

	"github.com/dzonerzy/snapargv/middleware"
)

// ExitError is a sentinel used to request a specific exit code from inside actions.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "exit"
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCodeDefaults holds common default codes.
type ExitCodeDefaults struct {
	Success         int // default: 0
	UsageError      int // default: 1
	PrintAndExit    int // default: 0
	GeneralError    int // default: 1
	ValidationError int // default: 3
}

func defaultExitDefaults() ExitCodeDefaults {
	return ExitCodeDefaults{Success: 0, UsageError: 1, PrintAndExit: 0, GeneralError: 1, ValidationError: 3}
}

// ExitCodeManager maps errors and kinds to process exit codes.
type ExitCodeManager struct {
	codesByKind map[ErrorKind]int
	codesByType map[reflect.Type]int
	defaults    ExitCodeDefaults
}

func newExitCodeManager() *ExitCodeManager {
	m := &ExitCodeManager{
		codesByKind: make(map[ErrorKind]int),
		codesByType: make(map[reflect.Type]int),
		defaults:    defaultExitDefaults(),
	}
	// Prewire middleware types
	m.codesByType[reflect.TypeOf(&middleware.TimeoutError{})] = m.defaults.GeneralError
	m.codesByType[reflect.TypeOf(&middleware.ValidationError{})] = m.defaults.ValidationError
	m.codesByType[reflect.TypeOf(&middleware.RecoveryError{})] = m.defaults.GeneralError
	return m
}

// Kind overrides the exit code used for every ParseError of the given kind.
func (e *ExitCodeManager) Kind(kind ErrorKind, code int) *ExitCodeManager {
	e.codesByKind[kind] = code
	return e
}

// DefineError maps a concrete error value (by its dynamic type) to an exit
// code. A matching error type takes precedence over the default codes but is
// secondary to an explicit ExitError requested by the action.
func (e *ExitCodeManager) DefineError(err error, code int) *ExitCodeManager {
	if err == nil {
		return e
	}
	e.codesByType[reflect.TypeOf(err)] = code
	return e
}

// Default replaces the manager's default codes.
func (e *ExitCodeManager) Default(d ExitCodeDefaults) *ExitCodeManager {
	e.defaults = d
	return e
}

// resolve converts an error to an exit code according to registered mappings.
// Precedence:
//  1. ExitError (requested code)
//  2. ParseError instance override (WithExitCode)
//  3. ErrorKind mapping (Kind)
//  4. ErrorKind default (usage, print-and-exit)
//  5. Concrete error type mapping (DefineError)
//  6. GeneralError
//
// A MultiUsageError resolves through its first error.
func (e *ExitCodeManager) resolve(err error) int {
	if err == nil {
		return e.defaults.Success
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var pe *ParseError
	if errors.As(err, &pe) {
		if code, ok := pe.ExitCode(); ok {
			return code
		}
		if code, ok := e.codesByKind[pe.Kind]; ok {
			return code
		}
		switch {
		case pe.Kind == KindPrintHelp && pe.HelpError:
			return e.defaults.UsageError
		case pe.Kind.IsTerminal():
			return e.defaults.PrintAndExit
		case pe.Kind.IsUsage():
			return e.defaults.UsageError
		case pe.Kind == KindAbort:
			return e.defaults.UsageError
		}
		return e.defaults.GeneralError
	}

	for t, code := range e.codesByType {
		if errors.As(err, reflect.New(t).Interface()) {
			return code
		}
	}

	return e.defaults.GeneralError
}
