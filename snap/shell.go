package snap

import (
	"context"

	"github.com/google/shlex"
)

// SplitCommandLine splits a shell-like command line into argv. Quotes and
// backslash escapes follow POSIX shell rules; "#" starts a comment.
func SplitCommandLine(line string) ([]string, error) {
	args, err := shlex.Split(line)
	if err != nil {
		return nil, &ParseError{Kind: KindUsage, Message: "cannot split command line: " + err.Error(), Cause: err}
	}
	return args, nil
}

// RunString runs the application with argv taken from a command line string,
// e.g. from a REPL or a config entry.
func (a *App) RunString(ctx context.Context, line string) error {
	args, err := SplitCommandLine(line)
	if err != nil {
		a.handleError(err)
		return err
	}
	return a.RunWithArgs(ctx, args)
}

// ParseString is Parse for a command line string.
func (a *App) ParseString(line string) (*Context, error) {
	args, err := SplitCommandLine(line)
	if err != nil {
		return nil, err
	}
	return a.Parse(args)
}
