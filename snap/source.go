package snap

import (
	"strings"
)

// ValueSource supplies option values that were not given on the command
// line, e.g. from a config file. Returning no invocations means "not set".
type ValueSource interface {
	GetValues(ctx *Context, flag *Flag) ([]Invocation, error)
}

// ValueSourceFunc adapts a function to ValueSource.
type ValueSourceFunc func(ctx *Context, flag *Flag) ([]Invocation, error)

func (f ValueSourceFunc) GetValues(ctx *Context, flag *Flag) ([]Invocation, error) {
	return f(ctx, flag)
}

// ChainedValueSource asks each source in order and returns the first
// non-empty answer. The first error stops the chain.
type ChainedValueSource []ValueSource

func (c ChainedValueSource) GetValues(ctx *Context, flag *Flag) ([]Invocation, error) {
	for _, src := range c {
		if src == nil {
			continue
		}
		invs, err := src.GetValues(ctx, flag)
		if err != nil {
			return nil, err
		}
		if len(invs) > 0 {
			return invs, nil
		}
	}
	return nil, nil
}

// MapValueSource serves values from a flat map keyed by dotted key paths,
// e.g. "server.port" for --port on the "server" subcommand.
type MapValueSource map[string]string

func (m MapValueSource) GetValues(ctx *Context, flag *Flag) ([]Invocation, error) {
	v, ok := m[strings.Join(KeyPath(ctx, flag), ".")]
	if !ok {
		return nil, nil
	}
	return []Invocation{ValueInvocation(flag, v)}, nil
}

// KeyPath is the lookup path of flag within ctx: the command names below
// the root followed by the option key.
func KeyPath(ctx *Context, flag *Flag) []string {
	var path []string
	if ctx != nil {
		if p := ctx.CommandPath(); len(p) > 1 {
			path = append(path, p[1:]...)
		}
	}
	return append(path, flag.key())
}

// ValueInvocation wraps a raw string as a single source invocation. Options
// taking several values per occurrence get it split on whitespace.
func ValueInvocation(flag *Flag, raw string) Invocation {
	if flag.Arity > 1 {
		return Invocation{Values: strings.Fields(raw)}
	}
	return Invocation{Values: []string{raw}}
}
