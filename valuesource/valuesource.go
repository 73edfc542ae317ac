// Package valuesource provides snap.ValueSource implementations backed by
// configuration files and remote stores. Every source resolves an option by
// the command path below the root plus the option key, e.g. "deploy.region"
// for --region on the deploy subcommand.
package valuesource

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/dzonerzy/snapargv/snap"
)

// Option configures a file source.
type Option func(*options)

type options struct {
	required bool
}

// Required makes a missing file an error instead of an empty source.
func Required() Option {
	return func(o *options) { o.required = true }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// decodeFunc turns file contents into a document of nested maps.
type decodeFunc func(data []byte, path string) (map[string]any, error)

// fileSource loads a document once, on first lookup, and serves options from
// it. JSON, YAML and HCL share it.
type fileSource struct {
	path   string
	opts   options
	decode decodeFunc

	once sync.Once
	doc  map[string]any
	err  error
}

func newFileSource(path string, decode decodeFunc, opts []Option) *fileSource {
	return &fileSource{path: path, opts: buildOptions(opts), decode: decode}
}

func (s *fileSource) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !s.opts.required {
			return
		}
		s.err = readError(s.path, err)
		return
	}
	doc, err := s.decode(data, s.path)
	if err != nil {
		s.err = formatError(s.path, err)
		return
	}
	s.doc = doc
}

// GetValues implements snap.ValueSource.
func (s *fileSource) GetValues(ctx *snap.Context, flag *snap.Flag) ([]snap.Invocation, error) {
	s.once.Do(s.load)
	if s.err != nil {
		return nil, s.err
	}
	v, ok := lookup(s.doc, snap.KeyPath(ctx, flag))
	if !ok {
		return nil, nil
	}
	return invocations(flag, v), nil
}

// lookup walks nested maps along keys. A flat dotted key ("deploy.region")
// at any level also matches.
func lookup(doc map[string]any, keys []string) (any, bool) {
	if doc == nil || len(keys) == 0 {
		return nil, false
	}
	if v, ok := doc[strings.Join(keys, ".")]; ok {
		return v, true
	}
	next, ok := doc[keys[0]]
	if !ok || len(keys) == 1 {
		return next, ok && len(keys) == 1
	}
	child, ok := next.(map[string]any)
	if !ok {
		return nil, false
	}
	return lookup(child, keys[1:])
}

// invocations converts a document value. A list gives one invocation per
// element; an element that is itself a list gives one invocation carrying
// all its values. Nested maps are not option values.
func invocations(flag *snap.Flag, v any) []snap.Invocation {
	switch x := v.(type) {
	case nil, map[string]any:
		return nil
	case []any:
		out := make([]snap.Invocation, 0, len(x))
		for _, elem := range x {
			if inner, ok := elem.([]any); ok {
				values := make([]string, 0, len(inner))
				for _, iv := range inner {
					values = append(values, scalar(iv))
				}
				out = append(out, snap.Invocation{Values: values})
				continue
			}
			out = append(out, snap.Invocation{Values: []string{scalar(elem)}})
		}
		return out
	default:
		return []snap.Invocation{snap.ValueInvocation(flag, scalar(x))}
	}
}

func scalar(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprint(x)
	}
}

func readError(path string, err error) *snap.ParseError {
	kind := snap.KindInvalidFileFormat
	msg := "cannot read " + path
	if errors.Is(err, fs.ErrNotExist) {
		kind = snap.KindFileNotFound
		msg = "file not found: " + path
	}
	return &snap.ParseError{Kind: kind, Message: msg, Param: path, Cause: err}
}

func formatError(path string, err error) *snap.ParseError {
	return &snap.ParseError{
		Kind:    snap.KindInvalidFileFormat,
		Message: fmt.Sprintf("invalid configuration file %s: %s", path, err),
		Param:   path,
		Cause:   err,
	}
}
