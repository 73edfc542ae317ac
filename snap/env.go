package snap

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// EnvReader looks up an environment variable.
type EnvReader func(name string) (string, bool)

// DotEnvReader layers the given .env files under the process environment:
// real variables win, then files in the order given. Missing files are
// skipped.
func DotEnvReader(files ...string) (EnvReader, error) {
	layers := make([]map[string]string, 0, len(files))
	for _, file := range files {
		vars, err := godotenv.Read(file)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, &ParseError{Kind: KindInvalidFileFormat, Message: "invalid env file " + file, Param: file, Cause: err}
		}
		layers = append(layers, vars)
	}
	return func(name string) (string, bool) {
		if v, ok := os.LookupEnv(name); ok {
			return v, true
		}
		for _, vars := range layers {
			if v, ok := vars[name]; ok {
				return v, true
			}
		}
		return "", false
	}, nil
}

// MapEnvReader serves variables from a map, for tests and embedding.
func MapEnvReader(vars map[string]string) EnvReader {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

// autoEnvName derives PREFIX_SUB_KEY for flag in ctx.
func autoEnvName(prefix string, ctx *Context, flag *Flag) string {
	parts := append([]string{prefix}, KeyPath(ctx, flag)...)
	name := strings.ToUpper(strings.Join(parts, "_"))
	return strings.ReplaceAll(name, "-", "_")
}

// envNames lists the variables consulted for flag, explicit ones first.
func (c *Context) envNames(flag *Flag) []string {
	if len(flag.EnvVars) > 0 {
		return flag.EnvVars
	}
	if prefix := c.App.autoEnvPrefix; prefix != "" {
		return []string{autoEnvName(prefix, c, flag)}
	}
	return nil
}

// envInvocations returns the value of the first set variable for flag.
func (c *Context) envInvocations(flag *Flag) ([]Invocation, bool) {
	read := c.envReader()
	if read == nil {
		return nil, false
	}
	for _, name := range c.envNames(flag) {
		if v, ok := read(name); ok {
			c.trace("%s from env %s", flag.DisplayName(), name)
			if flag.IsSlice() && flag.Arity <= 1 {
				return []Invocation{{Values: strings.Fields(v)}}, true
			}
			return []Invocation{ValueInvocation(flag, v)}, true
		}
	}
	return nil, false
}
