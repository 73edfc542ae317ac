package snap

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// ImportFlagSet declares an option on the root command for every flag in fs,
// so programs migrating from pflag keep their flag definitions. Types pflag
// does not share with this package become string options.
func (a *App) ImportFlagSet(fs *pflag.FlagSet) error {
	var firstErr error
	fs.VisitAll(func(pf *pflag.Flag) {
		if firstErr != nil {
			return
		}
		flag, err := flagFromPflag(pf)
		if err != nil {
			firstErr = err
			return
		}
		a.attachFlag(flag)
	})
	return firstErr
}

func flagFromPflag(pf *pflag.Flag) (*Flag, error) {
	flag := &Flag{
		Name:        pf.Name,
		Description: pf.Usage,
		Hidden:      pf.Hidden,
	}
	if pf.Shorthand != "" {
		flag.Short = []rune(pf.Shorthand)[0]
	}

	switch pf.Value.Type() {
	case "bool":
		flag.Type = FlagTypeBool
	case "count":
		flag.Type = FlagTypeCount
	case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
		flag.Type = FlagTypeInt
	case "float32", "float64":
		flag.Type = FlagTypeFloat
	case "duration":
		flag.Type = FlagTypeDuration
	case "stringSlice", "stringArray":
		flag.Type = FlagTypeStringSlice
	case "intSlice":
		flag.Type = FlagTypeIntSlice
	default:
		flag.Type = FlagTypeString
	}
	flag.Arity = defaultArity(flag.Type)

	def, ok, err := pflagDefault(flag.Type, pf.DefValue)
	if err != nil {
		return nil, fmt.Errorf("flag --%s: default %q: %w", pf.Name, pf.DefValue, err)
	}
	if ok {
		flag.Default = def
		flag.hasDefault = true
	}
	return flag, nil
}

// pflagDefault converts pflag's textual default. Zero defaults are dropped
// so the option reports SourceNone until something sets it.
func pflagDefault(t FlagType, raw string) (any, bool, error) {
	switch t {
	case FlagTypeBool:
		v, err := parseBool(raw)
		return v, err == nil && v, err
	case FlagTypeInt, FlagTypeCount:
		v, err := parseInt(raw)
		return v, err == nil && v != 0, err
	case FlagTypeFloat:
		v, err := parseFloat(raw)
		return v, err == nil && v != 0, err
	case FlagTypeDuration:
		v, err := parseDuration(raw)
		return v, err == nil && v != 0, err
	case FlagTypeStringSlice:
		items := splitList(strings.Trim(raw, "[]"))
		return items, len(items) > 0, nil
	case FlagTypeIntSlice:
		out := []int{}
		for _, s := range splitList(strings.Trim(raw, "[]")) {
			n, err := parseInt(s)
			if err != nil {
				return nil, false, err
			}
			out = append(out, n)
		}
		return out, len(out) > 0, nil
	default:
		return raw, raw != "", nil
	}
}

// ApplyToFlagSet copies every option value that came from argv, the
// environment, a value source or a prompt into the matching flag of fs.
// Flags fs does not know are skipped.
func (c *Context) ApplyToFlagSet(fs *pflag.FlagSet) error {
	for _, flag := range c.command.flags {
		fv := c.values[flag]
		if fv == nil || fv.source <= SourceDefault || flag.builtin {
			continue
		}
		pf := fs.Lookup(flag.Name)
		if pf == nil {
			continue
		}
		for _, s := range pflagStrings(fv.value) {
			if err := fs.Set(pf.Name, s); err != nil {
				return fmt.Errorf("flag --%s: %w", pf.Name, err)
			}
		}
	}
	return nil
}

func pflagStrings(v any) []string {
	switch x := v.(type) {
	case []string:
		return x
	case []int:
		out := make([]string, len(x))
		for i, n := range x {
			out[i] = fmt.Sprint(n)
		}
		return out
	case time.Duration:
		return []string{x.String()}
	default:
		return []string{fmt.Sprint(x)}
	}
}
