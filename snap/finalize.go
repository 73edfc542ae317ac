package snap

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// finalize runs EagerFinalize, ValueFinalize, ArgFinalize and GroupValidate
// for one command level. Eager flags may end the parse with a terminal
// error. Value, argument and group problems are collected and returned
// together.
func (c *Context) finalize(res *matchResult) error {
	if err := c.finalizeEager(); err != nil {
		return err
	}

	errs, err := c.finalizeValues()
	if err != nil {
		return err
	}
	errs = append(errs, c.finalizeArgs(res.positional)...)
	errs = append(errs, c.validateGroups()...)
	return joinUsageErrors(errs)
}

// invocationsOf returns the argv invocations of flag in match order.
func (c *Context) invocationsOf(flag *Flag) []Invocation {
	var out []Invocation
	for _, mi := range c.matched {
		if mi.flag == flag {
			out = append(out, mi.inv)
		}
	}
	return out
}

// finalizeEager runs eager flags in the order they were matched, then resolves
// user eager flags argv left unset through env and the value source. An
// unmatched eager flag fires its action only when that value is set and, for
// booleans, true.
func (c *Context) finalizeEager() error {
	done := make(map[*Flag]bool)
	for _, mi := range c.matched {
		flag := mi.flag
		if !flag.Eager || done[flag] {
			continue
		}
		done[flag] = true

		invs := c.invocationsOf(flag)
		value, err := convertFlag(flag, invs)
		if err != nil {
			return badValue(flag, invs, err)
		}
		c.values[flag] = &flagValue{value: value, source: SourceArgv, invs: invs}

		if flag.eagerAction != nil {
			if err := flag.eagerAction(c); err != nil {
				return err
			}
		}
	}

	for _, flag := range c.command.flags {
		if !flag.Eager || done[flag] {
			continue
		}

		if flag.builtin {
			c.storeDefault(flag)
			continue
		}

		invs, source, err := c.resolveInvocations(flag, nil)
		if err != nil {
			return err
		}
		if source == SourceNone {
			c.storeDefault(flag)
			continue
		}

		value, err := convertFlag(flag, invs)
		if err != nil {
			return badValue(flag, invs, err)
		}
		c.values[flag] = &flagValue{value: value, source: source, invs: invs}

		if on, isBool := value.(bool); flag.eagerAction != nil && (on || !isBool) {
			if err := flag.eagerAction(c); err != nil {
				return err
			}
		}
	}
	return nil
}

// finalizeValues resolves every non-eager option in declaration order. The
// returned error is fatal (prompt aborted, value source failure that is not a
// usage problem); usage problems are returned in the slice.
func (c *Context) finalizeValues() ([]*ParseError, error) {
	var errs []*ParseError
	for _, flag := range c.command.flags {
		if flag.Eager {
			continue
		}

		invs, source, err := c.resolveInvocations(flag, c.invocationsOf(flag))
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) && pe.Kind.IsUsage() {
				errs = append(errs, pe)
				continue
			}
			return errs, err
		}

		if source == SourceNone {
			if !flag.hasDefault && flag.Required && !inCoOccurringGroup(flag) {
				err := newError(KindMissingParameter, "missing option %s", flag.DisplayName())
				err.Param = flag.DisplayName()
				errs = append(errs, err)
			}
			c.storeDefault(flag)
			continue
		}

		value, err := convertFlag(flag, invs)
		if err == nil && flag.Validator != nil {
			err = flag.Validator(value)
		}
		if err != nil {
			errs = append(errs, badValue(flag, invs, err))
			continue
		}
		c.values[flag] = &flagValue{value: value, source: source, invs: invs}
	}
	return errs, nil
}

func (c *Context) storeDefault(flag *Flag) {
	if flag.hasDefault {
		c.values[flag] = &flagValue{value: flag.Default, source: SourceDefault}
		return
	}
	c.values[flag] = &flagValue{value: zeroValue(flag.Type), source: SourceNone}
}

func inCoOccurringGroup(flag *Flag) bool {
	return flag.group != nil && flag.group.Constraint == GroupCoOccurring
}

func badValue(flag *Flag, invs []Invocation, cause error) *ParseError {
	name := flag.DisplayName()
	if len(invs) > 0 && invs[len(invs)-1].Name != "" {
		name = invs[len(invs)-1].Name
	}
	err := newError(KindBadParameterValue, "invalid value for %s: %s", name, cause.Error())
	err.Param = name
	err.Cause = cause
	return err
}

// finalizeArgs assigns positionals with resolveArity and converts each
// argument in declaration order.
func (c *Context) finalizeArgs(positional []Token) []*ParseError {
	c.positional = make([]string, len(positional))
	for i, t := range positional {
		c.positional[i] = t.Value
	}

	assigned, excess, perr := resolveArity(c.command.args, positional)
	if perr != nil {
		return []*ParseError{perr}
	}

	var errs []*ParseError
	for _, arg := range c.command.args {
		toks := assigned[arg]
		if len(toks) == 0 {
			switch {
			case arg.IsVariadic() && arg.Required:
				err := newError(KindMissingParameter, "missing argument %s", upper(arg.Name))
				err.Param = upper(arg.Name)
				errs = append(errs, err)
			case arg.hasDefault:
				c.argValues[arg] = arg.Default
				c.argSet[arg] = true
			default:
				c.argValues[arg] = zeroArg(arg.Type)
			}
			continue
		}

		raw := make([]string, len(toks))
		for i, t := range toks {
			raw[i] = t.Value
		}
		value, err := convertArg(arg, raw)
		if err == nil && arg.Validator != nil {
			err = arg.Validator(value)
		}
		if err != nil {
			perr := newError(KindBadParameterValue, "invalid value for %s: %s", upper(arg.Name), err.Error())
			perr.Param = upper(arg.Name)
			perr.Source = toks[0].Source
			perr.Cause = err
			errs = append(errs, perr)
			continue
		}
		c.argValues[arg] = value
		c.argSet[arg] = true
	}

	if len(excess) > 0 {
		errs = append(errs, excessError(c.command, excess))
	}
	return errs
}

// convertFlag turns invocations into the typed value of flag. Scalars take
// the last invocation; slices and counts accumulate.
func convertFlag(flag *Flag, invs []Invocation) (any, error) {
	last := func() string {
		inv := invs[len(invs)-1]
		if len(inv.Values) == 0 {
			return ""
		}
		return inv.Values[0]
	}

	switch flag.Type {
	case FlagTypeBool:
		if len(invs) == 0 || len(invs[len(invs)-1].Values) == 0 {
			return true, nil
		}
		return parseBool(last())

	case FlagTypeCount:
		n := 0
		for _, inv := range invs {
			if len(inv.Values) == 0 {
				n++
				continue
			}
			v, err := parseInt(inv.Values[0])
			if err != nil {
				return nil, err
			}
			n += v
		}
		return n, nil

	case FlagTypeString:
		return last(), nil

	case FlagTypeEnum:
		v := last()
		if !slices.Contains(flag.EnumValues, v) {
			return nil, fmt.Errorf("%q is not one of %s", v, strings.Join(flag.EnumValues, ", "))
		}
		return v, nil

	case FlagTypeInt:
		return parseInt(last())

	case FlagTypeFloat:
		return parseFloat(last())

	case FlagTypeDuration:
		return parseDuration(last())

	case FlagTypeStringSlice:
		out := []string{}
		for _, inv := range invs {
			for _, v := range inv.Values {
				out = append(out, splitList(v)...)
			}
		}
		return out, nil

	case FlagTypeIntSlice:
		out := []int{}
		for _, inv := range invs {
			for _, v := range inv.Values {
				for _, part := range splitList(v) {
					n, err := parseInt(part)
					if err != nil {
						return nil, err
					}
					out = append(out, n)
				}
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported flag type %s", flag.Type)
}

func convertArg(arg *Arg, raw []string) (any, error) {
	switch arg.Type {
	case ArgTypeString:
		return raw[0], nil
	case ArgTypeInt:
		return parseInt(raw[0])
	case ArgTypeFloat:
		return parseFloat(raw[0])
	case ArgTypeBool:
		return parseBool(raw[0])
	case ArgTypeDuration:
		return parseDuration(raw[0])
	case ArgTypeStringSlice:
		return append([]string(nil), raw...), nil
	case ArgTypeIntSlice:
		out := make([]int, 0, len(raw))
		for _, v := range raw {
			n, err := parseInt(v)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported argument type %s", arg.Type)
}

func zeroValue(t FlagType) any {
	switch t {
	case FlagTypeBool:
		return false
	case FlagTypeInt, FlagTypeCount:
		return 0
	case FlagTypeFloat:
		return 0.0
	case FlagTypeDuration:
		return time.Duration(0)
	case FlagTypeStringSlice:
		return []string(nil)
	case FlagTypeIntSlice:
		return []int(nil)
	default:
		return ""
	}
}

func zeroArg(t ArgType) any {
	switch t {
	case ArgTypeBool:
		return false
	case ArgTypeInt:
		return 0
	case ArgTypeFloat:
		return 0.0
	case ArgTypeDuration:
		return time.Duration(0)
	case ArgTypeStringSlice:
		return []string(nil)
	case ArgTypeIntSlice:
		return []int(nil)
	default:
		return ""
	}
}
