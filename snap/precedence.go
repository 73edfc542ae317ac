package snap

// SourceType records where a finalized value came from. Higher sources
// override lower ones: argv > env > value source > prompt > default.
type SourceType int

const (
	SourceNone SourceType = iota
	SourceDefault
	SourcePrompt
	SourceValueSource
	SourceEnv
	SourceArgv
)

func (s SourceType) String() string {
	switch s {
	case SourceDefault:
		return "default"
	case SourcePrompt:
		return "prompt"
	case SourceValueSource:
		return "value source"
	case SourceEnv:
		return "env"
	case SourceArgv:
		return "argv"
	default:
		return "none"
	}
}

// Invocation is one occurrence of an option: the name it was given under
// and the values it consumed. Name is empty for values that did not come
// from the command line.
type Invocation struct {
	Name   string
	Values []string
}

// resolveInvocations walks the precedence chain for one option and
// returns the winning invocations with their source. matched are the argv
// invocations. A nil result with SourceNone means nothing provided a value.
func (c *Context) resolveInvocations(flag *Flag, matched []Invocation) ([]Invocation, SourceType, error) {
	if len(matched) > 0 {
		return matched, SourceArgv, nil
	}

	if invs, ok := c.envInvocations(flag); ok {
		return invs, SourceEnv, nil
	}

	if vs := c.valueSource(); vs != nil {
		invs, err := vs.GetValues(c, flag)
		if err != nil {
			return nil, SourceNone, err
		}
		if len(invs) > 0 {
			c.trace("%s from value source (%d invocations)", flag.DisplayName(), len(invs))
			return invs, SourceValueSource, nil
		}
	}

	if c.shouldPrompt(flag) {
		inv, ok, err := c.prompt(flag)
		if err != nil {
			return nil, SourceNone, err
		}
		if ok {
			return []Invocation{inv}, SourcePrompt, nil
		}
	}

	return nil, SourceNone, nil
}
