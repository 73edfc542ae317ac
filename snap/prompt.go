package snap

import (
	"fmt"
	"strings"
)

const promptAttempts = 3

// shouldPrompt reports whether a missing value for flag is asked for
// interactively. Prompting only happens on a terminal; elsewhere a missing
// required option is a usage error.
func (c *Context) shouldPrompt(flag *Flag) bool {
	if flag.Prompt == "" && (!flag.Required || flag.hasDefault) {
		return false
	}
	return c.IO().IsInteractive()
}

// prompt reads a value for flag. An empty answer falls back to the default
// when there is one. The answer is converted right away so a bad value can
// be retried.
func (c *Context) prompt(flag *Flag) (Invocation, bool, error) {
	text := flag.Prompt
	if text == "" {
		text = strings.ReplaceAll(flag.Name, "-", " ")
		if text != "" {
			text = strings.ToUpper(text[:1]) + text[1:]
		}
	}
	if flag.hasDefault && !flag.HidePrompt {
		text = fmt.Sprintf("%s [%v]", text, flag.Default)
	}

	io := c.IO()
	for attempt := 0; attempt < promptAttempts; attempt++ {
		fmt.Fprintf(io.Out(), "%s: ", text)

		var (
			line string
			err  error
		)
		if flag.HidePrompt {
			line, err = io.ReadSecret()
			fmt.Fprintln(io.Out())
		} else {
			line, err = io.ReadLine()
		}
		if err != nil {
			return Invocation{}, false, &ParseError{Kind: KindAbort, Message: "aborted", Param: flag.DisplayName(), Cause: err}
		}

		if line == "" {
			if flag.hasDefault || !flag.Required {
				return Invocation{}, false, nil
			}
			fmt.Fprintln(io.Err(), "Error: a value is required")
			continue
		}

		inv := ValueInvocation(flag, line)
		value, err := convertFlag(flag, []Invocation{inv})
		if err == nil && flag.Validator != nil {
			err = flag.Validator(value)
		}
		if err != nil {
			fmt.Fprintf(io.Err(), "Error: %s\n", err)
			continue
		}
		return inv, true, nil
	}
	return Invocation{}, false, &ParseError{
		Kind:    KindAbort,
		Message: fmt.Sprintf("no valid value for %s after %d attempts", flag.DisplayName(), promptAttempts),
		Param:   flag.DisplayName(),
	}
}
