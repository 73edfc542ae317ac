package snap

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dzonerzy/snapargv/internal/fuzzy"
)

// matchResult is the outcome of scanning one command's tokens.
type matchResult struct {
	positional []Token

	// subcommand is set when a child name ended the scan; rest holds the
	// tokens after that name.
	subcommand *Command
	subName    string

	// sibling is set when a sibling name ended the scan; rest starts with
	// the sibling's name and goes back to the parent.
	sibling bool

	rest []Token
}

// matcher scans tokens for one command. It records option invocations on
// the context and collects positionals; it never converts values.
type matcher struct {
	ctx      *Context
	cmd      *Command
	siblings *Command
	tokens   []Token
	i        int
	res      matchResult
}

// match runs the Matching stage for ctx's command. siblings is the parent
// command when it allows multiple subcommands, nil otherwise.
func (c *Context) match(tokens []Token, siblings *Command) (*matchResult, error) {
	m := &matcher{ctx: c, cmd: c.command, siblings: siblings, tokens: tokens}
	if err := m.run(); err != nil {
		return nil, err
	}
	return &m.res, nil
}

func (m *matcher) run() error {
	optionsOff := false
	for m.i < len(m.tokens) {
		if m.positionalOnly() {
			m.res.positional = append(m.res.positional, m.tokens[m.i:]...)
			m.i = len(m.tokens)
			break
		}

		tok := m.tokens[m.i]
		v := tok.Value

		if !optionsOff {
			switch {
			case v == "--":
				optionsOff = true
				m.i++
				continue
			case m.isLong(v):
				if err := m.matchLong(tok); err != nil {
					return err
				}
				continue
			case len(v) > 1 && v[0] == '-':
				if err := m.matchShort(tok); err != nil {
					return err
				}
				continue
			}
		}

		// "--" only ends option matching; command names still dispatch.
		if sub := m.cmd.lookupSubcommand(v); sub != nil {
			m.res.subcommand = sub
			m.res.subName = v
			m.res.rest = m.tokens[m.i+1:]
			m.ctx.trace("dispatch %s", sub.name)
			return nil
		}
		if m.siblings != nil && m.siblings.lookupSubcommand(v) != nil {
			m.res.sibling = true
			m.res.rest = m.tokens[m.i:]
			return nil
		}

		m.res.positional = append(m.res.positional, tok)
		m.i++
	}
	return nil
}

// positionalOnly is true once a positional was seen on a command that does
// not allow options after positionals.
func (m *matcher) positionalOnly() bool {
	return !m.cmd.Settings.AllowInterspersedArgs && len(m.res.positional) > 0
}

// isLong reports whether v is a long option: "--name" or a single-dash
// token naming a declared multi-character option.
func (m *matcher) isLong(v string) bool {
	if strings.HasPrefix(v, "--") {
		return len(v) > 2
	}
	if len(v) < 3 || v[0] != '-' {
		return false
	}
	name, _, _ := strings.Cut(v, "=")
	return len(name) > 2 && m.cmd.lookupFlag(name) != nil
}

func (m *matcher) matchLong(tok Token) error {
	name, value, hasValue := strings.Cut(tok.Value, "=")
	flag := m.cmd.lookupFlag(name)
	if flag == nil {
		if m.cmd.Settings.TreatUnknownOptionsAsArgs {
			m.res.positional = append(m.res.positional, tok)
			m.i++
			return nil
		}
		return m.noSuchOption(name, tok, m.suggestOptions(name))
	}
	m.i++

	if flag.Arity == 0 {
		if hasValue {
			err := newError(KindBadOptionUsage, "option %s does not take a value", name)
			err.Param = name
			err.Source = tok.Source
			return err
		}
		m.record(flag, Invocation{Name: name})
		return nil
	}

	var values []string
	if hasValue {
		values = append(values, value)
	}
	return m.takeValues(flag, name, values, tok)
}

// matchShort resolves a cluster such as -xvf. Flags are recorded in turn;
// the first option taking a value consumes the rest of the cluster (if any)
// and the following tokens.
func (m *matcher) matchShort(tok Token) error {
	v := tok.Value
	if m.cmd.Settings.TreatUnknownOptionsAsArgs && !m.clusterKnown(v) {
		m.res.positional = append(m.res.positional, tok)
		m.i++
		return nil
	}
	m.i++

	for j := 1; j < len(v); {
		r, size := utf8.DecodeRuneInString(v[j:])
		name := "-" + string(r)
		flag := m.cmd.lookupFlag(name)
		if flag == nil {
			var suggestions []string
			if j == 1 {
				suggestions = m.longSuggestions("--" + v[1:])
			}
			return m.noSuchOption(name, tok, suggestions)
		}
		j += size

		if flag.Arity == 0 {
			m.record(flag, Invocation{Name: name})
			continue
		}

		var values []string
		if rest := v[j:]; rest != "" {
			values = append(values, rest)
		}
		return m.takeValues(flag, name, values, tok)
	}
	return nil
}

// clusterKnown reports whether every letter up to the first value-taking
// option of a cluster is declared.
func (m *matcher) clusterKnown(v string) bool {
	for _, r := range v[1:] {
		flag := m.cmd.lookupFlag("-" + string(r))
		if flag == nil {
			return false
		}
		if flag.Arity > 0 {
			return true
		}
	}
	return true
}

// takeValues fills values up to flag.Arity from the following tokens,
// verbatim, and records the invocation.
func (m *matcher) takeValues(flag *Flag, name string, values []string, tok Token) error {
	for len(values) < flag.Arity {
		if m.i >= len(m.tokens) {
			err := newError(KindBadOptionUsage, "option %s requires %s", name, plural(flag.Arity, "a value", "values"))
			err.Param = name
			err.Source = tok.Source
			return err
		}
		values = append(values, m.tokens[m.i].Value)
		m.i++
	}
	m.record(flag, Invocation{Name: name, Values: values})
	return nil
}

func (m *matcher) record(flag *Flag, inv Invocation) {
	m.ctx.matched = append(m.ctx.matched, matchedInvocation{flag: flag, inv: inv})
	m.ctx.trace("matched %s %v", inv.Name, inv.Values)
}

func (m *matcher) noSuchOption(name string, tok Token, suggestions []string) *ParseError {
	err := newError(KindNoSuchOption, "no such option %s", name)
	err.Param = name
	err.Source = tok.Source
	err.Suggestions = suggestions
	return err
}

// suggestOptions lists declared names starting with name, or failing that
// the closest names by edit distance.
func (m *matcher) suggestOptions(name string) []string {
	if hits := m.cmd.index.WithPrefix(name); len(hits) > 0 {
		return hits
	}
	return fuzzy.Suggest(name, m.cmd.index.All(), 2, 3)
}

// longSuggestions is used for "-foo" when -f is unknown: the user most
// likely meant a long option.
func (m *matcher) longSuggestions(long string) []string {
	var out []string
	if m.cmd.index.Has(long) {
		out = append(out, long)
	}
	return append(out, m.cmd.index.WithPrefix(long)...)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return strconv.Itoa(n) + " " + many
}
