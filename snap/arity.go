package snap

import (
	"fmt"
	"strings"

	"github.com/dzonerzy/snapargv/internal/fuzzy"
)

// resolveArity assigns consecutive slices of the positional tokens to args
// in declaration order. A variadic argument takes everything except the
// slots reserved for the fixed arguments declared after it. Tokens left
// over are returned as excess.
func resolveArity(args []*Arg, tokens []Token) (map[*Arg][]Token, []Token, *ParseError) {
	endSize := 0
	for i := len(args) - 1; i >= 0; i-- {
		if args[i].IsVariadic() {
			break
		}
		endSize += args[i].Nargs
	}

	out := make(map[*Arg][]Token, len(args))
	remaining := tokens
	for _, arg := range args {
		var consumed int
		switch {
		case arg.IsVariadic():
			consumed = max(0, len(remaining)-endSize)
		case !arg.Required && len(remaining) == 0:
			consumed = 0
		default:
			consumed = arg.Nargs
		}

		if consumed > len(remaining) {
			if len(remaining) == 0 {
				err := newError(KindMissingParameter, "missing argument %s", upper(arg.Name))
				err.Param = upper(arg.Name)
				return nil, nil, err
			}
			err := newError(KindBadArgumentUsage, "argument %s takes %d values", upper(arg.Name), arg.Nargs)
			err.Param = upper(arg.Name)
			err.Source = remaining[0].Source
			return nil, nil, err
		}

		out[arg] = remaining[:consumed]
		remaining = remaining[consumed:]
	}
	return out, remaining, nil
}

// excessError reports positional tokens no argument took. On a command with
// subcommands the first token is most likely a mistyped subcommand.
func excessError(cmd *Command, excess []Token) *ParseError {
	if len(cmd.subcommands) > 0 {
		name := excess[0].Value
		err := newError(KindNoSuchSubcommand, "no such subcommand %s", name)
		err.Param = name
		err.Source = excess[0].Source
		err.Suggestions = suggestSubcommands(cmd, name)
		return err
	}

	quoted := make([]string, 0, 3)
	for _, t := range excess[:min(3, len(excess))] {
		quoted = append(quoted, fmt.Sprintf("%q", t.Value))
	}
	noun := "argument"
	if len(excess) > 1 {
		noun = "arguments"
	}
	err := newError(KindUsage, "got unexpected extra %s (%s)", noun, strings.Join(quoted, " "))
	err.Source = excess[0].Source
	return err
}

func suggestSubcommands(cmd *Command, name string) []string {
	if hits := cmd.subIndex.WithPrefix(name); len(hits) > 0 {
		return hits
	}
	return fuzzy.Suggest(name, cmd.subIndex.All(), 2, 3)
}
