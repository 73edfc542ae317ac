// Package argfile splits the contents of @file argument files into tokens.
//
// The grammar is a small subset of POSIX shell quoting: unquoted whitespace
// separates tokens, '#' outside quotes starts a comment that runs to the end
// of the line, single and double quotes keep whitespace, and a backslash
// escapes the following character everywhere. A backslash immediately
// followed by a newline is a line continuation and produces nothing.
package argfile

import (
	"fmt"
	"strings"
)

// SyntaxError reports malformed file contents.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s (line %d)", e.Msg, e.Line)
}

// Split tokenizes text. Empty quoted strings yield empty tokens.
//
//nolint:gocognit // single-pass lexer, splitting it would scatter the state
func Split(text string) ([]string, error) {
	var (
		tokens    []string
		cur       strings.Builder
		started   bool
		quote     byte
		quoteLine int
		line      = 1
	)

	flush := func() {
		if started {
			tokens = append(tokens, cur.String())
			cur.Reset()
			started = false
		}
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '\\':
			// Line continuation joins without inserting whitespace
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
				line++
				continue
			}
			if i+2 < len(text) && text[i+1] == '\r' && text[i+2] == '\n' {
				i += 2
				line++
				continue
			}
			started = true
			if i+1 == len(text) {
				cur.WriteByte(c)
				continue
			}
			i++
			cur.WriteByte(text[i])
		case quote != 0:
			if c == quote {
				quote = 0
				continue
			}
			if c == '\n' {
				line++
			}
			cur.WriteByte(c)
		case c == '"' || c == '\'':
			quote = c
			quoteLine = line
			started = true
		case c == '#':
			flush()
			for i+1 < len(text) && text[i+1] != '\n' {
				i++
			}
		case isSpace(c):
			if c == '\n' {
				line++
			}
			flush()
		default:
			cur.WriteByte(c)
			started = true
		}
	}

	if quote != 0 {
		return nil, &SyntaxError{Line: quoteLine, Msg: "unclosed quote"}
	}
	flush()
	return tokens, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}
