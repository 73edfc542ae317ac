package snap

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/dzonerzy/snapargv/internal/argfile"
)

// Token is one argv element after @file expansion. Source is empty for raw
// argv and otherwise names the @file the token was read from.
type Token struct {
	Value  string
	Source string
}

// FileReader loads the contents of an @file.
type FileReader interface {
	ReadFile(path string) (string, error)
}

// FileReaderFunc adapts a function to FileReader.
type FileReaderFunc func(path string) (string, error)

func (f FileReaderFunc) ReadFile(path string) (string, error) { return f(path) }

// OSFileReader reads @files from the local filesystem.
type OSFileReader struct{}

func (OSFileReader) ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &ParseError{Kind: KindFileNotFound, Message: "file not found: " + path, Param: path, Cause: err}
		}
		return "", &ParseError{Kind: KindInvalidFileFormat, Message: "cannot read " + path, Param: path, Cause: err}
	}
	return string(data), nil
}

// MapFileReader serves @files from memory, keyed by path.
type MapFileReader map[string]string

func (m MapFileReader) ReadFile(path string) (string, error) {
	content, ok := m[path]
	if !ok {
		return "", &ParseError{Kind: KindFileNotFound, Message: "file not found: " + path, Param: path}
	}
	return content, nil
}

// Tokenize expands @file references in raw and returns the resulting argv.
// A nil reader disables expansion.
func Tokenize(raw []string, reader FileReader) ([]string, error) {
	tokens, err := ExpandTokens(raw, reader)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Value
	}
	return out, nil
}

// ExpandTokens is Tokenize keeping the origin of every token.
//
// "@path" is replaced, depth first, by the tokens of the file at path.
// "@@x" yields the literal "@x". A lone "@" is literal. Re-entering a file
// that is still being expanded is a usage error.
func ExpandTokens(raw []string, reader FileReader) ([]Token, error) {
	e := expander{reader: reader}
	out := make([]Token, 0, len(raw))
	return e.expand(out, raw, "")
}

type expander struct {
	reader FileReader
	chain  []string
}

func (e *expander) expand(out []Token, values []string, source string) ([]Token, error) {
	for _, v := range values {
		if e.reader == nil || len(v) < 2 || v[0] != '@' {
			out = append(out, Token{Value: v, Source: source})
			continue
		}
		if v[1] == '@' {
			out = append(out, Token{Value: v[1:], Source: source})
			continue
		}
		var err error
		out, err = e.include(out, v[1:], source)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (e *expander) include(out []Token, path, source string) ([]Token, error) {
	for _, p := range e.chain {
		if p == path {
			chain := append(append([]string(nil), e.chain...), path)
			return nil, &ParseError{
				Kind:    KindUsage,
				Message: "recursive @file inclusion: " + strings.Join(chain, " -> "),
				Param:   "@" + path,
				Source:  source,
			}
		}
	}

	content, err := e.reader.ReadFile(path)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			if pe.Source == "" {
				pe.Source = source
			}
			return nil, pe
		}
		return nil, &ParseError{Kind: KindInvalidFileFormat, Message: "cannot read " + path, Param: path, Source: source, Cause: err}
	}

	values, err := argfile.Split(content)
	if err != nil {
		var syn *argfile.SyntaxError
		if errors.As(err, &syn) {
			return nil, &ParseError{Kind: KindUsage, Message: syn.Msg, Param: path, Source: path, Cause: err}
		}
		return nil, &ParseError{Kind: KindInvalidFileFormat, Message: err.Error(), Param: path, Source: path, Cause: err}
	}

	e.chain = append(e.chain, path)
	out, err = e.expand(out, values, path)
	e.chain = e.chain[:len(e.chain)-1]
	return out, err
}
