// Package snapio owns the streams a CLI reads and writes: stdin for prompts,
// stdout for help and messages, stderr for errors and logs.
package snapio

import (
	"bufio"
	"errors"
	stdio "io"
	"os"
	"strings"

	"golang.org/x/term"
)

// IOManager centralizes IO and terminal capabilities
type IOManager struct {
	in  stdio.Reader
	out stdio.Writer
	err stdio.Writer

	// lines wraps in; it is recreated when in changes so buffered input
	// is never read twice.
	lines *bufio.Reader

	forceColor  bool
	noColor     bool
	interactive *bool
}

// New returns a manager bound to process stdio
func New() *IOManager {
	return &IOManager{in: os.Stdin, out: os.Stdout, err: os.Stderr}
}

// WithIn sets the input reader used by the manager and returns the manager for chaining.
func (m *IOManager) WithIn(r stdio.Reader) *IOManager { m.in = r; m.lines = nil; return m }

// WithOut sets the standard output writer and returns the manager for chaining.
func (m *IOManager) WithOut(w stdio.Writer) *IOManager { m.out = w; return m }

// WithErr sets the standard error writer and returns the manager for chaining.
func (m *IOManager) WithErr(w stdio.Writer) *IOManager { m.err = w; return m }

// ForceColor forces color output on, regardless of environment.
func (m *IOManager) ForceColor() *IOManager { m.forceColor = true; m.noColor = false; return m }

// NoColor disables color output, regardless of environment.
func (m *IOManager) NoColor() *IOManager { m.noColor = true; m.forceColor = false; return m }

// ColorAuto uses environment heuristics to determine color support.
func (m *IOManager) ColorAuto() *IOManager { m.noColor = false; m.forceColor = false; return m }

// ForceInteractive overrides terminal detection for prompting. Tests use it
// to drive prompts from a strings.Reader.
func (m *IOManager) ForceInteractive(enabled bool) *IOManager {
	m.interactive = &enabled
	return m
}

// In returns the configured input reader.
func (m *IOManager) In() stdio.Reader { return m.in }

// Out returns the configured standard output writer.
func (m *IOManager) Out() stdio.Writer { return m.out }

// Err returns the configured standard error writer.
func (m *IOManager) Err() stdio.Writer { return m.err }

// IsTTY reports whether stdout is connected to a terminal.
func (m *IOManager) IsTTY() bool { return isTerminal(m.out) }

// IsInteractive reports whether prompts can be shown: both input and output
// are terminals and CI is not set.
func (m *IOManager) IsInteractive() bool {
	if m.interactive != nil {
		return *m.interactive
	}
	return isTerminal(m.in) && isTerminal(m.out) && os.Getenv("CI") == ""
}

// IsPiped reports whether stdin is not a terminal.
func (m *IOManager) IsPiped() bool { return !isTerminal(m.in) }

// IsRedirected reports whether stdout is not a terminal.
func (m *IOManager) IsRedirected() bool { return !isTerminal(m.out) }

// Width returns the terminal width, COLUMNS, or 80.
func (m *IOManager) Width() int {
	if w, _, ok := m.size(); ok && w > 0 {
		return w
	}
	if w := envInt("COLUMNS"); w > 0 {
		return w
	}
	return 80
}

// Height returns the terminal height, LINES, or 24.
func (m *IOManager) Height() int {
	if _, h, ok := m.size(); ok && h > 0 {
		return h
	}
	if h := envInt("LINES"); h > 0 {
		return h
	}
	return 24
}

func (m *IOManager) size() (int, int, bool) {
	f, ok := m.out.(*os.File)
	if !ok {
		return 0, 0, false
	}
	w, h, err := term.GetSize(int(f.Fd()))
	return w, h, err == nil
}

// EnableVirtualTerminal is kept for callers that enable ANSI on Windows
// consoles. Modern consoles handle it already.
func (m *IOManager) EnableVirtualTerminal() bool { return m.IsTTY() }

// ReadLine reads one line from the input without the trailing newline.
// io.EOF is returned only when nothing was read.
func (m *IOManager) ReadLine() (string, error) {
	if m.lines == nil {
		m.lines = bufio.NewReader(m.in)
	}
	line, err := m.lines.ReadString('\n')
	if err != nil && !(errors.Is(err, stdio.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadSecret reads a line without echo when the input is a terminal.
func (m *IOManager) ReadSecret() (string, error) {
	if f, ok := m.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return m.ReadLine()
}

// SupportsColor reports whether ANSI colors should be written to stdout.
func (m *IOManager) SupportsColor() bool {
	if m.noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	if m.forceColor || os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	if !m.IsTTY() {
		return false
	}
	t := os.Getenv("TERM")
	return t != "" && t != "dumb"
}

// ANSI helpers

// Colorize wraps s with the given ANSI SGR code (e.g., "31" for red) and a
// trailing reset ("0m"). If color is not supported, it returns s unchanged.
func (m *IOManager) Colorize(s, code string) string {
	if !m.SupportsColor() {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

// Bold returns s in bold when color is supported; otherwise s unchanged.
func (m *IOManager) Bold(s string) string { return m.Colorize(s, "1") }

// Faint returns s in faint intensity when supported; otherwise s unchanged.
func (m *IOManager) Faint(s string) string { return m.Colorize(s, "2") }

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func envInt(name string) int {
	n := 0
	for _, c := range os.Getenv(name) {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}
